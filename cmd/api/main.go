package main

import (
	"os"

	"github.com/joho/godotenv"

	"timeprof/app"
	"timeprof/internal"
	"timeprof/internal/api"
)

func main() {
	_ = godotenv.Load()

	log := internal.NewDefaultLogger()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	service := app.NewProfileService(log)
	server := api.NewServer(service, log)

	if err := server.ListenAndServe(":" + port); err != nil {
		log.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
