package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"timeprof/adapters/report"
	"timeprof/app"
	"timeprof/internal"
	"timeprof/internal/config"
)

func main() {
	// Optional .env for database URIs and LOG_LEVEL
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "timeprof",
		Short: "Time-bucketed dataset profiler",
		Long: `timeprof buckets a tabular dataset by a temporal key, aggregates
per-bucket statistics for every column, and evaluates the resulting series
for outliers under IQR and Z-score criteria.`,
	}

	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var configPath string
	var outDir string
	var renderHTML bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Profile a dataset and write a Markdown report",
		Long: `Run the profiling pipeline described by a config file.

Example: timeprof run --config config.json --out output`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := internal.NewDefaultLogger()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Output.Dir = outDir
			}
			if renderHTML {
				cfg.Output.HTML = true
			}

			service := app.NewProfileService(log)
			result, err := service.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			reporter := report.NewMarkdownReporter(cfg.Output.Dir, cfg.Output.HTML, log)
			if err := reporter.Write(result); err != nil {
				return err
			}

			log.Info("run %s complete: %d buckets, %d sections",
				result.Manifest.RunID, result.Table.Len(), len(result.Sections))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.json", "Path to the run configuration file")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (overrides config)")
	cmd.Flags().BoolVar(&renderHTML, "html", false, "Also render the report as HTML")

	return cmd
}
