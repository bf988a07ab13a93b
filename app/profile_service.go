package app

import (
	"context"

	"timeprof/adapters/engine"
	"timeprof/adapters/excel"
	"timeprof/adapters/postgres"
	"timeprof/domain/profile"
	"timeprof/internal"
	"timeprof/internal/config"
	"timeprof/internal/pipeline"
	"timeprof/ports"
)

// ProfileService assembles and runs profiling pipelines from validated
// configuration. It is the composition root shared by the CLI and the API.
type ProfileService struct {
	log *internal.Logger
}

// NewProfileService creates the service
func NewProfileService(log *internal.Logger) *ProfileService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &ProfileService{log: log}
}

// Run executes one profiling run end to end
func (s *ProfileService) Run(ctx context.Context, cfg *config.Config) (*profile.RunResult, error) {
	source, closeSource, err := s.openSource(cfg)
	if err != nil {
		return nil, err
	}
	if closeSource != nil {
		defer closeSource()
	}

	eng := engine.New(s.log)
	p := pipeline.New(source, eng, eng, cfg, s.log)
	return p.Run(ctx)
}

// openSource picks the dataset source from the config: a file reader or a
// database query
func (s *ProfileService) openSource(cfg *config.Config) (ports.DatasetSource, func() error, error) {
	if cfg.Source.FilePath != "" {
		return excel.NewDataReader(cfg.Source.FilePath, cfg.Source.FileFormat, s.log), nil, nil
	}
	src, err := postgres.Open(config.ExpandEnv(cfg.Source.URI), cfg.Source.Query, s.log)
	if err != nil {
		return nil, nil, err
	}
	return src, src.Close, nil
}
