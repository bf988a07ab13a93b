package config

import (
	"encoding/json"
	"os"
	"strings"

	"timeprof/domain/expr"
	"timeprof/domain/profile"
	apperrors "timeprof/internal/errors"
)

// Config is the validated configuration for one profiling run. It is
// loaded and checked once at pipeline start; components receive it by
// value and never consult the environment themselves.
type Config struct {
	Source           SourceConfig    `json:"source"`
	DateColumn       string          `json:"date_column,omitempty"`
	TimeInterval     string          `json:"time_interval,omitempty"` // duration literal, default "1d"
	TargetColumn     string          `json:"target_column,omitempty"`
	ColumnsToExclude []string        `json:"columns_to_exclude,omitempty"`
	Filter           *expr.Predicate `json:"filter,omitempty"`
	Transforms       []expr.Rewrite  `json:"transforms,omitempty"`
	Outliers         OutliersConfig  `json:"outliers,omitempty"`
	Output           OutputConfig    `json:"output,omitempty"`
}

// SourceConfig identifies the dataset to load. Either FilePath or the
// URI/Query pair must be set.
type SourceConfig struct {
	FilePath   string `json:"file_path,omitempty"`
	FileFormat string `json:"file_format,omitempty"` // xlsx or csv; inferred from extension when empty
	URI        string `json:"uri,omitempty"`         // database connection string, $VAR expands from env
	Query      string `json:"query,omitempty"`
}

// OutliersConfig mirrors the outliers block of the config file
type OutliersConfig struct {
	Criterion  string   `json:"criterion,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
}

// OutputConfig controls where and how the report is written
type OutputConfig struct {
	Dir  string `json:"dir,omitempty"`
	HTML bool   `json:"html,omitempty"`
}

// Load reads a config file, applies defaults, and validates
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read config file %s", path)
	}
	return Parse(data)
}

// Parse decodes config bytes, applies defaults, and validates
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode configuration")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TimeInterval == "" {
		c.TimeInterval = "1d"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
}

// Validate checks the whole configuration, producing a single
// CONFIG_INVALID error rather than deferred failures downstream
func (c *Config) Validate() error {
	hasFile := c.Source.FilePath != ""
	hasQuery := c.Source.URI != "" && c.Source.Query != ""
	if !hasFile && !hasQuery {
		return apperrors.ConfigInvalid("source requires file_path or uri/query")
	}
	if hasFile && hasQuery {
		return apperrors.ConfigInvalid("source cannot set both file_path and uri/query")
	}
	if err := c.Outliers.toProfile().Validate(); err != nil {
		return apperrors.ConfigInvalid(err.Error())
	}
	if c.Filter != nil {
		if err := c.Filter.Validate(); err != nil {
			return apperrors.ConfigInvalid("filter: " + err.Error())
		}
	}
	for _, rw := range c.Transforms {
		if err := rw.Validate(); err != nil {
			return apperrors.ConfigInvalid("transform: " + err.Error())
		}
	}
	return nil
}

// OutlierConfig converts the file representation into the evaluator's
// normalized configuration
func (c *Config) OutlierConfig() profile.OutlierConfig {
	return c.Outliers.toProfile().Normalize()
}

func (o OutliersConfig) toProfile() profile.OutlierConfig {
	cfg := profile.OutlierConfig{Criterion: profile.Criterion(o.Criterion)}
	if o.Multiplier != nil {
		cfg.IQRMultiplier = *o.Multiplier
	}
	if o.Threshold != nil {
		cfg.ZScoreThreshold = *o.Threshold
	}
	return cfg
}

// ExpandEnv replaces a leading $ placeholder with the named environment
// variable, as used for database URIs in config files
func ExpandEnv(value string) string {
	if !strings.HasPrefix(value, "$") {
		return value
	}
	name := strings.TrimPrefix(value, "$")
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return value
}
