// Package config resolves the effective checker configuration: built-in
// defaults merged with an optional .pyconform/config.json override and an
// optional lexicon file. Loaded once per run, immutable afterwards.
package config

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"
)

// Config is the complete checker configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	// Rules maps rule ids to per-rule overrides. Absence means the rule
	// runs with its default severity.
	Rules map[string]RuleSetting `json:"rules" mapstructure:"rules"`

	// ExcludePaths are glob patterns; files matching one contribute zero
	// violations regardless of rule outcomes.
	ExcludePaths []string `json:"excludePaths" mapstructure:"excludePaths"`

	Lexicons   LexiconsConfig   `json:"lexicons" mapstructure:"lexicons"`
	Layout     LayoutConfig     `json:"layout" mapstructure:"layout"`
	Thresholds ThresholdsConfig `json:"thresholds" mapstructure:"thresholds"`
	Typing     TypingConfig     `json:"typing" mapstructure:"typing"`
	Analysis   AnalysisConfig   `json:"analysis" mapstructure:"analysis"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// RuleSetting is one rule's override.
type RuleSetting struct {
	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty" mapstructure:"enabled"`
	// Severity overrides the rule default: error, warning or info.
	Severity string `json:"severity,omitempty" mapstructure:"severity"`
}

// LexiconsConfig holds the externally extensible word lists. The source
// style guide has no canonical list, so teams extend these instead of
// patching rule logic.
type LexiconsConfig struct {
	// VerbPrefixes are verb stems with trailing underscore, matched
	// case-sensitively as name prefixes.
	VerbPrefixes []string `json:"verbPrefixes" mapstructure:"verbPrefixes"`
	// GenericNames are banned contentless variable names.
	GenericNames []string `json:"genericNames" mapstructure:"genericNames"`
}

// LayoutConfig configures project-tree rules.
type LayoutConfig struct {
	RequiredDirs []string `json:"requiredDirs" mapstructure:"requiredDirs"`
}

// ThresholdsConfig tunes rule sensitivity.
type ThresholdsConfig struct {
	// GenericNameScopeStatements: generic names are flagged only in scopes
	// spanning more than this many statements.
	GenericNameScopeStatements int `json:"genericNameScopeStatements" mapstructure:"genericNameScopeStatements"`
	// MaxAttemptsStyle: comparisons of retry-like counters against literals
	// at or below this value get a MAX_..._ATTEMPTS suggestion.
	MaxAttemptsStyle int `json:"maxAttemptsStyle" mapstructure:"maxAttemptsStyle"`
}

// TypingConfig configures the type-hint coverage rule.
type TypingConfig struct {
	// PublicOnly limits typing.missing-hint to non-underscore-prefixed names.
	PublicOnly bool `json:"publicOnly" mapstructure:"publicOnly"`
}

// AnalysisConfig configures run execution.
type AnalysisConfig struct {
	// Workers is the analysis pool size; 0 means available parallelism.
	Workers int `json:"workers" mapstructure:"workers"`
	// Cache toggles the per-file result cache.
	Cache bool `json:"cache" mapstructure:"cache"`
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Rules:   map[string]RuleSetting{},
		ExcludePaths: []string{
			".venv/*",
			"venv/*",
			"__pycache__/*",
			"build/*",
			"dist/*",
		},
		Lexicons: LexiconsConfig{
			VerbPrefixes: []string{
				"add_", "apply_", "build_", "calculate_", "check_", "close_",
				"compute_", "convert_", "create_", "delete_", "extract_",
				"fetch_", "filter_", "find_", "format_", "generate_", "get_",
				"handle_", "has_", "init_", "is_", "load_", "make_", "merge_",
				"open_", "parse_", "process_", "read_", "remove_", "render_",
				"run_", "save_", "send_", "set_", "sort_", "start_", "stop_",
				"update_", "validate_", "write_",
			},
			GenericNames: []string{"data", "info", "var", "tmp", "temp", "obj"},
		},
		Layout: LayoutConfig{
			RequiredDirs: []string{"apps", "utils", "tests", "docs"},
		},
		Thresholds: ThresholdsConfig{
			GenericNameScopeStatements: 5,
			MaxAttemptsStyle:           10,
		},
		Typing: TypingConfig{
			PublicOnly: true,
		},
		Analysis: AnalysisConfig{
			Workers: 0,
			Cache:   true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.pyconform/config.json,
// returning defaults when no file exists. An optional lexicons.yaml in the
// same directory extends the word lists.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".pyconform"))

	cfg := DefaultConfig()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &ConfigError{Field: "config.json", Message: err.Error()}
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Field: "config.json", Message: err.Error()}
	}

	if err := cfg.mergeLexiconFile(filepath.Join(root, ".pyconform", "lexicons.yaml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against the set of known rule ids.
// Unknown ids are hard errors: a typo silently ignored is a config that
// lies about what it enforces.
func (c *Config) Validate(knownRules []string) error {
	for id, setting := range c.Rules {
		if !slices.Contains(knownRules, id) {
			return &ConfigError{
				Field:   "rules." + id,
				Message: "unknown rule id",
			}
		}
		if setting.Severity != "" {
			switch setting.Severity {
			case "error", "warning", "info":
			default:
				return &ConfigError{
					Field:   "rules." + id + ".severity",
					Message: fmt.Sprintf("invalid severity %q (use: error, warning, info)", setting.Severity),
				}
			}
		}
	}
	if c.Thresholds.GenericNameScopeStatements < 0 {
		return &ConfigError{Field: "thresholds.genericNameScopeStatements", Message: "must be non-negative"}
	}
	if c.Analysis.Workers < 0 {
		return &ConfigError{Field: "analysis.workers", Message: "must be non-negative"}
	}
	return nil
}

// RuleEnabled reports whether a rule should run.
func (c *Config) RuleEnabled(id string) bool {
	setting, ok := c.Rules[id]
	if !ok || setting.Enabled == nil {
		return true
	}
	return *setting.Enabled
}

// SeverityOverride returns the configured severity for a rule, if any.
func (c *Config) SeverityOverride(id string) (string, bool) {
	setting, ok := c.Rules[id]
	if !ok || setting.Severity == "" {
		return "", false
	}
	return setting.Severity, true
}

// ConfigError is a fatal configuration problem. It aborts the run before
// any file is scheduled, since a wrong configuration makes all results
// meaningless.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
