// Package config assembles mnemo's settings from compiled defaults, an
// optional YAML file, MNEMO_* environment variables and command-line flags,
// later sources overriding earlier ones.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read. MNEMO_STUDY_VARIANT
// sets study.variant.
const EnvPrefix = "MNEMO_"

type Config struct {
	DB    DBConfig    `koanf:"db"`
	Log   LogConfig   `koanf:"log"`
	Study StudyConfig `koanf:"study"`
}

type DBConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	// UseCases logs every service use case to stderr.
	UseCases bool `koanf:"use_cases"`
}

type StudyConfig struct {
	Variant         string `koanf:"variant" validate:"oneof=std v2"`
	RolloverHour    int    `koanf:"rollover_hour" validate:"min=0,max=23"`
	CollapseMinutes int    `koanf:"collapse_minutes" validate:"min=0,max=1440"`
	DayLearnFirst   bool   `koanf:"day_learn_first"`
	NewSpread       string `koanf:"new_spread" validate:"oneof=distribute last first"`
	QueueLimit      int    `koanf:"queue_limit" validate:"min=1,max=1000"`
}

// CollapseTime is the learn-ahead window.
func (c StudyConfig) CollapseTime() time.Duration {
	return time.Duration(c.CollapseMinutes) * time.Minute
}

// SlogLevel maps Level onto slog.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Default returns the compiled defaults, with data kept under dir.
func Default(dir string) Config {
	return Config{
		DB:  DBConfig{Path: filepath.Join(dir, "mnemo.db")},
		Log: LogConfig{Level: "warn"},
		Study: StudyConfig{
			Variant:         "v2",
			RolloverHour:    4,
			CollapseMinutes: 20,
			NewSpread:       "distribute",
			QueueLimit:      50,
		},
	}
}

// DefaultDir is ~/.mnemo.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".mnemo"), nil
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"db":              "db.path",
	"log-level":       "log.level",
	"log-use-cases":   "log.use_cases",
	"variant":         "study.variant",
	"rollover-hour":   "study.rollover_hour",
	"collapse":        "study.collapse_minutes",
	"day-learn-first": "study.day_learn_first",
	"new-spread":      "study.new_spread",
	"queue-limit":     "study.queue_limit",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "configuration file (default ~/.mnemo/config.yaml)")
	fs.String("db", "", "database path")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.Bool("log-use-cases", false, "log every use case to stderr")
	fs.String("variant", "", "scheduler variant: std or v2")
	fs.Int("rollover-hour", 0, "hour the study day starts")
	fs.Int("collapse", 0, "learn-ahead window in minutes")
	fs.Bool("day-learn-first", false, "show day-learning cards before reviews")
	fs.String("new-spread", "", "new card placement: distribute, last or first")
	fs.Int("queue-limit", 0, "cards pulled into a queue at once")
}

// Load builds the configuration. dir holds the default database and
// config file. flags may be nil; only flags set on the command line
// override other sources.
func Load(dir string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	path := filepath.Join(dir, "config.yaml")
	explicit := false
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Changed {
			path, explicit = f.Value.String(), true
		}
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return Config{}, fmt.Errorf("reading flags: %w", err)
		}
	}

	cfg := Default(dir)
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey turns MNEMO_STUDY_ROLLOVER_HOUR into study.rollover_hour: the
// first component names the section.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}

// flagKey skips flags left at their zero defaults so they never mask
// file or environment values.
func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks ranges and enumerations.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: %v does not satisfy %s", fe.Namespace(), fe.Value(), fe.ActualTag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
