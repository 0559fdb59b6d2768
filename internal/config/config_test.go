package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, nil)

	require.NoError(t, err)
	assert.Equal(t, Default(dir), cfg)
	assert.Equal(t, filepath.Join(dir, "mnemo.db"), cfg.DB.Path)
	assert.Equal(t, 20*time.Minute, cfg.Study.CollapseTime())
	assert.Equal(t, slog.LevelWarn, cfg.Log.SlogLevel())
}

func TestLoad_FileThenEnvThenFlags(t *testing.T) {
	dir := t.TempDir()
	yaml := "study:\n  variant: std\n  rollover_hour: 2\n  queue_limit: 20\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("MNEMO_STUDY_ROLLOVER_HOUR", "6")
	t.Setenv("MNEMO_STUDY_NEW_SPREAD", "last")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--queue-limit", "75"}))

	cfg, err := Load(dir, fs)

	require.NoError(t, err)
	assert.Equal(t, "std", cfg.Study.Variant)
	assert.Equal(t, 6, cfg.Study.RolloverHour)
	assert.Equal(t, "last", cfg.Study.NewSpread)
	assert.Equal(t, 75, cfg.Study.QueueLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Study.CollapseMinutes, "unset flags keep defaults")
}

func TestLoad_ExplicitConfigMustExist(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := Load(t.TempDir(), fs)

	assert.Error(t, err)
}

func TestLoad_RejectsOutOfRange(t *testing.T) {
	t.Setenv("MNEMO_STUDY_ROLLOVER_HOUR", "30")
	t.Setenv("MNEMO_STUDY_VARIANT", "v9")

	_, err := Load(t.TempDir(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "RolloverHour")
	assert.Contains(t, err.Error(), "Variant")
}

func TestEnvKey_SplitsSectionOnly(t *testing.T) {
	assert.Equal(t, "study.day_learn_first", envKey("MNEMO_STUDY_DAY_LEARN_FIRST"))
	assert.Equal(t, "db.path", envKey("MNEMO_DB_PATH"))
}
