package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, "development", config.Environment)
	assert.Contains(t, config.Collect.NewsKeywords, "특징주")
	assert.Contains(t, config.Collect.DisclosureKeywords, "공급계약")
	assert.Equal(t, 20, config.Collect.MaxNewsToAnalyze)
	assert.Equal(t, "168h", config.Redis.DedupTTL)
	assert.Equal(t, "10 8 * * 1-5", config.Schedule.Cron)
}

func TestLoadFromFiles_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thebeat.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment = "production"

[collect]
news_keywords = ["특징주"]
max_news_to_analyze = 5
max_filings_to_analyze = 3

[claude]
model = "claude-opus-4-20250514"
`), 0644))

	config, err := LoadFromFiles(path)

	require.NoError(t, err)
	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, []string{"특징주"}, config.Collect.NewsKeywords)
	assert.Equal(t, 5, config.Collect.MaxNewsToAnalyze)
	assert.Equal(t, "claude-opus-4-20250514", config.Claude.Model)
	// Untouched sections keep their defaults.
	assert.Equal(t, "http://data.krx.co.kr", config.KRX.BaseURL)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "base.toml")
	second := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(first, []byte(`environment = "staging"`), 0644))
	require.NoError(t, os.WriteFile(second, []byte(`environment = "production"`), 0644))

	config, err := LoadFromFiles(first, second)

	require.NoError(t, err)
	assert.Equal(t, "production", config.Environment)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadFromFiles_MalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte(`environment = `), 0644))

	_, err := LoadFromFiles(path)
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thebeat.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[dart]
api_key = "from-file"
`), 0644))

	t.Setenv("DART_API_KEY", "from-env")

	config, err := LoadFromFiles(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", config.Dart.APIKey)
}

func TestValidate_RejectsBrokenConfig(t *testing.T) {
	config := NewDefaultConfig()
	config.KRX.BaseURL = "not a url"

	assert.Error(t, config.Validate())
}

func TestValidate_RejectsZeroAnalysisCap(t *testing.T) {
	config := NewDefaultConfig()
	config.Collect.MaxNewsToAnalyze = 0

	assert.Error(t, config.Validate())
}
