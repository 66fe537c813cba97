package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	t.Run("yaml overrides env", func(t *testing.T) {
		Reset()
		t.Setenv("MARKETADMIN_API_URL", "http://env.example")
		t.Setenv("MARKETADMIN_PAGE_SIZE", "50")

		dir := t.TempDir()
		path := filepath.Join(dir, "admin.yaml")
		content := "api_base_url: http://file.example/api\npage_size: 20\nsearch_debounce_ms: 250\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "http://file.example/api", cfg.API.BaseURL)
		assert.Equal(t, 20, cfg.PageSize)
		assert.Equal(t, 250*time.Millisecond, cfg.SearchDebounce)
		assert.Equal(t, "/questions", cfg.API.QuestionsPath)
		assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	})

	t.Run("env only", func(t *testing.T) {
		Reset()
		t.Setenv("MARKETADMIN_API_URL", "https://api.example")
		t.Setenv("MARKETADMIN_ANSWERS_PATH", "/v1/answers")

		cfg, err := LoadFromFile("")
		require.NoError(t, err)
		assert.Equal(t, "https://api.example", cfg.API.BaseURL)
		assert.Equal(t, "/v1/answers", cfg.API.AnswersPath)
		assert.Equal(t, ":8080", cfg.Listen)
		assert.Same(t, cfg, Get())
	})

	t.Run("missing base url", func(t *testing.T) {
		Reset()
		t.Setenv("MARKETADMIN_API_URL", "")
		_, err := LoadFromFile("")
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		Reset()
		dir := t.TempDir()
		path := filepath.Join(dir, "admin.toml")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := Config{
		API:            APIConfig{BaseURL: "http://x", QuestionsPath: "/q", AnswersPath: "/a", RequestTimeout: time.Second},
		PageSize:       10,
		SearchDebounce: time.Millisecond,
		SessionTTL:     time.Minute,
	}
	assert.NoError(t, base.Validate())

	bad := base
	bad.API.BaseURL = "not a url"
	assert.Error(t, bad.Validate())

	bad = base
	bad.API.QuestionsPath = "questions"
	assert.Error(t, bad.Validate())

	bad = base
	bad.PageSize = 0
	assert.Error(t, bad.Validate())
}
