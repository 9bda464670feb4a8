package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintly/billingkit/pkg/config"
)

type apiConfig struct {
	BaseURL string        `env:"TEST_API_BASE_URL,required"`
	Timeout time.Duration `env:"TEST_API_TIMEOUT" envDefault:"15s"`
}

type optionalConfig struct {
	Prefix string `env:"TEST_KEY_PREFIX" envDefault:"billingkit:"`
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_API_BASE_URL", "https://api.example.com/v1/billing")
	config.Reset()

	var cfg apiConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "https://api.example.com/v1/billing", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout, "envDefault applies when unset")
}

func TestLoad_ServesCachedCopy(t *testing.T) {
	t.Setenv("TEST_API_BASE_URL", "https://first.example.com")
	config.Reset()

	var first apiConfig
	require.NoError(t, config.Load(&first))

	// Environment changes after the first load are not observed.
	t.Setenv("TEST_API_BASE_URL", "https://second.example.com")

	var second apiConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "https://first.example.com", second.BaseURL)

	config.Reset()

	var third apiConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "https://second.example.com", third.BaseURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	config.Reset()

	var cfg apiConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	err := config.Load[apiConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoad_Defaults(t *testing.T) {
	config.Reset()

	var cfg optionalConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "billingkit:", cfg.Prefix)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/does-not-exist.env")
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	config.Reset()

	assert.Panics(t, func() {
		var cfg apiConfig
		config.MustLoad(&cfg)
	})
}
