package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu    sync.RWMutex
	cache = make(map[string]any)

	defaultEnvLoaded sync.Once
)

// LoadEnv loads the given .env files into the process environment before any
// config struct is parsed. Call it once at startup when the defaults are not
// in the working directory.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses environment variables into the provided config struct.
// The default .env file is loaded once per process before the first parse;
// a missing file is not an error. Each configuration type is parsed at most
// once and served from cache afterwards, so hot paths can call Load freely.
//
// Example:
//
//	type APIConfig struct {
//		BaseURL string        `env:"BILLING_API_BASE_URL,required"`
//		Timeout time.Duration `env:"BILLING_API_REQUEST_TIMEOUT" envDefault:"15s"`
//	}
//
//	var cfg APIConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	key := typeKey[T]()

	mu.RLock()
	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		mu.RUnlock()
		return nil
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	// A copy is cached so callers cannot mutate what later loads receive.
	cache[key] = *v
	return nil
}

// MustLoad works like Load but panics on failure. Intended for configuration
// the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

// Reset clears the cache so the next Load re-parses the environment.
// Only useful in tests that mutate the process environment.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cache = make(map[string]any)
}

// typeKey returns a string identifier for the generic type T.
func typeKey[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
