package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dupescan/internal/structures"
)

// nopLogger avoids an import cycle with testutil in this package's tests.
type nopLogger struct{}

func (nopLogger) Errorf(TypeEnum, string, ...interface{}) {}
func (nopLogger) Warnf(TypeEnum, string, ...interface{})  {}
func (nopLogger) Infof(TypeEnum, string, ...interface{})  {}
func (nopLogger) Debugf(TypeEnum, string, ...interface{}) {}
func (nopLogger) Fatalf(TypeEnum, string, ...interface{}) {}
func (nopLogger) Close()                                  {}

func cacheConfig(enabled bool, sizeMB int) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{Enabled: enabled, Size: sizeMB},
	}
}

func TestCacheProvider_SetAndGet(t *testing.T) {
	cache := NewCacheProvider(cacheConfig(true, 1), nopLogger{})

	cache.Set("/v/a.mp4@50.000", []byte("jpeg"))
	val, ok := cache.Get("/v/a.mp4@50.000")
	assert.True(t, ok)
	assert.Equal(t, []byte("jpeg"), val)

	_, ok = cache.Get("/missing")
	assert.False(t, ok)
}

func TestCacheProvider_DisabledIsNoop(t *testing.T) {
	cache := NewCacheProvider(cacheConfig(false, 1), nopLogger{})

	cache.Set("key", []byte("value"))
	_, ok := cache.Get("key")
	assert.False(t, ok)
}

func TestCacheProvider_ZeroSizeIsNoop(t *testing.T) {
	cache := NewCacheProvider(cacheConfig(true, 0), nopLogger{})

	cache.Set("key", []byte("value"))
	_, ok := cache.Get("key")
	assert.False(t, ok)
}
