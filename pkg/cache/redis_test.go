package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/school-core/pkg/config"
)

func TestOptionalDisabled(t *testing.T) {
	cfg := &config.Config{Cache: config.CacheConfig{Enabled: false}}
	assert.Nil(t, Optional(cfg, zap.NewNop()))
}

func TestOptionalUnreachable(t *testing.T) {
	cfg := &config.Config{
		Cache: config.CacheConfig{Enabled: true},
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: 1},
	}
	assert.Nil(t, Optional(cfg, zap.NewNop()))
}
