package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/platform/config"
)

func TestNewWithoutURLKeepsLimitsInProcess(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "http://cache:6379"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse REDIS_URL")
}
