package util_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/util"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("IAO_TEST_STRING", "value")
	t.Setenv("IAO_TEST_INT", "42")
	t.Setenv("IAO_TEST_BAD_INT", "forty-two")
	t.Setenv("IAO_TEST_BOOL", "true")
	t.Setenv("IAO_TEST_DURATION", "1500ms")
	t.Setenv("IAO_TEST_SECONDS", "3")
	t.Setenv("IAO_TEST_ARR", " http://a:8899 , ,http://b:8899")

	assert.Equal(t, "value", util.GetEnv("IAO_TEST_STRING", "default"))
	assert.Equal(t, "default", util.GetEnv("IAO_TEST_UNSET", "default"))
	assert.Equal(t, 42, util.GetEnvAsInt("IAO_TEST_INT", 1))
	assert.Equal(t, 1, util.GetEnvAsInt("IAO_TEST_BAD_INT", 1))
	assert.True(t, util.GetEnvAsBool("IAO_TEST_BOOL", false))
	assert.Equal(t, 1500*time.Millisecond, util.GetEnvAsDuration("IAO_TEST_DURATION", time.Second))
	assert.Equal(t, 3*time.Second, util.GetEnvAsDuration("IAO_TEST_SECONDS", time.Second))
	assert.Equal(t, time.Second, util.GetEnvAsDuration("IAO_TEST_UNSET", time.Second))
	assert.Equal(t, []string{"http://a:8899", "http://b:8899"}, util.GetEnvAsStringArr("IAO_TEST_ARR", nil))
	assert.Equal(t, []string{"x"}, util.GetEnvAsStringArr("IAO_TEST_UNSET", []string{"x"}))
}

func TestIsStructInitialized(t *testing.T) {
	type components struct {
		Name    string
		Ptr     *int
		Skipped *int `wire:"-"`
		private *int
	}

	n := 1
	require.NoError(t, util.IsStructInitialized(&components{Ptr: &n}))

	err := util.IsStructInitialized(&components{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ptr")

	require.Error(t, util.IsStructInitialized((*components)(nil)))
	require.Error(t, util.IsStructInitialized(42))
}

func TestLogFromContext(t *testing.T) {
	ctx := context.Background()
	l := util.LogFromContext(ctx)
	require.NotNil(t, l)
	assert.NotEqual(t, zerolog.Disabled, l.GetLevel())

	disabled := zerolog.Nop()
	ctx = util.DisableLogger(disabled.WithContext(ctx), true)
	assert.Equal(t, zerolog.Disabled, util.LogFromContext(ctx).GetLevel())
}
