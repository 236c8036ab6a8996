package coro

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDefaults(t *testing.T) {
	c, err := resolveConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxProcs, c.maxProcs)
	assert.Equal(t, DefaultStackSize, c.stackSize)
	assert.Equal(t, defaultIdleSleep, c.idleSleep)
	assert.NotNil(t, c.logger)
}

func TestResolveConfigExplicitOptionsOverrideDefaults(t *testing.T) {
	var buf bytes.Buffer
	c, err := resolveConfig([]SchedulerOption{
		WithMaxProcs(8),
		WithStackSize(2048),
		WithIdleSleep(5 * time.Millisecond),
		WithSchedulerLog(&buf),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, c.maxProcs)
	assert.Equal(t, 2048, c.stackSize)
	assert.Equal(t, 5*time.Millisecond, c.idleSleep)
	assert.Same(t, &buf, c.schedLog)
}

func TestResolveConfigEnvFallbackIsOverriddenByExplicitOption(t *testing.T) {
	t.Setenv("COMAXPROCS", "2")
	c, err := resolveConfig([]SchedulerOption{WithMaxProcs(6)})
	require.NoError(t, err)
	assert.Equal(t, 6, c.maxProcs, "an explicit option always wins over the environment default")
}

func TestResolveConfigEnvFallbackUsedWhenNoOption(t *testing.T) {
	t.Setenv("COMAXPROCS", "3")
	c, err := resolveConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.maxProcs)
}

func TestResolveConfigRejectsInvalidCOMAXPROCS(t *testing.T) {
	t.Setenv("COMAXPROCS", "not-a-number")
	_, err := resolveConfig(nil)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestResolveConfigRejectsNonPositiveMaxProcs(t *testing.T) {
	_, err := resolveConfig([]SchedulerOption{WithMaxProcs(0)})
	require.Error(t, err)
}

func TestResolveConfigRejectsNonPositiveStackSize(t *testing.T) {
	_, err := resolveConfig([]SchedulerOption{WithStackSize(-1)})
	require.Error(t, err)
}

func TestResolveConfigSchedLogEnvVar(t *testing.T) {
	t.Setenv("CO_SCHED_LOG", "1")
	c, err := resolveConfig(nil)
	require.NoError(t, err)
	assert.NotNil(t, c.schedLog)
}
