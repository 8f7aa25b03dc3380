package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PositionalPlanPath(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	config, shouldExit, err := Parse([]string{"project/plan.hcl"}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "project/plan.hcl", config.PlanPath)
	assert.Equal(t, "text", config.LogFormat)
	assert.Equal(t, "info", config.LogLevel)
	assert.False(t, config.DryRun)
}

func TestParse_PlanFlagWinsOverPositional(t *testing.T) {
	t.Parallel()

	config, _, err := Parse([]string{"-plan", "a.hcl", "b.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", config.PlanPath)

	config, _, err = Parse([]string{"-p", "short.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "short.hcl", config.PlanPath)
}

func TestParse_AllOptions(t *testing.T) {
	t.Parallel()

	config, shouldExit, err := Parse([]string{
		"-log-format", "json",
		"-log-level", "debug",
		"-status-port", "8080",
		"-skip-launch",
		"-watch",
		"plan.hcl",
	}, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, 8080, config.StatusPort)
	assert.True(t, config.SkipLaunch)
	assert.True(t, config.Watch)
}

func TestParse_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, shouldExit, err := Parse([]string{}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid log format", func(t *testing.T) {
		_, _, err := Parse([]string{"-log-format", "xml", "plan.hcl"}, &bytes.Buffer{})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
		assert.Contains(t, exitErr.Message, "invalid log-format")
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, _, err := Parse([]string{"-log-level", "loud", "plan.hcl"}, &bytes.Buffer{})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "invalid log-level")
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, _, err := Parse([]string{"--not-a-flag"}, &bytes.Buffer{})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("dry-run with watch", func(t *testing.T) {
		_, _, err := Parse([]string{"-dry-run", "-watch", "plan.hcl"}, &bytes.Buffer{})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "mutually exclusive")
	})
}
