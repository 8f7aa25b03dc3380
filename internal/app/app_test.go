package app

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/packrig/internal/hcl"
)

// setupProject writes a plan plus a fake bundler into a temp dir and returns
// the plan path. The fake bundler produces the expected artifact.
func setupProject(t *testing.T, planText string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake bundler script is POSIX shell")
	}

	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.hcl")
	require.NoError(t, os.WriteFile(planPath, []byte(planText), 0o600))

	script := "#!/bin/sh\nmkdir -p dist\ntouch dist/Dashboard\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake-bundler.sh"), []byte(script), 0o755))

	return planPath
}

const basicPlan = `
	bundle "dashboard" {
		entry       = "run_app.py"
		output_name = "Dashboard"
	}

	bundler {
		command = "./fake-bundler.sh"
	}

	launch {
		enabled       = false
		kill_previous = false
	}
`

func TestNewApp_PanicsOnBadPlan(t *testing.T) {
	t.Parallel()

	appConfig, err := NewConfig(Config{PlanPath: filepath.Join(t.TempDir(), "missing.hcl")})
	require.NoError(t, err)

	assert.Panics(t, func() {
		NewApp(&SafeBuffer{}, appConfig, hcl.NewLoader())
	})
}

func TestRun_SingleBuild(t *testing.T) {
	t.Parallel()

	planPath := setupProject(t, basicPlan)
	appConfig, err := NewConfig(Config{PlanPath: planPath, LogFormat: "text", LogLevel: "debug"})
	require.NoError(t, err)

	out := &SafeBuffer{}
	a := NewApp(out, appConfig, hcl.NewLoader())
	require.NoError(t, a.Run(context.Background()))

	assert.FileExists(t, a.Plan().ArtifactPath())

	last := a.lastRun()
	require.NotNil(t, last)
	assert.True(t, last.OK())
}

func TestRun_BuildFailurePropagates(t *testing.T) {
	t.Parallel()

	planPath := setupProject(t, basicPlan)
	require.NoError(t, os.WriteFile(
		filepath.Join(filepath.Dir(planPath), "fake-bundler.sh"),
		[]byte("#!/bin/sh\nexit 2\n"), 0o755))

	appConfig, err := NewConfig(Config{PlanPath: planPath})
	require.NoError(t, err)

	a := NewApp(&SafeBuffer{}, appConfig, hcl.NewLoader())
	err = a.Run(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "build failed")
	assert.ErrorContains(t, err, "exited with code 2")
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	planPath := setupProject(t, basicPlan)
	appConfig, err := NewConfig(Config{PlanPath: planPath, DryRun: true})
	require.NoError(t, err)

	out := &SafeBuffer{}
	a := NewApp(out, appConfig, hcl.NewLoader())
	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "./fake-bundler.sh")
	assert.Contains(t, out.String(), "--name Dashboard")
	assert.NoFileExists(t, a.Plan().ArtifactPath(), "dry-run must not build anything")
}

func TestStatusHandler(t *testing.T) {
	t.Parallel()

	planPath := setupProject(t, basicPlan)
	appConfig, err := NewConfig(Config{PlanPath: planPath})
	require.NoError(t, err)
	a := NewApp(&SafeBuffer{}, appConfig, hcl.NewLoader())

	t.Run("idle before any run", func(t *testing.T) {
		rec := httptest.NewRecorder()
		a.statusHandler(rec, httptest.NewRequest("GET", "/status", nil))

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "idle", payload["state"])
	})

	t.Run("reports the last run", func(t *testing.T) {
		require.NoError(t, a.Run(context.Background()))

		rec := httptest.NewRecorder()
		a.statusHandler(rec, httptest.NewRequest("GET", "/status", nil))

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "ok", payload["state"])
		assert.Equal(t, "dashboard", payload["bundle"])
		assert.NotEmpty(t, payload["run_id"])
	})
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	planPath := setupProject(t, basicPlan)
	appConfig, err := NewConfig(Config{PlanPath: planPath})
	require.NoError(t, err)
	a := NewApp(&SafeBuffer{}, appConfig, hcl.NewLoader())

	rec := httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "OK")
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	t.Run("plan path is required", func(t *testing.T) {
		_, err := NewConfig(Config{})
		assert.ErrorContains(t, err, "PlanPath is a required configuration field")
	})

	t.Run("dry-run and watch are exclusive", func(t *testing.T) {
		_, err := NewConfig(Config{PlanPath: "plan.hcl", DryRun: true, Watch: true})
		assert.ErrorContains(t, err, "mutually exclusive")
	})
}
