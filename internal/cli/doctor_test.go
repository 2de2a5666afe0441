package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/constants"
)

func TestAddDoctorCommand(t *testing.T) {
	t.Parallel()

	rootCmd := newRootCmd(&GlobalFlags{}, BuildInfo{})

	doctorCmd, _, err := rootCmd.Find([]string{"doctor"})
	require.NoError(t, err)
	assert.Equal(t, "doctor", doctorCmd.Name())
	assert.Contains(t, doctorCmd.Short, "unattended runs")
}

func TestGradeTool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		tool           config.Tool
		agentTool      string
		expectedStatus string
		expectedDetail string
	}{
		{
			name: "required tool installed",
			tool: config.Tool{
				Name:           constants.ToolPHP,
				Required:       true,
				Status:         config.ToolStatusInstalled,
				CurrentVersion: "8.3.7",
			},
			agentTool:      constants.ToolCodex,
			expectedStatus: checkOK,
			expectedDetail: "8.3.7",
		},
		{
			name: "agent tool installed",
			tool: config.Tool{
				Name:           constants.ToolCodex,
				Status:         config.ToolStatusInstalled,
				CurrentVersion: "0.14.0",
			},
			agentTool:      constants.ToolCodex,
			expectedStatus: checkOK,
			expectedDetail: "0.14.0",
		},
		{
			name: "inactive agent tool installed",
			tool: config.Tool{
				Name:           constants.ToolGemini,
				Status:         config.ToolStatusInstalled,
				CurrentVersion: "0.9.2",
			},
			agentTool:      constants.ToolCodex,
			expectedStatus: checkOK,
			expectedDetail: "0.9.2 (optional)",
		},
		{
			name: "required tool missing",
			tool: config.Tool{
				Name:        constants.ToolPHP,
				Required:    true,
				Status:      config.ToolStatusMissing,
				InstallHint: "apt install php-cli",
			},
			agentTool:      constants.ToolCodex,
			expectedStatus: checkFail,
			expectedDetail: "not installed; apt install php-cli",
		},
		{
			name: "agent tool missing",
			tool: config.Tool{
				Name:        constants.ToolCodex,
				Status:      config.ToolStatusMissing,
				InstallHint: "npm install -g @openai/codex",
			},
			agentTool:      constants.ToolCodex,
			expectedStatus: checkFail,
			expectedDetail: "not installed; npm install -g @openai/codex",
		},
		{
			name: "inactive agent tool missing",
			tool: config.Tool{
				Name:   constants.ToolGemini,
				Status: config.ToolStatusMissing,
			},
			agentTool:      constants.ToolCodex,
			expectedStatus: checkOK,
			expectedDetail: "not installed (optional)",
		},
		{
			name: "required tool outdated",
			tool: config.Tool{
				Name:           constants.ToolPHP,
				Required:       true,
				Status:         config.ToolStatusOutdated,
				CurrentVersion: "7.4.0",
				MinVersion:     "8.1.0",
			},
			agentTool:      constants.ToolCodex,
			expectedStatus: checkFail,
			expectedDetail: "have 7.4.0, need 8.1.0",
		},
		{
			name: "inactive agent tool outdated",
			tool: config.Tool{
				Name:           constants.ToolGemini,
				Status:         config.ToolStatusOutdated,
				CurrentVersion: "0.1.0",
				MinVersion:     "0.5.0",
			},
			agentTool:      constants.ToolCodex,
			expectedStatus: checkWarn,
			expectedDetail: "have 0.1.0, need 0.5.0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			check := gradeTool(tc.tool, tc.agentTool)
			assert.Equal(t, tc.tool.Name, check.Name)
			assert.Equal(t, tc.expectedStatus, check.Status)
			assert.Equal(t, tc.expectedDetail, check.Detail)
		})
	}
}

func TestCheckWritableDir(t *testing.T) {
	t.Parallel()

	t.Run("existing directory", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, checkWritableDir(t.TempDir()))
	})

	t.Run("creates missing directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "snapshots")
		require.NoError(t, checkWritableDir(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("path blocked by a file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

		require.Error(t, checkWritableDir(filepath.Join(file, "sub")))
	})
}

func TestProbeSnapshotsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Snapshots.Dir = dir

	check := probeSnapshotsDir(cfg)
	assert.Equal(t, "snapshots", check.Name)
	assert.Equal(t, checkOK, check.Status)
	assert.Equal(t, dir, check.Detail)
}

func TestProbeLogDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Log.File = filepath.Join(dir, "logs", "autopost.log")

	check := probeLogDir(cfg)
	assert.Equal(t, "logs", check.Name)
	assert.Equal(t, checkOK, check.Status)
	assert.Equal(t, filepath.Join(dir, "logs"), check.Detail)
}

func TestProbeLock(t *testing.T) {
	t.Parallel()

	t.Run("no marker", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Lock.Path = filepath.Join(t.TempDir(), "autopost.lock")

		check := probeLock(cfg)
		assert.Equal(t, checkOK, check.Status)
		assert.Equal(t, "no active run", check.Detail)
	})

	t.Run("fresh marker", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "autopost.lock")
		require.NoError(t, os.WriteFile(path, []byte("pid=999 run=abc\n"), 0o600))

		cfg := config.DefaultConfig()
		cfg.Lock.Path = path

		check := probeLock(cfg)
		assert.Equal(t, checkWarn, check.Status)
		assert.Contains(t, check.Detail, "held by an active run")
	})

	t.Run("stale marker", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "autopost.lock")
		require.NoError(t, os.WriteFile(path, []byte("pid=999 run=abc\n"), 0o600))
		old := time.Now().Add(-3 * time.Hour)
		require.NoError(t, os.Chtimes(path, old, old))

		cfg := config.DefaultConfig()
		cfg.Lock.Path = path

		check := probeLock(cfg)
		assert.Equal(t, checkWarn, check.Status)
		assert.Contains(t, check.Detail, "stale marker")
	})
}

func TestDisplayDoctorReport_Text(t *testing.T) {
	t.Parallel()

	checks := []doctorCheck{
		{Name: "config", Status: checkOK, Detail: "loaded (defaults only)"},
		{Name: "lock", Status: checkOK, Detail: "no active run"},
	}

	out := &recordingOutput{}
	require.NoError(t, displayDoctorReport(out, OutputText, checks, 0))

	assert.Equal(t, []string{"CHECK", "STATUS", "DETAIL"}, out.tableHeaders)
	require.Len(t, out.tableRows, 2)
	assert.Equal(t, []string{"config", "ok", "loaded (defaults only)"}, out.tableRows[0])

	require.Len(t, out.successes, 1)
	assert.Contains(t, out.successes[0], "ready")
	assert.Empty(t, out.errors)
}

func TestDisplayDoctorReport_TextFailed(t *testing.T) {
	t.Parallel()

	checks := []doctorCheck{
		{Name: "config", Status: checkOK},
		{Name: "corpus", Status: checkFail, Detail: "helper script missing"},
	}

	out := &recordingOutput{}
	require.NoError(t, displayDoctorReport(out, OutputText, checks, 1))

	require.Len(t, out.errors, 1)
	assert.Contains(t, out.errors[0], "1 of 2 checks failed")
	assert.Empty(t, out.successes)
}

func TestDisplayDoctorReport_JSON(t *testing.T) {
	t.Parallel()

	checks := []doctorCheck{
		{Name: "publish", Status: checkFail, Detail: "wp_insert_post.php not found"},
	}

	out := &recordingOutput{}
	require.NoError(t, displayDoctorReport(out, OutputJSON, checks, 1))

	require.Len(t, out.jsonVals, 1)
	assert.Equal(t, doctorResponse{Healthy: false, Checks: checks}, out.jsonVals[0])
}

func TestDescribeConfigSources(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	workDir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workDir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	assert.Equal(t, "defaults only", describeConfigSources())

	globalDir := filepath.Join(tmp, constants.AppHome)
	require.NoError(t, os.MkdirAll(globalDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, constants.ConfigFileName), []byte("ai:\n  agent: codex\n"), 0o600))
	assert.Equal(t, "global", describeConfigSources())

	projectDir := filepath.Join(workDir, constants.AppHome)
	require.NoError(t, os.MkdirAll(projectDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, constants.ConfigFileName), []byte("ai:\n  agent: gemini\n"), 0o600))
	assert.Equal(t, "global, project", describeConfigSources())
}

func TestRunDoctor_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := &cobra.Command{Use: "doctor"}
	cmd.Flags().String("output", OutputText, "")

	var buf bytes.Buffer
	err := runDoctor(ctx, cmd, &buf)
	require.ErrorIs(t, err, context.Canceled)
}
