package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/constants"
	apperrors "github.com/votewire/autopost/internal/errors"
)

func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	flags := &InitFlags{}
	cmd := newInitCmd(flags)

	assert.Equal(t, "init", cmd.Use)
	assert.Contains(t, cmd.Short, "guided wizard")
	assert.Contains(t, cmd.Long, "config.yaml.backup")

	// Verify --no-interactive flag exists
	noInteractiveFlag := cmd.Flags().Lookup("no-interactive")
	require.NotNil(t, noInteractiveFlag)
	assert.Equal(t, "false", noInteractiveFlag.DefValue)
}

func TestNewInitCmd_Flags(t *testing.T) {
	t.Parallel()

	flags := &InitFlags{}
	cmd := newInitCmd(flags)

	// Verify --global flag exists
	globalFlag := cmd.Flags().Lookup("global")
	require.NotNil(t, globalFlag)
	assert.Equal(t, "false", globalFlag.DefValue)

	// Verify --project flag exists
	projectFlag := cmd.Flags().Lookup("project")
	require.NotNil(t, projectFlag)
	assert.Equal(t, "false", projectFlag.DefValue)
}

func TestInitFlags(t *testing.T) {
	t.Parallel()

	flags := &InitFlags{NoInteractive: true}
	cmd := newInitCmd(flags)

	// Test that flag is properly bound
	err := cmd.Flags().Set("no-interactive", "true")
	require.NoError(t, err)
	assert.True(t, flags.NoInteractive)

	err = cmd.Flags().Set("no-interactive", "false")
	require.NoError(t, err)
	assert.False(t, flags.NoInteractive)
}

func TestAddInitCommand(t *testing.T) {
	t.Parallel()

	rootCmd := newRootCmd(&GlobalFlags{}, BuildInfo{})

	// Verify init command was added by newRootCmd
	initCmd, _, err := rootCmd.Find([]string{"init"})
	require.NoError(t, err)
	assert.Equal(t, "init", initCmd.Use)
}

func TestDisplayInitHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	styles := newInitStyles()

	displayInitHeader(&buf, styles)

	output := buf.String()
	assert.Contains(t, output, "autopost init")
	assert.Contains(t, output, "election news")
}

func TestDisplayToolTable(t *testing.T) {
	t.Parallel()

	result := &config.ToolDetectionResult{
		Tools: []config.Tool{
			{
				Name:           constants.ToolPHP,
				Required:       true,
				CurrentVersion: "8.3.7",
				Status:         config.ToolStatusInstalled,
			},
			{
				Name:           constants.ToolCodex,
				Required:       false,
				CurrentVersion: "0.14.0",
				Status:         config.ToolStatusInstalled,
			},
			{
				Name:     constants.ToolGemini,
				Required: false,
				Status:   config.ToolStatusMissing,
			},
		},
	}

	var buf bytes.Buffer
	styles := newInitStyles()

	displayToolTable(&buf, result, styles)

	output := buf.String()

	// Verify header
	assert.Contains(t, output, "TOOL")
	assert.Contains(t, output, "REQUIRED")
	assert.Contains(t, output, "VERSION")
	assert.Contains(t, output, "STATUS")

	// Verify tools are displayed
	assert.Contains(t, output, "php")
	assert.Contains(t, output, "codex")
	assert.Contains(t, output, "gemini")
	assert.Contains(t, output, "8.3.7")
	assert.Contains(t, output, "0.14.0")

	// php is required, the agent CLIs only matter when selected
	assert.Contains(t, output, "yes")
	assert.Contains(t, output, "if agent")

	// A missing optional tool shows a dash for the version
	assert.Contains(t, output, "-")
	assert.Contains(t, output, "not installed")
}

func TestDisplayToolTable_SkipsUnknownTools(t *testing.T) {
	t.Parallel()

	result := &config.ToolDetectionResult{
		Tools: []config.Tool{
			{Name: "mystery", Status: config.ToolStatusInstalled},
		},
	}

	var buf bytes.Buffer
	styles := newInitStyles()

	displayToolTable(&buf, result, styles)

	assert.NotContains(t, buf.String(), "mystery")
}

func TestFormatToolStatus(t *testing.T) {
	t.Parallel()

	styles := newInitStyles()

	tests := []struct {
		name     string
		tool     config.Tool
		expected string
	}{
		{
			name:     "installed tool",
			tool:     config.Tool{Status: config.ToolStatusInstalled},
			expected: "installed",
		},
		{
			name:     "missing required tool",
			tool:     config.Tool{Required: true, Status: config.ToolStatusMissing},
			expected: "missing",
		},
		{
			name:     "missing optional tool",
			tool:     config.Tool{Status: config.ToolStatusMissing},
			expected: "not installed",
		},
		{
			name:     "outdated tool",
			tool:     config.Tool{Status: config.ToolStatusOutdated, MinVersion: "8.1.0"},
			expected: "outdated (need 8.1.0)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := formatToolStatus(tc.tool, styles)
			assert.Contains(t, result, tc.expected)
		})
	}
}

func TestWarnIfAgentMissing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		agent      string
		tools      []config.Tool
		expectWarn bool
	}{
		{
			name:  "agent CLI installed",
			agent: "codex",
			tools: []config.Tool{
				{Name: constants.ToolCodex, Status: config.ToolStatusInstalled},
			},
			expectWarn: false,
		},
		{
			name:  "agent CLI missing",
			agent: "codex",
			tools: []config.Tool{
				{Name: constants.ToolCodex, Status: config.ToolStatusMissing, InstallHint: "npm install -g @openai/codex"},
			},
			expectWarn: true,
		},
		{
			name:  "agent CLI outdated",
			agent: "gemini",
			tools: []config.Tool{
				{Name: constants.ToolGemini, Status: config.ToolStatusOutdated},
			},
			expectWarn: true,
		},
		{
			name:       "unknown agent",
			agent:      "mystery",
			tools:      []config.Tool{},
			expectWarn: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			styles := newInitStyles()
			result := &config.ToolDetectionResult{Tools: tc.tools}

			warnIfAgentMissing(&buf, result, tc.agent, styles)

			output := buf.String()
			if tc.expectWarn {
				assert.Contains(t, output, tc.agent)
				assert.Contains(t, output, "is not ready")
			} else {
				assert.Empty(t, output)
			}
		})
	}
}

func TestNewFileConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := newFileConfig(config.DefaultConfig())

	// AI section
	assert.Equal(t, constants.DefaultAgent, cfg.AI.Agent)
	assert.Equal(t, "15m", cfg.AI.Timeout)
	assert.Equal(t, constants.MaxGenerateAttempts, cfg.AI.MaxAttempts)
	assert.Equal(t, "30s", cfg.AI.BaseWait)

	// Corpus section keeps both backends until trimInactiveCorpus runs
	assert.Equal(t, constants.CorpusBackendScript.String(), cfg.Corpus.Backend)
	require.NotNil(t, cfg.Corpus.Script)
	require.NotNil(t, cfg.Corpus.DB)
	assert.Equal(t, constants.DefaultPHPBinary, cfg.Corpus.Script.PHPBinary)
	assert.Equal(t, constants.TitlesScriptName, cfg.Corpus.Script.TitlesScript)
	assert.Equal(t, constants.CandidatesScriptName, cfg.Corpus.Script.CandidatesScript)
	assert.Equal(t, "2m", cfg.Corpus.Script.Timeout)
	assert.Equal(t, "30m", cfg.Corpus.DB.ConnMaxLifetime)

	// Publish section
	assert.Equal(t, constants.InsertScriptName, cfg.Publish.InsertScript)
	assert.Equal(t, constants.DefaultPostStatus, cfg.Publish.PostStatus)
	assert.Equal(t, constants.CategoryName, cfg.Publish.CategoryName)

	// Policy section
	assert.Equal(t, constants.DefaultElectionDate, cfg.Policy.ElectionDate)
	assert.Equal(t, constants.DefaultMinSources, cfg.Policy.MinSources)
	assert.Equal(t, constants.DefaultMinConfidence, cfg.Policy.MinConfidence)
	assert.InDelta(t, constants.DefaultSimilarityThreshold, cfg.Policy.SimilarityThreshold, 0.0001)
	assert.Equal(t, constants.MetaTitleMin, cfg.Policy.MetaTitleMin)
	assert.Equal(t, constants.MetaDescriptionMax, cfg.Policy.MetaDescriptionMax)

	// Lock, log, snapshots
	assert.Equal(t, "2h", cfg.Lock.StaleAfter)
	assert.Equal(t, constants.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, constants.DefaultSnapshotKeep, cfg.Snapshots.Keep)
}

func TestTrimInactiveCorpus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		backend      string
		expectScript bool
		expectDB     bool
	}{
		{
			name:         "script backend drops db",
			backend:      constants.CorpusBackendScript.String(),
			expectScript: true,
			expectDB:     false,
		},
		{
			name:         "db backend drops script",
			backend:      constants.CorpusBackendDB.String(),
			expectScript: false,
			expectDB:     true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := newFileConfig(config.DefaultConfig())
			cfg.Corpus.Backend = tc.backend

			trimInactiveCorpus(&cfg)

			assert.Equal(t, tc.expectScript, cfg.Corpus.Script != nil)
			assert.Equal(t, tc.expectDB, cfg.Corpus.DB != nil)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"minutes", 15 * time.Minute, "15m"},
		{"hours", 2 * time.Hour, "2h"},
		{"seconds", 30 * time.Second, "30s"},
		{"minutes and seconds", 90 * time.Second, "1m30s"},
		{"hours and minutes", 2*time.Hour + 30*time.Minute, "2h30m"},
		{"zero", 0, "0s"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, formatDuration(tc.duration))
		})
	}
}

func TestWizardInputValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		validate  func(string) error
		input     string
		expectErr bool
	}{
		{"duration minutes", validateDurationInput, "15m", false},
		{"duration hours", validateDurationInput, "2h", false},
		{"duration with spaces", validateDurationInput, " 30s ", false},
		{"duration not a duration", validateDurationInput, "soon", true},
		{"duration empty", validateDurationInput, "", true},

		{"positive int one", validatePositiveIntInput, "1", false},
		{"positive int large", validatePositiveIntInput, "10", false},
		{"positive int zero", validatePositiveIntInput, "0", true},
		{"positive int negative", validatePositiveIntInput, "-3", true},
		{"positive int not a number", validatePositiveIntInput, "three", true},

		{"confidence low bound", validateConfidenceInput, "0", false},
		{"confidence high bound", validateConfidenceInput, "100", false},
		{"confidence too high", validateConfidenceInput, "101", true},
		{"confidence negative", validateConfidenceInput, "-1", true},
		{"confidence not a number", validateConfidenceInput, "most", true},

		{"date valid", validateDateInput, "2026-03-05", false},
		{"date wrong order", validateDateInput, "05-03-2026", true},
		{"date not a date", validateDateInput, "election day", true},

		{"required present", validateRequiredInput, "value", false},
		{"required empty", validateRequiredInput, "", true},
		{"required whitespace", validateRequiredInput, "   ", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.validate(tc.input)
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestChooseConfigLocation_Flags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flags    *InitFlags
		expected string
	}{
		{
			name:     "project flag",
			flags:    &InitFlags{Project: true},
			expected: locationProject,
		},
		{
			name:     "global flag",
			flags:    &InitFlags{Global: true},
			expected: locationGlobal,
		},
		{
			name:     "non-interactive defaults to global",
			flags:    &InitFlags{NoInteractive: true},
			expected: locationGlobal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			location, err := chooseConfigLocation(context.Background(), tc.flags)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, location)
		})
	}
}

func TestChooseConfigLocation_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chooseConfigLocation(ctx, &InitFlags{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestChooseConfigLocation_Prompt(t *testing.T) {
	original := newWizardForm
	defer func() { newWizardForm = original }()

	// The mock leaves the selection untouched, so the default wins.
	newWizardForm = func(_ ...*huh.Group) formRunner {
		return &mockFormRunner{}
	}

	location, err := chooseConfigLocation(context.Background(), &InitFlags{})
	require.NoError(t, err)
	assert.Equal(t, locationGlobal, location)
}

func TestChooseConfigLocation_PromptAborted(t *testing.T) {
	original := newWizardForm
	defer func() { newWizardForm = original }()

	newWizardForm = func(_ ...*huh.Group) formRunner {
		return &mockFormRunner{runErr: huh.ErrUserAborted}
	}

	_, err := chooseConfigLocation(context.Background(), &InitFlags{})
	require.ErrorIs(t, err, huh.ErrUserAborted)
}

func TestRunInitWizard_AcceptsDefaults(t *testing.T) {
	original := newWizardForm
	defer func() { newWizardForm = original }()

	// Every form runs without touching its values, as if the operator
	// pressed enter through the whole wizard.
	newWizardForm = func(_ ...*huh.Group) formRunner {
		return &mockFormRunner{}
	}

	var buf bytes.Buffer
	styles := newInitStyles()
	cfg := newFileConfig(config.DefaultConfig())

	result, err := runInitWizard(context.Background(), &buf, cfg, styles)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Configuration")
	assert.Equal(t, cfg.AI.Agent, result.AI.Agent)
	assert.Equal(t, cfg.AI.MaxAttempts, result.AI.MaxAttempts)
	assert.Equal(t, cfg.Policy.MinSources, result.Policy.MinSources)
	assert.Equal(t, cfg.Policy.MinConfidence, result.Policy.MinConfidence)
}

func TestRunInitWizard_Aborted(t *testing.T) {
	original := newWizardForm
	defer func() { newWizardForm = original }()

	newWizardForm = func(_ ...*huh.Group) formRunner {
		return &mockFormRunner{runErr: huh.ErrUserAborted}
	}

	var buf bytes.Buffer
	styles := newInitStyles()
	cfg := newFileConfig(config.DefaultConfig())

	_, err := runInitWizard(context.Background(), &buf, cfg, styles)
	require.ErrorIs(t, err, huh.ErrUserAborted)
}

func TestCollectCorpusSettings_DBBackend(t *testing.T) {
	original := newWizardForm
	defer func() { newWizardForm = original }()

	// First form picks the db backend, second fills in the DSN.
	cfg := newFileConfig(config.DefaultConfig())
	forms := 0
	newWizardForm = func(_ ...*huh.Group) formRunner {
		forms++
		switch forms {
		case 1:
			return &mockFormRunner{onRun: func() {
				cfg.Corpus.Backend = constants.CorpusBackendDB.String()
			}}
		default:
			return &mockFormRunner{onRun: func() {
				cfg.Corpus.DB.DSN = "postgres://wp:secret@db:5432/wordpress"
			}}
		}
	}

	err := collectCorpusSettings(context.Background(), &cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, forms)
	assert.Equal(t, constants.CorpusBackendDB.String(), cfg.Corpus.Backend)
	assert.Equal(t, "postgres://wp:secret@db:5432/wordpress", cfg.Corpus.DB.DSN)
}

func TestRenderInitError(t *testing.T) {
	t.Parallel()

	t.Run("user aborted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		styles := newInitStyles()

		err := renderInitError(&buf, styles, huh.ErrUserAborted)
		require.ErrorIs(t, err, huh.ErrUserAborted)
		assert.Contains(t, buf.String(), "Setup canceled")
	})

	t.Run("other error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		styles := newInitStyles()

		err := renderInitError(&buf, styles, apperrors.ErrConfigNil)
		require.ErrorIs(t, err, apperrors.ErrConfigNil)
		assert.Contains(t, buf.String(), "✗")
		assert.Contains(t, buf.String(), apperrors.ErrConfigNil.Error())
	})
}

func TestSaveFileConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), constants.AppHome, constants.ConfigFileName)

	cfg := newFileConfig(config.DefaultConfig())
	trimInactiveCorpus(&cfg)

	err := saveFileConfig(path, cfg)
	require.NoError(t, err)

	assert.FileExists(t, path)

	content, err := os.ReadFile(path) //nolint:gosec // Test file with controlled path
	require.NoError(t, err)

	// Verify header comment
	assert.Contains(t, string(content), "# autopost configuration")
	assert.Contains(t, string(content), "Generated by autopost init")

	// YAML comments are legal, so the file parses as written
	var parsed AutopostConfig
	err = yaml.Unmarshal(content, &parsed)
	require.NoError(t, err)

	assert.Equal(t, cfg.AI.Agent, parsed.AI.Agent)
	assert.Equal(t, cfg.AI.Timeout, parsed.AI.Timeout)
	assert.Equal(t, cfg.Corpus.Backend, parsed.Corpus.Backend)
	assert.Equal(t, cfg.Publish.CategoryName, parsed.Publish.CategoryName)
	assert.Nil(t, parsed.Corpus.DB)
}

func TestSaveFileConfig_CreatesDirectory(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, constants.AppHome)
	path := filepath.Join(dir, constants.ConfigFileName)

	// Verify directory doesn't exist
	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	err = saveFileConfig(path, newFileConfig(config.DefaultConfig()))
	require.NoError(t, err)

	// Verify directory was created with owner-only permissions
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestSaveFileConfig_CreatesBackup(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), constants.ConfigFileName)

	// Create initial config
	initialCfg := newFileConfig(config.DefaultConfig())
	initialCfg.AI.Agent = "codex"
	err := saveFileConfig(path, initialCfg)
	require.NoError(t, err)

	// Save a new config (should create backup)
	newCfg := newFileConfig(config.DefaultConfig())
	newCfg.AI.Agent = "gemini"
	err = saveFileConfig(path, newCfg)
	require.NoError(t, err)

	// Verify new config
	content, err := os.ReadFile(path) //nolint:gosec // Test file
	require.NoError(t, err)
	assert.Contains(t, string(content), "agent: gemini")

	// Verify backup was created with original content
	backupPath := path + ".backup"
	assert.FileExists(t, backupPath)
	backupContent, err := os.ReadFile(backupPath) //nolint:gosec // Test file
	require.NoError(t, err)
	assert.Contains(t, string(backupContent), "agent: codex")
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	// Create source file
	srcPath := filepath.Join(tmpDir, "source.txt")
	srcContent := []byte("test content")
	err := os.WriteFile(srcPath, srcContent, 0o600)
	require.NoError(t, err)

	// Copy to destination
	dstPath := filepath.Join(tmpDir, "dest.txt")
	err = copyFile(srcPath, dstPath)
	require.NoError(t, err)

	// Verify destination content
	dstContent, err := os.ReadFile(dstPath) //nolint:gosec // Test file
	require.NoError(t, err)
	assert.Equal(t, srcContent, dstContent)
}

func TestCopyFile_SourceNotFound(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	err := copyFile(filepath.Join(tmpDir, "nonexistent"), filepath.Join(tmpDir, "dest"))
	require.Error(t, err)
}

func TestWriteConfigFile_Global(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg := newFileConfig(config.DefaultConfig())
	trimInactiveCorpus(&cfg)

	path, err := writeConfigFile(locationGlobal, cfg)
	require.NoError(t, err)

	expected := filepath.Join(tmpDir, constants.AppHome, constants.ConfigFileName)
	assert.Equal(t, expected, path)
	assert.FileExists(t, path)
}

func TestWriteConfigFile_Project(t *testing.T) {
	tmpDir := t.TempDir()

	origDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(origDir)
	}()
	require.NoError(t, os.Chdir(tmpDir))

	cfg := newFileConfig(config.DefaultConfig())
	trimInactiveCorpus(&cfg)

	path, err := writeConfigFile(locationProject, cfg)
	require.NoError(t, err)

	assert.Equal(t, config.ProjectConfigPath(), path)
	assert.FileExists(t, filepath.Join(tmpDir, constants.AppHome, constants.ConfigFileName))
}

func TestDisplayInitSuccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	styles := newInitStyles()

	displayInitSuccess(&buf, styles, "/home/op/.autopost/config.yaml")

	output := buf.String()
	assert.Contains(t, output, "autopost is configured")
	assert.Contains(t, output, "/home/op/.autopost/config.yaml")
	assert.Contains(t, output, "Next steps:")
	assert.Contains(t, output, "autopost doctor")
	assert.Contains(t, output, "autopost run --dry-run")
	assert.Contains(t, output, "autopost config show")
}

func TestNewInitStyles(t *testing.T) {
	t.Parallel()

	styles := newInitStyles()

	// Verify all styles are initialized (non-empty render)
	assert.NotEmpty(t, styles.header.Render("test"))
	assert.NotEmpty(t, styles.installed.Render("test"))
	assert.NotEmpty(t, styles.missing.Render("test"))
	assert.NotEmpty(t, styles.outdated.Render("test"))
	assert.NotEmpty(t, styles.success.Render("test"))
	assert.NotEmpty(t, styles.err.Render("test"))
	assert.NotEmpty(t, styles.info.Render("test"))
	assert.NotEmpty(t, styles.dim.Render("test"))
}

func TestRunInit_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	var buf bytes.Buffer
	flags := &InitFlags{NoInteractive: true}

	err := runInit(ctx, &buf, flags)

	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

// mockToolDetector is a test double for ToolDetector.
type mockToolDetector struct {
	result *config.ToolDetectionResult
	err    error
}

func (m *mockToolDetector) Detect(_ context.Context) (*config.ToolDetectionResult, error) {
	return m.result, m.err
}

// allToolsInstalled is the detection result for a fully provisioned host.
func allToolsInstalled() *config.ToolDetectionResult {
	return &config.ToolDetectionResult{
		HasMissingRequired: false,
		Tools: []config.Tool{
			{Name: constants.ToolPHP, Required: true, Status: config.ToolStatusInstalled, CurrentVersion: "8.3.7"},
			{Name: constants.ToolCodex, Status: config.ToolStatusInstalled, CurrentVersion: "0.14.0"},
			{Name: constants.ToolGemini, Status: config.ToolStatusInstalled, CurrentVersion: "0.9.2"},
		},
	}
}

func TestRunInitWithDetector_NonInteractive_Success(t *testing.T) {
	// Use temp HOME directory
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	detector := &mockToolDetector{result: allToolsInstalled()}

	var buf bytes.Buffer
	flags := &InitFlags{NoInteractive: true}

	err := runInitWithDetector(context.Background(), &buf, flags, detector)
	require.NoError(t, err)

	output := buf.String()

	// Verify header and tool table were displayed
	assert.Contains(t, output, "autopost init")
	assert.Contains(t, output, "php")
	assert.Contains(t, output, "installed")

	// Verify success message
	assert.Contains(t, output, "autopost is configured")

	// Verify config file was created
	configPath := filepath.Join(tmpDir, constants.AppHome, constants.ConfigFileName)
	assert.FileExists(t, configPath)

	// Verify config content: default agent and backend, inactive backend trimmed
	content, err := os.ReadFile(configPath) //nolint:gosec // Test file
	require.NoError(t, err)
	assert.Contains(t, string(content), "agent: codex")
	assert.Contains(t, string(content), "backend: script")
	assert.NotContains(t, string(content), "db:")

	// The written file must load back through the config package
	loaded, err := config.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultAgent, loaded.AI.Agent)
	assert.Equal(t, constants.DefaultGenerateTimeout, loaded.AI.Timeout)
	assert.Equal(t, constants.DefaultLockStaleAfter, loaded.Lock.StaleAfter)
}

func TestRunInitWithDetector_MissingRequiredTools(t *testing.T) {
	t.Parallel()

	// php missing means no helper script can run
	detector := &mockToolDetector{
		result: &config.ToolDetectionResult{
			HasMissingRequired: true,
			Tools: []config.Tool{
				{Name: constants.ToolPHP, Required: true, Status: config.ToolStatusMissing, InstallHint: "Install PHP from your package manager (the helper scripts need the CLI)"},
				{Name: constants.ToolCodex, Status: config.ToolStatusInstalled, CurrentVersion: "0.14.0"},
			},
		},
	}

	var buf bytes.Buffer
	flags := &InitFlags{NoInteractive: true}

	err := runInitWithDetector(context.Background(), &buf, flags, detector)

	require.ErrorIs(t, err, apperrors.ErrMissingRequiredTools)

	output := buf.String()
	assert.Contains(t, output, "Missing required tools")
	assert.Contains(t, output, "run autopost init again")
}

func TestRunInitWithDetector_DetectionError(t *testing.T) {
	t.Parallel()

	detector := &mockToolDetector{
		err: apperrors.ErrCommandFailed,
	}

	var buf bytes.Buffer
	flags := &InitFlags{NoInteractive: true}

	err := runInitWithDetector(context.Background(), &buf, flags, detector)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "detect tools")
}

func TestRunInitWithDetector_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	detector := &mockToolDetector{
		result: &config.ToolDetectionResult{},
	}

	var buf bytes.Buffer
	flags := &InitFlags{NoInteractive: true}

	err := runInitWithDetector(ctx, &buf, flags, detector)

	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

func TestRunInitWithDetector_AgentCLIMissing_StillWrites(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	// php is present so init proceeds; the default agent's CLI is not.
	detector := &mockToolDetector{
		result: &config.ToolDetectionResult{
			HasMissingRequired: false,
			Tools: []config.Tool{
				{Name: constants.ToolPHP, Required: true, Status: config.ToolStatusInstalled, CurrentVersion: "8.3.7"},
				{Name: constants.ToolCodex, Status: config.ToolStatusMissing, InstallHint: "Install Codex CLI: npm install -g @openai/codex"},
				{Name: constants.ToolGemini, Status: config.ToolStatusMissing},
			},
		},
	}

	var buf bytes.Buffer
	flags := &InitFlags{NoInteractive: true}

	err := runInitWithDetector(context.Background(), &buf, flags, detector)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "codex CLI is not ready")
	assert.Contains(t, output, "npm install -g @openai/codex")
	assert.Contains(t, output, "autopost is configured")

	configPath := filepath.Join(tmpDir, constants.AppHome, constants.ConfigFileName)
	assert.FileExists(t, configPath)
}

func TestRunInitWithDetector_GlobalFlag_Success(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	detector := &mockToolDetector{result: allToolsInstalled()}

	var buf bytes.Buffer
	flags := &InitFlags{NoInteractive: true, Global: true}

	err := runInitWithDetector(context.Background(), &buf, flags, detector)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "autopost is configured")

	configPath := filepath.Join(tmpDir, constants.AppHome, constants.ConfigFileName)
	assert.FileExists(t, configPath)
}

func TestRunInitWithDetector_ProjectFlag_Success(t *testing.T) {
	tmpDir := t.TempDir()

	origDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(origDir)
	}()
	require.NoError(t, os.Chdir(tmpDir))

	detector := &mockToolDetector{result: allToolsInstalled()}

	var buf bytes.Buffer
	flags := &InitFlags{NoInteractive: true, Project: true}

	err = runInitWithDetector(context.Background(), &buf, flags, detector)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "autopost is configured")

	// Verify project config was created in the working directory
	configPath := filepath.Join(tmpDir, constants.AppHome, constants.ConfigFileName)
	assert.FileExists(t, configPath)
}

func TestAutopostConfig_YAML_Marshaling(t *testing.T) {
	t.Parallel()

	cfg := newFileConfig(config.DefaultConfig())
	cfg.AI.Model = "gpt-5.2-codex"
	cfg.Corpus.Backend = constants.CorpusBackendDB.String()
	cfg.Corpus.DB.DSN = "postgres://wp:secret@db:5432/wordpress"
	trimInactiveCorpus(&cfg)

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var parsed AutopostConfig
	err = yaml.Unmarshal(data, &parsed)
	require.NoError(t, err)

	assert.Equal(t, cfg, parsed)
}
