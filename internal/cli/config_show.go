// Package cli provides the command-line interface for autopost.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/logging"
	"github.com/votewire/autopost/internal/tui"
)

// AddConfigCommand adds the config command and its subcommands to the root.
func AddConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect autopost configuration",
		Long: `Inspect autopost configuration.

Subcommands:
  show   Display the effective configuration and where each value comes from

Example:
  autopost config show
  autopost -o json config show`,
	}

	cmd.AddCommand(newConfigShowCmd())
	root.AddCommand(cmd)
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration with source annotations.

Every value is labeled with the layer that supplied it:
  default  built-in default value
  global   ~/.autopost/config.yaml
  project  .autopost/config.yaml
  env      AUTOPOST_* environment variable

Database credentials are masked in the output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runConfigShow(cmd.Context(), cmd, cmd.OutOrStdout())
			if err != nil {
				cmd.SilenceErrors = true
			}
			return err
		},
	}
}

// ConfigSource identifies the layer that supplied a configuration value.
type ConfigSource string

const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault ConfigSource = "default"
	// SourceGlobal indicates the value came from the global config file.
	SourceGlobal ConfigSource = "global"
	// SourceProject indicates the value came from the project config file.
	SourceProject ConfigSource = "project"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
)

// ConfigValueWithSource pairs a configuration value with its source layer.
type ConfigValueWithSource struct {
	Value  any          `json:"value"`
	Source ConfigSource `json:"source"`
}

// AnnotatedConfig is the effective configuration with per-key sources.
// Nested corpus keys use dotted names ("script.dir", "db.dsn").
type AnnotatedConfig struct {
	AI        map[string]ConfigValueWithSource `json:"ai"`
	Corpus    map[string]ConfigValueWithSource `json:"corpus"`
	Publish   map[string]ConfigValueWithSource `json:"publish"`
	Policy    map[string]ConfigValueWithSource `json:"policy"`
	Lock      map[string]ConfigValueWithSource `json:"lock"`
	Log       map[string]ConfigValueWithSource `json:"log"`
	Snapshots map[string]ConfigValueWithSource `json:"snapshots"`
}

// configShowStyles holds the lipgloss styles for the config show output.
type configShowStyles struct {
	header    lipgloss.Style
	section   lipgloss.Style
	key       lipgloss.Style
	value     lipgloss.Style
	sourceEnv lipgloss.Style
	sourcePrj lipgloss.Style
	sourceGbl lipgloss.Style
	sourceDef lipgloss.Style
	dim       lipgloss.Style
}

// newConfigShowStyles creates the styles using the shared palette.
func newConfigShowStyles() *configShowStyles {
	return &configShowStyles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(tui.ColorPrimary),
		section:   lipgloss.NewStyle().Bold(true),
		key:       lipgloss.NewStyle().Foreground(tui.ColorPrimary),
		value:     lipgloss.NewStyle(),
		sourceEnv: lipgloss.NewStyle().Foreground(tui.ColorError),
		sourcePrj: lipgloss.NewStyle().Foreground(tui.ColorWarning),
		sourceGbl: lipgloss.NewStyle().Foreground(tui.ColorSuccess),
		sourceDef: lipgloss.NewStyle().Foreground(tui.ColorMuted),
		dim:       lipgloss.NewStyle().Foreground(tui.ColorMuted),
	}
}

// runConfigShow executes the config show command.
func runConfigShow(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	tui.CheckNoColor()
	out := tui.NewOutput(w, outputFormat)

	cfg, err := loadConfig(ctx, cmd, nil)
	if err != nil {
		return reportError(out, err)
	}

	annotated := buildAnnotatedConfig(cfg)

	logger.Debug().
		Str("agent", cfg.AI.Agent).
		Str("backend", cfg.Corpus.Backend).
		Msg("configuration displayed")

	if outputFormat == OutputJSON {
		return out.JSON(annotated)
	}

	displayAnnotatedConfig(w, cfg, annotated)
	return nil
}

// buildAnnotatedConfig labels every effective value with its source layer.
// The DSN is masked here so both renderers show redacted credentials.
func buildAnnotatedConfig(cfg *config.Config) *AnnotatedConfig {
	globalValues := loadConfigFileValues(globalConfigFilePath())
	projectValues := loadConfigFileValues(config.ProjectConfigPath())

	src := func(key string, value any) ConfigValueWithSource {
		return determineSource(key, value, globalValues, projectValues)
	}

	a := &AnnotatedConfig{
		AI:        make(map[string]ConfigValueWithSource),
		Corpus:    make(map[string]ConfigValueWithSource),
		Publish:   make(map[string]ConfigValueWithSource),
		Policy:    make(map[string]ConfigValueWithSource),
		Lock:      make(map[string]ConfigValueWithSource),
		Log:       make(map[string]ConfigValueWithSource),
		Snapshots: make(map[string]ConfigValueWithSource),
	}

	a.AI["agent"] = src("ai.agent", cfg.AI.Agent)
	a.AI["model"] = src("ai.model", cfg.AI.Model)
	a.AI["binary"] = src("ai.binary", cfg.AI.Binary)
	a.AI["working_dir"] = src("ai.working_dir", cfg.AI.WorkingDir)
	a.AI["timeout"] = src("ai.timeout", formatDuration(cfg.AI.Timeout))
	a.AI["max_attempts"] = src("ai.max_attempts", cfg.AI.MaxAttempts)
	a.AI["base_wait"] = src("ai.base_wait", formatDuration(cfg.AI.BaseWait))

	a.Corpus["backend"] = src("corpus.backend", cfg.Corpus.Backend)
	if constants.CorpusBackend(cfg.Corpus.Backend) == constants.CorpusBackendDB {
		a.Corpus["db.dsn"] = src("corpus.db.dsn", logging.RedactDSN(cfg.Corpus.DB.DSN))
		a.Corpus["db.max_open_conns"] = src("corpus.db.max_open_conns", cfg.Corpus.DB.MaxOpenConns)
		a.Corpus["db.max_idle_conns"] = src("corpus.db.max_idle_conns", cfg.Corpus.DB.MaxIdleConns)
		a.Corpus["db.conn_max_lifetime"] = src("corpus.db.conn_max_lifetime", formatDuration(cfg.Corpus.DB.ConnMaxLifetime))
	} else {
		a.Corpus["script.php_binary"] = src("corpus.script.php_binary", cfg.Corpus.Script.PHPBinary)
		a.Corpus["script.dir"] = src("corpus.script.dir", cfg.Corpus.Script.Dir)
		a.Corpus["script.titles_script"] = src("corpus.script.titles_script", cfg.Corpus.Script.TitlesScript)
		a.Corpus["script.candidates_script"] = src("corpus.script.candidates_script", cfg.Corpus.Script.CandidatesScript)
		a.Corpus["script.timeout"] = src("corpus.script.timeout", formatDuration(cfg.Corpus.Script.Timeout))
	}

	a.Publish["php_binary"] = src("publish.php_binary", cfg.Publish.PHPBinary)
	a.Publish["dir"] = src("publish.dir", cfg.Publish.Dir)
	a.Publish["insert_script"] = src("publish.insert_script", cfg.Publish.InsertScript)
	a.Publish["timeout"] = src("publish.timeout", formatDuration(cfg.Publish.Timeout))
	a.Publish["post_status"] = src("publish.post_status", cfg.Publish.PostStatus)
	a.Publish["category_name"] = src("publish.category_name", cfg.Publish.CategoryName)

	a.Policy["topic"] = src("policy.topic", cfg.Policy.Topic)
	a.Policy["election_date"] = src("policy.election_date", cfg.Policy.ElectionDate)
	a.Policy["min_sources"] = src("policy.min_sources", cfg.Policy.MinSources)
	a.Policy["min_confidence"] = src("policy.min_confidence", cfg.Policy.MinConfidence)
	a.Policy["similarity_threshold"] = src("policy.similarity_threshold", cfg.Policy.SimilarityThreshold)
	a.Policy["keyphrase"] = src("policy.keyphrase", cfg.Policy.Keyphrase)
	a.Policy["meta_title_min"] = src("policy.meta_title_min", cfg.Policy.MetaTitleMin)
	a.Policy["meta_title_max"] = src("policy.meta_title_max", cfg.Policy.MetaTitleMax)
	a.Policy["meta_description_min"] = src("policy.meta_description_min", cfg.Policy.MetaDescriptionMin)
	a.Policy["meta_description_max"] = src("policy.meta_description_max", cfg.Policy.MetaDescriptionMax)

	a.Lock["path"] = src("lock.path", cfg.Lock.Path)
	a.Lock["stale_after"] = src("lock.stale_after", formatDuration(cfg.Lock.StaleAfter))

	a.Log["file"] = src("log.file", cfg.Log.File)
	a.Log["level"] = src("log.level", cfg.Log.Level)
	a.Log["max_size_mb"] = src("log.max_size_mb", cfg.Log.MaxSizeMB)
	a.Log["max_backups"] = src("log.max_backups", cfg.Log.MaxBackups)
	a.Log["max_age_days"] = src("log.max_age_days", cfg.Log.MaxAgeDays)
	a.Log["compress"] = src("log.compress", cfg.Log.Compress)

	a.Snapshots["dir"] = src("snapshots.dir", cfg.Snapshots.Dir)
	a.Snapshots["keep"] = src("snapshots.keep", cfg.Snapshots.Keep)

	return a
}

// configFileValues maps flattened dotted keys ("corpus.script.dir") to the
// raw values found in one config file.
type configFileValues map[string]any

// loadConfigFileValues reads one config file into flattened keys. A missing
// or unreadable file yields nil, which determineSource treats as absent.
func loadConfigFileValues(path string) configFileValues {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // Config file path
	if err != nil {
		return nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}

	values := make(configFileValues)
	flattenConfigValues("", raw, values)
	return values
}

// flattenConfigValues walks nested maps, recording leaves under dotted keys.
func flattenConfigValues(prefix string, node map[string]any, into configFileValues) {
	for key, value := range node {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			flattenConfigValues(fullKey, child, into)
			continue
		}
		into[fullKey] = value
	}
}

// globalConfigFilePath returns the global config path, or empty when the
// home directory cannot be resolved.
func globalConfigFilePath() string {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return ""
	}
	return path
}

// determineSource reports which layer supplied the key, mirroring the
// loader's precedence: env over project over global over defaults.
func determineSource(key string, value any, globalValues, projectValues configFileValues) ConfigValueWithSource {
	envKey := "AUTOPOST_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if os.Getenv(envKey) != "" {
		return ConfigValueWithSource{Value: value, Source: SourceEnv}
	}

	if _, ok := projectValues[key]; ok {
		return ConfigValueWithSource{Value: value, Source: SourceProject}
	}

	if _, ok := globalValues[key]; ok {
		return ConfigValueWithSource{Value: value, Source: SourceGlobal}
	}

	return ConfigValueWithSource{Value: value, Source: SourceDefault}
}

// displayAnnotatedConfig renders the configuration as annotated YAML-like
// text.
func displayAnnotatedConfig(w io.Writer, cfg *config.Config, annotated *AnnotatedConfig) {
	styles := newConfigShowStyles()

	_, _ = fmt.Fprintln(w, styles.header.Render("Effective autopost configuration"))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.dim.Render("Sources: ")+
		styles.sourceEnv.Render("env")+" > "+
		styles.sourcePrj.Render("project")+" > "+
		styles.sourceGbl.Render("global")+" > "+
		styles.sourceDef.Render("default"))
	_, _ = fmt.Fprintln(w)

	displayConfigSection(w, styles, "ai", annotated.AI,
		"agent", "model", "binary", "working_dir", "timeout", "max_attempts", "base_wait")
	displayConfigSection(w, styles, "corpus", annotated.Corpus,
		"backend",
		"script.php_binary", "script.dir", "script.titles_script", "script.candidates_script", "script.timeout",
		"db.dsn", "db.max_open_conns", "db.max_idle_conns", "db.conn_max_lifetime")
	displayConfigSection(w, styles, "publish", annotated.Publish,
		"php_binary", "dir", "insert_script", "timeout", "post_status", "category_name")
	displayConfigSection(w, styles, "policy", annotated.Policy,
		"topic", "election_date", "min_sources", "min_confidence", "similarity_threshold", "keyphrase",
		"meta_title_min", "meta_title_max", "meta_description_min", "meta_description_max")
	displayConfigSection(w, styles, "lock", annotated.Lock, "path", "stale_after")
	displayConfigSection(w, styles, "log", annotated.Log,
		"file", "level", "max_size_mb", "max_backups", "max_age_days", "compress")
	displayConfigSection(w, styles, "snapshots", annotated.Snapshots, "dir", "keep")

	displayConfigFiles(w, styles)
	displayResolvedPaths(w, styles, cfg)
}

// displayConfigSection prints one section's keys in a fixed order, skipping
// keys the active backend left out.
func displayConfigSection(w io.Writer, styles *configShowStyles, name string, values map[string]ConfigValueWithSource, keys ...string) {
	_, _ = fmt.Fprintln(w, styles.section.Render(name+":"))
	for _, key := range keys {
		vs, ok := values[key]
		if !ok {
			continue
		}
		printConfigValue(w, styles, "  "+key, vs)
	}
	_, _ = fmt.Fprintln(w)
}

// printConfigValue prints one value with its source annotation.
func printConfigValue(w io.Writer, styles *configShowStyles, key string, vs ConfigValueWithSource) {
	_, _ = fmt.Fprintf(w, "%s: %s  %s\n",
		styles.key.Render(key),
		styles.value.Render(formatConfigValue(vs.Value)),
		sourceStyle(vs.Source, styles).Render("# "+string(vs.Source)))
}

// formatConfigValue converts a configuration value to a displayable string.
func formatConfigValue(value any) string {
	if s, ok := value.(string); ok {
		if s == "" {
			return "(not set)"
		}
		return s
	}
	return fmt.Sprintf("%v", value)
}

// sourceStyle returns the style matching a config source.
func sourceStyle(source ConfigSource, styles *configShowStyles) lipgloss.Style {
	switch source {
	case SourceEnv:
		return styles.sourceEnv
	case SourceProject:
		return styles.sourcePrj
	case SourceGlobal:
		return styles.sourceGbl
	case SourceDefault:
		return styles.sourceDef
	default:
		return styles.sourceDef
	}
}

// displayConfigFiles lists the config files the loader consulted.
func displayConfigFiles(w io.Writer, styles *configShowStyles) {
	_, _ = fmt.Fprintln(w, styles.dim.Render("Configuration files:"))

	if globalPath, err := config.GlobalConfigPath(); err == nil {
		if _, statErr := os.Stat(globalPath); statErr == nil {
			_, _ = fmt.Fprintln(w, styles.dim.Render("  global:  ")+styles.sourceGbl.Render(globalPath))
		} else {
			_, _ = fmt.Fprintln(w, styles.dim.Render("  global:  "+globalPath+" (not found)"))
		}
	}

	projectPath := config.ProjectConfigPath()
	if _, err := os.Stat(projectPath); err == nil {
		absPath, absErr := filepath.Abs(projectPath)
		if absErr != nil {
			absPath = projectPath
		}
		_, _ = fmt.Fprintln(w, styles.dim.Render("  project: ")+styles.sourcePrj.Render(absPath))
	} else {
		_, _ = fmt.Fprintln(w, styles.dim.Render("  project: "+projectPath+" (not found)"))
	}
	_, _ = fmt.Fprintln(w)
}

// displayResolvedPaths shows where the empty-means-default paths land.
func displayResolvedPaths(w io.Writer, styles *configShowStyles, cfg *config.Config) {
	_, _ = fmt.Fprintln(w, styles.dim.Render("Resolved paths:"))

	if lockPath, err := cfg.Lock.ResolvePath(); err == nil {
		_, _ = fmt.Fprintln(w, styles.dim.Render("  lock file: "+lockPath))
	}
	if logFile, err := cfg.Log.ResolveFile(); err == nil {
		_, _ = fmt.Fprintln(w, styles.dim.Render("  log file:  "+logFile))
	}
	if snapDir, err := cfg.Snapshots.ResolveDir(); err == nil {
		_, _ = fmt.Fprintln(w, styles.dim.Render("  snapshots: "+snapDir))
	}
}
