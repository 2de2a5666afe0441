// Package cli provides the command-line interface for autopost.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// shellType identifies a login shell we can install completions for.
type shellType string

const (
	shellZsh     shellType = "zsh"
	shellBash    shellType = "bash"
	shellFish    shellType = "fish"
	shellUnknown shellType = "unknown"
)

// Sentinel errors for completion commands.
var (
	errUnsupportedShell = errors.New("unsupported shell (supported: zsh, bash, fish)")
	errNoShellDetected  = errors.New("could not detect shell from $SHELL environment variable; use --shell flag")
)

// completionTarget describes where one shell keeps its completion script
// and how to regenerate it.
type completionTarget struct {
	dir      []string // script directory, relative to $HOME
	file     string
	rc       []string // startup file, relative to $HOME
	gen      func(root *cobra.Command, w io.Writer) error
	updateRC func(home, completionsDir string) (bool, error) // nil when the shell auto-loads the directory
}

// completionTargets holds the install recipe per supported shell.
//
//nolint:gochecknoglobals // static lookup table
var completionTargets = map[shellType]completionTarget{
	shellZsh: {
		dir:  []string{".zsh", "completions"},
		file: "_autopost",
		rc:   []string{".zshrc"},
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenZshCompletion(w)
		},
		updateRC: updateZshRC,
	},
	shellBash: {
		dir:  []string{".bash_completion.d"},
		file: "autopost",
		rc:   []string{".bashrc"},
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenBashCompletion(w)
		},
		updateRC: updateBashRC,
	},
	shellFish: {
		dir:  []string{".config", "fish", "completions"},
		file: "autopost.fish",
		rc:   []string{".config", "fish", "config.fish"},
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenFishCompletion(w, true)
		},
	},
}

// AddCompletionCommand replaces Cobra's default completion command with a
// custom one that adds an "install" subcommand for one-step setup.
func AddCompletionCommand(rootCmd *cobra.Command) {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	completionCmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for autopost.

To install completions automatically:
  autopost completion install

To generate completion scripts manually:
  autopost completion bash
  autopost completion zsh
  autopost completion fish
  autopost completion powershell`,
	}

	for _, sub := range scriptCommands() {
		completionCmd.AddCommand(sub)
	}
	completionCmd.AddCommand(newInstallCompletionCmd())

	rootCmd.AddCommand(completionCmd)
}

// scriptCommands builds the manual generation subcommands, one per shell
// cobra can emit a script for.
func scriptCommands() []*cobra.Command {
	specs := []struct {
		use     string
		load    string
		install bool
		gen     func(root *cobra.Command, w io.Writer) error
	}{
		{
			use:     "bash",
			load:    "source <(autopost completion bash)",
			install: true,
			gen: func(root *cobra.Command, w io.Writer) error {
				return root.GenBashCompletion(w)
			},
		},
		{
			use:     "zsh",
			load:    "source <(autopost completion zsh)",
			install: true,
			gen: func(root *cobra.Command, w io.Writer) error {
				return root.GenZshCompletion(w)
			},
		},
		{
			use:     "fish",
			load:    "autopost completion fish | source",
			install: true,
			gen: func(root *cobra.Command, w io.Writer) error {
				return root.GenFishCompletion(w, true)
			},
		},
		{
			use:  "powershell",
			load: "autopost completion powershell | Out-String | Invoke-Expression",
			gen: func(root *cobra.Command, w io.Writer) error {
				return root.GenPowerShellCompletionWithDesc(w)
			},
		},
	}

	cmds := make([]*cobra.Command, 0, len(specs))
	for _, spec := range specs {
		long := fmt.Sprintf("Generate %s completion script for autopost.\n\nTo load completions in current session:\n  %s", spec.use, spec.load)
		if spec.install {
			long += fmt.Sprintf("\n\nTo install completions permanently:\n  autopost completion install --shell %s", spec.use)
		}
		cmds = append(cmds, &cobra.Command{
			Use:                   spec.use,
			Short:                 fmt.Sprintf("Generate %s completion script", spec.use),
			Long:                  long,
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return spec.gen(cmd.Root(), cmd.OutOrStdout())
			},
		})
	}
	return cmds
}

func newInstallCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install shell completions automatically",
		Long: `Install shell completions for autopost.

This command auto-detects your shell and installs completions to the appropriate location.
You can override the detected shell with the --shell flag.

Supported shells: zsh, bash, fish

Examples:
  autopost completion install              # Auto-detect shell
  autopost completion install --shell zsh  # Force zsh`,
		RunE: runCompletionInstall,
	}

	cmd.Flags().String("shell", "", "Shell to install completions for (zsh, bash, fish)")
	return cmd
}

// runCompletionInstall handles the completion install subcommand.
func runCompletionInstall(cmd *cobra.Command, _ []string) error {
	shellFlag, _ := cmd.Flags().GetString("shell")
	quiet, _ := cmd.Flags().GetBool("quiet")

	var shell shellType
	if shellFlag != "" {
		shell = shellType(shellFlag)
		if _, ok := completionTargets[shell]; !ok {
			return fmt.Errorf("%s: %w", shellFlag, errUnsupportedShell)
		}
	} else {
		shell = detectShell()
		if shell == shellUnknown {
			return errNoShellDetected
		}
	}

	if !quiet {
		cmd.Printf("Detected shell: %s\n\n", shell)
		cmd.Println("Installing completions...")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}

	completionPath, rcUpdated, err := installCompletions(cmd.Root(), home, shell)
	if err != nil {
		return err
	}

	if !quiet {
		cmd.Printf("  Created %s\n", completionPath)
		if rcUpdated {
			cmd.Printf("  Updated %s\n", getShellRCFile(shell))
		}
		cmd.Println()
		cmd.Printf("Done! Restart your shell or run: source %s\n", getShellRCFile(shell))
	}

	return nil
}

// detectShell reads the login shell from $SHELL. Only shells with an
// install recipe are recognized.
func detectShell() shellType {
	shellPath := os.Getenv("SHELL")
	if shellPath == "" {
		return shellUnknown
	}
	shell := shellType(filepath.Base(shellPath))
	if _, ok := completionTargets[shell]; !ok {
		return shellUnknown
	}
	return shell
}

// getShellRCFile returns the absolute path of the shell's startup file,
// or "" for shells without an install recipe.
func getShellRCFile(shell shellType) string {
	target, ok := completionTargets[shell]
	if !ok {
		return ""
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append([]string{home}, target.rc...)...)
}

// installCompletions writes the shell's completion script under home and
// wires the startup file when the shell does not auto-load the directory.
// Extracted from the command handler so tests can point it at a temp home.
func installCompletions(rootCmd *cobra.Command, home string, shell shellType) (string, bool, error) {
	target, ok := completionTargets[shell]
	if !ok {
		return "", false, fmt.Errorf("%s: %w", shell, errUnsupportedShell)
	}

	completionsDir := filepath.Join(append([]string{home}, target.dir...)...)
	if err := os.MkdirAll(completionsDir, 0o750); err != nil {
		return "", false, fmt.Errorf("could not create %s: %w", completionsDir, err)
	}

	var buf bytes.Buffer
	if err := target.gen(rootCmd, &buf); err != nil {
		return "", false, fmt.Errorf("could not generate %s completions: %w", shell, err)
	}

	completionPath := filepath.Join(completionsDir, target.file)
	if err := os.WriteFile(completionPath, buf.Bytes(), 0o600); err != nil {
		return "", false, fmt.Errorf("could not write %s: %w", completionPath, err)
	}

	if target.updateRC == nil {
		// The shell auto-loads scripts from the completions directory.
		return completionPath, false, nil
	}
	rcUpdated, err := target.updateRC(home, completionsDir)
	if err != nil {
		return completionPath, false, fmt.Errorf("could not update %s startup file: %w", shell, err)
	}
	return completionPath, rcUpdated, nil
}

// updateZshRC appends fpath and compinit setup to .zshrc when missing.
// Each piece is checked separately so a partially configured file only
// gains what it lacks.
func updateZshRC(home, completionsDir string) (bool, error) {
	rcPath := filepath.Clean(filepath.Join(home, ".zshrc"))

	content, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	contentStr := string(content)
	var additions []string
	if !strings.Contains(contentStr, completionsDir) {
		additions = append(additions, fmt.Sprintf("fpath=(%s $fpath)", completionsDir))
	}
	if !strings.Contains(contentStr, "compinit") {
		additions = append(additions, "autoload -U compinit && compinit")
	}
	if len(additions) == 0 {
		return false, nil
	}

	toWrite := "\n# Autopost shell completions\n" + strings.Join(additions, "\n") + "\n"
	if err := appendToRC(rcPath, toWrite); err != nil {
		return false, err
	}
	return true, nil
}

// updateBashRC appends a sourcing loop for the completions directory to
// .bashrc unless one is already present.
func updateBashRC(home, completionsDir string) (bool, error) {
	rcPath := filepath.Clean(filepath.Join(home, ".bashrc"))

	content, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if strings.Contains(string(content), ".bash_completion.d") {
		return false, nil
	}

	sourceLines := fmt.Sprintf(`
# Autopost shell completions
for f in %s/*; do
  [ -f "$f" ] && source "$f"
done
`, completionsDir)

	if err := appendToRC(rcPath, sourceLines); err != nil {
		return false, err
	}
	return true, nil
}

// appendToRC appends text to a startup file, creating it when absent.
func appendToRC(rcPath, text string) error {
	f, err := os.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //#nosec G304 -- path built from the user's home directory
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.WriteString(text)
	return err
}
