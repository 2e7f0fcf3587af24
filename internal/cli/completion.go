package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for ptt",
	Long: `Set up shell tab-completions for ptt commands, flags, topic IDs and
enumerated values (departments, priorities, statuses, trends).

Supported shells: bash, zsh, fish, powershell

Quick install (writes the script to your user completion directory):

  ptt completion bash --install
  ptt completion zsh --install
  ptt completion fish --install

Or print the completion script to stdout (for manual setup):

  ptt completion bash
  ptt completion zsh
  ptt completion fish
  ptt completion powershell`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

// completionShell describes how to generate and install one shell's script.
type completionShell struct {
	generate func(w io.Writer) error
	loadHint string
	// installPath is relative to the home directory; empty means --install
	// is not supported.
	installPath string
}

var completionShells = map[string]completionShell{
	"bash": {
		generate:    func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		loadHint:    `eval "$(ptt completion bash)"`,
		installPath: filepath.Join(".local", "share", "bash-completion", "completions", "ptt"),
	},
	"zsh": {
		generate:    rootCmd.GenZshCompletion,
		loadHint:    `eval "$(ptt completion zsh)"`,
		installPath: filepath.Join(".local", "share", "zsh", "site-functions", "_ptt"),
	},
	"fish": {
		generate:    func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		loadHint:    "ptt completion fish | source",
		installPath: filepath.Join(".config", "fish", "completions", "ptt.fish"),
	},
	"powershell": {
		generate: rootCmd.GenPowerShellCompletionWithDesc,
		loadHint: "ptt completion powershell | Out-String | Invoke-Expression",
	},
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your user completion directory")

	// Remove Cobra's default completion command and add ours.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell, ok := completionShells[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}

	if completionInstall {
		return installCompletion(args[0], shell)
	}

	// Hints go to stderr so they don't interfere with piping the script.
	w := cmd.ErrOrStderr()
	_, _ = fmt.Fprintln(w, "# To load completions in your current session:")
	_, _ = fmt.Fprintf(w, "#   %s\n", shell.loadHint)
	if shell.installPath != "" {
		_, _ = fmt.Fprintf(w, "# To install permanently:\n#   ptt completion %s --install\n", args[0])
	}
	return shell.generate(cmd.OutOrStdout())
}

func installCompletion(name string, shell completionShell) error {
	if shell.installPath == "" {
		return fmt.Errorf("automatic install is not supported for %s; run 'ptt completion %s' and add the output to your profile", name, name)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target := filepath.Join(home, shell.installPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}
	writeErr := shell.generate(f)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}

	fmt.Printf("%s completions installed to %s\n", name, target)
	fmt.Println("Restart your shell to pick them up.")
	return nil
}
