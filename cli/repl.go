package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Edit a text history interactively",
	Long: `Start a line-oriented session over a history of text states.

Type "help" for the command list. The prompt and the interactive "pick"
command are available only when stdin is a terminal, so a file of commands
can be piped in.

Examples:
  ivh repl
  ivh repl --debounce 1s --max-entries 50
  ivh repl < script.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, closeEngine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeEngine()

		s := newSession(h, cmd.OutOrStdout())
		var prompt string
		if term.IsTerminal(int(os.Stdin.Fd())) {
			prompt = "ivh> "
			s.keys = readKey
		}
		return s.run(cmd.InOrStdin(), prompt)
	},
}
