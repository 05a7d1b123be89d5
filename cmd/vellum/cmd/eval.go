package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtharden/vellum/pkg/value"
)

var evalCmd = &cobra.Command{
	Use:   "eval [expression]",
	Short: "Evaluate a single expression and print its result",
	Long: `Evaluate one expression (§6.2 of the language surface) and print
the resulting value.

If no expression is given on the command line, one is read from stdin.

Examples:
  vellum eval "1 + 2 * 3"
  vellum eval 'upper("hi") + "!"'
  echo "[1,2,3][1]" | vellum eval`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	var source string
	if len(args) == 1 {
		source = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		source = string(data)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	eng := newEngine()
	eng.SetFile("<eval>")
	result := eng.Eval(source)

	if result.Tag == value.Error {
		if cerr := eng.LastEvalError(); cerr != nil {
			fmt.Fprintln(os.Stderr, cerr.Format(true))
		}
		return fmt.Errorf("evaluation failed")
	}

	if verbose {
		fmt.Printf("%s: ", result.Tag)
	}
	fmt.Println(result.ToDisplayString())
	return nil
}
