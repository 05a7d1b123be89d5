package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtharden/vellum/pkg/errors"
)

var runInline string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a vellum script file or inline script",
	Long: `Execute a script (§6.3 of the language surface) from a file or
inline source.

Examples:
  # Run a script file
  vellum run script.vel

  # Run inline source
  vellum run -e "x = 1
while x < 5
  x = x + 1
return x"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runInline, "eval", "e", "", "run inline source instead of reading from file")
}

func runScript(cmd *cobra.Command, args []string) error {
	var source, filename string
	if runInline != "" {
		source = runInline
		filename = "<eval>"
	} else if len(args) == 1 {
		filename = args[0]
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		source = string(data)
	} else {
		return fmt.Errorf("either provide a file path or use -e flag for inline source")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	eng := newEngine()
	eng.SetFile(filename)

	if verbose {
		fmt.Fprintf(os.Stderr, "Running: %s\n", filename)
	}

	result, err := eng.Run(source)
	if err != nil {
		if cerr, ok := err.(*errors.CompilerError); ok {
			fmt.Fprintln(os.Stderr, cerr.Format(true))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}

	fmt.Println(result.ToDisplayString())
	return nil
}
