package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtharden/vellum/internal/script"
)

var (
	lexInline  string
	showLineNo bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a vellum script file or expression and print its tokens",
	Long: `Tokenize (lex) a vellum script line by line and print the
resulting tokens (§4.6 of the language surface).

This command is useful for debugging the tokenizer and understanding
how vellum source is split into tokens ahead of loading.

Examples:
  # Tokenize a script file
  vellum lex script.vel

  # Tokenize inline source
  vellum lex -e "x = 1 + 2"

  # Show each line's number alongside its tokens
  vellum lex --show-line script.vel`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexInline, "eval", "e", "", "tokenize inline source instead of reading from file")
	lexCmd.Flags().BoolVar(&showLineNo, "show-line", false, "show the 1-indexed line number before each line's tokens")
}

func lexScript(cmd *cobra.Command, args []string) error {
	var source string
	if lexInline != "" {
		source = lexInline
	} else if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		source = string(data)
	} else {
		return fmt.Errorf("either provide a file path or use -e flag for inline source")
	}

	scanner := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		tokens := script.Tokenize(scanner.Text())

		var b strings.Builder
		if showLineNo {
			fmt.Fprintf(&b, "%4d: ", lineNo)
		}
		if len(tokens) == 0 {
			b.WriteString("(blank)")
		} else {
			for i, tok := range tokens {
				if i > 0 {
					b.WriteByte(' ')
				}
				fmt.Fprintf(&b, "%q", tok)
			}
		}
		fmt.Println(b.String())
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("reading source: %w", err)
	}
	return nil
}
