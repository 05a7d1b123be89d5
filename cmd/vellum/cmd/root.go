package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtharden/vellum"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "vellum",
	Short: "Vellum tagged-value expression and script engine",
	Long: `vellum is an embeddable interpreter for a small dynamically
typed expression and scripting language: a single tagged Value type
(number, string, array, dict, object, function, data, error) flowing
through expressions and indentation-delimited scripts.

This CLI is a thin demonstration front-end over the engine; most hosts
embed the github.com/mtharden/vellum package directly instead.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var (
	noMathFns      bool
	noStringFns    bool
	noTimeFns      bool
	noMiscFns      bool
	legacyBooleans bool
	maxLines       int64
	maxMicros      int64
	indentSpaces   int
)

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noMathFns, "no-mathfns", false, "disable the math built-in family")
	rootCmd.PersistentFlags().BoolVar(&noStringFns, "no-stringfns", false, "disable the string built-in family")
	rootCmd.PersistentFlags().BoolVar(&noTimeFns, "no-timefns", false, "disable the time built-in family")
	rootCmd.PersistentFlags().BoolVar(&noMiscFns, "no-miscfns", false, "disable the misc/JSON built-in family")
	rootCmd.PersistentFlags().BoolVar(&legacyBooleans, "legacy-booleans", false, "make false evaluate to 1, matching the source's bug-compatible numbering")
	rootCmd.PersistentFlags().Int64Var(&maxLines, "max-lines", 0, "executed-line resource bound (0 keeps the engine default)")
	rootCmd.PersistentFlags().Int64Var(&maxMicros, "max-micros", 0, "wall-clock resource bound in microseconds (0 keeps the engine default)")
	rootCmd.PersistentFlags().IntVar(&indentSpaces, "indent", 0, "script indent width in spaces (0 keeps the engine default of 2)")
}

// newEngine builds a vellum.Engine from the persistent CLI flags,
// matching §6.1's configuration surface.
func newEngine() *vellum.Engine {
	var opts []vellum.Option
	if !noMathFns {
		opts = append(opts, vellum.WithMathFns())
	}
	if !noStringFns {
		opts = append(opts, vellum.WithStringFns())
	}
	if !noTimeFns {
		opts = append(opts, vellum.WithTimeFns())
	}
	if !noMiscFns {
		opts = append(opts, vellum.WithMiscFns())
	}
	if legacyBooleans {
		opts = append(opts, vellum.WithLegacyBooleans(true))
	}
	if maxLines > 0 {
		opts = append(opts, vellum.WithMaxLines(maxLines))
	}
	if maxMicros > 0 {
		opts = append(opts, vellum.WithMaxMicroseconds(maxMicros))
	}
	if indentSpaces > 0 {
		opts = append(opts, vellum.WithIndentSpaces(indentSpaces))
	}
	return vellum.New(opts...)
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
