// Package errors formats positioned diagnostics for the expression
// evaluator and script executor: a source line, a gutter-numbered
// excerpt, and a caret under the offending column, the way a compiler
// error is normally shown to a terminal.
package errors

import (
	"fmt"
	"strings"
)

// Position is a 1-indexed (line, column) location in a source string.
// Column counts runes from the start of the line, matching how the
// cursor-based parser reports positions.
type Position struct {
	Line   int
	Column int
}

// Code is one of the stable numeric error codes a parser or script
// diagnostic carries (§6.4). Codes are stable for host mapping — never
// renumber an existing one.
type Code int

const (
	DanglingQuote       Code = 1
	EmptyExpression     Code = 2
	UnknownFunction     Code = 3
	BadArity            Code = 4
	JunkAfterExpression Code = 5
	ParseFailure        Code = 6
	InvalidArgument     Code = 7
	InvalidObject       Code = 9
	DanglingBackslash   Code = 10
	BadIndex            Code = 11
	MissingDictName     Code = 14
	MissingDictColon    Code = 15
	KeyNotInDict        Code = 16
)

// CompilerError is a single positioned diagnostic: a message plus the
// source it was found in, used to render a caret-annotated report.
type CompilerError struct {
	Code    Code
	Message string
	Source  string
	File    string
	Pos     Position
}

// New creates a CompilerError at pos.
func New(code Code, pos Position, message, source, file string) *CompilerError {
	return &CompilerError{Code: code, Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface with uncolored formatting.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format renders the error with a header, the offending source line,
// and a caret under the column. If color is true, ANSI codes highlight
// the caret and message.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		gutter := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(gutter)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(gutter)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors renders a batch of errors, numbering each one when more
// than one is present.
func FormatErrors(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Compilation failed with %d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[Error %d of %d]\n", i+1, len(errs))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// StackFrame is one call-chain entry recorded when the call bridge (§5)
// invokes a script-defined function, used to render a call trace on an
// unhandled script error.
type StackFrame struct {
	Position     Position
	FunctionName string
	FileName     string
}

// String renders a single frame as "FunctionName [line: N, column: M]".
func (sf StackFrame) String() string {
	return fmt.Sprintf("%s [line: %d, column: %d]", sf.FunctionName, sf.Position.Line, sf.Position.Column)
}

// StackTrace is a call chain, ordered oldest (bottom) to newest (top).
type StackTrace []StackFrame

// String renders the trace most-recent-first, one frame per line.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Top returns the most recently pushed frame, or nil if the trace is empty.
func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// Depth returns the number of frames on the trace.
func (st StackTrace) Depth() int { return len(st) }
