// Package cursor implements the lexer helpers of component C: a single
// mutable cursor over an input string with two primitives, consume-char
// and consume-regex, from which the expression parser and the script
// tokenizer are built. There is no separate token stream — callers
// advance the cursor directly as they parse and evaluate.
package cursor

import (
	"regexp"
	"unicode/utf8"
)

// Cursor is a mutable (input, index) pair. Index is a byte offset into
// input; all regex and rune operations are anchored at that offset.
type Cursor struct {
	input string
	index int
}

// New creates a Cursor positioned at the start of input.
func New(input string) *Cursor {
	return &Cursor{input: input}
}

// Input returns the full input string, unchanged since construction.
func (c *Cursor) Input() string { return c.input }

// Pos returns the current byte offset.
func (c *Cursor) Pos() int { return c.index }

// SetPos moves the cursor to an arbitrary byte offset, used to restore a
// saved position after a failed alternative (§4.3) or around a
// re-entrant host call (§5).
func (c *Cursor) SetPos(i int) { c.index = i }

// Eof reports whether the cursor has consumed the entire input.
func (c *Cursor) Eof() bool { return c.index >= len(c.input) }

// Peek returns the rune at the cursor without advancing, and false at
// end of input.
func (c *Cursor) Peek() (rune, bool) {
	if c.Eof() {
		return 0, false
	}
	for _, r := range c.input[c.index:] {
		return r, true
	}
	return 0, false
}

// ConsumeChar advances past the current rune and returns it if it is a
// byte present in set; otherwise the cursor is left unchanged and ok is
// false. set is interpreted as a literal byte class (e.g. " \t", "()"),
// matching the reference's single-character consume primitive.
func (c *Cursor) ConsumeChar(set string) (ch byte, ok bool) {
	if c.Eof() {
		return 0, false
	}
	b := c.input[c.index]
	for i := 0; i < len(set); i++ {
		if set[i] == b {
			c.index++
			return b, true
		}
	}
	return 0, false
}

// ConsumeRune advances past the rune at the cursor and returns it,
// regardless of what it is — used while scanning inside a string
// literal, where content must be copied verbatim rather than matched
// against a byte class or pattern. ok is false at end of input.
func (c *Cursor) ConsumeRune() (rune, bool) {
	if c.Eof() {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(c.input[c.index:])
	c.index += size
	return r, true
}

// ConsumeRegex attempts to match re anchored at the current index. re
// must itself begin with ^ (Go's unanchored-at-start regexes would
// otherwise be free to match later in the string). On success the
// cursor advances past the match and the matched text is returned; on
// failure the cursor is left unchanged.
func (c *Cursor) ConsumeRegex(re *regexp.Regexp) (match string, ok bool) {
	if c.Eof() {
		return "", false
	}
	loc := re.FindStringIndex(c.input[c.index:])
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	match = c.input[c.index : c.index+loc[1]]
	c.index += loc[1]
	return match, true
}

// ConsumeLiteral advances past lit if the input at the cursor starts
// with it exactly (byte comparison, used for multi-character operators
// matched longest-first by the caller).
func (c *Cursor) ConsumeLiteral(lit string) bool {
	if len(lit) == 0 {
		return false
	}
	end := c.index + len(lit)
	if end > len(c.input) {
		return false
	}
	if c.input[c.index:end] != lit {
		return false
	}
	c.index = end
	return true
}

// Rest returns the unconsumed remainder of the input, used for error
// messages that show "junk after expression" context.
func (c *Cursor) Rest() string {
	if c.Eof() {
		return ""
	}
	return c.input[c.index:]
}

// Precompiled patterns for the atoms described in §4.1.
var (
	// IdentPattern matches [A-Za-z_][A-Za-z0-9_]*.
	IdentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	// NumberPattern matches -?[0-9]+(\.[0-9]+)?.
	NumberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?`)
	// FuncStartPattern matches an identifier immediately followed by '('.
	FuncStartPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\(`)
)
