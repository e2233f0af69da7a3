package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Statement is one interpretable line of a program: the code left after
// comments are removed, along with its line number in the source text.
type Statement struct {
	Line int // 1-based
	Text string
}

// Token is a single letter and value pair, such as X10.5.
type Token struct {
	Letter byte
	Text   string
	Value  float64
}

func (tok Token) String() string {
	return fmt.Sprintf("%c%s", tok.Letter, tok.Text)
}

// SplitLines breaks program text into statements. Blank and comment only
// lines are dropped; the remaining statements keep their line numbers.
func SplitLines(text string) []Statement {
	var stmts []Statement
	ln := 0
	for len(text) > 0 {
		var raw string
		raw, text = nextLine(text)
		ln += 1

		code := stripComments(raw)
		if code != "" {
			stmts = append(stmts, Statement{Line: ln, Text: code})
		}
	}
	return stmts
}

// CountLines returns the number of lines in text; a final line break does
// not start another line.
func CountLines(text string) int {
	cnt := 0
	for len(text) > 0 {
		_, text = nextLine(text)
		cnt += 1
	}
	return cnt
}

// SourceLines breaks text into its physical lines, numbered as SplitLines
// numbers them: line n is SourceLines(text)[n-1].
func SourceLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		var raw string
		raw, text = nextLine(text)
		lines = append(lines, raw)
	}
	return lines
}

// nextLine accepts \n, \r\n, and \r line endings.
func nextLine(text string) (string, string) {
	idx := strings.IndexAny(text, "\r\n")
	if idx < 0 {
		return text, ""
	}
	if text[idx] == '\r' && idx+1 < len(text) && text[idx+1] == '\n' {
		return text[:idx], text[idx+2:]
	}
	return text[:idx], text[idx+1:]
}

// stripComments removes line end comments (; and %) and inline comments
// delimited by ( and ). An unclosed inline comment runs to the end of the line.
func stripComments(raw string) string {
	var sb strings.Builder
	for idx := 0; idx < len(raw); idx += 1 {
		b := raw[idx]
		if b == ';' || b == '%' {
			break
		} else if b == '(' {
			end := strings.IndexByte(raw[idx+1:], ')')
			if end < 0 {
				break
			}
			idx += end + 1
			sb.WriteByte(' ')
			continue
		}
		sb.WriteByte(b)
	}
	return strings.TrimSpace(sb.String())
}

func upcaseByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return (b - 'a') + 'A'
	}
	return b
}

func letterByte(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func spaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}

func skipWhitespace(s string, idx int) int {
	for idx < len(s) && spaceByte(s[idx]) {
		idx += 1
	}
	return idx
}

// valueEnd returns the end of the value starting at idx: it runs until the
// next letter or whitespace.
func valueEnd(s string, idx int) int {
	for idx < len(s) && !spaceByte(s[idx]) && !letterByte(upcaseByte(s[idx])) {
		idx += 1
	}
	return idx
}

// Tokens splits a statement into letter and value pairs. Whitespace is
// allowed between a letter and its value. A value that is not a number is
// reported and dropped; the rest of the statement is still tokenized.
func Tokens(stmt Statement) ([]Token, []Diagnostic) {
	var toks []Token
	var diags []Diagnostic

	s := stmt.Text
	idx := 0
	for {
		idx = skipWhitespace(s, idx)
		if idx >= len(s) {
			break
		}

		b := upcaseByte(s[idx])
		if !letterByte(b) {
			end := valueEnd(s, idx)
			diags = append(diags, Diagnostic{
				Line: stmt.Line,
				Kind: TokenParseFailure,
				Text: fmt.Sprintf("unexpected %q", s[idx:end]),
			})
			idx = end
			continue
		}

		idx = skipWhitespace(s, idx+1)
		end := valueEnd(s, idx)
		txt := s[idx:end]
		idx = end

		val, err := strconv.ParseFloat(txt, 64)
		if err != nil {
			msg := fmt.Sprintf("expected a number: %c%s", b, txt)
			if txt == "" {
				msg = fmt.Sprintf("missing value for %c", b)
			}
			diags = append(diags, Diagnostic{Line: stmt.Line, Kind: TokenParseFailure, Text: msg})
			continue
		}
		toks = append(toks, Token{Letter: b, Text: txt, Value: val})
	}

	return toks, diags
}
