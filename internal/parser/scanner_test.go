// # internal/parser/scanner_test.go
package parser

import (
	"strings"
	"testing"
)

func TestIsInAString(t *testing.T) {
	cases := []struct {
		line   string
		column int
		want   bool
	}{
		{`Print("hello world")`, 10, true},
		{`Print("hello world")`, 20, false},
		{`Print("hello")`, 3, false},
		{`x = 'a'`, 6, true},
		{`x = "he said \"hi\" to"`, 16, true},
		{`x = "it's fine"`, 9, true},
		{`x = 'c' + y`, 10, false},
	}
	for _, tc := range cases {
		if got := IsInAString(tc.line, tc.column); got != tc.want {
			t.Errorf("IsInAString(%q, %d) = %v, want %v", tc.line, tc.column, got, tc.want)
		}
	}
}

func TestIsInAStringEscapeSuppressesQuote(t *testing.T) {
	// The backslash escapes the closing quote, so the string stays open.
	line := `x = "abc\"`
	if !IsInAString(line, len(line)) {
		t.Error("expected escaped quote to keep the string open")
	}
}

func TestScanDefineValueTrailingComment(t *testing.T) {
	line := `#define MAX_PLAYERS 64 // upper bound`
	cursor := newLineCursor([]string{line})
	cursor.Pull()

	value, desc, endLine, ok := scanDefineValue(line, len("#define MAX_PLAYERS"), 0, cursor)
	if !ok {
		t.Fatal("expected scan to terminate")
	}
	if value != "64" {
		t.Errorf("value = %q, want %q", value, "64")
	}
	if desc != "upper bound" {
		t.Errorf("description = %q, want %q", desc, "upper bound")
	}
	if endLine != 0 {
		t.Errorf("endLine = %d, want 0", endLine)
	}
}

func TestScanDefineValueSlashesInsideString(t *testing.T) {
	line := `#define URL "http://a"`
	cursor := newLineCursor([]string{line})
	cursor.Pull()

	value, _, _, ok := scanDefineValue(line, len("#define URL"), 0, cursor)
	if !ok {
		t.Fatal("expected scan to terminate")
	}
	if value != `"http://a"` {
		t.Errorf("value = %q, want %q", value, `"http://a"`)
	}
}

func TestScanDefineValueMultiLineBlockComment(t *testing.T) {
	lines := []string{
		`#define FLAGS 3 /* first`,
		` second`,
		` third */ + 1`,
	}
	cursor := newLineCursor(lines)
	cursor.Pull()

	value, desc, endLine, ok := scanDefineValue(lines[0], len("#define FLAGS"), 0, cursor)
	if !ok {
		t.Fatal("expected scan to terminate")
	}
	if endLine != 2 {
		t.Errorf("endLine = %d, want 2", endLine)
	}
	if fields := strings.Fields(value); strings.Join(fields, " ") != "3 + 1" {
		t.Errorf("value = %q, want tokens %q", value, "3 + 1")
	}
	for _, fragment := range []string{"first", "second", "third"} {
		if !containsLine(desc, fragment) {
			t.Errorf("description %q missing fragment %q", desc, fragment)
		}
	}
}

func TestScanDefineValueUnterminatedCommentAborts(t *testing.T) {
	lines := []string{
		`#define BAD 1 /* never closed`,
		` still open`,
	}
	cursor := newLineCursor(lines)
	cursor.Pull()

	_, _, _, ok := scanDefineValue(lines[0], len("#define BAD"), 0, cursor)
	if ok {
		t.Error("expected unterminated block comment to abort extraction")
	}
}

func TestWordAt(t *testing.T) {
	line := `    chain.Append(value)`
	if got := WordAt(line, 6); got != "chain" {
		t.Errorf("WordAt = %q, want %q", got, "chain")
	}
	if got := WordAt(line, 11); got != "Append" {
		t.Errorf("WordAt = %q, want %q", got, "Append")
	}
	if got := WordAt(line, 3); got != "" {
		t.Errorf("WordAt on whitespace = %q, want empty", got)
	}
}

func containsLine(text, fragment string) bool {
	for i := 0; i+len(fragment) <= len(text); i++ {
		if text[i:i+len(fragment)] == fragment {
			return true
		}
	}
	return false
}
