// # internal/parser/scanner.go
package parser

import "strings"

// maxScanSteps bounds every character scan so malformed input (an
// unterminated string on a huge generated line) cannot stall extraction.
const maxScanSteps = 10000

type quoteState int

const (
	stateNormal quoteState = iota
	stateSingleQuote
	stateDoubleQuote
)

// IsInAString reports whether the byte at column sits inside an open string
// or character literal. A backslash escapes the immediately following quote.
func IsInAString(line string, column int) bool {
	if column > len(line) {
		column = len(line)
	}
	state := stateNormal
	escaped := false
	steps := 0
	for i := 0; i < column; i++ {
		steps++
		if steps > maxScanSteps {
			break
		}
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '"':
			switch state {
			case stateNormal:
				state = stateDoubleQuote
			case stateDoubleQuote:
				state = stateNormal
			}
		case '\'':
			switch state {
			case stateNormal:
				state = stateSingleQuote
			case stateSingleQuote:
				state = stateNormal
			}
		}
	}
	return state != stateNormal
}

// lineCursor walks the remaining input stream. Extractors share one cursor
// so multi-line constructs advance the parse for everyone.
type lineCursor struct {
	lines []string
	next  int
}

func newLineCursor(lines []string) *lineCursor {
	return &lineCursor{lines: lines}
}

// Pull returns the next line and advances. The second result is false once
// the input is exhausted.
func (c *lineCursor) Pull() (string, bool) {
	if c.next >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.next]
	c.next++
	return line, true
}

// Index reports the 0-based index of the most recently pulled line.
func (c *lineCursor) Index() int {
	return c.next - 1
}

// Skip advances the cursor to the line after idx.
func (c *lineCursor) Skip(idx int) {
	if idx+1 > c.next {
		c.next = idx + 1
	}
}

// scanDefineValue consumes the replacement text of a #define starting at
// offset on line. It tracks quote nesting (one kind open at a time), stops
// the value at a line comment outside quotes (the rest becomes the
// description), and switches into comment accumulation on a block comment
// opener. An unterminated block comment pulls further lines from the
// cursor; if the input runs out first, ok is false and no item should be
// produced. endLine is the index of the line scanning finished on.
func scanDefineValue(line string, offset int, lineIdx int, cursor *lineCursor) (value, description string, endLine int, ok bool) {
	var val strings.Builder
	var desc strings.Builder

	state := stateNormal
	inBlockComment := false
	escaped := false
	steps := 0
	endLine = lineIdx

	i := offset
	for {
		if i >= len(line) {
			if !inBlockComment {
				return strings.TrimSpace(val.String()), strings.TrimSpace(desc.String()), endLine, true
			}
			next, more := cursor.Pull()
			if !more {
				return "", "", endLine, false
			}
			line = next
			endLine = cursor.Index()
			desc.WriteByte('\n')
			i = 0
			continue
		}

		steps++
		if steps > maxScanSteps {
			return "", "", endLine, false
		}

		ch := line[i]

		if inBlockComment {
			if ch == '*' && i+1 < len(line) && line[i+1] == '/' {
				inBlockComment = false
				i += 2
				continue
			}
			desc.WriteByte(ch)
			i++
			continue
		}

		if escaped {
			val.WriteByte(ch)
			escaped = false
			i++
			continue
		}

		switch {
		case ch == '\\':
			val.WriteByte(ch)
			escaped = true
		case ch == '"' && state != stateSingleQuote:
			if state == stateDoubleQuote {
				state = stateNormal
			} else {
				state = stateDoubleQuote
			}
			val.WriteByte(ch)
		case ch == '\'' && state != stateDoubleQuote:
			if state == stateSingleQuote {
				state = stateNormal
			} else {
				state = stateSingleQuote
			}
			val.WriteByte(ch)
		case ch == '/' && state == stateNormal && i+1 < len(line) && line[i+1] == '/':
			desc.WriteString(line[i+2:])
			return strings.TrimSpace(val.String()), strings.TrimSpace(desc.String()), endLine, true
		case ch == '/' && state == stateNormal && i+1 < len(line) && line[i+1] == '*':
			inBlockComment = true
			i += 2
			continue
		default:
			val.WriteByte(ch)
		}
		i++
	}
}

// identifier character classification used by all extractors.
func isIdentByte(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// WordAt returns the identifier covering column, or "" when the cursor does
// not touch one.
func WordAt(line string, column int) string {
	if len(line) == 0 {
		return ""
	}
	if column > len(line) {
		column = len(line)
	}
	start := column
	for start > 0 && isIdentByte(line[start-1]) {
		start--
	}
	end := column
	for end < len(line) && isIdentByte(line[end]) {
		end++
	}
	if start == end {
		return ""
	}
	if !isIdentStart(line[start]) {
		return ""
	}
	return line[start:end]
}
