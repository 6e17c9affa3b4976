// # internal/parser/parser.go
package parser

import (
	"strings"
)

// Parse runs every declaration extractor over text and returns the freshly
// built table for uri. This is a best-effort structural scan: lines that
// match no extractor are skipped, malformed declarations produce nothing.
func Parse(uri, text string, builtin bool) *FileItemTable {
	table := NewFileItemTable(uri, builtin)
	cursor := newLineCursor(splitLines(text))

	var doc docBuffer
	for {
		line, ok := cursor.Pull()
		if !ok {
			break
		}
		idx := cursor.Index()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			doc.reset()
		case strings.HasPrefix(trimmed, "/*"):
			doc.collectBlock(trimmed, cursor)
		case strings.HasPrefix(trimmed, "//"):
			doc.addLine(trimmed)
		case includePattern.MatchString(line):
			extractInclude(table, line, idx)
			doc.reset()
		case definePattern.MatchString(line):
			extractDefine(table, line, idx, cursor, doc.take())
		case enumStructPattern.MatchString(line):
			extractEnumStruct(table, line, idx, cursor, doc.take())
		case methodmapPattern.MatchString(line):
			extractMethodMap(table, line, idx, cursor, doc.take())
		case enumPattern.MatchString(line):
			extractEnum(table, line, idx, cursor, doc.take())
		default:
			if extractFunction(table, line, idx, cursor, doc.take(), "") {
				continue
			}
			extractVariable(table, line, idx, "")
			doc.reset()
		}
	}
	return table
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// docBuffer accumulates comment lines immediately preceding a declaration.
// Any non-comment, non-declaration line discards the pending text.
type docBuffer struct {
	lines []string
}

func (d *docBuffer) reset() {
	d.lines = nil
}

func (d *docBuffer) addLine(trimmed string) {
	text := strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))
	d.lines = append(d.lines, text)
}

// collectBlock consumes a block comment starting on trimmed, pulling lines
// until the terminator. An unterminated comment swallows the rest of the
// input, which simply leaves nothing to extract.
func (d *docBuffer) collectBlock(trimmed string, cursor *lineCursor) {
	d.lines = nil
	line := strings.TrimPrefix(trimmed, "/*")
	line = strings.TrimPrefix(line, "*")
	for {
		if end := strings.Index(line, "*/"); end >= 0 {
			d.appendBlockLine(line[:end])
			return
		}
		d.appendBlockLine(line)
		next, ok := cursor.Pull()
		if !ok {
			return
		}
		line = next
	}
}

func (d *docBuffer) appendBlockLine(line string) {
	text := strings.TrimSpace(line)
	text = strings.TrimPrefix(text, "*")
	text = strings.TrimSpace(text)
	if text != "" {
		d.lines = append(d.lines, text)
	}
}

func (d *docBuffer) take() string {
	text := strings.TrimSpace(strings.Join(d.lines, "\n"))
	d.lines = nil
	return text
}

// paramDocs pulls @param tags out of a doc comment.
func paramDocs(description string) map[string]string {
	docs := make(map[string]string)
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "@param") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "@param"))
		fields := strings.SplitN(rest, " ", 2)
		if len(fields) == 0 || fields[0] == "" {
			continue
		}
		docText := ""
		if len(fields) == 2 {
			docText = strings.TrimSpace(fields[1])
		}
		docs[fields[0]] = docText
	}
	return docs
}

// braceTracker counts brace depth across lines while ignoring braces inside
// strings and comments.
type braceTracker struct {
	depth     int
	inComment bool
}

func (b *braceTracker) feed(line string) {
	state := stateNormal
	escaped := false
	for i := 0; i < len(line) && i < maxScanSteps; i++ {
		ch := line[i]
		if b.inComment {
			if ch == '*' && i+1 < len(line) && line[i+1] == '/' {
				b.inComment = false
				i++
			}
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\':
			escaped = true
		case ch == '"' && state != stateSingleQuote:
			if state == stateDoubleQuote {
				state = stateNormal
			} else {
				state = stateDoubleQuote
			}
		case ch == '\'' && state != stateDoubleQuote:
			if state == stateSingleQuote {
				state = stateNormal
			} else {
				state = stateSingleQuote
			}
		case state != stateNormal:
		case ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return
		case ch == '/' && i+1 < len(line) && line[i+1] == '*':
			b.inComment = true
			i++
		case ch == '{':
			b.depth++
		case ch == '}':
			b.depth--
		}
	}
}

// findBodyEnd walks forward from startIdx without consuming the cursor and
// returns the line index on which the brace depth returns to zero. ok is
// false when the body never closes.
func findBodyEnd(cursor *lineCursor, firstLine string, startIdx int) (int, bool) {
	var tracker braceTracker
	tracker.feed(firstLine)
	if tracker.depth <= 0 && strings.Contains(firstLine, "{") {
		return startIdx, true
	}
	if tracker.depth <= 0 {
		// Opening brace not seen yet; keep walking until it shows up.
		tracker.depth = 0
	}
	opened := strings.Contains(firstLine, "{")
	for i := startIdx + 1; i < len(cursor.lines); i++ {
		tracker.feed(cursor.lines[i])
		if !opened {
			if strings.Contains(cursor.lines[i], "{") {
				opened = true
			} else if strings.TrimSpace(cursor.lines[i]) != "" {
				// A statement before any body opened: not a definition.
				return startIdx, false
			}
		}
		if opened && tracker.depth <= 0 {
			return i, true
		}
	}
	return startIdx, false
}
