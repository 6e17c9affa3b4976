// # internal/parser/define.go
package parser

import (
	"regexp"
	"strings"
)

var definePattern = regexp.MustCompile(`^\s*#define\s+([A-Za-z_][A-Za-z0-9_]*)`)

// extractDefine reads one #define directive. The replacement text is scanned
// with full quote and comment tracking; a block comment that never
// terminates aborts the whole extraction and produces no item.
func extractDefine(table *FileItemTable, line string, idx int, cursor *lineCursor, doc string) {
	match := definePattern.FindStringSubmatchIndex(line)
	if match == nil {
		return
	}
	name := line[match[2]:match[3]]

	value, trailing, endLine, ok := scanDefineValue(line, match[3], idx, cursor)
	if !ok {
		return
	}
	cursor.Skip(endLine)

	description := doc
	if trailing != "" {
		if description != "" {
			description += "\n"
		}
		description += trailing
	}

	endCol := 0
	if endLine == idx {
		endCol = len(line)
	} else if endLine < len(cursor.lines) {
		endCol = len(cursor.lines[endLine])
	}

	table.Add(&Item{
		Name:        name,
		Kind:        KindDefine,
		Value:       value,
		Detail:      strings.TrimSpace(line),
		Description: description,
		DeclarationRange: Range{
			Start: Position{Line: idx, Column: match[2]},
			End:   Position{Line: idx, Column: match[3]},
		},
		FullRange: Range{
			Start: Position{Line: idx, Column: 0},
			End:   Position{Line: endLine, Column: endCol},
		},
	})
}
