// # internal/parser/methodmap.go
package parser

import (
	"regexp"
	"strings"
)

var (
	methodmapPattern = regexp.MustCompile(`^\s*methodmap\s+([A-Za-z_]\w*)(?:\s*<\s*([A-Za-z_]\w*))?`)
	propertyPattern  = regexp.MustCompile(`^\s*property\s+([A-Za-z_]\w*)\s+([A-Za-z_]\w*)`)
)

// extractMethodMap consumes the whole methodmap body. Methods and properties
// are parented to the methodmap by name; the declared base type is kept for
// inheritance-chain walking.
func extractMethodMap(table *FileItemTable, line string, idx int, cursor *lineCursor, doc string) {
	match := methodmapPattern.FindStringSubmatchIndex(line)
	if match == nil {
		return
	}
	name := line[match[2]:match[3]]
	base := ""
	if match[4] >= 0 {
		base = line[match[4]:match[5]]
	}
	if base == "__nullable__" {
		base = ""
	}

	endIdx := walkTypeBody(table, cursor, line, idx, name, true)

	table.Add(&Item{
		Name:        name,
		Kind:        KindMethodMap,
		Base:        base,
		Detail:      strings.TrimSpace(line),
		Description: doc,
		DeclarationRange: Range{
			Start: Position{Line: idx, Column: match[2]},
			End:   Position{Line: idx, Column: match[3]},
		},
		FullRange: Range{
			Start: Position{Line: idx, Column: 0},
			End:   Position{Line: endIdx, Column: lineLen(cursor, endIdx, line, idx)},
		},
	})
}

// walkTypeBody consumes the body of a methodmap or enum struct, emitting
// member items as it goes, and returns the index of the closing line. Lines
// inside a method body still pass through the variable extractor, so member
// locals resolve types the same way top-level function locals do.
func walkTypeBody(table *FileItemTable, cursor *lineCursor, firstLine string, idx int, parent string, isMethodMap bool) int {
	var tracker braceTracker
	tracker.feed(firstLine)
	opened := strings.Contains(firstLine, "{")
	if opened && tracker.depth <= 0 {
		return idx
	}

	var doc docBuffer
	var pending *Item
	pendingOpened := false
	for {
		line, more := cursor.Pull()
		if !more {
			return cursor.Index()
		}
		curIdx := cursor.Index()
		depthBefore := tracker.depth

		if opened && depthBefore == 1 && pending == nil && !tracker.inComment {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "" || trimmed == "{" || trimmed == "}":
			case strings.HasPrefix(trimmed, "/*"):
				doc.collectBlock(trimmed, cursor)
				tracker.feed(line)
				continue
			case strings.HasPrefix(trimmed, "//"):
				doc.addLine(trimmed)
				tracker.feed(line)
				continue
			default:
				pending = extractTypeMember(table, cursor, line, curIdx, parent, isMethodMap, doc.take())
				pendingOpened = false
			}
		}

		tracker.feed(line)
		if !opened {
			if strings.Contains(line, "{") {
				opened = true
			} else if strings.TrimSpace(line) != "" {
				// No body ever opened; treat the declaration as one line.
				return idx
			}
			continue
		}

		if pending != nil {
			if strings.Contains(line, "{") {
				pendingOpened = true
			}
			switch {
			case pendingOpened && tracker.depth <= 1:
				pending.FullRange.End = Position{Line: curIdx, Column: len(line)}
				pending = nil
			case !pendingOpened && strings.Contains(stripLineComments(line), ";"):
				pending.FullRange.End = Position{Line: curIdx, Column: len(line)}
				pending = nil
			case pendingOpened && pending.Kind == KindMethod:
				extractVariable(table, line, curIdx, "")
			}
		}

		if tracker.depth <= 0 {
			if pending != nil {
				pending.FullRange.End = Position{Line: curIdx, Column: len(line)}
			}
			return curIdx
		}
	}
}

// extractTypeMember parses one member declaration at body depth 1. The
// returned item is non-nil when its full range still needs to be closed by
// the caller (a member with a body).
func extractTypeMember(table *FileItemTable, cursor *lineCursor, line string, idx int, parent string, isMethodMap bool, doc string) *Item {
	if isMethodMap {
		if m := propertyPattern.FindStringSubmatchIndex(line); m != nil {
			item := &Item{
				Name:        line[m[4]:m[5]],
				Kind:        KindProperty,
				Type:        line[m[2]:m[3]],
				Parent:      parent,
				Detail:      strings.TrimSpace(line),
				Description: doc,
				DeclarationRange: Range{
					Start: Position{Line: idx, Column: m[4]},
					End:   Position{Line: idx, Column: m[5]},
				},
				FullRange: Range{
					Start: Position{Line: idx, Column: 0},
					End:   Position{Line: idx, Column: len(line)},
				},
			}
			table.Add(item)
			if !strings.Contains(stripLineComments(line), ";") {
				return item
			}
			return nil
		}
	}

	if header, ok := parseCallableHeader(line); ok {
		signature, sigEnd, sigOK := collectSignature(cursor, line, idx, header.openParen)
		if !sigOK {
			return nil
		}
		item := &Item{
			Name:        header.name,
			Kind:        KindMethod,
			Type:        header.returns,
			Parent:      parent,
			Detail:      strings.TrimSpace(line),
			Description: doc,
			Parameters:  parseParameters(signature, doc),
			DeclarationRange: Range{
				Start: Position{Line: idx, Column: header.nameStart},
				End:   Position{Line: idx, Column: header.nameEnd},
			},
			FullRange: Range{
				Start: Position{Line: idx, Column: 0},
				End:   Position{Line: sigEnd, Column: lineLen(cursor, sigEnd, line, idx)},
			},
		}
		table.Add(item)
		if strings.Contains(stripLineComments(line), ";") {
			return nil
		}
		return item
	}

	if !isMethodMap {
		extractVariable(table, line, idx, parent)
	}
	return nil
}
