// # internal/parser/declarations.go
package parser

import (
	"regexp"
	"strings"
)

var (
	functionPattern = regexp.MustCompile(`^\s*((?:(?:public|static|native|forward|stock)\s+)*)([A-Za-z_]\w*(?:\s*\[\s*\])?)\s+([A-Za-z_]\w*)\s*\(`)
	bareFuncPattern = regexp.MustCompile(`^\s*((?:(?:public|static|native|forward|stock)\s+)+)([A-Za-z_]\w*)\s*\(`)
	variablePattern = regexp.MustCompile(`^\s*((?:(?:new|decl|static|const|public|stock)\s+)*)([A-Za-z_]\w*)(?::\s*|\s+)(.+?);`)

	enumPattern       = regexp.MustCompile(`^\s*enum\s+([A-Za-z_]\w*)?`)
	enumStructPattern = regexp.MustCompile(`^\s*enum\s+struct\s+([A-Za-z_]\w*)`)
)

// reservedWords are identifiers that can never be a declared type or name.
var reservedWords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true, "return": true,
	"break": true, "continue": true, "delete": true, "sizeof": true,
	"new": true, "decl": true, "public": true, "static": true,
	"native": true, "forward": true, "stock": true, "const": true,
	"enum": true, "struct": true, "methodmap": true, "property": true,
	"funcenum": true, "functag": true, "typedef": true, "typeset": true,
}

// builtinTypes are value-type keywords: legal in the return slot, never as a
// callable name.
var builtinTypes = map[string]bool{
	"void": true, "int": true, "float": true, "bool": true,
	"char": true, "any": true,
}

// callableHeader is the parsed front of a function or method declaration.
type callableHeader struct {
	keywords  string
	returns   string
	name      string
	nameStart int
	nameEnd   int
	openParen int
}

func parseCallableHeader(line string) (callableHeader, bool) {
	if m := functionPattern.FindStringSubmatchIndex(line); m != nil {
		h := callableHeader{
			keywords:  strings.TrimSpace(line[m[2]:m[3]]),
			returns:   strings.TrimSpace(line[m[4]:m[5]]),
			name:      line[m[6]:m[7]],
			nameStart: m[6],
			nameEnd:   m[7],
			openParen: m[1] - 1,
		}
		if reservedWords[h.name] || builtinTypes[h.name] {
			return callableHeader{}, false
		}
		if !reservedWords[h.returns] {
			return h, true
		}
		// A reserved word in the type slot means the declaration carries no
		// return type (a constructor or an old-style public): the last
		// storage-class keyword was mistaken for it. Re-read with the bare
		// form below.
	}
	if m := bareFuncPattern.FindStringSubmatchIndex(line); m != nil {
		h := callableHeader{
			keywords:  strings.TrimSpace(line[m[2]:m[3]]),
			name:      line[m[4]:m[5]],
			nameStart: m[4],
			nameEnd:   m[5],
			openParen: m[1] - 1,
		}
		if reservedWords[h.name] || builtinTypes[h.name] {
			return callableHeader{}, false
		}
		return h, true
	}
	return callableHeader{}, false
}

// collectSignature accumulates the text from the opening paren to its match,
// peeking further lines without consuming them.
func collectSignature(cursor *lineCursor, line string, idx, openParen int) (string, int, bool) {
	var sig strings.Builder
	depth := 0
	cur := line
	col := openParen
	lineIdx := idx
	steps := 0
	for {
		for ; col < len(cur); col++ {
			steps++
			if steps > maxScanSteps {
				return "", lineIdx, false
			}
			ch := cur[col]
			sig.WriteByte(ch)
			if ch == '(' {
				depth++
			} else if ch == ')' {
				depth--
				if depth == 0 {
					return sig.String(), lineIdx, true
				}
			}
		}
		lineIdx++
		if lineIdx >= len(cursor.lines) {
			return "", lineIdx - 1, false
		}
		cur = cursor.lines[lineIdx]
		col = 0
		sig.WriteByte(' ')
	}
}

// parseParameters splits the parenthesized signature into ordered labels and
// attaches @param documentation from the declaration's doc comment.
func parseParameters(signature, description string) []Parameter {
	inner := strings.TrimSpace(signature)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	docs := paramDocs(description)

	var params []Parameter
	depth := 0
	start := 0
	flush := func(end int) {
		chunk := strings.TrimSpace(inner[start:end])
		if chunk == "" {
			return
		}
		params = append(params, Parameter{
			Label:         chunk,
			Documentation: docs[parameterName(chunk)],
		})
	}
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(inner))
	return params
}

// parameterName digs the declared name out of one parameter chunk.
func parameterName(chunk string) string {
	if eq := strings.Index(chunk, "="); eq >= 0 {
		chunk = chunk[:eq]
	}
	if colon := strings.LastIndex(chunk, ":"); colon >= 0 {
		chunk = chunk[colon+1:]
	}
	fields := strings.FieldsFunc(chunk, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '[' || r == ']' || r == '&'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// extractFunction handles top-level functions, natives and forwards. The
// body is located by lookahead only, so local declarations inside it still
// flow through the main extractor loop. Returns false when the line is not
// a callable declaration.
func extractFunction(table *FileItemTable, line string, idx int, cursor *lineCursor, doc, parent string) bool {
	header, ok := parseCallableHeader(line)
	if !ok {
		return false
	}

	signature, sigEnd, ok := collectSignature(cursor, line, idx, header.openParen)
	if !ok {
		return false
	}

	kind := KindFunction
	if parent != "" {
		kind = KindMethod
	}
	item := &Item{
		Name:        header.name,
		Kind:        kind,
		Type:        header.returns,
		Parent:      parent,
		Detail:      strings.TrimSpace(line),
		Description: doc,
		Parameters:  parseParameters(signature, doc),
		DeclarationRange: Range{
			Start: Position{Line: idx, Column: header.nameStart},
			End:   Position{Line: idx, Column: header.nameEnd},
		},
	}

	declOnly := strings.Contains(header.keywords, "native") || strings.Contains(header.keywords, "forward")
	if declOnly {
		item.FullRange = Range{
			Start: Position{Line: idx, Column: 0},
			End:   Position{Line: sigEnd, Column: lineLen(cursor, sigEnd, line, idx)},
		}
		table.Add(item)
		cursor.Skip(sigEnd)
		return true
	}

	sigLine := line
	if sigEnd != idx && sigEnd < len(cursor.lines) {
		sigLine = cursor.lines[sigEnd]
	}
	bodyEnd, ok := findBodyEnd(cursor, sigLine, sigEnd)
	if !ok {
		return false
	}
	item.FullRange = Range{
		Start: Position{Line: idx, Column: 0},
		End:   Position{Line: bodyEnd, Column: lineLen(cursor, bodyEnd, line, idx)},
	}
	table.Add(item)
	cursor.Skip(sigEnd)
	return true
}

func lineLen(cursor *lineCursor, idx int, current string, currentIdx int) int {
	if idx == currentIdx {
		return len(current)
	}
	if idx >= 0 && idx < len(cursor.lines) {
		return len(cursor.lines[idx])
	}
	return 0
}

// extractVariable handles one declaration statement, including multiple
// declarators and old-style tags. Lines that look like control flow are
// rejected through the reserved-word set.
func extractVariable(table *FileItemTable, line string, idx int, parent string) {
	match := variablePattern.FindStringSubmatch(line)
	if match == nil {
		return
	}
	declType := match[2]
	if reservedWords[declType] {
		return
	}
	rest := match[3]
	if strings.ContainsAny(rest, "(") {
		// Calls and declarations with call initializers are out of scope for
		// the structural scan unless the declarator itself is clean.
		if eq := strings.Index(rest, "="); eq < 0 || strings.Index(rest, "(") < eq {
			return
		}
	}

	for _, chunk := range splitDeclarators(rest) {
		name, tag := declaratorName(chunk)
		if name == "" || reservedWords[name] {
			continue
		}
		varType := declType
		if tag != "" {
			varType = tag
		}
		col := strings.Index(line, name)
		if col < 0 {
			col = 0
		}
		table.Add(&Item{
			Name:   name,
			Kind:   KindVariable,
			Type:   varType,
			Parent: parent,
			Detail: strings.TrimSpace(line),
			DeclarationRange: Range{
				Start: Position{Line: idx, Column: col},
				End:   Position{Line: idx, Column: col + len(name)},
			},
			FullRange: Range{
				Start: Position{Line: idx, Column: 0},
				End:   Position{Line: idx, Column: len(line)},
			},
		})
	}
}

func splitDeclarators(rest string) []string {
	var chunks []string
	depth := 0
	start := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				chunks = append(chunks, rest[start:i])
				start = i + 1
			}
		}
	}
	chunks = append(chunks, rest[start:])
	return chunks
}

// declaratorName returns the declared identifier and, for old-style Tag:name
// declarators, the tag used as the type.
func declaratorName(chunk string) (name, tag string) {
	if eq := strings.Index(chunk, "="); eq >= 0 {
		chunk = chunk[:eq]
	}
	chunk = strings.TrimSpace(chunk)
	if colon := strings.Index(chunk, ":"); colon >= 0 {
		tag = strings.TrimSpace(chunk[:colon])
		chunk = strings.TrimSpace(chunk[colon+1:])
	}
	if bracket := strings.Index(chunk, "["); bracket >= 0 {
		chunk = strings.TrimSpace(chunk[:bracket])
	}
	if chunk == "" || !isIdentStart(chunk[0]) {
		return "", ""
	}
	for i := 0; i < len(chunk); i++ {
		if !isIdentByte(chunk[i]) {
			return "", ""
		}
	}
	return chunk, tag
}

// extractEnum consumes a (possibly anonymous) enum body. Members become
// EnumMember items; anonymous enums contribute members only, since an item
// must carry a non-empty name.
func extractEnum(table *FileItemTable, line string, idx int, cursor *lineCursor, doc string) {
	match := enumPattern.FindStringSubmatchIndex(line)
	if match == nil {
		return
	}
	name := ""
	nameStart, nameEnd := 0, 0
	if match[2] >= 0 {
		name = line[match[2]:match[3]]
		nameStart, nameEnd = match[2], match[3]
	}
	if reservedWords[name] {
		return
	}

	// Require a body before consuming anything: an enum keyword with no
	// opening brace in sight is malformed and must not swallow the file.
	if !strings.Contains(line, "{") {
		found := false
		for j := idx + 1; j < len(cursor.lines); j++ {
			trimmed := strings.TrimSpace(cursor.lines[j])
			if trimmed == "" {
				continue
			}
			found = strings.HasPrefix(trimmed, "{")
			break
		}
		if !found {
			return
		}
	}

	var tracker braceTracker
	tracker.feed(line)
	opened := strings.Contains(line, "{")
	cur := line
	curIdx := idx
	endIdx := idx
	for {
		if opened && tracker.depth <= 0 {
			endIdx = curIdx
			break
		}
		next, more := cursor.Pull()
		if !more {
			return
		}
		cur = next
		curIdx = cursor.Index()
		depthBefore := tracker.depth
		tracker.feed(cur)
		if !opened {
			if strings.Contains(cur, "{") {
				opened = true
			}
			continue
		}
		if depthBefore == 1 {
			extractEnumMembers(table, cur, curIdx)
		}
	}

	// Members on the opening line itself: enum Color { Red, Green };
	if open := strings.Index(line, "{"); open >= 0 {
		inline := line[open+1:]
		if closeIdx := strings.Index(inline, "}"); closeIdx >= 0 {
			inline = inline[:closeIdx]
		}
		extractEnumMembersText(table, inline, line, idx)
	}

	if name != "" {
		table.Add(&Item{
			Name:        name,
			Kind:        KindEnum,
			Detail:      strings.TrimSpace(line),
			Description: doc,
			DeclarationRange: Range{
				Start: Position{Line: idx, Column: nameStart},
				End:   Position{Line: idx, Column: nameEnd},
			},
			FullRange: Range{
				Start: Position{Line: idx, Column: 0},
				End:   Position{Line: endIdx, Column: lineLen(cursor, endIdx, line, idx)},
			},
		})
	}
}

func extractEnumMembers(table *FileItemTable, line string, idx int) {
	text := line
	if open := strings.Index(text, "{"); open >= 0 {
		text = text[open+1:]
	}
	if closeIdx := strings.Index(text, "}"); closeIdx >= 0 {
		text = text[:closeIdx]
	}
	extractEnumMembersText(table, text, line, idx)
}

func extractEnumMembersText(table *FileItemTable, text, line string, idx int) {
	text = stripLineComments(text)
	for _, segment := range strings.Split(text, ",") {
		value := ""
		member := segment
		if eq := strings.Index(segment, "="); eq >= 0 {
			member = segment[:eq]
			value = strings.TrimSpace(segment[eq+1:])
		}
		member = strings.TrimSpace(member)
		if colon := strings.Index(member, ":"); colon >= 0 {
			member = strings.TrimSpace(member[colon+1:])
		}
		if member == "" || !isIdentStart(member[0]) {
			continue
		}
		valid := true
		for i := 0; i < len(member); i++ {
			if !isIdentByte(member[i]) {
				valid = false
				break
			}
		}
		if !valid || reservedWords[member] {
			continue
		}
		col := strings.Index(line, member)
		if col < 0 {
			col = 0
		}
		table.Add(&Item{
			Name:  member,
			Kind:  KindEnumMember,
			Value: value,
			DeclarationRange: Range{
				Start: Position{Line: idx, Column: col},
				End:   Position{Line: idx, Column: col + len(member)},
			},
			FullRange: Range{
				Start: Position{Line: idx, Column: col},
				End:   Position{Line: idx, Column: col + len(member)},
			},
		})
	}
}

func stripLineComments(text string) string {
	for {
		open := strings.Index(text, "/*")
		if open < 0 {
			break
		}
		closeIdx := strings.Index(text[open:], "*/")
		if closeIdx < 0 {
			text = text[:open]
			break
		}
		text = text[:open] + text[open+closeIdx+2:]
	}
	if slash := strings.Index(text, "//"); slash >= 0 {
		text = text[:slash]
	}
	return text
}

// extractEnumStruct consumes the whole body: fields become Variable items
// and methods become Method items, both parented to the struct.
func extractEnumStruct(table *FileItemTable, line string, idx int, cursor *lineCursor, doc string) {
	match := enumStructPattern.FindStringSubmatchIndex(line)
	if match == nil {
		return
	}
	name := line[match[2]:match[3]]

	endIdx := walkTypeBody(table, cursor, line, idx, name, false)

	table.Add(&Item{
		Name:        name,
		Kind:        KindEnumStruct,
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
