// # internal/resolver/resolver.go
//
// Position-to-scope resolution over the aggregate item set: which callable
// or type encloses the cursor, what type a receiver token carries, and the
// inheritance chain of a methodmap.
package resolver

import (
	"strings"

	"pawnlens/internal/parser"
)

// EnclosingCallable returns the innermost Function or Method of fileURI whose
// full range contains pos, or nil at file scope.
func EnclosingCallable(pos parser.Position, fileURI string, items []*parser.Item) *parser.Item {
	return innermost(pos, fileURI, items, func(it *parser.Item) bool {
		return it.Kind == parser.KindFunction || it.Kind == parser.KindMethod
	})
}

// EnclosingTypeScope returns the innermost EnumStruct or MethodMap of fileURI
// whose full range contains pos. It resolves the implicit `this`.
func EnclosingTypeScope(pos parser.Position, fileURI string, items []*parser.Item) *parser.Item {
	return innermost(pos, fileURI, items, func(it *parser.Item) bool {
		return it.Kind == parser.KindEnumStruct || it.Kind == parser.KindMethodMap
	})
}

func innermost(pos parser.Position, fileURI string, items []*parser.Item, match func(*parser.Item) bool) *parser.Item {
	var best *parser.Item
	for _, it := range items {
		if it.FilePath != fileURI || !match(it) {
			continue
		}
		if !it.FullRange.Contains(pos) {
			continue
		}
		if best == nil || startsAfter(it.FullRange.Start, best.FullRange.Start) {
			best = it
		}
	}
	return best
}

func startsAfter(a, b parser.Position) bool {
	if a.Line != b.Line {
		return a.Line > b.Line
	}
	return a.Column > b.Column
}

// IsMethodCallSite reports whether the cursor sits directly after a receiver
// expression: scanning backward from column, identifier characters are
// skipped and the scan must land on a dot before any other character.
func IsMethodCallSite(line string, column int) bool {
	if column > len(line) {
		column = len(line)
	}
	i := column - 1
	for i >= 0 && isIdentByte(line[i]) {
		i--
	}
	return i >= 0 && line[i] == '.'
}

// ReceiverToken returns the identifier immediately before the call-site dot,
// or "" when the cursor is not at a method-call site.
func ReceiverToken(line string, column int) string {
	if column > len(line) {
		column = len(line)
	}
	i := column - 1
	for i >= 0 && isIdentByte(line[i]) {
		i--
	}
	if i < 0 || line[i] != '.' {
		return ""
	}
	end := i
	i--
	for i >= 0 && isIdentByte(line[i]) {
		i--
	}
	return line[i+1 : end]
}

// DeclaredTypeOf resolves the declared type name of token at pos: enclosing
// callable parameters first, then locals inside that callable, then fields of
// the enclosing type, then file and included globals. `this` resolves to the
// enclosing type itself. Empty when nothing declares the token.
func DeclaredTypeOf(token string, pos parser.Position, fileURI string, items []*parser.Item) string {
	if token == "" {
		return ""
	}

	enclosingType := EnclosingTypeScope(pos, fileURI, items)
	if token == "this" {
		if enclosingType != nil {
			return enclosingType.Name
		}
		return ""
	}

	callable := EnclosingCallable(pos, fileURI, items)
	if callable != nil {
		for _, param := range callable.Parameters {
			if name, typ := splitParameterLabel(param.Label); name == token {
				return typ
			}
		}
		for _, it := range items {
			if it.Kind != parser.KindVariable || it.FilePath != fileURI || it.Name != token {
				continue
			}
			if callable.FullRange.Contains(it.DeclarationRange.Start) {
				return it.Type
			}
		}
	}

	if enclosingType != nil {
		for _, it := range items {
			if it.Kind == parser.KindVariable && it.Parent == enclosingType.Name && it.Name == token {
				return it.Type
			}
		}
	}

	for _, it := range items {
		if it.Kind != parser.KindVariable || it.Parent != "" || it.Name != token {
			continue
		}
		// Locals of other callables also carry an empty Parent; only a
		// declaration outside every callable body is a global.
		if insideAnyCallable(it, items) {
			continue
		}
		return it.Type
	}
	return ""
}

func insideAnyCallable(v *parser.Item, items []*parser.Item) bool {
	for _, it := range items {
		if it.FilePath != v.FilePath {
			continue
		}
		if it.Kind != parser.KindFunction && it.Kind != parser.KindMethod {
			continue
		}
		if it.FullRange.Contains(v.DeclarationRange.Start) {
			return true
		}
	}
	return false
}

// InheritanceChain walks base-type links from typeName outward, collecting
// each ancestor. The visited set breaks cycles in malformed input; an
// enum struct yields a single-element chain.
func InheritanceChain(typeName string, items []*parser.Item) []*parser.Item {
	byName := make(map[string]*parser.Item)
	for _, it := range items {
		if it.Kind == parser.KindMethodMap || it.Kind == parser.KindEnumStruct {
			if _, ok := byName[it.Name]; !ok {
				byName[it.Name] = it
			}
		}
	}

	var chain []*parser.Item
	visited := make(map[string]bool)
	current := typeName
	for current != "" && !visited[current] {
		visited[current] = true
		it, ok := byName[current]
		if !ok {
			break
		}
		chain = append(chain, it)
		if it.Kind != parser.KindMethodMap {
			break
		}
		current = it.Base
	}
	return chain
}

// splitParameterLabel pulls the declared name and type out of a raw parameter
// label such as "const char[] host", "int &count" or "Float:pos".
func splitParameterLabel(label string) (name, typ string) {
	clean := strings.TrimSpace(label)
	if eq := strings.IndexByte(clean, '='); eq >= 0 {
		clean = strings.TrimSpace(clean[:eq])
	}
	if colon := strings.IndexByte(clean, ':'); colon >= 0 {
		typ = strings.TrimSpace(stripDecorations(clean[:colon]))
		name = identifierOnly(clean[colon+1:])
		return name, typ
	}
	fields := strings.Fields(clean)
	if len(fields) == 0 {
		return "", ""
	}
	name = identifierOnly(fields[len(fields)-1])
	for i := len(fields) - 2; i >= 0; i-- {
		word := stripDecorations(fields[i])
		if word == "" || word == "const" || word == "in" || word == "out" {
			continue
		}
		return name, word
	}
	return name, ""
}

func stripDecorations(word string) string {
	word = strings.TrimSpace(word)
	word = strings.TrimSuffix(word, "[]")
	word = strings.TrimPrefix(word, "&")
	return strings.TrimSpace(word)
}

func identifierOnly(raw string) string {
	raw = strings.TrimSpace(raw)
	start := 0
	for start < len(raw) && !isIdentStart(raw[start]) {
		start++
	}
	end := start
	for end < len(raw) && isIdentByte(raw[end]) {
		end++
	}
	return raw[start:end]
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
