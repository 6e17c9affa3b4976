// # internal/query/completion.go
package query

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"pawnlens/internal/parser"
	"pawnlens/internal/resolver"
)

// completion assembles the completion list for a cursor position. Inside a
// string literal nothing completes. At a method-call site the receiver's
// type drives a member lookup over its inheritance chain; everywhere else
// the non-member items visible at that scope are offered.
func (s *Service) completion(uri, line string, pos parser.Position) []CompletionItem {
	if parser.IsInAString(line, pos.Column) {
		return nil
	}

	items := s.visible(uri)
	prefix := typedPrefix(line, pos.Column)

	var entries []CompletionItem
	if resolver.IsMethodCallSite(line, pos.Column) {
		entries = s.memberCompletions(uri, line, pos, items)
	} else {
		entries = s.scopeCompletions(uri, items)
	}
	return rankCompletions(prefix, entries)
}

// scopeCompletions offers every visible non-member item. Variables and
// defines stay local to their owning file.
func (s *Service) scopeCompletions(uri string, items []*parser.Item) []CompletionItem {
	seen := make(map[string]bool)
	var entries []CompletionItem
	for _, it := range items {
		if it.Kind == parser.KindMethod || it.Kind == parser.KindProperty {
			continue
		}
		if isFileLocalKind(it.Kind) && it.FilePath != uri {
			continue
		}
		key := it.Name + "\x00" + kindLabel(it.Kind)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, completionItem(it))
	}
	return entries
}

// memberCompletions resolves the receiver before the dot and offers the
// methods and properties of its inheritance chain. A receiver naming the
// type itself is a static call and filters to static members; an instance
// receiver filters the statics out. The type's own constructor never
// completes as a member.
func (s *Service) memberCompletions(uri, line string, pos parser.Position, items []*parser.Item) []CompletionItem {
	receiver := resolver.ReceiverToken(line, pos.Column)
	if receiver == "" {
		return nil
	}

	typeName := ""
	staticCall := false
	if typeItem := findType(receiver, items); typeItem != nil {
		typeName = typeItem.Name
		staticCall = true
	} else {
		typeName = resolver.DeclaredTypeOf(receiver, pos, uri, items)
	}
	if typeName == "" {
		return nil
	}

	chain := resolver.InheritanceChain(typeName, items)
	if len(chain) == 0 {
		return nil
	}
	inChain := make(map[string]bool, len(chain))
	for _, ancestor := range chain {
		inChain[ancestor.Name] = true
	}

	seen := make(map[string]bool)
	var entries []CompletionItem
	for _, it := range items {
		if it.Kind != parser.KindMethod && it.Kind != parser.KindProperty {
			continue
		}
		if !inChain[it.Parent] || it.IsConstructor() {
			continue
		}
		if it.Kind == parser.KindProperty {
			if staticCall {
				continue
			}
		} else if it.IsStatic() != staticCall {
			continue
		}
		key := it.Name + "\x00" + kindLabel(it.Kind)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, completionItem(it))
	}
	return entries
}

func findType(name string, items []*parser.Item) *parser.Item {
	for _, it := range items {
		if it.Name == name && (it.Kind == parser.KindMethodMap || it.Kind == parser.KindEnumStruct) {
			return it
		}
	}
	return nil
}

func completionItem(it *parser.Item) CompletionItem {
	return CompletionItem{
		Label:         it.Name,
		Kind:          kindLabel(it.Kind),
		Detail:        it.Detail,
		Documentation: it.Description,
	}
}

// typedPrefix is the partial identifier directly before the cursor.
func typedPrefix(line string, column int) string {
	if column > len(line) {
		column = len(line)
	}
	start := column
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	return line[start:column]
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// rankCompletions orders exact-prefix matches first, fuzzy matches after,
// and drops entries matching neither. An empty prefix keeps the list as is.
func rankCompletions(prefix string, entries []CompletionItem) []CompletionItem {
	if prefix == "" || len(entries) == 0 {
		return entries
	}

	var exact, rest []CompletionItem
	var restLabels []string
	lower := strings.ToLower(prefix)
	for _, entry := range entries {
		if strings.HasPrefix(strings.ToLower(entry.Label), lower) {
			exact = append(exact, entry)
		} else {
			rest = append(rest, entry)
			restLabels = append(restLabels, entry.Label)
		}
	}
	sort.SliceStable(exact, func(i, j int) bool { return exact[i].Label < exact[j].Label })

	matches := fuzzy.Find(prefix, restLabels)
	ranked := make([]CompletionItem, 0, len(exact)+len(matches))
	ranked = append(ranked, exact...)
	for _, m := range matches {
		ranked = append(ranked, rest[m.Index])
	}
	return ranked
}
