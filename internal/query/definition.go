// # internal/query/definition.go
package query

import (
	"pawnlens/internal/parser"
)

// definition returns one location link per visible item whose name matches
// the token under the cursor. File-local kinds (variables and defines) only
// match from their owning file.
func (s *Service) definition(uri, line string, pos parser.Position) []LocationLink {
	token := parser.WordAt(line, pos.Column)
	if token == "" {
		return nil
	}

	var links []LocationLink
	for _, it := range s.visible(uri) {
		if it.Name != token {
			continue
		}
		if isFileLocalKind(it.Kind) && it.FilePath != uri {
			continue
		}
		links = append(links, LocationLink{URI: it.FilePath, Range: it.DeclarationRange})
	}
	return links
}

// isFileLocalKind marks kinds whose declarations never leak across files
// without an include actually re-declaring them.
func isFileLocalKind(k parser.ItemKind) bool {
	return k == parser.KindVariable || k == parser.KindDefine
}
