// # internal/query/signature.go
package query

import (
	"strings"

	"pawnlens/internal/parser"
)

// signatureHelp scans backward from the cursor for the enclosing call: count
// unmatched commas before the nearest unmatched '(' for the active parameter
// index and read the identifier before that '(' as the callee. A ')' right
// before the cursor means the call is already closed.
func (s *Service) signatureHelp(uri, line string, pos parser.Position) *SignatureHelp {
	column := pos.Column
	if column > len(line) {
		column = len(line)
	}
	if column > 0 && line[column-1] == ')' {
		return nil
	}

	depth := 0
	commas := 0
	open := -1
	for i := column - 1; i >= 0; i-- {
		switch line[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		case ',':
			if depth == 0 {
				commas++
			}
		}
		if open >= 0 {
			break
		}
	}
	if open <= 0 {
		return nil
	}

	end := open
	for end > 0 && line[end-1] == ' ' {
		end--
	}
	start := end
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	callee := line[start:end]
	if callee == "" {
		return nil
	}

	target := findCallable(callee, s.visible(uri))
	if target == nil {
		return nil
	}

	params := make([]ParameterInfo, len(target.Parameters))
	for i, p := range target.Parameters {
		params[i] = ParameterInfo{Label: p.Label, Documentation: p.Documentation}
	}
	return &SignatureHelp{
		Label:           signatureLabel(target),
		Documentation:   target.Description,
		Parameters:      params,
		ActiveParameter: commas,
	}
}

// findCallable prefers a free function over a method of the same name.
func findCallable(name string, items []*parser.Item) *parser.Item {
	var method *parser.Item
	for _, it := range items {
		if it.Name != name {
			continue
		}
		switch it.Kind {
		case parser.KindFunction:
			return it
		case parser.KindMethod:
			if method == nil {
				method = it
			}
		}
	}
	return method
}

func signatureLabel(it *parser.Item) string {
	if it.Detail != "" {
		return it.Detail
	}
	labels := make([]string, len(it.Parameters))
	for i, p := range it.Parameters {
		labels[i] = p.Label
	}
	return it.Name + "(" + strings.Join(labels, ", ") + ")"
}
