// # internal/query/models.go
package query

import "pawnlens/internal/parser"

// LocationLink points an editor at the name token of a declaration.
type LocationLink struct {
	URI   string       `json:"uri"`
	Range parser.Range `json:"range"`
}

// CompletionItem is one entry of a completion list.
type CompletionItem struct {
	Label         string `json:"label"`
	Kind          string `json:"kind"`
	Detail        string `json:"detail,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// ParameterInfo mirrors one parameter of the active signature.
type ParameterInfo struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation,omitempty"`
}

// SignatureHelp describes the call the cursor currently sits in.
type SignatureHelp struct {
	Label           string          `json:"label"`
	Documentation   string          `json:"documentation,omitempty"`
	Parameters      []ParameterInfo `json:"parameters"`
	ActiveParameter int             `json:"activeParameter"`
}
