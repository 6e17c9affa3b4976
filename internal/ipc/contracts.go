// # internal/ipc/contracts.go
package ipc

import "pawnlens/internal/query"

// Operation names accepted on the wire.
const (
	OpDefinition = "definition"
	OpCompletion = "completion"
	OpSignature  = "signature"
	OpStatus     = "status"
	OpReindex    = "reindex"
)

// Request is one newline-delimited JSON message on stdin. Position fields are
// 0-based; Text carries the current text of the cursor's line, since the
// index only stores declarations, not raw file contents.
type Request struct {
	ID     any    `json:"id,omitempty"`
	Op     string `json:"op"`
	URI    string `json:"uri,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Text   string `json:"text,omitempty"`
}

type Response struct {
	ID     any          `json:"id,omitempty"`
	OK     bool         `json:"ok"`
	Result any          `json:"result,omitempty"`
	Error  *ServerError `json:"error,omitempty"`
}

type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResult answers the status operation.
type StatusResult struct {
	Files      int    `json:"files"`
	HeapMB     uint64 `json:"heap_mb"`
	Generation string `json:"generation,omitempty"`
}

// ReindexResult answers the reindex operation.
type ReindexResult struct {
	Files int `json:"files"`
}

// DefinitionResult wraps definition links so an empty answer is explicit.
type DefinitionResult struct {
	Links []query.LocationLink `json:"links"`
}

type CompletionResult struct {
	Items []query.CompletionItem `json:"items"`
}

type SignatureResult struct {
	Signature *query.SignatureHelp `json:"signature"`
}
