// # internal/graph/repository.go
package graph

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"pawnlens/internal/parser"
	"pawnlens/internal/shared/observability"
)

// Loader reads the contents of a file identity. It returns false when the
// identity does not exist; the repository then settles on an empty table so
// unresolved symbols simply never appear in results.
type Loader func(uri string) (string, bool)

// Repository is the process-wide map from file identity to File Item Table.
// Tables are replaced wholesale under the lock; readers never observe a
// half-updated table. Built-in tables are populated once and stay immutable.
type Repository struct {
	log  *slog.Logger
	load Loader

	mu       sync.RWMutex
	tables   map[string]*parser.FileItemTable
	resolved map[string][]string // per-file include targets, discovery order
}

func NewRepository(load Loader, log *slog.Logger) *Repository {
	if load == nil {
		load = func(string) (string, bool) { return "", false }
	}
	if log == nil {
		log = slog.Default()
	}
	return &Repository{
		log:      log,
		load:     load,
		tables:   make(map[string]*parser.FileItemTable),
		resolved: make(map[string][]string),
	}
}

// IndexFile parses text and swaps in the resulting table. For built-in
// identities an existing table wins; the stdlib is parsed once at startup
// and never changes underneath a query.
func (r *Repository) IndexFile(uri, text string, builtin bool) *parser.FileItemTable {
	if builtin {
		r.mu.RLock()
		existing, ok := r.tables[uri]
		r.mu.RUnlock()
		if ok {
			return existing
		}
	}

	timer := prometheus.NewTimer(observability.ParseDuration)
	table := parser.Parse(uri, text, builtin)
	timer.ObserveDuration()

	r.mu.Lock()
	r.tables[uri] = table
	delete(r.resolved, uri)
	r.mu.Unlock()

	observability.FilesIndexedTotal.WithLabelValues(boolLabel(builtin)).Inc()
	r.log.Debug("indexed file", "uri", uri, "items", len(table.Items), "includes", len(table.Includes), "builtin", builtin)
	return table
}

// AdoptTable installs a table built elsewhere, typically loaded from the
// snapshot store. Builtin identities keep their existing table.
func (r *Repository) AdoptTable(table *parser.FileItemTable) {
	if table == nil || table.URI == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if table.IsBuiltIn {
		if _, ok := r.tables[table.URI]; ok {
			return
		}
	}
	r.tables[table.URI] = table
	delete(r.resolved, table.URI)
}

// Remove drops a file identity, e.g. after deletion on disk. Items of other
// files that resolved includes to it keep pointing at the identity; the next
// EnsureIncludesIndexed settles it on an empty table again.
func (r *Repository) Remove(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, uri)
	delete(r.resolved, uri)
}

// Table returns the current table for an identity, if any.
func (r *Repository) Table(uri string) (*parser.FileItemTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[uri]
	return t, ok
}

// Len reports how many file identities are indexed.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// URIs returns every indexed identity. Order is unspecified.
func (r *Repository) URIs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tables))
	for uri := range r.tables {
		out = append(out, uri)
	}
	return out
}

// EnsureIncludesIndexed walks the include graph from uri with an explicit
// worklist and visited set, indexing every reachable file that is not yet
// present. Cycles terminate through the visited set, never through stack
// depth. An include whose candidates all fail to load settles on its
// fallback identity with an empty table.
func (r *Repository) EnsureIncludesIndexed(uri string) {
	visited := map[string]bool{uri: true}
	worklist := []string{uri}

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]

		table, ok := r.Table(current)
		if !ok {
			continue
		}

		targets := make([]string, 0, len(table.Includes))
		for _, inc := range table.Includes {
			target := r.settleInclude(current, inc)
			if target == "" {
				continue
			}
			targets = append(targets, target)
			if !visited[target] {
				visited[target] = true
				worklist = append(worklist, target)
			}
		}

		r.mu.Lock()
		r.resolved[current] = targets
		r.mu.Unlock()
	}
}

// settleInclude probes the candidate identities for one directive and returns
// the identity the include resolves to. The first candidate that is already
// indexed or can be loaded wins; otherwise the fallback candidate gets an
// empty table.
func (r *Repository) settleInclude(includingURI string, inc parser.Include) string {
	candidates := ResolveInclude(includingURI, inc)
	if len(candidates) == 0 {
		return ""
	}

	for _, cand := range candidates {
		if _, ok := r.Table(cand.URI); ok {
			return cand.URI
		}
		if text, ok := r.load(cand.URI); ok {
			r.IndexFile(cand.URI, text, cand.BuiltIn || IsBuiltinURI(cand.URI))
			return cand.URI
		}
	}

	fallback := candidates[len(candidates)-1]
	empty := parser.NewFileItemTable(fallback.URI, fallback.BuiltIn)
	r.mu.Lock()
	if _, ok := r.tables[fallback.URI]; !ok {
		r.tables[fallback.URI] = empty
	}
	r.mu.Unlock()

	observability.UnresolvedIncludesTotal.Inc()
	if !inc.Optional {
		r.log.Debug("include did not resolve", "from", includingURI, "target", inc.Target)
	}
	return fallback.URI
}

// VisibleItems aggregates the items of uri and its transitive includes, in
// include-discovery order then per-file declaration order. Cross-file order
// does not encode declaration precedence; same-named items from different
// files all appear.
func (r *Repository) VisibleItems(uri string) []*parser.Item {
	r.EnsureIncludesIndexed(uri)

	r.mu.RLock()
	defer r.mu.RUnlock()

	visited := map[string]bool{uri: true}
	order := []string{uri}
	for i := 0; i < len(order); i++ {
		for _, target := range r.resolved[order[i]] {
			if !visited[target] {
				visited[target] = true
				order = append(order, target)
			}
		}
	}

	var items []*parser.Item
	for _, id := range order {
		if table, ok := r.tables[id]; ok {
			items = append(items, table.Items...)
		}
	}
	return items
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
