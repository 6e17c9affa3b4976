// # internal/graph/include_resolver.go
package graph

import (
	"path"
	"strings"

	"pawnlens/internal/parser"
	"pawnlens/internal/shared/util"
)

// File identities are slash-separated paths for project files and
// BuiltinScheme-prefixed names for the standard library. The builtin
// namespace guarantees a stdlib file never collides with a project file of
// the same name.
const BuiltinScheme = "builtin://"

const (
	includeExt = ".inc"
	sourceExt  = ".sp"
)

// ResolvedInclude is one candidate identity for a raw include directive.
type ResolvedInclude struct {
	URI     string
	BuiltIn bool
}

// IsBuiltinURI reports whether an identity lives in the stdlib namespace.
func IsBuiltinURI(uri string) bool {
	return strings.HasPrefix(uri, BuiltinScheme)
}

// ResolveInclude turns a raw directive into an ordered candidate list. The
// caller probes candidates in order and settles on the first one it can load;
// the final candidate is the fallback identity used when nothing loads.
//
// Quoted form resolves against the including file's directory, then retries
// with the source extension substituted. Angle form looks under a sibling
// include/ directory, then falls back to the stdlib namespace.
//
// This is pure string work. No file system access happens here; probing is
// the repository's job, which keeps the extractors non-reentrant.
func ResolveInclude(includingURI string, inc parser.Include) []ResolvedInclude {
	target := util.NormalizePatternPath(inc.Target)
	if target == "" {
		return nil
	}
	dir := path.Dir(includingURI)

	if inc.Relative {
		exact := withDefaultExt(target, includeExt)
		candidates := []ResolvedInclude{{URI: path.Join(dir, exact)}}
		if alt := substituteExt(exact, sourceExt); alt != exact {
			candidates = append(candidates, ResolvedInclude{URI: path.Join(dir, alt)})
		}
		return candidates
	}

	name := withDefaultExt(target, includeExt)
	return []ResolvedInclude{
		{URI: path.Join(dir, "include", name)},
		{URI: BuiltinScheme + strings.TrimSuffix(name, includeExt), BuiltIn: true},
	}
}

func withDefaultExt(target, ext string) string {
	if path.Ext(target) == "" {
		return target + ext
	}
	return target
}

func substituteExt(target, ext string) string {
	old := path.Ext(target)
	if old == "" {
		return target + ext
	}
	return strings.TrimSuffix(target, old) + ext
}
