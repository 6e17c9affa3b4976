// # internal/graph/include_resolver_test.go
package graph

import (
	"testing"

	"pawnlens/internal/parser"
)

func TestResolveRelativeInclude(t *testing.T) {
	candidates := ResolveInclude("/proj/plugin.sp", parser.Include{
		Target:   "shared/util",
		Relative: true,
	})
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].URI != "/proj/shared/util.inc" {
		t.Errorf("candidate 0 = %q", candidates[0].URI)
	}
	if candidates[1].URI != "/proj/shared/util.sp" {
		t.Errorf("extension fallback = %q", candidates[1].URI)
	}
	for _, c := range candidates {
		if c.BuiltIn {
			t.Errorf("relative candidate %q marked builtin", c.URI)
		}
	}
}

func TestResolveRelativeIncludeKeepsExplicitExtension(t *testing.T) {
	candidates := ResolveInclude("/proj/plugin.sp", parser.Include{
		Target:   "helpers.sp",
		Relative: true,
	})
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1 (no self-substitution)", len(candidates))
	}
	if candidates[0].URI != "/proj/helpers.sp" {
		t.Errorf("candidate = %q", candidates[0].URI)
	}
}

func TestResolveSearchPathInclude(t *testing.T) {
	candidates := ResolveInclude("/proj/plugin.sp", parser.Include{Target: "sourcemod"})
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].URI != "/proj/include/sourcemod.inc" || candidates[0].BuiltIn {
		t.Errorf("sibling candidate = %+v", candidates[0])
	}
	if candidates[1].URI != "builtin://sourcemod" || !candidates[1].BuiltIn {
		t.Errorf("builtin fallback = %+v", candidates[1])
	}
}

func TestResolveIncludeEmptyTarget(t *testing.T) {
	if got := ResolveInclude("/proj/plugin.sp", parser.Include{Target: "  "}); got != nil {
		t.Errorf("blank target should yield no candidates, got %v", got)
	}
}

func TestIsBuiltinURI(t *testing.T) {
	if !IsBuiltinURI("builtin://sourcemod") {
		t.Error("builtin identity not recognized")
	}
	if IsBuiltinURI("/proj/include/sourcemod.inc") {
		t.Error("project identity misclassified as builtin")
	}
}
