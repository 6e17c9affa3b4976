// # internal/graph/symbol_store_test.go
package graph

import (
	"path/filepath"
	"testing"

	"pawnlens/internal/parser"
)

func openTestStore(t *testing.T) *SQLiteSnapshotStore {
	t.Helper()
	store, err := OpenSnapshotStore(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := openTestStore(t)

	text := "#define MAX 4\nint g_count;\n"
	table := parser.Parse("builtin://sourcemod", text, true)
	hash := HashText(text)

	if err := store.SaveTable(table, hash); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.LoadTable("builtin://sourcemod", hash)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected a snapshot hit")
	}
	if len(loaded.Items) != len(table.Items) {
		t.Fatalf("items = %d, want %d", len(loaded.Items), len(table.Items))
	}
	if it, found := loaded.Lookup("MAX"); !found || it.Value != "4" {
		t.Errorf("index not rebuilt after load: %+v", it)
	}
	if !loaded.IsBuiltIn {
		t.Error("builtin flag lost in round trip")
	}
}

func TestSnapshotStaleHashMisses(t *testing.T) {
	store := openTestStore(t)

	text := "int g_count;\n"
	table := parser.Parse("/proj/plugin.sp", text, false)
	if err := store.SaveTable(table, HashText(text)); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, ok, err := store.LoadTable("/proj/plugin.sp", HashText("int g_count = 1;\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Error("changed content must miss the snapshot")
	}
}

func TestSnapshotPrune(t *testing.T) {
	store := openTestStore(t)

	for _, uri := range []string{"/proj/a.sp", "/proj/b.sp"} {
		text := "int x;\n"
		if err := store.SaveTable(parser.Parse(uri, text, false), HashText(text)); err != nil {
			t.Fatalf("save %s: %v", uri, err)
		}
	}

	if err := store.Prune([]string{"/proj/a.sp"}); err != nil {
		t.Fatalf("prune: %v", err)
	}

	if _, ok, _ := store.LoadTable("/proj/a.sp", HashText("int x;\n")); !ok {
		t.Error("kept identity was pruned")
	}
	if _, ok, _ := store.LoadTable("/proj/b.sp", HashText("int x;\n")); ok {
		t.Error("stale identity survived prune")
	}
}

func TestSnapshotGenerationAssigned(t *testing.T) {
	store := openTestStore(t)
	if store.Generation() == "" {
		t.Error("store session should carry a generation id")
	}
}
