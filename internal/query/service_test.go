// # internal/query/service_test.go
package query

import (
	"context"
	"testing"

	"pawnlens/internal/graph"
	"pawnlens/internal/parser"
)

const pluginURI = "/proj/plugin.sp"

const pluginSource = `#include "db"
#define PLUGIN_VERSION "1.0"

Database g_db = null;

void OnStart()
{
	int local_count = 0;
}

void Outer(int a, int b)
{
}
`

const dbSource = `methodmap Handle
{
	public void Close();
}

methodmap Database < Handle
{
	public Database(const char[] host);
	public native bool Query(const char[] sql);
	public static native Database Connect(const char[] host);

	property int AffectedRows
	{
		public native get();
	}
}

/**
 * Formats a message.
 *
 * @param format   Format string.
 * @param value    Value to splice.
 */
native void FormatMessage(const char[] format, int value);

#define DB_TIMEOUT 30
`

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo := graph.NewRepository(func(uri string) (string, bool) {
		if uri == "/proj/db.inc" {
			return dbSource, true
		}
		return "", false
	}, nil)
	repo.IndexFile(pluginURI, pluginSource, false)
	return NewService(repo, nil)
}

func labels(entries []CompletionItem) map[string]bool {
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.Label] = true
	}
	return out
}

func TestDefinitionLookup(t *testing.T) {
	svc := newTestService(t)

	line := "\tg_db.Query(sql);"
	links := svc.Definition(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: 8})
	if len(links) != 1 {
		t.Fatalf("links = %d, want 1", len(links))
	}
	if links[0].URI != "/proj/db.inc" {
		t.Errorf("definition uri = %q, want /proj/db.inc", links[0].URI)
	}
}

func TestDefinitionFileLocalFilter(t *testing.T) {
	svc := newTestService(t)

	// DB_TIMEOUT lives in db.inc; defines never resolve across files.
	line := "int t = DB_TIMEOUT;"
	links := svc.Definition(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: 10})
	if len(links) != 0 {
		t.Errorf("cross-file define resolved: %+v", links)
	}

	line = "PrintToServer(PLUGIN_VERSION);"
	links = svc.Definition(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: 16})
	if len(links) != 1 {
		t.Errorf("same-file define links = %d, want 1", len(links))
	}
}

func TestScopeCompletion(t *testing.T) {
	svc := newTestService(t)

	entries := svc.Completion(context.Background(), pluginURI, "", parser.Position{Line: 7, Column: 0})
	got := labels(entries)

	for _, want := range []string{"PLUGIN_VERSION", "g_db", "OnStart", "FormatMessage", "Database", "Handle"} {
		if !got[want] {
			t.Errorf("%s missing from scope completion", want)
		}
	}
	for _, reject := range []string{"Query", "AffectedRows", "DB_TIMEOUT"} {
		if got[reject] {
			t.Errorf("%s should not appear in scope completion", reject)
		}
	}
}

func TestScopeCompletionPrefixRanking(t *testing.T) {
	svc := newTestService(t)

	line := "PLU"
	entries := svc.Completion(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: 3})
	if len(entries) == 0 {
		t.Fatal("no completions for typed prefix")
	}
	if entries[0].Label != "PLUGIN_VERSION" {
		t.Errorf("first entry = %q, want PLUGIN_VERSION", entries[0].Label)
	}
}

func TestCompletionInsideStringSuppressed(t *testing.T) {
	svc := newTestService(t)

	line := `Print("PLU`
	entries := svc.Completion(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: len(line)})
	if len(entries) != 0 {
		t.Errorf("completion inside a string returned %d entries", len(entries))
	}
}

func TestInstanceMemberCompletion(t *testing.T) {
	svc := newTestService(t)

	line := "\tg_db."
	entries := svc.Completion(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: len(line)})
	got := labels(entries)

	for _, want := range []string{"Query", "Close", "AffectedRows"} {
		if !got[want] {
			t.Errorf("%s missing from instance member completion", want)
		}
	}
	if got["Connect"] {
		t.Error("static method offered on an instance receiver")
	}
	if got["Database"] {
		t.Error("constructor offered as a member")
	}
}

func TestStaticMemberCompletion(t *testing.T) {
	svc := newTestService(t)

	line := "Database."
	entries := svc.Completion(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: len(line)})
	got := labels(entries)

	if !got["Connect"] {
		t.Error("static method missing on a type-name receiver")
	}
	for _, reject := range []string{"Query", "Close", "AffectedRows", "Database"} {
		if got[reject] {
			t.Errorf("%s should not appear on a static call", reject)
		}
	}
}

func TestSignatureHelp(t *testing.T) {
	svc := newTestService(t)

	line := "\tFormatMessage(fmt, "
	help := svc.SignatureHelp(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: len(line)})
	if help == nil {
		t.Fatal("no signature help")
	}
	if len(help.Parameters) != 2 {
		t.Fatalf("parameters = %d, want 2", len(help.Parameters))
	}
	if help.ActiveParameter != 1 {
		t.Errorf("active parameter = %d, want 1", help.ActiveParameter)
	}
	if help.Parameters[0].Documentation != "Format string." {
		t.Errorf("param 0 documentation = %q", help.Parameters[0].Documentation)
	}
}

func TestSignatureHelpClosedCall(t *testing.T) {
	svc := newTestService(t)

	line := "Outer(1, 2)"
	if help := svc.SignatureHelp(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: len(line)}); help != nil {
		t.Error("closed call should report no signature")
	}
}

func TestSignatureHelpNestedCall(t *testing.T) {
	svc := newTestService(t)

	line := "Outer(FormatMessage(fmt, 2), "
	help := svc.SignatureHelp(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: len(line)})
	if help == nil {
		t.Fatal("no signature help")
	}
	if help.Label == "" || help.ActiveParameter != 1 {
		t.Errorf("help = %+v, want Outer with active parameter 1", help)
	}
	if len(help.Parameters) != 2 {
		t.Errorf("parameters = %d, want Outer's 2", len(help.Parameters))
	}
}

func TestSignatureHelpUnknownCallee(t *testing.T) {
	svc := newTestService(t)

	line := "NoSuchFunc(1, "
	if help := svc.SignatureHelp(context.Background(), pluginURI, line, parser.Position{Line: 7, Column: len(line)}); help != nil {
		t.Error("unknown callee should report no signature")
	}
}
