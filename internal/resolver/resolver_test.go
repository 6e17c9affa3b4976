// # internal/resolver/resolver_test.go
package resolver

import (
	"testing"

	"pawnlens/internal/parser"
)

const pluginURI = "/proj/plugin.sp"

func parseItems(t *testing.T, code string) []*parser.Item {
	t.Helper()
	return parser.Parse(pluginURI, code, false).Items
}

const scopeFixture = `methodmap Handle
{
	public void Close();
}

methodmap Database < Handle
{
	public native bool Query(const char[] sql);
}

Database g_db = null;

void Run(Database conn)
{
	int rows = 0;
}
`

func TestEnclosingCallable(t *testing.T) {
	items := parseItems(t, scopeFixture)

	callable := EnclosingCallable(parser.Position{Line: 14, Column: 5}, pluginURI, items)
	if callable == nil || callable.Name != "Run" {
		t.Fatalf("enclosing callable = %+v, want Run", callable)
	}

	if got := EnclosingCallable(parser.Position{Line: 10, Column: 0}, pluginURI, items); got != nil {
		t.Errorf("global scope should have no enclosing callable, got %s", got.Name)
	}

	if got := EnclosingCallable(parser.Position{Line: 14, Column: 5}, "/proj/other.sp", items); got != nil {
		t.Errorf("containment must not cross files, got %s", got.Name)
	}
}

func TestDeclaredTypeOf(t *testing.T) {
	items := parseItems(t, scopeFixture)
	inBody := parser.Position{Line: 14, Column: 5}

	cases := []struct {
		token string
		want  string
	}{
		{"conn", "Database"}, // parameter
		{"rows", "int"},      // local
		{"g_db", "Database"}, // global
		{"missing", ""},
	}
	for _, tc := range cases {
		if got := DeclaredTypeOf(tc.token, inBody, pluginURI, items); got != tc.want {
			t.Errorf("DeclaredTypeOf(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestDeclaredTypeOfMemberBodyLocal(t *testing.T) {
	items := parseItems(t, `methodmap Conn < Handle
{
	public void Run()
	{
		Conn other = Clone(this);
	}
}
`)
	inBody := parser.Position{Line: 4, Column: 8}

	if got := DeclaredTypeOf("other", inBody, pluginURI, items); got != "Conn" {
		t.Errorf("member body local type = %q, want Conn", got)
	}
}

func TestDeclaredTypeOfIgnoresForeignLocals(t *testing.T) {
	items := parseItems(t, `void Setup()
{
	Handle timer = null;
}

void Teardown()
{
	int unused = 0;
}
`)

	// Another function's local must not satisfy the global fallback.
	inTeardown := parser.Position{Line: 7, Column: 2}
	if got := DeclaredTypeOf("timer", inTeardown, pluginURI, items); got != "" {
		t.Errorf("foreign local resolved as %q, want empty", got)
	}

	atFileScope := parser.Position{Line: 4, Column: 0}
	if got := DeclaredTypeOf("timer", atFileScope, pluginURI, items); got != "" {
		t.Errorf("local visible at file scope as %q, want empty", got)
	}
}

func TestEnclosingTypeScopeAndThis(t *testing.T) {
	items := parseItems(t, `enum struct Point
{
	float x;
	float y;

	void Scale(float factor)
	{
		this.x *= factor;
	}
}
`)
	inMethod := parser.Position{Line: 7, Column: 3}

	scope := EnclosingTypeScope(inMethod, pluginURI, items)
	if scope == nil || scope.Name != "Point" {
		t.Fatalf("enclosing type = %+v, want Point", scope)
	}

	callable := EnclosingCallable(inMethod, pluginURI, items)
	if callable == nil || callable.Name != "Scale" {
		t.Fatalf("enclosing callable = %+v, want Scale", callable)
	}

	if got := DeclaredTypeOf("this", inMethod, pluginURI, items); got != "Point" {
		t.Errorf("this resolves to %q, want Point", got)
	}
	if got := DeclaredTypeOf("factor", inMethod, pluginURI, items); got != "float" {
		t.Errorf("factor type = %q, want float", got)
	}
	if got := DeclaredTypeOf("x", inMethod, pluginURI, items); got != "float" {
		t.Errorf("field x type = %q, want float", got)
	}
}

func TestIsMethodCallSite(t *testing.T) {
	cases := []struct {
		line   string
		column int
		want   bool
	}{
		{"db.Qu", 6, true},
		{"db.", 3, true},
		{"\tPrint(name", 11, false},
		{"value", 5, false},
		{"a.b.Me", 6, true},
	}
	for _, tc := range cases {
		if got := IsMethodCallSite(tc.line, tc.column); got != tc.want {
			t.Errorf("IsMethodCallSite(%q, %d) = %v, want %v", tc.line, tc.column, got, tc.want)
		}
	}
}

func TestReceiverToken(t *testing.T) {
	if got := ReceiverToken("db.Qu", 6); got != "db" {
		t.Errorf("receiver = %q, want db", got)
	}
	if got := ReceiverToken("a.b.Me", 6); got != "b" {
		t.Errorf("chained receiver = %q, want b", got)
	}
	if got := ReceiverToken("Print(x", 7); got != "" {
		t.Errorf("non call site receiver = %q, want empty", got)
	}
}

func TestInheritanceChain(t *testing.T) {
	items := parseItems(t, scopeFixture)

	chain := InheritanceChain("Database", items)
	if len(chain) != 2 || chain[0].Name != "Database" || chain[1].Name != "Handle" {
		t.Fatalf("chain = %v", chainNames(chain))
	}
}

func TestInheritanceChainCycleGuard(t *testing.T) {
	items := parseItems(t, `methodmap A < B
{
}
methodmap B < A
{
}
`)
	chain := InheritanceChain("A", items)
	if len(chain) != 2 || chain[0].Name != "A" || chain[1].Name != "B" {
		t.Fatalf("cyclic chain = %v, want [A B]", chainNames(chain))
	}
}

func TestInheritanceChainEnumStructTerminates(t *testing.T) {
	items := parseItems(t, `enum struct Point
{
	float x;
}
`)
	chain := InheritanceChain("Point", items)
	if len(chain) != 1 || chain[0].Name != "Point" {
		t.Fatalf("enum struct chain = %v, want [Point]", chainNames(chain))
	}
}

func chainNames(chain []*parser.Item) []string {
	names := make([]string, len(chain))
	for i, it := range chain {
		names[i] = it.Name
	}
	return names
}
