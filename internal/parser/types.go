// # internal/parser/types.go
package parser

import (
	"strings"
	"time"
)

// Position is a 0-based line/column pair. Columns count bytes within the line.
type Position struct {
	Line   int
	Column int
}

// Range spans from Start (inclusive) to End (inclusive).
type Range struct {
	Start Position
	End   Position
}

func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if p.Line == r.Start.Line && p.Column < r.Start.Column {
		return false
	}
	if p.Line == r.End.Line && p.Column > r.End.Column {
		return false
	}
	return true
}

type ItemKind int

const (
	KindFunction ItemKind = iota
	KindMethod
	KindProperty
	KindDefine
	KindVariable
	KindEnum
	KindEnumMember
	KindEnumStruct
	KindMethodMap
)

var itemKindStrings = map[ItemKind]string{
	KindFunction:   "function",
	KindMethod:     "method",
	KindProperty:   "property",
	KindDefine:     "define",
	KindVariable:   "variable",
	KindEnum:       "enum",
	KindEnumMember: "enum_member",
	KindEnumStruct: "enum_struct",
	KindMethodMap:  "methodmap",
}

func (k ItemKind) String() string {
	if name, ok := itemKindStrings[k]; ok {
		return name
	}
	return "unknown"
}

type Parameter struct {
	Label         string
	Documentation string
}

// Item is one indexed declaration. Parent is a lookup key (the enclosing
// enum-struct/methodmap name), never a pointer to another Item.
type Item struct {
	Name             string
	Kind             ItemKind
	FilePath         string
	DeclarationRange Range // span of the name token
	FullRange        Range // span of the whole declaration body
	Detail           string
	Description      string
	Value            string // define replacement text, may be empty
	Type             string // declared/return type name
	Parent           string
	Base             string // methodmap base type
	Parameters       []Parameter
}

// IsStatic reports whether the raw signature carries a static marker.
func (it *Item) IsStatic() bool {
	for _, word := range strings.Fields(it.Detail) {
		if word == "static" {
			return true
		}
	}
	return false
}

// IsConstructor reports whether a method is the constructor-style entry of
// its enclosing methodmap.
func (it *Item) IsConstructor() bool {
	return it.Kind == KindMethod && it.Parent != "" && it.Name == it.Parent
}

type Include struct {
	Target    string // raw directive target text
	URI       string // resolved file identity, set by the include resolver
	IsBuiltIn bool
	Relative  bool // came from the quoted form
	Optional  bool // came from #tryinclude
	Line      int
}

// FileItemTable holds everything extracted from a single file. A table is
// built fresh on every parse and replaced wholesale; it is never patched.
type FileItemTable struct {
	URI       string
	IsBuiltIn bool
	Items     []*Item
	Includes  []Include
	ParsedAt  time.Time

	byName map[string]*Item
}

func NewFileItemTable(uri string, builtin bool) *FileItemTable {
	return &FileItemTable{
		URI:       uri,
		IsBuiltIn: builtin,
		ParsedAt:  time.Now(),
		byName:    make(map[string]*Item),
	}
}

// itemKey disambiguates members of different enclosing types; top-level
// declarations share the plain identifier namespace.
func itemKey(it *Item) string {
	if it.Parent != "" {
		return it.Parent + "." + it.Name
	}
	return it.Name
}

// Add records an item. A later declaration with the same key replaces the
// earlier one, mirroring the single-definition intuition per file.
func (t *FileItemTable) Add(it *Item) {
	if it == nil || it.Name == "" {
		return
	}
	it.FilePath = t.URI
	key := itemKey(it)
	if prev, ok := t.byName[key]; ok {
		for i, existing := range t.Items {
			if existing == prev {
				t.Items[i] = it
				t.byName[key] = it
				return
			}
		}
	}
	t.byName[key] = it
	t.Items = append(t.Items, it)
}

// Lookup returns the surviving item for a plain identifier.
func (t *FileItemTable) Lookup(name string) (*Item, bool) {
	it, ok := t.byName[name]
	return it, ok
}

func (t *FileItemTable) AddInclude(inc Include) {
	t.Includes = append(t.Includes, inc)
}

// RebuildIndex restores the name index after deserialization.
func (t *FileItemTable) RebuildIndex() {
	t.byName = make(map[string]*Item, len(t.Items))
	for _, it := range t.Items {
		t.byName[itemKey(it)] = it
	}
}
