// Package symbols implements the symbol collector (§4.1) and the tables it
// populates (§3). Every table belongs to a per-compilation Context; none of
// it is process-wide state (§9 "Global tables").
package symbols

import (
	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/types"
)

// ConstantEntry is one ConstantTable row.
type ConstantEntry struct {
	Name  string
	Type  types.Type
	Value ast.Expr
	Span  ast.Node
}

// FunctionEntry is one FunctionTable/GenericFunctionTable row.
type FunctionEntry struct {
	Name       string
	TypeParams []string
	Params     []ast.Param
	Return     types.Type
	ErrorType  types.Type
	Decl       *ast.FuncDecl
}

// ExtensionKey identifies a concrete extension method: the canonical
// string form of its receiver type plus the method name.
type ExtensionKey struct {
	TypeName string
	Method   string
}

// GenericExtensionKey identifies an extension method declared on a generic
// base (e.g. `extend HashMap<K,V> get`), keyed by base name + method.
type GenericExtensionKey struct {
	Base   string
	Method string
}

// PerkImplKey identifies one (type, perk) implementation relationship.
type PerkImplKey struct {
	TypeName string
	PerkName string
}

// PerkImpl records a perk implementation. Decl is nil for a synthetic
// implementation auto-derived for a primitive (§4.1, "Synthetic
// implementation" in the glossary).
type PerkImpl struct {
	Decl      *ast.ExtendDecl
	Synthetic bool
}

// StdlibUse records one `use <module_path> [: func_name]` statement.
type StdlibUse struct {
	ModulePath string
	FuncName   string
}

// Tables is the full set of per-compilation symbol tables from §3.
type Tables struct {
	Constants *OrderedTable[*ConstantEntry]

	Structs        *OrderedTable[*types.Struct]
	GenericStructs *OrderedTable[*ast.StructDecl]

	Enums        *OrderedTable[*types.Enum]
	GenericEnums *OrderedTable[*ast.EnumDecl]

	Perks *OrderedTable[*ast.PerkDecl]
	// PerkImpls is keyed by a flattened "TypeName\x00PerkName" string so it
	// can reuse OrderedTable; perkImplKeys maps each flattened key back to
	// its structured PerkImplKey (iteration order comes from PerkImpls).
	PerkImpls     *OrderedTable[*PerkImpl]
	perkImplKeys  map[string]PerkImplKey

	Functions        *OrderedTable[*FunctionEntry]
	GenericFunctions *OrderedTable[*FunctionEntry]

	Extensions        *OrderedTable[*FunctionEntry] // keyed by "TypeName\x00Method"
	GenericExtensions *OrderedTable[*FunctionEntry] // keyed by "Base\x00Method"

	StdlibUses []StdlibUse

	// ActiveProviders records which generic collection providers (e.g.
	// "HashMap", "List") have been switched on by a `use` statement (§9
	// "Provider activation").
	ActiveProviders map[string]bool

	// HasArgsParam is true once a `main` with a `string[] args` parameter
	// has been collected.
	HasArgsParam bool

	// PredefinedGenerics is the membership set of intrinsic generic bases:
	// Result, Maybe, Own, HashMap, List (§4.1).
	PredefinedGenerics map[string]bool
}

func flattenKey(a, b string) string { return a + "\x00" + b }

// NewTables builds an empty table set and seeds the predefined enums and
// generics from §4.1.
func NewTables() *Tables {
	t := &Tables{
		Constants:         NewOrderedTable[*ConstantEntry](),
		Structs:           NewOrderedTable[*types.Struct](),
		GenericStructs:    NewOrderedTable[*ast.StructDecl](),
		Enums:             NewOrderedTable[*types.Enum](),
		GenericEnums:      NewOrderedTable[*ast.EnumDecl](),
		Perks:             NewOrderedTable[*ast.PerkDecl](),
		PerkImpls:         NewOrderedTable[*PerkImpl](),
		perkImplKeys:      make(map[string]PerkImplKey),
		Functions:         NewOrderedTable[*FunctionEntry](),
		GenericFunctions:  NewOrderedTable[*FunctionEntry](),
		Extensions:        NewOrderedTable[*FunctionEntry](),
		GenericExtensions: NewOrderedTable[*FunctionEntry](),
		ActiveProviders:   make(map[string]bool),
		PredefinedGenerics: make(map[string]bool),
	}
	seedPredefinedEnums(t)
	seedPredefinedGenerics(t)
	return t
}

// SetExtension records a concrete extension method.
func (t *Tables) SetExtension(typeName, method string, fn *FunctionEntry) {
	t.Extensions.Set(flattenKey(typeName, method), fn)
}

// GetExtension looks up a concrete extension method.
func (t *Tables) GetExtension(typeName, method string) (*FunctionEntry, bool) {
	return t.Extensions.Get(flattenKey(typeName, method))
}

// SetGenericExtension records an extension method declared on a generic base.
func (t *Tables) SetGenericExtension(base, method string, fn *FunctionEntry) {
	t.GenericExtensions.Set(flattenKey(base, method), fn)
}

// GetGenericExtension looks up an extension method declared on a generic base.
func (t *Tables) GetGenericExtension(base, method string) (*FunctionEntry, bool) {
	return t.GenericExtensions.Get(flattenKey(base, method))
}

// SetPerkImpl records a (type, perk) implementation.
func (t *Tables) SetPerkImpl(typeName, perkName string, impl *PerkImpl) {
	key := PerkImplKey{TypeName: typeName, PerkName: perkName}
	flat := flattenKey(typeName, perkName)
	t.perkImplKeys[flat] = key
	t.PerkImpls.Set(flat, impl)
}

// Implements reports whether typeName has a registered implementation
// (synthetic or explicit) of perkName.
func (t *Tables) Implements(typeName, perkName string) bool {
	return t.PerkImpls.Has(flattenKey(typeName, perkName))
}

// ActivateProvider switches on a generic collection provider.
func (t *Tables) ActivateProvider(name string) {
	t.ActiveProviders[name] = true
}

// ProviderActive reports whether a generic collection provider was
// switched on by a `use` statement (§9 "Provider activation").
func (t *Tables) ProviderActive(name string) bool {
	return t.ActiveProviders[name]
}
