// Package ast defines the Sushi abstract syntax tree produced by the
// (out-of-scope) surface parser and consumed by every pass of the
// semantic middle-end: collection, instantiation scanning,
// monomorphization, AST rewrite, and the three checker passes.
//
// Every node carries a Span for diagnostics (§3) and, once resolved, a
// types.Type on every type-carrying position. Before Pass 1.7 that type
// may be types.Unknown, types.TypeParameter, or types.GenericRef; after
// Pass 1.7 none of those three may appear (§3 invariants).
package ast

import (
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/types"
)

// Node is implemented by every AST node.
type Node interface {
	Pos() diag.Span
}

// File is one compilation unit's parsed AST.
type File struct {
	Path  string
	Decls []Decl
}

func (f *File) Pos() diag.Span {
	if len(f.Decls) > 0 {
		return f.Decls[0].Pos()
	}
	return diag.Span{Filename: f.Path}
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Param is one function or extension-method parameter.
type Param struct {
	Name string
	Type types.Type
	Span diag.Span
}

// ConstDecl declares a module-level constant.
type ConstDecl struct {
	Name  string
	Type  types.Type // nil if the annotation was omitted (CE0104)
	Value Expr
	Span  diag.Span
}

func (*ConstDecl) declNode()      {}
func (c *ConstDecl) Pos() diag.Span { return c.Span }

// FieldDecl is one struct field in source order.
type FieldDecl struct {
	Name string
	Type types.Type
	Span diag.Span
}

// StructDecl declares a struct, generic if len(TypeParams) > 0.
type StructDecl struct {
	Name       string
	TypeParams []string
	Fields     []FieldDecl
	Span       diag.Span
}

func (*StructDecl) declNode()        {}
func (s *StructDecl) Pos() diag.Span { return s.Span }

// VariantDecl is one enum variant in source order.
type VariantDecl struct {
	Name  string
	Assoc []types.Type
	Span  diag.Span
}

// EnumDecl declares an enum, generic if len(TypeParams) > 0.
type EnumDecl struct {
	Name       string
	TypeParams []string
	Variants   []VariantDecl
	Span       diag.Span
}

func (*EnumDecl) declNode()        {}
func (e *EnumDecl) Pos() diag.Span { return e.Span }

// PerkMethodSig is one method signature required by a perk.
type PerkMethodSig struct {
	Name       string
	Params     []Param
	ReturnType types.Type
	Span       diag.Span
}

// PerkDecl declares a trait-like interface.
type PerkDecl struct {
	Name    string
	Methods []PerkMethodSig
	Span    diag.Span
}

func (*PerkDecl) declNode()        {}
func (p *PerkDecl) Pos() diag.Span { return p.Span }

// FuncDecl declares a free function, generic if len(TypeParams) > 0.
// ErrorType is non-nil when the `| ErrorType` sugar was used; it is
// mutually exclusive with an explicitly Result-typed ReturnType (CE2085).
type FuncDecl struct {
	Name       string
	TypeParams []string
	Params     []Param
	ReturnType types.Type // may be nil (CE0103) before collection defaults it
	ErrorType  types.Type
	HasArgs    bool // true if the declared param list is (string[] args)
	Body       *Block
	Span       diag.Span
	NameSpan   diag.Span
}

func (*FuncDecl) declNode()        {}
func (f *FuncDecl) Pos() diag.Span { return f.Span }

// ExtendDecl declares extension methods on a concrete type, or a perk
// implementation when PerkName is non-empty. Target may be a types.Struct,
// types.Enum, types.Builtin, or a types.GenericRef naming a generic base
// (landing in GenericExtensionTable per §4.1).
type ExtendDecl struct {
	Target   types.Type
	PerkName string
	Methods  []*FuncDecl
	Span     diag.Span
}

func (*ExtendDecl) declNode()        {}
func (e *ExtendDecl) Pos() diag.Span { return e.Span }

// UseDecl imports a stdlib unit, registering (ModulePath, FuncName) pairs
// for direct calls and activating generic providers (HashMap, List).
type UseDecl struct {
	ModulePath string
	FuncName   string // empty when importing the whole module
	Span       diag.Span
}

func (*UseDecl) declNode()        {}
func (u *UseDecl) Pos() diag.Span { return u.Span }
