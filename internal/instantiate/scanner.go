// Package instantiate implements §4.2: the walk that discovers every
// concrete generic instantiation reachable from the program, as a
// prerequisite to monomorphization.
package instantiate

import (
	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

// TypeKey is the canonical-string identity of one (base, args) instantiation.
type TypeKey string

// FuncKey is the canonical-string identity of one (name, args) generic
// function instantiation.
type FuncKey string

// Set is the instantiation set of §3: unique (name, args) pairs for both
// generic types and generic functions.
type Set struct {
	Types     map[TypeKey][]types.Type
	TypeNames map[TypeKey]string
	Funcs     map[FuncKey][]types.Type
	FuncNames map[FuncKey]string
}

// NewSet creates an empty instantiation set.
func NewSet() *Set {
	return &Set{
		Types:     make(map[TypeKey][]types.Type),
		TypeNames: make(map[TypeKey]string),
		Funcs:     make(map[FuncKey][]types.Type),
		FuncNames: make(map[FuncKey]string),
	}
}

func (s *Set) addType(base string, args []types.Type) {
	key := TypeKey(types.CanonicalName(base, args))
	if _, exists := s.TypeNames[key]; exists {
		return
	}
	s.Types[key] = args
	s.TypeNames[key] = base
}

func (s *Set) addFunc(name string, args []types.Type) {
	key := FuncKey(types.CanonicalName(name, args))
	if _, exists := s.FuncNames[key]; exists {
		return
	}
	s.Funcs[key] = args
	s.FuncNames[key] = name
}

// Scanner walks the collected program and records its instantiation
// points (§4.2). It never mutates AST or symbol tables; it only produces a
// Set for the Monomorphizer.
type Scanner struct {
	Tables  *symbols.Tables
	visited map[string]bool // guards recursive type walks (e.g. Own<Expr>)
}

// NewScanner creates a Scanner over already-collected Tables.
func NewScanner(t *symbols.Tables) *Scanner {
	return &Scanner{Tables: t, visited: make(map[string]bool)}
}

// Scan walks the collected tables - concrete and generic function
// signatures and bodies, constants, struct fields and enum variants - and
// returns the instantiation set. The files argument is not read.
func (sc *Scanner) Scan(files []*ast.File) *Set {
	set := NewSet()
	sc.Tables.Functions.Each(func(_ string, fn *symbols.FunctionEntry) {
		sc.scanFuncEntry(fn, set)
	})
	sc.Tables.GenericFunctions.Each(func(_ string, fn *symbols.FunctionEntry) {
		sc.scanFuncEntry(fn, set)
	})
	sc.Tables.Constants.Each(func(_ string, c *symbols.ConstantEntry) {
		sc.scanType(c.Type, set)
		sc.scanExpr(c.Value, set)
	})
	sc.Tables.Structs.Each(func(_ string, s *types.Struct) {
		for _, f := range s.Fields {
			sc.scanType(f.Type, set)
		}
	})
	sc.Tables.Enums.Each(func(_ string, e *types.Enum) {
		for _, v := range e.Variants {
			for _, a := range v.Assoc {
				sc.scanType(a, set)
			}
		}
	})
	return set
}

func (sc *Scanner) scanFuncEntry(fn *symbols.FunctionEntry, set *Set) {
	for _, p := range fn.Params {
		sc.scanType(p.Type, set)
	}
	sc.scanType(fn.Return, set)
	sc.scanType(fn.ErrorType, set)
	if fn.Decl != nil && fn.Decl.Body != nil {
		sc.scanExpr(fn.Decl.Body, set)
	}
}

// scanType records any GenericRef reached (recursively through Array,
// DynamicArray, Reference, Pointer, Iterator) and guards against cycles
// using a name-based visited set, so `Own<Expr>` inside `Expr` itself
// terminates instead of looping (§4.2).
func (sc *Scanner) scanType(t types.Type, set *Set) {
	switch x := t.(type) {
	case nil:
		return
	case *types.GenericRef:
		key := x.String()
		if sc.visited[key] {
			return
		}
		sc.visited[key] = true
		set.addType(x.Base, x.Args)
		for _, a := range x.Args {
			sc.scanType(a, set)
		}
		sc.visited[key] = false
	case *types.Array:
		sc.scanType(x.Elem, set)
	case *types.DynamicArray:
		sc.scanType(x.Elem, set)
	case *types.Reference:
		sc.scanType(x.Inner, set)
	case *types.Pointer:
		sc.scanType(x.Inner, set)
	case *types.Iterator:
		sc.scanType(x.Elem, set)
	}
}

// scanExpr walks an expression/statement tree and records instantiation
// points from explicit call type arguments and from each expression's
// ExprType as a prior pass annotated it. It infers no types of its own:
// a literal or identifier without an annotated type contributes nothing.
func (sc *Scanner) scanExpr(n ast.Node, set *Set) {
	ast.Walk(n, func(node ast.Node) bool {
		switch x := node.(type) {
		case *ast.Call:
			for _, ta := range x.TypeArgs {
				sc.scanType(ta, set)
			}
			if len(x.TypeArgs) > 0 {
				set.addFunc(x.Callee, x.TypeArgs)
			}
		case *ast.MethodCall:
			for _, ta := range x.TypeArgs {
				sc.scanType(ta, set)
			}
		case ast.Expr:
			if t := x.ExprType(); t != nil {
				sc.scanType(t, set)
			}
		}
		return true
	})
}
