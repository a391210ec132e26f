// Package monomorphize implements §4.3: turning the instantiation set
// discovered by internal/instantiate into concrete Struct/Enum/Function
// table entries, to a fixed point, with constraint validation.
package monomorphize

import (
	"fmt"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/instantiate"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

// PerkBounds maps a generic declaration's type-parameter name to the perks
// it must satisfy, e.g. `struct Box<T: Hashable>` -> {"T": ["Hashable"]}.
// The surface parser (out of scope) attaches these to TypeParams; here they
// are threaded in explicitly per declaration for constraint validation.
type PerkBounds map[string][]string

// Monomorphizer runs §4.3 to a fixed point over an instantiation set.
type Monomorphizer struct {
	Tables   *symbols.Tables
	Reporter *diag.Reporter
	Bounds   map[string]PerkBounds // keyed by generic struct/enum/function name

	pending *instantiate.Set
	queue   []queueItem

	// structArgs remembers, for every concrete struct this pass produces
	// from a generic base, the argument list it was instantiated with, so
	// the generic-extension pass (run after the fixed point) can rebuild
	// the same type-parameter bindings without re-parsing canonical names.
	structArgs map[string][]types.Type
}

type queueItem struct {
	isFunc bool
	name   string
	args   []types.Type
}

// NewMonomorphizer creates a Monomorphizer over already-collected Tables.
func NewMonomorphizer(t *symbols.Tables, r *diag.Reporter, bounds map[string]PerkBounds) *Monomorphizer {
	return &Monomorphizer{Tables: t, Reporter: r, Bounds: bounds, structArgs: make(map[string][]types.Type)}
}

// Run drives the fixed-point loop: seed the queue from the initial set,
// process until empty, re-queuing any new instantiation discovered while
// monomorphizing a generic function (via a Scanner re-run over the tables,
// which by then hold the function's concrete signature; the body itself is
// shared with the generic declaration and is not substituted).
func (m *Monomorphizer) Run(initial *instantiate.Set) {
	m.pending = initial
	for key, args := range initial.Types {
		m.queue = append(m.queue, queueItem{isFunc: false, name: initial.TypeNames[key], args: args})
	}
	for key, args := range initial.Funcs {
		m.queue = append(m.queue, queueItem{isFunc: true, name: initial.FuncNames[key], args: args})
	}

	seenTypes := make(map[string]bool)
	seenFuncs := make(map[string]bool)

	for len(m.queue) > 0 {
		item := m.queue[0]
		m.queue = m.queue[1:]

		if item.isFunc {
			canon := types.CanonicalName(item.name, item.args)
			if seenFuncs[canon] {
				continue
			}
			seenFuncs[canon] = true
			m.monomorphizeFunc(item.name, item.args)
			continue
		}

		canon := types.CanonicalName(item.name, item.args)
		if seenTypes[canon] {
			continue
		}
		seenTypes[canon] = true
		m.monomorphizeType(item.name, item.args)
	}

	m.monomorphizeGenericExtensions(seenTypes)
}

func (m *Monomorphizer) bindingsFor(genericName string, typeParams []string, args []types.Type) map[string]types.Type {
	bindings := make(map[string]types.Type, len(typeParams))
	for i, tp := range typeParams {
		if i >= len(args) {
			break
		}
		arg := args[i]
		if isUnresolved(arg) {
			m.Reporter.Error(diag.StageMonomorphize, diag.CodeInternalUnresolvedType, diag.Span{},
				fmt.Sprintf("internal error: generic %q instantiated with unresolved argument %s for parameter %s",
					genericName, arg.String(), tp))
			continue
		}
		bindings[tp] = arg
		m.validateBound(genericName, tp, arg)
	}
	return bindings
}

func isUnresolved(t types.Type) bool {
	switch t.(type) {
	case *types.Unknown, *types.TypeParameter:
		return true
	}
	return false
}

// validateBound enforces CE4006: the concrete argument bound to tp must
// implement every perk named in the generic's declared bounds for tp.
func (m *Monomorphizer) validateBound(genericName, tp string, arg types.Type) {
	bounds, ok := m.Bounds[genericName]
	if !ok {
		return
	}
	for _, perk := range bounds[tp] {
		if !m.Tables.Implements(arg.String(), perk) {
			m.Reporter.Errorf(diag.StageMonomorphize, diag.CodeConstraintViolation, diag.Span{},
				"type argument %s bound to %s does not implement required perk %q (in instantiation of %q)",
				arg.String(), tp, perk, genericName)
		}
	}
}

func (m *Monomorphizer) monomorphizeType(base string, args []types.Type) {
	canon := types.CanonicalName(base, args)

	if decl, ok := m.Tables.GenericStructs.Get(base); ok {
		fields := make([]types.StructField, len(decl.Fields))
		bindings := m.bindingsFor(base, decl.TypeParams, args)
		for i, f := range decl.Fields {
			fields[i] = types.StructField{Name: f.Name, Type: types.Substitute(f.Type, bindings)}
		}
		concrete := &types.Struct{Name: canon, Fields: fields}
		m.Tables.Structs.Set(canon, concrete)
		m.structArgs[canon] = args
		for _, f := range concrete.Fields {
			m.requeueType(f.Type)
		}
		return
	}

	if decl, ok := m.Tables.GenericEnums.Get(base); ok {
		variants := make([]types.EnumVariant, len(decl.Variants))
		bindings := m.bindingsFor(base, decl.TypeParams, args)
		for i, v := range decl.Variants {
			assoc := make([]types.Type, len(v.Assoc))
			for j, a := range v.Assoc {
				assoc[j] = types.Substitute(a, bindings)
			}
			variants[i] = types.EnumVariant{Name: v.Name, Assoc: assoc}
		}
		concrete := &types.Enum{Name: canon, Variants: variants}
		m.Tables.Enums.Set(canon, concrete)
		for _, v := range concrete.Variants {
			for _, a := range v.Assoc {
				m.requeueType(a)
			}
		}
		return
	}

	if m.Tables.PredefinedGenerics[base] {
		// Result/Maybe/Own/HashMap/List: layout is intrinsic to codegen
		// (internal/codegen/llvmir), not table-resident. Still record the
		// instantiation's args so the generic-extension pass below can bind
		// HashMap<K,V>/List<T> methods (e.g. `extend HashMap<K,V> get`).
		m.structArgs[canon] = args
		for _, a := range args {
			m.requeueType(a)
		}
		return
	}
}

func (m *Monomorphizer) requeueType(t types.Type) {
	if g, ok := t.(*types.GenericRef); ok {
		m.queue = append(m.queue, queueItem{isFunc: false, name: g.Base, args: g.Args})
		for _, a := range g.Args {
			m.requeueType(a)
		}
	}
}

func (m *Monomorphizer) monomorphizeFunc(name string, args []types.Type) {
	entry, ok := m.Tables.GenericFunctions.Get(name)
	if !ok {
		return
	}
	canon := types.CanonicalName(name, args)
	bindings := m.bindingsFor(name, entry.TypeParams, args)

	params := make([]ast.Param, len(entry.Params))
	for i, p := range entry.Params {
		params[i] = ast.Param{Name: p.Name, Type: types.Substitute(p.Type, bindings), Span: p.Span}
	}
	ret := types.Substitute(entry.Return, bindings)

	var body *ast.Block
	var decl *ast.FuncDecl
	if entry.Decl != nil {
		decl = &ast.FuncDecl{
			Name: canon, Params: params, ReturnType: ret,
			Body: entry.Decl.Body, Span: entry.Decl.Span, NameSpan: entry.Decl.NameSpan,
		}
		body = entry.Decl.Body
	}

	concrete := &symbols.FunctionEntry{Name: canon, Params: params, Return: ret, Decl: decl}
	m.Tables.Functions.Set(canon, concrete)

	if body != nil {
		sc := instantiate.NewScanner(m.Tables)
		set := sc.Scan([]*ast.File{{Decls: []ast.Decl{decl}}})
		for key, a := range set.Types {
			m.queue = append(m.queue, queueItem{isFunc: false, name: set.TypeNames[key], args: a})
		}
		for key, a := range set.Funcs {
			m.queue = append(m.queue, queueItem{isFunc: true, name: set.FuncNames[key], args: a})
		}
	}
}

// monomorphizeGenericExtensions emits one concrete extension definition per
// (struct instantiation x generic method on that base) pair, as a separate
// pass over every now-concrete struct that originated from a generic base
// (§4.3, last paragraph).
func (m *Monomorphizer) monomorphizeGenericExtensions(seenTypes map[string]bool) {
	for canon, args := range m.structArgs {
		base, _ := splitCanonical(canon)
		if base == "" {
			continue
		}
		decl, isGeneric := m.Tables.GenericStructs.Get(base)
		if !isGeneric && !m.Tables.PredefinedGenerics[base] {
			continue
		}
		var typeParams []string
		switch {
		case isGeneric:
			typeParams = decl.TypeParams
		case base == "HashMap":
			typeParams = []string{"K", "V"}
		case base == "List", base == "Own", base == "Maybe":
			typeParams = []string{"T"}
		case base == "Result":
			typeParams = []string{"T", "E"}
		}
		methodNames := collectGenericExtensionMethods(m.Tables, base)
		for _, methodName := range methodNames {
			tmpl, _ := m.Tables.GetGenericExtension(base, methodName)
			bindings := m.bindingsFor(base, typeParams, args)
			params := make([]ast.Param, len(tmpl.Params))
			for i, p := range tmpl.Params {
				params[i] = ast.Param{Name: p.Name, Type: types.Substitute(p.Type, bindings), Span: p.Span}
			}
			ret := types.Substitute(tmpl.Return, bindings)
			concrete := &symbols.FunctionEntry{Name: methodName, Params: params, Return: ret, Decl: tmpl.Decl}
			m.Tables.SetExtension(canon, methodName, concrete)
		}
	}
}

func collectGenericExtensionMethods(t *symbols.Tables, base string) []string {
	var names []string
	for _, key := range t.GenericExtensions.Order() {
		// key is "base\x00method"; only match entries for this base.
		b, method := splitFlatKey(key)
		if b == base {
			names = append(names, method)
		}
	}
	return names
}

func splitFlatKey(key string) (a, b string) {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

// splitCanonical extracts the base name from a canonical "Base<arg1, arg2>"
// string; the argument list itself is tracked separately in structArgs
// since Type values can't be losslessly re-parsed from their String() form.
func splitCanonical(canon string) (base string, args []types.Type) {
	i := indexByte(canon, '<')
	if i < 0 {
		return "", nil
	}
	return canon[:i], nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
