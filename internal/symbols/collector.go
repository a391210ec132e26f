package symbols

import (
	"fmt"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/types"
)

// Collector implements §4.1: a single pass over every parsed File that
// populates Tables and reports every collection-time diagnostic. It never
// resolves an Unknown type to its target - that is Pass 1.7's job
// (AstTransformer) - it only registers names and shapes.
type Collector struct {
	Tables   *Tables
	Reporter *diag.Reporter
}

// NewCollector builds a Collector over a fresh table set seeded with the
// predefined enums and generics.
func NewCollector(r *diag.Reporter) *Collector {
	return &Collector{Tables: NewTables(), Reporter: r}
}

// Collect runs the pass over every file, in the order given. Files are
// collected independently of declaration order within and across files -
// forward references are legal because nothing is resolved here.
func (c *Collector) Collect(files []*ast.File) {
	for _, f := range files {
		for _, d := range f.Decls {
			c.collectDecl(d)
		}
	}
}

func (c *Collector) collectDecl(d ast.Decl) {
	switch x := d.(type) {
	case *ast.ConstDecl:
		c.collectConst(x)
	case *ast.StructDecl:
		c.collectStruct(x)
	case *ast.EnumDecl:
		c.collectEnum(x)
	case *ast.PerkDecl:
		c.collectPerk(x)
	case *ast.FuncDecl:
		c.collectFunc(x, nil)
	case *ast.ExtendDecl:
		c.collectExtend(x)
	case *ast.UseDecl:
		c.collectUse(x)
	}
}

func (c *Collector) collectConst(d *ast.ConstDecl) {
	if c.Tables.Constants.Has(d.Name) {
		c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateConstant, d.Span,
			"constant %q is already declared", d.Name)
		return
	}
	if d.Type == nil {
		c.Reporter.Errorf(diag.StageCollector, diag.CodeMissingConstType, d.Span,
			"constant %q has no type annotation and none can be inferred at this stage", d.Name)
	}
	c.Tables.Constants.Set(d.Name, &ConstantEntry{Name: d.Name, Type: d.Type, Value: d.Value, Span: d})
}

func (c *Collector) collectStruct(d *ast.StructDecl) {
	if c.Tables.Structs.Has(d.Name) || c.Tables.GenericStructs.Has(d.Name) || c.Tables.PredefinedGenerics[d.Name] {
		c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateStruct, d.Span,
			"struct %q is already declared", d.Name)
		return
	}
	if len(d.TypeParams) > 0 {
		c.Tables.GenericStructs.Set(d.Name, d)
		return
	}
	fields := make([]types.StructField, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = types.StructField{Name: f.Name, Type: f.Type}
	}
	c.Tables.Structs.Set(d.Name, &types.Struct{Name: d.Name, Fields: fields})
}

func (c *Collector) collectEnum(d *ast.EnumDecl) {
	if c.Tables.Enums.Has(d.Name) || c.Tables.GenericEnums.Has(d.Name) || c.Tables.PredefinedGenerics[d.Name] {
		c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateEnum, d.Span,
			"enum %q is already declared", d.Name)
		return
	}
	seen := make(map[string]bool, len(d.Variants))
	for _, v := range d.Variants {
		if seen[v.Name] {
			c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateVariant, v.Span,
				"variant %q is declared more than once in enum %q", v.Name, d.Name)
		}
		seen[v.Name] = true
		for _, a := range v.Assoc {
			if da, ok := a.(*types.DynamicArray); ok {
				c.Reporter.Errorf(diag.StageCollector, diag.CodeVariantDynArray, v.Span,
					"variant %q.%s cannot hold a dynamic array field (%s) directly; wrap it in a struct",
					d.Name, v.Name, da.String())
			}
		}
	}
	if len(d.TypeParams) > 0 {
		c.Tables.GenericEnums.Set(d.Name, d)
		return
	}
	variants := make([]types.EnumVariant, len(d.Variants))
	for i, v := range d.Variants {
		variants[i] = types.EnumVariant{Name: v.Name, Assoc: v.Assoc}
	}
	c.Tables.Enums.Set(d.Name, &types.Enum{Name: d.Name, Variants: variants})
}

func (c *Collector) collectPerk(d *ast.PerkDecl) {
	if c.Tables.Perks.Has(d.Name) {
		c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateFunction, d.Span,
			"perk %q is already declared", d.Name)
		return
	}
	c.Tables.Perks.Set(d.Name, d)
}

// collectFunc registers a free function. owner is nil for a module-level
// declaration and non-nil when called from collectExtend, in which case
// duplicate checking happens against the Extensions/GenericExtensions table
// instead of Functions.
func (c *Collector) collectFunc(d *ast.FuncDecl, owner *ast.ExtendDecl) {
	c.checkDuplicateParams(d)

	if d.Name == "main" {
		c.collectMain(d)
	}

	c.resolveResultSugar(d)

	entry := &FunctionEntry{
		Name: d.Name, TypeParams: d.TypeParams, Params: d.Params,
		Return: d.ReturnType, ErrorType: d.ErrorType, Decl: d,
	}

	if owner == nil {
		table := c.Tables.Functions
		if len(d.TypeParams) > 0 {
			table = c.Tables.GenericFunctions
		}
		if table.Has(d.Name) {
			c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateFunction, d.Span,
				"function %q is already declared", d.Name)
			return
		}
		table.Set(d.Name, entry)
		return
	}

	c.collectExtensionMethod(owner, entry)
}

func (c *Collector) collectMain(d *ast.FuncDecl) {
	if !isIntegerBuiltin(d.ReturnType) {
		c.Reporter.Errorf(diag.StageCollector, diag.CodeMainBadReturn, d.Span,
			"main must return an integer built-in type; found %s", describe(d.ReturnType))
	}
	switch len(d.Params) {
	case 0:
	case 1:
		if da, ok := d.Params[0].Type.(*types.DynamicArray); ok {
			if b, ok := da.Elem.(*types.Builtin); ok && b.Kind == types.String {
				d.HasArgs = true
				c.Tables.HasArgsParam = true
				break
			}
		}
		c.Reporter.Errorf(diag.StageCollector, diag.CodeArgCountMismatch, d.Span,
			"main's only legal parameter is (args: string[])")
	default:
		c.Reporter.Errorf(diag.StageCollector, diag.CodeArgCountMismatch, d.Span,
			"main takes zero parameters or exactly (args: string[]), found %d", len(d.Params))
	}
}

func isIntegerBuiltin(t types.Type) bool {
	b, ok := t.(*types.Builtin)
	if !ok {
		return false
	}
	switch b.Kind {
	case types.I8, types.I16, types.I32, types.I64, types.U8, types.U16, types.U32, types.U64:
		return true
	}
	return false
}

func describe(t types.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

// resolveResultSugar implements §4.6's Result-wrap policy: every function's
// declared return type T (not already Result<…>) is internally re-typed to
// Result<T,E>, where E is the user's `| ErrorType` sugar if present, else
// StdError. A function that already declares Result<T,E> is left as-is
// (already idempotent), and CE2085 fires when a function writes both the
// sugar and an explicit Result<T,E> return type, since the two forms are
// mutually exclusive (§4.1).
func (c *Collector) resolveResultSugar(d *ast.FuncDecl) {
	if _, _, isResult := types.IsResult(d.ReturnType); isResult {
		if d.ErrorType != nil {
			c.Reporter.Errorf(diag.StageCollector, diag.CodeResultSugarClash, d.Span,
				"function %q cannot combine an explicit Result<T,E> return type with `| ErrorType` sugar", d.Name)
		}
		return
	}

	ok := d.ReturnType
	if ok == nil {
		ok = &types.Builtin{Kind: types.Blank}
		c.Reporter.Warning(diag.StageCollector, diag.CodeMissingReturnType, d.Span,
			fmt.Sprintf("function %q has no return type annotation; defaulting to Result<void, StdError>", d.Name))
	}

	errType := d.ErrorType
	if errType == nil {
		errType, _ = c.Tables.Enums.Get("StdError")
	}

	d.ReturnType = types.Result(ok, errType)
	d.ErrorType = nil
}

func (c *Collector) checkDuplicateParams(d *ast.FuncDecl) {
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if seen[p.Name] {
			c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateParam, p.Span,
				"parameter %q is declared more than once in %q", p.Name, d.Name)
		}
		seen[p.Name] = true
	}
}

func (c *Collector) collectExtend(d *ast.ExtendDecl) {
	if d.PerkName != "" {
		c.collectPerkImpl(d)
	}
	for _, m := range d.Methods {
		c.collectFunc(m, d)
	}
}

func (c *Collector) collectPerkImpl(d *ast.ExtendDecl) {
	typeName := describe(d.Target)
	if c.Tables.Implements(typeName, d.PerkName) {
		c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateFunction, d.Span,
			"type %q already implements perk %q", typeName, d.PerkName)
		return
	}
	c.Tables.SetPerkImpl(typeName, d.PerkName, &PerkImpl{Decl: d})
}

// collectExtensionMethod routes a method declared under `extend` to either
// the concrete Extensions table or, when the target is a GenericRef naming
// a type parameter of an enclosing generic (or a bare generic base such as
// `HashMap<K,V>`), the GenericExtensionTable, rewriting each Unknown in the
// method's parameter and return types that names a matching type parameter
// into a TypeParameter, both at the top level and inside generic argument
// lists such as the Result<T,E> return wrapper (§4.1 "Unknown ->
// TypeParameter rewriting"). Unknowns nested in arrays or references are
// left as they are.
func (c *Collector) collectExtensionMethod(owner *ast.ExtendDecl, entry *FunctionEntry) {
	if ref, ok := owner.Target.(*types.GenericRef); ok {
		tparams := make(map[string]bool, len(ref.Args))
		for _, a := range ref.Args {
			if tp, ok := a.(*types.TypeParameter); ok {
				tparams[tp.Name] = true
			} else if u, ok := a.(*types.Unknown); ok {
				tparams[u.Name] = true
			}
		}
		rewriteUnknownsToTypeParams(entry, tparams)
		if _, exists := c.Tables.GetGenericExtension(ref.Base, entry.Name); exists {
			c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateFunction, entry.Decl.Span,
				"extension method %q is already declared for %s<...>", entry.Name, ref.Base)
			return
		}
		c.Tables.SetGenericExtension(ref.Base, entry.Name, entry)
		return
	}

	typeName := describe(owner.Target)
	if _, exists := c.Tables.GetExtension(typeName, entry.Name); exists {
		c.Reporter.Errorf(diag.StageCollector, diag.CodeDuplicateFunction, entry.Decl.Span,
			"extension method %q is already declared for %s", entry.Name, typeName)
		return
	}
	c.Tables.SetExtension(typeName, entry.Name, entry)
}

func rewriteUnknownsToTypeParams(entry *FunctionEntry, tparams map[string]bool) {
	var rewrite func(t types.Type) types.Type
	rewrite = func(t types.Type) types.Type {
		if u, ok := t.(*types.Unknown); ok && tparams[u.Name] {
			return &types.TypeParameter{Name: u.Name}
		}
		if g, ok := t.(*types.GenericRef); ok {
			args := make([]types.Type, len(g.Args))
			for i, a := range g.Args {
				args[i] = rewrite(a)
			}
			return &types.GenericRef{Base: g.Base, Args: args}
		}
		return t
	}
	for i := range entry.Params {
		entry.Params[i].Type = rewrite(entry.Params[i].Type)
	}
	entry.Return = rewrite(entry.Return)
}

func (c *Collector) collectUse(d *ast.UseDecl) {
	c.Tables.StdlibUses = append(c.Tables.StdlibUses, StdlibUse{ModulePath: d.ModulePath, FuncName: d.FuncName})
	switch d.ModulePath {
	case "std.collections.hashmap", "std/collections/hashmap":
		c.Tables.ActivateProvider("HashMap")
	case "std.collections.list", "std/collections/list":
		c.Tables.ActivateProvider("List")
	}
}

// SeedSyntheticHashable registers a synthetic Hashable implementation for
// every primitive kind that supports it (§4.4's hash deriver consults this
// to know a field type is "hashable" without requiring a user `extend`
// block). Called once after collection, before hash derivation.
func (c *Collector) SeedSyntheticHashable() {
	hashablePrimitives := []types.BuiltinKind{
		types.I8, types.I16, types.I32, types.I64,
		types.U8, types.U16, types.U32, types.U64,
		types.F32, types.F64, types.Bool, types.String,
	}
	for _, k := range hashablePrimitives {
		c.Tables.SetPerkImpl(string(k), "Hashable", &PerkImpl{Synthetic: true})
	}
}
