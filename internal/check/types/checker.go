// Package types implements §4.6: the second checker pass. It infers
// expression types, enforces operand compatibility, and dispatches method
// calls through the fixed priority order mandated by §4.6.
package types

import (
	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
	st "github.com/sushi-lang/sushic/internal/types"
)

// Checker runs §4.6 over every concrete function body.
type Checker struct {
	Tables   *symbols.Tables
	Reporter *diag.Reporter

	locals []map[string]st.Type
	fnErr  st.Type // enclosing function's error type, for ? / ?? / bare return
}

// NewChecker creates a Checker over already scope-checked Tables.
func NewChecker(t *symbols.Tables, r *diag.Reporter) *Checker {
	return &Checker{Tables: t, Reporter: r}
}

// Run type-checks every function body in Tables.Functions.
func (c *Checker) Run() {
	c.Tables.Functions.Each(func(_ string, fn *symbols.FunctionEntry) {
		if fn.Decl == nil || fn.Decl.Body == nil {
			return
		}
		c.pushLocals()
		for _, p := range fn.Decl.Params {
			c.bind(p.Name, p.Type)
		}
		_, fnErr, _ := st.IsResult(fn.Return)
		c.fnErr = fnErr
		c.inferBlock(fn.Decl.Body)
		c.popLocals()
	})
}

func (c *Checker) pushLocals() { c.locals = append(c.locals, map[string]st.Type{}) }
func (c *Checker) popLocals()  { c.locals = c.locals[:len(c.locals)-1] }

func (c *Checker) bind(name string, t st.Type) {
	c.locals[len(c.locals)-1][name] = t
}

func (c *Checker) lookupLocal(name string) (st.Type, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if t, ok := c.locals[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (c *Checker) inferBlock(b *ast.Block) st.Type {
	c.pushLocals()
	defer c.popLocals()
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
	if b.Tail != nil {
		t := c.infer(b.Tail)
		b.SetType(t)
		return t
	}
	blank := &st.Builtin{Kind: st.Blank}
	b.SetType(blank)
	return blank
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.Let:
		t := c.infer(x.Value)
		if x.Type != nil && !st.Equal(x.Type, t) {
			c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeTypeMismatch, x.Span,
				"cannot assign %s to %q of declared type %s", t.String(), x.Name, x.Type.String())
		}
		if x.Type != nil {
			t = x.Type
		}
		c.bind(x.Name, t)
	case *ast.Assign:
		targetType := c.infer(x.Target)
		valType := c.infer(x.Value)
		if !st.Equal(targetType, valType) {
			c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeTypeMismatch, x.Span,
				"cannot assign %s to target of type %s", valType.String(), targetType.String())
		}
	case *ast.Return:
		if x.Value != nil {
			c.infer(x.Value)
		}
	case *ast.ExprStmt:
		c.infer(x.X)
	case *ast.While:
		c.checkBool(x.Cond)
		c.inferBlock(x.Body)
	case *ast.For:
		elemT := c.infer(x.Iterable)
		c.pushLocals()
		c.bind(x.Var, elementTypeOf(elemT))
		for _, st2 := range x.Body.Stmts {
			c.checkStmt(st2)
		}
		c.popLocals()
	}
}

func elementTypeOf(t st.Type) st.Type {
	switch x := t.(type) {
	case *st.Array:
		return x.Elem
	case *st.DynamicArray:
		return x.Elem
	case *st.Iterator:
		return x.Elem
	}
	return &st.Unknown{Name: "<iteration-element>"}
}

func (c *Checker) checkBool(e ast.Expr) {
	t := c.infer(e)
	if b, ok := t.(*st.Builtin); !ok || b.Kind != st.Bool {
		if _, _, isResult := st.IsResult(t); isResult {
			return // Result<T,E> may be used as a boolean (§4.6).
		}
		c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeBadOperandTypes, e.Pos(),
			"expected bool, found %s", t.String())
	}
}

// infer computes e's type, records it on the node, and reports mismatches.
func (c *Checker) infer(e ast.Expr) st.Type {
	var t st.Type
	switch x := e.(type) {
	case *ast.IntLit:
		t = &st.Builtin{Kind: st.I32}
	case *ast.FloatLit:
		t = &st.Builtin{Kind: st.F64}
	case *ast.BoolLit:
		t = &st.Builtin{Kind: st.Bool}
	case *ast.StringLit:
		t = &st.Builtin{Kind: st.String}
	case *ast.Ident:
		if lt, ok := c.lookupLocal(x.Name); ok {
			t = lt
		} else if ce, ok := c.Tables.Constants.Get(x.Name); ok {
			t = ce.Type
		} else {
			t = &st.Unknown{Name: x.Name}
		}
	case *ast.Binary:
		t = c.inferBinary(x)
	case *ast.Unary:
		t = c.infer(x.Operand)
	case *ast.FieldAccess:
		recv := c.infer(x.Receiver)
		t = c.fieldType(recv, x.Field, x.Span)
	case *ast.Index:
		recv := c.infer(x.Receiver)
		c.infer(x.Index)
		t = elementTypeOf(recv)
	case *ast.Call:
		t = c.inferCall(x)
	case *ast.MethodCall:
		t = c.inferMethodCall(x)
	case *ast.StructLit:
		if s, ok := c.Tables.Structs.Get(x.Name); ok {
			for _, f := range x.Fields {
				c.infer(f.Value)
			}
			t = s
		} else {
			t = &st.Unknown{Name: x.Name}
		}
	case *ast.ArrayLit:
		var elem st.Type = &st.Unknown{Name: "<empty-array>"}
		for _, el := range x.Elements {
			elem = c.infer(el)
		}
		if x.Dynamic {
			t = &st.DynamicArray{Elem: elem}
		} else {
			t = &st.Array{Elem: elem, Size: len(x.Elements)}
		}
	case *ast.EnumConstruct:
		for _, arg := range x.Args {
			c.infer(arg)
		}
		if en, ok := c.Tables.Enums.Get(x.EnumName); ok {
			t = en
		} else {
			t = &st.Unknown{Name: x.EnumName}
		}
	case *ast.Match:
		t = c.inferMatch(x)
	case *ast.If:
		thenT := c.inferBlock(x.Then)
		if x.Else != nil {
			c.inferBlock(x.Else)
		}
		t = thenT
	case *ast.Block:
		t = c.inferBlock(x)
	case *ast.Ref:
		t = &st.Reference{Inner: c.infer(x.Inner)}
	case *ast.Try:
		t = c.inferTry(x, false)
	case *ast.TryOrSynthesize:
		t = c.inferTry(x, true)
	case *ast.Realise:
		inner := c.infer(x.Inner)
		def := c.infer(x.Default)
		if ok, _, isResult := st.IsResult(inner); isResult {
			t = ok
		} else if m, isMaybe := asMaybe(inner); isMaybe {
			t = m
		} else {
			c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeUnwrapOnNonResult, x.Span,
				"%s is not a Result or Maybe and cannot be realised", inner.String())
			t = def
		}
	default:
		t = &st.Unknown{Name: "<unsupported-expr>"}
	}
	e.SetType(t)
	return t
}

func asMaybe(t st.Type) (st.Type, bool) {
	g, ok := t.(*st.GenericRef)
	if !ok || g.Base != "Maybe" || len(g.Args) != 1 {
		return nil, false
	}
	return g.Args[0], true
}

func (c *Checker) inferTry(inner ast.Expr, synth bool) st.Type {
	var innerExpr ast.Expr
	switch x := inner.(type) {
	case *ast.Try:
		innerExpr = x.Inner
	case *ast.TryOrSynthesize:
		innerExpr = x.Inner
	}
	t := c.infer(innerExpr)
	ok, errT, isResult := st.IsResult(t)
	if !isResult {
		c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeUnwrapOnNonResult, inner.Pos(),
			"? / ?? requires a Result<T,E>, found %s", t.String())
		return &st.Unknown{Name: "<try-error>"}
	}
	if !synth && c.fnErr != nil && !st.Equal(errT, c.fnErr) {
		c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeTypeMismatch, inner.Pos(),
			"`?` requires an exact error-type match: enclosing function returns %s, expression returns %s (use `??` to convert)",
			c.fnErr.String(), errT.String())
	}
	return ok
}

func (c *Checker) inferMatch(m *ast.Match) st.Type {
	c.infer(m.Scrutinee)
	var result st.Type
	for _, arm := range m.Arms {
		c.pushLocals()
		if ep, ok := arm.Pattern.(*ast.EnumPattern); ok {
			if en, ok := c.Tables.Enums.Get(ep.EnumName); ok {
				if v, _, ok := en.VariantByName(ep.Variant); ok {
					for i, bind := range ep.Bindings {
						if i < len(v.Assoc) {
							c.bind(bind, v.Assoc[i])
						}
					}
				}
			}
		}
		t := c.infer(arm.Body)
		c.popLocals()
		if result == nil {
			result = t
		}
	}
	if result == nil {
		result = &st.Builtin{Kind: st.Blank}
	}
	return result
}

func (c *Checker) inferBinary(b *ast.Binary) st.Type {
	lt := c.infer(b.Left)
	rt := c.infer(b.Right)
	switch b.Op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte, ast.OpAnd, ast.OpOr:
		return &st.Builtin{Kind: st.Bool}
	default:
		if !st.Equal(lt, rt) {
			c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeBadOperandTypes, b.Span,
				"operator %s requires matching operand types, found %s and %s", b.Op, lt.String(), rt.String())
		}
		return lt
	}
}

// fieldType resolves a struct field access; non-struct receivers report
// CE0024 (no such field).
func (c *Checker) fieldType(recv st.Type, field string, span diag.Span) st.Type {
	s, ok := recv.(*st.Struct)
	if !ok {
		c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeNoSuchField, span,
			"%s has no field %q", recv.String(), field)
		return &st.Unknown{Name: "<field-error>"}
	}
	f, ok := s.FieldByName(field)
	if !ok {
		c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeNoSuchField, span,
			"struct %s has no field %q", s.Name, field)
		return &st.Unknown{Name: "<field-error>"}
	}
	return f.Type
}

func (c *Checker) inferCall(call *ast.Call) st.Type {
	for _, arg := range call.Args {
		c.infer(arg)
	}
	if fn, ok := c.Tables.Functions.Get(call.Callee); ok {
		if len(fn.Params) != len(call.Args) {
			c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeBadOperandTypes, call.Span,
				"%q expects %d arguments, found %d", call.Callee, len(fn.Params), len(call.Args))
		}
		return fn.Return
	}
	c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeNoSuchMethod, call.Span, "undefined function %q", call.Callee)
	return &st.Unknown{Name: call.Callee}
}
