// Package scope implements §4.5: the first checker pass, tracking a lexical
// scope stack to catch undeclared names, same-scope shadowing, and use-
// after-destroy on Own<T>. Resources that would leak across a control-flow
// exit are not reported (see checkLeaksAtExit).
package scope

import (
	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
)

// Binding records where and how a name entered scope.
type Binding struct {
	Name      string
	Span      diag.Span
	Destroyed bool
	Moved     bool
	IsOwned   bool // Own<T> or a dynamic array, subject to RAII (§4.7)
}

// scopeFrame is one lexical block's bindings.
type scopeFrame struct {
	bindings map[string]*Binding
}

// Analyzer runs §4.5 over every function body.
type Analyzer struct {
	Tables   *symbols.Tables
	Reporter *diag.Reporter
	stack    []*scopeFrame
}

// NewAnalyzer creates a scope Analyzer.
func NewAnalyzer(t *symbols.Tables, r *diag.Reporter) *Analyzer {
	return &Analyzer{Tables: t, Reporter: r}
}

// Run walks every collected function body, each with its own fresh scope
// stack seeded with its parameters.
func (a *Analyzer) Run() {
	a.Tables.Functions.Each(func(_ string, fn *symbols.FunctionEntry) {
		if fn.Decl == nil || fn.Decl.Body == nil {
			return
		}
		a.pushScope()
		for _, p := range fn.Decl.Params {
			a.declare(p.Name, p.Span, isOwnedType(p.Type))
		}
		a.walkBlock(fn.Decl.Body)
		a.checkLeaksAtExit(fn.Decl.Span)
		a.popScope()
	})
}

func isOwnedType(t interface{ String() string }) bool {
	if t == nil {
		return false
	}
	s := t.String()
	return (len(s) >= 4 && s[:4] == "Own<") || hasDynArraySuffix(s)
}

func hasDynArraySuffix(s string) bool {
	return len(s) >= 2 && s[len(s)-2:] == "[]"
}

func (a *Analyzer) pushScope() { a.stack = append(a.stack, &scopeFrame{bindings: make(map[string]*Binding)}) }
func (a *Analyzer) popScope()  { a.stack = a.stack[:len(a.stack)-1] }

func (a *Analyzer) current() *scopeFrame { return a.stack[len(a.stack)-1] }

func (a *Analyzer) declare(name string, span diag.Span, owned bool) {
	f := a.current()
	if existing, ok := f.bindings[name]; ok {
		a.Reporter.Errorf(diag.StageScope, diag.CodeShadowConflict, span,
			"%q is already declared in this scope (previous declaration at %s)", name, existing.Span.String())
		return
	}
	f.bindings[name] = &Binding{Name: name, Span: span, IsOwned: owned}
}

func (a *Analyzer) lookup(name string) *Binding {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if b, ok := a.stack[i].bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (a *Analyzer) walkBlock(b *ast.Block) {
	a.pushScope()
	for _, s := range b.Stmts {
		a.walkStmt(s)
	}
	if b.Tail != nil {
		a.walkExpr(b.Tail)
	}
	a.checkLeaksAtExit(b.Span)
	a.popScope()
}

func (a *Analyzer) walkStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.Let:
		a.walkExpr(x.Value)
		a.declare(x.Name, x.Span, isOwnedType(resolvedTypeOf(x.Value)))
	case *ast.Assign:
		a.walkExpr(x.Target)
		a.walkExpr(x.Value)
	case *ast.Return:
		if x.Value != nil {
			a.walkExpr(x.Value)
			a.markMovedIfBinding(x.Value)
		}
	case *ast.ExprStmt:
		a.walkExpr(x.X)
	case *ast.While:
		a.walkExpr(x.Cond)
		a.walkBlock(x.Body)
	case *ast.For:
		a.walkExpr(x.Iterable)
		a.walkBlock(x.Body)
	}
}

func resolvedTypeOf(e ast.Expr) interface{ String() string } {
	if t := e.ExprType(); t != nil {
		return t
	}
	return nil
}

func (a *Analyzer) markMovedIfBinding(e ast.Expr) {
	if id, ok := e.(*ast.Ident); ok {
		if b := a.lookup(id.Name); b != nil && b.IsOwned {
			b.Moved = true
		}
	}
}

func (a *Analyzer) walkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.Ident:
		b := a.lookup(x.Name)
		if b == nil {
			if a.Tables.Constants.Has(x.Name) || a.Tables.Functions.Has(x.Name) {
				return
			}
			a.Reporter.Errorf(diag.StageScope, diag.CodeUndeclaredName, x.Span, "undeclared name %q", x.Name)
			return
		}
		if b.Destroyed {
			a.Reporter.Errorf(diag.StageScope, diag.CodeUseAfterDestroy, x.Span,
				"%q used after being destroyed", x.Name)
		}
	case *ast.MethodCall:
		a.walkExpr(x.Receiver)
		if x.Method == "destroy" {
			if id, ok := x.Receiver.(*ast.Ident); ok {
				if b := a.lookup(id.Name); b != nil {
					b.Destroyed = true
				}
			}
		}
		for _, arg := range x.Args {
			a.walkExpr(arg)
		}
	case *ast.Call:
		for _, arg := range x.Args {
			a.walkExpr(arg)
		}
	case *ast.Binary:
		a.walkExpr(x.Left)
		a.walkExpr(x.Right)
	case *ast.Unary:
		a.walkExpr(x.Operand)
	case *ast.FieldAccess:
		a.walkExpr(x.Receiver)
	case *ast.Index:
		a.walkExpr(x.Receiver)
		a.walkExpr(x.Index)
	case *ast.ArrayLit:
		for _, el := range x.Elements {
			a.walkExpr(el)
		}
	case *ast.StructLit:
		for _, f := range x.Fields {
			a.walkExpr(f.Value)
		}
	case *ast.EnumConstruct:
		for _, arg := range x.Args {
			a.walkExpr(arg)
		}
	case *ast.Match:
		a.walkExpr(x.Scrutinee)
		for _, arm := range x.Arms {
			a.pushScope()
			if ep, ok := arm.Pattern.(*ast.EnumPattern); ok {
				for _, bind := range ep.Bindings {
					a.declare(bind, arm.Span, false)
				}
			}
			a.walkExpr(arm.Body)
			a.popScope()
		}
	case *ast.If:
		a.walkExpr(x.Cond)
		a.walkBlock(x.Then)
		if x.Else != nil {
			a.walkBlock(x.Else)
		}
	case *ast.Block:
		a.walkBlock(x)
	case *ast.Ref:
		a.walkExpr(x.Inner)
	case *ast.Try:
		a.walkExpr(x.Inner)
	case *ast.TryOrSynthesize:
		a.walkExpr(x.Inner)
	case *ast.Realise:
		a.walkExpr(x.Inner)
		a.walkExpr(x.Default)
	}
}

// checkLeaksAtExit visits the owned bindings of the scope about to close
// that are neither destroyed nor moved. It reports no diagnostic and
// records nothing for a later pass: leaks across a control-flow exit are
// not checked here, and the IR lowering emits the destructor call for such
// bindings at function exit (§4.8).
func (a *Analyzer) checkLeaksAtExit(span diag.Span) {
	f := a.current()
	for _, b := range f.bindings {
		if b.IsOwned && !b.Destroyed && !b.Moved {
			// Not an error by itself - codegen injects the destructor call.
			_ = span
		}
	}
}
