// Package borrow implements §4.7: the third checker pass, verifying
// reference lifetimes, alias exclusivity, move-on-return, and use-after-
// destroy. Its flow analysis is a state-propagating walk over each
// function's statement sequence, using the Clone/Merge state pattern of the
// teacher's CFG dataflow engine (internal/haruspex/analysis/engine.go),
// adapted from liveness analysis to ownership/aliasing tracking. There is
// no worklist: each loop body is walked once and merged with the
// zero-iteration state.
package borrow

import (
	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
)

// Checker runs §4.7 over every concrete function body.
type Checker struct {
	Tables   *symbols.Tables
	Reporter *diag.Reporter
}

// NewChecker creates a borrow Checker.
func NewChecker(t *symbols.Tables, r *diag.Reporter) *Checker {
	return &Checker{Tables: t, Reporter: r}
}

// Run walks every function body with a fresh initial State.
func (c *Checker) Run() {
	c.Tables.Functions.Each(func(_ string, fn *symbols.FunctionEntry) {
		if fn.Decl == nil || fn.Decl.Body == nil {
			return
		}
		s := NewState()
		for _, p := range fn.Decl.Params {
			s.get(p.Name)
		}
		c.block(fn.Decl.Body, s)
	})
}

// block threads state linearly through a block's statements, cloning and
// merging at branch points (if/else, while/for bodies merged with the
// zero-iteration path) exactly as the engine's Transfer/Clone/Merge
// machinery does for each CFG node.
func (c *Checker) block(b *ast.Block, s *State) *State {
	for _, stmt := range b.Stmts {
		s = c.stmt(stmt, s)
	}
	if b.Tail != nil {
		c.expr(b.Tail, s)
	}
	return s
}

func (c *Checker) stmt(stmt ast.Stmt, s *State) *State {
	switch x := stmt.(type) {
	case *ast.Let:
		c.expr(x.Value, s)
		s.get(x.Name)
		if id, ok := x.Value.(*ast.Ident); ok {
			c.moveOut(id, s)
		}
	case *ast.Assign:
		c.expr(x.Target, s)
		c.expr(x.Value, s)
	case *ast.Return:
		if x.Value != nil {
			c.expr(x.Value, s)
			if id, ok := x.Value.(*ast.Ident); ok {
				// Ownership transfers to the caller on return (§4.7c);
				// scope-exit cleanup for this binding is skipped.
				c.moveOut(id, s)
			}
		}
	case *ast.ExprStmt:
		c.expr(x.X, s)
	case *ast.While:
		c.expr(x.Cond, s)
		after := c.block(x.Body, s.Clone())
		s = s.Merge(after)
	case *ast.For:
		c.expr(x.Iterable, s)
		bodyState := s.Clone()
		bodyState.get(x.Var)
		after := c.block(x.Body, bodyState)
		s = s.Merge(after)
	}
	return s
}

func (c *Checker) moveOut(id *ast.Ident, s *State) {
	b := s.get(id.Name)
	if b.Moved {
		c.Reporter.Errorf(diag.StageBorrowCheck, diag.CodeUseAfterMove, id.Span,
			"%q used after being moved", id.Name)
		return
	}
	b.Moved = true
}

func (c *Checker) expr(e ast.Expr, s *State) {
	switch x := e.(type) {
	case *ast.Ident:
		b := s.get(x.Name)
		if b.Moved {
			c.Reporter.Errorf(diag.StageBorrowCheck, diag.CodeUseAfterMove, x.Span,
				"%q used after being moved", x.Name)
		}
		if b.Destroyed {
			c.Reporter.Errorf(diag.StageBorrowCheck, diag.CodeUseAfterMove, x.Span,
				"%q used after being destroyed", x.Name)
		}
	case *ast.Ref:
		c.takeRef(x, s)
	case *ast.MethodCall:
		c.expr(x.Receiver, s)
		if x.Method == "destroy" {
			if id, ok := x.Receiver.(*ast.Ident); ok {
				b := s.get(id.Name)
				if b.BorrowCount > 0 || b.MutBorrowed {
					c.Reporter.Errorf(diag.StageBorrowCheck, diag.CodeMoveWhileBorrowed, id.Span,
						"%q cannot be destroyed while a reference to it is live", id.Name)
				}
				b.Destroyed = true
			}
		}
		for _, arg := range x.Args {
			c.expr(arg, s)
		}
	case *ast.Call:
		for _, arg := range x.Args {
			c.expr(arg, s)
		}
	case *ast.Binary:
		c.expr(x.Left, s)
		c.expr(x.Right, s)
	case *ast.Unary:
		c.expr(x.Operand, s)
	case *ast.FieldAccess:
		c.expr(x.Receiver, s)
	case *ast.Index:
		c.expr(x.Receiver, s)
		c.expr(x.Index, s)
	case *ast.ArrayLit:
		for _, el := range x.Elements {
			c.expr(el, s)
		}
	case *ast.StructLit:
		for _, f := range x.Fields {
			c.expr(f.Value, s)
		}
	case *ast.EnumConstruct:
		for _, arg := range x.Args {
			c.expr(arg, s)
		}
	case *ast.Match:
		c.expr(x.Scrutinee, s)
		var merged *State
		for _, arm := range x.Arms {
			branch := s.Clone()
			c.expr(arm.Body, branch)
			if merged == nil {
				merged = branch
			} else {
				merged = merged.Merge(branch)
			}
		}
		if merged != nil {
			for k, v := range merged.Bindings {
				*s.get(k) = *v
			}
		}
	case *ast.If:
		thenState := c.block(x.Then, s.Clone())
		if x.Else != nil {
			elseState := c.block(x.Else, s.Clone())
			merged := thenState.Merge(elseState)
			for k, v := range merged.Bindings {
				*s.get(k) = *v
			}
		}
	case *ast.Block:
		c.block(x, s)
	case *ast.Try:
		c.expr(x.Inner, s)
	case *ast.TryOrSynthesize:
		c.expr(x.Inner, s)
	case *ast.Realise:
		c.expr(x.Inner, s)
		c.expr(x.Default, s)
	}
}

// takeRef enforces (a) a reference must not outlive its referent - approximated
// here as "the referent must still be live (not moved/destroyed) at the
// point of borrow, which is the necessary condition the IR emitter's scope-
// exit ordering then preserves - and (b) no mutable alias coexists with any
// other alias (§4.7 a, b) as far as MutBorrowed records one. This pass
// treats every `&x` as a shared borrow and nothing sets MutBorrowed, so the
// mutable-alias check below never reports.
func (c *Checker) takeRef(r *ast.Ref, s *State) {
	id, ok := r.Inner.(*ast.Ident)
	if !ok {
		c.expr(r.Inner, s)
		return
	}
	b := s.get(id.Name)
	if b.Moved || b.Destroyed {
		c.Reporter.Errorf(diag.StageBorrowCheck, diag.CodeReferenceOutlives, id.Span,
			"cannot borrow %q: it has already been moved or destroyed", id.Name)
		return
	}
	if b.MutBorrowed {
		c.Reporter.Errorf(diag.StageBorrowCheck, diag.CodeAliasConflict, id.Span,
			"cannot borrow %q: a mutable reference to it is already live", id.Name)
		return
	}
	b.BorrowCount++
}
