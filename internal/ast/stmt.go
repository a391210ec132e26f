package ast

import (
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/types"
)

// Stmt is any Sushi statement.
type Stmt interface {
	Node
	stmtNode()
}

type stmtBase struct {
	Span diag.Span
}

func (s *stmtBase) Pos() diag.Span { return s.Span }
func (*stmtBase) stmtNode()        {}

// Let declares a new binding, optionally mutable and optionally annotated.
type Let struct {
	stmtBase
	Name     string
	Type     types.Type // nil if inferred from Value
	Value    Expr
	Mutable  bool
	NameSpan diag.Span
}

// Assign assigns a new value to an existing, mutable place.
type Assign struct {
	stmtBase
	Target Expr
	Value  Expr
}

// Return returns Value from the enclosing function. Value is nil for a
// bare `return` inside a function whose Ok-payload is blank/void.
type Return struct {
	stmtBase
	Value Expr
}

// ExprStmt evaluates Expr and discards the result.
type ExprStmt struct {
	stmtBase
	X Expr
}

// While loops while Cond holds.
type While struct {
	stmtBase
	Cond Expr
	Body *Block
}

// For iterates Var over Iterable (an array), executing Body each time.
type For struct {
	stmtBase
	Var      string
	Iterable Expr
	Body     *Block
}

// Break exits the nearest enclosing loop.
type Break struct {
	stmtBase
}

// Continue jumps to the next iteration of the nearest enclosing loop.
type Continue struct {
	stmtBase
}
