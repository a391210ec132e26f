package ast

import "github.com/sushi-lang/sushic/internal/diag"

// Pattern is one match-arm pattern.
type Pattern interface {
	Pos() diag.Span
	patternNode()
}

type patternBase struct {
	Span diag.Span
}

func (p *patternBase) Pos() diag.Span { return p.Span }
func (*patternBase) patternNode()     {}

// EnumPattern matches EnumName.Variant(bindings...).
type EnumPattern struct {
	patternBase
	EnumName string
	Variant  string
	Bindings []string
}

// Wildcard matches anything and binds nothing: `_`.
type Wildcard struct {
	patternBase
}

// LiteralPattern matches a literal value exactly.
type LiteralPattern struct {
	patternBase
	Value Expr
}

// BindPattern matches anything and binds it to Name.
type BindPattern struct {
	patternBase
	Name string
}
