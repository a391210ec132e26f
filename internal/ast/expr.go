package ast

import (
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/types"
)

// Expr is any Sushi expression. Type is filled in by the type checker
// (§4.6); it is nil before that pass runs.
type Expr interface {
	Node
	exprNode()
	ExprType() types.Type
	SetType(types.Type)
}

// exprBase factors the Type/Span bookkeeping shared by every Expr.
type exprBase struct {
	Type types.Type
	Span diag.Span
}

func (e *exprBase) Pos() diag.Span          { return e.Span }
func (e *exprBase) ExprType() types.Type    { return e.Type }
func (e *exprBase) SetType(t types.Type)    { e.Type = t }
func (*exprBase) exprNode()                 {}

// Ident references a variable, constant, or (pre-resolution) function name.
type Ident struct {
	exprBase
	Name string
}

// IntLit is an integer literal; Go-untyped until inference pins it to a
// concrete builtin (i32 by default, per §4.2).
type IntLit struct {
	exprBase
	Value int64
}

// FloatLit is a floating point literal, f64 by default.
type FloatLit struct {
	exprBase
	Value float64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	exprBase
	Value bool
}

// StringLit is a UTF-8 string literal. Value holds the decoded bytes
// (after escape processing); its byte length is len(Value).
type StringLit struct {
	exprBase
	Value string
}

// ArrayLit constructs a fixed or dynamic array value from elements.
type ArrayLit struct {
	exprBase
	Elements []Expr
	Dynamic  bool
}

// FieldInit is one field=value pair in a StructLit.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLit constructs a struct value: Name{field: value, ...}.
type StructLit struct {
	exprBase
	Name   string
	Fields []FieldInit
}

// BinaryOp enumerates Sushi's binary operators.
type BinaryOp string

const (
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
	OpMod    BinaryOp = "%"
	OpEq     BinaryOp = "=="
	OpNeq    BinaryOp = "!="
	OpLt     BinaryOp = "<"
	OpLte    BinaryOp = "<="
	OpGt     BinaryOp = ">"
	OpGte    BinaryOp = ">="
	OpAnd    BinaryOp = "&&"
	OpOr     BinaryOp = "||"
)

// Binary is a binary operator expression.
type Binary struct {
	exprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// UnaryOp enumerates Sushi's unary operators.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

// Unary is a unary operator expression.
type Unary struct {
	exprBase
	Op      UnaryOp
	Operand Expr
}

// Call is a free-function or generic-function call. TypeArgs is filled by
// the instantiation scanner/monomorphizer when explicit or inferred.
type Call struct {
	exprBase
	Callee   string
	TypeArgs []types.Type
	Args     []Expr
}

// MethodCall dispatches through the fixed priority order of §4.6.
type MethodCall struct {
	exprBase
	Receiver Expr
	Method   string
	TypeArgs []types.Type
	Args     []Expr
}

// FieldAccess reads a struct field.
type FieldAccess struct {
	exprBase
	Receiver Expr
	Field    string
}

// Index reads an array element by integer index.
type Index struct {
	exprBase
	Receiver Expr
	Index    Expr
}

// EnumConstruct builds EnumName.Variant(args...).
type EnumConstruct struct {
	exprBase
	EnumName string
	Variant  string
	Args     []Expr
}

// MatchArm pairs a pattern with a guarded result expression.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
	Span    diag.Span
}

// Match is a pattern-match expression over an enum scrutinee.
type Match struct {
	exprBase
	Scrutinee Expr
	Arms      []MatchArm
}

// If is an if/else expression (also used as a statement via ExprStmt).
type If struct {
	exprBase
	Cond Expr
	Then *Block
	Else *Block // nil when there is no else branch
}

// Block is a brace-delimited sequence of statements with an optional tail
// expression providing the block's value.
type Block struct {
	exprBase
	Stmts []Stmt
	Tail  Expr
}

// Ref takes a non-owning reference: &expr.
type Ref struct {
	exprBase
	Inner Expr
}

// Try is the `?` operator: propagate Err(e) from the enclosing function,
// otherwise unwrap Ok(v). The enclosing function's error type must equal
// Inner's error type exactly, or type-checking rejects it.
type Try struct {
	exprBase
	Inner Expr
}

// TryOrSynthesize is the `??` operator: like Try, but when the inner
// Result's error type differs from the enclosing function's, the checker
// synthesizes a conversion into the enclosing error type instead of
// requiring an exact match (§4.6).
type TryOrSynthesize struct {
	exprBase
	Inner Expr
}

// Realise is `.realise(default)`: unwrap a Result/Maybe or substitute the
// supplied default without panicking.
type Realise struct {
	exprBase
	Inner   Expr
	Default Expr
}
