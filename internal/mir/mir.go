// Package mir is the monomorphized, fully-checked AST's lowering target:
// a control-flow-graph intermediate form consumed by internal/codegen/llvmir
// (§4.8). Unlike the teacher's mir package this one carries no concurrency
// primitives (channels, select, spawn) - §5 states the emitted program is
// independently single-threaded - and needs no general SSA/phi construction
// pass, since every block here mirrors the AST's own structured control
// flow one-to-one; Branch/Goto targets never merge more than one live
// definition of a given Local, so no Phi node type is carried over from the
// teacher's internal/mir/mir.go.
package mir

import "github.com/sushi-lang/sushic/internal/types"

// Module is the lowered form of an entire compilation unit set.
type Module struct {
	Functions []*Function
	Structs   []*types.Struct
	Enums     []*types.Enum
}

// Function is one monomorphized function body as a CFG of basic blocks.
type Function struct {
	Name       string
	Params     []Local
	ReturnType types.Type
	Locals     []Local
	Blocks     []*BasicBlock
	Entry      *BasicBlock
}

// Local is a named, typed storage slot - a parameter or a `let` binding.
type Local struct {
	ID   int
	Name string
	Type types.Type
}

// BasicBlock is a straight-line run of Statements ending in one Terminator.
type BasicBlock struct {
	Label      string
	Statements []Statement
	Terminator Terminator
}

// Statement is a non-terminating MIR operation.
type Statement interface{ stmtNode() }

// Terminator transfers control out of a BasicBlock.
type Terminator interface{ terminatorNode() }

// Operand is a value usable as the input to a Statement or Terminator.
type Operand interface {
	operandNode()
	OperandType() types.Type
}

// Rvalue is the right-hand side of an Assign.
type Rvalue interface{ rvalueNode() }

// LocalRef reads the current value of a Local.
type LocalRef struct{ Local Local }

func (*LocalRef) operandNode()              {}
func (*LocalRef) rvalueNode()               {}
func (l *LocalRef) OperandType() types.Type { return l.Local.Type }

// Literal is a constant operand.
type Literal struct {
	Type  types.Type
	Value interface{} // int64, float64, bool, string
}

func (*Literal) operandNode()              {}
func (*Literal) rvalueNode()               {}
func (l *Literal) OperandType() types.Type { return l.Type }

// Assign stores an Operand's value into Local.
type Assign struct {
	Local Local
	RHS   Operand
}

func (*Assign) stmtNode() {}

// Call invokes a monomorphized function by its canonical name (generic
// functions are always renamed to their concrete form before this point,
// per §4.3 - MIR never carries TypeArgs on a Call).
type Call struct {
	Result Local
	Func   string
	Args   []Operand
}

func (*Call) stmtNode() {}

// LoadField reads a struct field.
type LoadField struct {
	Result Local
	Target Operand
	Field  string
}

func (*LoadField) stmtNode() {}

// StoreField writes a struct field.
type StoreField struct {
	Target Operand
	Field  string
	Value  Operand
}

func (*StoreField) stmtNode() {}

// LoadIndex reads an array element.
type LoadIndex struct {
	Result Local
	Target Operand
	Index  Operand
}

func (*LoadIndex) stmtNode() {}

// StoreIndex writes an array element.
type StoreIndex struct {
	Target Operand
	Index  Operand
	Value  Operand
}

func (*StoreIndex) stmtNode() {}

// ConstructStruct builds a struct value field by field.
type ConstructStruct struct {
	Result Local
	Type   types.Type
	Fields map[string]Operand
}

func (*ConstructStruct) stmtNode() {}

// ConstructArray builds a fixed or dynamic array from Elements.
type ConstructArray struct {
	Result   Local
	Type     types.Type
	Elements []Operand
	Dynamic  bool
}

func (*ConstructArray) stmtNode() {}

// ConstructEnum builds a tagged-union enum value (§4.8 layout).
type ConstructEnum struct {
	Result       Local
	EnumName     string
	Variant      string
	VariantIndex int
	Values       []Operand
}

func (*ConstructEnum) stmtNode() {}

// Discriminant reads an enum value's tag.
type Discriminant struct {
	Result Local
	Target Operand
}

func (*Discriminant) stmtNode() {}

// AccessVariantPayload reads one associated value out of an enum's data
// slab, assuming VariantIndex is the currently-active variant.
type AccessVariantPayload struct {
	Result       Local
	Target       Operand
	VariantIndex int
	MemberIndex  int
}

func (*AccessVariantPayload) stmtNode() {}

// SizeOf yields a type's authoritative byte size (§4.8 enum layout,
// main-shim Ok-payload memcpy sizing).
type SizeOf struct {
	Result Local
	Type   types.Type
}

func (*SizeOf) stmtNode() {}

// Cast narrows/widens/bitcasts Operand to Type.
type Cast struct {
	Result  Local
	Operand Operand
	Type    types.Type
}

func (*Cast) stmtNode() {}

// Destroy issues the RAII destructor call for a dynamic array or Own<T>
// binding (§4.8 RAII). The lowerer emits one for every such binding of the
// function that has not been moved out, at each function exit (explicit
// return, end of body, and the `?` error path). Inner lexical scopes get no
// Destroy of their own, and an explicit `.destroy()` call does not exempt a
// binding.
type Destroy struct {
	Target Operand
}

func (*Destroy) stmtNode() {}

// MoveOut records that ownership of Local left this scope (via `return`
// or an assignment into another binding), so scope-exit lowering must not
// also emit a Destroy for it (§4.7c).
type MoveOut struct {
	Local Local
}

func (*MoveOut) stmtNode() {}

// Return terminates a function, optionally carrying a value.
type Return struct{ Value Operand }

func (*Return) terminatorNode() {}

// Goto is an unconditional jump.
type Goto struct{ Target *BasicBlock }

func (*Goto) terminatorNode() {}

// Branch is a conditional jump.
type Branch struct {
	Condition Operand
	True      *BasicBlock
	False     *BasicBlock
}

func (*Branch) terminatorNode() {}

// Unreachable marks a block that control flow must never reach (e.g. after
// an exhaustive match whose every arm already terminated).
type Unreachable struct{}

func (*Unreachable) terminatorNode() {}
