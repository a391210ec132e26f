package ast

// Visitor is invoked once per node Walk descends into. Returning false
// stops Walk from descending into that node's children.
type Visitor func(Node) bool

// Walk performs a pre-order traversal of n, calling v on every node
// reached. The instantiation scanner (§4.2) uses it to reach every
// expression and statement under a function body or constant initializer.
// Struct/enum field types and function signatures are types.Type values,
// not Nodes, so Walk does not visit them.
func Walk(n Node, v Visitor) {
	if n == nil || !v(n) {
		return
	}
	switch x := n.(type) {
	case *File:
		for _, d := range x.Decls {
			Walk(d, v)
		}
	case *ConstDecl:
		Walk(x.Value, v)
	case *StructDecl:
		// field types are not Nodes; nothing further to walk.
	case *EnumDecl:
	case *PerkDecl:
	case *FuncDecl:
		if x.Body != nil {
			Walk(x.Body, v)
		}
	case *ExtendDecl:
		for _, m := range x.Methods {
			Walk(m, v)
		}
	case *UseDecl:

	case *Block:
		for _, s := range x.Stmts {
			Walk(s, v)
		}
		if x.Tail != nil {
			Walk(x.Tail, v)
		}
	case *Let:
		Walk(x.Value, v)
	case *Assign:
		Walk(x.Target, v)
		Walk(x.Value, v)
	case *Return:
		if x.Value != nil {
			Walk(x.Value, v)
		}
	case *ExprStmt:
		Walk(x.X, v)
	case *While:
		Walk(x.Cond, v)
		Walk(x.Body, v)
	case *For:
		Walk(x.Iterable, v)
		Walk(x.Body, v)
	case *Break, *Continue:

	case *Ident, *IntLit, *FloatLit, *BoolLit, *StringLit:

	case *ArrayLit:
		for _, e := range x.Elements {
			Walk(e, v)
		}
	case *StructLit:
		for _, f := range x.Fields {
			Walk(f.Value, v)
		}
	case *Binary:
		Walk(x.Left, v)
		Walk(x.Right, v)
	case *Unary:
		Walk(x.Operand, v)
	case *Call:
		for _, a := range x.Args {
			Walk(a, v)
		}
	case *MethodCall:
		Walk(x.Receiver, v)
		for _, a := range x.Args {
			Walk(a, v)
		}
	case *FieldAccess:
		Walk(x.Receiver, v)
	case *Index:
		Walk(x.Receiver, v)
		Walk(x.Index, v)
	case *EnumConstruct:
		for _, a := range x.Args {
			Walk(a, v)
		}
	case *Match:
		Walk(x.Scrutinee, v)
		for _, arm := range x.Arms {
			Walk(arm.Body, v)
		}
	case *If:
		Walk(x.Cond, v)
		Walk(x.Then, v)
		if x.Else != nil {
			Walk(x.Else, v)
		}
	case *Ref:
		Walk(x.Inner, v)
	case *Try:
		Walk(x.Inner, v)
	case *TryOrSynthesize:
		Walk(x.Inner, v)
	case *Realise:
		Walk(x.Inner, v)
		Walk(x.Default, v)
	}
}
