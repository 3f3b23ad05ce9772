// Package ast defines the parse-tree node shapes the analyzer and
// emitter consume, grounded on the teacher's parser/ast package
// (Node/Expr/Stmt/Decl interfaces, BaseNode position embedding) but
// narrowed to exactly the node kinds WPL's grammar produces.
package ast

import "github.com/wplc/compiler/internal/token"

// Node is the common interface satisfied by every parse-tree node:
// it can report its own source span for diagnostics.
type Node interface {
	Pos() token.Position
	End() token.Position
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that performs an action.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a Stmt that additionally introduces a binding into scope.
type Decl interface {
	Stmt
	declNode()
}

// BaseNode supplies Pos/End to every concrete node type via
// embedding, so individual node structs don't hand-write the pair.
type BaseNode struct {
	StartPos token.Position
	EndPos   token.Position
}

func (b BaseNode) Pos() token.Position { return b.StartPos }
func (b BaseNode) End() token.Position { return b.EndPos }

// TypeKind discriminates the `type` node of §6 (BOOL/INT/STR), kept
// distinct from types.Kind because a parse-tree type node may also
// name the unsupported `array` element kind before semantic analysis
// ever runs.
type TypeKind int

const (
	TypeBool TypeKind = iota
	TypeInt
	TypeStr
	TypeArray // stubbed: see Non-goals
)

// TypeNode is the `type` node of §6: a discriminator plus, for arrays,
// an element type.
type TypeNode struct {
	BaseNode
	Kind    TypeKind
	Element *TypeNode // non-nil only when Kind == TypeArray
}

// CompilationUnit is the root node: a sequence of top-level
// components in source order.
type CompilationUnit struct {
	BaseNode
	Components []Decl
}

// Param is one entry of a `params` node: a declared type paired with
// an identifier.
type Param struct {
	BaseNode
	Name string
	Type *TypeNode
}

// Function is the `function` component: id, declared return type,
// parameters, and a body block.
type Function struct {
	BaseNode
	Name       string
	ReturnType *TypeNode
	Params     []*Param
	Body       *Block
}

func (f *Function) stmtNode() {}
func (f *Function) declNode() {}

// Procedure is the `procedure` component: identical to Function but
// with no declared return type.
type Procedure struct {
	BaseNode
	Name   string
	Params []*Param
	Body   *Block
}

func (p *Procedure) stmtNode() {}
func (p *Procedure) declNode() {}

// ExternDecl is an `extern` function or procedure header with no
// body: only a name, optional return type, and parameters.
type ExternDecl struct {
	BaseNode
	Name       string
	ReturnType *TypeNode // nil for an extern procedure
	Params     []*Param
}

func (e *ExternDecl) stmtNode() {}
func (e *ExternDecl) declNode() {}

// Scalar is one declarator of a ScalarDeclaration: an identifier with
// an optional constant initializer.
type Scalar struct {
	BaseNode
	Name string
	Init Expr // nil if no initializer
}

// ScalarDeclaration is the `scalar_declaration` node: a declared type
// and one or more declarators.
type ScalarDeclaration struct {
	BaseNode
	Type     *TypeNode
	Scalars  []*Scalar
}

func (s *ScalarDeclaration) stmtNode() {}
func (s *ScalarDeclaration) declNode() {}

// ArrayDeclaration is parsed but never analyzed/emitted beyond
// returning UNDEFINED — arrays are an explicit non-goal.
type ArrayDeclaration struct {
	BaseNode
	Type   *TypeNode
	Name   string
	Length Expr
}

func (a *ArrayDeclaration) stmtNode() {}
func (a *ArrayDeclaration) declNode() {}

// Block is a `block` node: an ordered sequence of statements with its
// own scope.
type Block struct {
	BaseNode
	Statements []Stmt
}

func (b *Block) stmtNode() {}

// Assignment is the `target = expr (, target = expr)*` statement.
type Assignment struct {
	BaseNode
	Targets     []*IdentExpr
	Expressions []Expr
}

func (a *Assignment) stmtNode() {}

// Loop is the `while (e) { block }` statement.
type Loop struct {
	BaseNode
	Cond Expr
	Body *Block
}

func (l *Loop) stmtNode() {}

// Conditional is the `if (e) { yes } [else { no }]` statement.
type Conditional struct {
	BaseNode
	Cond     Expr
	YesBlock *Block
	NoBlock  *Block // nil if no else clause
}

func (c *Conditional) stmtNode() {}

// SelectAlt is one arm of a `select` statement: a guard and a body.
type SelectAlt struct {
	BaseNode
	Guard Expr
	Body  Stmt
}

// Select is the `select { e : s; ... }` guarded-choice statement.
type Select struct {
	BaseNode
	Alts []*SelectAlt
}

func (s *Select) stmtNode() {}

// Return is the `return [expr];` statement.
type Return struct {
	BaseNode
	Value Expr // nil for a bare return
}

func (r *Return) stmtNode() {}

// CallStmt is a call used in statement position, discarding any
// result.
type CallStmt struct {
	BaseNode
	Call *CallExpr
}

func (c *CallStmt) stmtNode() {}
