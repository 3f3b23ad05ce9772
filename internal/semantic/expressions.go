package semantic

import (
	"fmt"

	"github.com/wplc/compiler/internal/ast"
	"github.com/wplc/compiler/internal/diag"
	"github.com/wplc/compiler/internal/token"
	"github.com/wplc/compiler/internal/types"
)

// analyzeExpr implements the expression type-rule table of
// SPEC_FULL.md §4.2: every form analyzes its subexpressions first,
// then applies its rule. On a mismatch, one diagnostic is reported
// and the rule's nominal result type is still returned, so a single
// bad operand never cascades into a flood of errors up the tree.
func (a *Analyzer) analyzeExpr(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.ConstantExpr:
		return a.analyzeConstant(n)
	case *ast.IdentExpr:
		return a.analyzeIdent(n)
	case *ast.ParenExpr:
		return a.analyzeExpr(n.Inner)
	case *ast.UnaryExpr:
		return a.analyzeUnary(n)
	case *ast.BinaryExpr:
		return a.analyzeBinary(n)
	case *ast.CallExpr:
		return a.analyzeCall(n)
	case *ast.SubscriptExpr:
		// Stub: arrays are a non-goal.
		a.analyzeExpr(n.Array)
		a.analyzeExpr(n.Index)
		return types.Undefined
	case *ast.ArrayLengthExpr:
		a.analyzeExpr(n.Array)
		return types.Undefined
	default:
		panic(fmt.Sprintf("semantic: unhandled expression %T", e))
	}
}

func (a *Analyzer) analyzeConstant(c *ast.ConstantExpr) types.Type {
	switch c.Kind {
	case ast.LiteralBool:
		return types.Bool
	case ast.LiteralInt:
		return types.Int
	default:
		return types.Str
	}
}

func (a *Analyzer) analyzeIdent(id *ast.IdentExpr) types.Type {
	sym := a.scope.Find(id.Name)
	if sym == nil {
		a.sink.AddSemanticError(id.StartPos, diag.Undeclared,
			fmt.Sprintf("%q is not declared", id.Name))
		return types.Undefined
	}
	a.bind(id, sym)
	return sym.Type
}

func (a *Analyzer) analyzeUnary(u *ast.UnaryExpr) types.Type {
	operandType := a.analyzeExpr(u.Operand)
	switch u.Op {
	case ast.UnaryMinus:
		if !types.IsUndefined(operandType) && operandType.Kind() != types.KindInt {
			a.sink.AddSemanticError(u.StartPos, diag.OperandType,
				fmt.Sprintf("unary - requires INT, got %s", operandType))
		}
		return types.Int
	default: // UnaryNot
		if !types.IsUndefined(operandType) && operandType.Kind() != types.KindBool {
			a.sink.AddSemanticError(u.StartPos, diag.OperandType,
				fmt.Sprintf("! requires BOOL, got %s", operandType))
		}
		return types.Bool
	}
}

func (a *Analyzer) analyzeBinary(b *ast.BinaryExpr) types.Type {
	leftType := a.analyzeExpr(b.Left)
	rightType := a.analyzeExpr(b.Right)

	switch b.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		a.requireKind(b.StartPos, leftType, types.KindInt, "operator requires INT operands")
		a.requireKind(b.StartPos, rightType, types.KindInt, "operator requires INT operands")
		return types.Int
	case ast.OpLess, ast.OpLeq, ast.OpGreater, ast.OpGeq:
		a.requireKind(b.StartPos, leftType, types.KindInt, "relational operator requires INT operands")
		a.requireKind(b.StartPos, rightType, types.KindInt, "relational operator requires INT operands")
		return types.Bool
	case ast.OpEqual, ast.OpNotEqual:
		if !types.IsUndefined(leftType) && !types.IsUndefined(rightType) && !leftType.Equals(rightType) {
			a.sink.AddSemanticError(b.StartPos, diag.OperandType,
				fmt.Sprintf("cannot compare %s with %s", leftType, rightType))
		}
		return types.Bool
	default: // OpAnd, OpOr
		a.requireKind(b.StartPos, leftType, types.KindBool, "logical operator requires BOOL operands")
		a.requireKind(b.StartPos, rightType, types.KindBool, "logical operator requires BOOL operands")
		return types.Bool
	}
}

func (a *Analyzer) requireKind(pos token.Position, t types.Type, want types.Kind, msg string) {
	if types.IsUndefined(t) || t.Kind() == want {
		return
	}
	a.sink.AddSemanticError(pos, diag.OperandType, fmt.Sprintf("%s, got %s", msg, t))
}

// analyzeCall resolves the callee by name and returns its declared
// type. It does not check that the name denotes a function or
// procedure: any declared symbol is accepted. Argument arity/type
// checking is intentionally not enforced — see SPEC_FULL.md §9.
func (a *Analyzer) analyzeCall(c *ast.CallExpr) types.Type {
	for _, arg := range c.Args {
		a.analyzeExpr(arg)
	}
	sym := a.scope.Find(c.Callee)
	if sym == nil {
		a.sink.AddSemanticError(c.StartPos, diag.Undeclared,
			fmt.Sprintf("call to undeclared %q", c.Callee))
		return types.Undefined
	}
	a.bind(c, sym)
	return sym.Type
}
