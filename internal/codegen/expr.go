package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/wplc/compiler/internal/ast"
	"github.com/wplc/compiler/internal/diag"
)

// emitExpr implements the expression emission rules of §4.3 ("Constants",
// "Identifier expression", "Operators", "Call emission").
func (e *Emitter) emitExpr(expr ast.Expr) llvm.Value {
	switch n := expr.(type) {
	case *ast.ConstantExpr:
		return e.emitConstant(n)
	case *ast.IdentExpr:
		return e.emitIdent(n)
	case *ast.ParenExpr:
		return e.emitExpr(n.Inner)
	case *ast.UnaryExpr:
		return e.emitUnary(n)
	case *ast.BinaryExpr:
		return e.emitBinary(n)
	case *ast.CallExpr:
		return e.emitCall(n)
	case *ast.SubscriptExpr, *ast.ArrayLengthExpr:
		// Stub: arrays are a non-goal; synthesize a zero i32 so the
		// surrounding expression still type-checks at the IR level.
		return llvm.ConstInt(e.ctx.Int32Type(), 0, false)
	default:
		panic(fmt.Sprintf("codegen: unhandled expression %T", expr))
	}
}

// emitIdent implements the "Identifier expression" rule.
func (e *Emitter) emitIdent(id *ast.IdentExpr) llvm.Value {
	sym, ok := e.symbolFor(id)
	if !ok {
		e.codegenError(id.StartPos, diag.MissingBinding, fmt.Sprintf("no binding for %q", id.Name))
		return llvm.ConstInt(e.ctx.Int32Type(), 0, false)
	}
	if !sym.Defined {
		e.codegenError(id.StartPos, diag.UseOfUndefined, fmt.Sprintf("%q used before being defined", id.Name))
		return llvm.ConstNull(e.llvmType(sym.Type))
	}
	ptr, ok := sym.IRValue.(llvm.Value)
	if !ok {
		e.codegenError(id.StartPos, diag.MissingStorage, fmt.Sprintf("%q has no allocated storage", id.Name))
		return llvm.ConstNull(e.llvmType(sym.Type))
	}
	return e.builder.CreateLoad(ptr, id.Name)
}

func (e *Emitter) emitUnary(u *ast.UnaryExpr) llvm.Value {
	operand := e.emitExpr(u.Operand)
	switch u.Op {
	case ast.UnaryMinus:
		zero := llvm.ConstInt(e.ctx.Int32Type(), 0, false)
		return e.builder.CreateNSWSub(zero, operand, "")
	default: // UnaryNot: bitwise complement on i1
		allOnes := llvm.ConstInt(e.ctx.Int1Type(), 1, false)
		return e.builder.CreateXor(operand, allOnes, "")
	}
}

func (e *Emitter) emitBinary(b *ast.BinaryExpr) llvm.Value {
	left := e.emitExpr(b.Left)
	right := e.emitExpr(b.Right)

	switch b.Op {
	case ast.OpAdd:
		return e.builder.CreateNSWAdd(left, right, "")
	case ast.OpSub:
		return e.builder.CreateNSWSub(left, right, "")
	case ast.OpMul:
		return e.builder.CreateNSWMul(left, right, "")
	case ast.OpDiv:
		return e.builder.CreateSDiv(left, right, "")
	case ast.OpLess:
		return e.builder.CreateICmp(llvm.IntSLT, left, right, "")
	case ast.OpLeq:
		return e.builder.CreateICmp(llvm.IntSLE, left, right, "")
	case ast.OpGreater:
		return e.builder.CreateICmp(llvm.IntSGT, left, right, "")
	case ast.OpGeq:
		return e.builder.CreateICmp(llvm.IntSGE, left, right, "")
	case ast.OpEqual:
		return e.builder.CreateICmp(llvm.IntEQ, left, right, "")
	case ast.OpNotEqual:
		return e.builder.CreateICmp(llvm.IntNE, left, right, "")
	case ast.OpAnd:
		return e.builder.CreateAnd(left, right, "")
	default: // OpOr
		return e.builder.CreateOr(left, right, "")
	}
}

// emitCall implements the "Call emission" rule: resolve the target
// Function in the module by source name, UnknownCallee if absent.
func (e *Emitter) emitCall(c *ast.CallExpr) llvm.Value {
	fn := e.module.NamedFunction(c.Callee)
	if fn.IsNil() {
		e.codegenError(c.StartPos, diag.UnknownCallee, fmt.Sprintf("no definition found for function %q", c.Callee))
		return llvm.ConstInt(e.ctx.Int32Type(), 0, false)
	}
	args := make([]llvm.Value, len(c.Args))
	for i, arg := range c.Args {
		args[i] = e.emitExpr(arg)
	}
	return e.builder.CreateCall(fn, args, "")
}
