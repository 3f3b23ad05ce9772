package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/wplc/compiler/internal/ast"
	"github.com/wplc/compiler/internal/diag"
)

// emitBlock emits every statement of a block in order and returns
// whether the block, as a whole, ended in a return — the single piece
// of cross-block state the emitter tracks, per the return-aware
// branching design note.
func (e *Emitter) emitBlock(b *ast.Block) Flow {
	flow := FellThrough
	for _, stmt := range b.Statements {
		flow = e.emitStmt(stmt)
		if flow == Returned {
			break
		}
	}
	return flow
}

func (e *Emitter) emitStmt(s ast.Stmt) Flow {
	switch n := s.(type) {
	case *ast.Block:
		return e.emitBlock(n)
	case *ast.ScalarDeclaration:
		e.emitScalarDeclaration(n)
		return FellThrough
	case *ast.ArrayDeclaration:
		return FellThrough
	case *ast.Assignment:
		e.emitAssignment(n)
		return FellThrough
	case *ast.CallStmt:
		e.emitCall(n.Call)
		return FellThrough
	case *ast.Return:
		e.emitReturn(n)
		return Returned
	case *ast.Conditional:
		return e.emitConditional(n)
	case *ast.Loop:
		return e.emitLoop(n)
	case *ast.Select:
		return e.emitSelect(n)
	default:
		panic(fmt.Sprintf("codegen: unhandled statement %T", s))
	}
}

// emitScalarDeclaration implements the "Scalar declarations" rule.
func (e *Emitter) emitScalarDeclaration(decl *ast.ScalarDeclaration) {
	declType := e.llvmTypeFromNode(decl.Type)
	for _, sc := range decl.Scalars {
		sym, ok := e.symbolFor(sc)
		if !ok {
			e.codegenError(sc.StartPos, diag.MissingBinding, fmt.Sprintf("no binding for %q", sc.Name))
			continue
		}
		alloc := e.builder.CreateAlloca(declType, sc.Name)
		sym.IRValue = alloc
		if sc.Init != nil {
			val := e.emitExpr(sc.Init)
			e.builder.CreateStore(val, alloc)
			sym.Defined = true
		}
	}
}

// emitAssignment implements the "Assignment" rule.
func (e *Emitter) emitAssignment(asn *ast.Assignment) {
	if len(asn.Targets) != len(asn.Expressions) {
		return
	}
	for i, target := range asn.Targets {
		val := e.emitExpr(asn.Expressions[i])
		sym, ok := e.symbolFor(target)
		if !ok {
			e.codegenError(target.StartPos, diag.MissingBinding, fmt.Sprintf("no binding for %q", target.Name))
			continue
		}
		ptr, ok := sym.IRValue.(llvm.Value)
		if !ok {
			e.codegenError(target.StartPos, diag.MissingStorage, fmt.Sprintf("%q has no allocated storage", target.Name))
			continue
		}
		e.builder.CreateStore(val, ptr)
		sym.Defined = true
	}
}

func (e *Emitter) emitReturn(r *ast.Return) {
	if r.Value == nil {
		e.builder.CreateRetVoid()
		return
	}
	val := e.emitExpr(r.Value)
	e.builder.CreateRet(val)
}

// emitConditional implements the "Conditional" control-flow rule with
// block names matching the worked scenarios exactly: truebloc,
// falsebloc (if present), bContinue.
func (e *Emitter) emitConditional(c *ast.Conditional) Flow {
	condVal := e.emitExpr(c.Cond)

	trueBlock := llvm.AddBasicBlock(e.currentFunc, "truebloc")
	continueBlock := llvm.AddBasicBlock(e.currentFunc, "bContinue")

	var falseBlock llvm.BasicBlock
	falseTarget := continueBlock
	if c.NoBlock != nil {
		falseBlock = llvm.AddBasicBlock(e.currentFunc, "falsebloc")
		falseTarget = falseBlock
	}

	e.builder.CreateCondBr(condVal, trueBlock, falseTarget)

	e.builder.SetInsertPointAtEnd(trueBlock)
	yesFlow := e.emitBlock(c.YesBlock)
	if yesFlow == FellThrough {
		e.builder.CreateBr(continueBlock)
	}

	noFlow := FellThrough
	if c.NoBlock != nil {
		e.builder.SetInsertPointAtEnd(falseBlock)
		noFlow = e.emitBlock(c.NoBlock)
		if noFlow == FellThrough {
			e.builder.CreateBr(continueBlock)
		}
	}

	e.builder.SetInsertPointAtEnd(continueBlock)

	if c.NoBlock != nil {
		flow := yesFlow.Or(noFlow)
		if flow == Returned {
			// Both sides returned, so bContinue has no predecessor; give
			// it a terminator so it is not left empty.
			e.builder.CreateUnreachable()
		}
		return flow
	}
	return FellThrough
}

// emitLoop implements the "Loop" control-flow rule with block names
// cond, loopbloc, continue.
func (e *Emitter) emitLoop(l *ast.Loop) Flow {
	condBlock := llvm.AddBasicBlock(e.currentFunc, "cond")
	bodyBlock := llvm.AddBasicBlock(e.currentFunc, "loopbloc")
	continueBlock := llvm.AddBasicBlock(e.currentFunc, "continue")

	e.builder.CreateBr(condBlock)

	e.builder.SetInsertPointAtEnd(condBlock)
	condVal := e.emitExpr(l.Cond)
	e.builder.CreateCondBr(condVal, bodyBlock, continueBlock)

	e.builder.SetInsertPointAtEnd(bodyBlock)
	bodyFlow := e.emitBlock(l.Body)
	if bodyFlow == FellThrough {
		e.builder.CreateBr(condBlock)
	}

	e.builder.SetInsertPointAtEnd(continueBlock)
	return FellThrough
}

// emitSelect implements the "Select" control-flow rule with block
// names selectbloc/condbloc/continue and last-condbloc fall-through.
func (e *Emitter) emitSelect(sel *ast.Select) Flow {
	n := len(sel.Alts)
	yesBlocks := make([]llvm.BasicBlock, n)
	condBlocks := make([]llvm.BasicBlock, n)
	for i := 0; i < n; i++ {
		yesBlocks[i] = llvm.AddBasicBlock(e.currentFunc, "selectbloc")
		condBlocks[i] = llvm.AddBasicBlock(e.currentFunc, "condbloc")
	}
	continueBlock := llvm.AddBasicBlock(e.currentFunc, "continue")

	for i, alt := range sel.Alts {
		guardVal := e.emitExpr(alt.Guard)
		e.builder.CreateCondBr(guardVal, yesBlocks[i], condBlocks[i])
		e.builder.SetInsertPointAtEnd(condBlocks[i])
	}
	// Fall-through from the final condbloc when every guard was false.
	e.builder.CreateBr(continueBlock)

	for i, alt := range sel.Alts {
		e.builder.SetInsertPointAtEnd(yesBlocks[i])
		bodyFlow := e.emitStmt(alt.Body)
		if bodyFlow == FellThrough {
			e.builder.CreateBr(continueBlock)
		}
	}

	e.builder.SetInsertPointAtEnd(continueBlock)
	// continueBlock is always reachable via the final condbloc's
	// fall-through (the path taken when every guard is false), so a
	// select statement never counts as unconditionally Returned.
	return FellThrough
}
