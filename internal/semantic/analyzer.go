// Package semantic implements the first compiler pass: it walks a
// parse tree once, builds the scope chain, type-checks every
// declaration and statement, and records a parse-node -> symbol
// binding for every declaration and identifier use. Grounded on the
// teacher's internal/semantic package (one analyzer struct owning a
// scope stack and an error sink, "check-and-continue" recovery) but
// rewritten end to end against WPL's rule set instead of the
// teacher's general-purpose language.
package semantic

import (
	"fmt"

	"github.com/wplc/compiler/internal/ast"
	"github.com/wplc/compiler/internal/diag"
	"github.com/wplc/compiler/internal/symtab"
	"github.com/wplc/compiler/internal/types"
)

// Bindings is the parse-node -> symbol map the analyzer writes and
// the emitter reads. Declared as a named type (rather than passed as
// a bare map literal) so its ownership and direction of flow — one
// analyzer writes it once, many emitter visits read it — is visible
// at every call site that takes one.
type Bindings map[ast.Node]*symtab.Symbol

// Analyzer is a single analysis pass over one compilation unit. It is
// not reusable across compilation units: create a fresh Analyzer per
// tree, matching the single-threaded, synchronous resource model.
type Analyzer struct {
	scope    *symtab.Scope
	sink     *diag.Sink
	bindings Bindings
}

// New returns an Analyzer ready to walk a compilation unit.
func New(sink *diag.Sink) *Analyzer {
	return &Analyzer{
		scope:    symtab.NewScope(),
		sink:     sink,
		bindings: make(Bindings),
	}
}

// Bindings returns the binding map accumulated so far. Safe to call
// after Analyze even if errors were reported: partial bindings from
// an errored run are useful for IDE-style tooling, though running the
// emitter on them is unspecified per the error-handling design.
func (a *Analyzer) Bindings() Bindings { return a.bindings }

func (a *Analyzer) bind(n ast.Node, sym *symtab.Symbol) {
	a.bindings[n] = sym
}

func typeFromNode(t *ast.TypeNode) types.Type {
	if t == nil {
		return types.Undefined
	}
	switch t.Kind {
	case ast.TypeBool:
		return types.Bool
	case ast.TypeInt:
		return types.Int
	case ast.TypeStr:
		return types.Str
	default:
		// ArrayDeclaration/array element types are a stubbed non-goal.
		return types.Undefined
	}
}

// Analyze walks the whole compilation unit once, in source order.
// There is no forward-declaration pass: a function or procedure inserts
// its own symbol only after its body has been analyzed, so a call to it
// from its own body, or from a component before it, is reported as
// Undeclared.
func (a *Analyzer) Analyze(cu *ast.CompilationUnit) {
	for _, decl := range cu.Components {
		a.analyzeComponent(decl)
	}
}

func (a *Analyzer) analyzeComponent(d ast.Decl) {
	switch n := d.(type) {
	case *ast.Function:
		a.analyzeFunction(n)
	case *ast.Procedure:
		a.analyzeProcedure(n)
	case *ast.ExternDecl:
		a.analyzeExtern(n)
	case *ast.ScalarDeclaration:
		a.analyzeScalarDeclaration(n)
	case *ast.ArrayDeclaration:
		a.analyzeArrayDeclaration(n)
	default:
		panic(fmt.Sprintf("semantic: unhandled top-level component %T", d))
	}
}

func (a *Analyzer) analyzeFunction(f *ast.Function) {
	retType := typeFromNode(f.ReturnType)

	a.scope.Enter()
	for _, param := range f.Params {
		pt := typeFromNode(param.Type)
		sym, ok := a.scope.Add(param.Name, pt)
		if !ok {
			a.sink.AddSemanticError(param.StartPos, diag.DuplicateInScope,
				fmt.Sprintf("parameter %q redeclared", param.Name))
			continue
		}
		a.bind(param, sym)
	}
	a.analyzeBlockStatements(f.Body)
	a.scope.Exit()

	sym, ok := a.scope.Add(f.Name, retType)
	if !ok {
		a.sink.AddSemanticError(f.StartPos, diag.DuplicateInScope,
			fmt.Sprintf("function %q redefined", f.Name))
		a.bind(f, sym)
		return
	}
	a.bind(f, sym)
}

func (a *Analyzer) analyzeProcedure(p *ast.Procedure) {
	a.scope.Enter()
	for _, param := range p.Params {
		pt := typeFromNode(param.Type)
		sym, ok := a.scope.Add(param.Name, pt)
		if !ok {
			a.sink.AddSemanticError(param.StartPos, diag.DuplicateInScope,
				fmt.Sprintf("parameter %q redeclared", param.Name))
			continue
		}
		a.bind(param, sym)
	}
	a.analyzeBlockStatements(p.Body)
	a.scope.Exit()

	sym, ok := a.scope.Add(p.Name, types.Undefined)
	if !ok {
		a.sink.AddSemanticError(p.StartPos, diag.DuplicateInScope,
			fmt.Sprintf("procedure %q redefined", p.Name))
		a.bind(p, sym)
		return
	}
	a.bind(p, sym)
}

func (a *Analyzer) analyzeExtern(e *ast.ExternDecl) {
	retType := types.Undefined
	if e.ReturnType != nil {
		retType = typeFromNode(e.ReturnType)
	}
	sym, ok := a.scope.Add(e.Name, retType)
	if !ok {
		a.sink.AddSemanticError(e.StartPos, diag.DuplicateInScope,
			fmt.Sprintf("extern %q redefined", e.Name))
		a.bind(e, sym)
		return
	}
	a.bind(e, sym)
}

func (a *Analyzer) analyzeScalarDeclaration(decl *ast.ScalarDeclaration) {
	declaredType := typeFromNode(decl.Type)
	for _, sc := range decl.Scalars {
		if sc.Init != nil {
			initType := a.analyzeExpr(sc.Init)
			if !types.IsUndefined(initType) && !initType.Equals(declaredType) {
				a.sink.AddSemanticError(sc.StartPos, diag.TypeMismatch,
					fmt.Sprintf("cannot initialize %s %q with %s literal", declaredType, sc.Name, initType))
			}
		}
		sym, ok := a.scope.Add(sc.Name, declaredType)
		if !ok {
			a.sink.AddSemanticError(sc.StartPos, diag.DuplicateInScope,
				fmt.Sprintf("identifier %q redeclared in this scope", sc.Name))
			a.bind(sc, sym)
			continue
		}
		a.bind(sc, sym)
	}
}

// analyzeArrayDeclaration is a stub: arrays are a non-goal. The
// length expression is still walked so any calls/identifiers it
// references are bound (useful to downstream tooling) but no symbol
// type beyond UNDEFINED is ever produced.
func (a *Analyzer) analyzeArrayDeclaration(decl *ast.ArrayDeclaration) {
	if decl.Length != nil {
		a.analyzeExpr(decl.Length)
	}
	sym, ok := a.scope.Add(decl.Name, types.Undefined)
	if !ok {
		a.sink.AddSemanticError(decl.StartPos, diag.DuplicateInScope,
			fmt.Sprintf("identifier %q redeclared in this scope", decl.Name))
		a.bind(decl, sym)
		return
	}
	a.bind(decl, sym)
}

func (a *Analyzer) analyzeBlockStatements(b *ast.Block) {
	for _, stmt := range b.Statements {
		a.analyzeStmt(stmt)
	}
}

// analyzeBlock is used for nested blocks that open their own scope
// (the function/procedure body scope is opened by the caller so
// parameters and the body share one frame, per the declaration rule).
func (a *Analyzer) analyzeBlock(b *ast.Block) {
	a.scope.Enter()
	a.analyzeBlockStatements(b)
	a.scope.Exit()
}

func (a *Analyzer) analyzeStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		a.analyzeBlock(n)
	case *ast.Assignment:
		a.analyzeAssignment(n)
	case *ast.Loop:
		a.analyzeLoop(n)
	case *ast.Conditional:
		a.analyzeConditional(n)
	case *ast.Select:
		a.analyzeSelect(n)
	case *ast.Return:
		a.analyzeReturn(n)
	case *ast.CallStmt:
		a.analyzeExpr(n.Call)
	case *ast.ScalarDeclaration:
		a.analyzeScalarDeclaration(n)
	case *ast.ArrayDeclaration:
		a.analyzeArrayDeclaration(n)
	default:
		panic(fmt.Sprintf("semantic: unhandled statement %T", s))
	}
}

func (a *Analyzer) analyzeAssignment(asn *ast.Assignment) {
	if len(asn.Targets) != len(asn.Expressions) {
		a.sink.AddSemanticError(asn.StartPos, diag.ArityMismatch,
			fmt.Sprintf("assignment has %d target(s) but %d expression(s)", len(asn.Targets), len(asn.Expressions)))
		// Still analyze expressions so identifier uses within them get
		// bound, but do not attempt to pair mismatched lists.
		for _, e := range asn.Expressions {
			a.analyzeExpr(e)
		}
		return
	}
	for i, target := range asn.Targets {
		sym := a.scope.Find(target.Name)
		if sym == nil {
			a.sink.AddSemanticError(target.StartPos, diag.Undeclared,
				fmt.Sprintf("%q is not declared", target.Name))
			a.analyzeExpr(asn.Expressions[i])
			continue
		}
		a.bind(target, sym)
		exprType := a.analyzeExpr(asn.Expressions[i])
		if types.IsUndefined(sym.Type) {
			sym.Promote(exprType)
			continue
		}
		if !types.IsUndefined(exprType) && !exprType.Equals(sym.Type) {
			a.sink.AddSemanticError(target.StartPos, diag.TypeMismatch,
				fmt.Sprintf("cannot assign %s to %q of type %s", exprType, target.Name, sym.Type))
		}
	}
}

func (a *Analyzer) analyzeLoop(l *ast.Loop) {
	condType := a.analyzeExpr(l.Cond)
	if !types.IsUndefined(condType) && condType.Kind() != types.KindBool {
		a.sink.AddSemanticError(l.Cond.Pos(), diag.ConditionType,
			fmt.Sprintf("loop condition must be BOOL, got %s", condType))
	}
	a.analyzeBlock(l.Body)
}

func (a *Analyzer) analyzeConditional(c *ast.Conditional) {
	condType := a.analyzeExpr(c.Cond)
	if !types.IsUndefined(condType) && condType.Kind() != types.KindBool {
		a.sink.AddSemanticError(c.Cond.Pos(), diag.ConditionType,
			fmt.Sprintf("condition must be BOOL, got %s", condType))
	}
	a.analyzeBlock(c.YesBlock)
	if c.NoBlock != nil {
		a.analyzeBlock(c.NoBlock)
	}
}

func (a *Analyzer) analyzeSelect(sel *ast.Select) {
	for _, alt := range sel.Alts {
		guardType := a.analyzeExpr(alt.Guard)
		if !types.IsUndefined(guardType) && guardType.Kind() != types.KindBool {
			a.sink.AddSemanticError(alt.Guard.Pos(), diag.ConditionType,
				fmt.Sprintf("select guard must be BOOL, got %s", guardType))
		}
		a.analyzeStmt(alt.Body)
	}
}

// analyzeReturn analyzes the returned expression, if any. Matching the
// result to the enclosing function's declared return type is not
// enforced — see SPEC_FULL.md §9 (decided open question).
func (a *Analyzer) analyzeReturn(r *ast.Return) {
	if r.Value != nil {
		a.analyzeExpr(r.Value)
	}
}
