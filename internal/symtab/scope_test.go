package symtab

import "testing"

import "github.com/wplc/compiler/internal/types"

func TestScopeAddAndFind(t *testing.T) {
	s := NewScope()

	sym, ok := s.Add("x", types.Int)
	if !ok {
		t.Fatal("expected first declaration of x to succeed")
	}
	if sym.Type != types.Int {
		t.Errorf("symbol type = %v, want Int", sym.Type)
	}

	found := s.Find("x")
	if found != sym {
		t.Error("Find should return the same symbol instance Add created")
	}
}

func TestScopeDuplicateInSameFrame(t *testing.T) {
	s := NewScope()
	s.Add("x", types.Int)

	_, ok := s.Add("x", types.Str)
	if ok {
		t.Error("redeclaring x in the same frame should fail")
	}
}

func TestScopeShadowingInInnerFrame(t *testing.T) {
	s := NewScope()
	outer, _ := s.Add("x", types.Int)

	s.Enter()
	inner, ok := s.Add("x", types.Str)
	if !ok {
		t.Fatal("shadowing x in an inner scope should succeed")
	}
	if s.Find("x") != inner {
		t.Error("innermost declaration should win while the inner frame is active")
	}
	s.Exit()

	if s.Find("x") != outer {
		t.Error("exiting the inner frame should reveal the outer declaration again")
	}
}

func TestScopeFindMissing(t *testing.T) {
	s := NewScope()
	if s.Find("nope") != nil {
		t.Error("Find should return nil for an undeclared identifier")
	}
}

func TestScopeExitNeverDropsRootFrame(t *testing.T) {
	s := NewScope()
	s.Exit()
	s.Exit()
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1 (root frame must survive excess Exit calls)", s.Depth())
	}
}

func TestSymbolPromoteIsOneWay(t *testing.T) {
	sym := NewSymbol("x", types.Undefined)
	sym.Promote(types.Int)
	if sym.Type != types.Int {
		t.Fatalf("Promote from Undefined should set the concrete type, got %v", sym.Type)
	}
	sym.Promote(types.Str)
	if sym.Type != types.Int {
		t.Errorf("Promote must not reset a concrete type; got %v, want Int", sym.Type)
	}
}
