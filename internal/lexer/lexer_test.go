package lexer

import (
	"testing"

	"github.com/wplc/compiler/internal/token"
)

func collect(src string) []token.Token {
	l := New("t.wpl", src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestKeywordsAndIdents(t *testing.T) {
	toks := collect("func proc extern if else while select return true false array bool int str foo")
	want := []token.Type{
		token.FUNC, token.PROC, token.EXTERN, token.IF, token.ELSE, token.WHILE,
		token.SELECT, token.RETURN, token.TRUE, token.FALSE, token.ARRAY,
		token.BOOL_TYPE, token.INT_TYPE, token.STR_TYPE, token.IDENT, token.EOF,
	}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIntLiteral(t *testing.T) {
	toks := collect("42")
	if toks[0].Type != token.INT_LIT || toks[0].Lexeme != "42" {
		t.Errorf("got %v %q, want INT_LIT 42", toks[0].Type, toks[0].Lexeme)
	}
}

func TestStringLiteralRetainsQuotesAndEscapes(t *testing.T) {
	toks := collect(`"hello\nworld"`)
	if toks[0].Type != token.STR_LIT {
		t.Fatalf("got %v, want STR_LIT", toks[0].Type)
	}
	want := `"hello\nworld"`
	if toks[0].Lexeme != want {
		t.Errorf("Lexeme = %q, want %q", toks[0].Lexeme, want)
	}
}

func TestTwoCharOperators(t *testing.T) {
	toks := collect("!= <= >= && ||")
	want := []token.Type{token.NOTEQUAL, token.LEQ, token.GEQ, token.AND, token.OR, token.EOF}
	got := types(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBareEqualsNeverExtendsToDoubleEquals(t *testing.T) {
	// WPL has exactly one `=` lexeme; two consecutive `=` characters
	// scan as two separate ASSIGN tokens, never a combined token.
	toks := collect("==")
	want := []token.Type{token.ASSIGN, token.ASSIGN, token.EOF}
	got := types(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSingleCharOperatorsDoNotGreedilyConsume(t *testing.T) {
	toks := collect("= ! < >")
	want := []token.Type{token.ASSIGN, token.NOT, token.LESS, token.GREATER, token.EOF}
	got := types(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLineCommentsAreSkipped(t *testing.T) {
	toks := collect("int x // this is a comment\n= 1;")
	want := []token.Type{token.INT_TYPE, token.IDENT, token.ASSIGN, token.INT_LIT, token.SEMI, token.EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPositionTracking(t *testing.T) {
	l := New("t.wpl", "int\nx")
	first := l.Next()
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Errorf("first token pos = %v, want line 1 col 1", first.Pos)
	}
	second := l.Next()
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Errorf("second token pos = %v, want line 2 col 1", second.Pos)
	}
}

func TestIllegalCharacter(t *testing.T) {
	toks := collect("@")
	if toks[0].Type != token.ILLEGAL {
		t.Errorf("got %v, want ILLEGAL", toks[0].Type)
	}
}
