package types

import "testing"

func TestSingletonsHaveExpectedKinds(t *testing.T) {
	cases := []struct {
		t    Type
		kind Kind
	}{
		{Undefined, KindUndefined},
		{Bool, KindBool},
		{Int, KindInt},
		{Str, KindStr},
	}
	for _, c := range cases {
		if c.t.Kind() != c.kind {
			t.Errorf("%v.Kind() = %v, want %v", c.t, c.t.Kind(), c.kind)
		}
	}
}

func TestEquals(t *testing.T) {
	if !Int.Equals(Int) {
		t.Error("Int should equal Int")
	}
	if Int.Equals(Str) {
		t.Error("Int should not equal Str")
	}
	if !Undefined.Equals(Undefined) {
		t.Error("Undefined should equal Undefined")
	}
}

func TestIsUndefined(t *testing.T) {
	if !IsUndefined(Undefined) {
		t.Error("IsUndefined(Undefined) should be true")
	}
	if IsUndefined(Bool) {
		t.Error("IsUndefined(Bool) should be false")
	}
}

func TestFromKind(t *testing.T) {
	if FromKind(KindBool) != Bool {
		t.Error("FromKind(KindBool) should return the Bool singleton")
	}
	if FromKind(KindInt) != Int {
		t.Error("FromKind(KindInt) should return the Int singleton")
	}
	if FromKind(KindStr) != Str {
		t.Error("FromKind(KindStr) should return the Str singleton")
	}
	if FromKind(KindUndefined) != Undefined {
		t.Error("FromKind(KindUndefined) should return the Undefined singleton")
	}
}

func TestStringRepresentations(t *testing.T) {
	cases := map[Type]string{
		Bool:      "BOOL",
		Int:       "INT",
		Str:       "STR",
		Undefined: "UNDEFINED",
	}
	for typ, want := range cases {
		if typ.String() != want {
			t.Errorf("%v.String() = %q, want %q", typ, typ.String(), want)
		}
	}
}
