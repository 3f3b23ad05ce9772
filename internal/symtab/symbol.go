// Package symtab implements WPL's symbol record and lexical scope
// stack, grounded on the teacher's internal/symtab package but trimmed
// to the four-field record the data model calls for.
package symtab

import "github.com/wplc/compiler/internal/types"

// Symbol is a single named entity: a variable, parameter, function, or
// procedure. Symbols are created once by the analyzer and referenced
// by pointer from then on (including from the binding map), so the
// analyzer can promote Type in place and the emitter can later fill in
// IRValue/Defined through the same pointer.
//
// DESIGN CHOICE: equality of symbols is identity (pointer equality),
// matching the data model — two distinct declarations of a variable
// with the same name in nested scopes are different symbols even
// though they share a Name.
type Symbol struct {
	Name string
	Type types.Type

	// Defined is true once a value has been assigned to this symbol
	// along every preceding control-flow path. Mutated only by the
	// emitter (parameters, scalar-declaration initializers and
	// assignments set it; the analyzer never reads or writes it).
	Defined bool

	// IRValue is an opaque handle to the storage location the emitter
	// associates with this symbol: an alloca, or a global for a
	// top-level declaration. nil until the emitter's first visit to the
	// declaration site.
	IRValue interface{}
}

// NewSymbol creates a symbol with the given name and declared type.
// Defined starts false and IRValue starts nil; both are populated only
// during code generation.
func NewSymbol(name string, t types.Type) *Symbol {
	return &Symbol{Name: name, Type: t}
}

// Promote sets the symbol's type the first time it is inferred from an
// initializing expression (UNDEFINED -> concrete). It is a no-op once
// the type is already concrete, so a symbol's type is never reset from
// concrete back to UNDEFINED or changed to another concrete type.
func (s *Symbol) Promote(t types.Type) {
	if types.IsUndefined(s.Type) {
		s.Type = t
	}
}
