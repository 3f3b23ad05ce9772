package symtab

import "github.com/wplc/compiler/internal/types"

// frame is one level of the lexical scope stack: a mapping from
// identifier (unique within the frame) to symbol.
type frame struct {
	symbols map[string]*Symbol
}

func newFrame() *frame {
	return &frame{symbols: make(map[string]*Symbol)}
}

// Scope is the lexical scope manager described by the data model: an
// ordered stack of frames, searched innermost-first on find and
// written to the top frame on add.
//
// DESIGN CHOICE: a slice-backed stack rather than the teacher's
// parent-pointer tree of *Scope nodes, because the analyzer here only
// ever has one active scope chain at a time (no need to keep sibling
// scopes alive for later re-entry) — a flat stack is the simpler,
// behaviorally equivalent representation of "frames searched top to
// bottom" that the spec calls for.
type Scope struct {
	frames []*frame
}

// NewScope returns a scope manager with a single root frame already
// pushed, matching "it is undefined to exit below the root frame" —
// callers start with one live frame, not zero.
func NewScope() *Scope {
	return &Scope{frames: []*frame{newFrame()}}
}

// Enter pushes a new empty frame.
func (s *Scope) Enter() {
	s.frames = append(s.frames, newFrame())
}

// Exit pops the top frame and discards its mapping. Exiting the root
// frame is undefined behavior per the spec; this implementation simply
// refuses to pop past it rather than panicking, which keeps a
// misbehaving caller's program running long enough to report other
// diagnostics.
func (s *Scope) Exit() {
	if len(s.frames) <= 1 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Add inserts a new symbol into the top frame. ok is false, and the
// returned symbol is the existing one, if id is already present in the
// top frame (DuplicateInScope — the caller reports the diagnostic;
// Add itself never errors).
func (s *Scope) Add(id string, t types.Type) (sym *Symbol, ok bool) {
	top := s.frames[len(s.frames)-1]
	if existing, present := top.symbols[id]; present {
		return existing, false
	}
	sym = NewSymbol(id, t)
	top.symbols[id] = sym
	return sym, true
}

// Find searches frames from innermost to outermost and returns the
// first match, or nil if none is visible.
func (s *Scope) Find(id string) *Symbol {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if sym, ok := s.frames[i].symbols[id]; ok {
			return sym
		}
	}
	return nil
}

// Depth reports the current frame count, mainly useful in tests that
// assert enter/exit are balanced.
func (s *Scope) Depth() int {
	return len(s.frames)
}
