// Package diag is the error-sink consumed by the analyzer and emitter.
//
// Grounded on original_source's WPLErrorHandler (addSemanticError /
// addCodegenError / hasErrors / getErrors): an append-only ordered
// list of diagnostics, one per problem found, rendered later by the
// CLI in source order.
package diag

import "github.com/wplc/compiler/internal/token"

// Kind names one error taxonomy entry from the semantic or codegen
// passes. Kept as a single enum (rather than two) because both lists
// are appended to the same ordered sink and rendered the same way.
type Kind int

const (
	// Semantic
	DuplicateInScope Kind = iota
	Undeclared
	TypeMismatch
	ConditionType
	ArityMismatch
	OperandType

	// Codegen
	UnknownCallee
	MissingBinding
	UseOfUndefined
	MissingStorage
)

func (k Kind) String() string {
	switch k {
	case DuplicateInScope:
		return "DuplicateInScope"
	case Undeclared:
		return "Undeclared"
	case TypeMismatch:
		return "TypeMismatch"
	case ConditionType:
		return "ConditionType"
	case ArityMismatch:
		return "ArityMismatch"
	case OperandType:
		return "OperandType"
	case UnknownCallee:
		return "UnknownCallee"
	case MissingBinding:
		return "MissingBinding"
	case UseOfUndefined:
		return "UseOfUndefined"
	case MissingStorage:
		return "MissingStorage"
	default:
		return "Unknown"
	}
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Pos     token.Position
	Kind    Kind
	Message string
}

// Sink accumulates diagnostics from both passes. It is never a global:
// it is passed explicitly to each Analyzer/Emitter instance, which holds
// it as a struct field, per the "no global-ish state" design note. The
// CLI passes one Sink to both passes so their diagnostics share one list.
type Sink struct {
	diagnostics []Diagnostic
}

// NewSink returns an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// AddSemanticError appends a semantic-pass diagnostic.
func (s *Sink) AddSemanticError(pos token.Position, kind Kind, message string) {
	s.diagnostics = append(s.diagnostics, Diagnostic{Pos: pos, Kind: kind, Message: message})
}

// AddCodegenError appends a codegen-pass diagnostic.
func (s *Sink) AddCodegenError(pos token.Position, kind Kind, message string) {
	s.diagnostics = append(s.diagnostics, Diagnostic{Pos: pos, Kind: kind, Message: message})
}

// HasErrors reports whether any diagnostic has been recorded.
func (s *Sink) HasErrors() bool {
	return len(s.diagnostics) > 0
}

// ErrorList returns the accumulated diagnostics in report order.
func (s *Sink) ErrorList() []Diagnostic {
	return s.diagnostics
}
