// Package diag defines the diagnostic model shared by every pass of the
// Sushi compiler: collector, instantiation scanner, monomorphizer, AST
// rewrite passes, scope/type/borrow checkers, and the IR emitter.
package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageCollector    Stage = "collect"
	StageInstantiate  Stage = "instantiate"
	StageMonomorphize Stage = "monomorphize"
	StageRewrite      Stage = "rewrite"
	StageScope        Stage = "scope"
	StageTypeCheck    Stage = "typecheck"
	StageBorrowCheck  Stage = "borrowcheck"
	StageIrEmit       Stage = "codegen"
	StageLink         Stage = "link"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
	SeverityFatal   Severity = "fatal"
)

// Code is a stable diagnostic identifier. Compile-time codes use the CE####
// space, runtime codes (emitted into the compiled program) use RE####.
// A single reserved sub-range of CE#### (CE9000-CE9999) is used for
// internal-invariant violations; see IsInternal.
type Code string

const (
	// Symbol collection (4.1).
	CodeDuplicateConstant  Code = "CE0105"
	CodeDuplicateStruct    Code = "CE0006"
	CodeDuplicateEnum      Code = "CE2046"
	CodeDuplicateFunction  Code = "CE0101"
	CodeDuplicateParam     Code = "CE0102"
	CodeMissingConstType   Code = "CE0104"
	CodeMissingReturnType  Code = "CE0103"
	CodeMainBadReturn      Code = "CE0106"
	CodeResultSugarClash   Code = "CE2085"
	CodeDuplicateVariant   Code = "CE2047"
	CodeVariantDynArray    Code = "CE2059"
	CodeArgCountMismatch   Code = "CE2009"

	// Instantiation / monomorphization (4.2, 4.3).
	CodeUnresolvedGenericArg Code = "CE2502"
	CodeConstraintViolation  Code = "CE4006"
	CodeRecursiveType        Code = "CE2505"

	// AST transform / hash derivation (4.4).
	CodeUnresolvedName    Code = "CE0041"
	CodeUnhashableType    Code = "CE4001"
	CodeRecursiveEnumHash Code = "CE4002"
	CodeArrayOfArrayHash  Code = "CE2051"

	// Scope checker (4.5).
	CodeUndeclaredName    Code = "CE0013"
	CodeShadowConflict    Code = "CE0015"
	CodeUseAfterDestroy   Code = "CE0016"
	CodeResourceLeak      Code = "CE0017"

	// Type checker (4.6).
	CodeTypeMismatch       Code = "CE0022"
	CodeNoSuchMethod       Code = "CE0023"
	CodeNoSuchField        Code = "CE0024"
	CodeBadOperandTypes    Code = "CE0025"
	CodeUnwrapOnNonResult  Code = "CE0026"
	CodeQuestionOutsideFn  Code = "CE0027"

	// Borrow checker (4.7).
	CodeReferenceOutlives Code = "CE0032"
	CodeAliasConflict     Code = "CE0033"
	CodeUseAfterMove      Code = "CE0034"
	CodeMoveWhileBorrowed Code = "CE0035"

	// IR emitter internal invariants (4.8), reserved range.
	CodeInternalUnresolvedType Code = "CE9001"
	CodeInternalBadLayout      Code = "CE9002"

	// Runtime (7), embedded in the emitted program.
	CodeRuntimeAllocFailed   Code = "RE2021"
	CodeRuntimeIndexOOB      Code = "RE2020"
	CodeRuntimeRealiseOnErr  Code = "RE2022"
	CodeRuntimeIntOverflow   Code = "RE2023"
)

// IsInternal reports whether code is in the internal-invariant reserved
// sub-range (CE9000-CE9999): these should never surface for well-formed
// input and abort the compilation immediately when they do.
func (c Code) IsInternal() bool {
	return len(c) == 6 && c[:3] == "CE9"
}

// IsRuntime reports whether code belongs to the runtime (RE####) space.
func (c Code) IsRuntime() bool {
	return len(c) > 0 && c[0] == 'R'
}

// Span represents a location in source code. FileID together with Start/End
// is the canonical form per §3; Line/Column are cached for presentation.
type Span struct {
	Filename string
	FileID   int
	Line     int
	Column   int
	Start    int
	End      int
}

// IsValid reports whether the span carries real location information.
func (s Span) IsValid() bool {
	return s.Filename != "" || s.Start != 0 || s.End != 0
}

func (s Span) String() string {
	if s.Filename == "" {
		return fmt.Sprintf("<input>:%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// LabeledSpan attaches an inline label to a span; Style is "primary"
// (underlined with ^) or "secondary" (underlined with ~).
type LabeledSpan struct {
	Span  Span
	Label string
	Style string
}

// ProofStep records one step of reasoning leading to a diagnostic, for
// explaining multi-hop inferences (e.g. the chain of moves that left a
// binding unusable). No checker pass in this repository attaches proof
// steps to the diagnostics it reports.
type ProofStep struct {
	Message string
	Span    Span
}

// Diagnostic is a single user-facing compiler message.
type Diagnostic struct {
	Stage        Stage
	Severity     Severity
	Code         Code
	Message      string
	Span         Span
	LabeledSpans []LabeledSpan
	Notes        []string
	Help         string
	Suggestion   string
	Related      []Span
	ProofChain   []ProofStep
}

// WithPrimarySpan attaches (or replaces) the primary labeled span.
func (d Diagnostic) WithPrimarySpan(span Span, label string) Diagnostic {
	d.Span = span
	filtered := d.LabeledSpans[:0:0]
	for _, ls := range d.LabeledSpans {
		if ls.Style != "primary" {
			filtered = append(filtered, ls)
		}
	}
	d.LabeledSpans = append(filtered, LabeledSpan{Span: span, Label: label, Style: "primary"})
	return d
}

// WithSecondarySpan appends a secondary labeled span.
func (d Diagnostic) WithSecondarySpan(span Span, label string) Diagnostic {
	d.LabeledSpans = append(d.LabeledSpans, LabeledSpan{Span: span, Label: label, Style: "secondary"})
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Span.Filename, d.Span.Line, d.Span.Column, d.Code, d.Message)
}
