package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushi-lang/sushic/internal/diag"
)

func TestReporterAccumulatesInEmissionOrder(t *testing.T) {
	r := diag.NewReporter()
	r.Error(diag.StageCollector, diag.CodeDuplicateStruct, diag.Span{Filename: "a.su", Line: 3}, "duplicate struct 'Point'")
	r.Warning(diag.StageTypeCheck, diag.CodeUnhashableType, diag.Span{Filename: "a.su", Line: 9}, "type is not hashable")

	assert.True(t, r.HasErrors())
	assert.Equal(t, 1, r.ErrorCount())
	assert.Len(t, r.Diagnostics(), 2)
	assert.Equal(t, diag.SeverityError, r.Diagnostics()[0].Severity)
	assert.Equal(t, diag.SeverityWarning, r.Diagnostics()[1].Severity)
}

func TestWithPrimarySpanReplacesExisting(t *testing.T) {
	d := diag.Diagnostic{Code: diag.CodeTypeMismatch}
	d = d.WithPrimarySpan(diag.Span{Filename: "a.su", Line: 1}, "first")
	d = d.WithPrimarySpan(diag.Span{Filename: "a.su", Line: 2}, "second")

	primaries := 0
	for _, ls := range d.LabeledSpans {
		if ls.Style == "primary" {
			primaries++
			assert.Equal(t, "second", ls.Label)
		}
	}
	assert.Equal(t, 1, primaries)
	assert.Equal(t, 2, d.Span.Line)
}

func TestCodeClassification(t *testing.T) {
	assert.True(t, diag.CodeInternalUnresolvedType.IsInternal())
	assert.False(t, diag.CodeDuplicateStruct.IsInternal())
	assert.True(t, diag.CodeRuntimeAllocFailed.IsRuntime())
	assert.False(t, diag.CodeDuplicateStruct.IsRuntime())
}

func TestResetClearsDiagnostics(t *testing.T) {
	r := diag.NewReporter()
	r.Error(diag.StageCollector, diag.CodeDuplicateStruct, diag.Span{}, "boom")
	r.Reset()
	assert.Empty(t, r.Diagnostics())
	assert.False(t, r.HasErrors())
}
