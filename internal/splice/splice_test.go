package splice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzzylabs/docstringinator/internal/parser"
)

const original = `def add(a: int, b: int) -> int:
    return a + b


def scale(x: float) -> float:
    """Sc."""
    return x * 2.0
`

const addLiteral = `    """Add two integers.

    Args:
        a: First operand.
        b: Second operand.

    Returns:
        The sum of a and b.
    """`

const scaleLiteral = `    """Scale x by two.

    Args:
        x: Value.

    Returns:
        Scaled value.
    """`

func extract(t *testing.T, source string) map[string]*parser.Declaration {
	t.Helper()
	decls, err := parser.Extract([]byte(source), "m")
	require.NoError(t, err)
	m := make(map[string]*parser.Declaration)
	for _, d := range decls {
		m[d.QualifiedName] = d
	}
	return m
}

func reVerify(t *testing.T) Verifier {
	t.Helper()
	return func(candidate string, decl *parser.Declaration) error {
		decls, err := parser.Extract([]byte(candidate), "m")
		if err != nil {
			return err
		}
		for _, d := range decls {
			if d.QualifiedName == decl.QualifiedName && d.Kind == decl.Kind {
				if state := parser.Locate(d, parser.LocateOptions{MinLength: 1}); state.Status != parser.StatusValid {
					return fmt.Errorf("docstring state is %s", state.Status)
				}
				return nil
			}
		}
		return fmt.Errorf("declaration %s disappeared", decl.QualifiedName)
	}
}

func TestApply_InsertAndReplace(t *testing.T) {
	byName := extract(t, original)

	edits := []Edit{
		{Decl: byName["add"], NewText: addLiteral},
		{Decl: byName["scale"], NewText: scaleLiteral, Replace: true},
	}
	newText, changes := Apply(original, edits, reVerify(t))

	want := `def add(a: int, b: int) -> int:
` + addLiteral + `
    return a + b


def scale(x: float) -> float:
` + scaleLiteral + `
    return x * 2.0
`
	assert.Equal(t, want, newText)

	require.Len(t, changes, 2)
	assert.Equal(t, "add", changes[0].QualifiedName)
	assert.Equal(t, OutcomeApplied, changes[0].Outcome)
	assert.Empty(t, changes[0].OldText)
	assert.Equal(t, "scale", changes[1].QualifiedName)
	assert.Equal(t, OutcomeApplied, changes[1].Outcome)
	assert.Equal(t, `"""Sc."""`, changes[1].OldText)
}

func TestApply_NoEditsRoundTrips(t *testing.T) {
	newText, changes := Apply(original, nil, reVerify(t))
	assert.Equal(t, original, newText)
	assert.Empty(t, changes)
}

func TestApply_RejectsFailedVerification(t *testing.T) {
	byName := extract(t, original)

	edits := []Edit{
		{Decl: byName["add"], NewText: "    broken = True"},
		{Decl: byName["scale"], NewText: scaleLiteral, Replace: true},
	}
	newText, changes := Apply(original, edits, reVerify(t))

	// add is rolled back, scale still lands.
	assert.Contains(t, newText, "def add(a: int, b: int) -> int:\n    return a + b")
	assert.NotContains(t, newText, "broken = True")
	assert.Contains(t, newText, "Scale x by two.")

	require.Len(t, changes, 2)
	assert.Equal(t, OutcomeRejected, changes[0].Outcome)
	assert.Contains(t, changes[0].Reason, "splice verification failed")
	assert.Equal(t, OutcomeApplied, changes[1].Outcome)
}

func TestApply_UntouchedDeclarationsKeepTheirBytes(t *testing.T) {
	byName := extract(t, original)
	scale := byName["scale"]

	edits := []Edit{{Decl: byName["add"], NewText: addLiteral}}
	newText, _ := Apply(original, edits, reVerify(t))

	// scale's span content is bit-identical in the new buffer.
	old := original[scale.Span.StartByte:scale.Span.EndByte]
	assert.Contains(t, newText, old)
}
