// Package splice applies docstring edits to a source buffer while
// guaranteeing that every byte outside the touched spans survives
// unchanged.
package splice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fuzzylabs/docstringinator/internal/parser"
)

// Edit is one planned docstring change. NewText is the full literal block
// with every line indented; for replacements the engine trims the first
// line's indent because the old span starts after it.
type Edit struct {
	Decl    *parser.Declaration
	NewText string
	Replace bool
}

// Outcome of a change.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRejected Outcome = "rejected"
)

// Change records one applied or rejected edit.
type Change struct {
	QualifiedName string
	Kind          parser.Kind
	OldText       string
	NewText       string
	Outcome       Outcome
	Reason        string

	offset int
}

// Verifier re-checks one touched declaration against a candidate buffer.
// A non-nil error rejects the edit.
type Verifier func(candidate string, decl *parser.Declaration) error

// VerificationError reports that a spliced declaration failed its post-edit
// re-check.
type VerificationError struct {
	QualifiedName string
	Detail        string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("splice verification failed for %s: %s", e.QualifiedName, e.Detail)
}

// Apply splices the edits into the original text. Edits are applied in
// descending start-offset order so earlier spans stay valid, and each edit
// is verified individually: a failing edit is rolled back and recorded as
// rejected while the rest proceed. Changes come back in document order.
func Apply(original string, edits []Edit, verify Verifier) (string, []Change) {
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return editOffset(ordered[i]) > editOffset(ordered[j])
	})

	buf := original
	changes := make([]Change, 0, len(ordered))
	for _, e := range ordered {
		candidate := applyOne(buf, e)
		change := Change{
			QualifiedName: e.Decl.QualifiedName,
			Kind:          e.Decl.Kind,
			NewText:       e.NewText,
			offset:        editOffset(e),
		}
		if e.Replace {
			change.OldText = e.Decl.Docstring.Raw
		}
		if verify != nil {
			if err := verify(candidate, e.Decl); err != nil {
				change.Outcome = OutcomeRejected
				change.Reason = (&VerificationError{QualifiedName: e.Decl.QualifiedName, Detail: err.Error()}).Error()
				changes = append(changes, change)
				continue
			}
		}
		buf = candidate
		change.Outcome = OutcomeApplied
		changes = append(changes, change)
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].offset < changes[j].offset
	})
	return buf, changes
}

func editOffset(e Edit) int {
	if e.Replace && e.Decl.Docstring != nil {
		return e.Decl.Docstring.Span.StartByte
	}
	return e.Decl.BodyStartByte
}

func applyOne(buf string, e Edit) string {
	if e.Replace && e.Decl.Docstring != nil {
		start := e.Decl.Docstring.Span.StartByte
		end := e.Decl.Docstring.Span.EndByte
		literal := strings.TrimPrefix(e.NewText, e.Decl.BodyIndent())
		return buf[:start] + literal + buf[end:]
	}

	off := e.Decl.BodyStartByte
	block := e.NewText + "\n"
	if off >= len(buf) {
		off = len(buf)
		if len(buf) > 0 && !strings.HasSuffix(buf, "\n") {
			block = "\n" + block
		}
	}
	return buf[:off] + block + buf[off:]
}
