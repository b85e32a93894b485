// Package output renders run results for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/fuzzylabs/docstringinator/internal/pipeline"
	"github.com/fuzzylabs/docstringinator/internal/splice"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	errorColor   = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
)

// Printer writes per-file reports and batch summaries.
type Printer struct {
	out      io.Writer
	verbose  bool
	showDiff bool
}

func NewPrinter(out io.Writer, verbose, showDiff bool) *Printer {
	return &Printer{out: out, verbose: verbose, showDiff: showDiff}
}

// File reports one processed file: what was touched, what was rejected, and
// the diff when requested.
func (p *Printer) File(res *pipeline.FileResult) {
	if !res.Changed && len(res.Errors) == 0 && !p.verbose {
		return
	}

	name := res.Path
	if name == "" {
		name = res.Module
	}
	fmt.Fprintf(p.out, "%s (%s)\n", headerColor.Sprint(name), res.Outcome)

	for _, ch := range res.Changes {
		switch {
		case ch.Outcome != splice.OutcomeApplied:
			fmt.Fprintf(p.out, "  %s %s: %s\n", errorColor.Sprint("✗"), ch.QualifiedName, ch.Reason)
		case ch.OldText == "":
			fmt.Fprintf(p.out, "  %s %s %s\n", addedColor.Sprint("+"), ch.QualifiedName, mutedColor.Sprintf("(%s, added)", ch.Kind))
		default:
			fmt.Fprintf(p.out, "  %s %s %s\n", addedColor.Sprint("~"), ch.QualifiedName, mutedColor.Sprintf("(%s, improved)", ch.Kind))
		}
	}
	for _, msg := range res.Errors {
		fmt.Fprintf(p.out, "  %s %s\n", errorColor.Sprint("✗"), msg)
	}

	if p.showDiff && res.Changed {
		fmt.Fprint(p.out, renderDiff(res.OldText, res.NewText))
	}
}

// Batch prints the end-of-run summary.
func (p *Printer) Batch(batch *pipeline.BatchResult) {
	var changed, added, improved, rejected, failedDecls int
	for _, res := range batch.Files {
		if res.Changed {
			changed++
		}
		failedDecls += len(res.Errors)
		for _, ch := range res.Changes {
			switch {
			case ch.Outcome != splice.OutcomeApplied:
				rejected++
			case ch.OldText == "":
				added++
			default:
				improved++
			}
		}
	}

	fmt.Fprintf(p.out, "\n%s\n", headerColor.Sprint("Summary"))
	fmt.Fprintf(p.out, "  files processed: %d, changed: %d (%s)\n",
		len(batch.Files), changed, batch.Duration.Round(time.Millisecond))
	fmt.Fprintf(p.out, "  docstrings added: %d, improved: %d\n", added, improved)
	if rejected+failedDecls > 0 {
		fmt.Fprintf(p.out, "  %s\n", errorColor.Sprintf("declarations skipped on failure: %d", rejected+failedDecls))
	}
	for _, fe := range batch.Failed {
		fmt.Fprintf(p.out, "  %s %s: %v\n", errorColor.Sprint("✗"), fe.Path, fe.Err)
	}
}

// renderDiff produces a line-oriented diff with only the changed lines shown.
func renderDiff(oldText, newText string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writePrefixed(&sb, d.Text, "-", removedColor)
		case diffmatchpatch.DiffInsert:
			writePrefixed(&sb, d.Text, "+", addedColor)
		}
	}
	return sb.String()
}

func writePrefixed(sb *strings.Builder, text, prefix string, c *color.Color) {
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		sb.WriteString("  " + c.Sprintf("%s %s", prefix, line) + "\n")
	}
}
