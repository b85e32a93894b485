// Package pipeline drives the fix pass: parse, decide, generate, normalize,
// and splice, per declaration, with failures isolated so one bad generation
// never blocks the rest of a file.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fuzzylabs/docstringinator/internal/config"
	"github.com/fuzzylabs/docstringinator/internal/crawler"
	"github.com/fuzzylabs/docstringinator/internal/llm"
	"github.com/fuzzylabs/docstringinator/internal/normalizer"
	"github.com/fuzzylabs/docstringinator/internal/parser"
	"github.com/fuzzylabs/docstringinator/internal/policy"
	"github.com/fuzzylabs/docstringinator/internal/prompt"
	"github.com/fuzzylabs/docstringinator/internal/splice"
)

// RunOutcome classifies how a file-level pass went.
type RunOutcome string

const (
	OutcomeAllFixed   RunOutcome = "all-fixed"
	OutcomePartial    RunOutcome = "partial"
	OutcomeNoEligible RunOutcome = "no-eligible"
)

// FileResult reports one processed file.
type FileResult struct {
	Path    string
	Module  string
	OldText string
	NewText string
	Changed bool
	Outcome RunOutcome
	Changes []splice.Change
	Errors  []string // per-declaration failures, formatted "name: reason"
}

// BatchResult aggregates a directory run.
type BatchResult struct {
	Files    []*FileResult
	Failed   []FileError
	Duration time.Duration
}

// FileError marks a file that could not be processed at all.
type FileError struct {
	Path string
	Err  error
}

// Fixer runs the pass with one configuration and one generator.
type Fixer struct {
	cfg *config.Config
	gen llm.Generator
}

func New(cfg *config.Config, gen llm.Generator) *Fixer {
	return &Fixer{cfg: cfg, gen: gen}
}

// ProcessSource runs the full pass over one module's source text. The input
// bytes are never mutated; the result carries the new text. The returned
// error is reserved for file-level failures such as unparseable source;
// per-declaration failures land in FileResult.Errors and the declaration is
// left untouched.
func (f *Fixer) ProcessSource(ctx context.Context, moduleName string, source []byte) (*FileResult, error) {
	decls, err := parser.Extract(source, moduleName)
	if err != nil {
		return nil, err
	}

	res := &FileResult{Module: moduleName, OldText: string(source)}
	opts := parser.LocateOptions{MinLength: f.cfg.Format.MinDocLen}

	var attempted int
	var edits []splice.Edit
	for _, decl := range decls {
		state := parser.Locate(decl, opts)
		action := policy.Decide(decl, state, f.cfg)
		if action == policy.ActionSkip {
			continue
		}
		attempted++

		if action == policy.ActionGenerate && decl.BodyOnHeaderLine {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: cannot insert a docstring into a single-line body", decl.QualifiedName))
			continue
		}

		req := prompt.Build(decl, action, f.cfg.Format)
		resp, err := f.gen.GenerateDocstring(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.Errors = append(res.Errors, fmt.Sprintf("%s: generation failed: %v", decl.QualifiedName, err))
			continue
		}

		block, err := normalizer.Normalize(resp.Content, req, decl.BodyIndent(), f.cfg.Format.MaxLineLen)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", decl.QualifiedName, err))
			continue
		}

		edits = append(edits, splice.Edit{
			Decl:    decl,
			NewText: block,
			Replace: action == policy.ActionImprove,
		})
	}

	newText, changes := splice.Apply(string(source), edits, f.verifier(moduleName, opts))
	res.NewText = newText
	res.Changes = changes
	res.Changed = newText != string(source)

	applied := 0
	for _, ch := range changes {
		if ch.Outcome == splice.OutcomeApplied {
			applied++
		}
	}
	switch {
	case attempted == 0:
		res.Outcome = OutcomeNoEligible
	case applied == attempted:
		res.Outcome = OutcomeAllFixed
	default:
		res.Outcome = OutcomePartial
	}
	return res, nil
}

// verifier re-parses each candidate buffer and requires the touched
// declaration to classify as valid, so every applied edit is one a second
// run would leave alone.
func (f *Fixer) verifier(moduleName string, opts parser.LocateOptions) splice.Verifier {
	return func(candidate string, decl *parser.Declaration) error {
		decls, err := parser.Extract([]byte(candidate), moduleName)
		if err != nil {
			return err
		}
		for _, d := range decls {
			if d.QualifiedName != decl.QualifiedName || d.Kind != decl.Kind {
				continue
			}
			if state := parser.Locate(d, opts); state.Status != parser.StatusValid {
				return fmt.Errorf("docstring classifies as %s after splice", state.Status)
			}
			return nil
		}
		return fmt.Errorf("declaration no longer found after splice")
	}
}

// FixFile processes a single file on disk. Unless dry-run is set, a changed
// file is rewritten in place, with an optional .bak copy of the original
// written first.
func (f *Fixer) FixFile(ctx context.Context, path string) (*FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if max := f.cfg.Processing.MaxFileSize; max > 0 && info.Size() > max {
		return nil, fmt.Errorf("%s is too large to process (%d bytes, limit %d)", path, info.Size(), max)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	res, err := f.ProcessSource(ctx, moduleNameOf(path), source)
	if err != nil {
		return nil, err
	}
	res.Path = path

	if !res.Changed || f.cfg.Processing.DryRun {
		return res, nil
	}

	if f.cfg.Processing.BackupFiles {
		if err := os.WriteFile(path+".bak", source, info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("failed to write backup for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(res.NewText), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return res, nil
}

// FixFiles processes an explicit list of files, isolating per-file failures.
func (f *Fixer) FixFiles(ctx context.Context, paths []string) (*BatchResult, error) {
	start := time.Now()
	batch := &BatchResult{}
	defer func() { batch.Duration = time.Since(start) }()
	for _, path := range paths {
		if ctx.Err() != nil {
			return batch, ctx.Err()
		}
		res, err := f.FixFile(ctx, path)
		if err != nil {
			batch.Failed = append(batch.Failed, FileError{Path: path, Err: err})
			continue
		}
		batch.Files = append(batch.Files, res)
	}
	return batch, nil
}

// FixDirectory discovers Python files under root, honoring the configured
// include and exclude patterns, and processes them sequentially.
func (f *Fixer) FixDirectory(ctx context.Context, root string) (*BatchResult, error) {
	files, err := crawler.New(f.cfg.Processing.IncludePatterns, f.cfg.Processing.ExcludePatterns).Discover(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return f.FixFiles(ctx, files)
}

func moduleNameOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".py")
}
