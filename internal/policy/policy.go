// Package policy decides what to do with each declaration. Decide is a pure
// function so the rules stay table-testable.
package policy

import (
	"path"
	"strings"

	"github.com/fuzzylabs/docstringinator/internal/config"
	"github.com/fuzzylabs/docstringinator/internal/parser"
)

// Action is the per-declaration decision.
type Action string

const (
	ActionSkip     Action = "skip"
	ActionGenerate Action = "generate"
	ActionImprove  Action = "improve"
)

// Decide classifies a declaration given its docstring state. Absent
// docstrings are generated unless an exclusion rule matches; deficient ones
// are improved only when improvement is enabled; valid ones are always
// skipped.
func Decide(decl *parser.Declaration, state parser.DocstringState, cfg *config.Config) Action {
	if Excluded(decl, cfg) {
		return ActionSkip
	}
	switch state.Status {
	case parser.StatusAbsent:
		return ActionGenerate
	case parser.StatusDeficient:
		if cfg.Processing.ImproveExisting {
			return ActionImprove
		}
		return ActionSkip
	default:
		return ActionSkip
	}
}

// Excluded reports whether a declaration matches a name-based exclusion
// rule. Private names (single leading underscore, dunders kept) are excluded
// when skip_private is set; exclude_names patterns match against both the
// bare and the qualified name.
func Excluded(decl *parser.Declaration, cfg *config.Config) bool {
	if decl.Kind == parser.KindModule {
		return false
	}
	if cfg.Processing.SkipPrivate && isPrivateName(decl.Name) {
		return true
	}
	for _, pattern := range cfg.Processing.ExcludeNames {
		if ok, _ := path.Match(pattern, decl.Name); ok {
			return true
		}
		if ok, _ := path.Match(pattern, decl.QualifiedName); ok {
			return true
		}
	}
	return false
}

func isPrivateName(name string) bool {
	return strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__")
}
