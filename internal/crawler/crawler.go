// Package crawler discovers Python source files under a directory root.
package crawler

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// Crawler scans a directory for Python files. Include and exclude patterns
// are globs matched against the slash-separated path relative to the root,
// the base name, and any trailing path segment, so "tests/*" and
// "*_generated.py" both behave as users expect. Exclude wins over include.
type Crawler struct {
	include []string
	exclude []string
	ignored []string
}

// New creates a crawler with the given include and exclude patterns. An
// empty include list means every Python file is eligible.
func New(include, exclude []string) *Crawler {
	return &Crawler{
		include: include,
		exclude: exclude,
		ignored: []string{".git", ".tox", ".venv", "venv", "__pycache__", "node_modules"},
	}
}

// Discover walks root and returns eligible Python files in walk order.
func (c *Crawler) Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = d.Name()
		}
		if c.eligible(filepath.ToSlash(rel), d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Crawler) eligible(rel, base string) bool {
	for _, pat := range c.exclude {
		if matchPattern(pat, rel, base) {
			return false
		}
	}
	if len(c.include) == 0 {
		return true
	}
	for _, pat := range c.include {
		if matchPattern(pat, rel, base) {
			return true
		}
	}
	return false
}

func matchPattern(pat, rel, base string) bool {
	// Patterns like "*/tests/*" mean a tests directory at any depth, the
	// root included.
	for strings.HasPrefix(pat, "*/") {
		pat = pat[2:]
	}
	if ok, _ := path.Match(pat, rel); ok {
		return true
	}
	if ok, _ := path.Match(pat, base); ok {
		return true
	}
	segments := strings.Split(rel, "/")
	for i := 1; i < len(segments); i++ {
		if ok, _ := path.Match(pat, strings.Join(segments[i:], "/")); ok {
			return true
		}
	}
	return false
}
