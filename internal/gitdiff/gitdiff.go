// Package gitdiff lists the Python files touched by uncommitted or recent
// changes, so a run can be limited to what actually moved.
package gitdiff

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// ChangedPythonFiles runs git diff against baseRef (the working tree against
// HEAD when baseRef is empty) and returns the distinct Python files that
// still exist on the new side of the diff.
func ChangedPythonFiles(baseRef string) ([]string, error) {
	args := []string{"diff", "--name-status"}
	if strings.TrimSpace(baseRef) != "" {
		args = append(args, baseRef)
	}
	cmd := exec.Command("git", args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return parseNameStatus(output), nil
}

// parseNameStatus reads `git diff --name-status` output. Deleted files are
// dropped; renames report the new path.
func parseNameStatus(output []byte) []string {
	var files []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		if strings.HasPrefix(status, "D") {
			continue
		}
		path := fields[1]
		if strings.HasPrefix(status, "R") && len(fields) >= 3 {
			path = fields[2]
		}
		if !strings.HasSuffix(path, ".py") || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files
}
