package gitdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNameStatus(t *testing.T) {
	output := []byte("M\tapp.py\n" +
		"A\tpkg/models.py\n" +
		"D\tpkg/removed.py\n" +
		"R100\told/name.py\tpkg/renamed.py\n" +
		"M\tREADME.md\n" +
		"M\tapp.py\n")

	files := parseNameStatus(output)
	assert.Equal(t, []string{"app.py", "pkg/models.py", "pkg/renamed.py"}, files)
}

func TestParseNameStatus_Empty(t *testing.T) {
	assert.Empty(t, parseNameStatus(nil))
	assert.Empty(t, parseNameStatus([]byte("\n")))
}
