package normalizer

import (
	"regexp"
	"strings"
)

// Minimum usable prose width before wrapping gives up.
const minWrapWidth = 16

var (
	fieldLine = regexp.MustCompile(`^:\S`)
	entryLine = regexp.MustCompile(`^[\w*]+(\s*\([^)]*\))?\s*:`)
)

// wrap re-flows prose lines so that, once the docstring is indented, no line
// exceeds maxWidth. Structural lines (section headings, underlines, reST
// fields' markers) are never broken; wrapped entry lines get a hanging
// indent so they cannot be misread as new entries.
func wrap(content, indent string, maxWidth int) (string, error) {
	if maxWidth <= 0 {
		return content, nil
	}
	budget := maxWidth - len(indent)
	if budget < minWrapWidth {
		return "", &Error{Reason: ReasonWrapFailure, Detail: "indentation leaves no room for text"}
	}

	var out []string
	for _, line := range strings.Split(content, "\n") {
		if len(line) <= budget || isStructural(line) {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, budget)...)
	}
	return strings.Join(out, "\n"), nil
}

// isStructural reports whether a line carries layout meaning that wrapping
// would destroy.
func isStructural(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return true
	}
	if anyHeading.MatchString(t) || underline.MatchString(t) {
		return true
	}
	return false
}

func wrapLine(line string, budget int) []string {
	leading := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	text := strings.TrimSpace(line)

	cont := leading
	if entryLine.MatchString(text) || fieldLine.MatchString(text) {
		cont = leading + "    "
	}

	var out []string
	words := strings.Fields(text)
	current := leading
	prefix := leading
	for _, word := range words {
		candidate := current + word
		if current != prefix {
			candidate = current + " " + word
		}
		if len(candidate) > budget && current != prefix {
			out = append(out, current)
			current = cont + word
			prefix = cont
			continue
		}
		if current == prefix {
			current += word
		} else {
			current += " " + word
		}
	}
	if strings.TrimSpace(current) != "" {
		out = append(out, current)
	}
	return out
}
