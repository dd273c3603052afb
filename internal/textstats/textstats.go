package textstats

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/Paintersrp/knot/internal/constants"
)

// Stats summarises a note body.
type Stats struct {
	Words     int
	Minutes   int
	Tasks     int
	TasksDone int
}

// Compute counts whitespace-delimited words and estimates reading time at
// wpm words per minute. Any non-empty text takes at least one minute. A
// non-positive wpm falls back to the default rate.
func Compute(body string, wpm int) Stats {
	if wpm <= 0 {
		wpm = constants.DefaultReadingWPM
	}

	words := len(strings.Fields(body))
	stats := Stats{Words: words}
	if body != "" {
		stats.Minutes = max(1, (words+wpm-1)/wpm)
	}

	stats.Tasks, stats.TasksDone = countTasks([]byte(body))
	return stats
}

// countTasks walks the Markdown list items looking for checkbox prefixes.
func countTasks(source []byte) (total, done int) {
	if len(source) == 0 {
		return 0, 0
	}

	document := goldmark.DefaultParser().Parse(text.NewReader(source))
	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		item, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}

		content := strings.TrimSpace(string(item.Text(source)))
		switch {
		case strings.HasPrefix(content, "[ ]"):
			total++
		case strings.HasPrefix(content, "[x]"), strings.HasPrefix(content, "[X]"):
			total++
			done++
		}
		return ast.WalkContinue, nil
	})

	return total, done
}
