package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# filefield

Each field holds a path. It is checked against the host every time it
changes, and the border shows the result:

| Glyph | Meaning |
|---|---|
| ✓ | the path exists and the form accepts it |
| ✗ | the path does not exist, or duplicates another field |
| … | the check is still running |
| ! | the host could not answer |

## Keys

- **tab / shift+tab** move between inputs and Browse buttons
- **ctrl+o** opens the file picker for the focused field
- **enter** on a Browse button does the same
- **ctrl+y** copies the focused path to the clipboard
- **ctrl+v** pastes a path from the clipboard
- **→** accepts a suggestion from recently used paths
- **ctrl+s** saves once every field is valid
- **f1** toggles this page, **esc** quits without saving

Paths change on disk while you edit? Fields re-check themselves.
`

// renderHelp renders the help page for the given theme and wrap width.
func renderHelp(dark bool, width int) string {
	var renderer *glamour.TermRenderer
	var err error
	if dark {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
	} else {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("light"),
			glamour.WithWordWrap(width),
		)
	}
	if err != nil {
		return helpMarkdown
	}
	return safeRenderMarkdown(renderer, helpMarkdown)
}

// safeRenderMarkdown renders markdown with panic recovery
func safeRenderMarkdown(r *glamour.TermRenderer, content string) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
