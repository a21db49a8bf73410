package chunker

import (
	"regexp"
	"strings"
)

// Section is a heading plus the text under it. Title is empty for text
// preceding the first heading.
type Section struct {
	Title   string
	Content string
}

// headingPattern matches markdown #-headings, fully bold/underscored lines
// and short ALL-CAPS lines.
var headingPattern = regexp.MustCompile(`^(#{1,6}\s+.+|(\*\*|__).+(\*\*|__)|[A-Z][A-Z\s]{3,}:?)$`)

// splitByHeadings segments content into an ordered list of sections.
// Content with no headings becomes a single untitled section.
func splitByHeadings(content string) []Section {
	var sections []Section
	var current []string
	title := ""
	started := false

	flush := func() {
		text := strings.TrimSpace(strings.Join(current, "\n"))
		if text != "" {
			sections = append(sections, Section{Title: title, Content: text})
		}
		current = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if headingPattern.MatchString(trimmed) {
			flush()
			title = cleanHeading(trimmed)
			started = true
			continue
		}
		current = append(current, line)
	}
	flush()

	// A heading with no body still marks an (empty) section boundary; only
	// fully headingless content collapses to one untitled section.
	if len(sections) == 0 && !started {
		text := strings.TrimSpace(content)
		if text != "" {
			sections = append(sections, Section{Content: text})
		}
	}
	return sections
}

// cleanHeading strips markdown heading and emphasis markers.
func cleanHeading(line string) string {
	title := strings.TrimLeft(line, "#")
	title = strings.TrimSpace(title)
	title = strings.Trim(title, "*_")
	return strings.TrimSpace(title)
}

// splitParagraphs splits content into blocks separated by blank lines.
var paragraphSeparator = regexp.MustCompile(`\n\s*\n`)

func splitParagraphs(content string) []string {
	parts := paragraphSeparator.Split(content, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}
