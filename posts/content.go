package posts

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const readCharsPerMinute = 500

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// FormatDate renders a server timestamp as YYYY-MM-DD in UTC. Timestamps
// without a zone are taken as UTC. Unparseable input is returned unchanged.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.DateOnly)
		}
	}
	return s
}

// ReadTime estimates minutes to read content at 500 characters a minute.
// Empty content reads in one minute.
func ReadTime(content string) int {
	n := utf8.RuneCountInString(content)
	if n == 0 {
		return 1
	}
	return (n + readCharsPerMinute - 1) / readCharsPerMinute
}

func ReadTimeLabel(content string) string {
	return fmt.Sprintf("%d min read", ReadTime(content))
}

// Section is one entry of a post's table of contents.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}

// TableOfContents lists the "## " and "### " headings of markdown content.
func TableOfContents(content string) []Section {
	var sections []Section
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		level := 0
		switch {
		case strings.HasPrefix(line, "### "):
			level = 3
		case strings.HasPrefix(line, "## "):
			level = 2
		default:
			continue
		}
		title := strings.TrimSpace(line[level+1:])
		if title == "" {
			continue
		}
		sections = append(sections, Section{ID: Slug(title), Title: title, Level: level})
	}
	return sections
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9가-힣]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slug makes a URL-safe anchor: lower case, runs of anything other than
// ASCII letters, digits and Hangul syllables become a single dash.
func Slug(text string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(text), "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
