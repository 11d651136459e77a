// Package sanitize strips markup, embedded JSON and scraper boilerplate from
// raw title and description strings before normalization.
package sanitize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[a-zA-Z!/][^>]*>`)
	uuidLineRe   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	postedLineRe = regexp.MustCompile(`(?i)^posted\b.*\b(ago|days?|weeks?|months?)\b`)
	applyCTARe   = regexp.MustCompile(`(?i)^(direct apply|apply now|easy apply|quick apply|apply today|save job)$`)
	urlLineRe    = regexp.MustCompile(`(?i)^https?://\S+$`)
	slugLineRe   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+){2,}$`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
	blankRunRe   = regexp.MustCompile(`\n\n\n+`)
)

// Titles that are really the board's page chrome, not a role.
var placeholderTitles = map[string]bool{
	"job application": true,
	"careers":         true,
	"jobs":            true,
	"job openings":    true,
	"open positions":  true,
	"apply":           true,
	"untitled":        true,
}

// StripHTML returns the display text of a string that may contain literal
// markup. Plain strings pass through untouched.
func StripHTML(s string) string {
	if !htmlTagRe.MatchString(s) {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// Fall back to dumb tag removal rather than failing the record.
		return htmlTagRe.ReplaceAllString(s, " ")
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}

// StripInlineJSON removes embedded JSON blobs — scrapers sometimes carry a
// theme/config object straight after the display text. Only balanced `{...}`
// segments that parse as JSON are removed; stray braces in prose survive.
func StripInlineJSON(s string) string {
	for {
		start := strings.IndexByte(s, '{')
		if start < 0 {
			return s
		}
		end := matchBrace(s, start)
		if end < 0 {
			return s
		}
		blob := s[start : end+1]
		if !json.Valid([]byte(blob)) {
			// Not JSON: leave it and stop scanning, nested prose braces are rare.
			return s
		}
		s = s[:start] + " " + s[end+1:]
	}
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// IsNoiseLine reports whether a line is scrape-card chrome rather than content.
func IsNoiseLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	return uuidLineRe.MatchString(line) ||
		postedLineRe.MatchString(line) ||
		applyCTARe.MatchString(line) ||
		urlLineRe.MatchString(line)
}

// IsNoiseCard reports whether a multi-line blob is a search-result card
// (slug or UUID line, a "Posted … ago" line and an apply CTA) rather than a
// real title or description.
func IsNoiseCard(text string) bool {
	var hasID, hasPosted, hasCTA bool
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case uuidLineRe.MatchString(line) || slugLineRe.MatchString(line):
			hasID = true
		case postedLineRe.MatchString(line):
			hasPosted = true
		case applyCTARe.MatchString(line) || urlLineRe.MatchString(line):
			hasCTA = true
		}
	}
	return hasID && hasPosted && hasCTA
}

// CleanTitle sanitizes a raw scraped title. It returns "" when nothing
// usable survives, which callers treat as "drop the record".
func CleanTitle(raw string) string {
	if raw == "" {
		return ""
	}

	text := StripInlineJSON(StripHTML(raw))

	if IsNoiseCard(text) {
		return ""
	}

	// First line that is not card chrome is the title.
	title := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || IsNoiseLine(line) {
			continue
		}
		title = line
		break
	}

	title = strings.TrimSpace(multiSpaceRe.ReplaceAllString(title, " "))
	if placeholderTitles[strings.ToLower(title)] {
		return ""
	}
	return title
}

// CleanText sanitizes a raw description body while preserving Markdown
// structure (headings, bullets). Boilerplate card lines are dropped.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = StripInlineJSON(StripHTML(content))

	// Normalize line endings (CRLF -> LF).
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if IsNoiseLine(line) {
			continue
		}
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankRunRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine normalizes a single line, keeping headings and bullets intact.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		indent := len(line) - len(trimmed)
		return strings.Repeat(" ", indent) + trimmed
	}

	indent := len(line) - len(trimmed)
	content := multiSpaceRe.ReplaceAllString(strings.TrimSpace(line), " ")
	return strings.Repeat(" ", indent) + content
}
