package extract

import (
	"golang.org/x/net/html"
	"io"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	mailtoPrefix = regexp.MustCompile(`(?i)mailto:`)

	// US/Canada phone shapes, tried in order. First match wins and is kept
	// as written on the page.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\+1[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\d{3}[-.\s]\d{3}[-.\s]\d{4}`),
	}

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// CleanText collapses whitespace runs to single spaces and trims the ends.
// Every extracted field goes through this before landing in a record.
func CleanText(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// FindEmail returns the first syntactically valid address in text, or ""
// when there is none. mailto: prefixes are stripped before matching.
func FindEmail(text string) string {
	if text == "" {
		return ""
	}
	return emailPattern.FindString(mailtoPrefix.ReplaceAllString(text, ""))
}

// FindPhone returns the first phone pattern match in text, or "".
func FindPhone(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range phonePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// VisibleText walks the parsed document and collects its text nodes,
// skipping script and style bodies.
func VisibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			parent := n.Parent
			if parent != nil && parent.Data != "script" && parent.Data != "style" {
				text := strings.TrimSpace(n.Data)
				if len(text) > 0 {
					b.WriteString(text + " ")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	return b.String(), nil
}
