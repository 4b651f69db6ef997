// Package parse holds pure functions used by spiders to turn raw HTML/text
// into normalized item fields: text cleaning, permissive date parsing, and
// CSS-selector extraction.
package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText parses html, removes <script> and <style> subtrees, and returns
// the remaining body text with whitespace collapsed. Idempotent: running
// CleanText on its own output returns the same string.
func CleanText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapseWhitespace(html)
	}
	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// ExtractFirst returns the first element matched by the CSS selector,
// trimmed, or "" if none match.
func ExtractFirst(html, selector string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}

// ExtractAll returns every non-empty, trimmed text match for the CSS
// selector, in document order.
func ExtractAll(html, selector string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}
