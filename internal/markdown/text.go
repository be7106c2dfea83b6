package markdown

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// PlainText returns the visible text of an HTML fragment with whitespace
// collapsed, truncated to at most limit runes on a word boundary. Code blocks
// are skipped. A limit of zero or less disables truncation.
func PlainText(fragment string, limit int) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way the text so far is all we get.
			return truncate(strings.Join(strings.Fields(b.String()), " "), limit)
		case html.StartTagToken:
			if skipsContent(z) {
				skip++
			}
		case html.EndTagToken:
			if skip > 0 && skipsContent(z) {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func skipsContent(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "pre", "script", "style":
		return true
	}
	return false
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)[:limit]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
