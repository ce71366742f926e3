package books

import (
	"bytes"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/dom"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/japaniel/shengci/pkg/vocab"
)

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses (<rp>...</rp>).
// Word lists published as web pages often carry pinyin as ruby over each
// headword, which would otherwise be glued onto the characters.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}

// UnwrapHTML extracts a delimited word list from a web page. The first <pre>
// block or table holding a header row wins; otherwise the readable article
// text is used from its header row on. Ruby annotations are removed first.
func UnwrapHTML(content []byte, pageURL *url.URL) ([]byte, error) {
	clean := SanitizeRuby(content)
	doc, err := dom.FastParse(bytes.NewReader(clean))
	if err != nil {
		return nil, err
	}
	for _, pre := range dom.GetElementsByTagName(doc, "pre") {
		if text, ok := vocab.TrimPreamble(dom.TextContent(pre)); ok {
			return []byte(text), nil
		}
	}
	for _, table := range dom.GetElementsByTagName(doc, "table") {
		if text, ok := vocab.TrimPreamble(tableText(table)); ok {
			return []byte(text), nil
		}
	}

	article, err := readability.FromDocument(doc, pageURL)
	if err != nil {
		return nil, err
	}
	text, _ := vocab.TrimPreamble(article.TextContent)
	return []byte(text), nil
}

// tableText renders each table row as one tab-separated line.
func tableText(table *html.Node) string {
	var b strings.Builder
	for _, tr := range dom.GetElementsByTagName(table, "tr") {
		var cells []string
		for _, cell := range dom.Children(tr) {
			if tag := dom.TagName(cell); tag == "td" || tag == "th" {
				cells = append(cells, strings.Join(strings.Fields(dom.TextContent(cell)), " "))
			}
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

func isHTML(contentType, name string, body []byte) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		return true
	}
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		return true
	}
	return contentType == "" && strings.HasPrefix(http.DetectContentType(body), "text/html")
}
