package books

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveHTML(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book1.tsv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadHTMLPageWithPreBlock(t *testing.T) {
	page := "<html><head><title>Book 1</title></head><body>" +
		"<h1>Book 1 word list</h1><p>Lesson vocabulary for the first term.</p>" +
		"<pre>課-序號\t生詞\t漢拼\t英譯\n" +
		"1-1\t<ruby>你好<rp>(</rp><rt>nǐ hǎo</rt><rp>)</rp></ruby>\tnǐ hǎo\thello\n" +
		"1-2\t謝謝\txièxie\tthanks\n</pre></body></html>"
	srv := serveHTML(t, page)

	entries, err := NewLoader(srv.URL).Load(context.Background(), "book1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].Chinese != "你好" || entries[0].LessonCode != "1-1" || entries[0].English != "hello" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Chinese != "謝謝" || entries[1].Pinyin != "xièxie" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestLoadHTMLPageWithTable(t *testing.T) {
	page := "<html><body><h2>Word list</h2><table>" +
		"<tr><th>課-序號</th><th>生詞</th><th>漢拼</th><th>英譯</th></tr>" +
		"<tr><td>2-1</td><td><ruby>書<rt>shū</rt></ruby></td><td>shū</td><td>book</td></tr>" +
		"<tr><td>2-1</td><td>山</td><td>shān</td><td> mountain </td></tr>" +
		"</table></body></html>"
	srv := serveHTML(t, page)

	entries, err := NewLoader(srv.URL).Load(context.Background(), "book1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 || entries[0].Chinese != "書" || entries[1].English != "mountain" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestUnwrapHTMLFallsBackToArticleText(t *testing.T) {
	rows := []string{
		"1-1\t你好\tnǐ hǎo\thello, a greeting used at any time of day",
		"1-1\t謝謝\txièxie\tthanks, said when receiving something",
		"1-2\t老師\tlǎoshī\tteacher, the person who leads the class",
		"1-2\t學生\txuéshēng\tstudent, a person who attends the class",
	}
	page := "<html><head><title>Book 1</title></head><body><article><h1>Book 1</h1>" +
		"<div>\nThe words below belong to the first two lessons of the course.\n" +
		"課-序號\t生詞\t漢拼\t英譯\n" + strings.Join(rows, "\n") + "\n</div></article></body></html>"

	text, err := UnwrapHTML([]byte(page), nil)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if !strings.HasPrefix(string(text), "課-序號\t生詞") {
		t.Fatalf("expected text to start at the header row, got %q", text)
	}
}
