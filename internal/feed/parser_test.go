package feed

import (
	"errors"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/newsdesk/internal/source"
)

var testSource = source.Source{
	URL:      "https://news.example.com/rss",
	Name:     "测试源",
	Category: "科技新闻",
}

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>First article</title>
      <link>https://news.example.com/1</link>
      <description>&lt;p&gt;Some   &lt;b&gt;bold&lt;/b&gt;
text&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Second article</title>
      <link>https://news.example.com/2</link>
    </item>
    <item>
      <title></title>
      <link>https://news.example.com/3</link>
    </item>
    <item>
      <title>No link here</title>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title>Entry with content</title>
    <link href="https://news.example.com/a"/>
    <summary>the summary</summary>
    <content>&lt;div&gt;the content&lt;/div&gt;</content>
    <published>2006-01-02T15:04:05Z</published>
  </entry>
  <entry>
    <title>Entry with summary only</title>
    <link href="https://news.example.com/b"/>
    <summary>&lt;p&gt;only a summary&lt;/p&gt;</summary>
  </entry>
  <entry>
    <title>Entry without link</title>
    <summary>dropped</summary>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	records, err := Parse([]byte(rssDoc), testSource)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (incomplete entries dropped), got %d", len(records))
	}

	first := records[0]
	if first.Title != "First article" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.Link != "https://news.example.com/1" {
		t.Fatalf("unexpected link %q", first.Link)
	}
	if first.Description != "Some bold text" {
		t.Fatalf("expected stripped, collapsed description, got %q", first.Description)
	}
	if strings.ContainsAny(first.Description, "<>") {
		t.Fatalf("description still contains markup: %q", first.Description)
	}
	if first.PubDate != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Fatalf("pub date must be kept verbatim, got %q", first.PubDate)
	}
	if first.SourceName != "测试源" || first.SourceURL != testSource.URL || first.Category != "科技新闻" {
		t.Fatalf("source fields not carried over: %+v", first)
	}
	if first.CollectedAt == "" {
		t.Fatal("collected_at must be stamped at parse time")
	}

	second := records[1]
	if second.Description != "" || second.PubDate != "" {
		t.Fatalf("optional fields should default to empty: %+v", second)
	}
}

func TestParse_Atom(t *testing.T) {
	records, err := Parse([]byte(atomDoc), testSource)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Description != "the content" {
		t.Fatalf("content must win over summary, got %q", records[0].Description)
	}
	if records[0].Link != "https://news.example.com/a" {
		t.Fatalf("link must come from the href attribute, got %q", records[0].Link)
	}
	if records[0].PubDate != "2006-01-02T15:04:05Z" {
		t.Fatalf("published must be kept verbatim, got %q", records[0].PubDate)
	}
	if records[1].Description != "only a summary" {
		t.Fatalf("summary fallback failed, got %q", records[1].Description)
	}
}

func TestParse_UnknownRoot(t *testing.T) {
	records, err := Parse([]byte(`<html><body>not a feed</body></html>`), testSource)
	if err != nil {
		t.Fatalf("unknown root kind is not an error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected zero records, got %d", len(records))
	}
}

func TestParse_MalformedDocument(t *testing.T) {
	_, err := Parse([]byte(`<rss><channel><item>`), testSource)
	if err == nil {
		t.Fatal("expected error for malformed document")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if perr.URL != testSource.URL {
		t.Fatalf("ParseError should carry the feed URL, got %q", perr.URL)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "no markup", "no markup"},
		{"tags", "<p>a</p><br/>b", "a b"},
		{"whitespace", "a\n\n  b\tc", "a b c"},
		{"non-latin", "<b>中文</b> 内容", "中文 内容"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
