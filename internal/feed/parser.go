// Package feed turns raw RSS/Atom documents into normalized news records.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/RobinCoderZhao/newsdesk/internal/source"
)

// AtomNS is the Atom 1.0 namespace.
const AtomNS = "http://www.w3.org/2005/Atom"

// collectedAtLayout matches the snapshot files written by earlier releases.
const collectedAtLayout = "2006-01-02 15:04:05"

// NewsRecord is a normalized article entry. PubDate carries the source's
// original date string verbatim; it is not parsed at collection time.
type NewsRecord struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PubDate     string `json:"pub_date"`
	SourceName  string `json:"source_name"`
	SourceURL   string `json:"source_url"`
	Category    string `json:"category"`
	CollectedAt string `json:"collected_at"`
}

// ParseError reports a malformed feed document. Malformed individual
// entries are skipped, never reported.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type atomDocument struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string   `xml:"title"`
	Link      atomLink `xml:"link"`
	Content   string   `xml:"content"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

// Parse extracts news records from a raw feed document. The document kind is
// decided by the root element: "rss" is treated as RSS 2.0, a root local
// name ending in "feed" as Atom. Any other root yields zero records.
//
// Entries missing a title or link are dropped silently; only a
// whole-document XML failure returns an error.
func Parse(data []byte, src source.Source) ([]NewsRecord, error) {
	root, err := rootElement(data)
	if err != nil {
		return nil, &ParseError{URL: src.URL, Err: err}
	}

	switch {
	case root.Local == "rss":
		var doc rssDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, &ParseError{URL: src.URL, Err: err}
		}
		return convertRSSItems(doc.Channel.Items, src), nil

	case strings.HasSuffix(root.Local, "feed"):
		var doc atomDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, &ParseError{URL: src.URL, Err: err}
		}
		return convertAtomEntries(doc.Entries, src), nil
	}

	return nil, nil
}

// rootElement returns the name of the document's first start element.
func rootElement(data []byte) (xml.Name, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.Name{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name, nil
		}
	}
}

func convertRSSItems(items []rssItem, src source.Source) []NewsRecord {
	collected := time.Now().Format(collectedAtLayout)
	records := make([]NewsRecord, 0, len(items))
	for _, item := range items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		records = append(records, NewsRecord{
			Title:       item.Title,
			Link:        item.Link,
			Description: StripHTML(item.Description),
			PubDate:     item.PubDate,
			SourceName:  src.Name,
			SourceURL:   src.URL,
			Category:    src.Category,
			CollectedAt: collected,
		})
	}
	return records
}

func convertAtomEntries(entries []atomEntry, src source.Source) []NewsRecord {
	collected := time.Now().Format(collectedAtLayout)
	records := make([]NewsRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.Title == "" || entry.Link.Href == "" {
			continue
		}
		// Prefer full content; fall back to the summary.
		description := StripHTML(entry.Content)
		if description == "" {
			description = StripHTML(entry.Summary)
		}
		records = append(records, NewsRecord{
			Title:       entry.Title,
			Link:        entry.Link.Href,
			Description: description,
			PubDate:     entry.Published,
			SourceName:  src.Name,
			SourceURL:   src.URL,
			Category:    src.Category,
			CollectedAt: collected,
		})
	}
	return records
}

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// StripHTML replaces markup tags with spaces and collapses runs of
// whitespace to a single space.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
