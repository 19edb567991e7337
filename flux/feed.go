package flux

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDocument is returned when the fetched body holds no XML at all.
var ErrEmptyDocument = errors.New("flux: empty feed document")

// ErrUnknownFormat is returned when the root element is neither RSS nor Atom.
var ErrUnknownFormat = errors.New("flux: unknown feed format (expected <rss> or <feed>)")

// Item is one entry of a parsed feed.
type Item struct {
	GUID      string `json:"guid"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Published string `json:"published"`
	Author    string `json:"author"`
}

// Feed is a parsed RSS 2.0 or Atom 1.0 feed.
type Feed struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Items []Item `json:"items"`
}

// ParseFeed auto-detects the format from the XML root element and parses it.
func ParseFeed(data []byte) (*Feed, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}
	switch rootElement(trimmed) {
	case "rss", "rdf":
		return parseRSS(data)
	case "feed":
		return parseAtom(data)
	default:
		return nil, ErrUnknownFormat
	}
}

// rootElement returns the lowercased local name of the first XML element.
func rootElement(data []byte) string {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err != nil {
			return ""
		}
		if se, ok := tok.(xml.StartElement); ok {
			return strings.ToLower(se.Name.Local)
		}
	}
}

type rssRoot struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Link  string    `xml:"link"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	GUID        string `xml:"guid"`
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Content     string `xml:"encoded"` // content:encoded
	PubDate     string `xml:"pubDate"`
	Author      string `xml:"author"`
	Creator     string `xml:"creator"` // dc:creator
}

func parseRSS(data []byte) (*Feed, error) {
	var root rssRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("flux: parse rss: %w", err)
	}

	ch := root.Channel
	feed := &Feed{
		Title: strings.TrimSpace(ch.Title),
		Link:  strings.TrimSpace(ch.Link),
		Items: make([]Item, 0, len(ch.Items)),
	}
	for _, it := range ch.Items {
		author := strings.TrimSpace(it.Author)
		if author == "" {
			author = strings.TrimSpace(it.Creator)
		}
		guid := strings.TrimSpace(it.GUID)
		if guid == "" {
			guid = strings.TrimSpace(it.Link)
		}
		feed.Items = append(feed.Items, Item{
			GUID:      guid,
			Title:     strings.TrimSpace(it.Title),
			Link:      strings.TrimSpace(it.Link),
			Summary:   strings.TrimSpace(it.Description),
			Content:   strings.TrimSpace(it.Content),
			Published: strings.TrimSpace(it.PubDate),
			Author:    author,
		})
	}
	return feed, nil
}

type atomRoot struct {
	Title   string      `xml:"title"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Links     []atomLink   `xml:"link"`
	Summary   string       `xml:"summary"`
	Content   atomContent  `xml:"content"`
	Published string       `xml:"published"`
	Updated   string       `xml:"updated"`
	Authors   []atomAuthor `xml:"author"`
}

type atomContent struct {
	Body string `xml:",chardata"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

func parseAtom(data []byte) (*Feed, error) {
	var root atomRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("flux: parse atom: %w", err)
	}

	feed := &Feed{
		Title: strings.TrimSpace(root.Title),
		Link:  preferredLink(root.Links),
		Items: make([]Item, 0, len(root.Entries)),
	}
	for _, e := range root.Entries {
		link := preferredLink(e.Links)
		guid := strings.TrimSpace(e.ID)
		if guid == "" {
			guid = link
		}
		published := strings.TrimSpace(e.Published)
		if published == "" {
			published = strings.TrimSpace(e.Updated)
		}
		var author string
		if len(e.Authors) > 0 {
			author = strings.TrimSpace(e.Authors[0].Name)
		}
		feed.Items = append(feed.Items, Item{
			GUID:      guid,
			Title:     strings.TrimSpace(e.Title),
			Link:      link,
			Summary:   strings.TrimSpace(e.Summary),
			Content:   strings.TrimSpace(e.Content.Body),
			Published: published,
			Author:    author,
		})
	}
	return feed, nil
}

// preferredLink picks rel="alternate" (or an untyped link) over anything else.
func preferredLink(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "alternate" || l.Rel == "" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}
