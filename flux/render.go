package flux

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// NoItemsMessage is returned when a feed parses but holds no entries.
const NoItemsMessage = "The feed contains no entries."

// Renderer turns feed items into readable text. Item HTML is sanitized and
// converted to markdown; when conversion yields nothing, tags are stripped
// and the plain text kept.
type Renderer struct {
	policy *bluemonday.Policy
	md     *converter.Converter
}

// NewRenderer builds a Renderer with a UGC sanitization policy.
func NewRenderer() *Renderer {
	return &Renderer{
		policy: bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// RenderFeed formats up to maxItems entries as text blocks separated by
// blank lines, headed by the feed title.
func (r *Renderer) RenderFeed(feed *Feed, maxItems int) string {
	if len(feed.Items) == 0 {
		return NoItemsMessage
	}
	items := feed.Items
	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	blocks := make([]string, 0, len(items)+1)
	if feed.Title != "" {
		blocks = append(blocks, fmt.Sprintf("Feed: %s", feed.Title))
	}
	for _, it := range items {
		var b strings.Builder
		fmt.Fprintf(&b, "Title: %s\nLink: %s", it.Title, it.Link)
		if it.Published != "" {
			fmt.Fprintf(&b, "\nPublished: %s", it.Published)
		}
		body := it.Content
		if body == "" {
			body = it.Summary
		}
		if text := r.renderBody(body, it.Link); text != "" {
			fmt.Fprintf(&b, "\n%s", text)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// renderBody sanitizes and converts one item body to markdown.
func (r *Renderer) renderBody(raw, sourceURL string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	clean := r.policy.Sanitize(raw)
	out, err := r.md.ConvertString(clean, converter.WithDomain(sourceURL))
	if err != nil || strings.TrimSpace(out) == "" {
		return stripTags(clean)
	}
	return strings.TrimSpace(out)
}

// stripTags extracts visible text from an HTML fragment, dropping script
// and style subtrees. Used when markdown conversion produces nothing.
func stripTags(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}
