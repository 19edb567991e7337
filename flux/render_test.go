package flux

import (
	"strings"
	"testing"
)

func TestRenderFeed_NoItems(t *testing.T) {
	r := NewRenderer()
	got := r.RenderFeed(&Feed{Title: "Quiet"}, 10)
	if got != NoItemsMessage {
		t.Fatalf("got %q, want %q", got, NoItemsMessage)
	}
}

func TestRenderFeed_Blocks(t *testing.T) {
	r := NewRenderer()
	feed := &Feed{
		Title: "Field Notes",
		Items: []Item{
			{Title: "Inlet Survey", Link: "https://notes.example.com/inlet", Published: "2026-08-30T08:00:00Z", Summary: "<p>North inlet readings.</p>"},
			{Title: "Ridge Survey", Link: "https://notes.example.com/ridge"},
		},
	}
	got := r.RenderFeed(feed, 10)

	if !strings.HasPrefix(got, "Feed: Field Notes") {
		t.Errorf("missing feed header: %q", got)
	}
	if !strings.Contains(got, "Title: Inlet Survey\nLink: https://notes.example.com/inlet\nPublished: 2026-08-30T08:00:00Z") {
		t.Errorf("item block malformed:\n%s", got)
	}
	if !strings.Contains(got, "North inlet readings.") {
		t.Errorf("summary missing:\n%s", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("HTML leaked into output:\n%s", got)
	}
}

func TestRenderFeed_MaxItems(t *testing.T) {
	r := NewRenderer()
	feed := &Feed{Items: []Item{
		{Title: "One", Link: "https://e.example/1"},
		{Title: "Two", Link: "https://e.example/2"},
		{Title: "Three", Link: "https://e.example/3"},
	}}
	got := r.RenderFeed(feed, 2)
	if strings.Contains(got, "Three") {
		t.Errorf("third item should be cut:\n%s", got)
	}
	if !strings.Contains(got, "Two") {
		t.Errorf("second item missing:\n%s", got)
	}
}

func TestRenderFeed_ContentPreferredOverSummary(t *testing.T) {
	r := NewRenderer()
	feed := &Feed{Items: []Item{{
		Title:   "Post",
		Link:    "https://e.example/p",
		Summary: "short teaser",
		Content: "<p>The <em>full</em> body.</p>",
	}}}
	got := r.RenderFeed(feed, 10)
	if !strings.Contains(got, "full") {
		t.Errorf("content body missing:\n%s", got)
	}
	if strings.Contains(got, "short teaser") {
		t.Errorf("summary should be superseded by content:\n%s", got)
	}
}

func TestRenderFeed_ScriptStripped(t *testing.T) {
	// Sanitization drops scripts before any text extraction.
	r := NewRenderer()
	feed := &Feed{Items: []Item{{
		Title:   "Post",
		Link:    "https://e.example/p",
		Summary: `<p>Safe text.</p><script>alert("x")</script>`,
	}}}
	got := r.RenderFeed(feed, 10)
	if strings.Contains(got, "alert") {
		t.Errorf("script content leaked:\n%s", got)
	}
	if !strings.Contains(got, "Safe text.") {
		t.Errorf("visible text missing:\n%s", got)
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags(`<div><p>Alpha</p><style>p{}</style><span>Beta</span></div>`)
	if got != "Alpha Beta" {
		t.Fatalf("got %q, want %q", got, "Alpha Beta")
	}
}
