package histo

import (
	"fmt"
	"strings"
)

// NoHistoryMessage is the fixed response for an empty result.
const NoHistoryMessage = "No browsing history found for today."

// RenderEntries renders entries as one text block per page, blocks separated
// by a blank line.
func RenderEntries(entries []Entry) string {
	if len(entries) == 0 {
		return NoHistoryMessage
	}
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nURL: %s\nVisited: %s",
			e.Title, e.URL, e.VisitTime.Format("2006-01-02 15:04:05")))
	}
	return strings.Join(blocks, "\n\n")
}
