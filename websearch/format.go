package websearch

import (
	"fmt"
	"strings"
)

// NoResultsMessage is returned when a query yields no organic results.
const NoResultsMessage = "No search results found."

// RenderResults formats results as numbered text blocks.
func RenderResults(results []Result) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("%d. %s\n%s\n%s", i+1, r.Title, r.Link, r.Snippet))
	}
	return strings.Join(blocks, "\n\n")
}
