package taggen

import (
	"fmt"
	"regexp"
	"strings"
)

const promptTemplate = `Generate exactly %d relevant tags for a bookmark based on the following details:

Url: %s
Title: %s
Content: %s

User's previous tags history: %s

The user has liked these tags (they have selected these in past): %s

Provide only the tags, separated by commas. Generate relevant tags, prioritizing
single-word tags. If a concept requires more clarity, use multiword tags joined by
underscores (e.g., machine_learning). Ensure a balanced mix of single and multiword tags.`

// BuildPrompt renders the tag generation prompt for req.
func BuildPrompt(req Request) string {
	count := req.Count
	if count <= 0 {
		count = DefaultCount
	}
	return fmt.Sprintf(promptTemplate,
		count,
		req.URL,
		req.Title,
		req.Content,
		strings.Join(req.UserTags, ", "),
		strings.Join(req.LikedTags, ", "),
	)
}

// listMarker matches "- ", "* ", "• " and "1. " / "1) " prefixes.
var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// ParseTags splits a model reply into at most count cleaned tags.
// A count of zero or less means no cap.
func ParseTags(reply string, count int) []string {
	tags := []string{}
	for part := range strings.SplitSeq(reply, ",") {
		for line := range strings.SplitSeq(part, "\n") {
			tag := cleanTag(line)
			if tag == "" {
				continue
			}
			tags = append(tags, tag)
			if count > 0 && len(tags) == count {
				return tags
			}
		}
	}
	return tags
}

func cleanTag(s string) string {
	s = strings.TrimSpace(s)
	s = listMarker.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "#")
	s = strings.Trim(s, " \t\r\"'`.")
	return s
}
