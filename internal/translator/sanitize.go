package translator

import "strings"

// commentaryPrefixes match lines where the model narrates instead of
// translating. A line starting with one of these is dropped.
var commentaryPrefixes = []string{
	"translation:",
	"translation :",
	"here is",
	"here's",
	"voici",
	"les règles",
	"the following",
	"rules:",
	"règles:",
	"note:",
	"note :",
	"remarque:",
	"remarque :",
	"context:",
	"contexte:",
	"hint:",
	"indice:",
}

// commentaryKeywords match lines that consist of a single bare label.
var commentaryKeywords = []string{
	"translation",
	"traduction",
	"rules",
	"règles",
}

// SanitizeReply strips model commentary from a raw reply. If sanitization
// removes everything, the raw reply is returned; if the raw reply itself is
// blank, the source text is returned so downstream code always has content.
func SanitizeReply(reply, source string) string {
	raw := strings.TrimSpace(reply)
	if raw == "" {
		return source
	}

	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isCommentaryLine(line) {
			continue
		}
		kept = append(kept, strings.TrimSpace(line))
	}

	// Drop blank edges but keep internal blank lines, which may be
	// meaningful paragraph separators.
	start := 0
	for start < len(kept) && kept[start] == "" {
		start++
	}
	end := len(kept)
	for end > start && kept[end-1] == "" {
		end--
	}

	sanitized := strings.Join(kept[start:end], "\n")
	if strings.TrimSpace(sanitized) == "" {
		return raw
	}
	return sanitized
}

func isCommentaryLine(line string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(line))
	if trimmed == "" {
		return false
	}
	for _, prefix := range commentaryPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	for _, keyword := range commentaryKeywords {
		if trimmed == keyword {
			return true
		}
	}
	return false
}
