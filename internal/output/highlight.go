// Package output renders diff reports for terminal and machine consumption.
//
// Diff renderings mark identifiers with placeholder open/close markers; this
// package post-processes them into ANSI color codes or plain quotes
// depending on the runtime-selected highlight mode.
package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Highlight marker pair placed around identifiers in rendered diff text.
const (
	HLOpen  = "``"
	HLClose = "''"
)

// Highlight represents a highlight rendering mode.
type Highlight string

const (
	// HighlightColor renders marked identifiers in ANSI red (default).
	HighlightColor Highlight = "color"
	// HighlightQuotes renders marked identifiers in single quotes.
	HighlightQuotes Highlight = "quotes"
)

// ParseHighlight parses a highlight mode string.
// Accepts: "color", "quotes" (case-insensitive).
func ParseHighlight(s string) (Highlight, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "color":
		return HighlightColor, nil
	case "quotes":
		return HighlightQuotes, nil
	default:
		return "", fmt.Errorf("invalid highlight mode: %q (expected color or quotes)", s)
	}
}

// String returns the string representation of the highlight mode.
func (h Highlight) String() string {
	return string(h)
}

var identifierColor = color.New(color.FgRed)

// Render replaces the highlight markers in a message according to the
// selected mode.
func (h Highlight) Render(message string) (string, error) {
	switch h {
	case HighlightQuotes:
		message = strings.ReplaceAll(message, HLOpen, "'")
		return strings.ReplaceAll(message, HLClose, "'"), nil
	case HighlightColor:
		var b strings.Builder
		rest := message
		for {
			open := strings.Index(rest, HLOpen)
			if open < 0 {
				b.WriteString(rest)
				return b.String(), nil
			}
			close := strings.Index(rest[open+len(HLOpen):], HLClose)
			if close < 0 {
				b.WriteString(rest)
				return b.String(), nil
			}
			b.WriteString(rest[:open])
			identifier := rest[open+len(HLOpen) : open+len(HLOpen)+close]
			b.WriteString(identifierColor.Sprint(identifier))
			rest = rest[open+len(HLOpen)+close+len(HLClose):]
		}
	default:
		return "", fmt.Errorf("invalid highlight mode: %q", string(h))
	}
}

// HL wraps an identifier in the highlight marker pair.
func HL(what string) string {
	return HLOpen + what + HLClose
}

// HLList returns a comma separated list of highlighted names.
func HLList(names []string) string {
	marked := make([]string, len(names))
	for i, name := range names {
		marked[i] = HL(name)
	}
	return strings.Join(marked, ", ")
}

// Pluralize appends "s" to a noun unless there is exactly one item.
func Pluralize(noun string, count int) string {
	if count == 1 {
		return noun
	}
	return noun + "s"
}
