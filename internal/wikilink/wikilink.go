// Package wikilink extracts [[Target]] and [[Target|Display]] references
// from page content, skipping anything inside Markdown code spans.
package wikilink

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoCaptureGroup is returned when a custom link pattern cannot capture
// the link target. It is the only configuration error this package raises.
var ErrNoCaptureGroup = errors.New("wikilink: pattern must contain a capture group for the link target")

// DefaultSyntax is the standard double-bracket link syntax with an optional
// pipe-delimited display text. Group 1 captures the target.
const DefaultSyntax = `\[\[(.*?)(?:\|.*?)?\]\]`

// Code regions are stripped in this order before link scanning. Fenced
// blocks first so their backticks do not pair up with inline spans.
var (
	fencedBacktickRe = regexp.MustCompile("(?s)```.*?```")
	fencedTildeRe    = regexp.MustCompile(`(?s)~~~.*?~~~`)
	doubleTickRe     = regexp.MustCompile("(?s)``.*?``")
	singleTickRe     = regexp.MustCompile("`[^`\n]*`")
	indentedRe       = regexp.MustCompile(`(?m)^    .*$`)
)

// Pattern is a validated link syntax. The zero value is not usable; build
// one with NewPattern or Default.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr and verifies it captures the link target in
// group 1. Validation happens here, once, so scanning never fails.
func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("wikilink: invalid pattern %q: %w", expr, err)
	}
	if re.NumSubexp() < 1 {
		return nil, ErrNoCaptureGroup
	}
	return &Pattern{re: re}, nil
}

// Default returns the standard [[...]] pattern.
func Default() *Pattern {
	p, err := NewPattern(DefaultSyntax)
	if err != nil {
		panic(err) // DefaultSyntax is a constant; cannot happen
	}
	return p
}

// String returns the pattern's source expression.
func (p *Pattern) String() string {
	return p.re.String()
}

// ExtractLinks returns the link targets found in content, trimmed,
// deduplicated, in first-occurrence order. Link syntax inside fenced
// blocks, inline code spans, or indented code blocks is ignored.
//
// Nested brackets are not resolved: the scan stops at the first closing
// delimiter, so "[[Outer [[Inner]] End]]" yields "Outer [[Inner". Stray
// leading '[' characters from over-bracketed links ("[[[Triple]]]") are
// stripped from the capture.
func ExtractLinks(content string, p *Pattern) []string {
	cleaned := stripCodeSpans(content)

	matches := p.re.FindAllStringSubmatch(cleaned, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if len(m) < 2 {
			continue
		}
		target := strings.TrimSpace(m[1])
		// Links never span lines; a capture with a newline is a false match.
		if strings.ContainsRune(target, '\n') {
			continue
		}
		target = strings.TrimLeft(target, "[")
		if target == "" {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// stripCodeSpans removes fenced blocks, inline code spans, and 4-space
// indented code lines, in that order.
func stripCodeSpans(content string) string {
	content = fencedBacktickRe.ReplaceAllString(content, "")
	content = fencedTildeRe.ReplaceAllString(content, "")
	content = doubleTickRe.ReplaceAllString(content, "")
	content = singleTickRe.ReplaceAllString(content, "")
	content = indentedRe.ReplaceAllString(content, "")
	return content
}

// RewriteTargets replaces every [[oldText]] and [[oldText|Display]] link in
// content with the new target text. Used when a page is renamed with an
// identifier change and referring pages must be rewritten.
func RewriteTargets(content, oldText, newText string) string {
	content = strings.ReplaceAll(content, "[["+oldText+"]]", "[["+newText+"]]")
	content = strings.ReplaceAll(content, "[["+oldText+"|", "[["+newText+"|")
	return content
}
