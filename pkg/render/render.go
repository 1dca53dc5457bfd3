// Package render turns product descriptions into safe HTML. Descriptions
// are either HTML or legacy markdown; RichText normalizes both through the
// same sanitizer. It is a pure function with no knowledge of the catalog.
package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const emptyDescription = "<p>Sin descripcion</p>"

var htmlPattern = regexp.MustCompile(`(?i)<[a-z][\s\S]*>`)

// RichText renders a description as sanitized HTML. HTML input is
// sanitized as-is; anything else is treated as legacy markdown first.
func RichText(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return emptyDescription
	}

	var rendered string
	if htmlPattern.MatchString(trimmed) {
		rendered = trimmed
	} else {
		rendered = MarkdownToHTML(trimmed)
	}

	clean := Sanitize(rendered)
	if clean == "" {
		return emptyDescription
	}
	return clean
}

var (
	unorderedItem = regexp.MustCompile(`^[-*]\s+`)
	orderedItem   = regexp.MustCompile(`^\d+\.\s+`)

	inlineCode   = regexp.MustCompile("`([^`]+)`")
	inlineBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	inlineItalic = regexp.MustCompile(`\*([^*]+)\*`)
	inlineStrike = regexp.MustCompile(`~~([^~]+)~~`)
	inlineLink   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// MarkdownToHTML converts the legacy line-oriented markdown dialect:
// paragraphs, unordered and ordered lists, and inline code, bold, italic,
// strikethrough, and links.
func MarkdownToHTML(markdown string) string {
	var b strings.Builder
	currentList := ""

	closeList := func() {
		if currentList != "" {
			b.WriteString("</" + currentList + ">")
			currentList = ""
		}
	}
	openList := func(kind string) {
		if currentList != kind {
			closeList()
			b.WriteString("<" + kind + ">")
			currentList = kind
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			closeList()
			continue
		}
		switch {
		case unorderedItem.MatchString(trimmed):
			openList("ul")
			b.WriteString("<li>" + formatInline(unorderedItem.ReplaceAllString(trimmed, "")) + "</li>")
		case orderedItem.MatchString(trimmed):
			openList("ol")
			b.WriteString("<li>" + formatInline(orderedItem.ReplaceAllString(trimmed, "")) + "</li>")
		default:
			closeList()
			b.WriteString("<p>" + formatInline(trimmed) + "</p>")
		}
	}
	closeList()

	if b.Len() == 0 {
		return emptyDescription
	}
	return b.String()
}

func formatInline(text string) string {
	escaped := html.EscapeString(text)
	escaped = inlineCode.ReplaceAllString(escaped, "<code>$1</code>")
	escaped = inlineBold.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = inlineItalic.ReplaceAllString(escaped, "<em>$1</em>")
	escaped = inlineStrike.ReplaceAllString(escaped, "<del>$1</del>")
	escaped = inlineLink.ReplaceAllStringFunc(escaped, func(match string) string {
		parts := inlineLink.FindStringSubmatch(match)
		label, url := parts[1], parts[2]
		if !safeURL(url) {
			return label
		}
		return `<a href="` + html.EscapeString(url) + `" target="_blank" rel="noopener">` + label + `</a>`
	})
	return escaped
}

func safeURL(url string) bool {
	value := strings.ToLower(strings.TrimSpace(url))
	return strings.HasPrefix(value, "http://") ||
		strings.HasPrefix(value, "https://") ||
		strings.HasPrefix(value, "mailto:") ||
		strings.HasPrefix(value, "tel:") ||
		strings.HasPrefix(value, "/#/")
}

// allowedTags are the elements a description may keep after sanitization.
// Everything else is unwrapped to its children.
var allowedTags = map[string]bool{
	"p": true, "br": true, "ul": true, "ol": true, "li": true,
	"strong": true, "em": true, "del": true, "code": true,
	"blockquote": true, "a": true, "b": true, "i": true,
}

// Sanitize parses untrusted HTML and rebuilds it keeping only the allowed
// elements. Anchors keep only a safe href plus the standard target and rel;
// all other attributes are dropped.
func Sanitize(input string) string {
	nodes, err := html.ParseFragment(strings.NewReader(input), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return html.EscapeString(input)
	}

	var b strings.Builder
	for _, node := range nodes {
		writeClean(&b, node)
	}
	return strings.TrimSpace(b.String())
}

func writeClean(b *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(node.Data))
		return
	case html.ElementNode:
		tag := strings.ToLower(node.Data)
		if tag == "script" || tag == "style" {
			return
		}
		if !allowedTags[tag] {
			// Unwrap: keep children, drop the element itself.
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				writeClean(b, child)
			}
			return
		}
		b.WriteString("<" + tag)
		if tag == "a" {
			if href := attr(node, "href"); safeURL(href) {
				b.WriteString(` href="` + html.EscapeString(href) + `" target="_blank" rel="noopener"`)
			}
		}
		b.WriteString(">")
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			writeClean(b, child)
		}
		if tag != "br" {
			b.WriteString("</" + tag + ">")
		}
	default:
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			writeClean(b, child)
		}
	}
}

func attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}
