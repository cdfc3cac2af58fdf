package pipeline

import (
	"html"
	"strings"
)

// WrapDocument wraps rendered template output in a complete HTML5 document
// with the stylesheet inlined and the document language set.
func WrapDocument(body, styles, language string) string {
	var b strings.Builder
	b.Grow(len(body) + len(styles) + 128)
	b.WriteString("<!DOCTYPE html>\n<html")
	if language != "" {
		b.WriteString(` lang="` + html.EscapeString(language) + `"`)
	}
	b.WriteString(">\n<head>\n<meta charset=\"utf-8\">\n")
	if styles != "" {
		b.WriteString("<style>" + SanitizeCSS(styles) + "</style>\n")
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>")
	return b.String()
}

// SanitizeCSS escapes sequences that could break out of a <style> block.
// Prevents CSS injection by escaping </style> and similar closing sequences.
func SanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
