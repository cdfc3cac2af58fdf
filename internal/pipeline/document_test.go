package pipeline

import (
	"strings"
	"testing"
)

func TestWrapDocument(t *testing.T) {
	t.Parallel()

	doc := WrapDocument("<main>hi</main>", "main { color: red; }", "de-DE")

	for _, want := range []string{
		"<!DOCTYPE html>",
		`lang="de-DE"`,
		`<meta charset="utf-8">`,
		"<style>main { color: red; }</style>",
		"<main>hi</main>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestWrapDocumentOmitsEmptyParts(t *testing.T) {
	t.Parallel()

	doc := WrapDocument("<p/>", "", "")
	if strings.Contains(doc, "<style>") {
		t.Error("empty styles must not emit a style block")
	}
	if strings.Contains(doc, "lang=") {
		t.Error("empty language must not emit a lang attribute")
	}
}

func TestWrapDocumentEscapesLanguage(t *testing.T) {
	t.Parallel()

	doc := WrapDocument("", "", `en"><script>`)
	if strings.Contains(doc, "<script>") {
		t.Errorf("language must be escaped:\n%s", doc)
	}
}

func TestSanitizeCSS(t *testing.T) {
	t.Parallel()

	got := SanitizeCSS(`body { } </style><script>alert(1)</script>`)
	if strings.Contains(got, "</style>") {
		t.Errorf("closing sequence must be escaped: %q", got)
	}
	if !strings.Contains(got, `<\/style>`) {
		t.Errorf("escaped form missing: %q", got)
	}
}
