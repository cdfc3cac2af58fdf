package pipeline

import (
	"encoding/base64"
	"os"
	"strings"
	"testing"
)

func TestMaterializeResources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	resources := map[string]string{
		"/images/name/shot.png":   base64.StdEncoding.EncodeToString([]byte("png-bytes")),
		"/assets/name/fonts.css":  base64.StdEncoding.EncodeToString([]byte("@font-face {}")),
		"/images/name/broken.png": "!!! not base64 !!!",
	}

	mapping, err := MaterializeResources(dir, resources)
	if err != nil {
		t.Fatalf("MaterializeResources: %v", err)
	}

	if _, ok := mapping["/images/name/broken.png"]; ok {
		t.Error("undecodable resources must be skipped")
	}

	url, ok := mapping["/images/name/shot.png"]
	if !ok {
		t.Fatal("image not materialized")
	}
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("url = %q, want file:// scheme", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q, extension must be preserved", url)
	}

	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	if err != nil {
		t.Fatalf("reading materialized file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestMaterializeResourcesSyntheticNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapping, err := MaterializeResources(dir, map[string]string{
		"/images/name/../../etc/passwd": base64.StdEncoding.EncodeToString([]byte("x")),
	})
	if err != nil {
		t.Fatalf("MaterializeResources: %v", err)
	}
	for _, url := range mapping {
		if strings.Contains(url, "..") {
			t.Errorf("url = %q, logical names must not traverse", url)
		}
		if !strings.Contains(url, dir) {
			t.Errorf("url = %q, file must stay inside %q", url, dir)
		}
	}
}

func TestRewriteResourcePaths(t *testing.T) {
	t.Parallel()

	doc := `<img src="/images/name/a.png"><img src="/images/name/a.png.large">`
	mapping := map[string]string{
		"/images/name/a.png":       "file:///tmp/res0.png",
		"/images/name/a.png.large": "file:///tmp/res1.large",
	}

	got := RewriteResourcePaths(doc, mapping)
	want := `<img src="file:///tmp/res0.png"><img src="file:///tmp/res1.large">`
	if got != want {
		t.Errorf("rewritten = %q, want %q", got, want)
	}
}

func TestRewriteResourcePathsEmptyMapping(t *testing.T) {
	t.Parallel()

	doc := `<img src="/images/name/a.png">`
	if got := RewriteResourcePaths(doc, nil); got != doc {
		t.Errorf("document changed without mapping: %q", got)
	}
}
