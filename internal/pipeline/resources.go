package pipeline

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// MaterializeResources decodes base64-encoded resources into dir and returns
// a map from logical resource path to the file:// URL of the written file.
// Resources that fail to decode are skipped; rendering proceeds without
// them. Written filenames are synthetic, so logical names cannot traverse
// out of dir.
func MaterializeResources(dir string, resources map[string]string) (map[string]string, error) {
	logical := make([]string, 0, len(resources))
	for p := range resources {
		logical = append(logical, p)
	}
	sort.Strings(logical)

	mapping := make(map[string]string, len(resources))
	for i, p := range logical {
		raw, err := base64.StdEncoding.DecodeString(resources[p])
		if err != nil {
			continue
		}
		name := fmt.Sprintf("res%d%s", i, path.Ext(p))
		target := filepath.Join(dir, name)
		// #nosec G306 -- render scratch files, removed with the temp dir
		if err := os.WriteFile(target, raw, 0o644); err != nil {
			return nil, fmt.Errorf("writing resource %q: %w", p, err)
		}
		mapping[p] = "file://" + filepath.ToSlash(target)
	}
	return mapping, nil
}

// RewriteResourcePaths replaces logical resource references in the document
// with their materialized URLs. Longer logical paths are replaced first so
// overlapping prefixes don't clobber each other.
func RewriteResourcePaths(doc string, mapping map[string]string) string {
	logical := make([]string, 0, len(mapping))
	for p := range mapping {
		logical = append(logical, p)
	}
	sort.Slice(logical, func(i, j int) bool {
		if len(logical[i]) != len(logical[j]) {
			return len(logical[i]) > len(logical[j])
		}
		return logical[i] < logical[j]
	})
	for _, p := range logical {
		doc = strings.ReplaceAll(doc, p, mapping[p])
	}
	return doc
}
