package sysreptor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/net/html"
)

// markdownFieldsTemplate is the synthetic template of the markdown
// round-trip render: one uniquely identified block per collected field,
// keyed by its serialized path.
const markdownFieldsTemplate = `{{range $id, $text := .data.markdown_fields}}<div id="{{$id}}">{{markdown $text}}</div>{{end}}`

// EncodeFieldPath serializes a field path into the stable join key used to
// match rendered fragments back to their tree location.
func EncodeFieldPath(path []string) string {
	encoded, _ := json.Marshal(path)
	return string(encoded)
}

// DecodeFieldPath reverses EncodeFieldPath.
func DecodeFieldPath(key string) ([]string, error) {
	var path []string
	if err := json.Unmarshal([]byte(key), &path); err != nil {
		return nil, fmt.Errorf("invalid field path key %q: %w", key, err)
	}
	return path, nil
}

// MarkdownFieldsResult is the outcome of a markdown round-trip render. On
// success Result holds the serialized project with markdown fields replaced
// by HTML fragments; on render or splice failure Result is nil and Messages
// carries the diagnostics collected so far.
type MarkdownFieldsResult struct {
	Result   map[string]any
	Messages []Message
}

// RenderProjectMarkdownFields renders every markdown field of a project to
// HTML and splices the fragments into the project's detail serialization at
// their original locations. Markdown rendering goes through the generic
// render pipeline so field text is processed by the same engine as report
// output.
func (r *Renderer) RenderProjectMarkdownFields(ctx context.Context, project *Project) (*MarkdownFieldsResult, error) {
	if project.ProjectType == nil {
		return nil, ErrNoProjectType
	}

	// Collect all markdown field locations.
	markdownFields := map[string]string{}
	reportDef := project.ProjectType.ReportFieldsObject()
	for _, section := range project.Sections {
		collectMarkdownFields(markdownFields, section.Data, reportDef, []string{"sections", section.ID})
	}
	findingDef := project.ProjectType.FindingFieldsObject()
	for _, finding := range project.Findings {
		collectMarkdownFields(markdownFields, finding.Data, findingDef, []string{"findings", finding.ID})
	}

	// Render them to HTML fragments through the generic pipeline.
	data := r.AssembleProjectData(project)
	aux := make(map[string]any, len(markdownFields))
	for key, text := range markdownFields {
		aux[key] = text
	}
	data["markdown_fields"] = aux

	res, err := r.RenderTask(ctx, RenderTaskInput{
		ProjectType: project.ProjectType,
		Template:    markdownFieldsTemplate,
		Data:        data,
		Project:     project,
		Format:      OutputFormatHTML,
	})
	if err != nil {
		return nil, err
	}
	if res.Output == nil {
		return &MarkdownFieldsResult{Messages: res.Messages}, nil
	}

	// Splice failures degrade to a diagnostic message; the caller still
	// receives everything collected so far.
	result, err := r.spliceMarkdownFields(project, markdownFields, res.Output)
	if err != nil {
		r.log.WithError(err).Error("error while formatting markdown render output")
		res.Messages = append(res.Messages, Message{
			Level:   MessageLevelError,
			Message: "Error while formatting output",
			Details: err.Error(),
		})
		return &MarkdownFieldsResult{Messages: res.Messages}, nil
	}
	return &MarkdownFieldsResult{Result: result, Messages: res.Messages}, nil
}

// collectMarkdownFields records the path and raw text of every markdown
// field found under value.
func collectMarkdownFields(out map[string]string, value any, definition *FieldDefinition, path []string) {
	for _, visit := range IterateFields(value, definition, path) {
		if visit.Definition.Type != FieldTypeMarkdown {
			continue
		}
		if text, ok := visit.Value.(string); ok {
			out[EncodeFieldPath(visit.Path)] = text
		}
	}
}

// spliceMarkdownFields extracts the rendered fragment of every known block
// id from the structured markup and splices it into the project's detail
// serialization at the original path.
func (r *Renderer) spliceMarkdownFields(project *Project, markdownFields map[string]string, output []byte) (map[string]any, error) {
	fragments := make(map[string]string, len(markdownFields))
	for key, text := range markdownFields {
		fragments[key] = text
	}
	if err := extractFragments(fragments, output); err != nil {
		return nil, err
	}

	result, err := r.serializer.SerializeProject(project)
	if err != nil {
		return nil, fmt.Errorf("serializing project: %w", err)
	}

	for key, fragment := range fragments {
		path, err := DecodeFieldPath(key)
		if err != nil {
			return nil, err
		}
		if len(path) < 3 {
			return nil, fmt.Errorf("field path %q too short", key)
		}
		var listKey string
		switch path[0] {
		case "sections", "findings":
			listKey = path[0]
		default:
			return nil, fmt.Errorf("field path %q has unknown root", key)
		}
		itemData, ok := dataByID(result[listKey], path[1])
		if !ok {
			return nil, fmt.Errorf("no %s entry %q in serialized project", listKey, path[1])
		}
		if !SetValueAtPath(itemData, path[2:], fragment) {
			return nil, fmt.Errorf("cannot set value at %q", key)
		}
	}
	return result, nil
}

// dataByID finds the "data" object of the list entry with the given id.
func dataByID(list any, id string) (any, bool) {
	items, ok := list.([]any)
	if !ok {
		return nil, false
	}
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if entry["id"] == id {
			return entry["data"], true
		}
	}
	return nil, false
}

// extractFragments parses the structured markup and overwrites each known
// block id's entry with the serialized inner markup of its element.
func extractFragments(fragments map[string]string, output []byte) error {
	root, err := html.Parse(bytes.NewReader(output))
	if err != nil {
		return fmt.Errorf("parsing rendered markup: %w", err)
	}
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key != "id" {
					continue
				}
				if _, known := fragments[attr.Val]; !known {
					continue
				}
				inner, err := renderChildren(n)
				if err != nil {
					return err
				}
				fragments[attr.Val] = inner
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

// renderChildren serializes the child nodes of an element back to markup.
func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("serializing fragment: %w", err)
		}
	}
	return buf.String(), nil
}
