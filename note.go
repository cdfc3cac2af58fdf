package sysreptor

import (
	"context"
	"encoding/base64"
)

// noteTemplate renders a single notebook page: title heading plus the
// markdown body.
const noteTemplate = `<h1>{{.data.note.title}}</h1>{{markdown .data.note.text}}`

// noteStyles is the base typography for note exports.
const noteStyles = `body { font-family: sans-serif; font-size: 12pt; line-height: 1.5; }
pre, code { font-family: monospace; background: #f4f4f4; }
img { max-width: 100%; }`

// RenderNote renders one notebook page of a project to PDF. Only images the
// note text actually references are shipped to the worker, to keep payloads
// small. The note render skips report-level timing reconciliation; it is a
// single-stage render.
func (r *Renderer) RenderNote(ctx context.Context, project *Project, note *Note) (*RenderStageResult, error) {
	res := NewRenderStageResult()

	resources := map[string]string{}
	func() {
		defer res.AddTiming("collect_data")()
		for _, image := range project.Images {
			if note.IsFileReferenced(image) {
				resources["/images/name/"+image.Name] = base64.StdEncoding.EncodeToString(image.Data)
			}
		}
	}()

	language := project.Language
	if language == "" {
		language = "en-US"
	}

	taskRes, err := r.executeTask(ctx, &RenderJob{
		Template: noteTemplate,
		Styles:   noteStyles,
		Data: map[string]any{
			"note": map[string]any{
				"id":    note.ID,
				"title": note.Title,
				"text":  note.Text,
			},
		},
		Language:  language,
		Format:    OutputFormatPDF,
		Resources: resources,
	}, 0)
	if err != nil {
		return nil, err
	}
	res.Merge(taskRes)
	return res, nil
}
