package sysreptor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestChromiumWorkerRenderHTML(t *testing.T) {
	t.Parallel()

	w := NewChromiumWorker(5 * time.Second)
	res, err := w.Render(context.Background(), &RenderJob{
		Template: `<main>{{.data.report.title}}</main><section>{{markdown .data.report.summary}}</section>`,
		Styles:   "main { color: red; }",
		Language: "en-US",
		Format:   OutputFormatHTML,
		Data: map[string]any{
			"report": map[string]any{
				"title":   "Audit",
				"summary": "**bold**",
			},
		},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	doc := string(res.Output)
	for _, want := range []string{
		"<main>Audit</main>",
		"<strong>bold</strong>",
		`lang="en-US"`,
		"main { color: red; }",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}

	if _, ok := res.Other["task_start_time"]; !ok {
		t.Error("worker must report its start timestamp")
	}
	if _, ok := res.Timings["render"]; !ok {
		t.Errorf("render timing missing: %v", res.Timings)
	}
}

func TestChromiumWorkerTemplateErrorIsDiagnostic(t *testing.T) {
	t.Parallel()

	w := NewChromiumWorker(5 * time.Second)

	tests := []struct {
		name     string
		template string
	}{
		{"parse error", `{{.data.report.title`},
		{"exec error", `{{call .data.missing}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := w.Render(context.Background(), &RenderJob{
				Template: tt.template,
				Format:   OutputFormatHTML,
				Data:     map[string]any{},
			})
			if err != nil {
				t.Fatalf("template problems must not be hard errors, got %v", err)
			}
			if res.Output != nil {
				t.Error("failed template must not produce output")
			}
			if !res.HasError() {
				t.Errorf("messages = %+v, want error diagnostic", res.Messages)
			}
			if res.Messages[0].Message != "Template rendering error" {
				t.Errorf("message = %q", res.Messages[0].Message)
			}
		})
	}
}

func TestChromiumWorkerRejectsBadJobs(t *testing.T) {
	t.Parallel()

	w := NewChromiumWorker(5 * time.Second)

	_, err := w.Render(context.Background(), &RenderJob{Format: OutputFormatHTML})
	if !errors.Is(err, ErrEmptyTemplate) {
		t.Errorf("empty template: err = %v", err)
	}

	_, err = w.Render(context.Background(), &RenderJob{Template: "x", Format: "docx"})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("bad format: err = %v", err)
	}
}

func TestChromiumWorkerCloseWithoutBrowser(t *testing.T) {
	t.Parallel()

	w := NewChromiumWorker(time.Second)
	if err := w.Close(); err != nil {
		t.Errorf("Close without browser: %v", err)
	}
}
