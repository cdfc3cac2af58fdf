package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	sysreptor "github.com/5urpriser/sysreptor"
	"github.com/5urpriser/sysreptor/internal/config"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunValidation(t *testing.T) {
	t.Parallel()

	t.Run("no input", func(t *testing.T) {
		t.Parallel()
		err := run(&cliFlags{format: "pdf"}, discardLogger())
		if !errors.Is(err, ErrNoInput) {
			t.Errorf("err = %v, want ErrNoInput", err)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		t.Parallel()
		err := run(&cliFlags{project: "x.yaml", format: "docx"}, discardLogger())
		if !errors.Is(err, sysreptor.ErrInvalidFormat) {
			t.Errorf("err = %v, want ErrInvalidFormat", err)
		}
	})

	t.Run("missing project file", func(t *testing.T) {
		t.Parallel()
		err := run(&cliFlags{project: filepath.Join(t.TempDir(), "nope.yaml"), format: "pdf"}, discardLogger())
		if !errors.Is(err, ErrReadDocument) {
			t.Errorf("err = %v, want ErrReadDocument", err)
		}
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, "p.yaml", "id: p1\nname: Audit\n")
		err := run(&cliFlags{project: path, format: "pdf", timeout: "soon"}, discardLogger())
		if err == nil {
			t.Error("invalid timeout must fail")
		}
	})

	t.Run("queued mode rejected", func(t *testing.T) {
		t.Parallel()
		cfg := writeDoc(t, "config.yaml", "queue:\n  enabled: true\n")
		err := run(&cliFlags{project: "x.yaml", format: "pdf", config: cfg}, discardLogger())
		if !errors.Is(err, ErrQueueUnavailable) {
			t.Errorf("err = %v, want ErrQueueUnavailable", err)
		}
	})
}

func TestPoolSizeFor(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.Rendering.Workers = 3

	if got := poolSizeFor(&cliFlags{workers: 5}, settings); got != 5 {
		t.Errorf("flag workers = %d, want 5 (flag wins over config)", got)
	}
	if got := poolSizeFor(&cliFlags{}, settings); got != 3 {
		t.Errorf("config workers = %d, want 3", got)
	}

	got := poolSizeFor(&cliFlags{}, config.Default())
	if got < sysreptor.MinPoolSize || got > sysreptor.MaxPoolSize {
		t.Errorf("auto size = %d, want within [%d, %d]", got, sysreptor.MinPoolSize, sysreptor.MaxPoolSize)
	}
}

func TestLoadProject(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "p.yaml", `
id: p1
name: ACME Audit
language: en-US
project_type:
  id: pt1
  name: Web Pentest
  report_template: "<main>{{.data.report.title}}</main>"
  report_fields:
    - id: title
      type: string
sections:
  - id: s1
    data:
      title: Audit
findings:
  - id: f1
    data:
      title: XSS
`)

	project, err := loadProject(path)
	if err != nil {
		t.Fatalf("loadProject: %v", err)
	}
	if project.ID != "p1" || project.Name != "ACME Audit" {
		t.Errorf("project = %+v", project)
	}
	if project.ProjectType == nil || project.ProjectType.ID != "pt1" {
		t.Fatalf("project type = %+v", project.ProjectType)
	}
	if len(project.ProjectType.ReportFields) != 1 || project.ProjectType.ReportFields[0].ID != "title" {
		t.Errorf("report fields = %+v", project.ProjectType.ReportFields)
	}
	if len(project.Sections) != 1 || project.Sections[0].Data["title"] != "Audit" {
		t.Errorf("sections = %+v", project.Sections)
	}
	if len(project.Findings) != 1 || project.Findings[0].ID != "f1" {
		t.Errorf("findings = %+v", project.Findings)
	}
}

func TestLoadProjectMalformed(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "p.yaml", "id: [unclosed\n")
	if _, err := loadProject(path); !errors.Is(err, ErrParseDocument) {
		t.Errorf("err = %v, want ErrParseDocument", err)
	}
}

func TestLoadDesign(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "d.yaml", `
id: pt2
name: Alternate Design
report_template: "<div/>"
finding_ordering:
  - "-cvss"
`)

	design, err := loadDesign(path)
	if err != nil {
		t.Fatalf("loadDesign: %v", err)
	}
	if design.ID != "pt2" || design.ReportTemplate != "<div/>" {
		t.Errorf("design = %+v", design)
	}
	if len(design.FindingOrdering) != 1 || design.FindingOrdering[0] != "-cvss" {
		t.Errorf("ordering = %v", design.FindingOrdering)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		project string
		format  sysreptor.OutputFormat
		want    string
	}{
		{"report.yaml", sysreptor.OutputFormatPDF, "report.pdf"},
		{"report.yaml", sysreptor.OutputFormatHTML, "report.html"},
		{"dir/report.yml", sysreptor.OutputFormatPDF, "dir/report.pdf"},
		{"noext", sysreptor.OutputFormatPDF, "noext.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		if got := defaultOutputPath(tt.project, tt.format); got != tt.want {
			t.Errorf("defaultOutputPath(%q, %s) = %q, want %q", tt.project, tt.format, got, tt.want)
		}
	}
}

func TestFormatLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  *sysreptor.MessageLocation
		want string
	}{
		{
			name: "type and name",
			loc:  &sysreptor.MessageLocation{Type: sysreptor.LocationTypeDesign, ID: "pt1", Name: "Web Pentest"},
			want: "design/Web Pentest",
		},
		{
			name: "falls back to id",
			loc:  &sysreptor.MessageLocation{Type: sysreptor.LocationTypeFinding, ID: "f1"},
			want: "finding/f1",
		},
		{
			name: "with path",
			loc:  &sysreptor.MessageLocation{Type: sysreptor.LocationTypeSection, Name: "Summary", Path: "fields/summary"},
			want: "section/Summary/fields/summary",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatLocation(tt.loc); got != tt.want {
				t.Errorf("formatLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}
