package sysreptor

import "context"

// OutputFormat selects the worker's output encoding.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatPDF  OutputFormat = "pdf"
	OutputFormatHTML OutputFormat = "html"
)

// Valid reports whether the format is supported.
func (f OutputFormat) Valid() bool {
	return f == OutputFormatPDF || f == OutputFormatHTML
}

// RenderJob is the full input of one rendering worker invocation.
type RenderJob struct {
	// Template is the report template markup.
	Template string
	// Styles is the stylesheet applied to the rendered document.
	Styles string
	// Data is the fully resolved data tree, reachable as "data" inside the
	// template.
	Data map[string]any
	// Language is the target document language (BCP 47).
	Language string
	// Password optionally encrypts PDF output.
	Password string
	// Compress requests PDF compression.
	Compress bool
	// Format selects PDF or HTML output. Empty means PDF.
	Format OutputFormat
	// Resources maps logical resource paths (/assets/name/<name>,
	// /images/name/<name>) to base64-encoded bytes.
	Resources map[string]string
}

// RenderWorker renders a job into document bytes and diagnostics. Workers
// report their own start timestamp under Other["task_start_time"] so the
// orchestrator can account queueing delay even when the worker runs on
// another machine.
type RenderWorker interface {
	Render(ctx context.Context, job *RenderJob) (*RenderStageResult, error)
}

// TaskHandle tracks one job submitted to an external worker queue.
type TaskHandle interface {
	// Ready reports whether the task finished (successfully or not).
	Ready() bool
	// Result returns the task outcome. Only valid once Ready is true.
	Result() (*RenderStageResult, error)
	// Revoke requests best-effort termination of the task.
	Revoke(terminate bool) error
}

// TaskQueue submits render jobs to external workers.
type TaskQueue interface {
	Enqueue(ctx context.Context, job *RenderJob) (TaskHandle, error)
}
