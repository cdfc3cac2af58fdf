package sysreptor

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Rendering defaults.
const (
	// DefaultTimeLimit bounds one worker execution.
	DefaultTimeLimit = 5 * time.Minute

	// renderTimeoutGrace is added on top of the configured time limit so the
	// worker's own deadline fires first and can report a proper diagnostic.
	renderTimeoutGrace = 5 * time.Second

	// DefaultPollInterval is the queued-mode completion poll interval.
	DefaultPollInterval = 100 * time.Millisecond
)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	timeLimit    time.Duration
	pollInterval time.Duration
	compress     bool
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTimeout sets the per-render time limit.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) RendererOption {
	if d <= 0 {
		panic("sysreptor: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.timeLimit = d
	}
}

// WithCompression enables PDF compression for jobs that allow it.
func WithCompression(enabled bool) RendererOption {
	return func(r *Renderer) {
		r.cfg.compress = enabled
	}
}

// WithPollInterval sets the queued-mode poll interval.
func WithPollInterval(d time.Duration) RendererOption {
	if d <= 0 {
		panic("sysreptor: WithPollInterval duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.pollInterval = d
	}
}

// WithWorker injects the rendering worker used in inline mode.
func WithWorker(w RenderWorker) RendererOption {
	return func(r *Renderer) {
		r.worker = w
	}
}

// WithTaskQueue switches the renderer to queued mode: jobs are submitted to
// the queue and polled for completion instead of running in-process.
func WithTaskQueue(q TaskQueue) RendererOption {
	return func(r *Renderer) {
		r.queue = q
	}
}

// WithUserStore sets the live user lookup fallback for user field references.
func WithUserStore(s UserStore) RendererOption {
	return func(r *Renderer) {
		r.users = s
	}
}

// WithDetailSerializer overrides the project detail serialization used by
// the markdown round-trip renderer.
func WithDetailSerializer(s DetailSerializer) RendererOption {
	return func(r *Renderer) {
		r.serializer = s
	}
}

// WithLogger sets the logger. By default logging is discarded.
func WithLogger(log *logrus.Logger) RendererOption {
	return func(r *Renderer) {
		r.log = log
	}
}

// Renderer drives the render pipeline: data assembly, worker invocation
// (inline or queued), timing reconciliation, and diagnostics.
type Renderer struct {
	cfg        rendererConfig
	worker     RenderWorker
	queue      TaskQueue
	users      UserStore
	serializer DetailSerializer
	log        *logrus.Logger
}

// NewRenderer creates a Renderer with default configuration: inline mode
// with the in-process Chrome worker, five minute time limit, 100ms poll
// interval.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			timeLimit:    DefaultTimeLimit,
			pollInterval: DefaultPollInterval,
		},
		serializer: StandardDetailSerializer{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logrus.New()
		r.log.SetOutput(io.Discard)
	}
	// Create the in-process worker unless one was injected or queued mode
	// is active.
	if r.worker == nil && r.queue == nil {
		r.worker = NewChromiumWorker(r.cfg.timeLimit)
	}
	return r, nil
}

// Formatter returns a field formatter wired to the renderer's user store.
func (r *Renderer) Formatter() *Formatter {
	return NewFormatter(r.users)
}

// Close releases worker resources (headless Chrome browser).
func (r *Renderer) Close() error {
	if closer, ok := r.worker.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// RenderTaskInput carries one orchestrated render invocation.
type RenderTaskInput struct {
	ProjectType *ProjectType
	Template    string
	Styles      string
	Data        map[string]any

	// Project is optional; when set, its referenced images are shipped as
	// resources and its language wins over the project type's.
	Project *Project

	Password    string
	CanCompress bool
	Format      OutputFormat

	// Resources are merged over the collected asset/image resources.
	Resources map[string]string

	// Timeout overrides the configured time limit plus grace.
	Timeout time.Duration

	// Timings threads stage timings recorded before this call (data
	// collection) into the result.
	Timings map[string]float64
}

// RenderTask invokes the rendering worker for a prepared data tree and
// reconciles timings and message locations. Timing buckets on the returned
// result satisfy: queue + worker stages + other = task_total + timings
// recorded before submission.
func (r *Renderer) RenderTask(ctx context.Context, in RenderTaskInput) (*RenderStageResult, error) {
	res := NewRenderStageResult()
	if in.Timings != nil {
		res.Timings = in.Timings
	}

	var resources map[string]string
	func() {
		defer res.AddTiming("collect_data")()
		resources = r.collectResources(in)
	}()

	res.Timings["queue"] = 0.0
	beforeTask := time.Now()
	timingBeforeTask := sumTimings(res.Timings)

	language := in.ProjectType.Language
	if in.Project != nil && in.Project.Language != "" {
		language = in.Project.Language
	}
	format := in.Format
	if format == "" {
		format = OutputFormatPDF
	}

	job := &RenderJob{
		Template:  in.Template,
		Styles:    in.Styles,
		Data:      in.Data,
		Language:  language,
		Password:  in.Password,
		Compress:  in.CanCompress && r.cfg.compress,
		Format:    format,
		Resources: resources,
	}

	stop := res.AddTiming("task_total")
	taskRes, err := r.executeTask(ctx, job, in.Timeout)
	stop()
	if err != nil {
		return nil, err
	}
	res.Merge(taskRes)

	r.reconcileTimings(res, beforeTask, timingBeforeTask)

	// Messages without a more specific location point at the design.
	for i, m := range res.Messages {
		if m.Location == nil {
			res.Messages[i].Location = &MessageLocation{
				Type: LocationTypeDesign,
				ID:   in.ProjectType.ID,
				Name: in.ProjectType.Name,
			}
		}
	}
	return res, nil
}

// collectResources gathers design assets and, for project-scoped renders,
// images actually referenced by report content. Unreferenced images are
// skipped to keep worker payloads small.
func (r *Renderer) collectResources(in RenderTaskInput) map[string]string {
	resources := map[string]string{}
	for _, asset := range in.ProjectType.Assets {
		resources["/assets/name/"+asset.Name] = base64.StdEncoding.EncodeToString(asset.Data)
	}
	if in.Project != nil {
		for _, image := range in.Project.Images {
			if in.Project.IsFileReferenced(image) {
				resources["/images/name/"+image.Name] = base64.StdEncoding.EncodeToString(image.Data)
			}
		}
	}
	for path, data := range in.Resources {
		resources[path] = data
	}
	return resources
}

// executeTask runs the job either inline or through the task queue,
// bounded by the given timeout (configured limit plus grace when zero).
func (r *Renderer) executeTask(ctx context.Context, job *RenderJob, timeout time.Duration) (*RenderStageResult, error) {
	if timeout <= 0 {
		timeout = r.cfg.timeLimit + renderTimeoutGrace
	}
	if r.queue != nil {
		return r.executeQueued(ctx, job, timeout)
	}
	return r.executeInline(ctx, job, timeout)
}

// executeInline runs the worker directly as a cancellable unit of work.
// On cancellation the worker goroutine keeps running so in-flight browser
// work can finish cleanly, but its result is discarded; the cancellation
// propagates to the caller immediately.
func (r *Renderer) executeInline(ctx context.Context, job *RenderJob, timeout time.Duration) (*RenderStageResult, error) {
	if r.worker == nil {
		return nil, ErrNoWorker
	}

	type outcome struct {
		res *RenderStageResult
		err error
	}
	// Buffered so the worker goroutine never blocks after cancellation.
	done := make(chan outcome, 1)

	workerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	go func() {
		defer cancel()
		res, err := r.worker.Render(workerCtx, job)
		done <- outcome{res: res, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			if workerCtx.Err() == context.DeadlineExceeded {
				r.log.Error("rendering task timeout")
				return nil, fmt.Errorf("%w: %v", ErrRenderTimeout, out.err)
			}
			return nil, out.err
		}
		return out.res, nil
	case <-ctx.Done():
		r.log.Info("rendering task cancelled")
		return nil, ctx.Err()
	case <-timer.C:
		cancel()
		r.log.Error("rendering task timeout")
		return nil, fmt.Errorf("%w after %s", ErrRenderTimeout, timeout)
	}
}

// executeQueued submits the job to the task queue and polls for completion.
// On cancellation the queued task is revoked best-effort (termination errors
// ignored) and the cancellation re-raised.
func (r *Renderer) executeQueued(ctx context.Context, job *RenderJob, timeout time.Duration) (*RenderStageResult, error) {
	handle, err := r.queue.Enqueue(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskFailed, err)
	}

	deadline := time.Now().Add(timeout)
	for !handle.Ready() {
		if time.Now().After(deadline) {
			r.log.Error("rendering task timeout")
			return nil, fmt.Errorf("%w after %s", ErrRenderTimeout, timeout)
		}
		select {
		case <-ctx.Done():
			// Ignore revocation errors, the cancellation wins.
			_ = handle.Revoke(true)
			r.log.Info("rendering task cancelled")
			return nil, ctx.Err()
		case <-time.After(r.cfg.pollInterval):
		}
	}
	res, err := handle.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskFailed, err)
	}
	return res, nil
}

// reconcileTimings folds the worker-reported start timestamp into a queue
// bucket and absorbs unaccounted overhead into a clamped residual bucket.
// Datetimes are used instead of monotonic clocks because the worker may run
// on a different machine.
func (r *Renderer) reconcileTimings(res *RenderStageResult, beforeTask time.Time, timingBeforeTask float64) {
	if raw, ok := res.Other["task_start_time"]; ok {
		delete(res.Other, "task_start_time")
		if s, ok := raw.(string); ok {
			if start, err := time.Parse(time.RFC3339Nano, s); err == nil {
				res.Timings["queue"] = start.Sub(beforeTask).Seconds()
			}
		}
	}
	taskTotal := res.Timings["task_total"]
	delete(res.Timings, "task_total")
	other := taskTotal + timingBeforeTask - sumTimings(res.Timings)
	if other < 0 {
		other = 0
	}
	res.Timings["other"] = other
}

func sumTimings(timings map[string]float64) float64 {
	var total float64
	for _, v := range timings {
		total += v
	}
	return total
}

// RenderProject renders a full project report: template and styles come from
// the project type, data is assembled from the project's report, findings,
// and members.
func (r *Renderer) RenderProject(ctx context.Context, project *Project) (*RenderStageResult, error) {
	if project.ProjectType == nil {
		return nil, ErrNoProjectType
	}
	return r.renderProjectWith(ctx, project, project.ProjectType.ReportTemplate, project.ProjectType.ReportStyles, "", false)
}

// RenderProjectEncrypted renders a project report protected by a password,
// with compression applied when globally enabled.
func (r *Renderer) RenderProjectEncrypted(ctx context.Context, project *Project, password string) (*RenderStageResult, error) {
	if project.ProjectType == nil {
		return nil, ErrNoProjectType
	}
	return r.renderProjectWith(ctx, project, project.ProjectType.ReportTemplate, project.ProjectType.ReportStyles, password, true)
}

func (r *Renderer) renderProjectWith(ctx context.Context, project *Project, template, styles, password string, canCompress bool) (*RenderStageResult, error) {
	if template == "" {
		return nil, ErrEmptyTemplate
	}
	res := NewRenderStageResult()
	var data map[string]any
	func() {
		defer res.AddTiming("collect_data")()
		data = r.AssembleProjectData(project)
	}()
	return r.RenderTask(ctx, RenderTaskInput{
		ProjectType: project.ProjectType,
		Template:    template,
		Styles:      styles,
		Data:        data,
		Project:     project,
		Password:    password,
		CanCompress: canCompress,
		Timings:     res.Timings,
	})
}

// RenderPreview renders arbitrary template and styles against
// caller-supplied preview data, assembled like project data but without a
// backing project.
func (r *Renderer) RenderPreview(ctx context.Context, projectType *ProjectType, template, styles string, previewData map[string]any) (*RenderStageResult, error) {
	res := NewRenderStageResult()
	var data map[string]any
	func() {
		defer res.AddTiming("collect_data")()
		report, _ := previewData["report"].(map[string]any)
		var findings []Finding
		if rawFindings, ok := previewData["findings"].([]any); ok {
			for i, rf := range rawFindings {
				m, _ := rf.(map[string]any)
				findings = append(findings, Finding{Order: i, Data: m})
			}
		}
		pentesters, _ := previewData["pentesters"].([]any)
		data = r.Formatter().AssembleTemplateData(AssembleInput{
			Report:        report,
			Findings:      findings,
			MemberRecords: pentesters,
			ProjectType:   projectType,
		})
	}()
	return r.RenderTask(ctx, RenderTaskInput{
		ProjectType: projectType,
		Template:    template,
		Styles:      styles,
		Data:        data,
		Timings:     res.Timings,
	})
}

// AssembleProjectData builds the resolved template data tree for a project.
func (r *Renderer) AssembleProjectData(project *Project) map[string]any {
	report := map[string]any{"id": project.ID}
	for k, v := range project.ReportData() {
		if k != "id" {
			report[k] = v
		}
	}
	return r.Formatter().AssembleTemplateData(AssembleInput{
		Report:               report,
		Findings:             project.Findings,
		Pentesters:           project.Members,
		ImportedMembers:      project.ImportedMembers,
		ProjectType:          project.ProjectType,
		OverrideFindingOrder: project.OverrideFindingOrder,
	})
}
