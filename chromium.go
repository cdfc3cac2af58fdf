package sysreptor

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/5urpriser/sysreptor/internal/pipeline"
)

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// ChromiumWorker is the in-process rendering worker: it executes the report
// template with html/template (markdown fields rendered through goldmark)
// and prints PDF output through headless Chrome via go-rod. Rod downloads a
// managed Chromium on first run if none is found.
//
// Template problems are user-authored content, so they surface as
// error-level diagnostic messages on the result rather than hard failures;
// browser and filesystem faults return errors.
type ChromiumWorker struct {
	timeout  time.Duration
	markdown *pipeline.MarkdownRenderer

	mu      sync.Mutex
	browser *rod.Browser
}

var _ RenderWorker = (*ChromiumWorker)(nil)
var _ io.Closer = (*ChromiumWorker)(nil)

// NewChromiumWorker creates a ChromiumWorker. The timeout bounds page load
// waits when no context deadline is closer.
func NewChromiumWorker(timeout time.Duration) *ChromiumWorker {
	return &ChromiumWorker{
		timeout:  timeout,
		markdown: pipeline.NewMarkdownRenderer(),
	}
}

// Render implements RenderWorker.
func (w *ChromiumWorker) Render(ctx context.Context, job *RenderJob) (*RenderStageResult, error) {
	res := NewRenderStageResult()
	res.Other["task_start_time"] = time.Now().UTC().Format(time.RFC3339Nano)

	if job.Template == "" {
		return nil, ErrEmptyTemplate
	}
	format := job.Format
	if format == "" {
		format = OutputFormatPDF
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, job.Format)
	}

	var doc string
	err := func() error {
		defer res.AddTiming("render")()
		body, renderErr := w.executeTemplate(ctx, job)
		if renderErr != nil {
			res.Messages = append(res.Messages, Message{
				Level:   MessageLevelError,
				Message: "Template rendering error",
				Details: renderErr.Error(),
			})
			return nil
		}
		doc = pipeline.WrapDocument(body, job.Styles, job.Language)
		return nil
	}()
	if err != nil {
		return nil, err
	}
	if doc == "" {
		return res, nil
	}

	if format == OutputFormatHTML {
		res.Output = []byte(doc)
		return res, nil
	}

	if job.Password != "" {
		res.Messages = append(res.Messages, Message{
			Level:   MessageLevelWarning,
			Message: "PDF encryption is not supported by the in-process worker",
		})
	}

	var pdf []byte
	err = func() error {
		defer res.AddTiming("pdf")()
		var pdfErr error
		pdf, pdfErr = w.printPDF(ctx, doc, job.Resources)
		return pdfErr
	}()
	if err != nil {
		return nil, err
	}
	res.Output = pdf
	return res, nil
}

// executeTemplate runs the report template against the data tree. The tree
// is reachable as "data"; a "markdown" func renders field text to HTML.
func (w *ChromiumWorker) executeTemplate(ctx context.Context, job *RenderJob) (string, error) {
	funcs := template.FuncMap{
		"markdown": func(value any) (template.HTML, error) {
			text, _ := value.(string)
			fragment, err := w.markdown.Render(ctx, text)
			if err != nil {
				return "", err
			}
			// goldmark output is sanitized (WithUnsafe not enabled).
			return template.HTML(fragment), nil // #nosec G203
		},
	}
	tmpl, err := template.New("report").Funcs(funcs).Parse(job.Template)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, map[string]any{"data": job.Data}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

// printPDF materializes resources next to the document and prints it through
// headless Chrome.
func (w *ChromiumWorker) printPDF(ctx context.Context, doc string, resources map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "sysreptor-render-")
	if err != nil {
		return nil, fmt.Errorf("creating render scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	mapping, err := pipeline.MaterializeResources(dir, resources)
	if err != nil {
		return nil, err
	}
	doc = pipeline.RewriteResourcePaths(doc, mapping)

	docPath := filepath.Join(dir, "report.html")
	// #nosec G306 -- render scratch file, removed with the temp dir
	if err := os.WriteFile(docPath, []byte(doc), 0o644); err != nil {
		return nil, fmt.Errorf("writing render document: %w", err)
	}

	return w.renderFromFile(ctx, docPath)
}

// ensureBrowser lazily launches and connects to the browser.
func (w *ChromiumWorker) ensureBrowser() (*rod.Browser, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.browser != nil {
		return w.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	w.browser = browser
	return browser, nil
}

// renderFromFile opens a local HTML file in headless Chrome and prints it to
// PDF. Returns explicit errors instead of panicking when browser operations
// fail.
func (w *ChromiumWorker) renderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	browser, err := w.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	// Wait for page to load with timeout from context or default
	timeout := w.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// Close releases browser resources.
func (w *ChromiumWorker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.browser != nil {
		err := w.browser.Close()
		w.browser = nil
		return err
	}
	return nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
