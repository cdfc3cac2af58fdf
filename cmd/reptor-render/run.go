package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	sysreptor "github.com/5urpriser/sysreptor"
	"github.com/5urpriser/sysreptor/internal/config"
	"github.com/5urpriser/sysreptor/internal/yamlutil"
)

// CLI-specific sentinel errors.
var (
	ErrNoInput          = errors.New("no project document given")
	ErrReadDocument     = errors.New("failed to read document")
	ErrParseDocument    = errors.New("failed to parse document")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrRenderIssues     = errors.New("rendering finished with errors")
	ErrQueueUnavailable = errors.New("queued rendering requires an external task queue and is not available in the CLI")
)

// run executes one render end to end and returns the error that decides the
// exit code.
func run(flags *cliFlags, log *logrus.Logger) error {
	if flags.project == "" {
		return ErrNoInput
	}

	format := sysreptor.OutputFormat(flags.format)
	if !format.Valid() {
		return fmt.Errorf("%w: %q", sysreptor.ErrInvalidFormat, flags.format)
	}

	settings, err := config.Load(flags.config)
	if err != nil {
		return err
	}
	if settings.Queue.Enabled {
		return fmt.Errorf("%w: set queue.enabled=false or render through a queue-backed service", ErrQueueUnavailable)
	}

	project, err := loadProject(flags.project)
	if err != nil {
		return err
	}
	if flags.design != "" {
		design, err := loadDesign(flags.design)
		if err != nil {
			return err
		}
		project.ProjectType = design
	}

	opts := []sysreptor.RendererOption{
		sysreptor.WithLogger(log),
		sysreptor.WithCompression(settings.Rendering.CompressPDFs),
		sysreptor.WithPollInterval(time.Duration(settings.Queue.PollIntervalMS) * time.Millisecond),
	}
	timeLimit := time.Duration(settings.Rendering.TimeLimitSeconds) * time.Second
	if flags.timeout != "" {
		timeLimit, err = time.ParseDuration(flags.timeout)
		if err != nil {
			return fmt.Errorf("%w: invalid timeout %q", config.ErrInvalidSetting, flags.timeout)
		}
	}
	if timeLimit > 0 {
		opts = append(opts, sysreptor.WithTimeout(timeLimit))
	}

	pool := sysreptor.NewRendererPool(poolSizeFor(flags, settings), opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.WithError(err).Warn("failed to close renderer pool")
		}
	}()
	log.WithField("size", pool.Size()).Debug("renderer pool ready")

	renderer, err := pool.Acquire()
	if err != nil {
		return err
	}
	defer pool.Release(renderer)

	// Ctrl-C cancels the in-flight render.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"project": project.Name,
		"format":  string(format),
	}).Info("rendering report")

	started := time.Now()
	res, err := renderReport(ctx, renderer, project, flags.password, format)
	if err != nil {
		return err
	}

	printMessages(log, res.Messages)
	if flags.verbose {
		printTimings(log, res.Timings)
	}
	if res.HasError() || res.Output == nil {
		return ErrRenderIssues
	}

	out := flags.out
	if out == "" {
		out = defaultOutputPath(flags.project, format)
	}
	if err := os.WriteFile(out, res.Output, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	log.WithFields(logrus.Fields{
		"output":   out,
		"bytes":    len(res.Output),
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}).Info("report written")
	return nil
}

// poolSizeFor resolves the renderer pool size: the --workers flag wins over
// the configured worker count, zero means auto-sizing from GOMAXPROCS.
func poolSizeFor(flags *cliFlags, settings config.Settings) int {
	workers := settings.Rendering.Workers
	if flags.workers > 0 {
		workers = flags.workers
	}
	return sysreptor.ResolvePoolSize(workers)
}

// renderReport dispatches on the requested output format. HTML output reuses
// the report template but skips PDF generation.
func renderReport(ctx context.Context, renderer *sysreptor.Renderer, project *sysreptor.Project, password string, format sysreptor.OutputFormat) (*sysreptor.RenderStageResult, error) {
	if format == sysreptor.OutputFormatHTML {
		if project.ProjectType == nil {
			return nil, sysreptor.ErrNoProjectType
		}
		data := renderer.AssembleProjectData(project)
		return renderer.RenderTask(ctx, sysreptor.RenderTaskInput{
			ProjectType: project.ProjectType,
			Template:    project.ProjectType.ReportTemplate,
			Styles:      project.ProjectType.ReportStyles,
			Data:        data,
			Project:     project,
			Format:      sysreptor.OutputFormatHTML,
		})
	}
	if password != "" {
		return renderer.RenderProjectEncrypted(ctx, project, password)
	}
	return renderer.RenderProject(ctx, project)
}

// loadProject reads and parses a project document.
func loadProject(path string) (*sysreptor.Project, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadDocument, err)
	}
	var project sysreptor.Project
	if err := yamlutil.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseDocument, path, err)
	}
	return &project, nil
}

// loadDesign reads and parses a standalone design document.
func loadDesign(path string) (*sysreptor.ProjectType, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadDocument, err)
	}
	var design sysreptor.ProjectType
	if err := yamlutil.Unmarshal(data, &design); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseDocument, path, err)
	}
	return &design, nil
}

// printMessages logs render diagnostics at their matching level.
func printMessages(log *logrus.Logger, messages []sysreptor.Message) {
	for _, m := range messages {
		entry := log.WithField("level", string(m.Level))
		if m.Location != nil {
			entry = entry.WithField("location", formatLocation(m.Location))
		}
		if m.Details != "" {
			entry = entry.WithField("details", m.Details)
		}
		switch m.Level {
		case sysreptor.MessageLevelError:
			entry.Error(m.Message)
		case sysreptor.MessageLevelWarning:
			entry.Warn(m.Message)
		default:
			entry.Info(m.Message)
		}
	}
}

func formatLocation(loc *sysreptor.MessageLocation) string {
	parts := []string{string(loc.Type)}
	if loc.Name != "" {
		parts = append(parts, loc.Name)
	} else if loc.ID != "" {
		parts = append(parts, loc.ID)
	}
	if loc.Path != "" {
		parts = append(parts, loc.Path)
	}
	return strings.Join(parts, "/")
}

// printTimings logs stage timings in stable order.
func printTimings(log *logrus.Logger, timings map[string]float64) {
	names := make([]string, 0, len(timings))
	for name := range timings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.WithField("seconds", fmt.Sprintf("%.3f", timings[name])).Debugf("timing %s", name)
	}
}

// defaultOutputPath derives the output file name from the project document.
func defaultOutputPath(projectPath string, format sysreptor.OutputFormat) string {
	base := strings.TrimSuffix(projectPath, filepath.Ext(projectPath))
	if format == sysreptor.OutputFormatHTML {
		return base + ".html"
	}
	return base + ".pdf"
}
