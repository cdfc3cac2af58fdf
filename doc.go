// Package sysreptor renders pentest project reports to PDF or HTML.
//
// # Quick Start
//
// Create a Renderer, render a project, and close when done:
//
//	r, err := sysreptor.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	res, err := r.RenderProject(ctx, project)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("report.pdf", res.Output, 0644)
//
// The result carries the document bytes (res.Output), per-message render
// diagnostics (res.Messages), and a per-stage timing breakdown (res.Timings).
//
// # Render Pipeline
//
// Rendering a project goes through these stages:
//
//  1. Field value formatting: every schema-declared field of the report and
//     its findings is resolved to a display-ready form (enum labels, CVSS
//     metrics, CWE records, member contact records).
//  2. Template data assembly: report, findings, and member pool are merged
//     into one self-contained data tree with defaulting and ordering
//     guarantees.
//  3. Worker execution: the tree plus template, styles, and binary resources
//     is handed to a rendering worker, either in-process (headless Chrome
//     via go-rod) or through an injected task queue.
//  4. Result reconciliation: worker diagnostics and timings are merged into
//     a single RenderStageResult.
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r, err := sysreptor.NewRenderer(
//	    sysreptor.WithTimeout(2 * time.Minute),
//	    sysreptor.WithTaskQueue(queue),
//	    sysreptor.WithUserStore(store),
//	)
//
// # Parallel Rendering
//
// For batch rendering, use RendererPool to manage multiple browser
// instances:
//
//	pool := sysreptor.NewRendererPool(4)
//	defer pool.Close()
//
//	r, err := pool.Acquire()
//	defer pool.Release(r)
//
// # Browser Requirements
//
// The in-process worker requires Chrome/Chromium. go-rod downloads a managed
// Chromium on first run (~/.cache/rod/browser/). Set ROD_BROWSER_BIN to use
// a pre-installed binary and ROD_NO_SANDBOX=1 inside containers.
package sysreptor
