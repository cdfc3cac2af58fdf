package main

import "testing"

func TestParseFlags(t *testing.T) {
	t.Parallel()

	flags, args, err := parseFlags([]string{
		"reptor-render",
		"--project", "report.yaml",
		"--design", "design.yaml",
		"-o", "out.pdf",
		"-f", "html",
		"-t", "30s",
		"-w", "2",
		"-v",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if flags.project != "report.yaml" || flags.design != "design.yaml" {
		t.Errorf("documents = %q, %q", flags.project, flags.design)
	}
	if flags.out != "out.pdf" || flags.format != "html" {
		t.Errorf("output = %q, %q", flags.out, flags.format)
	}
	if flags.timeout != "30s" || flags.workers != 2 || !flags.verbose {
		t.Errorf("flags = %+v", flags)
	}
	if len(args) != 0 {
		t.Errorf("positional args = %v", args)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	t.Parallel()

	flags, _, err := parseFlags([]string{"reptor-render"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if flags.format != "pdf" {
		t.Errorf("format = %q, want pdf", flags.format)
	}
	if flags.workers != 0 || flags.quiet || flags.verbose {
		t.Errorf("flags = %+v", flags)
	}
}

func TestParseFlagsUnknown(t *testing.T) {
	t.Parallel()

	if _, _, err := parseFlags([]string{"reptor-render", "--bogus"}); err == nil {
		t.Error("unknown flag must fail")
	}
}
