package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all flags for reptor-render.
type cliFlags struct {
	project  string
	design   string
	out      string
	format   string
	password string
	config   string
	timeout  string
	workers  int
	quiet    bool
	verbose  bool
	version  bool
	help     bool
}

// parseFlags parses command line flags and returns positional args.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("reptor-render", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.project, "project", "p", "", "project document (YAML)")
	fs.StringVarP(&f.design, "design", "d", "", "design document overriding the project's embedded one (YAML)")
	fs.StringVarP(&f.out, "out", "o", "", "output file (default: <project>.pdf)")
	fs.StringVarP(&f.format, "format", "f", "pdf", "output format: pdf, html")
	fs.StringVar(&f.password, "password", "", "encrypt the PDF with a password")
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render time limit (e.g. 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renderers (0 = auto)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show stage timings")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show usage")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `reptor-render - render pentest report documents to PDF or HTML

Usage:
  reptor-render --project report.yaml [flags]
  reptor-render --project report.yaml --design design.yaml -o report.pdf

Flags:
  -p, --project string    project document (YAML)
  -d, --design string     design document overriding the project's embedded one
  -o, --out string        output file (default: <project>.pdf)
  -f, --format string     output format: pdf, html (default "pdf")
      --password string   encrypt the PDF with a password
  -c, --config string     config file path
  -t, --timeout string    render time limit (e.g. 30s, 2m)
  -w, --workers int       parallel renderers (0 = auto)
  -q, --quiet             only show errors
  -v, --verbose           show stage timings
      --version           print version and exit
  -h, --help              show usage

Environment:
  REPTOR_RENDERING_TIME_LIMIT   render time limit in seconds
  REPTOR_COMPRESS_PDFS          compress generated PDFs (true/false)
  REPTOR_WORKERS                parallel renderers
`)
}
