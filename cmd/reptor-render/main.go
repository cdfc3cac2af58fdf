package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	flags, _, err := parseFlags(os.Args)
	if err != nil {
		os.Exit(ExitUsage)
	}
	if flags.help {
		printUsage(os.Stdout)
		os.Exit(ExitSuccess)
	}
	if flags.version {
		fmt.Println("reptor-render " + Version)
		os.Exit(ExitSuccess)
	}

	log := newLogger(flags)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debugf(format, args...)
	}))

	if err := run(flags, log); err != nil {
		log.Error(err)
		os.Exit(exitCodeFor(err))
	}
}

// newLogger builds the CLI logger from verbosity flags.
func newLogger(flags *cliFlags) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case flags.quiet:
		log.SetLevel(logrus.ErrorLevel)
	case flags.verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
