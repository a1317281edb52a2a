// FILE: logship/src/cmd/logship/output.go
package main

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// OutputHandler writes CLI output that is not part of the structured log.
// Quiet mode suppresses everything except the exit code.
type OutputHandler struct {
	quiet  bool
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

var output *OutputHandler

// InitOutputHandler installs the global handler
func InitOutputHandler(quiet bool) {
	output = &OutputHandler{
		quiet:  quiet,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func (o *OutputHandler) Print(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.quiet {
		fmt.Fprintf(o.stdout, format, args...)
	}
}

func (o *OutputHandler) Error(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.quiet {
		fmt.Fprintf(o.stderr, format, args...)
	}
}

func Print(format string, args ...any) {
	if output != nil {
		output.Print(format, args...)
	}
}

func Error(format string, args ...any) {
	if output != nil {
		output.Error(format, args...)
	}
}

// FatalError reports and exits. Before the handler exists it writes to stderr.
func FatalError(code int, format string, args ...any) {
	if output != nil {
		output.Error(format, args...)
	} else {
		fmt.Fprintf(os.Stderr, format, args...)
	}
	os.Exit(code)
}
