/*
Package osascript composes AppleScript programs scoped to a single
application and executes them through the system interpreter.
*/
package osascript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultBin is the interpreter executed for each tool call.
const DefaultBin = "osascript"

// DefaultTimeout bounds one interpreter run. Zero disables the deadline.
const DefaultTimeout = 60 * time.Second

// DefaultMaxScriptBytes caps the accepted script size.
const DefaultMaxScriptBytes = 64 * 1024

// Script rejection reasons. Each rejects before any subprocess is spawned.
var (
	ErrScriptTooLarge = errors.New("script exceeds the size limit")
	ErrScriptNotUTF8  = errors.New("script is not valid UTF-8")
	ErrScriptNUL      = errors.New("script contains a NUL byte")
	ErrScriptEndTell  = errors.New("script contains a bare 'end tell' line")
)

// Result captures one complete interpreter run. A nonzero Status is data,
// not an error: the run happened and this is what it said.
type Result struct {
	Stdout   string
	Stderr   string
	Status   int
	TimedOut bool
}

// Runner executes composed programs. The zero value is not usable; call
// NewRunner and adjust fields before the first Run.
type Runner struct {
	// Bin is the interpreter binary, resolved through PATH.
	Bin string
	// Timeout bounds one run. Zero or negative disables the deadline.
	Timeout time.Duration
	// MaxScriptBytes caps Validate. Zero or negative falls back to the
	// default cap.
	MaxScriptBytes int
}

// NewRunner returns a Runner with the default interpreter and limits.
func NewRunner() *Runner {
	return &Runner{
		Bin:            DefaultBin,
		Timeout:        DefaultTimeout,
		MaxScriptBytes: DefaultMaxScriptBytes,
	}
}

// Validate rejects script bodies that must never reach the interpreter:
// oversized, not UTF-8, containing NUL, or containing a line that would
// close the tell block early.
func (r *Runner) Validate(script string) error {
	limit := r.MaxScriptBytes
	if limit <= 0 {
		limit = DefaultMaxScriptBytes
	}
	if len(script) > limit {
		return fmt.Errorf("%w (%d bytes, limit %d)", ErrScriptTooLarge, len(script), limit)
	}
	if !utf8.ValidString(script) {
		return ErrScriptNotUTF8
	}
	if strings.ContainsRune(script, '\x00') {
		return ErrScriptNUL
	}
	for _, line := range strings.Split(script, "\n") {
		if strings.EqualFold(strings.TrimSpace(line), "end tell") {
			return ErrScriptEndTell
		}
	}
	return nil
}

// Compose wraps script in a tell block addressing appName. The script gains
// a trailing newline if it lacks one, so the closing line always stands
// alone.
func Compose(appName, script string) string {
	var b strings.Builder
	b.WriteString(`tell application "`)
	b.WriteString(escapeAppName(appName))
	b.WriteString("\"\n")
	b.WriteString(script)
	if !strings.HasSuffix(script, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("end tell\n")
	return b.String()
}

// escapeAppName quotes backslashes and double quotes so a file-derived name
// cannot escape the tell line.
func escapeAppName(appName string) string {
	appName = strings.ReplaceAll(appName, `\`, `\\`)
	return strings.ReplaceAll(appName, `"`, `\"`)
}

// Run composes the program for appName and executes it once, reaping the
// subprocess before returning. A non-nil error means the interpreter could
// not be started at all; every completed run returns a Result.
func (r *Runner) Run(ctx context.Context, appName, script string) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	bin := r.Bin
	if bin == "" {
		bin = DefaultBin
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-e", Compose(appName, script)) // #nosec G204 -- the program is composed above
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return &Result{Stdout: stdout.String(), Stderr: stderr.String(), Status: 0}, nil
	}

	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		// Exit code -1 means the process was signaled; when our deadline
		// fired, that signal was the timeout kill.
		if exitErr.ExitCode() == -1 && timedOut {
			return &Result{Stdout: stdout.String(), Stderr: stderr.String(), Status: -1, TimedOut: true}, nil
		}
		return &Result{
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Status: exitErr.ExitCode(),
		}, nil
	}
	if timedOut {
		// The deadline expired before the interpreter could start.
		return &Result{Stdout: stdout.String(), Stderr: stderr.String(), Status: -1, TimedOut: true}, nil
	}
	return nil, fmt.Errorf("error running %s: %w", bin, runErr)
}
