// Package toolchain invokes the external schema compiler and output
// checkers. Every invocation is one blocking call with a single pass/fail
// result; callers decide how to degrade.
package toolchain

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// ErrToolMissing marks a tool that could not be started at all.
var ErrToolMissing = errors.New("toolchain: tool not found")

// exitNotFound is the shell convention for "command not found".
const exitNotFound = 127

// CommandRunner abstracts process execution so generators can be tested
// without a compiler installed.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
		exitCode = exitNotFound
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

// ToolchainError reports a failed tool invocation.
type ToolchainError struct {
	Tool     string
	ExitCode int32
	Stderr   string
	Err      error
}

func (e *ToolchainError) Error() string {
	msg := fmt.Sprintf("toolchain: %s exited %d", e.Tool, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *ToolchainError) Unwrap() error {
	return e.Err
}

// Missing reports whether the tool was absent rather than failing.
func (e *ToolchainError) Missing() bool {
	return errors.Is(e.Err, ErrToolMissing)
}

// run executes one command and folds any failure into a *ToolchainError.
func run(runner CommandRunner, name string, args ...string) ([]byte, error) {
	stdout, stderr, code, err := runner.Run(name, args...)
	if err == nil && code == 0 {
		return stdout, nil
	}
	if code == exitNotFound {
		if err == nil {
			err = ErrToolMissing
		} else {
			err = fmt.Errorf("%w: %v", ErrToolMissing, err)
		}
	}
	return stdout, &ToolchainError{
		Tool:     name,
		ExitCode: code,
		Stderr:   strings.TrimSpace(string(stderr)),
		Err:      err,
	}
}
