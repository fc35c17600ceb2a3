package toolchain

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/canvasproto/internal/testutil/testlog"
)

type fakeRunner struct {
	calls  [][]string
	write  []byte
	code   int32
	err    error
	stderr string
}

func (f *fakeRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.code != 0 || f.err != nil {
		return nil, []byte(f.stderr), f.code, f.err
	}
	for _, a := range args {
		if out, ok := strings.CutPrefix(a, "--descriptor_set_out="); ok && f.write != nil {
			if err := os.WriteFile(out, f.write, 0o644); err != nil {
				return nil, nil, 1, err
			}
		}
	}
	return nil, nil, 0, nil
}

func TestDescriptorSetInvokesProtoc(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "messages.proto")
	runner := &fakeRunner{write: []byte{0x0A, 0x00}}

	c := Compiler{Runner: runner, Protoc: "/opt/protoc", Includes: []string{"/usr/include"}}
	b, file, err := c.DescriptorSet(schemaPath)
	if err != nil {
		t.Fatalf("descriptor set: %v", err)
	}
	if !bytes.Equal(b, []byte{0x0A, 0x00}) || file != "messages.proto" {
		t.Fatalf("unexpected result: % X %q", b, file)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(runner.calls))
	}
	argv := strings.Join(runner.calls[0], " ")
	for _, want := range []string{"/opt/protoc", "--include_imports", "-I " + dir, "-I /usr/include", schemaPath} {
		if !strings.Contains(argv, want) {
			t.Fatalf("argv %q missing %q", argv, want)
		}
	}
}

func TestDescriptorSetToolMissing(t *testing.T) {
	testlog.Start(t)
	runner := &fakeRunner{code: 127, err: errors.New("exec: \"protoc\": executable file not found")}
	_, _, err := Compiler{Runner: runner}.DescriptorSet("messages.proto")
	var te *ToolchainError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolchainError, got %v", err)
	}
	if te.Tool != DefaultProtoc || !te.Missing() || !errors.Is(err, ErrToolMissing) {
		t.Fatalf("unexpected toolchain error: %+v", te)
	}
}

func TestDescriptorSetToolFails(t *testing.T) {
	testlog.Start(t)
	runner := &fakeRunner{code: 1, err: errors.New("exit status 1"), stderr: "messages.proto:3:1: Expected \";\".\n"}
	_, _, err := Compiler{Runner: runner}.DescriptorSet("messages.proto")
	var te *ToolchainError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolchainError, got %v", err)
	}
	if te.Missing() || te.ExitCode != 1 || !strings.Contains(te.Stderr, "Expected") {
		t.Fatalf("unexpected toolchain error: %+v", te)
	}
}

func TestDescriptorSetWithoutOutput(t *testing.T) {
	testlog.Start(t)
	_, _, err := Compiler{Runner: &fakeRunner{}}.DescriptorSet("messages.proto")
	var te *ToolchainError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolchainError when no descriptor is written, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	testlog.Start(t)
	if err := Verify(&fakeRunner{code: 1}, nil, "out.js"); err != nil {
		t.Fatalf("empty argv should verify nothing: %v", err)
	}

	runner := &fakeRunner{}
	if err := Verify(runner, []string{"node", "--check"}, "out.js"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got := strings.Join(runner.calls[0], " "); got != "node --check out.js" {
		t.Fatalf("unexpected argv %q", got)
	}

	err := Verify(&fakeRunner{code: 127}, []string{"node", "--check"}, "out.js")
	if !errors.Is(err, ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	testlog.Start(t)
	_, _, code, err := ExecRunner{}.Run("canvasproto-no-such-tool")
	if err == nil || code != exitNotFound {
		t.Fatalf("expected exit %d, got %d (%v)", exitNotFound, code, err)
	}
}
