package toolchain

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danmuck/canvasproto/internal/logging"
)

const DefaultProtoc = "protoc"

// Compiler drives protoc to produce a descriptor set for one schema file.
type Compiler struct {
	Runner   CommandRunner
	Protoc   string
	Includes []string
}

// DescriptorSet compiles schemaPath and returns the serialized
// FileDescriptorSet together with the path protoc recorded for the file
// (its base name, since the schema directory is the first include root).
func (c Compiler) DescriptorSet(schemaPath string) ([]byte, string, error) {
	protoc := c.Protoc
	if protoc == "" {
		protoc = DefaultProtoc
	}
	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, "", fmt.Errorf("toolchain: resolve %s: %w", schemaPath, err)
	}
	tmp, err := os.MkdirTemp("", "canvasproto-protoc-")
	if err != nil {
		return nil, "", fmt.Errorf("toolchain: temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	out := filepath.Join(tmp, "descriptor_set.bin")
	args := []string{
		"--include_imports",
		"--descriptor_set_out=" + out,
		"-I", filepath.Dir(abs),
	}
	for _, inc := range c.Includes {
		args = append(args, "-I", inc)
	}
	args = append(args, abs)

	logging.Debugf("toolchain.DescriptorSet protoc=%s schema=%s includes=%d", protoc, abs, len(c.Includes))
	if _, err := run(runner, protoc, args...); err != nil {
		return nil, "", err
	}
	b, err := os.ReadFile(out)
	if err != nil {
		return nil, "", &ToolchainError{Tool: protoc, Err: fmt.Errorf("no descriptor set written: %w", err)}
	}
	return b, filepath.Base(abs), nil
}

// Verify runs argv with path appended, typically a syntax checker over
// freshly rendered output. An empty argv verifies nothing.
func Verify(runner CommandRunner, argv []string, path string) error {
	if len(argv) == 0 {
		return nil
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	args := append(append([]string{}, argv[1:]...), path)
	logging.Debugf("toolchain.Verify tool=%s path=%s", argv[0], path)
	_, err := run(runner, argv[0], args...)
	return err
}
