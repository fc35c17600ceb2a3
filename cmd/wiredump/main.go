// Command wiredump inspects canvas messages on the wire. It encodes JSON
// field data to hex, decodes hex back to fields, exports the message schema
// as a protobuf descriptor set, and with -serve runs the HTTP wire console
// next to the generated browser client. With -schema it works from a
// scanned .proto file through the JSON fallback codec instead of the
// compiled-in types.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/canvasproto/internal/canvaspb"
	"github.com/danmuck/canvasproto/internal/fallback"
	"github.com/danmuck/canvasproto/internal/logging"
	"github.com/danmuck/canvasproto/internal/registry"
	"github.com/danmuck/canvasproto/internal/schema"
	"github.com/danmuck/canvasproto/internal/server"
)

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "wiredump: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("wiredump", flag.ContinueOnError)
	list := fs.Bool("list", false, "list registered message types")
	typeName := fs.String("type", "", "message type for -encode or -decode")
	encode := fs.String("encode", "", "JSON field object to encode as hex (- reads stdin)")
	decode := fs.String("decode", "", "hex payload to decode (- reads stdin)")
	descriptor := fs.String("descriptor", "", "write the schema as a FileDescriptorSet to this path")
	serve := fs.String("serve", "", "run the HTTP wire console on this address")
	static := fs.String("static", "web/static", "directory served under /static by -serve")
	schemaPath := fs.String("schema", "", "scan this .proto file and use the JSON fallback codec")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, s, err := loadRegistry(*schemaPath)
	if err != nil {
		return err
	}

	switch {
	case *serve != "":
		return server.New(reg, *static).ListenAndServe(*serve)
	case *list:
		for _, name := range reg.Types() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	case *descriptor != "":
		b, err := schema.DescriptorSet(s)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*descriptor, b, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %d byte descriptor set to %s\n", len(b), *descriptor)
		return nil
	case *typeName == "":
		return fmt.Errorf("one of -list, -descriptor or -type is required")
	case *encode != "":
		input, err := argOrStdin(*encode, stdin)
		if err != nil {
			return err
		}
		return encodeJSON(reg, *typeName, input, stdout)
	case *decode != "":
		input, err := argOrStdin(*decode, stdin)
		if err != nil {
			return err
		}
		return decodeHex(reg, *typeName, input, stdout)
	default:
		return fmt.Errorf("-type needs -encode or -decode")
	}
}

// loadRegistry returns the compiled-in registry, or with path set a
// placeholder registry over the schema scanned from path.
func loadRegistry(path string) (*registry.Registry, schema.Schema, error) {
	if path == "" {
		reg, err := canvaspb.NewRegistry()
		return reg, canvaspb.Schema, err
	}
	src, err := schema.Read(path)
	if err != nil {
		return nil, schema.Schema{}, err
	}
	s, dropped, err := schema.Parse(filepath.Base(path), src)
	if err != nil {
		return nil, schema.Schema{}, err
	}
	for _, note := range dropped {
		logging.Warnf("wiredump: scanner dropped %s", note)
	}
	if err := schema.Validate(s); err != nil {
		return nil, schema.Schema{}, err
	}
	reg, err := fallback.NewRegistry(s)
	if err != nil {
		return nil, schema.Schema{}, err
	}
	return reg, s, nil
}

func argOrStdin(v string, stdin io.Reader) (string, error) {
	if v != "-" {
		return v, nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func encodeJSON(reg *registry.Registry, typeName, input string, stdout io.Writer) error {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("parse field object: %w", err)
	}
	msg, err := reg.Create(typeName, data)
	if err != nil {
		return err
	}
	b, err := reg.Encode(msg)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hex.EncodeToString(b))
	return nil
}

func decodeHex(reg *registry.Registry, typeName, input string, stdout io.Writer) error {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, input)
	b, err := hex.DecodeString(clean)
	if err != nil {
		return fmt.Errorf("parse hex: %w", err)
	}
	msg, err := reg.Decode(typeName, b)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, msg)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(msg.Fields()); err != nil {
		return err
	}
	_, err = stdout.Write(buf.Bytes())
	return err
}
