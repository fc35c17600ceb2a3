package config

import (
	"fmt"
	"os"
)

func Template() string {
	return protogenTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(protogenTemplate), 0o644)
}

const protogenTemplate = `# Paths are relative to this file.
schema = "proto/messages.proto"
stamp = ".protogen-stamp.toml"

[native]
enabled = true
output = "internal/canvaspb/messages.gen.go"
package = "canvaspb"
protoc = "protoc"
includes = []
# descriptor = "internal/canvaspb/descriptor_set.bin"

[browser]
enabled = true
output = "web/static/proto-client.js"
protoc = "protoc"
includes = []
# verify = ["node", "--check"]
`
