// Package canvaspb holds the canvas message types shared by the Go backend
// and the browser client. messages.gen.go is rendered from
// proto/messages.proto; regenerate it rather than editing it.
package canvaspb

//go:generate go run ../../cmd/protogen -config ../../protogen.toml
