package codegen

import (
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/danmuck/canvasproto/internal/config"
	"github.com/danmuck/canvasproto/internal/schema"
	"github.com/danmuck/canvasproto/internal/testutil/testlog"
	"github.com/danmuck/canvasproto/internal/toolchain"
)

const testSchema = `syntax = "proto3";

package canvas;

message Greeting {
  string text = 1;
}

message CursorMove {
  string user_id = 1;
  int32 x = 2;
  int32 y = 3;
}

message ChatLine {
  string author = 1;
  string body = 2;
  int64 sent_at_ms = 3;
  repeated string attachments = 4;
}
`

// fakeToolchain stands in for protoc and output checkers. Tools listed in
// missing exit 127, tools in failing exit 1, and protoc otherwise compiles
// the schema with the lenient scanner.
type fakeToolchain struct {
	missing    map[string]bool
	failing    map[string]bool
	descriptor []byte
	calls      []string
}

func (f *fakeToolchain) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	f.calls = append(f.calls, name)
	if f.missing[name] {
		return nil, nil, 127, errors.New("executable file not found")
	}
	if f.failing[name] {
		return nil, []byte(name + ": rejected"), 1, errors.New("exit status 1")
	}
	var out string
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "--descriptor_set_out="); ok {
			out = v
		}
	}
	if out == "" {
		return nil, nil, 0, nil
	}
	b := f.descriptor
	if b == nil {
		path := args[len(args)-1]
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, []byte(err.Error()), 1, err
		}
		s, _, err := schema.Parse(filepath.Base(path), src)
		if err != nil {
			return nil, []byte(err.Error()), 1, err
		}
		if b, err = schema.DescriptorSet(s); err != nil {
			return nil, nil, 1, err
		}
	}
	return nil, nil, 0, os.WriteFile(out, b, 0o644)
}

func testConfig(t *testing.T, src string) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig().Resolve(dir)
	if src != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Schema), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(cfg.Schema, []byte(src), 0o644); err != nil {
			t.Fatalf("write schema: %v", err)
		}
	}
	return cfg
}

func runGenerator(t *testing.T, cfg config.Config, runner toolchain.CommandRunner, force bool) Report {
	t.Helper()
	clock := func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	report, err := New(cfg, WithRunner(runner), WithClock(clock)).Run(force)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return report
}

func mustResult(t *testing.T, report Report, target Target) Result {
	t.Helper()
	res, ok := report.Result(target)
	if !ok {
		t.Fatalf("no result for %s in %+v", target, report.Results)
	}
	return res
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func assertParsesAsGo(t *testing.T, path string) {
	t.Helper()
	if _, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.AllErrors); err != nil {
		t.Fatalf("generated go does not parse: %v", err)
	}
}

func TestRunGeneratesBothTargets(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	cfg.Native.Descriptor = filepath.Join(filepath.Dir(cfg.Schema), "messages.binpb")

	report := runGenerator(t, cfg, &fakeToolchain{}, false)
	if report.RunID == "" || report.SchemaHash != schema.Hash([]byte(testSchema)) {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if report.Degraded() || report.WireMismatch() {
		t.Fatalf("expected no degraded targets: %+v", report.Results)
	}

	native := mustResult(t, report, TargetNative)
	if native.Outcome != OutcomeGenerated || native.Retry || !native.Written || native.Reason != nil {
		t.Fatalf("unexpected native result: %+v", native)
	}
	goSrc := readFile(t, cfg.Native.Output)
	for _, want := range []string{
		"// Code generated by protogen from messages.proto. DO NOT EDIT.",
		"package canvaspb",
		"const Placeholder = false",
		"type CursorMove struct",
		"UserID string",
		"Attachments []string",
		"w.WriteInt32(2, m.X)",
		`registry.TypeOf("ChatLine", NewChatLine, DecodeChatLine)`,
	} {
		if !strings.Contains(goSrc, want) {
			t.Fatalf("generated go missing %q:\n%s", want, goSrc)
		}
	}
	if strings.Contains(goSrc, "/fallback\"") {
		t.Fatalf("generated codec must not import the fallback runtime")
	}
	assertParsesAsGo(t, cfg.Native.Output)
	if _, err := os.Stat(cfg.Native.Descriptor); err != nil {
		t.Fatalf("expected descriptor copy: %v", err)
	}

	browser := mustResult(t, report, TargetBrowser)
	if browser.Outcome != OutcomeGenerated || browser.Retry {
		t.Fatalf("unexpected browser result: %+v", browser)
	}
	jsSrc := readFile(t, cfg.Browser.Output)
	for _, want := range []string{
		"export const PLACEHOLDER = false;",
		"export const WIRE_FORMAT = 'protobuf';",
		"export class CursorMove {",
		"export class ProtoClient {",
		"window.ProtoClient = ProtoClient;",
		"window.CursorMove = CursorMove;",
	} {
		if !strings.Contains(jsSrc, want) {
			t.Fatalf("generated js missing %q", want)
		}
	}

	stamp, err := LoadStamp(cfg.Stamp)
	if err != nil {
		t.Fatalf("load stamp: %v", err)
	}
	entry := stamp.Targets[string(TargetNative)]
	if entry.Outcome != "generated" || entry.Retry || entry.RunID != report.RunID || entry.SchemaHash != report.SchemaHash {
		t.Fatalf("unexpected stamp entry: %+v", entry)
	}
}

func TestRunSkipsCurrentTargetsUnlessForced(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	runner := &fakeToolchain{}
	runGenerator(t, cfg, runner, false)
	calls := len(runner.calls)

	again := runGenerator(t, cfg, runner, false)
	for _, res := range again.Results {
		if !res.Skipped || res.Outcome != OutcomeGenerated {
			t.Fatalf("expected skipped generated result, got %+v", res)
		}
	}
	if len(runner.calls) != calls {
		t.Fatalf("skipped run must not invoke tools: %v", runner.calls)
	}

	forced := runGenerator(t, cfg, runner, true)
	for _, res := range forced.Results {
		if res.Skipped || res.Written {
			t.Fatalf("forced run over unchanged schema should regenerate identical output: %+v", res)
		}
	}

	if err := os.WriteFile(cfg.Schema, []byte(testSchema+"\nmessage Extra { bool on = 1; }\n"), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	changed := runGenerator(t, cfg, runner, false)
	native := mustResult(t, changed, TargetNative)
	if native.Skipped || !native.Written {
		t.Fatalf("schema change must regenerate: %+v", native)
	}
	if !strings.Contains(readFile(t, cfg.Native.Output), "type Extra struct") {
		t.Fatalf("regenerated output missing new message")
	}
}

func TestRunRegeneratesWhenOutputRemoved(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	runner := &fakeToolchain{}
	runGenerator(t, cfg, runner, false)
	if err := os.Remove(cfg.Browser.Output); err != nil {
		t.Fatalf("remove: %v", err)
	}

	report := runGenerator(t, cfg, runner, false)
	if !mustResult(t, report, TargetNative).Skipped {
		t.Fatalf("native output still present, expected skip")
	}
	if browser := mustResult(t, report, TargetBrowser); browser.Skipped || !browser.Written {
		t.Fatalf("browser output removed, expected regeneration: %+v", browser)
	}
}

func TestRunFallsBackWhenCompilerMissing(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	runner := &fakeToolchain{missing: map[string]bool{"protoc": true}}

	report := runGenerator(t, cfg, runner, false)
	for _, target := range []Target{TargetNative, TargetBrowser} {
		res := mustResult(t, report, target)
		if res.Outcome != OutcomeFallback || !res.Retry {
			t.Fatalf("%s: expected retryable fallback, got %+v", target, res)
		}
		if !errors.Is(res.Reason, toolchain.ErrToolMissing) {
			t.Fatalf("%s: reason should name the missing tool: %v", target, res.Reason)
		}
		if toolName(res.Reason) != "protoc" {
			t.Fatalf("%s: tool name %q", target, toolName(res.Reason))
		}
	}

	if report.WireMismatch() {
		t.Fatalf("both targets fell back to json and still match")
	}

	goSrc := readFile(t, cfg.Native.Output)
	for _, want := range []string{
		"// Outcome: fallback.",
		"const Placeholder = true",
		"fallback.Encode(Schema.Messages[1], m.Fields())",
		"type ChatLine struct",
	} {
		if !strings.Contains(goSrc, want) {
			t.Fatalf("fallback go missing %q", want)
		}
	}
	if strings.Contains(goSrc, "/wire\"") {
		t.Fatalf("fallback codec must not import the binary wire runtime")
	}
	assertParsesAsGo(t, cfg.Native.Output)
	if !strings.Contains(readFile(t, cfg.Browser.Output), "export const WIRE_FORMAT = 'json';") {
		t.Fatalf("fallback js must use the json wire format")
	}

	again := runGenerator(t, cfg, runner, false)
	if mustResult(t, again, TargetNative).Skipped {
		t.Fatalf("fallback results must not be skipped")
	}

	// Once the compiler shows up, the same schema upgrades to a full codec.
	upgraded := runGenerator(t, cfg, &fakeToolchain{}, false)
	if res := mustResult(t, upgraded, TargetNative); res.Outcome != OutcomeGenerated || res.Skipped {
		t.Fatalf("expected upgrade to generated, got %+v", res)
	}
}

func TestRunPlaceholderWhenSchemaMissing(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, "")
	runner := &fakeToolchain{}

	report := runGenerator(t, cfg, runner, false)
	if report.SchemaHash != "" {
		t.Fatalf("missing schema has no hash: %q", report.SchemaHash)
	}
	for _, target := range []Target{TargetNative, TargetBrowser} {
		res := mustResult(t, report, target)
		if res.Outcome != OutcomePlaceholder || res.Retry {
			t.Fatalf("%s: expected final placeholder, got %+v", target, res)
		}
		var se *schema.Error
		if !errors.As(res.Reason, &se) || se.Kind != schema.KindMissing {
			t.Fatalf("%s: unexpected reason %v", target, res.Reason)
		}
	}
	if len(runner.calls) != 0 {
		t.Fatalf("no tools should run without a schema: %v", runner.calls)
	}

	goSrc := readFile(t, cfg.Native.Output)
	for _, want := range []string{"const Placeholder = true", "type PlaceholderMessage struct", "// Outcome: placeholder."} {
		if !strings.Contains(goSrc, want) {
			t.Fatalf("placeholder go missing %q", want)
		}
	}
	assertParsesAsGo(t, cfg.Native.Output)
	if !strings.Contains(readFile(t, cfg.Browser.Output), "export class PlaceholderMessage {") {
		t.Fatalf("placeholder js missing placeholder class")
	}
}

func TestRunPlaceholderForEmptySchema(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, "syntax = \"proto3\";\npackage canvas;\n")

	report := runGenerator(t, cfg, &fakeToolchain{}, false)
	res := mustResult(t, report, TargetNative)
	if res.Outcome != OutcomePlaceholder || res.Retry {
		t.Fatalf("expected final placeholder, got %+v", res)
	}
	var se *schema.Error
	if !errors.As(res.Reason, &se) || se.Kind != schema.KindEmpty {
		t.Fatalf("unexpected reason %v", res.Reason)
	}
}

func TestRunPlaceholderWhenScanFails(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, "syntax = \"proto3\";\nmessage Broken { string a = x; }\n")
	runner := &fakeToolchain{failing: map[string]bool{"protoc": true}}

	report := runGenerator(t, cfg, runner, false)
	for _, target := range []Target{TargetNative, TargetBrowser} {
		res := mustResult(t, report, target)
		if res.Outcome != OutcomePlaceholder || !res.Retry {
			t.Fatalf("%s: expected retryable placeholder, got %+v", target, res)
		}
		var te *toolchain.ToolchainError
		if !errors.As(res.Reason, &te) || te.Missing() {
			t.Fatalf("%s: reason should carry the compiler failure: %v", target, res.Reason)
		}
	}
}

func TestRunTargetsAreIndependent(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	cfg.Browser.Protoc = "protoc-web"
	runner := &fakeToolchain{missing: map[string]bool{"protoc-web": true}}

	report := runGenerator(t, cfg, runner, false)
	if res := mustResult(t, report, TargetNative); res.Outcome != OutcomeGenerated {
		t.Fatalf("native should not be affected by the browser toolchain: %+v", res)
	}
	if res := mustResult(t, report, TargetBrowser); res.Outcome != OutcomeFallback || toolName(res.Reason) != "protoc-web" {
		t.Fatalf("browser should fall back: %+v", res)
	}
	if !report.Degraded() {
		t.Fatalf("report should be degraded")
	}
	if !report.WireMismatch() {
		t.Fatalf("generated native and fallback browser outputs cannot talk to each other")
	}
}

func TestRunDisabledTargetIsNotTouched(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	cfg.Browser.Enabled = false

	report := runGenerator(t, cfg, &fakeToolchain{}, false)
	if _, ok := report.Result(TargetBrowser); ok {
		t.Fatalf("disabled target must not produce a result")
	}
	if _, err := os.Stat(cfg.Browser.Output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("disabled target must not write output: %v", err)
	}
}

func TestRunVerifierRejectionFallsBack(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	cfg.Browser.Verify = []string{"node", "--check"}
	runner := &fakeToolchain{failing: map[string]bool{"node": true}}

	report := runGenerator(t, cfg, runner, false)
	res := mustResult(t, report, TargetBrowser)
	if res.Outcome != OutcomeFallback || !res.Retry || toolName(res.Reason) != "node" {
		t.Fatalf("expected fallback after verifier rejection, got %+v", res)
	}
	if !strings.Contains(readFile(t, cfg.Browser.Output), "WIRE_FORMAT = 'json'") {
		t.Fatalf("rejected generated client must not reach the output path")
	}
}

func TestRunUnsupportedConstructFallsBack(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema+"\nmessage Score { double value = 1; string label = 2; }\n")
	set := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{{
		Name:   proto.String("messages.proto"),
		Syntax: proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Score"),
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:   proto.String("value"),
				Number: proto.Int32(1),
				Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				Type:   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE.Enum(),
			}},
		}},
	}}}
	b, err := proto.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	report := runGenerator(t, cfg, &fakeToolchain{descriptor: b}, false)
	res := mustResult(t, report, TargetNative)
	var ue *schema.UnsupportedError
	if res.Outcome != OutcomeFallback || !errors.As(res.Reason, &ue) {
		t.Fatalf("expected fallback for unsupported field, got %+v", res)
	}
	goSrc := readFile(t, cfg.Native.Output)
	if !strings.Contains(goSrc, "type Score struct") || strings.Contains(goSrc, "Value ") {
		t.Fatalf("fallback should keep Score without its double field:\n%s", goSrc)
	}
}

func TestRunIgnoresCorruptStamp(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	if err := os.WriteFile(cfg.Stamp, []byte("targets = [[["), 0o644); err != nil {
		t.Fatalf("write stamp: %v", err)
	}
	report := runGenerator(t, cfg, &fakeToolchain{}, false)
	if res := mustResult(t, report, TargetNative); res.Skipped || res.Outcome != OutcomeGenerated {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := LoadStamp(cfg.Stamp); err != nil {
		t.Fatalf("stamp should be rewritten: %v", err)
	}
}

func TestRunReportsOutputErrors(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t, testSchema)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg.Native.Output = filepath.Join(blocker, "messages.gen.go")

	_, err := New(cfg, WithRunner(&fakeToolchain{})).Run(false)
	var oe *outputError
	if !errors.As(err, &oe) {
		t.Fatalf("expected output error, got %v", err)
	}
}

func TestRenderGoParsesForEveryOutcome(t *testing.T) {
	testlog.Start(t)
	s, _, err := schema.Parse("messages.proto", []byte(testSchema+"\nmessage Blob { bytes data = 1; repeated bytes parts = 2; repeated uint64 ids = 3; bool on = 4; uint32 n = 5; }\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cases := []Input{
		{Schema: s, Outcome: OutcomeGenerated, Hash: "abc", GoPackage: "canvaspb"},
		{Schema: s, Outcome: OutcomeFallback, GoPackage: "canvaspb"},
		{Schema: PlaceholderSchema("messages.proto"), Outcome: OutcomePlaceholder, GoPackage: "canvaspb"},
	}
	for _, in := range cases {
		out, err := RenderGo(in)
		if err != nil {
			t.Fatalf("%s: render: %v", in.Outcome, err)
		}
		if _, err := parser.ParseFile(token.NewFileSet(), "messages.gen.go", out, 0); err != nil {
			t.Fatalf("%s: parse: %v", in.Outcome, err)
		}
		js, err := RenderJS(in)
		if err != nil || len(js) == 0 {
			t.Fatalf("%s: render js: %v", in.Outcome, err)
		}
	}

	if _, err := RenderGo(Input{Schema: s, Outcome: OutcomeGenerated}); err == nil {
		t.Fatalf("expected error without a package name")
	}
}

func TestWriteIfChanged(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	written, err := writeIfChanged(path, []byte("one"))
	if err != nil || !written {
		t.Fatalf("first write: %v %v", written, err)
	}
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	written, err = writeIfChanged(path, []byte("one"))
	if err != nil || written {
		t.Fatalf("identical write: %v %v", written, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(old) {
		t.Fatalf("identical content must not touch the file")
	}

	if written, err = writeIfChanged(path, []byte("two")); err != nil || !written {
		t.Fatalf("changed write: %v %v", written, err)
	}
	if got := readFile(t, path); got != "two" {
		t.Fatalf("content %q", got)
	}
}

func TestOutcomeStrings(t *testing.T) {
	testlog.Start(t)
	for _, o := range []Outcome{OutcomeGenerated, OutcomeFallback, OutcomePlaceholder} {
		got, err := ParseOutcome(o.String())
		if err != nil || got != o {
			t.Fatalf("round trip %s: %v %v", o, got, err)
		}
	}
	if _, err := ParseOutcome("partial"); err == nil {
		t.Fatalf("expected unknown outcome error")
	}
}
