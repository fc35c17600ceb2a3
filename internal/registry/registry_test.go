package registry

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/danmuck/canvasproto/internal/testutil/testlog"
)

type note struct {
	Text string
}

func newNote(data map[string]any) (*note, error) {
	text, err := AsString(data["text"])
	if err != nil {
		return nil, FieldError("Note", "text", err)
	}
	return &note{Text: text}, nil
}

func decodeNote(b []byte) (*note, error) {
	return &note{Text: string(b)}, nil
}

func (n *note) TypeName() string { return "Note" }
func (n *note) Encode() ([]byte, error) { return []byte(n.Text), nil }
func (n *note) Fields() map[string]any { return map[string]any{"text": n.Text} }
func (n *note) Decode(b []byte) error {
	n.Text = string(b)
	return nil
}

func (n *note) String() string { return Describe("Note", []string{"text"}, n.Fields()) }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Build(false, TypeOf("Note", newNote, decodeNote))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return r
}

func TestRegistryDispatch(t *testing.T) {
	testlog.Start(t)
	r := newTestRegistry(t)

	msg, err := r.Create("Note", map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := r.Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := r.Decode("Note", b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Fields()["text"] != "hi" || out.TypeName() != "Note" {
		t.Fatalf("unexpected decode: %+v", out.Fields())
	}

	var dst note
	if err := r.DecodeInto(&dst, []byte("there")); err != nil {
		t.Fatalf("decode into: %v", err)
	}
	if dst.Text != "there" {
		t.Fatalf("unexpected decode into: %+v", dst)
	}
	if r.IsPlaceholder() {
		t.Fatalf("registry should not report placeholder mode")
	}
	if got := r.Types(); len(got) != 1 || got[0] != "Note" {
		t.Fatalf("unexpected types: %v", got)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	testlog.Start(t)
	r := newTestRegistry(t)

	_, err := r.Decode("Missing", nil)
	var ute *UnknownTypeError
	if !errors.As(err, &ute) || ute.Name != "Missing" || !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if _, err := r.Create("Missing", nil); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType from create, got %v", err)
	}
}

func TestRegistryContractErrors(t *testing.T) {
	testlog.Start(t)
	r := newTestRegistry(t)

	var ce *ContractError
	if _, err := r.Encode(struct{}{}); !errors.As(err, &ce) || ce.Op != "encode" {
		t.Fatalf("expected encode ContractError, got %v", err)
	}
	if _, err := r.Encode(nil); !errors.Is(err, ErrContract) {
		t.Fatalf("expected ErrContract for nil, got %v", err)
	}
	if err := r.DecodeInto(note{}, nil); !errors.As(err, &ce) || ce.Op != "decode" {
		t.Fatalf("expected decode ContractError for value receiver, got %v", err)
	}
	_, err := r.Create("Note", map[string]any{"text": 5})
	if !errors.As(err, &ce) || !errors.Is(err, ErrValue) {
		t.Fatalf("expected create ContractError wrapping ErrValue, got %v", err)
	}
}

func TestRegistryFreezeAndDuplicates(t *testing.T) {
	testlog.Start(t)
	r := New(true)
	typ := TypeOf("Note", newNote, decodeNote)
	if err := r.Register(typ); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(typ); !errors.Is(err, ErrTypeExists) {
		t.Fatalf("expected ErrTypeExists, got %v", err)
	}
	if err := r.Register(Type{Name: "Bare"}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	r.Freeze()
	r.Freeze()
	other := typ
	other.Name = "Other"
	if err := r.Register(other); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
	if !r.IsPlaceholder() {
		t.Fatalf("expected placeholder registry")
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	testlog.Start(t)
	r := newTestRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Decode("Note", []byte("x")); err != nil {
				t.Errorf("decode: %v", err)
			}
			_ = r.Types()
		}()
	}
	wg.Wait()
}

func TestValueCoercion(t *testing.T) {
	testlog.Start(t)
	if v, err := AsInt32(float64(-7)); err != nil || v != -7 {
		t.Fatalf("AsInt32(float64) = %d, %v", v, err)
	}
	if v, err := AsInt32(json.Number("42")); err != nil || v != 42 {
		t.Fatalf("AsInt32(json.Number) = %d, %v", v, err)
	}
	if _, err := AsInt32(int64(math.MaxInt32) + 1); !errors.Is(err, ErrValue) {
		t.Fatalf("expected range error, got %v", err)
	}
	if _, err := AsInt32(1.5); !errors.Is(err, ErrValue) {
		t.Fatalf("expected fractional error, got %v", err)
	}
	if v, err := AsInt64("-9223372036854775808"); err != nil || v != math.MinInt64 {
		t.Fatalf("AsInt64(string) = %d, %v", v, err)
	}
	if v, err := AsUint64("18446744073709551615"); err != nil || v != math.MaxUint64 {
		t.Fatalf("AsUint64(string) = %d, %v", v, err)
	}
	if _, err := AsUint32(-1); !errors.Is(err, ErrValue) {
		t.Fatalf("expected negative uint error, got %v", err)
	}
	if v, err := AsBool(nil); err != nil || v {
		t.Fatalf("AsBool(nil) = %v, %v", v, err)
	}
	if b, err := AsBytes("aGk="); err != nil || string(b) != "hi" {
		t.Fatalf("AsBytes(base64) = %q, %v", b, err)
	}
	if _, err := AsString(3); !errors.Is(err, ErrValue) {
		t.Fatalf("expected string type error, got %v", err)
	}

	list, err := AsList([]any{float64(1), "2", json.Number("3")}, AsInt32)
	if err != nil || len(list) != 3 || list[2] != 3 {
		t.Fatalf("AsList([]any) = %v, %v", list, err)
	}
	list, err = AsList([]int{4, 5}, AsInt32)
	if err != nil || len(list) != 2 || list[1] != 5 {
		t.Fatalf("AsList([]int) = %v, %v", list, err)
	}
	if _, err := AsList("nope", AsInt32); !errors.Is(err, ErrValue) {
		t.Fatalf("expected list type error, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	testlog.Start(t)
	got := Describe("CursorMove", []string{"user_id", "x"}, map[string]any{
		"user_id": "u1",
		"x":       int32(3),
		"extra":   []byte{0xAB},
	})
	want := `CursorMove{user_id:"u1" x:3 extra:0xab}`
	if got != want {
		t.Fatalf("Describe = %s, want %s", got, want)
	}
	n := &note{Text: "a b"}
	if !strings.Contains(n.String(), `"a b"`) {
		t.Fatalf("unexpected note string %s", n.String())
	}
}
