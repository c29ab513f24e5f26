package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestBackoffBounds(t *testing.T) {
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoff(10*time.Millisecond, 80*time.Millisecond, attempt)
		if d <= 0 || d > 80*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v out of bounds", attempt, d)
		}
	}
}

func TestEncode(t *testing.T) {
	b, err := encode(map[string]int{"n": 1})
	if err != nil || string(b) != `{"n":1}` {
		t.Fatalf("encode map = %s, %v", b, err)
	}
	b, _ = encode("raw")
	if string(b) != "raw" {
		t.Fatalf("strings must pass through, got %s", b)
	}
}

type orderHook struct {
	name  string
	trail *[]string
	fail  bool
}

func (h orderHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	*h.trail = append(*h.trail, "before:"+h.name)
	if h.fail {
		return ctx, km, data, errors.New("rejected")
	}
	return ctx, km, append(data, h.name...), nil
}

func (h orderHook) AfterHandle(context.Context, string, kafka.Message, []byte, error) {
	*h.trail = append(*h.trail, "after:"+h.name)
}

func (h orderHook) OnError(context.Context, string, kafka.Message, []byte, error) {
	*h.trail = append(*h.trail, "error:"+h.name)
}

func TestHookChainOrder(t *testing.T) {
	var trail []string
	chain := NewHookChain(orderHook{name: "a", trail: &trail}, nil, orderHook{name: "b", trail: &trail})

	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "xab" {
		t.Fatalf("payload not threaded through hooks: %q", data)
	}
	chain.AfterHandle(context.Background(), "t", kafka.Message{}, data, nil)

	want := []string{"before:a", "before:b", "after:b", "after:a"}
	if len(trail) != len(want) {
		t.Fatalf("trail = %v want %v", trail, want)
	}
	for i := range want {
		if trail[i] != want[i] {
			t.Fatalf("trail = %v want %v", trail, want)
		}
	}
}

type panicHook struct{ NoopHook }

func (panicHook) BeforeHandle(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
	panic("boom")
}

func TestHookChainRecoversPanics(t *testing.T) {
	chain := NewHookChain(panicHook{})
	_, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var he *HookError
	if !errors.As(err, &he) || he.Code != "ERR_PANIC" {
		t.Fatalf("want ERR_PANIC HookError, got %v", err)
	}
}

func TestHookChainStopsOnError(t *testing.T) {
	var trail []string
	chain := NewHookChain(orderHook{name: "a", trail: &trail, fail: true}, orderHook{name: "b", trail: &trail})
	if _, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil); err == nil {
		t.Fatalf("expected error")
	}
	for _, s := range trail {
		if s == "before:b" {
			t.Fatalf("second hook should not run after a failure: %v", trail)
		}
	}
}
