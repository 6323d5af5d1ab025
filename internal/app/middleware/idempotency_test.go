package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"staybook/internal/app/commands"
)

type stubStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func newStubStore() *stubStore {
	return &stubStore{items: make(map[string]IdempotencyRecord)}
}

func (s *stubStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *stubStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

type countingBus struct {
	calls  int
	result any
	err    error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	return b.result, b.err
}

type keyedCommand struct {
	key string
}

func (c keyedCommand) Key() string { return "test.command" }

func (c keyedCommand) IdempotencyKey() string { return c.key }

func (c keyedCommand) ResultPrototype() any { return &testResult{} }

type testResult struct {
	Value string `json:"value"`
}

type plainCommand struct{}

func (plainCommand) Key() string { return "test.plain" }

func TestIdempotency(t *testing.T) {
	t.Run("executes once and replays the stored result", func(t *testing.T) {
		inner := &countingBus{result: &testResult{Value: "done"}}
		bus := ChainCommands(inner, Idempotency(newStubStore(), nil))

		first, err := bus.Dispatch(context.Background(), keyedCommand{key: "k-1"})
		if err != nil {
			t.Fatalf("first dispatch returned error: %v", err)
		}
		second, err := bus.Dispatch(context.Background(), keyedCommand{key: "k-1"})
		if err != nil {
			t.Fatalf("second dispatch returned error: %v", err)
		}
		if inner.calls != 1 {
			t.Fatalf("handler ran %d times, want 1", inner.calls)
		}
		if first.(*testResult).Value != "done" || second.(*testResult).Value != "done" {
			t.Fatalf("unexpected results: %v / %v", first, second)
		}
	})

	t.Run("replays stored errors without re-executing", func(t *testing.T) {
		inner := &countingBus{err: errors.New("boom")}
		bus := ChainCommands(inner, Idempotency(newStubStore(), nil))

		if _, err := bus.Dispatch(context.Background(), keyedCommand{key: "k-1"}); err == nil {
			t.Fatalf("expected error from first dispatch")
		}
		_, err := bus.Dispatch(context.Background(), keyedCommand{key: "k-1"})
		if err == nil || err.Error() != "boom" {
			t.Fatalf("expected replayed error, got %v", err)
		}
		if inner.calls != 1 {
			t.Fatalf("handler ran %d times, want 1", inner.calls)
		}
	})

	t.Run("commands without a key pass through every time", func(t *testing.T) {
		inner := &countingBus{result: &testResult{}}
		bus := ChainCommands(inner, Idempotency(newStubStore(), nil))

		for i := 0; i < 3; i++ {
			if _, err := bus.Dispatch(context.Background(), keyedCommand{}); err != nil {
				t.Fatalf("dispatch returned error: %v", err)
			}
		}
		if inner.calls != 3 {
			t.Fatalf("handler ran %d times, want 3", inner.calls)
		}
	})

	t.Run("non idempotent commands are not intercepted", func(t *testing.T) {
		inner := &countingBus{result: &testResult{}}
		bus := ChainCommands(inner, Idempotency(newStubStore(), nil))

		for i := 0; i < 2; i++ {
			if _, err := bus.Dispatch(context.Background(), plainCommand{}); err != nil {
				t.Fatalf("dispatch returned error: %v", err)
			}
		}
		if inner.calls != 2 {
			t.Fatalf("handler ran %d times, want 2", inner.calls)
		}
	})
}
