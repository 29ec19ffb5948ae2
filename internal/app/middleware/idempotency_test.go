package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatbook/internal/app/commands"
	"flatbook/internal/app/middleware"
	"flatbook/internal/infra/storage/memory"
)

type testResult struct {
	Value string `json:"value"`
}

type testCommand struct {
	key  string
	idem string
}

func (c testCommand) Key() string            { return c.key }
func (c testCommand) IdempotencyKey() string { return c.idem }
func (c testCommand) ResultPrototype() any   { return &testResult{} }

type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Handle(ctx context.Context, cmd testCommand) (*testResult, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return &testResult{Value: "ok"}, nil
}

func newIdempotentBus(t *testing.T, handler *countingHandler) commands.Bus {
	t.Helper()
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, "test.command", handler)
	return middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(0), nil))
}

func TestIdempotencyReplaysResult(t *testing.T) {
	handler := &countingHandler{}
	bus := newIdempotentBus(t, handler)
	cmd := testCommand{key: "test.command", idem: "idem-1"}

	first, err := commands.Dispatch[testCommand, *testResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	second, err := commands.Dispatch[testCommand, *testResult](context.Background(), bus, cmd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyReplaysFailure(t *testing.T) {
	handler := &countingHandler{err: errors.New("boom")}
	bus := newIdempotentBus(t, handler)
	cmd := testCommand{key: "test.command", idem: "idem-1"}

	_, err := commands.Dispatch[testCommand, *testResult](context.Background(), bus, cmd)
	require.Error(t, err)
	_, err = commands.Dispatch[testCommand, *testResult](context.Background(), bus, cmd)
	require.EqualError(t, err, "boom")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencySkippedWithoutKey(t *testing.T) {
	handler := &countingHandler{}
	bus := newIdempotentBus(t, handler)
	cmd := testCommand{key: "test.command"}

	_, err := commands.Dispatch[testCommand, *testResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	_, err = commands.Dispatch[testCommand, *testResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, handler.calls)
}
