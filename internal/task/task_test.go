package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEnvelope(TaskTestCelery, "main-queue", TestCeleryArgs{Word: "hello"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, env.ID)
	assert.False(t, env.EnqueuedAt.IsZero())

	data, err := env.Encode()
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, env.ID, decoded.ID)
	assert.Equal(t, env.Name, decoded.Name)
	assert.Equal(t, env.Queue, decoded.Queue)
	assert.JSONEq(t, `{"word":"hello"}`, string(decoded.Args))
}

func TestDecodeEnvelope_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "nope"},
		{"missing name", `{"id":"` + uuid.NewString() + `","queue":"q"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(tc.data))
			assert.ErrorIs(t, err, ErrInvalidEnvelope)
		})
	}
}

func TestNewEnvelope_UnencodableArgs(t *testing.T) {
	_, err := NewEnvelope("bad", "q", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestRegistry_Execute(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	env, err := NewEnvelope(TaskTestCelery, DefaultQueue, TestCeleryArgs{Word: "ping"})
	require.NoError(t, err)

	result, err := r.Execute(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, "test task return ping", result)

	_, err = r.Execute(context.Background(), &Envelope{Name: "missing"})
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestTestCelery_BadArgs(t *testing.T) {
	_, err := TestCelery(context.Background(), json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidEnvelope)
}

func TestRouter(t *testing.T) {
	r := NewRouter(map[string]string{"a": "queue-a", "b": ""}, "")

	assert.Equal(t, "queue-a", r.Queue("a"))
	assert.Equal(t, DefaultQueue, r.Queue("b"))
	assert.Equal(t, DefaultQueue, r.Queue("unrouted"))
	assert.ElementsMatch(t, []string{DefaultQueue, "queue-a"}, r.Queues())

	custom := NewRouter(DefaultRoutes(), "other")
	assert.Equal(t, DefaultQueue, custom.Queue(TaskTestCelery))
	assert.Equal(t, "other", custom.Queue("x"))
}

type recordingPublisher struct {
	published []*Envelope
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, env *Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, env)
	return nil
}

func TestDispatcher_Dispatch(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, NewRouter(DefaultRoutes(), "fallback"), setupTestLogger())

	env, err := d.Dispatch(context.Background(), TaskTestCelery, TestCeleryArgs{Word: "w"})
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Same(t, env, pub.published[0])
	assert.Equal(t, DefaultQueue, env.Queue)

	env, err = d.Dispatch(context.Background(), "other_task", nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback", env.Queue)
	assert.Empty(t, env.Args)
}

func TestDispatcher_PublishError(t *testing.T) {
	boom := errors.New("broker down")
	d := NewDispatcher(&recordingPublisher{err: boom}, NewRouter(nil, ""), setupTestLogger())

	env, err := d.Dispatch(context.Background(), TaskTestCelery, nil)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, env)
}
