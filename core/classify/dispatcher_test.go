package classify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"post-sieve/core/oracle/mocks"
	"post-sieve/core/prompt"
	"post-sieve/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ptr(s string) *string { return &s }

func recs(ids ...string) []record.Record {
	out := make([]record.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, record.Record{ID: id, User: ptr("user-" + id), Text: "post " + id})
	}
	return out
}

func idIn(id string) interface{} {
	return mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, fmt.Sprintf(`"id":%q`, id))
	})
}

// funcOracle answers with fn and counts calls.
type funcOracle struct {
	calls atomic.Int32
	fn    func(ctx context.Context, prompt string) (string, error)
}

func (f *funcOracle) Invoke(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	return f.fn(ctx, prompt)
}

// matchEven answers MATCHES for records whose id ends in an even digit.
func matchEven(_ context.Context, p string) (string, error) {
	last := p[strings.LastIndex(p, `"id":"`)+6:]
	d := last[strings.Index(last, `"`)-1]
	if (d-'0')%2 == 0 {
		return "MATCHES", nil
	}
	return "DOES NOT MATCH", nil
}

func sortedIDs(rs []record.Record) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	return ids
}

type failingSink struct{ err error }

func (f failingSink) Write(record.Record) error { return f.err }

func TestDispatcher_Run(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("Invoke", mock.Anything, idIn("b")).Return("DOES NOT MATCH", nil).Once()
		client.On("Invoke", mock.Anything, idIn("a")).Return("MATCHES", nil).Once()

		core, logs := observer.New(zapcore.InfoLevel)
		sink := &MemorySink{}
		d := New(client, prompt.Default(), sink, Config{Concurrency: 2}, zap.New(core))

		summary, err := d.Run(context.Background(), slices.Values(recs("b", "a")))
		require.NoError(t, err)

		assert.Equal(t, Summary{Submitted: 2, Completed: 2, Failed: 0, Matched: 1}, summary)
		require.Len(t, sink.Records(), 1)
		assert.Equal(t, "a", sink.Records()[0].ID)

		matches := logs.FilterMessage("Matching post").All()
		require.Len(t, matches, 1)
		assert.Equal(t, "a", matches[0].ContextMap()["id"])
		assert.Equal(t, "user-a", matches[0].ContextMap()["user"])
		client.AssertExpectations(t)
	})

	t.Run("same match set regardless of concurrency", func(t *testing.T) {
		input := recs("r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9", "r10", "r11")

		run := func(workers int) []string {
			sink := &MemorySink{}
			o := &funcOracle{fn: func(ctx context.Context, p string) (string, error) {
				time.Sleep(time.Millisecond)
				return matchEven(ctx, p)
			}}
			summary, err := New(o, nil, sink, Config{Concurrency: workers}, nil).
				Run(context.Background(), slices.Values(input))
			require.NoError(t, err)
			assert.Equal(t, len(input), summary.Submitted)
			assert.Equal(t, len(input), summary.Completed)
			return sortedIDs(sink.Records())
		}

		sequential := run(1)
		assert.Equal(t, []string{"r0", "r10", "r2", "r4", "r6", "r8"}, sequential)
		assert.Equal(t, sequential, run(8))
	})

	t.Run("sequential run preserves input order", func(t *testing.T) {
		sink := &MemorySink{}
		o := &funcOracle{fn: func(context.Context, string) (string, error) { return "MATCHES", nil }}
		_, err := New(o, nil, sink, Config{Concurrency: 1}, nil).
			Run(context.Background(), slices.Values(recs("c", "a", "b")))
		require.NoError(t, err)

		ids := []string{}
		for _, r := range sink.Records() {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"c", "a", "b"}, ids)
	})

	t.Run("failures are isolated", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("Invoke", mock.Anything, idIn("ok")).Return("MATCHES", nil)
		client.On("Invoke", mock.Anything, idIn("down")).Return("", errors.New("connection reset"))
		client.On("Invoke", mock.Anything, idIn("vague")).Return("I am not sure", nil)
		client.On("Invoke", mock.Anything, idIn("empty")).Return("", nil)

		core, logs := observer.New(zapcore.ErrorLevel)
		sink := &MemorySink{}
		d := New(client, nil, sink, Config{Concurrency: 3}, zap.New(core))

		summary, err := d.Run(context.Background(), slices.Values(recs("ok", "down", "vague", "empty")))
		require.NoError(t, err)

		assert.Equal(t, 4, summary.Submitted)
		assert.Equal(t, 1, summary.Completed)
		assert.Equal(t, 3, summary.Failed)
		assert.Equal(t, 1, summary.Matched)
		assert.Equal(t, summary.Submitted, summary.Completed+summary.Failed)
		assert.Equal(t, []string{"ok"}, sortedIDs(sink.Records()))
		assert.Equal(t, 3, logs.FilterMessage("Classification failed").Len())
	})

	t.Run("sink failure stops the run", func(t *testing.T) {
		o := &funcOracle{fn: func(context.Context, string) (string, error) { return "MATCHES", nil }}
		d := New(o, nil, failingSink{err: errors.New("disk full")}, Config{Concurrency: 1}, nil)

		input := recs("a", "b", "c", "d", "e", "f")
		summary, err := d.Run(context.Background(), slices.Values(input))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSink)

		assert.Less(t, summary.Submitted, len(input))
		assert.Zero(t, summary.Matched)
		assert.Equal(t, summary.Submitted, summary.Completed+summary.Failed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		o := &funcOracle{fn: func(context.Context, string) (string, error) { return "MATCHES", nil }}
		summary, err := New(o, nil, &MemorySink{}, Config{Concurrency: 2}, nil).
			Run(ctx, slices.Values(recs("a", "b")))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, summary.Submitted)
		assert.Zero(t, o.calls.Load())
	})

	t.Run("never exceeds concurrency", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		o := &funcOracle{fn: func(context.Context, string) (string, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return "DOES NOT MATCH", nil
		}}

		input := recs("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
		summary, err := New(o, nil, &MemorySink{}, Config{Concurrency: 3}, nil).
			Run(context.Background(), slices.Values(input))
		require.NoError(t, err)
		assert.Equal(t, 10, summary.Completed)
		assert.LessOrEqual(t, peak.Load(), int32(3))
	})

	t.Run("dedupe shares identical prompts", func(t *testing.T) {
		o := &funcOracle{fn: func(context.Context, string) (string, error) { return "MATCHES", nil }}
		dup := record.Record{ID: "same", Text: "identical"}
		input := []record.Record{dup, dup, dup}

		sink := &MemorySink{}
		summary, err := New(o, nil, sink, Config{Concurrency: 1, Dedupe: true}, nil).
			Run(context.Background(), slices.Values(input))
		require.NoError(t, err)
		assert.Equal(t, int32(1), o.calls.Load())
		assert.Equal(t, 3, summary.Matched)
		assert.Len(t, sink.Records(), 3)
	})

	t.Run("dedupe disabled calls every time", func(t *testing.T) {
		o := &funcOracle{fn: func(context.Context, string) (string, error) { return "MATCHES", nil }}
		dup := record.Record{ID: "same", Text: "identical"}

		_, err := New(o, nil, &MemorySink{}, Config{Concurrency: 1}, nil).
			Run(context.Background(), slices.Values([]record.Record{dup, dup}))
		require.NoError(t, err)
		assert.Equal(t, int32(2), o.calls.Load())
	})

	t.Run("progress is logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		o := &funcOracle{fn: func(context.Context, string) (string, error) { return "NO_MATCH", nil }}
		_, err := New(o, nil, &MemorySink{}, Config{Concurrency: 1, ProgressEvery: 2}, zap.New(core)).
			Run(context.Background(), slices.Values(recs("a", "b", "c", "d", "e")))
		require.NoError(t, err)
		assert.Equal(t, 2, logs.FilterMessage("Classification progress").Len())
	})
}

func TestDispatcher_WritesCompleteLines(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	w := record.NewWriter(&lockedBuffer{buf: &buf, mu: &mu}, true)

	o := &funcOracle{fn: matchEven}
	ids := make([]string, 0, 40)
	for i := range 40 {
		ids = append(ids, fmt.Sprintf("p%d", i))
	}

	summary, err := New(o, nil, w, Config{Concurrency: 8}, nil).
		Run(context.Background(), slices.Values(recs(ids...)))
	require.NoError(t, err)
	assert.Equal(t, 20, summary.Matched)

	mu.Lock()
	defer mu.Unlock()
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 20)
	for _, line := range lines {
		rec, err := record.Decode([]byte(line))
		require.NoError(t, err, line)
		assert.NotEmpty(t, rec.ID)
	}
}

type lockedBuffer struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

// cancelAfter forwards to a sink and cancels the run once n records landed.
type cancelAfter struct {
	Sink
	n      int
	writes int
	cancel context.CancelFunc
}

func (c *cancelAfter) Write(rec record.Record) error {
	if err := c.Sink.Write(rec); err != nil {
		return err
	}
	c.writes++
	if c.writes == c.n {
		c.cancel()
	}
	return nil
}

func TestDispatcher_CancelMidRunLeavesCompleteLines(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &cancelAfter{
		Sink:   record.NewWriter(&lockedBuffer{buf: &buf, mu: &mu}, true),
		n:      3,
		cancel: cancel,
	}

	// m* records match at once; every other record waits until the run is cancelled.
	o := &funcOracle{fn: func(ctx context.Context, p string) (string, error) {
		if strings.Contains(p, `"id":"m`) {
			return "MATCHES", nil
		}
		<-ctx.Done()
		return "", ctx.Err()
	}}

	ids := []string{"m0", "m1", "m2", "m3", "m4"}
	for i := range 35 {
		ids = append(ids, fmt.Sprintf("w%d", i))
	}

	summary, err := New(o, nil, sink, Config{Concurrency: 8}, nil).
		Run(ctx, slices.Values(recs(ids...)))
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, summary.Submitted, summary.Completed+summary.Failed)
	assert.Less(t, summary.Submitted, len(ids))
	assert.GreaterOrEqual(t, summary.Matched, 3)
	assert.Positive(t, summary.Failed)

	mu.Lock()
	defer mu.Unlock()
	require.True(t, strings.HasSuffix(buf.String(), "\n"))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, summary.Matched)
	for _, line := range lines {
		rec, err := record.Decode([]byte(line))
		require.NoError(t, err, line)
		assert.True(t, strings.HasPrefix(rec.ID, "m"), rec.ID)
	}
}
