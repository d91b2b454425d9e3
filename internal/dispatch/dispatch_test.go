package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/logviewer-mcp/internal/notify"
	"github.com/usestring/logviewer-mcp/internal/textsource"
)

func startQueue(t *testing.T, capacity int) *Queue {
	t.Helper()
	q := New(capacity, nil)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = q.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return q
}

func TestQueue_FIFO(t *testing.T) {
	q := startQueue(t, 4)
	ctx := context.Background()

	var mu sync.Mutex
	var order []int
	for i := range 20 {
		err := q.Enqueue(ctx, Command{Name: "n", Run: func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}})
		require.NoError(t, err)
	}
	require.NoError(t, q.Flush(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 20)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestQueue_ErrorDoesNotStopConsumer(t *testing.T) {
	q := startQueue(t, 0)
	ctx := context.Background()

	ran := false
	require.NoError(t, q.Enqueue(ctx, Command{Name: "fail", Run: func(context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, q.Enqueue(ctx, Command{Name: "ok", Run: func(context.Context) error {
		ran = true
		return nil
	}}))
	require.NoError(t, q.Flush(ctx))
	assert.True(t, ran)
}

func TestQueue_StoppedAfterRunExits(t *testing.T) {
	q := New(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, q.Run(ctx))

	assert.ErrorIs(t, q.Enqueue(context.Background(), Command{}), ErrStopped)
	assert.ErrorIs(t, q.Flush(context.Background()), ErrStopped)
}

func TestQueue_FlushHonoursContext(t *testing.T) {
	q := New(1, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.Flush(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMoveCommand(t *testing.T) {
	q := startQueue(t, 0)
	ctx := context.Background()
	src := textsource.NewBuffer("alpha\nbeta\n")
	sink := notify.NewBuffer()

	require.NoError(t, q.Enqueue(ctx, MoveCommand(src, sink, Move{Start: 6, End: 10, Message: "Line 2: beta"}, "Error moving to match")))
	require.NoError(t, q.Enqueue(ctx, AnnounceCommand(sink, "Found 1 matches.")))
	require.NoError(t, q.Flush(ctx))

	assert.True(t, src.Focused())
	assert.Equal(t, textsource.Selection{Start: 6, End: 10}, src.Selection())
	assert.Equal(t, []string{"Line 2: beta", "Found 1 matches."}, sink.Take())
}

func TestMoveCommand_CollapsedCaret(t *testing.T) {
	q := startQueue(t, 0)
	ctx := context.Background()
	src := textsource.NewBuffer("alpha\nbeta\n")
	require.NoError(t, src.SetSelection(1, 3))
	sink := notify.NewBuffer()

	require.NoError(t, q.Enqueue(ctx, MoveCommand(src, sink, Move{Start: 4, End: 4, Message: "Bookmark 1"}, "")))
	require.NoError(t, q.Flush(ctx))

	assert.Equal(t, textsource.Selection{Start: 4, End: 4}, src.Selection())
	assert.Equal(t, []string{"Bookmark 1"}, sink.Take())
}

type failingSource struct{ *textsource.Buffer }

func (failingSource) SetSelection(int, int) error { return errors.New("gone") }

func TestMoveCommand_AnnouncesFailure(t *testing.T) {
	q := startQueue(t, 0)
	ctx := context.Background()
	sink := notify.NewBuffer()

	src := failingSource{textsource.NewBuffer("alpha")}
	require.NoError(t, q.Enqueue(ctx, MoveCommand(src, sink, Move{Start: 0, End: 5, Message: "Line 1: alpha"}, "Error moving to match")))
	require.NoError(t, q.Flush(ctx))

	assert.Equal(t, []string{"Error moving to match"}, sink.Take())
}
