package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicescore/voicescore/internal/api/handler"
	"github.com/voicescore/voicescore/internal/api/middleware"
	"github.com/voicescore/voicescore/internal/stream"
	"github.com/voicescore/voicescore/internal/team"
)

// syncRecorder is a ResponseWriter safe to read while the handler is still
// streaming into it.
type syncRecorder struct {
	mu     sync.Mutex
	header http.Header
	status int
	body   bytes.Buffer
}

func newSyncRecorder() *syncRecorder {
	return &syncRecorder{header: make(http.Header)}
}

func (r *syncRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header
}

func (r *syncRecorder) WriteHeader(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *syncRecorder) Flush() {}

func (r *syncRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func (r *syncRecorder) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func TestStream_InitialBoardAndUpdates(t *testing.T) {
	repo := team.NewMemoryRepository()
	_, err := repo.ReplaceGeneration(context.Background(), ownerID, []team.Team{
		{Name: team.Name(1), Members: []int{1}},
	})
	require.NoError(t, err)

	broadcaster := stream.NewBroadcaster()
	h := handler.NewStreamHandler(repo, broadcaster)

	ctx, cancel := context.WithCancel(middleware.WithIdentity(context.Background(), testIdentity()))
	req := httptest.NewRequest(http.MethodGet, "/teams/stream", nil).WithContext(ctx)
	rec := newSyncRecorder()

	done := make(chan struct{})
	go func() {
		h.Serve(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return strings.Count(rec.String(), "event: teams") == 1
	}, time.Second, 5*time.Millisecond, "expected the initial board on connect")
	assert.Contains(t, rec.String(), "Команда 1")

	require.Eventually(t, func() bool {
		return broadcaster.SubscriberCount(ownerID) == 1
	}, time.Second, 5*time.Millisecond)
	broadcaster.Publish(ownerID, stream.Notice{Event: "teams"})

	require.Eventually(t, func() bool {
		return strings.Count(rec.String(), "event: teams") == 2
	}, time.Second, 5*time.Millisecond, "expected a board frame after a change notice")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not stop after the client disconnected")
	}

	assert.Equal(t, http.StatusOK, rec.Status())
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Zero(t, broadcaster.SubscriberCount(ownerID))
}

func TestStream_IgnoresForeignNotices(t *testing.T) {
	repo := team.NewMemoryRepository()
	broadcaster := stream.NewBroadcaster()
	h := handler.NewStreamHandler(repo, broadcaster)

	ctx, cancel := context.WithCancel(middleware.WithIdentity(context.Background(), testIdentity()))
	req := httptest.NewRequest(http.MethodGet, "/teams/stream", nil).WithContext(ctx)
	rec := newSyncRecorder()

	done := make(chan struct{})
	go func() {
		h.Serve(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return broadcaster.SubscriberCount(ownerID) == 1
	}, time.Second, 5*time.Millisecond)

	broadcaster.Publish("someone-else", stream.Notice{Event: "teams"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, strings.Count(rec.String(), "event: teams"))

	cancel()
	<-done
}
