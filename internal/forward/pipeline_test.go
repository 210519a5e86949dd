package forward

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixgw/internal/connection"
	"fixgw/internal/dedup"
	"fixgw/internal/fix"
	"fixgw/internal/rpc"
	"fixgw/internal/translator"
)

const testPoll = 5 * time.Millisecond

type recordingSender struct {
	mu     sync.Mutex
	sent   []string
	failOn map[string]bool
}

func (s *recordingSender) Send(order fix.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[order.ClientOrderID()] {
		return errors.New("session rejected")
	}
	s.sent = append(s.sent, order.ClientOrderID())
	return nil
}

func (s *recordingSender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

type recordingRecorder struct {
	mu          sync.Mutex
	sent        []string
	sendFailed  []string
	translation []error
	notices     []string
}

func (r *recordingRecorder) RecordOrderSent(_ context.Context, key string, _ fix.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, key)
}

func (r *recordingRecorder) RecordSendFailed(_ context.Context, key string, _ fix.Order, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendFailed = append(r.sendFailed, key)
}

func (r *recordingRecorder) RecordTranslationFailed(_ context.Context, _ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translation = append(r.translation, err)
}

func (r *recordingRecorder) RecordErrorNotice(_ context.Context, notice string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

func (r *recordingRecorder) snapshot() (sent, failed []string, translation []error, notices []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...),
		append([]string(nil), r.sendFailed...),
		append([]error(nil), r.translation...),
		append([]string(nil), r.notices...)
}

// flappingTranslator 在首次翻译时模拟会话断开。
type flappingTranslator struct {
	translator.Translator
	conn *connection.Monitor
	once sync.Once
}

func (f *flappingTranslator) Translate(req *rpc.OrderRequest) (fix.Order, error) {
	f.once.Do(f.conn.SetDown)
	return f.Translator.Translate(req)
}

type harness struct {
	queue    *Queue
	conn     *connection.Monitor
	sender   *recordingSender
	recorder *recordingRecorder
	pipeline *Pipeline
}

func newHarness(t *testing.T, wrap func(translator.Translator, *connection.Monitor) translator.Translator) *harness {
	t.Helper()
	tr, err := translator.New(translator.Broker1, "", time.Now)
	require.NoError(t, err)

	h := &harness{
		queue:    NewQueue(),
		conn:     connection.NewMonitor(),
		sender:   &recordingSender{failOn: map[string]bool{}},
		recorder: &recordingRecorder{},
	}
	if wrap != nil {
		tr = wrap(tr, h.conn)
	}
	h.pipeline, err = NewPipeline(h.queue, h.conn, tr, h.sender, Options{
		PollInterval: testPoll,
		Recorder:     h.recorder,
	})
	require.NoError(t, err)
	return h
}

func (h *harness) enqueue(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, h.queue.Enqueue(orderReq(k)))
	}
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.pipeline.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Error("pipeline did not stop")
		}
	})
}

func (h *harness) waitSent(t *testing.T, want []string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.sender.Sent()) >= len(want)
	}, time.Second, testPoll)
	assert.Equal(t, want, h.sender.Sent())
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	_, err := NewPipeline(nil, connection.NewMonitor(), nil, nil, Options{})
	assert.Error(t, err)
}

func TestPipeline_FIFOWhileUp(t *testing.T) {
	h := newHarness(t, nil)
	h.conn.SetUp()
	h.enqueue(t, "1", "2", "3", "4", "5")
	h.start(t)

	h.waitSent(t, []string{"1", "2", "3", "4", "5"})
	sent, _, _, _ := h.recorder.snapshot()
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, sent)
}

func TestPipeline_GatedWhileDown(t *testing.T) {
	h := newHarness(t, nil)
	h.enqueue(t, "a", "b")
	h.start(t)

	time.Sleep(10 * testPoll)
	assert.Empty(t, h.sender.Sent())
	assert.Equal(t, 2, h.queue.Len())

	h.conn.SetUp()
	h.waitSent(t, []string{"a", "b"})
}

func TestPipeline_UpDownUpFlap(t *testing.T) {
	h := newHarness(t, nil)
	h.conn.SetUp()
	h.enqueue(t, "first", "second")
	h.conn.SetDown()
	h.start(t)

	time.Sleep(10 * testPoll)
	assert.Empty(t, h.sender.Sent())

	h.conn.SetUp()
	h.waitSent(t, []string{"first", "second"})

	time.Sleep(5 * testPoll)
	assert.Equal(t, []string{"first", "second"}, h.sender.Sent(), "no duplicate sends")
}

func TestPipeline_DownBetweenDequeueAndSendDefers(t *testing.T) {
	h := newHarness(t, func(tr translator.Translator, conn *connection.Monitor) translator.Translator {
		return &flappingTranslator{Translator: tr, conn: conn}
	})
	h.conn.SetUp()
	h.enqueue(t, "x", "y")
	h.start(t)

	require.Eventually(t, func() bool { return !h.conn.IsUp() }, time.Second, testPoll)
	time.Sleep(5 * testPoll)
	assert.Empty(t, h.sender.Sent())
	assert.Equal(t, 2, h.queue.Len())

	h.conn.SetUp()
	h.waitSent(t, []string{"x", "y"})
}

func TestPipeline_TranslationFailureIsIsolated(t *testing.T) {
	h := newHarness(t, nil)
	h.conn.SetUp()
	require.NoError(t, h.queue.Enqueue(orderReq("A")))
	require.NoError(t, h.queue.Enqueue(NewOrder("blank", &rpc.OrderRequest{Message: " "})))
	require.NoError(t, h.queue.Enqueue(orderReq("C")))
	h.start(t)

	h.waitSent(t, []string{"A", "C"})
	_, _, translation, _ := h.recorder.snapshot()
	require.Len(t, translation, 1)

	var te *translator.TranslationError
	require.True(t, errors.As(translation[0], &te))
	assert.Equal(t, "message", te.Field)
}

func TestPipeline_SendFailureDoesNotStopLoop(t *testing.T) {
	h := newHarness(t, nil)
	h.sender.failOn["B"] = true
	h.conn.SetUp()
	h.enqueue(t, "A", "B", "C")
	h.start(t)

	h.waitSent(t, []string{"A", "C"})
	require.Eventually(t, func() bool {
		_, failed, _, _ := h.recorder.snapshot()
		return len(failed) == 1
	}, time.Second, testPoll)
}

func TestPipeline_ErrorNoticeHasNoSessionEffect(t *testing.T) {
	h := newHarness(t, nil)
	h.conn.SetUp()
	require.NoError(t, h.queue.Enqueue(NewErrorNotice("stream broken")))
	h.enqueue(t, "after")
	h.start(t)

	h.waitSent(t, []string{"after"})
	_, _, _, notices := h.recorder.snapshot()
	assert.Equal(t, []string{"stream broken"}, notices)
}

func TestPipeline_DuplicateNeverReachesQueue(t *testing.T) {
	h := newHarness(t, nil)
	guard := dedup.NewGuard()
	h.conn.SetUp()

	for _, k := range []string{"A", "B", "A"} {
		if guard.CheckAndInsert(k) {
			continue
		}
		h.enqueue(t, k)
	}
	assert.Equal(t, 2, h.queue.Len())
	h.start(t)

	h.waitSent(t, []string{"A", "B"})
}

func TestPipeline_StopsOnCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.pipeline.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pipeline ignored cancellation")
	}
}
