package receiver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodgate/internal/archive"
	"bodgate/internal/bod"
	"bodgate/internal/broker"
	"bodgate/internal/config"
	"bodgate/internal/console"
	"bodgate/internal/dedup"
	"bodgate/internal/inbox"
	"bodgate/internal/logger"
)

var testReceivedAt = time.Date(2025, 1, 15, 9, 30, 45, 0, time.UTC)

type failingStore struct {
	err error
}

func (s *failingStore) Add(ctx context.Context, id string) (bool, error) { return false, s.err }
func (s *failingStore) Len(ctx context.Context) (int, error)            { return 0, s.err }

type capturingRepo struct {
	records []*archive.Record
	err     error
}

func (r *capturingRepo) Insert(ctx context.Context, rec *archive.Record) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *capturingRepo) ListRecent(ctx context.Context, limit int) ([]archive.Record, error) {
	return nil, nil
}

func (r *capturingRepo) CountByStatus(ctx context.Context) (map[int]int, error) {
	return nil, nil
}

type capturingProducer struct {
	events []broker.SubmissionEvent
	err    error
}

func (p *capturingProducer) Publish(ctx context.Context, topic string, event broker.SubmissionEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturingProducer) Close() error { return nil }

func testConfig(onStoreError string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{EndpointPath: "/boomi/orders"},
		Dedup:  config.DedupConfig{Backend: "memory", OnStoreError: onStoreError},
	}
}

func newTestService(t *testing.T, store dedup.Store, opts ...Option) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	writer, err := inbox.NewWriter(dir)
	require.NoError(t, err)
	presenter := console.New(&bytes.Buffer{}, "/boomi/orders")
	svc := NewService(store, writer, presenter, testConfig("deny"), logger.NopLogger(), opts...)
	return svc, dir
}

func submission(raw string) Submission {
	return Submission{
		Raw:        []byte(raw),
		ReceivedAt: testReceivedAt,
		Client:     "127.0.0.1",
		Headers: map[string]string{
			"X-Source":     "Mock-ION",
			"Content-Type": "application/xml",
		},
	}
}

const validOrder = `<SalesOrder><Header><OrderID>ORD-20250115-093045</OrderID></Header></SalesOrder>`

func inboxFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestProcess_Accepted(t *testing.T) {
	svc, dir := newTestService(t, dedup.NewMemoryStore())

	out := svc.Process(context.Background(), submission(validOrder))

	assert.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, AcceptedResponse{Status: "ok", OrderID: "ORD-20250115-093045"}, out.Body)
	assert.Equal(t, "ORD-20250115-093045", out.OrderID)

	names := inboxFiles(t, dir)
	assert.Contains(t, names, "20250115-093045_ORD-20250115-093045.xml")
	assert.Contains(t, names, "20250115-093045_ORD-20250115-093045.meta.json")

	// The stored artifact is the pretty rendering, not the raw bytes.
	content, err := os.ReadFile(filepath.Join(dir, "20250115-093045_ORD-20250115-093045.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "  <Header>")
}

func TestProcess_Duplicate(t *testing.T) {
	svc, dir := newTestService(t, dedup.NewMemoryStore())
	ctx := context.Background()

	first := svc.Process(ctx, submission(validOrder))
	require.Equal(t, http.StatusOK, first.Code)

	second := svc.Process(ctx, submission(validOrder))
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, DuplicateResponse{Status: "duplicate", OrderID: "ORD-20250115-093045"}, second.Body)

	// The duplicate is persisted as well: the trail shows every delivery.
	assert.Contains(t, inboxFiles(t, dir), "20250115-093045_ORD-20250115-093045.xml")
}

func TestProcess_UnknownIDNeverDuplicate(t *testing.T) {
	store := dedup.NewMemoryStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	raw := `<Note><Text>nothing to extract</Text></Note>`
	for i := 0; i < 3; i++ {
		out := svc.Process(ctx, submission(raw))
		assert.Equal(t, http.StatusOK, out.Code)
		assert.Equal(t, AcceptedResponse{Status: "ok", OrderID: "UNKNOWN"}, out.Body)
	}

	// Unknown ids are never added to the store.
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestProcess_Malformed(t *testing.T) {
	store := dedup.NewMemoryStore()
	svc, dir := newTestService(t, store)
	ctx := context.Background()

	out := svc.Process(ctx, submission("<broken><xml"))

	assert.Equal(t, http.StatusBadRequest, out.Code)
	body, ok := out.Body.(MalformedResponse)
	require.True(t, ok)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "malformed_xml", body.Reason)

	// Detail carries the parser message verbatim, without a prefix.
	_, parseErr := bod.Parse([]byte("<broken><xml"))
	require.Error(t, parseErr)
	assert.Equal(t, parseErr.Error(), body.Detail)
	assert.NotContains(t, body.Detail, "XML parse error")

	names := inboxFiles(t, dir)
	assert.Contains(t, names, "20250115-093045_malformed.xml")
	assert.Contains(t, names, "20250115-093045_malformed.meta.json")

	// Raw bytes are preserved exactly.
	content, err := os.ReadFile(filepath.Join(dir, "20250115-093045_malformed.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<broken><xml", string(content))

	// Malformed submissions never touch the dedup store.
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestProcess_MalformedDoesNotPoisonLaterSubmissions(t *testing.T) {
	svc, _ := newTestService(t, dedup.NewMemoryStore())
	ctx := context.Background()

	bad := svc.Process(ctx, submission("not xml at all"))
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	good := svc.Process(ctx, submission(validOrder))
	assert.Equal(t, http.StatusOK, good.Code)
}

func TestProcess_StoreErrorDeny(t *testing.T) {
	store := &failingStore{err: errors.New("store down")}
	svc, dir := newTestService(t, store)

	out := svc.Process(context.Background(), submission(validOrder))

	assert.Equal(t, http.StatusServiceUnavailable, out.Code)
	assert.Equal(t, InternalErrorResponse{Status: "error", Reason: "dedup_store_unavailable"}, out.Body)

	// A refused submission leaves nothing behind.
	assert.Empty(t, inboxFiles(t, dir))
}

func TestProcess_StoreErrorAllow(t *testing.T) {
	store := &failingStore{err: errors.New("store down")}
	dir := t.TempDir()
	writer, err := inbox.NewWriter(dir)
	require.NoError(t, err)
	presenter := console.New(&bytes.Buffer{}, "/boomi/orders")
	svc := NewService(store, writer, presenter, testConfig("allow"), logger.NopLogger())

	out := svc.Process(context.Background(), submission(validOrder))

	assert.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, inboxFiles(t, dir), "20250115-093045_ORD-20250115-093045.xml")
}

func TestProcess_ArchiveRecord(t *testing.T) {
	repo := &capturingRepo{}
	svc, _ := newTestService(t, dedup.NewMemoryStore(), WithArchive(repo))
	ctx := context.Background()

	svc.Process(ctx, submission(validOrder))
	svc.Process(ctx, submission(validOrder))
	svc.Process(ctx, submission("<broken"))

	require.Len(t, repo.records, 3)
	assert.Equal(t, 200, repo.records[0].Status)
	assert.Equal(t, "ORD-20250115-093045", repo.records[0].OrderID)
	assert.Equal(t, 409, repo.records[1].Status)
	assert.Equal(t, 400, repo.records[2].Status)
	assert.Equal(t, "malformed_xml", repo.records[2].Reason)
	assert.Empty(t, repo.records[2].OrderID)
}

func TestProcess_ArchiveFailureDoesNotChangeOutcome(t *testing.T) {
	repo := &capturingRepo{err: errors.New("db down")}
	svc, _ := newTestService(t, dedup.NewMemoryStore(), WithArchive(repo))

	out := svc.Process(context.Background(), submission(validOrder))
	assert.Equal(t, http.StatusOK, out.Code)
}

func TestProcess_ForwardsEvent(t *testing.T) {
	producer := &capturingProducer{}
	svc, _ := newTestService(t, dedup.NewMemoryStore(), WithForwarder(producer, "accepted_orders"))

	svc.Process(context.Background(), submission(validOrder))

	require.Len(t, producer.events, 1)
	event := producer.events[0]
	assert.Equal(t, "ORD-20250115-093045", event.OrderID)
	assert.Equal(t, 200, event.Status)
	assert.Equal(t, "Mock-ION", event.Source)
	assert.NotEmpty(t, event.ArtifactPath)
}

func TestProcess_ForwardFailureDoesNotChangeOutcome(t *testing.T) {
	producer := &capturingProducer{err: errors.New("broker down")}
	svc, _ := newTestService(t, dedup.NewMemoryStore(), WithForwarder(producer, "accepted_orders"))

	out := svc.Process(context.Background(), submission(validOrder))
	assert.Equal(t, http.StatusOK, out.Code)
}
