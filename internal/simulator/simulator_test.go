package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodgate/internal/config"
	"bodgate/internal/simulator/client"
)

var idPattern = regexp.MustCompile(`^(ORD|BULK|AUTO)-\d{8}-\d{6}`)

type fakeEndpoint struct {
	mu       sync.Mutex
	seen     map[string]bool
	payloads []string
}

func newFakeEndpoint() *fakeEndpoint {
	return &fakeEndpoint{seen: make(map[string]bool)}
}

func (f *fakeEndpoint) handler() http.HandlerFunc {
	orderID := regexp.MustCompile(`<OrderID>([^<]+)</OrderID>`)
	return func(w http.ResponseWriter, r *http.Request) {
		body := new(bytes.Buffer)
		body.ReadFrom(r.Body)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.payloads = append(f.payloads, body.String())

		m := orderID.FindStringSubmatch(body.String())
		if m == nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"status": "error", "reason": "malformed_xml"})
			return
		}

		id := m[1]
		if f.seen[id] {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"status": "duplicate", "order_id": id})
			return
		}
		f.seen[id] = true
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "order_id": id})
	}
}

func newTestSimulator(t *testing.T, url string) (*Simulator, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	sim := New(config.SimulatorConfig{
		URL:                 url,
		BulkCount:           3,
		AutoIntervalSeconds: 30,
		TimeoutSeconds:      5,
	}, out)
	return sim, out
}

func TestNewOrderID_MatchesPattern(t *testing.T) {
	sim, _ := newTestSimulator(t, "http://localhost:0")
	sim.now = func() time.Time { return time.Date(2025, 1, 15, 9, 30, 45, 0, time.UTC) }

	for _, prefix := range []string{"ORD", "BULK", "AUTO"} {
		id := sim.NewOrderID(prefix)
		assert.Equal(t, fmt.Sprintf("%s-20250115-093045", prefix), id)
		assert.Regexp(t, idPattern, id)
	}
}

func TestSendNormal(t *testing.T) {
	endpoint := newFakeEndpoint()
	server := httptest.NewServer(endpoint.handler())
	defer server.Close()

	sim, out := newTestSimulator(t, server.URL)
	res := sim.SendNormal(context.Background())

	assert.Equal(t, client.Accepted, res.Kind)
	assert.Contains(t, out.String(), "[200] accepted")
	assert.Contains(t, endpoint.payloads[0], "<CustomerID>CUST-0001</CustomerID>")
}

func TestSendDuplicate_ReusesLastID(t *testing.T) {
	endpoint := newFakeEndpoint()
	server := httptest.NewServer(endpoint.handler())
	defer server.Close()

	sim, out := newTestSimulator(t, server.URL)
	ctx := context.Background()

	first := sim.SendNormal(ctx)
	require.Equal(t, client.Accepted, first.Kind)

	second := sim.SendDuplicate(ctx)
	assert.Equal(t, client.Duplicate, second.Kind)
	assert.Contains(t, out.String(), "[409] duplicate")
}

func TestSendDuplicate_NothingSentYet(t *testing.T) {
	endpoint := newFakeEndpoint()
	server := httptest.NewServer(endpoint.handler())
	defer server.Close()

	sim, _ := newTestSimulator(t, server.URL)

	// Falls back to a fresh order instead of failing.
	res := sim.SendDuplicate(context.Background())
	assert.Equal(t, client.Accepted, res.Kind)
}

func TestSendMalformed(t *testing.T) {
	endpoint := newFakeEndpoint()
	server := httptest.NewServer(endpoint.handler())
	defer server.Close()

	sim, out := newTestSimulator(t, server.URL)
	res := sim.SendMalformed(context.Background())

	assert.Equal(t, client.HTTPError, res.Kind)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, out.String(), "[400] rejected")
}

func TestSendBulk(t *testing.T) {
	endpoint := newFakeEndpoint()
	server := httptest.NewServer(endpoint.handler())
	defer server.Close()

	sim, _ := newTestSimulator(t, server.URL)
	// Distinct suffixes keep bulk ids unique within one second.
	sim.SendBulk(context.Background(), 3)

	endpoint.mu.Lock()
	defer endpoint.mu.Unlock()
	assert.Len(t, endpoint.payloads, 3)
	assert.Equal(t, 3, len(endpoint.seen))
	for id := range endpoint.seen {
		assert.Regexp(t, `^BULK-\d{8}-\d{6}-\d{3}$`, id)
	}
}

func TestSendBulk_ContextCancelStops(t *testing.T) {
	endpoint := newFakeEndpoint()
	server := httptest.NewServer(endpoint.handler())
	defer server.Close()

	sim, _ := newTestSimulator(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sim.SendBulk(ctx, 50)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("bulk send did not stop on context cancellation")
	}
}

func TestRun_MenuExit(t *testing.T) {
	endpoint := newFakeEndpoint()
	server := httptest.NewServer(endpoint.handler())
	defer server.Close()

	sim, out := newTestSimulator(t, server.URL)

	in := bytes.NewBufferString("1\n6\n0\n")
	err := sim.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[200] accepted")
	assert.Contains(t, out.String(), "Session statistics")
	assert.Contains(t, out.String(), "sent:       1")
}
