// Package simulator drives synthetic order traffic against the
// integration endpoint: single sends, deliberate duplicates, malformed
// payloads, bulk bursts and a timed auto mode.
package simulator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"bodgate/internal/config"
	"bodgate/internal/simulator/client"
	"bodgate/internal/simulator/stats"
	"bodgate/internal/simulator/template"
)

const orderIDLayout = "20060102-150405"

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	dupColor     = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed)
	promptColor  = color.New(color.FgWhite, color.Bold)
	detailColor  = color.New(color.FgWhite)
	bulkInterval = 500 * time.Millisecond
)

type Simulator struct {
	cfg      config.SimulatorConfig
	loader   *template.Loader
	client   *client.Client
	stats    *stats.Stats
	out      io.Writer
	now      func() time.Time
	customer int
}

func New(cfg config.SimulatorConfig, out io.Writer) *Simulator {
	return &Simulator{
		cfg:    cfg,
		loader: template.NewLoader(cfg.TemplatesDir),
		client: client.New(cfg.URL, time.Duration(cfg.TimeoutSeconds)*time.Second),
		stats:  stats.New(),
		out:    out,
		now:    time.Now,
	}
}

// NewOrderID builds an identifier matching the pattern the endpoint
// extracts: PREFIX-YYYYMMDD-HHMMSS.
func (s *Simulator) NewOrderID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, s.now().Format(orderIDLayout))
}

func (s *Simulator) nextCustomerID() string {
	s.customer++
	return fmt.Sprintf("CUST-%04d", s.customer)
}

func (s *Simulator) renderOrder(orderID string) (string, error) {
	tmpl, err := s.loader.Load(template.SalesOrder)
	if err != nil {
		return "", err
	}
	return template.Render(tmpl, template.Values{
		OrderID:    orderID,
		Timestamp:  s.now().Format(time.RFC3339),
		CustomerID: s.nextCustomerID(),
	}), nil
}

// SendOrder renders and posts one well-formed order with the given id.
func (s *Simulator) SendOrder(ctx context.Context, orderID string) client.Result {
	payload, err := s.renderOrder(orderID)
	if err != nil {
		s.stats.RecordError()
		res := client.Result{Kind: client.ConnectionError, Detail: err.Error()}
		s.report(orderID, res)
		return res
	}
	res := s.client.Send(ctx, payload)
	s.record(orderID, res)
	s.report(orderID, res)
	return res
}

// SendNormal sends a fresh order with a newly generated ORD- id.
func (s *Simulator) SendNormal(ctx context.Context) client.Result {
	return s.SendOrder(ctx, s.NewOrderID("ORD"))
}

// SendDuplicate resends the last order id so the endpoint answers 409.
// Falls back to a fresh order when nothing has been sent yet.
func (s *Simulator) SendDuplicate(ctx context.Context) client.Result {
	last := s.stats.LastOrderID()
	if last == "" {
		fmt.Fprintln(s.out, "No order sent yet; sending a fresh one first.")
		return s.SendNormal(ctx)
	}
	return s.SendOrder(ctx, last)
}

// SendMalformed posts a deliberately broken XML document.
func (s *Simulator) SendMalformed(ctx context.Context) client.Result {
	tmpl, err := s.loader.Load(template.Malformed)
	if err != nil {
		s.stats.RecordError()
		res := client.Result{Kind: client.ConnectionError, Detail: err.Error()}
		s.report("(malformed)", res)
		return res
	}
	payload := template.Render(tmpl, template.Values{
		OrderID:   s.NewOrderID("ORD"),
		Timestamp: s.now().Format(time.RFC3339),
	})
	res := s.client.Send(ctx, payload)
	if res.Kind == client.Timeout || res.Kind == client.ConnectionError {
		s.stats.RecordError()
	}
	s.report("(malformed)", res)
	return res
}

// SendBulk sends n fresh BULK- orders spaced half a second apart.
func (s *Simulator) SendBulk(ctx context.Context, n int) {
	if n <= 0 {
		n = s.cfg.BulkCount
	}
	headerColor.Fprintf(s.out, "Sending %d orders...\n", n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%03d", s.NewOrderID("BULK"), i+1)
		s.SendOrder(ctx, id)
		if i < n-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(bulkInterval):
			}
		}
	}
}

// RunAuto sends an AUTO- order on every tick until the context ends.
func (s *Simulator) RunAuto(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Duration(s.cfg.AutoIntervalSeconds) * time.Second
	}
	headerColor.Fprintf(s.out, "Auto mode: one order every %s (Ctrl+C to stop)\n", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.SendOrder(ctx, s.NewOrderID("AUTO"))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SendOrder(ctx, s.NewOrderID("AUTO"))
		}
	}
}

func (s *Simulator) record(orderID string, res client.Result) {
	switch res.Kind {
	case client.Accepted:
		s.stats.RecordSent(orderID)
	case client.Duplicate:
		s.stats.RecordDuplicate()
	default:
		s.stats.RecordError()
	}
}

func (s *Simulator) report(orderID string, res client.Result) {
	switch res.Kind {
	case client.Accepted:
		okColor.Fprintf(s.out, "  [200] accepted   %s\n", orderID)
	case client.Duplicate:
		dupColor.Fprintf(s.out, "  [409] duplicate  %s\n", orderID)
	case client.HTTPError:
		errColor.Fprintf(s.out, "  [%d] rejected   %s: %s\n", res.StatusCode, orderID, res.Detail)
	case client.Timeout:
		errColor.Fprintf(s.out, "  [--] timeout    %s: %s\n", orderID, res.Detail)
	default:
		errColor.Fprintf(s.out, "  [--] unreachable %s: %s\n", orderID, res.Detail)
	}
}

// PrintStats writes the session counters.
func (s *Simulator) PrintStats() {
	snap := s.stats.Snapshot()
	headerColor.Fprintln(s.out, "Session statistics")
	detailColor.Fprintf(s.out, "  sent:       %d\n", snap.Sent)
	detailColor.Fprintf(s.out, "  duplicates: %d\n", snap.Duplicates)
	detailColor.Fprintf(s.out, "  errors:     %d\n", snap.Errors)
	last := snap.LastOrderID
	if last == "" {
		last = "(none)"
	}
	detailColor.Fprintf(s.out, "  last order: %s\n", last)
}

// Run drives the interactive menu until the user exits or the context
// is cancelled.
func (s *Simulator) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		s.printMenu()
		promptColor.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			s.SendNormal(ctx)
		case "2":
			s.SendDuplicate(ctx)
		case "3":
			s.SendMalformed(ctx)
		case "4":
			s.SendBulk(ctx, s.cfg.BulkCount)
		case "5":
			s.RunAuto(ctx, time.Duration(s.cfg.AutoIntervalSeconds)*time.Second)
		case "6":
			s.PrintStats()
		case "0", "q", "quit", "exit":
			s.PrintStats()
			return nil
		case "":
		default:
			errColor.Fprintln(s.out, "Unknown option")
		}
	}
}

func (s *Simulator) printMenu() {
	fmt.Fprintln(s.out)
	headerColor.Fprintf(s.out, "Order Traffic Simulator -> %s\n", s.cfg.URL)
	fmt.Fprintln(s.out, "  1) Send order")
	fmt.Fprintln(s.out, "  2) Send duplicate of last order")
	fmt.Fprintln(s.out, "  3) Send malformed XML")
	fmt.Fprintf(s.out, "  4) Send bulk (%d orders)\n", s.cfg.BulkCount)
	fmt.Fprintf(s.out, "  5) Auto mode (every %ds)\n", s.cfg.AutoIntervalSeconds)
	fmt.Fprintln(s.out, "  6) Show statistics")
	fmt.Fprintln(s.out, "  0) Exit")
}
