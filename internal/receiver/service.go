package receiver

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bodgate/internal/archive"
	"bodgate/internal/bod"
	"bodgate/internal/broker"
	"bodgate/internal/config"
	"bodgate/internal/console"
	"bodgate/internal/dedup"
	"bodgate/internal/inbox"
	"bodgate/internal/logger"
	"bodgate/pkg/logging"
	"bodgate/pkg/metrics"
	"bodgate/pkg/tracing"
)

const (
	reasonMalformed = "malformed_xml"

	statusAccepted  = "accepted"
	statusDuplicate = "duplicate"
	statusMalformed = "malformed"
	statusError     = "error"
)

// Service runs the submission pipeline: parse, extract, decide, persist,
// respond. Failure classification never leaves Process; the Outcome is the
// only thing the handler sees.
type Service struct {
	store        dedup.Store
	writer       *inbox.Writer
	presenter    *console.Presenter
	archive      archive.Repository
	forwarder    broker.Producer
	forwardTopic string
	endpoint     string
	onStoreError string
	logger       logger.Logger
}

type Option func(*Service)

// WithArchive enables the relational audit index.
func WithArchive(repo archive.Repository) Option {
	return func(s *Service) { s.archive = repo }
}

// WithForwarder enables downstream event publication after persistence.
func WithForwarder(p broker.Producer, topic string) Option {
	return func(s *Service) {
		s.forwarder = p
		s.forwardTopic = topic
	}
}

func NewService(store dedup.Store, writer *inbox.Writer, presenter *console.Presenter, cfg *config.Config, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:        store,
		writer:       writer,
		presenter:    presenter,
		endpoint:     cfg.Server.EndpointPath,
		onStoreError: cfg.Dedup.OnStoreError,
		logger:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process decides the outcome of one submission. The artifact and metadata
// files exist on disk before Process returns a 200 or 409 outcome.
func (s *Service) Process(ctx context.Context, sub Submission) Outcome {
	ctx, span := tracing.GetTracer("receiver").Start(ctx, "receiver.process")
	defer span.End()

	start := time.Now()

	doc, err := bod.Parse(sub.Raw)
	if err != nil {
		return s.rejectMalformed(ctx, sub, err, start)
	}

	orderID := bod.ExtractOrderID(doc)
	ctx = logging.WithOrderID(ctx, orderID)

	duplicate, out := s.decide(ctx, orderID)
	if out != nil {
		return *out
	}

	status := http.StatusOK
	if duplicate {
		status = http.StatusConflict
	}

	rendering := doc.Pretty()
	meta := inbox.Metadata{
		Timestamp: sub.ReceivedAt.Format(inbox.TimestampLayout),
		Client:    sub.Client,
		Status:    status,
		OrderID:   orderID,
		Headers:   sub.Headers,
		Bytes:     len(sub.Raw),
		Endpoint:  s.endpoint,
	}

	xmlPath, metaPath, werr := s.writer.WriteArtifact(sub.ReceivedAt, orderID, rendering, meta)
	if werr != nil {
		metrics.ArtifactWriteFailures.Inc()
		s.logger.ErrorwCtx(ctx, "Failed to persist submission", "error", werr)
		metrics.ObserveSubmission(time.Since(start), statusError)
		return Outcome{
			Code:   http.StatusInternalServerError,
			Body:   InternalErrorResponse{Status: "error", Reason: "persistence_failed"},
			Reason: "persistence_failed",
		}
	}

	s.presenter.ShowSubmission(sub.ReceivedAt, sub.Client, orderID, sub.Headers, len(sub.Raw), rendering)
	s.record(ctx, sub, status, orderID, "", xmlPath, metaPath)
	s.forward(ctx, sub, status, orderID, xmlPath, metaPath)
	s.updateStoreSize(ctx)

	if duplicate {
		s.logger.InfowCtx(ctx, "Duplicate submission rejected", "client", sub.Client)
		metrics.ObserveSubmission(time.Since(start), statusDuplicate)
		return Outcome{
			Code:    http.StatusConflict,
			Body:    DuplicateResponse{Status: "duplicate", OrderID: orderID},
			OrderID: orderID,
		}
	}

	s.logger.InfowCtx(ctx, "Submission accepted", "client", sub.Client, "bytes", len(sub.Raw))
	metrics.SubmissionBytes.Observe(float64(len(sub.Raw)))
	metrics.ObserveSubmission(time.Since(start), statusAccepted)
	return Outcome{
		Code:    http.StatusOK,
		Body:    AcceptedResponse{Status: "ok", OrderID: orderID},
		OrderID: orderID,
	}
}

// decide runs the atomic check-then-insert. Unknown identifiers carry no
// discriminating value: every unknown-id submission is independently new
// and is never added to the store.
func (s *Service) decide(ctx context.Context, orderID string) (bool, *Outcome) {
	if orderID == bod.Unknown {
		return false, nil
	}

	added, err := s.store.Add(ctx, orderID)
	if err == nil {
		return !added, nil
	}

	if s.onStoreError == "allow" {
		s.logger.WarnwCtx(ctx, "Dedup store error, accepting submission (fallback: allow)", "error", err)
		return false, nil
	}

	s.logger.ErrorwCtx(ctx, "Dedup store error, refusing submission (fallback: deny)", "error", err)
	return false, &Outcome{
		Code:   http.StatusServiceUnavailable,
		Body:   InternalErrorResponse{Status: "error", Reason: "dedup_store_unavailable"},
		Reason: "dedup_store_unavailable",
	}
}

func (s *Service) rejectMalformed(ctx context.Context, sub Submission, parseErr error, start time.Time) Outcome {
	detail := parseErr.Error()
	s.logger.WarnwCtx(ctx, "Malformed submission", "client", sub.Client, "detail", detail)

	meta := inbox.MalformedMetadata{
		Timestamp: sub.ReceivedAt.Format(inbox.TimestampLayout),
		Client:    sub.Client,
		Status:    http.StatusBadRequest,
		Reason:    reasonMalformed,
		Headers:   sub.Headers,
	}

	xmlPath, metaPath, werr := s.writer.WriteMalformed(sub.ReceivedAt, sub.Raw, meta)
	if werr != nil {
		metrics.ArtifactWriteFailures.Inc()
		s.logger.ErrorwCtx(ctx, "Failed to persist malformed submission", "error", werr)
	}

	s.presenter.ShowMalformed(sub.ReceivedAt, sub.Client, detail)
	s.record(ctx, sub, http.StatusBadRequest, "", reasonMalformed, xmlPath, metaPath)

	metrics.ObserveSubmission(time.Since(start), statusMalformed)
	return Outcome{
		Code:   http.StatusBadRequest,
		Body:   MalformedResponse{Status: "error", Reason: reasonMalformed, Detail: detail},
		Reason: reasonMalformed,
	}
}

// record writes the archive index row when the archive is enabled. Index
// failures are logged and counted, never surfaced to the client.
func (s *Service) record(ctx context.Context, sub Submission, status int, orderID, reason, xmlPath, metaPath string) {
	if s.archive == nil {
		return
	}

	rec := &archive.Record{
		ID:         uuid.New().String(),
		ReceivedAt: sub.ReceivedAt,
		Client:     sub.Client,
		Status:     status,
		OrderID:    orderID,
		Reason:     reason,
		Bytes:      len(sub.Raw),
		Endpoint:   s.endpoint,
		XMLPath:    xmlPath,
		MetaPath:   metaPath,
	}

	if err := s.archive.Insert(ctx, rec); err != nil {
		metrics.ArchiveInsertTotal.WithLabelValues("error").Inc()
		s.logger.ErrorwCtx(ctx, "Failed to index submission", "error", err)
		return
	}
	metrics.ArchiveInsertTotal.WithLabelValues("ok").Inc()
}

// forward publishes a submission event downstream. Runs after persistence;
// a publish failure never changes the HTTP response.
func (s *Service) forward(ctx context.Context, sub Submission, status int, orderID, xmlPath, metaPath string) {
	if s.forwarder == nil {
		return
	}

	event := broker.SubmissionEvent{
		ID:           uuid.New().String(),
		OrderID:      orderID,
		Status:       status,
		ReceivedAt:   sub.ReceivedAt,
		Client:       sub.Client,
		Source:       sub.Headers["X-Source"],
		Bytes:        len(sub.Raw),
		ArtifactPath: xmlPath,
		MetadataPath: metaPath,
	}

	if err := s.forwarder.Publish(ctx, s.forwardTopic, event); err != nil {
		metrics.ForwardPublishTotal.WithLabelValues("error").Inc()
		s.logger.ErrorwCtx(ctx, "Failed to forward submission event", "error", err, "topic", s.forwardTopic)
		return
	}
	metrics.ForwardPublishTotal.WithLabelValues("ok").Inc()
}

func (s *Service) updateStoreSize(ctx context.Context) {
	size, err := s.store.Len(ctx)
	if err != nil {
		s.logger.DebugwCtx(ctx, "Failed to read dedup store size", "error", err)
		return
	}
	metrics.SetDedupStoreSize(size)
}
