package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const (
	contextKeyWideEvent contextKey = "wide_event"
	contextKeyTraceID   contextKey = "trace_id"
)

// WideEvent is one structured log line per request, filled in as the request
// moves through auth, the gateway and the payment flow.
type WideEvent struct {
	TraceID   string    `json:"trace_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`

	HTTPMethod     string            `json:"http_method,omitempty"`
	HTTPPath       string            `json:"http_path,omitempty"`
	HTTPStatusCode int               `json:"http_status_code,omitempty"`
	HTTPDurationMs int64             `json:"http_duration_ms,omitempty"`
	HTTPHeaders    map[string]string `json:"http_headers,omitempty"`

	UserID string `json:"user_id,omitempty"`

	// Generation context. The prompt text itself is never logged.
	PromptLength  int    `json:"prompt_length,omitempty"`
	ImageProvider string `json:"image_provider,omitempty"`

	// Purchase context
	PlanID        string `json:"plan_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	OrderID       string `json:"order_id,omitempty"`

	CreditBalance *int64 `json:"credit_balance,omitempty"`

	Error          string `json:"error,omitempty"`
	ErrorStage     string `json:"error_stage,omitempty"`
	PanicRecovered bool   `json:"panic_recovered,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewWideEvent creates a new WideEvent with a trace ID and timestamp
func NewWideEvent(eventType string) *WideEvent {
	return &WideEvent{
		TraceID:     uuid.New().String(),
		EventType:   eventType,
		Timestamp:   time.Now(),
		HTTPHeaders: make(map[string]string),
		Metadata:    make(map[string]interface{}),
	}
}

// NewWideEventWithTrace reuses an inbound request id as the trace id.
func NewWideEventWithTrace(eventType, traceID string) *WideEvent {
	event := NewWideEvent(eventType)
	if traceID != "" {
		event.TraceID = traceID
	}
	return event
}

// WithContext attaches a WideEvent to a context
func WithContext(ctx context.Context, event *WideEvent) context.Context {
	ctx = context.WithValue(ctx, contextKeyWideEvent, event)
	ctx = context.WithValue(ctx, contextKeyTraceID, event.TraceID)
	return ctx
}

// FromContext retrieves the WideEvent from a context
func FromContext(ctx context.Context) *WideEvent {
	if event, ok := ctx.Value(contextKeyWideEvent).(*WideEvent); ok {
		return event
	}
	return nil
}

// GetTraceID retrieves just the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(contextKeyTraceID).(string); ok {
		return traceID
	}
	return ""
}

func EnrichHTTP(ctx context.Context, method, path string) {
	if event := FromContext(ctx); event != nil {
		event.HTTPMethod = method
		event.HTTPPath = path
	}
}

func EnrichHTTPStatus(ctx context.Context, statusCode int) {
	if event := FromContext(ctx); event != nil {
		event.HTTPStatusCode = statusCode
	}
}

func EnrichHTTPDuration(ctx context.Context, duration time.Duration) {
	if event := FromContext(ctx); event != nil {
		event.HTTPDurationMs = duration.Milliseconds()
	}
}

func EnrichHTTPHeader(ctx context.Context, key, value string) {
	if event := FromContext(ctx); event != nil {
		event.HTTPHeaders[key] = value
	}
}

func EnrichUser(ctx context.Context, userID string) {
	if event := FromContext(ctx); event != nil {
		event.UserID = userID
	}
}

func EnrichGeneration(ctx context.Context, promptLength int, provider string) {
	if event := FromContext(ctx); event != nil {
		event.PromptLength = promptLength
		event.ImageProvider = provider
	}
}

func EnrichPurchase(ctx context.Context, planID, transactionID string) {
	if event := FromContext(ctx); event != nil {
		if planID != "" {
			event.PlanID = planID
		}
		if transactionID != "" {
			event.TransactionID = transactionID
		}
	}
}

func EnrichOrder(ctx context.Context, orderID string) {
	if event := FromContext(ctx); event != nil {
		event.OrderID = orderID
	}
}

func EnrichBalance(ctx context.Context, balance int64) {
	if event := FromContext(ctx); event != nil {
		event.CreditBalance = &balance
	}
}

func EnrichError(ctx context.Context, err error, stage string) {
	if event := FromContext(ctx); event != nil {
		if err != nil {
			event.Error = err.Error()
			event.ErrorStage = stage
		}
	}
}

func EnrichPanic(ctx context.Context) {
	if event := FromContext(ctx); event != nil {
		event.PanicRecovered = true
	}
}

func EnrichMetadata(ctx context.Context, key string, value interface{}) {
	if event := FromContext(ctx); event != nil {
		event.Metadata[key] = value
	}
}

// Attrs flattens the event into slog attributes, skipping empty fields.
func (event *WideEvent) Attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("trace_id", event.TraceID),
		slog.String("event_type", event.EventType),
		slog.Time("timestamp", event.Timestamp),
	}

	if event.HTTPMethod != "" {
		attrs = append(attrs, slog.String("http_method", event.HTTPMethod))
	}
	if event.HTTPPath != "" {
		attrs = append(attrs, slog.String("http_path", event.HTTPPath))
	}
	if event.HTTPStatusCode != 0 {
		attrs = append(attrs, slog.Int("http_status_code", event.HTTPStatusCode))
	}
	if event.HTTPDurationMs != 0 {
		attrs = append(attrs, slog.Int64("http_duration_ms", event.HTTPDurationMs))
	}
	if len(event.HTTPHeaders) > 0 {
		attrs = append(attrs, slog.Any("http_headers", event.HTTPHeaders))
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}

	if event.PromptLength != 0 {
		attrs = append(attrs, slog.Int("prompt_length", event.PromptLength))
	}
	if event.ImageProvider != "" {
		attrs = append(attrs, slog.String("image_provider", event.ImageProvider))
	}

	if event.PlanID != "" {
		attrs = append(attrs, slog.String("plan_id", event.PlanID))
	}
	if event.TransactionID != "" {
		attrs = append(attrs, slog.String("transaction_id", event.TransactionID))
	}
	if event.OrderID != "" {
		attrs = append(attrs, slog.String("order_id", event.OrderID))
	}
	if event.CreditBalance != nil {
		attrs = append(attrs, slog.Int64("credit_balance", *event.CreditBalance))
	}

	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if event.ErrorStage != "" {
		attrs = append(attrs, slog.String("error_stage", event.ErrorStage))
	}
	if event.PanicRecovered {
		attrs = append(attrs, slog.Bool("panic_recovered", event.PanicRecovered))
	}

	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}
	return attrs
}

// Emit outputs the WideEvent as a structured log
func Emit(ctx context.Context) {
	event := FromContext(ctx)
	if event == nil {
		return
	}

	level := slog.LevelInfo
	if event.Error != "" || event.PanicRecovered || event.HTTPStatusCode >= 500 {
		level = slog.LevelError
	}

	slog.LogAttrs(ctx, level, "wide_event", event.Attrs()...)
}
