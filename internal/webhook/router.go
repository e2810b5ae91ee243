// Package webhook routes voice assistant webhook events.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"intake/internal/metrics"
)

// Dispatcher runs assistant functions. Failures are reported in the
// returned value, never as an error.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, params json.RawMessage) any
}

var errMissingFunctionCall = errors.New("function-call event without functionCall")

type Router struct {
	functions Dispatcher
	log       *zap.Logger
}

func NewRouter(functions Dispatcher, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{functions: functions, log: logger}
}

// Handle decodes a raw webhook body and routes it. It returns the HTTP
// status and the JSON body to send. Function-call results are always 200;
// only a malformed body (400) or a failure at the router itself (500)
// produce an error status.
func (r *Router) Handle(ctx context.Context, body []byte) (int, any) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		r.log.Warn("malformed webhook body", zap.Error(err))
		return http.StatusBadRequest, ErrorBody{Error: "Invalid JSON payload"}
	}
	return r.Route(ctx, p)
}

// Route handles an already decoded payload.
func (r *Router) Route(ctx context.Context, p Payload) (status int, resp any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("webhook handler panic", zap.String("event", p.Event), zap.Any("panic", rec))
			status, resp = http.StatusInternalServerError, ErrorBody{Error: fmt.Sprint(rec)}
		}
	}()

	ev := ParseEvent(p.Event)
	metrics.WebhookEvents.WithLabelValues(ev.String()).Inc()

	switch ev {
	case EventFunctionCall:
		result, err := r.functionCall(ctx, p)
		if err != nil {
			r.log.Error("webhook error", zap.String("event", p.Event), zap.Error(err))
			return http.StatusInternalServerError, ErrorBody{Error: err.Error()}
		}
		return http.StatusOK, ResultBody{Result: result}
	case EventStatusUpdate:
		r.log.Info("call status update", zap.ByteString("call", p.Call))
	case EventTranscript:
		r.log.Debug("call transcript", zap.ByteString("message", p.Message))
	case EventHang:
		r.log.Info("call ended", zap.ByteString("call", p.Call))
	case EventUnhandled:
		r.log.Info("unhandled webhook event", zap.String("event", p.Event))
	}
	return http.StatusOK, AckBody{Success: true}
}

func (r *Router) functionCall(ctx context.Context, p Payload) (any, error) {
	if p.FunctionCall == nil {
		return nil, errMissingFunctionCall
	}
	fc := p.FunctionCall
	r.log.Info("function call", zap.String("function", fc.Name))
	return r.functions.Dispatch(ctx, fc.Name, fc.Parameters), nil
}
