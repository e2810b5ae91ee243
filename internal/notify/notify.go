package notify

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"intake/internal/metrics"
	"intake/internal/queue"
)

// Message types carried on the notification queue.
const (
	TypeAdmissionCreated     = "admission.created"
	TypeAppointmentScheduled = "appointment.scheduled"
)

// AdmissionCreated announces a new pending application.
type AdmissionCreated struct {
	AdmissionID string    `json:"admissionId"`
	Email       string    `json:"email"`
	Programme   string    `json:"programme"`
	Intake      string    `json:"intake"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Appointment is a consultation request. It is announced, never stored.
type Appointment struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Type         string    `json:"type"`
	StudentEmail string    `json:"studentEmail"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Publisher is the side of the queue used by request handlers.
type Publisher interface {
	Publish(ctx context.Context, msgType string, payload any)
}

// QueuePublisher publishes best-effort: failures are logged and counted,
// never returned, and each publish is bounded by timeout.
type QueuePublisher struct {
	q       queue.Queue
	log     *zap.Logger
	timeout time.Duration
}

func NewQueuePublisher(q queue.Queue, logger *zap.Logger) *QueuePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueuePublisher{q: q, log: logger, timeout: 500 * time.Millisecond}
}

func (p *QueuePublisher) Publish(ctx context.Context, msgType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("encode notification", zap.String("type", msgType), zap.Error(err))
		metrics.Notifications.WithLabelValues(msgType, "dropped").Inc()
		return
	}
	// Detached from the request so a client hang-up does not drop the message.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.q.Publish(pubCtx, queue.Message{Type: msgType, Body: body}); err != nil {
		p.log.Warn("publish notification failed", zap.String("type", msgType), zap.Error(err))
		metrics.Notifications.WithLabelValues(msgType, "dropped").Inc()
		return
	}
	metrics.Notifications.WithLabelValues(msgType, "published").Inc()
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) {}
