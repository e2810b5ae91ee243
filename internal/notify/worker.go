package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"intake/internal/metrics"
	"intake/internal/queue"
)

// otherType labels messages of a type the worker does not handle, keeping
// the metric's label set bounded.
const otherType = "other"

// Worker consumes notifications and records them in the log.
type Worker struct {
	q   queue.Queue
	log *zap.Logger
}

func NewWorker(q queue.Queue, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{q: q, log: logger}
}

// Run blocks until ctx is cancelled or the queue closes.
func (w *Worker) Run(ctx context.Context) error {
	messages, err := w.q.Consume(ctx)
	if err != nil {
		return err
	}
	w.log.Info("notification worker started")
	for msg := range messages {
		w.handle(msg)
	}
	w.log.Info("notification worker stopped")
	return nil
}

func (w *Worker) handle(msg queue.Message) {
	switch msg.Type {
	case TypeAdmissionCreated:
		var evt AdmissionCreated
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			w.log.Warn("bad admission notification", zap.Error(err))
			metrics.Notifications.WithLabelValues(msg.Type, "invalid").Inc()
			return
		}
		w.log.Info("admission awaiting review",
			zap.String("admission_id", evt.AdmissionID),
			zap.String("email", evt.Email),
			zap.String("programme", evt.Programme),
			zap.String("intake", evt.Intake))
	case TypeAppointmentScheduled:
		var apt Appointment
		if err := json.Unmarshal(msg.Body, &apt); err != nil {
			w.log.Warn("bad appointment notification", zap.Error(err))
			metrics.Notifications.WithLabelValues(msg.Type, "invalid").Inc()
			return
		}
		w.log.Info("appointment scheduled",
			zap.String("appointment_id", apt.ID),
			zap.String("date", apt.Date),
			zap.String("time", apt.Time),
			zap.String("type", apt.Type),
			zap.String("student_email", apt.StudentEmail))
	default:
		w.log.Debug("ignoring notification", zap.String("type", msg.Type))
		metrics.Notifications.WithLabelValues(otherType, "ignored").Inc()
		return
	}
	metrics.Notifications.WithLabelValues(msg.Type, "consumed").Inc()
}
