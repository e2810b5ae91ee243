// Package functions implements the assistant-callable functions. Every
// outcome, including failures, is returned in-band as a result value.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"intake/internal/admission"
	"intake/internal/apperr"
	"intake/internal/metrics"
	"intake/internal/notify"
)

const defaultAppointmentType = "admission_consultation"

// Dispatcher routes function calls to their handlers.
type Dispatcher struct {
	admissions *admission.Service
	pub        notify.Publisher
	log        *zap.Logger
	now        func() time.Time
}

func NewDispatcher(admissions *admission.Service, pub notify.Publisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pub == nil {
		pub = notify.Discard{}
	}
	return &Dispatcher{
		admissions: admissions,
		pub:        pub,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch runs the named function with its raw JSON parameters and
// returns the value to place in the response envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params json.RawMessage) any {
	fn := ParseName(name)

	var (
		result any
		err    error
	)
	switch fn {
	case CreateAdmissionApplication:
		result, err = d.createAdmission(ctx, params)
	case CheckAdmissionStatus:
		result, err = d.checkStatus(ctx, params)
	case GetCourseInformation:
		result, err = d.courseInformation(params)
	case ScheduleAppointment:
		result, err = d.scheduleAppointment(ctx, params)
	case Unknown:
		err = apperr.UnknownOperation("functions.dispatch", "Unknown function: "+name)
	}

	if err != nil {
		d.log.Warn("function call failed",
			zap.String("function", name),
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Error(err))
		metrics.FunctionCalls.WithLabelValues(fn.String(), metrics.OutcomeError).Inc()
		return ErrorResult{Error: apperr.Message(err)}
	}

	outcome := metrics.OutcomeSuccess
	if s, ok := result.(StatusResult); ok && !s.Success {
		outcome = metrics.OutcomeFailure
	}
	metrics.FunctionCalls.WithLabelValues(fn.String(), outcome).Inc()
	return result
}

func (d *Dispatcher) createAdmission(ctx context.Context, raw json.RawMessage) (any, error) {
	if paramsAbsent(raw) {
		return nil, apperr.Validation("functions.create_admission", "Missing application details")
	}
	var p applicantParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	rec, err := d.admissions.Create(ctx, p.applicant())
	if err != nil {
		return nil, err
	}
	d.pub.Publish(ctx, notify.TypeAdmissionCreated, notify.AdmissionCreated{
		AdmissionID: rec.ID,
		Email:       rec.Email,
		Programme:   rec.Programme,
		Intake:      rec.Intake,
		CreatedAt:   rec.CreatedAt,
	})
	return CreateResult{
		Success:     true,
		AdmissionID: rec.ID,
		Message: fmt.Sprintf("Your application has been submitted successfully. "+
			"Your application ID is %s. An admin will review it shortly.", rec.ID),
	}, nil
}

func (d *Dispatcher) checkStatus(ctx context.Context, raw json.RawMessage) (any, error) {
	var p statusParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	var (
		rec   admission.Record
		found bool
	)
	switch {
	case p.AdmissionID != "":
		var err error
		rec, found, err = d.admissions.Get(ctx, p.AdmissionID.String())
		if err != nil {
			return nil, err
		}
	case p.Email != "":
		matches, err := d.admissions.FindByEmail(ctx, p.Email.String())
		if err != nil {
			return nil, err
		}
		if len(matches) > 1 {
			return StatusResult{Message: "Multiple applications found. " +
				"Please provide your application ID for a specific status check."}, nil
		}
		if len(matches) == 1 {
			rec, found = matches[0], true
		}
	default:
		return StatusResult{Message: "Please provide either an application ID or email address."}, nil
	}

	if !found {
		return StatusResult{Message: "Application not found. Please verify your application ID or email."}, nil
	}
	return StatusResult{
		Success:     true,
		Status:      string(rec.Status),
		AdmissionID: rec.ID,
		Programme:   rec.Programme,
		Intake:      rec.Intake,
		Message:     statusMessage(rec.Status),
	}, nil
}

func statusMessage(s admission.Status) string {
	msg := "Your application status is: " + strings.ToUpper(string(s)) + ". "
	switch s {
	case admission.StatusApproved:
		return msg + "Congratulations! You can proceed with enrollment."
	case admission.StatusPending:
		return msg + "Your application is under review."
	default:
		return msg + "Please contact admissions for more information."
	}
}

func (d *Dispatcher) courseInformation(raw json.RawMessage) (any, error) {
	var p courseParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	c := LookupCourse(p.CourseName.String())
	return CourseResult{
		Success:      true,
		Course:       c.Name,
		Duration:     c.Duration,
		Intake:       c.Intake,
		Fees:         c.Fees,
		Requirements: c.Requirements,
		Message: fmt.Sprintf("%s is a %s programme with intakes in %s. "+
			"For detailed information and current fees, visit %s", c.Name, c.Duration, c.Intake, c.Link),
	}, nil
}

func (d *Dispatcher) scheduleAppointment(ctx context.Context, raw json.RawMessage) (any, error) {
	var p appointmentParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	now := d.now()
	apt := notify.Appointment{
		ID:           fmt.Sprintf("apt_%d", now.UnixMilli()),
		Date:         p.Date.String(),
		Time:         p.Time.String(),
		Type:         p.Type.String(),
		StudentEmail: p.StudentEmail.String(),
		CreatedAt:    now,
	}
	if apt.Type == "" {
		apt.Type = defaultAppointmentType
	}
	d.log.Info("appointment requested",
		zap.String("appointment_id", apt.ID),
		zap.String("date", apt.Date),
		zap.String("time", apt.Time),
		zap.String("type", apt.Type))
	d.pub.Publish(ctx, notify.TypeAppointmentScheduled, apt)

	label := p.Type.String()
	if label == "" {
		label = "appointment"
	}
	return AppointmentResult{
		Success:       true,
		AppointmentID: apt.ID,
		Message: fmt.Sprintf("Your %s has been scheduled for %s at %s. "+
			"You will receive a confirmation email shortly.", label, apt.Date, apt.Time),
	}, nil
}

// decodeParams fills dst from the call parameters. Missing or null
// parameters leave dst zero. Some assistant configurations send the
// parameters as a JSON-encoded string, which is unwrapped first.
func decodeParams(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return apperr.Validation("functions.params", "Invalid function parameters")
		}
		raw = json.RawMessage(inner)
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Validation("functions.params", "Invalid function parameters: "+err.Error())
	}
	return nil
}
