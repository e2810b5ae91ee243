package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"intake/internal/apperr"
)

// Applicant is the caller-supplied part of a new admission. Fields are
// passed through without validation.
type Applicant struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Programme      string `json:"programme"`
	Intake         string `json:"intake"`
	Country        string `json:"country"`
	EducationLevel string `json:"educationLevel"`
	Notes          string `json:"notes"`
}

// Decision actions accepted by Decide. Anything other than ActionApprove rejects.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Service coordinates admission creation and review on top of a Store.
type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   logger,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create records a new pending admission for the applicant.
func (s *Service) Create(ctx context.Context, a Applicant) (Record, error) {
	now := s.now()
	rec := Record{
		ID:             NewID(now),
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Email:          a.Email,
		Phone:          a.Phone,
		Programme:      a.Programme,
		Intake:         a.Intake,
		Country:        a.Country,
		EducationLevel: a.EducationLevel,
		Notes:          a.Notes,
		Status:         StatusPending,
		CreatedAt:      now,
		Source:         SourceVoiceIntake,
	}
	saved, err := s.store.Append(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.log.Info("admission created", zap.String("admission_id", saved.ID))
	return saved, nil
}

// Get returns the admission with the given id.
func (s *Service) Get(ctx context.Context, id string) (Record, bool, error) {
	return s.store.FindByID(ctx, id)
}

// FindByEmail returns every admission filed under the email address.
func (s *Service) FindByEmail(ctx context.Context, email string) ([]Record, error) {
	return s.store.FindAllByField(ctx, FieldEmail, email)
}

// List returns all admissions in insertion order.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx)
}

// Decide approves or rejects an admission on behalf of adminEmail.
//
// Repeating the decision already on record succeeds and refreshes
// approvedAt. Reversing a decision fails with a conflict.
func (s *Service) Decide(ctx context.Context, id, action, adminEmail string) (Record, error) {
	target := StatusRejected
	if action == ActionApprove {
		target = StatusApproved
	}

	current, ok, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, apperr.NotFound("admission.decide", "Admission not found")
	}
	if current.Status.Decided() && current.Status != target {
		return Record{}, apperr.Conflict("admission.decide",
			fmt.Sprintf("Admission already %s", current.Status))
	}

	at := s.now()
	patch := Patch{Status: &target, ApprovedAt: &at}
	if adminEmail != "" {
		patch.ApprovedBy = &adminEmail
	}
	updated, ok, err := s.store.UpdateByID(ctx, id, patch)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, apperr.NotFound("admission.decide", "Admission not found")
	}
	s.log.Info("admission decided",
		zap.String("admission_id", id),
		zap.String("status", string(target)),
		zap.String("admin", adminEmail))
	return updated, nil
}

// NewID builds an admission id from the creation time and a random suffix.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return fmt.Sprintf("adm_%d_%s", now.UnixMilli(), suffix)
}
