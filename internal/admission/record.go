package admission

import "time"

// Status is the review state of an admission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decided reports whether a reviewer has already ruled on the admission.
func (s Status) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

// SourceVoiceIntake tags records created through the voice assistant.
const SourceVoiceIntake = "vapi_voice_call"

// Record is a single applicant's intake data plus review status.
type Record struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Programme      string     `json:"programme"`
	Intake         string     `json:"intake"`
	Country        string     `json:"country"`
	EducationLevel string     `json:"educationLevel"`
	Notes          string     `json:"notes"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	ApprovedBy     *string    `json:"approvedBy"`
	ApprovedAt     *time.Time `json:"approvedAt"`
	Source         string     `json:"source"`
}

// Field names a string attribute of a Record that can be searched on.
type Field string

const (
	FieldID        Field = "id"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldStatus    Field = "status"
	FieldProgramme Field = "programme"
	FieldIntake    Field = "intake"
	FieldCountry   Field = "country"
)

// Value returns the record's value for f. ok is false for unknown fields.
func (r Record) Value(f Field) (v string, ok bool) {
	switch f {
	case FieldID:
		return r.ID, true
	case FieldEmail:
		return r.Email, true
	case FieldPhone:
		return r.Phone, true
	case FieldStatus:
		return string(r.Status), true
	case FieldProgramme:
		return r.Programme, true
	case FieldIntake:
		return r.Intake, true
	case FieldCountry:
		return r.Country, true
	}
	return "", false
}

// Patch is a shallow partial update. Nil fields are left untouched.
type Patch struct {
	Status     *Status
	ApprovedBy *string
	ApprovedAt *time.Time
	Notes      *string
}

// Apply merges the patch into r.
func (p Patch) Apply(r *Record) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.ApprovedBy != nil {
		by := *p.ApprovedBy
		r.ApprovedBy = &by
	}
	if p.ApprovedAt != nil {
		at := *p.ApprovedAt
		r.ApprovedAt = &at
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}
