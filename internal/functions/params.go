package functions

import (
	"bytes"
	"encoding/json"

	"intake/internal/admission"
)

// looseString accepts any JSON value. Strings are unquoted, null is empty,
// and numbers, booleans or composites keep their JSON text, so "2025" and
// 2025 both read as "2025".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		*s = looseString(b)
	}
	return nil
}

func (s looseString) String() string { return string(s) }

type applicantParams struct {
	FirstName      looseString `json:"firstName"`
	LastName       looseString `json:"lastName"`
	Email          looseString `json:"email"`
	Phone          looseString `json:"phone"`
	Programme      looseString `json:"programme"`
	Intake         looseString `json:"intake"`
	Country        looseString `json:"country"`
	EducationLevel looseString `json:"educationLevel"`
	Notes          looseString `json:"notes"`
}

func (p applicantParams) applicant() admission.Applicant {
	return admission.Applicant{
		FirstName:      p.FirstName.String(),
		LastName:       p.LastName.String(),
		Email:          p.Email.String(),
		Phone:          p.Phone.String(),
		Programme:      p.Programme.String(),
		Intake:         p.Intake.String(),
		Country:        p.Country.String(),
		EducationLevel: p.EducationLevel.String(),
		Notes:          p.Notes.String(),
	}
}

type statusParams struct {
	AdmissionID looseString `json:"admissionId"`
	Email       looseString `json:"email"`
}

type courseParams struct {
	CourseName looseString `json:"courseName"`
}

type appointmentParams struct {
	Date         looseString `json:"date"`
	Time         looseString `json:"time"`
	Type         looseString `json:"type"`
	StudentEmail looseString `json:"studentEmail"`
}

// paramsAbsent reports whether the call carried no parameters at all.
func paramsAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
