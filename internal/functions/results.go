package functions

// Result shapes returned to the assistant inside the webhook "result"
// envelope. Field names are part of the assistant contract.

type ErrorResult struct {
	Error string `json:"error"`
}

type CreateResult struct {
	Success     bool   `json:"success"`
	AdmissionID string `json:"admissionId"`
	Message     string `json:"message"`
}

// StatusResult carries record fields only when Success is true.
type StatusResult struct {
	Success     bool   `json:"success"`
	Status      string `json:"status,omitempty"`
	AdmissionID string `json:"admissionId,omitempty"`
	Programme   string `json:"programme,omitempty"`
	Intake      string `json:"intake,omitempty"`
	Message     string `json:"message"`
}

type CourseResult struct {
	Success      bool   `json:"success"`
	Course       string `json:"course"`
	Duration     string `json:"duration"`
	Intake       string `json:"intake"`
	Fees         string `json:"fees"`
	Requirements string `json:"requirements"`
	Message      string `json:"message"`
}

type AppointmentResult struct {
	Success       bool   `json:"success"`
	AppointmentID string `json:"appointmentId"`
	Message       string `json:"message"`
}
