package functions

// Name identifies an assistant-callable function. Wire names that are not
// recognised parse to Unknown.
type Name int

const (
	Unknown Name = iota
	CreateAdmissionApplication
	CheckAdmissionStatus
	GetCourseInformation
	ScheduleAppointment
)

var wireNames = map[Name]string{
	CreateAdmissionApplication: "createAdmissionApplication",
	CheckAdmissionStatus:       "checkAdmissionStatus",
	GetCourseInformation:       "getCourseInformation",
	ScheduleAppointment:        "scheduleAppointment",
}

var byWireName = func() map[string]Name {
	m := make(map[string]Name, len(wireNames))
	for n, s := range wireNames {
		m[s] = n
	}
	return m
}()

// ParseName maps a wire name to its Name. Matching is case-sensitive.
func ParseName(s string) Name {
	if n, ok := byWireName[s]; ok {
		return n
	}
	return Unknown
}

func (n Name) String() string {
	if s, ok := wireNames[n]; ok {
		return s
	}
	return "unknown"
}
