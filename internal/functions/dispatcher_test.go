package functions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"intake/internal/admission"
	"intake/internal/apperr"
	"intake/internal/notify"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []string
}

func (p *recordingPublisher) Publish(_ context.Context, msgType string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msgType)
}

type failingStore struct{ admission.MemoryStore }

func (*failingStore) Append(context.Context, admission.Record) (admission.Record, error) {
	return admission.Record{}, apperr.IO("filestore.append", errors.New("disk full"))
}

func (*failingStore) FindAllByField(context.Context, admission.Field, string) ([]admission.Record, error) {
	return nil, apperr.IO("filestore.read", errors.New("disk gone"))
}

func newTestDispatcher() (*Dispatcher, *admission.Service, *recordingPublisher) {
	svc := admission.NewService(admission.NewMemoryStore(), nil)
	pub := &recordingPublisher{}
	d := NewDispatcher(svc, pub, nil)
	d.now = func() time.Time { return time.UnixMilli(1735689600123).UTC() }
	return d, svc, pub
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestParseName(t *testing.T) {
	assert.Equal(t, CreateAdmissionApplication, ParseName("createAdmissionApplication"))
	assert.Equal(t, CheckAdmissionStatus, ParseName("checkAdmissionStatus"))
	assert.Equal(t, GetCourseInformation, ParseName("getCourseInformation"))
	assert.Equal(t, ScheduleAppointment, ParseName("scheduleAppointment"))
	assert.Equal(t, Unknown, ParseName("CreateAdmissionApplication"))
	assert.Equal(t, Unknown, ParseName(""))
	assert.Equal(t, "scheduleAppointment", ScheduleAppointment.String())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestCreateThenCheckByID(t *testing.T) {
	d, _, pub := newTestDispatcher()
	ctx := context.Background()

	out := toJSON(t, d.Dispatch(ctx, "createAdmissionApplication",
		json.RawMessage(`{"firstName":"A","lastName":"B","email":"a@b.com","programme":"IT","intake":"2025-02"}`)))

	assert.True(t, gjson.Get(out, "success").Bool())
	id := gjson.Get(out, "admissionId").String()
	assert.Regexp(t, `^adm_\d+_[0-9a-f]{7}$`, id)
	assert.Equal(t, "Your application has been submitted successfully. Your application ID is "+id+
		". An admin will review it shortly.", gjson.Get(out, "message").String())
	assert.Equal(t, []string{notify.TypeAdmissionCreated}, pub.sent)

	status := toJSON(t, d.Dispatch(ctx, "checkAdmissionStatus", json.RawMessage(`{"admissionId":"`+id+`"}`)))
	assert.True(t, gjson.Get(status, "success").Bool())
	assert.Equal(t, "pending", gjson.Get(status, "status").String())
	assert.Equal(t, id, gjson.Get(status, "admissionId").String())
	assert.Equal(t, "IT", gjson.Get(status, "programme").String())
	assert.Equal(t, "2025-02", gjson.Get(status, "intake").String())
	assert.Equal(t, "Your application status is: PENDING. Your application is under review.",
		gjson.Get(status, "message").String())
}

func TestCheckStatusByEmail(t *testing.T) {
	d, svc, _ := newTestDispatcher()
	ctx := context.Background()

	rec, err := svc.Create(ctx, admission.Applicant{Email: "one@b.com", Programme: "Business"})
	require.NoError(t, err)
	_, err = svc.Decide(ctx, rec.ID, admission.ActionApprove, "admin@asahe.edu.au")
	require.NoError(t, err)

	out := toJSON(t, d.Dispatch(ctx, "checkAdmissionStatus", json.RawMessage(`{"email":"one@b.com"}`)))
	assert.True(t, gjson.Get(out, "success").Bool())
	assert.Equal(t, "approved", gjson.Get(out, "status").String())
	assert.Equal(t, "Your application status is: APPROVED. Congratulations! You can proceed with enrollment.",
		gjson.Get(out, "message").String())
}

func TestCheckStatusMultipleMatchesLeaksNothing(t *testing.T) {
	d, svc, _ := newTestDispatcher()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, admission.Applicant{Email: "dup@b.com", Programme: "IT"})
		require.NoError(t, err)
	}

	out := toJSON(t, d.Dispatch(ctx, "checkAdmissionStatus", json.RawMessage(`{"email":"dup@b.com"}`)))
	assert.JSONEq(t, `{"success":false,"message":"Multiple applications found. Please provide your application ID for a specific status check."}`, out)
}

func TestCheckStatusFailures(t *testing.T) {
	d, svc, _ := newTestDispatcher()
	ctx := context.Background()
	rec, err := svc.Create(ctx, admission.Applicant{Email: "r@b.com"})
	require.NoError(t, err)
	_, err = svc.Decide(ctx, rec.ID, admission.ActionReject, "")
	require.NoError(t, err)

	cases := map[string]struct {
		params string
		want   string
	}{
		"no identifier": {`{}`, "Please provide either an application ID or email address."},
		"null params":   {`null`, "Please provide either an application ID or email address."},
		"unknown id":    {`{"admissionId":"adm_0_missing"}`, "Application not found. Please verify your application ID or email."},
		"unknown email": {`{"email":"nobody@b.com"}`, "Application not found. Please verify your application ID or email."},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out := toJSON(t, d.Dispatch(ctx, "checkAdmissionStatus", json.RawMessage(tc.params)))
			assert.False(t, gjson.Get(out, "success").Bool())
			assert.False(t, gjson.Get(out, "status").Exists())
			assert.Equal(t, tc.want, gjson.Get(out, "message").String())
		})
	}

	out := toJSON(t, d.Dispatch(ctx, "checkAdmissionStatus", json.RawMessage(`{"admissionId":"`+rec.ID+`"}`)))
	assert.Equal(t, "Your application status is: REJECTED. Please contact admissions for more information.",
		gjson.Get(out, "message").String())
}

func TestCourseInformation(t *testing.T) {
	d, _, _ := newTestDispatcher()
	ctx := context.Background()

	it := toJSON(t, d.Dispatch(ctx, "getCourseInformation", json.RawMessage(`{"courseName":" I T "}`)))
	assert.True(t, gjson.Get(it, "success").Bool())
	assert.Equal(t, "Bachelor of Information Technology", gjson.Get(it, "course").String())
	assert.Equal(t, "3 years", gjson.Get(it, "duration").String())
	assert.Equal(t, "February, July", gjson.Get(it, "intake").String())
	assert.Equal(t, "Contact for current fees", gjson.Get(it, "fees").String())
	assert.Equal(t, "Year 12 or equivalent", gjson.Get(it, "requirements").String())
	assert.Equal(t, "Bachelor of Information Technology is a 3 years programme with intakes in February, July. "+
		"For detailed information and current fees, visit https://asahe.edu.au/courses/", gjson.Get(it, "message").String())

	for _, params := range []string{`{"courseName":"Underwater Basket Weaving"}`, `{}`, ``} {
		out := toJSON(t, d.Dispatch(ctx, "getCourseInformation", json.RawMessage(params)))
		assert.Equal(t, "Bachelor of Business", gjson.Get(out, "course").String(), params)
	}
}

func TestScheduleAppointment(t *testing.T) {
	d, _, pub := newTestDispatcher()
	ctx := context.Background()

	out := toJSON(t, d.Dispatch(ctx, "scheduleAppointment",
		json.RawMessage(`{"date":"2025-03-01","time":"10:00","type":"campus tour","studentEmail":"a@b.com"}`)))
	assert.JSONEq(t, `{"success":true,"appointmentId":"apt_1735689600123",
		"message":"Your campus tour has been scheduled for 2025-03-01 at 10:00. You will receive a confirmation email shortly."}`, out)
	assert.Equal(t, []string{notify.TypeAppointmentScheduled}, pub.sent)

	out = toJSON(t, d.Dispatch(ctx, "scheduleAppointment", json.RawMessage(`{"date":"2025-03-02","time":"09:30"}`)))
	assert.Equal(t, "Your appointment has been scheduled for 2025-03-02 at 09:30. You will receive a confirmation email shortly.",
		gjson.Get(out, "message").String())
}

func TestStringEncodedParameters(t *testing.T) {
	d, _, _ := newTestDispatcher()
	out := toJSON(t, d.Dispatch(context.Background(), "getCourseInformation", json.RawMessage(`"{\"courseName\":\"it\"}"`)))
	assert.Equal(t, "Bachelor of Information Technology", gjson.Get(out, "course").String())
}

func TestUnknownFunction(t *testing.T) {
	d, _, _ := newTestDispatcher()
	out := toJSON(t, d.Dispatch(context.Background(), "bookFlight", json.RawMessage(`{}`)))
	assert.JSONEq(t, `{"error":"Unknown function: bookFlight"}`, out)
}

func TestHandlerFailuresStayInBand(t *testing.T) {
	d, _, _ := newTestDispatcher()
	ctx := context.Background()

	bad := toJSON(t, d.Dispatch(ctx, "createAdmissionApplication", json.RawMessage(`[1,2]`)))
	assert.Contains(t, gjson.Get(bad, "error").String(), "Invalid function parameters")

	failing := NewDispatcher(admission.NewService(&failingStore{}, nil), nil, nil)
	out := toJSON(t, failing.Dispatch(ctx, "createAdmissionApplication", json.RawMessage(`{"email":"a@b.com"}`)))
	assert.Contains(t, gjson.Get(out, "error").String(), "disk full")

	out = toJSON(t, failing.Dispatch(ctx, "checkAdmissionStatus", json.RawMessage(`{"email":"a@b.com"}`)))
	assert.Contains(t, gjson.Get(out, "error").String(), "disk gone")
}

func TestCreateAdmissionStringifiesScalarFields(t *testing.T) {
	d, svc, _ := newTestDispatcher()
	ctx := context.Background()

	out := toJSON(t, d.Dispatch(ctx, "createAdmissionApplication",
		json.RawMessage(`{"firstName":"A","email":"a@b.com","phone":61412345678,"intake":2025,"notes":true,"country":null}`)))
	require.True(t, gjson.Get(out, "success").Bool(), out)

	rec, found, err := svc.Get(ctx, gjson.Get(out, "admissionId").String())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "61412345678", rec.Phone)
	assert.Equal(t, "2025", rec.Intake)
	assert.Equal(t, "true", rec.Notes)
	assert.Empty(t, rec.Country)
	assert.Equal(t, "a@b.com", rec.Email)
}

func TestCreateAdmissionWithoutParametersIsRejected(t *testing.T) {
	d, svc, pub := newTestDispatcher()
	ctx := context.Background()

	for _, params := range []string{``, `null`, ` null `} {
		out := toJSON(t, d.Dispatch(ctx, "createAdmissionApplication", json.RawMessage(params)))
		assert.JSONEq(t, `{"error":"Missing application details"}`, out, params)
	}
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, pub.sent)
}

func TestNumericIdentifiersAreAccepted(t *testing.T) {
	d, _, _ := newTestDispatcher()
	ctx := context.Background()

	out := toJSON(t, d.Dispatch(ctx, "checkAdmissionStatus", json.RawMessage(`{"admissionId":12345}`)))
	assert.Equal(t, "Application not found. Please verify your application ID or email.",
		gjson.Get(out, "message").String())

	out = toJSON(t, d.Dispatch(ctx, "scheduleAppointment", json.RawMessage(`{"date":20250301,"time":10}`)))
	assert.Equal(t, "Your appointment has been scheduled for 20250301 at 10. You will receive a confirmation email shortly.",
		gjson.Get(out, "message").String())
}
