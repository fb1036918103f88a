package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	appointmenterrors "mediops/internal/appointments/errors"
	"mediops/internal/appointments/validator"
	scheduleerrors "mediops/internal/schedules/errors"
	scheduleservice "mediops/internal/schedules/service"
	"mediops/pkg/config"
	mongotx "mediops/pkg/db/mongo"
	apperrors "mediops/pkg/errors"
	"mediops/pkg/identifier"
	"mediops/pkg/logger"
	"mediops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

// --- Mocks ---

type mockAppointmentRepo struct {
	mu          sync.Mutex
	docs        map[string]*model.Appointment
	rawOverride map[string][]bson.M
	dupOnInsert int
	insertErr   error
	rawCalls    int
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{docs: make(map[string]*model.Appointment)}
}

func (m *mockAppointmentRepo) Insert(_ context.Context, appt *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return m.insertErr
	}
	if m.dupOnInsert > 0 {
		m.dupOnInsert--
		return fmt.Errorf("%w: %s", appointmenterrors.ErrDuplicateID, appt.ID)
	}
	if _, exists := m.docs[appt.ID]; exists {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrDuplicateID, appt.ID)
	}
	stored := *appt
	m.docs[appt.ID] = &stored
	return nil
}

func (m *mockAppointmentRepo) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, id)
	}
	out := *appt
	return &out, nil
}

func (m *mockAppointmentRepo) FindRawByPatient(_ context.Context, patientID string) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rawCalls++
	if rows, ok := m.rawOverride[patientID]; ok {
		return rows, nil
	}

	var rows []bson.M
	for _, appt := range m.docs {
		if appt.PatientID == patientID {
			rows = append(rows, rawRow(appt))
		}
	}
	return rows, nil
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, id string, from, to model.AppointmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt, ok := m.docs[id]
	if !ok || appt.Status != from {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrStatusConflict, id)
	}
	appt.Status = to
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, id)
	}
	delete(m.docs, id)
	return nil
}

func (m *mockAppointmentRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func (m *mockAppointmentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func rawRow(a *model.Appointment) bson.M {
	return bson.M{
		"_id":          a.ID,
		"patient_id":   a.PatientID,
		"doctor_id":    a.DoctorID,
		"hospital_id":  a.HospitalID,
		"slot_id":      a.SlotID,
		"date":         a.Date,
		"status":       string(a.Status),
		"reason":       a.Reason,
		"is_premium":   a.IsPremium,
		"booking_time": a.BookingTime,
	}
}

type mockOccupancyRepo struct {
	mu         sync.Mutex
	counts     map[string]int
	reserveErr error
}

func newMockOccupancyRepo() *mockOccupancyRepo {
	return &mockOccupancyRepo{counts: make(map[string]int)}
}

func (m *mockOccupancyRepo) Reserve(_ context.Context, key string, capacity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reserveErr != nil {
		return m.reserveErr
	}
	if m.counts[key] >= capacity {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrCapacityFull, key)
	}
	m.counts[key]++
	return nil
}

func (m *mockOccupancyRepo) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.counts[key] > 0 {
		m.counts[key]--
	}
	return nil
}

func (m *mockOccupancyRepo) countFor(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

// mockPatientRepo is keyed by the PAT display identifier, matching the
// repository contract; the stored records carry distinct internal ids.
type mockPatientRepo struct {
	patients map[string]*model.Patient
}

func (m *mockPatientRepo) FindByDisplayID(_ context.Context, displayID string) (*model.Patient, error) {
	p, ok := m.patients[displayID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", appointmenterrors.ErrPatientNotFound, displayID)
	}
	out := *p
	return &out, nil
}

type mockScheduleRepo struct {
	ws *model.WeeklySchedule
}

func (m *mockScheduleRepo) Upsert(_ context.Context, ws *model.WeeklySchedule) error {
	m.ws = ws
	return nil
}

func (m *mockScheduleRepo) FindByDoctorHospital(_ context.Context, doctorID, hospitalID string) (*model.WeeklySchedule, error) {
	if m.ws == nil || m.ws.DoctorID != doctorID || m.ws.HospitalID != hospitalID {
		return nil, scheduleerrors.ErrNotFound
	}
	return m.ws, nil
}

func (m *mockScheduleRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockPublisher struct {
	mu      sync.Mutex
	created []string
	changed []string
}

func (m *mockPublisher) AppointmentCreated(_ context.Context, appt *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, appt.ID)
	return nil
}

func (m *mockPublisher) StatusChanged(_ context.Context, appt *model.Appointment, previous model.AppointmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, appt.ID+":"+previous.String()+">"+appt.Status.String())
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// --- Fixtures ---

type fixture struct {
	svc       AppointmentService
	repo      *mockAppointmentRepo
	occupancy *mockOccupancyRepo
	patients  *mockPatientRepo
	schedules *mockScheduleRepo
	publisher *mockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	cfg := &config.Config{
		Log:                   log,
		MaxNormalPatients:     6,
		MaxPremiumPatients:    2,
		BookingIDAttempts:     5,
		CapacityRetryAttempts: 3,
	}

	week, err := scheduleservice.BuildWeek(
		[]string{"09:00-10:00", "14:00-15:00"},
		[]string{"10:00-11:00"},
	)
	if err != nil {
		t.Fatalf("building fixture schedule: %v", err)
	}

	repo := newMockAppointmentRepo()
	occupancy := newMockOccupancyRepo()
	patients := &mockPatientRepo{patients: map[string]*model.Patient{
		"PAT00001": {ID: "6a1f6f2e9c1d", DisplayID: "PAT00001", Name: "Asha Rao", IsPremium: false},
		"PAT00002": {ID: "6a1f6f2e9c1e", DisplayID: "PAT00002", Name: "Vikram Shah", IsPremium: true},
	}}
	schedules := &mockScheduleRepo{ws: &model.WeeklySchedule{
		DoctorID:           "DOC001",
		HospitalID:         "HOSP01",
		Week:               week,
		MaxNormalPatients:  6,
		MaxPremiumPatients: 2,
	}}
	publisher := &mockPublisher{}

	svc := NewAppointmentService(
		repo, occupancy, patients, schedules,
		validator.NewAppointmentValidator(log),
		publisher, cfg,
	)
	t.Cleanup(svc.Stop)

	return &fixture{
		svc:       svc,
		repo:      repo,
		occupancy: occupancy,
		patients:  patients,
		schedules: schedules,
		publisher: publisher,
	}
}

func createRequest() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:  "PAT00001",
		DoctorID:   "DOC001",
		HospitalID: "HOSP01",
		SlotID:     "09:00-10:00",
		Date:       "2026-03-16",
		Reason:     "follow-up",
	}
}

// --- Tests ---

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !identifier.IsAppointmentID(appt.ID) {
		t.Errorf("appointment ID %q does not match the token format", appt.ID)
	}
	if appt.Status != model.StatusUpcoming {
		t.Errorf("status = %s, want upcoming", appt.Status)
	}
	if appt.BookingTime.IsZero() {
		t.Error("booking time not set")
	}
	if appt.IsPremium {
		t.Error("normal patient booked as premium")
	}
	if len(f.publisher.created) != 1 {
		t.Errorf("created events = %d, want 1", len(f.publisher.created))
	}
}

func TestCreateResolvesPremiumTier(t *testing.T) {
	f := newFixture(t)

	req := createRequest()
	req.PatientID = "PAT00002"

	appt, err := f.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !appt.IsPremium {
		t.Error("premium patient booked as normal")
	}
	key := model.OccupancyKey("DOC001", "HOSP01", "2026-03-16", "09:00-10:00", model.TierPremium)
	if f.occupancy.countFor(key) != 1 {
		t.Errorf("premium bucket count = %d, want 1", f.occupancy.countFor(key))
	}
}

func TestCreateNormalizesDriftedSlot(t *testing.T) {
	f := newFixture(t)

	req := createRequest()
	req.SlotID = "9:00-10:00 AM"

	appt, err := f.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.SlotID != "09:00-10:00" {
		t.Errorf("slot_id = %q, want canonical form", appt.SlotID)
	}
}

func TestCreateMatchesDriftedStoredEntry(t *testing.T) {
	f := newFixture(t)

	// A grid persisted before the current format rules may carry drifted
	// times; booking must still match the slot component-wise.
	monday := f.schedules.ws.Week["monday"]
	for i := range monday {
		if monday[i].Start == "09:00" {
			monday[i].Start = "9:00"
			monday[i].End = "10:00 AM"
		}
	}

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("drifted stored entry should still match: %v", err)
	}
	if appt.SlotID != "09:00-10:00" {
		t.Errorf("slot_id = %q, want canonical form", appt.SlotID)
	}
}

func TestCreateResolvesDisplayID(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The stored row references the PAT display id, never the patient
	// record's internal storage key.
	if appt.PatientID != "PAT00001" {
		t.Errorf("patient_id = %q, want the display id", appt.PatientID)
	}
}

func TestCreateReserveContention(t *testing.T) {
	f := newFixture(t)
	f.occupancy.reserveErr = fmt.Errorf("%w: some-bucket", appointmenterrors.ErrReserveContention)

	_, err := f.svc.Create(context.Background(), createRequest())
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("reservation contention should yield CONFLICT, got %v", err)
	}
	if apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Error("contention must not be reported as exhausted capacity")
	}
	if f.repo.count() != 0 {
		t.Error("no appointment should be stored")
	}
}

func TestCreatePatientNotFound(t *testing.T) {
	f := newFixture(t)

	req := createRequest()
	req.PatientID = "PAT99999"

	_, err := f.svc.Create(context.Background(), req)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown patient should yield NOT_FOUND, got %v", err)
	}
	if f.repo.count() != 0 {
		t.Error("no appointment should be stored")
	}
}

func TestCreateSlotNotOffered(t *testing.T) {
	f := newFixture(t)

	req := createRequest()
	req.SlotID = "11:00-12:00"

	_, err := f.svc.Create(context.Background(), req)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("unoffered slot should yield CONFLICT, got %v", err)
	}
}

func TestCreateRetriesTokenCollision(t *testing.T) {
	f := newFixture(t)
	f.repo.dupOnInsert = 2

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("collisions within the retry budget should succeed, got %v", err)
	}
	if f.repo.docs[appt.ID] == nil {
		t.Error("appointment not stored after retries")
	}
}

func TestCreateExhaustsTokenRetries(t *testing.T) {
	f := newFixture(t)
	f.repo.dupOnInsert = 100

	_, err := f.svc.Create(context.Background(), createRequest())
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("exhausted retries should yield CONFLICT, got %v", err)
	}

	// The reserved seat must be compensated back.
	key := model.OccupancyKey("DOC001", "HOSP01", "2026-03-16", "09:00-10:00", model.TierNormal)
	if f.occupancy.countFor(key) != 0 {
		t.Errorf("occupancy after compensation = %d, want 0", f.occupancy.countFor(key))
	}
}

func TestCreateCompensatesOnInsertFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.insertErr = fmt.Errorf("write concern error")

	_, err := f.svc.Create(context.Background(), createRequest())
	if err == nil {
		t.Fatal("expected error")
	}

	key := model.OccupancyKey("DOC001", "HOSP01", "2026-03-16", "09:00-10:00", model.TierNormal)
	if f.occupancy.countFor(key) != 0 {
		t.Errorf("occupancy after compensation = %d, want 0", f.occupancy.countFor(key))
	}
	if f.repo.count() != 0 {
		t.Error("no appointment should remain stored")
	}
}

func TestConcurrentCreatesRespectCapacity(t *testing.T) {
	f := newFixture(t)

	// Premium bucket holds two seats.
	const attempts = 6
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := createRequest()
			req.PatientID = "PAT00002"
			_, err := f.svc.Create(context.Background(), req)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, capacityErrs := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsCode(err, apperrors.CodeCapacityExceeded):
			capacityErrs++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", succeeded)
	}
	if capacityErrs != attempts-2 {
		t.Errorf("capacity errors = %d, want %d", capacityErrs, attempts-2)
	}
	if f.repo.count() != 2 {
		t.Errorf("stored appointments = %d, want 2", f.repo.count())
	}
}

func TestListByPatientDegradesPerRecord(t *testing.T) {
	f := newFixture(t)

	good := &model.Appointment{
		ID: "APPT123A", PatientID: "PAT00001", DoctorID: "DOC001",
		HospitalID: "HOSP01", SlotID: "09:00-10:00", Date: "2026-03-16",
		Status: model.StatusUpcoming,
	}
	f.repo.rawOverride = map[string][]bson.M{
		"PAT00001": {
			rawRow(good),
			{"_id": "APPT999Z", "patient_id": "PAT00001"}, // missing critical fields
		},
	}

	appts, total, err := f.svc.ListByPatient(context.Background(), "PAT00001", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(appts) != 1 {
		t.Fatalf("got %d/%d records, want 1/1", len(appts), total)
	}
	if appts[0].ID != "APPT123A" {
		t.Errorf("surviving record = %s", appts[0].ID)
	}
}

func TestListByPatientUsesCache(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), createRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, _, err := f.svc.ListByPatient(context.Background(), "PAT00001", 10, 0); err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	if _, _, err := f.svc.ListByPatient(context.Background(), "PAT00001", 10, 0); err != nil {
		t.Fatalf("second list failed: %v", err)
	}

	f.repo.mu.Lock()
	calls := f.repo.rawCalls
	f.repo.mu.Unlock()
	if calls != 1 {
		t.Errorf("repository reads = %d, want 1 (second list should hit the cache)", calls)
	}
}

func TestListByPatientRejectsBadID(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.ListByPatient(context.Background(), "nope", 10, 0)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("malformed patient_id should yield INVALID_INPUT, got %v", err)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.svc.UpdateStatus(context.Background(), appt.ID, "completed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCompleted {
		t.Errorf("status = %s, want completed", updated.Status)
	}

	// Terminal states reject every further transition.
	_, err = f.svc.UpdateStatus(context.Background(), appt.ID, "cancelled")
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("terminal transition should yield INVALID_TRANSITION, got %v", err)
	}
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), "APPT123A", "rescheduled")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("unknown status should yield INVALID_INPUT, got %v", err)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), "APPT123A", "completed")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing appointment should yield NOT_FOUND, got %v", err)
	}
}

func TestUpdateStatusCancelReleasesCapacity(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	key := model.OccupancyKey("DOC001", "HOSP01", "2026-03-16", "09:00-10:00", model.TierNormal)
	if f.occupancy.countFor(key) != 1 {
		t.Fatalf("precondition: bucket count = %d", f.occupancy.countFor(key))
	}

	if _, err := f.svc.UpdateStatus(context.Background(), appt.ID, "cancelled"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if f.occupancy.countFor(key) != 0 {
		t.Errorf("bucket count after cancel = %d, want 0", f.occupancy.countFor(key))
	}
}

func TestUpdateStatusPublishesEvent(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Create(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.svc.UpdateStatus(context.Background(), appt.ID, "missed"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	want := appt.ID + ":upcoming>missed"
	if len(f.publisher.changed) != 1 || f.publisher.changed[0] != want {
		t.Errorf("changed events = %v, want [%s]", f.publisher.changed, want)
	}
}
