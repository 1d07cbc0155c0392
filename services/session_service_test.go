package services

import (
	"errors"
	"testing"

	"github.com/learnlab/learnlab-backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSessionStore struct {
	users    map[uuid.UUID]models.User
	sessions map[uuid.UUID]models.Session
	created  []models.Session
	earnings []models.Earning
	saveErr  error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{
		users:    make(map[uuid.UUID]models.User),
		sessions: make(map[uuid.UUID]models.Session),
	}
}

func (m *mockSessionStore) FindUser(id uuid.UUID) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, errors.New("not found")
}

func (m *mockSessionStore) FindSession(id uuid.UUID) (*models.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, errors.New("not found")
}

func (m *mockSessionStore) CreateSession(session *models.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	m.sessions[session.ID] = *session
	m.created = append(m.created, *session)
	return nil
}

func (m *mockSessionStore) SaveSession(session *models.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[session.ID] = *session
	return nil
}

func (m *mockSessionStore) CompleteSession(session *models.Session, earning *models.Earning) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[session.ID] = *session
	for _, e := range m.earnings {
		if e.SessionID == earning.SessionID {
			return nil
		}
	}
	m.earnings = append(m.earnings, *earning)
	return nil
}

func (m *mockSessionStore) addMentor(hourlyRate float64) uuid.UUID {
	id := uuid.New()
	m.users[id] = models.User{ID: id, Role: "mentor", HourlyRate: hourlyRate}
	return id
}

func TestSessionAmount(t *testing.T) {
	tests := []struct {
		name       string
		hourlyRate float64
		duration   int
		want       float64
	}{
		{"five minute intro is free", 100, 5, 0},
		{"five minute intro is free at any rate", 250, 5, 0},
		{"one hour at full rate", 100, 60, 100},
		{"half hour", 100, 30, 50},
		{"ninety minutes", 80, 90, 120},
		{"zero rate", 0, 60, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SessionAmount(tt.hourlyRate, tt.duration), 1e-9)
		})
	}
}

func TestBookComputesAmountAndSchedules(t *testing.T) {
	store := newMockSessionStore()
	mentorID := store.addMentor(100)
	svc := NewSessionService(store)

	session, err := svc.Book(BookSessionInput{
		StudentID: uuid.New(),
		MentorID:  mentorID,
		Subject:   "Mathematics",
		Date:      "2026-09-10",
		StartTime: "14:00",
		Duration:  60,
	})
	require.NoError(t, err)
	assert.Equal(t, "scheduled", session.Status)
	assert.InDelta(t, 100.0, session.Amount, 1e-9)
	require.NotNil(t, session.MeetingLink)
	require.Len(t, store.created, 1)
}

func TestBookFreeIntroSession(t *testing.T) {
	store := newMockSessionStore()
	mentorID := store.addMentor(100)
	svc := NewSessionService(store)

	session, err := svc.Book(BookSessionInput{
		StudentID: uuid.New(),
		MentorID:  mentorID,
		Subject:   "Mathematics",
		Date:      "2026-09-10",
		StartTime: "09:00",
		Duration:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "scheduled", session.Status)
	assert.Zero(t, session.Amount)
}

func TestBookMissingFieldsDoesNotWrite(t *testing.T) {
	store := newMockSessionStore()
	mentorID := store.addMentor(100)
	svc := NewSessionService(store)

	valid := BookSessionInput{
		StudentID: uuid.New(),
		MentorID:  mentorID,
		Subject:   "Physics",
		Date:      "2026-09-10",
		StartTime: "14:00",
		Duration:  30,
	}

	cases := map[string]func(*BookSessionInput){
		"missing mentor":  func(in *BookSessionInput) { in.MentorID = uuid.Nil },
		"missing student": func(in *BookSessionInput) { in.StudentID = uuid.Nil },
		"missing subject": func(in *BookSessionInput) { in.Subject = "" },
		"missing date":    func(in *BookSessionInput) { in.Date = "" },
		"missing time":    func(in *BookSessionInput) { in.StartTime = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := svc.Book(in)
			require.Error(t, err)
			assert.Empty(t, store.created, "validation failure must not write")
		})
	}
}

func TestTransitionCompletedCreatesOneEarning(t *testing.T) {
	store := newMockSessionStore()
	mentorID := store.addMentor(100)
	svc := NewSessionService(store)

	session, err := svc.Book(BookSessionInput{
		StudentID: uuid.New(),
		MentorID:  mentorID,
		Subject:   "Mathematics",
		Date:      "2026-09-10",
		StartTime: "14:00",
		Duration:  60,
	})
	require.NoError(t, err)

	updated, err := svc.Transition(session.ID, mentorID, "mentor", "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)

	require.Len(t, store.earnings, 1)
	earning := store.earnings[0]
	assert.Equal(t, session.ID, earning.SessionID)
	assert.Equal(t, mentorID, earning.MentorID)
	assert.InDelta(t, 100.0, earning.Amount, 1e-9)
	assert.Equal(t, "pending", earning.Status)

	// Terminal state: a replayed completion must not add a second earning.
	_, err = svc.Transition(session.ID, mentorID, "mentor", "completed")
	assert.ErrorIs(t, err, ErrSessionFinalized)
	assert.Len(t, store.earnings, 1)
}

func TestTransitionCancelledCreatesNoEarning(t *testing.T) {
	store := newMockSessionStore()
	mentorID := store.addMentor(100)
	svc := NewSessionService(store)

	studentID := uuid.New()
	session, err := svc.Book(BookSessionInput{
		StudentID: studentID,
		MentorID:  mentorID,
		Subject:   "Mathematics",
		Date:      "2026-09-10",
		StartTime: "14:00",
		Duration:  60,
	})
	require.NoError(t, err)

	updated, err := svc.Transition(session.ID, studentID, "student", "cancelled")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", updated.Status)
	assert.Empty(t, store.earnings)

	// Cancelled is terminal.
	_, err = svc.Transition(session.ID, mentorID, "mentor", "completed")
	assert.ErrorIs(t, err, ErrSessionFinalized)
}

func TestTransitionBackToScheduledCreatesNoEarning(t *testing.T) {
	store := newMockSessionStore()
	mentorID := store.addMentor(100)
	svc := NewSessionService(store)

	session, err := svc.Book(BookSessionInput{
		StudentID: uuid.New(),
		MentorID:  mentorID,
		Subject:   "Mathematics",
		Date:      "2026-09-10",
		StartTime: "14:00",
		Duration:  60,
	})
	require.NoError(t, err)

	_, err = svc.Transition(session.ID, mentorID, "mentor", "scheduled")
	require.NoError(t, err)
	assert.Empty(t, store.earnings)
}

func TestTransitionCompletedRequiresMentor(t *testing.T) {
	store := newMockSessionStore()
	mentorID := store.addMentor(100)
	svc := NewSessionService(store)

	studentID := uuid.New()
	session, err := svc.Book(BookSessionInput{
		StudentID: studentID,
		MentorID:  mentorID,
		Subject:   "Mathematics",
		Date:      "2026-09-10",
		StartTime: "14:00",
		Duration:  60,
	})
	require.NoError(t, err)

	_, err = svc.Transition(session.ID, studentID, "student", "completed")
	assert.ErrorIs(t, err, ErrNotSessionMentor)
	assert.Empty(t, store.earnings)
}

func TestBookingLifecycleEndToEnd(t *testing.T) {
	store := newMockSessionStore()
	mentorID := store.addMentor(100)
	svc := NewSessionService(store)
	studentID := uuid.New()

	intro, err := svc.Book(BookSessionInput{
		StudentID: studentID,
		MentorID:  mentorID,
		Subject:   "Physics",
		Date:      "2026-09-11",
		StartTime: "10:00",
		Duration:  5,
	})
	require.NoError(t, err)
	assert.Zero(t, intro.Amount)
	assert.Equal(t, "scheduled", intro.Status)

	full, err := svc.Book(BookSessionInput{
		StudentID: studentID,
		MentorID:  mentorID,
		Subject:   "Physics",
		Date:      "2026-09-12",
		StartTime: "10:00",
		Duration:  60,
	})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, full.Amount, 1e-9)

	_, err = svc.Transition(full.ID, mentorID, "mentor", "completed")
	require.NoError(t, err)
	require.Len(t, store.earnings, 1)
	assert.InDelta(t, 100.0, store.earnings[0].Amount, 1e-9)
	assert.Equal(t, "pending", store.earnings[0].Status)
}
