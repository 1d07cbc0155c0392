package services

import (
	"errors"
	"fmt"

	"github.com/learnlab/learnlab-backend/models"
	"github.com/learnlab/learnlab-backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const freeIntroDurationMinutes = 5

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionFinalized = errors.New("session is already completed or cancelled")
	ErrNotSessionMentor = errors.New("only the session mentor can complete it")
	ErrNotParticipant   = errors.New("you are not a participant of this session")
)

// SessionStore is the persistence surface the booking workflow needs.
type SessionStore interface {
	FindUser(id uuid.UUID) (*models.User, error)
	FindSession(id uuid.UUID) (*models.Session, error)
	CreateSession(session *models.Session) error
	SaveSession(session *models.Session) error
	// CompleteSession persists the status change and the earning as one
	// transactional unit, creating at most one earning per session.
	CompleteSession(session *models.Session, earning *models.Earning) error
}

type SessionService struct {
	store SessionStore
}

func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{store: store}
}

type BookSessionInput struct {
	StudentID uuid.UUID
	MentorID  uuid.UUID
	Subject   string
	Date      string
	StartTime string
	Duration  int
	Notes     string
}

// SessionAmount prices a booking. A five-minute intro session is always
// free; anything else is billed at the mentor's hourly rate.
func SessionAmount(hourlyRate float64, durationMinutes int) float64 {
	if durationMinutes == freeIntroDurationMinutes {
		return 0
	}
	return hourlyRate * float64(durationMinutes) / 60
}

// Book validates the request, prices it against the mentor's hourly rate and
// inserts a scheduled session. Validation failures short-circuit before any
// write happens.
func (s *SessionService) Book(in BookSessionInput) (*models.Session, error) {
	if in.MentorID == uuid.Nil || in.StudentID == uuid.Nil || in.Subject == "" || in.Date == "" || in.StartTime == "" {
		return nil, errors.New("mentor, student, subject, date and time are required")
	}
	if in.Duration <= 0 {
		return nil, errors.New("duration must be a positive number of minutes")
	}

	mentor, err := s.store.FindUser(in.MentorID)
	if err != nil {
		return nil, errors.New("mentor not found")
	}
	if mentor.Role != "mentor" {
		return nil, errors.New("selected user is not a mentor")
	}

	session := &models.Session{
		StudentID:       in.StudentID,
		MentorID:        in.MentorID,
		Subject:         in.Subject,
		Date:            in.Date,
		StartTime:       in.StartTime,
		DurationMinutes: in.Duration,
		Status:          "scheduled",
		Amount:          SessionAmount(mentor.HourlyRate, in.Duration),
	}
	if in.Notes != "" {
		session.Notes = &in.Notes
	}
	link := utils.GenerateMeetingLink()
	session.MeetingLink = &link

	if err := s.store.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Transition moves a session to a target status. Completing a session
// creates exactly one pending earning for the mentor in the same
// transaction; cancelling has no side effects. Completed and cancelled are
// terminal.
func (s *SessionService) Transition(sessionID, actorID uuid.UUID, actorRole, target string) (*models.Session, error) {
	session, err := s.store.FindSession(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	if actorRole != "admin" && actorID != session.StudentID && actorID != session.MentorID {
		return nil, ErrNotParticipant
	}
	if session.Status == "completed" || session.Status == "cancelled" {
		return nil, ErrSessionFinalized
	}

	switch target {
	case "completed":
		if actorRole != "admin" && actorID != session.MentorID {
			return nil, ErrNotSessionMentor
		}
		session.Status = "completed"
		earning := &models.Earning{
			MentorID:  session.MentorID,
			SessionID: session.ID,
			Amount:    session.Amount,
			Status:    "pending",
		}
		if err := s.store.CompleteSession(session, earning); err != nil {
			return nil, fmt.Errorf("failed to complete session: %w", err)
		}
	case "cancelled", "scheduled":
		session.Status = target
		if err := s.store.SaveSession(session); err != nil {
			return nil, fmt.Errorf("failed to update session: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid session status: %s", target)
	}

	return session, nil
}

type gormSessionStore struct {
	db *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) SessionStore {
	return &gormSessionStore{db: db}
}

func (s *gormSessionStore) FindUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormSessionStore) FindSession(id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := s.db.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *gormSessionStore) CreateSession(session *models.Session) error {
	return s.db.Create(session).Error
}

func (s *gormSessionStore) SaveSession(session *models.Session) error {
	return s.db.Save(session).Error
}

func (s *gormSessionStore) CompleteSession(session *models.Session, earning *models.Earning) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(session).Error; err != nil {
			return err
		}

		// The unique session_id column plus this check keep the two-step
		// write retry-safe: a replay finds the earning and stops.
		var existing models.Earning
		err := tx.Where("session_id = ?", session.ID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(earning).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("id = ?", session.MentorID).
			Updates(map[string]interface{}{
				"total_sessions": gorm.Expr("total_sessions + 1"),
				"total_earnings": gorm.Expr("total_earnings + ?", earning.Amount),
			}).Error
	})
}
