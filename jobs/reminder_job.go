package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/learnlab/learnlab-backend/notifications"
)

// reminderWindowDates lists the calendar dates the reminder window touches.
// A window that straddles midnight spans two dates.
func reminderWindowDates(lower, upper time.Time) []string {
	dates := []string{lower.Format("2006-01-02")}
	if d := upper.Format("2006-01-02"); d != dates[0] {
		dates = append(dates, d)
	}
	return dates
}

// SendSessionReminders emails both parties of sessions starting in roughly
// one hour. Runs every five minutes, so the window is five minutes wide to
// avoid double sends.
func SendSessionReminders() {
	log.Println("Running job: SendSessionReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcoming []models.Session
	err := database.DB.
		Preload("Student").
		Preload("Mentor").
		Where("status = ? AND date IN ?", "scheduled", reminderWindowDates(lowerBound, upperBound)).
		Find(&upcoming).Error
	if err != nil {
		log.Printf("Error checking for upcoming sessions: %v", err)
		return
	}

	for _, session := range upcoming {
		startsAt, err := session.StartsAt()
		if err != nil {
			log.Printf("Skipping session %s with unparseable start: %v", session.ID, err)
			continue
		}
		if startsAt.Before(lowerBound) || !startsAt.Before(upperBound) {
			continue
		}

		log.Printf("Sending reminder for session ID: %s", session.ID)

		meetingLink := ""
		if session.MeetingLink != nil {
			meetingLink = *session.MeetingLink
		}
		emailSubject := "Reminder: Your Session Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Session Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your %s session is scheduled to start in one hour at %s.</p><p><b>Meeting Link:</b> <a href='%s'>Join Session</a></p>",
			session.Subject,
			session.StartTime,
			meetingLink,
		)

		go notifications.SendEmail(session.Student.FullName, session.Student.Email, emailSubject, emailBody)
		go notifications.SendEmail(session.Mentor.FullName, session.Mentor.Email, emailSubject, emailBody)
	}
}
