package scheduler

import (
	"context"
	"time"

	"team_attendance_bot/internal/app" // For ReminderService interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds a single reminder run.
const jobTimeout = 2 * time.Minute

type ReminderScheduler struct {
	cronEngine       *cron.Cron
	reminderService  app.ReminderService // Using the interface
	logger           *logrus.Entry
	cronSpecReminder string
	now              func() time.Time
}

func NewReminderScheduler(
	reminderService app.ReminderService,
	logger *logrus.Entry,
	cronSpecReminder string, // e.g., "0 21 * * *" (9 PM daily)
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		reminderService:  reminderService,
		logger:           logger,
		cronSpecReminder: cronSpecReminder,
		now:              time.Now,
	}
}

// Start registers the reminder job and starts the cron engine.
// An invalid cron spec is returned instead of starting.
func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecReminder, s.runReminders)
	if err != nil {
		s.logger.WithError(err).Errorf("Could not add reminder cron job for spec %q", s.cronSpecReminder)
		return err
	}

	s.cronEngine.Start()
	s.logger.Infof("Reminder scheduler started with spec %q.", s.cronSpecReminder)
	return nil
}

func (s *ReminderScheduler) runReminders() {
	s.logger.Info("Cron job triggered for unmarked session reminders.")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	today := s.now()
	n, err := s.reminderService.NotifyUnmarkedSessions(ctx, today)
	if err != nil {
		s.logger.WithError(err).Error("Error during unmarked session reminders")
		return
	}
	s.logger.Infof("Reminder run for %s finished, %d unmarked sessions.", today.Format("2006-01-02"), n)
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
