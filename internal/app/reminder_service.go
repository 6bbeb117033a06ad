// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"team_attendance_bot/internal/domain/session"
	domainTelegram "team_attendance_bot/internal/domain/telegram"
	"team_attendance_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ReminderService nudges coaches about sessions whose attendance was never taken.
type ReminderService interface {
	// NotifyUnmarkedSessions messages every coach once per session of day without
	// attendance rows and returns the number of sessions reported.
	NotifyUnmarkedSessions(ctx context.Context, day time.Time) (int, error)
}

// ReminderServiceImpl implements the ReminderService interface.
type ReminderServiceImpl struct {
	sessionRepo    session.Repository
	telegramClient domainTelegram.Client
	recipients     []int64
	logger         *logrus.Entry
}

func NewReminderServiceImpl(
	sr session.Repository,
	tc domainTelegram.Client,
	recipients []int64,
	logger *logrus.Entry,
) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		sessionRepo:    sr,
		telegramClient: tc,
		recipients:     recipients,
		logger:         logger,
	}
}

func (s *ReminderServiceImpl) NotifyUnmarkedSessions(ctx context.Context, day time.Time) (int, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	log := s.logger.WithField("date", from.Format("2006-01-02"))

	unmarked, err := s.sessionRepo.UnmarkedBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		log.WithError(err).Error("Failed to list unmarked sessions")
		return 0, fmt.Errorf("failed to list unmarked sessions: %w", err)
	}
	if len(unmarked) == 0 {
		log.Info("All sessions have attendance. No reminders to send.")
		return 0, nil
	}
	if len(s.recipients) == 0 {
		log.Warnf("%d sessions without attendance but no coach to remind", len(unmarked))
		return len(unmarked), nil
	}

	for _, sess := range unmarked {
		text := fmt.Sprintf("Attendance for %s %s-%s (group %s, %s) has not been taken yet.",
			sess.DateString(), sess.StartTime, sess.EndTime, sess.Groups, sess.Type)

		replyMarkup := &telebot.ReplyMarkup{}
		btnOpen := replyMarkup.Data("Take attendance", domainTelegram.CallbackOpenSheet, strconv.FormatInt(sess.ID, 10))
		replyMarkup.Inline(replyMarkup.Row(btnOpen))

		for _, chatID := range s.recipients {
			err := s.telegramClient.SendMessage(chatID, text, &telebot.SendOptions{ReplyMarkup: replyMarkup})
			if err != nil {
				metrics.RemindersSentTotal.WithLabelValues("failed").Inc()
				log.WithError(err).WithFields(logrus.Fields{"session_id": sess.ID, "chat_id": chatID}).Error("Failed to send reminder")
				continue
			}
			metrics.RemindersSentTotal.WithLabelValues("sent").Inc()
		}
	}

	log.Infof("Reminded %d coaches about %d sessions", len(s.recipients), len(unmarked))
	return len(unmarked), nil
}
