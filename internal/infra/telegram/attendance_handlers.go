// internal/infra/telegram/attendance_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"team_attendance_bot/internal/app"
	"team_attendance_bot/internal/domain/attendance"
	domainTelegram "team_attendance_bot/internal/domain/telegram"
	idb "team_attendance_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// chatLocks serializes sheet callbacks per chat. Telebot runs handlers concurrently.
type chatLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newChatLocks() *chatLocks {
	return &chatLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *chatLocks) lock(chatID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[chatID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[chatID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

type attendanceHandlers struct {
	ctx               context.Context
	attendanceService *app.AttendanceService
	drafts            attendance.DraftStore
	roles             app.Roles
	draftTTL          time.Duration
	locks             *chatLocks
	logger            *logrus.Entry
}

// RegisterAttendanceHandlers registers the attendance sheet callbacks.
func RegisterAttendanceHandlers(
	ctx context.Context,
	b *telebot.Bot,
	attendanceService *app.AttendanceService,
	drafts attendance.DraftStore,
	roles app.Roles,
	draftTTL time.Duration,
	baseLogger *logrus.Entry,
) {
	h := newAttendanceHandlers(ctx, attendanceService, drafts, roles, draftTTL, baseLogger)

	b.Handle(&telebot.Btn{Unique: domainTelegram.CallbackOpenSheet}, h.coachOnly(h.open))
	b.Handle(&telebot.Btn{Unique: domainTelegram.CallbackTap}, h.coachOnly(h.tap))
	b.Handle(&telebot.Btn{Unique: domainTelegram.CallbackSaveSheet}, h.coachOnly(h.save))
	b.Handle(&telebot.Btn{Unique: domainTelegram.CallbackReloadSheet}, h.coachOnly(h.reload))
	b.Handle(&telebot.Btn{Unique: domainTelegram.CallbackCancelSheet}, h.coachOnly(h.cancel))
}

func newAttendanceHandlers(
	ctx context.Context,
	attendanceService *app.AttendanceService,
	drafts attendance.DraftStore,
	roles app.Roles,
	draftTTL time.Duration,
	baseLogger *logrus.Entry,
) *attendanceHandlers {
	return &attendanceHandlers{
		ctx:               ctx,
		attendanceService: attendanceService,
		drafts:            drafts,
		roles:             roles,
		draftTTL:          draftTTL,
		locks:             newChatLocks(),
		logger:            baseLogger.WithField("handler_group", "attendance"),
	}
}

func (h *attendanceHandlers) coachOnly(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if !h.roles.IsCoach(c.Sender().ID) {
			h.logger.WithField("sender_id", c.Sender().ID).Warn("Unauthorized sheet callback")
			return c.Respond(&telebot.CallbackResponse{Text: "Only coaches can take attendance."})
		}
		return next(c)
	}
}

func (h *attendanceHandlers) callbackLogger(c telebot.Context, handler string) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"handler":   handler,
		"sender_id": c.Sender().ID,
		"chat_id":   c.Chat().ID,
	})
}

// open loads a fresh sheet for the session and posts it as a new message.
func (h *attendanceHandlers) open(c telebot.Context) error {
	logCtx := h.callbackLogger(c, domainTelegram.CallbackOpenSheet)
	sessionID, err := parseSessionArg(c.Args())
	if err != nil {
		logCtx.WithError(err).Warn("Invalid callback data")
		return c.Respond(&telebot.CallbackResponse{Text: "Invalid session."})
	}
	logCtx = logCtx.WithField("session_id", sessionID)

	unlock := h.locks.lock(c.Chat().ID)
	defer unlock()

	sheet, err := h.attendanceService.LoadSheet(h.ctx, sessionID)
	if err != nil {
		return h.respondLoadError(c, logCtx, err)
	}

	// Drafts are kept per chat, so the new sheet replaces any open one.
	var discarded *attendance.Sheet
	if prev, err := h.drafts.Get(h.ctx, c.Chat().ID); err == nil && prev.Dirty {
		discarded = prev
	}
	if err := h.drafts.Put(h.ctx, c.Chat().ID, sheet, h.draftTTL); err != nil {
		logCtx.WithError(err).Error("Failed to store draft")
		return c.Respond(&telebot.CallbackResponse{Text: "Could not open the sheet, try again."})
	}

	logCtx.Info("Sheet opened")
	if err := c.Send(SheetText(sheet), SheetMarkup(sheet)); err != nil {
		return err
	}
	if discarded != nil {
		logCtx.WithField("discarded_session_id", discarded.SessionID).Warn("Unsaved sheet replaced")
		return c.Respond(&telebot.CallbackResponse{
			Text:      fmt.Sprintf("Unsaved changes of the sheet for session #%d were discarded.", discarded.SessionID),
			ShowAlert: true,
		})
	}
	return c.Respond()
}

func (h *attendanceHandlers) tap(c telebot.Context) error {
	logCtx := h.callbackLogger(c, domainTelegram.CallbackTap)
	sessionID, fincode, err := parseTapArgs(c.Args())
	if err != nil {
		logCtx.WithError(err).Warn("Invalid callback data")
		return c.Respond(&telebot.CallbackResponse{Text: "Invalid button."})
	}

	unlock := h.locks.lock(c.Chat().ID)
	defer unlock()

	sheet, ok, err := h.currentSheet(c, sessionID)
	if !ok {
		return err
	}

	status, err := h.attendanceService.Tap(sheet, fincode)
	if err != nil {
		logCtx.WithError(err).WithField("fincode", fincode).Warn("Tap on unknown athlete")
		return c.Respond(&telebot.CallbackResponse{Text: "This athlete is not on the sheet."})
	}
	if err := h.drafts.Put(h.ctx, c.Chat().ID, sheet, h.draftTTL); err != nil {
		logCtx.WithError(err).Error("Failed to store draft")
		return c.Respond(&telebot.CallbackResponse{Text: "Could not record the change, try again."})
	}

	if err := c.Edit(SheetText(sheet), SheetMarkup(sheet)); err != nil {
		logCtx.WithError(err).Warn("Failed to redraw sheet")
	}
	return c.Respond(&telebot.CallbackResponse{Text: status.Label()})
}

func (h *attendanceHandlers) save(c telebot.Context) error {
	logCtx := h.callbackLogger(c, domainTelegram.CallbackSaveSheet)
	sessionID, err := parseSessionArg(c.Args())
	if err != nil {
		logCtx.WithError(err).Warn("Invalid callback data")
		return c.Respond(&telebot.CallbackResponse{Text: "Invalid session."})
	}

	unlock := h.locks.lock(c.Chat().ID)
	defer unlock()

	sheet, ok, err := h.currentSheet(c, sessionID)
	if !ok {
		return err
	}

	res, err := h.attendanceService.SaveSheet(h.ctx, sheet)
	if err != nil {
		logCtx.WithError(err).WithField("session_id", sessionID).Warn("Save failed")
		// Keep the sheet, stale or not, so the coach can retry or reload.
		if putErr := h.drafts.Put(h.ctx, c.Chat().ID, sheet, h.draftTTL); putErr != nil {
			logCtx.WithError(putErr).Error("Failed to store draft after failed save")
		}
		_ = c.Edit(SheetText(sheet), SheetMarkup(sheet))

		switch {
		case errors.Is(err, app.ErrSaveInProgress):
			return c.Respond(&telebot.CallbackResponse{Text: "A save for this session is already running."})
		case sheet.Stale:
			return c.Respond(&telebot.CallbackResponse{Text: "Saving failed halfway. Reload the sheet before saving again.", ShowAlert: true})
		default:
			return c.Respond(&telebot.CallbackResponse{Text: "Saving failed, nothing was lost on this sheet. Try again.", ShowAlert: true})
		}
	}

	if err := h.drafts.Delete(h.ctx, c.Chat().ID); err != nil {
		logCtx.WithError(err).Warn("Failed to delete draft after save")
	}
	summary := fmt.Sprintf("%s\nSaved: %d updated, %d cleared.", SheetText(sheet), res.Upserted, res.Deleted)
	if err := c.Edit(summary); err != nil {
		logCtx.WithError(err).Warn("Failed to show save summary")
	}
	return c.Respond(&telebot.CallbackResponse{Text: "Saved."})
}

func (h *attendanceHandlers) reload(c telebot.Context) error {
	logCtx := h.callbackLogger(c, domainTelegram.CallbackReloadSheet)
	sessionID, err := parseSessionArg(c.Args())
	if err != nil {
		logCtx.WithError(err).Warn("Invalid callback data")
		return c.Respond(&telebot.CallbackResponse{Text: "Invalid session."})
	}
	logCtx = logCtx.WithField("session_id", sessionID)

	unlock := h.locks.lock(c.Chat().ID)
	defer unlock()

	sheet, err := h.attendanceService.LoadSheet(h.ctx, sessionID)
	if err != nil {
		return h.respondLoadError(c, logCtx, err)
	}
	if err := h.drafts.Put(h.ctx, c.Chat().ID, sheet, h.draftTTL); err != nil {
		logCtx.WithError(err).Error("Failed to store draft")
		return c.Respond(&telebot.CallbackResponse{Text: "Could not reload the sheet, try again."})
	}

	logCtx.Info("Sheet reloaded")
	_ = c.Edit(SheetText(sheet), SheetMarkup(sheet))
	return c.Respond(&telebot.CallbackResponse{Text: "Reloaded."})
}

func (h *attendanceHandlers) cancel(c telebot.Context) error {
	logCtx := h.callbackLogger(c, domainTelegram.CallbackCancelSheet)

	unlock := h.locks.lock(c.Chat().ID)
	defer unlock()

	if err := h.drafts.Delete(h.ctx, c.Chat().ID); err != nil {
		logCtx.WithError(err).Warn("Failed to delete draft")
	}
	_ = c.Edit("Attendance sheet closed without saving.")
	return c.Respond()
}

// currentSheet returns the open draft of the chat when it belongs to sessionID.
// When ok is false the callback has been answered and err is the handler result.
func (h *attendanceHandlers) currentSheet(c telebot.Context, sessionID int64) (*attendance.Sheet, bool, error) {
	sheet, err := h.drafts.Get(h.ctx, c.Chat().ID)
	if err != nil {
		if !errors.Is(err, attendance.ErrDraftNotFound) {
			h.logger.WithError(err).WithField("chat_id", c.Chat().ID).Error("Failed to read draft")
		}
		return nil, false, c.Respond(&telebot.CallbackResponse{Text: "This sheet has expired, open it again.", ShowAlert: true})
	}
	if sheet.SessionID != sessionID {
		return nil, false, c.Respond(&telebot.CallbackResponse{Text: "Another sheet is open in this chat.", ShowAlert: true})
	}
	return sheet, true, nil
}

func (h *attendanceHandlers) respondLoadError(c telebot.Context, logCtx *logrus.Entry, err error) error {
	if errors.Is(err, idb.ErrSessionNotFound) {
		logCtx.Warn("Session not found")
		return c.Respond(&telebot.CallbackResponse{Text: "This session no longer exists.", ShowAlert: true})
	}
	logCtx.WithError(err).Error("Failed to load sheet")
	return c.Respond(&telebot.CallbackResponse{Text: "Could not load attendance, try again later.", ShowAlert: true})
}
