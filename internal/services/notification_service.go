package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/justsurfingit/job-tracker-client/internal/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultWatchSchedule = "@every 1m"
	syncTimeout          = 2 * time.Minute
	watchPageSize        = 50
	matchPageSize        = 100
)

type NotificationAPI interface {
	ListNotifications(ctx context.Context, unreadOnly bool, page, pageSize int) (*dtos.Page[dtos.Notification], error)
	ListApplications(ctx context.Context, status string, page, pageSize int) (*dtos.Page[dtos.Application], error)
}

// NotificationEvent is one unread notification seen for the first time.
type NotificationEvent struct {
	Notification dtos.Notification
	Text         string
	// Application is the tracked application it concerns, if one matched.
	Application *dtos.Application
}

// NotificationWatcher polls unread notifications on a cron schedule and
// reports each one once. Reported ids are kept in the local store so a
// restart does not repeat them.
type NotificationWatcher struct {
	DB      *gorm.DB
	API     NotificationAPI
	Matcher *ApplicationMatcher
	OnNew   func(NotificationEvent)
	log     *zap.Logger
	spec    string
	cron    *cron.Cron

	running sync.Mutex
	initial sync.WaitGroup
}

func NewNotificationWatcher(db *gorm.DB, api NotificationAPI, log *zap.Logger, spec string, onNew func(NotificationEvent)) *NotificationWatcher {
	if spec == "" {
		spec = DefaultWatchSchedule
	}
	return &NotificationWatcher{
		DB:      db,
		API:     api,
		Matcher: NewApplicationMatcher(),
		OnNew:   onNew,
		log:     log,
		spec:    spec,
		cron:    cron.New(cron.WithLogger(cronLogger{log.Sugar()})),
	}
}

// Start registers the poll and runs one cycle right away.
func (w *NotificationWatcher) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", w.spec, err)
	}
	w.cron.Start()
	w.log.Info("Notification watcher started", zap.String("schedule", w.spec))

	w.initial.Add(1)
	go func() {
		defer w.initial.Done()
		w.runOnce(ctx)
	}()
	return nil
}

// Stop halts the schedule and waits for a running cycle, including the one
// Start kicked off, to finish.
func (w *NotificationWatcher) Stop() {
	<-w.cron.Stop().Done()
	w.initial.Wait()
	w.running.Lock()
	defer w.running.Unlock()
	w.log.Info("Notification watcher stopped")
}

func (w *NotificationWatcher) runOnce(ctx context.Context) {
	if _, err := w.Sync(ctx); err != nil {
		w.log.Warn("Notification sync failed", zap.Error(err))
	}
}

// Sync runs one poll cycle and returns how many new notifications were
// reported. A cycle that starts while another is running does nothing.
func (w *NotificationWatcher) Sync(ctx context.Context) (int, error) {
	if !w.running.TryLock() {
		w.log.Debug("Notification sync already running, skipping")
		return 0, nil
	}
	defer w.running.Unlock()

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	page, err := w.API.ListNotifications(ctx, true, 1, watchPageSize)
	if err != nil {
		return 0, err
	}

	var fresh []dtos.Notification
	for _, n := range page.Items {
		var count int64
		if err := w.DB.Model(&models.SeenNotification{}).Where("id = ?", n.ID).Count(&count).Error; err != nil {
			return 0, fmt.Errorf("failed to check notification %s: %w", n.ID, err)
		}
		if count == 0 {
			fresh = append(fresh, n)
		}
	}
	if len(fresh) == 0 {
		w.log.Debug("No new notifications")
		return 0, nil
	}

	apps := w.loadApplications(ctx)
	for _, n := range fresh {
		event := NotificationEvent{
			Notification: n,
			Text:         format.HTMLToText(n.Message),
			Application:  w.Matcher.Match(n, apps),
		}
		if w.OnNew != nil {
			w.OnNew(event)
		}
		if err := w.DB.Create(&models.SeenNotification{ID: n.ID}).Error; err != nil {
			w.log.Warn("Could not record notification", zap.String("id", n.ID), zap.Error(err))
		}
	}
	w.log.Info("New notifications", zap.Int("count", len(fresh)))
	return len(fresh), nil
}

// loadApplications fetches tracked applications for matching. Matching is a
// nicety, so failures only lose the link.
func (w *NotificationWatcher) loadApplications(ctx context.Context) []dtos.Application {
	page, err := w.API.ListApplications(ctx, "", 1, matchPageSize)
	if err != nil {
		w.log.Debug("Could not load applications for matching", zap.Error(err))
		return nil
	}
	return page.Items
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
