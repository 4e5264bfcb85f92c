package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/pkg/jobs"
)

const digestJobType = "overdue_digest"

type digestLogin interface {
	Login(ctx context.Context, req models.LoginRequest) (*backend.Session, error)
	Logout(ctx context.Context, s *backend.Session) error
}

type overdueSource interface {
	Overdue(ctx context.Context, session *backend.Session) ([]models.ReconciledEnquiry, error)
}

// DigestSender delivers one digest message to a chat.
type DigestSender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// DigestConfig tunes the overdue digest.
type DigestConfig struct {
	Schedule        string
	ChatIDs         []int64
	ServiceUser     string
	ServicePassword string
	MaxEntries      int
	Workers         int
	Retries         int
	RetryDelay      time.Duration
	RunTimeout      time.Duration
}

// DigestServiceParams groups constructor dependencies.
type DigestServiceParams struct {
	Auth      digestLogin
	Enquiries overdueSource
	Sender    DigestSender
	Metrics   *MetricsService
	Logger    *zap.Logger
	Location  *time.Location
	Config    DigestConfig
}

type digestMessage struct {
	ChatID int64
	Text   string
}

// DigestService periodically sends the list of overdue follow-ups to
// staff chats. Each chat is a separate queued job so one failing chat is
// retried without resending to the others.
type DigestService struct {
	auth      digestLogin
	enquiries overdueSource
	sender    DigestSender
	metrics   *MetricsService
	logger    *zap.Logger
	loc       *time.Location
	cfg       DigestConfig
	now       func() time.Time

	queue *jobs.Queue
	cron  *cron.Cron
	mu    sync.Mutex
}

// NewDigestService constructs a DigestService and its delivery queue.
func NewDigestService(params DigestServiceParams) *DigestService {
	cfg := params.Config
	if cfg.Schedule == "" {
		cfg.Schedule = "0 9 * * *"
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 25
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	s := &DigestService{
		auth:      params.Auth,
		enquiries: params.Enquiries,
		sender:    params.Sender,
		metrics:   params.Metrics,
		logger:    logger,
		loc:       loc,
		cfg:       cfg,
		now:       time.Now,
	}
	s.queue = jobs.NewQueue("overdue-digest", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnGiveUp: func(job jobs.Job, err error) {
			s.metrics.ObserveDigestDelivery(false)
		},
	})
	return s
}

// Start launches the delivery queue and the cron schedule.
func (s *DigestService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	engine := cron.New(cron.WithLocation(s.loc))
	if _, err := engine.AddFunc(s.cfg.Schedule, func() { s.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("schedule overdue digest %q: %w", s.cfg.Schedule, err)
	}
	s.queue.Start(ctx)
	engine.Start()
	s.cron = engine
	s.logger.Info("overdue digest scheduled", zap.String("schedule", s.cfg.Schedule), zap.Int("chats", len(s.cfg.ChatIDs)))
	return nil
}

// Stop waits for a running digest and drains the queue workers.
func (s *DigestService) Stop() {
	s.mu.Lock()
	engine := s.cron
	s.cron = nil
	s.mu.Unlock()
	if engine == nil {
		return
	}
	<-engine.Stop().Done()
	s.queue.Stop()
}

func (s *DigestService) runScheduled(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.RunTimeout)
	defer cancel()
	if _, err := s.DispatchOverdueDigest(ctx); err != nil {
		s.logger.Error("overdue digest failed", zap.Error(err))
	}
}

// DispatchOverdueDigest logs in with the service account, collects the
// overdue enquiries and enqueues one message per configured chat. It
// returns the number of overdue enquiries found.
func (s *DigestService) DispatchOverdueDigest(ctx context.Context) (int, error) {
	if len(s.cfg.ChatIDs) == 0 {
		return 0, errors.New("no digest chats configured")
	}
	session, err := s.auth.Login(ctx, models.LoginRequest{Username: s.cfg.ServiceUser, Password: s.cfg.ServicePassword})
	if err != nil {
		return 0, fmt.Errorf("digest login: %w", err)
	}
	defer func() {
		if err := s.auth.Logout(context.WithoutCancel(ctx), session); err != nil {
			s.logger.Warn("digest logout failed", zap.Error(err))
		}
	}()

	overdue, err := s.enquiries.Overdue(ctx, session)
	if err != nil {
		return 0, fmt.Errorf("load overdue enquiries: %w", err)
	}
	if len(overdue) == 0 {
		s.logger.Info("no overdue follow-ups; digest skipped")
		return 0, nil
	}

	text := FormatDigest(overdue, s.now(), s.loc, s.cfg.MaxEntries)
	for _, chatID := range s.cfg.ChatIDs {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    digestJobType,
			Payload: digestMessage{ChatID: chatID, Text: text},
		}
		if err := s.queue.Enqueue(job); err != nil {
			return len(overdue), fmt.Errorf("enqueue digest for chat %d: %w", chatID, err)
		}
	}
	s.logger.Info("overdue digest dispatched", zap.Int("overdue", len(overdue)), zap.Int("chats", len(s.cfg.ChatIDs)))
	return len(overdue), nil
}

func (s *DigestService) deliver(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(digestMessage)
	if !ok {
		s.logger.Error("unexpected digest payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := s.sender.Send(ctx, msg.ChatID, msg.Text); err != nil {
		return err
	}
	s.metrics.ObserveDigestDelivery(true)
	return nil
}

// FormatDigest renders overdue enquiries, most overdue first, as a plain
// text message. At most limit entries are listed.
func FormatDigest(items []models.ReconciledEnquiry, now time.Time, loc *time.Location, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overdue follow-ups as of %s: %d\n", now.In(loc).Format("02 Jan 2006"), len(items))
	for i, item := range items {
		if limit > 0 && i == limit {
			fmt.Fprintf(&b, "...and %d more\n", len(items)-limit)
			break
		}
		days := "day"
		if item.DaysOverdue != 1 {
			days = "days"
		}
		fmt.Fprintf(&b, "\n%d. %s (%s)\n   %s, %s\n   %d %s overdue, due %s\n",
			i+1,
			item.FullName(),
			item.MobileNumber,
			item.CourseName,
			item.CurrentStatus.Label(),
			item.DaysOverdue,
			days,
			displayDatePtr(item.NextFollowup, loc),
		)
	}
	return b.String()
}
