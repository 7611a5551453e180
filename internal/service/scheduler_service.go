package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"twse-announcements/internal/dedup"
	"twse-announcements/internal/entity"
	"twse-announcements/pkg/common"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

const (
	TaskSourceSchedule = "schedule"
	TaskSourceBackfill = "backfill"
	TaskSourceAPI      = "api"
)

// StreamPublisher is the part of the Redis client the scheduler uses.
type StreamPublisher interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// SchedulerConfig configures the scheduling loop.
type SchedulerConfig struct {
	CronExpressions []string
	PollingInterval time.Duration
	LookbackDays    int
	Mode            dedup.Mode
	Company         string
	StreamMaxLen    int64
}

// SchedulerService publishes scrape tasks to the task stream, on cron
// schedules and on demand.
type SchedulerService interface {
	Start(ctx context.Context)
	ProcessSchedules(ctx context.Context, now time.Time)
	Backfill(ctx context.Context, today time.Time) int
	Enqueue(ctx context.Context, task entity.ScrapeTask) (string, error)
}

// NewSchedulerService creates a new scheduler service. Invalid cron
// expressions are rejected up front.
func NewSchedulerService(publisher StreamPublisher, cfg SchedulerConfig, log *logger.Logger) (SchedulerService, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	schedules := make([]cronEntry, 0, len(cfg.CronExpressions))
	for _, expr := range cfg.CronExpressions {
		sched, err := parser.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
		}
		schedules = append(schedules, cronEntry{expr: expr, schedule: sched})
	}
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = 30 * time.Second
	}
	if cfg.Mode == "" {
		cfg.Mode = dedup.ModeUpsert
	}

	return &schedulerService{
		publisher: publisher,
		cfg:       cfg,
		schedules: schedules,
		logger:    log,
	}, nil
}

type cronEntry struct {
	expr     string
	schedule cron.Schedule
	next     time.Time
}

type schedulerService struct {
	publisher StreamPublisher
	cfg       SchedulerConfig
	logger    *logger.Logger

	mu        sync.Mutex
	schedules []cronEntry
}

// Start enqueues the lookback days, then polls the cron schedules until ctx
// is cancelled.
func (s *schedulerService) Start(ctx context.Context) {
	s.Backfill(ctx, utils.TodayTaipei())
	s.ProcessSchedules(ctx, utils.TimeNowTaipei())

	ticker := time.NewTicker(s.cfg.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler service stopping")
			return
		case <-ticker.C:
			s.ProcessSchedules(ctx, utils.TimeNowTaipei())
		}
	}
}

// ProcessSchedules publishes one task for the current exchange day per
// schedule that came due. The first call only arms the schedules.
func (s *schedulerService) ProcessSchedules(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.schedules {
		entry := &s.schedules[i]
		if entry.next.IsZero() {
			entry.next = entry.schedule.Next(now)
			s.logger.Info("Schedule armed", logger.StringField("cron", entry.expr), logger.Field("next_execution", entry.next))
			continue
		}
		if now.Before(entry.next) {
			continue
		}

		task := s.newTask(now.Format("2006-01-02"), TaskSourceSchedule)
		if _, err := s.Enqueue(ctx, task); err != nil {
			s.logger.Error("Failed to enqueue scheduled scrape", logger.ErrorField(err), logger.StringField("cron", entry.expr))
		}
		entry.next = entry.schedule.Next(now)
	}
}

// Backfill enqueues the configured number of days before today and returns
// how many were published.
func (s *schedulerService) Backfill(ctx context.Context, today time.Time) int {
	published := 0
	for i := s.cfg.LookbackDays; i >= 1; i-- {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		if _, err := s.Enqueue(ctx, s.newTask(day, TaskSourceBackfill)); err != nil {
			s.logger.Error("Failed to enqueue backfill scrape", logger.ErrorField(err), logger.StringField("date", day))
			continue
		}
		published++
	}
	return published
}

// Enqueue publishes task and returns the stream message ID.
func (s *schedulerService) Enqueue(ctx context.Context, task entity.ScrapeTask) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("failed to marshal scrape task: %w", err)
	}

	id, err := s.publisher.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamScrapeTask,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.StreamMaxLen,
		Approx: s.cfg.StreamMaxLen > 0,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish scrape task: %w", err)
	}

	s.logger.Info("Scrape task published",
		logger.StringField("task_id", task.ID),
		logger.StringField("date", task.Date),
		logger.StringField("source", task.Source),
		logger.StringField("message_id", id))
	return id, nil
}

func (s *schedulerService) newTask(date, source string) entity.ScrapeTask {
	return entity.ScrapeTask{
		ID:      uuid.NewString(),
		Date:    date,
		Mode:    string(s.cfg.Mode),
		Company: s.cfg.Company,
		Source:  source,
	}
}
