package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"twse-announcements/internal/dedup"
	"twse-announcements/internal/entity"
	"twse-announcements/pkg/common"
	"twse-announcements/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// StreamConsumer is the part of the Redis client the executor uses.
type StreamConsumer interface {
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// ExecutorConfig configures task consumption.
type ExecutorConfig struct {
	ConsumerName string
	ReadBlock    time.Duration
	TaskTimeout  time.Duration
	DefaultMode  dedup.Mode
}

// ExecutorService reads scrape tasks from the task stream and runs them.
type ExecutorService interface {
	ProcessTask(ctx context.Context)
}

// NewExecutorService creates a new ExecutorService.
func NewExecutorService(consumer StreamConsumer, scrapes ScrapeService, cfg ExecutorConfig, log *logger.Logger) ExecutorService {
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = common.RedisStreamConsumer
	}
	if cfg.ReadBlock <= 0 {
		cfg.ReadBlock = 2 * time.Second
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Minute
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = dedup.ModeUpsert
	}
	return &executorService{
		consumer: consumer,
		scrapes:  scrapes,
		cfg:      cfg,
		logger:   log,
	}
}

type executorService struct {
	consumer StreamConsumer
	scrapes  ScrapeService
	cfg      ExecutorConfig
	logger   *logger.Logger
}

// ProcessTask dequeues and runs a single task. Every message is
// acknowledged once handled, malformed and failed ones included; the
// failure is kept on the scrape run.
func (s *executorService) ProcessTask(ctx context.Context) {
	streams, err := s.consumer.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: s.cfg.ConsumerName,
		Streams:  []string{common.RedisStreamScrapeTask, ">"},
		Count:    1,
		Block:    s.cfg.ReadBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.logger.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	defer s.ack(ctx, message.ID)

	raw, ok := message.Values["payload"].(string)
	if !ok {
		s.logger.Error("field 'payload' not found or not a string in stream message", logger.StringField("message_id", message.ID))
		return
	}

	var task entity.ScrapeTask
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		s.logger.Error("Failed to unmarshal scrape task", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		return
	}
	if task.Mode == "" {
		task.Mode = string(s.cfg.DefaultMode)
	}

	s.logger.Info("Processing scrape task",
		logger.StringField("task_id", task.ID),
		logger.StringField("date", task.Date),
		logger.StringField("mode", task.Mode),
		logger.StringField("source", task.Source))

	execCtx, cancel := context.WithTimeout(ctx, s.cfg.TaskTimeout)
	defer cancel()

	result, err := s.scrapes.Scrape(execCtx, ScrapeRequest{
		Date:    task.Date,
		Mode:    dedup.Mode(task.Mode),
		Company: task.Company,
	})
	if err != nil {
		s.logger.Error("Scrape task failed", logger.ErrorField(err), logger.StringField("task_id", task.ID))
		return
	}
	s.logger.Info("Scrape task completed",
		logger.StringField("task_id", task.ID),
		logger.StringField("run_id", result.Run.ID),
		logger.StringField("status", string(result.Run.Status)))
}

func (s *executorService) ack(ctx context.Context, id string) {
	// acknowledge even when ctx is already cancelled
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.consumer.XAck(ackCtx, common.RedisStreamScrapeTask, common.RedisStreamGroup, id).Err(); err != nil {
		s.logger.Error("Failed to acknowledge message", logger.ErrorField(err), logger.StringField("message_id", id))
	}
}
