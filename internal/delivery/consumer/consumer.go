package consumer

import (
	"context"
	"sync"
	"time"

	"twse-announcements/internal/service"
	"twse-announcements/pkg/common"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/utils"
)

// RedisConsumer runs stream handlers until stopped.
type RedisConsumer struct {
	executorService service.ExecutorService
	taskTimeout     time.Duration
	logger          *logger.Logger
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer. taskTimeout bounds a single
// read-and-process cycle.
func NewRedisConsumer(executorService service.ExecutorService, taskTimeout time.Duration, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		executorService: executorService,
		taskTimeout:     taskTimeout,
		logger:          log,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the consumer's task processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.executorService.ProcessTask, common.RedisStreamScrapeTask, c.taskTimeout)
}

// RegisterStreamHandler calls fn in a loop on its own goroutine, each call
// with a fresh timeout, until ctx is done or Stop is called.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName), logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation", logger.Field("stream", streamName))
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping", logger.Field("stream", streamName))
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// Stop gracefully shuts down the consumer, waiting for in-flight handlers.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
