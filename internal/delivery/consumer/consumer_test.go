package consumer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"twse-announcements/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type countingExecutor struct {
	calls       atomic.Int32
	hadDeadline atomic.Bool
}

func (e *countingExecutor) ProcessTask(ctx context.Context) {
	if _, ok := ctx.Deadline(); ok {
		e.hadDeadline.Store(true)
	}
	e.calls.Add(1)
	time.Sleep(time.Millisecond)
}

func TestConsumerStop(t *testing.T) {
	exec := &countingExecutor{}
	c := NewRedisConsumer(exec, time.Second, logger.NewNop())
	c.Start(context.Background())

	assert.Eventually(t, func() bool { return exec.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	c.Stop()
	c.Stop()

	stopped := exec.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, exec.calls.Load())
	assert.True(t, exec.hadDeadline.Load())
}

func TestConsumerContextCancel(t *testing.T) {
	exec := &countingExecutor{}
	c := NewRedisConsumer(exec, time.Second, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	assert.Eventually(t, func() bool { return exec.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}
