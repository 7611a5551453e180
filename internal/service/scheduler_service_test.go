package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"twse-announcements/internal/dedup"
	"twse-announcements/internal/entity"
	"twse-announcements/pkg/common"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	args []*redis.XAddArgs
	err  error
}

func (f *fakePublisher) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	f.args = append(f.args, a)
	return redis.NewStringResult("1755252000000-0", nil)
}

func (f *fakePublisher) tasks(t *testing.T) []entity.ScrapeTask {
	t.Helper()
	out := make([]entity.ScrapeTask, 0, len(f.args))
	for _, a := range f.args {
		assert.Equal(t, common.RedisStreamScrapeTask, a.Stream)
		values, ok := a.Values.(map[string]interface{})
		require.True(t, ok)
		payload, ok := values["payload"].([]byte)
		require.True(t, ok)
		var task entity.ScrapeTask
		require.NoError(t, json.Unmarshal(payload, &task))
		out = append(out, task)
	}
	return out
}

func TestNewSchedulerServiceRejectsBadCron(t *testing.T) {
	_, err := NewSchedulerService(&fakePublisher{}, SchedulerConfig{CronExpressions: []string{"every day"}}, logger.NewNop())
	assert.ErrorContains(t, err, "every day")
}

func TestProcessSchedulesPublishesWhenDue(t *testing.T) {
	pub := &fakePublisher{}
	svc, err := NewSchedulerService(pub, SchedulerConfig{
		CronExpressions: []string{"0 18 * * 1-5"},
		Mode:            dedup.ModeReplace,
		Company:         "2330",
	}, logger.NewNop())
	require.NoError(t, err)

	loc := utils.TaipeiLocation()
	ctx := context.Background()

	svc.ProcessSchedules(ctx, time.Date(2025, 8, 15, 17, 0, 0, 0, loc))
	svc.ProcessSchedules(ctx, time.Date(2025, 8, 15, 17, 30, 0, 0, loc))
	assert.Empty(t, pub.args)

	svc.ProcessSchedules(ctx, time.Date(2025, 8, 15, 18, 0, 30, 0, loc))
	svc.ProcessSchedules(ctx, time.Date(2025, 8, 15, 18, 1, 0, 0, loc))

	tasks := pub.tasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2025-08-15", tasks[0].Date)
	assert.Equal(t, "replace", tasks[0].Mode)
	assert.Equal(t, "2330", tasks[0].Company)
	assert.Equal(t, TaskSourceSchedule, tasks[0].Source)
	assert.NotEmpty(t, tasks[0].ID)

	// next weekday run is Monday
	svc.ProcessSchedules(ctx, time.Date(2025, 8, 16, 18, 0, 30, 0, loc))
	assert.Len(t, pub.args, 1)
	svc.ProcessSchedules(ctx, time.Date(2025, 8, 18, 18, 0, 30, 0, loc))
	assert.Len(t, pub.args, 2)
}

func TestBackfill(t *testing.T) {
	pub := &fakePublisher{}
	svc, err := NewSchedulerService(pub, SchedulerConfig{LookbackDays: 3}, logger.NewNop())
	require.NoError(t, err)

	n := svc.Backfill(context.Background(), time.Date(2025, 8, 15, 0, 0, 0, 0, utils.TaipeiLocation()))
	assert.Equal(t, 3, n)

	tasks := pub.tasks(t)
	require.Len(t, tasks, 3)
	assert.Equal(t, "2025-08-12", tasks[0].Date)
	assert.Equal(t, "2025-08-14", tasks[2].Date)
	for _, task := range tasks {
		assert.Equal(t, "upsert", task.Mode)
		assert.Equal(t, TaskSourceBackfill, task.Source)
	}
}

func TestBackfillStopsOnCancelledContext(t *testing.T) {
	pub := &fakePublisher{}
	svc, err := NewSchedulerService(pub, SchedulerConfig{LookbackDays: 5}, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, svc.Backfill(ctx, time.Now()))
}

func TestEnqueue(t *testing.T) {
	pub := &fakePublisher{}
	svc, err := NewSchedulerService(pub, SchedulerConfig{StreamMaxLen: 1000}, logger.NewNop())
	require.NoError(t, err)

	id, err := svc.Enqueue(context.Background(), entity.ScrapeTask{Date: "2025-08-15", Mode: "skip", Source: TaskSourceAPI})
	require.NoError(t, err)
	assert.Equal(t, "1755252000000-0", id)
	require.Len(t, pub.args, 1)
	assert.Equal(t, int64(1000), pub.args[0].MaxLen)
	assert.True(t, pub.args[0].Approx)

	tasks := pub.tasks(t)
	assert.NotEmpty(t, tasks[0].ID, "missing ids are generated")

	pub.err = errors.New("redis down")
	_, err = svc.Enqueue(context.Background(), entity.ScrapeTask{Date: "2025-08-15"})
	assert.ErrorContains(t, err, "redis down")
}
