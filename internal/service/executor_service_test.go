package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"twse-announcements/internal/dedup"
	"twse-announcements/internal/entity"
	"twse-announcements/pkg/common"
	"twse-announcements/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	streams []redis.XStream
	readErr error
	acked   []string
	lastArg *redis.XReadGroupArgs
}

func (f *fakeConsumer) XReadGroup(_ context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	f.lastArg = a
	return redis.NewXStreamSliceCmdResult(f.streams, f.readErr)
}

func (f *fakeConsumer) XAck(_ context.Context, stream, group string, ids ...string) *redis.IntCmd {
	if stream == common.RedisStreamScrapeTask && group == common.RedisStreamGroup {
		f.acked = append(f.acked, ids...)
	}
	return redis.NewIntResult(int64(len(ids)), nil)
}

func messageWith(id string, values map[string]interface{}) []redis.XStream {
	return []redis.XStream{{
		Stream:   common.RedisStreamScrapeTask,
		Messages: []redis.XMessage{{ID: id, Values: values}},
	}}
}

type stubScrapeService struct {
	requests []ScrapeRequest
	err      error
}

func (s *stubScrapeService) Extract(context.Context, string, string) (*Extraction, error) {
	return nil, errors.New("not used")
}

func (s *stubScrapeService) Scrape(_ context.Context, req ScrapeRequest) (*ScrapeResult, error) {
	s.requests = append(s.requests, req)
	run := &entity.ScrapeRun{ID: "run-1", Status: entity.ScrapeStatusCompleted}
	if s.err != nil {
		run.Status = entity.ScrapeStatusFailed
	}
	return &ScrapeResult{Run: run}, s.err
}

func (s *stubScrapeService) RecentRuns(context.Context, int) ([]entity.ScrapeRun, error) {
	return nil, nil
}

func TestProcessTaskRunsAndAcks(t *testing.T) {
	payload, err := json.Marshal(entity.ScrapeTask{ID: "t1", Date: "2025-08-15", Mode: "skip", Company: "2330"})
	require.NoError(t, err)

	consumer := &fakeConsumer{streams: messageWith("1-0", map[string]interface{}{"payload": string(payload)})}
	scrapes := &stubScrapeService{}
	svc := NewExecutorService(consumer, scrapes, ExecutorConfig{ConsumerName: "worker-1"}, logger.NewNop())

	svc.ProcessTask(context.Background())

	require.Len(t, scrapes.requests, 1)
	assert.Equal(t, ScrapeRequest{Date: "2025-08-15", Mode: dedup.ModeSkip, Company: "2330"}, scrapes.requests[0])
	assert.Equal(t, []string{"1-0"}, consumer.acked)
	assert.Equal(t, "worker-1", consumer.lastArg.Consumer)
	assert.Equal(t, []string{common.RedisStreamScrapeTask, ">"}, consumer.lastArg.Streams)
}

func TestProcessTaskDefaultsMode(t *testing.T) {
	payload, err := json.Marshal(entity.ScrapeTask{ID: "t1", Date: "2025-08-15"})
	require.NoError(t, err)

	consumer := &fakeConsumer{streams: messageWith("1-0", map[string]interface{}{"payload": string(payload)})}
	scrapes := &stubScrapeService{}
	NewExecutorService(consumer, scrapes, ExecutorConfig{}, logger.NewNop()).ProcessTask(context.Background())

	require.Len(t, scrapes.requests, 1)
	assert.Equal(t, dedup.ModeUpsert, scrapes.requests[0].Mode)
}

func TestProcessTaskAcksFailedScrape(t *testing.T) {
	payload, err := json.Marshal(entity.ScrapeTask{ID: "t1", Date: "2025-08-15", Mode: "upsert"})
	require.NoError(t, err)

	consumer := &fakeConsumer{streams: messageWith("2-0", map[string]interface{}{"payload": string(payload)})}
	scrapes := &stubScrapeService{err: errors.New("portal down")}
	NewExecutorService(consumer, scrapes, ExecutorConfig{}, logger.NewNop()).ProcessTask(context.Background())

	assert.Equal(t, []string{"2-0"}, consumer.acked)
}

func TestProcessTaskAcksMalformedMessage(t *testing.T) {
	for name, values := range map[string]map[string]interface{}{
		"missing payload": {"other": "x"},
		"invalid json":    {"payload": "{not json"},
	} {
		t.Run(name, func(t *testing.T) {
			consumer := &fakeConsumer{streams: messageWith("3-0", values)}
			scrapes := &stubScrapeService{}
			NewExecutorService(consumer, scrapes, ExecutorConfig{}, logger.NewNop()).ProcessTask(context.Background())

			assert.Empty(t, scrapes.requests)
			assert.Equal(t, []string{"3-0"}, consumer.acked)
		})
	}
}

func TestProcessTaskIdleStream(t *testing.T) {
	consumer := &fakeConsumer{readErr: redis.Nil}
	scrapes := &stubScrapeService{}
	NewExecutorService(consumer, scrapes, ExecutorConfig{}, logger.NewNop()).ProcessTask(context.Background())

	assert.Empty(t, scrapes.requests)
	assert.Empty(t, consumer.acked)
}
