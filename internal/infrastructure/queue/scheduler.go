package queue

import (
	"github.com/hibiken/asynq"

	"github.com/AfroSamurai-hub/OzzServe/internal/config"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// =====================================================
// ASYNQ WIRING
// =====================================================

// RedisOpt builds the asynq connection options from the app config.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

// NewServer builds the worker server consuming the booking queue.
func NewServer(cfg *config.Config) *asynq.Server {
	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			shared.QueueBooking: 1,
		},
	})
}

// NewScheduler registers the periodic maintenance tasks.
func NewScheduler(cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisOpt(cfg), nil)

	entries := []struct {
		cron     string
		taskType string
	}{
		{cfg.Jobs.SweepCron, shared.TypeSweepExpiredBookings},
		{cfg.Jobs.GraceCloseCron, shared.TypeCloseGracedBookings},
	}

	for _, e := range entries {
		task := asynq.NewTask(e.taskType, nil)
		entryID, err := scheduler.Register(e.cron, task, asynq.Queue(shared.QueueBooking))
		if err != nil {
			return nil, err
		}
		logger.Info("scheduled task registered", map[string]interface{}{
			"task":  e.taskType,
			"cron":  e.cron,
			"entry": entryID,
		})
	}

	return scheduler, nil
}
