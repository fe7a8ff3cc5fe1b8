package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"clinicore/config"
	"clinicore/services/scheduling"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeSweepRun = "sweep:run"

// InitSweepWorker runs the periodic sweep in the background: an asynq
// scheduler enqueues a sweep task at the configured cadence and the worker
// drives the scheduling service's RunSweepOnce. Overlapping runs are safe;
// the engine's atomic apply makes the sweep idempotent.
func InitSweepWorker(svc scheduling.SchedulingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSweepRun, handleSweepTask(svc))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	cadence := fmt.Sprintf("@every %ds", config.AppConfig.SweepIntervalSeconds)
	if _, err := scheduler.Register(cadence, asynq.NewTask(TypeSweepRun, nil)); err != nil {
		log.Fatalf("[SweepWorker] failed to register sweep cadence: %v", err)
	}

	// Start Redis health monitor
	go monitorRedisConnection()

	go func() {
		log.Printf("[SweepWorker] starting sweep scheduler at %s", cadence)
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[SweepWorker] scheduler stopped: %v", err)
		}
	}()

	// Start async worker with retry logic
	go func() {
		log.Println("[SweepWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SweepWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SweepWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleSweepTask(svc scheduling.SchedulingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		report, err := svc.RunSweepOnce(ctx, time.Now())
		if err != nil {
			log.Printf("[SweepHandler] sweep pass failed: %v", err)
			return err
		}
		if len(report.Transitions) > 0 || len(report.Failures) > 0 {
			log.Printf("[SweepHandler] processed=%d transitions=%d failures=%d",
				report.Processed, len(report.Transitions), len(report.Failures))
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[SweepWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
