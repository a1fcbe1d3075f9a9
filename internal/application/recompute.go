package application

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
)

const (
	recomputeCost   = "cost"
	recomputeRating = "rating"

	recomputeQueueSize  = 256
	recomputeMaxRetries = 3
	recomputeBackoff    = 500 * time.Millisecond
)

type recomputeJob struct {
	kind       string
	bootcampID string
}

// AggregateRecomputer recalculates a bootcamp's averageCost and averageRating
// from its courses and reviews. Writers enqueue after their own commit
// succeeds; a single worker drains the queue so aggregate writes never block
// request handling. Failed jobs are retried with backoff and then dropped
// with a log line; the next write to the same bootcamp enqueues a fresh job.
type AggregateRecomputer struct {
	Bootcamps repo.BootcampRepository
	Courses   repo.CourseRepository
	Reviews   repo.ReviewRepository
	Logger    *logrus.Logger

	jobs chan recomputeJob
}

func NewAggregateRecomputer(bootcamps repo.BootcampRepository, courses repo.CourseRepository, reviews repo.ReviewRepository, logger *logrus.Logger) *AggregateRecomputer {
	return &AggregateRecomputer{
		Bootcamps: bootcamps,
		Courses:   courses,
		Reviews:   reviews,
		Logger:    logger,
		jobs:      make(chan recomputeJob, recomputeQueueSize),
	}
}

// Start runs the worker until ctx is cancelled.
func (a *AggregateRecomputer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-a.jobs:
				a.run(ctx, job)
			}
		}
	}()
}

// EnqueueCost schedules an averageCost recomputation. Never blocks; when the
// queue is full the job is dropped and logged.
func (a *AggregateRecomputer) EnqueueCost(bootcampID string) {
	a.enqueue(recomputeJob{kind: recomputeCost, bootcampID: bootcampID})
}

// EnqueueRating schedules an averageRating recomputation.
func (a *AggregateRecomputer) EnqueueRating(bootcampID string) {
	a.enqueue(recomputeJob{kind: recomputeRating, bootcampID: bootcampID})
}

func (a *AggregateRecomputer) enqueue(job recomputeJob) {
	select {
	case a.jobs <- job:
	default:
		a.Logger.WithFields(logrus.Fields{
			"bootcamp": job.bootcampID,
			"kind":     job.kind,
		}).Warn("recompute queue full, dropping job")
	}
}

func (a *AggregateRecomputer) run(ctx context.Context, job recomputeJob) {
	var err error
	for attempt := 0; attempt <= recomputeMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(recomputeBackoff * time.Duration(attempt)):
			}
		}
		switch job.kind {
		case recomputeCost:
			err = a.RecomputeCost(ctx, job.bootcampID)
		case recomputeRating:
			err = a.RecomputeRating(ctx, job.bootcampID)
		}
		if err == nil {
			return
		}
	}
	a.Logger.WithFields(logrus.Fields{
		"bootcamp": job.bootcampID,
		"kind":     job.kind,
	}).WithError(err).Error("aggregate recompute failed")
}

// RecomputeCost sets averageCost to the mean course tuition rounded up to
// the nearest ten, or zero when the bootcamp has no courses.
func (a *AggregateRecomputer) RecomputeCost(ctx context.Context, bootcampID string) error {
	avg, found, err := a.Courses.AverageTuition(ctx, bootcampID)
	if err != nil {
		return err
	}
	cost := 0.0
	if found {
		cost = math.Ceil(avg/10) * 10
	}
	return a.Bootcamps.UpdateAggregates(ctx, bootcampID, map[string]any{"averageCost": cost})
}

// RecomputeRating sets averageRating to the mean review rating, or zero when
// the bootcamp has no reviews.
func (a *AggregateRecomputer) RecomputeRating(ctx context.Context, bootcampID string) error {
	avg, found, err := a.Reviews.AverageRating(ctx, bootcampID)
	if err != nil {
		return err
	}
	rating := 0.0
	if found {
		rating = avg
	}
	return a.Bootcamps.UpdateAggregates(ctx, bootcampID, map[string]any{"averageRating": rating})
}
