package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
)

type recomputeFixture struct {
	rec       *app.AggregateRecomputer
	bootcamps *fakeBootcampRepo
	courses   *fakeCourseRepo
	reviews   *fakeReviewRepo
	bootcamp  *entity.Bootcamp
}

func newRecomputeFixture(t *testing.T) *recomputeFixture {
	t.Helper()
	bootcamps := newFakeBootcampRepo()
	courses := newFakeCourseRepo()
	reviews := newFakeReviewRepo()

	b := &entity.Bootcamp{Name: "Devworks"}
	require.NoError(t, bootcamps.Create(context.Background(), b))

	return &recomputeFixture{
		rec:       app.NewAggregateRecomputer(bootcamps, courses, reviews, newTestLogger()),
		bootcamps: bootcamps,
		courses:   courses,
		reviews:   reviews,
		bootcamp:  b,
	}
}

func (fx *recomputeFixture) addCourse(t *testing.T, tuition float64) {
	t.Helper()
	c := &entity.Course{Title: "c", Bootcamp: fx.bootcamp.ID, Tuition: tuition}
	require.NoError(t, fx.courses.Create(context.Background(), c))
}

func (fx *recomputeFixture) addReview(t *testing.T, rating float64) {
	t.Helper()
	r := &entity.Review{Title: "r", Bootcamp: fx.bootcamp.ID, Rating: rating, User: reviewerActor().ID}
	require.NoError(t, fx.reviews.Create(context.Background(), r))
}

func TestRecomputeCost_RoundsUpToNearestTen(t *testing.T) {
	tests := []struct {
		name     string
		tuitions []float64
		want     float64
	}{
		{"exact multiple stays", []float64{8000, 10000, 9000}, 9000},
		{"mean rounds up", []float64{9999}, 10000},
		{"fractional mean rounds up", []float64{8000, 9001}, 8510},
		{"tiny values round up to ten", []float64{1, 1}, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newRecomputeFixture(t)
			for _, tuition := range tc.tuitions {
				fx.addCourse(t, tuition)
			}

			require.NoError(t, fx.rec.RecomputeCost(context.Background(), fx.bootcamp.ID.Hex()))

			got, ok := fx.bootcamps.aggregate(fx.bootcamp.ID.Hex(), "averageCost")
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRecomputeCost_ZeroWithoutCourses(t *testing.T) {
	fx := newRecomputeFixture(t)

	require.NoError(t, fx.rec.RecomputeCost(context.Background(), fx.bootcamp.ID.Hex()))

	got, ok := fx.bootcamps.aggregate(fx.bootcamp.ID.Hex(), "averageCost")
	require.True(t, ok)
	assert.Zero(t, got)
}

func TestRecomputeRating_PlainMean(t *testing.T) {
	fx := newRecomputeFixture(t)
	fx.addReview(t, 4)
	fx.addReview(t, 5)

	require.NoError(t, fx.rec.RecomputeRating(context.Background(), fx.bootcamp.ID.Hex()))

	got, ok := fx.bootcamps.aggregate(fx.bootcamp.ID.Hex(), "averageRating")
	require.True(t, ok)
	assert.Equal(t, 4.5, got)
}

func TestRecomputeRating_ZeroWithoutReviews(t *testing.T) {
	fx := newRecomputeFixture(t)

	require.NoError(t, fx.rec.RecomputeRating(context.Background(), fx.bootcamp.ID.Hex()))

	got, ok := fx.bootcamps.aggregate(fx.bootcamp.ID.Hex(), "averageRating")
	require.True(t, ok)
	assert.Zero(t, got)
}

func TestAggregateRecomputer_WorkerDrainsQueue(t *testing.T) {
	fx := newRecomputeFixture(t)
	fx.addCourse(t, 9995)
	fx.addReview(t, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx.rec.Start(ctx)

	fx.rec.EnqueueCost(fx.bootcamp.ID.Hex())
	fx.rec.EnqueueRating(fx.bootcamp.ID.Hex())

	require.Eventually(t, func() bool {
		cost, okCost := fx.bootcamps.aggregate(fx.bootcamp.ID.Hex(), "averageCost")
		rating, okRating := fx.bootcamps.aggregate(fx.bootcamp.ID.Hex(), "averageRating")
		return okCost && okRating && cost == 10000 && rating == 3
	}, 2*time.Second, 10*time.Millisecond)
}
