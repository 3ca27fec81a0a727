package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/runclub/paceline/pkg/domain/model"
)

func TestWorkoutDistance(t *testing.T) {
	t.Run("overall summary wins", func(t *testing.T) {
		w := &model.Workout{}
		w.OverallSummary.Distance = 3.11
		w.Summaries = []model.WorkoutMetric{{Slug: "distance", Value: 99}}

		miles, ok := w.Distance()
		gt.Bool(t, ok).True()
		gt.Value(t, miles).Equal(3.11)
	})

	t.Run("falls back to the summaries array", func(t *testing.T) {
		w := &model.Workout{
			Summaries: []model.WorkoutMetric{
				{Slug: "calories", Value: 250},
				{Slug: "distance", Value: 6.21},
			},
		}

		miles, ok := w.Distance()
		gt.Bool(t, ok).True()
		gt.Value(t, miles).Equal(6.21)
	})

	t.Run("no distance anywhere", func(t *testing.T) {
		w := &model.Workout{
			FitnessDiscipline: "strength",
			Summaries:         []model.WorkoutMetric{{Slug: "calories", Value: 250}},
		}

		_, ok := w.Distance()
		gt.Bool(t, ok).False()
	})

	t.Run("zero distance is not usable", func(t *testing.T) {
		w := &model.Workout{
			Summaries: []model.WorkoutMetric{{Slug: "distance", Value: 0}},
		}

		_, ok := w.Distance()
		gt.Bool(t, ok).False()
	})
}

func TestWorkoutDisplayTitle(t *testing.T) {
	w := &model.Workout{Title: "Just Run"}
	gt.Value(t, w.DisplayTitle()).Equal("Just Run")

	w.Ride.Title = "30 min Tempo Run"
	gt.Value(t, w.DisplayTitle()).Equal("30 min Tempo Run")

	gt.Value(t, (&model.Workout{}).DisplayTitle()).Equal("Peloton Workout")
}

func TestPelotonDisplayName(t *testing.T) {
	gt.Value(t, model.PelotonDisplayName("ada@example.com")).Equal("ada")
	gt.Value(t, model.PelotonDisplayName("runner42")).Equal("runner42")
}
