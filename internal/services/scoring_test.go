package services

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestScoreOf(t *testing.T) {
	tests := []struct {
		value string
		want  float64
	}{
		{value: "true", want: 1},
		{value: " true\n", want: 1},
		{value: "partial", want: 0.5},
		{value: "false", want: 0},
		{value: "", want: 0},
		{value: "TRUE", want: 0},
		{value: "yes", want: 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ScoreOf(tc.value), "ScoreOf(%q)", tc.value)
	}
}

func TestLevelOfBoundaries(t *testing.T) {
	tests := []struct {
		pct  int
		want string
	}{
		{100, LevelHigh},
		{80, LevelHigh},
		{79, LevelMedium},
		{60, LevelMedium},
		{59, LevelLow},
		{40, LevelLow},
		{39, LevelCritical},
		{0, LevelCritical},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, LevelOf(tc.pct), "LevelOf(%d)", tc.pct)
	}
}

func TestScoreValues(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   Score
	}{
		{name: "empty", values: nil, want: Score{0, LevelCritical}},
		{name: "true and partial", values: []string{"true", "partial"}, want: Score{75, LevelMedium}},
		{name: "all true", values: []string{"true", "true", "true"}, want: Score{100, LevelHigh}},
		{name: "one third", values: []string{"true", "false", "false"}, want: Score{33, LevelCritical}},
		{name: "two thirds", values: []string{"true", "true", "false"}, want: Score{67, LevelMedium}},
		{name: "small fraction", values: []string{"partial", "false", "false", "false", "false", "false", "false", "false"}, want: Score{6, LevelCritical}},
		{name: "unknown values count", values: []string{"true", "n/a"}, want: Score{50, LevelLow}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScoreValues(tc.values))
		})
	}
}

func TestScoreAnswersIgnoresBlankKeys(t *testing.T) {
	got := ScoreAnswers(map[string]string{"c1": "true", "c2": "partial", "  ": "false"})
	assert.Equal(t, Score{75, LevelMedium}, got)
}

func TestScoringProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	values := gen.SliceOf(gen.OneConstOf("true", "partial", "false", "", " true ", "maybe"))

	properties.Property("percentage stays within 0..100", prop.ForAll(
		func(vs []string) bool {
			p := Percentage(vs)
			return p >= 0 && p <= 100
		},
		values,
	))

	properties.Property("percentage is the rounded mean score", prop.ForAll(
		func(vs []string) bool {
			if len(vs) == 0 {
				return Percentage(vs) == 0
			}
			var sum float64
			for _, v := range vs {
				sum += ScoreOf(v)
			}
			return Percentage(vs) == int(math.Round(100*sum/float64(len(vs))))
		},
		values,
	))

	properties.Property("level depends only on percentage", prop.ForAll(
		func(vs []string) bool {
			s := ScoreValues(vs)
			return s.Level == LevelOf(s.Percentage)
		},
		values,
	))

	properties.Property("adding a true answer never lowers the score", prop.ForAll(
		func(vs []string) bool {
			return Percentage(append(vs, AnswerTrue)) >= Percentage(vs)
		},
		values,
	))

	properties.TestingRun(t)
}
