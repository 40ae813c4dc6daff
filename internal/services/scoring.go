package services

import (
	"math"
	"strings"
)

// Answer values.
const (
	AnswerTrue    = "true"
	AnswerPartial = "partial"
	AnswerFalse   = "false"
)

// Maturity levels, lowest bound inclusive.
const (
	LevelHigh     = "Alto"
	LevelMedium   = "Medio"
	LevelLow      = "Bajo"
	LevelCritical = "Crítico"
)

// Score is a compliance percentage with its maturity level.
type Score struct {
	Percentage int    `json:"percentage"`
	Level      string `json:"level"`
}

// ScoreOf maps an answer value to its contribution. Anything other than an
// exact "true" or "partial" (after trimming) scores zero.
func ScoreOf(value string) float64 {
	switch strings.TrimSpace(value) {
	case AnswerTrue:
		return 1
	case AnswerPartial:
		return 0.5
	default:
		return 0
	}
}

// Percentage is round(100 * sum / n) over the given values, 0 for none.
func Percentage(values []string) int {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += ScoreOf(v)
	}
	pct := int(math.Round(100 * sum / float64(len(values))))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

func LevelOf(percentage int) string {
	switch {
	case percentage >= 80:
		return LevelHigh
	case percentage >= 60:
		return LevelMedium
	case percentage >= 40:
		return LevelLow
	default:
		return LevelCritical
	}
}

// ScoreValues scores one value per answered control. Control weights do not
// take part.
func ScoreValues(values []string) Score {
	pct := Percentage(values)
	return Score{Percentage: pct, Level: LevelOf(pct)}
}

// ScoreAnswers scores a key->value mapping; entries with a blank key are
// ignored.
func ScoreAnswers(answers map[string]string) Score {
	values := make([]string, 0, len(answers))
	for k, v := range answers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		values = append(values, v)
	}
	return ScoreValues(values)
}
