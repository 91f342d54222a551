package domain

import (
	"fmt"
	"strings"
)

type ProblemID string

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

func ParseDifficulty(raw string) (Difficulty, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	switch Difficulty(trimmed) {
	case "":
		return "", nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(trimmed), nil
	default:
		return "", fmt.Errorf("unsupported difficulty %q", raw)
	}
}

func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	case "":
		return "-"
	default:
		return string(d)
	}
}

type Problem struct {
	ID          ProblemID
	Title       string
	Difficulty  Difficulty
	Tags        []string
	AcceptRate  float64
	Solved      bool
	Description string
	Examples    []ProblemExample
	Constraints []string
}

type ProblemExample struct {
	Input       string
	Output      string
	Explanation string
}

type ProblemPage struct {
	Problems []Problem
	Total    int
	Page     int
	Limit    int
}

// ProblemFilter mirrors the query parameters the problem list endpoint accepts.
type ProblemFilter struct {
	Page       int
	Limit      int
	Difficulty Difficulty
	Search     string
}

func (f *ProblemFilter) Normalize() {
	if f == nil {
		return
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	f.Search = strings.TrimSpace(f.Search)
}
