package problems

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/kyopro/internal/errors"
	"github.com/mcncl/kyopro/internal/models"
)

// Problem is a single problem record as returned by the API after its keys
// have been normalized to camelCase.
type Problem struct {
	ID             string   `json:"id"`
	ContestID      string   `json:"contestId"`
	ContestName    string   `json:"contestName"`
	Index          string   `json:"index"`
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Platform       Platform `json:"platform"`
	RawPoint       *float64 `json:"rawPoint"`
	Difficulty     *float64 `json:"difficulty"`
	Category       string   `json:"category"`
	IsExperimental *bool    `json:"isExperimental"`
	Tags           []string `json:"tags"`
	URL            string   `json:"url"`
	SolverCount    *int64   `json:"solverCount"`
	Submissions    *int64   `json:"submissions"`
	SuccessRate    *float64 `json:"successRate"`
}

// Decode converts a normalized API value into problems. The value may be an
// array of records or a single record.
func Decode(v models.Value) ([]Problem, error) {
	if v == nil {
		return nil, nil
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, errors.NewParsingError("failed to encode problem records", err)
	}

	switch v.(type) {
	case models.Array:
		var out []Problem
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, errors.NewParsingError("problem records do not match the expected shape", err)
		}
		return out, nil
	case *models.Object:
		var p Problem
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, errors.NewParsingError("problem record does not match the expected shape", err)
		}
		return []Problem{p}, nil
	case models.Null:
		return nil, nil
	}
	return nil, errors.NewParsingError(fmt.Sprintf("expected an array of problems, got %s", data), errors.ErrInvalidJSON)
}

// FilterByCategory keeps the problems of one category. An empty category
// keeps everything.
func FilterByCategory(ps []Problem, category string) []Problem {
	if category == "" {
		return slices.Clone(ps)
	}
	out := make([]Problem, 0, len(ps))
	for _, p := range ps {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// SortKey names a sortable column.
type SortKey string

const (
	SortContestName SortKey = "contestName"
	SortTitle       SortKey = "title"
	SortDifficulty  SortKey = "difficulty"
	SortRawPoint    SortKey = "rawPoint"
	SortSolverCount SortKey = "solverCount"
)

// SortKeys lists the sortable columns.
var SortKeys = []SortKey{SortContestName, SortTitle, SortDifficulty, SortRawPoint, SortSolverCount}

// ParseSortKey accepts a column name in any common casing, so "solver_count",
// "solver-count", "SolverCount" and "solverCount" all name the same column.
func ParseSortKey(s string) (SortKey, error) {
	name := strcase.ToLowerCamel(strings.TrimSpace(s))
	for _, k := range SortKeys {
		if strings.EqualFold(name, string(k)) {
			return k, nil
		}
	}
	return "", errors.NewValidationError(fmt.Sprintf("cannot sort by %q", s), errors.ErrUnknownSortKey)
}

// SortBy returns a stably sorted copy of ps. Records without a value for a
// numeric key are placed last regardless of direction.
func SortBy(ps []Problem, key SortKey, desc bool) []Problem {
	out := slices.Clone(ps)
	var compare func(a, b *Problem) int

	switch key {
	case SortContestName:
		compare = func(a, b *Problem) int { return direction(strings.Compare(a.ContestName, b.ContestName), desc) }
	case SortTitle:
		compare = func(a, b *Problem) int { return direction(strings.Compare(a.Title, b.Title), desc) }
	case SortDifficulty:
		compare = func(a, b *Problem) int { return compareNullable(a.Difficulty, b.Difficulty, desc) }
	case SortRawPoint:
		compare = func(a, b *Problem) int { return compareNullable(a.RawPoint, b.RawPoint, desc) }
	case SortSolverCount:
		compare = func(a, b *Problem) int { return compareNullable(a.SolverCount, b.SolverCount, desc) }
	default:
		return out
	}

	slices.SortStableFunc(out, func(a, b Problem) int { return compare(&a, &b) })
	return out
}

func direction(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

func compareNullable[T cmp.Ordered](a, b *T, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return direction(cmp.Compare(*a, *b), desc)
}
