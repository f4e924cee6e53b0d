package problems

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/kyopro/internal/casing"
	"github.com/mcncl/kyopro/internal/errors"
	"github.com/mcncl/kyopro/internal/models"
	"github.com/mcncl/kyopro/internal/parser"
)

func ptr[T any](v T) *T { return &v }

func titles(ps []Problem) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title
	}
	return out
}

func TestDecode_NormalizedResponse(t *testing.T) {
	raw := `[
		{
			"id": "abc300_a",
			"contest_id": "abc300",
			"contest_name": "AtCoder Beginner Contest 300",
			"index": "A",
			"name": "N-choice question",
			"title": "A. N-choice question",
			"platform": "Atcoder",
			"raw_point": 100,
			"difficulty": -1118,
			"category": "ABC",
			"is_experimental": false,
			"tags": [],
			"url": "https://atcoder.jp/contests/abc300/tasks/abc300_a",
			"solver_count": 9000,
			"submissions": null,
			"success_rate": null
		}
	]`
	doc, err := parser.ParseString(raw)
	require.NoError(t, err)

	got, err := Decode(casing.Normalize(doc.Root))
	require.NoError(t, err)

	want := []Problem{{
		ID:             "abc300_a",
		ContestID:      "abc300",
		ContestName:    "AtCoder Beginner Contest 300",
		Index:          "A",
		Name:           "N-choice question",
		Title:          "A. N-choice question",
		Platform:       Atcoder,
		RawPoint:       ptr(100.0),
		Difficulty:     ptr(-1118.0),
		Category:       "ABC",
		IsExperimental: ptr(false),
		Tags:           []string{},
		URL:            "https://atcoder.jp/contests/abc300/tasks/abc300_a",
		SolverCount:    ptr(int64(9000)),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_WithoutNormalizationLeavesFieldsEmpty(t *testing.T) {
	doc, err := parser.ParseString(`[{"contest_name": "ABC 300", "title": "A"}]`)
	require.NoError(t, err)

	got, err := Decode(doc.Root)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].ContestName)
	assert.Equal(t, "A", got[0].Title)
}

func TestDecode_Shapes(t *testing.T) {
	single, err := Decode(models.ObjectOf(models.Member{Key: "title", Value: models.String("B")}))
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, titles(single))

	none, err := Decode(models.Null{})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = Decode(models.String("nope"))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidJSON))

	_, err = Decode(models.Array{models.ObjectOf(models.Member{Key: "solverCount", Value: models.String("many")})})
	assert.Error(t, err)
}

func TestFilterByCategory(t *testing.T) {
	ps := []Problem{
		{Title: "a", Category: "ABC"},
		{Title: "b", Category: "ARC"},
		{Title: "c", Category: "ABC"},
	}

	assert.Equal(t, []string{"a", "c"}, titles(FilterByCategory(ps, "ABC")))
	assert.Equal(t, []string{"a", "b", "c"}, titles(FilterByCategory(ps, "")))
	assert.Empty(t, FilterByCategory(ps, "AGC"))
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		input    string
		expected SortKey
	}{
		{"solverCount", SortSolverCount},
		{"solver_count", SortSolverCount},
		{"solver-count", SortSolverCount},
		{"SolverCount", SortSolverCount},
		{"raw_point", SortRawPoint},
		{"difficulty", SortDifficulty},
		{"contest_name", SortContestName},
		{" title ", SortTitle},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSortKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseSortKey("url")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownSortKey))
}

func TestSortBy(t *testing.T) {
	ps := []Problem{
		{Title: "b", ContestName: "ABC 2", Difficulty: ptr(800.0), SolverCount: ptr(int64(5))},
		{Title: "a", ContestName: "ABC 1", Difficulty: nil, SolverCount: ptr(int64(50))},
		{Title: "d", ContestName: "ABC 3", Difficulty: ptr(200.0)},
		{Title: "c", ContestName: "ABC 1", Difficulty: ptr(800.0), SolverCount: ptr(int64(1))},
	}

	tests := []struct {
		name     string
		key      SortKey
		desc     bool
		expected []string
	}{
		{"title ascending", SortTitle, false, []string{"a", "b", "c", "d"}},
		{"title descending", SortTitle, true, []string{"d", "c", "b", "a"}},
		{"contest name is stable", SortContestName, false, []string{"a", "c", "b", "d"}},
		{"difficulty ascending nulls last", SortDifficulty, false, []string{"d", "b", "c", "a"}},
		{"difficulty descending nulls last", SortDifficulty, true, []string{"b", "c", "d", "a"}},
		{"solver count ascending", SortSolverCount, false, []string{"c", "b", "a", "d"}},
		{"raw point all null keeps order", SortRawPoint, false, []string{"b", "a", "d", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, titles(SortBy(ps, tt.key, tt.desc)))
		})
	}

	assert.Equal(t, []string{"b", "a", "d", "c"}, titles(ps), "input must not be reordered")
}

func TestPaginate(t *testing.T) {
	ps := make([]Problem, 120)
	for i := range ps {
		ps[i] = Problem{ID: string(rune('A' + i%26))}
	}

	tests := []struct {
		name       string
		page       int
		perPage    int
		wantPage   int
		wantLen    int
		wantPages  int
		wantPerPge int
	}{
		{"first page default size", 1, 0, 1, 50, 3, 50},
		{"last partial page", 3, 50, 3, 20, 3, 50},
		{"page beyond end clamps", 9, 50, 3, 20, 3, 50},
		{"page zero clamps", 0, 20, 1, 20, 6, 20},
		{"single page", 1, 100, 1, 100, 2, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Paginate(ps, tt.page, tt.perPage)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Len(t, page.Records, tt.wantLen)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantPerPge, page.PerPage)
			assert.Equal(t, 120, page.TotalRecords)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	page, err := Paginate(nil, 4, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Records)
}

func TestPaginate_InvalidPageSize(t *testing.T) {
	_, err := Paginate([]Problem{{}}, 1, 30)
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeValidation}))
}
