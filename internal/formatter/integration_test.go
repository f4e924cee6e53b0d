package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/kyopro/internal/casing"
	"github.com/mcncl/kyopro/internal/parser"
	"github.com/mcncl/kyopro/internal/problems"
)

func TestIntegration_ParserCasingFormatter(t *testing.T) {
	// Parser -> Normalizer -> Formatter
	jsonInput := `{
		"user_id": 123,
		"user_name": "johndoe",
		"is_active": true,
		"profile": {
			"full_name": "John Doe",
			"competitive_user_names": [{"atcoder_user_name": "jd"}]
		}
	}`

	ir, err := parser.ParseString(jsonInput)
	require.NoError(t, err)

	out, err := NewFormatter(2).FormatJSON(casing.Normalize(ir.Root))
	require.NoError(t, err)

	expected := `{
  "userId": 123,
  "userName": "johndoe",
  "isActive": true,
  "profile": {
    "fullName": "John Doe",
    "competitiveUserNames": [
      {
        "atcoderUserName": "jd"
      }
    ]
  }
}`
	assert.Equal(t, expected, out)
}

func TestIntegration_ProblemListing(t *testing.T) {
	ir, err := parser.ParseString(`[
		{"title": "B", "category": "ABC", "contest_name": "ABC 301", "solver_count": 10},
		{"title": "A", "category": "ABC", "contest_name": "ABC 300", "solver_count": 20},
		{"title": "C", "category": "ARC", "contest_name": "ARC 100", "solver_count": 5}
	]`)
	require.NoError(t, err)

	ps, err := problems.Decode(casing.Normalize(ir.Root))
	require.NoError(t, err)

	ps = problems.SortBy(problems.FilterByCategory(ps, "ABC"), problems.SortSolverCount, true)
	page, err := problems.Paginate(ps, 1, 20)
	require.NoError(t, err)

	out := NewFormatter(0).FormatTable(page)
	assert.Contains(t, out, "ABC 300")
	assert.NotContains(t, out, "ARC 100")
	assert.Less(t, strings.Index(out, "ABC 300"), strings.Index(out, "ABC 301"))
	assert.Contains(t, out, "page 1/1 (2 problems)")
}

