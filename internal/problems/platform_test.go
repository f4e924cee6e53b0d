package problems

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/kyopro/internal/errors"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input    string
		expected Platform
	}{
		{"Atcoder", Atcoder},
		{"atcoder", Atcoder},
		{"CODEFORCES", Codeforces},
		{"yukicoder", Yukicoder},
		{"aoj", AizuOnlineJudge},
		{"Aizu Online Judge", AizuOnlineJudge},
		{"yosupo_online_judge", YosupoOnlineJudge},
		{"  Yosupo Online Judge ", YosupoOnlineJudge},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePlatform(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParsePlatform_Unknown(t *testing.T) {
	_, err := ParsePlatform("topcoder")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownPlatform))
}

func TestPlatformAbbr(t *testing.T) {
	assert.Equal(t, "atcoder", Atcoder.Abbr())
	assert.Equal(t, "aoj", AizuOnlineJudge.Abbr())
	assert.Equal(t, "yosupo_online_judge", YosupoOnlineJudge.Abbr())
	assert.Equal(t, "", Platform("unknown").Abbr())
}

func TestCategories(t *testing.T) {
	assert.Len(t, Categories(Atcoder), 12)
	assert.Len(t, Categories(Codeforces), 11)
	assert.Equal(t, []string{"Normal", "Other"}, Categories(Yukicoder))
	assert.Empty(t, Categories(AizuOnlineJudge))
	assert.Empty(t, Categories(YosupoOnlineJudge))

	cats := Categories(Atcoder)
	cats[0] = "changed"
	assert.Equal(t, "ABC", DefaultCategory(Atcoder), "Categories must return a copy")
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(Atcoder, "ABC"))
	assert.True(t, ValidCategory(Codeforces, "Div.1+Div.2"))
	assert.True(t, ValidCategory(Codeforces, "Q#"))
	assert.False(t, ValidCategory(Atcoder, "Div.1"))
	assert.False(t, ValidCategory(AizuOnlineJudge, "Other"))
}

func TestDefaultCategory(t *testing.T) {
	assert.Equal(t, "ABC", DefaultCategory(Atcoder))
	assert.Equal(t, "Div.1", DefaultCategory(Codeforces))
	assert.Equal(t, "Normal", DefaultCategory(Yukicoder))
	assert.Equal(t, "", DefaultCategory(AizuOnlineJudge))
}
