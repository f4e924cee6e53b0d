package problems

import (
	"fmt"
	"strings"

	"github.com/mcncl/kyopro/internal/errors"
)

// Platform is an online judge the API serves problems for.
type Platform string

const (
	Atcoder           Platform = "Atcoder"
	Codeforces        Platform = "Codeforces"
	Yukicoder         Platform = "Yukicoder"
	AizuOnlineJudge   Platform = "Aizu Online Judge"
	YosupoOnlineJudge Platform = "Yosupo Online Judge"
)

type platformDetail struct {
	abbr       string
	categories []string
}

var platformDetails = map[Platform]platformDetail{
	Atcoder: {
		abbr: "atcoder",
		categories: []string{
			"ABC", "ARC", "AGC", "AHC", "JOI", "JAG",
			"ABC-Like", "ARC-Like", "AGC-Like",
			"Marathon", "Other Sponsored", "Other",
		},
	},
	Codeforces: {
		abbr: "codeforces",
		categories: []string{
			"Div.1", "Div.2", "Div.3", "Div.4", "Div.1+Div.2",
			"Educational", "Global", "Kotlin", "ICPC", "Q#", "Other",
		},
	},
	Yukicoder: {
		abbr:       "yukicoder",
		categories: []string{"Normal", "Other"},
	},
	AizuOnlineJudge: {
		abbr: "aoj",
	},
	YosupoOnlineJudge: {
		abbr: "yosupo_online_judge",
	},
}

// Platforms lists every supported platform in display order.
var Platforms = []Platform{Atcoder, Codeforces, Yukicoder, AizuOnlineJudge, YosupoOnlineJudge}

// Abbr returns the identifier used in API paths.
func (p Platform) Abbr() string {
	return platformDetails[p].abbr
}

// String implements fmt.Stringer
func (p Platform) String() string {
	return string(p)
}

// ParsePlatform accepts a platform's full name or its abbreviation, ignoring case.
func ParsePlatform(s string) (Platform, error) {
	name := strings.TrimSpace(s)
	for _, p := range Platforms {
		if strings.EqualFold(name, string(p)) || strings.EqualFold(name, p.Abbr()) {
			return p, nil
		}
	}
	return "", errors.NewValidationError(fmt.Sprintf("unknown platform %q", s), errors.ErrUnknownPlatform)
}

// Categories returns the contest categories of a platform. Platforms without
// categories return an empty slice.
func Categories(p Platform) []string {
	cats := platformDetails[p].categories
	out := make([]string, len(cats))
	copy(out, cats)
	return out
}

// ValidCategory reports whether c is one of p's categories.
func ValidCategory(p Platform, c string) bool {
	for _, cat := range platformDetails[p].categories {
		if cat == c {
			return true
		}
	}
	return false
}

// DefaultCategory is the category selected when a platform is first shown:
// its first category, or "" for platforms without any.
func DefaultCategory(p Platform) string {
	cats := platformDetails[p].categories
	if len(cats) == 0 {
		return ""
	}
	return cats[0]
}
