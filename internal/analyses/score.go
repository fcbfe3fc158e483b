package analyses

import (
	"regexp"
	"strconv"
)

var atsScorePattern = regexp.MustCompile(`(?i)ATS Score.*?(\d+)`)

// ParseATSScore finds the first "ATS Score" mention and returns the first
// number after it on the same line. Nil when absent or outside [0, 100].
func ParseATSScore(text string) *int {
	m := atsScorePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return nil
	}
	return &n
}
