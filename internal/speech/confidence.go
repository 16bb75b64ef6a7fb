// Package speech holds the speaking-confidence heuristic and the clients
// for the speech-to-text and text-to-speech capabilities.
package speech

import (
	"regexp"
	"strings"
)

// FillerWords is the fixed filler vocabulary, matched on word boundaries.
var FillerWords = []string{"uh", "um", "like", "you know", "actually", "basically", "so"}

// Speaking-rate bands and penalties. The bands are mutually exclusive, so
// at most one rate penalty applies.
const (
	slowWPM = 90
	fastWPM = 170
)

var (
	wordRe    = regexp.MustCompile(`\b\w+\b`)
	fillerRes = buildFillerRes()
)

func buildFillerRes() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(FillerWords))
	for _, f := range FillerWords {
		res[f] = regexp.MustCompile(`\b` + regexp.QuoteMeta(f) + `\b`)
	}
	return res
}

// Analysis is the derived speaking-confidence signal.
type Analysis struct {
	Words           int            `json:"words"`
	WPM             int            `json:"wpm"`
	FillerWords     map[string]int `json:"filler_words"`
	ConfidenceScore int            `json:"confidence_score"`
	Tips            []string       `json:"tips"`
}

// AnalyzeConfidence derives a confidence signal from transcript text and
// the answer duration. With an unknown duration the word count itself
// stands in for the rate, a documented coarse heuristic.
func AnalyzeConfidence(text string, durationSec float64) Analysis {
	lower := strings.ToLower(text)
	words := wordRe.FindAllString(lower, -1)
	wordCount := len(words)

	var wpm int
	if durationSec > 0 {
		wpm = int(float64(wordCount) / durationSec * 60)
	} else {
		wpm = wordCount
	}

	fillersFound := make(map[string]int)
	totalFillers := 0
	for filler, re := range fillerRes {
		if n := len(re.FindAllString(lower, -1)); n > 0 {
			fillersFound[filler] = n
			totalFillers += n
		}
	}

	score := 10
	if wpm < slowWPM {
		score -= 2
	} else if wpm > fastWPM {
		score -= 2
	}
	if totalFillers > 5 {
		score -= 3
	} else if totalFillers > 2 {
		score -= 2
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	var tips []string
	if wpm < slowWPM {
		tips = append(tips, "Try speaking a bit faster to sound more confident.")
	}
	if wpm > fastWPM {
		tips = append(tips, "Slow down slightly to improve clarity.")
	}
	if totalFillers > 0 {
		tips = append(tips, "Reduce filler words by pausing silently instead.")
	}

	return Analysis{
		Words:           wordCount,
		WPM:             wpm,
		FillerWords:     fillersFound,
		ConfidenceScore: score,
		Tips:            tips,
	}
}
