// Package rank scores history entries against a search query, mixing
// match position, recency, and how often a command repeats. All
// functions are pure: callers pass the clock so results are
// reproducible for a fixed instant.
package rank

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/zenoxygen/termsearch/internal/history"
	"github.com/zenoxygen/termsearch/internal/logging"
)

var rankLog = logging.ForComponent(logging.CompRank)

const (
	// recencyWeight scales how much a recent timestamp contributes.
	recencyWeight = 0.6
	// frequencyWeight scales how much repetition contributes.
	frequencyWeight = 0.4
)

// Match is one ranked command. Timestamps are not carried over: the
// caller only redisplays the command text.
type Match struct {
	Command string
	Score   float64
}

// Search ranks entries containing query (case-insensitive substring)
// by descending score and returns at most limit matches.
//
// The match score is 1.0 when the command starts with the query and
// 0.5 - pos/len(command) when the first occurrence starts at byte pos;
// entries whose score is not strictly positive are dropped. Each
// repeat of a command raises its frequency baseline by one, seeded
// from the best total recorded so far, and the best total per unique
// command wins. Ties keep first-seen order.
func Search(query string, entries []history.Entry, limit int, now time.Time) []Match {
	rankLog.Debug("search history", "query", query, "entries", len(entries))

	q := strings.ToLower(query)

	index := make(map[string]int, len(entries))
	matches := make([]Match, 0, len(entries))

	for _, e := range entries {
		pos := strings.Index(strings.ToLower(e.Command), q)
		var matchScore float64
		switch {
		case pos == 0:
			matchScore = 1.0
		case pos > 0:
			matchScore = 0.5 - float64(pos)/float64(len(e.Command))
		default:
			continue
		}
		if matchScore <= 0 {
			continue
		}

		// More repeats = higher weight, baselined on the best
		// score seen so far for this command.
		frequency := 1.0
		i, seen := index[e.Command]
		if seen {
			frequency = matches[i].Score + 1.0
		}

		total := matchScore * (recencyWeight*recencyAt(now, e.Timestamp) + frequencyWeight*frequency)

		if seen {
			if total > matches[i].Score {
				matches[i].Score = total
			}
		} else {
			index[e.Command] = len(matches)
			matches = append(matches, Match{Command: e.Command, Score: total})
		}
	}

	sortByScore(matches)
	return truncate(matches, limit)
}

// MostFrequent ranks unique commands by exact occurrence count blended
// with the recency of their newest appearance. It backs the empty-query
// view, where there is no match text to score.
func MostFrequent(entries []history.Entry, limit int, now time.Time) []Match {
	rankLog.Debug("rank by frequency", "entries", len(entries))

	type usage struct {
		command string
		count   int
		latest  time.Time
	}

	index := make(map[string]int, len(entries))
	stats := make([]usage, 0, len(entries))

	for _, e := range entries {
		if i, ok := index[e.Command]; ok {
			stats[i].count++
			if e.Timestamp.After(stats[i].latest) {
				stats[i].latest = e.Timestamp
			}
		} else {
			index[e.Command] = len(stats)
			stats = append(stats, usage{command: e.Command, count: 1, latest: e.Timestamp})
		}
	}

	matches := make([]Match, len(stats))
	for i, u := range stats {
		matches[i] = Match{
			Command: u.command,
			Score:   recencyWeight*recencyAt(now, u.latest) + frequencyWeight*float64(u.count),
		}
	}

	sortByScore(matches)
	return truncate(matches, limit)
}

// recencyAt weighs ts against now as 1/(1+log10(seconds ago)): newer
// commands weigh more. Unclamped, so entries under a second old come
// out at -0 and future timestamps at NaN.
func recencyAt(now time.Time, ts time.Time) float64 {
	seconds := float64(now.Unix() - ts.Unix())
	return 1.0 / (1.0 + math.Log10(seconds))
}

func sortByScore(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

func truncate(matches []Match, limit int) []Match {
	if limit < 0 {
		limit = 0
	}
	if len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
