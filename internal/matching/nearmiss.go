package matching

import (
	"fmt"
	"sort"
	"strings"
)

// Candidate is a stored endpoint considered when explaining why a request
// matched nothing.
type Candidate struct {
	ID       string
	Method   string
	Endpoint string
}

// NearMiss is a candidate that partially matched a request.
type NearMiss struct {
	APIID            string `json:"apiId"`
	Method           string `json:"method"`
	Endpoint         string `json:"endpoint"`
	Score            int    `json:"score"`
	MaxPossibleScore int    `json:"maxPossibleScore"`
	MatchPercentage  int    `json:"matchPercentage"`
	Reason           string `json:"reason"`
}

// FindNearMisses ranks candidates by how closely they match method and path
// and returns at most limit of them, best first. Candidates scoring zero
// and full matches are left out. Ties keep candidate order.
func FindNearMisses(candidates []Candidate, method, path string, limit int) []NearMiss {
	method = strings.ToUpper(method)
	var misses []NearMiss
	for _, c := range candidates {
		nm, ok := breakdown(c, method, path)
		if !ok {
			continue
		}
		misses = append(misses, nm)
	}

	sort.SliceStable(misses, func(i, j int) bool {
		return misses[i].Score > misses[j].Score
	})
	if limit > 0 && len(misses) > limit {
		misses = misses[:limit]
	}
	return misses
}

func breakdown(c Candidate, method, path string) (NearMiss, bool) {
	nm := NearMiss{
		APIID:            c.ID,
		Method:           c.Method,
		Endpoint:         c.Endpoint,
		MaxPossibleScore: ScoreMethod + maxPathScore(c.Endpoint),
	}

	methodMatched := strings.EqualFold(c.Method, method)
	if methodMatched {
		nm.Score += ScoreMethod
	}

	_, pathMatched := MatchPath(c.Endpoint, path)
	if pathMatched {
		nm.Score += maxPathScore(c.Endpoint)
	} else {
		nm.Score += partialPathScore(c.Endpoint, path)
	}

	if nm.Score == 0 || (methodMatched && pathMatched) {
		return NearMiss{}, false
	}

	nm.MatchPercentage = nm.Score * 100 / nm.MaxPossibleScore
	switch {
	case pathMatched:
		nm.Reason = fmt.Sprintf("path matched, but method expected %q, got %q", c.Method, method)
	case methodMatched:
		nm.Reason = "method matched, but " + pathMismatch(c.Endpoint, path)
	default:
		nm.Reason = pathMismatch(c.Endpoint, path) + fmt.Sprintf(" and method expected %q, got %q", c.Method, method)
	}
	return nm, true
}

// partialPathScore credits the leading segments that match, scaled to the
// pattern's full-match score.
func partialPathScore(pattern, path string) int {
	patternParts := splitSegments(pattern)
	pathParts := splitSegments(path)
	longest := max(len(patternParts), len(pathParts))
	if longest == 0 {
		return 0
	}

	matched := 0
	for i := 0; i < len(patternParts) && i < len(pathParts); i++ {
		if !segmentMatches(patternParts[i], pathParts[i]) {
			break
		}
		matched++
	}
	return maxPathScore(pattern) * matched / longest
}

func segmentMatches(patternPart, segment string) bool {
	if name, ok := paramName(patternPart); ok {
		return name != "" && segment != ""
	}
	return patternPart == segment || patternPart == decodeSegment(segment)
}

// pathMismatch describes the first difference between pattern and path.
func pathMismatch(pattern, path string) string {
	patternParts := splitSegments(pattern)
	pathParts := splitSegments(path)
	if len(patternParts) != len(pathParts) {
		return fmt.Sprintf("path expected %d segments (%q), got %d (%q)",
			len(patternParts), pattern, len(pathParts), truncate(path, 64))
	}
	for i := range patternParts {
		if !segmentMatches(patternParts[i], pathParts[i]) {
			return fmt.Sprintf("path segment %d expected %q, got %q", i+1, patternParts[i], truncate(pathParts[i], 64))
		}
	}
	return fmt.Sprintf("path expected %q, got %q", pattern, truncate(path, 64))
}

// truncate shortens a string to maxLen, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
