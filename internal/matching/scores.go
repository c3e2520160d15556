package matching

// Match score constants used to rank near misses.
// Higher scores indicate closer candidates.
const (
	// ScoreMethod is the score for a method match.
	ScoreMethod = 10

	// ScorePathExact is the score for a literal endpoint matching the path.
	ScorePathExact = 15

	// ScorePathNamedParams is the score for an endpoint with :params matching
	// the path. Lower than exact because it is less specific.
	ScorePathNamedParams = 12
)

// maxPathScore returns the score a full match of pattern would earn.
func maxPathScore(pattern string) int {
	if len(ParamNames(pattern)) > 0 {
		return ScorePathNamedParams
	}
	return ScorePathExact
}
