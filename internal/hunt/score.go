package hunt

// ScoreRule holds the constants of the scoring formula for one round:
//
//	max(Min, Base
//	    - min(AttemptCap, (attempts-1) * PerAttempt)
//	    - min(TimeCap, floor(timeSpent / TimeUnit) * PerTimeUnit)
//	    - (hintUsed ? HintPenalty : 0))
//
// TimeUnit is in seconds.
type ScoreRule struct {
	Base        int `json:"base"`
	Min         int `json:"min"`
	PerAttempt  int `json:"perAttempt"`
	AttemptCap  int `json:"attemptCap"`
	TimeUnit    int `json:"timeUnit"`
	PerTimeUnit int `json:"perTimeUnit"`
	TimeCap     int `json:"timeCap"`
	HintPenalty int `json:"hintPenalty"`
}

// DefaultScoreRules are the canonical per-round constants.
var DefaultScoreRules = [NumRounds]ScoreRule{
	{Base: 300, Min: 50, PerAttempt: 10, AttemptCap: 150, TimeUnit: 10, PerTimeUnit: 5, TimeCap: 100, HintPenalty: 50},
	{Base: 400, Min: 75, PerAttempt: 20, AttemptCap: 200, TimeUnit: 30, PerTimeUnit: 5, TimeCap: 150, HintPenalty: 75},
	{Base: 500, Min: 100, PerAttempt: 25, AttemptCap: 250, TimeUnit: 30, PerTimeUnit: 5, TimeCap: 200, HintPenalty: 100},
}

// Score computes the award for an accepted submission.
func (r ScoreRule) Score(attempts, timeSpent int, hintUsed bool) int {
	if attempts < 1 {
		attempts = 1
	}
	if timeSpent < 0 {
		timeSpent = 0
	}

	score := r.Base
	score -= min(r.AttemptCap, (attempts-1)*r.PerAttempt)
	if r.TimeUnit > 0 {
		score -= min(r.TimeCap, (timeSpent/r.TimeUnit)*r.PerTimeUnit)
	}
	if hintUsed {
		score -= r.HintPenalty
	}
	return max(r.Min, score)
}
