package pointsheet

// requiredPercentage is the success threshold per level: a day counts toward
// progression only when the daily percentage meets the student's current
// level's bar.
var requiredPercentage = map[int]float64{
	1: 85,
	2: 90,
	3: 95,
	4: 100,
}

// ComputeTotals computes a submission's earned points, possible points and
// percentage. An absent day scores 0/0/0 and per-period scores are ignored.
// ScoreNotApplicable slots count toward neither earned nor possible, so they
// neither help nor hurt the percentage.
func ComputeTotals(scores []PeriodScore, isAbsent bool) (earned, possible int, percentage float64) {
	if isAbsent {
		return 0, 0, 0
	}

	for _, period := range scores {
		for _, score := range period.categoryScores() {
			if score != ScoreNotApplicable {
				earned += score
				possible += MaxPointsPerCategory
			}
		}
	}

	if possible > 0 {
		percentage = float64(earned) / float64(possible) * 100
	}
	return earned, possible, percentage
}

// IsSuccessfulDay reports whether the percentage meets the level's required
// threshold. An absent student has percentage 0 and is never successful.
func IsSuccessfulDay(percentage float64, level int) bool {
	required, ok := requiredPercentage[level]
	if !ok {
		return false
	}
	return percentage >= required
}
