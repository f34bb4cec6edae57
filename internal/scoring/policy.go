package scoring

// Threshold returns the percentage a respondent needs when the percentage criterion applies.
func (p PassingPolicy) Threshold() float64 {
	if p.PassingScore == nil {
		return DefaultPassingScore
	}
	return *p.PassingScore
}

// MinimumCorrect returns the number of correct MCQs required, defaulting to half of the MCQs
// rounded up.
func (p PassingPolicy) MinimumCorrect(totalMCQs int) int {
	if p.MinCorrectMCQs == nil {
		return (totalMCQs + 1) / 2
	}
	return *p.MinCorrectMCQs
}

// Passed evaluates the policy. Branches are checked in priority order; with neither criterion
// enabled the fixed 60% default applies regardless of PassingScore.
func (p PassingPolicy) Passed(percentage float64, correctMCQs, totalMCQs int) bool {
	switch {
	case p.UsePercentage && p.UseMCQ:
		return percentage >= p.Threshold() && correctMCQs >= p.MinimumCorrect(totalMCQs)
	case p.UsePercentage:
		return percentage >= p.Threshold()
	case p.UseMCQ:
		return correctMCQs >= p.MinimumCorrect(totalMCQs)
	default:
		return percentage >= DefaultPassingScore
	}
}

// Mode names the active criteria combination for display.
func (p PassingPolicy) Mode() string {
	switch {
	case p.UsePercentage && p.UseMCQ:
		return "dual"
	case p.UsePercentage:
		return "percentage"
	case p.UseMCQ:
		return "mcq"
	default:
		return "default"
	}
}
