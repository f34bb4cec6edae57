package scoring

// GradeQuestion resolves one question against the submitted answer. Points are all-or-nothing.
func GradeQuestion(q Question, answer any) Outcome {
	outcome := Outcome{
		QuestionID: q.ID,
		Type:       q.Type,
		Points:     q.points(),
		Status:     StatusIncorrect,
	}

	if hasNoKey(q.CorrectAnswers) {
		outcome.Status = StatusUngraded
		return outcome
	}
	if IsBlank(answer) {
		outcome.Status = StatusUnanswered
		return outcome
	}

	key, err := NormalizeKey(q.Type, q.CorrectAnswers)
	if err != nil {
		outcome.Status = StatusMalformed
		return outcome
	}
	submitted, err := NormalizeAnswer(q.Type, answer)
	if err != nil {
		outcome.Status = StatusMalformed
		return outcome
	}

	if Matches(key, submitted) {
		outcome.Status = StatusCorrect
		outcome.Awarded = outcome.Points
	}
	return outcome
}

// hasNoKey reports whether a stored key is absent. An empty string counts as absent; an empty
// sequence does not and is graded as a malformed key.
func hasNoKey(raw any) bool {
	value, err := decode(raw)
	if err != nil {
		return false
	}
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}

// tally is the accumulator folded over graded questions.
type tally struct {
	score       int
	totalPoints int
	correctMCQs int
	totalMCQs   int
}

func (t tally) add(o Outcome) tally {
	next := t
	next.totalPoints += o.Points
	next.score += o.Awarded
	if o.Type.IsMCQ() {
		next.totalMCQs++
		if o.Correct() {
			next.correctMCQs++
		}
	}
	return next
}

func (t tally) percentage() float64 {
	if t.totalPoints <= 0 {
		return 0
	}
	return float64(t.score) / float64(t.totalPoints) * 100
}

// Grade scores a full attempt and applies the passing policy.
func Grade(questions []Question, answers Answers, policy PassingPolicy) Result {
	outcomes := make([]Outcome, 0, len(questions))
	acc := tally{}
	for _, q := range questions {
		outcome := GradeQuestion(q, answers[q.ID])
		outcomes = append(outcomes, outcome)
		acc = acc.add(outcome)
	}

	percentage := acc.percentage()
	return Result{
		Score:       acc.score,
		TotalPoints: acc.totalPoints,
		Percentage:  percentage,
		Passed:      policy.Passed(percentage, acc.correctMCQs, acc.totalMCQs),
		CorrectMCQs: acc.correctMCQs,
		TotalMCQs:   acc.totalMCQs,
		Outcomes:    outcomes,
	}
}
