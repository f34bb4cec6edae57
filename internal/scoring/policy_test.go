package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPassingPolicyDualCriteriaRequiresBoth(t *testing.T) {
	policy := PassingPolicy{UsePercentage: true, UseMCQ: true, PassingScore: floatPtr(70), MinCorrectMCQs: intPtr(3)}

	require.False(t, policy.Passed(75, 2, 5))
	require.False(t, policy.Passed(65, 4, 5))
	require.True(t, policy.Passed(70, 3, 5))
	require.Equal(t, "dual", policy.Mode())
}

func TestPassingPolicyDefaultThreshold(t *testing.T) {
	policy := PassingPolicy{}

	require.False(t, policy.Passed(59.9, 0, 0))
	require.True(t, policy.Passed(60, 0, 0))
	require.Equal(t, "default", policy.Mode())
}

func TestPassingPolicyDefaultBranchIgnoresPassingScore(t *testing.T) {
	policy := PassingPolicy{PassingScore: floatPtr(90)}

	require.True(t, policy.Passed(60, 0, 0))
}

func TestPassingPolicyPercentageOnly(t *testing.T) {
	require.True(t, PassingPolicy{UsePercentage: true}.Passed(60, 0, 10))
	require.False(t, PassingPolicy{UsePercentage: true}.Passed(59, 10, 10))
	require.True(t, PassingPolicy{UsePercentage: true, PassingScore: floatPtr(40)}.Passed(40, 0, 10))
}

func TestPassingPolicyMCQOnly(t *testing.T) {
	policy := PassingPolicy{UseMCQ: true}

	require.Equal(t, 3, policy.MinimumCorrect(5))
	require.Equal(t, 2, policy.MinimumCorrect(4))
	require.Equal(t, 0, policy.MinimumCorrect(0))
	require.True(t, policy.Passed(0, 3, 5))
	require.False(t, policy.Passed(100, 2, 5))
	require.True(t, policy.Passed(0, 0, 0))

	explicit := PassingPolicy{UseMCQ: true, MinCorrectMCQs: intPtr(1)}
	require.True(t, explicit.Passed(0, 1, 5))
}

func TestGradeAppliesPolicy(t *testing.T) {
	questions := []Question{
		{ID: "1", Type: TypeMultipleChoice, CorrectAnswers: "A"},
		{ID: "2", Type: TypeMultipleChoice, CorrectAnswers: "B"},
		{ID: "3", Type: TypeText, CorrectAnswers: "yes", Points: 6},
	}
	answers := Answers{"1": "A", "2": "C", "3": "YES"}

	result := Grade(questions, answers, PassingPolicy{UsePercentage: true, UseMCQ: true, PassingScore: floatPtr(80)})

	require.Equal(t, 7, result.Score)
	require.InDelta(t, 87.5, result.Percentage, 0.0001)
	require.Equal(t, 1, result.CorrectMCQs)
	require.True(t, result.Passed)

	strict := Grade(questions, answers, PassingPolicy{UseMCQ: true, MinCorrectMCQs: intPtr(2)})
	require.False(t, strict.Passed)
}
