package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/models"
)

func TestResponseRepositoryCreateSubmissionLinksAttempt(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewResponseRepository(db)
	ctx := context.Background()
	form := seedForm(t, db, 1, "Quiz", models.FormStatusPublished)

	response := models.FormResponse{
		FormID:       form.ID,
		RespondentID: uintPtr(7),
		SubmittedAt:  time.Now(),
		Answers: []models.QuestionResponse{
			{QuestionID: 1, Answer: datatypes.JSON(`"Paris"`)},
			{QuestionID: 2, Answer: datatypes.JSON(`["A","B"]`)},
		},
	}
	attempt := models.QuizAttempt{Score: 3, TotalPoints: 5, Percentage: 60, Passed: true, RespondentID: uintPtr(7)}

	require.NoError(t, repo.CreateSubmission(ctx, &response, &attempt))
	require.NotZero(t, response.ID)
	require.Equal(t, response.ID, attempt.FormResponseID)
	require.Equal(t, form.ID, attempt.FormID)

	loaded, err := repo.GetByID(ctx, form.ID, response.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Answers, 2)
	require.NotNil(t, loaded.Attempt)
	require.Equal(t, 3, loaded.Attempt.Score)

	_, err = repo.GetByID(ctx, form.ID+1, response.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResponseRepositoryListNewestFirst(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewResponseRepository(db)
	ctx := context.Background()
	form := seedForm(t, db, 1, "Survey", models.FormStatusPublished)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		response := models.FormResponse{FormID: form.ID, SubmittedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.CreateSubmission(ctx, &response, nil))
	}

	items, total, err := repo.List(ctx, ResponseFilter{FormID: form.ID, Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	require.True(t, items[0].SubmittedAt.After(items[1].SubmittedAt))
	require.Nil(t, items[0].Attempt)

	count, err := repo.CountByForm(ctx, form.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestAttemptRepositoryExistsForRespondent(t *testing.T) {
	db := setupFormTestDB(t)
	responses := NewResponseRepository(db)
	attempts := NewAttemptRepository(db)
	ctx := context.Background()
	form := seedForm(t, db, 1, "Quiz", models.FormStatusPublished)

	response := models.FormResponse{FormID: form.ID, SubmittedAt: time.Now(), RespondentEmail: "Ada@Example.com"}
	attempt := models.QuizAttempt{RespondentID: uintPtr(3), RespondentEmail: "Ada@Example.com"}
	require.NoError(t, responses.CreateSubmission(ctx, &response, &attempt))

	exists, err := attempts.ExistsForRespondent(ctx, form.ID, uintPtr(3), "")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = attempts.ExistsForRespondent(ctx, form.ID, nil, " ada@example.com ")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = attempts.ExistsForRespondent(ctx, form.ID, uintPtr(4), "other@example.com")
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = attempts.ExistsForRespondent(ctx, form.ID, nil, "")
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = attempts.ExistsForRespondent(ctx, form.ID+1, uintPtr(3), "")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestAttemptRepositoryStatsByForm(t *testing.T) {
	db := setupFormTestDB(t)
	responses := NewResponseRepository(db)
	attempts := NewAttemptRepository(db)
	ctx := context.Background()
	form := seedForm(t, db, 1, "Quiz", models.FormStatusPublished)

	empty, err := attempts.StatsByForm(ctx, form.ID)
	require.NoError(t, err)
	require.Zero(t, empty.Attempts)
	require.Nil(t, empty.Average)

	for _, pct := range []float64{40, 80, 90} {
		response := models.FormResponse{FormID: form.ID, SubmittedAt: time.Now()}
		attempt := models.QuizAttempt{Percentage: pct, Passed: pct >= 60}
		require.NoError(t, responses.CreateSubmission(ctx, &response, &attempt))
	}

	stats, err := attempts.StatsByForm(ctx, form.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.Attempts)
	require.Equal(t, int64(2), stats.Passed)
	require.NotNil(t, stats.Average)
	require.InDelta(t, 70.0, *stats.Average, 0.001)
	require.Equal(t, 90.0, *stats.Highest)
	require.Equal(t, 40.0, *stats.Lowest)
}

func TestDashboardRepositoryAggregatesPerOwner(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewDashboardRepository(db)
	responses := NewResponseRepository(db)
	ctx := context.Background()

	quiz := seedForm(t, db, 1, "Quiz", models.FormStatusPublished)
	require.NoError(t, db.Model(&quiz).Update("is_quiz", true).Error)
	seedForm(t, db, 1, "Draft", models.FormStatusDraft)
	other := seedForm(t, db, 2, "Foreign", models.FormStatusPublished)

	for _, formID := range []uint{quiz.ID, quiz.ID, other.ID} {
		response := models.FormResponse{FormID: formID, SubmittedAt: time.Now()}
		attempt := models.QuizAttempt{Percentage: 50, Passed: false}
		require.NoError(t, responses.CreateSubmission(ctx, &response, &attempt))
	}

	counts, err := repo.CountForms(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, FormCounts{Total: 2, Published: 1, Quizzes: 1}, counts)

	total, err := repo.CountResponses(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	stats, err := repo.AttemptStats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Attempts)
	require.Zero(t, stats.Passed)

	recent, err := repo.RecentForms(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	none, err := repo.CountForms(ctx, 99)
	require.NoError(t, err)
	require.Equal(t, FormCounts{}, none)
}
