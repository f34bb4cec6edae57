package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/dto"
	"github.com/noah-isme/formkit-api/internal/models"
	"github.com/noah-isme/formkit-api/internal/observability"
	"github.com/noah-isme/formkit-api/internal/repository"
	"github.com/noah-isme/formkit-api/internal/scoring"
)

const defaultThankYouMessage = "Thank you for your response!"

var (
	// ErrFormNotPublished indicates the form is a draft or has been closed.
	ErrFormNotPublished = errors.New("form is not accepting responses")
	// ErrLoginRequired indicates the form only accepts signed-in respondents.
	ErrLoginRequired = errors.New("sign in is required to answer this form")
	// ErrIdentityRequired indicates an anonymous respondent supplied no email address.
	ErrIdentityRequired = errors.New("sign in or provide an email address to answer this form")
	// ErrRetakeNotAllowed indicates the respondent already completed this quiz.
	ErrRetakeNotAllowed = errors.New("this quiz can only be taken once")
)

// Respondent identifies who is submitting a form.
type Respondent struct {
	UserID    *uint
	IPAddress string
	UserAgent string
}

// SubmissionService exposes the public answering workflow.
type SubmissionService interface {
	GetPublicForm(ctx context.Context, publicID string) (dto.PublicForm, error)
	Submit(ctx context.Context, publicID string, req dto.SubmitRequest, respondent Respondent) (dto.SubmissionResult, error)
}

type submissionService struct {
	forms     repository.FormRepository
	responses repository.ResponseRepository
	attempts  repository.AttemptRepository
	publisher AttemptPublisher
	dashboard DashboardInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSubmissionService constructs the submission service. publisher and dashboard may be nil.
func NewSubmissionService(
	forms repository.FormRepository,
	responses repository.ResponseRepository,
	attempts repository.AttemptRepository,
	publisher AttemptPublisher,
	dashboard DashboardInvalidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		forms:     forms,
		responses: responses,
		attempts:  attempts,
		publisher: publisher,
		dashboard: dashboard,
		validator: validate,
		logger:    logger.With().Str("component", "submission_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/formkit-api/internal/service/submission"),
		now:       time.Now,
	}
}

func (s *submissionService) GetPublicForm(ctx context.Context, publicID string) (dto.PublicForm, error) {
	form, err := s.loadPublished(ctx, publicID)
	if err != nil {
		return dto.PublicForm{}, err
	}
	return dto.NewPublicForm(form), nil
}

func (s *submissionService) Submit(ctx context.Context, publicID string, req dto.SubmitRequest, respondent Respondent) (dto.SubmissionResult, error) {
	ctx, span := s.tracer.Start(ctx, "submissions.submit", trace.WithAttributes(
		attribute.String("form.public_id", publicID),
		attribute.Bool("respondent.authenticated", respondent.UserID != nil),
	))
	defer span.End()

	result, err := s.submit(ctx, span, publicID, req, respondent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission rejected")
		outcome := "rejected"
		if !isClientError(err) {
			outcome = "error"
		}
		observability.Submissions().WithLabelValues(outcome).Inc()
		return dto.SubmissionResult{}, err
	}

	observability.Submissions().WithLabelValues("accepted").Inc()
	return result, nil
}

func (s *submissionService) submit(ctx context.Context, span trace.Span, publicID string, req dto.SubmitRequest, respondent Respondent) (dto.SubmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResult{}, err
	}

	form, err := s.loadPublished(ctx, publicID)
	if err != nil {
		return dto.SubmissionResult{}, err
	}
	span.SetAttributes(attribute.Int64("form.id", int64(form.ID)), attribute.Bool("form.is_quiz", form.IsQuiz))

	email := strings.TrimSpace(req.Email)
	if err := checkRespondent(form, respondent, email); err != nil {
		return dto.SubmissionResult{}, err
	}

	answers, err := collectAnswers(form.Questions, req.Answers)
	if err != nil {
		return dto.SubmissionResult{}, err
	}

	if form.IsQuiz && !form.AllowRetake {
		taken, err := s.attempts.ExistsForRespondent(ctx, form.ID, respondent.UserID, email)
		if err != nil {
			return dto.SubmissionResult{}, err
		}
		if taken {
			return dto.SubmissionResult{}, ErrRetakeNotAllowed
		}
	}

	now := s.now().UTC()
	response := models.FormResponse{
		FormID:          form.ID,
		RespondentID:    respondent.UserID,
		RespondentEmail: email,
		IPAddress:       respondent.IPAddress,
		UserAgent:       truncate(respondent.UserAgent, 512),
		SubmittedAt:     now,
		Answers:         answers,
	}

	var (
		graded  scoring.Result
		attempt *models.QuizAttempt
	)
	if form.IsQuiz {
		graded = s.grade(ctx, form, req.Answers)
		attempt = s.buildAttempt(form, graded, respondent, email, req.StartedAt, now)
	}

	if err := s.responses.CreateSubmission(ctx, &response, attempt); err != nil {
		return dto.SubmissionResult{}, err
	}

	message := form.CustomThankYouMessage
	if strings.TrimSpace(message) == "" {
		message = defaultThankYouMessage
	}

	result := dto.SubmissionResult{
		ResponseID:  response.ID,
		Message:     message,
		SubmittedAt: response.SubmittedAt,
	}

	if attempt != nil {
		mode := form.PassingPolicy().Mode()
		s.recordAttempt(ctx, form, response, *attempt, mode)
		result.Quiz = buildQuizResult(form, graded, *attempt, mode, req.Answers)
	}

	s.logger.Info().
		Uint("form_id", form.ID).
		Uint("response_id", response.ID).
		Bool("authenticated", respondent.UserID != nil).
		Int("answers", len(answers)).
		Msg("form response stored")

	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, form.OwnerID)
	}

	return result, nil
}

func (s *submissionService) loadPublished(ctx context.Context, publicID string) (models.Form, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return models.Form{}, ErrFormNotFound
	}

	form, err := s.forms.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Form{}, ErrFormNotFound
		}
		return models.Form{}, err
	}
	if !form.IsPublished() {
		return models.Form{}, ErrFormNotPublished
	}
	return form, nil
}

func (s *submissionService) grade(ctx context.Context, form models.Form, answers map[string]any) scoring.Result {
	_, span := s.tracer.Start(ctx, "scoring.grade")
	defer span.End()

	result := scoring.Grade(form.ScoringQuestions(), scoring.Answers(answers), form.PassingPolicy())
	span.SetAttributes(
		attribute.Int("quiz.score", result.Score),
		attribute.Int("quiz.total_points", result.TotalPoints),
		attribute.Float64("quiz.percentage", result.Percentage),
		attribute.Bool("quiz.passed", result.Passed),
	)
	return result
}

func (s *submissionService) buildAttempt(form models.Form, graded scoring.Result, respondent Respondent, email string, startedAt *time.Time, completedAt time.Time) *models.QuizAttempt {
	started := completedAt
	if startedAt != nil && !startedAt.IsZero() && !startedAt.After(completedAt) {
		started = startedAt.UTC()
	}

	seconds := int(completedAt.Sub(started) / time.Second)
	if form.TimeLimitMinutes != nil && *form.TimeLimitMinutes > 0 {
		if limit := *form.TimeLimitMinutes * 60; seconds > limit {
			seconds = limit
		}
	}

	return &models.QuizAttempt{
		FormID:           form.ID,
		RespondentID:     respondent.UserID,
		RespondentEmail:  email,
		Score:            graded.Score,
		TotalPoints:      graded.TotalPoints,
		Percentage:       graded.Percentage,
		Passed:           graded.Passed,
		CorrectMCQs:      graded.CorrectMCQs,
		TotalMCQs:        graded.TotalMCQs,
		StartedAt:        started,
		CompletedAt:      completedAt,
		TimeTakenSeconds: &seconds,
	}
}

func (s *submissionService) recordAttempt(ctx context.Context, form models.Form, response models.FormResponse, attempt models.QuizAttempt, mode string) {
	label := "failed"
	if attempt.Passed {
		label = "passed"
	}
	observability.QuizAttempts().WithLabelValues(label, mode).Inc()
	observability.QuizPercentage().Observe(attempt.Percentage)

	s.logger.Info().
		Uint("form_id", form.ID).
		Uint("attempt_id", attempt.ID).
		Int("score", attempt.Score).
		Int("total_points", attempt.TotalPoints).
		Float64("percentage", attempt.Percentage).
		Bool("passed", attempt.Passed).
		Str("passing_mode", mode).
		Msg("quiz attempt graded")

	if s.publisher == nil {
		return
	}

	event := AttemptEvent{
		Type:         AttemptEventType,
		FormID:       form.ID,
		FormPublicID: form.PublicID,
		OwnerID:      form.OwnerID,
		ResponseID:   response.ID,
		AttemptID:    attempt.ID,
		RespondentID: attempt.RespondentID,
		Score:        attempt.Score,
		TotalPoints:  attempt.TotalPoints,
		Percentage:   attempt.Percentage,
		Passed:       attempt.Passed,
		PassingMode:  mode,
		CompletedAt:  attempt.CompletedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("attempt_id", attempt.ID).Msg("failed to publish attempt event")
	}
}

// checkRespondent applies the form's access settings.
func checkRespondent(form models.Form, respondent Respondent, email string) error {
	if form.RequireLogin && respondent.UserID == nil {
		return ErrLoginRequired
	}
	if form.CollectEmail && email == "" {
		return &ValidationError{Fields: map[string]string{"email": "is required"}}
	}
	if !form.AllowAnonymous && respondent.UserID == nil && email == "" {
		return ErrIdentityRequired
	}
	return nil
}

// collectAnswers enforces required questions and encodes the answers that belong to the form.
// Blank answers and ids that are not on the form are not stored.
func collectAnswers(questions []models.Question, submitted map[string]any) ([]models.QuestionResponse, error) {
	verr := &ValidationError{}
	answers := make([]models.QuestionResponse, 0, len(questions))

	for _, question := range questions {
		key := models.QuestionKey(question.ID)
		value, present := submitted[key]
		if !present || scoring.IsBlank(value) {
			if question.Required {
				verr.add("answers."+key, "is required")
			}
			continue
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			verr.add("answers."+key, "could not be encoded")
			continue
		}
		answers = append(answers, models.QuestionResponse{
			QuestionID: question.ID,
			Answer:     datatypes.JSON(encoded),
		})
	}

	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	return answers, nil
}

func buildQuizResult(form models.Form, graded scoring.Result, attempt models.QuizAttempt, mode string, answers map[string]any) *dto.QuizResult {
	result := &dto.QuizResult{
		AttemptID:        attempt.ID,
		Score:            attempt.Score,
		TotalPoints:      attempt.TotalPoints,
		Percentage:       attempt.Percentage,
		Passed:           attempt.Passed,
		CorrectMCQs:      attempt.CorrectMCQs,
		TotalMCQs:        attempt.TotalMCQs,
		PassingMode:      mode,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
	}
	if !form.ShowResults {
		return result
	}

	byID := make(map[string]models.Question, len(form.Questions))
	for _, question := range form.Questions {
		byID[models.QuestionKey(question.ID)] = question
	}

	breakdown := make([]dto.QuestionResult, 0, len(graded.Outcomes))
	for _, outcome := range graded.Outcomes {
		question, ok := byID[outcome.QuestionID]
		if !ok {
			continue
		}
		detail := dto.NewQuestionDetail(question)
		breakdown = append(breakdown, dto.QuestionResult{
			QuestionID:     question.ID,
			Title:          question.Title,
			Status:         string(outcome.Status),
			Points:         outcome.Points,
			Awarded:        outcome.Awarded,
			Answer:         answers[outcome.QuestionID],
			CorrectAnswers: detail.CorrectAnswers,
			Explanation:    question.Explanation,
		})
	}
	result.Breakdown = breakdown
	return result
}

func isClientError(err error) bool {
	var verr *ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr), errors.As(err, &fieldErrs):
		return true
	case errors.Is(err, ErrFormNotFound),
		errors.Is(err, ErrFormNotPublished),
		errors.Is(err, ErrLoginRequired),
		errors.Is(err, ErrIdentityRequired),
		errors.Is(err, ErrRetakeNotAllowed):
		return true
	default:
		return false
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
