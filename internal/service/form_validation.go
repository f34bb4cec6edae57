package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gorm.io/datatypes"

	"github.com/noah-isme/formkit-api/internal/dto"
	"github.com/noah-isme/formkit-api/internal/models"
	"github.com/noah-isme/formkit-api/internal/repository"
	"github.com/noah-isme/formkit-api/internal/scoring"
)

const (
	minRating = 1
	maxRating = 5
)

// buildQuestions validates the builder payload and converts it into models in submitted order.
func (s *formService) buildQuestions(inputs []dto.QuestionInput) ([]models.Question, error) {
	verr := &ValidationError{}
	questions := make([]models.Question, 0, len(inputs))

	for idx, input := range inputs {
		field := fmt.Sprintf("questions[%d]", idx)
		qType := scoring.QuestionType(input.Type)
		if !qType.Valid() {
			verr.add(field+".type", "is not a supported question type")
			continue
		}

		options, optionErr := normalizeOptions(qType, input.Options)
		if optionErr != "" {
			verr.add(field+".options", optionErr)
			continue
		}

		key, keyErr := normalizeAnswerKey(qType, options, input.CorrectAnswers)
		if keyErr != "" {
			verr.add(field+".correct_answers", keyErr)
			continue
		}

		var optionsJSON datatypes.JSON
		if len(options) > 0 {
			encoded, err := json.Marshal(options)
			if err != nil {
				return nil, err
			}
			optionsJSON = datatypes.JSON(encoded)
		}

		questions = append(questions, models.Question{
			Type:           input.Type,
			Title:          s.sanitize(input.Title),
			Description:    s.sanitize(input.Description),
			Required:       input.Required,
			Options:        optionsJSON,
			CorrectAnswers: key,
			Points:         input.Points,
			Explanation:    s.sanitize(input.Explanation),
			OrderIndex:     idx,
		})
	}

	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	return questions, nil
}

func normalizeOptions(qType scoring.QuestionType, raw []string) ([]string, string) {
	if !qType.HasOptions() {
		return nil, ""
	}

	options := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, option := range raw {
		option = strings.TrimSpace(option)
		if option == "" {
			return nil, "must not contain blank options"
		}
		if _, exists := seen[option]; exists {
			return nil, fmt.Sprintf("contains duplicate option %q", option)
		}
		seen[option] = struct{}{}
		options = append(options, option)
	}

	if len(options) == 0 {
		return nil, "requires at least one option"
	}
	return options, ""
}

// normalizeAnswerKey checks the answer key against the question type and returns it compacted.
// An absent or null key leaves the question ungraded.
func normalizeAnswerKey(qType scoring.QuestionType, options []string, raw json.RawMessage) (datatypes.JSON, string) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ""
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return nil, "is not valid JSON"
	}
	if scoring.IsBlank(decoded) {
		return nil, "must not be empty"
	}

	value, err := scoring.NormalizeKey(qType, decoded)
	if err != nil {
		return nil, "has an unsupported shape"
	}

	switch key := value.(type) {
	case scoring.Choice:
		if !containsOption(options, key.Text) {
			return nil, fmt.Sprintf("%q is not one of the options", key.Text)
		}
	case scoring.Selection:
		for _, item := range key.Items {
			if !containsOption(options, item) {
				return nil, fmt.Sprintf("%q is not one of the options", item)
			}
		}
	case scoring.Numeric:
		if math.IsNaN(key.Number) || math.IsInf(key.Number, 0) {
			return nil, "must be a number"
		}
		if qType == scoring.TypeRating && (key.Number < minRating || key.Number > maxRating || key.Number != math.Trunc(key.Number)) {
			return nil, fmt.Sprintf("must be a whole rating between %d and %d", minRating, maxRating)
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return nil, "is not valid JSON"
	}
	return datatypes.JSON(compact.Bytes()), ""
}

func containsOption(options []string, candidate string) bool {
	for _, option := range options {
		if option == candidate {
			return true
		}
	}
	return false
}

// computeTotals grades an empty submission so the stored totals match what the grader counts.
func computeTotals(questions []models.Question) repository.FormTotals {
	scoringQuestions := make([]scoring.Question, 0, len(questions))
	for _, question := range questions {
		scoringQuestions = append(scoringQuestions, question.ScoringQuestion())
	}

	result := scoring.Grade(scoringQuestions, scoring.Answers{}, scoring.PassingPolicy{})
	return repository.FormTotals{TotalPoints: result.TotalPoints, TotalMCQs: result.TotalMCQs}
}

// validatePassingPolicy checks the passing configuration of a quiz. Rules that depend on the
// question set are enforced only when strict is set, since drafts may not have questions yet.
func validatePassingPolicy(form models.Form, strict bool) error {
	if !form.IsQuiz {
		return nil
	}

	verr := &ValidationError{}
	if form.PassingScore != nil && (*form.PassingScore < 0 || *form.PassingScore > 100) {
		verr.add("passing_score", "must be between 0 and 100")
	}
	if form.MinCorrectMCQs != nil && *form.MinCorrectMCQs < 0 {
		verr.add("min_correct_mcqs", "must not be negative")
	}

	if strict && form.UseMCQCriteria {
		if form.TotalMCQs == 0 {
			verr.add("use_mcq_criteria", "requires at least one graded multiple choice question")
		} else if form.MinCorrectMCQs != nil && *form.MinCorrectMCQs > form.TotalMCQs {
			verr.add("min_correct_mcqs", fmt.Sprintf("cannot exceed the %d multiple choice questions", form.TotalMCQs))
		}
	}

	return verr.errOrNil()
}
