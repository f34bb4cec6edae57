// Package scoring grades quiz attempts and applies passing policies. It performs no I/O.
package scoring

// QuestionType enumerates the question kinds a form can contain.
type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeTextarea       QuestionType = "textarea"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeCheckbox       QuestionType = "checkbox"
	TypeDropdown       QuestionType = "dropdown"
	TypeNumber         QuestionType = "number"
	TypeEmail          QuestionType = "email"
	TypeDate           QuestionType = "date"
	TypeRating         QuestionType = "rating"
)

// DefaultPassingScore is the percentage threshold used when a policy sets none.
const DefaultPassingScore = 60.0

// QuestionTypes lists every supported type in builder order.
var QuestionTypes = []QuestionType{
	TypeText,
	TypeTextarea,
	TypeMultipleChoice,
	TypeCheckbox,
	TypeDropdown,
	TypeNumber,
	TypeEmail,
	TypeDate,
	TypeRating,
}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsMCQ reports whether questions of this type count toward the MCQ passing criterion.
func (t QuestionType) IsMCQ() bool {
	switch t {
	case TypeMultipleChoice, TypeCheckbox, TypeDropdown:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the type is answered by picking from a fixed option list.
func (t QuestionType) HasOptions() bool {
	return t.IsMCQ()
}

// Question is the read-only view of a question needed for grading.
//
// CorrectAnswers holds either a decoded JSON value (string, float64, bool, []any) or a
// json.RawMessage that is decoded lazily. nil means the question is not graded.
type Question struct {
	ID             string
	Type           QuestionType
	Options        []string
	CorrectAnswers any
	Points         int
}

// points returns the value of the question, defaulting to 1 when unset.
func (q Question) points() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// Answers maps question ids to submitted values. Values follow the same shapes as
// Question.CorrectAnswers.
type Answers map[string]any

// PassingPolicy is the passing configuration attached to a quiz form.
type PassingPolicy struct {
	UsePercentage  bool
	UseMCQ         bool
	PassingScore   *float64
	MinCorrectMCQs *int
}

// Status describes how a single question was resolved.
type Status string

const (
	StatusCorrect    Status = "correct"
	StatusIncorrect  Status = "incorrect"
	StatusUnanswered Status = "unanswered"
	StatusUngraded   Status = "ungraded"
	StatusMalformed  Status = "malformed"
)

// Outcome is the grading verdict for one question.
type Outcome struct {
	QuestionID string
	Type       QuestionType
	Status     Status
	Points     int
	Awarded    int
}

// Correct reports whether the question earned its points.
func (o Outcome) Correct() bool {
	return o.Status == StatusCorrect
}

// Result is the outcome of one grading run. It is built fresh per call and never mutated.
type Result struct {
	Score       int
	TotalPoints int
	Percentage  float64
	Passed      bool
	CorrectMCQs int
	TotalMCQs   int
	Outcomes    []Outcome
}
