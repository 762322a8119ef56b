package model

import "github.com/google/uuid"

// QuestionType enumerates the supported question kinds. MultipleChoice and
// TrueFalse are auto-gradable; Text requires instructor confirmation.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeText           QuestionType = "TEXT"
)

// Objective reports whether the type can be graded without a human.
func (t QuestionType) Objective() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Difficulty is an authoring-time label, used by item statistics only.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Question represents a single bank question.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	CourseID     uuid.UUID    `json:"course_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Difficulty   Difficulty   `json:"difficulty"`
	Points       float64      `json:"points"`
	// Options is populated for objective types, ordered by position.
	Options []Option `json:"options,omitempty"`
	// ModelAnswer is populated for text questions.
	ModelAnswer *ModelAnswer `json:"model_answer,omitempty"`
}

// CorrectOptionIDs returns the IDs of options flagged correct.
func (q *Question) CorrectOptionIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// OptionPosition returns the zero-based position of the option within the
// question, or -1 when the option does not belong to it.
func (q *Question) OptionPosition(optionID uuid.UUID) int {
	for i, o := range q.Options {
		if o.ID == optionID {
			return i
		}
	}
	return -1
}

// HasOption reports whether the option belongs to this question.
func (q *Question) HasOption(optionID uuid.UUID) bool {
	return q.OptionPosition(optionID) >= 0
}

// Option is one selectable choice of an objective question.
type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	OptionText string    `json:"option_text"`
	IsCorrect  bool      `json:"-"`
	Position   int       `json:"position"`
}

// ModelAnswer is the canonical answer of a text question. Pattern, when set,
// is a regular expression that short-circuits similarity to 1.0 on match.
type ModelAnswer struct {
	AnswerText    string `json:"answer_text"`
	Pattern       string `json:"pattern,omitempty"`
	CaseSensitive bool   `json:"case_sensitive"`
}

// QuestionForStudent is a question as sent to a student taking an exam:
// no correct flags, no model answer.
type QuestionForStudent struct {
	ID           uuid.UUID    `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	OrderNum     int          `json:"order_num"`
	Marks        float64      `json:"marks"`
	Options      []Option     `json:"options,omitempty"`
}
