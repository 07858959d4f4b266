package quiz

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Response is a learner's latest graded submission for a quiz lesson.
type Response struct {
	ID          string            `json:"id" db:"id"`
	UserID      string            `json:"user_id" db:"user_id"`
	LessonID    string            `json:"lesson_id" db:"lesson_id"`
	Answers     map[string]string `json:"answers" db:"-"` // question id -> option id
	AnswersJSON string            `json:"-" db:"answers_json"`
	Score       int               `json:"score" db:"score"`
	Completed   bool              `json:"completed" db:"completed"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"` // UTC
}

func (r *Response) encodeAnswers() error {
	data, err := json.Marshal(r.Answers)
	if err != nil {
		return errors.Wrap(err, "encoding answers")
	}
	r.AnswersJSON = string(data)
	return nil
}

func (r *Response) decodeAnswers() error {
	r.Answers = make(map[string]string)
	if r.AnswersJSON == "" {
		return nil
	}
	return errors.Wrap(json.Unmarshal([]byte(r.AnswersJSON), &r.Answers), "decoding answers")
}

type Result struct {
	Score    int  `json:"score"`
	Passed   bool `json:"passed"`
	PassMark int  `json:"pass_mark"`
}

// Quiz is a quiz lesson as shown to learners: options carry no correctness flag.
type Quiz struct {
	LessonID  string         `json:"lesson_id"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Options []QuizOption `json:"options"`
}

type QuizOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
