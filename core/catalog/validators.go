package catalog

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	defaultCurrency = "USD"

	quizQuestionsTag  = "quizquestions"
	quizQuestionsText = "quiz lessons need at least one question"

	noQuestionsTag  = "noquestions"
	noQuestionsText = "only quiz lessons can have questions"

	oneCorrectTag  = "onecorrect"
	oneCorrectText = "exactly one option must be correct"
)

// InitValidators registers the catalog validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(lessonStructValidation, NewLesson{})
	core.RegisterCustomTranslation(validate, translator, quizQuestionsTag, quizQuestionsText)
	core.RegisterCustomTranslation(validate, translator, noQuestionsTag, noQuestionsText)

	validate.RegisterStructValidation(questionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, oneCorrectTag, oneCorrectText)
}

func lessonStructValidation(sl validator.StructLevel) {
	lsn := sl.Current().Interface().(NewLesson)
	switch {
	case lsn.Type == LessonQuiz && len(lsn.Questions) == 0:
		sl.ReportError(lsn.Questions, "questions", "Questions", quizQuestionsTag, "")
	case lsn.Type != LessonQuiz && len(lsn.Questions) > 0:
		sl.ReportError(lsn.Questions, "questions", "Questions", noQuestionsTag, "")
	}
}

func questionStructValidation(sl validator.StructLevel) {
	qst := sl.Current().Interface().(NewQuestion)
	var correct int
	for _, opt := range qst.Options {
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		sl.ReportError(qst.Options, "options", "Options", oneCorrectTag, "")
	}
}
