package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	ProgressRequest struct {
		Percent   int  `json:"percent"`
		Completed bool `json:"completed"`
	}

	QuizSubmission struct {
		Answers map[string]string `json:"answers"`
	}

	NoteRequest struct {
		Content string `json:"content"`
	}

	PublishRequest struct {
		IsPublished bool `json:"is_published"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
