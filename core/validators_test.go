package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestInitValidators(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	type payload struct {
		Slug  string `json:"slug" validate:"required,slug"`
		Title string `json:"title" validate:"notblank"`
	}

	tests := []struct {
		name     string
		data     payload
		wantErrs map[string]string
	}{
		{name: "valid", data: payload{Slug: "intro-to-go", Title: "Intro"}},
		{
			name: "missing slug & blank title", data: payload{Title: "   "},
			wantErrs: map[string]string{"slug": "this field is required", "title": notBlankText},
		},
		{name: "bad slug", data: payload{Slug: "Intro--Go", Title: "Intro"}, wantErrs: map[string]string{"slug": slugText}},
		{name: "trailing hyphen", data: payload{Slug: "intro-", Title: "Intro"}, wantErrs: map[string]string{"slug": slugText}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.data)
			if tt.wantErrs == nil {
				assert.NoError(t, err)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !assert.True(t, ok, "want validator.ValidationErrors, got %v", err) {
				return
			}
			got := make(map[string]string, len(vErrs))
			for _, fe := range vErrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.wantErrs, got)
		})
	}
}
