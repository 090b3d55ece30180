package core_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/devShreyas21/studentPortal/core"
)

func TestValidationError(t *testing.T) {
	cause := errors.New("email taken")

	tests := []struct {
		name      string
		err       error
		wantMsg   string
		wantMap   map[string]string
		wantCause error
	}{
		{name: "no fields", err: core.NewValidationError(nil), wantMsg: "validation failed"},
		{
			name:    "fields only",
			err:     core.NewValidationError(nil, core.FieldError{Field: "title", Error: "required"}),
			wantMsg: "title: required",
			wantMap: map[string]string{"title": "required"},
		},
		{
			name:      "wrapped cause",
			err:       core.NewValidationError(cause, core.FieldError{Field: "email", Error: "taken"}, core.FieldError{Field: "name", Error: "blank"}),
			wantMsg:   "email taken",
			wantMap:   map[string]string{"email": "taken", "name": "blank"},
			wantCause: cause,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.wantMsg)

			var verr *core.ValidationError
			if assert.ErrorAs(t, tt.err, &verr) {
				assert.Equal(t, tt.wantMap, verr.FieldMap())
			}
			if tt.wantCause != nil {
				assert.ErrorIs(t, tt.err, tt.wantCause)
			}
		})
	}
}

func TestTranslateErrors(t *testing.T) {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)

	type input struct {
		Title string `json:"title" validate:"notblank"`
		Email string `json:"email" validate:"required"`
		Notes string `json:"-" validate:"max=3"`
	}
	err := validate.Struct(input{Title: "  ", Notes: "ok"})

	var verrs validator.ValidationErrors
	if assert.ErrorAs(t, err, &verrs) {
		assert.Equal(t, map[string]string{
			"title": "this field cannot be blank",
			"email": "this field is required",
		}, core.TranslateErrors(verrs, translator))
	}
}

func TestIsShutdown(t *testing.T) {
	err := core.NewShutdownError("integrity issue")
	assert.True(t, core.IsShutdown(err))
	assert.True(t, core.IsShutdown(errors.Wrap(err, "saving")))
	assert.False(t, core.IsShutdown(errors.New("integrity issue")))
}
