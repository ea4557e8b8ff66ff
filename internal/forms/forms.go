package forms

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form structs bound from POST bodies. gin's binding engine runs the
// validator tags, FieldErrors turns the result into per-field messages.

type RegisterForm struct {
	Email       string `form:"email" binding:"required,email"`
	DisplayName string `form:"name" binding:"required"`
	Password    string `form:"password" binding:"required,min=6"`
}

type LoginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type PostForm struct {
	Title         string `form:"title" binding:"required"`
	CoverImageURL string `form:"img_url" binding:"required,url"`
	Body          string `form:"body" binding:"required"`
}

type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

type ContactForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Question string `form:"question" binding:"required"`
}

// FieldErrors maps a binding error to field -> message for re-rendering the
// form. Errors that are not field-level collapse to a single "form" entry.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "The submitted form could not be read."
		return out
	}

	for _, fe := range verrs {
		field := formKey(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "This field is required."
		case "email":
			out[field] = "Must be a well-formed email address."
		case "url":
			out[field] = "Must be a well-formed URL."
		case "min":
			out[field] = "Too short, at least " + fe.Param() + " characters."
		default:
			out[field] = "Invalid value."
		}
	}
	return out
}

// formKey maps a struct field name back to its form input name so templates
// can look up errors next to the right input.
func formKey(field string) string {
	switch field {
	case "CoverImageURL":
		return "img_url"
	case "DisplayName":
		return "name"
	default:
		return strings.ToLower(field)
	}
}
