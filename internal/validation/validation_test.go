package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"min=8"`
	Tags     []string `json:"tags" validate:"min=1,dive,notblank"`
}

func TestStruct_Valid(t *testing.T) {
	errs := Struct(registration{Email: "reader@example.com", Password: "long-enough", Tags: []string{"a"}})
	assert.Nil(t, errs)
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	errs := Struct(registration{Email: "nope", Password: "short"})
	require.Len(t, errs, 3)

	assert.Equal(t, FieldError{Field: "email", Message: "email must be a valid email address"}, errs[0])
	assert.Equal(t, FieldError{Field: "password", Message: "password must be at least 8 characters"}, errs[1])
	assert.Equal(t, FieldError{Field: "tags", Message: "tags must contain at least 1 item(s)"}, errs[2])
}

func TestStruct_BlankSliceItem(t *testing.T) {
	errs := Struct(registration{Email: "reader@example.com", Password: "long-enough", Tags: []string{"  "}})
	require.Len(t, errs, 1)
	assert.Equal(t, "tags[0] is required", errs[0].Message)
}

func TestVar_ISBN(t *testing.T) {
	assert.Nil(t, Var("isbn", "978-0-14-044913-6", "isbn"))

	errs := Var("isbn", "12345", "isbn")
	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{Field: "isbn", Message: "isbn must be a valid ISBN-10 or ISBN-13"}, errs[0])
}
