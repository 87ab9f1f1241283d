package http

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/validation"
)

// ErrorResponse is the error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse lists every invalid field of a request.
type ValidationResponse struct {
	Errors []validation.FieldError `json:"errors"`
}

// MessageResponse is a plain success message.
type MessageResponse struct {
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondValidation(c *gin.Context, errs []validation.FieldError) {
	c.JSON(http.StatusBadRequest, ValidationResponse{Errors: errs})
}

// parseIDParam extracts an unsigned integer ID from URL parameters.
// On failure it responds with 400 and returns false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondValidation(c, []validation.FieldError{{Field: paramName, Message: "Invalid book ID"}})
		return 0, false
	}
	return uint(id), true
}

// flexibleNumber accepts a JSON number or a numeric string, the way browser
// forms submit them. Anything else is recorded as invalid rather than
// failing the whole decode, so it can be reported per field.
type flexibleNumber struct {
	Value   int
	Present bool
	Valid   bool
}

func (n *flexibleNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = flexibleNumber{}
		return nil
	}
	*n = flexibleNumber{Present: true}

	text := string(data)
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	n.Value, n.Valid = parseWholeNumber(strings.TrimSpace(text))
	return nil
}

// parseWholeNumber accepts JSON number syntax only, so NaN, Inf and hex
// forms are rejected. The value must be whole and fit in 32 bits.
func parseWholeNumber(text string) (int, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v, rest any
	if err := dec.Decode(&v); err != nil || dec.Decode(&rest) != io.EOF {
		return 0, false
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}

	if i, err := num.Int64(); err == nil {
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, false
		}
		return int(i), true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
