package req

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"connect/internal/pkg/errs"
)

type loginInput struct {
	Email string `json:"email" validate:"required"`
}

func bind(contentType, body string) *errs.CustomError {
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	var dst loginInput
	return BindJSON(httptest.NewRecorder(), r, &dst)
}

func TestBindJSON(t *testing.T) {
	assert.Nil(t, bind("application/json; charset=utf-8", `{"email":"jane@acertax.com"}`))

	assert.Equal(t, errs.ErrUnsupportedMediaType, bind("text/plain", `{}`).Code)
	assert.Equal(t, errs.ErrInvalidJSONFormat, bind("application/json", `{"email":`).Code)
	assert.Equal(t, errs.ErrInvalidJSONFormat, bind("application/json", `{"email":"a","extra":1}`).Code)
	assert.Equal(t, errs.ErrExtraContentInBody, bind("application/json", `{"email":"a"} {}`).Code)
	assert.Equal(t, errs.ErrInvalidParams, bind("application/json", `{}`).Code)
}

func TestBindPayload(t *testing.T) {
	var dst loginInput
	assert.Equal(t, errs.ErrInvalidParams, BindPayload(nil, &dst).Code)
	assert.Equal(t, errs.ErrInvalidJSONFormat, BindPayload(json.RawMessage(`[]`), &dst).Code)
	assert.Nil(t, BindPayload(json.RawMessage(`{"email":"x"}`), &dst))
	assert.Equal(t, "x", dst.Email)
}
