// Package dto provides Data Transfer Objects for form and API requests.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

// Request decoding errors.
var (
	ErrMalformedBody = errors.New("invalid request body")
	ErrTooManyFiles  = errors.New("only one avatar file is allowed")
)

// AvatarField is the multipart field carrying the avatar upload.
const AvatarField = "avatar"

// MissingFieldError reports the first required field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return e.Field + " is required"
}

// Text accepts a JSON string or number and keeps it as text.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// RegisterRequest represents the registration form.
type RegisterRequest struct {
	Name     Text `json:"name"`
	Email    Text `json:"email"`
	Age      Text `json:"age"`
	Password Text `json:"password"`

	// Avatar is set only for multipart requests carrying an "avatar" file.
	Avatar *multipart.FileHeader `json:"-"`
}

// Validate checks presence of every required field in form order.
func (r *RegisterRequest) Validate() error {
	return requireFields(
		field{"name", r.Name},
		field{"email", r.Email},
		field{"age", r.Age},
		field{"password", r.Password},
	)
}

// LoginRequest represents the login form.
type LoginRequest struct {
	Email    Text `json:"email"`
	Password Text `json:"password"`
}

// Validate checks presence of every required field in form order.
func (r *LoginRequest) Validate() error {
	return requireFields(
		field{"email", r.Email},
		field{"password", r.Password},
	)
}

type field struct {
	name  string
	value Text
}

func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	return nil
}

// DecodeRegister reads a registration request from a multipart, urlencoded
// or JSON body. maxMemory bounds the in-memory part of multipart parsing.
func DecodeRegister(r *http.Request, maxMemory int64) (*RegisterRequest, error) {
	req := &RegisterRequest{}

	switch mediaType(r) {
	case "application/json":
		if err := decodeJSON(r, req); err != nil {
			return nil, err
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
		fillRegisterForm(r, req)

		files := r.MultipartForm.File[AvatarField]
		if len(files) > 1 {
			return nil, ErrTooManyFiles
		}
		if len(files) == 1 {
			req.Avatar = files[0]
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
		fillRegisterForm(r, req)
	}

	return req, nil
}

// DecodeLogin reads a login request from a urlencoded, multipart or JSON body.
func DecodeLogin(r *http.Request, maxMemory int64) (*LoginRequest, error) {
	req := &LoginRequest{}

	switch mediaType(r) {
	case "application/json":
		if err := decodeJSON(r, req); err != nil {
			return nil, err
		}
		return req, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
	}

	req.Email = Text(r.PostForm.Get("email"))
	req.Password = Text(r.PostForm.Get("password"))
	return req, nil
}

func fillRegisterForm(r *http.Request, req *RegisterRequest) {
	req.Name = Text(r.PostForm.Get("name"))
	req.Email = Text(r.PostForm.Get("email"))
	req.Age = Text(r.PostForm.Get("age"))
	req.Password = Text(r.PostForm.Get("password"))
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return nil
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}
