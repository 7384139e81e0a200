package schoolapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY DTOs
// ══════════════════════════════════════════════════════════════════════════════

// StudentDTO is a student as returned by GET /students.
type StudentDTO struct {
	ID       json.Number `json:"id"`
	FullName string      `json:"full_name,omitempty"`
	Name     string      `json:"name,omitempty"`
	Email    string      `json:"email,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	GroupID  json.Number `json:"group_id,omitempty"`
	Status   string      `json:"status,omitempty"`
}

// TeacherDTO is a teacher as returned by GET /teachers.
type TeacherDTO struct {
	ID         json.Number `json:"id"`
	FullName   string      `json:"full_name,omitempty"`
	Name       string      `json:"name,omitempty"`
	Email      string      `json:"email,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Speciality string      `json:"speciality,omitempty"`
}

// APIErrorDTO is the error body of a failed request.
type APIErrorDTO struct {
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"-"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		return fmt.Sprintf("school api: status %d", e.Status)
	}
	return fmt.Sprintf("school api: status %d: %s", e.Status, msg)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENVELOPES
// ══════════════════════════════════════════════════════════════════════════════

// decodeList accepts either a bare JSON array or an object wrapping the
// array in "data" or "items".
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, nil
	}

	if body[0] == '[' {
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, err
		}
		return nonNil(out), nil
	}

	var env struct {
		Data  []T `json:"data"`
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.Data != nil {
		return env.Data, nil
	}
	return nonNil(env.Items), nil
}

// decodeOne accepts either a bare object or one wrapped in "data".
func decodeOne[T any](body []byte) (T, error) {
	var env struct {
		Data *T `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		return *env.Data, nil
	}
	var out T
	err := json.Unmarshal(body, &out)
	return out, err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func decodeInto(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
