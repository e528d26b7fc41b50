package apiclient

import (
	"bytes"
	"encoding/json"
)

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

type Event struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
}

// EventInput is the writable part of an event.
type EventInput struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	Date        string `json:"date" mapstructure:"date"`
	Location    string `json:"location" mapstructure:"location"`
}

type Attendee struct {
	ID      int64 `json:"id"`
	EventID int64 `json:"event_id"`
	UserID  int64 `json:"user_id"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is one page of a listing. Backends that do not paginate answer with a
// bare array, which decodes into Data with a zero Pagination.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '[' {
		p.Pagination = Pagination{}
		return json.Unmarshal(trimmed, &p.Data)
	}

	type page Page[T]
	var v page
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Page[T](v)

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the user only when the backend sends it.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
	Name     string `json:"name"`
}

// ListOptions filter an event listing. Zero values are not sent.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}
