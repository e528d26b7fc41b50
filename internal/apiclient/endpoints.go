package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   LoginRequest{Email: email, Password: password},
		Public: true,
	}, &resp)

	return resp, err
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   req,
		Public: true,
	}, nil)
}

// Me returns the user the session token belongs to.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/me"}, &u)
	return u, err
}

func (c *Client) ListEvents(ctx context.Context, opts ListOptions) (Page[Event], error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	var page Page[Event]
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/events", Query: q}, &page)

	return page, err
}

func (c *Client) GetEvent(ctx context.Context, id int64) (Event, error) {
	var ev Event
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: eventPath(id)}, &ev)
	return ev, err
}

func (c *Client) CreateEvent(ctx context.Context, in EventInput) (Event, error) {
	var ev Event
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/events", Body: in}, &ev)
	return ev, err
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, in EventInput) (Event, error) {
	var ev Event
	err := c.Do(ctx, Request{Method: http.MethodPut, Path: eventPath(id), Body: in}, &ev)
	return ev, err
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: eventPath(id)}, nil)
}

// ListAttendees returns the users attending an event.
func (c *Client) ListAttendees(ctx context.Context, eventID int64) ([]User, error) {
	users := []User{}
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: eventPath(eventID) + "/attendees"}, &users)
	return users, err
}

func (c *Client) AddAttendee(ctx context.Context, eventID, userID int64) (Attendee, error) {
	var a Attendee
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   eventPath(eventID) + "/attendees",
		Query:  url.Values{"user_id": {strconv.FormatInt(userID, 10)}},
	}, &a)

	return a, err
}

func (c *Client) RemoveAttendee(ctx context.Context, eventID, userID int64) error {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("%s/attendees/%d", eventPath(eventID), userID),
	}, nil)
}

// ListUserEvents returns the events a user attends.
func (c *Client) ListUserEvents(ctx context.Context, userID int64) ([]Event, error) {
	events := []Event{}
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/attendees/%d/events", userID)}, &events)
	return events, err
}

// ListAttending is ListUserEvents shaped like a listing page. Without a user
// id it answers with an empty page and sends nothing.
func (c *Client) ListAttending(ctx context.Context, userID int64) (Page[Event], error) {
	if userID == 0 {
		return Page[Event]{Data: []Event{}}, nil
	}

	events, err := c.ListUserEvents(ctx, userID)
	if err != nil {
		return Page[Event]{}, err
	}

	return Page[Event]{Data: events}, nil
}

func eventPath(id int64) string {
	return "/events/" + strconv.FormatInt(id, 10)
}
