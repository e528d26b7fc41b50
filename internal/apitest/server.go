// Package apitest runs an in-process EventHub backend for tests. It keeps
// users, events and attendees in memory and answers with the same status
// codes and error bodies as the real service.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

const apiPrefix = "/api/v1"

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`

	password string
}

type Event struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
}

type Attendee struct {
	ID      int64 `json:"id"`
	EventID int64 `json:"event_id"`
	UserID  int64 `json:"user_id"`
}

// Request is what the server saw of one incoming call.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          []byte
}

type Option func(*Server)

// WithLoginUser makes login answer with the user next to the token.
func WithLoginUser() Option {
	return func(s *Server) { s.loginUser = true }
}

// WithPaginatedEvents makes the event listing answer with a page object
// instead of a bare array.
func WithPaginatedEvents() Option {
	return func(s *Server) { s.paginated = true }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     []*User
	events    []*Event
	attendees []*Attendee
	nextID    int64
	requests  []Request
	overrides map[string]http.HandlerFunc
	loginUser bool
	paginated bool
	tokenTTL  time.Duration
}

// Start runs a server that is closed with the test.
func Start(t *testing.T, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		overrides: make(map[string]http.HandlerFunc),
		tokenTTL:  24 * time.Hour,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)

	return s
}

// BaseURL is the API root the client is configured with.
func (s *Server) BaseURL() string {
	return s.URL + apiPrefix
}

// AddUser seeds a user and returns it.
func (s *Server) AddUser(email, password, name string) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.addUser(email, password, name)
}

// AddEvent seeds an event owned by userID.
func (s *Server) AddEvent(userID int64, name, description, date, location string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	ev := &Event{ID: s.nextID, UserID: userID, Name: name, Description: description, Date: date, Location: location}
	s.events = append(s.events, ev)

	return *ev
}

// Override answers method+path (path relative to the API root, with mux
// variables allowed) with h instead of the built-in handler.
func (s *Server) Override(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[method+" "+path] = h
}

// Fail makes method+path answer with status and an error body.
func (s *Server) Fail(method, path string, status int, message string) {
	s.Override(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, status, message)
	})
}

// Requests returns the calls seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.requests)
}

// LastRequest returns the most recent call.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return Request{}, false
	}

	return s.requests[len(s.requests)-1], true
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix(apiPrefix).Subrouter()
	api.Use(s.record)

	s.handle(api, http.MethodPost, "/auth/register", s.register)
	s.handle(api, http.MethodPost, "/auth/login", s.login)
	s.handle(api, http.MethodGet, "/auth/me", s.authed(s.me))

	s.handle(api, http.MethodGet, "/events", s.listEvents)
	s.handle(api, http.MethodGet, "/events/{id}", s.getEvent)
	s.handle(api, http.MethodPost, "/events", s.authed(s.createEvent))
	s.handle(api, http.MethodPut, "/events/{id}", s.authed(s.updateEvent))
	s.handle(api, http.MethodDelete, "/events/{id}", s.authed(s.deleteEvent))

	s.handle(api, http.MethodGet, "/events/{id}/attendees", s.authed(s.listAttendees))
	s.handle(api, http.MethodPost, "/events/{id}/attendees", s.authed(s.addAttendee))
	s.handle(api, http.MethodDelete, "/events/{id}/attendees/{userId}", s.authed(s.removeAttendee))
	s.handle(api, http.MethodGet, "/attendees/{id}/events", s.authed(s.userEvents))

	return r
}

func (s *Server) handle(r *mux.Router, method, path string, h http.HandlerFunc) {
	key := method + " " + path
	r.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		override, ok := s.overrides[key]
		s.mu.Unlock()
		if ok {
			override(w, req)
			return
		}
		h(w, req)
	}).Methods(method)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, apiPrefix),
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, user *User)

func (s *Server) authed(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		id, ok := verify(raw)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		s.mu.Lock()
		user := s.userByID(id)
		s.mu.Unlock()
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		h(w, r, user)
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Confirm  string `json:"confirm"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil ||
		len(req.Password) < 8 || req.Confirm != req.Password ||
		len(req.Name) < 2 || len(req.Name) > 100 {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByEmail(req.Email) != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	s.addUser(req.Email, req.Password, req.Name)

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	user := s.userByEmail(req.Email)
	s.mu.Unlock()
	if user == nil || user.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	raw, err := sign(user.ID, time.Now().Add(s.tokenTTL))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	resp := map[string]any{"token": raw}
	if s.loginUser {
		resp["user"] = user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, user *User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))

	s.mu.Lock()
	matched := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if search == "" || strings.Contains(strings.ToLower(ev.Name), search) {
			matched = append(matched, *ev)
		}
	}
	s.mu.Unlock()

	if !s.paginated {
		writeJSON(w, http.StatusOK, matched)
		return
	}

	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 10)
	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	writeJSON(w, http.StatusOK, map[string]any{
		"data": matched[start:end],
		"pagination": map[string]int{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": (total + limit - 1) / limit,
		},
	})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid event ID")
	if !ok {
		return
	}

	s.mu.Lock()
	ev := s.eventByID(id)
	s.mu.Unlock()
	if ev == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request, user *User) {
	var ev Event
	if !decodeEvent(w, r, &ev) {
		return
	}

	s.mu.Lock()
	s.nextID++
	ev.ID = s.nextID
	ev.UserID = user.ID
	s.events = append(s.events, &ev)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request, user *User) {
	id, ok := pathID(w, r, "id", "Invalid event ID")
	if !ok {
		return
	}

	s.mu.Lock()
	existing := s.eventByID(id)
	s.mu.Unlock()
	if existing == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if existing.UserID != user.ID {
		writeError(w, http.StatusForbidden, "You do not have permission to update this event")
		return
	}

	var updated Event
	if !decodeEvent(w, r, &updated) {
		return
	}

	s.mu.Lock()
	updated.ID = existing.ID
	updated.UserID = existing.UserID
	*existing = updated
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request, user *User) {
	id, ok := pathID(w, r, "id", "Invalid event ID")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.eventByID(id)
	if ev == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if ev.UserID != user.ID && user.Role != "admin" {
		writeError(w, http.StatusForbidden, "You do not have permission to delete this event")
		return
	}
	s.events = slices.DeleteFunc(s.events, func(e *Event) bool { return e.ID == id })
	s.attendees = slices.DeleteFunc(s.attendees, func(a *Attendee) bool { return a.EventID == id })

	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

func (s *Server) listAttendees(w http.ResponseWriter, r *http.Request, _ *User) {
	id, ok := pathID(w, r, "id", "Invalid event ID")
	if !ok {
		return
	}

	s.mu.Lock()
	users := []User{}
	for _, a := range s.attendees {
		if a.EventID != id {
			continue
		}
		if u := s.userByID(a.UserID); u != nil {
			users = append(users, *u)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, users)
}

func (s *Server) addAttendee(w http.ResponseWriter, r *http.Request, user *User) {
	eventID, ok := pathID(w, r, "id", "Invalid event ID")
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.eventByID(eventID)
	if ev == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if user.ID != userID && ev.UserID != user.ID && user.Role != "admin" {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	if s.userByID(userID) == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	for _, a := range s.attendees {
		if a.EventID == eventID && a.UserID == userID {
			writeError(w, http.StatusConflict, "User is already an attendee of this event")
			return
		}
	}

	s.nextID++
	a := &Attendee{ID: s.nextID, EventID: eventID, UserID: userID}
	s.attendees = append(s.attendees, a)

	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) removeAttendee(w http.ResponseWriter, r *http.Request, user *User) {
	eventID, ok := pathID(w, r, "id", "Invalid event ID")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId", "Invalid user ID")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.eventByID(eventID)
	if ev == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if user.ID != userID && ev.UserID != user.ID && user.Role != "admin" {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	before := len(s.attendees)
	s.attendees = slices.DeleteFunc(s.attendees, func(a *Attendee) bool {
		return a.EventID == eventID && a.UserID == userID
	})
	if len(s.attendees) == before {
		writeError(w, http.StatusNotFound, "Attendee not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Attendee removed"})
}

func (s *Server) userEvents(w http.ResponseWriter, r *http.Request, _ *User) {
	userID, ok := pathID(w, r, "id", "Invalid user ID")
	if !ok {
		return
	}

	s.mu.Lock()
	events := []Event{}
	for _, a := range s.attendees {
		if a.UserID != userID {
			continue
		}
		if ev := s.eventByID(a.EventID); ev != nil {
			events = append(events, *ev)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Server) addUser(email, password, name string) *User {
	s.nextID++
	u := &User{ID: s.nextID, Email: email, Name: name, Role: "user", password: password}
	s.users = append(s.users, u)

	return u
}

func (s *Server) userByID(id int64) *User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) userByEmail(email string) *User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *Server) eventByID(id int64) *Event {
	for _, ev := range s.events {
		if ev.ID == id {
			return ev
		}
	}
	return nil
}

func decodeEvent(w http.ResponseWriter, r *http.Request, ev *Event) bool {
	if err := json.NewDecoder(r.Body).Decode(ev); err != nil ||
		len(ev.Name) < 3 || len(ev.Name) > 100 ||
		len(ev.Description) < 10 || len(ev.Description) > 500 ||
		ev.Date == "" ||
		len(ev.Location) < 5 || len(ev.Location) > 200 {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name, msg string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, msg)
		return 0, false
	}

	return id, true
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
