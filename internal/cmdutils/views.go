package cmdutils

import (
	"strconv"
	"time"

	"github.com/eventhub/eventhub-client/internal/apiclient"
	"github.com/eventhub/eventhub-client/internal/session"
)

// SessionView is the printable form of a session snapshot. The token itself
// is never printed.
type SessionView struct {
	Status           string     `json:"status"`
	SubjectID        int64      `json:"subject_id,omitempty"`
	Name             string     `json:"name,omitempty"`
	Email            string     `json:"email,omitempty"`
	Role             string     `json:"role,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	BiometricEnabled bool       `json:"biometric_enabled"`
}

func NewSessionView(snap session.Snapshot) SessionView {
	v := SessionView{
		Status:           snap.Status.String(),
		BiometricEnabled: snap.BiometricEnabled,
	}
	if !snap.Authenticated() {
		return v
	}

	s := snap.Session
	v.SubjectID = s.SubjectID
	v.Name = s.DisplayName
	v.Email = s.Email
	v.Role = s.Role
	if !s.Expiry.IsZero() {
		exp := s.Expiry.UTC()
		v.ExpiresAt = &exp
	}

	return v
}

func (v SessionView) Table() Table {
	rows := [][]string{
		{"Status", v.Status},
	}
	if v.SubjectID != 0 {
		rows = append(rows,
			[]string{"User ID", strconv.FormatInt(v.SubjectID, 10)},
			[]string{"Name", v.Name},
			[]string{"Email", v.Email},
			[]string{"Role", v.Role},
		)
	}
	if v.ExpiresAt != nil {
		rows = append(rows, []string{"Expires", v.ExpiresAt.Format(time.RFC3339)})
	}
	rows = append(rows, []string{"Biometric login", strconv.FormatBool(v.BiometricEnabled)})

	return Table{Rows: rows}
}

func EventsTable(events []apiclient.Event) Table {
	t := Table{Header: []string{"ID", "NAME", "DATE", "LOCATION", "OWNER"}}
	for _, e := range events {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Name,
			e.Date,
			e.Location,
			strconv.FormatInt(e.UserID, 10),
		})
	}

	return t
}

func EventTable(e apiclient.Event) Table {
	return Table{Rows: [][]string{
		{"ID", strconv.FormatInt(e.ID, 10)},
		{"Name", e.Name},
		{"Description", e.Description},
		{"Date", e.Date},
		{"Location", e.Location},
		{"Owner", strconv.FormatInt(e.UserID, 10)},
	}}
}

func UsersTable(users []apiclient.User) Table {
	t := Table{Header: []string{"ID", "NAME", "EMAIL"}}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{strconv.FormatInt(u.ID, 10), u.Name, u.Email})
	}

	return t
}

func UserTable(u apiclient.User) Table {
	return Table{Rows: [][]string{
		{"ID", strconv.FormatInt(u.ID, 10)},
		{"Name", u.Name},
		{"Email", u.Email},
		{"Role", u.Role},
	}}
}
