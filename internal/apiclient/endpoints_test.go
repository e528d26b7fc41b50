package apiclient_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/eventhub-client/internal/apiclient"
	"github.com/eventhub/eventhub-client/internal/apitest"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

var meetup = apiclient.EventInput{
	Name:        "Go Meetup",
	Description: "Monthly gathering of gophers",
	Date:        "2030-05-01T18:00:00Z",
	Location:    "Berlin Mitte",
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, apitest.WithLoginUser())
	ctx := t.Context()

	err := f.client.Register(ctx, apiclient.RegisterRequest{
		Email: "ann@example.com", Password: "password123", Confirm: "password123", Name: "Ann",
	})
	require.NoError(t, err)

	err = f.client.Register(ctx, apiclient.RegisterRequest{
		Email: "ann@example.com", Password: "password123", Confirm: "password123", Name: "Ann",
	})
	assert.ErrorIs(t, err, serviceerr.ErrConflict)
	assert.Equal(t, "email already registered", serviceerr.Message(err))

	resp, err := f.client.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ann", resp.User.Name)

	req, _ := f.server.LastRequest()
	assert.JSONEq(t, `{"email":"ann@example.com","password":"password123"}`, string(req.Body))
}

func TestLogin_TokenOnly(t *testing.T) {
	f := newFixture(t)
	f.server.AddUser("ann@example.com", "password123", "Ann")

	resp, err := f.client.Login(t.Context(), "ann@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Nil(t, resp.User)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	ann := f.server.AddUser("ann@example.com", "password123", "Ann")
	f.signIn(t, "ann@example.com", "password123")

	me, err := f.client.Me(t.Context())
	require.NoError(t, err)
	assert.Equal(t, apiclient.User{ID: ann.ID, Email: "ann@example.com", Name: "Ann", Role: "user"}, me)
}

func TestEventsCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	ann := f.server.AddUser("ann@example.com", "password123", "Ann")
	f.signIn(t, "ann@example.com", "password123")

	created, err := f.client.CreateEvent(ctx, meetup)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, ann.ID, created.UserID)

	got, err := f.client.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("event mismatch (-created +got):\n%s", diff)
	}

	changed := meetup
	changed.Location = "Berlin Kreuzberg"
	updated, err := f.client.UpdateEvent(ctx, created.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, "Berlin Kreuzberg", updated.Location)

	_, err = f.client.CreateEvent(ctx, apiclient.EventInput{Name: "x"})
	assert.ErrorIs(t, err, serviceerr.ErrValidation)

	require.NoError(t, f.client.DeleteEvent(ctx, created.ID))

	_, err = f.client.GetEvent(ctx, created.ID)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	assert.Equal(t, "Event not found", serviceerr.Message(err))
}

func TestListEvents(t *testing.T) {
	seed := func(s *apitest.Server) {
		s.AddEvent(1, "Go Meetup", "Monthly gathering of gophers", "2030-05-01", "Berlin Mitte")
		s.AddEvent(1, "Rust Meetup", "Monthly gathering of crabs", "2030-05-02", "Berlin Mitte")
		s.AddEvent(1, "Go Conference", "Yearly gathering of gophers", "2030-06-01", "Amsterdam")
	}

	t.Run("bare array", func(t *testing.T) {
		f := newFixture(t)
		seed(f.server)

		page, err := f.client.ListEvents(t.Context(), apiclient.ListOptions{Search: "go"})
		require.NoError(t, err)
		assert.Len(t, page.Data, 2)
		assert.Zero(t, page.Pagination)

		req, _ := f.server.LastRequest()
		assert.Equal(t, "search=go", req.Query)
	})

	t.Run("paginated", func(t *testing.T) {
		f := newFixture(t, apitest.WithPaginatedEvents())
		seed(f.server)

		page, err := f.client.ListEvents(t.Context(), apiclient.ListOptions{Page: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Go Conference", page.Data[0].Name)
		assert.Equal(t, apiclient.Pagination{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, page.Pagination)
	})
}

func TestAttendees(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	owner := f.server.AddUser("owner@example.com", "password123", "Owner")
	ann := f.server.AddUser("ann@example.com", "password123", "Ann")
	ev := f.server.AddEvent(owner.ID, "Go Meetup", "Monthly gathering of gophers", "2030-05-01", "Berlin Mitte")
	f.signIn(t, "ann@example.com", "password123")

	a, err := f.client.AddAttendee(ctx, ev.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, a.EventID)
	assert.Equal(t, ann.ID, a.UserID)

	req, _ := f.server.LastRequest()
	assert.Equal(t, "user_id=2", req.Query)

	_, err = f.client.AddAttendee(ctx, ev.ID, ann.ID)
	assert.ErrorIs(t, err, serviceerr.ErrConflict)

	_, err = f.client.AddAttendee(ctx, ev.ID, owner.ID)
	assert.ErrorIs(t, err, serviceerr.ErrPermission)

	users, err := f.client.ListAttendees(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].Name)

	events, err := f.client.ListUserEvents(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)

	attending, err := f.client.ListAttending(ctx, ann.ID)
	require.NoError(t, err)
	assert.Len(t, attending.Data, 1)

	require.NoError(t, f.client.RemoveAttendee(ctx, ev.ID, ann.ID))

	err = f.client.RemoveAttendee(ctx, ev.ID, ann.ID)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)

	users, err = f.client.ListAttendees(ctx, ev.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestListAttending_NoUser(t *testing.T) {
	f := newFixture(t)

	page, err := f.client.ListAttending(t.Context(), 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Empty(t, f.server.Requests())
}

func TestPage_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want apiclient.Page[apiclient.Event]
	}{
		{
			name: "array",
			in:   `[{"id":1,"name":"a"}]`,
			want: apiclient.Page[apiclient.Event]{Data: []apiclient.Event{{ID: 1, Name: "a"}}},
		},
		{
			name: "object",
			in:   `{"data":[{"id":2}],"pagination":{"page":1,"limit":10,"total":1,"total_pages":1}}`,
			want: apiclient.Page[apiclient.Event]{
				Data:       []apiclient.Event{{ID: 2}},
				Pagination: apiclient.Pagination{Page: 1, Limit: 10, Total: 1, TotalPages: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got apiclient.Page[apiclient.Event]
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
