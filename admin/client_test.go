package admin_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korylprince/dental-receptionist/admin"
	"github.com/korylprince/dental-receptionist/api"
	"github.com/korylprince/dental-receptionist/httpapi"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	a, err := api.NewAdmin("admin", "admin123")
	require.NoError(t, err)
	store := api.NewMemoryStore(a)
	require.NoError(t, store.Seed(context.Background(), time.Now()))

	sessions := httpapi.NewMemorySessionStore(time.Hour)
	t.Cleanup(sessions.Close)

	srv := httptest.NewServer(httpapi.NewRouter(io.Discard, sessions, store, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestAppointmentsAndCancel(t *testing.T) {
	srv := newServer(t)
	c := admin.NewClient(srv.URL+"/", "admin", "admin123")
	ctx := context.Background()

	list, err := c.Appointments(ctx, api.AppointmentFilters{})
	require.NoError(t, err)
	require.Len(t, list, 5)

	today := time.Now().Format(api.DateLayout)
	list, err = c.Appointments(ctx, api.AppointmentFilters{Date: today, Status: "confirmed"})
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, c.CancelAppointment(ctx, list[0].ID, "Running late"))

	cancelled, err := c.Appointments(ctx, api.AppointmentFilters{Status: "cancelled", Search: list[0].PatientName})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "Running late", cancelled[0].Reason)

	err = c.CancelAppointment(ctx, list[0].ID, "")
	var se *admin.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, api.ErrNotCancellable.Error(), err.Error())
}

func TestStats(t *testing.T) {
	srv := newServer(t)
	c := admin.NewClient(srv.URL, "admin", "admin123")

	s, err := c.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, api.Stats{Today: 2, Confirmed: 4, Cancelled: 1, All: 5}, *s)

	s, err = c.Stats(context.Background(), time.Now().AddDate(0, 0, 2).Format(api.DateLayout))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Today)
}

func TestSettings(t *testing.T) {
	srv := newServer(t)
	c := admin.NewClient(srv.URL, "admin", "admin123")
	ctx := context.Background()

	s, err := c.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bright Smile Dental", s.Info.Name)

	hours := s.Hours
	require.NoError(t, hours.SetDay("Sunday", "10:00 AM – 1:00 PM"))
	require.NoError(t, c.SaveSettings(ctx, &api.SettingsUpdate{Hours: &hours}))

	s, err = c.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10:00 AM – 1:00 PM", s.Hours.Sunday)

	err = c.SaveSettings(ctx, &api.SettingsUpdate{Services: api.Services{"cleaning": {Name: "", DurationMin: 30}}})
	var se *admin.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
}

func TestUnauthorized(t *testing.T) {
	srv := newServer(t)
	c := admin.NewClient(srv.URL, "admin", "nope")

	_, err := c.Appointments(context.Background(), api.AppointmentFilters{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, admin.ErrUnauthorized))
	assert.Equal(t, "Invalid credentials", err.Error())

	_, err = c.Settings(context.Background())
	assert.ErrorIs(t, err, admin.ErrUnauthorized)
}

func TestChangePasswordClientChecks(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()
	c := admin.NewClient(srv.URL, "admin", "admin123")
	ctx := context.Background()

	assert.ErrorIs(t, c.ChangePassword(ctx, "", "newsecret1", "newsecret1"), admin.ErrCurrentPasswordRequired)
	assert.ErrorIs(t, c.ChangePassword(ctx, "admin123", "newsecret1", "newsecret2"), api.ErrPasswordMismatch)
	assert.ErrorIs(t, c.ChangePassword(ctx, "admin123", "short", "short"), api.ErrPasswordTooShort)
	assert.Zero(t, calls)
}

func TestChangePassword(t *testing.T) {
	srv := newServer(t)
	c := admin.NewClient(srv.URL, "admin", "admin123")
	ctx := context.Background()

	assert.ErrorIs(t, c.ChangePassword(ctx, "wrong", "newsecret1", "newsecret1"), admin.ErrIncorrectPassword)

	require.NoError(t, c.ChangePassword(ctx, "admin123", "newsecret1", "newsecret1"))

	// the client switched to the new password
	_, err := c.Settings(ctx)
	require.NoError(t, err)

	stale := admin.NewClient(srv.URL, "admin", "admin123")
	_, err = stale.Settings(ctx)
	assert.ErrorIs(t, err, admin.ErrUnauthorized)
}

func TestChangePasswordServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":500,"error":"Internal Server Error"}`))
	}))
	defer srv.Close()

	err := admin.NewClient(srv.URL, "admin", "admin123").ChangePassword(context.Background(), "admin123", "newsecret1", "newsecret1")
	require.Error(t, err)
	assert.Equal(t, "Failed to change password: HTTP 500", err.Error())
}
