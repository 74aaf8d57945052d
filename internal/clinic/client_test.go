package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := New(Options{
		BaseURL:  ts.URL,
		Token:    "secret",
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"valid", "http://localhost:8080", false},
		{"trailing slash", "https://clinic.example.com/", false},
		{"empty", "", true},
		{"bad scheme", "ftp://clinic.example.com", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Options{BaseURL: tc.baseURL})
			if tc.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFetchReservations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/reservations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("userId"); got != "u1" {
			t.Errorf("userId = %q", got)
		}
		if got := r.URL.Query().Get("userType"); got != "doctor" {
			t.Errorf("userType = %q", got)
		}
		_, _ = w.Write([]byte(`[
			{"appointmentId": "a1", "appointmentStart": "2024-06-10T09:00:00Z", "appointmentEnd": "2024-06-10T09:30:00Z",
			 "canceled": false, "patientFirstName": "Jane", "patientLastName": "Roe", "age": 41},
			{"reservation_id": "a2", "reservation_start": "2024-06-11T10:00:00Z", "reservation_end": "2024-06-11T10:30:00Z",
			 "Canceled": true, "doctor_first_name": "Greg", "doctor_last_name": "House", "specialty": "Diagnostics"},
			{"appointmentId": "broken", "appointmentStart": "not a time"}
		]`))
	})

	got, err := c.FetchReservations(context.Background(), calendar.Session{UserID: "u1", UserType: calendar.RoleDoctor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(got))
	}

	if got[0].ID != "a1" || got[0].PatientName != "Jane Roe" || got[0].PatientAge != 41 || got[0].Canceled {
		t.Errorf("first: %+v", got[0])
	}
	if !got[0].Start.Equal(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("first start = %v", got[0].Start)
	}
	if got[1].ID != "a2" || !got[1].Canceled || got[1].DoctorName != "Greg House" || got[1].Specialty != "Diagnostics" {
		t.Errorf("second: %+v", got[1])
	}
}

func TestAppointments_TrimsToRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reservations": [
			{"appointmentId": "in", "appointmentStart": "2024-06-10T09:00:00Z", "appointmentEnd": "2024-06-10T09:30:00Z"},
			{"appointmentId": "out", "appointmentStart": "2024-07-10T09:00:00Z", "appointmentEnd": "2024-07-10T09:30:00Z"}
		]}`))
	})

	from := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC)
	got, err := c.Appointments(context.Background(), calendar.Session{UserID: "u1"}, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "in" {
		t.Errorf("got %+v", got)
	}
}

func TestGetCalendarEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/doctors/d1/calendar/events" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("startDate") != "2024-06-09T00:00:00Z" {
			t.Errorf("startDate = %q", r.URL.Query().Get("startDate"))
		}
		_, _ = w.Write([]byte(`{"events": [
			{"eventId": "e1", "title": "Lunch", "startTime": "2024-06-10T12:00:00Z", "endTime": "2024-06-10T13:00:00Z",
			 "blocksAppointments": true, "color": "#F56565", "eventType": "blocked"},
			{"eventId": "e2", "title": "Rounds", "startTime": "2024-06-03T08:00:00Z", "endTime": "2024-06-03T09:00:00Z",
			 "recurringPattern": {"pattern": "weekly", "daysOfWeek": [1, 3], "endDate": "2024-12-31"}},
			{"eventId": "e3", "title": "Rounds", "startTime": "2024-06-12T08:00:00Z", "endTime": "2024-06-12T09:00:00Z",
			 "parentEventId": "e2"}
		]}`))
	})

	from := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC)
	got, err := c.GetCalendarEvents(context.Background(), "d1", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if !got[0].BlocksAppointments || got[0].Color != "#F56565" || got[0].EventType != "blocked" {
		t.Errorf("first: %+v", got[0])
	}
	r := got[1].Recurrence
	if r == nil || r.Pattern != calendar.PatternWeekly || len(r.DaysOfWeek) != 2 || r.EndDate.Year() != 2024 {
		t.Errorf("recurrence: %+v", r)
	}
	if got[2].ParentID != "e2" {
		t.Errorf("parent = %q", got[2].ParentID)
	}
}

func TestGetCalendarEvents_StringPattern(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": [
			{"eventId": "e1", "title": "Walk", "startTime": "2024-06-03T12:00:00Z", "endTime": "2024-06-03T13:00:00Z",
			 "recurringPattern": "{\"pattern\":\"daily\",\"interval\":2}"}
		]}`))
	})

	from := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC)
	got, err := c.GetCalendarEvents(context.Background(), "d1", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	r := got[0].Recurrence
	if r == nil || r.Pattern != calendar.PatternDaily || r.Interval != 2 {
		t.Errorf("recurrence: %+v", r)
	}
}

func TestCancelAppointment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/v1/cancel-appointment" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["appointmentId"] != "a1" || body["canceledBy"] != "doctor" || body["cancellationReason"] != "sick" {
				t.Errorf("unexpected body %v", body)
			}
			_, _ = w.Write([]byte(`{"message": "ok"}`))
		})
		if err := c.CancelAppointment(context.Background(), "a1", calendar.RoleDoctor, "sick"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, calendar.ErrAppointmentNotFound},
		{"conflict", http.StatusConflict, calendar.ErrAlreadyCanceled},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error": "nope"}`))
			})
			err := c.CancelAppointment(context.Background(), "a1", calendar.RolePatient, "")
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreatePersonalEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["title"] != "Gym" || body["eventType"] != "personal" || body["startTime"] != "2024-06-10T07:00:00Z" {
			t.Errorf("unexpected body %v", body)
		}
		pattern, _ := body["recurringPattern"].(map[string]any)
		if pattern["pattern"] != "daily" {
			t.Errorf("unexpected recurrence %v", body["recurringPattern"])
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"event": {"eventId": "new-1", "title": "Gym",
			"startTime": "2024-06-10T07:00:00Z", "endTime": "2024-06-10T08:00:00Z"}}`))
	})

	start := time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)
	got, err := c.CreatePersonalEvent(context.Background(), "d1", calendar.NewPersonalEvent{
		Title:      "Gym",
		Start:      start,
		End:        start.Add(time.Hour),
		Recurrence: &calendar.Recurrence{Pattern: calendar.PatternDaily},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "new-1" {
		t.Errorf("ID = %q", got.ID)
	}
}

func TestCreatePersonalEvent_Invalid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	start := time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)
	_, err := c.CreatePersonalEvent(context.Background(), "d1", calendar.NewPersonalEvent{Title: "x", Start: start, End: start})
	if !errors.Is(err, calendar.ErrEndBeforeStart) {
		t.Errorf("got %v, want %v", err, calendar.ErrEndBeforeStart)
	}
}

func TestDeletePersonalEvent(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v1/doctors/d1/calendar/events/e1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("deleteAll")
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeletePersonalEvent(context.Background(), "d1", "e1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "true" {
		t.Errorf("deleteAll = %q", gotQuery)
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "database down"}`))
	})

	_, err := c.GetCalendarEvents(context.Background(), "d1", time.Now(), time.Now().Add(time.Hour))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 500 || apiErr.Message != "database down" {
		t.Errorf("got %+v", apiErr)
	}
}
