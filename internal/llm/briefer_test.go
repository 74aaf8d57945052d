package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

type stubClient struct {
	reply    string
	err      error
	messages []Message
}

func (s *stubClient) Chat(ctx context.Context, messages []Message) (string, error) {
	s.messages = messages
	return s.reply, s.err
}

func (s *stubClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := s.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}

func testLayout() *calendar.WeekLayout {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	w := calendar.NewWeekWindow(now)
	appts := []calendar.Appointment{
		{ID: "1", PatientName: "Jane Roe", Start: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)},
		{ID: "2", PatientName: "John Doe", Canceled: true, Start: time.Date(2024, 6, 13, 10, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 13, 11, 0, 0, 0, time.UTC)},
	}
	events := []calendar.PersonalEvent{
		{ID: "e", Title: "Lunch", BlocksAppointments: true, Start: time.Date(2024, 6, 13, 12, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 13, 13, 0, 0, 0, time.UTC)},
	}
	return calendar.BuildLayout(now, w, appts, events, calendar.DefaultFilter(), calendar.DefaultGeometry())
}

func TestFormatWeek(t *testing.T) {
	got := FormatWeek(testLayout(), calendar.RoleDoctor)

	for _, want := range []string{
		"Mon Jun 10\n",
		"[x] 09:00-09:30  Jane Roe  30m",
		"Thu Jun 13\n",
		"[-] 10:00-11:00  John Doe  1h",
		"[B] 12:00-13:00  Lunch  1h",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatWeek() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Tue") {
		t.Errorf("empty days should be skipped:\n%s", got)
	}
}

func TestBriefWeek(t *testing.T) {
	stub := &stubClient{reply: "```json\n{\"headline\": \"Quiet week\", \"notes\": [\"Thursday 10:00 is free to rebook\"]}\n```"}
	b := NewBriefer(stub)

	got, err := b.BriefWeek(context.Background(), testLayout(), calendar.RoleDoctor)
	if err != nil {
		t.Fatalf("BriefWeek failed: %v", err)
	}
	if got.Headline != "Quiet week" || len(got.Notes) != 1 {
		t.Errorf("unexpected briefing %+v", got)
	}
	if got.String() != "Quiet week\n- Thursday 10:00 is free to rebook" {
		t.Errorf("String() = %q", got.String())
	}
	if len(stub.messages) != 2 || stub.messages[0].Role != RoleSystem {
		t.Fatalf("unexpected messages %+v", stub.messages)
	}
	if !strings.Contains(stub.messages[1].Content, "Jane Roe") {
		t.Error("prompt should include the week agenda")
	}
}

func TestBriefWeek_Errors(t *testing.T) {
	boom := errors.New("connection refused")
	if _, err := NewBriefer(&stubClient{err: boom}).BriefWeek(context.Background(), testLayout(), calendar.RoleDoctor); !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
	if _, err := NewBriefer(&stubClient{reply: `{"notes": []}`}).BriefWeek(context.Background(), testLayout(), calendar.RoleDoctor); err == nil {
		t.Error("expected error for empty headline")
	}
}

func TestBriefWeek_EmptyWeekSkipsModel(t *testing.T) {
	stub := &stubClient{err: errors.New("should not be called")}
	w := calendar.NewWeekWindow(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC))
	layout := calendar.BuildLayout(time.Now(), w, nil, nil, calendar.DefaultFilter(), calendar.DefaultGeometry())

	got, err := NewBriefer(stub).BriefWeek(context.Background(), layout, calendar.RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Headline == "" || stub.messages != nil {
		t.Errorf("empty week should not call the model: %+v", got)
	}
}
