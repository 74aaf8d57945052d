// Package clinic implements calendar.Source over the clinic REST API.
package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

// DefaultTimeout is used when Options.Timeout is zero.
const DefaultTimeout = 20 * time.Second

// Transport errors.
var (
	ErrUnauthorized = errors.New("clinic: unauthorized")
	ErrNotFound     = errors.New("clinic: not found")
	ErrNoBaseURL    = errors.New("clinic: base URL is required")
)

// APIError is a non-2xx response from the clinic API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clinic: status %d: %s", e.StatusCode, e.Message)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	Location   *time.Location // zone for timestamps without an offset; defaults to time.Local
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client talks to the clinic backend. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	token      string
	loc        *time.Location
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ calendar.Source = (*Client)(nil)

// New creates a new clinic API client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("clinic: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("clinic: base URL must be http or https, got %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &Client{
		baseURL:    u,
		token:      opts.Token,
		loc:        loc,
		httpClient: hc,
		logger:     opts.Logger.With().Str("component", "clinic").Logger(),
	}, nil
}

// FetchReservations returns every appointment visible to the session.
// The endpoint has no date range; callers trim the result.
func (c *Client) FetchReservations(ctx context.Context, s calendar.Session) ([]calendar.Appointment, error) {
	if s.UserID == "" {
		return nil, errors.New("clinic: user id is required")
	}
	q := url.Values{}
	q.Set("userId", s.UserID)
	q.Set("userType", string(s.UserType))
	if s.ViewAs != "" {
		q.Set("viewAs", string(s.ViewAs))
	}
	q.Set("timezone", c.loc.String())

	body, err := c.do(ctx, http.MethodGet, "/api/v1/reservations", q, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching reservations: %w", err)
	}

	records, err := list(body, "reservations", "appointments", "data")
	if err != nil {
		return nil, fmt.Errorf("fetching reservations: %w", err)
	}

	var result []calendar.Appointment
	records.ForEach(func(_, v gjson.Result) bool {
		a, err := parseAppointment(v, c.loc)
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed appointment")
			return true
		}
		result = append(result, a)
		return true
	})
	return result, nil
}

// Appointments implements calendar.Source.
func (c *Client) Appointments(ctx context.Context, s calendar.Session, from, to time.Time) ([]calendar.Appointment, error) {
	all, err := c.FetchReservations(ctx, s)
	if err != nil {
		return nil, err
	}
	result := make([]calendar.Appointment, 0, len(all))
	for _, a := range all {
		if !a.Start.Before(from) && a.Start.Before(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

// GetCalendarEvents returns the doctor's personal events between from and to.
func (c *Client) GetCalendarEvents(ctx context.Context, doctorID string, from, to time.Time) ([]calendar.PersonalEvent, error) {
	if doctorID == "" {
		return nil, errors.New("clinic: doctor id is required")
	}
	q := url.Values{}
	q.Set("startDate", from.UTC().Format(time.RFC3339))
	q.Set("endDate", to.UTC().Format(time.RFC3339))

	body, err := c.do(ctx, http.MethodGet, eventsPath(doctorID), q, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar events: %w", err)
	}

	records, err := list(body, "events", "data")
	if err != nil {
		return nil, fmt.Errorf("fetching calendar events: %w", err)
	}

	var result []calendar.PersonalEvent
	records.ForEach(func(_, v gjson.Result) bool {
		e, err := parseEvent(v, c.loc)
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping malformed personal event")
			return true
		}
		result = append(result, e)
		return true
	})
	return result, nil
}

// PersonalEvents implements calendar.Source.
func (c *Client) PersonalEvents(ctx context.Context, doctorID string, from, to time.Time) ([]calendar.PersonalEvent, error) {
	return c.GetCalendarEvents(ctx, doctorID, from, to)
}

type cancelRequest struct {
	AppointmentID      string `json:"appointmentId"`
	CanceledBy         string `json:"canceledBy"`
	CancellationReason string `json:"cancellationReason"`
}

// CancelAppointment implements calendar.Source.
func (c *Client) CancelAppointment(ctx context.Context, id string, canceledBy calendar.Role, reason string) error {
	req := cancelRequest{
		AppointmentID:      id,
		CanceledBy:         string(canceledBy),
		CancellationReason: reason,
	}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/cancel-appointment", nil, req)
	switch {
	case errors.Is(err, ErrNotFound):
		return calendar.ErrAppointmentNotFound
	case isStatus(err, http.StatusConflict):
		return calendar.ErrAlreadyCanceled
	case err != nil:
		return fmt.Errorf("canceling appointment: %w", err)
	}
	c.logger.Info().Str("appointment", id).Str("by", string(canceledBy)).Msg("appointment canceled")
	return nil
}

type recurrencePayload struct {
	Pattern         string `json:"pattern"`
	DaysOfWeek      []int  `json:"daysOfWeek,omitempty"`
	Interval        int    `json:"interval,omitempty"`
	EndDate         string `json:"endDate,omitempty"`
	OccurrenceCount int    `json:"occurrenceCount,omitempty"`
}

type eventRequest struct {
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	EventType          string             `json:"eventType"`
	StartTime          string             `json:"startTime"`
	EndTime            string             `json:"endTime"`
	BlocksAppointments bool               `json:"blocksAppointments"`
	Color              string             `json:"color,omitempty"`
	RecurringPattern   *recurrencePayload `json:"recurringPattern"`
}

// CreatePersonalEvent implements calendar.Source.
func (c *Client) CreatePersonalEvent(ctx context.Context, doctorID string, e calendar.NewPersonalEvent) (*calendar.PersonalEvent, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	eventType := e.EventType
	if eventType == "" {
		eventType = "personal"
	}
	req := eventRequest{
		Title:              e.Title,
		Description:        e.Description,
		EventType:          eventType,
		StartTime:          e.Start.UTC().Format(time.RFC3339),
		EndTime:            e.End.UTC().Format(time.RFC3339),
		BlocksAppointments: e.BlocksAppointments,
		Color:              e.Color,
	}
	if r := e.Recurrence; r != nil {
		req.RecurringPattern = &recurrencePayload{
			Pattern:         r.Pattern,
			DaysOfWeek:      r.DaysOfWeek,
			Interval:        r.Interval,
			OccurrenceCount: r.Count,
		}
		if !r.EndDate.IsZero() {
			req.RecurringPattern.EndDate = r.EndDate.Format("2006-01-02")
		}
	}

	body, err := c.do(ctx, http.MethodPost, eventsPath(doctorID), nil, req)
	if err != nil {
		return nil, fmt.Errorf("creating personal event: %w", err)
	}

	rec, err := object(body, "event", "data")
	if err != nil {
		return nil, fmt.Errorf("creating personal event: %w", err)
	}
	created, err := parseEvent(rec, c.loc)
	if err != nil {
		return nil, fmt.Errorf("creating personal event: %w", err)
	}
	return &created, nil
}

// DeletePersonalEvent implements calendar.Source.
func (c *Client) DeletePersonalEvent(ctx context.Context, doctorID, id string, deleteAll bool) error {
	q := url.Values{}
	q.Set("deleteAll", strconv.FormatBool(deleteAll))

	_, err := c.do(ctx, http.MethodDelete, eventsPath(doctorID)+"/"+url.PathEscape(id), q, nil)
	if errors.Is(err, ErrNotFound) {
		return calendar.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting personal event: %w", err)
	}
	return nil
}

// Close implements calendar.Source.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func eventsPath(doctorID string) string {
	return "/api/v1/doctors/" + url.PathEscape(doctorID) + "/calendar/events"
}

func isStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// do sends one request and returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	return respBody, nil
}
