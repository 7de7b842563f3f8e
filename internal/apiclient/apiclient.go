// Package apiclient talks to the booking API over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/checkout"
)

// APIError is a non-2xx answer. It unwraps to the matching apperr value.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api responded %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		inputErr := apperr.NewInputError()

		for field, msgs := range e.Fields {
			for _, msg := range msgs {
				inputErr.Add(field, msg)
			}
		}

		if inputErr.Len() == 0 {
			inputErr.Add("request", e.Message)
		}

		return inputErr
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrConflict
	case http.StatusUnauthorized:
		return apperr.ErrUnauthorized
	default:
		return nil
	}
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	//nolint:exhaustruct
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

func (c *Client) do(req *http.Request, out any) error {
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var body struct {
			Error  string              `json:"error"`
			Fields map[string][]string `json:"fields"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}

		return &APIError{StatusCode: resp.StatusCode, Message: body.Error, Fields: body.Fields}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}

	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader

	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) GetTour(ctx context.Context, id string) (*catalog.Tour, error) {
	var out catalog.Tour
	if err := c.doJSON(ctx, http.MethodGet, "/api/tours/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// CreateBooking posts the checkout submission as a multipart form with the
// receipt attached.
func (c *Client) CreateBooking(ctx context.Context, s *checkout.Submission) (*booking.Booking, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"fullName", s.FullName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"date", s.Date},
		{"guests", strconv.Itoa(s.Guests)},
		{"tourId", s.TourID},
		{"totalPrice", strconv.FormatFloat(s.TotalPrice, 'f', 2, 64)},
	}

	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	if len(s.Receipt.Data) > 0 {
		fw, err := mw.CreateFormFile("receipt", s.Receipt.Filename)
		if err != nil {
			return nil, fmt.Errorf("create receipt part: %w", err)
		}

		if _, err := fw.Write(s.Receipt.Data); err != nil {
			return nil, fmt.Errorf("write receipt part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bookings", &buf)
	if err != nil {
		return nil, fmt.Errorf("build booking request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	if s.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", s.IdempotencyKey)
	}

	var out booking.Booking
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// Login stores the issued token for subsequent admin calls.
func (c *Client) Login(ctx context.Context, username, password string) (*auth.User, error) {
	var out struct {
		User  auth.User `json:"user"`
		Token string    `json:"token"`
	}

	in := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return nil, err
	}

	if out.Token == "" {
		return nil, errors.New("login response carried no token") //nolint:err113
	}

	c.SetToken(out.Token)

	return &out.User, nil
}

func (c *Client) ListBookings(ctx context.Context, status booking.Status) ([]*booking.Booking, error) {
	path := "/api/bookings"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}

	var out []*booking.Booking
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	var out booking.Booking
	if err := c.doJSON(ctx, http.MethodGet, "/api/bookings/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status booking.Status) (*booking.Booking, error) {
	var out booking.Booking

	in := map[string]string{"status": string(status)}
	if err := c.doJSON(ctx, http.MethodPatch, "/api/bookings/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
