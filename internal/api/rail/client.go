package rail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned when the backend rejects the credential.
// The client clears the session store before returning it, so callers
// only need to tell the user to log in again.
var ErrUnauthorized = errors.New("authentication required")

// APIError is a non-2xx response from the reservation backend, carrying
// the server-supplied message when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// CredentialStore supplies the bearer token for outbound requests and is
// cleared when the backend reports an authentication failure.
type CredentialStore interface {
	Token() string
	Clear() error
}

// Client is a reservation API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      CredentialStore
}

// NewClient creates a new reservation API client.
func NewClient(baseURL string, creds CredentialStore) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		creds:      creds,
	}
}

// Register creates an account and returns the issued session credential.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the current user.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out profileResponse
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// SearchTrains lists trains matching the route and travel date.
func (c *Client) SearchTrains(ctx context.Context, source, destination, date string) ([]Train, error) {
	q := url.Values{}
	q.Set("source", source)
	q.Set("destination", destination)
	q.Set("date", date)

	var out searchResponse
	if err := c.do(ctx, http.MethodGet, "/trains/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Trains, nil
}

// GetTrain fetches a single train by id.
func (c *Client) GetTrain(ctx context.Context, id string) (*Train, error) {
	var out trainResponse
	if err := c.do(ctx, http.MethodGet, "/trains/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Train, nil
}

// ListTrains lists every train known to the backend.
func (c *Client) ListTrains(ctx context.Context) ([]Train, error) {
	var out trainsResponse
	if err := c.do(ctx, http.MethodGet, "/trains", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Trains, nil
}

// AddTrain creates a train. The backend restricts this to admin users.
func (c *Client) AddTrain(ctx context.Context, train Train) (*Train, error) {
	var out trainResponse
	if err := c.do(ctx, http.MethodPost, "/trains", nil, train, &out); err != nil {
		return nil, err
	}
	return &out.Train, nil
}

// CreateBooking reserves seats and returns the server-issued booking.
// Fare computation and PNR issuance are authoritative server-side.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	var out bookingResponse
	if err := c.do(ctx, http.MethodPost, "/bookings", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Booking, nil
}

// ListBookings fetches all bookings belonging to the current user.
func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	var out bookingsResponse
	if err := c.do(ctx, http.MethodGet, "/bookings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

// GetBookingByPNR fetches one booking.
func (c *Client) GetBookingByPNR(ctx context.Context, pnr string) (*Booking, error) {
	var out bookingResponse
	if err := c.do(ctx, http.MethodGet, "/bookings/pnr/"+url.PathEscape(pnr), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Booking, nil
}

// CancelBooking cancels a booking by PNR.
func (c *Client) CancelBooking(ctx context.Context, pnr string) error {
	return c.do(ctx, http.MethodPut, "/bookings/cancel/"+url.PathEscape(pnr), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Session teardown happens here so every caller gets the same
		// behaviour regardless of which endpoint tripped it.
		if clearErr := c.creds.Clear(); clearErr != nil {
			return fmt.Errorf("clearing session after auth failure: %w", clearErr)
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&msg); decodeErr == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
