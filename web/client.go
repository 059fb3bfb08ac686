package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/NomadCrew/itinerary-builder/types"
)

// CreateItineraryPath is the API path the form posts to.
const CreateItineraryPath = "/api/itinerary/"

// FormInput is the user-entered trip request.
type FormInput struct {
	Destination string `json:"destination"`
	Date        string `json:"date"`
}

// ItineraryClient submits a trip request to the itinerary API.
type ItineraryClient interface {
	CreateItinerary(ctx context.Context, input FormInput) (*types.Itinerary, error)
}

// ResponseError is returned when the API answers with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("itinerary api returned status %d", e.StatusCode)
}

type clientIPKey struct{}

// WithClientIP attaches the address of the browser a request is made for.
// HTTPClient forwards it as X-Forwarded-For so per-client limits on the API
// see the browser rather than the page server.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// HTTPClient talks to the itinerary API over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the API at baseURL. The underlying
// http.Client has no timeout; callers own cancellation through ctx.
func NewHTTPClient(baseURL string) *HTTPClient {
	return NewHTTPClientWithTransport(baseURL, &http.Client{})
}

// NewHTTPClientWithTransport lets callers supply their own http.Client.
func NewHTTPClientWithTransport(baseURL string, httpClient *http.Client) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *HTTPClient) CreateItinerary(ctx context.Context, input FormInput) (*types.Itinerary, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CreateItineraryPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if ip := clientIPFrom(ctx); ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: body}
	}

	var itinerary types.Itinerary
	if err := json.Unmarshal(body, &itinerary); err != nil {
		return nil, fmt.Errorf("decode itinerary: %w", err)
	}
	return &itinerary, nil
}
