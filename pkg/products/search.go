// Package products proxies clothing searches to the RapidAPI real-time
// Amazon data service.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultGender   = "male"
	DefaultCategory = "Trending"
	DefaultHost     = "real-time-amazon-data.p.rapidapi.com"

	// TotalPages is what clients page through; the upstream does not report it.
	TotalPages = 10
)

var categoryTerms = map[string][]string{
	"Accessories": {"spectacles", "watches", "belts", "rings", "bracelets", "neck", "chains"},
	"Casuals":     {"casuals", "shirts", "jeans", "chinos", "t-shirts", "polos", "shorts"},
	"Party":       {"party", "jeans", "blazer", "shirts", "pants"},
	"Formal":      {"formal", "silk", "shirts", "satin", "shirts", "trousers"},
	"Trending":    {"trending", "shirts", "t-shirts", "pants", "hoodies", "sweatshirts"},
}

var (
	ErrNotConfigured = errors.New("product search is not configured")
	ErrInvalidQuery  = errors.New("invalid search query")
)

// UpstreamError is a non-2xx answer from the search provider.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("product search upstream %d: %s", e.StatusCode, e.Message)
}

type Query struct {
	Gender   string
	Category string
	Page     int
}

type Result struct {
	Products   []json.RawMessage `json:"products"`
	TotalPages int               `json:"totalPages"`
}

type Searcher interface {
	Search(ctx context.Context, q Query) (Result, error)
}

// Client calls the provider over HTTPS with the RapidAPI headers.
type Client struct {
	APIKey  string
	Host    string
	BaseURL string
	httpDo  *http.Client
}

func NewClient(apiKey, host, baseURL string) *Client {
	if host == "" {
		host = DefaultHost
	}
	if baseURL == "" {
		baseURL = "https://" + host
	}
	return &Client{
		APIKey:  apiKey,
		Host:    host,
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpDo:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchTerms builds the provider query. Unknown categories search by gender
// alone.
func SearchTerms(gender, category string) string {
	terms := append([]string{}, categoryTerms[category]...)
	terms = append(terms, gender, "clothing")
	return strings.Join(terms, " ")
}

func (q Query) withDefaults() Query {
	q.Gender = strings.TrimSpace(q.Gender)
	if q.Gender == "" {
		q.Gender = DefaultGender
	}
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == "" {
		q.Category = DefaultCategory
	}
	if q.Page == 0 {
		q.Page = 1
	}
	return q
}

type searchResponse struct {
	Status string `json:"status"`
	Data   struct {
		Products []json.RawMessage `json:"products"`
	} `json:"data"`
}

func (c *Client) Search(ctx context.Context, q Query) (Result, error) {
	if c.APIKey == "" {
		return Result{}, ErrNotConfigured
	}
	q = q.withDefaults()
	if q.Page < 1 {
		return Result{}, fmt.Errorf("%w: page must be positive", ErrInvalidQuery)
	}

	params := url.Values{}
	params.Set("query", SearchTerms(q.Gender, q.Category))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("country", "IN")
	params.Set("sort_by", "BEST_SELLERS")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("x-rapidapi-key", c.APIKey)
	req.Header.Set("x-rapidapi-host", c.Host)

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("product search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Message == "" {
			body.Message = http.StatusText(resp.StatusCode)
		}
		return Result{}, &UpstreamError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decode search response: %w", err)
	}
	products := out.Data.Products
	if products == nil {
		products = []json.RawMessage{}
	}
	return Result{Products: products, TotalPages: TotalPages}, nil
}
