package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"kkmall-be/internal/logger"

	"go.uber.org/zap"
)

// fullListBatch is the page size used when draining a full list.
const fullListBatch = 200

// Client talks to the hosted record store's REST API. All reads and
// writes are collection scoped; obtain a handle via Collection.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetToken attaches an auth token to every subsequent request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the auth token (sign-out).
func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Collection returns a scoped handle for one collection.
func (c *Client) Collection(name string) *Collection {
	return &Collection{client: c, name: name}
}

type Collection struct {
	client *Client
	name   string
}

// Query carries the optional list/read parameters of the record API.
type Query struct {
	Filter string
	Expand string
	Sort   string
}

type ListResult struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Items      []Record `json:"items"`
}

func (col *Collection) recordsPath() string {
	return "/api/collections/" + url.PathEscape(col.name) + "/records"
}

func (col *Collection) GetList(ctx context.Context, page, perPage int, q Query) (*ListResult, error) {
	params := q.values()
	params.Set("page", strconv.Itoa(page))
	params.Set("perPage", strconv.Itoa(perPage))

	var result ListResult
	err := col.client.do(ctx, http.MethodGet, col.recordsPath()+"?"+params.Encode(), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFullList drains every page of the collection matching the query.
func (col *Collection) GetFullList(ctx context.Context, q Query) ([]Record, error) {
	var all []Record

	for page := 1; ; page++ {
		result, err := col.GetList(ctx, page, fullListBatch, q)
		if err != nil {
			return nil, err
		}

		all = append(all, result.Items...)

		if result.TotalPages == 0 || page >= result.TotalPages {
			return all, nil
		}
	}
}

func (col *Collection) GetOne(ctx context.Context, id string, q Query) (Record, error) {
	path := col.recordsPath() + "/" + url.PathEscape(id)
	if params := q.values(); len(params) > 0 {
		path += "?" + params.Encode()
	}

	var rec Record
	if err := col.client.do(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (col *Collection) Create(ctx context.Context, body map[string]any) (Record, error) {
	var rec Record
	if err := col.client.do(ctx, http.MethodPost, col.recordsPath(), body, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (col *Collection) Update(ctx context.Context, id string, body map[string]any) (Record, error) {
	var rec Record
	path := col.recordsPath() + "/" + url.PathEscape(id)
	if err := col.client.do(ctx, http.MethodPatch, path, body, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (col *Collection) Delete(ctx context.Context, id string) error {
	path := col.recordsPath() + "/" + url.PathEscape(id)
	return col.client.do(ctx, http.MethodDelete, path, nil, nil)
}

type AuthResponse struct {
	Token  string `json:"token"`
	Record Record `json:"record"`
}

// AuthWithPassword authenticates against an auth collection and keeps
// the returned token on the client.
func (col *Collection) AuthWithPassword(ctx context.Context, identity, password string) (*AuthResponse, error) {
	path := "/api/collections/" + url.PathEscape(col.name) + "/auth-with-password"
	body := map[string]any{
		"identity": identity,
		"password": password,
	}

	var res AuthResponse
	if err := col.client.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, err
	}

	col.client.SetToken(res.Token)
	return &res, nil
}

func (q Query) values() url.Values {
	params := url.Values{}
	if q.Filter != "" {
		params.Set("filter", q.Filter)
	}
	if q.Expand != "" {
		params.Set("expand", q.Expand)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	return params
}

func (c *Client) do(ctx context.Context, method, path string, body map[string]any, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "records"),
		zap.String("method", method),
		zap.String("path", path),
	)

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("record store request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}

		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}

		log.Warn("record store returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Error("failed decoding record store response", zap.Error(err))
		return err
	}
	return nil
}
