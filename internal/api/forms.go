package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

func (c *Client) ListUserForms(ctx context.Context) ([]*models.Form, error) {
	return c.listForms(ctx, "user")
}

func (c *Client) ListPublicForms(ctx context.Context) ([]*models.Form, error) {
	return c.listForms(ctx, "public")
}

func (c *Client) listForms(ctx context.Context, scope string) ([]*models.Form, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, c.endpoint("form", scope)+"/", nil, &raw); err != nil {
		return nil, err
	}
	var forms []*models.Form
	if err := decodeList(raw, "forms", &forms); err != nil {
		return nil, fmt.Errorf("decode forms: %w", err)
	}
	return forms, nil
}

func (c *Client) GetForm(ctx context.Context, id string) (*models.Form, error) {
	var f models.Form
	if _, err := c.do(ctx, http.MethodGet, c.endpoint("form", id), nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) GetFormByShareID(ctx context.Context, shareID string) (*models.Form, error) {
	var f models.Form
	if _, err := c.do(ctx, http.MethodGet, c.endpoint("form", "shared", shareID), nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) CreateForm(ctx context.Context, form *models.Form) (*models.Form, error) {
	var f models.Form
	if _, err := c.do(ctx, http.MethodPost, c.endpoint("form"), form, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) UpdateForm(ctx context.Context, id string, form *models.Form) (*models.Form, error) {
	var f models.Form
	if _, err := c.do(ctx, http.MethodPut, c.endpoint("form", id), form, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) DeleteForm(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.endpoint("form", id), nil, nil)
	return err
}

// ListResponses accepts either a bare array or {"responses": [...]}.
func (c *Client) ListResponses(ctx context.Context, formID string) ([]*models.Response, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, c.endpoint("form", formID, "responses"), nil, &raw); err != nil {
		return nil, err
	}
	var out []*models.Response
	if err := decodeList(raw, "responses", &out); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	return out, nil
}

func (c *Client) SubmitResponse(ctx context.Context, formID string, answers []models.Answer) (*services.SubmitResult, error) {
	body := struct {
		Answers []models.Answer `json:"answers"`
	}{Answers: answers}
	var out services.SubmitResult
	if _, err := c.do(ctx, http.MethodPost, c.endpoint("form", formID, "responses"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetQuizResults(ctx context.Context, formID string) ([]models.LeaderboardEntry, error) {
	var out struct {
		Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	}
	if _, err := c.do(ctx, http.MethodGet, c.endpoint("form", formID, "results"), nil, &out); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}

func (c *Client) SendShareLink(ctx context.Context, msg services.ShareEmail) error {
	_, err := c.do(ctx, http.MethodPost, c.endpoint("email", "send-link"), msg, nil)
	return err
}

// decodeList reads raw as a JSON array, or as an object holding one under key.
func decodeList(raw json.RawMessage, key string, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '[' {
		return json.Unmarshal(raw, out)
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return err
	}
	inner, ok := wrapped[key]
	if !ok {
		return fmt.Errorf("missing %q", key)
	}
	return json.Unmarshal(inner, out)
}
