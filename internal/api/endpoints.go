package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wI2L/jsondiff"
)

// Login exchanges credentials for an API key.
func (c *Client) Login(ctx context.Context, user, pass, device string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/auth",
		body:   loginRequest{User: user, Pass: pass, Device: device},
		out:    &resp,
		noAuth: true,
	})
	if err != nil {
		return "", err
	}
	if resp.APIKey == "" {
		return "", NewAPIError("login", 0, errors.New("server returned no api key"))
	}
	return resp.APIKey, nil
}

// GetSettings returns the raw settings document.
func (c *Client) GetSettings(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		op:     "get_settings",
		method: http.MethodGet,
		path:   "/api/v3/Settings",
		out:    &raw,
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// PatchSettings applies a JSON Patch to the settings document. An empty
// patch is not sent.
func (c *Client) PatchSettings(ctx context.Context, patch jsondiff.Patch) error {
	if len(patch) == 0 {
		return nil
	}
	return c.do(ctx, request{
		op:     "patch_settings",
		method: http.MethodPatch,
		path:   "/api/v3/Settings",
		body:   patch,
	})
}

// ListSeriesWithoutFiles returns one page of series that have no files.
// Pages start at 1.
func (c *Client) ListSeriesWithoutFiles(ctx context.Context, page, pageSize int) (*SeriesPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 25
	}
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))

	var out SeriesPage
	err := c.do(ctx, request{
		op:     "list_series_without_files",
		method: http.MethodGet,
		path:   "/api/v3/Series/WithoutFiles",
		query:  q,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AllSeriesWithoutFiles walks every page.
func (c *Client) AllSeriesWithoutFiles(ctx context.Context, pageSize int) ([]Series, error) {
	var all []Series
	for page := 1; ; page++ {
		p, err := c.ListSeriesWithoutFiles(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.List...)
		if len(p.List) == 0 || len(all) >= p.Total {
			return all, nil
		}
	}
}

// DeleteSeries deletes one series. With deleteFiles false the files on
// disk are kept.
func (c *Client) DeleteSeries(ctx context.Context, id int, deleteFiles bool) error {
	q := url.Values{}
	q.Set("deleteFiles", strconv.FormatBool(deleteFiles))
	return c.do(ctx, request{
		op:     "delete_series",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/v3/Series/%d", id),
		query:  q,
	})
}
