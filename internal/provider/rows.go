package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gx-tools/task-tracker/internal/apperr"
	"github.com/gx-tools/task-tracker/internal/logger"
)

// Rows is a bearer-token-scoped view of the provider's row store. The
// provider enforces row-level ownership against the token, so handlers can
// pass the caller's token straight through.
type Rows struct {
	c     *Client
	token string
}

// Rows returns a row client scoped to the given session token.
func (c *Client) Rows(token string) *Rows {
	return &Rows{c: c, token: token}
}

// Query builds one REST call against a single table.
type Query struct {
	rows    *Rows
	table   string
	filters url.Values
	order   string
}

func (r *Rows) From(table string) *Query {
	return &Query{rows: r, table: table, filters: url.Values{}}
}

// Eq adds an equality filter on a column.
func (q *Query) Eq(column, value string) *Query {
	q.filters.Add(column, "eq."+value)
	return q
}

// OrderDesc sorts results by a column, newest first.
func (q *Query) OrderDesc(column string) *Query {
	q.order = column + ".desc"
	return q
}

// Select fetches matching rows into dest, which must be a pointer to a
// slice. The REST API always answers with an array.
func (q *Query) Select(ctx context.Context, dest any) error {
	return q.do(ctx, http.MethodGet, nil, dest)
}

// Insert creates a row and decodes the returned representation into dest
// when dest is non-nil.
func (q *Query) Insert(ctx context.Context, row, dest any) error {
	return q.do(ctx, http.MethodPost, row, dest)
}

// Update patches matching rows and decodes the returned representation into
// dest when dest is non-nil.
func (q *Query) Update(ctx context.Context, patch, dest any) error {
	return q.do(ctx, http.MethodPatch, patch, dest)
}

// Delete removes matching rows.
func (q *Query) Delete(ctx context.Context) error {
	return q.do(ctx, http.MethodDelete, nil, nil)
}

func (q *Query) do(ctx context.Context, method string, body, dest any) error {
	u := q.rows.c.baseURL + "/rest/v1/" + q.table
	params := url.Values{}
	for col, vals := range q.filters {
		for _, v := range vals {
			params.Add(col, v)
		}
	}
	if q.order != "" {
		params.Set("order", q.order)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperr.E(apperr.ErrInternal, "Internal server error")
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apperr.E(apperr.ErrInternal, "Internal server error")
	}
	q.rows.c.anonHeaders(req)
	req.Header.Set("Authorization", "Bearer "+q.rows.token)
	if dest != nil && method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := q.rows.c.http.Do(req)
	if err != nil {
		logger.Error("provider: row call failed", map[string]any{
			"table": q.table,
			"error": err.Error(),
		})
		return apperr.E(apperr.ErrInternal, "Internal server error")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperr.E(apperr.ErrUnauthorized, "Unauthorized access")
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNotAcceptable:
		return apperr.E(apperr.ErrNotFound, "Not found")
	case resp.StatusCode >= 300:
		return apperr.E(apperr.ErrBadRequest, providerMessage(resp.Body))
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return apperr.E(apperr.ErrInternal, "Internal server error")
		}
	}
	return nil
}
