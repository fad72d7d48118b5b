package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gx-tools/task-tracker/internal/apperr"
)

type row struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestSelectEncodesFiltersAndOrder(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"id":"t-1","title":"first"}]`))
	}))

	var out []row
	err := c.Rows("tok").From("tasks").
		Eq("created_by", "u-1").
		OrderDesc("created_at").
		Select(context.Background(), &out)

	require.NoError(t, err)
	assert.Equal(t, "/rest/v1/tasks", gotPath)
	assert.Equal(t, "created_by=eq.u-1&order=created_at.desc", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
	require.Len(t, out, 1)
	assert.Equal(t, "t-1", out[0].ID)
}

func TestInsertRequestsRepresentation(t *testing.T) {
	var gotPrefer string
	var gotBody map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"t-9","title":"new"}]`))
	}))

	var out []row
	err := c.Rows("tok").From("tasks").Insert(context.Background(),
		map[string]any{"title": "new", "created_by": "u-1"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "return=representation", gotPrefer)
	assert.Equal(t, "new", gotBody["title"])
	require.Len(t, out, 1)
	assert.Equal(t, "t-9", out[0].ID)
}

func TestDeleteSkipsRepresentation(t *testing.T) {
	var gotMethod, gotPrefer string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPrefer = r.Header.Get("Prefer")
		w.WriteHeader(http.StatusNoContent)
	}))

	err := c.Rows("tok").From("tasks").Eq("id", "t-1").Delete(context.Background())

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Empty(t, gotPrefer)
}

func TestRowStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, apperr.ErrUnauthorized},
		{http.StatusForbidden, apperr.ErrUnauthorized},
		{http.StatusNotFound, apperr.ErrNotFound},
		{http.StatusNotAcceptable, apperr.ErrNotFound},
		{http.StatusConflict, apperr.ErrBadRequest},
	}

	for _, tc := range cases {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"message":"boom"}`))
		}))

		var out []row
		err := c.Rows("tok").From("tasks").Select(context.Background(), &out)
		assert.True(t, errors.Is(err, tc.want), "status %d", tc.status)
	}
}

func TestRowTransportFailureIsInternal(t *testing.T) {
	c, srv := newTestClient(t, http.NotFoundHandler())
	srv.Close()

	var out []row
	err := c.Rows("tok").From("tasks").Select(context.Background(), &out)
	assert.True(t, errors.Is(err, apperr.ErrInternal))
}
