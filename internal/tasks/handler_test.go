package tasks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gx-tools/task-tracker/internal/middleware"
	"github.com/gx-tools/task-tracker/internal/provider"
	"github.com/gx-tools/task-tracker/internal/session"
)

// fakeBackend stands in for the hosted service, serving both the identity
// endpoint the gate hits and the rows endpoint the handlers hit.
type fakeBackend struct {
	role string

	userCalls atomic.Int64
	rowCalls  atomic.Int64
	lastRow   atomic.Value
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		f.userCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"id":"u-1","email":"a@b.com","user_metadata":{"role":%q}}`, f.role)
	})
	mux.HandleFunc("/rest/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		f.rowCalls.Add(1)
		f.lastRow.Store(r.URL.RawQuery)
		switch r.Method {
		case http.MethodPost:
			var row map[string]any
			json.NewDecoder(r.Body).Decode(&row)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `[{"id":"t-1","title":%q,"completed":false,"created_by":%q}]`,
				row["title"], row["created_by"])
		default:
			w.Write([]byte(`[{"id":"t-1","title":"first","completed":false,"created_by":"u-1"}]`))
		}
	})
	return mux
}

func newTaskRouter(t *testing.T, role string) (*gin.Engine, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{role: role}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	prov, err := provider.New(srv.URL, "anon-key", 5*time.Second)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/api")
	protected.Use(middleware.NewAuthMiddleware(prov).RequireAuth())
	NewHandler(prov).RegisterRoutes(protected)
	return r, backend
}

func request(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestListWithoutCookieNeverReachesBackend(t *testing.T) {
	r, backend := newTaskRouter(t, "student")

	rec := request(r, http.MethodGet, "/api/tasks", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, int64(0), backend.userCalls.Load())
	assert.Equal(t, int64(0), backend.rowCalls.Load())
}

func TestListAuthenticated(t *testing.T) {
	r, backend := newTaskRouter(t, "student")

	rec := request(r, http.MethodGet, "/api/tasks", "", "good-token")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"first"`)
	assert.Equal(t, int64(1), backend.userCalls.Load(), "one introspection per request")
	assert.Equal(t, "order=created_at.desc", backend.lastRow.Load())
}

func TestCreateAsStudentIsForbidden(t *testing.T) {
	r, backend := newTaskRouter(t, "student")

	rec := request(r, http.MethodPost, "/api/tasks", `{"title":"nope"}`, "good-token")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(0), backend.rowCalls.Load(), "role check must run before any row access")
}

func TestCreateAsInstructorStampsOwner(t *testing.T) {
	r, _ := newTaskRouter(t, "instructor")

	rec := request(r, http.MethodPost, "/api/tasks", `{"title":"grade homework"}`, "good-token")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created_by":"u-1"`)
	assert.Contains(t, rec.Body.String(), "Task created successfully")
}

func TestCreateRequiresTitle(t *testing.T) {
	r, backend := newTaskRouter(t, "admin")

	rec := request(r, http.MethodPost, "/api/tasks", `{"completed":true}`, "good-token")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), backend.rowCalls.Load())
}

func TestUpdateScopesToOwner(t *testing.T) {
	r, backend := newTaskRouter(t, "admin")

	rec := request(r, http.MethodPut, "/api/tasks/t-1", `{"completed":true}`, "good-token")

	require.Equal(t, http.StatusOK, rec.Code)
	query, _ := backend.lastRow.Load().(string)
	assert.Contains(t, query, "id=eq.t-1")
	assert.Contains(t, query, "created_by=eq.u-1")
}

func TestUpdateEmptyPatchRejected(t *testing.T) {
	r, backend := newTaskRouter(t, "admin")

	rec := request(r, http.MethodPut, "/api/tasks/t-1", `{}`, "good-token")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), backend.rowCalls.Load())
}

func TestDeleteScopesToOwner(t *testing.T) {
	r, backend := newTaskRouter(t, "instructor")

	rec := request(r, http.MethodDelete, "/api/tasks/t-1", "", "good-token")

	require.Equal(t, http.StatusOK, rec.Code)
	query, _ := backend.lastRow.Load().(string)
	assert.Contains(t, query, "created_by=eq.u-1")
}

func TestExpiredTokenRejectedBeforeRows(t *testing.T) {
	r, backend := newTaskRouter(t, "admin")

	rec := request(r, http.MethodGet, "/api/tasks", "", "stale-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, int64(1), backend.userCalls.Load())
	assert.Equal(t, int64(0), backend.rowCalls.Load())
}
