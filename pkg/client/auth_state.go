package client

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// AuthState mirrors the server's view of the session. IsLoading is true
// while a check is in flight; dependents must render a loading state and
// assume neither outcome until it clears.
type AuthState struct {
	IsAuthenticated bool
	IsLoading       bool
	User            *User
}

// authMirror tracks authentication state across route changes, the way the
// web frontend's auth context does. Checks are last-write-wins: when several
// overlap, the most recently started one decides the final state.
type authMirror struct {
	mu    sync.Mutex
	state AuthState
	route string
	seq   uint64
}

// State returns a snapshot of the current auth state.
func (c *Client) State() AuthState {
	c.mirror.mu.Lock()
	defer c.mirror.mu.Unlock()
	return c.mirror.state
}

// HandleRouteChange runs the auth check for a navigation. Public auth routes
// and the auth API itself are skipped entirely, which is what prevents a
// redirect loop on the login page.
func (c *Client) HandleRouteChange(ctx context.Context, route string) {
	c.mirror.mu.Lock()
	c.mirror.route = route
	if isPublicRoute(route) {
		c.mirror.state.IsLoading = false
		c.mirror.mu.Unlock()
		return
	}
	c.mirror.mu.Unlock()

	c.verify(ctx)
}

// RecheckAuth forces an immediate re-derivation of auth state. State-changing
// actions (logout, login) call this instead of waiting for a navigation.
func (c *Client) RecheckAuth(ctx context.Context) {
	c.verify(ctx)
}

func (c *Client) verify(ctx context.Context) {
	c.mirror.mu.Lock()
	c.mirror.seq++
	seq := c.mirror.seq
	c.mirror.state.IsLoading = true
	c.mirror.mu.Unlock()

	resp, err := c.Status(ctx)

	c.mirror.mu.Lock()
	defer c.mirror.mu.Unlock()
	if seq != c.mirror.seq {
		// A newer check started; its resolution is authoritative.
		return
	}
	c.mirror.state.IsLoading = false

	if err == nil && resp.Success {
		var u User
		if json.Unmarshal(resp.Data, &u) == nil {
			c.mirror.state.IsAuthenticated = true
			c.mirror.state.User = &u
			return
		}
	}

	c.mirror.state.IsAuthenticated = false
	c.mirror.state.User = nil

	if !isPublicRoute(c.mirror.route) && c.onRedirect != nil {
		c.onRedirect(LoginRoute)
	}
}

func isPublicRoute(route string) bool {
	return route == LoginRoute ||
		route == SignupRoute ||
		strings.HasPrefix(route, "/api/auth")
}
