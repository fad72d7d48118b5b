// Package session owns the session cookie policy. It is pure configuration:
// no I/O beyond writing the Set-Cookie header handed to it.
package session

import (
	"net/http"
	"time"

	"github.com/gx-tools/task-tracker/internal/config"
)

// CookieName is the fixed key the session token travels under.
const CookieName = "access_token"

const maxAge = 7 * 24 * time.Hour

// Options defines how the session cookie is issued or cleared.
type Options struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

// attrs is the per-environment cookie attribute table. Kept explicit because
// the policy genuinely differs by deployment stage: cross-site production
// frontends need SameSite=None, which in turn requires Secure.
var attrs = map[string]struct {
	secure   bool
	sameSite http.SameSite
}{
	config.EnvDevelopment: {secure: false, sameSite: http.SameSiteLaxMode},
	config.EnvProduction:  {secure: true, sameSite: http.SameSiteNoneMode},
}

// LoginOptions returns the attributes used when minting the cookie at login.
// Unknown environments get the production policy.
func LoginOptions(env string) Options {
	a, ok := attrs[env]
	if !ok {
		a = attrs[config.EnvProduction]
	}
	return Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: a.sameSite,
		MaxAge:   int(maxAge.Seconds()),
	}
}

// ClearOptions mirrors LoginOptions minus the lifetime. The browser only
// deletes a cookie whose attributes match the one that was set, so any
// divergence from LoginOptions is a correctness bug.
func ClearOptions(env string) Options {
	o := LoginOptions(env)
	o.MaxAge = -1
	return o
}

// Set issues the session cookie carrying the opaque token.
func Set(w http.ResponseWriter, token string, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     opts.Path,
		MaxAge:   opts.MaxAge,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// Clear removes the session cookie from the client.
func Clear(w http.ResponseWriter, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     opts.Path,
		MaxAge:   opts.MaxAge,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
