package main

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// newSeededJar builds a cookie jar pre-loaded with a saved session token, so
// a later invocation picks up where `taskctl login` left off.
func newSeededJar(base *url.URL, token string) http.CookieJar {
	jar, _ := cookiejar.New(nil)
	jar.SetCookies(base, []*http.Cookie{{
		Name:  sessionCookie,
		Value: token,
		Path:  "/",
	}})
	return jar
}
