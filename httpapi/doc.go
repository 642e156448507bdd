// Package httpapi exposes the session gateway over HTTP.
//
// The surface is deliberately thin: handlers decode the request, call one
// gateway operation, and translate its sentinel errors into status codes and
// cookie mutations. Temporary tokens travel in the temp_token cookie and
// full access tokens in the token cookie; both are HttpOnly, SameSite=Lax
// session cookies scoped to the whole site.
//
// Guard is provided for applications that mount their own handlers behind
// the same access cookie.
package httpapi
