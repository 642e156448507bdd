package httpapi

import "net/http"

// Cookie names match what the browser clients already expect.
const (
	tempCookie   = "temp_token"
	accessCookie = "token"
)

// Lifetime is governed by the token expiry inside the value, not by cookie
// max-age, so both cookies are plain session cookies.
func (s *Server) setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
