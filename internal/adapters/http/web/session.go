package web

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names.
const (
	cookieToken = "gochamp_token"
	cookieUser  = "gochamp_user"
)

func setSession(w http.ResponseWriter, email, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name: cookieUser, Value: email, Path: "/",
		HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
	if token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name: cookieToken, Value: token, Path: "/",
		HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
}

func clearSession(w http.ResponseWriter, secure bool) {
	for _, name := range []string{cookieToken, cookieUser} {
		http.SetCookie(w, &http.Cookie{
			Name: name, Value: "", Path: "/", MaxAge: -1,
			HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
		})
	}
}

// signedInAs names the user for the navbar. A JWT subject wins over the
// email typed at login. The token is parsed without verification and is used
// for display only.
func signedInAs(r *http.Request) string {
	if c, err := r.Cookie(cookieToken); err == nil && c.Value != "" {
		if sub := TokenSubject(c.Value); sub != "" {
			return sub
		}
	}
	if c, err := r.Cookie(cookieUser); err == nil {
		return c.Value
	}
	return ""
}

// TokenSubject returns the subject of a JWT, or "" when token is not one.
func TokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
