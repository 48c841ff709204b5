package middlewares

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"restaurant/pkg/apperr"
	"restaurant/pkg/resp"
	"restaurant/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionCookie names and scopes the session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (sc SessionCookie) Set(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, int(time.Until(expiresAt).Seconds()), "/", "", sc.Secure, true)
}

func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// LoadSession resolves the cookie into a principal when there is one. Only a
// storage failure aborts; the Require* guards decide what anonymous
// requests get.
func LoadSession(auth *services.AuthService, cookie SessionCookie, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}
		p, err := auth.Resolve(token)
		switch {
		case err == nil:
			c.Set(principalKey, p)
		case errors.Is(err, apperr.ErrUnauthenticated):
			cookie.Clear(c)
		default:
			log.Error().Err(err).Msg("resolve session")
			resp.ServerError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

const principalKey = "principal"

// CurrentPrincipal is nil for anonymous requests.
func CurrentPrincipal(c *gin.Context) *services.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*services.Principal)
	return p
}

// RequireAuthenticated redirects anonymous requests to loginPath.
func RequireAuthenticated(loginPath string) gin.HandlerFunc {
	return guard(services.RequireAuthenticated, loginPath)
}

// RequireAdmin lets only the admin variant through.
func RequireAdmin(loginPath string) gin.HandlerFunc {
	return guard(services.RequireAdmin, loginPath)
}

// RequireUser lets through principals backed by a user row.
func RequireUser(loginPath string) gin.HandlerFunc {
	return guard(services.RequireUser, loginPath)
}

func guard(check func(*services.Principal) (*services.Principal, error), loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := check(CurrentPrincipal(c)); err != nil {
			target := loginPath
			if errors.Is(err, apperr.ErrForbidden) {
				target += "?" + url.Values{"error": {"forbidden"}}.Encode()
			}
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
