package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillsenselab/radscribe/errors"
)

// BasicAuthConfig configures the shared-credential basic-auth gate.
type BasicAuthConfig struct {
	// Username is the single accepted username.
	Username string
	// Password is the accepted plaintext password. Ignored when
	// PasswordHash is set.
	Password string
	// PasswordHash is an optional bcrypt hash verified instead of Password.
	PasswordHash string
	// Realm is the WWW-Authenticate realm (default "radscribe").
	Realm string
	// SkipPaths are exact paths that bypass the gate (e.g. /health).
	SkipPaths []string
}

// BasicAuth returns the credential gate. Every request re-authenticates
// against the single configured pair; there are no sessions or tokens.
// Both fields are always compared via sha256 + constant-time equality so a
// wrong username and a wrong password take the same time to reject, and
// every rejection is the same generic 401.
func BasicAuth(cfg BasicAuthConfig) gin.HandlerFunc {
	if cfg.Realm == "" {
		cfg.Realm = "radscribe"
	}
	wantUser := sha256.Sum256([]byte(cfg.Username))
	wantPass := sha256.Sum256([]byte(cfg.Password))

	return func(c *gin.Context) {
		for _, skip := range cfg.SkipPaths {
			if c.Request.URL.Path == skip {
				c.Next()
				return
			}
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			reject(c, cfg.Realm)
			return
		}

		gotUser := sha256.Sum256([]byte(user))
		userOK := subtle.ConstantTimeCompare(gotUser[:], wantUser[:]) == 1

		var passOK bool
		if cfg.PasswordHash != "" {
			passOK = bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(pass)) == nil
		} else {
			gotPass := sha256.Sum256([]byte(pass))
			passOK = subtle.ConstantTimeCompare(gotPass[:], wantPass[:]) == 1
		}

		if !userOK || !passOK {
			reject(c, cfg.Realm)
			return
		}

		c.Set("auth_user", user)
		c.Next()
	}
}

func reject(c *gin.Context, realm string) {
	c.Header("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", realm))
	c.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized("Invalid credentials").ToResponse())
}
