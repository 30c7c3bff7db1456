// Package middleware provides the gin middlewares shared by all routes.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/cheque-desk/pkg/tokenpkg"
	"github.com/go-petr/cheque-desk/pkg/web"
	"github.com/rs/zerolog"
)

// Authorization keys.
const (
	AuthHeaderKey     = "authorization"
	AuthTypeBearer    = "bearer"
	AuthPayloadKey    = "authorization_payload"
	AccessTokenCookie = "access_token"
)

// Errors returned to unauthenticated clients.
var (
	ErrAuthHeaderNotFound  = errors.New("authorization header is not provided")
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
)

// AddAuthorization creates a token for the user and sets it as the authorization header of r.
func AddAuthorization(r *http.Request, maker tokenpkg.Maker, authType, username string, roles []string, duration time.Duration) error {
	token, _, err := maker.CreateToken(username, roles, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, strings.TrimSpace(fmt.Sprintf("%s %s", authType, token)))

	return nil
}

// AddCookieAuthorization creates a token for the user and sets it as the access token cookie of r.
func AddCookieAuthorization(r *http.Request, maker tokenpkg.Maker, username string, roles []string, duration time.Duration) error {
	token, _, err := maker.CreateToken(username, roles, duration)
	if err != nil {
		return err
	}

	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})

	return nil
}

func tokenFromRequest(gctx *gin.Context) (string, error) {
	header := gctx.GetHeader(AuthHeaderKey)
	if header == "" {
		token, err := gctx.Cookie(AccessTokenCookie)
		if err != nil || token == "" {
			return "", ErrAuthHeaderNotFound
		}

		return token, nil
	}

	fields := strings.Fields(header)
	if len(fields) != 2 {
		return "", ErrBadAuthHeaderFormat
	}

	if strings.ToLower(fields[0]) != AuthTypeBearer {
		return "", ErrUnsupportedAuthType
	}

	return fields[1], nil
}

// AuthMiddleware authenticates the request with a bearer token or the access token cookie.
//
// Browsers without a valid token are redirected to the login page, JSON clients get 401.
func AuthMiddleware(maker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		token, err := tokenFromRequest(gctx)
		if err != nil {
			l.Info().Err(err).Send()
			unauthorized(gctx, err)

			return
		}

		payload, err := maker.VerifyToken(token)
		if err != nil {
			l.Info().Err(err).Send()
			unauthorized(gctx, err)

			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}

func unauthorized(gctx *gin.Context, err error) {
	if web.WantsJSON(gctx) {
		gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
		return
	}

	gctx.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(gctx.Request.URL.RequestURI()))
	gctx.Abort()
}
