package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/pkg/tokenpkg"
	"github.com/go-petr/cheque-desk/pkg/web"
	"github.com/rs/zerolog"
)

// ErrForbidden is returned when an authenticated user lacks the permission for an operation.
var ErrForbidden = errors.New("You do not have permission to perform this action.")

// RequirePermission lets the request through only if the authenticated user may run op.
// It must run after AuthMiddleware.
func RequirePermission(op domain.Operation) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		payload, ok := gctx.MustGet(AuthPayloadKey).(*tokenpkg.Payload)
		if !ok || !domain.Allowed(op, payload.Roles) {
			l := zerolog.Ctx(gctx.Request.Context())
			l.Warn().Str("operation", string(op)).Msg("permission denied")

			web.RenderError(gctx, http.StatusForbidden, ErrForbidden)
			gctx.Abort()

			return
		}

		gctx.Next()
	}
}

// Page returns a response carrying the identity of the authenticated user, if any.
func Page(gctx *gin.Context, title string) web.Response {
	res := web.Response{Title: title}

	if v, ok := gctx.Get(AuthPayloadKey); ok {
		if payload, ok := v.(*tokenpkg.Payload); ok {
			res.Username = payload.Username
			res.IsAdmin = domain.IsAdmin(payload.Roles)
		}
	}

	return res
}
