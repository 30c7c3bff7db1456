package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/cheque-desk/pkg/errorspkg"
	"github.com/go-petr/cheque-desk/pkg/web"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// ErrTooManyRequests is returned once a client exceeds its request budget.
var ErrTooManyRequests = errors.New("Too many requests. Please try again later.")

// NewLimiter returns an in-memory limiter for a rate such as "10-M".
func NewLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit rejects requests from a client IP that exceeded the limiter rate.
func RateLimit(lim *limiter.Limiter) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())
		ip := gctx.ClientIP()

		lctx, err := lim.Get(gctx.Request.Context(), ip)
		if err != nil {
			l.Error().Err(err).Str("ip", ip).Msg("rate limit check failed")
			web.RenderError(gctx, http.StatusInternalServerError, errorspkg.ErrInternal)
			gctx.Abort()

			return
		}

		gctx.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		gctx.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))

		if lctx.Reached {
			l.Warn().Str("ip", ip).Int64("limit", lctx.Limit).Msg("rate limit exceeded")
			web.RenderError(gctx, http.StatusTooManyRequests, ErrTooManyRequests)
			gctx.Abort()

			return
		}

		gctx.Next()
	}
}
