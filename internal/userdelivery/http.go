// Package userdelivery manages delivery layer of users: sign in and sign out.
package userdelivery

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/internal/middleware"
	"github.com/go-petr/cheque-desk/pkg/configpkg"
	"github.com/go-petr/cheque-desk/pkg/errorspkg"
	"github.com/go-petr/cheque-desk/pkg/tokenpkg"
	"github.com/go-petr/cheque-desk/pkg/validatorpkg"
	"github.com/go-petr/cheque-desk/pkg/web"
)

// Landing pages.
const (
	HomePath  = "/cheques"
	LoginPath = "/login"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	CheckPassword(ctx context.Context, username, password string) (domain.UserWihtoutPassword, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service       Service
	tokenMaker    tokenpkg.Maker
	tokenDuration time.Duration
	cookieSecure  bool
}

// NewHandler returns user handler.
func NewHandler(us Service, tm tokenpkg.Maker, config configpkg.Config) *Handler {
	return &Handler{
		service:       us,
		tokenMaker:    tm,
		tokenDuration: config.AccessTokenDuration,
		cookieSecure:  config.CookieSecure,
	}
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}

type loginData struct {
	Username string `json:"username"`
	Next     string `json:"next"`
}

type loginResponse struct {
	AccessToken          string                     `json:"access_token"`
	AccessTokenExpiresAt time.Time                  `json:"access_token_expires_at"`
	User                 domain.UserWihtoutPassword `json:"user"`
}

// safeNext returns next when it is a path on this site, HomePath otherwise.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return HomePath
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return HomePath
	}

	return next
}

func renderLogin(gctx *gin.Context, code int, data loginData, fields map[string]string, err error) {
	res := web.Response{
		Title:  "Sign in",
		Data:   data,
		Fields: fields,
	}

	if err != nil {
		res.Error = err.Error()
	}

	web.Render(gctx, code, "login.html", res)
}

// LoginForm handles http request to show the sign in form.
func (h *Handler) LoginForm(gctx *gin.Context) {
	renderLogin(gctx, http.StatusOK, loginData{Next: gctx.Query("next")}, nil, nil)
}

// Login handles http login request, sets the access token cookie and redirects to the next page.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBind(&req); err != nil {
		l.Info().Err(err).Send()

		data := loginData{Username: req.Username, Next: req.Next}

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[strings.ToLower(fe.Field())] = validatorpkg.GetErrorMsg(fe)
			}

			renderLogin(gctx, http.StatusBadRequest, data, fields, nil)

			return
		}

		renderLogin(gctx, http.StatusBadRequest, data, nil, err)

		return
	}

	data := loginData{Username: req.Username, Next: req.Next}

	user, err := h.service.CheckPassword(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrWrongPassword):
			renderLogin(gctx, http.StatusUnauthorized, data, nil, domain.ErrInvalidCredentials)
		default:
			renderLogin(gctx, http.StatusInternalServerError, data, nil, errorspkg.ErrInternal)
		}

		return
	}

	token, payload, err := h.tokenMaker.CreateToken(user.Username, []string{user.Role}, h.tokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		renderLogin(gctx, http.StatusInternalServerError, data, nil, errorspkg.ErrInternal)

		return
	}

	gctx.SetSameSite(http.SameSiteLaxMode)
	gctx.SetCookie(middleware.AccessTokenCookie, token, int(h.tokenDuration.Seconds()), "/", "", h.cookieSecure, true)

	l.Info().Str("username", user.Username).Msg("signed in")

	if web.WantsJSON(gctx) {
		gctx.JSON(http.StatusOK, web.Response{
			Data: loginResponse{
				AccessToken:          token,
				AccessTokenExpiresAt: payload.ExpiredAt,
				User:                 user,
			},
		})

		return
	}

	gctx.Redirect(http.StatusSeeOther, safeNext(req.Next))
}

// Logout handles http request to clear the access token cookie.
func (h *Handler) Logout(gctx *gin.Context) {
	gctx.SetSameSite(http.SameSiteLaxMode)
	gctx.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)

	if web.WantsJSON(gctx) {
		gctx.JSON(http.StatusOK, web.Response{})
		return
	}

	gctx.Redirect(http.StatusSeeOther, LoginPath)
}
