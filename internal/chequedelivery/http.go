// Package chequedelivery manages delivery layer of cheques.
package chequedelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/internal/middleware"
	"github.com/go-petr/cheque-desk/pkg/errorspkg"
	"github.com/go-petr/cheque-desk/pkg/web"
)

var (
	// ErrInvalidID is returned when the id path parameter is not a positive integer.
	ErrInvalidID = errors.New("Invalid cheque id")
	// ErrInvalidForm is returned when the submitted form cannot be decoded.
	ErrInvalidForm = errors.New("Invalid form data")
)

// ListPath is where browsers land after every successful change.
const ListPath = "/cheques"

// Service provides service layer interface needed by cheque delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package chequedelivery
type Service interface {
	List(ctx context.Context, f domain.ChequeFilter) ([]domain.Cheque, error)
	Get(ctx context.Context, id int64) (domain.Cheque, error)
	Print(ctx context.Context, id int64) (domain.Cheque, error)
	Create(ctx context.Context, p domain.ChequeParams) (domain.Cheque, error)
	Update(ctx context.Context, routeID int64, p domain.UpdateChequeParams) (domain.Cheque, error)
	Delete(ctx context.Context, id int64) error
}

// Handler facilitates cheque delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns cheque handler.
func NewHandler(cs Service) Handler {
	return Handler{service: cs}
}

type listData struct {
	Cheques  []domain.Cheque `json:"cheques"`
	Filter   listRequest     `json:"filter"`
	Statuses []statusOption  `json:"statuses"`
}

type chequeData struct {
	Cheque domain.Cheque `json:"cheque"`
}

type formData struct {
	Form     chequeForm     `json:"form"`
	Statuses []statusOption `json:"statuses"`
	Action   string         `json:"-"`
	IsEdit   bool           `json:"-"`
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

func bindID(gctx *gin.Context) (int64, bool) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l := zerolog.Ctx(gctx.Request.Context())
		l.Info().Err(err).Send()

		web.RenderError(gctx, http.StatusBadRequest, ErrInvalidID)

		return 0, false
	}

	return req.ID, true
}

// renderLookupError writes the page for a failed single cheque lookup.
func renderLookupError(gctx *gin.Context, err error) {
	if errors.Is(err, domain.ErrChequeNotFound) {
		web.RenderError(gctx, http.StatusNotFound, domain.ErrChequeNotFound)
		return
	}

	web.RenderError(gctx, http.StatusInternalServerError, errorspkg.ErrInternal)
}

// done finishes a successful change: browsers go back to the list, JSON clients get the data.
func done(gctx *gin.Context, code int, data any) {
	if web.WantsJSON(gctx) {
		gctx.JSON(code, web.Response{Data: data})
		return
	}

	gctx.Redirect(http.StatusSeeOther, ListPath)
}

// List handles http request to list cheques.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	res := middleware.Page(gctx, "Cheques")

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		web.RenderError(gctx, http.StatusBadRequest, err)

		return
	}

	data := listData{
		Cheques:  []domain.Cheque{},
		Filter:   req,
		Statuses: statusOptions(req.Status),
	}

	filter, verr := req.filter()
	if verr != nil {
		l.Info().Err(verr).Send()

		res.Data = data
		res.Error = verr.Error()
		res.Fields = verr.ByField()
		web.Render(gctx, http.StatusBadRequest, "cheque_list.html", res)

		return
	}

	cheques, err := h.service.List(ctx, filter)
	if err != nil {
		web.RenderError(gctx, http.StatusInternalServerError, errorspkg.ErrInternal)
		return
	}

	data.Cheques = cheques
	res.Data = data

	web.Render(gctx, http.StatusOK, "cheque_list.html", res)
}

// Details handles http request to show a cheque.
func (h *Handler) Details(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	c, err := h.service.Get(gctx.Request.Context(), id)
	if err != nil {
		renderLookupError(gctx, err)
		return
	}

	res := middleware.Page(gctx, "Cheque "+c.Number)
	res.Data = chequeData{c}

	web.Render(gctx, http.StatusOK, "cheque_details.html", res)
}

// Print handles http request to show the printable cheque.
func (h *Handler) Print(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	c, err := h.service.Print(gctx.Request.Context(), id)
	if err != nil {
		renderLookupError(gctx, err)
		return
	}

	res := middleware.Page(gctx, "Cheque "+c.Number)
	res.Data = chequeData{c}

	web.Render(gctx, http.StatusOK, "cheque_print.html", res)
}

func renderForm(gctx *gin.Context, code int, form chequeForm, isEdit bool, verr *domain.ValidationError, err error) {
	title, action := "New cheque", ListPath
	if isEdit {
		title = "Edit cheque"
		action = ListPath + "/" + gctx.Param("id")
	}

	res := middleware.Page(gctx, title)
	res.Data = formData{
		Form:     form,
		Statuses: statusOptions(form.Status),
		Action:   action,
		IsEdit:   isEdit,
	}

	switch {
	case verr != nil:
		res.Error = verr.Error()
		res.Fields = verr.ByField()
	case err != nil:
		res.Error = err.Error()
	}

	web.Render(gctx, code, "cheque_form.html", res)
}

// NewForm handles http request to show an empty cheque form.
func (h *Handler) NewForm(gctx *gin.Context) {
	form := chequeForm{
		Status: "0",
	}

	renderForm(gctx, http.StatusOK, form, false, nil, nil)
}

// Create handles http request to create a cheque.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var form chequeForm
	if err := gctx.ShouldBind(&form); err != nil {
		l.Info().Err(err).Send()
		renderForm(gctx, http.StatusBadRequest, form, false, nil, ErrInvalidForm)

		return
	}

	params, verr := form.params()
	if verr != nil {
		l.Info().Err(verr).Send()
		renderForm(gctx, http.StatusBadRequest, form, false, verr, nil)

		return
	}

	created, err := h.service.Create(ctx, params)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			l.Info().Err(err).Send()
			renderForm(gctx, http.StatusBadRequest, form, false, ve, nil)

			return
		}

		renderForm(gctx, http.StatusInternalServerError, form, false, nil, errorspkg.ErrInternal)

		return
	}

	done(gctx, http.StatusCreated, chequeData{created})
}

// EditForm handles http request to show the cheque edit form.
func (h *Handler) EditForm(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	c, err := h.service.Get(gctx.Request.Context(), id)
	if err != nil {
		renderLookupError(gctx, err)
		return
	}

	renderForm(gctx, http.StatusOK, formFromCheque(c), true, nil, nil)
}

// Update handles http request to update a cheque.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, ok := bindID(gctx)
	if !ok {
		return
	}

	var form chequeForm
	if err := gctx.ShouldBind(&form); err != nil {
		l.Info().Err(err).Send()
		renderForm(gctx, http.StatusBadRequest, form, true, nil, ErrInvalidForm)

		return
	}

	params, verr := form.updateParams()
	if verr != nil {
		l.Info().Err(verr).Send()
		renderForm(gctx, http.StatusBadRequest, form, true, verr, nil)

		return
	}

	updated, err := h.service.Update(ctx, id, params)
	if err != nil {
		var ve *domain.ValidationError

		switch {
		case errors.As(err, &ve):
			l.Info().Err(err).Send()
			renderForm(gctx, http.StatusBadRequest, form, true, ve, nil)
		case errors.Is(err, domain.ErrChequeGone),
			errors.Is(err, domain.ErrChequeDeleted),
			errors.Is(err, domain.ErrVersionConflict):
			l.Warn().Err(err).Int64("id", id).Send()
			renderForm(gctx, http.StatusConflict, form, true, nil, err)
		default:
			renderForm(gctx, http.StatusInternalServerError, form, true, nil, errorspkg.ErrInternal)
		}

		return
	}

	done(gctx, http.StatusOK, chequeData{updated})
}

// DeleteForm handles http request to confirm a cheque deletion.
func (h *Handler) DeleteForm(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	c, err := h.service.Get(gctx.Request.Context(), id)
	if err != nil {
		renderLookupError(gctx, err)
		return
	}

	res := middleware.Page(gctx, "Delete cheque")
	res.Data = chequeData{c}

	web.Render(gctx, http.StatusOK, "cheque_delete.html", res)
}

// Delete handles http request to delete a cheque.
func (h *Handler) Delete(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	if err := h.service.Delete(gctx.Request.Context(), id); err != nil {
		web.RenderError(gctx, http.StatusInternalServerError, errorspkg.ErrInternal)
		return
	}

	done(gctx, http.StatusOK, nil)
}
