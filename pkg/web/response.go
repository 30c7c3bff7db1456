// Package web defines common components for a web application.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Response holds the common response type for all pages.
//
// JSON clients receive Data, Error and Fields; the remaining fields only feed the HTML templates.
type Response struct {
	Data   any               `json:"data,omitempty"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`

	Title    string `json:"-"`
	Username string `json:"-"`
	IsAdmin  bool   `json:"-"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// Render writes res with the named template, or as JSON when the client prefers it.
func Render(gctx *gin.Context, code int, name string, res Response) {
	gctx.Negotiate(code, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: name,
		HTMLData: res,
		JSONData: res,
	})
}

// RenderError writes the generic error page for err.
func RenderError(gctx *gin.Context, code int, err error) {
	res := Error(err)
	res.Title = http.StatusText(code)

	Render(gctx, code, "error.html", res)
}

// WantsJSON reports whether the client prefers a JSON response over HTML.
func WantsJSON(gctx *gin.Context) bool {
	return gctx.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEJSON
}
