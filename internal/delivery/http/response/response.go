package response

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Status values of the reply payload
const (
	StatusOK    = "ok"
	StatusError = "error"
	// StatusAccepted is an acknowledgement the client treats like ok
	StatusAccepted = "accepted"
)

// Response standardizes the API JSON response
type Response struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Errors    []string `json:"errors,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string) {
	if !WantsJSON(c) {
		c.HTML(code, pageTemplateName, page{
			Title:    "Thank you!",
			Message:  message,
			BackLink: "index.html",
			BackText: "Return Home",
		})
		return
	}

	c.JSON(code, Response{
		Status:    StatusOK,
		Message:   message,
		RequestID: requestID(c),
	})
}

// Status always answers in JSON, whatever the caller accepts. Used by
// endpoints polled by monitors rather than posted from a page.
func Status(c *gin.Context, code int, status, message string) {
	c.JSON(code, Response{
		Status:    status,
		Message:   message,
		RequestID: requestID(c),
	})
}

// Error sends an error response. errs is the itemized list for validation failures.
func Error(c *gin.Context, code int, message string, errs []string) {
	if !WantsJSON(c) {
		p := page{
			Title:    message,
			Errors:   errs,
			BackLink: "contact.html",
			BackText: "Go back",
		}
		if len(errs) > 0 {
			p.Title = "There were issues:"
		} else if code >= http.StatusInternalServerError {
			p.Message = "Please call us directly."
		}
		c.HTML(code, pageTemplateName, p)
		return
	}

	c.JSON(code, Response{
		Status:    StatusError,
		Message:   message,
		Errors:    errs,
		RequestID: requestID(c),
	})
}

// Discard answers a silently dropped submission: no status, no message, no body.
func Discard(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

// WantsJSON reports whether the caller asked for JSON. Plain HTML form
// posts get a rendered page instead.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// LoadTemplates installs the HTML fallback pages on the engine.
func LoadTemplates(r *gin.Engine) {
	r.SetHTMLTemplate(pageTemplate)
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string) // Safe type assertion
	return idStr
}

type page struct {
	Title    string
	Message  string
	Errors   []string
	BackLink string
	BackText string
}

const pageTemplateName = "result.html"

var pageTemplate = template.Must(template.New(pageTemplateName).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body>
<h2>{{.Title}}</h2>
{{- if .Message}}
<p>{{.Message}}</p>
{{- end}}
{{- if .Errors}}
<ul>
{{- range .Errors}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
<p><a href="{{.BackLink}}">{{.BackText}}</a></p>
</body>
</html>`))
