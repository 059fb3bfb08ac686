package web

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/gin-gonic/gin"
)

type pageData struct {
	Form          FormInput
	State         RequestState
	CanSubmit     bool
	ItineraryHTML template.HTML
}

// PageHandler serves the itinerary form page.
type PageHandler struct {
	client ItineraryClient
}

func NewPageHandler(client ItineraryClient) *PageHandler {
	return &PageHandler{client: client}
}

// ShowForm renders an empty form.
func (h *PageHandler) ShowForm(c *gin.Context) {
	session := NewSession(h.client)
	defer session.Close()
	h.render(c, http.StatusOK, session)
}

// SubmitForm fills a session from the posted form, submits it when the form
// is complete and renders the outcome.
func (h *PageHandler) SubmitForm(c *gin.Context) {
	session := NewSession(h.client)
	defer session.Close()

	session.OnChange(FieldDestination, c.PostForm(FieldDestination))
	session.OnChange(FieldDate, c.PostForm(FieldDate))

	if session.CanSubmit() {
		// A dropped browser connection must not abort a generation in flight.
		ctx := WithClientIP(context.WithoutCancel(c.Request.Context()), c.ClientIP())
		session.Submit(ctx)
	}
	h.render(c, http.StatusOK, session)
}

// RateLimited renders the page with the posted values and a rate limit
// message. It is installed as the page limiter's rejection handler.
func (h *PageHandler) RateLimited(c *gin.Context) {
	session := NewSession(h.client)
	defer session.Close()

	session.OnChange(FieldDestination, c.PostForm(FieldDestination))
	session.OnChange(FieldDate, c.PostForm(FieldDate))
	session.Fail(RateLimitedMessage)
	h.render(c, http.StatusTooManyRequests, session)
}

func (h *PageHandler) render(c *gin.Context, status int, session *Session) {
	log := logger.GetLogger()

	state := session.State()
	data := pageData{
		Form:      session.Form(),
		State:     state,
		CanSubmit: session.CanSubmit(),
	}

	if state.Result != nil {
		html, err := RenderItinerary(state.Result)
		if err != nil {
			log.Errorw("Failed to render itinerary", "id", state.Result.ID, "error", err)
			data.State.Result = nil
			data.State.ErrorMessage = FallbackErrorMessage
		} else {
			data.ItineraryHTML = html
		}
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page.html", data); err != nil {
		log.Errorw("Failed to render page", "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
