package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caspian/internal/forms"
	"caspian/internal/services"
)

type ContactHandler struct {
	mailService *services.MailService
}

func NewContactHandler(mail *services.MailService) *ContactHandler {
	return &ContactHandler{mailService: mail}
}

func (h *ContactHandler) Show(c *gin.Context) {
	Render(c, http.StatusOK, "contact.html", gin.H{"Title": "Contact", "Form": forms.ContactForm{}})
}

// Message accepts the contact form and relays it by email. The send is
// synchronous, a relay failure is a server error rather than a silent drop.
func (h *ContactHandler) Message(c *gin.Context) {
	var form forms.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "contact.html", gin.H{
			"Title":       "Contact",
			"FieldErrors": forms.FieldErrors(err),
			"Form":        form,
		})
		return
	}

	if err := h.mailService.SendContactMessage(form.Name, form.Email, form.Question); err != nil {
		RenderError(c, http.StatusInternalServerError, "Your message could not be sent.")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Your message has been sent successfully.</h1>"))
}
