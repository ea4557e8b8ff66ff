package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"caspian/internal/forms"
	"caspian/internal/store"
)

type AuthHandler struct {
	users store.UserStore
}

func NewAuthHandler(users store.UserStore) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Form": forms.RegisterForm{}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form forms.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
			"FieldErrors": forms.FieldErrors(err),
			"Form":        form,
		})
		return
	}

	_, err := h.users.Register(form.Email, form.DisplayName, form.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			Render(c, http.StatusConflict, "auth/register.html", gin.H{
				"Error": "That email is already registered.",
				"Form":  form,
			})
			return
		}
		RenderError(c, http.StatusInternalServerError, "Registration failed.")
		return
	}

	Render(c, http.StatusOK, "auth/login.html", gin.H{"Success": "Registration complete, you can log in now."})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	obj := gin.H{}
	if c.Query("prompt") != "" {
		obj["Prompt"] = "Please log in first."
	}
	Render(c, http.StatusOK, "auth/login.html", obj)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{
			"FieldErrors": forms.FieldErrors(err),
		})
		return
	}

	user, err := h.users.Verify(form.Email, form.Password)
	if err != nil {
		// Same message for unknown email and wrong password
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Email or password is incorrect."})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
