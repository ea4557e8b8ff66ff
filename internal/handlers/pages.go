package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caspian/internal/store"
)

type PageHandler struct {
	posts store.PostStore
}

func NewPageHandler(posts store.PostStore) *PageHandler {
	return &PageHandler{posts: posts}
}

func (h *PageHandler) Home(c *gin.Context) {
	posts, err := h.posts.List()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	// Show the three most recent posts on the home page
	if len(posts) > 3 {
		posts = posts[:3]
	}

	Render(c, http.StatusOK, "index.html", gin.H{
		"Title": "Home",
		"Posts": posts,
	})
}
