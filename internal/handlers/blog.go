package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"caspian/internal/forms"
	"caspian/internal/middleware"
	"caspian/internal/models"
	"caspian/internal/services"
	"caspian/internal/store"
	"caspian/internal/utils"
)

type BlogHandler struct {
	posts       store.PostStore
	comments    store.CommentStore
	mailService *services.MailService
	siteURL     string
}

func NewBlogHandler(posts store.PostStore, comments store.CommentStore, mail *services.MailService, siteURL string) *BlogHandler {
	return &BlogHandler{
		posts:       posts,
		comments:    comments,
		mailService: mail,
		siteURL:     siteURL,
	}
}

func (h *BlogHandler) List(c *gin.Context) {
	posts, err := h.posts.List()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	Render(c, http.StatusOK, "blog/list.html", gin.H{
		"Title": "Blog",
		"Posts": posts,
	})
}

func (h *BlogHandler) Detail(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	post, err := h.posts.ByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RenderError(c, http.StatusNotFound, "Post not found.")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not load the post.")
		return
	}

	comments, err := h.comments.ForPost(post.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load comments.")
		return
	}

	type renderedComment struct {
		models.Comment
		TextHTML template.HTML
	}
	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{Comment: com, TextHTML: utils.RenderMarkdown(com.Text)}
	}

	Render(c, http.StatusOK, "blog/detail.html", gin.H{
		"Title":    post.Title,
		"Post":     post,
		"Body":     utils.RenderMarkdown(post.Body),
		"Comments": rendered,
	})
}

func (h *BlogHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "blog/form.html", gin.H{"Title": "New Post", "Form": forms.PostForm{}})
}

func (h *BlogHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var form forms.PostForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "blog/form.html", gin.H{
			"Title":       "New Post",
			"FieldErrors": forms.FieldErrors(err),
			"Form":        form,
		})
		return
	}

	post, err := h.posts.Create(store.PostFields{
		Title:         form.Title,
		Body:          form.Body,
		CoverImageURL: form.CoverImageURL,
	}, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			Render(c, http.StatusConflict, "blog/form.html", gin.H{
				"Title": "New Post",
				"Error": "A post with that title already exists.",
				"Form":  form,
			})
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not save the post.")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/blog/%d", post.ID))
}

func (h *BlogHandler) ShowEdit(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	post, err := h.posts.ByID(id)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	Render(c, http.StatusOK, "blog/form.html", gin.H{
		"Title":  "Edit Post",
		"IsEdit": true,
		"Post":   post,
		"Form": forms.PostForm{
			Title:         post.Title,
			Body:          post.Body,
			CoverImageURL: post.CoverImageURL,
		},
	})
}

func (h *BlogHandler) Update(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var form forms.PostForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "blog/form.html", gin.H{
			"Title":       "Edit Post",
			"IsEdit":      true,
			"FieldErrors": forms.FieldErrors(err),
			"Form":        form,
		})
		return
	}

	post, err := h.posts.Update(id, store.PostFields{
		Title:         form.Title,
		Body:          form.Body,
		CoverImageURL: form.CoverImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			RenderError(c, http.StatusNotFound, "Post not found.")
		case errors.Is(err, store.ErrDuplicateTitle):
			Render(c, http.StatusConflict, "blog/form.html", gin.H{
				"Title":  "Edit Post",
				"IsEdit": true,
				"Error":  "A post with that title already exists.",
				"Form":   form,
			})
		default:
			RenderError(c, http.StatusInternalServerError, "Could not save the post.")
		}
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/blog/%d", post.ID))
}

func (h *BlogHandler) Delete(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	if err := h.posts.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RenderError(c, http.StatusNotFound, "Post not found.")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not delete the post.")
		return
	}

	c.Redirect(http.StatusFound, "/blog")
}

func (h *BlogHandler) CreateComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id := utils.StringToUint(c.Param("id"))

	post, err := h.posts.ByID(id)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Post not found.")
		return
	}

	var form forms.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		// An empty comment just returns to the post
		c.Redirect(http.StatusFound, fmt.Sprintf("/blog/%d", post.ID))
		return
	}

	if _, err := h.comments.Add(post.ID, user.ID, form.Text); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not save the comment.")
		return
	}

	// Tell the author, unless they are commenting on their own post
	if post.UserID != user.ID {
		postLink := fmt.Sprintf("%s/blog/%d", h.siteURL, post.ID)
		h.mailService.SendCommentNotification(post.User.Email, user.DisplayName, post.Title, form.Text, postLink)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/blog/%d", post.ID))
}
