package router

import (
	"github.com/gin-gonic/gin"

	"caspian/internal/handlers"
	"caspian/internal/middleware"
	"caspian/internal/services"
	"caspian/internal/store"
)

// RegisterRoutes wires every route to its handler. Stores and services are
// passed in, nothing here reaches for globals.
func RegisterRoutes(r *gin.Engine, users store.UserStore, posts store.PostStore, comments store.CommentStore, mail *services.MailService, siteURL string) {
	authHandler := handlers.NewAuthHandler(users)
	blogHandler := handlers.NewBlogHandler(posts, comments, mail, siteURL)
	contactHandler := handlers.NewContactHandler(mail)
	pageHandler := handlers.NewPageHandler(posts)

	// Public routes
	r.GET("/", pageHandler.Home)
	r.GET("/blog", blogHandler.List)
	r.GET("/blog/:id", blogHandler.Detail)
	r.GET("/contact", contactHandler.Show)
	r.POST("/message", contactHandler.Message)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Commenting needs a logged-in author
	r.POST("/blog/:id", middleware.AuthRequired(), blogHandler.CreateComment)

	// Authoring routes, administrator only
	admin := r.Group("/")
	admin.Use(middleware.AdminRequired(users))
	{
		admin.GET("/blog/new-post", blogHandler.ShowCreate)
		admin.POST("/blog/new-post", blogHandler.Create)
		admin.GET("/blog/edit-post/:id", blogHandler.ShowEdit)
		admin.POST("/blog/edit-post/:id", blogHandler.Update)
		admin.GET("/delete/:id", blogHandler.Delete)
	}
}
