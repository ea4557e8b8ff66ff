package main

import (
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"caspian/internal/config"
	"caspian/internal/db"
	"caspian/internal/middleware"
	"caspian/internal/router"
	"caspian/internal/services"
	"caspian/internal/store"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	users := store.NewUserStore(gdb)
	posts := store.NewPostStore(gdb)
	comments := store.NewCommentStore(gdb)
	mail := services.NewMailService(cfg.SMTP)

	r := gin.Default()

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("caspian_session", sessionStore))

	r.HTMLRender = loadTemplates("./web/templates")
	r.Static("/static", "./web/static")

	r.Use(middleware.LoadUser(users))

	router.RegisterRoutes(r, users, posts, comments, mail, cfg.SiteURL)

	log.Printf("Caspian server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"formatDate": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	r.AddFromFilesFuncs("index.html", funcMap, assemble(templatesDir+"/views/index.html")...)
	r.AddFromFilesFuncs("contact.html", funcMap, assemble(templatesDir+"/views/contact.html")...)
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	r.AddFromFilesFuncs("blog/list.html", funcMap, assemble(templatesDir+"/views/blog/list.html")...)
	r.AddFromFilesFuncs("blog/detail.html", funcMap, assemble(templatesDir+"/views/blog/detail.html")...)
	r.AddFromFilesFuncs("blog/form.html", funcMap, assemble(templatesDir+"/views/blog/form.html")...)

	return r
}
