package main

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"plume/internal/db"
	"plume/internal/gateway"
	"plume/internal/logger"
	"plume/internal/router"
	"plume/internal/services"
	"plume/internal/storage"
	"plume/internal/store"
	"plume/internal/utils"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	logger.Init(os.Getenv("GIN_MODE") != "release")

	// Initialize Database
	conn := db.Init()

	// Object storage for post/comment images
	var objectStorage gateway.ObjectStorage
	if cfg, ok := storage.ConfigFromEnv(); ok {
		s3, err := storage.NewS3Storage(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		objectStorage = s3
	} else {
		logger.L().Warn("object storage not configured, image uploads disabled")
	}

	mailer := services.NewMailService()
	var gwMailer gateway.Mailer
	if mailer.Enabled {
		gwMailer = mailer
	}

	// Per-session gateway clients and state stores
	registry, err := store.NewRegistry(1000, 2*time.Hour, func() *gateway.Client {
		return gateway.NewClient(gateway.Options{
			DB:            conn,
			Storage:       objectStorage,
			Mailer:        gwMailer,
			ConfirmSignup: mailer.Enabled,
		})
	})
	if err != nil {
		log.Fatalf("Failed to create session registry: %v", err)
	}

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	r.Use(sessions.Sessions("plume_session", cookie.NewStore([]byte(secret))))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")

	router.RegisterRoutes(r, registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.L().Infof("Plume server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, components...)
		files = append(files, view)
		return files
	}

	// FuncMap
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			default:
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"truncate": func(s string, n int) string {
			return utils.Truncate(s, n)
		},
		"markdown": func(s string) template.HTML {
			return utils.RenderMarkdown(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)
	r.AddFromFilesFuncs("auth/confirm.html", funcMap, assemble(templatesDir+"/views/auth/confirm.html")...)

	// Blog
	r.AddFromFilesFuncs("blog/list.html", funcMap, assemble(templatesDir+"/views/blog/list.html")...)
	r.AddFromFilesFuncs("blog/detail.html", funcMap, assemble(templatesDir+"/views/blog/detail.html")...)
	r.AddFromFilesFuncs("blog/create.html", funcMap, assemble(templatesDir+"/views/blog/create.html")...)
	r.AddFromFilesFuncs("blog/edit.html", funcMap, assemble(templatesDir+"/views/blog/edit.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
