package router

import (
	"github.com/gin-gonic/gin"

	"plume/internal/handlers"
	"plume/internal/middleware"
	"plume/internal/store"
)

func RegisterRoutes(r *gin.Engine, reg *store.Registry) {
	r.Use(middleware.AttachSession(reg))

	authHandler := handlers.NewAuthHandler()
	blogHandler := handlers.NewBlogHandler()

	// 公共路由 (Public Routes)
	r.GET("/", blogHandler.List)            // 首页 - 文章列表
	r.GET("/post/:id", blogHandler.Detail)  // 文章详情页
	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/confirm", authHandler.ShowConfirm) // 注册确认页面
	r.POST("/confirm", authHandler.Confirm)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create", blogHandler.ShowCreate)            // 发布文章页面
		authorized.POST("/create", blogHandler.Create)               // 提交发布文章
		authorized.GET("/post/:id/edit", blogHandler.ShowEdit)       // 编辑文章页面
		authorized.POST("/post/:id/edit", blogHandler.Update)        // 提交文章更新
		authorized.POST("/post/:id/delete", blogHandler.Delete)      // 删除文章
		authorized.POST("/post/:id/comment", blogHandler.CreateComment) // 发表评论
	}
}
