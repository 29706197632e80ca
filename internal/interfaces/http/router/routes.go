package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 注册 /api 路由
func RegisterAPIRoutes(api *gin.RouterGroup, h Handlers) {
	api.POST("/build", h.Build.Build)
	api.POST("/chat", h.Chat.Chat)

	// 项目最近一次构建
	projects := api.Group("/projects/:pid")
	{
		projects.GET("/build", h.ProjectBuild.GetBuild)
		projects.GET("/build/archive", h.ProjectBuild.GetArchive)
		projects.GET("/build/tree", h.ProjectBuild.GetTree)
		projects.GET("/preview", h.ProjectBuild.GetPreview)
	}
}
