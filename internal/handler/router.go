package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/troupe/internal/app"
	"github.com/qs-lzh/troupe/internal/metrics"
)

func NewRouter(app *app.App) *gin.Engine {
	h := NewHandler(app)

	r := gin.New()
	r.Use(gin.Recovery(), h.RequestLogger(), h.Session())

	r.GET("/", h.HandleIndex)
	r.GET("/healthz", h.HandleHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	session := h.RequireSession()
	organizer := h.RequireOrganizer()

	api := r.Group("/api")
	api.POST("/login", h.HandleLogin)
	api.POST("/logout", session, h.HandleLogout)
	api.POST("/auth/register", h.HandleRegister)
	api.GET("/auth/me", h.HandleMe)

	api.GET("/lessons", h.HandleListLessons)
	api.POST("/lessons", organizer, h.HandleCreateLesson)
	api.DELETE("/lessons/:id", organizer, h.HandleDeleteLesson)

	api.GET("/performances", h.HandleListPerformances)
	api.GET("/performances/:id", h.HandleGetPerformance)
	api.GET("/performances/:id/roles", h.HandleListRoles)
	api.POST("/performances", organizer, h.HandleCreatePerformance)
	api.DELETE("/performances/:id", organizer, h.HandleDeletePerformance)

	api.POST("/roles", organizer, h.HandleCreateRole)
	api.DELETE("/roles/:id", organizer, h.HandleDeleteRole)

	api.GET("/applications", session, h.HandleListApplications)
	api.POST("/apply", session, h.HandleApply)
	api.POST("/applications/:id/approve", organizer, h.HandleApprove)
	api.POST("/applications/:id/reject", organizer, h.HandleReject)

	user := api.Group("/user")
	user.GET("/avatar", h.HandleGetAvatar)
	user.POST("/avatar", session, h.HandleSetAvatar)
	user.GET("/participation", session, h.HandleGetParticipation)
	user.POST("/participation", session, h.HandleSetParticipation)
	user.GET("/organizers", h.HandleListOrganizers)

	api.GET("/files", session, h.HandleListFiles)
	api.POST("/files", organizer, h.HandleCreateFile)
	api.DELETE("/files/:id", organizer, h.HandleDeleteFile)

	api.GET("/additional-files", session, h.HandleListAdditionalFiles)
	api.POST("/additional-files", organizer, h.HandleCreateAdditionalFile)
	api.DELETE("/additional-files/*path", organizer, h.HandleDeleteAdditionalFile)

	return r
}
