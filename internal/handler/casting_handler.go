package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/troupe/internal/service"
)

type CreatePerformanceRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	PerformanceDate string `json:"performance_date"`
	// base64 in JSON
	CoverImage []byte `json:"cover_image"`
}

type CreateRoleRequest struct {
	PerformanceID uint   `json:"performance_id"`
	RoleName      string `json:"role_name"`
	Description   string `json:"description"`
}

type ApplyRequest struct {
	RoleID   uint   `json:"role_id"`
	Username string `json:"username"`
}

type ApproveRequest struct {
	Username string `json:"username"`
}

func (h *Handler) HandleListPerformances(ctx *gin.Context) {
	performances, err := h.app.PerformanceService.ListPerformances(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, performances)
}

func (h *Handler) HandleGetPerformance(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	performance, err := h.app.PerformanceService.GetPerformance(ctx.Request.Context(), id)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, performance)
}

func (h *Handler) HandleCreatePerformance(ctx *gin.Context) {
	var req CreatePerformanceRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	performance, err := h.app.CastingWorkflow.CreatePerformance(ctx.Request.Context(),
		req.Title, req.Description, req.PerformanceDate, req.CoverImage)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "performance created",
		"id":      performance.ID,
	})
}

func (h *Handler) HandleDeletePerformance(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	result, err := h.app.CastingWorkflow.DeletePerformance(ctx.Request.Context(), id)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	body := gin.H{
		"success": true,
		"message": result.Message,
	}
	if result.Warning != "" {
		body["warning"] = result.Warning
	}
	ctx.JSON(http.StatusOK, body)
}

func (h *Handler) HandleListRoles(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	roles, err := h.app.RoleService.ListRoles(ctx.Request.Context(), id)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, roles)
}

func (h *Handler) HandleCreateRole(ctx *gin.Context) {
	var req CreateRoleRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	role, err := h.app.CastingWorkflow.CreateRole(ctx.Request.Context(), req.PerformanceID, req.RoleName, req.Description)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "role created",
		"id":      role.ID,
	})
}

func (h *Handler) HandleDeleteRole(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	result, err := h.app.CastingWorkflow.DeleteRole(ctx.Request.Context(), id)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	body := gin.H{
		"success": true,
		"message": result.Message,
	}
	if result.Warning != "" {
		body["warning"] = result.Warning
	}
	ctx.JSON(http.StatusOK, body)
}

// HandleListApplications lists every application for organizers and the caller's own otherwise.
func (h *Handler) HandleListApplications(ctx *gin.Context) {
	v, _ := viewer(ctx)
	views, err := h.app.ApplicationService.List(ctx.Request.Context(), v)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, views)
}

// HandleApply files an application as the session user. Organizers may name another applicant.
func (h *Handler) HandleApply(ctx *gin.Context) {
	var req ApplyRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	v, _ := viewer(ctx)
	username := v.Username
	if other := strings.TrimSpace(req.Username); other != "" && other != v.Username {
		if !v.IsOrganizer() {
			h.fail(ctx, service.ErrForbidden)
			return
		}
		username = other
	}

	application, err := h.app.CastingWorkflow.Apply(ctx.Request.Context(), req.RoleID, username)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "application submitted",
		"id":      application.ID,
	})
}

func (h *Handler) HandleApprove(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	var req ApproveRequest
	if err := bindJSON(ctx, &req, true); err != nil {
		h.fail(ctx, err)
		return
	}

	if _, err := h.app.CastingWorkflow.Approve(ctx.Request.Context(), id, req.Username); err != nil {
		h.fail(ctx, err)
		return
	}
	h.ok(ctx, "application approved")
}

func (h *Handler) HandleReject(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if err := h.app.CastingWorkflow.Reject(ctx.Request.Context(), id); err != nil {
		h.fail(ctx, err)
		return
	}
	h.ok(ctx, "application rejected")
}
