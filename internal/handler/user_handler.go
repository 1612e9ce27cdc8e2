package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AvatarRequest struct {
	Avatar []byte `json:"avatar"`
}

type ParticipationRequest struct {
	IsPart string `json:"isPart"`
}

type organizerResponse struct {
	Username string `json:"username"`
	Avatar   []byte `json:"avatar"`
}

// HandleGetAvatar answers with a null avatar when the user has none.
func (h *Handler) HandleGetAvatar(ctx *gin.Context) {
	avatar, err := h.app.IdentityService.GetAvatar(ctx.Request.Context(), ctx.Query("username"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"avatar":  avatar,
	})
}

func (h *Handler) HandleSetAvatar(ctx *gin.Context) {
	var req AvatarRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	v, _ := viewer(ctx)
	if err := h.app.IdentityService.SetAvatar(ctx.Request.Context(), v.Username, req.Avatar); err != nil {
		h.fail(ctx, err)
		return
	}
	h.ok(ctx, "avatar updated")
}

func (h *Handler) HandleGetParticipation(ctx *gin.Context) {
	v, _ := viewer(ctx)
	isPart, err := h.app.IdentityService.GetParticipation(ctx.Request.Context(), v.Username)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"username": v.Username,
		"isPart":   isPart,
	})
}

func (h *Handler) HandleSetParticipation(ctx *gin.Context) {
	var req ParticipationRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	v, _ := viewer(ctx)
	if err := h.app.IdentityService.SetParticipation(ctx.Request.Context(), v.Username, req.IsPart); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"username": v.Username,
		"isPart":   req.IsPart,
	})
}

func (h *Handler) HandleListOrganizers(ctx *gin.Context) {
	users, err := h.app.IdentityService.ListOrganizers(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	organizers := make([]organizerResponse, 0, len(users))
	for _, u := range users {
		organizers = append(organizers, organizerResponse{Username: u.Username, Avatar: u.Avatar})
	}
	ctx.JSON(http.StatusOK, organizers)
}
