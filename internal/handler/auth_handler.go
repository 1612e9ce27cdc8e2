package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/troupe/internal/model"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	Username string         `json:"username"`
	Role     model.UserRole `json:"role"`
	IsPart   string         `json:"isPart,omitempty"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{Username: u.Username, Role: u.Role, IsPart: u.IsPart}
}

func (h *Handler) HandleLogin(ctx *gin.Context) {
	var req CredentialsRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	result, err := h.app.IdentityService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   result.Token,
		"user":    newUserResponse(result.User),
	})
}

func (h *Handler) HandleLogout(ctx *gin.Context) {
	if err := h.app.IdentityService.Logout(ctx.Request.Context(), ctx.GetString(ctxToken)); err != nil {
		h.fail(ctx, err)
		return
	}
	h.ok(ctx, "logged out")
}

func (h *Handler) HandleRegister(ctx *gin.Context) {
	var req CredentialsRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	if _, err := h.app.IdentityService.Register(ctx.Request.Context(), req.Username, req.Password); err != nil {
		h.fail(ctx, err)
		return
	}
	h.ok(ctx, "user registered")
}

// HandleMe returns the session user, or the user named by ?username= when given.
func (h *Handler) HandleMe(ctx *gin.Context) {
	var (
		user *model.User
		err  error
	)
	if username := strings.TrimSpace(ctx.Query("username")); username != "" {
		user, err = h.app.IdentityService.GetUser(ctx.Request.Context(), username)
	} else if v, ok := viewer(ctx); ok {
		user, err = h.app.IdentityService.GetUser(ctx.Request.Context(), v.Username)
	} else {
		err = errLoginRequired
	}
	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    newUserResponse(user),
	})
}
