package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kitforge/backend/internal/model"
	"github.com/kitforge/backend/internal/service"
)

type AdminHandler struct {
	users *service.UserService
	errs  errorWriter
}

func NewAdminHandler(users *service.UserService, exposeInternal bool) *AdminHandler {
	return &AdminHandler{users: users, errs: errorWriter{exposeInternal: exposeInternal}}
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} model.PaginatedEnvelope{data=[]model.PublicUser}
// @Failure 401 {object} model.Envelope
// @Failure 403 {object} model.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	page, err := h.users.ListUsers(c.Request.Context(), q.request())
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respondPage(c, page)
}

// UpdateUserStatus godoc
// @Summary Activate or deactivate a user
// @Description Deactivation signs the user out of every session.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body model.UpdateUserStatusRequest true "New status"
// @Success 200 {object} model.Envelope{data=model.PublicUser}
// @Failure 400 {object} model.Envelope
// @Failure 403 {object} model.Envelope
// @Failure 404 {object} model.Envelope
// @Router /admin/users/{id}/status [patch]
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		abortWith(c, http.StatusBadRequest, service.CodeValidation, "invalid user id")
		return
	}

	var req model.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.users.SetUserActive(c.Request.Context(), GetAuthUser(c).ID, userID, *req.IsActive)
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusOK, "User status updated", user)
}
