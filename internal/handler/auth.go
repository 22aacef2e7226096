package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kitforge/backend/internal/model"
	"github.com/kitforge/backend/internal/service"
)

type AuthHandler struct {
	svc     *service.AuthService
	avatars *service.AvatarService
	errs    errorWriter
}

func NewAuthHandler(svc *service.AuthService, avatars *service.AvatarService, exposeInternal bool) *AuthHandler {
	return &AuthHandler{svc: svc, avatars: avatars, errs: errorWriter{exposeInternal: exposeInternal}}
}

type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

func (q pageQuery) request() model.PageRequest {
	return model.NewPageRequest(q.Page, q.Limit)
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// Register godoc
// @Summary Register a new user
// @Description Creates an unverified account and emails a verification link.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Account details"
// @Success 201 {object} model.Envelope{data=model.PublicUser}
// @Failure 400 {object} model.Envelope
// @Failure 409 {object} model.Envelope
// @Failure 500 {object} model.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registration successful. Please verify your email.", user)
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.Envelope{data=model.LoginResponse}
// @Failure 400 {object} model.Envelope
// @Failure 401 {object} model.Envelope
// @Failure 403 {object} model.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", res)
}

// RefreshToken godoc
// @Summary Rotate a refresh token
// @Description Each refresh token can be redeemed once; the response carries its replacement.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} model.Envelope{data=model.TokenPair}
// @Failure 401 {object} model.Envelope
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.write(c, service.ErrTokenRequired)
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusOK, "Token refreshed", pair)
}

// Logout godoc
// @Summary Logout
// @Description Revokes the given refresh token. Always succeeds.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LogoutRequest false "Refresh token"
// @Success 200 {object} model.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.LogoutRequest
	_ = c.ShouldBindJSON(&req)
	h.svc.Logout(c.Request.Context(), req.RefreshToken)
	respond(c, http.StatusOK, "Logged out", nil)
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Tags auth
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} model.Envelope
// @Failure 400 {object} model.Envelope
// @Router /auth/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.svc.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		h.errs.writeToken(c, err)
		return
	}
	respond(c, http.StatusOK, "Email verified", nil)
}

// ResendVerification godoc
// @Summary Send a new verification email
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Envelope
// @Failure 400 {object} model.Envelope
// @Failure 401 {object} model.Envelope
// @Router /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	user := GetAuthUser(c)
	if err := h.svc.ResendVerification(c.Request.Context(), user.ID); err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusOK, "Verification email sent", nil)
}

// ForgotPassword godoc
// @Summary Request a password reset email
// @Description Responds identically whether or not the account exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ForgotPasswordRequest true "Account email"
// @Success 200 {object} model.Envelope
// @Failure 400 {object} model.Envelope
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	h.svc.ForgotPassword(c.Request.Context(), req.Email)
	respond(c, http.StatusOK, "If the account exists, a reset link has been sent", nil)
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} model.Envelope
// @Failure 400 {object} model.Envelope
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.errs.writeToken(c, err)
		return
	}
	respond(c, http.StatusOK, "Password has been reset", nil)
}

// Profile godoc
// @Summary Get the current user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Envelope{data=model.PublicUser}
// @Failure 401 {object} model.Envelope
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.svc.GetProfile(c.Request.Context(), GetAuthUser(c).ID)
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusOK, "", user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Description Only the fields present in the body are changed.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} model.Envelope{data=model.PublicUser}
// @Failure 400 {object} model.Envelope
// @Failure 401 {object} model.Envelope
// @Failure 409 {object} model.Envelope
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), GetAuthUser(c).ID, req)
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", user)
}

// ChangePassword godoc
// @Summary Change password
// @Description Signs the user out of every session.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} model.Envelope
// @Failure 400 {object} model.Envelope
// @Failure 401 {object} model.Envelope
// @Router /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), GetAuthUser(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusOK, "Password changed. Please log in again.", nil)
}

// LoginHistory godoc
// @Summary List the current user's login attempts
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} model.PaginatedEnvelope{data=[]model.LoginLog}
// @Failure 401 {object} model.Envelope
// @Router /auth/login-history [get]
func (h *AuthHandler) LoginHistory(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	page, err := h.svc.LoginHistory(c.Request.Context(), GetAuthUser(c).ID, q.request())
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respondPage(c, page)
}

// Session godoc
// @Summary Report whether the caller is signed in
// @Tags auth
// @Produce json
// @Success 200 {object} model.Envelope{data=model.SessionResponse}
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respond(c, http.StatusOK, "", model.SessionResponse{})
		return
	}

	user, err := h.svc.GetProfile(c.Request.Context(), authUser.ID)
	if err != nil {
		respond(c, http.StatusOK, "", model.SessionResponse{})
		return
	}
	respond(c, http.StatusOK, "", model.SessionResponse{Authenticated: true, User: user})
}

// AvatarUpload godoc
// @Summary Get a presigned avatar upload URL
// @Description PUT the image to uploadUrl, then save avatarUrl with PUT /auth/profile.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.AvatarUploadRequest true "Image content type"
// @Success 200 {object} model.Envelope{data=model.AvatarUploadResponse}
// @Failure 400 {object} model.Envelope
// @Failure 403 {object} model.Envelope
// @Failure 503 {object} model.Envelope
// @Router /auth/profile/avatar [post]
func (h *AuthHandler) AvatarUpload(c *gin.Context) {
	var req model.AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	res, err := h.avatars.CreateUploadURL(c.Request.Context(), GetAuthUser(c).ID, req.ContentType)
	if err != nil {
		h.errs.write(c, err)
		return
	}
	respond(c, http.StatusOK, "", res)
}
