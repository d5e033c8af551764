package handlers

import (
	"errors"

	"github.com/usercenter-next/internal/http/response"
	"github.com/usercenter-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCurrentUser 获取当前登录用户完整信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserService.GetByID(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "user fetch failed")
		}
		return
	}

	response.JSON(c, user)
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Alias       string `json:"alias"`
}

// UpdateProfile 更新当前用户的昵称与别名
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.UserService.UpdateProfile(id, req.DisplayName, req.Alias, "")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "profile update failed")
		}
		return
	}

	response.JSON(c, user)
}

// UpdatedPasswordRequest 登录态修改密码请求
type UpdatedPasswordRequest struct {
	CurrentPassword      string `json:"current_password" binding:"required"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// UpdatedPassword 校验当前密码后更新为新密码
func (h *Handler) UpdatedPassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpdatedPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.UserAuthService.ChangePassword(id, req.CurrentPassword, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			response.Unauthorized(c, "current password incorrect")
		case errors.Is(err, service.ErrWeakPassword):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "password change failed")
		}
		return
	}

	response.Text(c, "Password updated")
}

// CheckPasswordRequest 校验当前密码请求
type CheckPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// CheckPassword 只校验当前密码是否正确，不做任何变更
func (h *Handler) CheckPassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req CheckPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.UserAuthService.CheckPassword(id, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			response.Unauthorized(c, "password incorrect")
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "password check failed")
		}
		return
	}

	response.Text(c, "Password correct")
}
