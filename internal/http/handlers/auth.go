package handlers

import (
	"errors"

	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/http/response"
	"github.com/usercenter-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAccountRequest 注册请求
type CreateAccountRequest struct {
	DisplayName          string `json:"display_name"`
	Alias                string `json:"alias"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// CreateAccount 注册账户，签发确认令牌并发送确认邮件
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	_, err := h.UserAuthService.Register(service.RegisterInput{
		DisplayName: req.DisplayName,
		Alias:       req.Alias,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, "email already registered")
		case errors.Is(err, service.ErrInvalidEmail):
			response.BadRequest(c, "invalid email")
		case errors.Is(err, service.ErrWeakPassword):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "account creation failed")
		}
		return
	}

	response.Text(c, "Account created, check your email to confirm it")
}

// ConfirmAccountRequest 确认账户请求
type ConfirmAccountRequest struct {
	Token string `json:"token" binding:"required"`
}

// ConfirmAccount 消费确认令牌，激活账户
func (h *Handler) ConfirmAccount(c *gin.Context) {
	var req ConfirmAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if _, err := h.TokenService.ConfirmAccount(req.Token); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			response.NotFound(c, "invalid token")
		case errors.Is(err, service.ErrTokenExpired):
			response.BadRequest(c, "token expired")
		default:
			response.InternalError(c, "account confirmation failed")
		}
		return
	}

	response.Text(c, "Account confirmed")
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录。成功返回会话凭证原文；
// 未注册、未确认、密码错误统一折叠为 404，不暴露具体原因。
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	credential, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrInvalidPassword):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrNotConfirmed):
			response.NotFound(c, "account not confirmed, a new confirmation email has been sent")
		default:
			response.InternalError(c, "login failed")
		}
		return
	}

	response.Text(c, credential)
}

// RequestCodeRequest 重发确认码请求
type RequestCodeRequest struct {
	Email string `json:"email" binding:"required"`
}

// RequestCode 重新发送账户确认码
func (h *Handler) RequestCode(c *gin.Context) {
	var req RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.UserAuthService.RequestConfirmationCode(req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidEmail):
			response.NotFound(c, "email not registered")
		case errors.Is(err, service.ErrAlreadyConfirmed):
			response.Forbidden(c, "account already confirmed")
		default:
			response.InternalError(c, "code request failed")
		}
		return
	}

	response.Text(c, "Confirmation code sent")
}

// ForgotPasswordRequest 忘记密码请求
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPassword 签发重置令牌并发送重置邮件
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.UserAuthService.ForgotPassword(req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidEmail):
			response.NotFound(c, "email not registered")
		default:
			response.InternalError(c, "password reset request failed")
		}
		return
	}

	response.Text(c, "Reset email sent")
}

// ValidateTokenRequest 校验重置令牌请求
type ValidateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// ValidateToken 只读校验重置令牌，不消费。
// 客户端确认令牌有效后再提交新密码。
func (h *Handler) ValidateToken(c *gin.Context) {
	var req ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if _, err := h.TokenService.Validate(req.Token, constants.TokenPurposeReset); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			response.NotFound(c, "invalid token")
		case errors.Is(err, service.ErrTokenExpired):
			response.BadRequest(c, "token expired")
		default:
			response.InternalError(c, "token validation failed")
		}
		return
	}

	response.Text(c, "Token valid")
}

// UpdatePasswordRequest 凭重置令牌设置新密码请求
type UpdatePasswordRequest struct {
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// UpdatePassword 消费重置令牌并更新密码
func (h *Handler) UpdatePassword(c *gin.Context) {
	token := c.Param("token")
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if _, err := h.TokenService.ResetPassword(token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			response.NotFound(c, "invalid token")
		case errors.Is(err, service.ErrTokenExpired):
			response.BadRequest(c, "token expired")
		case errors.Is(err, service.ErrWeakPassword):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "password update failed")
		}
		return
	}

	response.Text(c, "Password updated")
}
