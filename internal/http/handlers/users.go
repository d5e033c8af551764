package handlers

import (
	"errors"
	"strconv"

	"github.com/usercenter-next/internal/http/response"
	"github.com/usercenter-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListUsers 列出已确认的用户（公共投影，不含密码与确认标记）
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.UserService.ListConfirmed()
	if err != nil {
		response.InternalError(c, "user list failed")
		return
	}
	response.JSON(c, users)
}

// GetUser 按 ID 查询用户（公共投影）
func (h *Handler) GetUser(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	targetID, ok := parseUserParam(c)
	if !ok {
		return
	}

	user, err := h.UserService.GetPublicByID(targetID)
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

// UpdateUser 编辑用户，multipart 表单，头像文件可选。
// 可写字段为显式白名单：display_name、alias、status、头像。
func (h *Handler) UpdateUser(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}

	targetID, ok := parseUserParam(c)
	if !ok {
		return
	}

	var input service.UserUpdateInput
	if value, exists := c.GetPostForm("display_name"); exists {
		input.DisplayName = &value
	}
	if value, exists := c.GetPostForm("alias"); exists {
		input.Alias = &value
	}
	if value, exists := c.GetPostForm("status"); exists {
		input.Status = &value
	}

	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		path, err := h.UploadService.SaveAvatar(file)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUploadTooLarge):
				response.BadRequest(c, "avatar file too large")
			case errors.Is(err, service.ErrUploadTypeNotAllowed):
				response.BadRequest(c, "avatar file type not allowed")
			default:
				response.InternalError(c, "avatar upload failed")
			}
			return
		}
		input.AvatarPath = &path
	}

	user, err := h.UserService.UpdateUser(actorID, targetID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbiddenUpdate):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "user update failed")
		}
		return
	}

	response.JSON(c, user.ToPublic())
}

func parseUserParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	return uint(id), true
}
