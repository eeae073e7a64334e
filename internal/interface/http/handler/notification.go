package handler

import (
	"github.com/gin-gonic/gin"

	appnotification "github.com/xiebiao/library/internal/application/notification"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// NotificationHandler 通知HTTP处理器
type NotificationHandler struct {
	listUseCase        *appnotification.ListNotificationsUseCase
	markAllReadUseCase *appnotification.MarkAllReadUseCase
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(
	listUseCase *appnotification.ListNotificationsUseCase,
	markAllReadUseCase *appnotification.MarkAllReadUseCase,
) *NotificationHandler {
	return &NotificationHandler{
		listUseCase:        listUseCase,
		markAllReadUseCase: markAllReadUseCase,
	}
}

// ListNotifications 查询通知
// @Summary      查询通知
// @Description  按追加顺序返回当前用户的通知;unread=true时只返回未读
// @Tags         通知
// @Produce      json
// @Security     BearerAuth
// @Param        unread query bool false "只看未读"
// @Success      200 {object} response.Response{data=[]appnotification.NotificationView}
// @Router       /api/v1/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	unreadOnly := c.Query("unread") == "true"

	result, err := h.listUseCase.Execute(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// MarkAllRead 全部标记已读
// @Summary      全部标记已读
// @Description  把当前用户的全部未读通知标记为已读,返回标记数量(幂等)
// @Tags         通知
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appnotification.MarkAllReadResponse}
// @Router       /api/v1/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.markAllReadUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
