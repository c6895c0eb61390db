// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"learnpath-go/internal/model"
	"learnpath-go/internal/service"
	"learnpath-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SessionHandler 负责处理学习会话相关的 API 请求。
type SessionHandler struct {
	curriculumService service.CurriculumService
	sessionService    service.SessionService
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(curriculumService service.CurriculumService, sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		curriculumService: curriculumService,
		sessionService:    sessionService,
	}
}

// GenerateRequest 定义了课程生成 API 的请求体结构。
type GenerateRequest struct {
	Personalization model.Personalization `json:"personalization" binding:"required"`
}

// Generate 处理课程生成请求：调用 LLM 生成课程树并创建会话。
func (h *SessionHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Generate: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：personalization.topic 不能为空",
			"data":    nil,
		})
		return
	}

	session, err := h.curriculumService.GenerateCurriculum(c.Request.Context(), req.Personalization)
	if err != nil {
		log.Errorf("Generate: curriculum generation failed for topic %q: %v", req.Personalization.Topic, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    http.StatusBadGateway,
			"message": "课程生成失败，请稍后重试",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"sessionId":  session.ID,
			"curriculum": session.Curriculum,
		},
	})
}

// List 返回所有学习会话。
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to list sessions",
			"data":    nil,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": sessions})
}

// Get 返回指定的学习会话。
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.renderSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": session})
}

// Delete 删除指定的学习会话。
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessionService.DeleteSession(c.Request.Context(), c.Param("sessionId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to delete session",
			"data":    nil,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}

// UpdateStatusRequest 定义了节点状态更新 API 的请求体结构。
type UpdateStatusRequest struct {
	Status model.NodeStatus `json:"status" binding:"required"`
}

// UpdateNodeStatus 更新课程树中指定节点的学习状态。
func (h *SessionHandler) UpdateNodeStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：status 不能为空",
			"data":    nil,
		})
		return
	}

	session, err := h.sessionService.UpdateNodeStatus(c.Request.Context(), c.Param("sessionId"), c.Param("nodeId"), req.Status)
	if err != nil {
		h.renderSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": session})
}

// GetProgress 返回指定会话的整体学习进度。
func (h *SessionHandler) GetProgress(c *gin.Context) {
	progress, err := h.sessionService.GetProgress(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.renderSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": progress})
}

// GetNodeHistory 返回指定节点的辅导对话记录。
func (h *SessionHandler) GetNodeHistory(c *gin.Context) {
	history, err := h.sessionService.GetNodeHistory(c.Request.Context(), c.Param("sessionId"), c.Param("nodeId"))
	if err != nil {
		h.renderSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": history})
}

// GetLastInput 返回最近一次保存的入门输入。
func (h *SessionHandler) GetLastInput(c *gin.Context) {
	input, err := h.sessionService.GetLastInput(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to load saved input",
			"data":    nil,
		})
		return
	}
	// 从未保存过时 data 为 null，前端按"无预填"处理
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": input})
}

// renderSessionError 把 service 层的错误映射为统一的响应结构。
func (h *SessionHandler) renderSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "会话不存在", "data": nil})
	case errors.Is(err, service.ErrNodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "课程节点不存在", "data": nil})
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的节点状态", "data": nil})
	default:
		log.Error("session request failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "内部错误", "data": nil})
	}
}
