// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"learnpath-go/internal/model"
	"learnpath-go/internal/service"
	"learnpath-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// OnboardingHandler 负责处理课程生成之前的入门引导对话。
type OnboardingHandler struct {
	chatService service.ChatService
}

// NewOnboardingHandler 创建一个新的 OnboardingHandler 实例。
func NewOnboardingHandler(chatService service.ChatService) *OnboardingHandler {
	return &OnboardingHandler{chatService: chatService}
}

// OnboardingChatRequest 定义了入门引导对话 API 的请求体结构。
type OnboardingChatRequest struct {
	Messages []model.ChatMessage `json:"messages" binding:"required"`
}

// Chat 处理一轮入门引导对话，以 chunked 纯文本流式返回响应。
func (h *OnboardingHandler) Chat(c *gin.Context) {
	var req OnboardingChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：messages 不能为空",
			"data":    nil,
		})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Transfer-Encoding", "chunked")
	c.Status(http.StatusOK)

	writer := &flushWriter{c: c}
	if err := h.chatService.StreamOnboarding(c.Request.Context(), req.Messages, writer); err != nil {
		// 头已写出，无法再返回 JSON 错误，记录后直接断流
		log.Errorf("入门引导流式响应失败: %v", err)
	}
}

// flushWriter 把 gin 的响应流适配为 llm.MessageWriter，每个分块立即 flush。
type flushWriter struct {
	c *gin.Context
}

// WriteMessage 满足 llm.MessageWriter 接口；messageType 对 HTTP 流无意义，忽略。
func (w *flushWriter) WriteMessage(_ int, data []byte) error {
	if _, err := w.c.Writer.Write(data); err != nil {
		return err
	}
	w.c.Writer.Flush()
	return nil
}
