// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"learnpath-go/internal/service"
	"learnpath-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 单用户本地应用，允许所有来源
	},
}

// chatFrame 是辅导 WebSocket 上的客户端帧。
// 普通帧携带 sessionId/nodeId/message；Type 为 "stop" 时中止当前流。
type chatFrame struct {
	Type      string `json:"type,omitempty"`
	SessionID string `json:"sessionId"`
	NodeID    string `json:"nodeId"`
	Message   string `json:"message"`
}

// ChatHandler 负责处理 WebSocket 辅导聊天连接。
type ChatHandler struct {
	chatService service.ChatService
	// 每连接停止标志
	stopFlags sync.Map // key: conn 指针串, value: bool
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Handle 处理一个传入的 WebSocket 连接：循环读取用户帧，
// 每帧触发一轮流式辅导响应；"stop" 指令置位停止标志中断当前流。
func (h *ChatHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	log.Infof("WebSocket 连接已建立: %s", c.ClientIP())

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var frame chatFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			writeChatError(conn, "无法解析消息")
			continue
		}

		// 停止指令：置位标志并确认；正在进行的流会在下一个分块处生效
		if frame.Type == "stop" {
			h.stopFlags.Store(sessionKey(conn), true)
			resp := map[string]interface{}{
				"type":      "stop",
				"message":   "响应已停止",
				"timestamp": time.Now().UnixMilli(),
			}
			b, _ := json.Marshal(resp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			continue
		}

		if frame.SessionID == "" || frame.NodeID == "" || frame.Message == "" {
			writeChatError(conn, "sessionId、nodeId 和 message 不能为空")
			continue
		}

		shouldStop := func() bool {
			v, ok := h.stopFlags.Load(sessionKey(conn))
			return ok && v.(bool)
		}
		// 清除上一轮的停止标志
		h.stopFlags.Delete(sessionKey(conn))

		err = h.chatService.StreamResponse(c.Request.Context(), frame.SessionID, frame.NodeID, frame.Message, conn, shouldStop)
		if err != nil {
			log.Errorf("处理流式响应失败: %v", err)
			writeChatError(conn, "AI服务暂时不可用，请稍后重试")
			// 错误时也发送 completion 通知，客户端据此复位输入状态
			resp := map[string]interface{}{
				"type":      "completion",
				"status":    "finished",
				"timestamp": time.Now().UnixMilli(),
			}
			cb, _ := json.Marshal(resp)
			_ = conn.WriteMessage(websocket.TextMessage, cb)
			break
		}
	}

	h.stopFlags.Delete(sessionKey(conn))
}

func writeChatError(conn *websocket.Conn, message string) {
	b, _ := json.Marshal(map[string]string{"error": message})
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func sessionKey(conn *websocket.Conn) string {
	return fmt.Sprintf("%p", conn)
}
