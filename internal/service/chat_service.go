// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"learnpath-go/internal/curriculum"
	"learnpath-go/internal/model"
	"learnpath-go/internal/prompt"
	"learnpath-go/internal/repository"
	"learnpath-go/pkg/idgen"
	"learnpath-go/pkg/llm"
	"learnpath-go/pkg/log"

	"github.com/gorilla/websocket"
)

// ChatService 定义了辅导对话的业务接口。
type ChatService interface {
	// StreamResponse 处理一轮节点辅导：组装分层上下文、把 LLM 的流式分块
	// 包装成 {"chunk":...} 帧按到达顺序写入 writer、发送完成通知，
	// 并在完成后把这一轮问答追加到会话的节点对话记录中。
	StreamResponse(ctx context.Context, sessionID, nodeID, message string, writer llm.MessageWriter, shouldStop func() bool) error
	// StreamOnboarding 处理入门引导对话的一轮流式响应，不涉及任何会话状态。
	StreamOnboarding(ctx context.Context, messages []model.ChatMessage, writer llm.MessageWriter) error
}

type chatService struct {
	llmClient   llm.Client
	sessionRepo repository.SessionRepository
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(llmClient llm.Client, sessionRepo repository.SessionRepository) ChatService {
	return &chatService{llmClient: llmClient, sessionRepo: sessionRepo}
}

// StreamResponse 协调一轮节点辅导并流式传输 LLM 响应。
func (s *chatService) StreamResponse(ctx context.Context, sessionID, nodeID, message string, writer llm.MessageWriter, shouldStop func() bool) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	node := curriculum.FindByID(session.Curriculum, nodeID)
	if node == nil {
		return ErrNodeNotFound
	}

	// 1. 组装 system prompt：学习路径 + 祖先/兄弟对话摘要
	systemMsg := prompt.NodeChatSystem(session.Personalization, node, session.Curriculum, session.ChatHistories)

	// 2. system + 节点历史 + 本轮用户输入
	history := session.History(nodeID)
	messages := make([]llm.Message, 0, len(history.Messages)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemMsg})
	for _, m := range history.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: message})

	// 拦截 writer 以捕获完整答案，并把分块包装为 JSON 帧
	answerBuilder := &strings.Builder{}
	interceptor := &chunkWriterInterceptor{dst: writer, answer: answerBuilder, shouldStop: shouldStop}

	// 3. 流式转发 LLM 响应，分块按到达顺序写出
	if err := s.llmClient.StreamChatMessages(ctx, messages, nil, interceptor); err != nil {
		return err
	}

	// 4. 发送完成通知，并把这一轮问答整体重写进会话
	sendCompletion(writer)
	fullAnswer := answerBuilder.String()
	if len(fullAnswer) > 0 {
		// 使用后台上下文：即使原始请求已取消，也要保存成功生成的答案
		if err := s.appendTurn(context.Background(), sessionID, nodeID, message, fullAnswer); err != nil {
			// 只记录错误，不返回给客户端，流式响应已经完成
			log.Errorf("Failed to save chat turn for session %s node %s: %v", sessionID, nodeID, err)
		}
	}
	return nil
}

// StreamOnboarding 以入门引导 system prompt 流式转发一轮对话。
func (s *chatService) StreamOnboarding(ctx context.Context, messages []model.ChatMessage, writer llm.MessageWriter) error {
	llmMsgs := make([]llm.Message, 0, len(messages)+1)
	llmMsgs = append(llmMsgs, llm.Message{Role: "system", Content: prompt.OnboardingSystem()})
	for _, m := range messages {
		llmMsgs = append(llmMsgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	return s.llmClient.StreamChatMessages(ctx, llmMsgs, nil, writer)
}

// appendTurn 重新加载会话（取最新版本），追加这一轮的问答并整体保存。
func (s *chatService) appendTurn(ctx context.Context, sessionID, nodeID, question, answer string) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	session.AppendMessage(nodeID, model.ChatMessage{
		ID:        idgen.New(),
		Role:      "user",
		Content:   question,
		Timestamp: time.Now(),
	})
	session.AppendMessage(nodeID, model.ChatMessage{
		ID:        idgen.New(),
		Role:      "assistant",
		Content:   answer,
		Timestamp: time.Now(),
	})
	session.UpdatedAt = time.Now()

	return s.sessionRepo.Save(ctx, session)
}

// chunkWriterInterceptor 封装下游 writer，捕获完整答案并包装分块帧。
type chunkWriterInterceptor struct {
	dst        llm.MessageWriter
	answer     *strings.Builder
	shouldStop func() bool
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *chunkWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		// 停止标志生效：跳过下发
		return nil
	}
	w.answer.Write(data)
	// 将原始分块包装成 {"chunk":"..."}
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.dst.WriteMessage(messageType, b)
}

// sendCompletion 发送完成通知 JSON 帧。
func sendCompletion(writer llm.MessageWriter) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"timestamp": time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(notif)
	_ = writer.WriteMessage(websocket.TextMessage, b)
}
