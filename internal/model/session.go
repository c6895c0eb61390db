// Package model 包含了应用的数据模型定义。
package model

import (
	"time"
)

// ChatMessage 代表一条辅导对话消息。
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NodeChatHistory 存储某个课程节点的完整对话记录。
// Summary 是可选的缓存摘要；上下文组装时若为空则按需重新计算，不会回写。
type NodeChatHistory struct {
	NodeID   string        `json:"nodeId"`
	Messages []ChatMessage `json:"messages"`
	Summary  string        `json:"summary,omitempty"`
}

// LearningSession 是持久化的基本单元：一个用户的完整学习记录。
// 每次变更（状态更新、新消息）都会整体重写该记录，并刷新 UpdatedAt。
type LearningSession struct {
	ID              string                      `json:"id"`
	Personalization Personalization             `json:"personalization"`
	Curriculum      *CurriculumNode             `json:"curriculum"`
	ChatHistories   map[string]*NodeChatHistory `json:"chatHistories"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// History 返回指定节点的对话记录；不存在时返回一个空记录（不会写入 session）。
func (s *LearningSession) History(nodeID string) *NodeChatHistory {
	if h, ok := s.ChatHistories[nodeID]; ok && h != nil {
		return h
	}
	return &NodeChatHistory{NodeID: nodeID, Messages: []ChatMessage{}}
}

// AppendMessage 将一条消息追加到指定节点的对话记录中。
func (s *LearningSession) AppendMessage(nodeID string, msg ChatMessage) {
	if s.ChatHistories == nil {
		s.ChatHistories = make(map[string]*NodeChatHistory)
	}
	h, ok := s.ChatHistories[nodeID]
	if !ok || h == nil {
		h = &NodeChatHistory{NodeID: nodeID, Messages: []ChatMessage{}}
		s.ChatHistories[nodeID] = h
	}
	h.Messages = append(h.Messages, msg)
}

// SessionRecord 对应于数据库中的 'learning_sessions' 表。
// 会话以 JSON 整体存储，按 session id 全量覆盖写入。
type SessionRecord struct {
	SessionID string    `gorm:"type:varchar(64);primaryKey" json:"sessionId"`
	Payload   string    `gorm:"type:longtext;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (SessionRecord) TableName() string {
	return "learning_sessions"
}
