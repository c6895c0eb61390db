// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"time"

	"learnpath-go/internal/curriculum"
	"learnpath-go/internal/model"
	"learnpath-go/internal/repository"
)

// ErrSessionNotFound 表示指定的学习会话不存在。
var ErrSessionNotFound = errors.New("session not found")

// ErrNodeNotFound 表示课程树中不存在指定的节点。
var ErrNodeNotFound = errors.New("curriculum node not found")

// ErrInvalidStatus 表示传入的节点状态不是已定义的取值。
var ErrInvalidStatus = errors.New("invalid node status")

// SessionService 定义了学习会话的查询与变更接口。
type SessionService interface {
	GetSession(ctx context.Context, sessionID string) (*model.LearningSession, error)
	ListSessions(ctx context.Context) ([]*model.LearningSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
	// UpdateNodeStatus 以写时复制方式替换目标节点的状态并整体重写会话。
	// 未知节点 id 时树保持不变，但会话仍会以新的 UpdatedAt 重写（幂等）。
	UpdateNodeStatus(ctx context.Context, sessionID, nodeID string, status model.NodeStatus) (*model.LearningSession, error)
	GetProgress(ctx context.Context, sessionID string) (*model.Progress, error)
	GetNodeHistory(ctx context.Context, sessionID, nodeID string) (*model.NodeChatHistory, error)
	GetLastInput(ctx context.Context) (*model.Personalization, error)
}

type sessionService struct {
	repo repository.SessionRepository
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(repo repository.SessionRepository) SessionService {
	return &sessionService{repo: repo}
}

// GetSession 返回指定会话，不存在时返回 ErrSessionNotFound。
func (s *sessionService) GetSession(ctx context.Context, sessionID string) (*model.LearningSession, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ListSessions 返回全部会话，按最近更新排序。
func (s *sessionService) ListSessions(ctx context.Context) ([]*model.LearningSession, error) {
	return s.repo.FindAll(ctx)
}

// DeleteSession 删除指定会话。
func (s *sessionService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

// UpdateNodeStatus 更新目标节点的学习状态并保存会话。
func (s *sessionService) UpdateNodeStatus(ctx context.Context, sessionID, nodeID string, status model.NodeStatus) (*model.LearningSession, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Curriculum = curriculum.UpdateStatus(session.Curriculum, nodeID, status)
	session.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetProgress 计算指定会话课程树的整体进度。
func (s *sessionService) GetProgress(ctx context.Context, sessionID string) (*model.Progress, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	progress := curriculum.ComputeProgress(session.Curriculum)
	return &progress, nil
}

// GetNodeHistory 返回指定节点的对话记录；节点存在但尚未对话时返回空记录。
func (s *sessionService) GetNodeHistory(ctx context.Context, sessionID, nodeID string) (*model.NodeChatHistory, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if curriculum.FindByID(session.Curriculum, nodeID) == nil {
		return nil, ErrNodeNotFound
	}
	return session.History(nodeID), nil
}

// GetLastInput 返回最近一次保存的入门输入；从未保存时返回 (nil, nil)。
func (s *sessionService) GetLastInput(ctx context.Context) (*model.Personalization, error) {
	return s.repo.GetLastInput(ctx)
}
