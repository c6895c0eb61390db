// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"time"

	"learnpath-go/internal/curriculum"
	"learnpath-go/internal/model"
	"learnpath-go/internal/prompt"
	"learnpath-go/internal/repository"
	"learnpath-go/pkg/idgen"
	"learnpath-go/pkg/llm"
	"learnpath-go/pkg/log"
)

// CurriculumService 定义了课程生成的业务接口。
type CurriculumService interface {
	// GenerateCurriculum 调用 LLM 生成课程树并创建一个新的学习会话。
	// 上游传输失败直接向上传播（由表示层负责提示与重试）；
	// 响应内容不合法时解析器会退回到默认课程结构，不会失败。
	GenerateCurriculum(ctx context.Context, p model.Personalization) (*model.LearningSession, error)
}

type curriculumService struct {
	llmClient   llm.Client
	sessionRepo repository.SessionRepository
}

// NewCurriculumService 创建一个新的 CurriculumService 实例。
func NewCurriculumService(llmClient llm.Client, sessionRepo repository.SessionRepository) CurriculumService {
	return &curriculumService{llmClient: llmClient, sessionRepo: sessionRepo}
}

// GenerateCurriculum 实现完整的生成流程：prompt → LLM → 解析 → 建会话 → 落库。
func (s *curriculumService) GenerateCurriculum(ctx context.Context, p model.Personalization) (*model.LearningSession, error) {
	generationPrompt := prompt.CurriculumGeneration(p)

	response, err := s.llmClient.Complete(ctx, []llm.Message{
		{Role: "user", Content: generationPrompt},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate curriculum: %w", err)
	}

	tree := curriculum.ParseResponse(response)

	now := time.Now()
	session := &model.LearningSession{
		ID:              idgen.New(),
		Personalization: p,
		Curriculum:      tree,
		ChatHistories:   make(map[string]*model.NodeChatHistory),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// 存储不可用不阻断生成结果：会话仍返回给调用方，缺失的只是持久化
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		log.Errorf("Failed to persist session %s: %v", session.ID, err)
	}
	if err := s.sessionRepo.SaveLastInput(ctx, p); err != nil {
		log.Warnf("Failed to save last onboarding input: %v", err)
	}

	log.Infof("Generated curriculum %q with %d nodes (session %s)",
		tree.Title, curriculum.CountNodes(tree), session.ID)
	return session, nil
}
