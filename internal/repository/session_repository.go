// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"learnpath-go/internal/model"
	"learnpath-go/pkg/log"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const lastInputKey = "onboarding:last_input"

// SessionRepository 定义了学习会话记录的操作接口。
// 会话总是按 id 全量覆盖写入；查找未命中时返回 (nil, nil)，调用方必须检查。
type SessionRepository interface {
	Save(ctx context.Context, session *model.LearningSession) error
	FindByID(ctx context.Context, sessionID string) (*model.LearningSession, error)
	FindAll(ctx context.Context) ([]*model.LearningSession, error)
	Delete(ctx context.Context, sessionID string) error
	SaveLastInput(ctx context.Context, p model.Personalization) error
	GetLastInput(ctx context.Context) (*model.Personalization, error)
}

type sessionRepository struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
// MySQL 持久化会话记录，Redis 作为读缓存并保存最近一次的入门输入。
func NewSessionRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) SessionRepository {
	return &sessionRepository{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

func sessionCacheKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Save 将整个会话序列化后整体覆盖写入数据库，并刷新缓存。
func (r *sessionRepository) Save(ctx context.Context, session *model.LearningSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	record := model.SessionRecord{
		SessionID: session.ID,
		Payload:   string(payload),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save session record: %w", err)
	}

	// 缓存写入失败不影响持久化结果，只记录
	if err := r.rdb.Set(ctx, sessionCacheKey(session.ID), payload, r.cacheTTL).Err(); err != nil {
		log.Warnf("Failed to cache session %s: %v", session.ID, err)
	}
	return nil
}

// FindByID 优先从 Redis 缓存读取会话，未命中时回源 MySQL 并回填缓存。
// 记录不存在或存储的 JSON 损坏时返回 (nil, nil)。
func (r *sessionRepository) FindByID(ctx context.Context, sessionID string) (*model.LearningSession, error) {
	cached, err := r.rdb.Get(ctx, sessionCacheKey(sessionID)).Result()
	if err == nil {
		var session model.LearningSession
		if err := json.Unmarshal([]byte(cached), &session); err == nil {
			return &session, nil
		}
		log.Warnf("Corrupt cached session %s, falling back to database", sessionID)
	} else if err != redis.Nil {
		log.Warnf("Redis unavailable for session %s, falling back to database: %v", sessionID, err)
	}

	var record model.SessionRecord
	if err := r.db.WithContext(ctx).First(&record, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session record: %w", err)
	}

	var session model.LearningSession
	if err := json.Unmarshal([]byte(record.Payload), &session); err != nil {
		// 损坏的存量数据按"无数据"处理
		log.Errorf("Corrupt stored session %s: %v", sessionID, err)
		return nil, nil
	}

	if err := r.rdb.Set(ctx, sessionCacheKey(sessionID), record.Payload, r.cacheTTL).Err(); err != nil {
		log.Warnf("Failed to backfill session cache %s: %v", sessionID, err)
	}
	return &session, nil
}

// FindAll 返回所有会话，按最近更新排序；损坏的记录跳过。
func (r *sessionRepository) FindAll(ctx context.Context) ([]*model.LearningSession, error) {
	var records []model.SessionRecord
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}

	sessions := make([]*model.LearningSession, 0, len(records))
	for _, record := range records {
		var session model.LearningSession
		if err := json.Unmarshal([]byte(record.Payload), &session); err != nil {
			log.Warnf("Skipping corrupt stored session %s: %v", record.SessionID, err)
			continue
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

// Delete 删除会话记录及其缓存。
func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).Delete(&model.SessionRecord{}, "session_id = ?", sessionID).Error; err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	if err := r.rdb.Del(ctx, sessionCacheKey(sessionID)).Err(); err != nil {
		log.Warnf("Failed to evict session cache %s: %v", sessionID, err)
	}
	return nil
}

// SaveLastInput 保存最近一次入门表单输入，便于快速重新生成课程。
func (r *sessionRepository) SaveLastInput(ctx context.Context, p model.Personalization) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal last input: %w", err)
	}
	if err := r.rdb.Set(ctx, lastInputKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save last input: %w", err)
	}
	return nil
}

// GetLastInput 读取最近保存的入门输入；不存在时返回 (nil, nil)。
func (r *sessionRepository) GetLastInput(ctx context.Context) (*model.Personalization, error) {
	data, err := r.rdb.Get(ctx, lastInputKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last input: %w", err)
	}
	var p model.Personalization
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		log.Warnf("Corrupt saved last input: %v", err)
		return nil, nil
	}
	return &p, nil
}
