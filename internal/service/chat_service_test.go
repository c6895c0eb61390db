package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"learnpath-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSession 往仓库里放一个带两层课程树的会话并返回它。
func seedSession(t *testing.T, repo *memSessionRepo) *model.LearningSession {
	t.Helper()
	rootID := "root"
	now := time.Now()
	session := &model.LearningSession{
		ID:              "sess-1",
		Personalization: testPersonalization(),
		Curriculum: &model.CurriculumNode{
			ID: "root", Title: "Go concurrency", Depth: 0, Status: model.StatusNotStarted,
			Children: []*model.CurriculumNode{
				{ID: "goroutines", Title: "Goroutines", Depth: 1, ParentID: &rootID, Status: model.StatusNotStarted, Children: []*model.CurriculumNode{}},
				{ID: "channels", Title: "Channels", Depth: 1, ParentID: &rootID, Status: model.StatusNotStarted, Children: []*model.CurriculumNode{}},
			},
		},
		ChatHistories: map[string]*model.NodeChatHistory{
			"goroutines": {
				NodeID: "goroutines",
				Messages: []model.ChatMessage{
					{ID: "m1", Role: "user", Content: "teach me goroutines", Timestamp: now},
					{ID: "m2", Role: "assistant", Content: "a goroutine is a lightweight thread", Timestamp: now},
				},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Save(context.Background(), session))
	return session
}

func decodeFrame(t *testing.T, frame []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(frame, &m))
	return m
}

func TestStreamResponse(t *testing.T) {
	repo := newMemSessionRepo()
	seedSession(t, repo)
	llmFake := &fakeLLM{streamChunks: []string{"Chan", "nels ", "connect goroutines."}}
	svc := NewChatService(llmFake, repo)
	writer := &captureWriter{}

	err := svc.StreamResponse(context.Background(), "sess-1", "channels", "what is a channel?", writer, nil)
	require.NoError(t, err)

	// 分块按到达顺序包装为 {"chunk":...}，最后一帧是完成通知
	frames := writer.all()
	require.Len(t, frames, 4)
	var streamed string
	for _, frame := range frames[:3] {
		m := decodeFrame(t, frame)
		streamed += m["chunk"].(string)
	}
	assert.Equal(t, "Channels connect goroutines.", streamed)
	completion := decodeFrame(t, frames[3])
	assert.Equal(t, "completion", completion["type"])
	assert.Equal(t, "finished", completion["status"])

	// 发给 LLM 的消息：system 在前，随后是节点历史，最后是本轮用户输入
	require.Len(t, llmFake.streamCalls, 1)
	sent := llmFake.streamCalls[0]
	require.Len(t, sent, 2) // channels 节点没有历史：system + user
	assert.Equal(t, "system", sent[0].Role)
	assert.Contains(t, sent[0].Content, "Channels")
	// 兄弟节点 goroutines 的摘要进入了分层上下文
	assert.Contains(t, sent[0].Content, "[Sibling: Goroutines]")
	assert.Contains(t, sent[0].Content, "a goroutine is a lightweight thread")
	assert.Equal(t, "user", sent[1].Role)
	assert.Equal(t, "what is a channel?", sent[1].Content)

	// 这一轮问答已整体写回会话
	stored, err := repo.FindByID(context.Background(), "sess-1")
	require.NoError(t, err)
	history := stored.History("channels")
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "user", history.Messages[0].Role)
	assert.Equal(t, "what is a channel?", history.Messages[0].Content)
	assert.Equal(t, "assistant", history.Messages[1].Role)
	assert.Equal(t, "Channels connect goroutines.", history.Messages[1].Content)
	assert.NotEmpty(t, history.Messages[0].ID)
	assert.NotEqual(t, history.Messages[0].ID, history.Messages[1].ID)
}

func TestStreamResponse_IncludesNodeHistory(t *testing.T) {
	repo := newMemSessionRepo()
	seedSession(t, repo)
	llmFake := &fakeLLM{streamChunks: []string{"more on goroutines"}}
	svc := NewChatService(llmFake, repo)

	err := svc.StreamResponse(context.Background(), "sess-1", "goroutines", "go on", &captureWriter{}, nil)
	require.NoError(t, err)

	sent := llmFake.streamCalls[0]
	// system + 既有两条历史 + 本轮用户输入
	require.Len(t, sent, 4)
	assert.Equal(t, "teach me goroutines", sent[1].Content)
	assert.Equal(t, "a goroutine is a lightweight thread", sent[2].Content)
	assert.Equal(t, "go on", sent[3].Content)
}

func TestStreamResponse_SessionNotFound(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewChatService(&fakeLLM{}, repo)

	err := svc.StreamResponse(context.Background(), "missing", "node", "hi", &captureWriter{}, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStreamResponse_NodeNotFound(t *testing.T) {
	repo := newMemSessionRepo()
	seedSession(t, repo)
	svc := NewChatService(&fakeLLM{}, repo)

	err := svc.StreamResponse(context.Background(), "sess-1", "missing-node", "hi", &captureWriter{}, nil)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestStreamResponse_ProviderErrorPropagates(t *testing.T) {
	repo := newMemSessionRepo()
	seedSession(t, repo)
	svc := NewChatService(&fakeLLM{streamErr: errProvider}, repo)

	err := svc.StreamResponse(context.Background(), "sess-1", "channels", "hi", &captureWriter{}, nil)
	require.ErrorIs(t, err, errProvider)

	// 失败的轮次不写入会话
	stored, _ := repo.FindByID(context.Background(), "sess-1")
	assert.Empty(t, stored.History("channels").Messages)
}

func TestStreamResponse_StopSkipsDelivery(t *testing.T) {
	repo := newMemSessionRepo()
	seedSession(t, repo)
	llmFake := &fakeLLM{streamChunks: []string{"should ", "not ", "arrive"}}
	svc := NewChatService(llmFake, repo)
	writer := &captureWriter{}

	err := svc.StreamResponse(context.Background(), "sess-1", "channels", "hi", writer, func() bool { return true })
	require.NoError(t, err)

	// 停止标志生效：没有 chunk 帧，只有完成通知
	frames := writer.all()
	require.Len(t, frames, 1)
	assert.Equal(t, "completion", decodeFrame(t, frames[0])["type"])

	// 没有已生成内容，这一轮不写入会话
	stored, _ := repo.FindByID(context.Background(), "sess-1")
	assert.Empty(t, stored.History("channels").Messages)
}

func TestStreamOnboarding(t *testing.T) {
	llmFake := &fakeLLM{streamChunks: []string{"What would ", "you like to learn?"}}
	svc := NewChatService(llmFake, newMemSessionRepo())
	writer := &captureWriter{}

	err := svc.StreamOnboarding(context.Background(), []model.ChatMessage{
		{Role: "user", Content: "hi"},
	}, writer)
	require.NoError(t, err)

	// 入门引导直接转发原始分块，不做 JSON 包装
	frames := writer.all()
	require.Len(t, frames, 2)
	assert.Equal(t, "What would ", string(frames[0]))
	assert.Equal(t, "you like to learn?", string(frames[1]))

	sent := llmFake.streamCalls[0]
	require.Len(t, sent, 2)
	assert.Equal(t, "system", sent[0].Role)
	assert.Equal(t, "user", sent[1].Role)
}
