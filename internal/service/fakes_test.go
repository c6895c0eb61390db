package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"learnpath-go/internal/model"
	"learnpath-go/pkg/llm"

	"github.com/gorilla/websocket"
)

// fakeLLM 是脚本化的 llm.Client 测试替身。
type fakeLLM struct {
	completeResponse string
	completeErr      error
	streamChunks     []string
	streamErr        error

	mu            sync.Mutex
	completeCalls [][]llm.Message
	streamCalls   [][]llm.Message
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	f.mu.Lock()
	f.completeCalls = append(f.completeCalls, messages)
	f.mu.Unlock()
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeResponse, nil
}

func (f *fakeLLM) StreamChatMessages(_ context.Context, messages []llm.Message, _ *llm.GenerationParams, writer llm.MessageWriter) error {
	f.mu.Lock()
	f.streamCalls = append(f.streamCalls, messages)
	f.mu.Unlock()
	if f.streamErr != nil {
		return f.streamErr
	}
	for _, chunk := range f.streamChunks {
		if err := writer.WriteMessage(websocket.TextMessage, []byte(chunk)); err != nil {
			return err
		}
	}
	return nil
}

// memSessionRepo 是内存版的 repository.SessionRepository。
// 读写都经过 JSON 序列化，模拟真实存储的整体覆盖写入语义。
type memSessionRepo struct {
	mu        sync.Mutex
	records   map[string]string
	lastInput *model.Personalization
	saveErr   error
	findErr   error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{records: make(map[string]string)}
}

func (r *memSessionRepo) Save(_ context.Context, session *model.LearningSession) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.records[session.ID] = string(payload)
	r.mu.Unlock()
	return nil
}

func (r *memSessionRepo) FindByID(_ context.Context, sessionID string) (*model.LearningSession, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	payload, ok := r.records[sessionID]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var session model.LearningSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *memSessionRepo) FindAll(_ context.Context) ([]*model.LearningSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*model.LearningSession, 0, len(r.records))
	for _, payload := range r.records {
		var session model.LearningSession
		if err := json.Unmarshal([]byte(payload), &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

func (r *memSessionRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.records, sessionID)
	r.mu.Unlock()
	return nil
}

func (r *memSessionRepo) SaveLastInput(_ context.Context, p model.Personalization) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	r.lastInput = &p
	r.mu.Unlock()
	return nil
}

func (r *memSessionRepo) GetLastInput(_ context.Context) (*model.Personalization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastInput, nil
}

// captureWriter 收集写出的全部帧。
type captureWriter struct {
	mu     sync.Mutex
	frames [][]byte
}

func (w *captureWriter) WriteMessage(_ int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	w.frames = append(w.frames, cp)
	return nil
}

func (w *captureWriter) all() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]byte(nil), w.frames...)
}

var errProvider = errors.New("provider unavailable")
