package curriculum

import (
	"strings"
	"testing"
	"unicode/utf8"

	"learnpath-go/internal/model"

	"github.com/stretchr/testify/assert"
)

func msg(role, content string) model.ChatMessage {
	return model.ChatMessage{Role: role, Content: content}
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, "No content yet", Summarize(nil))
	assert.Equal(t, "No content yet", Summarize([]model.ChatMessage{}))
}

func TestSummarize_UserOnlyMessages(t *testing.T) {
	messages := []model.ChatMessage{
		msg("user", "What is a pointer?"),
		msg("user", "Can you explain again?"),
	}
	// 摘要只记录"教了什么"，用户消息不计入
	assert.Equal(t, "No content yet", Summarize(messages))
}

func TestSummarize_LastTwoAssistantInOrder(t *testing.T) {
	messages := []model.ChatMessage{
		msg("assistant", "first answer"),
		msg("user", "ok"),
		msg("assistant", "second answer"),
		msg("user", "got it"),
		msg("assistant", "third answer"),
	}

	got := Summarize(messages)
	assert.Equal(t, "second answer ... third answer...", got)
}

func TestSummarize_SingleAssistantMessage(t *testing.T) {
	got := Summarize([]model.ChatMessage{msg("assistant", "only answer")})
	assert.Equal(t, "only answer...", got)
}

func TestSummarize_PerMessageTruncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := Summarize([]model.ChatMessage{msg("assistant", long)})
	// 单条先截断到 200，再追加 "..."
	assert.Equal(t, strings.Repeat("x", 200)+"...", got)
}

func TestSummarize_TruncationBound(t *testing.T) {
	tests := []struct {
		name     string
		messages []model.ChatMessage
	}{
		{"two long messages", []model.ChatMessage{
			msg("assistant", strings.Repeat("a", 1000)),
			msg("assistant", strings.Repeat("b", 1000)),
		}},
		{"many long messages", []model.ChatMessage{
			msg("assistant", strings.Repeat("a", 300)),
			msg("assistant", strings.Repeat("b", 300)),
			msg("assistant", strings.Repeat("c", 300)),
			msg("user", strings.Repeat("u", 9000)),
			msg("assistant", strings.Repeat("d", 300)),
		}},
		{"multibyte content", []model.ChatMessage{
			msg("assistant", strings.Repeat("学", 1000)),
			msg("assistant", strings.Repeat("习", 1000)),
		}},
		{"short messages", []model.ChatMessage{
			msg("assistant", "hi"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.messages)
			// 400 + 追加的 "..."（3 个字符）
			assert.LessOrEqual(t, utf8.RuneCountInString(got), 403)
			assert.True(t, strings.HasSuffix(got, "..."))
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	messages := []model.ChatMessage{
		msg("assistant", strings.Repeat("a", 250)),
		msg("assistant", strings.Repeat("b", 250)),
	}
	first := Summarize(messages)
	assert.Equal(t, first, Summarize(messages))
}
