package curriculum

import (
	"strings"

	"learnpath-go/internal/model"
)

const (
	// perMessageLimit 是摘要中单条消息的最大长度（按 rune 计）。
	perMessageLimit = 200
	// summaryLimit 是拼接后摘要的最大长度（按 rune 计），之后追加 "..."。
	summaryLimit = 400
	// emptySummary 在没有任何 assistant 消息时返回。
	emptySummary = "No content yet"
)

// Summarize 把一个节点的消息历史压缩为有界长度的摘要，供其他节点的
// 辅导上下文复用。策略：只取 assistant 消息（摘要应当记录"教了什么"而非
// "问了什么"），保留原顺序的最后两条，每条截断到 200 个字符，以 " ... "
// 拼接后再整体截断到 400 个字符并追加 "..."。
// 这是一个有损且确定性的摘要，只用于在后续辅导中保持语气、避免重复。
func Summarize(messages []model.ChatMessage) string {
	var taught []string
	for _, m := range messages {
		if m.Role == "assistant" {
			taught = append(taught, truncateRunes(m.Content, perMessageLimit))
		}
	}
	if len(taught) == 0 {
		return emptySummary
	}
	if len(taught) > 2 {
		taught = taught[len(taught)-2:]
	}
	joined := strings.Join(taught, " ... ")
	return truncateRunes(joined, summaryLimit) + "..."
}

// truncateRunes 将字符串按 rune 截断到 limit 个字符，避免切坏 UTF-8 序列。
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
