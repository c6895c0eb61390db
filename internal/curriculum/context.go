package curriculum

import (
	"fmt"
	"strings"

	"learnpath-go/internal/model"
)

// BuildContext 为当前节点组装分层教学上下文：先是所有祖先（根到父的顺序）、
// 再是直接兄弟（数组顺序）的对话摘要，每个条目一行，换行拼接。
// 只收录至少有一条消息的对话记录；没有任何可用上下文时返回空串。
// 已缓存的 Summary 优先使用，否则按需重新计算，且不回写到记录中。
// 输出仅作为辅导 system prompt 的参考文本，单条长度受摘要上界约束。
func BuildContext(root, current *model.CurriculumNode, histories map[string]*model.NodeChatHistory) string {
	if root == nil || current == nil {
		return ""
	}
	var lines []string

	for _, ancestor := range AncestorsOf(root, current.ID) {
		if digest, ok := digestFor(histories, ancestor.ID); ok {
			lines = append(lines, fmt.Sprintf("[%s]: %s", ancestor.Title, digest))
		}
	}

	for _, sibling := range SiblingsOf(root, current.ID) {
		if digest, ok := digestFor(histories, sibling.ID); ok {
			lines = append(lines, fmt.Sprintf("[Sibling: %s]: %s", sibling.Title, digest))
		}
	}

	return strings.Join(lines, "\n")
}

// digestFor 返回指定节点的摘要；对话不存在或没有消息时返回 ok=false。
func digestFor(histories map[string]*model.NodeChatHistory, nodeID string) (string, bool) {
	history, ok := histories[nodeID]
	if !ok || history == nil || len(history.Messages) == 0 {
		return "", false
	}
	if history.Summary != "" {
		return history.Summary, true
	}
	return Summarize(history.Messages), true
}
