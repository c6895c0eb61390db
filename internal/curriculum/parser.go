package curriculum

import (
	"encoding/json"
	"strings"

	"learnpath-go/internal/model"
	"learnpath-go/pkg/idgen"
	"learnpath-go/pkg/log"
)

// rawNode 是 LLM 返回的课程 JSON 的原始形态。
// 约定形状：必填 title/description，可选 children（同构数组）。
type rawNode struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Children    []rawNode `json:"children"`
}

// ParseResponse 将 LLM 的原始文本响应转换为一棵合法的课程树。
// 真实模型经常把 JSON 包在代码围栏或解释性文字里，这里依次做：
// 去空白、剥掉 markdown 围栏、截取首个 '{' 到最后一个 '}' 的片段、严格 JSON 解析。
// 解析失败时记录日志并退回到固定的三分支默认课程，因此本函数永不失败，
// 下游总能拿到一棵满足结构不变式的树（退回时不保证内容质量）。
func ParseResponse(response string) *model.CurriculumNode {
	working := strings.TrimSpace(response)
	working = stripCodeFence(working)

	if start := strings.Index(working, "{"); start >= 0 {
		if end := strings.LastIndex(working, "}"); end > start {
			working = working[start : end+1]
		}
	}

	var raw rawNode
	if err := json.Unmarshal([]byte(working), &raw); err != nil {
		log.Warnf("课程 JSON 解析失败，使用默认课程结构: %v", err)
		raw = defaultCurriculum()
	}

	return transformNode(raw, 0, nil)
}

// stripCodeFence 剥去一对 markdown 代码围栏（可带 json 语言标记）。
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimPrefix(s, "\n")
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSuffix(s, "\n")
	}
	return s
}

// defaultCurriculum 是解析失败时的确定性兜底结构，每次都返回相同的标题。
func defaultCurriculum() rawNode {
	return rawNode{
		Title:       "Learning Path",
		Description: "Your personalized learning curriculum",
		Children: []rawNode{
			{Title: "Fundamentals", Description: "Core concepts and basics"},
			{Title: "Intermediate Concepts", Description: "Building on the fundamentals"},
			{Title: "Advanced Topics", Description: "Deep dive into complex areas"},
		},
	}
}

// transformNode 递归地把原始结构转换为 CurriculumNode：
// 为每个节点分配新生成的唯一 ID，深度按层 +1，缺失字段取占位默认值。
func transformNode(raw rawNode, depth int, parentID *string) *model.CurriculumNode {
	node := &model.CurriculumNode{
		ID:          idgen.New(),
		Title:       raw.Title,
		Description: raw.Description,
		Depth:       depth,
		ParentID:    parentID,
		Status:      model.StatusNotStarted,
		Children:    make([]*model.CurriculumNode, 0, len(raw.Children)),
	}
	if node.Title == "" {
		node.Title = "Untitled"
	}
	for _, child := range raw.Children {
		node.Children = append(node.Children, transformNode(child, depth+1, &node.ID))
	}
	return node
}
