// Package model 包含了应用的数据模型定义。
package model

// NodeStatus 表示课程节点的学习状态。
type NodeStatus string

const (
	// StatusNotStarted 表示节点尚未开始学习（新建节点的默认状态）。
	StatusNotStarted NodeStatus = "not-started"
	// StatusInProgress 表示节点正在学习中。
	StatusInProgress NodeStatus = "in-progress"
	// StatusCompleted 表示节点已完成学习。
	StatusCompleted NodeStatus = "completed"
)

// Valid 报告该状态是否是三个已定义的取值之一。
func (s NodeStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// CurriculumNode 代表课程树中任意深度的一个主题节点。
// 根节点 Depth 为 0 且 ParentID 为空；每个非根节点的 Depth 等于父节点 Depth+1。
// 父节点通过 Children 切片拥有子节点；ParentID 仅作反向查找用，不构成所有权边。
type CurriculumNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Depth       int    `json:"depth"`
	// ParentID 指向父节点的 ID。使用指针以接受空值，表示根节点。
	ParentID *string           `json:"parentId"`
	Status   NodeStatus        `json:"status"`
	Children []*CurriculumNode `json:"children"`
}

// IsLeaf 报告该节点是否没有子主题。
func (n *CurriculumNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Personalization 是生成课程时使用的用户输入的不可变快照。
type Personalization struct {
	Name           string `json:"name"`
	Topic          string `json:"topic" binding:"required"`
	Background     string `json:"background"`
	KnowledgeLevel string `json:"knowledgeLevel"` // complete-beginner / some-familiarity / intermediate / advanced
	LearningGoals  string `json:"learningGoals"`
	PriorKnowledge string `json:"priorKnowledge,omitempty"`
}

// Progress 汇总整棵课程树的学习进度统计。
type Progress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Percentage int `json:"percentage"`
}
