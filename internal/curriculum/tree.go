// Package curriculum 实现课程树的核心算法：遍历、上下文组装、解析与进度统计。
// 本包内的函数都是纯函数，不产生副作用，可以在每次渲染或每轮对话中反复调用。
package curriculum

import (
	"learnpath-go/internal/model"
)

// FindByID 在树中做深度优先（前序）搜索，返回第一个 ID 匹配的节点。
// 未找到时返回 nil，调用方必须检查。
func FindByID(root *model.CurriculumNode, id string) *model.CurriculumNode {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := FindByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// PathToNode 返回从根到目标节点（含两端）的路径；未找到时返回空切片。
// 搜索按子节点数组顺序进行，命中即停。
func PathToNode(root *model.CurriculumNode, id string) []*model.CurriculumNode {
	if root == nil {
		return nil
	}
	var path []*model.CurriculumNode
	var search func(node *model.CurriculumNode, current []*model.CurriculumNode) bool
	search = func(node *model.CurriculumNode, current []*model.CurriculumNode) bool {
		next := append(current, node)
		if node.ID == id {
			path = append(path, next...)
			return true
		}
		for _, child := range node.Children {
			if search(child, next) {
				return true
			}
		}
		return false
	}
	search(root, nil)
	return path
}

// AncestorsOf 返回目标节点的所有祖先（根到父节点的顺序）。
// 目标是根节点或不存在时返回空切片。
func AncestorsOf(root *model.CurriculumNode, id string) []*model.CurriculumNode {
	path := PathToNode(root, id)
	if len(path) == 0 {
		return nil
	}
	return path[:len(path)-1]
}

// SiblingsOf 返回目标节点在其父节点下的兄弟节点（不含自身，保持数组顺序）。
// 根节点没有父节点，返回空切片。
func SiblingsOf(root *model.CurriculumNode, id string) []*model.CurriculumNode {
	path := PathToNode(root, id)
	if len(path) < 2 {
		return nil
	}
	parent := path[len(path)-2]
	siblings := make([]*model.CurriculumNode, 0, len(parent.Children))
	for _, child := range parent.Children {
		if child.ID != id {
			siblings = append(siblings, child)
		}
	}
	return siblings
}

// Flatten 前序展开整棵树：根在前，每个子节点的完整子树先于下一个兄弟节点。
// 顺序是确定性的，清单编号依赖它保持稳定。
func Flatten(root *model.CurriculumNode) []*model.CurriculumNode {
	if root == nil {
		return nil
	}
	nodes := []*model.CurriculumNode{root}
	for _, child := range root.Children {
		nodes = append(nodes, Flatten(child)...)
	}
	return nodes
}

// CountNodes 返回树中的节点总数。
func CountNodes(root *model.CurriculumNode) int {
	if root == nil {
		return 0
	}
	count := 1
	for _, child := range root.Children {
		count += CountNodes(child)
	}
	return count
}

// UpdateStatus 返回一棵新树：仅目标节点的 Status 被替换，从根到目标的路径
// 被重建（写时复制），未受影响的子树与原树共享。未知 ID 时原样返回输入的树。
func UpdateStatus(root *model.CurriculumNode, id string, status model.NodeStatus) *model.CurriculumNode {
	if root == nil {
		return nil
	}
	updated, _ := rebuildWithStatus(root, id, status)
	return updated
}

// rebuildWithStatus 返回 (新节点, 子树内是否发生替换)。
// 未命中的子树直接返回原指针，避免不必要的复制。
func rebuildWithStatus(node *model.CurriculumNode, id string, status model.NodeStatus) (*model.CurriculumNode, bool) {
	if node.ID == id {
		clone := *node
		clone.Status = status
		return &clone, true
	}
	for i, child := range node.Children {
		newChild, changed := rebuildWithStatus(child, id, status)
		if !changed {
			continue
		}
		clone := *node
		clone.Children = make([]*model.CurriculumNode, len(node.Children))
		copy(clone.Children, node.Children)
		clone.Children[i] = newChild
		return &clone, true
	}
	return node, false
}
