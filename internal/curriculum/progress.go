package curriculum

import (
	"math"

	"learnpath-go/internal/model"
)

// ComputeProgress 单次前序遍历统计整棵树的进度。
// percentage = round(100 * completed / total)；total 为 0 时定义为 0
// （按不变式树至少有一个根节点，但仍做防御处理）。
func ComputeProgress(root *model.CurriculumNode) model.Progress {
	var p model.Progress
	for _, node := range Flatten(root) {
		p.Total++
		switch node.Status {
		case model.StatusCompleted:
			p.Completed++
		case model.StatusInProgress:
			p.InProgress++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
	}
	return p
}
