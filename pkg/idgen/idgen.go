// Package idgen 提供全局唯一标识符的生成。
package idgen

import "github.com/google/uuid"

// New 返回一个新的不透明唯一标识符，用于节点、消息和会话的 ID。
func New() string {
	return uuid.NewString()
}
