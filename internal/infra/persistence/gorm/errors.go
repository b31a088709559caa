package gormpersistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateEntryError 检查唯一约束错误。
// 优先使用 TranslateError 翻译后的 gorm.ErrDuplicatedKey，再回退到常见的驱动错误字符串。
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "Duplicate entry") || // MySQL
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
