package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// greatestExpr 构建跨方言的二元取大表达式，用于余额扣减下限钳制。
func greatestExpr(db *gorm.DB, left, right string) string {
	return greatestExprByDialect(dbDialectName(db), left, right)
}

func greatestExprByDialect(dialect, left, right string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return fmt.Sprintf("GREATEST(%s, %s)", left, right)
	default:
		// sqlite 的标量 MAX 即二元取大
		return fmt.Sprintf("MAX(%s, %s)", left, right)
	}
}

// ErrTableMissing 目标数据表尚未迁移
var ErrTableMissing = errors.New("repository: table missing")

// isTableMissing 判断底层错误是否为数据表不存在。
func isTableMissing(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 42P01 = undefined_table
		return pgErr.Code == "42P01"
	}
	return strings.Contains(err.Error(), "no such table")
}

// normalizeSchemaErr 将数据表缺失错误归一为 ErrTableMissing，便于上层按类型判断。
func normalizeSchemaErr(err error) error {
	if err == nil {
		return nil
	}
	if isTableMissing(err) {
		return fmt.Errorf("%w: %v", ErrTableMissing, err)
	}
	return err
}
