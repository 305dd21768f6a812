package store

import (
	"database/sql"
	"fmt"

	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/mapping"
)

var _ mapping.EditableStore = (*MappingStore)(nil)

// MappingStore 以 SQLite mappings 表实现 mapping.Store
type MappingStore struct {
	s *Store
}

// OpenMappingStore 按配置的后端选择映射表存储
//
// xlsx 后端使用 xlsxPath 指向的工作簿；sqlite 后端使用 s 的 mappings 表。
func OpenMappingStore(backend, xlsxPath string, s *Store) (mapping.EditableStore, error) {
	switch backend {
	case "", config.BackendXLSX:
		return mapping.NewXLSXStore(xlsxPath), nil
	case config.BackendSQLite:
		if s == nil {
			return nil, fmt.Errorf("mapping backend %q requires a database", backend)
		}
		return s.Mappings(), nil
	default:
		return nil, fmt.Errorf("unknown mapping backend %q", backend)
	}
}

// Mappings 返回映射表存储
func (s *Store) Mappings() *MappingStore {
	return &MappingStore{s: s}
}

// Load 按 position 顺序读取映射表并构建 ID 索引
func (m *MappingStore) Load() (mapping.Table, map[string]string, error) {
	rows, err := m.s.db.Query(`SELECT de, para FROM mappings ORDER BY position`)
	if err != nil {
		return mapping.Table{}, nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	t := mapping.Table{}
	for rows.Next() {
		var p mapping.Pair
		if err := rows.Scan(&p.De, &p.Para); err != nil {
			return mapping.Table{}, nil, fmt.Errorf("failed to scan mapping row: %w", err)
		}
		t.Rows = append(t.Rows, p)
	}
	if err := rows.Err(); err != nil {
		return mapping.Table{}, nil, fmt.Errorf("failed to read mappings: %w", err)
	}
	return t, mapping.BuildIndex(t), nil
}

// Persist 合并新发现的映射后整表写回；discovered 为空时不写
func (m *MappingStore) Persist(t mapping.Table, discovered []mapping.Pair) error {
	if len(discovered) == 0 {
		return nil
	}
	return m.Replace(mapping.Merge(t, discovered))
}

// Replace 在一个事务内整表覆盖
func (m *MappingStore) Replace(t mapping.Table) error {
	return m.s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM mappings`); err != nil {
			return fmt.Errorf("failed to clear mappings: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO mappings (position, de, para) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare mapping insert: %w", err)
		}
		defer stmt.Close()

		for i, p := range t.Rows {
			if _, err := stmt.Exec(i+1, p.De, p.Para); err != nil {
				return fmt.Errorf("failed to insert mapping row %d: %w", i+1, err)
			}
		}
		return nil
	})
}
