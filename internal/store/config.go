package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrConfigNotFound 配置键不存在
var ErrConfigNotFound = errors.New("config key not found")

// 运行状态键
const (
	ConfigLastOutputFile = "last_output_file"
	ConfigLastRunID      = "last_run_id"
)

const upsertConfigSQL = `
	INSERT INTO config (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

// GetConfig 读取配置项；不存在时返回 ErrConfigNotFound
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
	case err != nil:
		return "", fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return value, nil
}

// SetConfig 写入配置项
func (s *Store) SetConfig(key, value string) error {
	if _, err := s.db.Exec(upsertConfigSQL, key, value); err != nil {
		return fmt.Errorf("failed to write config %s: %w", key, err)
	}
	return nil
}

// GetAllConfig 读取全部配置项
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM config`)
	if err != nil {
		return nil, fmt.Errorf("failed to query config: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

// RecordLastRun 记录最近一次成功运行，供 report/audit 与 Web 界面默认读取
func (s *Store) RecordLastRun(runID, outputFile string) error {
	return s.withTx(func(tx *sql.Tx) error {
		for key, value := range map[string]string{
			ConfigLastRunID:      runID,
			ConfigLastOutputFile: outputFile,
		} {
			if _, err := tx.Exec(upsertConfigSQL, key, value); err != nil {
				return fmt.Errorf("failed to record last run: %w", err)
			}
		}
		return nil
	})
}
