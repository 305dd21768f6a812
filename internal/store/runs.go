package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/VaazzDan/projeto-bi/internal/model"
)

// CreateRun 创建运行记录（running），返回自增 id
func (s *Store) CreateRun(runID, ledgerFile string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO runs (run_id, ledger_file, status, started_at)
		VALUES (?, ?, ?, ?)
	`, runID, ledgerFile, model.RunStatusRunning, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// FinishRun 完成运行记录更新
func (s *Store) FinishRun(id int64, outputFile string, totalRows, discovered, notInformed int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE runs SET
			output_file = ?,
			total_rows = ?,
			discovered = ?,
			not_informed = ?,
			status = ?,
			error_message = ?,
			finished_at = ?
		WHERE id = ?
	`, outputFile, totalRows, discovered, notInformed, status, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// ListRuns 最近的运行记录（按开始时间倒序）
func (s *Store) ListRuns(limit int) ([]*model.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, run_id, ledger_file, output_file, status, total_rows,
		       discovered, not_informed, error_message, started_at, finished_at
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []*model.RunRecord
	for rows.Next() {
		r := &model.RunRecord{}
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.RunID, &r.LedgerFile, &r.OutputFile, &r.Status, &r.TotalRows,
			&r.Discovered, &r.NotInformed, &r.ErrorMessage, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
