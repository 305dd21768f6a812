package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 运行状态
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// RunRecord 一次批处理运行的记录
type RunRecord struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"runId"`
	LedgerFile   string    `json:"ledgerFile"`
	OutputFile   string    `json:"outputFile"`
	Status       string    `json:"status"`
	TotalRows    int       `json:"totalRows"`
	Discovered   int       `json:"discovered"`
	NotInformed  int       `json:"notInformed"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt,omitempty"`
}

// CohortTotals 单个 Turma 的汇总
type CohortTotals struct {
	Cohort  string          `json:"cohort"`
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
	Profit  decimal.Decimal `json:"profit"`
	Rows    int             `json:"rows"`
}
