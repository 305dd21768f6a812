package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/VaazzDan/projeto-bi/internal/calculator"
	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/exporter"
	"github.com/VaazzDan/projeto-bi/internal/logging"
	"github.com/VaazzDan/projeto-bi/internal/mapping"
	"github.com/VaazzDan/projeto-bi/internal/model"
	"github.com/VaazzDan/projeto-bi/internal/parser"
	"github.com/VaazzDan/projeto-bi/internal/resolver"
)

// 进度事件类型
const (
	EventStart   = "start"
	EventInfo    = "info"
	EventWarning = "warning"
	EventDone    = "done"
	EventError   = "error"
)

// RunLog 运行记录（可选）
type RunLog interface {
	CreateRun(runID, ledgerFile string) (int64, error)
	FinishRun(id int64, outputFile string, totalRows, discovered, notInformed int, status, errorMessage string) error
	RecordLastRun(runID, outputFile string) error
}

// Coordinator 批处理协调器：读取台账、解析 Turma、写出结果并回写映射表
//
// 同一映射表不能同时运行两个批处理，调用方负责串行化。
type Coordinator struct {
	mappings mapping.Store
	runs     RunLog
	logger   *slog.Logger
	reader   *parser.LedgerReader
}

// NewCoordinator 创建协调器；runs 可为 nil
func NewCoordinator(mappings mapping.Store, runs RunLog, columns config.ColumnsConfig, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		mappings: mappings,
		runs:     runs,
		logger:   logging.Component(logger, "importer"),
		reader:   parser.NewLedgerReader(columns),
	}
}

// RunOptions 运行选项
type RunOptions struct {
	LedgerPath string
	Sheet      string // 为空时读取第一个 Sheet
	OutputPath string
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/warning/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// RunReport 运行报告
type RunReport struct {
	RunID         string            `json:"runId"`
	LedgerFile    string            `json:"ledgerFile"`
	OutputFile    string            `json:"outputFile"`
	Sheet         string            `json:"sheet"`
	Rows          int               `json:"rows"`
	Discovered    int               `json:"discovered"`
	NewMappings   []mapping.Pair    `json:"newMappings"`
	NotInformed   int               `json:"notInformed"`
	Pending       int               `json:"pending"`
	Quality       decimal.Decimal   `json:"quality"`
	Totals        calculator.Totals `json:"totals"`
	Reconciled    bool              `json:"reconciled"`
	ReconcileDiff decimal.Decimal   `json:"reconcileDiff"`
	Warnings      []string          `json:"warnings,omitempty"`
	Duration      time.Duration     `json:"duration"`
}

// Run 执行批处理，返回进度通道（运行结束后关闭）
func (c *Coordinator) Run(opts RunOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doRun(opts, progressChan)
	}()

	return progressChan
}

// RunSync 同步执行并返回报告
func (c *Coordinator) RunSync(opts RunOptions) (*RunReport, error) {
	var (
		report *RunReport
		runErr error
	)
	for evt := range c.Run(opts) {
		switch evt.Type {
		case EventDone:
			report, _ = evt.Data.(*RunReport)
		case EventError:
			runErr = errors.New(evt.Message)
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	if report == nil {
		return nil, errors.New("run finished without report")
	}
	return report, nil
}

// runState 单次运行的状态
type runState struct {
	report   *RunReport
	logID    int64
	started  time.Time
	progress chan ProgressEvent
}

func (c *Coordinator) doRun(opts RunOptions, progressChan chan ProgressEvent) {
	st := &runState{
		report: &RunReport{
			RunID:      uuid.NewString(),
			LedgerFile: opts.LedgerPath,
			OutputFile: opts.OutputPath,
		},
		started:  time.Now(),
		progress: progressChan,
	}
	log := c.logger.With("run_id", st.report.RunID)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventStart,
		Message: "Iniciando padronização por ID",
		Data: map[string]string{
			"run_id":   st.report.RunID,
			"filename": filepath.Base(opts.LedgerPath),
		},
		Timestamp: time.Now(),
	})
	log.Info("run started", "ledger", opts.LedgerPath, "output", opts.OutputPath)

	if c.runs != nil {
		id, err := c.runs.CreateRun(st.report.RunID, opts.LedgerPath)
		if err != nil {
			log.Warn("failed to create run log", "error", err)
		}
		st.logID = id
	}

	if err := c.process(opts, st, log); err != nil {
		log.Error("run failed", "error", err)
		c.finishLog(st, model.RunStatusFailed, err.Error(), log)
		c.sendFinal(progressChan, ProgressEvent{
			Type:      EventError,
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	st.report.Duration = time.Since(st.started)
	c.finishLog(st, model.RunStatusSuccess, "", log)
	if c.runs != nil {
		if err := c.runs.RecordLastRun(st.report.RunID, st.report.OutputFile); err != nil {
			log.Warn("failed to record last run", "error", err)
		}
	}

	log.Info("run finished",
		"rows", st.report.Rows,
		"discovered", st.report.Discovered,
		"not_informed", st.report.NotInformed,
		"duration_ms", st.report.Duration.Milliseconds(),
	)
	c.sendFinal(progressChan, ProgressEvent{
		Type:      EventDone,
		Message:   "Processo concluído com sucesso",
		Data:      st.report,
		Timestamp: time.Now(),
	})
}

func (c *Coordinator) process(opts RunOptions, st *runState, log *slog.Logger) error {
	ledger, err := c.reader.ReadFile(opts.LedgerPath, opts.Sheet)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	st.report.Sheet = ledger.Sheet
	st.report.Warnings = ledger.Warnings
	for _, w := range ledger.Warnings {
		log.Warn(w)
		c.sendProgress(st.progress, ProgressEvent{Type: EventWarning, Message: w, Timestamp: time.Now()})
	}

	c.sendProgress(st.progress, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("%d linhas lidas da planilha %q", len(ledger.Entries), ledger.Sheet),
		Data: map[string]interface{}{
			"rows":    len(ledger.Entries),
			"sheet":   ledger.Sheet,
			"columns": ledger.Columns,
		},
		Timestamp: time.Now(),
	})

	table, index, err := c.mappings.Load()
	if err != nil {
		return fmt.Errorf("failed to load mapping table: %w", err)
	}
	c.sendProgress(st.progress, ProgressEvent{
		Type:      EventInfo,
		Message:   fmt.Sprintf("Mapeamento carregado: %d linhas, %d IDs", table.Len(), len(index)),
		Timestamp: time.Now(),
	})

	rctx := resolver.NewContext(index)
	for _, e := range ledger.Entries {
		e.Cohort = rctx.Resolve(e.RawLabel)
		if e.Cohort == resolver.NotInformed {
			st.report.NotInformed++
		}
	}
	st.report.Rows = len(ledger.Entries)
	st.report.Discovered = rctx.DiscoveredCount()
	st.report.NewMappings = rctx.Discovered()

	summary := calculator.Summarize(ledger.Entries)
	st.report.Totals = summary.Totals
	audit := calculator.Audit(ledger.Entries, rctx)
	st.report.Pending = len(audit.Pending)
	st.report.Quality = audit.Quality
	st.report.Reconciled, st.report.ReconcileDiff = calculator.Reconcile(ledger.Amounts(), ledger.Entries)
	if !st.report.Reconciled {
		msg := fmt.Sprintf("Divergência de R$ %s detectada na conciliação", st.report.ReconcileDiff.Abs().StringFixed(2))
		log.Warn(msg)
		c.sendProgress(st.progress, ProgressEvent{Type: EventWarning, Message: msg, Timestamp: time.Now()})
	}

	if opts.OutputPath != "" {
		writeProgress := func(evt exporter.ProgressEvent) {
			c.sendProgress(st.progress, ProgressEvent{
				Type:      EventInfo,
				Message:   fmt.Sprintf("Gravando resultado: %s (%d%%)", evt.Stage, evt.Percent),
				Data:      evt,
				Timestamp: time.Now(),
			})
		}
		if err := exporter.WriteResult(opts.OutputPath, ledger.Headers, ledger.Entries, writeProgress); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		c.sendProgress(st.progress, ProgressEvent{
			Type:      EventInfo,
			Message:   fmt.Sprintf("Resultado gravado em %s", filepath.Base(opts.OutputPath)),
			Timestamp: time.Now(),
		})
	}

	if err := c.mappings.Persist(table, st.report.NewMappings); err != nil {
		return fmt.Errorf("failed to persist mapping table: %w", err)
	}
	if st.report.Discovered > 0 {
		c.sendProgress(st.progress, ProgressEvent{
			Type:      EventInfo,
			Message:   fmt.Sprintf("%d novos IDs padronizados", st.report.Discovered),
			Data:      st.report.NewMappings,
			Timestamp: time.Now(),
		})
	}
	return nil
}

func (c *Coordinator) finishLog(st *runState, status, errMsg string, log *slog.Logger) {
	if c.runs == nil || st.logID == 0 {
		return
	}
	r := st.report
	if err := c.runs.FinishRun(st.logID, r.OutputFile, r.Rows, r.Discovered, r.NotInformed, status, errMsg); err != nil {
		log.Warn("failed to finish run log", "error", err)
	}
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}

// sendFinal done/error 事件不能丢弃
func (c *Coordinator) sendFinal(ch chan ProgressEvent, event ProgressEvent) {
	ch <- event
}
