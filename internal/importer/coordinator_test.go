package importer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/exporter"
	"github.com/VaazzDan/projeto-bi/internal/logging"
	"github.com/VaazzDan/projeto-bi/internal/mapping"
	"github.com/VaazzDan/projeto-bi/internal/model"
	"github.com/VaazzDan/projeto-bi/internal/resolver"
	"github.com/VaazzDan/projeto-bi/internal/store"
)

func writeLedger(t *testing.T, dir string, rows [][]interface{}) string {
	t.Helper()

	path := filepath.Join(dir, "financeiro_bruto.xlsx")
	f := excelize.NewFile()
	for i, r := range rows {
		axis, _ := excelize.CoordinatesToCellName(1, i+1)
		row := r
		if err := f.SetSheetRow("Sheet1", axis, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = f.Close()
	return path
}

func newSQLiteStore(t *testing.T, dir string) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(dir, "projuris.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRun_ConvergesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ledger := writeLedger(t, dir, [][]interface{}{
		{"Nº Controle 1", "Valor", "Tipo"},
		{"25016 X", "R$ 1.000,00", "Recebido"},
		{"25016 Y 2", "-400", "Pago"},
		{"Medicina 2024", 300, ""},
		{"300 Direito USP 2023", "500", ""},
	})
	mappingStore := mapping.NewXLSXStore(filepath.Join(dir, "mapeamento_termos.xlsx"))
	st := newSQLiteStore(t, dir)

	c := NewCoordinator(mappingStore, st, config.DefaultColumns(), logging.Discard())
	output := filepath.Join(dir, "financeiro_processado.xlsx")

	var sawStart bool
	var report *RunReport
	for evt := range c.Run(RunOptions{LedgerPath: ledger, OutputPath: output}) {
		switch evt.Type {
		case EventStart:
			sawStart = true
		case EventError:
			t.Fatalf("run error: %s", evt.Message)
		case EventDone:
			report, _ = evt.Data.(*RunReport)
		}
	}
	if !sawStart || report == nil {
		t.Fatalf("missing start/done events")
	}
	if report.RunID == "" || report.Rows != 4 || report.Discovered != 2 || report.NotInformed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !report.Reconciled {
		t.Fatalf("expected reconciled totals, diff=%s", report.ReconcileDiff)
	}

	res, err := exporter.ReadResult(output)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	want := []string{"25016 X", "25016 X", resolver.NotInformed, "300 DIREITO USP"}
	for i, e := range res.Entries {
		if e.Cohort != want[i] {
			t.Fatalf("row %d cohort=%q, want %q", i, e.Cohort, want[i])
		}
	}

	table, _, err := mappingStore.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("unexpected mapping rows: %v", table.Rows)
	}

	second, err := c.RunSync(RunOptions{LedgerPath: ledger, OutputPath: output})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Discovered != 0 || second.RunID == report.RunID {
		t.Fatalf("second run must not discover anything: %+v", second)
	}
	// 第二次运行时映射表已有内容，审计只剩 NÃO INFORMADO
	if second.Pending != 1 {
		t.Fatalf("pending=%d, want 1", second.Pending)
	}

	runs, err := st.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].Status != model.RunStatusSuccess || runs[1].Discovered != 2 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	last, err := st.GetConfig(store.ConfigLastOutputFile)
	if err != nil || last != output {
		t.Fatalf("last output=%q err=%v", last, err)
	}
}

func TestRun_NoIDLabelsPersistNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ledger := writeLedger(t, dir, [][]interface{}{
		{"Nº Controle 1", "Recebido", "Pago", "Instituicao"},
		{"Medicina 2024", 5000, 2000, "Universidade A"},
		{"MEDICINA 24", 6000, 2500, "Universidade A"},
		{"Med 2024", 7000, 3000, "Universidade A"},
	})
	mappingStore := newSQLiteStore(t, dir).Mappings()

	report, err := NewCoordinator(mappingStore, nil, config.DefaultColumns(), nil).
		RunSync(RunOptions{LedgerPath: ledger})
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if report.NotInformed != 3 || report.Discovered != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	table, _, err := mappingStore.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("nothing should be persisted: %v", table.Rows)
	}
}

type failingStore struct{}

func (failingStore) Load() (mapping.Table, map[string]string, error) {
	return mapping.Table{}, nil, errors.New("permission denied")
}

func (failingStore) Persist(mapping.Table, []mapping.Pair) error { return nil }

func TestRun_LoadFailureEmitsSingleError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ledger := writeLedger(t, dir, [][]interface{}{
		{"Nº Controle 1", "Valor"},
		{"1 a", 10},
	})
	st := newSQLiteStore(t, dir)
	c := NewCoordinator(failingStore{}, st, config.DefaultColumns(), nil)

	var errorsSeen []string
	var done bool
	for evt := range c.Run(RunOptions{LedgerPath: ledger}) {
		switch evt.Type {
		case EventError:
			errorsSeen = append(errorsSeen, evt.Message)
		case EventDone:
			done = true
		}
	}
	if done || len(errorsSeen) != 1 || !strings.Contains(errorsSeen[0], "permission denied") {
		t.Fatalf("unexpected events: done=%v errors=%v", done, errorsSeen)
	}

	runs, err := st.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != model.RunStatusFailed || runs[0].ErrorMessage == "" {
		t.Fatalf("failed run must be logged: %+v", runs)
	}
}

func TestRunSync_MissingLedger(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(mapping.NewXLSXStore(filepath.Join(t.TempDir(), "m.xlsx")), nil, config.DefaultColumns(), nil)
	if _, err := c.RunSync(RunOptions{LedgerPath: filepath.Join(t.TempDir(), "nao_existe.xlsx")}); err == nil {
		t.Fatalf("expected error for missing ledger")
	}
}
