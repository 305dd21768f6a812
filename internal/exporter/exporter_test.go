package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/VaazzDan/projeto-bi/internal/model"
)

func TestResultHeaders(t *testing.T) {
	t.Parallel()

	got := ResultHeaders([]string{"Nº Controle 1", "Recebido", "Valor"})
	want := []string{"Nº Controle 1", "Recebido", "Valor", "Pago", "Turma_Padronizada"}
	if len(got) != len(want) {
		t.Fatalf("ResultHeaders=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ResultHeaders=%v, want %v", got, want)
		}
	}
}

func TestWriteResult_RoundTrip(t *testing.T) {
	t.Parallel()

	headers := []string{"Nº Controle 1", "Valor", "Tipo"}
	d := decimal.RequireFromString
	entries := []*model.Entry{
		{
			RowNo:    2,
			Fields:   map[string]string{"Nº Controle 1": "25016 X", "Valor": "1.500,50", "Tipo": "Recebido"},
			Received: d("1500.5"),
			Cohort:   "25016 X",
		},
		{
			RowNo:  3,
			Fields: map[string]string{"Nº Controle 1": "Medicina 2024", "Valor": "-80", "Tipo": ""},
			Values: map[string]interface{}{"Valor": -80.0},
			Paid:   d("80"),
			Cohort: "NÃO INFORMADO",
		},
	}

	path := filepath.Join(t.TempDir(), "out", "financeiro_processado.xlsx")
	var events []ProgressEvent
	if err := WriteResult(path, headers, entries, func(e ProgressEvent) { events = append(events, e) }); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if len(events) == 0 || events[len(events)-1].Percent != 100 {
		t.Fatalf("unexpected progress events: %+v", events)
	}

	res, err := ReadResult(path)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	if len(res.Headers) != 6 || res.Headers[5] != ColumnCohort {
		t.Fatalf("unexpected headers: %v", res.Headers)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("unexpected entries: %d", len(res.Entries))
	}
	first := res.Entries[0]
	if first.Cohort != "25016 X" || !first.Received.Equal(d("1500.5")) || !first.Paid.IsZero() {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.Field("Valor") != "1.500,50" {
		t.Fatalf("original text must be preserved, got %q", first.Field("Valor"))
	}
	second := res.Entries[1]
	if second.Cohort != "NÃO INFORMADO" || !second.Amount.Equal(d("-80")) {
		t.Fatalf("unexpected second entry: %+v", second)
	}
	if v, ok := second.Values["Valor"].(float64); !ok || v != -80 {
		t.Fatalf("numeric Valor must read back as a number, got %#v", second.Values["Valor"])
	}
	if _, ok := first.Values["Valor"]; ok {
		t.Fatalf("text Valor must stay text, got %#v", first.Values["Valor"])
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	// 数值列写回为数值单元格，文本列仍为文本
	if typ, err := f.GetCellType(ResultSheet, "B3"); err != nil || (typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset) {
		t.Fatalf("B3 cell type=%v err=%v, want number", typ, err)
	}
	if typ, _ := f.GetCellType(ResultSheet, "B2"); typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset {
		t.Fatalf("B2 cell type=%v, want text", typ)
	}

	rows, err := f.GetRows(SummarySheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", SummarySheet, err)
	}
	// 表头 + 2 个 Turma + TOTAL
	if len(rows) != 4 || rows[3][0] != "TOTAL" {
		t.Fatalf("unexpected summary rows: %v", rows)
	}
}

func TestReadResult_MissingCohortColumn(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.xlsx")
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "Valor"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = f.Close()

	if _, err := ReadResult(path); err == nil {
		t.Fatalf("expected error without %s column", ColumnCohort)
	}
}

func TestWriteResult_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "financeiro_processado.xlsx")
	entries := []*model.Entry{{RowNo: 2, Fields: map[string]string{"Valor": "10"}, Cohort: "1 A"}}
	for i := 0; i < 2; i++ {
		if err := WriteResult(path, []string{"Valor"}, entries, nil); err != nil {
			t.Fatalf("WriteResult: %v", err)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(files) != 1 || files[0].Name() != "financeiro_processado.xlsx" {
		t.Fatalf("unexpected files in output dir: %v", files)
	}
}
