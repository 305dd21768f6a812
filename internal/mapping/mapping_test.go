package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestBuildIndex_LastRowWinsAndSkips(t *testing.T) {
	t.Parallel()

	idx := BuildIndex(Table{Rows: []Pair{
		{De: "25016 psicologia uninga 2", Para: "Psicologia Uninga"},
		{De: "medicina 2024", Para: "MEDICINA"},
		{De: "300 direito", Para: ""},
		{De: "25016 psicologia", Para: "psicologia uninga (nova)"},
	}})

	if got, want := idx["25016"], "PSICOLOGIA UNINGA (NOVA)"; got != want {
		t.Fatalf("idx[25016]=%q, want %q", got, want)
	}
	if _, ok := idx["300"]; ok {
		t.Fatalf("row with empty Para must be skipped")
	}
	if len(idx) != 1 {
		t.Fatalf("unexpected index: %v", idx)
	}
}

func TestMerge_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	existing := Table{Rows: []Pair{
		{De: "25016 psicologia 2", Para: "PSICOLOGIA"},
	}}
	merged := Merge(existing, []Pair{
		{De: "25016 psicologia 2", Para: "25016 PSICOLOGIA"},
		{De: "100 teste", Para: "100 TESTE"},
	})

	if merged.Len() != 2 {
		t.Fatalf("unexpected rows: %v", merged.Rows)
	}
	if merged.Rows[0].Para != "PSICOLOGIA" {
		t.Fatalf("existing row must take precedence, got %q", merged.Rows[0].Para)
	}
	if merged.Rows[1].De != "100 teste" {
		t.Fatalf("new row must be appended last, got %v", merged.Rows[1])
	}
}

func TestCapitalizeHeader(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		" de ":  "De",
		"PARA":  "Para",
		"para":  "Para",
		"":      "",
		"ÉTAPA": "Étapa",
	}
	for in, want := range cases {
		if got := CapitalizeHeader(in); got != want {
			t.Fatalf("CapitalizeHeader(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestXLSXStore_LoadMissingCreatesEmptyTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapeamento_termos.xlsx")
	st := NewXLSXStore(path)

	table, idx, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 0 || len(idx) != 0 {
		t.Fatalf("expected empty table, got %v / %v", table.Rows, idx)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("mapping file should be created: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open created file: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != ColumnDe || rows[0][1] != ColumnPara {
		t.Fatalf("unexpected header rows: %v", rows)
	}
}

func TestXLSXStore_PersistSkipsWhenNothingDiscovered(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.xlsx")
	st := NewXLSXStore(path)

	if err := st.Persist(Table{Rows: []Pair{{De: "1 a", Para: "1 A"}}}, nil); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no write expected, stat err=%v", err)
	}
}

func TestXLSXStore_HeaderDriftRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{" de ", "PARA"},
		{"25016 psicologia uninga 2", "psicologia uninga"},
		{"sem id", "SEM ID"},
	}
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

	st := NewXLSXStore(path)
	table, idx, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("unexpected rows: %v", table.Rows)
	}
	if got, want := idx["25016"], "PSICOLOGIA UNINGA"; got != want {
		t.Fatalf("idx[25016]=%q, want %q", got, want)
	}

	if err := st.Persist(table, []Pair{{De: "100 teste", Para: "100 TESTE"}}); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reloaded, idx, err := st.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 3 {
		t.Fatalf("unexpected rows after persist: %v", reloaded.Rows)
	}
	if idx["100"] != "100 TESTE" || idx["25016"] != "PSICOLOGIA UNINGA" {
		t.Fatalf("unexpected index after persist: %v", idx)
	}
}

func TestTableFromRows_MissingColumns(t *testing.T) {
	t.Parallel()

	if _, err := TableFromRows([][]string{{"Origem", "Destino"}, {"1 a", "A"}}); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}

	table, err := TableFromRows([][]string{{"Origem", "Destino"}, {"", " "}})
	if err != nil || table.Len() != 0 {
		t.Fatalf("header-only sheet must be an empty table: %v %v", table.Rows, err)
	}
	if table, err := TableFromRows(nil); err != nil || table.Len() != 0 {
		t.Fatalf("empty sheet must be an empty table: %v %v", table.Rows, err)
	}
}

func TestXLSXStore_UnknownHeadersKeepFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapeamento_termos.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{{"Termo", "Padrao"}, {"100 a", "A"}}
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
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	store := NewXLSXStore(path)
	if _, _, err := store.Load(); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("mapping file must not be modified")
	}
}

func TestXLSXStore_WriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewXLSXStore(filepath.Join(dir, "mapeamento_termos.xlsx"))
	if _, _, err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.Persist(Table{}, []Pair{{De: "1 a", Para: "1 A"}}); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "mapeamento_termos.xlsx" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected files: %v", names)
	}
}

func TestXLSXStore_ConcurrentFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewXLSXStore(filepath.Join(t.TempDir(), "mapeamento_termos.xlsx"))

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.Load()
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Load: %v", err)
		}
	}
	if table, _, err := store.Load(); err != nil || table.Len() != 0 {
		t.Fatalf("expected empty table: %v %v", table.Rows, err)
	}
}
