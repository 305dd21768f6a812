package mapping

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

var _ EditableStore = (*XLSXStore)(nil)

// XLSXStore 以 Excel 工作簿保存的映射表（mapeamento_termos.xlsx）
type XLSXStore struct {
	path string
}

// NewXLSXStore 创建 Excel 映射表存储
func NewXLSXStore(path string) *XLSXStore {
	return &XLSXStore{path: path}
}

// Path 文件路径
func (s *XLSXStore) Path() string {
	return s.path
}

// Load 读取映射表；文件不存在时创建只有表头的空表
func (s *XLSXStore) Load() (Table, map[string]string, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := s.write(Table{}); err != nil {
				return Table{}, nil, fmt.Errorf("failed to create mapping file: %w", err)
			}
			return Table{}, map[string]string{}, nil
		}
		return Table{}, nil, fmt.Errorf("failed to stat mapping file: %w", err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return Table{}, nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, map[string]string{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, nil, fmt.Errorf("failed to read mapping sheet: %w", err)
	}

	t, err := TableFromRows(rows)
	if err != nil {
		return Table{}, nil, fmt.Errorf("invalid mapping file %s: %w", s.path, err)
	}
	return t, BuildIndex(t), nil
}

// ErrMissingColumns 映射表有数据行但缺少 De 或 Para 列
var ErrMissingColumns = errors.New("mapping sheet has rows but no De/Para columns")

// TableFromRows 将表头+数据行转换为映射表
//
// 空表或只有表头时返回空表；有数据行却缺少 De/Para 列时返回 ErrMissingColumns。
func TableFromRows(rows [][]string) (Table, error) {
	if len(rows) == 0 {
		return Table{}, nil
	}

	colDe, colPara := -1, -1
	for i, h := range rows[0] {
		switch CapitalizeHeader(h) {
		case ColumnDe:
			if colDe < 0 {
				colDe = i
			}
		case ColumnPara:
			if colPara < 0 {
				colPara = i
			}
		}
	}
	if colDe < 0 || colPara < 0 {
		if hasData(rows[1:]) {
			return Table{}, ErrMissingColumns
		}
		return Table{}, nil
	}

	t := Table{Rows: make([]Pair, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		de := cell(row, colDe)
		para := cell(row, colPara)
		if de == "" && para == "" {
			continue
		}
		t.Rows = append(t.Rows, Pair{De: de, Para: para})
	}
	return t, nil
}

func hasData(rows [][]string) bool {
	for _, row := range rows {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				return true
			}
		}
	}
	return false
}

// Persist 合并新发现的映射并整表写回；discovered 为空时不写
func (s *XLSXStore) Persist(t Table, discovered []Pair) error {
	if len(discovered) == 0 {
		return nil
	}
	return s.write(Merge(t, discovered))
}

// Replace 用给定表整体覆盖（映射编辑器保存）
func (s *XLSXStore) Replace(t Table) error {
	return s.write(t)
}

func (s *XLSXStore) write(t Table) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create mapping directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{ColumnDe, ColumnPara}
	if err := f.SetSheetRow(defaultSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write mapping header: %w", err)
	}
	for i, p := range t.Rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.De, p.Para}
		if err := f.SetSheetRow(defaultSheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write mapping row %d: %w", i+2, err)
		}
	}

	// 临时文件名唯一：并发的首次 Load 与 Persist 不会互相覆盖
	tmpFile, err := os.CreateTemp(filepath.Dir(s.path), ".mapeamento-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp mapping file: %w", err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()

	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save mapping file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace mapping file: %w", err)
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
