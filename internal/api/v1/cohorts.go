package v1

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VaazzDan/projeto-bi/internal/calculator"
	"github.com/VaazzDan/projeto-bi/internal/exporter"
	"github.com/VaazzDan/projeto-bi/internal/model"
	"github.com/VaazzDan/projeto-bi/internal/report"
)

// CohortsResponse 看板数据
type CohortsResponse struct {
	Cohorts    []string                    `json:"cohorts"` // 全部 Turma（筛选项）
	Selected   []string                    `json:"selected"`
	Totals     calculator.Totals           `json:"totals"`
	Ranking    []model.CohortTotals        `json:"ranking"`
	Indicators []calculator.IndicatorGroup `json:"indicators"`
}

// loadResult 读取最近一次结果文件；不存在时写 404 并返回 false
func (h *Handler) loadResult(c *gin.Context) (*exporter.Result, bool) {
	path := h.resultPath()
	if path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "nenhum resultado processado"})
		return nil, false
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "nenhum resultado processado"})
		return nil, false
	}
	res, err := exporter.ReadResult(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return res, true
}

// selectedCohorts 支持 ?cohort=a&cohort=b 与 ?cohort=a,b
func selectedCohorts(c *gin.Context) []string {
	var out []string
	for _, v := range c.QueryArray("cohort") {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// GetCohorts 按 Turma 汇总（可筛选）
// GET /api/cohorts?cohort=
func (h *Handler) GetCohorts(c *gin.Context) {
	res, ok := h.loadResult(c)
	if !ok {
		return
	}

	all := calculator.Summarize(res.Entries)
	names := make([]string, 0, len(all.Cohorts))
	for _, ct := range all.Cohorts {
		names = append(names, ct.Cohort)
	}

	selected := selectedCohorts(c)
	summary := calculator.Summarize(calculator.Filter(res.Entries, selected))
	if selected == nil {
		selected = []string{}
	}

	c.JSON(http.StatusOK, CohortsResponse{
		Cohorts:    names,
		Selected:   selected,
		Totals:     summary.Totals,
		Ranking:    summary.Top(len(summary.Cohorts)),
		Indicators: summary.Indicators(),
	})
}

// audit 以当前映射表审计结果文件
func (h *Handler) audit(entries []*model.Entry) (*calculator.AuditResult, error) {
	_, index, err := h.mappings.Load()
	if err != nil {
		return nil, err
	}
	res := calculator.Audit(entries, calculator.NewLabelSet(index))
	return &res, nil
}

// GetAudit 映射质量审计
// GET /api/audit
func (h *Handler) GetAudit(c *gin.Context) {
	res, ok := h.loadResult(c)
	if !ok {
		return
	}
	audit, err := h.audit(res.Entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, audit)
}

// GetReport 生成报告（HTML；?format=md 返回 Markdown）
// GET /api/report
func (h *Handler) GetReport(c *gin.Context) {
	res, ok := h.loadResult(c)
	if !ok {
		return
	}
	entries := calculator.Filter(res.Entries, selectedCohorts(c))
	audit, err := h.audit(entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	md, err := report.Markdown(calculator.Summarize(entries), audit, report.Options{
		Currency: h.report.Currency,
		TopN:     h.report.TopN,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "md" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	page, err := report.HTMLPage(md)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
