package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/VaazzDan/projeto-bi/internal/mapping"
)

// MappingsResponse 映射表响应
type MappingsResponse struct {
	Rows  []mapping.Pair    `json:"rows"`
	Index map[string]string `json:"index"` // ID -> 规范标签
}

// GetMappings 获取映射表
// GET /api/mappings
func (h *Handler) GetMappings(c *gin.Context) {
	table, index, err := h.mappings.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rows := table.Rows
	if rows == nil {
		rows = []mapping.Pair{}
	}
	c.JSON(http.StatusOK, MappingsResponse{Rows: rows, Index: index})
}

// ReplaceMappingsRequest 映射表整表覆盖请求
type ReplaceMappingsRequest struct {
	Rows []mapping.Pair `json:"rows"`
}

// ReplaceMappings 覆盖映射表（编辑器保存）
// PUT /api/mappings
//
// De 为空的行丢弃；同一 De 多行保留第一行。
func (h *Handler) ReplaceMappings(c *gin.Context) {
	var req ReplaceMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo inválido: " + err.Error()})
		return
	}

	if !h.importMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "processamento em andamento, tente novamente"})
		return
	}
	defer h.importMu.Unlock()

	cleaned := make([]mapping.Pair, 0, len(req.Rows))
	for _, p := range req.Rows {
		p.De = strings.TrimSpace(p.De)
		p.Para = strings.TrimSpace(p.Para)
		if p.De == "" {
			continue
		}
		cleaned = append(cleaned, p)
	}
	table := mapping.Merge(mapping.Table{}, cleaned)

	if err := h.mappings.Replace(table); err != nil {
		h.logger.Error("mapping replace failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("mapping table replaced", "rows", table.Len())

	c.JSON(http.StatusOK, MappingsResponse{Rows: table.Rows, Index: mapping.BuildIndex(table)})
}
