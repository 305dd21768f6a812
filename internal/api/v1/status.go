package v1

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/VaazzDan/projeto-bi/internal/model"
	"github.com/VaazzDan/projeto-bi/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`    // 是否已有处理结果
	LastRunID      string `json:"lastRunId"`      // 最近一次运行
	LastOutputFile string `json:"lastOutputFile"` // 最近一次结果文件
	MappingRows    int    `json:"mappingRows"`    // 映射表行数
	MappedIDs      int    `json:"mappedIds"`      // 已映射 ID 数
	Importing      bool   `json:"importing"`      // 是否有批处理在运行
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{}

	if h.store != nil {
		resp.LastRunID, _ = h.store.GetConfig(store.ConfigLastRunID)
	}
	resp.LastOutputFile = h.resultPath()
	if _, err := os.Stat(resp.LastOutputFile); err == nil {
		resp.Initialized = true
	}

	table, index, err := h.mappings.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp.MappingRows = table.Len()
	resp.MappedIDs = len(index)

	if h.importMu.TryLock() {
		h.importMu.Unlock()
	} else {
		resp.Importing = true
	}

	c.JSON(http.StatusOK, resp)
}

// ListRuns 最近的运行记录
// GET /api/runs
func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"items": []*model.RunRecord{}})
		return
	}
	runs, err := h.store.ListRuns(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*model.RunRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

// resultPath 最近一次成功运行的结果文件，未记录时用默认输出路径
func (h *Handler) resultPath() string {
	if h.store != nil {
		if p, err := h.store.GetConfig(store.ConfigLastOutputFile); err == nil && p != "" {
			return p
		}
	}
	return h.outputPath
}
