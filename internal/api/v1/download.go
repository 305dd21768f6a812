package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VaazzDan/projeto-bi/internal/calculator"
	"github.com/VaazzDan/projeto-bi/internal/exporter"
)

type exportDownload struct {
	filePath    string
	removeAfter bool // 下载后删除（临时导出文件）
	expiresAt   time.Time
}

type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportDownload
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{
		items: make(map[string]exportDownload),
	}
}

func (s *exportDownloadStore) put(filePath string, removeAfter bool, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = uuid.NewString()
	s.items[token] = exportDownload{
		filePath:    filePath,
		removeAfter: removeAfter,
		expiresAt:   time.Now().Add(ttl),
	}
	return token
}

// take 取出并作废 token（一次性）
func (s *exportDownloadStore) take(token string) (exportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[token]
	if !ok {
		return exportDownload{}, false
	}
	delete(s.items, token)
	return v, true
}

func (s *exportDownloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			if v.removeAfter {
				_ = os.Remove(v.filePath)
			}
			delete(s.items, k)
		}
	}
}

// ExportRequest 导出请求
type ExportRequest struct {
	Cohorts []string `json:"cohorts"` // 为空时导出全部
}

// Export 按 Turma 筛选导出结果，返回一次性下载链接
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "corpo inválido: " + err.Error()})
			return
		}
	}

	res, ok := h.loadResult(c)
	if !ok {
		return
	}
	entries := calculator.Filter(res.Entries, req.Cohorts)

	dir := h.exportDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("projuris_export_%s.xlsx", uuid.NewString()))
	if err := exporter.WriteResult(path, res.Headers, entries, nil); err != nil {
		h.logger.Error("export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token := h.downloads.put(path, true, 10*time.Minute)
	c.JSON(http.StatusOK, gin.H{
		"rows":        len(entries),
		"downloadUrl": "/api/export/download/" + token,
	})
}

// DownloadExport 下载结果文件（一次性链接）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token ausente"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "link de download expirado"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "arquivo não encontrado"})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(downloadName(time.Now())))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)

	if item.removeAfter {
		_ = os.Remove(item.filePath)
	}
}

func downloadName(now time.Time) string {
	return fmt.Sprintf("financeiro_processado_%s.xlsx", now.Format("2006-01-02"))
}

func buildContentDisposition(filename string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", ascii, url.PathEscape(filename))
}
