package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VaazzDan/projeto-bi/internal/importer"
)

// Import 上传台账并执行批处理 (SSE 流式响应)
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arquivo não enviado"})
		return
	}

	if !h.importMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "processamento já em andamento"})
		return
	}
	defer h.importMu.Unlock()

	uploadDir := h.uploadDir
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	tempFilePath := filepath.Join(uploadDir, fmt.Sprintf("projuris_import_%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename)))
	if err := c.SaveUploadedFile(fileHeader, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao salvar arquivo"})
		return
	}
	defer os.Remove(tempFilePath)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming não suportado"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.newCoordinator().Run(importer.RunOptions{
		LedgerPath: tempFilePath,
		Sheet:      c.PostForm("sheet"),
		OutputPath: h.outputPath,
	})

	for event := range progressChan {
		if event.Type == importer.EventDone && h.outputPath != "" {
			if report, ok := event.Data.(*importer.RunReport); ok {
				token := h.downloads.put(h.outputPath, false, 10*time.Minute)
				event.Data = gin.H{
					"report":      report,
					"downloadUrl": "/api/export/download/" + token,
				}
			}
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
