package v1

import (
	"log/slog"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/importer"
	"github.com/VaazzDan/projeto-bi/internal/logging"
	"github.com/VaazzDan/projeto-bi/internal/mapping"
	"github.com/VaazzDan/projeto-bi/internal/store"
)

// Options Handler 依赖
type Options struct {
	Store      *store.Store
	Mappings   mapping.EditableStore
	Columns    config.ColumnsConfig
	Report     config.ReportConfig
	OutputPath string // 默认结果文件
	UploadDir  string
	ExportDir  string
	Logger     *slog.Logger
}

// Handler V1 API 处理器
type Handler struct {
	store      *store.Store
	mappings   mapping.EditableStore
	columns    config.ColumnsConfig
	report     config.ReportConfig
	outputPath string
	uploadDir  string
	exportDir  string
	logger     *slog.Logger
	downloads  *exportDownloadStore

	// 同一时间只允许一个批处理写映射表
	importMu sync.Mutex
}

// NewHandler 创建 V1 API 处理器
func NewHandler(opts Options) *Handler {
	return &Handler{
		store:      opts.Store,
		mappings:   opts.Mappings,
		columns:    opts.Columns,
		report:     opts.Report,
		outputPath: opts.OutputPath,
		uploadDir:  opts.UploadDir,
		exportDir:  opts.ExportDir,
		logger:     logging.Component(opts.Logger, "api"),
		downloads:  newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/runs", h.ListRuns)

	// 批处理（上传台账）
	router.POST("/import", h.Import)

	// 映射表编辑
	router.GET("/mappings", h.GetMappings)
	router.PUT("/mappings", h.ReplaceMappings)

	// 看板、审计与报告
	router.GET("/cohorts", h.GetCohorts)
	router.GET("/audit", h.GetAudit)
	router.GET("/report", h.GetReport)

	// 结果下载
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}

func (h *Handler) newCoordinator() *importer.Coordinator {
	var runs importer.RunLog
	if h.store != nil {
		runs = h.store
	}
	return importer.NewCoordinator(h.mappings, runs, h.columns, h.logger)
}
