package server

import (
	"embed"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VaazzDan/projeto-bi/internal/api/v1"
	"github.com/VaazzDan/projeto-bi/internal/config"
	"github.com/VaazzDan/projeto-bi/internal/logging"
	"github.com/VaazzDan/projeto-bi/internal/store"
)

//go:embed web/index.html
var webFiles embed.FS

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	v1     *v1.Handler
	logger *slog.Logger
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, logger *slog.Logger) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}
	logger = logging.Component(logger, "server")

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}

	sqliteStore, err := store.New(config.ResolvePath(dataDir, cfg.Data.DBFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mappings, err := store.OpenMappingStore(cfg.Mapping.Backend, config.ResolvePath(dataDir, cfg.Data.MappingFile), sqliteStore)
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	// 创建 V1 API 处理器
	v1Handler := v1.NewHandler(v1.Options{
		Store:      sqliteStore,
		Mappings:   mappings,
		Columns:    cfg.Columns,
		Report:     cfg.Report,
		OutputPath: config.ResolvePath(dataDir, cfg.Data.OutputFile),
		UploadDir:  config.ResolvePath(dataDir, "uploads"),
		ExportDir:  config.ResolvePath(dataDir, "exports"),
		Logger:     logger,
	})

	s := &Server{
		router: gin.New(),
		store:  sqliteStore,
		v1:     v1Handler,
		logger: logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()

	logger.Info("server ready", "data_dir", dataDir, "mapping_backend", cfg.Mapping.Backend)
	return s, nil
}

// requestLogger 以 slog 记录每个请求
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// V1 API 路由
	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	// 首页
	s.router.GET("/", func(c *gin.Context) {
		data, err := webFiles.ReadFile("web/index.html")
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭数据库
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
