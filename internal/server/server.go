package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"importacao/internal/api"
	"importacao/internal/config"
	"importacao/internal/source"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	cfg    *config.AppConfig
	api    *api.Handler
}

// NewServer 创建服务器；src 由调用方打开并在退出时关闭
func NewServer(cfg *config.AppConfig, src source.Source) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.Default(),
		cfg:    cfg,
		api:    api.NewHandler(src, cfg),
	}

	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html"))
	s.router.SetHTMLTemplate(tmpl)

	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	// 看板
	s.router.GET("/", s.Dashboard)
	s.router.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/")
	})
}

// Handler 底层 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
