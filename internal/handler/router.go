package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"giveflow/internal/handler/api"
	"giveflow/internal/handler/middleware"
	"giveflow/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	requestHandler *api.RequestHandler,
	transactionHandler *api.TransactionHandler,
	slotHandler *api.SlotHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, requestHandler, transactionHandler, slotHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	requestHandler *api.RequestHandler,
	transactionHandler *api.TransactionHandler,
	slotHandler *api.SlotHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)
	engine.Static(cfg.Media.BaseURL, cfg.Media.Dir)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		items := apiGroup.Group("/items")
		{
			addRoutes(items, []route{
				{Method: http.MethodGet, Path: "/:id/slots", Handler: slotHandler.Options},
				{Method: http.MethodGet, Path: "/:id/slots/next", Handler: slotHandler.NextDate},
				{Method: http.MethodGet, Path: "/:id/requests", Handler: requestHandler.ListForItem},
			})
		}

		requests := apiGroup.Group("/requests")
		{
			addRoutes(requests, []route{
				{Method: http.MethodPost, Path: "", Handler: requestHandler.Create},
				{Method: http.MethodGet, Path: "/sent", Handler: requestHandler.ListSent},
				{Method: http.MethodGet, Path: "/received", Handler: requestHandler.ListReceived},
				{Method: http.MethodGet, Path: "/:id", Handler: requestHandler.Get},
				{Method: http.MethodPost, Path: "/:id/approve", Handler: requestHandler.Approve},
				{Method: http.MethodPost, Path: "/:id/reject", Handler: requestHandler.Reject},
				{Method: http.MethodDelete, Path: "/:id", Handler: requestHandler.Cancel},
			})
		}

		transactions := apiGroup.Group("/transactions")
		{
			addRoutes(transactions, []route{
				{Method: http.MethodGet, Path: "", Handler: transactionHandler.List},
				{Method: http.MethodPost, Path: "/confirm", Handler: transactionHandler.ConfirmBatch},
				{Method: http.MethodGet, Path: "/:id", Handler: transactionHandler.Get},
				{Method: http.MethodPost, Path: "/:id/arrived", Handler: transactionHandler.Arrived},
				{Method: http.MethodGet, Path: "/:id/code", Handler: transactionHandler.RevealCode},
				{Method: http.MethodPost, Path: "/:id/verify", Handler: transactionHandler.SubmitCode},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: transactionHandler.Confirm},
				{Method: http.MethodPost, Path: "/:id/reject", Handler: transactionHandler.Reject},
				{Method: http.MethodDelete, Path: "/:id", Handler: transactionHandler.Cancel},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
