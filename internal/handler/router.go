package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	catalogHandler "github.com/zhouzirui/manga-thumb/backend/internal/handler/catalog"
	"github.com/zhouzirui/manga-thumb/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/manga-thumb/backend/internal/middleware"
	catalogModel "github.com/zhouzirui/manga-thumb/backend/internal/model/catalog"
	"github.com/zhouzirui/manga-thumb/backend/pkg/utils"
)

// webhookPrefix 是 Telegram webhook 路由的前缀，后接 bot token。
const webhookPrefix = "/telegram/"

// Deps 汇总路由需要的组件。Webhook 为空时不注册 webhook 路由。
type Deps struct {
	Catalog     catalogModel.Store
	Dispatcher  ws.Dispatcher
	Webhook     http.Handler
	WebhookPath string
	Logger      *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger, webhookPrefix))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Webhook != nil && deps.WebhookPath != "" {
		r.Method(http.MethodPost, deps.WebhookPath, deps.Webhook)
	}

	r.Route("/api", func(api chi.Router) {
		catalogHandler.New(deps.Catalog).RegisterRoutes(api)

		if deps.Dispatcher != nil {
			ws.New(deps.Dispatcher, logger).RegisterRoutes(api)
		}
	})

	return r
}
