package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/catalog"
	"github.com/zhouzirui/manga-thumb/backend/pkg/utils"
)

// Handler 选项目录的HTTP处理器
type Handler struct {
	catalog catalog.Store
}

// New 创建目录处理器
func New(store catalog.Store) *Handler {
	return &Handler{catalog: store}
}

// RegisterRoutes 注册目录相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.handleCatalog)
	r.Get("/catalog/{kind}", h.handleKind)
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.catalog.Catalog())
}

// handleKind 返回单一类别（templates、colors、fonts）的选项
func (h *Handler) handleKind(w http.ResponseWriter, r *http.Request) {
	kind := catalog.Kind(chi.URLParam(r, "kind"))
	options := h.catalog.Catalog().Options(kind)
	if options == nil {
		utils.RespondError(w, http.StatusNotFound, "unknown catalog kind")
		return
	}
	utils.RespondJSON(w, http.StatusOK, options)
}
