package catalog

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/domain/product"
	"storefront/internal/httpx"
)

type Store interface {
	List(ctx context.Context) ([]product.Product, error)
	Get(ctx context.Context, id int64) (product.Product, error)
}

type Handler struct {
	store Store
	log   *slog.Logger
}

func NewHandler(store Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, log: log}
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error("product list failed", "err", err)
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, items)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(c, apperr.New(apperr.InvalidArgument, "invalid product id"))
		return
	}

	p, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unavailable {
			h.log.Error("product get failed", "id", id, "err", err)
		}
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, p)
}
