package cart

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/domain/cart"
	"storefront/internal/httpx"
)

type Store interface {
	AddOrIncrement(ctx context.Context, userID, productID, variantID int64, qty int) error
	List(ctx context.Context, userID int64) ([]cart.Line, error)
	Remove(ctx context.Context, userID, cartID int64) error
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

type addItemReq struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	VariantID int64 `json:"variant_id" binding:"gte=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

func (h *Handler) AddItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, apperr.Wrap(apperr.InvalidArgument, "product_id and a positive quantity are required", err))
		return
	}
	if req.Quantity > MaxLineQuantity {
		httpx.Fail(c, apperr.Newf(apperr.InvalidArgument, "quantity exceeds %d per line", MaxLineQuantity))
		return
	}

	err := h.store.AddOrIncrement(c.Request.Context(), auth.UserID(c), req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unavailable {
			h.log.Error("cart add failed", "err", err)
		}
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "item added to cart")
}

func (h *Handler) GetMyCart(c *gin.Context) {
	lines, err := h.store.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.log.Error("cart list failed", "err", err)
		httpx.Fail(c, err)
		return
	}
	if lines == nil {
		lines = []cart.Line{}
	}
	httpx.OK(c, lines)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	cartID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || cartID <= 0 {
		httpx.Fail(c, apperr.New(apperr.InvalidArgument, "invalid cart item id"))
		return
	}

	if err := h.store.Remove(c.Request.Context(), auth.UserID(c), cartID); err != nil {
		if apperr.KindOf(err) == apperr.Unavailable {
			h.log.Error("cart remove failed", "err", err)
		}
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "item removed from cart")
}
