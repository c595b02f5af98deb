package orders

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/domain/order"
	"storefront/internal/httpx"
)

type Store interface {
	Place(ctx context.Context, userID int64, method order.PaymentMethod) (order.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]order.Order, error)
	Get(ctx context.Context, userID, orderID int64) (order.Order, error)
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

type placeOrderReq struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

func (h *Handler) Place(c *gin.Context) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, apperr.Wrap(apperr.InvalidArgument, "payment_method is required", err))
		return
	}

	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	o, err := h.store.Place(c.Request.Context(), auth.UserID(c), method)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unavailable {
			h.log.Error("order placement failed", "err", err)
		}
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, o)
}

func (h *Handler) ListMine(c *gin.Context) {
	out, err := h.store.ListByUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.log.Error("order list failed", "err", err)
		httpx.Fail(c, err)
		return
	}
	if out == nil {
		out = []order.Order{}
	}
	httpx.OK(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		httpx.Fail(c, apperr.New(apperr.InvalidArgument, "invalid order id"))
		return
	}

	o, err := h.store.Get(c.Request.Context(), auth.UserID(c), orderID)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unavailable {
			h.log.Error("order get failed", "err", err)
		}
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, o)
}
