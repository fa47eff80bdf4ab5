package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/artishokq/order-payments-saga/internal/orders"
	"github.com/artishokq/order-payments-saga/internal/redisx"
)

type OrdersHandler struct {
	Repo  *orders.Repo
	Redis *redis.Client
}

type CreateOrderReq struct {
	UserID      uuid.UUID       `json:"UserId"`
	Amount      decimal.Decimal `json:"Amount"`
	Description string          `json:"Description"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/v1/orders", h.createOrder)
	r.Get("/api/v1/orders", h.listOrders)
	r.Get("/api/v1/orders/{orderId}", h.getOrder)
	r.Get("/api/v1/orders/{orderId}/status", h.getOrderStatus)
}

// createOrder: insert order + baris outbox atomik; pengiriman ke Kafka
// urusan publisher di belakang, bukan request path.
func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "missing UserId")
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Repo.CreateOrderTx(ctx, req.UserID, req.Amount, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// cache status awal biar GET /status cepat
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, order.ID)
		_ = h.Redis.Set(ctx, key, `{"Status":"NEW"}`, redisx.TTLStatusCache).Err()
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Repo.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Repo.GetByID(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// getOrderStatus: coba cache dulu, fallback DB (DB tetap jadi kebenaran).
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	order, err := h.Repo.GetByID(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, _ := json.Marshal(map[string]any{"Status": order.Status})
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, json.RawMessage(body))
}
