package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/artishokq/order-payments-saga/internal/payments"
)

type AccountsHandler struct {
	Store *payments.Store
}

type TopUpReq struct {
	Amount decimal.Decimal `json:"Amount"`
}

func (h *AccountsHandler) Register(r *chi.Mux) {
	r.Post("/api/v1/payments/accounts/{userId}", h.createAccount)
	r.Post("/api/v1/payments/accounts/{userId}/topup", h.topUp)
	r.Get("/api/v1/payments/accounts/{userId}/balance", h.getBalance)
}

func (h *AccountsHandler) createAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.CreateAccount(ctx, userID); err != nil {
		if errors.Is(err, payments.ErrAccountExists) {
			writeError(w, http.StatusBadRequest, "account already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AccountsHandler) topUp(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req TopUpReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.TopUp(ctx, userID, req.Amount); err != nil {
		if errors.Is(err, payments.ErrAccountNotFound) {
			writeError(w, http.StatusBadRequest, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AccountsHandler) getBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	balance, err := h.Store.Balance(ctx, userID)
	if err != nil {
		if errors.Is(err, payments.ErrAccountNotFound) {
			writeError(w, http.StatusBadRequest, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"Balance": balance})
}
