package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-referral-service/internal/dispatcher"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
)

// OpsHandler is the thin operational surface: manual triggers and
// read-only ledger queries. All real work still flows through the job
// lanes.
type OpsHandler struct {
	Dispatcher *dispatcher.Dispatcher
	WalletUC   usecase.WalletUsecase
	Logger     *slog.Logger
}

func NewOpsHandler(d *dispatcher.Dispatcher, walletUC usecase.WalletUsecase, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{
		Dispatcher: d,
		WalletUC:   walletUC,
		Logger:     logger,
	}
}

func (h *OpsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /ops/disburse", h.triggerDisburse)
	mux.HandleFunc("POST /ops/disburse-onhold", h.triggerDisburseOnHold)
	mux.HandleFunc("POST /ops/lanes/{lane}/drain", h.drainLane)
	mux.HandleFunc("GET /ops/lanes/{lane}/dead", h.listDeadJobs)
	mux.HandleFunc("GET /ops/wallets/{accountID}/balance", h.walletBalance)
	mux.HandleFunc("GET /ops/accounts/{accountID}/commissions", h.commissionHistory)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// triggerDisburse enqueues an ad-hoc disbursement run outside the
// schedule.
func (h *OpsHandler) triggerDisburse(w http.ResponseWriter, r *http.Request) {
	job, err := h.Dispatcher.Enqueue(r.Context(), domain.LaneCritical, domain.JobDisburseCommission, nil)
	if err != nil {
		h.Logger.Error("failed to enqueue manual disbursement", "error", err)
		http.Error(w, "failed to enqueue", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func (h *OpsHandler) triggerDisburseOnHold(w http.ResponseWriter, r *http.Request) {
	var payload domain.OnHoldPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed criteria", http.StatusBadRequest)
		return
	}

	job, err := h.Dispatcher.Enqueue(r.Context(), domain.LaneCritical, domain.JobOnHoldCommission, payload)
	if err != nil {
		h.Logger.Error("failed to enqueue on-hold disbursement", "error", err)
		http.Error(w, "failed to enqueue", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func (h *OpsHandler) drainLane(w http.ResponseWriter, r *http.Request) {
	lane := domain.Lane(r.PathValue("lane"))
	force := r.URL.Query().Get("force") == "true"

	drained, err := h.Dispatcher.Drain(r.Context(), lane, force)
	if err != nil {
		if errors.Is(err, domain.ErrDrainCriticalLane) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		h.Logger.Error("drain failed", "lane", lane, "error", err)
		http.Error(w, "drain failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"drained": drained})
}

func (h *OpsHandler) listDeadJobs(w http.ResponseWriter, r *http.Request) {
	lane := domain.Lane(r.PathValue("lane"))

	jobs, err := h.Dispatcher.DeadJobs(r.Context(), lane)
	if err != nil {
		http.Error(w, "failed to list dead jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

func (h *OpsHandler) walletBalance(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	balance, err := h.WalletUC.WalletBalance(r.Context(), accountID)
	if err != nil {
		http.Error(w, "failed to read balance", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"account_id": accountID,
		"balance":    balance.StringFixed(2),
	})
}

func (h *OpsHandler) commissionHistory(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	var status *domain.CommissionStatus
	if s := r.URL.Query().Get("status"); s != "" {
		cs := domain.CommissionStatus(s)
		status = &cs
	}

	records, err := h.WalletUC.CommissionHistory(r.Context(), accountID, status)
	if err != nil {
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
