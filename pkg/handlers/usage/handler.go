package usage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/de-tools/spend-watch/pkg/adapters"
	"github.com/de-tools/spend-watch/pkg/models/api"
	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/pipeline"
	"github.com/de-tools/spend-watch/pkg/services/threshold"
	"github.com/rs/zerolog"
)

// Service is the part of the pipeline the HTTP API exposes
type Service interface {
	Collect(ctx context.Context) (*pipeline.Snapshot, error)
	RunOnce(ctx context.Context) (*domain.RunResult, error)
}

type Info struct {
	Provider  string
	Currency  string
	Threshold float64
}

type Handler struct {
	service Service
	info    Info
}

func NewHandler(service Service, info Info) *Handler {
	return &Handler{service: service, info: info}
}

func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	snapshot, err := h.service.Collect(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to query usage")
		writeError(w, r, http.StatusBadGateway, err)
		return
	}

	response := api.UsageReport{
		Provider:  h.info.Provider,
		Currency:  h.info.Currency,
		Period:    adapters.MapPeriodDomainToApi(snapshot.Period),
		Totals:    adapters.MapTotalsDomainToApi(snapshot.Totals),
		Services:  adapters.MapBreakdownDomainToApi(snapshot.Breakdown),
		Threshold: h.info.Threshold,
		Exceeded:  threshold.Exceeded(snapshot.Totals.Amount, h.info.Threshold),
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	// runs to completion even if the client disconnects
	ctx := context.WithoutCancel(r.Context())
	logger := zerolog.Ctx(ctx)

	result, err := h.service.RunOnce(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("triggered run failed")
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrUsageQuery) {
			status = http.StatusBadGateway
		}
		writeError(w, r, status, err)
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapRunResultDomainToApi(result))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, api.Error{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("failed to encode response")
	}
}
