package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/fitlife/internal/auth"
	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=profile_mocks_test.go -package=profile_test

type profileRepo interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, userID string, input ProfileInput) (*Profile, error)
	WeightHistory(ctx context.Context, userID string, limit int) ([]WeightEntry, error)
}

type WeightHistoryResponse struct {
	Entries []WeightEntry `json:"entries"`
	Trend   *WeightTrend  `json:"trend,omitempty"`
}

type Handler struct {
	repo profileRepo
}

func NewHandler(repo profileRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

// HandleGet answers 204 when the user has not filled in a profile yet.
func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.get")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	p, err := handler.repo.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		log.Errorf("get profile of %s: %s", userID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.save")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var input ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid profile json", http.StatusBadRequest)
		return
	}

	p, err := handler.repo.Save(ctx, userID, input)
	if errors.Is(err, ErrInvalidProfile) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("save profile of %s: %s", userID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}

// HandleWeightHistory lists the latest weights, ?limit=N, 30 by default.
func (handler *Handler) HandleWeightHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.weightHistory")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	limit := DefaultWeightHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := handler.repo.WeightHistory(ctx, userID, limit)
	if err != nil {
		log.Errorf("weight history of %s: %s", userID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
		return
	}

	resp := WeightHistoryResponse{Entries: entries}
	if trend, ok := Trend(entries); ok {
		resp.Trend = &trend
	}
	pkg.WriteJSON(w, resp, http.StatusOK)
}
