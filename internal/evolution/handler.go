package evolution

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/fitlife/internal/auth"
	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=evolution_test

type reportBuilder interface {
	Report(ctx context.Context, userID string, params Params) (*Report, error)
}

type Handler struct {
	analyzer reportBuilder
}

func NewHandler(analyzer reportBuilder) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

// HandleReport serves GET /evolution?days=30&exercise=<id>.
func (handler *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.evolution.report")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	params := Params{
		ExerciseID: r.URL.Query().Get("exercise"),
	}
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		params.Days = days
	}

	report, err := handler.analyzer.Report(ctx, userID, params)
	if errors.Is(err, ErrInvalidPeriod) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("evolution report of %s: %s", userID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, report, http.StatusOK)
}
