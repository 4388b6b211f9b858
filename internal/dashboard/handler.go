package dashboard

import (
	"context"
	"net/http"

	"github.com/2beens/fitlife/internal/auth"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=dashboard_test

type dashboardService interface {
	Today(ctx context.Context, userID string) *Dashboard
}

type Handler struct {
	service dashboardService
}

func NewHandler(service dashboardService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.today")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	pkg.WriteJSON(w, handler.service.Today(ctx, userID), http.StatusOK)
}
