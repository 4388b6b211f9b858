package habits

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fitlife/internal/auth"
	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=habits_mocks_test.go -package=habits_test

type habitsRepo interface {
	Active(ctx context.Context, userID string, date time.Time) ([]Habit, error)
	Create(ctx context.Context, userID string, input HabitInput) (*Habit, error)
	Toggle(ctx context.Context, userID, habitID string, date time.Time) (bool, error)
	Deactivate(ctx context.Context, userID, habitID string) error
}

type ListResponse struct {
	Habits     []Habit `json:"habits"`
	Completion int     `json:"completion"`
}

type ToggleResponse struct {
	HabitID string `json:"habitId"`
	Done    bool   `json:"done"`
}

type Handler struct {
	repo    habitsRepo
	nowFunc func() time.Time
}

func NewHandler(repo habitsRepo) *Handler {
	return &Handler{
		repo:    repo,
		nowFunc: time.Now,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.habits.list")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	habits, err := handler.repo.Active(ctx, userID, pkg.DateOf(handler.nowFunc()))
	if err != nil {
		log.Errorf("list habits for %s: %s", userID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{
		Habits:     habits,
		Completion: Completion(habits),
	}, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.habits.create")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var input HabitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid habit json", http.StatusBadRequest)
		return
	}

	habit, err := handler.repo.Create(ctx, userID, input)
	if err != nil {
		writeRepoError(w, "create habit", input.Name, err)
		return
	}

	pkg.WriteJSON(w, habit, http.StatusCreated)
}

func (handler *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.habits.toggle")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	habitID := mux.Vars(r)["id"]
	done, err := handler.repo.Toggle(ctx, userID, habitID, pkg.DateOf(handler.nowFunc()))
	if err != nil {
		writeRepoError(w, "toggle habit", habitID, err)
		return
	}

	pkg.WriteJSON(w, ToggleResponse{HabitID: habitID, Done: done}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.habits.delete")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	habitID := mux.Vars(r)["id"]
	if err := handler.repo.Deactivate(ctx, userID, habitID); err != nil {
		writeRepoError(w, "delete habit", habitID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeRepoError(w http.ResponseWriter, action, subject string, err error) {
	switch {
	case errors.Is(err, ErrHabitNotFound):
		http.Error(w, "habit not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidHabit):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s [%s]: %s", action, subject, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
	}
}
