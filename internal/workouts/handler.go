package workouts

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

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	List(ctx context.Context, userID string) ([]Workout, error)
	Get(ctx context.Context, userID, workoutID string) (*Workout, error)
	Create(ctx context.Context, userID string, input WorkoutInput) (*Workout, error)
	Update(ctx context.Context, userID, workoutID string, input WorkoutInput) (*Workout, error)
	SetActive(ctx context.Context, userID, workoutID string, active bool) error
	Delete(ctx context.Context, userID, workoutID string) error
	Today(ctx context.Context, userID string, weekday time.Weekday) (*Workout, error)
}

type historyRepo interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]HistoryEntry, error)
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type DeleteWorkoutResponse struct {
	DeletedID string `json:"deletedId"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

const defaultHistoryDays = 30

type Handler struct {
	repo    workoutsRepo
	history historyRepo
	nowFunc func() time.Time
}

func NewHandler(repo workoutsRepo, history historyRepo) *Handler {
	return &Handler{
		repo:    repo,
		history: history,
		nowFunc: time.Now,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workouts, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list workouts for %s: %s", userID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{Workouts: workouts}, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["id"]
	if workoutID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.Get(ctx, userID, workoutID)
	if err != nil {
		handler.writeRepoError(w, "get workout", workoutID, err)
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var input WorkoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("new workout, unmarshal json: %s", err)
		http.Error(w, "invalid workout json", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.Create(ctx, userID, input)
	if err != nil {
		handler.writeRepoError(w, "create workout", input.Name, err)
		return
	}

	log.Debugf("workout %s created for user %s", workout.ID, userID)
	pkg.WriteJSON(w, workout, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["id"]
	if workoutID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var input WorkoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("update workout, unmarshal json: %s", err)
		http.Error(w, "invalid workout json", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.Update(ctx, userID, workoutID, input)
	if err != nil {
		handler.writeRepoError(w, "update workout", workoutID, err)
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.setActive")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["id"]
	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := handler.repo.SetActive(ctx, userID, workoutID, req.Active); err != nil {
		handler.writeRepoError(w, "set workout active", workoutID, err)
		return
	}

	pkg.WriteJSON(w, req, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["id"]
	if err := handler.repo.Delete(ctx, userID, workoutID); err != nil {
		handler.writeRepoError(w, "delete workout", workoutID, err)
		return
	}

	pkg.WriteJSON(w, DeleteWorkoutResponse{DeletedID: workoutID}, http.StatusOK)
}

// HandleToday answers 204 when nothing is scheduled today.
func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.today")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workout, err := handler.repo.Today(ctx, userID, handler.nowFunc().Weekday())
	if errors.Is(err, ErrWorkoutNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		handler.writeRepoError(w, "today's workout", userID, err)
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

// HandleHistory lists entries since ?since=YYYY-MM-DD, the last 30 days by default.
func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	since := pkg.DateOf(handler.nowFunc()).AddDate(0, 0, -defaultHistoryDays)
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		parsed, err := pkg.ParseDate(sinceStr)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		since = parsed
	}

	entries, err := handler.history.ListSince(ctx, userID, since)
	if err != nil {
		log.Errorf("list history for %s: %s", userID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, HistoryResponse{Entries: entries}, http.StatusOK)
}

func (handler *Handler) writeRepoError(w http.ResponseWriter, action, subject string, err error) {
	switch {
	case errors.Is(err, ErrWorkoutNotFound):
		http.Error(w, "workout not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidWorkout):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s [%s]: %s", action, subject, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
	}
}
