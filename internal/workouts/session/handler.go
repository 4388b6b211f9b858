package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fitlife/internal/auth"
	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/internal/workouts"
	"github.com/2beens/fitlife/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=session_test

type sessionManager interface {
	Start(ctx context.Context, userID, workoutID string) (View, error)
	Mutate(ctx context.Context, userID, workoutID string, action Action) (View, error)
	View(userID, workoutID string) (View, error)
	Finish(ctx context.Context, userID, workoutID string, confirmer Confirmer) (*FinishResult, error)
	Discard(ctx context.Context, userID, workoutID string) error
	HasUnsavedSession(ctx context.Context, userID, workoutID string) (bool, error)
}

type quickLogger interface {
	Plan(ctx context.Context, userID, workoutID string) (*QuickLogPlan, error)
	Log(ctx context.Context, userID, workoutID string, trainingDate time.Time, sets map[string][]ExerciseSet) (*FinishResult, error)
}

type ConfirmationResponse struct {
	Prompt    string `json:"prompt"`
	Cancelled bool   `json:"cancelled"`
}

type UnsavedResponse struct {
	WorkoutID string `json:"workoutId"`
	Unsaved   bool   `json:"unsaved"`
}

type QuickLogRequest struct {
	TrainingDate string                   `json:"trainingDate"`
	ExerciseSets map[string][]ExerciseSet `json:"exerciseSets"`
}

type Handler struct {
	manager  sessionManager
	quickLog quickLogger
}

func NewHandler(manager sessionManager, quickLog quickLogger) *Handler {
	return &Handler{
		manager:  manager,
		quickLog: quickLog,
	}
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.start")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["workoutId"]
	view, err := handler.manager.Start(ctx, userID, workoutID)
	if err != nil {
		writeSessionError(w, "start session", workoutID, err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.view")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["workoutId"]
	view, err := handler.manager.View(userID, workoutID)
	if err != nil {
		writeSessionError(w, "view session", workoutID, err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.action")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var action Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		log.Tracef("session action, unmarshal json: %s", err)
		http.Error(w, "invalid action json", http.StatusBadRequest)
		return
	}

	workoutID := mux.Vars(r)["workoutId"]
	view, err := handler.manager.Mutate(ctx, userID, workoutID, action)
	if err != nil {
		writeSessionError(w, "apply session action", workoutID, err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

// HandleFinish saves the session. Incomplete sessions need ?confirm=true,
// without it the answer is 409 with the question to ask the user.
func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.finish")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	confirmParam := r.URL.Query().Get("confirm")
	confirmer := &StaticConfirmer{Answer: confirmParam == "true"}

	workoutID := mux.Vars(r)["workoutId"]
	res, err := handler.manager.Finish(ctx, userID, workoutID, confirmer)
	if errors.Is(err, ErrFinishCancelled) {
		pkg.WriteJSON(w, ConfirmationResponse{
			Prompt:    IncompleteSessionPrompt,
			Cancelled: confirmParam != "",
		}, http.StatusConflict)
		return
	}
	if err != nil {
		writeSessionError(w, "finish session", workoutID, err)
		return
	}

	pkg.WriteJSON(w, res, http.StatusOK)
}

func (handler *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.discard")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["workoutId"]
	if err := handler.manager.Discard(ctx, userID, workoutID); err != nil {
		writeSessionError(w, "discard session", workoutID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleUnsaved(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.unsaved")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["workoutId"]
	unsaved, err := handler.manager.HasUnsavedSession(ctx, userID, workoutID)
	if err != nil {
		writeSessionError(w, "check unsaved session", workoutID, err)
		return
	}

	pkg.WriteJSON(w, UnsavedResponse{WorkoutID: workoutID, Unsaved: unsaved}, http.StatusOK)
}

func (handler *Handler) HandleQuickLogPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.quicklog.plan")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workoutID := mux.Vars(r)["workoutId"]
	plan, err := handler.quickLog.Plan(ctx, userID, workoutID)
	if err != nil {
		writeSessionError(w, "quick log plan", workoutID, err)
		return
	}

	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (handler *Handler) HandleQuickLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.quicklog.log")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var req QuickLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("quick log, unmarshal json: %s", err)
		http.Error(w, "invalid quick log json", http.StatusBadRequest)
		return
	}

	trainingDate, err := pkg.ParseDate(req.TrainingDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workoutID := mux.Vars(r)["workoutId"]
	res, err := handler.quickLog.Log(ctx, userID, workoutID, trainingDate, req.ExerciseSets)
	if err != nil {
		writeSessionError(w, "quick log", workoutID, err)
		return
	}

	pkg.WriteJSON(w, res, http.StatusCreated)
}

func writeSessionError(w http.ResponseWriter, action, workoutID string, err error) {
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, workouts.ErrWorkoutNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSessionFinished):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNoCompletedSets):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrUnknownAction),
		errors.Is(err, ErrUnknownExercise),
		errors.Is(err, ErrUnknownSet),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrFutureDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s [%s]: %s", action, workoutID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
	}
}
