package diets

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

//go:generate mockgen -source=$GOFILE -destination=diets_mocks_test.go -package=diets_test

type dietsRepo interface {
	List(ctx context.Context, userID string, date time.Time) ([]Diet, error)
	Get(ctx context.Context, userID, dietID string, date time.Time) (*Diet, error)
	Active(ctx context.Context, userID string, date time.Time) (*Diet, error)
	Create(ctx context.Context, userID string, input DietInput) (*Diet, error)
	Update(ctx context.Context, userID, dietID string, input DietInput) (*Diet, error)
	SetActive(ctx context.Context, userID, dietID string, active bool) error
	Delete(ctx context.Context, userID, dietID string) error
	SetMealStatus(ctx context.Context, userID, mealID string, date time.Time, done bool) error
	ToggleMeal(ctx context.Context, userID, mealID string, date time.Time) (bool, error)
}

type ListResponse struct {
	Diets []Diet `json:"diets"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type MealStatusRequest struct {
	Done bool `json:"done"`
	// Date defaults to today.
	Date string `json:"date,omitempty"`
}

type MealStatusResponse struct {
	MealID string `json:"mealId"`
	Date   string `json:"date"`
	Done   bool   `json:"done"`
}

type Handler struct {
	repo    dietsRepo
	nowFunc func() time.Time
}

func NewHandler(repo dietsRepo) *Handler {
	return &Handler{
		repo:    repo,
		nowFunc: time.Now,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.list")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	diets, err := handler.repo.List(ctx, userID, handler.today())
	if err != nil {
		log.Errorf("list diets for %s: %s", userID, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{Diets: diets}, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.get")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	dietID := mux.Vars(r)["id"]
	diet, err := handler.repo.Get(ctx, userID, dietID, handler.today())
	if err != nil {
		writeRepoError(w, "get diet", dietID, err)
		return
	}

	pkg.WriteJSON(w, diet, http.StatusOK)
}

// HandleActive answers 204 when the user has no active diet.
func (handler *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.active")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	diet, err := handler.repo.Active(ctx, userID, handler.today())
	if errors.Is(err, ErrDietNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeRepoError(w, "active diet", userID, err)
		return
	}

	pkg.WriteJSON(w, diet, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.create")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var input DietInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("new diet, unmarshal json: %s", err)
		http.Error(w, "invalid diet json", http.StatusBadRequest)
		return
	}

	diet, err := handler.repo.Create(ctx, userID, input)
	if err != nil {
		writeRepoError(w, "create diet", input.Name, err)
		return
	}

	pkg.WriteJSON(w, diet, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.update")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var input DietInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("update diet, unmarshal json: %s", err)
		http.Error(w, "invalid diet json", http.StatusBadRequest)
		return
	}

	dietID := mux.Vars(r)["id"]
	diet, err := handler.repo.Update(ctx, userID, dietID, input)
	if err != nil {
		writeRepoError(w, "update diet", dietID, err)
		return
	}

	pkg.WriteJSON(w, diet, http.StatusOK)
}

func (handler *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.setActive")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	dietID := mux.Vars(r)["id"]
	if err := handler.repo.SetActive(ctx, userID, dietID, req.Active); err != nil {
		writeRepoError(w, "set diet active", dietID, err)
		return
	}

	pkg.WriteJSON(w, req, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.delete")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	dietID := mux.Vars(r)["id"]
	if err := handler.repo.Delete(ctx, userID, dietID); err != nil {
		writeRepoError(w, "delete diet", dietID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleMeal flips today's status of the meal.
func (handler *Handler) HandleToggleMeal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.toggleMeal")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	mealID := mux.Vars(r)["id"]
	today := handler.today()
	done, err := handler.repo.ToggleMeal(ctx, userID, mealID, today)
	if err != nil {
		writeRepoError(w, "toggle meal", mealID, err)
		return
	}

	pkg.WriteJSON(w, MealStatusResponse{
		MealID: mealID,
		Date:   today.Format(pkg.DateLayout),
		Done:   done,
	}, http.StatusOK)
}

func (handler *Handler) HandleSetMealStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diets.setMealStatus")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	var req MealStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	date := handler.today()
	if req.Date != "" {
		parsed, err := pkg.ParseDate(req.Date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		date = parsed
	}

	mealID := mux.Vars(r)["id"]
	if err := handler.repo.SetMealStatus(ctx, userID, mealID, date, req.Done); err != nil {
		writeRepoError(w, "set meal status", mealID, err)
		return
	}

	pkg.WriteJSON(w, MealStatusResponse{
		MealID: mealID,
		Date:   date.Format(pkg.DateLayout),
		Done:   req.Done,
	}, http.StatusOK)
}

func (handler *Handler) today() time.Time {
	return pkg.DateOf(handler.nowFunc())
}

func writeRepoError(w http.ResponseWriter, action, subject string, err error) {
	switch {
	case errors.Is(err, ErrDietNotFound):
		http.Error(w, "diet not found", http.StatusNotFound)
	case errors.Is(err, ErrMealNotFound):
		http.Error(w, "meal not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidDiet):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s [%s]: %s", action, subject, err)
		http.Error(w, rowstore.Message(err), http.StatusInternalServerError)
	}
}
