package api

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
	logger         *zap.Logger
}

func NewWorkoutHandler(workoutService service.WorkoutService, logger *zap.Logger) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, logger: logger}
}

// --- Request Structs ---

type CreateWorkoutRequest struct {
	UserID string `json:"userId" binding:"required,objectid"`
	Name   string `json:"name" binding:"max=100"`
}

type WorkoutRequest struct {
	WorkoutID string `json:"workoutId" binding:"required,objectid"`
}

type WorkoutMachineRequest struct {
	WorkoutID string `json:"workoutId" binding:"required,objectid"`
	MachineID string `json:"machineId" binding:"required,objectid"`
}

// AddCardioRequest: time is in seconds. Pointers tell a zero apart from a missing field.
type AddCardioRequest struct {
	WorkoutMachineRequest
	Distance *float64 `json:"distance" binding:"required,gte=0"`
	Time     *int     `json:"time" binding:"required,gt=0"`
}

type AddSetRequest struct {
	WorkoutMachineRequest
	Weight *float64 `json:"weight" binding:"required,gte=0"`
	Reps   int      `json:"reps" binding:"required,min=1"`
}

type SetInput struct {
	Weight float64 `json:"weight" binding:"gte=0"`
	Reps   int     `json:"reps" binding:"required,min=1"`
}

type AddExerciseRequest struct {
	WorkoutID string     `json:"workoutId" binding:"required,objectid"`
	Name      string     `json:"name" binding:"required,max=100"`
	Category  string     `json:"category" binding:"required,oneof=cardio strength"`
	Sets      []SetInput `json:"sets" binding:"omitempty,dive"`
	Distance  float64    `json:"distance" binding:"gte=0"`
	Time      int        `json:"time" binding:"gte=0"`
}

type RateWorkoutRequest struct {
	WorkoutID string `json:"workoutId" binding:"required,objectid"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
}

type GetWorkoutsQuery struct {
	WorkoutID string `form:"workoutId" binding:"omitempty,objectid"`
	UserID    string `form:"userId" binding:"omitempty,objectid"`
}

// --- Response Structs ---

type MachineEntryResponse struct {
	MachineID string                 `json:"machineId"`
	Name      string                 `json:"name"`
	Category  domain.MachineCategory `json:"category"`
	Cardio    []domain.CardioStat    `json:"cardio"`
	Sets      []domain.StrengthSet   `json:"sets"`
	AddedAt   time.Time              `json:"addedAt"`
}

type WorkoutResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"userId"`
	Name        string                 `json:"name,omitempty"`
	Status      domain.WorkoutStatus   `json:"status"`
	Rating      *int                   `json:"rating,omitempty"`
	Machines    []MachineEntryResponse `json:"machines"`
	ExerciseIDs []string               `json:"exercises"`
	StartedAt   time.Time              `json:"startedAt"`
	EndedAt     *time.Time             `json:"endedAt,omitempty"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

type ExerciseResponse struct {
	ID        string                 `json:"id"`
	WorkoutID string                 `json:"workoutId"`
	Name      string                 `json:"name"`
	Category  domain.MachineCategory `json:"category"`
	Sets      []domain.StrengthSet   `json:"sets,omitempty"`
	Distance  float64                `json:"distance,omitempty"`
	Time      int                    `json:"time,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type WorkoutDetailsResponse struct {
	Workout   WorkoutResponse    `json:"workout"`
	Exercises []ExerciseResponse `json:"exercises"`
}

type UserWorkoutsResponse struct {
	CurrentWorkout *WorkoutResponse  `json:"currentWorkout"`
	Workouts       []WorkoutResponse `json:"workouts"`
}

type AddExerciseResponse struct {
	Exercise ExerciseResponse `json:"exercise"`
	Workout  WorkoutResponse  `json:"workout"`
}

// --- Handler Methods ---

// CreateWorkout godoc
// @Summary Start a workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param workout body CreateWorkoutRequest true "Owner and optional name"
// @Success 201 {object} WorkoutResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 409 {object} ErrorResponse "User already has an active workout"
// @Security BearerAuth
// @Router /workouts/create [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), sessionUserID(c), objectID(req.UserID), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// GetWorkouts godoc
// @Summary Fetch one workout, or all of a user's workouts
// @Description With workoutId returns that workout and its exercises. Otherwise returns the
// @Description current workout and every workout of userId (default: session user), newest first.
// @Tags Workouts
// @Produce json
// @Param workoutId query string false "Workout ID"
// @Param userId query string false "User ID"
// @Success 200 {object} UserWorkoutsResponse
// @Security BearerAuth
// @Router /workouts/get [get]
func (h *WorkoutHandler) GetWorkouts(c *gin.Context) {
	var q GetWorkoutsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	if q.WorkoutID != "" {
		details, err := h.workoutService.GetWorkout(ctx, sessionUserID(c), objectID(q.WorkoutID))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		resp := WorkoutDetailsResponse{
			Workout:   MapWorkoutToResponse(details.Workout),
			Exercises: make([]ExerciseResponse, len(details.Exercises)),
		}
		for i := range details.Exercises {
			resp.Exercises[i] = MapExerciseToResponse(&details.Exercises[i])
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	all, err := h.workoutService.GetUserWorkouts(ctx, sessionUserID(c), userIDOrSession(c, q.UserID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	resp := UserWorkoutsResponse{Workouts: make([]WorkoutResponse, len(all.Workouts))}
	for i := range all.Workouts {
		resp.Workouts[i] = MapWorkoutToResponse(&all.Workouts[i])
	}
	if all.Current != nil {
		current := MapWorkoutToResponse(all.Current)
		resp.CurrentWorkout = &current
	}
	c.JSON(http.StatusOK, resp)
}

// AddMachine godoc
// @Summary Add a machine to an active workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param entry body WorkoutMachineRequest true "Workout and machine"
// @Success 200 {object} WorkoutResponse
// @Failure 409 {object} ErrorResponse "Workout ended or machine already added"
// @Security BearerAuth
// @Router /workout/machines/add [put]
func (h *WorkoutHandler) AddMachine(c *gin.Context) {
	var req WorkoutMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	workout, err := h.workoutService.AddMachine(c.Request.Context(), sessionUserID(c), objectID(req.WorkoutID), objectID(req.MachineID))
	h.respondWorkout(c, workout, err)
}

// AddCardio godoc
// @Summary Record distance and time on a cardio machine
// @Tags Workouts
// @Accept json
// @Produce json
// @Param stats body AddCardioRequest true "Distance and time in seconds"
// @Success 200 {object} WorkoutResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /workout/machines/cardio/add [put]
func (h *WorkoutHandler) AddCardio(c *gin.Context) {
	var req AddCardioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	workout, err := h.workoutService.AddCardio(c.Request.Context(), sessionUserID(c),
		objectID(req.WorkoutID), objectID(req.MachineID), *req.Distance, *req.Time)
	h.respondWorkout(c, workout, err)
}

// AddSet godoc
// @Summary Record a set on a strength machine
// @Tags Workouts
// @Accept json
// @Produce json
// @Param set body AddSetRequest true "Weight and reps"
// @Success 200 {object} WorkoutResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /workout/machines/sets/add [put]
func (h *WorkoutHandler) AddSet(c *gin.Context) {
	var req AddSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	workout, err := h.workoutService.AddSet(c.Request.Context(), sessionUserID(c),
		objectID(req.WorkoutID), objectID(req.MachineID), *req.Weight, req.Reps)
	h.respondWorkout(c, workout, err)
}

// AddExercise godoc
// @Summary Log a free-form exercise in a workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param exercise body AddExerciseRequest true "Exercise details"
// @Success 201 {object} AddExerciseResponse
// @Security BearerAuth
// @Router /workout/exercises/add [put]
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sets := make([]domain.StrengthSet, len(req.Sets))
	for i, s := range req.Sets {
		sets[i] = domain.StrengthSet{Weight: s.Weight, Reps: s.Reps}
	}
	exercise, workout, err := h.workoutService.AddExercise(c.Request.Context(), sessionUserID(c), service.AddExerciseInput{
		WorkoutID: objectID(req.WorkoutID),
		Name:      req.Name,
		Category:  domain.MachineCategory(req.Category),
		Sets:      sets,
		Distance:  req.Distance,
		Time:      req.Time,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, AddExerciseResponse{
		Exercise: MapExerciseToResponse(exercise),
		Workout:  MapWorkoutToResponse(workout),
	})
}

// EndWorkout godoc
// @Summary End an active workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param workout body WorkoutRequest true "Workout"
// @Success 200 {object} WorkoutResponse
// @Failure 409 {object} ErrorResponse "Already ended"
// @Security BearerAuth
// @Router /workout/end [put]
func (h *WorkoutHandler) EndWorkout(c *gin.Context) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	workout, err := h.workoutService.EndWorkout(c.Request.Context(), sessionUserID(c), objectID(req.WorkoutID))
	h.respondWorkout(c, workout, err)
}

// RateWorkout godoc
// @Summary Rate an ended workout from 1 to 5
// @Tags Workouts
// @Accept json
// @Produce json
// @Param rating body RateWorkoutRequest true "Rating"
// @Success 200 {object} WorkoutResponse
// @Failure 409 {object} ErrorResponse "Workout has not ended"
// @Security BearerAuth
// @Router /workout/rate [put]
func (h *WorkoutHandler) RateWorkout(c *gin.Context) {
	var req RateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	workout, err := h.workoutService.RateWorkout(c.Request.Context(), sessionUserID(c), objectID(req.WorkoutID), req.Rating)
	h.respondWorkout(c, workout, err)
}

func (h *WorkoutHandler) respondWorkout(c *gin.Context, workout *domain.Workout, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// --- Mappers ---

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	resp := WorkoutResponse{
		ID:          w.ID.Hex(),
		UserID:      w.UserID.Hex(),
		Name:        w.Name,
		Status:      w.Status,
		Rating:      w.Rating,
		Machines:    make([]MachineEntryResponse, len(w.Machines)),
		ExerciseIDs: hexIDs(w.ExerciseIDs),
		StartedAt:   w.StartedAt,
		EndedAt:     w.EndedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for i, e := range w.Machines {
		resp.Machines[i] = MachineEntryResponse{
			MachineID: e.MachineID.Hex(),
			Name:      e.Name,
			Category:  e.Category,
			Cardio:    nonNil(e.Cardio),
			Sets:      nonNil(e.Sets),
			AddedAt:   e.AddedAt,
		}
	}
	return resp
}

func MapExerciseToResponse(e *domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:        e.ID.Hex(),
		WorkoutID: e.WorkoutID.Hex(),
		Name:      e.Name,
		Category:  e.Category,
		Sets:      e.Sets,
		Distance:  e.Distance,
		Time:      e.Time,
		CreatedAt: e.CreatedAt,
	}
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// nonNil keeps empty lists as [] rather than null in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
