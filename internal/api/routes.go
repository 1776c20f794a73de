package api

import (
	"alcyxob/gym-tracker/internal/service"
	"net/http"
	"os"
	"os/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles everything the route handlers call into.
type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Machines service.MachineService
	Workouts service.WorkoutService
}

// updateMethods are accepted on every route that modifies an existing document.
var updateMethods = []string{http.MethodPut, http.MethodPost}

func SetupRoutes(router *gin.Engine, logger *zap.Logger, services Services, metrics http.Handler) {
	registerValidators()

	authHandler := NewAuthHandler(services.Auth, logger)
	userHandler := NewUserHandler(services.Users, logger)
	machineHandler := NewMachineHandler(services.Machines, logger)
	workoutHandler := NewWorkoutHandler(services.Workouts, logger)

	authMiddleware := AuthMiddleware(services.Auth, logger)

	router.HandleMethodNotAllowed = true
	router.NoRoute(noRoute)
	router.NoMethod(noMethod)

	router.GET("/api", identityProbe)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	apiGroup := router.Group("/api")

	// --- Public auth routes ---
	usersPublic := apiGroup.Group("/users")
	{
		usersPublic.POST("/register", authHandler.Register)
		usersPublic.POST("/login", authHandler.Login)
		usersPublic.POST("/logout", authHandler.Logout)
	}

	protected := apiGroup.Group("")
	protected.Use(authMiddleware)
	{
		// --- Users ---
		protected.GET("/users/get", userHandler.GetUser)
		handleUpdate(protected, "/users/update", userHandler.UpdateUser)
		protected.PATCH("/users/update", userHandler.UpdateUser)

		// --- Machines ---
		protected.POST("/machine/create", machineHandler.CreateMachine)
		handleUpdate(protected, "/machine/update_status", machineHandler.UpdateStatus)
		protected.GET("/machines/get", machineHandler.ListMachines)

		// --- Workouts ---
		protected.POST("/workouts/create", workoutHandler.CreateWorkout)
		protected.GET("/workouts/get", workoutHandler.GetWorkouts)
		handleUpdate(protected, "/workout/exercises/add", workoutHandler.AddExercise)
		handleUpdate(protected, "/workout/machines/add", workoutHandler.AddMachine)
		handleUpdate(protected, "/workout/machines/cardio/add", workoutHandler.AddCardio)
		handleUpdate(protected, "/workout/machines/sets/add", workoutHandler.AddSet)
		handleUpdate(protected, "/workout/end", workoutHandler.EndWorkout)
		handleUpdate(protected, "/workout/rate", workoutHandler.RateWorkout)
	}
}

func handleUpdate(group *gin.RouterGroup, path string, handler gin.HandlerFunc) {
	for _, method := range updateMethods {
		group.Handle(method, path, handler)
	}
}

// identityProbe reports which process answered, for liveness checks.
func identityProbe(c *gin.Context) {
	resp := gin.H{}
	if u, err := user.Current(); err == nil {
		resp["username"] = u.Username
	}
	if host, err := os.Hostname(); err == nil {
		resp["hostname"] = host
	}
	c.JSON(http.StatusOK, resp)
}
