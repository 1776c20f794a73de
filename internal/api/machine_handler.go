package api

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MachineHandler struct {
	machineService service.MachineService
	logger         *zap.Logger
}

func NewMachineHandler(machineService service.MachineService, logger *zap.Logger) *MachineHandler {
	return &MachineHandler{machineService: machineService, logger: logger}
}

// --- Request/Response Structs ---

type CreateMachineRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Category string `json:"category" binding:"required,oneof=cardio strength"`
	Status   string `json:"status" binding:"omitempty,oneof=available in-use out-of-service"`
	Location string `json:"location" binding:"max=100"`
}

type UpdateMachineStatusRequest struct {
	MachineID string `json:"machineId" binding:"required,objectid"`
	Status    string `json:"status" binding:"required,oneof=available in-use out-of-service"`
}

type ListMachinesQuery struct {
	Category string `form:"category" binding:"omitempty,oneof=cardio strength"`
	Status   string `form:"status" binding:"omitempty,oneof=available in-use out-of-service"`
}

type MachineResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Category  domain.MachineCategory `json:"category"`
	Status    domain.MachineStatus   `json:"status"`
	Location  string                 `json:"location,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// --- Handler Methods ---

// CreateMachine godoc
// @Summary Add a machine to the gym
// @Tags Machines
// @Accept json
// @Produce json
// @Param machine body CreateMachineRequest true "Machine details"
// @Success 201 {object} MachineResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /machine/create [post]
func (h *MachineHandler) CreateMachine(c *gin.Context) {
	var req CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	machine, err := h.machineService.CreateMachine(c.Request.Context(), service.CreateMachineInput{
		Name:     req.Name,
		Category: domain.MachineCategory(req.Category),
		Status:   domain.MachineStatus(req.Status),
		Location: req.Location,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapMachineToResponse(machine))
}

// ListMachines godoc
// @Summary List machines, optionally filtered
// @Tags Machines
// @Produce json
// @Param category query string false "cardio or strength"
// @Param status query string false "available, in-use or out-of-service"
// @Success 200 {array} MachineResponse
// @Security BearerAuth
// @Router /machines/get [get]
func (h *MachineHandler) ListMachines(c *gin.Context) {
	var q ListMachinesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	machines, err := h.machineService.ListMachines(c.Request.Context(), domain.MachineFilter{
		Category: domain.MachineCategory(q.Category),
		Status:   domain.MachineStatus(q.Status),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]MachineResponse, len(machines))
	for i := range machines {
		resp[i] = MapMachineToResponse(&machines[i])
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Change a machine's status
// @Description Moving a machine to in-use fails with 409 if it already is.
// @Tags Machines
// @Accept json
// @Produce json
// @Param update body UpdateMachineStatusRequest true "New status"
// @Success 200 {object} MachineResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /machine/update_status [put]
func (h *MachineHandler) UpdateStatus(c *gin.Context) {
	var req UpdateMachineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	machine, err := h.machineService.UpdateStatus(c.Request.Context(), objectID(req.MachineID), domain.MachineStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapMachineToResponse(machine))
}

func MapMachineToResponse(m *domain.Machine) MachineResponse {
	return MachineResponse{
		ID:        m.ID.Hex(),
		Name:      m.Name,
		Category:  m.Category,
		Status:    m.Status,
		Location:  m.Location,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
