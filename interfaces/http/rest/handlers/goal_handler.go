package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain/events"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// GoalHandler handles goal-event endpoints.
type GoalHandler struct {
	goals  ports.GoalRepository
	bus    ports.EventBus
	errors *appErrors.ErrorHandler
	logger *zap.Logger
}

// NewGoalHandler creates a goal handler.
func NewGoalHandler(goals ports.GoalRepository, bus ports.EventBus, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, bus: bus, errors: errorHandler, logger: logger}
}

type recordGoalRequest struct {
	Third           int      `json:"third"`
	Minute          int      `json:"minute"`
	ScorerPlayerID  string   `json:"scorerPlayerId"`
	AssistPlayerIDs []string `json:"assistPlayerIds,omitempty"`
	OwnGoal         bool     `json:"ownGoal,omitempty"`
	ScoringTeamID   string   `json:"scoringTeamId,omitempty"`
}

// Create handles POST /games/{gameID}/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordGoalRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	goal, err := h.goals.RecordGoal(r.Context(), ports.RecordGoalInput{
		GameID:          chi.URLParam(r, "gameID"),
		Third:           req.Third,
		Minute:          req.Minute,
		ScorerPlayerID:  req.ScorerPlayerID,
		AssistPlayerIDs: req.AssistPlayerIDs,
		OwnGoal:         req.OwnGoal,
		ScoringTeamID:   req.ScoringTeamID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.bus.Publish(r.Context(), events.NewGoalRecorded(goal.EventID, goal.GameID, goal.OwnGoal, time.Now().UTC())); err != nil {
		h.logger.Warn("Failed to publish event", zap.Error(err))
	}
	common.RespondJSON(w, http.StatusCreated, goal)
}

// List handles GET /games/{gameID}/goals.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.ListGoalEvents(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, goals)
}
