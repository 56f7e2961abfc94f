package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

// goalItem is the stored shape of a goal event.
type goalItem struct {
	PK              string   `dynamodbav:"PK"`
	SK              string   `dynamodbav:"SK"`
	EntityType      string   `dynamodbav:"EntityType"`
	EventID         string   `dynamodbav:"EventID"`
	GameID          string   `dynamodbav:"GameID"`
	Third           int      `dynamodbav:"Third"`
	Minute          int      `dynamodbav:"Minute"`
	ScorerPlayerID  string   `dynamodbav:"ScorerPlayerID"`
	AssistPlayerIDs []string `dynamodbav:"AssistPlayerIDs,omitempty"`
	OwnGoal         bool     `dynamodbav:"OwnGoal"`
	ScoringTeamID   string   `dynamodbav:"ScoringTeamID,omitempty"`
	CreatedAt       string   `dynamodbav:"CreatedAt"`
	UpdatedAt       string   `dynamodbav:"UpdatedAt"`
}

// GoalRepository implements ports.GoalRepository.
type GoalRepository struct {
	base
}

// NewGoalRepository creates a goal repository.
func NewGoalRepository(store kvstore.Store, logger *zap.Logger) *GoalRepository {
	return &GoalRepository{base: newBase(store, logger)}
}

// RecordGoal validates the goal-event invariants and appends the event to
// the game timeline.
func (r *GoalRepository) RecordGoal(ctx context.Context, input ports.RecordGoalInput) (*domain.GoalEvent, error) {
	now := r.now()
	goal := &domain.GoalEvent{
		EventID:         uuid.NewString(),
		GameID:          input.GameID,
		Third:           input.Third,
		Minute:          input.Minute,
		ScorerPlayerID:  input.ScorerPlayerID,
		AssistPlayerIDs: input.AssistPlayerIDs,
		OwnGoal:         input.OwnGoal,
		ScoringTeamID:   input.ScoringTeamID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	item, err := marshalItem(goalItem{
		PK:              kvstore.GamePK(goal.GameID),
		SK:              kvstore.GoalSK(goal.Third, goal.Minute, goal.EventID),
		EntityType:      entityGoalEvent,
		EventID:         goal.EventID,
		GameID:          goal.GameID,
		Third:           goal.Third,
		Minute:          goal.Minute,
		ScorerPlayerID:  goal.ScorerPlayerID,
		AssistPlayerIDs: goal.AssistPlayerIDs,
		OwnGoal:         goal.OwnGoal,
		ScoringTeamID:   goal.ScoringTeamID,
		CreatedAt:       formatTime(now),
		UpdatedAt:       formatTime(now),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("record goal", err)
	}
	if err := r.store.Put(ctx, item, false); err != nil {
		return nil, appErrors.NewDatabaseError("record goal", err)
	}

	r.logger.Info("Goal recorded",
		zap.String("eventID", goal.EventID),
		zap.String("gameID", goal.GameID),
		zap.Int("third", goal.Third),
		zap.Int("minute", goal.Minute),
	)
	return goal, nil
}

// ListGoalEvents returns the game's goals in timeline order: the sort key
// embeds (third, zero-padded minute, eventId), so store order is the answer.
func (r *GoalRepository) ListGoalEvents(ctx context.Context, gameID string) ([]domain.GoalEvent, error) {
	rows, err := r.store.QueryPrefix(ctx, kvstore.GamePK(gameID), kvstore.GoalPrefix)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list goals", err)
	}

	goals := make([]domain.GoalEvent, 0, len(rows))
	for _, raw := range rows {
		var item goalItem
		ok, err := decodeItem(raw, entityGoalEvent, &item)
		if err != nil {
			return nil, appErrors.NewDatabaseError("decode goal", err)
		}
		if !ok {
			continue
		}
		goals = append(goals, domain.GoalEvent{
			EventID:         item.EventID,
			GameID:          item.GameID,
			Third:           item.Third,
			Minute:          item.Minute,
			ScorerPlayerID:  item.ScorerPlayerID,
			AssistPlayerIDs: item.AssistPlayerIDs,
			OwnGoal:         item.OwnGoal,
			ScoringTeamID:   item.ScoringTeamID,
			CreatedAt:       parseTime(item.CreatedAt),
			UpdatedAt:       parseTime(item.UpdatedAt),
		})
	}
	return goals, nil
}
