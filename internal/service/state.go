package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pitchbot/internal/domain"
	"pitchbot/internal/models"
)

// StateService is the wizard-facing layer over the state repository.
type StateService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger

	rateLimit  int
	rateWindow time.Duration
}

func NewStateService(stateRepo domain.StateRepository, rateLimit int, rateWindow time.Duration, logger *zerolog.Logger) *StateService {
	return &StateService{
		stateRepo:  stateRepo,
		logger:     logger,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
	}
}

func (s *StateService) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user state")
		return nil, err
	}
	return state, nil
}

func (s *StateService) SetStep(ctx context.Context, userID int64, step string) error {
	_, err := s.UpdateState(ctx, userID, func(state *models.UserState) {
		state.CurrentStep = step
	})
	return err
}

// UpdateState loads the state (creating an empty one when absent), applies
// fn and stores the result.
func (s *StateService) UpdateState(ctx context.Context, userID int64, fn func(*models.UserState)) (*models.UserState, error) {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &models.UserState{
			UserID:   userID,
			TempData: make(map[string]interface{}),
		}
	}
	if state.TempData == nil {
		state.TempData = make(map[string]interface{})
	}

	fn(state)
	state.UpdatedAt = time.Now()

	if err := s.stateRepo.SetState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *StateService) ClearState(ctx context.Context, userID int64) error {
	return s.stateRepo.ClearState(ctx, userID)
}

func (s *StateService) CheckRateLimit(ctx context.Context, userID int64) (bool, error) {
	return s.stateRepo.CheckRateLimit(ctx, userID, s.rateLimit, s.rateWindow)
}
