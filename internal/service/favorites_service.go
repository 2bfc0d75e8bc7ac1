package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ozautos/car-marketplace/internal/repository"
	"github.com/ozautos/car-marketplace/internal/view"
)

// favoritesService implements FavoritesService. Favorites have no
// transactional coupling to the reservation workflow; the unique
// (user, car) constraint in the store is the only invariant.
type favoritesService struct {
	favorites repository.FavoriteStore
	views     ViewInvalidator
	logger    zerolog.Logger
}

// NewFavoritesService creates the favorites service.
func NewFavoritesService(favorites repository.FavoriteStore, views ViewInvalidator, logger zerolog.Logger) FavoritesService {
	return &favoritesService{
		favorites: favorites,
		views:     views,
		logger:    logger.With().Str("service", "favorites").Logger(),
	}
}

// Add bookmarks the car for the user. Duplicate pairs fail with
// ErrAlreadyFavorited.
func (s *favoritesService) Add(ctx context.Context, userID, carID uint64) error {
	if err := s.favorites.Add(ctx, userID, carID); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyFavorited), errors.Is(err, repository.ErrCarNotFound):
			return err
		default:
			s.logger.Error().Err(err).Uint64("user_id", userID).Uint64("car_id", carID).Msg("failed to add favorite")
			return ErrInternal
		}
	}
	s.invalidate(ctx)
	return nil
}

// Remove deletes the bookmark, failing with ErrFavoriteNotFound when
// it does not exist.
func (s *favoritesService) Remove(ctx context.Context, userID, carID uint64) error {
	if err := s.favorites.Remove(ctx, userID, carID); err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			return err
		}
		s.logger.Error().Err(err).Uint64("user_id", userID).Uint64("car_id", carID).Msg("failed to remove favorite")
		return ErrInternal
	}
	s.invalidate(ctx)
	return nil
}

// Toggle flips the bookmark and returns the resulting state: true
// when the car is now favorited. It is composed from the existence
// check, delegating to Add or Remove. A concurrent toggle racing the
// existence check loses against the unique constraint and is folded
// into the state it raced to: the pair existing already means
// favorited, the pair already gone means unfavorited.
func (s *favoritesService) Toggle(ctx context.Context, userID, carID uint64) (bool, error) {
	exists, err := s.favorites.Exists(ctx, userID, carID)
	if err != nil {
		s.logger.Error().Err(err).Uint64("user_id", userID).Uint64("car_id", carID).Msg("failed to check favorite")
		return false, ErrInternal
	}
	if exists {
		if err := s.Remove(ctx, userID, carID); err != nil {
			if errors.Is(err, repository.ErrFavoriteNotFound) {
				return false, nil
			}
			return false, err
		}
		return false, nil
	}
	if err := s.Add(ctx, userID, carID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFavorited) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// List returns the user's favorited cars, newest favorite first.
func (s *favoritesService) List(ctx context.Context, userID uint64) ([]repository.FavoriteDetail, error) {
	details, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Uint64("user_id", userID).Msg("failed to list favorites")
		return nil, ErrInternal
	}
	return details, nil
}

func (s *favoritesService) invalidate(ctx context.Context) {
	if s.views == nil {
		return
	}
	s.views.Invalidate(ctx, view.Favorites)
}
