package service

import (
	"context"

	"user-management/internal/domain"
	"user-management/internal/dto"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID domain.UserID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID domain.UserID, r dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	Dashboard(ctx context.Context, userID domain.UserID) (*dto.DashboardResponse, error)
}
