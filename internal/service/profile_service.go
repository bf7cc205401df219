package service

import (
	"context"
	"time"

	"github.com/journey-feed-api/internal/metrics"
	"github.com/journey-feed-api/internal/models"
	"github.com/journey-feed-api/internal/repository"
	"github.com/journey-feed-api/internal/validation"
	"github.com/rs/zerolog"
)

// profileService is the concrete implementation of ProfileService
type profileService struct {
	profiles  repository.ProfileRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newProfileService(profiles repository.ProfileRepository, v *validation.Validator, log zerolog.Logger) *profileService {
	return &profileService{
		profiles:  profiles,
		validator: v,
		log:       log.With().Str("service", "profile").Logger(),
	}
}

// Get returns the profile with its day counters, or nil
func (s *profileService) Get(ctx context.Context, id string) *models.ProfileDetails {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		metrics.ObserveQueryFailure("get_profile")
		s.log.Error().Err(err).Str("profile_id", id).Msg("Profile query failed, returning not found")
		return nil
	}
	return models.NewProfileDetails(p, time.Now())
}

// Upsert creates or updates the profile owned by id
func (s *profileService) Upsert(ctx context.Context, id string, req *models.UpsertProfileRequest) *models.ProfileResult {
	if id == "" {
		return &models.ProfileResult{Success: false, Message: "login required"}
	}

	s.validator.NormalizeProfile(req)
	if errs := s.validator.ValidateProfile(req); len(errs) > 0 {
		return &models.ProfileResult{Success: false, Message: errs[0].Message, Errors: errs}
	}

	existing, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("profile_id", id).Msg("Existing profile lookup failed")
	}

	p := &models.Profile{
		ID:                        id,
		Username:                  optional(req.Username),
		FullName:                  optional(req.FullName),
		AvatarURL:                 optional(req.AvatarURL),
		Website:                   optional(req.Website),
		Age:                       req.Age,
		Career:                    optional(req.Career),
		Bio:                       optional(req.Bio),
		ConsiderationStartDate:    optionalDate(req.ConsiderationStartDate),
		EntrepreneurshipStartDate: optionalDate(req.EntrepreneurshipStartDate),
	}
	if existing != nil {
		p.CreatedAt = existing.CreatedAt
	}

	if err := s.profiles.Upsert(ctx, p); err != nil {
		if repository.IsUsernameTaken(err) {
			msg := "this username is already taken"
			return &models.ProfileResult{
				Success: false,
				Message: msg,
				Errors:  []models.ValidationError{{Field: "username", Message: msg, Value: req.Username}},
			}
		}
		s.log.Error().Err(err).Str("profile_id", id).Msg("Failed to save profile")
		return &models.ProfileResult{Success: false, Message: "failed to save the profile, please try again later"}
	}

	s.log.Info().Str("profile_id", id).Bool("created", existing == nil).Msg("Profile saved")
	return &models.ProfileResult{
		Success: true,
		Message: "profile saved",
		Profile: models.NewProfileDetails(p, time.Now()),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := validation.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}
