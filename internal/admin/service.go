// Package admin implements moderation: user bans, listing verification,
// testimonials, flags and the audit trail.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nabil/meshbari/internal/model"
	"github.com/nabil/meshbari/internal/repository"
	"github.com/nabil/meshbari/internal/security"
)

// Service handles admin moderation actions. Every mutation writes an audit
// entry; a failed audit write is logged but never rolls back the action.
type Service struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	listings     repository.ListingRepository
	testimonials repository.TestimonialRepository
	flags        repository.FlagRepository
	logs         repository.AdminLogRepository
	sanitizer    security.ContentSanitizerService
}

// NewService creates an admin service.
func NewService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	listings repository.ListingRepository,
	testimonials repository.TestimonialRepository,
	flags repository.FlagRepository,
	logs repository.AdminLogRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		users:        users,
		sessions:     sessions,
		listings:     listings,
		testimonials: testimonials,
		flags:        flags,
		logs:         logs,
		sanitizer:    sanitizer,
	}
}

// ListUsers returns a page of accounts, newest first.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetUserBanned bans or unbans an account. Banning also revokes every live
// session so the user is logged out immediately. Admins cannot ban admins.
func (s *Service) SetUserBanned(ctx context.Context, adminID, userID string, banned bool) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}
	if user.Role == model.RoleAdmin {
		return model.NewForbiddenError()
	}

	if err := s.users.SetBanned(ctx, userID, banned); err != nil {
		return fmt.Errorf("failed to set banned flag: %w", err)
	}

	if banned {
		if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
			slog.Error("failed to revoke sessions of banned user",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	action := "user.unban"
	if banned {
		action = "user.ban"
	}
	s.audit(ctx, adminID, action, userID, "")
	return nil
}

// SetListingVerified toggles the verified badge on a listing.
func (s *Service) SetListingVerified(ctx context.Context, adminID, listingID string, verified bool) error {
	return s.setListingFlag(ctx, adminID, listingID, "listing.verify", verified, s.listings.SetVerified)
}

// SetListingFeatured toggles a listing's landing-page feature slot.
func (s *Service) SetListingFeatured(ctx context.Context, adminID, listingID string, featured bool) error {
	return s.setListingFlag(ctx, adminID, listingID, "listing.feature", featured, s.listings.SetFeatured)
}

func (s *Service) setListingFlag(ctx context.Context, adminID, listingID, action string, value bool, set func(context.Context, string, bool) error) error {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("failed to find listing: %w", err)
	}
	if listing == nil {
		return model.NewListingNotFoundError(listingID)
	}

	if err := set(ctx, listingID, value); err != nil {
		return fmt.Errorf("failed to update listing flag: %w", err)
	}

	s.audit(ctx, adminID, action, listingID, fmt.Sprintf("%t", value))
	return nil
}

// SubmitTestimonial stores a user quote for admin review. Open to any
// authenticated user, not just admins.
func (s *Service) SubmitTestimonial(ctx context.Context, userID, body string) (*model.Testimonial, error) {
	body = strings.TrimSpace(s.sanitizer.Sanitize(body))
	if body == "" {
		return nil, model.NewValidationError("testimonial text is required")
	}

	testimonial := &model.Testimonial{
		ID:        uuid.New().String(),
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.testimonials.Create(ctx, testimonial); err != nil {
		return nil, fmt.Errorf("failed to create testimonial: %w", err)
	}
	return testimonial, nil
}

// ListTestimonials returns all testimonials for the admin review queue.
func (s *Service) ListTestimonials(ctx context.Context) ([]*model.Testimonial, error) {
	testimonials, err := s.testimonials.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return testimonials, nil
}

// ListApprovedTestimonials returns the quotes shown on the landing page.
func (s *Service) ListApprovedTestimonials(ctx context.Context) ([]*model.Testimonial, error) {
	testimonials, err := s.testimonials.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved testimonials: %w", err)
	}
	return testimonials, nil
}

// SetTestimonialApproved publishes or unpublishes a testimonial.
func (s *Service) SetTestimonialApproved(ctx context.Context, adminID, testimonialID string, approved bool) error {
	if err := s.testimonials.SetApproved(ctx, testimonialID, approved); err != nil {
		return fmt.Errorf("failed to set testimonial approval: %w", err)
	}
	s.audit(ctx, adminID, "testimonial.approve", testimonialID, fmt.Sprintf("%t", approved))
	return nil
}

// DeleteTestimonial removes a testimonial.
func (s *Service) DeleteTestimonial(ctx context.Context, adminID, testimonialID string) error {
	if err := s.testimonials.Delete(ctx, testimonialID); err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	s.audit(ctx, adminID, "testimonial.delete", testimonialID, "")
	return nil
}

// FlagListing files a user report against a listing.
func (s *Service) FlagListing(ctx context.Context, reporterID, listingID, reason string) (*model.Flag, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, model.NewValidationError("a reason is required")
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	if listing == nil {
		return nil, model.NewListingNotFoundError(listingID)
	}

	flag := &model.Flag{
		ID:         uuid.New().String(),
		ListingID:  listingID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     model.FlagStatusOpen,
		CreatedAt:  time.Now(),
	}
	if err := s.flags.Create(ctx, flag); err != nil {
		return nil, fmt.Errorf("failed to create flag: %w", err)
	}

	slog.Info("listing flagged",
		slog.String("flag_id", flag.ID),
		slog.String("listing_id", listingID),
	)
	return flag, nil
}

// ListOpenFlags returns the moderation queue, oldest first.
func (s *Service) ListOpenFlags(ctx context.Context) ([]*model.Flag, error) {
	flags, err := s.flags.ListByStatus(ctx, model.FlagStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to list open flags: %w", err)
	}
	return flags, nil
}

// ResolveFlag closes a flag as resolved or dismissed.
func (s *Service) ResolveFlag(ctx context.Context, adminID, flagID string, dismiss bool) error {
	flag, err := s.flags.FindByID(ctx, flagID)
	if err != nil {
		return fmt.Errorf("failed to find flag: %w", err)
	}
	if flag == nil {
		return model.NewFlagNotFoundError(flagID)
	}
	if flag.Status != model.FlagStatusOpen {
		return model.NewValidationError("the flag is already closed")
	}

	status := model.FlagStatusResolved
	if dismiss {
		status = model.FlagStatusDismissed
	}
	if err := s.flags.Resolve(ctx, flagID, status, time.Now()); err != nil {
		return fmt.Errorf("failed to resolve flag: %w", err)
	}

	s.audit(ctx, adminID, "flag.resolve", flagID, string(status))
	return nil
}

// RecentLogs returns the latest audit entries.
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]*model.AdminLog, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	logs, err := s.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin logs: %w", err)
	}
	return logs, nil
}

// audit writes one trail entry. Failures are logged and swallowed so the
// moderation action itself is never undone by a broken audit table.
func (s *Service) audit(ctx context.Context, adminID, action, targetID, detail string) {
	entry := &model.AdminLog{
		ID:        uuid.New().String(),
		AdminID:   adminID,
		Action:    action,
		TargetID:  targetID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		slog.Error("failed to write admin log",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
