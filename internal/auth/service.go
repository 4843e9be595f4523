package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/stockpile-ims/stockpile/internal/shared"
	"github.com/stockpile-ims/stockpile/jobs"
)

// Enqueuer queues background tasks. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	throttle *LoginThrottle
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewService constructs a new Service. throttle and enqueuer may be nil; the
// corresponding behaviors are then skipped.
func NewService(repo Repository, throttle *LoginThrottle, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, throttle: throttle, enqueuer: enqueuer, logger: logger}
}

// Authenticate validates credentials for an identifier that is either an
// email or a username. Unknown identifier, inactive account, and wrong
// password all yield the same ErrInvalidCredentials so the response never
// reveals which part was wrong.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if err := s.throttle.Allow(ctx, identifier); err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		s.throttle.RecordFailure(ctx, identifier)
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.throttle.RecordFailure(ctx, identifier)
		return nil, shared.ErrInvalidCredentials
	}
	if !VerifyPassword(password, user.PasswordHash) {
		s.throttle.RecordFailure(ctx, identifier)
		return nil, shared.ErrInvalidCredentials
	}

	s.throttle.Reset(ctx, identifier)
	return user, nil
}

// RequestPasswordReset triggers an out-of-band notification for the account,
// if it exists. The result is identical either way; this endpoint must not be
// usable as an account-existence oracle.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && s.logger != nil {
			s.logger.Error("password reset lookup", slog.Any("error", err))
		}
		return nil
	}
	if s.enqueuer == nil {
		return nil
	}
	ref := uuid.NewString()
	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{
		To:        user.Email,
		Subject:   "Password reset requested",
		Body:      "A password reset was requested for your account. Contact an administrator to complete it.",
		Reference: ref,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password reset task", slog.Any("error", err))
		}
		return nil
	}
	if _, err := s.enqueuer.EnqueueContext(ctx, task); err != nil {
		if s.logger != nil {
			s.logger.Error("password reset enqueue", slog.String("reference", ref), slog.Any("error", err))
		}
		return nil
	}
	if s.logger != nil {
		s.logger.Info("password reset queued", slog.String("reference", ref))
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, identifier string) (*User, error) {
	if strings.Contains(identifier, "@") {
		return s.repo.FindByEmail(ctx, identifier)
	}
	return s.repo.FindByUsername(ctx, identifier)
}
