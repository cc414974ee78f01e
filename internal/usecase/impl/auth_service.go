// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "islandpost/internal/delivery/context"
	"islandpost/internal/domain/entity"
	domainerrors "islandpost/internal/domain/errors"
	"islandpost/internal/domain/repository"
	"islandpost/internal/domain/service"
	"islandpost/internal/usecase"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	tokenService     service.TokenService
	loginStrategies  map[entity.Provider]service.LoginStrategy
	unlinkStrategies []service.UnlinkStrategy
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	TokenService     service.TokenService
	LoginStrategies  []service.LoginStrategy  `group:"loginStrategies"`
	UnlinkStrategies []service.UnlinkStrategy `group:"unlinkStrategies"`
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. The provider dispatch
// map is built here once from the injected strategy list and is read-only
// afterwards, so lookups need no synchronization.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	loginStrategies := make(map[entity.Provider]service.LoginStrategy, len(params.LoginStrategies))
	for _, strategy := range params.LoginStrategies {
		loginStrategies[strategy.Provider()] = strategy
	}

	return &authService{
		txManager:        params.TxManager,
		tokenService:     params.TokenService,
		loginStrategies:  loginStrategies,
		unlinkStrategies: params.UnlinkStrategies,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SocialLogin authenticates a provider credential and opens a session.
func (srv *authService) SocialLogin(ctx context.Context, input *usecase.SocialLoginInput) (*usecase.TokenOutput, error) {
	strategy, ok := srv.loginStrategies[input.Provider]
	if !ok {
		return nil, domainerrors.ErrUnsupportedProvider.WithDetails(string(input.Provider))
	}

	userInfo, err := strategy.Authenticate(ctx, input.Credential)
	if err != nil {
		srv.log(ctx).Warn("Social login authentication failed",
			slog.String("provider", input.Provider.String()), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Social login authenticated",
		slog.String("provider", input.Provider.String()), slog.String("oauthID", userInfo.OAuthID))

	var output *usecase.TokenOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		member, err := repoFactory.NewMemberRepository().FindByEmail(ctx, userInfo.Email)
		if errors.Is(err, repository.ErrMemberNotFound) {
			// First-time identity: hand out a signup-completion token only.
			// No member row and no refresh token exist until signup finishes.
			tempToken, err := srv.tokenService.IssueTempToken(userInfo.OAuthID, userInfo.Email, userInfo.Provider)
			if err != nil {
				return errors.Wrap(err, "failed to issue temp token")
			}

			output = &usecase.TokenOutput{
				AccessToken: tempToken,
				TokenType:   "Bearer",
				IsNewMember: true,
				Email:       userInfo.Email,
			}

			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to find member by email")
		}

		output, err = srv.openSession(ctx, repoFactory, member)

		return err
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// CompleteSignup creates the member row for a temp token holder and issues
// the first real session pair.
func (srv *authService) CompleteSignup(ctx context.Context, input *usecase.CompleteSignupInput) (*usecase.TokenOutput, error) {
	claims, err := srv.tokenService.Validate(input.TempToken)
	if err != nil {
		return nil, domainerrors.ErrInvalidAccessToken.WrapMessage("signup token validation failed")
	}
	if claims.Type != service.TokenTypeTemp {
		return nil, domainerrors.ErrInvalidTempToken.WithDetails("token type is not temp")
	}

	email := claims.Email
	if email == "" {
		email = claims.Provider.VirtualEmail(claims.OAuthID)
	}

	var output *usecase.TokenOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		memberRepo := repoFactory.NewMemberRepository()

		// Pre-check before the insert; the unique constraint remains the
		// final arbiter under concurrency.
		_, err := memberRepo.FindByEmail(ctx, email)
		if err == nil {
			return domainerrors.ErrDuplicateMember.WrapMessage("signup already completed for this identity")
		}
		if !errors.Is(err, repository.ErrMemberNotFound) {
			return errors.Wrap(err, "failed to find member by email")
		}

		newMember := &entity.Member{
			Email:             email,
			Name:              input.Nickname,
			IslandName:        input.IslandName,
			ProfileImageIndex: input.ProfileImageIndex,
			OAuthID:           claims.OAuthID,
			Provider:          claims.Provider,
			Status:            entity.MemberStatusActive,
		}

		if err := memberRepo.Create(ctx, newMember); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return domainerrors.ErrDuplicateMember.WrapMessage("signup already completed for this identity")
			}

			return errors.WithStack(err)
		}

		output, err = srv.openSession(ctx, repoFactory, newMember)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Signup completion failed", slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Signup completed", slog.Int64("memberID", *output.MemberID))

	return output, nil
}

// RefreshToken rotates the presented refresh token into a new session pair.
func (srv *authService) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.TokenOutput, error) {
	claims, err := srv.tokenService.Validate(input.RefreshToken)
	if err != nil {
		return nil, domainerrors.ErrInvalidRefreshToken.WrapMessage("refresh token validation failed")
	}
	if claims.Type != service.TokenTypeRefresh {
		return nil, domainerrors.ErrInvalidRefreshToken.WithDetails("token type is not refresh")
	}

	var output *usecase.TokenOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshTokenRepo := repoFactory.NewRefreshTokenRepository()

		// The stored row is the source of truth: a rotated-away value fails
		// here even when its signature and expiry are still good.
		row, err := refreshTokenRepo.FindByToken(ctx, input.RefreshToken)
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return domainerrors.ErrInvalidRefreshToken.WrapMessage("refresh token is not active")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find refresh token")
		}

		if row.IsExpired(time.Now()) {
			if err := refreshTokenRepo.DeleteByMemberID(ctx, row.MemberID); err != nil {
				return errors.Wrap(err, "failed to delete expired refresh token")
			}

			return domainerrors.ErrRefreshTokenExpired
		}

		member, err := repoFactory.NewMemberRepository().FindByID(ctx, row.MemberID)
		if errors.Is(err, repository.ErrMemberNotFound) {
			if err := refreshTokenRepo.DeleteByMemberID(ctx, row.MemberID); err != nil {
				return errors.Wrap(err, "failed to delete orphaned refresh token")
			}

			return domainerrors.ErrInvalidRefreshToken.WrapMessage("refresh token member no longer exists")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find member")
		}

		if !member.IsActive() {
			if err := refreshTokenRepo.DeleteByMemberID(ctx, member.ID); err != nil {
				return errors.Wrap(err, "failed to delete refresh token of inactive member")
			}

			return domainerrors.ErrMemberNotActive
		}

		output, err = srv.openSession(ctx, repoFactory, member)

		return err
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// WithdrawMember unlinks the provider account, revokes the session and
// soft-deletes the member.
func (srv *authService) WithdrawMember(ctx context.Context, memberID int64) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		memberRepo := repoFactory.NewMemberRepository()

		member, err := memberRepo.FindByID(ctx, memberID)
		if errors.Is(err, repository.ErrMemberNotFound) {
			return domainerrors.ErrMemberNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to find member")
		}

		if !member.IsActive() {
			return domainerrors.ErrMemberAlreadyWithdrawn
		}

		// Unlink before touching any rows. A provider failure aborts the
		// whole withdrawal so the member is never left half-removed.
		if member.OAuthID != "" {
			if err := srv.unlink(ctx, member.Provider, member.OAuthID); err != nil {
				return err
			}
		}

		if err := repoFactory.NewRefreshTokenRepository().DeleteByMemberID(ctx, member.ID); err != nil {
			return errors.Wrap(err, "failed to delete refresh token")
		}

		member.Status = entity.MemberStatusInactive
		if err := memberRepo.Update(ctx, member); err != nil {
			return errors.Wrap(err, "failed to deactivate member")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Member withdrawal failed", slog.Int64("memberID", memberID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Member withdrawn", slog.Int64("memberID", memberID))

	return nil
}

// unlink dispatches to the first strategy that supports the provider.
func (srv *authService) unlink(ctx context.Context, provider entity.Provider, oauthID string) error {
	for _, strategy := range srv.unlinkStrategies {
		if strategy.Supports(provider) {
			return strategy.Unlink(ctx, oauthID)
		}
	}

	return domainerrors.ErrUnsupportedProvider.WithDetails(string(provider))
}

// openSession issues a fresh access/refresh pair for the member and upserts
// the single refresh token row: the existing row is overwritten in place,
// invalidating the previous value, otherwise a new row is created.
func (srv *authService) openSession(ctx context.Context, repoFactory repository.RepositoryFactory, member *entity.Member) (*usecase.TokenOutput, error) {
	accessToken, err := srv.tokenService.IssueAccessToken(member.ID, member.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := srv.tokenService.IssueRefreshToken(member.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	expiresAt := time.Now().Add(srv.tokenService.RefreshTokenTTL())
	refreshTokenRepo := repoFactory.NewRefreshTokenRepository()

	row, err := refreshTokenRepo.FindByMemberID(ctx, member.ID)
	switch {
	case err == nil:
		row.Token = refreshToken
		row.ExpiresAt = expiresAt
		if err := refreshTokenRepo.Update(ctx, row); err != nil {
			return nil, errors.Wrap(err, "failed to rotate refresh token")
		}
	case errors.Is(err, repository.ErrRefreshTokenNotFound):
		newRow := &entity.RefreshToken{
			MemberID:  member.ID,
			Token:     refreshToken,
			ExpiresAt: expiresAt,
		}
		if err := refreshTokenRepo.Create(ctx, newRow); err != nil {
			return nil, errors.Wrap(err, "failed to store refresh token")
		}
	default:
		return nil, errors.Wrap(err, "failed to find refresh token")
	}

	memberID := member.ID

	return &usecase.TokenOutput{
		AccessToken:       accessToken,
		RefreshToken:      refreshToken,
		TokenType:         "Bearer",
		ExpiresIn:         int64(srv.tokenService.AccessTokenTTL().Seconds()),
		RefreshExpiresIn:  int64(srv.tokenService.RefreshTokenTTL().Seconds()),
		IsNewMember:       false,
		MemberID:          &memberID,
		Email:             member.Email,
		Nickname:          member.Name,
		IslandName:        member.IslandName,
		ProfileImageIndex: member.ProfileImageIndex,
	}, nil
}
