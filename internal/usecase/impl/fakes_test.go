package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"islandpost/config"
	"islandpost/internal/domain/entity"
	"islandpost/internal/domain/repository"
	"islandpost/internal/domain/service"
	"islandpost/internal/infra/auth"
	"islandpost/internal/usecase"
)

// --- In-memory repository fakes ---

type fakeMemberRepo struct {
	nextID  int64
	byID    map[int64]*entity.Member
	byEmail map[string]*entity.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		nextID:  1,
		byID:    make(map[int64]*entity.Member),
		byEmail: make(map[string]*entity.Member),
	}
}

func (r *fakeMemberRepo) FindByID(_ context.Context, id int64) (*entity.Member, error) {
	member, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	copied := *member

	return &copied, nil
}

func (r *fakeMemberRepo) FindByEmail(_ context.Context, email string) (*entity.Member, error) {
	member, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	copied := *member

	return &copied, nil
}

func (r *fakeMemberRepo) Create(_ context.Context, member *entity.Member) error {
	if _, exists := r.byEmail[member.Email]; exists {
		return repository.ErrDuplicateEmail
	}

	member.ID = r.nextID
	r.nextID++
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt

	stored := *member
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = &stored

	return nil
}

func (r *fakeMemberRepo) Update(_ context.Context, member *entity.Member) error {
	existing, ok := r.byID[member.ID]
	if !ok {
		return repository.ErrMemberNotFound
	}

	delete(r.byEmail, existing.Email)
	stored := *member
	stored.UpdatedAt = time.Now()
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = &stored

	return nil
}

type fakeRefreshTokenRepo struct {
	nextID     int64
	byMemberID map[int64]*entity.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{
		nextID:     1,
		byMemberID: make(map[int64]*entity.RefreshToken),
	}
}

func (r *fakeRefreshTokenRepo) FindByMemberID(_ context.Context, memberID int64) (*entity.RefreshToken, error) {
	row, ok := r.byMemberID[memberID]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	copied := *row

	return &copied, nil
}

func (r *fakeRefreshTokenRepo) FindByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
	for _, row := range r.byMemberID {
		if row.Token == token {
			copied := *row

			return &copied, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *entity.RefreshToken) error {
	token.ID = r.nextID
	r.nextID++
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt

	stored := *token
	r.byMemberID[stored.MemberID] = &stored

	return nil
}

func (r *fakeRefreshTokenRepo) Update(_ context.Context, token *entity.RefreshToken) error {
	for memberID, row := range r.byMemberID {
		if row.ID == token.ID {
			stored := *token
			stored.UpdatedAt = time.Now()
			r.byMemberID[memberID] = &stored

			return nil
		}
	}

	return repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) DeleteByMemberID(_ context.Context, memberID int64) error {
	delete(r.byMemberID, memberID)

	return nil
}

// --- Transaction fakes ---

type fakeRepoFactory struct {
	memberRepo       *fakeMemberRepo
	refreshTokenRepo *fakeRefreshTokenRepo
}

func (f *fakeRepoFactory) NewMemberRepository() repository.MemberRepository {
	return f.memberRepo
}

func (f *fakeRepoFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return f.refreshTokenRepo
}

// fakeTxManager runs the callback directly against the shared fakes.
// Rollback semantics are not simulated; tests assert on observable state
// only for flows that either fully succeed or fail before any write.
type fakeTxManager struct {
	factory *fakeRepoFactory
}

func (tm *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(tm.factory)
}

// --- Strategy fakes ---

type fakeLoginStrategy struct {
	provider entity.Provider
	userInfo *service.OAuthUserInfo
	err      error
}

func (s *fakeLoginStrategy) Provider() entity.Provider {
	return s.provider
}

func (s *fakeLoginStrategy) Authenticate(_ context.Context, _ string) (*service.OAuthUserInfo, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.userInfo, nil
}

type fakeUnlinkStrategy struct {
	provider entity.Provider
	err      error

	unlinkedIDs []string
}

func (s *fakeUnlinkStrategy) Supports(provider entity.Provider) bool {
	return provider == s.provider
}

func (s *fakeUnlinkStrategy) Unlink(_ context.Context, oauthID string) error {
	if s.err != nil {
		return s.err
	}

	s.unlinkedIDs = append(s.unlinkedIDs, oauthID)

	return nil
}

// --- Fixture ---

type authServiceFixture struct {
	service          usecase.AuthUsecase
	tokenService     service.TokenService
	memberRepo       *fakeMemberRepo
	refreshTokenRepo *fakeRefreshTokenRepo
	kakaoLogin       *fakeLoginStrategy
	kakaoUnlink      *fakeUnlinkStrategy
}

func newAuthServiceFixture(t *testing.T) *authServiceFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTTL = 30 * time.Minute
	cfg.JWT.TempTTL = 10 * time.Minute
	cfg.JWT.RefreshTTL = 14 * 24 * time.Hour

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	memberRepo := newFakeMemberRepo()
	refreshTokenRepo := newFakeRefreshTokenRepo()
	factory := &fakeRepoFactory{memberRepo: memberRepo, refreshTokenRepo: refreshTokenRepo}

	kakaoLogin := &fakeLoginStrategy{
		provider: entity.ProviderKakao,
		userInfo: &service.OAuthUserInfo{
			OAuthID:  "999",
			Email:    entity.ProviderKakao.VirtualEmail("999"),
			Provider: entity.ProviderKakao,
		},
	}
	kakaoUnlink := &fakeUnlinkStrategy{provider: entity.ProviderKakao}

	svc := NewAuthService(AuthServiceParams{
		TxManager:        &fakeTxManager{factory: factory},
		TokenService:     tokenService,
		LoginStrategies:  []service.LoginStrategy{kakaoLogin},
		UnlinkStrategies: []service.UnlinkStrategy{kakaoUnlink},
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &authServiceFixture{
		service:          svc,
		tokenService:     tokenService,
		memberRepo:       memberRepo,
		refreshTokenRepo: refreshTokenRepo,
		kakaoLogin:       kakaoLogin,
		kakaoUnlink:      kakaoUnlink,
	}
}

// seedMember inserts an active Kakao member and returns it.
func (f *authServiceFixture) seedMember(t *testing.T) *entity.Member {
	t.Helper()

	member := &entity.Member{
		Email:             entity.ProviderKakao.VirtualEmail("999"),
		Name:              "tom",
		IslandName:        "peach island",
		ProfileImageIndex: 2,
		OAuthID:           "999",
		Provider:          entity.ProviderKakao,
		Status:            entity.MemberStatusActive,
	}
	require.NoError(t, f.memberRepo.Create(context.Background(), member))

	return member
}
