// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"islandpost/internal/domain/entity"
	domainerrors "islandpost/internal/domain/errors"
	"islandpost/internal/domain/repository"
	"islandpost/internal/infra/persistence/model"
)

// memberRepository implements the repository.MemberRepository interface.
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository is the constructor for memberRepository.
func NewMemberRepository(db *gorm.DB) repository.MemberRepository {
	return &memberRepository{
		db: db,
	}
}

// FindByID retrieves a member by primary key.
func (repo *memberRepository) FindByID(ctx context.Context, id int64) (*entity.Member, error) {
	var memberM model.MemberModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&memberM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMemberNotFound
		}

		return nil, errors.Wrap(err, "failed to find member by ID")
	}

	return toMemberDomain(&memberM), nil
}

// FindByEmail retrieves a member by its unique virtual email address.
func (repo *memberRepository) FindByEmail(ctx context.Context, email string) (*entity.Member, error) {
	var memberM model.MemberModel

	if err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&memberM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMemberNotFound
		}

		return nil, errors.Wrap(err, "failed to find member by email")
	}

	return toMemberDomain(&memberM), nil
}

// Create persists a new member. The unique email constraint is the final
// arbiter against concurrent signups for the same provider identity.
func (repo *memberRepository) Create(ctx context.Context, member *entity.Member) error {
	memberM := fromMemberDomain(member)

	if err := repo.db.WithContext(ctx).Create(memberM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateEmail
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create member")
	}

	// Update the entity with generated values
	member.ID = memberM.ID
	member.CreatedAt = memberM.CreatedAt
	member.UpdatedAt = memberM.UpdatedAt

	return nil
}

// Update persists changes to an existing member.
func (repo *memberRepository) Update(ctx context.Context, member *entity.Member) error {
	memberM := fromMemberDomain(member)

	result := repo.db.WithContext(ctx).
		Model(&model.MemberModel{}).
		Where("id = ?", memberM.ID).
		Updates(map[string]any{
			"email":               memberM.Email,
			"name":                memberM.Name,
			"island_name":         memberM.IslandName,
			"profile_image_index": memberM.ProfileImageIndex,
			"oauth_id":            memberM.OAuthID,
			"provider":            memberM.Provider,
			"status":              memberM.Status,
		})

	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrDuplicateEmail
		}

		return errors.Wrap(result.Error, "failed to update member")
	}

	if result.RowsAffected == 0 {
		return repository.ErrMemberNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toMemberDomain converts a GORM MemberModel to a domain Member entity.
func toMemberDomain(data *model.MemberModel) *entity.Member {
	if data == nil {
		return nil
	}

	provider, _ := entity.ParseProvider(data.Provider)

	return &entity.Member{
		ID:                data.ID,
		Email:             data.Email,
		Name:              data.Name,
		IslandName:        data.IslandName,
		ProfileImageIndex: data.ProfileImageIndex,
		OAuthID:           data.OAuthID,
		Provider:          provider,
		Status:            entity.MemberStatus(data.Status),
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

// fromMemberDomain converts a domain Member entity to a GORM MemberModel.
func fromMemberDomain(data *entity.Member) *model.MemberModel {
	if data == nil {
		return nil
	}

	return &model.MemberModel{
		ID:                data.ID,
		Email:             data.Email,
		Name:              data.Name,
		IslandName:        data.IslandName,
		ProfileImageIndex: data.ProfileImageIndex,
		OAuthID:           data.OAuthID,
		Provider:          data.Provider.String(),
		Status:            string(data.Status),
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}
