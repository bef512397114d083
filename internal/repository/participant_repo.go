package repository

import (
	"context"

	"gorm.io/gorm"

	"meeting-designations/internal/model"
	pkgerrors "meeting-designations/pkg/errors"
)

// ParticipantFilter 成员列表筛选条件
type ParticipantFilter struct {
	ActiveOnly bool
	Gender     string
	Keyword    string
}

// ParticipantRepository 成员数据访问接口
type ParticipantRepository interface {
	Create(ctx context.Context, p *model.Participant) error
	GetByID(ctx context.Context, id string) (*model.Participant, error)
	Update(ctx context.Context, p *model.Participant) error
	List(ctx context.Context, filter ParticipantFilter, offset, limit int) ([]model.Participant, int64, error)
	// ListRoster 返回全部成员（含非活跃），供引擎筛选
	ListRoster(ctx context.Context) ([]model.Participant, error)
}

type participantRepo struct {
	db *gorm.DB
}

// NewParticipantRepo 创建 ParticipantRepository 实例
func NewParticipantRepo(db *gorm.DB) ParticipantRepository {
	return &participantRepo{db: db}
}

func (r *participantRepo) Create(ctx context.Context, p *model.Participant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *participantRepo) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	var p model.Participant
	err := r.db.WithContext(ctx).
		Where("participant_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) Update(ctx context.Context, p *model.Participant) error {
	oldVersion := p.Version
	result := r.db.WithContext(ctx).
		Model(p).
		Where("participant_id = ? AND version = ?", p.ParticipantID, oldVersion).
		Updates(map[string]interface{}{
			"name":                  p.Name,
			"gender":                p.Gender,
			"role":                  p.Role,
			"active":                p.Active,
			"minor":                 p.Minor,
			"family_group_id":       p.FamilyGroupID,
			"primary_guardian_id":   p.PrimaryGuardianID,
			"secondary_guardian_id": p.SecondaryGuardianID,
			"father_id":             p.FatherID,
			"mother_id":             p.MotherID,
			"qualifications":        p.Qualifications,
			"version":               oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version = oldVersion + 1
	return nil
}

func (r *participantRepo) List(ctx context.Context, filter ParticipantFilter, offset, limit int) ([]model.Participant, int64, error) {
	var list []model.Participant
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Participant{})
	if filter.ActiveOnly {
		db = db.Where("active = ?", true)
	}
	if filter.Gender != "" {
		db = db.Where("gender = ?", filter.Gender)
	}
	if filter.Keyword != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&list).Error
	return list, total, err
}

func (r *participantRepo) ListRoster(ctx context.Context) ([]model.Participant, error) {
	var list []model.Participant
	err := r.db.WithContext(ctx).
		Order("name ASC, participant_id ASC").
		Find(&list).Error
	return list, err
}
