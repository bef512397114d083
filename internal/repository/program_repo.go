package repository

import (
	"context"

	"gorm.io/gorm"

	"meeting-designations/internal/model"
	pkgerrors "meeting-designations/pkg/errors"
)

// ProgramRepository 节目单数据访问接口
type ProgramRepository interface {
	Create(ctx context.Context, program *model.Program) error
	GetByID(ctx context.Context, id string) (*model.Program, error)
	List(ctx context.Context, offset, limit int) ([]model.Program, int64, error)
	Update(ctx context.Context, program *model.Program) error
}

// ProgramPartRepository 节目数据访问接口
type ProgramPartRepository interface {
	BatchCreate(ctx context.Context, parts []model.ProgramPart) error
	GetByID(ctx context.Context, id string) (*model.ProgramPart, error)
	ListByProgram(ctx context.Context, programID string) ([]model.ProgramPart, error)
}

// ── Program Repository 实现 ──

type programRepo struct {
	db *gorm.DB
}

func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) Create(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Omit("Parts").Create(program).Error
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("program_id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) List(ctx context.Context, offset, limit int) ([]model.Program, int64, error) {
	var programs []model.Program
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Program{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("week_start DESC").
		Find(&programs).Error
	return programs, total, err
}

func (r *programRepo) Update(ctx context.Context, program *model.Program) error {
	oldVersion := program.Version
	result := r.db.WithContext(ctx).
		Model(program).
		Where("program_id = ? AND version = ?", program.ProgramID, oldVersion).
		Updates(map[string]interface{}{
			"title":      program.Title,
			"week_start": program.WeekStart,
			"meeting_at": program.MeetingAt,
			"status":     program.Status,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	program.Version = oldVersion + 1
	return nil
}

// ── ProgramPart Repository 实现 ──

type programPartRepo struct {
	db *gorm.DB
}

func NewProgramPartRepo(db *gorm.DB) ProgramPartRepository {
	return &programPartRepo{db: db}
}

func (r *programPartRepo) BatchCreate(ctx context.Context, parts []model.ProgramPart) error {
	if len(parts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&parts).Error
}

func (r *programPartRepo) GetByID(ctx context.Context, id string) (*model.ProgramPart, error) {
	var part model.ProgramPart
	err := r.db.WithContext(ctx).
		Where("part_id = ?", id).
		First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *programPartRepo) ListByProgram(ctx context.Context, programID string) ([]model.ProgramPart, error) {
	var parts []model.ProgramPart
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("position ASC").
		Find(&parts).Error
	return parts, err
}
