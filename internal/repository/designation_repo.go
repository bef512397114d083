package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"meeting-designations/internal/model"
	pkgerrors "meeting-designations/pkg/errors"
)

// AssignmentHistoryRepository 指派历史数据访问接口（只追加）
type AssignmentHistoryRepository interface {
	BatchCreate(ctx context.Context, entries []model.AssignmentHistory) error
	ListSince(ctx context.Context, since time.Time) ([]model.AssignmentHistory, error)
	DeleteByProgram(ctx context.Context, programID string) error
	DeleteByDesignation(ctx context.Context, designationID string) error
}

// DesignationRepository 指派结果数据访问接口
type DesignationRepository interface {
	BatchCreate(ctx context.Context, list []model.Designation) error
	GetByID(ctx context.Context, id string) (*model.Designation, error)
	ListByProgram(ctx context.Context, programID string) ([]model.Designation, error)
	Update(ctx context.Context, d *model.Designation) error
	DeleteByProgram(ctx context.Context, programID string) error
}

// DesignationChangeLogRepository 指派变更日志数据访问接口
type DesignationChangeLogRepository interface {
	Create(ctx context.Context, log *model.DesignationChangeLog) error
	ListByProgram(ctx context.Context, programID string, offset, limit int) ([]model.DesignationChangeLog, int64, error)
}

// ── AssignmentHistory Repository 实现 ──

type assignmentHistoryRepo struct {
	db *gorm.DB
}

func NewAssignmentHistoryRepo(db *gorm.DB) AssignmentHistoryRepository {
	return &assignmentHistoryRepo{db: db}
}

func (r *assignmentHistoryRepo) BatchCreate(ctx context.Context, entries []model.AssignmentHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *assignmentHistoryRepo) ListSince(ctx context.Context, since time.Time) ([]model.AssignmentHistory, error) {
	var entries []model.AssignmentHistory
	err := r.db.WithContext(ctx).
		Where("assigned_at >= ?", since).
		Order("assigned_at ASC, history_id ASC").
		Find(&entries).Error
	return entries, err
}

// DeleteByProgram 重新生成指派时撤回该节目单此前写入的历史
func (r *assignmentHistoryRepo) DeleteByProgram(ctx context.Context, programID string) error {
	return r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Delete(&model.AssignmentHistory{}).Error
}

// DeleteByDesignation 人工调整指派时替换对应的历史记录
func (r *assignmentHistoryRepo) DeleteByDesignation(ctx context.Context, designationID string) error {
	return r.db.WithContext(ctx).
		Where("designation_id = ?", designationID).
		Delete(&model.AssignmentHistory{}).Error
}

// ── Designation Repository 实现 ──

type designationRepo struct {
	db *gorm.DB
}

func NewDesignationRepo(db *gorm.DB) DesignationRepository {
	return &designationRepo{db: db}
}

func (r *designationRepo) BatchCreate(ctx context.Context, list []model.Designation) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Part", "Principal", "Assistant").Create(&list).Error
}

func (r *designationRepo) GetByID(ctx context.Context, id string) (*model.Designation, error) {
	var d model.Designation
	err := r.db.WithContext(ctx).
		Preload("Part").
		Preload("Principal").
		Preload("Assistant").
		Where("designation_id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *designationRepo) ListByProgram(ctx context.Context, programID string) ([]model.Designation, error) {
	var list []model.Designation
	err := r.db.WithContext(ctx).
		Joins("Part").
		Preload("Principal").
		Preload("Assistant").
		Where("designations.program_id = ?", programID).
		Order(`"Part".position ASC`).
		Find(&list).Error
	return list, err
}

func (r *designationRepo) Update(ctx context.Context, d *model.Designation) error {
	oldVersion := d.Version
	result := r.db.WithContext(ctx).
		Model(d).
		Where("designation_id = ? AND version = ?", d.DesignationID, oldVersion).
		Updates(map[string]interface{}{
			"principal_id": d.PrincipalID,
			"assistant_id": d.AssistantID,
			"status":       d.Status,
			"state":        d.State,
			"strategy":     d.Strategy,
			"reason":       d.Reason,
			"manual":       d.Manual,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	d.Version = oldVersion + 1
	return nil
}

func (r *designationRepo) DeleteByProgram(ctx context.Context, programID string) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("program_id = ?", programID).
		Delete(&model.Designation{}).Error
}

// ── DesignationChangeLog Repository 实现 ──

type designationChangeLogRepo struct {
	db *gorm.DB
}

func NewDesignationChangeLogRepo(db *gorm.DB) DesignationChangeLogRepository {
	return &designationChangeLogRepo{db: db}
}

func (r *designationChangeLogRepo) Create(ctx context.Context, log *model.DesignationChangeLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *designationChangeLogRepo) ListByProgram(ctx context.Context, programID string, offset, limit int) ([]model.DesignationChangeLog, int64, error) {
	var logs []model.DesignationChangeLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.DesignationChangeLog{})
	if programID != "" {
		db = db.Where("program_id = ?", programID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, total, err
}
