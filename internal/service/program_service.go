package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"meeting-designations/internal/dto"
	"meeting-designations/internal/engine"
	"meeting-designations/internal/model"
	"meeting-designations/internal/repository"
)

// ── 节目单模块业务错误 ──

var (
	ErrProgramNotFound     = errors.New("节目单不存在")
	ErrPartNotFound        = errors.New("节目不存在")
	ErrInvalidProgramDates = errors.New("节目单日期格式无效")
)

// ProgramService 节目单业务接口
type ProgramService interface {
	Create(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error)
	Get(ctx context.Context, id string) (*dto.ProgramResponse, error)
	List(ctx context.Context, req *dto.ProgramListRequest) ([]dto.ProgramResponse, int64, error)
}

type programService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgramService 创建 ProgramService 实例
func NewProgramService(repo *repository.Repository, logger *zap.Logger) ProgramService {
	return &programService{repo: repo, logger: logger}
}

func (s *programService) Create(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error) {
	weekStart, err := time.Parse(dto.DateLayout, req.WeekStart)
	if err != nil {
		return nil, ErrInvalidProgramDates
	}
	meetingAt, err := time.Parse(time.RFC3339, req.MeetingAt)
	if err != nil {
		return nil, ErrInvalidProgramDates
	}

	program := &model.Program{
		Title:     req.Title,
		WeekStart: weekStart,
		MeetingAt: meetingAt,
		Status:    model.ProgramStatusDraft,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	if err := txRepo.Program.Create(ctx, program); err != nil {
		rollback()
		s.logger.Error("创建节目单失败", zap.Error(err))
		return nil, err
	}

	parts := make([]model.ProgramPart, 0, len(req.Parts))
	for i, p := range req.Parts {
		parts = append(parts, model.ProgramPart{
			ProgramID:       program.ProgramID,
			Position:        i + 1,
			Title:           p.Title,
			RawType:         p.RawType,
			DurationMinutes: p.DurationMinutes,
		})
	}
	if err := txRepo.ProgramPart.BatchCreate(ctx, parts); err != nil {
		rollback()
		s.logger.Error("创建节目失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	program.Parts = parts
	s.logger.Info("节目单已创建",
		zap.String("program_id", program.ProgramID),
		zap.Int("parts", len(parts)),
	)
	resp := toProgramResponse(program)
	return &resp, nil
}

func (s *programService) Get(ctx context.Context, id string) (*dto.ProgramResponse, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询节目单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toProgramResponse(program)
	return &resp, nil
}

func (s *programService) List(ctx context.Context, req *dto.ProgramListRequest) ([]dto.ProgramResponse, int64, error) {
	programs, total, err := s.repo.Program.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询节目单列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.ProgramResponse, 0, len(programs))
	for i := range programs {
		result = append(result, toProgramResponse(&programs[i]))
	}
	return result, total, nil
}

func toProgramResponse(p *model.Program) dto.ProgramResponse {
	resp := dto.ProgramResponse{
		ID:        p.ProgramID,
		Title:     p.Title,
		WeekStart: p.WeekStart.Format(dto.DateLayout),
		MeetingAt: formatTime(p.MeetingAt),
		Status:    p.Status,
		Version:   p.Version,
		CreatedAt: formatTime(p.CreatedAt),
	}
	for i := range p.Parts {
		resp.Parts = append(resp.Parts, toPartResponse(&p.Parts[i]))
	}
	return resp
}

func toPartResponse(p *model.ProgramPart) dto.PartResponse {
	return dto.PartResponse{
		ID:              p.PartID,
		Position:        p.Position,
		Title:           p.Title,
		RawType:         p.RawType,
		PartType:        string(engine.Classify(p.Title, p.RawType)),
		DurationMinutes: p.DurationMinutes,
	}
}
