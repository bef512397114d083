package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"meeting-designations/internal/dto"
	"meeting-designations/internal/engine"
	"meeting-designations/internal/model"
	"meeting-designations/internal/repository"
	pkgerrors "meeting-designations/pkg/errors"
)

// ── 成员模块业务错误 ──

var (
	ErrParticipantNotFound     = errors.New("成员不存在")
	ErrUnknownQualification    = errors.New("未知的资格项")
	ErrParticipantSelfRelation = errors.New("成员不能将自己设为监护人或父母")
	ErrParticipantVersion      = errors.New("成员信息已被修改，请刷新后重试")
)

// ParticipantService 成员（名单）维护接口
type ParticipantService interface {
	List(ctx context.Context, req *dto.ParticipantListRequest) ([]dto.ParticipantResponse, int64, error)
	Get(ctx context.Context, id string) (*dto.ParticipantResponse, error)
	Create(ctx context.Context, req *dto.CreateParticipantRequest) (*dto.ParticipantResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateParticipantRequest) (*dto.ParticipantResponse, error)
}

type participantService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewParticipantService 创建 ParticipantService 实例
func NewParticipantService(repo *repository.Repository, logger *zap.Logger) ParticipantService {
	return &participantService{repo: repo, logger: logger}
}

func (s *participantService) List(ctx context.Context, req *dto.ParticipantListRequest) ([]dto.ParticipantResponse, int64, error) {
	filter := repository.ParticipantFilter{
		ActiveOnly: req.ActiveOnly,
		Gender:     req.Gender,
		Keyword:    req.Keyword,
	}
	list, total, err := s.repo.Participant.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询成员列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ParticipantResponse, 0, len(list))
	for i := range list {
		result = append(result, toParticipantResponse(&list[i]))
	}
	return result, total, nil
}

func (s *participantService) Get(ctx context.Context, id string) (*dto.ParticipantResponse, error) {
	p, err := s.repo.Participant.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		s.logger.Error("查询成员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toParticipantResponse(p)
	return &resp, nil
}

func (s *participantService) Create(ctx context.Context, req *dto.CreateParticipantRequest) (*dto.ParticipantResponse, error) {
	quals, err := normalizeQualifications(req.Qualifications)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	p := &model.Participant{
		Name:                req.Name,
		Gender:              req.Gender,
		Role:                engine.NormalizeRole(req.Role),
		Active:              active,
		Minor:               req.Minor,
		FamilyGroupID:       req.FamilyGroupID,
		PrimaryGuardianID:   req.PrimaryGuardianID,
		SecondaryGuardianID: req.SecondaryGuardianID,
		FatherID:            req.FatherID,
		MotherID:            req.MotherID,
		Qualifications:      quals,
	}

	if err := s.repo.Participant.Create(ctx, p); err != nil {
		s.logger.Error("创建成员失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("成员已创建", zap.String("id", p.ParticipantID), zap.String("role", p.Role))
	resp := toParticipantResponse(p)
	return &resp, nil
}

func (s *participantService) Update(ctx context.Context, id string, req *dto.UpdateParticipantRequest) (*dto.ParticipantResponse, error) {
	p, err := s.repo.Participant.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		s.logger.Error("查询成员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if p.Version != req.Version {
		return nil, ErrParticipantVersion
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Role != nil {
		p.Role = engine.NormalizeRole(*req.Role)
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.Minor != nil {
		p.Minor = *req.Minor
	}
	if req.FamilyGroupID != nil {
		p.FamilyGroupID = optional(*req.FamilyGroupID)
	}
	if req.PrimaryGuardianID != nil {
		p.PrimaryGuardianID = optional(*req.PrimaryGuardianID)
	}
	if req.SecondaryGuardianID != nil {
		p.SecondaryGuardianID = optional(*req.SecondaryGuardianID)
	}
	if req.FatherID != nil {
		p.FatherID = optional(*req.FatherID)
	}
	if req.MotherID != nil {
		p.MotherID = optional(*req.MotherID)
	}
	if req.Qualifications != nil {
		quals, err := normalizeQualifications(req.Qualifications)
		if err != nil {
			return nil, err
		}
		p.Qualifications = quals
	}

	for _, rel := range []*string{p.PrimaryGuardianID, p.SecondaryGuardianID, p.FatherID, p.MotherID} {
		if deref(rel) == p.ParticipantID {
			return nil, ErrParticipantSelfRelation
		}
	}

	if err := s.repo.Participant.Update(ctx, p); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrParticipantVersion
		}
		s.logger.Error("更新成员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toParticipantResponse(p)
	return &resp, nil
}

// normalizeQualifications 校验资格键；只保留值为 true 的项
func normalizeQualifications(in map[string]bool) (model.QualificationSet, error) {
	known := make(map[string]bool, len(engine.AllQualifications))
	for _, q := range engine.AllQualifications {
		known[string(q)] = true
	}
	out := model.QualificationSet{}
	for k, v := range in {
		if !known[k] {
			return nil, ErrUnknownQualification
		}
		if v {
			out[k] = true
		}
	}
	return out, nil
}

func toParticipantResponse(p *model.Participant) dto.ParticipantResponse {
	return dto.ParticipantResponse{
		ID:                  p.ParticipantID,
		Name:                p.Name,
		Gender:              p.Gender,
		Role:                p.Role,
		Active:              p.Active,
		Minor:               p.Minor,
		FamilyGroupID:       p.FamilyGroupID,
		PrimaryGuardianID:   p.PrimaryGuardianID,
		SecondaryGuardianID: p.SecondaryGuardianID,
		FatherID:            p.FatherID,
		MotherID:            p.MotherID,
		Qualifications:      p.Qualifications.Keys(),
		Version:             p.Version,
		CreatedAt:           formatTime(p.CreatedAt),
		UpdatedAt:           formatTime(p.UpdatedAt),
	}
}

func toParticipantBrief(p *model.Participant) *dto.ParticipantBrief {
	if p == nil {
		return nil
	}
	return &dto.ParticipantBrief{
		ID:     p.ParticipantID,
		Name:   p.Name,
		Gender: p.Gender,
		Role:   p.Role,
	}
}
