package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meeting-designations/config"
	"meeting-designations/internal/dto"
	"meeting-designations/internal/engine"
	"meeting-designations/internal/model"
	"meeting-designations/internal/repository"
	pkgerrors "meeting-designations/pkg/errors"
	"meeting-designations/pkg/metrics"
)

// ── 指派模块业务错误 ──

var (
	ErrDesignationNotFound       = errors.New("指派记录不存在")
	ErrProgramNoParts            = errors.New("节目单中没有节目")
	ErrRunInProgress             = errors.New("该节目单正在生成指派，请稍后重试")
	ErrInvalidAsOf               = errors.New("as_of 时间格式无效，应为 RFC3339")
	ErrSelfAssistant             = errors.New("主讲与助手不能是同一人")
	ErrAssistantWithoutPrincipal = errors.New("未指定主讲时不能指定助手")
	ErrParticipantInactive       = errors.New("成员已停用，不能被指派")
	ErrDesignationVersion        = errors.New("指派已被修改，请刷新后重试")
	ErrDesignationNoChange       = errors.New("指派内容没有变化")
)

// 变更类型
const (
	ChangeTypeManualAdjust = "manual_adjust"
)

// 运行结果标签（指标）
const (
	runOutcomeSuccess = "success"
	runOutcomeLocked  = "locked"
	runOutcomeFailed  = "failed"
)

// RunLocker 节目单级互斥锁（由 Redis 客户端实现）
type RunLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// DesignationService 指派业务接口
type DesignationService interface {
	// Generate 为节目单生成（或重新生成）全部指派
	Generate(ctx context.Context, programID string, req *dto.GenerateDesignationsRequest) (*dto.GenerateDesignationsResponse, error)
	// List 节目单当前的指派结果
	List(ctx context.Context, programID string) ([]dto.DesignationResponse, error)
	// GetCandidates 节目的合格候选人及排序分数
	GetCandidates(ctx context.Context, partID string, req *dto.CandidateListRequest) ([]dto.CandidateResponse, error)
	// Update 人工调整指派
	Update(ctx context.Context, designationID string, req *dto.UpdateDesignationRequest) (*dto.DesignationResponse, error)
	// ListChangeLogs 指派变更日志
	ListChangeLogs(ctx context.Context, req *dto.ChangeLogListRequest) ([]dto.ChangeLogResponse, int64, error)
}

type designationService struct {
	repo    *repository.Repository
	engine  *engine.Engine
	locker  RunLocker // nil 时不加锁
	metrics metrics.Recorder
	cfg     *config.Config
	logger  *zap.Logger
}

// NewDesignationService 创建 DesignationService 实例
func NewDesignationService(
	cfg *config.Config,
	repo *repository.Repository,
	eng *engine.Engine,
	locker RunLocker,
	recorder metrics.Recorder,
	logger *zap.Logger,
) DesignationService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &designationService{
		repo:    repo,
		engine:  eng,
		locker:  locker,
		metrics: recorder,
		cfg:     cfg,
		logger:  logger,
	}
}

// ════════════════════════════════════════════════════════════
// Generate: 加锁 → 加载 → 引擎运行 → 事务内替换结果
// ════════════════════════════════════════════════════════════

func (s *designationService) Generate(ctx context.Context, programID string, req *dto.GenerateDesignationsRequest) (*dto.GenerateDesignationsResponse, error) {
	start := time.Now()

	program, err := s.repo.Program.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询节目单失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}
	if len(program.Parts) == 0 {
		return nil, ErrProgramNoParts
	}

	asOf := program.MeetingAt
	if req != nil && req.AsOf != "" {
		asOf, err = time.Parse(time.RFC3339, req.AsOf)
		if err != nil {
			return nil, ErrInvalidAsOf
		}
	}

	// 1. 节目单级互斥
	release, err := s.lock(ctx, programID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrLockHeld) {
			s.metrics.RecordRun(runOutcomeLocked, time.Since(start))
			return nil, ErrRunInProgress
		}
		s.logger.Error("获取指派锁失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}
	defer release()

	// 2. 加载名单与历史（排除本节目单此前的结果）
	roster, history, err := s.loadInputs(ctx, asOf, programID)
	if err != nil {
		s.metrics.RecordRun(runOutcomeFailed, time.Since(start))
		return nil, err
	}

	// 3. 引擎运行
	parts := toEngineParts(program.Parts)
	result, err := s.engine.RunContext(ctx, parts, toEngineRoster(roster), history, asOf)
	if err != nil {
		s.metrics.RecordRun(runOutcomeFailed, time.Since(start))
		return nil, err
	}

	// 4. 事务内替换指派与历史
	designations, entries := buildDesignations(program, result, asOf)
	if err := s.persist(ctx, program, designations, entries); err != nil {
		s.metrics.RecordRun(runOutcomeFailed, time.Since(start))
		return nil, err
	}

	for _, d := range result.Decisions {
		s.metrics.RecordDecision(string(d.State), string(d.Strategy))
	}
	s.metrics.RecordRun(runOutcomeSuccess, time.Since(start))

	s.logger.Info("节目单指派已生成",
		zap.String("program_id", programID),
		zap.Time("as_of", asOf),
		zap.Int("assigned", result.Summary.Assigned),
		zap.Int("degraded", result.Summary.Degraded),
		zap.Int("unassigned", result.Summary.Unassigned),
		zap.Duration("elapsed", time.Since(start)),
	)

	return s.generateResponse(program, designations, roster, result), nil
}

// lock 获取节目单锁，返回释放函数；未配置锁时直接放行
func (s *designationService) lock(ctx context.Context, programID string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := "designation:program:" + programID
	ttl := time.Minute
	if s.cfg != nil && s.cfg.Redis.LockTTLSeconds > 0 {
		ttl = time.Duration(s.cfg.Redis.LockTTLSeconds) * time.Second
	}
	token, err := s.locker.AcquireLock(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	return func() {
		// 请求 ctx 可能已取消，释放锁使用独立的 ctx
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.locker.ReleaseLock(releaseCtx, key, token); err != nil {
			s.logger.Warn("释放指派锁失败", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (s *designationService) loadInputs(ctx context.Context, asOf time.Time, excludeProgramID string) ([]model.Participant, []engine.HistoryEntry, error) {
	roster, err := s.repo.Participant.ListRoster(ctx)
	if err != nil {
		s.logger.Error("查询成员名单失败", zap.Error(err))
		return nil, nil, err
	}

	rows, err := s.repo.History.ListSince(ctx, asOf.AddDate(0, 0, -s.historyWindowDays()))
	if err != nil {
		s.logger.Error("查询指派历史失败", zap.Error(err))
		return nil, nil, err
	}
	if excludeProgramID != "" {
		kept := rows[:0]
		for _, h := range rows {
			if deref(h.ProgramID) != excludeProgramID {
				kept = append(kept, h)
			}
		}
		rows = kept
	}
	return roster, toEngineHistory(rows), nil
}

func (s *designationService) historyWindowDays() int {
	if s.cfg == nil || s.cfg.Engine.HistoryWindowDays <= 0 {
		return 180
	}
	return s.cfg.Engine.HistoryWindowDays
}

// buildDesignations 将引擎决策转为持久化模型；每个选出主讲的决策对应一条历史
func buildDesignations(program *model.Program, result engine.Result, asOf time.Time) ([]model.Designation, []model.AssignmentHistory) {
	designations := make([]model.Designation, 0, len(result.Decisions))
	entries := make([]model.AssignmentHistory, 0, len(result.Appended))
	programID := program.ProgramID

	for _, d := range result.Decisions {
		id := uuid.NewString()
		designations = append(designations, model.Designation{
			DesignationID:  id,
			ProgramID:      programID,
			PartID:         d.PartID,
			PartType:       string(d.PartType),
			PrincipalID:    optional(d.PrincipalID),
			AssistantID:    optional(d.AssistantID),
			Status:         string(d.Status),
			State:          string(d.State),
			Strategy:       string(d.Strategy),
			Reason:         d.Reason,
			Attempts:       d.Attempts,
			VersionedModel: model.VersionedModel{Version: 1},
		})
		if !d.HasPrincipal() {
			continue
		}
		designationID := id
		entries = append(entries, model.AssignmentHistory{
			PrincipalID:   d.PrincipalID,
			AssistantID:   optional(d.AssistantID),
			PartType:      string(d.PartType),
			ProgramID:     &programID,
			DesignationID: &designationID,
			AssignedAt:    asOf,
		})
	}
	return designations, entries
}

func (s *designationService) persist(ctx context.Context, program *model.Program, designations []model.Designation, entries []model.AssignmentHistory) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	txRepo := s.repo.WithTx(tx)
	fail := func(msg string, err error) error {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error(msg, zap.String("program_id", program.ProgramID), zap.Error(err))
		return err
	}

	if err := txRepo.Designation.DeleteByProgram(ctx, program.ProgramID); err != nil {
		return fail("清除旧指派失败", err)
	}
	if err := txRepo.History.DeleteByProgram(ctx, program.ProgramID); err != nil {
		return fail("撤回旧历史失败", err)
	}
	if err := txRepo.Designation.BatchCreate(ctx, designations); err != nil {
		return fail("保存指派失败", err)
	}
	if err := txRepo.History.BatchCreate(ctx, entries); err != nil {
		return fail("追加历史失败", err)
	}

	program.Status = model.ProgramStatusDesignated
	if err := txRepo.Program.Update(ctx, program); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			if tx != nil {
				tx.Rollback()
			}
			return ErrRunInProgress
		}
		return fail("更新节目单状态失败", err)
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *designationService) generateResponse(program *model.Program, designations []model.Designation, roster []model.Participant, result engine.Result) *dto.GenerateDesignationsResponse {
	byID := make(map[string]*model.Participant, len(roster))
	for i := range roster {
		byID[roster[i].ParticipantID] = &roster[i]
	}
	parts := make(map[string]*model.ProgramPart, len(program.Parts))
	for i := range program.Parts {
		parts[program.Parts[i].PartID] = &program.Parts[i]
	}

	resp := &dto.GenerateDesignationsResponse{
		ProgramID:    program.ProgramID,
		Total:        result.Summary.Total,
		Assigned:     result.Summary.Assigned,
		Degraded:     result.Summary.Degraded,
		Unassigned:   result.Summary.Unassigned,
		Warnings:     []string{},
		Designations: make([]dto.DesignationResponse, 0, len(designations)),
	}
	for i := range designations {
		d := &designations[i]
		d.Part = parts[d.PartID]
		d.Principal = byID[deref(d.PrincipalID)]
		d.Assistant = byID[deref(d.AssistantID)]
		resp.Designations = append(resp.Designations, toDesignationResponse(d))

		if d.Status == string(engine.StatusPending) {
			title := d.PartID
			if d.Part != nil {
				title = d.Part.Title
			}
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("「%s」未能指派：%s", title, d.Reason))
		}
	}
	return resp
}

// ════════════════════════════════════════════════════════════
// List / GetCandidates
// ════════════════════════════════════════════════════════════

func (s *designationService) List(ctx context.Context, programID string) ([]dto.DesignationResponse, error) {
	if _, err := s.repo.Program.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询节目单失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Designation.ListByProgram(ctx, programID)
	if err != nil {
		s.logger.Error("查询指派失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.DesignationResponse, 0, len(list))
	for i := range list {
		result = append(result, toDesignationResponse(&list[i]))
	}
	return result, nil
}

func (s *designationService) GetCandidates(ctx context.Context, partID string, req *dto.CandidateListRequest) ([]dto.CandidateResponse, error) {
	part, err := s.repo.ProgramPart.GetByID(ctx, partID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		s.logger.Error("查询节目失败", zap.String("part_id", partID), zap.Error(err))
		return nil, err
	}

	var asOf time.Time
	if req != nil && req.AsOf != "" {
		asOf, err = time.Parse(time.RFC3339, req.AsOf)
		if err != nil {
			return nil, ErrInvalidAsOf
		}
	} else {
		program, err := s.repo.Program.GetByID(ctx, part.ProgramID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProgramNotFound
			}
			s.logger.Error("查询节目单失败", zap.String("program_id", part.ProgramID), zap.Error(err))
			return nil, err
		}
		asOf = program.MeetingAt
	}

	roster, history, err := s.loadInputs(ctx, asOf, "")
	if err != nil {
		return nil, err
	}

	enginePart := toEnginePart(part)
	partType := engine.ClassifyPart(enginePart)
	ranked := s.engine.RankCandidates(toEngineRoster(roster), enginePart, history, asOf)

	byID := make(map[string]*model.Participant, len(roster))
	for i := range roster {
		byID[roster[i].ParticipantID] = &roster[i]
	}

	result := make([]dto.CandidateResponse, 0, len(ranked))
	for _, r := range ranked {
		p := r.Participant
		c := dto.CandidateResponse{
			Participant: *toParticipantBrief(byID[p.ID]),
			Score:       r.Score,
			InCooldown:  s.engine.InCooldown(&p, partType, history, asOf),
		}
		if last, ok := lastServed(p.ID, history); ok {
			v := formatTime(last)
			c.LastServed = &v
		}
		result = append(result, c)
	}
	return result, nil
}

// lastServed 成员最近一次出现在历史中的时间（主讲或助手）
func lastServed(id string, history []engine.HistoryEntry) (time.Time, bool) {
	var last time.Time
	found := false
	for _, h := range history {
		if h.PrincipalID != id && h.AssistantID != id {
			continue
		}
		if !found || h.AssignedAt.After(last) {
			last = h.AssignedAt
			found = true
		}
	}
	return last, found
}

// ════════════════════════════════════════════════════════════
// Update: 人工调整
// ════════════════════════════════════════════════════════════

func (s *designationService) Update(ctx context.Context, designationID string, req *dto.UpdateDesignationRequest) (*dto.DesignationResponse, error) {
	d, err := s.repo.Designation.GetByID(ctx, designationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDesignationNotFound
		}
		s.logger.Error("查询指派失败", zap.String("id", designationID), zap.Error(err))
		return nil, err
	}
	if d.Version != req.Version {
		return nil, ErrDesignationVersion
	}

	newPrincipal := d.PrincipalID
	if req.PrincipalID != nil {
		newPrincipal = optional(*req.PrincipalID)
	}
	newAssistant := d.AssistantID
	switch {
	case req.ClearAssistant:
		newAssistant = nil
	case req.AssistantID != nil:
		newAssistant = optional(*req.AssistantID)
	}

	if sameID(newPrincipal, d.PrincipalID) && sameID(newAssistant, d.AssistantID) {
		return nil, ErrDesignationNoChange
	}
	if newPrincipal == nil && newAssistant != nil {
		return nil, ErrAssistantWithoutPrincipal
	}
	if newPrincipal != nil && newAssistant != nil && *newPrincipal == *newAssistant {
		return nil, ErrSelfAssistant
	}

	// 只校验发生变化的一方
	principal, assistant := d.Principal, d.Assistant
	if !sameID(newPrincipal, d.PrincipalID) {
		if principal, err = s.activeParticipant(ctx, newPrincipal); err != nil {
			return nil, err
		}
	}
	if !sameID(newAssistant, d.AssistantID) {
		if assistant, err = s.activeParticipant(ctx, newAssistant); err != nil {
			return nil, err
		}
	}

	program, err := s.repo.Program.GetByID(ctx, d.ProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询节目单失败", zap.String("program_id", d.ProgramID), zap.Error(err))
		return nil, err
	}

	changeLog := &model.DesignationChangeLog{
		DesignationID:       d.DesignationID,
		ProgramID:           d.ProgramID,
		OriginalPrincipalID: d.PrincipalID,
		NewPrincipalID:      newPrincipal,
		OriginalAssistantID: d.AssistantID,
		NewAssistantID:      newAssistant,
		ChangeType:          ChangeTypeManualAdjust,
		Reason:              req.Reason,
	}

	d.PrincipalID = newPrincipal
	d.AssistantID = newAssistant
	d.Principal = principal
	d.Assistant = assistant
	d.Manual = true
	d.Strategy = ""
	d.Reason = "人工调整：" + req.Reason
	if newPrincipal != nil {
		d.Status = string(engine.StatusOK)
		d.State = string(engine.StateAssigned)
	} else {
		d.Status = string(engine.StatusPending)
		d.State = string(engine.StateUnassigned)
	}

	if err := s.applyUpdate(ctx, d, program, changeLog); err != nil {
		return nil, err
	}

	s.logger.Info("指派已人工调整",
		zap.String("designation_id", d.DesignationID),
		zap.String("principal_id", deref(newPrincipal)),
		zap.String("assistant_id", deref(newAssistant)),
	)
	resp := toDesignationResponse(d)
	return &resp, nil
}

// activeParticipant 校验成员存在且为活跃状态；id 为 nil 时返回 nil
func (s *designationService) activeParticipant(ctx context.Context, id *string) (*model.Participant, error) {
	if id == nil {
		return nil, nil
	}
	p, err := s.repo.Participant.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		s.logger.Error("查询成员失败", zap.String("id", *id), zap.Error(err))
		return nil, err
	}
	if !p.Active {
		return nil, ErrParticipantInactive
	}
	return p, nil
}

// applyUpdate 事务内更新指派、替换历史并写入变更日志
func (s *designationService) applyUpdate(ctx context.Context, d *model.Designation, program *model.Program, changeLog *model.DesignationChangeLog) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	txRepo := s.repo.WithTx(tx)
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	if err := txRepo.Designation.Update(ctx, d); err != nil {
		rollback()
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrDesignationVersion
		}
		s.logger.Error("更新指派失败", zap.String("id", d.DesignationID), zap.Error(err))
		return err
	}

	if err := txRepo.History.DeleteByDesignation(ctx, d.DesignationID); err != nil {
		rollback()
		s.logger.Error("撤回指派历史失败", zap.String("id", d.DesignationID), zap.Error(err))
		return err
	}
	if d.PrincipalID != nil {
		programID, designationID := d.ProgramID, d.DesignationID
		entry := model.AssignmentHistory{
			PrincipalID:   *d.PrincipalID,
			AssistantID:   d.AssistantID,
			PartType:      d.PartType,
			ProgramID:     &programID,
			DesignationID: &designationID,
			AssignedAt:    program.MeetingAt,
		}
		if err := txRepo.History.BatchCreate(ctx, []model.AssignmentHistory{entry}); err != nil {
			rollback()
			s.logger.Error("追加指派历史失败", zap.String("id", d.DesignationID), zap.Error(err))
			return err
		}
	}

	if err := txRepo.DesignationChangeLog.Create(ctx, changeLog); err != nil {
		rollback()
		s.logger.Error("写入变更日志失败", zap.String("id", d.DesignationID), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// ListChangeLogs
// ════════════════════════════════════════════════════════════

func (s *designationService) ListChangeLogs(ctx context.Context, req *dto.ChangeLogListRequest) ([]dto.ChangeLogResponse, int64, error) {
	logs, total, err := s.repo.DesignationChangeLog.ListByProgram(ctx, req.ProgramID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询变更日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ChangeLogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, dto.ChangeLogResponse{
			ID:                  l.ChangeLogID,
			DesignationID:       l.DesignationID,
			ProgramID:           l.ProgramID,
			OriginalPrincipalID: l.OriginalPrincipalID,
			NewPrincipalID:      l.NewPrincipalID,
			OriginalAssistantID: l.OriginalAssistantID,
			NewAssistantID:      l.NewAssistantID,
			ChangeType:          l.ChangeType,
			Reason:              l.Reason,
			CreatedAt:           formatTime(l.CreatedAt),
		})
	}
	return result, total, nil
}

func toDesignationResponse(d *model.Designation) dto.DesignationResponse {
	resp := dto.DesignationResponse{
		ID:        d.DesignationID,
		ProgramID: d.ProgramID,
		PartID:    d.PartID,
		PartType:  d.PartType,
		Principal: toParticipantBrief(d.Principal),
		Assistant: toParticipantBrief(d.Assistant),
		Status:    d.Status,
		State:     d.State,
		Strategy:  d.Strategy,
		Reason:    d.Reason,
		Attempts:  d.Attempts,
		Manual:    d.Manual,
		Version:   d.Version,
	}
	if d.Part != nil {
		resp.PartTitle = d.Part.Title
		resp.Position = d.Part.Position
	}
	return resp
}
