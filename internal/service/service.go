package service

import (
	"go.uber.org/zap"

	"meeting-designations/config"
	"meeting-designations/internal/engine"
	"meeting-designations/internal/repository"
	"meeting-designations/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Participant ParticipantService
	Program     ProgramService
	Designation DesignationService
	Rule        RuleService
	Export      ExportService
}

// NewService 创建 Service 聚合；locker 为 nil 时生成指派不加分布式锁
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	eng *engine.Engine,
	locker RunLocker,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		Participant: NewParticipantService(repo, logger),
		Program:     NewProgramService(repo, logger),
		Designation: NewDesignationService(cfg, repo, eng, locker, recorder, logger),
		Rule:        NewRuleService(eng),
		Export:      NewExportService(cfg.Export, repo, logger),
	}
}
