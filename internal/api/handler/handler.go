package handler

import "meeting-designations/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Participant *ParticipantHandler
	Program     *ProgramHandler
	Designation *DesignationHandler
	Rule        *RuleHandler
	Export      *ExportHandler
	Health      *HealthHandler
}

// NewHandler 创建 Handler 聚合；checks 为健康检查依赖（可为空）
func NewHandler(svc *service.Service, checks ...HealthCheck) *Handler {
	return &Handler{
		Participant: NewParticipantHandler(svc.Participant),
		Program:     NewProgramHandler(svc.Program),
		Designation: NewDesignationHandler(svc.Designation),
		Rule:        NewRuleHandler(svc.Rule),
		Export:      NewExportHandler(svc.Export),
		Health:      NewHealthHandler(checks...),
	}
}
