package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"meeting-designations/internal/model"
	"meeting-designations/internal/repository"
	pkgerrors "meeting-designations/pkg/errors"
)

// ── Mock ParticipantRepository ──

type mockParticipantRepo struct {
	participants map[string]*model.Participant
	seq          int
}

func newMockParticipantRepo() *mockParticipantRepo {
	return &mockParticipantRepo{participants: make(map[string]*model.Participant)}
}

func (m *mockParticipantRepo) Create(_ context.Context, p *model.Participant) error {
	if p.ParticipantID == "" {
		m.seq++
		p.ParticipantID = fmt.Sprintf("p-%03d", m.seq)
	}
	if p.Version == 0 {
		p.Version = 1
	}
	m.participants[p.ParticipantID] = p
	return nil
}

func (m *mockParticipantRepo) GetByID(_ context.Context, id string) (*model.Participant, error) {
	if p, ok := m.participants[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParticipantRepo) Update(_ context.Context, p *model.Participant) error {
	stored, ok := m.participants[p.ParticipantID]
	if !ok || stored.Version != p.Version {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version++
	cp := *p
	m.participants[p.ParticipantID] = &cp
	return nil
}

func (m *mockParticipantRepo) List(_ context.Context, filter repository.ParticipantFilter, offset, limit int) ([]model.Participant, int64, error) {
	all := m.sorted()
	var matched []model.Participant
	for _, p := range all {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.Gender != "" && p.Gender != filter.Gender {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		matched = append(matched, p)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.Participant{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockParticipantRepo) ListRoster(_ context.Context) ([]model.Participant, error) {
	return m.sorted(), nil
}

func (m *mockParticipantRepo) sorted() []model.Participant {
	result := make([]model.Participant, 0, len(m.participants))
	for _, p := range m.participants {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ParticipantID < result[j].ParticipantID
	})
	return result
}

// ── Mock ProgramRepository / ProgramPartRepository ──

type mockProgramRepo struct {
	programs map[string]*model.Program
	parts    *mockProgramPartRepo
	seq      int
	// updateErr 非 nil 时 Update 直接返回该错误
	updateErr error
}

func newMockProgramRepo(parts *mockProgramPartRepo) *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[string]*model.Program), parts: parts}
}

func (m *mockProgramRepo) Create(_ context.Context, program *model.Program) error {
	if program.ProgramID == "" {
		m.seq++
		program.ProgramID = fmt.Sprintf("prog-%03d", m.seq)
	}
	if program.Version == 0 {
		program.Version = 1
	}
	cp := *program
	cp.Parts = nil
	m.programs[program.ProgramID] = &cp
	return nil
}

func (m *mockProgramRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Parts, _ = m.parts.ListByProgram(ctx, id)
	return &cp, nil
}

func (m *mockProgramRepo) List(_ context.Context, offset, limit int) ([]model.Program, int64, error) {
	var result []model.Program
	for _, p := range m.programs {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WeekStart.After(result[j].WeekStart) })
	total := int64(len(result))
	if offset >= len(result) {
		return []model.Program{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockProgramRepo) Update(_ context.Context, program *model.Program) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.programs[program.ProgramID]
	if !ok || stored.Version != program.Version {
		return pkgerrors.ErrOptimisticLock
	}
	program.Version++
	cp := *program
	cp.Parts = nil
	m.programs[program.ProgramID] = &cp
	return nil
}

type mockProgramPartRepo struct {
	parts map[string]*model.ProgramPart
	seq   int
}

func newMockProgramPartRepo() *mockProgramPartRepo {
	return &mockProgramPartRepo{parts: make(map[string]*model.ProgramPart)}
}

func (m *mockProgramPartRepo) BatchCreate(_ context.Context, parts []model.ProgramPart) error {
	for i := range parts {
		if parts[i].PartID == "" {
			m.seq++
			parts[i].PartID = fmt.Sprintf("part-%03d", m.seq)
		}
		cp := parts[i]
		m.parts[cp.PartID] = &cp
	}
	return nil
}

func (m *mockProgramPartRepo) GetByID(_ context.Context, id string) (*model.ProgramPart, error) {
	if p, ok := m.parts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramPartRepo) ListByProgram(_ context.Context, programID string) ([]model.ProgramPart, error) {
	var result []model.ProgramPart
	for _, p := range m.parts {
		if p.ProgramID == programID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// ── Mock AssignmentHistoryRepository ──

type mockHistoryRepo struct {
	entries []model.AssignmentHistory
	seq     int
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) BatchCreate(_ context.Context, entries []model.AssignmentHistory) error {
	for i := range entries {
		if entries[i].HistoryID == "" {
			m.seq++
			entries[i].HistoryID = fmt.Sprintf("h-%03d", m.seq)
		}
		m.entries = append(m.entries, entries[i])
	}
	return nil
}

// ListSince 返回副本，调用方可以原地过滤
func (m *mockHistoryRepo) ListSince(_ context.Context, since time.Time) ([]model.AssignmentHistory, error) {
	var result []model.AssignmentHistory
	for _, h := range m.entries {
		if !h.AssignedAt.Before(since) {
			result = append(result, h)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].AssignedAt.Before(result[j].AssignedAt) })
	return result, nil
}

func (m *mockHistoryRepo) DeleteByProgram(_ context.Context, programID string) error {
	kept := make([]model.AssignmentHistory, 0, len(m.entries))
	for _, h := range m.entries {
		if deref(h.ProgramID) != programID {
			kept = append(kept, h)
		}
	}
	m.entries = kept
	return nil
}

func (m *mockHistoryRepo) DeleteByDesignation(_ context.Context, designationID string) error {
	kept := make([]model.AssignmentHistory, 0, len(m.entries))
	for _, h := range m.entries {
		if deref(h.DesignationID) != designationID {
			kept = append(kept, h)
		}
	}
	m.entries = kept
	return nil
}

func (m *mockHistoryRepo) byProgram(programID string) []model.AssignmentHistory {
	var result []model.AssignmentHistory
	for _, h := range m.entries {
		if deref(h.ProgramID) == programID {
			result = append(result, h)
		}
	}
	return result
}

// ── Mock DesignationRepository ──

type mockDesignationRepo struct {
	designations map[string]*model.Designation
	parts        *mockProgramPartRepo
	people       *mockParticipantRepo
}

func newMockDesignationRepo(parts *mockProgramPartRepo, people *mockParticipantRepo) *mockDesignationRepo {
	return &mockDesignationRepo{
		designations: make(map[string]*model.Designation),
		parts:        parts,
		people:       people,
	}
}

func (m *mockDesignationRepo) BatchCreate(_ context.Context, list []model.Designation) error {
	for i := range list {
		cp := list[i]
		cp.Part, cp.Principal, cp.Assistant = nil, nil, nil
		m.designations[cp.DesignationID] = &cp
	}
	return nil
}

func (m *mockDesignationRepo) GetByID(_ context.Context, id string) (*model.Designation, error) {
	d, ok := m.designations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.loaded(d), nil
}

func (m *mockDesignationRepo) ListByProgram(_ context.Context, programID string) ([]model.Designation, error) {
	var result []model.Designation
	for _, d := range m.designations {
		if d.ProgramID == programID {
			result = append(result, *m.loaded(d))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Part.Position < result[j].Part.Position })
	return result, nil
}

func (m *mockDesignationRepo) Update(_ context.Context, d *model.Designation) error {
	stored, ok := m.designations[d.DesignationID]
	if !ok || stored.Version != d.Version {
		return pkgerrors.ErrOptimisticLock
	}
	d.Version++
	cp := *d
	cp.Part, cp.Principal, cp.Assistant = nil, nil, nil
	m.designations[d.DesignationID] = &cp
	return nil
}

func (m *mockDesignationRepo) DeleteByProgram(_ context.Context, programID string) error {
	for id, d := range m.designations {
		if d.ProgramID == programID {
			delete(m.designations, id)
		}
	}
	return nil
}

// loaded 模拟 Preload 关联
func (m *mockDesignationRepo) loaded(d *model.Designation) *model.Designation {
	cp := *d
	if p, ok := m.parts.parts[cp.PartID]; ok {
		part := *p
		cp.Part = &part
	}
	if cp.PrincipalID != nil {
		cp.Principal, _ = m.people.GetByID(context.Background(), *cp.PrincipalID)
	}
	if cp.AssistantID != nil {
		cp.Assistant, _ = m.people.GetByID(context.Background(), *cp.AssistantID)
	}
	return &cp
}

// ── Mock DesignationChangeLogRepository ──

type mockChangeLogRepo struct {
	logs []model.DesignationChangeLog
}

func newMockChangeLogRepo() *mockChangeLogRepo {
	return &mockChangeLogRepo{}
}

func (m *mockChangeLogRepo) Create(_ context.Context, log *model.DesignationChangeLog) error {
	if log.ChangeLogID == "" {
		log.ChangeLogID = fmt.Sprintf("log-%03d", len(m.logs)+1)
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockChangeLogRepo) ListByProgram(_ context.Context, programID string, offset, limit int) ([]model.DesignationChangeLog, int64, error) {
	var matched []model.DesignationChangeLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if programID == "" || m.logs[i].ProgramID == programID {
			matched = append(matched, m.logs[i])
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.DesignationChangeLog{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// ── Mock RunLocker ──

type mockLocker struct {
	held     map[string]string
	acquired int
	released int
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]string)}
}

func (m *mockLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := m.held[key]; ok {
		return "", pkgerrors.ErrLockHeld
	}
	m.acquired++
	token := fmt.Sprintf("token-%d", m.acquired)
	m.held[key] = token
	return token, nil
}

func (m *mockLocker) ReleaseLock(_ context.Context, key, token string) error {
	if m.held[key] == token {
		delete(m.held, key)
		m.released++
	}
	return nil
}

// ── 测试夹具 ──

type testRepos struct {
	repo         *repository.Repository
	participants *mockParticipantRepo
	programs     *mockProgramRepo
	parts        *mockProgramPartRepo
	history      *mockHistoryRepo
	designations *mockDesignationRepo
	changeLogs   *mockChangeLogRepo
}

func newTestRepos() *testRepos {
	participants := newMockParticipantRepo()
	parts := newMockProgramPartRepo()
	programs := newMockProgramRepo(parts)
	history := newMockHistoryRepo()
	designations := newMockDesignationRepo(parts, participants)
	changeLogs := newMockChangeLogRepo()

	return &testRepos{
		repo: &repository.Repository{
			Participant:          participants,
			Program:              programs,
			ProgramPart:          parts,
			History:              history,
			Designation:          designations,
			DesignationChangeLog: changeLogs,
		},
		participants: participants,
		programs:     programs,
		parts:        parts,
		history:      history,
		designations: designations,
		changeLogs:   changeLogs,
	}
}

// addParticipant 直接写入名单
func (r *testRepos) addParticipant(id, name, gender, role string, quals ...string) *model.Participant {
	set := model.QualificationSet{}
	for _, q := range quals {
		set[q] = true
	}
	p := &model.Participant{
		ParticipantID:  id,
		Name:           name,
		Gender:         gender,
		Role:           role,
		Active:         true,
		Qualifications: set,
	}
	r.participants.Create(context.Background(), p)
	return p
}

// addProgram 创建节目单；titles 依次作为节目标题
func (r *testRepos) addProgram(id string, meetingAt time.Time, titles ...string) *model.Program {
	program := &model.Program{
		ProgramID: id,
		Title:     "Reunião " + meetingAt.Format("2006-01-02"),
		WeekStart: meetingAt.Truncate(24 * time.Hour),
		MeetingAt: meetingAt,
		Status:    model.ProgramStatusDraft,
	}
	r.programs.Create(context.Background(), program)

	parts := make([]model.ProgramPart, 0, len(titles))
	for i, title := range titles {
		parts = append(parts, model.ProgramPart{
			PartID:          fmt.Sprintf("%s-part-%d", id, i+1),
			ProgramID:       id,
			Position:        i + 1,
			Title:           title,
			DurationMinutes: 5,
		})
	}
	r.parts.BatchCreate(context.Background(), parts)
	program.Parts = parts
	return program
}
