package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meeting-designations/config"
	"meeting-designations/internal/engine"
	"meeting-designations/internal/model"
	"meeting-designations/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoDesignations = errors.New("该节目单尚未生成指派")
	ErrExportGenerateFail   = errors.New("生成导出文件失败")
	ErrExportFormat         = errors.New("不支持的导出格式")
)

// 导出格式
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatICS  = "ics"
)

// ExportFile 导出结果；由 Handler 设置响应头后写入
type ExportFile struct {
	Content     *bytes.Buffer
	Filename    string
	ContentType string
}

// ExportService 导出业务接口
type ExportService interface {
	// ExportProgram 导出节目单指派，format 为 xlsx 或 ics
	ExportProgram(ctx context.Context, programID, format string) (*ExportFile, error)
}

type exportService struct {
	repo   *repository.Repository
	cfg    config.ExportConfig
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg config.ExportConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, cfg: cfg, logger: logger}
}

func (s *exportService) ExportProgram(ctx context.Context, programID, format string) (*ExportFile, error) {
	if format == "" {
		format = ExportFormatXLSX
	}
	if format != ExportFormatXLSX && format != ExportFormatICS {
		return nil, ErrExportFormat
	}

	program, err := s.repo.Program.GetByID(ctx, programID)
	if err != nil {
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
	if len(list) == 0 {
		return nil, ErrExportNoDesignations
	}
	attachParts(program, list)

	if format == ExportFormatICS {
		return s.exportICS(program, list)
	}
	return s.exportXLSX(program, list)
}

// attachParts ListByProgram 未关联节目时从节目单补齐
func attachParts(program *model.Program, list []model.Designation) {
	parts := make(map[string]*model.ProgramPart, len(program.Parts))
	for i := range program.Parts {
		parts[program.Parts[i].PartID] = &program.Parts[i]
	}
	for i := range list {
		if list[i].Part == nil {
			list[i].Part = parts[list[i].PartID]
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Excel
// ═══════════════════════════════════════════════════════════
//
// 表头: | # | 节目 | 类型 | 主讲 | 助手 | 状态 | 说明 |

func (s *exportService) exportXLSX(program *model.Program, list []model.Designation) (*ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "指派"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := map[string]float64{"A": 5, "B": 36, "C": 20, "D": 22, "E": 22, "F": 12, "G": 60}
	for col, w := range widths {
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	pendingStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FCE4D6"}, Pattern: 1},
	})

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s（%s）", program.Title, program.WeekStart.Format("2006-01-02")))
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "G1", headerStyle)

	headers := []string{"#", "节目", "类型", "主讲", "助手", "状态", "说明"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", "G2", headerStyle)

	row := 3
	for i := range list {
		d := &list[i]
		position, title := i+1, d.PartID
		if d.Part != nil {
			position, title = d.Part.Position, d.Part.Title
		}
		values := []interface{}{
			position,
			title,
			d.PartType,
			participantName(d.Principal, "未指派"),
			participantName(d.Assistant, "-"),
			d.Status,
			d.Reason,
		}
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
		if d.Status != string(engine.StatusOK) {
			f.SetCellStyle(sheetName, cell("A", row), cell("G", row), pendingStyle)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &ExportFile{
		Content:     buf,
		Filename:    fmt.Sprintf("designacoes_%s.xlsx", program.WeekStart.Format("2006-01-02")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

// ═══════════════════════════════════════════════════════════
// iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个已指派节目一个事件；起始时间按节目顺序与时长从聚会开始时间累加。

func (s *exportService) exportICS(program *model.Program, list []model.Designation) (*ExportFile, error) {
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	defaultMinutes := s.cfg.PartDefaultMinutes
	if defaultMinutes <= 0 {
		defaultMinutes = 5
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//meeting-designations//designations//PT")
	if s.cfg.CalendarName != "" {
		cal.SetName(s.cfg.CalendarName)
		cal.SetXWRCalName(s.cfg.CalendarName)
	}
	cal.SetXWRTimezone(loc.String())

	offsets := partOffsets(program.Parts, defaultMinutes)
	stamp := time.Now().UTC()

	for i := range list {
		d := &list[i]
		if d.PrincipalID == nil || d.Part == nil {
			continue
		}
		span := offsets[d.PartID]
		startAt := program.MeetingAt.In(loc).Add(span.start)

		event := cal.AddEvent(d.DesignationID + "@meeting-designations")
		event.SetDtStampTime(stamp)
		event.SetStartAt(startAt)
		event.SetEndAt(startAt.Add(span.duration))
		event.SetSummary(fmt.Sprintf("%s: %s", d.Part.Title, participantName(d.Principal, deref(d.PrincipalID))))
		desc := "主讲: " + participantName(d.Principal, deref(d.PrincipalID))
		if d.AssistantID != nil {
			desc += "\n助手: " + participantName(d.Assistant, deref(d.AssistantID))
		}
		event.SetDescription(desc)
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入 iCalendar 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &ExportFile{
		Content:     buf,
		Filename:    fmt.Sprintf("designacoes_%s.ics", program.WeekStart.Format("2006-01-02")),
		ContentType: "text/calendar; charset=utf-8",
	}, nil
}

type partSpan struct {
	start    time.Duration
	duration time.Duration
}

// partOffsets 按节目顺序累加得到每个节目相对聚会开始的偏移
func partOffsets(parts []model.ProgramPart, defaultMinutes int) map[string]partSpan {
	offsets := make(map[string]partSpan, len(parts))
	var elapsed time.Duration
	for _, p := range parts {
		minutes := p.DurationMinutes
		if minutes <= 0 {
			minutes = defaultMinutes
		}
		d := time.Duration(minutes) * time.Minute
		offsets[p.PartID] = partSpan{start: elapsed, duration: d}
		elapsed += d
	}
	return offsets
}

// ── 辅助函数 ──

func participantName(p *model.Participant, fallback string) string {
	if p == nil {
		return fallback
	}
	return p.Name
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
