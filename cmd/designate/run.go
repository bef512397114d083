package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"meeting-designations/internal/engine"
)

func newRunCmd() *cobra.Command {
	var (
		input  string
		asOf   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "对快照运行一次指派",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("不支持的输出格式 %q（json|table）", format)
			}
			snap, err := loadSnapshot(input)
			if err != nil {
				return err
			}
			at, err := resolveAsOf(asOf, snap, time.Now())
			if err != nil {
				return err
			}
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			res, err := eng.RunContext(cmd.Context(), snap.Parts, snap.Participants, snap.History, at)
			if err != nil {
				return err
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			writeTable(cmd.OutOrStdout(), snap, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "YAML 快照文件")
	cmd.Flags().StringVar(&asOf, "as-of", "", "指派基准日期 YYYY-MM-DD")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "输出格式 json|table")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func writeJSON(w io.Writer, res engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func writeTable(w io.Writer, snap *snapshot, res engine.Result) {
	names := make(map[string]string, len(snap.Participants))
	for _, p := range snap.Participants {
		names[p.ID] = p.Name
	}
	display := func(id string) string {
		if id == "" {
			return "-"
		}
		if n := names[id]; n != "" {
			return n
		}
		return id
	}

	rows := make([][]string, 0, len(res.Decisions))
	for i, d := range res.Decisions {
		rows = append(rows, []string{
			snap.Parts[i].Title,
			string(d.PartType),
			display(d.PrincipalID),
			display(d.AssistantID),
			string(d.Status),
			string(d.State),
			string(d.Strategy),
			d.Reason,
		})
	}

	header := lipgloss.NewStyle().Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("节目", "类型", "主讲", "助手", "状态", "结果", "策略", "说明").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "共 %d 个节目：已指派 %d，降级 %d，未指派 %d\n",
		res.Summary.Total, res.Summary.Assigned, res.Summary.Degraded, res.Summary.Unassigned)
}
