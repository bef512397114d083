package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"meeting-designations/internal/engine"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "列出节目类型规则与冷却期",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			cooldowns := eng.Config().Cooldowns

			rows := make([][]string, 0)
			for _, entry := range engine.Catalog() {
				r := entry.Rules
				roles := "*"
				if r.AllowedRoles != nil {
					roles = strings.Join(r.AllowedRoles, ",")
				}
				assistant := "-"
				if r.RequiresAssistant {
					assistant = fmt.Sprintf("%d", cooldowns.Period(entry.PartType.AssistantTag()))
				}
				rows = append(rows, []string{
					string(entry.PartType),
					string(r.Gender),
					roles,
					string(r.RequiredQualification),
					fmt.Sprintf("%d", cooldowns.Period(string(entry.PartType))),
					assistant,
				})
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("类型", "性别", "角色", "资格", "冷却(天)", "助手冷却(天)").
				Rows(rows...)
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
