package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"meeting-designations/internal/engine"
)

func newClassifyCmd() *cobra.Command {
	var rawType string

	cmd := &cobra.Command{
		Use:   "classify <title>",
		Short: "显示节目标题对应的内部类型",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			fmt.Fprintln(cmd.OutOrStdout(), engine.Classify(title, rawType))
			return nil
		},
	}

	cmd.Flags().StringVar(&rawType, "type", "", "原始节目类型")
	return cmd
}
