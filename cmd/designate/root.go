package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meeting-designations/config"
	"meeting-designations/internal/engine"
	"meeting-designations/internal/service"
	applogger "meeting-designations/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "designate",
		Short:         "聚会节目指派工具",
		Long:          "designate 对会众名单与节目单快照运行指派引擎，输出每个节目的主讲与助手。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "配置文件路径（引擎参数；为空时使用内置默认值）")
	root.PersistentFlags().Bool("verbose", false, "输出引擎调试日志")

	root.AddCommand(newRunCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newRulesCmd())
	return root
}

// buildEngine 按 --config 构造引擎；未指定时使用默认参数
func buildEngine(cmd *cobra.Command) (*engine.Engine, error) {
	logger := zap.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		l, err := applogger.NewLogger(&config.LogConfig{Level: "debug", Format: "console"})
		if err != nil {
			return nil, err
		}
		logger = l
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return engine.New(engine.DefaultConfig(), logger), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return engine.New(service.NewEngineConfig(&cfg.Engine), logger), nil
}
