package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"meeting-designations/internal/engine"
)

const dateLayout = "2006-01-02"

// snapshot 一次离线运行的输入
type snapshot struct {
	AsOf         string                `yaml:"as_of,omitempty"`
	Participants []engine.Participant  `yaml:"participants"`
	Parts        []engine.Part         `yaml:"parts"`
	History      []engine.HistoryEntry `yaml:"history,omitempty"`
}

func loadSnapshot(path string) (*snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开快照失败: %w", err)
	}
	defer f.Close()
	return decodeSnapshot(f)
}

func decodeSnapshot(r io.Reader) (*snapshot, error) {
	var s snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("解析快照失败: %w", err)
	}
	if len(s.Parts) == 0 {
		return nil, fmt.Errorf("快照中没有节目")
	}
	for i := range s.Parts {
		if s.Parts[i].ID == "" {
			s.Parts[i].ID = fmt.Sprintf("part-%d", i+1)
		}
		if s.Parts[i].Position == 0 {
			s.Parts[i].Position = i + 1
		}
	}
	return &s, nil
}

// resolveAsOf 优先级：--as-of > 快照 as_of > 当天（UTC）
func resolveAsOf(flag string, s *snapshot, now time.Time) (time.Time, error) {
	value := flag
	if value == "" {
		value = s.AsOf
	}
	if value == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q，应为 YYYY-MM-DD", value)
	}
	return t, nil
}
