package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// TestLevels 测试级别过滤与 key=value 输出
func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	defer SetOutput(nil)

	Debug("hidden", "k", 1)
	Info("recalculated", "trigger", "zoom", "cells", 24)
	Error("load failed", errors.New("boom"), "path", "items.yaml")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug message to be filtered")
	}
	if !strings.Contains(out, "msg=recalculated") || !strings.Contains(out, "trigger=zoom") || !strings.Contains(out, "cells=24") {
		t.Errorf("Expected info line with fields, got %q", out)
	}
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "err=boom") || !strings.Contains(out, "path=items.yaml") {
		t.Errorf("Expected error line with err field, got %q", out)
	}

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("visible", "odd")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("Expected debug message after lowering level, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "odd") {
		t.Error("Expected dangling key to be dropped")
	}
	SetLevel(LevelInfo)
}

// TestParseLevel 测试级别解析
func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" Info ":  LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"ERROR":   LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q): expected %s, got %s (%v)", input, want, got, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("Expected unknown level to fail")
	}
}
