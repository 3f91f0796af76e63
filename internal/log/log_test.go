package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

type secretHolder struct{ password string }

func (s secretHolder) LogValue() slog.Value {
	return slog.GroupValue(slog.String("password", s.password))
}

func TestNew_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Error("should not appear")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "WARN")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("quiet")
	logger.Warn("loud", "password", "hunter2")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("warn record missing")
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("password leaked: %s", out)
	}
}

func TestNew_RedactsLogValuer(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("holder", "holder", secretHolder{password: "hunter2"})
	if strings.Contains(buf.String(), "hunter2") {
		t.Errorf("password leaked through LogValuer: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"Info", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
