package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name string
		emit func(l *Logger)
		want []string
	}{
		{"created", func(l *Logger) { l.Outcome("create", "go-tips", "https://blog/go-tips/") }, []string{"INFO", "article create", "slug=go-tips"}},
		{"failed", func(l *Logger) { l.Outcome("fail", "x", "HTTP 500") }, []string{"ERRO", "publish failed", "HTTP 500"}},
		{"skipped", func(l *Logger) { l.Outcome("skip", "x", "exists") }, []string{"WARN", "skipped", "reason=exists"}},
		{"image", func(l *Logger) { l.ImageUploaded("/a.png", "https://cdn/a.png", true) }, []string{"image uploaded", "cached=true"}},
		{"image failed", func(l *Logger) { l.ImageFailed("/a.png", errors.New("boom")) }, []string{"image upload failed", "boom"}},
		{"batch", func(l *Logger) { l.BatchCompleted(1, 2, 3, 4, 1500*time.Millisecond) }, []string{"created=1", "failed=4", "duration=1.5s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(NewWithLevel(&buf, log.DebugLevel))
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.ArticleLoaded("a.md", "A", "a")
	if buf.Len() != 0 {
		t.Errorf("debug output at info level: %q", buf.String())
	}

	if FromName("nonsense").GetLevel() != log.InfoLevel {
		t.Error("unknown level should fall back to info")
	}
	if FromName("debug").GetLevel() != log.DebugLevel {
		t.Error("debug level not applied")
	}
}
