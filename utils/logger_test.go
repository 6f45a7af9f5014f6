package utils

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggerConcurrentInit(t *testing.T) {
	const callers = 16
	got := make([]*zap.Logger, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = GetLogger()
		}()
	}
	wg.Wait()

	if got[0] == nil {
		t.Fatal("GetLogger returned nil")
	}
	for i, l := range got {
		if l != got[0] {
			t.Errorf("caller %d got a different logger", i)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zap.InfoLevel},
		{"warn", zap.WarnLevel},
		{"DEBUG", zap.DebugLevel},
		{"loud", zap.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in, zap.InfoLevel); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
