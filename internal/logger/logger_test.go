package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"local", "dev", "docker", "prod"} {
		if _, err := NewLogger(env); err != nil {
			t.Errorf("NewLogger(%q): %v", env, err)
		}
	}
	if _, err := NewLogger("staging"); err == nil {
		t.Error("expected error for unknown environment")
	}
	if _, err := NewLogger("local", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestFromContext(t *testing.T) {
	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)

	if FromContext(ctx) != l {
		t.Error("expected stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected nop logger when absent")
	}

	fallback := zap.NewNop()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("expected fallback when absent")
	}
	if FromContextOr(ctx, fallback) != l {
		t.Error("expected stored logger over fallback")
	}
}
