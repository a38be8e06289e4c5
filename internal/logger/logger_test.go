package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCreatesDailyFile(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(dir, "debug", false)
	require.NoError(t, err)
	l.Infow("hello", "k", "v")
	_ = l.Sync()

	data, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(t.TempDir(), "chatty", false)
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	assert.Same(t, zap.S(), FromContext(context.Background()))

	l := zap.NewNop().Sugar()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
