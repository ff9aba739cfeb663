package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchunk/internal/config"
	"docuchunk/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppName:              "docuchunk",
		AppVersion:           "test",
		LogFormat:            "text",
		FilesDir:             filepath.Join(dir, "files"),
		FileAllowedTypes:     []string{"text/plain", "application/pdf", "text/markdown"},
		FileMaxSizeMB:        1,
		FileDefaultChunkSize: 4096,
		ChunkSize:            40,
		ChunkOverlap:         10,
		StoreBackend:         config.BackendSQLite,
		DBPath:               filepath.Join(dir, "docuchunk.db"),
		LockTTL:              5 * time.Second,
		LockWait:             time.Second,
	}
}

func TestNew_UploadProcessList(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 5)
	up, err := a.Service.Upload(ctx, service.UploadRequest{
		ProjectID:   "12",
		Filename:    "fox notes.txt",
		ContentType: "text/plain",
		Size:        int64(len(text)),
		Body:        strings.NewReader(text),
	})
	require.NoError(t, err)
	assert.Equal(t, service.SignalFileUploadSuccess, up.Signal)
	assert.True(t, strings.HasSuffix(up.FileID, "_fox_notes.txt"), "file id %q", up.FileID)

	proc, err := a.Service.Process(ctx, service.ProcessRequest{ProjectID: "12", FileID: up.FileID, DoReset: true})
	require.NoError(t, err)
	assert.Equal(t, service.SignalFileProcessSuccess, proc.Signal)
	assert.Positive(t, proc.InsertedChunks)

	list, err := a.Service.ListChunks(ctx, "12")
	require.NoError(t, err)
	require.Len(t, list.Chunks, proc.InsertedChunks)
	for i, c := range list.Chunks {
		assert.Equal(t, i+1, c.Order)
	}
	assert.Equal(t, proc.InsertedChunks, list.Stats.Count)

	require.NoError(t, a.Service.Health(ctx))
}

func TestNew_RedisLock(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Service.Health(context.Background()))
}

func TestNew_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisURL = "redis://127.0.0.1:1"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{format: "json", want: `"msg":"hello"`},
		{format: "text", want: "msg=hello"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.LogFormat = tt.format

			var buf bytes.Buffer
			NewLogger(cfg, &buf).Info("hello")

			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "docuchunk")
		})
	}
}
