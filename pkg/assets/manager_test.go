package assets

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rpampin/mercadito/internal/contentstore/memory"
	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
)

// jpegBytes returns bytes that sniff as image/jpeg.
func jpegBytes(n int) []byte {
	content := bytes.Repeat([]byte{0xAB}, n)
	copy(content, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return content
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestUploadPending(t *testing.T) {
	store := memory.New()
	mgr := NewManager(store, WithClock(fixedClock()))

	queue := []PendingFile{
		{TempID: "upload-0", Name: "frente.jpg", ContentType: "image/jpeg", Content: jpegBytes(64)},
		{TempID: "upload-1", Name: "detalle.jpg", ContentType: "image/jpeg", Content: jpegBytes(64)},
	}

	paths, err := mgr.UploadPending(context.Background(), "silla", queue)
	if err != nil {
		t.Fatalf("UploadPending failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 resolved paths, got %d", len(paths))
	}

	ms := fixedClock()().UnixMilli()
	for i, file := range queue {
		want := fmt.Sprintf("data/images/silla/silla-%d-%d.jpg", ms, i)
		got := paths[file.TempID]
		if got != want {
			t.Errorf("path for %s = %q, want %q", file.TempID, got, want)
		}
		if _, err := store.Read(context.Background(), got); err != nil {
			t.Errorf("uploaded file missing from store: %v", err)
		}
	}
}

func TestUploadPendingValidation(t *testing.T) {
	mgr := NewManager(memory.New(), WithClock(fixedClock()))

	tests := []struct {
		name string
		file PendingFile
	}{
		{"empty file", PendingFile{TempID: "a", Name: "x.jpg", ContentType: "image/jpeg"}},
		{"oversize file", PendingFile{TempID: "a", Name: "x.jpg", ContentType: "image/jpeg", Content: jpegBytes(MaxFileBytes + 1)}},
		{"unsupported type", PendingFile{TempID: "a", Name: "x.gif", ContentType: "image/gif", Content: jpegBytes(64)}},
		{"missing type", PendingFile{TempID: "a", Name: "x", Content: jpegBytes(64)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mgr.UploadPending(context.Background(), "silla", []PendingFile{tt.file})
			if err == nil {
				t.Fatal("expected an error")
			}
			var uploadErr *errors.UploadError
			if !stderrors.As(err, &uploadErr) {
				t.Errorf("expected UploadError, got %T", err)
			}
		})
	}
}

func TestUploadPendingAbortsBatch(t *testing.T) {
	store := memory.New()
	mgr := NewManager(store, WithClock(fixedClock()))

	queue := []PendingFile{
		{TempID: "upload-0", Name: "ok.jpg", ContentType: "image/jpeg", Content: jpegBytes(64)},
		{TempID: "upload-1", Name: "bad.gif", ContentType: "image/gif", Content: jpegBytes(64)},
		{TempID: "upload-2", Name: "never.jpg", ContentType: "image/jpeg", Content: jpegBytes(64)},
	}

	_, err := mgr.UploadPending(context.Background(), "silla", queue)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "bad.gif") {
		t.Errorf("error should name the failing file: %v", err)
	}
	// The file after the failure must never be attempted.
	if store.Len() != 1 {
		t.Errorf("expected only the first file in the store, got %d files", store.Len())
	}
}

func TestPassthroughRejectsUnstorableFormats(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0}, 32)...)
	_, err := Passthrough{}.Process(context.Background(), "x.png", png)
	if !errors.IsValidationError(err) {
		t.Errorf("expected validation error for png passthrough, got %v", err)
	}
}

func TestDeleteAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("removes every file in the product dir", func(t *testing.T) {
		store := memory.New()
		for _, path := range []string{
			"data/images/silla/silla-1-0.jpg",
			"data/images/silla/silla-1-1.jpg",
			"data/images/mesa/mesa-1-0.jpg",
		} {
			if _, err := store.Write(ctx, path, jpegBytes(16), contentstore.None, "seed"); err != nil {
				t.Fatal(err)
			}
		}

		mgr := NewManager(store)
		if removed := mgr.DeleteAssets(ctx, "silla"); removed != 2 {
			t.Errorf("removed = %d, want 2", removed)
		}
		if store.Len() != 1 {
			t.Errorf("expected only the other product's file to remain, got %d", store.Len())
		}
	})

	t.Run("missing dir is a no-op", func(t *testing.T) {
		mgr := NewManager(memory.New())
		if removed := mgr.DeleteAssets(ctx, "nope"); removed != 0 {
			t.Errorf("removed = %d, want 0", removed)
		}
	})

	t.Run("partial failure removes the rest", func(t *testing.T) {
		inner := memory.New()
		for _, path := range []string{
			"data/images/silla/a.jpg",
			"data/images/silla/b.jpg",
			"data/images/silla/c.jpg",
		} {
			if _, err := inner.Write(ctx, path, jpegBytes(16), contentstore.None, "seed"); err != nil {
				t.Fatal(err)
			}
		}
		store := &failingRemove{Store: inner, failPath: "data/images/silla/b.jpg"}

		mgr := NewManager(store)
		if removed := mgr.DeleteAssets(ctx, "silla"); removed != 2 {
			t.Errorf("removed = %d, want 2", removed)
		}
	})
}

// failingRemove fails Remove for one path and delegates everything else.
type failingRemove struct {
	contentstore.Store
	failPath string
}

func (f *failingRemove) Remove(ctx context.Context, path string, expected contentstore.Version, message string) error {
	if path == f.failPath {
		return errors.NewAPIError(500, path, "boom")
	}
	return f.Store.Remove(ctx, path, expected, message)
}
