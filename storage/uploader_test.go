package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"clipstudio/errs"
)

type fakeStore struct {
	puts    map[string][]byte
	failKey string
	dropPut bool // swallow Puts so Exists reports false
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, bucket, key string, body io.Reader, _ string) error {
	if f.failKey != "" && strings.Contains(key, f.failKey) {
		return errors.New("simulated network failure")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if !f.dropPut {
		f.puts[bucket+"/"+key] = data
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, bucket, key string) error {
	if f.failKey != "" && strings.Contains(key, f.failKey) {
		return errors.New("simulated network failure")
	}
	delete(f.puts, bucket+"/"+key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	_, ok := f.puts[bucket+"/"+key]
	return ok, nil
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://cdn.test/%s/%s", bucket, key)
}

func TestUpload_Success(t *testing.T) {
	store := newFakeStore()
	up := NewUploader(store, "clips", zap.NewNop())

	key, url, err := up.Upload(context.Background(), "intro clip.mp4", "video/mp4",
		strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.test/clips/") {
		t.Fatalf("url = %q, want cdn prefix", url)
	}
	if !strings.HasSuffix(url, "_intro_clip.mp4") {
		t.Fatalf("url = %q, want sanitized filename suffix", url)
	}
	if !strings.HasSuffix(url, key) {
		t.Fatalf("url %q does not end with key %q", url, key)
	}
	if len(store.puts) != 1 {
		t.Fatalf("stored %d objects, want 1", len(store.puts))
	}
}

func TestUpload_FailureIsUploadKind(t *testing.T) {
	store := newFakeStore()
	store.failKey = "broken"
	up := NewUploader(store, "clips", zap.NewNop())

	_, _, err := up.Upload(context.Background(), "broken.mp4", "video/mp4",
		strings.NewReader("bytes"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errs.Is(err, errs.KindUpload) {
		t.Fatalf("err kind = %q, want upload", errs.KindOf(err))
	}
}

func TestDelete_RemovesStoredObject(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	up := NewUploader(store, "clips", zap.NewNop())

	key, _, err := up.Upload(ctx, "clip.mp4", "video/mp4", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := up.Delete(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := up.Exists(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("object still exists after delete")
	}
}

func TestDelete_FailureIsUploadKind(t *testing.T) {
	store := newFakeStore()
	store.failKey = "gone"
	up := NewUploader(store, "clips", zap.NewNop())

	err := up.Delete(context.Background(), "123_gone.mp4")
	if !errs.Is(err, errs.KindUpload) {
		t.Fatalf("err kind = %q, want upload", errs.KindOf(err))
	}
}

func TestPublish_ReturnsURLForSettledObject(t *testing.T) {
	store := newFakeStore()
	pub := NewPublisher(NewUploader(store, "clips", zap.NewNop()))

	path := filepath.Join(t.TempDir(), "out.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	url, err := pub.Publish(context.Background(), "out.mp4", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.test/clips/") {
		t.Fatalf("url = %q", url)
	}
}

func TestPublish_RejectsUnsettledObject(t *testing.T) {
	store := newFakeStore()
	store.dropPut = true
	pub := NewPublisher(NewUploader(store, "clips", zap.NewNop()))

	path := filepath.Join(t.TempDir(), "out.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := pub.Publish(context.Background(), "out.mp4", path); err == nil {
		t.Fatal("expected error for object missing after upload")
	}
}

func TestGenerateKey_Unique(t *testing.T) {
	a := GenerateKey("clip.mp4")
	b := GenerateKey("clip.mp4")
	if a == b {
		t.Fatalf("keys collide: %q", a)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "my clip.mp4", want: "my_clip.mp4"},
		{in: "weird/..\\name?.mov", want: "weird_.._name_.mov"},
		{in: "", want: "asset"},
		{in: "ok-file_1.mp3", want: "ok-file_1.mp3"},
	}
	for _, tc := range cases {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Fatalf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
