package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"clipstudio/errs"
	"clipstudio/jobs"
	"clipstudio/types"
)

type fakeRenderer struct {
	dir  string
	fail string // message to fail with, "" = succeed
}

func (f *fakeRenderer) Render(_ context.Context, _ types.RenderRequest) (string, error) {
	if f.fail != "" {
		return "", errs.New(errs.KindRender, f.fail)
	}
	path := filepath.Join(f.dir, "out.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakePublisher struct{}

func (fakePublisher) Publish(_ context.Context, jobID, _ string) (string, error) {
	return "https://cdn.test/renders/" + jobID + ".mp4", nil
}

func renderJobMessage(t *testing.T, job types.RenderJob) []byte {
	t.Helper()
	data, err := json.Marshal(job)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestWorker_SuccessfulJob(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewMemoryStore()
	job := types.RenderJob{
		ID:      "job-1",
		Status:  types.JobQueued,
		Request: types.RenderRequest{VideoURLs: []string{"https://cdn.test/a.mp4"}, Duration: 2},
	}
	store.Put(ctx, job)

	w := NewWorker(&fakeRenderer{dir: t.TempDir()}, fakePublisher{}, store, zap.NewNop())

	mark, err := w.Handler().HandleMessage(ctx, renderJobMessage(t, job))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mark {
		t.Fatal("successful job must be marked")
	}

	got, _ := store.Get(ctx, "job-1")
	if got.Status != types.JobDone {
		t.Fatalf("status = %q, want done", got.Status)
	}
	if got.OutputURL != "https://cdn.test/renders/job-1.mp4" {
		t.Fatalf("output url = %q", got.OutputURL)
	}
}

func TestWorker_RenderFailureRecordedAndMarked(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewMemoryStore()
	job := types.RenderJob{
		ID:      "job-2",
		Status:  types.JobQueued,
		Request: types.RenderRequest{VideoURLs: []string{"https://cdn.test/a.mp4"}},
	}
	store.Put(ctx, job)

	w := NewWorker(&fakeRenderer{fail: "ffmpeg failure"}, fakePublisher{}, store, zap.NewNop())

	mark, err := w.Handler().HandleMessage(ctx, renderJobMessage(t, job))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mark {
		t.Fatal("deterministic render failure must be marked, not redelivered")
	}

	got, _ := store.Get(ctx, "job-2")
	if got.Status != types.JobFailed || got.Message != "ffmpeg failure" {
		t.Fatalf("job = %+v, want failed with render message", got)
	}
}

func TestWorker_InvalidPayloadSkipped(t *testing.T) {
	store := jobs.NewMemoryStore()
	w := NewWorker(&fakeRenderer{}, fakePublisher{}, store, zap.NewNop())

	mark, err := w.Handler().HandleMessage(context.Background(), []byte("not json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mark {
		t.Fatal("undecodable message must be marked and skipped")
	}

	// Job with no clips is skipped too.
	mark, err = w.Handler().HandleMessage(context.Background(),
		renderJobMessage(t, types.RenderJob{ID: "job-3"}))
	if err != nil || !mark {
		t.Fatalf("empty job: mark=%v err=%v, want marked skip", mark, err)
	}
}

func TestWorker_UnknownJobGetsStoreRecord(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewMemoryStore()
	job := types.RenderJob{
		ID:      "job-4",
		Request: types.RenderRequest{VideoURLs: []string{"https://cdn.test/a.mp4"}},
	}

	w := NewWorker(&fakeRenderer{dir: t.TempDir()}, fakePublisher{}, store, zap.NewNop())
	if _, err := w.Handler().HandleMessage(ctx, renderJobMessage(t, job)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "job-4")
	if err != nil {
		t.Fatalf("directly produced job not recorded: %v", err)
	}
	if got.Status != types.JobDone {
		t.Fatalf("status = %q, want done", got.Status)
	}
}
