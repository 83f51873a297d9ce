package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"duothan/internal/common/storage"
	"duothan/internal/judge"
)

type fakeObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) PutObject(_ context.Context, bucket, objectKey string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+objectKey] = data
	return nil
}

func (f *fakeObjectStorage) GetObject(_ context.Context, bucket, objectKey string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+objectKey]
	if !ok {
		return nil, fmt.Errorf("object not found: %s/%s", bucket, objectKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStorage) StatObject(_ context.Context, bucket, objectKey string) (storage.ObjectStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+objectKey]
	if !ok {
		return storage.ObjectStat{}, fmt.Errorf("object not found: %s/%s", bucket, objectKey)
	}
	return storage.ObjectStat{SizeBytes: int64(len(data))}, nil
}

func TestSubmitArchivesSourceAndServesIt(t *testing.T) {
	t.Parallel()

	repo := newFakeSubmissionRepo()
	store := newFakeChallengeStore(activeChallenge())
	objStore := newFakeObjectStorage()
	svc, err := NewSubmissionService(Config{
		SubmissionRepo: repo,
		ChallengeRepo:  store,
		Judge:          passingJudge(),
		Storage:        objStore,
		SourceBucket:   "sources",
	})
	if err != nil {
		t.Fatalf("NewSubmissionService failed: %v", err)
	}

	const code = "print(sum(map(int, input().split())))"
	submission, err := svc.Submit(context.Background(), SubmitInput{
		TeamID:      1,
		ChallengeID: 1,
		LanguageID:  judge.LanguagePython,
		SourceCode:  code,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if submission.SourceKey == "" {
		t.Fatal("expected a source key after archiving")
	}

	source, err := svc.GetSource(context.Background(), 1, submission.ID)
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if !source.FromArchive {
		t.Error("expected source to come from the archive")
	}
	if source.SourceCode != code {
		t.Errorf("source code mismatch: got %q", source.SourceCode)
	}
}

func TestGetSourceFallsBackToDatabaseCopy(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, passingJudge())
	submission := env.submit(t, 1)

	source, err := env.service.GetSource(context.Background(), 1, submission.ID)
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if source.FromArchive {
		t.Error("expected the database copy when no storage is configured")
	}
	if source.SourceCode != submission.SourceCode {
		t.Errorf("source code mismatch: got %q", source.SourceCode)
	}
}

func TestGetSourceEnforcesOwnership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, passingJudge())
	submission := env.submit(t, 1)

	if _, err := env.service.GetSource(context.Background(), 2, submission.ID); err == nil {
		t.Fatal("expected access denied for another team")
	}
}
