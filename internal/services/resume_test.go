package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubParser struct {
	parsed *ParsedResume
	err    error
}

func (s stubParser) ExtractText(string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.parsed.Text, nil
}

func (s stubParser) ParseResume(string) (*ParsedResume, error) {
	return s.parsed, s.err
}

func newResumeFixture(t *testing.T, parser PDFParserService) (*syncFixture, ResumeService, string) {
	t.Helper()
	f := newSyncFixture(0)
	uploads := t.TempDir()
	storage := NewStorageService(uploads)
	require.NoError(t, storage.EnsureUploadDir())
	return f, NewResumeService(f.resumes, storage, parser, f.svc, zap.NewNop()), uploads
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grace.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestIngestStoresAndIndexesResume(t *testing.T) {
	f, svc, uploads := newResumeFixture(t, stubParser{parsed: &ParsedResume{
		Name:            "Grace Hopper",
		Email:           "grace@example.com",
		ExperienceYears: 9,
		Skills:          []string{"COBOL", "Go"},
		Text:            "Grace Hopper\ngrace@example.com",
		PageCount:       1,
	}})

	resume, indexed, err := svc.Ingest(context.Background(), writePDF(t))

	require.NoError(t, err)
	assert.True(t, indexed)
	assert.Equal(t, "Grace Hopper", resume.Name)
	assert.Equal(t, "grace.pdf", resume.OriginalFileName)
	assert.Equal(t, []string{"COBOL", "Go"}, []string(resume.Skills))
	assert.FileExists(t, filepath.Join(uploads, resume.Filename))
	assert.Contains(t, f.resumeIdx.upserted, resume.ID.String())
}

func TestIngestRemovesUnreadableFile(t *testing.T) {
	f, svc, uploads := newResumeFixture(t, stubParser{err: errors.New("not a pdf")})

	_, _, err := svc.Ingest(context.Background(), writePDF(t))

	require.Error(t, err)
	assert.Empty(t, f.resumes.created)
	entries, readErr := os.ReadDir(uploads)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestGetUnknownResume(t *testing.T) {
	_, svc, _ := newResumeFixture(t, stubParser{})

	_, err := svc.Get(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrCandidateNotFound)
}
