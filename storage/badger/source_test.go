package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/storage"
)

func newPendingSource(tenant, course, title string) *core.Source {
	return &core.Source{
		TenantId: tenant,
		CourseId: course,
		Title:    title,
		Kind:     core.KindText,
		Origin:   "inline content for " + title,
		Status:   core.StatusPending,
	}
}

func TestSourceBasics(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	added, err := sourceRepo.AddSource(ctx, newPendingSource("tenant-a", "course-1", "Syllabus"))
	if err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}

	if added.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added.CreatedAt.IsZero() || added.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set")
	}

	retrieved, err := sourceRepo.GetSource(ctx, "tenant-a", added.Id)
	if err != nil {
		t.Fatalf("Failed to get source: %v", err)
	}

	if retrieved.Title != "Syllabus" {
		t.Fatalf("Expected 'Syllabus', got '%s'", retrieved.Title)
	}
	if retrieved.Status != core.StatusPending {
		t.Fatalf("Expected PENDING, got %s", retrieved.Status)
	}
}

func TestGetSource_NotFound(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	_, err = sourceRepo.GetSource(ctx, "tenant-a", 12345)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	var nfe *storage.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("Expected *NotFoundError, got %T", err)
	}
	if nfe.ID != 12345 || nfe.TenantID != "tenant-a" {
		t.Fatalf("NotFoundError carries wrong identity: %v", nfe)
	}
}

func TestGetSource_TenantIsolation(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	added, err := sourceRepo.AddSource(ctx, newPendingSource("tenant-a", "course-1", "Syllabus"))
	if err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}

	// Another tenant must not see the source
	_, err = sourceRepo.GetSource(ctx, "tenant-b", added.Id)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for foreign tenant, got %v", err)
	}
}

func TestListCourseSources(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	base := time.Now().UTC().Add(-1 * time.Hour)

	titles := []string{"Oldest", "Middle", "Newest"}
	for i, title := range titles {
		src := newPendingSource("tenant-a", "course-1", title)
		src.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := sourceRepo.AddSource(ctx, src); err != nil {
			t.Fatalf("Failed to add source: %v", err)
		}
	}

	// Different course, must not appear
	if _, err := sourceRepo.AddSource(ctx, newPendingSource("tenant-a", "course-2", "Other")); err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}

	sources, err := sourceRepo.ListCourseSources(ctx, "tenant-a", "course-1")
	if err != nil {
		t.Fatalf("Failed to list sources: %v", err)
	}

	if len(sources) != 3 {
		t.Fatalf("Expected 3 sources, got %d", len(sources))
	}
	// Newest first
	want := []string{"Newest", "Middle", "Oldest"}
	for i, title := range want {
		if sources[i].Title != title {
			t.Fatalf("Position %d: expected %q, got %q", i, title, sources[i].Title)
		}
	}
}

func TestListCourseSources_Empty(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	sources, err := sourceRepo.ListCourseSources(context.Background(), "tenant-a", "no-such-course")
	if err != nil {
		t.Fatalf("Failed to list sources: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("Expected no sources, got %d", len(sources))
	}
}

func TestUpdateSourceIf(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	added, err := sourceRepo.AddSource(ctx, newPendingSource("tenant-a", "course-1", "Syllabus"))
	if err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}

	// Claim: PENDING -> PROCESSING
	updated, applied, err := sourceRepo.UpdateSourceIf(ctx, "tenant-a", added.Id, core.StatusPending, core.SourcePatch{
		Status: core.StatusProcessing,
	})
	if err != nil {
		t.Fatalf("Failed to update source: %v", err)
	}
	if !applied {
		t.Fatal("Expected transition to be applied")
	}
	if updated.Status != core.StatusProcessing {
		t.Fatalf("Expected PROCESSING, got %s", updated.Status)
	}

	// Second claim must be a no-op: status no longer matches
	_, applied, err = sourceRepo.UpdateSourceIf(ctx, "tenant-a", added.Id, core.StatusPending, core.SourcePatch{
		Status: core.StatusProcessing,
	})
	if err != nil {
		t.Fatalf("Unexpected error on skipped update: %v", err)
	}
	if applied {
		t.Fatal("Expected second claim to be skipped")
	}

	// Finish: PROCESSING -> READY with lifecycle fields
	raw := "extracted content"
	count := 2
	updated, applied, err = sourceRepo.UpdateSourceIf(ctx, "tenant-a", added.Id, core.StatusProcessing, core.SourcePatch{
		Status:     core.StatusReady,
		RawContent: &raw,
		ChunkCount: &count,
		Metadata:   map[string]string{"word_count": "2"},
	})
	if err != nil {
		t.Fatalf("Failed to finish source: %v", err)
	}
	if !applied {
		t.Fatal("Expected terminal transition to be applied")
	}

	final, err := sourceRepo.GetSource(ctx, "tenant-a", added.Id)
	if err != nil {
		t.Fatalf("Failed to get source: %v", err)
	}
	if final.Status != core.StatusReady {
		t.Fatalf("Expected READY, got %s", final.Status)
	}
	if final.RawContent == nil || *final.RawContent != raw {
		t.Fatal("Expected raw content to be persisted")
	}
	if final.ChunkCount == nil || *final.ChunkCount != count {
		t.Fatal("Expected chunk count to be persisted")
	}
	if final.Metadata["word_count"] != "2" {
		t.Fatal("Expected metadata to be persisted")
	}
}

func TestUpdateSourceIf_Missing(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	updated, applied, err := sourceRepo.UpdateSourceIf(context.Background(), "tenant-a", 999, core.StatusPending, core.SourcePatch{
		Status: core.StatusProcessing,
	})
	if err != nil {
		t.Fatalf("Expected no error for missing source, got %v", err)
	}
	if applied || updated != nil {
		t.Fatal("Expected no-op for missing source")
	}
}

func TestDeleteSource(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	added, err := sourceRepo.AddSource(ctx, newPendingSource("tenant-a", "course-1", "Syllabus"))
	if err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}

	// Attach embeddings, they must be removed with the source
	for i := 0; i < 3; i++ {
		_, err := embeddingRepo.PutEmbedding(ctx, "tenant-a", &core.Embedding{
			Key:          core.SegmentKey(added.Id, i),
			SourceId:     added.Id,
			SegmentIndex: i,
			Text:         "segment",
			Vector:       []float32{1.0},
		})
		if err != nil {
			t.Fatalf("Failed to put embedding: %v", err)
		}
	}

	if err := sourceRepo.DeleteSource(ctx, "tenant-a", added.Id); err != nil {
		t.Fatalf("Failed to delete source: %v", err)
	}

	if _, err := sourceRepo.GetSource(ctx, "tenant-a", added.Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	remaining, err := embeddingRepo.ListSourceEmbeddings(ctx, "tenant-a", added.Id)
	if err != nil {
		t.Fatalf("Failed to list embeddings: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Expected embeddings removed with source, got %d", len(remaining))
	}

	sources, err := sourceRepo.ListCourseSources(ctx, "tenant-a", "course-1")
	if err != nil {
		t.Fatalf("Failed to list sources: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("Expected course index entry removed, got %d sources", len(sources))
	}
}

func TestDeleteSource_NotFound(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	err = sourceRepo.DeleteSource(context.Background(), "tenant-a", 999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestListSourcesByStatus(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	pending, err := sourceRepo.AddSource(ctx, newPendingSource("tenant-a", "course-1", "Stuck"))
	if err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}

	ready := newPendingSource("tenant-b", "course-9", "Done")
	if _, err := sourceRepo.AddSource(ctx, ready); err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}
	raw := "content"
	count := 1
	if _, _, err := sourceRepo.UpdateSourceIf(ctx, "tenant-b", ready.Id, core.StatusPending, core.SourcePatch{
		Status: core.StatusProcessing,
	}); err != nil {
		t.Fatalf("Failed to claim source: %v", err)
	}
	if _, _, err := sourceRepo.UpdateSourceIf(ctx, "tenant-b", ready.Id, core.StatusProcessing, core.SourcePatch{
		Status:     core.StatusReady,
		RawContent: &raw,
		ChunkCount: &count,
	}); err != nil {
		t.Fatalf("Failed to finish source: %v", err)
	}

	// Everything updated so far is older than a future cutoff
	cutoff := time.Now().UTC().Add(1 * time.Hour)

	stalled, err := sourceRepo.ListSourcesByStatus(ctx, core.StatusPending, cutoff)
	if err != nil {
		t.Fatalf("Failed to list by status: %v", err)
	}
	if len(stalled) != 1 || stalled[0].Id != pending.Id {
		t.Fatalf("Expected only the pending source, got %d results", len(stalled))
	}

	// A cutoff in the past matches nothing
	none, err := sourceRepo.ListSourcesByStatus(ctx, core.StatusPending, time.Now().UTC().Add(-1*time.Hour))
	if err != nil {
		t.Fatalf("Failed to list by status: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("Expected no results for past cutoff, got %d", len(none))
	}
}
