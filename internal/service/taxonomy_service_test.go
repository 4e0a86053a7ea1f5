package service

import (
	"errors"
	"testing"

	"portfolio-backend/internal/models"
	"portfolio-backend/pkg/cache"
)

func TestCategoryDeleteRefusedWhilePostsAttached(t *testing.T) {
	repo := newStubCategoryRepo(models.Category{ID: 1, Name: "Go", Slug: "go"})
	repo.totalCounts[1] = 2
	svc := NewCategoryService(repo, cache.NewLocal(nil))

	err := svc.Delete(1)
	if !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	var inUse *InUseError
	if !errors.As(err, &inUse) || inUse.Count != 2 {
		t.Fatalf("expected InUseError with count 2, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("expected category to be kept")
	}

	repo.totalCounts[1] = 0
	if err := svc.Delete(1); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if err := svc.Delete(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryCreateDerivesUniqueSlug(t *testing.T) {
	repo := newStubCategoryRepo(models.Category{ID: 1, Name: "Go", Slug: "go"})
	svc := NewCategoryService(repo, cache.NewLocal(nil))

	category, err := svc.Create(models.CategoryRequest{Name: "Go"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if category.Slug != "go-2" {
		t.Fatalf("expected slug go-2, got %q", category.Slug)
	}

	renamed, err := svc.Update(category.ID, models.CategoryRequest{Name: "Golang", Slug: "golang"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if renamed.Slug != "golang" || renamed.Name != "Golang" {
		t.Fatalf("expected renamed category, got %+v", renamed)
	}
}

func TestCategoryGetAllIncludesCounts(t *testing.T) {
	repo := newStubCategoryRepo(models.Category{ID: 1, Name: "Go", Slug: "go"})
	repo.totalCounts[1] = 4
	svc := NewCategoryService(repo, cache.NewLocal(nil))

	categories, err := svc.GetAll()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(categories) != 1 || categories[0].PostsCount != 4 {
		t.Fatalf("expected count 4, got %+v", categories)
	}
}

func TestTagDeleteRefusedWhilePostsAttached(t *testing.T) {
	repo := newStubTagRepo(models.Tag{ID: 1, Name: "Testing", Slug: "testing"})
	repo.totalCounts[1] = 1
	svc := NewTagService(repo, cache.NewLocal(nil))

	err := svc.Delete(1)
	if !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if err.Error() != "cannot delete tag: it is attached to 1 post" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	repo.totalCounts[1] = 0
	if err := svc.Delete(1); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
}

func TestCategoryAdminCountMatchesDeleteGuard(t *testing.T) {
	repo := newStubCategoryRepo(
		models.Category{ID: 1, Name: "Drafts", Slug: "drafts"},
		models.Category{ID: 2, Name: "Empty", Slug: "empty"},
	)
	repo.totalCounts[1] = 1
	repo.publishedCounts[1] = 0
	svc := NewCategoryService(repo, cache.NewLocal(nil))

	categories, err := svc.GetAll()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	counts := make(map[uint]int64)
	for _, c := range categories {
		counts[c.ID] = c.PostsCount
	}
	if counts[1] != 1 {
		t.Fatalf("expected draft-only category to report 1 post, got %d", counts[1])
	}

	for _, c := range categories {
		err := svc.Delete(c.ID)
		if c.PostsCount > 0 && !errors.Is(err, ErrInUse) {
			t.Fatalf("expected category %d with posts_count %d to be refused, got %v", c.ID, c.PostsCount, err)
		}
		if c.PostsCount == 0 && err != nil {
			t.Fatalf("expected category %d with posts_count 0 to be deleted, got %v", c.ID, err)
		}
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 2 {
		t.Fatalf("expected only the empty category to be deleted, got %v", repo.deleted)
	}
}

func TestTagAdminCountIncludesDrafts(t *testing.T) {
	repo := newStubTagRepo(models.Tag{ID: 1, Name: "Drafts", Slug: "drafts"})
	repo.totalCounts[1] = 3
	repo.publishedCounts[1] = 1
	svc := NewTagService(repo, cache.NewLocal(nil))

	tags, err := svc.GetAll()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tags) != 1 || tags[0].PostsCount != 3 {
		t.Fatalf("expected admin count 3, got %+v", tags)
	}

	var inUse *InUseError
	if err := svc.Delete(1); !errors.As(err, &inUse) || inUse.Count != tags[0].PostsCount {
		t.Fatalf("expected delete guard count %d, got %v", tags[0].PostsCount, err)
	}
}

func TestTagCreateRejectsUnsluggableName(t *testing.T) {
	svc := NewTagService(newStubTagRepo(), cache.NewLocal(nil))

	_, err := svc.Create(models.TagRequest{Name: "!!!"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["slug"] == "" {
		t.Fatalf("expected validation error on slug, got %v", err)
	}
}
