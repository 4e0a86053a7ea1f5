package service

import (
	"fmt"
	"strings"
	"time"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/repository"
	"portfolio-backend/pkg/cache"
	"portfolio-backend/pkg/utils"
)

const excerptLength = 160

// PostService holds the admin-side post operations.
type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	cache        *cache.Cache
	now          func() time.Time
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	cacheService *cache.Cache,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		cache:        cacheService,
		now:          time.Now,
	}
}

func (s *PostService) Create(req models.CreatePostRequest) (*models.Post, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	slug, err := s.resolveSlug(req.Slug, req.Title, 0)
	if err != nil {
		return nil, err
	}

	categories, err := s.loadCategories(req.CategoryIDs)
	if err != nil {
		return nil, err
	}
	tags, err := s.loadTags(req.TagIDs)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.PostStatusDraft
	}

	post := &models.Post{
		Title:          strings.TrimSpace(req.Title),
		Slug:           slug,
		Excerpt:        strings.TrimSpace(req.Excerpt),
		Content:        req.Content,
		CoverImage:     strings.TrimSpace(req.CoverImage),
		AuthorName:     strings.TrimSpace(req.AuthorName),
		Status:         status,
		PublishedAt:    req.PublishedAt.Or(nil),
		Featured:       req.Featured,
		SEOTitle:       strings.TrimSpace(req.SEOTitle),
		SEODescription: strings.TrimSpace(req.SEODescription),
		Categories:     categories,
		Tags:           tags,
	}
	s.derive(post)

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.invalidate()
	return post, nil
}

func (s *PostService) Update(id uint, req models.UpdatePostRequest) (*models.Post, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "post")
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
		if post.Title == "" {
			return nil, NewValidationError("title", "The title field is required.")
		}
	}
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != post.Slug {
		slug, err := s.resolveSlug(*req.Slug, post.Title, post.ID)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}
	if req.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.CoverImage != nil {
		post.CoverImage = strings.TrimSpace(*req.CoverImage)
	}
	if req.AuthorName != nil {
		post.AuthorName = strings.TrimSpace(*req.AuthorName)
	}
	if req.Status != nil {
		post.Status = *req.Status
	}
	post.PublishedAt = req.PublishedAt.Or(post.PublishedAt)
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if req.SEOTitle != nil {
		post.SEOTitle = strings.TrimSpace(*req.SEOTitle)
	}
	if req.SEODescription != nil {
		post.SEODescription = strings.TrimSpace(*req.SEODescription)
	}
	if req.CategoryIDs != nil {
		if post.Categories, err = s.loadCategories(*req.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if req.TagIDs != nil {
		if post.Tags, err = s.loadTags(*req.TagIDs); err != nil {
			return nil, err
		}
	}
	s.derive(post)

	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.invalidate()
	return post, nil
}

func (s *PostService) Delete(id uint) error {
	if err := s.postRepo.Delete(id); err != nil {
		return notFound(err, "post")
	}
	s.invalidate()
	return nil
}

func (s *PostService) GetByID(id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "post")
	}
	return post, nil
}

func (s *PostService) List(page, limit int, status string) ([]models.Post, int64, error) {
	page, limit = normalizePage(page, limit)

	var filter *models.PostStatus
	switch models.PostStatus(status) {
	case models.PostStatusDraft, models.PostStatusPublished:
		st := models.PostStatus(status)
		filter = &st
	}

	return s.postRepo.List((page-1)*limit, limit, filter)
}

// TogglePublish flips between draft and published. Publishing a post that
// has never had a publish time stamps the current time.
func (s *PostService) TogglePublish(id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "post")
	}

	fields := map[string]interface{}{}
	if post.Status == models.PostStatusPublished {
		post.Status = models.PostStatusDraft
	} else {
		post.Status = models.PostStatusPublished
		if post.PublishedAt == nil {
			now := s.now().UTC()
			post.PublishedAt = &now
			fields["published_at"] = now
		}
	}
	fields["status"] = post.Status

	if err := s.postRepo.UpdateFields(post.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to toggle publish state: %w", err)
	}

	s.invalidate()
	return post, nil
}

func (s *PostService) ToggleFeatured(id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "post")
	}

	post.Featured = !post.Featured
	if err := s.postRepo.UpdateFields(post.ID, map[string]interface{}{"featured": post.Featured}); err != nil {
		return nil, fmt.Errorf("failed to toggle featured flag: %w", err)
	}

	s.invalidate()
	return post, nil
}

func (s *PostService) derive(post *models.Post) {
	post.ReadingTime = utils.ReadingTimeMinutes(post.Content)
	if post.Excerpt == "" {
		post.Excerpt = utils.Excerpt(post.Content, excerptLength)
	}
	if post.Status == models.PostStatusPublished && post.PublishedAt == nil {
		now := s.now().UTC()
		post.PublishedAt = &now
	}
}

// resolveSlug derives a slug from title when none is given and appends a
// numeric suffix until it is free.
func (s *PostService) resolveSlug(requested, title string, excludeID uint) (string, error) {
	base := utils.GenerateSlug(strings.TrimSpace(requested))
	if base == "" {
		base = utils.GenerateSlug(title)
	}
	if base == "" {
		base = "post"
	}

	slug, err := utils.UniqueSlug(base, func(candidate string) (bool, error) {
		return s.postRepo.ExistsBySlug(candidate, excludeID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	return slug, nil
}

func (s *PostService) loadCategories(ids []uint) ([]models.Category, error) {
	ids = uniqueIDs(ids)
	categories, err := s.categoryRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) != len(ids) {
		return nil, NewValidationError("category_ids", "One or more selected categories do not exist.")
	}
	return categories, nil
}

func (s *PostService) loadTags(ids []uint) ([]models.Tag, error) {
	ids = uniqueIDs(ids)
	tags, err := s.tagRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, NewValidationError("tag_ids", "One or more selected tags do not exist.")
	}
	return tags, nil
}

func (s *PostService) invalidate() {
	invalidateListings(s.cache)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
