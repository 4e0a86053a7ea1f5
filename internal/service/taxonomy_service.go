package service

import (
	"fmt"
	"strings"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/repository"
	"portfolio-backend/pkg/cache"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/utils"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        *cache.Cache
}

func NewCategoryService(categoryRepo repository.CategoryRepository, cacheService *cache.Cache) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, cache: cacheService}
}

func (s *CategoryService) Create(req models.CategoryRequest) (*models.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	slug, err := taxonomySlug(req.Slug, req.Name, func(candidate string) (bool, error) {
		return s.categoryRepo.ExistsBySlug(candidate, 0)
	})
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		Order:       req.Order,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	invalidateListings(s.cache)
	return category, nil
}

func (s *CategoryService) Update(id uint, req models.CategoryRequest) (*models.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "category")
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = strings.TrimSpace(req.Description)
	category.Order = req.Order

	if requested := strings.TrimSpace(req.Slug); requested != "" && requested != category.Slug {
		slug, err := taxonomySlug(requested, category.Name, func(candidate string) (bool, error) {
			return s.categoryRepo.ExistsBySlug(candidate, category.ID)
		})
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	invalidateListings(s.cache)
	return category, nil
}

// Delete refuses to remove a category that still has posts attached.
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		return notFound(err, "category")
	}

	count, err := s.categoryRepo.CountPosts(id)
	if err != nil {
		return fmt.Errorf("failed to count category posts: %w", err)
	}
	if count > 0 {
		return &InUseError{Resource: "category", Count: count}
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	invalidateListings(s.cache)
	return nil
}

func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "category")
	}
	return category, nil
}

// GetAll is the admin listing, so posts_count includes drafts and scheduled posts.
func (s *CategoryService) GetAll() ([]models.Category, error) {
	return s.categoryRepo.GetWithTotalPostCount()
}

type TagService struct {
	tagRepo repository.TagRepository
	cache   *cache.Cache
}

func NewTagService(tagRepo repository.TagRepository, cacheService *cache.Cache) *TagService {
	return &TagService{tagRepo: tagRepo, cache: cacheService}
}

func (s *TagService) Create(req models.TagRequest) (*models.Tag, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	slug, err := taxonomySlug(req.Slug, req.Name, func(candidate string) (bool, error) {
		return s.tagRepo.ExistsBySlug(candidate, 0)
	})
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{Name: strings.TrimSpace(req.Name), Slug: slug, Order: req.Order}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	invalidateListings(s.cache)
	return tag, nil
}

func (s *TagService) Update(id uint, req models.TagRequest) (*models.Tag, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	tag, err := s.tagRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "tag")
	}

	tag.Name = strings.TrimSpace(req.Name)
	tag.Order = req.Order

	if requested := strings.TrimSpace(req.Slug); requested != "" && requested != tag.Slug {
		slug, err := taxonomySlug(requested, tag.Name, func(candidate string) (bool, error) {
			return s.tagRepo.ExistsBySlug(candidate, tag.ID)
		})
		if err != nil {
			return nil, err
		}
		tag.Slug = slug
	}

	if err := s.tagRepo.Update(tag); err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	invalidateListings(s.cache)
	return tag, nil
}

// Delete refuses to remove a tag that still has posts attached.
func (s *TagService) Delete(id uint) error {
	if _, err := s.tagRepo.GetByID(id); err != nil {
		return notFound(err, "tag")
	}

	count, err := s.tagRepo.CountPosts(id)
	if err != nil {
		return fmt.Errorf("failed to count tag posts: %w", err)
	}
	if count > 0 {
		return &InUseError{Resource: "tag", Count: count}
	}

	if err := s.tagRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	invalidateListings(s.cache)
	return nil
}

func (s *TagService) GetByID(id uint) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "tag")
	}
	return tag, nil
}

func (s *TagService) GetAll() ([]models.Tag, error) {
	return s.tagRepo.GetWithTotalPostCount()
}

func taxonomySlug(requested, name string, exists func(string) (bool, error)) (string, error) {
	base := utils.GenerateSlug(strings.TrimSpace(requested))
	if base == "" {
		base = utils.GenerateSlug(name)
	}
	if base == "" {
		return "", NewValidationError("slug", "The slug could not be derived from the name.")
	}

	slug, err := utils.UniqueSlug(base, exists)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	return slug, nil
}

func invalidateListings(c *cache.Cache) {
	if err := c.InvalidateListings(); err != nil {
		logger.Warn("Failed to invalidate blog listings", map[string]interface{}{"error": err.Error()})
	}
}
