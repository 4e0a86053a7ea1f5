package repository

import (
	"time"

	"portfolio-backend/internal/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	GetAll() ([]models.Category, error)
	GetWithPostCount(now time.Time) ([]models.Category, error)
	GetWithTotalPostCount() ([]models.Category, error)
	FindByIDs(ids []uint) ([]models.Category, error)
	Update(category *models.Category) error
	Delete(id uint) error
	CountPosts(id uint) (int64, error)
	ExistsBySlug(slug string, excludeID uint) (bool, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, id).Error
	return &category, err
}

func (r *categoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error
	return &category, err
}

func (r *categoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("\"order\" ASC, name ASC").Find(&categories).Error
	return categories, err
}

// GetWithPostCount counts only posts that are publicly visible at now.
func (r *categoryRepository) GetWithPostCount(now time.Time) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Model(&models.Category{}).
		Select("categories.*, COUNT(posts.id) AS posts_count").
		Joins("LEFT JOIN post_categories pc ON pc.category_id = categories.id").
		Joins("LEFT JOIN posts ON posts.id = pc.post_id AND posts.status = ? AND (posts.published_at IS NULL OR posts.published_at <= ?)",
			models.PostStatusPublished, now).
		Group("categories.id").
		Order("categories.\"order\" ASC, categories.name ASC").
		Find(&categories).Error
	return categories, err
}

// GetWithTotalPostCount counts every linked post, the same set CountPosts guards deletion with.
func (r *categoryRepository) GetWithTotalPostCount() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Model(&models.Category{}).
		Select("categories.*, COUNT(pc.post_id) AS posts_count").
		Joins("LEFT JOIN post_categories pc ON pc.category_id = categories.id").
		Group("categories.id").
		Order("categories.\"order\" ASC, categories.name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) FindByIDs(ids []uint) ([]models.Category, error) {
	var categories []models.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

func (r *categoryRepository) Delete(id uint) error {
	return r.db.Delete(&models.Category{}, id).Error
}

// CountPosts counts every linked post regardless of status.
func (r *categoryRepository) CountPosts(id uint) (int64, error) {
	var count int64
	err := r.db.Table("post_categories").Where("category_id = ?", id).Count(&count).Error
	return count, err
}

func (r *categoryRepository) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
