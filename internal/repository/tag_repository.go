package repository

import (
	"time"

	"portfolio-backend/internal/models"

	"gorm.io/gorm"
)

type TagRepository interface {
	Create(tag *models.Tag) error
	GetByID(id uint) (*models.Tag, error)
	GetBySlug(slug string) (*models.Tag, error)
	GetAll() ([]models.Tag, error)
	GetWithPostCount(now time.Time) ([]models.Tag, error)
	GetWithTotalPostCount() ([]models.Tag, error)
	FindByIDs(ids []uint) ([]models.Tag, error)
	Update(tag *models.Tag) error
	Delete(id uint) error
	CountPosts(id uint) (int64, error)
	ExistsBySlug(slug string, excludeID uint) (bool, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

func (r *tagRepository) GetByID(id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.First(&tag, id).Error
	return &tag, err
}

func (r *tagRepository) GetBySlug(slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("slug = ?", slug).First(&tag).Error
	return &tag, err
}

func (r *tagRepository) GetAll() ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Order("\"order\" ASC, name ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) GetWithPostCount(now time.Time) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Model(&models.Tag{}).
		Select("tags.*, COUNT(posts.id) AS posts_count").
		Joins("LEFT JOIN post_tags pt ON pt.tag_id = tags.id").
		Joins("LEFT JOIN posts ON posts.id = pt.post_id AND posts.status = ? AND (posts.published_at IS NULL OR posts.published_at <= ?)",
			models.PostStatusPublished, now).
		Group("tags.id").
		Order("tags.\"order\" ASC, tags.name ASC").
		Find(&tags).Error
	return tags, err
}

func (r *tagRepository) GetWithTotalPostCount() ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Model(&models.Tag{}).
		Select("tags.*, COUNT(pt.post_id) AS posts_count").
		Joins("LEFT JOIN post_tags pt ON pt.tag_id = tags.id").
		Group("tags.id").
		Order("tags.\"order\" ASC, tags.name ASC").
		Find(&tags).Error
	return tags, err
}

func (r *tagRepository) FindByIDs(ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) Update(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

func (r *tagRepository) Delete(id uint) error {
	return r.db.Delete(&models.Tag{}, id).Error
}

func (r *tagRepository) CountPosts(id uint) (int64, error) {
	var count int64
	err := r.db.Table("post_tags").Where("tag_id = ?", id).Count(&count).Error
	return count, err
}

func (r *tagRepository) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Tag{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
