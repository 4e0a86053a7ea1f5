package repository

import (
	"time"

	"portfolio-backend/internal/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id uint) (*models.Comment, error)
	ListApprovedForPost(postID uint) ([]models.Comment, error)
	List(offset, limit int, approved *bool) ([]models.Comment, int64, error)
	SetApproval(id uint, approved bool) error
	ApproveMany(ids []uint) (int64, error)
	Delete(id uint) error
	DeleteMany(ids []uint) (int64, error)
	ExistsFromIPSince(ip string, since time.Time) (bool, error)
	Count(approved *bool) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *commentRepository) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Post", withPostSummary).First(&comment, id).Error
	return &comment, err
}

func (r *commentRepository) ListApprovedForPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("post_id = ? AND is_approved = ?", postID, true).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) List(offset, limit int, approved *bool) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	query := r.db.Model(&models.Comment{})
	if approved != nil {
		query = query.Where("is_approved = ?", *approved)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Post", withPostSummary).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error

	return comments, total, err
}

func (r *commentRepository) SetApproval(id uint, approved bool) error {
	result := r.db.Model(&models.Comment{}).Where("id = ?", id).Update("is_approved", approved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApproveMany ignores ids that do not exist and returns how many rows changed.
func (r *commentRepository) ApproveMany(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Comment{}).
		Where("id IN ? AND is_approved = ?", ids, false).
		Update("is_approved", true)
	return result.RowsAffected, result.Error
}

func (r *commentRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) DeleteMany(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&models.Comment{})
	return result.RowsAffected, result.Error
}

// ExistsFromIPSince covers pending and approved comments on any post.
func (r *commentRepository) ExistsFromIPSince(ip string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).
		Where("ip_address = ? AND created_at > ?", ip, since).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *commentRepository) Count(approved *bool) (int64, error) {
	var count int64
	query := r.db.Model(&models.Comment{})
	if approved != nil {
		query = query.Where("is_approved = ?", *approved)
	}
	err := query.Count(&count).Error
	return count, err
}

func withPostSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title", "slug")
}
