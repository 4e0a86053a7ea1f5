package repository

import (
	"portfolio-backend/internal/models"

	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(message *models.ContactMessage) error
	GetByID(id uint) (*models.ContactMessage, error)
	List(offset, limit int, unreadOnly bool) ([]models.ContactMessage, int64, error)
	SetFlag(id uint, column string, value bool) error
	Delete(id uint) error
	CountUnread() (int64, error)
	Count() (int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(message *models.ContactMessage) error {
	return r.db.Create(message).Error
}

func (r *contactRepository) GetByID(id uint) (*models.ContactMessage, error) {
	var message models.ContactMessage
	err := r.db.First(&message, id).Error
	return &message, err
}

func (r *contactRepository) List(offset, limit int, unreadOnly bool) ([]models.ContactMessage, int64, error) {
	var messages []models.ContactMessage
	var total int64

	query := r.db.Model(&models.ContactMessage{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error

	return messages, total, err
}

// SetFlag writes one of the inbox booleans. Column names come from the service, never from input.
func (r *contactRepository) SetFlag(id uint, column string, value bool) error {
	result := r.db.Model(&models.ContactMessage{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contactRepository) Delete(id uint) error {
	result := r.db.Delete(&models.ContactMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contactRepository) CountUnread() (int64, error) {
	var count int64
	err := r.db.Model(&models.ContactMessage{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

func (r *contactRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.ContactMessage{}).Count(&count).Error
	return count, err
}
