package repository

import (
	"strings"
	"time"

	"portfolio-backend/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows the public listing. Empty strings disable a filter.
type PostFilter struct {
	CategorySlug string
	TagSlug      string
	Search       string
	ExcludeID    uint
	Offset       int
	Limit        int
	Now          time.Time
}

type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	Update(post *models.Post) error
	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	List(offset, limit int, status *models.PostStatus) ([]models.Post, int64, error)
	ListPublished(filter PostFilter) ([]models.Post, int64, error)
	GetFeatured(now time.Time) (*models.Post, error)
	GetPublishedBySlug(slug string, now time.Time) (*models.Post, error)
	GetRelated(postID uint, categoryIDs []uint, limit int, now time.Time) ([]models.Post, error)
	GetRecentPublished(limit int, now time.Time) ([]models.Post, error)
	CategoriesForPost(postID uint) ([]models.Category, error)
	IncrementViews(id uint) error
	ExistsBySlug(slug string, excludeID uint) (bool, error)
	Count(status *models.PostStatus) (int64, error)
	TotalViews() (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func publishedAt(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.status = ?", models.PostStatusPublished).
			Where("(posts.published_at IS NULL OR posts.published_at <= ?)", now)
	}
}

const newestFirst = "COALESCE(posts.published_at, posts.created_at) DESC, posts.id DESC"

func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Categories").Preload("Tags").First(&post, id).Error
	return &post, err
}

func (r *postRepository) Update(post *models.Post) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories", "Tags", "Comments").Save(post).Error; err != nil {
			return err
		}
		if err := tx.Model(post).Association("Categories").Replace(post.Categories); err != nil {
			return err
		}
		return tx.Model(post).Association("Tags").Replace(post.Tags)
	})
}

func (r *postRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Post{}).Where("id = ?", id).Updates(fields).Error
}

func (r *postRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_categories WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *postRepository) List(offset, limit int, status *models.PostStatus) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	query := r.db.Model(&models.Post{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Categories").Preload("Tags").
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error

	return posts, total, err
}

// ListPublished applies category and tag filters as EXISTS subqueries so a
// post linked to several matching rows is still returned once.
func (r *postRepository) ListPublished(filter PostFilter) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	query := r.db.Model(&models.Post{}).Scopes(publishedAt(filter.Now))

	if filter.ExcludeID != 0 {
		query = query.Where("posts.id <> ?", filter.ExcludeID)
	}

	if filter.CategorySlug != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = posts.id AND c.slug = ?)`, filter.CategorySlug)
	}

	if filter.TagSlug != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = posts.id AND t.slug = ?)`, filter.TagSlug)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		query = query.Where("(posts.title ILIKE ? OR posts.excerpt ILIKE ? OR posts.content ILIKE ?)", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Categories").Preload("Tags").
		Order(newestFirst).
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&posts).Error

	return posts, total, err
}

func (r *postRepository) GetFeatured(now time.Time) (*models.Post, error) {
	var post models.Post
	err := r.db.Scopes(publishedAt(now)).
		Where("posts.featured = ?", true).
		Preload("Categories").Preload("Tags").
		Order(newestFirst).
		First(&post).Error
	return &post, err
}

func (r *postRepository) GetPublishedBySlug(slug string, now time.Time) (*models.Post, error) {
	var post models.Post
	err := r.db.Scopes(publishedAt(now)).
		Where("posts.slug = ?", slug).
		Preload("Categories").Preload("Tags").
		First(&post).Error
	return &post, err
}

func (r *postRepository) GetRelated(postID uint, categoryIDs []uint, limit int, now time.Time) ([]models.Post, error) {
	var posts []models.Post
	if len(categoryIDs) == 0 || limit <= 0 {
		return posts, nil
	}

	err := r.db.Scopes(publishedAt(now)).
		Where("posts.id <> ?", postID).
		Where("EXISTS (SELECT 1 FROM post_categories pc WHERE pc.post_id = posts.id AND pc.category_id IN ?)", categoryIDs).
		Preload("Categories").
		Order(newestFirst).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetRecentPublished(limit int, now time.Time) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Scopes(publishedAt(now)).
		Preload("Categories").
		Order(newestFirst).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CategoriesForPost(postID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Model(&models.Category{}).
		Joins("JOIN post_categories pc ON pc.category_id = categories.id").
		Where("pc.post_id = ?", postID).
		Order("categories.\"order\" ASC, categories.name ASC").
		Find(&categories).Error
	return categories, err
}

// IncrementViews bumps the counter in a single statement.
func (r *postRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *postRepository) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *postRepository) Count(status *models.PostStatus) (int64, error) {
	var count int64
	query := r.db.Model(&models.Post{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *postRepository) TotalViews() (int64, error) {
	var total int64
	err := r.db.Model(&models.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&total).Error
	return total, err
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
