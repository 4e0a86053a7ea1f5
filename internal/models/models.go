package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"portfolio-backend/internal/authorization"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string                 `gorm:"not null" json:"name"`
	Email    string                 `gorm:"uniqueIndex;not null" json:"email"`
	Password string                 `gorm:"not null" json:"-"`
	Role     authorization.UserRole `gorm:"type:varchar(32);default:'editor'" json:"role"`
}

// Post rows are hard-deleted so that comments cascade and slugs free up.
type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title          string     `gorm:"not null" json:"title"`
	Slug           string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt        string     `json:"excerpt"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	CoverImage     string     `json:"cover_image"`
	AuthorName     string     `json:"author_name"`
	ReadingTime    int        `gorm:"not null;default:1" json:"reading_time"`
	Status         PostStatus `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"`
	PublishedAt    *time.Time `gorm:"index" json:"published_at,omitempty"`
	Featured       bool       `gorm:"not null;default:false;index" json:"featured"`
	Views          int64      `gorm:"not null;default:0" json:"views"`
	SEOTitle       string     `json:"seo_title"`
	SEODescription string     `json:"seo_description"`

	Categories []Category `gorm:"many2many:post_categories;constraint:OnDelete:CASCADE;" json:"categories,omitempty"`
	Tags       []Tag      `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE;" json:"tags,omitempty"`
	Comments   []Comment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;" json:"comments,omitempty"`
}

// IsVisible reports whether the post is publicly readable at now.
func (p *Post) IsVisible(now time.Time) bool {
	if p == nil || p.Status != PostStatusPublished {
		return false
	}
	return p.PublishedAt == nil || !p.PublishedAt.After(now)
}

type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
	Order       int    `gorm:"not null;default:0" json:"order"`

	PostsCount int64 `gorm:"->;-:migration" json:"posts_count"`
}

type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"not null" json:"name"`
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`
	Order int    `gorm:"not null;default:0" json:"order"`

	PostsCount int64 `gorm:"->;-:migration" json:"posts_count"`
}

// Comment keeps the submitter's IP and user agent as captured at creation.
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PostID uint  `gorm:"not null;index" json:"post_id"`
	Post   *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`

	Name       string `gorm:"not null" json:"name"`
	Email      string `gorm:"not null" json:"email"`
	Body       string `gorm:"type:text;not null" json:"body"`
	IsApproved bool   `gorm:"not null;default:false;index" json:"is_approved"`
	IPAddress  string `gorm:"type:varchar(45);index" json:"ip_address"`
	UserAgent  string `gorm:"type:text" json:"user_agent"`
}

type ContactMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"not null" json:"email"`
	Subject   string `gorm:"not null" json:"subject"`
	Message   string `gorm:"type:text;not null" json:"message"`
	IPAddress string `gorm:"type:varchar(45);index" json:"ip_address"`
	UserAgent string `gorm:"type:text" json:"user_agent"`
	IsRead    bool   `gorm:"not null;default:false;index" json:"is_read"`
	IsReplied bool   `gorm:"not null;default:false" json:"is_replied"`
}

// StringList is stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan StringList")
	}

	var decoded []string
	if err := json.Unmarshal(bytes, &decoded); err != nil {
		return err
	}
	*l = decoded
	return nil
}

type JSONMap map[string]string

func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSONMap")
	}

	var decoded map[string]string
	if err := json.Unmarshal(bytes, &decoded); err != nil {
		return err
	}
	*m = decoded
	return nil
}
