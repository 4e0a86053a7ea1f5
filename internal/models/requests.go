package models

// Public submissions. Website is the honeypot field and is hidden from humans.
// Names and subjects reach mail headers, so entity-encoded markup that survives
// sanitizing is rejected with no_html.

type CreateCommentRequest struct {
	Name    string `form:"name" json:"name" validate:"required,max=100,no_html"`
	Email   string `form:"email" json:"email" validate:"required,email,max=255"`
	Body    string `form:"body" json:"body" validate:"required,min=2,max=2000"`
	Website string `form:"website" json:"website"`
}

type ContactRequest struct {
	Name    string `form:"name" json:"name" validate:"required,max=100,no_html"`
	Email   string `form:"email" json:"email" validate:"required,email,max=255"`
	Subject string `form:"subject" json:"subject" validate:"required,max=200,no_html"`
	Message string `form:"message" json:"message" validate:"required,min=10,max=5000"`
	Website string `form:"website" json:"website"`
}

// Admin payloads.

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreatePostRequest struct {
	Title          string       `json:"title" validate:"required,max=255"`
	Slug           string       `json:"slug" validate:"omitempty,slug,max=255"`
	Excerpt        string       `json:"excerpt" validate:"max=500"`
	Content        string       `json:"content" validate:"required"`
	CoverImage     string       `json:"cover_image" validate:"omitempty,max=2048"`
	AuthorName     string       `json:"author_name" validate:"max=100"`
	Status         PostStatus   `json:"status" validate:"omitempty,oneof=draft published"`
	PublishedAt    OptionalTime `json:"published_at"`
	Featured       bool         `json:"featured"`
	SEOTitle       string       `json:"seo_title" validate:"max=70"`
	SEODescription string       `json:"seo_description" validate:"max=160"`
	CategoryIDs    []uint       `json:"category_ids"`
	TagIDs         []uint       `json:"tag_ids"`
}

type UpdatePostRequest struct {
	Title          *string      `json:"title" validate:"omitempty,max=255"`
	Slug           *string      `json:"slug" validate:"omitempty,slug,max=255"`
	Excerpt        *string      `json:"excerpt" validate:"omitempty,max=500"`
	Content        *string      `json:"content"`
	CoverImage     *string      `json:"cover_image" validate:"omitempty,max=2048"`
	AuthorName     *string      `json:"author_name" validate:"omitempty,max=100"`
	Status         *PostStatus  `json:"status" validate:"omitempty,oneof=draft published"`
	PublishedAt    OptionalTime `json:"published_at"`
	Featured       *bool        `json:"featured"`
	SEOTitle       *string      `json:"seo_title" validate:"omitempty,max=70"`
	SEODescription *string      `json:"seo_description" validate:"omitempty,max=160"`
	CategoryIDs    *[]uint      `json:"category_ids"`
	TagIDs         *[]uint      `json:"tag_ids"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,slug,max=120"`
	Description string `json:"description" validate:"max=500"`
	Order       int    `json:"order"`
}

type TagRequest struct {
	Name  string `json:"name" validate:"required,max=60"`
	Slug  string `json:"slug" validate:"omitempty,slug,max=80"`
	Order int    `json:"order"`
}

type BulkIDsRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,max=500"`
}
