package models

import "time"

type Profile struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string  `gorm:"not null" json:"name" toml:"name"`
	Headline  string  `json:"headline" toml:"headline"`
	Bio       string  `gorm:"type:text" json:"bio" toml:"bio"`
	Location  string  `json:"location" toml:"location"`
	Email     string  `json:"email" toml:"email"`
	AvatarURL string  `json:"avatar_url" toml:"avatar_url"`
	ResumeURL string  `json:"resume_url" toml:"resume_url"`
	Socials   JSONMap `gorm:"type:jsonb" json:"socials" toml:"socials"`
}

type Skill struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"not null" json:"name" toml:"name"`
	Group string `gorm:"index" json:"group" toml:"group"`
	Level int    `gorm:"not null;default:0" json:"level" toml:"level"`
	Order int    `gorm:"not null;default:0" json:"order" toml:"order"`
}

type Experience struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Company     string     `gorm:"not null" json:"company" toml:"company"`
	Role        string     `gorm:"not null" json:"role" toml:"role"`
	Location    string     `json:"location" toml:"location"`
	StartedAt   time.Time  `json:"started_at" toml:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty" toml:"ended_at"`
	Description string     `gorm:"type:text" json:"description" toml:"description"`
	Order       int        `gorm:"not null;default:0" json:"order" toml:"order"`
}

// Current reports whether the position has no end date.
func (e Experience) Current() bool {
	return e.EndedAt == nil
}

type Service struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `gorm:"not null" json:"title" toml:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug" toml:"slug"`
	Summary     string `json:"summary" toml:"summary"`
	Description string `gorm:"type:text" json:"description" toml:"description"`
	Icon        string `json:"icon" toml:"icon"`
	Order       int    `gorm:"not null;default:0" json:"order" toml:"order"`
}

type Project struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string     `gorm:"not null" json:"title" toml:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug" toml:"slug"`
	Summary     string     `json:"summary" toml:"summary"`
	Description string     `gorm:"type:text" json:"description" toml:"description"`
	CoverImage  string     `json:"cover_image" toml:"cover_image"`
	RepoURL     string     `json:"repo_url" toml:"repo_url"`
	LiveURL     string     `json:"live_url" toml:"live_url"`
	TechStack   StringList `gorm:"type:jsonb" json:"tech_stack" toml:"tech_stack"`
	Featured    bool       `gorm:"not null;default:false" json:"featured" toml:"featured"`
	Order       int        `gorm:"not null;default:0" json:"order" toml:"order"`
}

// PortfolioContent is the full set of portfolio records, as loaded from the content file.
type PortfolioContent struct {
	Profile     Profile      `toml:"profile" json:"profile"`
	Skills      []Skill      `toml:"skills" json:"skills"`
	Experiences []Experience `toml:"experiences" json:"experiences"`
	Services    []Service    `toml:"services" json:"services"`
	Projects    []Project    `toml:"projects" json:"projects"`
}
