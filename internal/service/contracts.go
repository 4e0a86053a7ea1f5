package service

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"portfolio-backend/internal/models"
)

type AuthUseCase interface {
	Login(models.LoginRequest) (string, *models.User, error)
	ValidateToken(string) (*jwt.Token, error)
	GetUserByID(uint) (*models.User, error)
}

type PublicationUseCase interface {
	List(ListingQuery) (*Listing, error)
	Detail(string) (*PostDetail, error)
	Feed() ([]models.Post, error)
}

type PostUseCase interface {
	Create(models.CreatePostRequest) (*models.Post, error)
	Update(uint, models.UpdatePostRequest) (*models.Post, error)
	Delete(uint) error
	GetByID(uint) (*models.Post, error)
	List(int, int, string) ([]models.Post, int64, error)
	TogglePublish(uint) (*models.Post, error)
	ToggleFeatured(uint) (*models.Post, error)
}

type CategoryUseCase interface {
	Create(models.CategoryRequest) (*models.Category, error)
	Update(uint, models.CategoryRequest) (*models.Category, error)
	Delete(uint) error
	GetByID(uint) (*models.Category, error)
	GetAll() ([]models.Category, error)
}

type TagUseCase interface {
	Create(models.TagRequest) (*models.Tag, error)
	Update(uint, models.TagRequest) (*models.Tag, error)
	Delete(uint) error
	GetByID(uint) (*models.Tag, error)
	GetAll() ([]models.Tag, error)
}

type CommentUseCase interface {
	Submit(CommentSubmission) (*models.Comment, SubmissionOutcome, error)
	List(string, int, int) ([]models.Comment, int64, error)
	ToggleApproval(uint) (*models.Comment, error)
	BulkApprove([]uint) (int64, error)
	BulkDelete([]uint) (int64, error)
	Delete(uint) error
}

type ContactUseCase interface {
	Submit(context.Context, ContactSubmission) (*models.ContactMessage, SubmissionOutcome, error)
	List(int, int, bool) ([]models.ContactMessage, int64, error)
	GetByID(uint) (*models.ContactMessage, error)
	ToggleRead(uint) (*models.ContactMessage, error)
	ToggleReplied(uint) (*models.ContactMessage, error)
	Delete(uint) error
}

type PortfolioUseCase interface {
	Home() (*HomePage, error)
	About() (*AboutPage, error)
	Projects() ([]models.Project, error)
	Project(string) (*models.Project, error)
	Services() ([]models.Service, error)
	Profile() (*models.Profile, error)
}

type StatsUseCase interface {
	Dashboard() (*DashboardStats, error)
}

type AvatarUseCase interface {
	PNG(string) ([]byte, error)
}
