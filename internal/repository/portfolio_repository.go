package repository

import (
	"portfolio-backend/internal/models"

	"gorm.io/gorm"
)

type PortfolioRepository interface {
	GetProfile() (*models.Profile, error)
	ListSkills() ([]models.Skill, error)
	ListExperiences() ([]models.Experience, error)
	ListServices() ([]models.Service, error)
	ListProjects(featuredOnly bool) ([]models.Project, error)
	GetProjectBySlug(slug string) (*models.Project, error)
	Replace(content *models.PortfolioContent) error
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) GetProfile() (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Order("id ASC").First(&profile).Error
	return &profile, err
}

func (r *portfolioRepository) ListSkills() ([]models.Skill, error) {
	var skills []models.Skill
	err := r.db.Order("\"group\" ASC, \"order\" ASC, name ASC").Find(&skills).Error
	return skills, err
}

func (r *portfolioRepository) ListExperiences() ([]models.Experience, error) {
	var experiences []models.Experience
	err := r.db.Order("\"order\" ASC, started_at DESC").Find(&experiences).Error
	return experiences, err
}

func (r *portfolioRepository) ListServices() ([]models.Service, error) {
	var services []models.Service
	err := r.db.Order("\"order\" ASC, title ASC").Find(&services).Error
	return services, err
}

func (r *portfolioRepository) ListProjects(featuredOnly bool) ([]models.Project, error) {
	var projects []models.Project
	query := r.db.Model(&models.Project{})
	if featuredOnly {
		query = query.Where("featured = ?", true)
	}
	err := query.Order("\"order\" ASC, created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *portfolioRepository) GetProjectBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("slug = ?", slug).First(&project).Error
	return &project, err
}

// Replace swaps every portfolio table for the given content in one transaction.
func (r *portfolioRepository) Replace(content *models.PortfolioContent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Profile{}, &models.Skill{}, &models.Experience{}, &models.Service{}, &models.Project{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}

		if content.Profile.Name != "" {
			profile := content.Profile
			profile.ID = 0
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		}
		if len(content.Skills) > 0 {
			if err := tx.Create(&content.Skills).Error; err != nil {
				return err
			}
		}
		if len(content.Experiences) > 0 {
			if err := tx.Create(&content.Experiences).Error; err != nil {
				return err
			}
		}
		if len(content.Services) > 0 {
			if err := tx.Create(&content.Services).Error; err != nil {
				return err
			}
		}
		if len(content.Projects) > 0 {
			if err := tx.Create(&content.Projects).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
