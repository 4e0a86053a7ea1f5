package service

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gorm.io/gorm"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/repository"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/utils"
)

type AboutPage struct {
	Profile     *models.Profile           `json:"profile"`
	Skills      map[string][]models.Skill `json:"skills"`
	Experiences []models.Experience       `json:"experiences"`
}

type HomePage struct {
	Profile  *models.Profile  `json:"profile"`
	Projects []models.Project `json:"projects"`
	Services []models.Service `json:"services"`
}

type PortfolioService struct {
	repo repository.PortfolioRepository
}

func NewPortfolioService(repo repository.PortfolioRepository) *PortfolioService {
	return &PortfolioService{repo: repo}
}

// LoadContent reads a TOML content file and fills in missing slugs.
func LoadContent(path string) (*models.PortfolioContent, error) {
	var content models.PortfolioContent
	meta, err := toml.DecodeFile(path, &content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		logger.Warn("Unknown keys in content file", map[string]interface{}{"file": path, "keys": strings.Join(keys, ", ")})
	}

	seen := make(map[string]bool)
	for i := range content.Projects {
		project := &content.Projects[i]
		if project.Title == "" {
			return nil, fmt.Errorf("project #%d has no title", i+1)
		}
		if project.Slug == "" {
			project.Slug = utils.GenerateSlug(project.Title)
		}
		if seen["project:"+project.Slug] {
			return nil, fmt.Errorf("duplicate project slug %q", project.Slug)
		}
		seen["project:"+project.Slug] = true
	}
	for i := range content.Services {
		svc := &content.Services[i]
		if svc.Title == "" {
			return nil, fmt.Errorf("service #%d has no title", i+1)
		}
		if svc.Slug == "" {
			svc.Slug = utils.GenerateSlug(svc.Title)
		}
		if seen["service:"+svc.Slug] {
			return nil, fmt.Errorf("duplicate service slug %q", svc.Slug)
		}
		seen["service:"+svc.Slug] = true
	}

	return &content, nil
}

// SeedFromFile replaces the stored portfolio with the file's content. A
// missing file is not an error.
func (s *PortfolioService) SeedFromFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info("No portfolio content file, skipping seed", map[string]interface{}{"file": path})
		return nil
	}

	content, err := LoadContent(path)
	if err != nil {
		return err
	}

	if err := s.repo.Replace(content); err != nil {
		return fmt.Errorf("failed to store portfolio content: %w", err)
	}

	logger.Info("Portfolio content loaded", map[string]interface{}{
		"file":        path,
		"skills":      len(content.Skills),
		"experiences": len(content.Experiences),
		"services":    len(content.Services),
		"projects":    len(content.Projects),
	})
	return nil
}

func (s *PortfolioService) Home() (*HomePage, error) {
	profile, err := s.profile()
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.ListProjects(true)
	if err != nil {
		return nil, err
	}
	services, err := s.repo.ListServices()
	if err != nil {
		return nil, err
	}
	return &HomePage{Profile: profile, Projects: projects, Services: services}, nil
}

func (s *PortfolioService) About() (*AboutPage, error) {
	profile, err := s.profile()
	if err != nil {
		return nil, err
	}
	skills, err := s.repo.ListSkills()
	if err != nil {
		return nil, err
	}
	experiences, err := s.repo.ListExperiences()
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.Skill)
	for _, skill := range skills {
		group := skill.Group
		if group == "" {
			group = "general"
		}
		grouped[group] = append(grouped[group], skill)
	}

	return &AboutPage{Profile: profile, Skills: grouped, Experiences: experiences}, nil
}

func (s *PortfolioService) Projects() ([]models.Project, error) {
	return s.repo.ListProjects(false)
}

func (s *PortfolioService) Project(slug string) (*models.Project, error) {
	project, err := s.repo.GetProjectBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, notFound(err, "project")
	}
	return project, nil
}

func (s *PortfolioService) Services() ([]models.Service, error) {
	return s.repo.ListServices()
}

func (s *PortfolioService) Profile() (*models.Profile, error) {
	return s.profile()
}

// profile returns nil without error when no profile has been loaded.
func (s *PortfolioService) profile() (*models.Profile, error) {
	profile, err := s.repo.GetProfile()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}
