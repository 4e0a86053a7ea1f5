package service

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"portfolio-backend/internal/models"
)

type stubPortfolioRepo struct {
	content *models.PortfolioContent
}

func (r *stubPortfolioRepo) GetProfile() (*models.Profile, error) {
	if r.content == nil || r.content.Profile.Name == "" {
		return nil, gorm.ErrRecordNotFound
	}
	profile := r.content.Profile
	return &profile, nil
}

func (r *stubPortfolioRepo) ListSkills() ([]models.Skill, error) {
	if r.content == nil {
		return nil, nil
	}
	return r.content.Skills, nil
}

func (r *stubPortfolioRepo) ListExperiences() ([]models.Experience, error) {
	if r.content == nil {
		return nil, nil
	}
	return r.content.Experiences, nil
}

func (r *stubPortfolioRepo) ListServices() ([]models.Service, error) {
	if r.content == nil {
		return nil, nil
	}
	return r.content.Services, nil
}

func (r *stubPortfolioRepo) ListProjects(featuredOnly bool) ([]models.Project, error) {
	if r.content == nil {
		return nil, nil
	}
	var out []models.Project
	for _, p := range r.content.Projects {
		if !featuredOnly || p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPortfolioRepo) GetProjectBySlug(slug string) (*models.Project, error) {
	if r.content != nil {
		for _, p := range r.content.Projects {
			if p.Slug == slug {
				project := p
				return &project, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPortfolioRepo) Replace(content *models.PortfolioContent) error {
	r.content = content
	return nil
}

const sampleContent = `
[profile]
name = "Jane Doe"
headline = "Backend engineer"
email = "jane@example.com"

[profile.socials]
github = "https://github.com/jane"

[[skills]]
name = "Go"
group = "languages"
level = 5

[[skills]]
name = "Docker"
level = 4

[[experiences]]
company = "Acme"
role = "Engineer"
started_at = 2020-01-01T00:00:00Z

[[services]]
title = "API Design"

[[projects]]
title = "Link Shortener"
tech_stack = ["go", "redis"]
featured = true

[[projects]]
title = "Blog Engine"
slug = "blog"
`

func writeContent(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write content file: %v", err)
	}
	return path
}

func TestLoadContentFillsSlugs(t *testing.T) {
	content, err := LoadContent(writeContent(t, sampleContent))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if content.Profile.Name != "Jane Doe" || content.Profile.Socials["github"] == "" {
		t.Fatalf("unexpected profile %+v", content.Profile)
	}
	if len(content.Projects) != 2 || content.Projects[0].Slug != "link-shortener" || content.Projects[1].Slug != "blog" {
		t.Fatalf("unexpected projects %+v", content.Projects)
	}
	if len(content.Projects[0].TechStack) != 2 {
		t.Fatalf("expected tech stack, got %v", content.Projects[0].TechStack)
	}
	if content.Services[0].Slug != "api-design" {
		t.Fatalf("expected derived service slug, got %q", content.Services[0].Slug)
	}
	if !content.Experiences[0].Current() {
		t.Fatalf("expected open-ended experience to be current")
	}
}

func TestLoadContentRejectsDuplicateSlugs(t *testing.T) {
	body := `
[[projects]]
title = "Same"

[[projects]]
title = "Same"
`
	if _, err := LoadContent(writeContent(t, body)); err == nil {
		t.Fatalf("expected duplicate slug error")
	}
}

func TestSeedFromFileAndPages(t *testing.T) {
	repo := &stubPortfolioRepo{}
	svc := NewPortfolioService(repo)

	if err := svc.SeedFromFile(filepath.Join(t.TempDir(), "missing.toml")); err != nil {
		t.Fatalf("expected missing file to be skipped, got %v", err)
	}
	if profile, err := svc.Profile(); err != nil || profile != nil {
		t.Fatalf("expected no profile before seeding, got %+v, %v", profile, err)
	}

	if err := svc.SeedFromFile(writeContent(t, sampleContent)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	home, err := svc.Home()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if home.Profile == nil || len(home.Projects) != 1 || len(home.Services) != 1 {
		t.Fatalf("unexpected home page %+v", home)
	}

	about, err := svc.About()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(about.Skills["languages"]) != 1 || len(about.Skills["general"]) != 1 {
		t.Fatalf("expected skills grouped, got %+v", about.Skills)
	}

	if _, err := svc.Project("blog"); err != nil {
		t.Fatalf("expected project, got %v", err)
	}
	if _, err := svc.Project("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAvatarKey(t *testing.T) {
	cases := map[string]string{
		"alice":   "a",
		"  Bob":   "b",
		"42 fans": "4",
		"":        "anon",
		"Émile":   "uc9",
	}
	for name, want := range cases {
		if got := AvatarKey(name); got != want {
			t.Fatalf("AvatarKey(%q) = %q, expected %q", name, got, want)
		}
	}
}

func TestAvatarPNG(t *testing.T) {
	svc, err := NewAvatarService()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, key := range []string{"a", "anon", AvatarKey("Émile")} {
		data, err := svc.PNG(key)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", key, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%s: expected valid png, got %v", key, err)
		}
		if img.Bounds().Dx() != avatarSize || img.Bounds().Dy() != avatarSize {
			t.Fatalf("%s: unexpected size %v", key, img.Bounds())
		}
	}

	first, _ := svc.PNG("a")
	second, _ := svc.PNG("a")
	if !bytes.Equal(first, second) {
		t.Fatalf("expected cached avatar to be reused")
	}

	for _, key := range []string{"", "AB", "../etc", "uzz", "u0041"} {
		if _, err := svc.PNG(key); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%q: expected ErrNotFound, got %v", key, err)
		}
	}
}

func TestDashboardStats(t *testing.T) {
	clock := &fakeClock{}
	posts := newStubPostRepo(
		models.Post{ID: 1, Status: models.PostStatusPublished, Views: 10},
		models.Post{ID: 2, Status: models.PostStatusDraft, Views: 2},
	)
	comments := newStubCommentRepo(clock.Now)
	_ = comments.Create(&models.Comment{Body: "pending"})
	contacts := &stubContactRepo{}
	_ = contacts.Create(&models.ContactMessage{Subject: "hi"})
	_ = contacts.Create(&models.ContactMessage{Subject: "read", IsRead: true})

	stats, err := NewStatsService(posts, comments, contacts).Dashboard()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := DashboardStats{PublishedPosts: 1, DraftPosts: 1, TotalViews: 12, PendingComments: 1, UnreadMessages: 1, TotalMessages: 2}
	if *stats != want {
		t.Fatalf("expected %+v, got %+v", want, *stats)
	}
}
