package presenter

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/service"
)

func samplePost() models.Post {
	published := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	return models.Post{
		ID:          4,
		Title:       "Hello & Welcome",
		Slug:        "hello-welcome",
		Excerpt:     "An intro",
		Content:     `<p>Body</p><script>alert(1)</script>`,
		ReadingTime: 2,
		Status:      models.PostStatusPublished,
		PublishedAt: &published,
		Categories:  []models.Category{{ID: 1, Name: "Go", Slug: "go"}},
		Tags:        []models.Tag{{ID: 2, Name: "Testing", Slug: "testing"}},
	}
}

func TestCardMapsPost(t *testing.T) {
	p := New("https://example.com/", "Site")

	card := p.Card(samplePost())
	if card.URL != "/blog/hello-welcome" {
		t.Fatalf("expected post path, got %q", card.URL)
	}
	if card.PublishedLabel != "March 09, 2024" || card.PublishedAt != "2024-03-09T10:00:00Z" {
		t.Fatalf("unexpected dates %q %q", card.PublishedLabel, card.PublishedAt)
	}
	if len(card.Categories) != 1 || card.Categories[0].URL != "/blog?category=go" {
		t.Fatalf("unexpected categories %+v", card.Categories)
	}
	if len(card.Tags) != 1 || card.Tags[0].URL != "/blog?tag=testing" {
		t.Fatalf("unexpected tags %+v", card.Tags)
	}
}

func TestDetailBuildsShareLinksAndComments(t *testing.T) {
	p := New("https://example.com/", "Site")
	post := samplePost()

	view := p.Detail(&service.PostDetail{
		Post: &post,
		Comments: []models.Comment{
			{ID: 1, Name: "alice", Body: "hi", IsApproved: true},
			{ID: 2, Name: "", Body: "anon", IsApproved: true},
			{ID: 3, Name: "mallory", Body: "hidden"},
		},
	})

	if view.CanonicalURL != "https://example.com/blog/hello-welcome" {
		t.Fatalf("unexpected canonical url %q", view.CanonicalURL)
	}
	if strings.Contains(view.Content, "<script>") || !strings.Contains(view.Content, "<p>Body</p>") {
		t.Fatalf("expected sanitized content, got %q", view.Content)
	}
	if view.SEOTitle != post.Title || view.SEODescription != post.Excerpt {
		t.Fatalf("expected SEO fallbacks, got %q %q", view.SEOTitle, view.SEODescription)
	}

	if len(view.Comments) != 2 {
		t.Fatalf("expected 2 approved comments, got %d", len(view.Comments))
	}
	if view.Comments[0].Avatar != "/avatars/a.png" {
		t.Fatalf("unexpected avatar %q", view.Comments[0].Avatar)
	}
	if view.Comments[1].Name != "Anonymous" || view.Comments[1].Avatar != "/avatars/a.png" {
		t.Fatalf("unexpected anonymous comment %+v", view.Comments[1])
	}

	networks := map[string]string{}
	for _, link := range view.Share {
		networks[link.Network] = link.URL
	}
	for _, network := range []string{"x", "facebook", "linkedin", "whatsapp", "reddit", "email"} {
		if networks[network] == "" {
			t.Fatalf("missing share link for %s", network)
		}
	}

	fb, err := url.Parse(networks["facebook"])
	if err != nil {
		t.Fatalf("invalid facebook url: %v", err)
	}
	if fb.Query().Get("u") != view.CanonicalURL {
		t.Fatalf("expected facebook link to carry post url, got %q", fb.Query().Get("u"))
	}

	x, _ := url.Parse(networks["x"])
	if x.Query().Get("text") != "Hello & Welcome" {
		t.Fatalf("expected escaped title, got %q", x.Query().Get("text"))
	}

	if !strings.HasPrefix(networks["email"], "mailto:?subject=Hello%20%26%20Welcome&body=") {
		t.Fatalf("unexpected mailto link %q", networks["email"])
	}
}

func TestListingPaginationKeepsFilters(t *testing.T) {
	p := New("https://example.com", "Site")
	featured := samplePost()

	view := p.Listing(&service.Listing{
		Posts:      []models.Post{samplePost()},
		Featured:   &featured,
		Total:      20,
		Page:       2,
		PerPage:    9,
		TotalPages: 3,
		Filters:    service.ListingQuery{Category: "go", Search: "hello world", Page: 2},
		Categories: []models.Category{{Name: "Go", Slug: "go", PostsCount: 5}, {Name: "Design", Slug: "design"}},

		ActiveCategory: &models.Category{Name: "Go", Slug: "go"},
	})

	if view.Featured == nil || view.Featured.ID != featured.ID {
		t.Fatalf("expected featured card")
	}
	if view.Pagination.PrevURL != "/blog?category=go&search=hello+world" {
		t.Fatalf("unexpected prev url %q", view.Pagination.PrevURL)
	}
	if view.Pagination.NextURL != "/blog?category=go&page=3&search=hello+world" {
		t.Fatalf("unexpected next url %q", view.Pagination.NextURL)
	}
	if !view.Categories[0].Active || view.Categories[1].Active {
		t.Fatalf("expected only go category active, got %+v", view.Categories)
	}
	if view.Tags == nil {
		t.Fatalf("expected empty tag list rather than nil")
	}
	if view.ActiveCategory == nil || view.ActiveCategory.Name != "Go" || view.ActiveCategory.PostsCount != 5 || view.ActiveTag != nil {
		t.Fatalf("expected active category Go only, got %+v %+v", view.ActiveCategory, view.ActiveTag)
	}
}

func TestListingFirstPageHasNoPrev(t *testing.T) {
	p := New("https://example.com", "Site")

	view := p.Listing(&service.Listing{Page: 1, TotalPages: 1, PerPage: 9})
	if view.Pagination.PrevURL != "" || view.Pagination.NextURL != "" {
		t.Fatalf("expected no pagination links, got %+v", view.Pagination)
	}
	if view.Featured != nil {
		t.Fatalf("expected no featured card")
	}
}
