package presenter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/service"
)

const dateLayout = "January 02, 2006"

type CategoryView struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	URL        string `json:"url"`
	PostsCount int64  `json:"posts_count"`
	Active     bool   `json:"active"`
}

type TagView struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	URL        string `json:"url"`
	PostsCount int64  `json:"posts_count"`
	Active     bool   `json:"active"`
}

type PostCard struct {
	ID             uint           `json:"id"`
	Title          string         `json:"title"`
	Slug           string         `json:"slug"`
	URL            string         `json:"url"`
	Excerpt        string         `json:"excerpt"`
	CoverImage     string         `json:"cover_image,omitempty"`
	AuthorName     string         `json:"author_name,omitempty"`
	ReadingTime    int            `json:"reading_time"`
	PublishedAt    string         `json:"published_at,omitempty"`
	PublishedLabel string         `json:"published_label,omitempty"`
	Featured       bool           `json:"featured"`
	Categories     []CategoryView `json:"categories"`
	Tags           []TagView      `json:"tags"`
}

type CommentView struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	Body         string `json:"body"`
	CreatedAt    string `json:"created_at"`
	CreatedLabel string `json:"created_label"`
}

type ShareLink struct {
	Network string `json:"network"`
	Label   string `json:"label"`
	URL     string `json:"url"`
}

type PostView struct {
	PostCard
	Content        string        `json:"content"`
	Views          int64         `json:"views"`
	SEOTitle       string        `json:"seo_title"`
	SEODescription string        `json:"seo_description"`
	CanonicalURL   string        `json:"canonical_url"`
	Comments       []CommentView `json:"comments"`
	CommentCount   int           `json:"comment_count"`
	Related        []PostCard    `json:"related"`
	Share          []ShareLink   `json:"share"`
}

type Pagination struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Total      int64  `json:"total"`
	PerPage    int    `json:"per_page"`
	PrevURL    string `json:"prev_url,omitempty"`
	NextURL    string `json:"next_url,omitempty"`
}

type ListingView struct {
	Posts      []PostCard           `json:"posts"`
	Featured   *PostCard            `json:"featured,omitempty"`
	Pagination Pagination           `json:"pagination"`
	Filters    service.ListingQuery `json:"filters"`
	Categories []CategoryView       `json:"categories"`
	Tags       []TagView            `json:"tags"`

	ActiveCategory *CategoryView `json:"active_category,omitempty"`
	ActiveTag      *TagView      `json:"active_tag,omitempty"`
}

// Presenter maps domain records to the shapes the frontend renders.
type Presenter struct {
	baseURL   string
	siteName  string
	sanitizer *bluemonday.Policy
}

func New(baseURL, siteName string) *Presenter {
	return &Presenter{
		baseURL:   strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		siteName:  siteName,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func PostPath(slug string) string {
	return "/blog/" + url.PathEscape(slug)
}

func AvatarPath(name string) string {
	return "/avatars/" + service.AvatarKey(name) + ".png"
}

// AbsoluteURL joins path onto the configured base URL.
func (p *Presenter) AbsoluteURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return p.baseURL + path
}

func (p *Presenter) Listing(listing *service.Listing) ListingView {
	view := ListingView{
		Posts:      p.Cards(listing.Posts),
		Filters:    listing.Filters,
		Categories: make([]CategoryView, 0, len(listing.Categories)),
		Tags:       make([]TagView, 0, len(listing.Tags)),
		Pagination: Pagination{
			Page:       listing.Page,
			TotalPages: listing.TotalPages,
			Total:      listing.Total,
			PerPage:    listing.PerPage,
		},
	}

	if listing.Featured != nil {
		card := p.Card(*listing.Featured)
		view.Featured = &card
	}
	if listing.ActiveCategory != nil {
		cv := categoryView(*listing.ActiveCategory)
		cv.Active = true
		view.ActiveCategory = &cv
	}
	if listing.ActiveTag != nil {
		tv := tagView(*listing.ActiveTag)
		tv.Active = true
		view.ActiveTag = &tv
	}

	// The active entries take their published count from the summaries.
	for _, category := range listing.Categories {
		cv := categoryView(category)
		cv.Active = category.Slug == listing.Filters.Category
		if cv.Active && view.ActiveCategory != nil {
			view.ActiveCategory.PostsCount = cv.PostsCount
		}
		view.Categories = append(view.Categories, cv)
	}
	for _, tag := range listing.Tags {
		tv := tagView(tag)
		tv.Active = tag.Slug == listing.Filters.Tag
		if tv.Active && view.ActiveTag != nil {
			view.ActiveTag.PostsCount = tv.PostsCount
		}
		view.Tags = append(view.Tags, tv)
	}

	if listing.Page > 1 {
		view.Pagination.PrevURL = listingURL(listing.Filters, listing.Page-1)
	}
	if listing.Page < listing.TotalPages {
		view.Pagination.NextURL = listingURL(listing.Filters, listing.Page+1)
	}

	return view
}

func (p *Presenter) Cards(posts []models.Post) []PostCard {
	cards := make([]PostCard, 0, len(posts))
	for _, post := range posts {
		cards = append(cards, p.Card(post))
	}
	return cards
}

func (p *Presenter) Card(post models.Post) PostCard {
	card := PostCard{
		ID:          post.ID,
		Title:       post.Title,
		Slug:        post.Slug,
		URL:         PostPath(post.Slug),
		Excerpt:     post.Excerpt,
		CoverImage:  post.CoverImage,
		AuthorName:  post.AuthorName,
		ReadingTime: post.ReadingTime,
		Featured:    post.Featured,
		Categories:  make([]CategoryView, 0, len(post.Categories)),
		Tags:        make([]TagView, 0, len(post.Tags)),
	}
	if post.PublishedAt != nil {
		card.PublishedAt = post.PublishedAt.UTC().Format(time.RFC3339)
		card.PublishedLabel = post.PublishedAt.UTC().Format(dateLayout)
	}
	for _, category := range post.Categories {
		card.Categories = append(card.Categories, categoryView(category))
	}
	for _, tag := range post.Tags {
		card.Tags = append(card.Tags, tagView(tag))
	}
	return card
}

func (p *Presenter) Detail(detail *service.PostDetail) PostView {
	post := detail.Post
	canonical := p.AbsoluteURL(PostPath(post.Slug))

	view := PostView{
		PostCard:       p.Card(*post),
		Content:        p.sanitizer.Sanitize(post.Content),
		Views:          post.Views,
		SEOTitle:       firstNonEmpty(post.SEOTitle, post.Title),
		SEODescription: firstNonEmpty(post.SEODescription, post.Excerpt),
		CanonicalURL:   canonical,
		Comments:       p.Comments(detail.Comments),
		CommentCount:   len(detail.Comments),
		Related:        p.Cards(detail.Related),
		Share:          ShareLinks(post.Title, canonical),
	}
	return view
}

func (p *Presenter) Comments(comments []models.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		if !comment.IsApproved {
			continue
		}
		name := strings.TrimSpace(comment.Name)
		if name == "" {
			name = "Anonymous"
		}
		views = append(views, CommentView{
			ID:           comment.ID,
			Name:         name,
			Avatar:       AvatarPath(name),
			Body:         comment.Body,
			CreatedAt:    comment.CreatedAt.UTC().Format(time.RFC3339),
			CreatedLabel: comment.CreatedAt.UTC().Format(dateLayout),
		})
	}
	return views
}

// ShareLinks builds the social share targets for an absolute post URL.
func ShareLinks(title, link string) []ShareLink {
	q := url.QueryEscape
	return []ShareLink{
		{Network: "x", Label: "X", URL: "https://twitter.com/intent/tweet?text=" + q(title) + "&url=" + q(link)},
		{Network: "facebook", Label: "Facebook", URL: "https://www.facebook.com/sharer/sharer.php?u=" + q(link)},
		{Network: "linkedin", Label: "LinkedIn", URL: "https://www.linkedin.com/sharing/share-offsite/?url=" + q(link)},
		{Network: "whatsapp", Label: "WhatsApp", URL: "https://wa.me/?text=" + q(title+" "+link)},
		{Network: "reddit", Label: "Reddit", URL: "https://www.reddit.com/submit?url=" + q(link) + "&title=" + q(title)},
		{Network: "email", Label: "Email", URL: "mailto:?subject=" + mailtoEscape(title) + "&body=" + mailtoEscape(link)},
	}
}

// mailto bodies need %20 rather than '+' for spaces.
func mailtoEscape(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func listingURL(filters service.ListingQuery, page int) string {
	values := url.Values{}
	if filters.Category != "" {
		values.Set("category", filters.Category)
	}
	if filters.Tag != "" {
		values.Set("tag", filters.Tag)
	}
	if filters.Search != "" {
		values.Set("search", filters.Search)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if encoded := values.Encode(); encoded != "" {
		return "/blog?" + encoded
	}
	return "/blog"
}

func categoryView(category models.Category) CategoryView {
	return CategoryView{
		Name:       category.Name,
		Slug:       category.Slug,
		URL:        fmt.Sprintf("/blog?category=%s", url.QueryEscape(category.Slug)),
		PostsCount: category.PostsCount,
	}
}

func tagView(tag models.Tag) TagView {
	return TagView{
		Name:       tag.Name,
		Slug:       tag.Slug,
		URL:        fmt.Sprintf("/blog?tag=%s", url.QueryEscape(tag.Slug)),
		PostsCount: tag.PostsCount,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
