package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/repository"
	"portfolio-backend/pkg/cache"
	"portfolio-backend/pkg/logger"
)

const (
	PostsPerPage      = 9
	RelatedPostsLimit = 3
	FeedSize          = 20
)

type ListingQuery struct {
	Category string `json:"category"`
	Tag      string `json:"tag"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
}

type Listing struct {
	Posts      []models.Post     `json:"posts"`
	Featured   *models.Post      `json:"featured,omitempty"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	TotalPages int               `json:"total_pages"`
	Filters    ListingQuery      `json:"filters"`
	Categories []models.Category `json:"categories"`
	Tags       []models.Tag      `json:"tags"`

	ActiveCategory *models.Category `json:"active_category,omitempty"`
	ActiveTag      *models.Tag      `json:"active_tag,omitempty"`
}

type PostDetail struct {
	Post     *models.Post     `json:"post"`
	Comments []models.Comment `json:"comments"`
	Related  []models.Post    `json:"related"`
}

// PublicationService answers the public blog queries. Only published posts
// whose publish time has passed are ever returned.
type PublicationService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	commentRepo  repository.CommentRepository
	cache        *cache.Cache
	now          func() time.Time
}

func NewPublicationService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	commentRepo repository.CommentRepository,
	cacheService *cache.Cache,
) *PublicationService {
	return &PublicationService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		commentRepo:  commentRepo,
		cache:        cacheService,
		now:          time.Now,
	}
}

func (q ListingQuery) normalized() ListingQuery {
	q.Category = strings.TrimSpace(q.Category)
	q.Tag = strings.TrimSpace(q.Tag)
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

func (q ListingQuery) cacheKey() string {
	return fmt.Sprintf("blog:list:%s:%s:%s:%d", q.Category, q.Tag, strings.ToLower(q.Search), q.Page)
}

// List returns one page of published posts. The featured post is picked
// without regard to the filters and never repeated in Posts.
func (s *PublicationService) List(query ListingQuery) (*Listing, error) {
	query = query.normalized()

	var cached Listing
	if err := s.cache.GetCachedListing(query.cacheKey(), &cached); err == nil {
		return &cached, nil
	}

	now := s.now().UTC()

	featured, err := s.postRepo.GetFeatured(now)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load featured post: %w", err)
		}
		featured = nil
	}

	filter := repository.PostFilter{
		CategorySlug: query.Category,
		TagSlug:      query.Tag,
		Search:       query.Search,
		Offset:       (query.Page - 1) * PostsPerPage,
		Limit:        PostsPerPage,
		Now:          now,
	}
	if featured != nil {
		filter.ExcludeID = featured.ID
	}

	activeCategory, activeTag, err := s.resolveFilters(query)
	if err != nil {
		return nil, err
	}

	// An unknown category or tag slug matches nothing.
	posts, total := []models.Post{}, int64(0)
	if (query.Category == "" || activeCategory != nil) && (query.Tag == "" || activeTag != nil) {
		posts, total, err = s.postRepo.ListPublished(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list posts: %w", err)
		}
	}

	categories, err := s.categoryRepo.GetWithPostCount(now)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	tags, err := s.tagRepo.GetWithPostCount(now)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}

	listing := &Listing{
		Posts:      posts,
		Featured:   featured,
		Total:      total,
		Page:       query.Page,
		PerPage:    PostsPerPage,
		TotalPages: totalPages(total, PostsPerPage),
		Filters:    query,
		Categories: categories,
		Tags:       tags,

		ActiveCategory: activeCategory,
		ActiveTag:      activeTag,
	}

	if err := s.cache.CacheListing(query.cacheKey(), listing); err != nil {
		logger.Warn("Failed to cache blog listing", map[string]interface{}{"key": query.cacheKey(), "error": err.Error()})
	}

	return listing, nil
}

func (s *PublicationService) resolveFilters(query ListingQuery) (*models.Category, *models.Tag, error) {
	var category *models.Category
	if query.Category != "" {
		found, err := s.categoryRepo.GetBySlug(query.Category)
		switch {
		case err == nil:
			category = found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil, fmt.Errorf("failed to resolve category filter: %w", err)
		}
	}

	var tag *models.Tag
	if query.Tag != "" {
		found, err := s.tagRepo.GetBySlug(query.Tag)
		switch {
		case err == nil:
			tag = found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil, fmt.Errorf("failed to resolve tag filter: %w", err)
		}
	}

	return category, tag, nil
}

// Detail loads a published post by slug and records one view.
func (s *PublicationService) Detail(slug string) (*PostDetail, error) {
	now := s.now().UTC()

	post, err := s.postRepo.GetPublishedBySlug(strings.TrimSpace(slug), now)
	if err != nil {
		return nil, notFound(err, "post")
	}

	if err := s.postRepo.IncrementViews(post.ID); err != nil {
		logger.Warn("Failed to increment post views", map[string]interface{}{"post_id": post.ID, "error": err.Error()})
	} else {
		post.Views++
	}

	comments, err := s.commentRepo.ListApprovedForPost(post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	related, err := s.RelatedPosts(post.ID, now)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, Comments: comments, Related: related}, nil
}

// RelatedPosts returns up to three other published posts sharing a category with postID.
func (s *PublicationService) RelatedPosts(postID uint, now time.Time) ([]models.Post, error) {
	categories, err := s.postRepo.CategoriesForPost(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post categories: %w", err)
	}

	ids := make([]uint, 0, len(categories))
	for _, category := range categories {
		ids = append(ids, category.ID)
	}

	related, err := s.postRepo.GetRelated(postID, ids, RelatedPostsLimit, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load related posts: %w", err)
	}
	return related, nil
}

func (s *PublicationService) Feed() ([]models.Post, error) {
	return s.postRepo.GetRecentPublished(FeedSize, s.now().UTC())
}

func totalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
