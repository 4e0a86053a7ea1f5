package handlers

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/presenter"
	"portfolio-backend/internal/service"
)

const commentAcceptedMessage = "Thanks! Your comment will appear once it has been approved."

type BlogHandler struct {
	publication service.PublicationUseCase
	comments    service.CommentUseCase
	presenter   *presenter.Presenter
	flashes     *FlashStore
	site        SiteInfo
}

// SiteInfo describes the site in feeds and page metadata.
type SiteInfo struct {
	Name        string
	Description string
}

func NewBlogHandler(publication service.PublicationUseCase, comments service.CommentUseCase, p *presenter.Presenter, flashes *FlashStore, site SiteInfo) *BlogHandler {
	return &BlogHandler{
		publication: publication,
		comments:    comments,
		presenter:   p,
		flashes:     flashes,
		site:        site,
	}
}

func (h *BlogHandler) List(c *gin.Context) {
	listing, err := h.publication.List(service.ListingQuery{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	renderPage(c, h.flashes, "Blog/Index", h.presenter.Listing(listing))
}

// Show and SubmitComment share the :post segment; it holds the slug on
// reads and the numeric id on comment submission.
func (h *BlogHandler) Show(c *gin.Context) {
	detail, err := h.publication.Detail(c.Param("post"))
	if err != nil {
		respondError(c, err)
		return
	}

	renderPage(c, h.flashes, "Blog/Show", h.presenter.Detail(detail))
}

// SubmitComment answers every non-error outcome, including a discarded
// honeypot submission, with the same flash and redirect.
func (h *BlogHandler) SubmitComment(c *gin.Context) {
	postID, ok := parseIDParam(c, "post", "post")
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form submission"})
		return
	}

	_, _, err := h.comments.Submit(service.CommentSubmission{
		PostID:    postID,
		Request:   req,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	old := map[string]string{"name": req.Name, "email": req.Email, "body": req.Body}
	if handleFormError(c, h.flashes, err, old, "/blog", "comment-form") {
		return
	}

	h.flashes.Set(c, Flash{Success: commentAcceptedMessage})
	redirectBack(c, "/blog", "comments")
}

// handleFormError flashes validation and rate-limit failures back to the
// form. Other errors become a 500. It reports whether a response was written.
func handleFormError(c *gin.Context, flashes *FlashStore, err error, old map[string]string, fallback, fragment string) bool {
	if err == nil {
		return false
	}

	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) {
		respondError(c, err)
		return true
	}

	flashes.Set(c, Flash{Errors: validationErr.Fields, Old: old})
	redirectBack(c, fallback, fragment)
	return true
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

func (h *BlogHandler) Feed(c *gin.Context) {
	posts, err := h.publication.Feed()
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]rssItem, 0, len(posts))
	var lastBuild time.Time
	for _, post := range posts {
		link := h.presenter.AbsoluteURL(presenter.PostPath(post.Slug))
		item := rssItem{
			Title:       post.Title,
			Link:        link,
			Description: post.Excerpt,
			GUID:        link,
		}
		if post.PublishedAt != nil {
			item.PubDate = post.PublishedAt.UTC().Format(time.RFC1123Z)
			if post.PublishedAt.After(lastBuild) {
				lastBuild = *post.PublishedAt
			}
		}
		for _, category := range post.Categories {
			item.Categories = append(item.Categories, category.Name)
		}
		items = append(items, item)
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       h.site.Name,
			Link:        h.presenter.AbsoluteURL("/blog"),
			Description: h.site.Description,
			Items:       items,
		},
	}
	if !lastBuild.IsZero() {
		feed.Channel.LastBuildDate = lastBuild.UTC().Format(time.RFC1123Z)
	}

	body, err := xml.Marshal(feed)
	if err != nil {
		respondError(c, fmt.Errorf("failed to encode feed: %w", err))
		return
	}

	c.Header("Cache-Control", "public, max-age=900")
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), body...))
}
