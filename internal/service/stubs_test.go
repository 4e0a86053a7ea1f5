package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"portfolio-backend/internal/background"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/repository"
)

type stubPostRepo struct {
	mu     sync.Mutex
	posts  map[uint]*models.Post
	nextID uint
	views  map[uint]int

	listPublishedCalls int
}

func newStubPostRepo(posts ...models.Post) *stubPostRepo {
	r := &stubPostRepo{posts: make(map[uint]*models.Post), views: make(map[uint]int)}
	for i := range posts {
		p := posts[i]
		if p.ID == 0 {
			r.nextID++
			p.ID = r.nextID
		} else if p.ID > r.nextID {
			r.nextID = p.ID
		}
		r.posts[p.ID] = &p
	}
	return r
}

func (r *stubPostRepo) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	copy := *post
	r.posts[post.ID] = &copy
	return nil
}

func (r *stubPostRepo) GetByID(id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *stubPostRepo) Update(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *post
	r.posts[post.ID] = &copy
	return nil
}

func (r *stubPostRepo) UpdateFields(id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			p.Status = value.(models.PostStatus)
		case "published_at":
			t := value.(time.Time)
			p.PublishedAt = &t
		case "featured":
			p.Featured = value.(bool)
		}
	}
	return nil
}

func (r *stubPostRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *stubPostRepo) List(offset, limit int, status *models.PostStatus) ([]models.Post, int64, error) {
	var out []models.Post
	for _, p := range r.sorted() {
		if status == nil || p.Status == *status {
			out = append(out, p)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *stubPostRepo) ListPublished(filter repository.PostFilter) ([]models.Post, int64, error) {
	r.listPublishedCalls++
	var out []models.Post
	search := strings.ToLower(filter.Search)
	for _, p := range r.sorted() {
		if !p.IsVisible(filter.Now) || p.ID == filter.ExcludeID {
			continue
		}
		if filter.CategorySlug != "" && !hasCategory(p, filter.CategorySlug) {
			continue
		}
		if filter.TagSlug != "" && !hasTag(p, filter.TagSlug) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Excerpt), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		out = append(out, p)
	}
	return paginate(out, filter.Offset, filter.Limit), int64(len(out)), nil
}

func (r *stubPostRepo) GetFeatured(now time.Time) (*models.Post, error) {
	for _, p := range r.sorted() {
		if p.Featured && p.IsVisible(now) {
			copy := p
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPostRepo) GetPublishedBySlug(slug string, now time.Time) (*models.Post, error) {
	for _, p := range r.sorted() {
		if p.Slug == slug && p.IsVisible(now) {
			copy := p
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPostRepo) GetRelated(postID uint, categoryIDs []uint, limit int, now time.Time) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.sorted() {
		if p.ID == postID || !p.IsVisible(now) {
			continue
		}
		for _, c := range p.Categories {
			if containsID(categoryIDs, c.ID) {
				out = append(out, p)
				break
			}
		}
	}
	return paginate(out, 0, limit), nil
}

func (r *stubPostRepo) GetRecentPublished(limit int, now time.Time) ([]models.Post, error) {
	posts, _, err := r.ListPublished(repository.PostFilter{Limit: limit, Now: now})
	return posts, err
}

func (r *stubPostRepo) CategoriesForPost(postID uint) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[postID]; ok {
		return p.Categories, nil
	}
	return nil, nil
}

func (r *stubPostRepo) IncrementViews(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		p.Views++
		r.views[id]++
	}
	return nil
}

func (r *stubPostRepo) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPostRepo) Count(status *models.PostStatus) (int64, error) {
	_, total, _ := r.List(0, 0, status)
	return total, nil
}

func (r *stubPostRepo) TotalViews() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, p := range r.posts {
		total += p.Views
	}
	return total, nil
}

// sorted returns copies ordered newest first.
func (r *stubPostRepo) sorted() []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := sortTime(out[i]), sortTime(out[j])
		if ti.Equal(tj) {
			return out[i].ID > out[j].ID
		}
		return ti.After(tj)
	})
	return out
}

func sortTime(p models.Post) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

func hasCategory(p models.Post, slug string) bool {
	for _, c := range p.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

func hasTag(p models.Post, slug string) bool {
	for _, t := range p.Tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func paginate(posts []models.Post, offset, limit int) []models.Post {
	if offset >= len(posts) {
		return []models.Post{}
	}
	posts = posts[offset:]
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts
}

// publishedCounts backs the public summaries, totalCounts backs the admin
// listing and the delete guard.
type stubCategoryRepo struct {
	categories      map[uint]*models.Category
	publishedCounts map[uint]int64
	totalCounts     map[uint]int64
	nextID          uint
	deleted         []uint
}

func newStubCategoryRepo(categories ...models.Category) *stubCategoryRepo {
	r := &stubCategoryRepo{
		categories:      make(map[uint]*models.Category),
		publishedCounts: make(map[uint]int64),
		totalCounts:     make(map[uint]int64),
	}
	for i := range categories {
		c := categories[i]
		r.categories[c.ID] = &c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *stubCategoryRepo) Create(category *models.Category) error {
	r.nextID++
	category.ID = r.nextID
	copy := *category
	r.categories[category.ID] = &copy
	return nil
}

func (r *stubCategoryRepo) GetByID(id uint) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *c
	return &copy, nil
}

func (r *stubCategoryRepo) GetBySlug(slug string) (*models.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			copy := *c
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) GetAll() ([]models.Category, error) {
	var out []models.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoryRepo) GetWithPostCount(time.Time) ([]models.Category, error) {
	out, _ := r.GetAll()
	for i := range out {
		out[i].PostsCount = r.publishedCounts[out[i].ID]
	}
	return out, nil
}

func (r *stubCategoryRepo) GetWithTotalPostCount() ([]models.Category, error) {
	out, _ := r.GetAll()
	for i := range out {
		out[i].PostsCount = r.totalCounts[out[i].ID]
	}
	return out, nil
}

func (r *stubCategoryRepo) FindByIDs(ids []uint) ([]models.Category, error) {
	var out []models.Category
	for _, id := range ids {
		if c, ok := r.categories[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) Update(category *models.Category) error {
	copy := *category
	r.categories[category.ID] = &copy
	return nil
}

func (r *stubCategoryRepo) Delete(id uint) error {
	delete(r.categories, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubCategoryRepo) CountPosts(id uint) (int64, error) {
	return r.totalCounts[id], nil
}

func (r *stubCategoryRepo) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	for _, c := range r.categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type stubTagRepo struct {
	tags            map[uint]*models.Tag
	publishedCounts map[uint]int64
	totalCounts     map[uint]int64
	nextID          uint
}

func newStubTagRepo(tags ...models.Tag) *stubTagRepo {
	r := &stubTagRepo{
		tags:            make(map[uint]*models.Tag),
		publishedCounts: make(map[uint]int64),
		totalCounts:     make(map[uint]int64),
	}
	for i := range tags {
		t := tags[i]
		r.tags[t.ID] = &t
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
	}
	return r
}

func (r *stubTagRepo) Create(tag *models.Tag) error {
	r.nextID++
	tag.ID = r.nextID
	copy := *tag
	r.tags[tag.ID] = &copy
	return nil
}

func (r *stubTagRepo) GetByID(id uint) (*models.Tag, error) {
	t, ok := r.tags[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *t
	return &copy, nil
}

func (r *stubTagRepo) GetBySlug(slug string) (*models.Tag, error) {
	for _, t := range r.tags {
		if t.Slug == slug {
			copy := *t
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTagRepo) GetAll() ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range r.tags {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubTagRepo) GetWithPostCount(time.Time) ([]models.Tag, error) {
	out, _ := r.GetAll()
	for i := range out {
		out[i].PostsCount = r.publishedCounts[out[i].ID]
	}
	return out, nil
}

func (r *stubTagRepo) GetWithTotalPostCount() ([]models.Tag, error) {
	out, _ := r.GetAll()
	for i := range out {
		out[i].PostsCount = r.totalCounts[out[i].ID]
	}
	return out, nil
}

func (r *stubTagRepo) FindByIDs(ids []uint) ([]models.Tag, error) {
	var out []models.Tag
	for _, id := range ids {
		if t, ok := r.tags[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTagRepo) Update(tag *models.Tag) error {
	copy := *tag
	r.tags[tag.ID] = &copy
	return nil
}

func (r *stubTagRepo) Delete(id uint) error {
	delete(r.tags, id)
	return nil
}

func (r *stubTagRepo) CountPosts(id uint) (int64, error) {
	return r.totalCounts[id], nil
}

func (r *stubTagRepo) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	for _, t := range r.tags {
		if t.Slug == slug && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type stubCommentRepo struct {
	mu       sync.Mutex
	comments []models.Comment
	nextID   uint
	now      func() time.Time
}

func newStubCommentRepo(now func() time.Time) *stubCommentRepo {
	return &stubCommentRepo{now: now}
}

func (r *stubCommentRepo) Create(comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = r.nextID
	if comment.CreatedAt.IsZero() && r.now != nil {
		comment.CreatedAt = r.now()
	}
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *stubCommentRepo) GetByID(id uint) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.ID == id {
			copy := c
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCommentRepo) ListApprovedForPost(postID uint) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if c.PostID == postID && c.IsApproved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubCommentRepo) List(offset, limit int, approved *bool) ([]models.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if approved == nil || c.IsApproved == *approved {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubCommentRepo) SetApproval(id uint, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.comments {
		if r.comments[i].ID == id {
			r.comments[i].IsApproved = approved
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubCommentRepo) ApproveMany(ids []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.comments {
		if containsID(ids, r.comments[i].ID) && !r.comments[i].IsApproved {
			r.comments[i].IsApproved = true
			n++
		}
	}
	return n, nil
}

func (r *stubCommentRepo) Delete(id uint) error {
	n, _ := r.DeleteMany([]uint{id})
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stubCommentRepo) DeleteMany(ids []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.comments[:0]
	var n int64
	for _, c := range r.comments {
		if containsID(ids, c.ID) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return n, nil
}

func (r *stubCommentRepo) ExistsFromIPSince(ip string, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.IPAddress == ip && c.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCommentRepo) Count(approved *bool) (int64, error) {
	_, n, _ := r.List(0, 0, approved)
	return n, nil
}

type stubContactRepo struct {
	mu        sync.Mutex
	messages  []models.ContactMessage
	nextID    uint
	createErr error
}

func (r *stubContactRepo) Create(message *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	message.ID = r.nextID
	r.messages = append(r.messages, *message)
	return nil
}

func (r *stubContactRepo) GetByID(id uint) (*models.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			copy := m
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubContactRepo) List(offset, limit int, unreadOnly bool) ([]models.ContactMessage, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ContactMessage
	for _, m := range r.messages {
		if !unreadOnly || !m.IsRead {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubContactRepo) SetFlag(id uint, column string, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID != id {
			continue
		}
		switch column {
		case "is_read":
			r.messages[i].IsRead = value
		case "is_replied":
			r.messages[i].IsReplied = value
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *stubContactRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubContactRepo) CountUnread() (int64, error) {
	_, n, _ := r.List(0, 0, true)
	return n, nil
}

func (r *stubContactRepo) Count() (int64, error) {
	_, n, _ := r.List(0, 0, false)
	return n, nil
}

func (r *stubContactRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type recordingNotifier struct {
	mu       sync.Mutex
	received []uint
}

func (n *recordingNotifier) ContactReceived(message *models.ContactMessage) {
	n.mu.Lock()
	n.received = append(n.received, message.ID)
	n.mu.Unlock()
}

type recordingQueue struct {
	mu     sync.Mutex
	jobs   []background.Job
	unique map[string]bool
	err    error
}

func (q *recordingQueue) Schedule(job background.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// ScheduleUnique rejects a name that was recorded before, like a job still in flight.
func (q *recordingQueue) ScheduleUnique(job background.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	if q.unique == nil {
		q.unique = make(map[string]bool)
	}
	if q.unique[job.Name] {
		return background.ErrJobAlreadyScheduled
	}
	q.unique[job.Name] = true
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j.Name)
	}
	return out
}

type sentMail struct {
	to, subject, body, replyTo string
}

type stubMailer struct {
	mu      sync.Mutex
	enabled bool
	sent    []sentMail
	err     error
}

func (m *stubMailer) Enabled() bool { return m.enabled }

func (m *stubMailer) Send(to, subject, body, replyTo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body, replyTo: replyTo})
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
