package stubs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"failboard/internal/models"
	"failboard/internal/storage"
)

// MockDB is an in-memory implementation of storage.Storage for tests
// and for running the server without a database (USE_MOCK_DB=true).
type MockDB struct {
	mu       sync.RWMutex
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	votes    map[uint]*models.Vote
	tags     map[uint]*models.Tag
	postTags map[uint][]uint // post id -> tag ids

	nextUserID uint
	nextPostID uint
	nextVoteID uint
	nextTagID  uint
}

// NewMockDB creates an empty in-memory store.
func NewMockDB() *MockDB {
	return &MockDB{
		users:      make(map[uint]*models.User),
		posts:      make(map[uint]*models.Post),
		votes:      make(map[uint]*models.Vote),
		tags:       make(map[uint]*models.Tag),
		postTags:   make(map[uint][]uint),
		nextUserID: 1,
		nextPostID: 1,
		nextVoteID: 1,
		nextTagID:  1,
	}
}

func (m *MockDB) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.ID = m.nextUserID
	m.nextUserID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *MockDB) GetUserByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.ChatID != nil && *user.ChatID == chatID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email != nil && *user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MockDB) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockDB) CreatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	post.ID = m.nextPostID
	m.nextPostID++
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Status == "" {
		post.Status = models.StatusDraft
	}
	for _, tag := range post.Tags {
		m.postTags[post.ID] = append(m.postTags[post.ID], tag.ID)
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *MockDB) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := m.hydrate(post)
	return &cp, nil
}

func (m *MockDB) SavePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[post.ID]; !ok {
		return storage.ErrNotFound
	}
	post.UpdatedAt = time.Now()
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *MockDB) DeletePost(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.posts, id)
	delete(m.postTags, id)
	for voteID, vote := range m.votes {
		if vote.PostID == id {
			delete(m.votes, voteID)
		}
	}
	return nil
}

func (m *MockDB) ListPosts(ctx context.Context, filter storage.PostFilter) ([]models.Post, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.Post
	for _, post := range m.posts {
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(post.Name), needle) &&
				!strings.Contains(strings.ToLower(post.Content), needle) {
				continue
			}
		}
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		if filter.UserID != 0 && post.UserID != filter.UserID {
			continue
		}
		if len(filter.Tags) > 0 && !m.hasAnyTag(post.ID, filter.Tags) {
			continue
		}
		matched = append(matched, m.hydrate(post))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.Size
	if size < 1 {
		size = 30
	}
	start := (page - 1) * size
	if start >= len(matched) {
		return []models.Post{}, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MockDB) PostsByUser(ctx context.Context, userID uint, status models.PostStatus) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var posts []models.Post
	for _, post := range m.posts {
		if post.UserID == userID && post.Status == status {
			posts = append(posts, m.hydrate(post))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *MockDB) RandomPublished(ctx context.Context, limit int) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var posts []models.Post
	for _, post := range m.posts {
		if post.Status == models.StatusPublished {
			posts = append(posts, m.hydrate(post))
		}
	}
	// Deterministic order keeps tests stable; real randomness lives in
	// the PostgreSQL implementation.
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *MockDB) GetVote(ctx context.Context, postID, userID uint) (*models.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, vote := range m.votes {
		if vote.PostID == postID && vote.UserID == userID {
			cp := *vote
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MockDB) InsertVote(ctx context.Context, vote *models.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.votes {
		if existing.PostID == vote.PostID && existing.UserID == vote.UserID {
			return storage.ErrAlreadyVoted
		}
	}
	post, ok := m.posts[vote.PostID]
	if !ok {
		return storage.ErrNotFound
	}

	vote.ID = m.nextVoteID
	m.nextVoteID++
	vote.CreatedAt = time.Now()
	cp := *vote
	m.votes[vote.ID] = &cp
	post.Rating += vote.Value
	return nil
}

func (m *MockDB) TopUsers(ctx context.Context, limit int) ([]storage.UserRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[uint]int)
	for _, post := range m.posts {
		if post.Status == models.StatusPublished {
			totals[post.UserID] += post.Rating
		}
	}

	var rows []storage.UserRating
	for userID, total := range totals {
		username := ""
		if user, ok := m.users[userID]; ok {
			username = user.Username
		}
		rows = append(rows, storage.UserRating{
			UserID:      userID,
			Username:    username,
			TotalRating: total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalRating == rows[j].TotalRating {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].TotalRating > rows[j].TotalRating
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *MockDB) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var found *models.Tag
		for _, tag := range m.tags {
			if tag.Name == name {
				found = tag
				break
			}
		}
		if found == nil {
			found = &models.Tag{ID: m.nextTagID, Name: name}
			m.nextTagID++
			m.tags[found.ID] = found
		}
		tags = append(tags, *found)
	}
	return tags, nil
}

func (m *MockDB) Close() error {
	return nil
}

// hydrate fills the User and Tags relations the way the gorm
// implementation preloads them. Caller must hold the lock.
func (m *MockDB) hydrate(post *models.Post) models.Post {
	cp := *post
	if user, ok := m.users[post.UserID]; ok {
		cp.User = *user
	}
	cp.Tags = nil
	for _, tagID := range m.postTags[post.ID] {
		if tag, ok := m.tags[tagID]; ok {
			cp.Tags = append(cp.Tags, *tag)
		}
	}
	return cp
}

func (m *MockDB) hasAnyTag(postID uint, names []string) bool {
	for _, tagID := range m.postTags[postID] {
		tag, ok := m.tags[tagID]
		if !ok {
			continue
		}
		for _, name := range names {
			if tag.Name == name {
				return true
			}
		}
	}
	return false
}
