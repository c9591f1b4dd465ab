package pg

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"failboard/internal/models"
	"failboard/internal/storage"
)

// DB implements storage.Storage on top of gorm/PostgreSQL.
type DB struct {
	db *gorm.DB
}

// New wraps an initialized gorm connection. The connection must be
// opened with TranslateError so unique-index violations surface as
// gorm.ErrDuplicatedKey.
func New(gdb *gorm.DB) *DB {
	return &DB{db: gdb}
}

func (s *DB) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *DB) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DB) GetUserByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DB) SaveUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

func (s *DB) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *DB) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("User").Preload("Tags").First(&post, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *DB) SavePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Save(post).Error
}

func (s *DB) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

func (s *DB) ListPosts(ctx context.Context, filter storage.PostFilter) ([]models.Post, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Post{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR content ILIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if len(filter.Tags) > 0 {
		sub := s.db.Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name IN ?", filter.Tags)
		q = q.Where("posts.id IN (?)", sub)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.Size
	if size < 1 {
		size = 30
	}

	var posts []models.Post
	err := q.Preload("User").Preload("Tags").
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *DB) PostsByUser(ctx context.Context, userID uint, status models.PostStatus) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *DB) RandomPublished(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Preload("User").
		Where("status = ?", models.StatusPublished).
		Order("RANDOM()").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *DB) GetVote(ctx context.Context, postID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&vote).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (s *DB) InsertVote(ctx context.Context, vote *models.Vote) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return storage.ErrAlreadyVoted
			}
			return err
		}
		res := tx.Model(&models.Post{}).
			Where("id = ?", vote.PostID).
			UpdateColumn("rating", gorm.Expr("rating + ?", vote.Value))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Post vanished between the handler lookup and here; roll
			// back the vote row rather than keeping an orphan.
			return storage.ErrNotFound
		}
		return nil
	})
}

func (s *DB) TopUsers(ctx context.Context, limit int) ([]storage.UserRating, error) {
	var rows []storage.UserRating
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("users.id AS user_id, users.username AS username, COALESCE(SUM(posts.rating), 0) AS total_rating").
		Joins("JOIN posts ON posts.user_id = users.id").
		Where("posts.status = ?", models.StatusPublished).
		Group("users.id, users.username").
		Order("total_rating DESC, users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DB) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		err := s.db.WithContext(ctx).Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error
		if err != nil {
			return nil, fmt.Errorf("ensure tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *DB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
