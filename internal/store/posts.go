package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"caspian/internal/models"
)

// PostFields carries the editable attributes of a post through Create and
// Update, the author and publish date are set by the store.
type PostFields struct {
	Title         string
	Body          string
	CoverImageURL string
}

type PostStore interface {
	List() ([]models.Post, error)
	ByID(id uint) (*models.Post, error)
	Create(fields PostFields, authorID uint) (*models.Post, error)
	Update(id uint, fields PostFields) (*models.Post, error)
	Delete(id uint) error
}

type postStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) PostStore {
	return &postStore{db: db}
}

func (s *postStore) List() ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.Preload("User").Order("publish_date DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	s.fillCommentCounts(posts)
	return posts, nil
}

// fillCommentCounts batch-fills the per-post comment count for list views.
func (s *postStore) fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	s.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

func (s *postStore) ByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *postStore) Create(fields PostFields, authorID uint) (*models.Post, error) {
	post := models.Post{
		Title:         fields.Title,
		Body:          fields.Body,
		CoverImageURL: fields.CoverImageURL,
		UserID:        authorID,
		PublishDate:   time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("title = ?", fields.Title).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateTitle
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

func (s *postStore) Update(id uint, fields PostFields) (*models.Post, error) {
	var post models.Post
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// A renamed title must not collide with another post.
		if fields.Title != post.Title {
			var count int64
			if err := tx.Model(&models.Post{}).Where("title = ? AND id <> ?", fields.Title, id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateTitle
			}
		}

		post.Title = fields.Title
		post.Body = fields.Body
		post.CoverImageURL = fields.CoverImageURL
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

func (s *postStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		// Comments go with their post
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}
