package store

import (
	"errors"

	"gorm.io/gorm"

	"caspian/internal/models"
)

type CommentStore interface {
	ForPost(postID uint) ([]models.Comment, error)
	Add(postID, authorID uint, text string) (*models.Comment, error)
}

type commentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) CommentStore {
	return &commentStore{db: db}
}

func (s *commentStore) ForPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.Preload("User").Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Add creates a comment authored by authorID under postID. Both references
// are resolved first so a comment can never point at a missing row.
func (s *commentStore) Add(postID, authorID uint, text string) (*models.Comment, error) {
	if authorID == 0 {
		return nil, ErrUnauthenticated
	}

	comment := models.Comment{
		PostID: postID,
		UserID: authorID,
		Text:   text,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var user models.User
		if err := tx.First(&user, authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}

	return &comment, nil
}
