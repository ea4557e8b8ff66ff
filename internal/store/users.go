package store

import (
	"errors"

	"gorm.io/gorm"

	"caspian/internal/models"
	"caspian/internal/utils"
)

// UserStore is the credential store. Passwords only ever cross this boundary
// as plaintext parameters; what is persisted is a bcrypt hash.
type UserStore interface {
	Register(email, displayName, password string) (*models.User, error)
	Verify(email, password string) (*models.User, error)
	ByID(id uint) (*models.User, error)
	FirstID() (uint, error)
}

type userStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

func (s *userStore) Register(email, displayName, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	}

	// Check-and-insert in one transaction so a duplicate is rejected before
	// any write, the unique index backstops a concurrent registration.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *userStore) Verify(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	return &user, nil
}

func (s *userStore) ByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FirstID returns the lowest user id, the first account ever registered.
// That account is the blog's administrator.
func (s *userStore) FirstID() (uint, error) {
	var user models.User
	if err := s.db.Order("id ASC").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.ID, nil
}
