package services

import (
	"errors"

	"github.com/marcotondi/lfg-bot/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ResolveOrCreate upserts a user keyed on their Telegram ID. Display fields
// are refreshed when they changed on the platform side; role flags and mute
// are never touched here.
func (s *UserService) ResolveOrCreate(telegramID int64, username, firstName, lastName string) (*models.User, bool, error) {
	var user models.User
	err := s.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if err == nil {
		if user.Username != username || user.FirstName != firstName || user.LastName != lastName {
			user.Username = username
			user.FirstName = firstName
			user.LastName = lastName
			if err := s.db.Save(&user).Error; err != nil {
				return nil, false, err
			}
		}
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

func (s *UserService) Get(telegramID int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

const (
	RoleMaster = "master"
	RoleAdmin  = "admin"
)

// SetRole flips the master or admin flag on the target user. The command
// router restricts this to admins; the target must already exist.
func (s *UserService) SetRole(telegramID int64, role string, enabled bool) (*models.User, error) {
	user, err := s.Get(telegramID)
	if err != nil {
		return nil, err
	}

	switch role {
	case RoleMaster:
		user.IsMaster = enabled
	case RoleAdmin:
		user.IsAdmin = enabled
	default:
		return nil, ErrInvalidInput
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SetMute toggles notification muting for the user themselves.
func (s *UserService) SetMute(telegramID int64, enabled bool) (*models.User, error) {
	user, err := s.Get(telegramID)
	if err != nil {
		return nil, err
	}
	user.Mute = enabled
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListAll() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
