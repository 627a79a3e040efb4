package services

import (
	"errors"

	"github.com/marcotondi/lfg-bot/internal/models"

	"gorm.io/gorm"
)

type RegistrationService struct {
	db    *gorm.DB
	locks *TableLocks
}

func NewRegistrationService(db *gorm.DB, locks *TableLocks) *RegistrationService {
	return &RegistrationService{db: db, locks: locks}
}

// Join claims a seat at a table. The capacity check and the insert (or
// reactivation of a previous row) run inside one transaction under the
// table's lock, so concurrent joins on the same table cannot overbook it.
func (s *RegistrationService) Join(tableID, userID uint) (*models.Registration, error) {
	unlock := s.locks.Lock(tableID)
	defer unlock()

	var reg models.Registration
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}
		if !table.Active {
			return ErrTableClosed
		}

		var existing models.Registration
		err := tx.Where("table_id = ? AND user_id = ?", tableID, userID).First(&existing).Error
		switch {
		case err == nil && existing.IsActive:
			return ErrAlreadyRegistered
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		var occupancy int64
		if err := tx.Model(&models.Registration{}).
			Where("table_id = ? AND is_active = ?", tableID, true).
			Count(&occupancy).Error; err != nil {
			return err
		}
		if occupancy >= int64(table.MaxPlayers) {
			return ErrTableFull
		}

		if existing.ID != 0 {
			existing.IsActive = true
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			reg = existing
			return nil
		}

		reg = models.Registration{TableID: tableID, UserID: userID, IsActive: true}
		return tx.Create(&reg).Error
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Leave gives up a seat. Leaving a table without an active registration fails
// with ErrNotRegistered and changes nothing, so retries after success fail
// cleanly.
func (s *RegistrationService) Leave(tableID, userID uint) (*models.Registration, error) {
	unlock := s.locks.Lock(tableID)
	defer unlock()

	var reg models.Registration
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ? AND user_id = ? AND is_active = ?",
			tableID, userID, true).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotRegistered
			}
			return err
		}
		reg.IsActive = false
		return tx.Save(&reg).Error
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Remove kicks a registrant on behalf of a master or admin. Same mutation as
// Leave; the actor only matters for logging and notification.
func (s *RegistrationService) Remove(tableID, userID, actorID uint) (*models.Registration, error) {
	return s.Leave(tableID, userID)
}

// Roster returns the active registrants in first-come-first-served order.
func (s *RegistrationService) Roster(tableID uint) ([]models.User, error) {
	var regs []models.Registration
	if err := s.db.Preload("User").
		Where("table_id = ? AND is_active = ?", tableID, true).
		Order("created_at ASC, id ASC").
		Find(&regs).Error; err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(regs))
	for _, r := range regs {
		users = append(users, r.User)
	}
	return users, nil
}

func (s *RegistrationService) Occupancy(tableID uint) (int, error) {
	var count int64
	if err := s.db.Model(&models.Registration{}).
		Where("table_id = ? AND is_active = ?", tableID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// IsRegistered reports whether the user holds an active seat at the table.
func (s *RegistrationService) IsRegistered(tableID, userID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Registration{}).
		Where("table_id = ? AND user_id = ? AND is_active = ?", tableID, userID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
