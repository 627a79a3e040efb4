package services

import (
	"errors"
	"strings"

	"github.com/marcotondi/lfg-bot/internal/models"

	"gorm.io/gorm"
)

type TableService struct {
	db    *gorm.DB
	locks *TableLocks
}

func NewTableService(db *gorm.DB, locks *TableLocks) *TableService {
	return &TableService{db: db, locks: locks}
}

type CreateTableInput struct {
	MasterID    uint
	Type        string
	Game        string
	Name        string
	MaxPlayers  int
	Description string
	Image       string
	NumSessions *int
}

func (s *TableService) Create(in CreateTableInput) (*models.Table, error) {
	if in.MaxPlayers < 1 || strings.TrimSpace(in.Game) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, ErrInvalidInput
	}
	if in.Type != models.TableTypeOneShot && in.Type != models.TableTypeCampaign {
		return nil, ErrInvalidInput
	}

	var master models.User
	if err := s.db.First(&master, in.MasterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	table := models.Table{
		MasterID:    in.MasterID,
		Type:        in.Type,
		Game:        in.Game,
		Name:        in.Name,
		MaxPlayers:  in.MaxPlayers,
		Description: in.Description,
		Image:       in.Image,
		NumSessions: in.NumSessions,
		Active:      true,
	}
	if err := s.db.Create(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *TableService) Get(tableID uint) (*models.Table, error) {
	var table models.Table
	if err := s.db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

type TableFilter struct {
	Game     string
	Type     string
	MasterID uint
}

func (s *TableService) ListActive(filter TableFilter) ([]models.Table, error) {
	q := s.db.Where("active = ?", true)
	if filter.Game != "" {
		q = q.Where("game = ?", filter.Game)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.MasterID != 0 {
		q = q.Where("master_id = ?", filter.MasterID)
	}

	var tables []models.Table
	if err := q.Order("created_at ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) ListAll() ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.Order("created_at ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) ListByMaster(masterID uint) ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.Where("master_id = ?", masterID).Order("created_at ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) campaignsByMaster(masterID uint, active bool) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.Where("master_id = ? AND type = ? AND active = ?",
		masterID, models.TableTypeCampaign, active).
		Order("created_at ASC").Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) ActiveCampaignsByMaster(masterID uint) ([]models.Table, error) {
	return s.campaignsByMaster(masterID, true)
}

func (s *TableService) InactiveCampaignsByMaster(masterID uint) ([]models.Table, error) {
	return s.campaignsByMaster(masterID, false)
}

// Deactivate closes a table and cascades to its registrations: the active
// flag flip and the registration deactivation commit together, so no
// registration can stay active against a closed table. Returns the users who
// held a seat so the caller can notify them. Deactivating an inactive table
// is a no-op with an empty cascade set.
func (s *TableService) Deactivate(tableID uint, reason string) ([]models.User, error) {
	unlock := s.locks.Lock(tableID)
	defer unlock()

	var affected []models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}
		if !table.Active {
			return nil
		}

		var regs []models.Registration
		if err := tx.Preload("User").
			Where("table_id = ? AND is_active = ?", tableID, true).
			Order("created_at ASC, id ASC").
			Find(&regs).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Table{}).Where("id = ?", tableID).
			Update("active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Registration{}).
			Where("table_id = ? AND is_active = ?", tableID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}

		for _, r := range regs {
			affected = append(affected, r.User)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}

// Reactivate reopens a previously paused table. Registrations stay inactive;
// players re-join on their own.
func (s *TableService) Reactivate(tableID uint) (*models.Table, error) {
	table, err := s.Get(tableID)
	if err != nil {
		return nil, err
	}
	if !table.Active {
		table.Active = true
		if err := s.db.Save(table).Error; err != nil {
			return nil, err
		}
	}
	return table, nil
}

type TablePatch struct {
	Description *string
	Image       *string
	MaxPlayers  *int
	NumSessions *int
}

// UpdateFields applies a partial update. Lowering max_players below the
// current occupancy fails with ErrCapacityConflict and changes nothing; the
// caller has to free seats explicitly first.
func (s *TableService) UpdateFields(tableID uint, patch TablePatch) (*models.Table, error) {
	unlock := s.locks.Lock(tableID)
	defer unlock()

	var table models.Table
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		if patch.MaxPlayers != nil {
			if *patch.MaxPlayers < 1 {
				return ErrInvalidInput
			}
			var occupancy int64
			if err := tx.Model(&models.Registration{}).
				Where("table_id = ? AND is_active = ?", tableID, true).
				Count(&occupancy).Error; err != nil {
				return err
			}
			if int64(*patch.MaxPlayers) < occupancy {
				return ErrCapacityConflict
			}
			table.MaxPlayers = *patch.MaxPlayers
		}
		if patch.Description != nil {
			table.Description = *patch.Description
		}
		if patch.Image != nil {
			table.Image = *patch.Image
		}
		if patch.NumSessions != nil {
			table.NumSessions = patch.NumSessions
		}

		return tx.Save(&table).Error
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}
