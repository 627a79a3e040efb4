package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/marcotondi/lfg-bot/internal/models"
)

func TestJoinLeaveRejoinReactivatesRow(t *testing.T) {
	db := newTestDB(t)
	locks := NewTableLocks()
	regs := NewRegistrationService(db, locks)

	master := seedMaster(t, db, 1, "Matt")
	table := seedTable(t, db, master.ID, 4)
	player := seedUser(t, db, 100, "Ada")

	if _, err := regs.Join(table.ID, player.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := regs.Leave(table.ID, player.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, err := regs.Join(table.ID, player.ID); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	var rows int64
	if err := db.Model(&models.Registration{}).
		Where("table_id = ? AND user_id = ?", table.ID, player.ID).
		Count(&rows).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected a single registration row, got %d", rows)
	}

	occupancy, _ := regs.Occupancy(table.ID)
	if occupancy != 1 {
		t.Fatalf("expected occupancy 1, got %d", occupancy)
	}
}

func TestJoinTwiceFails(t *testing.T) {
	db := newTestDB(t)
	locks := NewTableLocks()
	regs := NewRegistrationService(db, locks)

	master := seedMaster(t, db, 1, "Matt")
	table := seedTable(t, db, master.ID, 4)
	player := seedUser(t, db, 100, "Ada")

	if _, err := regs.Join(table.ID, player.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := regs.Join(table.ID, player.ID); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestLeaveWithoutJoin(t *testing.T) {
	db := newTestDB(t)
	locks := NewTableLocks()
	regs := NewRegistrationService(db, locks)

	master := seedMaster(t, db, 1, "Matt")
	table := seedTable(t, db, master.ID, 4)
	player := seedUser(t, db, 100, "Ada")

	if _, err := regs.Leave(table.ID, player.ID); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	// leave twice after a successful leave fails the same way, no corruption
	if _, err := regs.Join(table.ID, player.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := regs.Leave(table.ID, player.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, err := regs.Leave(table.ID, player.ID); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered on repeat leave, got %v", err)
	}

	occupancy, _ := regs.Occupancy(table.ID)
	if occupancy != 0 {
		t.Fatalf("expected occupancy 0, got %d", occupancy)
	}
}

func TestJoinClosedTable(t *testing.T) {
	db := newTestDB(t)
	locks := NewTableLocks()
	regs := NewRegistrationService(db, locks)

	master := seedMaster(t, db, 1, "Matt")
	table := seedTable(t, db, master.ID, 4)
	player := seedUser(t, db, 100, "Ada")

	if err := db.Model(&models.Table{}).Where("id = ?", table.ID).Update("active", false).Error; err != nil {
		t.Fatalf("close table: %v", err)
	}

	if _, err := regs.Join(table.ID, player.ID); !errors.Is(err, ErrTableClosed) {
		t.Fatalf("expected ErrTableClosed, got %v", err)
	}
}

func TestJoinFullTable(t *testing.T) {
	db := newTestDB(t)
	locks := NewTableLocks()
	regs := NewRegistrationService(db, locks)

	master := seedMaster(t, db, 1, "Matt")
	table := seedTable(t, db, master.ID, 2)

	for i := 0; i < 2; i++ {
		player := seedUser(t, db, int64(100+i), fmt.Sprintf("Player%d", i))
		if _, err := regs.Join(table.ID, player.ID); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}

	late := seedUser(t, db, 200, "Late")
	if _, err := regs.Join(table.ID, late.ID); !errors.Is(err, ErrTableFull) {
		t.Fatalf("expected ErrTableFull, got %v", err)
	}
}

func TestConcurrentJoinsNeverOverbook(t *testing.T) {
	db := newTestDB(t)
	locks := NewTableLocks()
	regs := NewRegistrationService(db, locks)

	master := seedMaster(t, db, 1, "Matt")
	table := seedTable(t, db, master.ID, 5)

	players := make([]*models.User, 8)
	for i := range players {
		players[i] = seedUser(t, db, int64(100+i), fmt.Sprintf("Player%d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(players))
	for i, p := range players {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, errs[i] = regs.Join(table.ID, userID)
		}(i, p.ID)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrTableFull):
			full++
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}

	if succeeded != 5 || full != 3 {
		t.Fatalf("expected 5 successes and 3 full rejections, got %d/%d", succeeded, full)
	}

	occupancy, _ := regs.Occupancy(table.ID)
	if occupancy != 5 {
		t.Fatalf("expected occupancy 5, got %d", occupancy)
	}
	roster, _ := regs.Roster(table.ID)
	if len(roster) != occupancy {
		t.Fatalf("occupancy %d and roster length %d diverged", occupancy, len(roster))
	}
}

func TestRosterOrderIsFirstComeFirstServed(t *testing.T) {
	db := newTestDB(t)
	locks := NewTableLocks()
	regs := NewRegistrationService(db, locks)

	master := seedMaster(t, db, 1, "Matt")
	table := seedTable(t, db, master.ID, 5)

	names := []string{"First", "Second", "Third"}
	for i, name := range names {
		player := seedUser(t, db, int64(100+i), name)
		if _, err := regs.Join(table.ID, player.ID); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	roster, err := regs.Roster(table.ID)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("expected 3 registrants, got %d", len(roster))
	}
	for i, name := range names {
		if roster[i].FirstName != name {
			t.Fatalf("expected %s at position %d, got %s", name, i, roster[i].FirstName)
		}
	}
}

func TestRemoveByActor(t *testing.T) {
	db := newTestDB(t)
	locks := NewTableLocks()
	regs := NewRegistrationService(db, locks)

	master := seedMaster(t, db, 1, "Matt")
	table := seedTable(t, db, master.ID, 4)
	player := seedUser(t, db, 100, "Ada")

	if _, err := regs.Join(table.ID, player.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := regs.Remove(table.ID, player.ID, master.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	occupancy, _ := regs.Occupancy(table.ID)
	if occupancy != 0 {
		t.Fatalf("expected occupancy 0 after kick, got %d", occupancy)
	}
}
