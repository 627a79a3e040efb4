package router

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/marcotondi/lfg-bot/internal/models"
	"github.com/marcotondi/lfg-bot/internal/services"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) Notify(chatID int64, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message)
}

type testEnv struct {
	db     *gorm.DB
	router *Router
	users  *services.UserService
	tables *services.TableService
	regs   *services.RegistrationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Table{}, &models.Registration{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	locks := services.NewTableLocks()
	users := services.NewUserService(db)
	tables := services.NewTableService(db, locks)
	regs := services.NewRegistrationService(db, locks)
	notify := services.NewNotifyService(&fakeNotifier{}, nil)

	r := New(users, tables)
	RegisterCommands(r, Deps{
		Users:         users,
		Tables:        tables,
		Registrations: regs,
		Notify:        notify,
	})

	return &testEnv{db: db, router: r, users: users, tables: tables, regs: regs}
}

func (e *testEnv) seedUser(t *testing.T, telegramID int64, name string, master, admin bool) *models.User {
	t.Helper()
	user := models.User{TelegramID: telegramID, FirstName: name, IsMaster: master, IsAdmin: admin}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func TestDispatchUnknownCommand(t *testing.T) {
	env := newTestEnv(t)

	res := env.router.Dispatch(Request{TelegramID: 1, Command: "frobnicate"})
	if res.Completed() || res.Kind != KindNotFound {
		t.Fatalf("expected not_found rejection, got %+v", res)
	}
}

func TestUnauthorizedNeverRunsHandler(t *testing.T) {
	env := newTestEnv(t)

	ran := false
	env.router.Register("adminonly", RoleAdmin, func(ctx *Context) (interface{}, error) {
		ran = true
		return nil, nil
	})

	res := env.router.Dispatch(Request{TelegramID: 10, FirstName: "Pam", Command: "adminonly"})
	if res.Completed() {
		t.Fatalf("expected rejection, got %+v", res)
	}
	if res.Kind != KindUnauthorized {
		t.Fatalf("expected unauthorized, got %q", res.Kind)
	}
	if res.Detail != "You are not authorized to use this command." {
		t.Fatalf("unexpected detail: %q", res.Detail)
	}
	if ran {
		t.Fatal("handler ran for an unauthorized caller")
	}
}

func TestUnauthorizedSetMasterLeavesTargetUnchanged(t *testing.T) {
	env := newTestEnv(t)
	target := env.seedUser(t, 20, "Terry", false, false)
	env.seedUser(t, 21, "Nora", false, false)

	res := env.router.Dispatch(Request{
		TelegramID: 21,
		Command:    "setmaster",
		Args:       []string{strconv.FormatInt(target.TelegramID, 10)},
	})
	if res.Kind != KindUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", res)
	}

	got, err := env.users.Get(target.TelegramID)
	if err != nil {
		t.Fatalf("get target: %v", err)
	}
	if got.IsMaster {
		t.Fatal("rejected command must not change the target's role")
	}
}

func TestCreateTableRequiresMasterRole(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 30, "Pete", false, false)

	res := env.router.Dispatch(Request{
		TelegramID: 30,
		Command:    "createtable",
		Input: services.CreateTableInput{
			Type:       models.TableTypeOneShot,
			Game:       "Mothership",
			Name:       "Dead Planet",
			MaxPlayers: 4,
		},
	})
	if res.Kind != KindUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", res)
	}

	tables, err := env.tables.ListAll()
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("expected no tables created, got %d", len(tables))
	}
}

func TestTableMasterOwnershipCheck(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, 40, "Owner", true, false)
	env.seedUser(t, 41, "Rival", true, false)
	env.seedUser(t, 42, "Root", false, true)

	table, err := env.tables.Create(services.CreateTableInput{
		MasterID:   owner.ID,
		Type:       models.TableTypeCampaign,
		Game:       "Pathfinder 2e",
		Name:       "Abomination Vaults",
		MaxPlayers: 4,
	})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	// Another master does not own this table.
	res := env.router.Dispatch(Request{TelegramID: 41, Command: "pausetable", TableID: table.ID})
	if res.Kind != KindUnauthorized {
		t.Fatalf("expected unauthorized for non-owner master, got %+v", res)
	}
	got, err := env.tables.Get(table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if !got.Active {
		t.Fatal("rejected pause must not deactivate the table")
	}

	// The owner can pause it.
	res = env.router.Dispatch(Request{TelegramID: 40, Command: "pausetable", TableID: table.ID})
	if !res.Completed() {
		t.Fatalf("owner pause failed: %+v", res)
	}

	// An admin can continue someone else's table.
	res = env.router.Dispatch(Request{TelegramID: 42, Command: "continuetable", TableID: table.ID})
	if !res.Completed() {
		t.Fatalf("admin continue failed: %+v", res)
	}
	got, err = env.tables.Get(table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if !got.Active {
		t.Fatal("table should be active after continue")
	}
}

func TestCampaignLifecycle(t *testing.T) {
	env := newTestEnv(t)
	master := env.seedUser(t, 100, "Madam Eva", true, false)
	env.seedUser(t, 101, "Root", false, true)

	res := env.router.Dispatch(Request{
		TelegramID: master.TelegramID,
		Command:    "createtable",
		Input: services.CreateTableInput{
			Type:       models.TableTypeCampaign,
			Game:       "D&D 5e",
			Name:       "Curse of Strahd",
			MaxPlayers: 5,
		},
	})
	if !res.Completed() {
		t.Fatalf("create failed: %+v", res)
	}
	table, ok := res.Payload.(*models.Table)
	if !ok {
		t.Fatalf("unexpected create payload: %T", res.Payload)
	}

	// Five players fill the table.
	for i := int64(0); i < 5; i++ {
		res = env.router.Dispatch(Request{
			TelegramID: 200 + i,
			FirstName:  fmt.Sprintf("Player%d", i+1),
			Command:    "join",
			TableID:    table.ID,
		})
		if !res.Completed() {
			t.Fatalf("join %d failed: %+v", i+1, res)
		}
	}

	occ, err := env.regs.Occupancy(table.ID)
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	if occ != 5 {
		t.Fatalf("expected occupancy 5, got %d", occ)
	}

	// A sixth player bounces off the full table.
	res = env.router.Dispatch(Request{TelegramID: 206, FirstName: "Late", Command: "join", TableID: table.ID})
	if res.Kind != KindTableFull {
		t.Fatalf("expected table_full, got %+v", res)
	}

	// The admin cancels the campaign; every seat is released.
	res = env.router.Dispatch(Request{TelegramID: 101, Command: "canceltable", TableID: table.ID})
	if !res.Completed() {
		t.Fatalf("cancel failed: %+v", res)
	}
	affected, ok := res.Payload.([]models.User)
	if !ok {
		t.Fatalf("unexpected cancel payload: %T", res.Payload)
	}
	if len(affected) != 5 {
		t.Fatalf("expected 5 affected players, got %d", len(affected))
	}

	occ, err = env.regs.Occupancy(table.ID)
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	if occ != 0 {
		t.Fatalf("expected occupancy 0 after cancel, got %d", occ)
	}

	// No one can join the cancelled table.
	res = env.router.Dispatch(Request{TelegramID: 207, FirstName: "Tardy", Command: "join", TableID: table.ID})
	if res.Kind != KindTableClosed {
		t.Fatalf("expected table_closed, got %+v", res)
	}
}

func TestCancelTableWithoutTarget(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 500, "Root", false, true)

	// admin-only commands pass authorization without a resolved table, so
	// a zero table id must reject cleanly instead of panicking
	res := env.router.Dispatch(Request{TelegramID: 500, Command: "canceltable", TableID: 0})
	if res.Completed() {
		t.Fatalf("expected rejection, got %+v", res)
	}
	if res.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %q", res.Kind)
	}
}

func TestKickByTableMaster(t *testing.T) {
	env := newTestEnv(t)
	master := env.seedUser(t, 300, "GM", true, false)
	player := env.seedUser(t, 301, "Troublemaker", false, false)

	table, err := env.tables.Create(services.CreateTableInput{
		MasterID:   master.ID,
		Type:       models.TableTypeOneShot,
		Game:       "Call of Cthulhu",
		Name:       "The Haunting",
		MaxPlayers: 4,
	})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := env.regs.Join(table.ID, player.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	res := env.router.Dispatch(Request{
		TelegramID: master.TelegramID,
		Command:    "kick",
		TableID:    table.ID,
		Args:       []string{strconv.FormatInt(player.TelegramID, 10)},
	})
	if !res.Completed() {
		t.Fatalf("kick failed: %+v", res)
	}

	registered, err := env.regs.IsRegistered(table.ID, player.ID)
	if err != nil {
		t.Fatalf("is registered: %v", err)
	}
	if registered {
		t.Fatal("kicked player should no longer hold a seat")
	}
}

func TestKickRejectsBadArgs(t *testing.T) {
	env := newTestEnv(t)
	master := env.seedUser(t, 400, "GM", true, false)

	table, err := env.tables.Create(services.CreateTableInput{
		MasterID:   master.ID,
		Type:       models.TableTypeOneShot,
		Game:       "Blades in the Dark",
		Name:       "Score One",
		MaxPlayers: 4,
	})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	for _, args := range [][]string{nil, {"not-a-number"}} {
		res := env.router.Dispatch(Request{
			TelegramID: master.TelegramID,
			Command:    "kick",
			TableID:    table.ID,
			Args:       args,
		})
		if res.Kind != KindInvalidInput {
			t.Fatalf("args %v: expected invalid_input, got %+v", args, res)
		}
	}
}
