package router

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcotondi/lfg-bot/internal/models"
	"github.com/marcotondi/lfg-bot/internal/services"
)

// Deps bundles the services the command handlers close over.
type Deps struct {
	Users         *services.UserService
	Tables        *services.TableService
	Registrations *services.RegistrationService
	Notify        *services.NotifyService
}

// RegisterCommands binds every chat command to its role tag and handler.
func RegisterCommands(r *Router, d Deps) {
	r.Register("tables", RoleAny, d.listTables)
	r.Register("roster", RoleAny, d.roster)
	r.Register("join", RoleAny, d.join)
	r.Register("leave", RoleAny, d.leave)
	r.Register("mute", RoleAny, d.toggleMute)

	r.Register("createtable", RoleMaster, d.createTable)
	r.Register("mytables", RoleMaster, d.myTables)
	r.Register("pausetable", RoleTableMaster, d.pauseTable)
	r.Register("continuetable", RoleTableMaster, d.continueTable)
	r.Register("edittable", RoleTableMaster, d.editTable)
	r.Register("kick", RoleTableMaster, d.kick)

	r.Register("alltables", RoleAdmin, d.allTables)
	r.Register("canceltable", RoleAdmin, d.cancelTable)
	r.Register("publishtables", RoleAdmin, d.publishTables)
	r.Register("setmaster", RoleAdmin, d.setRole(services.RoleMaster, true))
	r.Register("unsetmaster", RoleAdmin, d.setRole(services.RoleMaster, false))
	r.Register("setadmin", RoleAdmin, d.setRole(services.RoleAdmin, true))
	r.Register("unsetadmin", RoleAdmin, d.setRole(services.RoleAdmin, false))
}

func (d Deps) listTables(ctx *Context) (interface{}, error) {
	return d.Tables.ListActive(services.TableFilter{})
}

func (d Deps) roster(ctx *Context) (interface{}, error) {
	if ctx.Table == nil {
		return nil, services.ErrTableNotFound
	}
	return d.Registrations.Roster(ctx.Table.ID)
}

func (d Deps) join(ctx *Context) (interface{}, error) {
	if ctx.Table == nil {
		return nil, services.ErrTableNotFound
	}
	reg, err := d.Registrations.Join(ctx.Table.ID, ctx.Caller.ID)
	if err != nil {
		return nil, err
	}
	d.Notify.Publish(services.Event{Type: services.EventPlayerJoined, Table: ctx.Table})
	return reg, nil
}

func (d Deps) leave(ctx *Context) (interface{}, error) {
	if ctx.Table == nil {
		return nil, services.ErrTableNotFound
	}
	reg, err := d.Registrations.Leave(ctx.Table.ID, ctx.Caller.ID)
	if err != nil {
		return nil, err
	}
	d.Notify.Publish(services.Event{Type: services.EventPlayerLeft, Table: ctx.Table})
	return reg, nil
}

func (d Deps) toggleMute(ctx *Context) (interface{}, error) {
	return d.Users.SetMute(ctx.Caller.TelegramID, !ctx.Caller.Mute)
}

func (d Deps) createTable(ctx *Context) (interface{}, error) {
	in, ok := ctx.Input.(services.CreateTableInput)
	if !ok {
		return nil, services.ErrInvalidInput
	}
	in.MasterID = ctx.Caller.ID
	return d.Tables.Create(in)
}

func (d Deps) myTables(ctx *Context) (interface{}, error) {
	return d.Tables.ListByMaster(ctx.Caller.ID)
}

func (d Deps) pauseTable(ctx *Context) (interface{}, error) {
	affected, err := d.Tables.Deactivate(ctx.Table.ID, "paused by master")
	if err != nil {
		return nil, err
	}
	d.Notify.Publish(services.Event{
		Type:     services.EventTablePaused,
		Table:    ctx.Table,
		Affected: affected,
	})
	return affected, nil
}

func (d Deps) continueTable(ctx *Context) (interface{}, error) {
	return d.Tables.Reactivate(ctx.Table.ID)
}

func (d Deps) editTable(ctx *Context) (interface{}, error) {
	patch, ok := ctx.Input.(services.TablePatch)
	if !ok {
		return nil, services.ErrInvalidInput
	}
	return d.Tables.UpdateFields(ctx.Table.ID, patch)
}

func (d Deps) kick(ctx *Context) (interface{}, error) {
	if len(ctx.Args) < 1 {
		return nil, services.ErrInvalidInput
	}
	targetTG, err := strconv.ParseInt(ctx.Args[0], 10, 64)
	if err != nil {
		return nil, services.ErrInvalidInput
	}
	target, err := d.Users.Get(targetTG)
	if err != nil {
		return nil, err
	}
	reg, err := d.Registrations.Remove(ctx.Table.ID, target.ID, ctx.Caller.ID)
	if err != nil {
		return nil, err
	}
	d.Notify.Publish(services.Event{
		Type:     services.EventPlayerKicked,
		Table:    ctx.Table,
		Affected: []models.User{*target},
	})
	return reg, nil
}

func (d Deps) allTables(ctx *Context) (interface{}, error) {
	return d.Tables.ListAll()
}

func (d Deps) cancelTable(ctx *Context) (interface{}, error) {
	if ctx.Table == nil {
		return nil, services.ErrTableNotFound
	}
	affected, err := d.Tables.Deactivate(ctx.Table.ID, "cancelled by admin")
	if err != nil {
		return nil, err
	}
	d.Notify.Publish(services.Event{
		Type:     services.EventTableCancelled,
		Table:    ctx.Table,
		Affected: affected,
	})
	return affected, nil
}

func (d Deps) publishTables(ctx *Context) (interface{}, error) {
	tables, err := d.Tables.ListActive(services.TableFilter{})
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, services.ErrTableNotFound
	}

	users, err := d.Users.ListAll()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("<b>Active tables for the next game day:</b>\n\n")
	for _, t := range tables {
		fmt.Fprintf(&b, "- %s\n", t.Game)
	}

	d.Notify.Publish(services.Event{
		Type:     services.EventTablesPublished,
		Affected: users,
		Text:     b.String(),
	})
	return len(users), nil
}

func (d Deps) setRole(role string, enabled bool) HandlerFunc {
	return func(ctx *Context) (interface{}, error) {
		if len(ctx.Args) < 1 {
			return nil, services.ErrInvalidInput
		}
		targetTG, err := strconv.ParseInt(ctx.Args[0], 10, 64)
		if err != nil {
			return nil, services.ErrInvalidInput
		}
		return d.Users.SetRole(targetTG, role, enabled)
	}
}
