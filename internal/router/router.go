package router

import (
	"errors"
	"log"

	"github.com/marcotondi/lfg-bot/internal/models"
	"github.com/marcotondi/lfg-bot/internal/services"
)

// Role is the access tag a command requires. RoleTableMaster is a
// per-resource check: the caller must own the target table (admins pass it
// too, mirroring the admin edit flow).
type Role int

const (
	RoleAny Role = iota
	RoleMaster
	RoleAdmin
	RoleTableMaster
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindInvalidInput     ErrorKind = "invalid_input"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindTableClosed      ErrorKind = "table_closed"
	KindTableFull        ErrorKind = "table_full"
	KindCapacityConflict ErrorKind = "capacity_conflict"
	KindNotRegistered    ErrorKind = "not_registered"
	KindInternal         ErrorKind = "internal_error"
)

type Request struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string

	Command string
	Args    []string
	TableID uint
	// Input carries structured arguments collected by conversation flows
	// (table creation, edits).
	Input interface{}
}

// Context is what a handler sees: the resolved caller and, for
// table-targeted commands, the resolved table.
type Context struct {
	Caller *models.User
	Table  *models.Table
	Args   []string
	Input  interface{}
}

type HandlerFunc func(ctx *Context) (interface{}, error)

type Result struct {
	Status  Status      `json:"status"`
	Kind    ErrorKind   `json:"kind,omitempty"`
	Detail  string      `json:"detail,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

func (r Result) Completed() bool { return r.Status == StatusCompleted }

func completed(payload interface{}) Result {
	return Result{Status: StatusCompleted, Payload: payload}
}

func rejected(kind ErrorKind, detail string) Result {
	return Result{Status: StatusRejected, Kind: kind, Detail: detail}
}

type command struct {
	role    Role
	handler HandlerFunc
}

// Router resolves the caller, authorizes against the command's role tag and
// only then runs the handler. An unauthorized caller never reaches the
// handler, so a rejected command cannot leave partial state behind.
type Router struct {
	users    *services.UserService
	tables   *services.TableService
	commands map[string]command
}

func New(users *services.UserService, tables *services.TableService) *Router {
	return &Router{
		users:    users,
		tables:   tables,
		commands: make(map[string]command),
	}
}

func (r *Router) Register(name string, role Role, handler HandlerFunc) {
	r.commands[name] = command{role: role, handler: handler}
}

func (r *Router) Dispatch(req Request) Result {
	cmd, ok := r.commands[req.Command]
	if !ok {
		return rejected(KindNotFound, "Unknown command.")
	}

	caller, _, err := r.users.ResolveOrCreate(req.TelegramID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		return r.mapError(req.Command, err)
	}

	var table *models.Table
	if req.TableID != 0 {
		table, err = r.tables.Get(req.TableID)
		if err != nil {
			return r.mapError(req.Command, err)
		}
	}

	if !authorized(caller, table, cmd.role) {
		return rejected(KindUnauthorized, "You are not authorized to use this command.")
	}

	payload, err := cmd.handler(&Context{
		Caller: caller,
		Table:  table,
		Args:   req.Args,
		Input:  req.Input,
	})
	if err != nil {
		return r.mapError(req.Command, err)
	}
	return completed(payload)
}

func authorized(caller *models.User, table *models.Table, role Role) bool {
	switch role {
	case RoleAny:
		return true
	case RoleMaster:
		return caller.IsMaster
	case RoleAdmin:
		return caller.IsAdmin
	case RoleTableMaster:
		if table == nil {
			return false
		}
		return table.MasterID == caller.ID || caller.IsAdmin
	default:
		return false
	}
}

// mapError converts service errors into user-facing rejections. Unknown
// errors are logged and reported as a generic internal failure; storage
// detail never reaches end users.
func (r *Router) mapError(cmd string, err error) Result {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return rejected(KindNotFound, "User not found.")
	case errors.Is(err, services.ErrTableNotFound):
		return rejected(KindNotFound, "Table not found.")
	case errors.Is(err, services.ErrInvalidInput):
		return rejected(KindInvalidInput, "Invalid input.")
	case errors.Is(err, services.ErrUnauthorized):
		return rejected(KindUnauthorized, "You are not authorized to use this command.")
	case errors.Is(err, services.ErrTableClosed):
		return rejected(KindTableClosed, "This table is closed.")
	case errors.Is(err, services.ErrTableFull):
		return rejected(KindTableFull, "This table is full.")
	case errors.Is(err, services.ErrCapacityConflict):
		return rejected(KindCapacityConflict, "Max players cannot go below the current number of registered players.")
	case errors.Is(err, services.ErrNotRegistered):
		return rejected(KindNotRegistered, "You are not registered for this table.")
	case errors.Is(err, services.ErrAlreadyRegistered):
		return rejected(KindInvalidInput, "You are already registered for this table.")
	default:
		log.Printf("[router] %s: %v", cmd, err)
		return rejected(KindInternal, "Something went wrong. Please try again later.")
	}
}
