package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/marcotondi/lfg-bot/internal/services"

	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	tables *services.TableService
	regs   *services.RegistrationService
	notify *services.NotifyService
}

func NewTableHandler(tables *services.TableService, regs *services.RegistrationService, notify *services.NotifyService) *TableHandler {
	return &TableHandler{tables: tables, regs: regs, notify: notify}
}

func (h *TableHandler) ListTables(c *gin.Context) {
	filter := services.TableFilter{
		Game: c.Query("game"),
		Type: c.Query("type"),
	}
	if master := c.Query("master"); master != "" {
		id, err := strconv.ParseUint(master, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid master id"})
			return
		}
		filter.MasterID = uint(id)
	}

	tables, err := h.tables.ListActive(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list tables"})
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *TableHandler) GetTable(c *gin.Context) {
	tableID, ok := parseID(c)
	if !ok {
		return
	}

	table, err := h.tables.Get(tableID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
		return
	}

	occupancy, _ := h.regs.Occupancy(tableID)
	c.JSON(http.StatusOK, gin.H{
		"table":     table,
		"occupancy": occupancy,
	})
}

func (h *TableHandler) GetRoster(c *gin.Context) {
	tableID, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.tables.Get(tableID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
		return
	}

	roster, err := h.regs.Roster(tableID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load roster"})
		return
	}
	c.JSON(http.StatusOK, roster)
}

// CancelTable deactivates a table from the admin dashboard; registered
// players get the critical cancellation notice.
func (h *TableHandler) CancelTable(c *gin.Context) {
	tableID, ok := parseID(c)
	if !ok {
		return
	}

	table, err := h.tables.Get(tableID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
		return
	}

	affected, err := h.tables.Deactivate(tableID, "cancelled via admin api")
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to cancel table"})
		return
	}

	h.notify.Publish(services.Event{
		Type:     services.EventTableCancelled,
		Table:    table,
		Affected: affected,
	})

	c.JSON(http.StatusOK, gin.H{"cancelled": true, "notified": len(affected)})
}

type UpdateTableRequest struct {
	Description *string `json:"description"`
	Image       *string `json:"image"`
	MaxPlayers  *int    `json:"max_players"`
	NumSessions *int    `json:"num_sessions"`
}

func (h *TableHandler) UpdateTable(c *gin.Context) {
	tableID, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		return
	}

	table, err := h.tables.UpdateFields(tableID, services.TablePatch{
		Description: req.Description,
		Image:       req.Image,
		MaxPlayers:  req.MaxPlayers,
		NumSessions: req.NumSessions,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTableNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
		case errors.Is(err, services.ErrCapacityConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "max players below current occupancy"})
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update table"})
		}
		return
	}
	c.JSON(http.StatusOK, table)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid table id"})
		return 0, false
	}
	return uint(id), true
}
