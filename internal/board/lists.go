package board

import (
	"regexp"
	"strings"

	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

var colorHex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CreateList appends a list to the current board
func (e *Engine) CreateList(title string) (*models.List, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	board, ok := e.boards[e.currentBoardID]
	if !ok {
		return nil, notFound("createList", "board", e.currentBoardID)
	}

	id := types.ListID(e.allocate("l", func(s string) bool {
		_, taken := e.lists[types.ListID(s)]
		return taken
	}))
	list := &models.List{
		ID:       id,
		BoardID:  board.ID,
		Title:    title,
		CardIDs:  []types.CardID{},
		Position: len(board.ListIDs),
	}
	e.lists[id] = list
	board.ListIDs = append(board.ListIDs, id)

	e.publish(events.NewBoardUpdated(board.ID, map[string]any{
		events.ChangeListIDs:       append([]types.ListID{}, board.ListIDs...),
		events.ChangeCreatedListID: id,
	}))
	return list.Clone(), nil
}

// RenameBoard changes a board's display name
func (e *Engine) RenameBoard(boardID types.BoardID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	board, ok := e.boards[boardID]
	if !ok {
		return notFound("renameBoard", "board", boardID)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return invalidArgument("renameBoard", "board name cannot be empty")
	}
	board.Name = name

	e.publish(events.NewBoardUpdated(boardID, map[string]any{events.ChangeName: name}))
	return nil
}

// CreateLabel registers a label that cards can reference
func (e *Engine) CreateLabel(name, color string) (*models.Label, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("createLabel", "label name cannot be empty")
	}
	if !colorHex.MatchString(color) {
		return nil, invalidArgument("createLabel", "color must be #RRGGBB, got %q", color)
	}

	id := types.LabelID(e.allocate("lb", func(s string) bool {
		_, taken := e.labels[types.LabelID(s)]
		return taken
	}))
	label := &models.Label{ID: id, Name: name, Color: color}
	e.labels[id] = label

	e.publish(events.NewBoardUpdated(e.currentBoardID, map[string]any{events.ChangeLabelID: id}))
	copied := *label
	return &copied, nil
}
