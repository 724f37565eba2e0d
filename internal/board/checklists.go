package board

import (
	"strings"

	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

const defaultChecklistTitle = "Checklist"

// AddChecklist attaches an empty checklist to a card
func (e *Engine) AddChecklist(cardID types.CardID, title string) (*models.Checklist, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, ok := e.cards[cardID]
	if !ok {
		return nil, notFound("addChecklist", "card", cardID)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultChecklistTitle
	}

	id := types.ChecklistID(e.allocate("cl", func(s string) bool {
		return findChecklist(card, types.ChecklistID(s)) != nil
	}))
	cl := &models.Checklist{ID: id, Title: title, Items: []*models.ChecklistItem{}}
	card.Checklists = append(card.Checklists, cl)

	e.publishChecklist(card)
	return cl.Clone(), nil
}

// AddChecklistItem appends an unchecked item to a checklist
func (e *Engine) AddChecklistItem(cardID types.CardID, checklistID types.ChecklistID, text string) (*models.ChecklistItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, cl, err := e.checklist("addChecklistItem", cardID, checklistID)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidArgument("addChecklistItem", "item text cannot be empty")
	}

	id := types.ChecklistItemID(e.allocate("ci", func(s string) bool {
		return findItem(cl, types.ChecklistItemID(s)) != nil
	}))
	item := &models.ChecklistItem{ID: id, Text: text}
	cl.Items = append(cl.Items, item)

	e.publishChecklist(card)
	copied := *item
	return &copied, nil
}

// ToggleChecklistItem flips an item's done flag and returns the new value
func (e *Engine) ToggleChecklistItem(cardID types.CardID, checklistID types.ChecklistID, itemID types.ChecklistItemID) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, cl, err := e.checklist("toggleChecklistItem", cardID, checklistID)
	if err != nil {
		return false, err
	}
	item := findItem(cl, itemID)
	if item == nil {
		return false, notFound("toggleChecklistItem", "checklist item", itemID)
	}
	item.Done = !item.Done

	e.publishChecklist(card)
	return item.Done, nil
}

// AddComment appends a comment to a card
func (e *Engine) AddComment(cardID types.CardID, authorID types.UserID, text string) (*models.Comment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, ok := e.cards[cardID]
	if !ok {
		return nil, notFound("addComment", "card", cardID)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidArgument("addComment", "comment text cannot be empty")
	}

	id := types.CommentID(e.allocate("cm", func(s string) bool {
		for _, c := range card.Comments {
			if string(c.ID) == s {
				return true
			}
		}
		return false
	}))
	comment := &models.Comment{ID: id, AuthorID: authorID, Text: text, CreatedAt: e.now().UTC()}
	card.Comments = append(card.Comments, comment)

	e.publish(events.NewCardUpdated(e.boardOf(e.lists[card.ListID]), cardID, map[string]any{
		KeyComment: id,
	}).WithStatus(card.Status, card.Status))
	copied := *comment
	return &copied, nil
}

func (e *Engine) checklist(op string, cardID types.CardID, checklistID types.ChecklistID) (*models.Card, *models.Checklist, error) {
	card, ok := e.cards[cardID]
	if !ok {
		return nil, nil, notFound(op, "card", cardID)
	}
	cl := findChecklist(card, checklistID)
	if cl == nil {
		return nil, nil, notFound(op, "checklist", checklistID)
	}
	return card, cl, nil
}

func (e *Engine) publishChecklist(card *models.Card) {
	completed, total := card.ChecklistProgress()
	e.publish(events.NewChecklistUpdated(e.boardOf(e.lists[card.ListID]), events.ChecklistUpdated{
		CardID:    card.ID,
		Completed: completed,
		Total:     total,
	}))
}

func findChecklist(card *models.Card, id types.ChecklistID) *models.Checklist {
	for _, cl := range card.Checklists {
		if cl.ID == id {
			return cl
		}
	}
	return nil
}

func findItem(cl *models.Checklist, id types.ChecklistItemID) *models.ChecklistItem {
	for _, item := range cl.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}
