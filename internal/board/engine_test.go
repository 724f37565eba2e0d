package board

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// ============================================================================
// TEST CASES - DEFAULT STATE
// ============================================================================

func TestNew_SeedsDefaultBoard(t *testing.T) {
	e, pub := newTestEngine(t)

	b, err := e.CurrentBoard()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultBoardID, b.ID)
	assert.Equal(t, "My Board", b.Name)
	assert.Equal(t, []types.ListID{"l1", "l2", "l3", "l4"}, b.ListIDs)

	lists, err := e.Lists(b.ID)
	require.NoError(t, err)
	titles := make([]string, 0, len(lists))
	for i, l := range lists {
		assert.Equal(t, i, l.Position)
		assert.Empty(t, l.CardIDs)
		titles = append(titles, l.Title)
	}
	assert.Equal(t, []string{"Backlog", "To Do", "In Progress", "Done"}, titles)
	assert.Empty(t, pub.all(), "seeding must not emit events")
	require.NoError(t, e.Verify())
}

func TestReset(t *testing.T) {
	e, _ := newTestEngine(t)
	createCard(t, e, types.BacklogListID, "gone after reset")
	_, err := e.CreateList("Extra")
	require.NoError(t, err)

	e.Reset()

	b, err := e.CurrentBoard()
	require.NoError(t, err)
	assert.Len(t, b.ListIDs, 4)
	assert.Empty(t, cardIDs(t, e, types.BacklogListID))
}

// ============================================================================
// TEST CASES - LISTS
// ============================================================================

func TestCreateList(t *testing.T) {
	e, pub := newTestEngine(t)

	list, err := e.CreateList("Review")
	require.NoError(t, err)
	assert.Equal(t, types.ListID("l_1"), list.ID)
	assert.Equal(t, 4, list.Position)
	assert.Equal(t, types.DefaultBoardID, list.BoardID)

	b, err := e.CurrentBoard()
	require.NoError(t, err)
	assert.Equal(t, list.ID, b.ListIDs[len(b.ListIDs)-1])

	ev := pub.last(t)
	assert.Equal(t, events.EventBoardUpdated, ev.Type)
	require.NotNil(t, ev.BoardUpdated)
	assert.Equal(t, list.ID, ev.BoardUpdated.Changes[events.ChangeCreatedListID])
	assert.Equal(t, b.ListIDs, ev.BoardUpdated.Changes[events.ChangeListIDs])
}

func TestCreateList_EmptyTitleAccepted(t *testing.T) {
	e, _ := newTestEngine(t)

	list, err := e.CreateList("")
	require.NoError(t, err)
	assert.Equal(t, "", list.Title)
}

func TestCreateList_SkipsTakenIDs(t *testing.T) {
	calls := 0
	gen := func(prefix string) string {
		calls++
		if calls == 1 {
			return "l1" // collides with Backlog
		}
		return "l_fresh"
	}
	e, _ := newTestEngine(t, WithIDGenerator(gen))

	list, err := e.CreateList("Fresh")
	require.NoError(t, err)
	assert.Equal(t, types.ListID("l_fresh"), list.ID)
}

// ============================================================================
// TEST CASES - CREATE CARD
// ============================================================================

func TestCreateCard_InNewList(t *testing.T) {
	e, pub := newTestEngine(t)
	backlog, err := e.CreateList("Backlog")
	require.NoError(t, err)

	card, err := e.CreateCard(backlog.ID, "Write spec", "")
	require.NoError(t, err)

	assert.Equal(t, 0, card.Position)
	assert.Equal(t, backlog.ID, card.ListID)
	assert.True(t, card.IsNew)
	assert.Equal(t, models.CardStatus(""), card.Status)

	ev := pub.last(t)
	assert.Equal(t, events.EventCardCreated, ev.Type)
	assert.Equal(t, events.CardCreated{
		ListID:   backlog.ID,
		CardID:   card.ID,
		Title:    "Write spec",
		Position: 0,
	}, *ev.CardCreated)
}

func TestCreateCard_AppendsAtEnd(t *testing.T) {
	e, _ := newTestEngine(t)

	c1 := createCard(t, e, types.BacklogListID, "one")
	c2 := createCard(t, e, types.BacklogListID, "two")
	c3 := createCard(t, e, types.BacklogListID, "three")

	assert.Equal(t, []types.CardID{c1.ID, c2.ID, c3.ID}, cardIDs(t, e, types.BacklogListID))
	assert.Equal(t, 2, c3.Position)
}

func TestCreateCard_TitleNormalized(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"trimmed", "  hello  ", "hello"},
		{"empty", "", UntitledCard},
		{"whitespace", " \t\n", UntitledCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			card := createCard(t, e, types.BacklogListID, tt.title)
			assert.Equal(t, tt.want, card.Title)
		})
	}
}

func TestCreateCard_UnknownList(t *testing.T) {
	e, pub := newTestEngine(t)

	_, err := e.CreateCard("nope", "x", "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "createCard", engErr.Op)
	assert.Equal(t, "nope", engErr.ID)
	assert.Empty(t, pub.all())
}

// ============================================================================
// TEST CASES - MOVE CARD
// ============================================================================

func TestMoveCard_ReorderWithinList(t *testing.T) {
	e, pub := newTestEngine(t)
	card1 := createCard(t, e, types.BacklogListID, "card1")
	card2 := createCard(t, e, types.BacklogListID, "card2")

	require.NoError(t, e.MoveCard(card2.ID, types.BacklogListID, 0))

	assert.Equal(t, []types.CardID{card2.ID, card1.ID}, cardIDs(t, e, types.BacklogListID))
	got1, _ := e.Card(card1.ID)
	got2, _ := e.Card(card2.ID)
	assert.Equal(t, 1, got1.Position)
	assert.Equal(t, 0, got2.Position)

	ev := pub.last(t)
	assert.Equal(t, events.EventCardMoved, ev.Type)
	assert.Equal(t, events.CardMoved{
		CardID:     card2.ID,
		FromListID: types.BacklogListID,
		ToListID:   types.BacklogListID,
		Position:   0,
	}, *ev.CardMoved)
}

func TestMoveCard_WithinListClampsToLastIndex(t *testing.T) {
	e, _ := newTestEngine(t)
	a := createCard(t, e, types.BacklogListID, "a")
	b := createCard(t, e, types.BacklogListID, "b")
	c := createCard(t, e, types.BacklogListID, "c")

	require.NoError(t, e.MoveCard(a.ID, types.BacklogListID, 42))
	assert.Equal(t, []types.CardID{b.ID, c.ID, a.ID}, cardIDs(t, e, types.BacklogListID))

	require.NoError(t, e.MoveCard(a.ID, types.BacklogListID, -5))
	assert.Equal(t, []types.CardID{a.ID, b.ID, c.ID}, cardIDs(t, e, types.BacklogListID))
	require.NoError(t, e.Verify())
}

func TestMoveCard_AcrossListsClampsToLength(t *testing.T) {
	e, pub := newTestEngine(t)
	for _, title := range []string{"x", "y", "z"} {
		createCard(t, e, types.DoneListID, title)
	}
	mover := createCard(t, e, types.BacklogListID, "mover")
	stays := createCard(t, e, types.BacklogListID, "stays")

	require.NoError(t, e.MoveCard(mover.ID, types.DoneListID, 999))

	done := cardIDs(t, e, types.DoneListID)
	require.Len(t, done, 4)
	assert.Equal(t, mover.ID, done[3])

	moved, err := e.Card(mover.ID)
	require.NoError(t, err)
	assert.Equal(t, types.DoneListID, moved.ListID)
	assert.Equal(t, 3, moved.Position)

	// Source list re-stamped
	left, err := e.Card(stays.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, left.Position)
	assert.Equal(t, []types.CardID{stays.ID}, cardIDs(t, e, types.BacklogListID))

	ev := pub.last(t)
	assert.Equal(t, types.BacklogListID, ev.CardMoved.FromListID)
	assert.Equal(t, types.DoneListID, ev.CardMoved.ToListID)
	assert.Equal(t, 3, ev.CardMoved.Position)
	require.NoError(t, e.Verify())
}

func TestMoveCard_IntoMiddle(t *testing.T) {
	e, _ := newTestEngine(t)
	x := createCard(t, e, types.DoneListID, "x")
	y := createCard(t, e, types.DoneListID, "y")
	m := createCard(t, e, types.BacklogListID, "m")

	require.NoError(t, e.MoveCard(m.ID, types.DoneListID, 1))
	assert.Equal(t, []types.CardID{x.ID, m.ID, y.ID}, cardIDs(t, e, types.DoneListID))
	require.NoError(t, e.Verify())
}

func TestMoveCard_NotFound(t *testing.T) {
	e, pub := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")
	before := len(pub.all())

	err := e.MoveCard("missing", types.DoneListID, 0)
	assert.True(t, IsNotFound(err))

	err = e.MoveCard(card.ID, "missing", 0)
	assert.True(t, IsNotFound(err))

	got, _ := e.Card(card.ID)
	assert.Equal(t, types.BacklogListID, got.ListID)
	assert.Len(t, pub.all(), before, "failed moves must not emit")
}

func TestMoveCard_AwaitingConfigStartsOnboarding(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "needs provider")

	_, pending := e.OnboardingCard()
	assert.False(t, pending)

	require.NoError(t, e.MoveCard(card.ID, types.TodoListID, 0))
	id, pending := e.OnboardingCard()
	assert.True(t, pending)
	assert.Equal(t, card.ID, id)

	e.ClearOnboarding()
	_, pending = e.OnboardingCard()
	assert.False(t, pending)

	// Reordering inside the stage does not restart onboarding
	require.NoError(t, e.MoveCard(card.ID, types.TodoListID, 0))
	_, pending = e.OnboardingCard()
	assert.False(t, pending)
}

func TestMoveCard_CustomStages(t *testing.T) {
	e, _ := newTestEngine(t, WithStages(Stages{InProgress: types.DoneListID, AwaitingConfig: types.InProgressListID}))
	card := createCard(t, e, types.BacklogListID, "a")

	require.NoError(t, e.MoveCard(card.ID, types.TodoListID, 0))
	_, pending := e.OnboardingCard()
	assert.False(t, pending)

	require.NoError(t, e.MoveCard(card.ID, types.InProgressListID, 0))
	_, pending = e.OnboardingCard()
	assert.True(t, pending)
}

func TestMoveCard_RoundTripRestoresMembership(t *testing.T) {
	e, _ := newTestEngine(t)
	createCard(t, e, types.BacklogListID, "before")
	card := createCard(t, e, types.BacklogListID, "X")
	createCard(t, e, types.BacklogListID, "after")
	original := card.Position

	require.NoError(t, e.MoveCard(card.ID, types.DoneListID, 0))
	require.NoError(t, e.MoveCard(card.ID, types.BacklogListID, original))

	got, err := e.Card(card.ID)
	require.NoError(t, err)
	assert.Equal(t, types.BacklogListID, got.ListID)
	assert.Contains(t, cardIDs(t, e, types.BacklogListID), card.ID)
	assert.Equal(t, original, got.Position)
	require.NoError(t, e.Verify())
}

// ============================================================================
// TEST CASES - UPDATE CARD
// ============================================================================

func TestUpdateCard_InProgressEditRequiresAction(t *testing.T) {
	e, pub := newTestEngine(t)
	card := createCard(t, e, types.InProgressListID, "running job")
	require.NoError(t, e.UpdateCard(card.ID, CardChanges{Status: ptr(models.StatusSucceeded)}))

	got, _ := e.Card(card.ID)
	require.Equal(t, models.StatusSucceeded, got.Status)

	require.NoError(t, e.UpdateCard(card.ID, CardChanges{Description: ptr("new text")}))

	got, _ = e.Card(card.ID)
	assert.Equal(t, models.StatusRequiresAction, got.Status)
	assert.Equal(t, "new text", got.Description)

	ev := pub.last(t)
	assert.Equal(t, events.EventCardUpdated, ev.Type)
	assert.Equal(t, map[string]any{KeyDescription: "new text"}, ev.CardUpdated.Changes)
	assert.Equal(t, models.StatusSucceeded, ev.CardUpdated.PreviousStatus)
	assert.Equal(t, models.StatusRequiresAction, ev.CardUpdated.Status)
}

func TestUpdateCard_InProgressOverridesSubmittedStatus(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.InProgressListID, "a")

	require.NoError(t, e.UpdateCard(card.ID, CardChanges{
		Title:  ptr("renamed"),
		Status: ptr(models.StatusSucceeded),
	}))

	got, _ := e.Card(card.ID)
	assert.Equal(t, models.StatusRequiresAction, got.Status)
}

func TestUpdateCard_OutsideInProgressKeepsStatus(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")
	require.NoError(t, e.UpdateCard(card.ID, CardChanges{Status: ptr(models.StatusSucceeded)}))

	require.NoError(t, e.UpdateCard(card.ID, CardChanges{Description: ptr("edited")}))

	got, _ := e.Card(card.ID)
	assert.Equal(t, models.StatusSucceeded, got.Status)
}

func TestUpdateCard_BlankTitleBecomesUntitled(t *testing.T) {
	e, pub := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "named")

	require.NoError(t, e.UpdateCard(card.ID, CardChanges{Title: ptr("   ")}))

	got, _ := e.Card(card.ID)
	assert.Equal(t, UntitledCard, got.Title)
	// The event carries the value as submitted
	assert.Equal(t, "   ", pub.last(t).CardUpdated.Changes[KeyTitle])
}

func TestUpdateCard_Fields(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")
	bug, err := e.CreateLabel("bug", "#FF0000")
	require.NoError(t, err)
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, e.UpdateCard(card.ID, CardChanges{
		Labels:   &[]types.LabelID{bug.ID, bug.ID},
		Members:  &[]types.UserID{"ana", "bo"},
		DueDate:  &due,
		Provider: ptr(models.ProviderDust),
	}))

	got, _ := e.Card(card.ID)
	assert.Equal(t, []types.LabelID{bug.ID}, got.Labels)
	assert.Equal(t, []types.UserID{"ana", "bo"}, got.Members)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, models.ProviderDust, got.Provider)

	require.NoError(t, e.UpdateCard(card.ID, CardChanges{ClearDueDate: true}))
	got, _ = e.Card(card.ID)
	assert.Nil(t, got.DueDate)
}

func TestUpdateCard_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		changes  CardChanges
		notFound bool
	}{
		{"unknown status", CardChanges{Title: ptr("changed"), Status: ptr(models.CardStatus("paused"))}, false},
		{"unknown provider", CardChanges{Title: ptr("changed"), Provider: ptr(models.Provider("acme"))}, false},
		{"unknown label", CardChanges{Title: ptr("changed"), Labels: &[]types.LabelID{"lb_missing"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, pub := newTestEngine(t)
			card := createCard(t, e, types.BacklogListID, "original")
			before := len(pub.all())

			err := e.UpdateCard(card.ID, tt.changes)
			require.Error(t, err)
			if tt.notFound {
				assert.True(t, IsNotFound(err))
			} else {
				assert.True(t, IsInvalidArgument(err))
			}

			got, _ := e.Card(card.ID)
			assert.Equal(t, "original", got.Title, "rejected update must not touch state")
			assert.Len(t, pub.all(), before)
		})
	}
}

func TestUpdateCard_UnknownCard(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.True(t, IsNotFound(e.UpdateCard("nope", CardChanges{Title: ptr("x")})))
}

func TestCardChanges_Map(t *testing.T) {
	assert.True(t, CardChanges{}.IsEmpty())

	m := CardChanges{Title: ptr("t"), ClearDueDate: true, DueDate: &fixedNow}.Map()
	assert.Equal(t, "t", m[KeyTitle])
	v, ok := m[KeyDueDate]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.NotContains(t, m, KeyStatus)
}

// ============================================================================
// TEST CASES - NEW FLAG AND ARCHIVE
// ============================================================================

func TestMarkCardNotNew_Idempotent(t *testing.T) {
	e, pub := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "fresh")
	before := len(pub.all())

	require.NoError(t, e.MarkCardNotNew(card.ID))
	got, _ := e.Card(card.ID)
	assert.False(t, got.IsNew)

	require.NoError(t, e.MarkCardNotNew(card.ID))
	got, _ = e.Card(card.ID)
	assert.False(t, got.IsNew)

	assert.Len(t, pub.all(), before, "markCardNotNew emits nothing")
	assert.True(t, IsNotFound(e.MarkCardNotNew("missing")))
}

func TestArchiveCard(t *testing.T) {
	e, pub := newTestEngine(t)
	a := createCard(t, e, types.BacklogListID, "a")
	b := createCard(t, e, types.BacklogListID, "b")
	c := createCard(t, e, types.BacklogListID, "c")

	require.NoError(t, e.ArchiveCard(b.ID))

	_, err := e.Card(b.ID)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, []types.CardID{a.ID, c.ID}, cardIDs(t, e, types.BacklogListID))

	gotC, _ := e.Card(c.ID)
	assert.Equal(t, 1, gotC.Position, "siblings are re-stamped")

	ev := pub.last(t)
	assert.Equal(t, events.EventBoardUpdated, ev.Type)
	assert.Equal(t, b.ID, ev.BoardUpdated.Changes[events.ChangeArchivedCardID])
	assert.Equal(t, types.BacklogListID, ev.BoardUpdated.Changes[events.ChangeListID])
	assert.Equal(t, b.ID, ev.CardID())
	require.NoError(t, e.Verify())
}

func TestArchiveCard_ClearsOnboarding(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")
	require.NoError(t, e.MoveCard(card.ID, types.TodoListID, 0))

	require.NoError(t, e.ArchiveCard(card.ID))
	_, pending := e.OnboardingCard()
	assert.False(t, pending)
}

func TestArchiveCard_NotFound(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")
	require.NoError(t, e.ArchiveCard(card.ID))

	assert.True(t, IsNotFound(e.ArchiveCard(card.ID)))
}

// ============================================================================
// TEST CASES - STATUS LIFECYCLE
// ============================================================================

func TestSetCardStatus_Lifecycle(t *testing.T) {
	e, pub := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "job")

	for _, s := range []models.CardStatus{
		models.StatusQueued, models.StatusRunning, models.StatusFailed, models.StatusQueued,
		models.StatusRunning, models.StatusSucceeded,
	} {
		require.NoError(t, e.SetCardStatus(card.ID, s), "to %s", s)
		assert.Equal(t, map[string]any{KeyStatus: s}, pub.last(t).CardUpdated.Changes)
	}

	got, _ := e.Card(card.ID)
	assert.Equal(t, models.StatusSucceeded, got.Status)
}

func TestSetCardStatus_Rejected(t *testing.T) {
	tests := []struct {
		name string
		from []models.CardStatus
		to   models.CardStatus
	}{
		{"unset to running", nil, models.StatusRunning},
		{"unset to succeeded", nil, models.StatusSucceeded},
		{"queued to failed", []models.CardStatus{models.StatusQueued}, models.StatusFailed},
		{"running to queued", []models.CardStatus{models.StatusQueued, models.StatusRunning}, models.StatusQueued},
		{"unknown", nil, "paused"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			card := createCard(t, e, types.BacklogListID, "job")
			for _, s := range tt.from {
				require.NoError(t, e.SetCardStatus(card.ID, s))
			}
			err := e.SetCardStatus(card.ID, tt.to)
			assert.True(t, IsInvalidArgument(err), "got %v", err)
		})
	}
}

func TestRequeueCard(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.InProgressListID, "job")
	require.NoError(t, e.UpdateCard(card.ID, CardChanges{Title: ptr("edited")}))

	require.NoError(t, e.RequeueCard(card.ID))
	got, _ := e.Card(card.ID)
	assert.Equal(t, models.StatusQueued, got.Status)

	// Already queued
	assert.True(t, IsInvalidArgument(e.RequeueCard(card.ID)))
	assert.True(t, IsNotFound(e.RequeueCard("missing")))
}

// ============================================================================
// TEST CASES - CHECKLISTS, COMMENTS, LABELS, BOARD
// ============================================================================

func TestChecklists(t *testing.T) {
	e, pub := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")

	cl, err := e.AddChecklist(card.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Checklist", cl.Title)
	assert.Equal(t, events.ChecklistUpdated{CardID: card.ID, Completed: 0, Total: 0}, *pub.last(t).ChecklistUpdated)

	first, err := e.AddChecklistItem(card.ID, cl.ID, "write tests")
	require.NoError(t, err)
	_, err = e.AddChecklistItem(card.ID, cl.ID, "ship")
	require.NoError(t, err)
	assert.Equal(t, 2, pub.last(t).ChecklistUpdated.Total)

	done, err := e.ToggleChecklistItem(card.ID, cl.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, events.ChecklistUpdated{CardID: card.ID, Completed: 1, Total: 2}, *pub.last(t).ChecklistUpdated)

	done, err = e.ToggleChecklistItem(card.ID, cl.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, done)

	got, _ := e.Card(card.ID)
	completed, total := got.ChecklistProgress()
	assert.Equal(t, 0, completed)
	assert.Equal(t, 2, total)
}

func TestChecklists_Errors(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")
	cl, err := e.AddChecklist(card.ID, "steps")
	require.NoError(t, err)

	_, err = e.AddChecklist("missing", "x")
	assert.True(t, IsNotFound(err))
	_, err = e.AddChecklistItem(card.ID, "cl_missing", "x")
	assert.True(t, IsNotFound(err))
	_, err = e.AddChecklistItem(card.ID, cl.ID, "  ")
	assert.True(t, IsInvalidArgument(err))
	_, err = e.ToggleChecklistItem(card.ID, cl.ID, "ci_missing")
	assert.True(t, IsNotFound(err))
}

func TestAddComment(t *testing.T) {
	e, pub := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")

	comment, err := e.AddComment(card.ID, "ana", " looks good ")
	require.NoError(t, err)
	assert.Equal(t, "looks good", comment.Text)
	assert.Equal(t, types.UserID("ana"), comment.AuthorID)
	assert.Equal(t, fixedNow, comment.CreatedAt)
	assert.Equal(t, comment.ID, pub.last(t).CardUpdated.Changes[KeyComment])

	got, _ := e.Card(card.ID)
	require.Len(t, got.Comments, 1)

	_, err = e.AddComment(card.ID, "ana", "")
	assert.True(t, IsInvalidArgument(err))
}

func TestCreateLabel(t *testing.T) {
	e, pub := newTestEngine(t)

	label, err := e.CreateLabel(" urgent ", "#ff8800")
	require.NoError(t, err)
	assert.Equal(t, "urgent", label.Name)
	assert.Equal(t, label.ID, pub.last(t).BoardUpdated.Changes[events.ChangeLabelID])

	_, err = e.CreateLabel("bad", "orange")
	assert.True(t, IsInvalidArgument(err))
	_, err = e.CreateLabel("", "#000000")
	assert.True(t, IsInvalidArgument(err))

	_, err = e.CreateLabel("alpha", "#000000")
	require.NoError(t, err)
	labels := e.Labels()
	require.Len(t, labels, 2)
	assert.Equal(t, "alpha", labels[0].Name)
}

func TestRenameBoard(t *testing.T) {
	e, pub := newTestEngine(t)

	require.NoError(t, e.RenameBoard(types.DefaultBoardID, "Roadmap"))
	b, _ := e.CurrentBoard()
	assert.Equal(t, "Roadmap", b.Name)
	assert.Equal(t, "Roadmap", pub.last(t).BoardUpdated.Changes[events.ChangeName])

	assert.True(t, IsInvalidArgument(e.RenameBoard(types.DefaultBoardID, " ")))
	assert.True(t, IsNotFound(e.RenameBoard("b9", "x")))
}

// ============================================================================
// TEST CASES - COPIES AND SNAPSHOTS
// ============================================================================

func TestAccessorsReturnCopies(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")

	card.Title = "mutated"
	list, _ := e.List(types.BacklogListID)
	list.CardIDs = append(list.CardIDs, "bogus")
	b, _ := e.CurrentBoard()
	b.ListIDs = nil

	got, _ := e.Card(card.ID)
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, []types.CardID{card.ID}, cardIDs(t, e, types.BacklogListID))
	require.NoError(t, e.Verify())
}

func TestSnapshotRestore(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "persist me")
	require.NoError(t, e.MoveCard(card.ID, types.TodoListID, 0))
	_, err := e.CreateList("Extra")
	require.NoError(t, err)

	snap := e.Snapshot()

	other, pub := newTestEngine(t)
	require.NoError(t, other.Restore(snap))
	assert.Empty(t, pub.all(), "restore emits nothing")

	got, err := other.Card(card.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TodoListID, got.ListID)
	id, pending := other.OnboardingCard()
	assert.True(t, pending)
	assert.Equal(t, card.ID, id)

	// Snapshot is independent of both engines
	snap.Cards[card.ID].Title = "changed later"
	got, _ = other.Card(card.ID)
	assert.Equal(t, "persist me", got.Title)
	require.NoError(t, other.Verify())
}

func TestRestore_RejectsCorruptSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(s *Snapshot)
	}{
		{"wrong position", func(s *Snapshot) {
			for _, c := range s.Cards {
				c.Position = 7
			}
		}},
		{"card listed twice", func(s *Snapshot) {
			l := s.Lists[types.BacklogListID]
			l.CardIDs = append(l.CardIDs, l.CardIDs[0])
		}},
		{"card in two lists", func(s *Snapshot) {
			l := s.Lists[types.DoneListID]
			l.CardIDs = append(l.CardIDs, s.Lists[types.BacklogListID].CardIDs[0])
		}},
		{"orphan card", func(s *Snapshot) {
			s.Lists[types.BacklogListID].CardIDs = []types.CardID{}
		}},
		{"missing list", func(s *Snapshot) {
			delete(s.Lists, types.DoneListID)
		}},
		{"missing current board", func(s *Snapshot) {
			s.CurrentBoardID = "b9"
		}},
		{"dangling onboarding card", func(s *Snapshot) {
			s.OnboardCardID = "c_missing"
		}},
		{"null comment", func(s *Snapshot) {
			for _, c := range s.Cards {
				c.Comments = append(c.Comments, nil)
			}
		}},
		{"null checklist", func(s *Snapshot) {
			for _, c := range s.Cards {
				c.Checklists = append(c.Checklists, nil)
			}
		}},
		{"null checklist item", func(s *Snapshot) {
			for _, c := range s.Cards {
				c.Checklists = append(c.Checklists, &models.Checklist{ID: "cl_1", Items: []*models.ChecklistItem{nil}})
			}
		}},
		{"null label", func(s *Snapshot) {
			s.Labels["lb_1"] = nil
		}},
		{"null list entry", func(s *Snapshot) {
			s.Lists[types.DoneListID] = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			createCard(t, e, types.BacklogListID, "a")
			snap := e.Snapshot()
			tt.corrupt(snap)

			target, _ := newTestEngine(t)
			err := target.Restore(snap)
			require.ErrorIs(t, err, ErrCorruptState)

			// Target keeps its previous state
			require.NoError(t, target.Verify())
			assert.Empty(t, cardIDs(t, target, types.BacklogListID))
		})
	}
}

func TestRestore_NullCommentFromJSON(t *testing.T) {
	e, _ := newTestEngine(t)
	card := createCard(t, e, types.BacklogListID, "a")

	data, err := json.Marshal(e.Snapshot())
	require.NoError(t, err)
	// Splice a null comment into the stored form
	data = bytes.Replace(data, []byte(`"comments":[]`), []byte(`"comments":[null]`), 1)
	require.Contains(t, string(data), `"comments":[null]`)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	target, _ := newTestEngine(t)
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, target.Restore(&snap), ErrCorruptState)
	})
	_, err = target.Card(card.ID)
	assert.True(t, IsNotFound(err))
}

func TestRestore_RejectsVersion(t *testing.T) {
	e, _ := newTestEngine(t)
	snap := e.Snapshot()
	snap.Version = 99
	assert.True(t, IsInvalidArgument(e.Restore(snap)))
	assert.True(t, IsInvalidArgument(e.Restore(nil)))
}

// ============================================================================
// TEST CASES - INVARIANTS AND CONCURRENCY
// ============================================================================

func TestInvariants_RandomOperations(t *testing.T) {
	e, _ := newTestEngine(t)
	rng := rand.New(rand.NewPCG(1, 2))
	lists := []types.ListID{types.BacklogListID, types.TodoListID, types.InProgressListID, types.DoneListID}

	var live []types.CardID
	for i := 0; i < 500; i++ {
		switch op := rng.IntN(10); {
		case op < 4 || len(live) == 0:
			c := createCard(t, e, lists[rng.IntN(len(lists))], "card")
			live = append(live, c.ID)
		case op < 8:
			id := live[rng.IntN(len(live))]
			require.NoError(t, e.MoveCard(id, lists[rng.IntN(len(lists))], rng.IntN(20)-5))
		default:
			idx := rng.IntN(len(live))
			require.NoError(t, e.ArchiveCard(live[idx]))
			live = append(live[:idx], live[idx+1:]...)
		}
		require.NoError(t, e.Verify(), "after step %d", i)
	}

	total := 0
	for _, l := range lists {
		total += len(cardIDs(t, e, l))
	}
	assert.Equal(t, len(live), total)
}

func TestConcurrentOperations(t *testing.T) {
	e, pub := newTestEngine(t)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				c, err := e.CreateCard(types.BacklogListID, "c", "")
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, e.MoveCard(c.ID, types.DoneListID, 0))
			}
		}()
	}
	wg.Wait()

	require.NoError(t, e.Verify())
	assert.Len(t, cardIDs(t, e, types.DoneListID), 200)
	assert.Len(t, pub.all(), 400)
}

// ============================================================================
// TEST CASES - EVENT DELIVERY
// ============================================================================

func TestEvents_DeliveredAfterOperationReturns(t *testing.T) {
	bus := events.NewBus(nil)
	t.Cleanup(func() { _ = bus.Close() })
	e := New(WithPublisher(bus))

	gate := make(chan struct{})
	var seen []*models.Card
	bus.Subscribe("reader", func(_ context.Context, ev events.Event) error {
		<-gate
		// Reading the engine from an observer must not deadlock
		c, err := e.Card(ev.CardID())
		if err != nil {
			return err
		}
		seen = append(seen, c)
		return nil
	})

	card, err := e.CreateCard(types.BacklogListID, "deferred", "")
	require.NoError(t, err, "CreateCard returned while the observer was still blocked")
	close(gate)
	bus.Flush()

	require.Len(t, seen, 1)
	assert.Equal(t, card.ID, seen[0].ID)
}

func TestEvents_ObserverMayMutateEngine(t *testing.T) {
	bus := events.NewBus(nil)
	t.Cleanup(func() { _ = bus.Close() })
	e := New(WithPublisher(bus))

	bus.Subscribe("auto-seen", func(_ context.Context, ev events.Event) error {
		if ev.Type != events.EventCardCreated {
			return nil
		}
		return e.MarkCardNotNew(ev.CardCreated.CardID)
	})

	card, err := e.CreateCard(types.BacklogListID, "x", "")
	require.NoError(t, err)
	bus.Flush()

	got, err := e.Card(card.ID)
	require.NoError(t, err)
	assert.False(t, got.IsNew)
}

func TestEvents_CommitOrder(t *testing.T) {
	bus := events.NewBus(nil)
	t.Cleanup(func() { _ = bus.Close() })
	e := New(WithPublisher(bus))

	var mu sync.Mutex
	var got []events.EventType
	bus.Subscribe("recorder", func(_ context.Context, ev events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.Type)
		return nil
	})

	card, err := e.CreateCard(types.BacklogListID, "x", "")
	require.NoError(t, err)
	require.NoError(t, e.MoveCard(card.ID, types.DoneListID, 0))
	require.NoError(t, e.UpdateCard(card.ID, CardChanges{Title: ptr("y")}))
	require.NoError(t, e.ArchiveCard(card.ID))
	bus.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.EventType{
		events.EventCardCreated, events.EventCardMoved, events.EventCardUpdated, events.EventBoardUpdated,
	}, got)
}

func TestEvents_PublishFailureKeepsMutation(t *testing.T) {
	bus := events.NewBus(nil)
	require.NoError(t, bus.Close())
	e := New(WithPublisher(bus))

	card, err := e.CreateCard(types.BacklogListID, "still created", "")
	require.NoError(t, err)
	_, err = e.Card(card.ID)
	assert.NoError(t, err)
}
