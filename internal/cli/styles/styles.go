package styles

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/kanbot/internal/config/colors"
	"github.com/thenoetrevino/kanbot/internal/models"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	ListStyle lipgloss.Style
	CardWidth = 80

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Status:", "List:"
	ValueStyle    lipgloss.Style // For field values
	SectionStyle  lipgloss.Style // For section headers like "Description", "Checklists"
	NewBadgeStyle lipgloss.Style

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style

	scheme colors.ColorScheme
)

func init() {
	Init(*colors.Default())
}

// Init initializes all CLI styles with the given color scheme
func Init(c colors.ColorScheme) {
	c.ApplyDefaults()
	scheme = c

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(c.CardBorder)).
		Padding(1, 2).
		Width(CardWidth)

	ListStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(c.ListBorder)).
		Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Accent)).
		Bold(true).
		MarginTop(1)

	NewBadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.NewBadge))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Success))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Error))

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Warning))
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// ColoredText renders text with a hex color
func ColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// RenderLabelChip renders a label as "[name]" with the label's color
func RenderLabelChip(label *models.Label) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(label.Color)).
		Bold(true).
		Render("[" + label.Name + "]")
}

// RenderStatus renders a card status with its semantic color
func RenderStatus(status models.CardStatus) string {
	switch status {
	case "":
		return SubtitleStyle.Render(string(models.StatusIdle))
	case models.StatusSucceeded:
		return SuccessStyle.Render(string(status))
	case models.StatusFailed:
		return ErrorStyle.Render(string(status))
	case models.StatusQueued, models.StatusRunning, models.StatusRequiresAction:
		return WarningStyle.Render(string(status))
	default:
		return SubtitleStyle.Render(string(status))
	}
}

// RenderCardLine renders a one-line card summary
// Format: "c_1a2b3c4d  Title  [status] ●"
func RenderCardLine(card *models.Card) string {
	line := fmt.Sprintf("%s  %s", SubtitleStyle.Render(string(card.ID)), ValueStyle.Render(card.Title))
	if card.Status != "" {
		line += "  " + RenderStatus(card.Status)
	}
	if done, total := card.ChecklistProgress(); total > 0 {
		line += "  " + SubtitleStyle.Render(fmt.Sprintf("%d/%d", done, total))
	}
	if card.IsNew {
		line += " " + NewBadgeStyle.Render("●")
	}
	return line
}

// RenderList renders a list header and its card lines in a bordered box
func RenderList(list *models.List, cards []*models.Card) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(list.Title))
	b.WriteString(" " + SubtitleStyle.Render(fmt.Sprintf("(%s, %d)", list.ID, len(cards))))
	for _, card := range cards {
		b.WriteString("\n" + RenderCardLine(card))
	}
	if len(cards) == 0 {
		b.WriteString("\n" + SubtitleStyle.Render("no cards"))
	}
	return ListStyle.Render(b.String())
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}

// Scheme returns the active color scheme
func Scheme() colors.ColorScheme {
	return scheme
}
