package cli

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// DueDateLayout is the accepted --due format
const DueDateLayout = "2006-01-02"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// AddOutputFlags registers the agent-friendly --json and --quiet flags
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")
}

// Formatter builds the OutputFormatter for cmd from its output flags
func Formatter(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return FormatterFromFlags(jsonOutput, quietMode)
}

// MarkRequired marks flags as required, logging programmer errors
func MarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			slog.Error("failed to mark flag as required", "flag", name, "error", err)
		}
	}
}

// CloseQuietly closes the CLI, logging any error
func CloseQuietly(c *CLI) {
	if err := c.Close(); err != nil {
		slog.Error("failed to close CLI", "error", err)
	}
}

// ValidateColorHex validates that a color string is in valid hex format #RRGGBB
func ValidateColorHex(color string) error {
	if !hexColor.MatchString(color) {
		return fmt.Errorf("%w: color must be in hex format #RRGGBB (e.g., #FF0000), got: %s",
			board.ErrInvalidArgument, color)
	}
	return nil
}

// ParseStatus maps a status string to a CardStatus (case-insensitive)
func ParseStatus(s string) (models.CardStatus, error) {
	for _, status := range models.AllStatuses {
		if strings.EqualFold(string(status), s) {
			return status, nil
		}
	}
	names := make([]string, len(models.AllStatuses))
	for i, status := range models.AllStatuses {
		names[i] = string(status)
	}
	return "", fmt.Errorf("%w: invalid status '%s' (must be: %s)",
		board.ErrInvalidArgument, s, strings.Join(names, ", "))
}

// ParseProvider maps a provider string to a Provider (case-insensitive)
func ParseProvider(s string) (models.Provider, error) {
	p := models.Provider(strings.ToLower(s))
	if s == "" || !p.IsValid() {
		return "", fmt.Errorf("%w: invalid provider '%s' (must be: openai, dust, aci)",
			board.ErrInvalidArgument, s)
	}
	return p, nil
}

// ParseDueDate parses a YYYY-MM-DD date as midnight UTC
func ParseDueDate(s string) (time.Time, error) {
	due, err := time.Parse(DueDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due date must be YYYY-MM-DD, got: %s",
			board.ErrInvalidArgument, s)
	}
	return due.UTC(), nil
}

// FindList resolves a list by id or case-insensitive title
func FindList(lists []*models.List, ref string) (*models.List, error) {
	for _, l := range lists {
		if string(l.ID) == ref {
			return l, nil
		}
	}
	for _, l := range lists {
		if strings.EqualFold(l.Title, ref) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: list '%s' not found", board.ErrNotFound, ref)
}

// FormatAvailableLists formats list names for suggestions
func FormatAvailableLists(lists []*models.List) string {
	names := make([]string, len(lists))
	for i, l := range lists {
		names[i] = fmt.Sprintf("%s (%s)", l.Title, l.ID)
	}
	return strings.Join(names, ", ")
}

// ListTitle returns the title of the list with id, or the id itself
func ListTitle(lists []*models.List, id types.ListID) string {
	for _, l := range lists {
		if l.ID == id {
			return l.Title
		}
	}
	return string(id)
}
