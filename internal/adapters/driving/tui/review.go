package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
)

// KeyMap defines the review keybindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Accept  key.Binding
	Decline key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default review keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept"),
		),
		Decline: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "decline"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset all"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Review is the interactive change review model.
// It implements tea.Model for use with Bubbletea.
type Review struct {
	service driving.RedlineService
	ctx     context.Context
	styles  *Styles
	keys    *KeyMap

	session *domain.RedlineResult
	cursor  int
	err     error
	width   int
	height  int
}

// Ensure Review implements tea.Model.
var _ tea.Model = (*Review)(nil)

// NewReview creates a review model for the given session (empty ID
// means the latest session).
func NewReview(ctx context.Context, service driving.RedlineService, sessionID string) (*Review, error) {
	session, err := service.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return &Review{
		service: service,
		ctx:     ctx,
		styles:  DefaultStyles(),
		keys:    DefaultKeyMap(),
		session: session,
		width:   80,
		height:  24,
	}, nil
}

// Init initialises the model.
func (r *Review) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages.
func (r *Review) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, r.keys.Quit):
			return r, tea.Quit
		case key.Matches(msg, r.keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, r.keys.Down):
			if r.cursor < len(r.session.Changes)-1 {
				r.cursor++
			}
		case key.Matches(msg, r.keys.Accept):
			r.decide(func(sessionID, changeID string) error {
				return r.service.Accept(r.ctx, sessionID, changeID)
			})
		case key.Matches(msg, r.keys.Decline):
			r.decide(func(sessionID, changeID string) error {
				return r.service.Decline(r.ctx, sessionID, changeID)
			})
		case key.Matches(msg, r.keys.Reset):
			r.err = r.service.ResetAll(r.ctx, r.session.ID)
			r.reload()
		}
	}
	return r, nil
}

// decide applies a decision to the change under the cursor and reloads.
func (r *Review) decide(fn func(sessionID, changeID string) error) {
	if r.cursor >= len(r.session.Changes) {
		return
	}
	r.err = fn(r.session.ID, r.session.Changes[r.cursor].ID)
	r.reload()
}

func (r *Review) reload() {
	session, err := r.service.Get(r.ctx, r.session.ID)
	if err != nil {
		r.err = err
		return
	}
	r.session = session
}

// View renders the review screen.
func (r *Review) View() string {
	var sb strings.Builder

	pending, accepted, declined := r.session.Counts()
	sb.WriteString(r.styles.Title.Render(fmt.Sprintf("Reviewing %s", r.session.FileName)))
	sb.WriteString("\n")
	sb.WriteString(r.styles.Muted.Render(fmt.Sprintf("%d changes · %d accepted · %d declined · %d pending",
		len(r.session.Changes), accepted, declined, pending)))
	sb.WriteString("\n\n")

	if len(r.session.Changes) == 0 {
		sb.WriteString(r.styles.Muted.Render("No changes in this session."))
		sb.WriteString("\n")
	}

	for i, c := range r.session.Changes {
		sb.WriteString(r.renderChange(i, c))
	}

	if r.err != nil {
		sb.WriteString("\n")
		sb.WriteString(r.styles.Error.Render(fmt.Sprintf("error: %v", r.err)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(r.styles.Help.Render("↑/↓ move · a accept · d decline · r reset all · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (r *Review) renderChange(i int, c domain.Change) string {
	marker := "  "
	header := fmt.Sprintf("%s[%d] %s %s", marker, i+1, c.Type, r.statusBadge(c.Status))
	if i == r.cursor {
		header = r.styles.Selected.Render(fmt.Sprintf("> [%d] %s", i+1, c.Type)) + " " + r.statusBadge(c.Status)
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	if c.Original != "" {
		sb.WriteString(r.styles.Declined.Render("    - " + clip(c.Original, r.width-8)))
		sb.WriteString("\n")
	}
	if c.Replacement != "" {
		sb.WriteString(r.styles.Accepted.Render("    + " + clip(c.Replacement, r.width-8)))
		sb.WriteString("\n")
	}
	if c.Context != "" {
		sb.WriteString(r.styles.Muted.Render("      " + clip(c.Context, r.width-8)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Review) statusBadge(status domain.ChangeStatus) string {
	switch status {
	case domain.StatusAccepted:
		return r.styles.Accepted.Render("[accepted]")
	case domain.StatusDeclined:
		return r.styles.Declined.Render("[declined]")
	default:
		return r.styles.Pending.Render("[pending]")
	}
}

// clip shortens s to a single display line of at most width characters.
func clip(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width < 10 {
		width = 10
	}
	if len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}
