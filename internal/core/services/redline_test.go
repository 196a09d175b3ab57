package services

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
)

// memStore is an in-memory SessionStore for service tests.
type memStore struct {
	sessions map[string]*domain.RedlineResult
	order    []string
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*domain.RedlineResult)}
}

func (m *memStore) Save(_ context.Context, result *domain.RedlineResult) error {
	cp := *result
	cp.Changes = append([]domain.Change(nil), result.Changes...)
	m.sessions[result.ID] = &cp
	m.order = append(m.order, result.ID)
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*domain.RedlineResult, error) {
	result, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *result
	cp.Changes = append([]domain.Change(nil), result.Changes...)
	return &cp, nil
}

func (m *memStore) Latest(ctx context.Context) (*domain.RedlineResult, error) {
	if len(m.order) == 0 {
		return nil, domain.ErrNoSession
	}
	return m.Get(ctx, m.order[len(m.order)-1])
}

func (m *memStore) UpdateStatuses(_ context.Context, sessionID string, statuses map[string]domain.ChangeStatus) error {
	result, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range result.Changes {
		if status, ok := statuses[result.Changes[i].ID]; ok {
			result.Changes[i].Status = status
		}
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func newSession(t *testing.T, svc *RedlineService, original, proposal string) *domain.RedlineResult {
	t.Helper()
	result, err := svc.CreateSession(context.Background(), "agreement.txt", original, proposal)
	require.NoError(t, err)
	return result
}

func TestCreateSession(t *testing.T) {
	svc := NewRedlineService(newMemStore())
	result := newSession(t, svc, "foo foo", sampleProposal)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "foo foo", result.OriginalText)
	assert.Equal(t, "bar foo", result.EditedText)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, domain.StatusPending, result.Changes[0].Status)
}

func TestCreateSession_BadProposal(t *testing.T) {
	svc := NewRedlineService(newMemStore())
	_, err := svc.CreateSession(context.Background(), "a.txt", "text", "not a proposal")
	assert.ErrorIs(t, err, domain.ErrProposalParse)
}

func TestCreateSession_EmptyOriginal(t *testing.T) {
	svc := NewRedlineService(newMemStore())
	_, err := svc.CreateSession(context.Background(), "a.txt", "", sampleProposal)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet_LatestWhenIDEmpty(t *testing.T) {
	svc := NewRedlineService(newMemStore())
	newSession(t, svc, "first doc", `{"editedText": "first doc!", "changes": []}`)
	second := newSession(t, svc, "second doc", `{"editedText": "second doc!", "changes": []}`)

	got, err := svc.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestGet_NoSessions(t *testing.T) {
	svc := NewRedlineService(newMemStore())
	_, err := svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestAcceptDecline_StateMachine(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, "foo foo", sampleProposal)
	changeID := session.Changes[0].ID

	// accept, then re-accept: idempotent
	require.NoError(t, svc.Accept(ctx, session.ID, changeID))
	require.NoError(t, svc.Accept(ctx, session.ID, changeID))

	got, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Changes[0].Status)

	// decisions can flip directly
	require.NoError(t, svc.Decline(ctx, session.ID, changeID))
	got, err = svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeclined, got.Changes[0].Status)
}

func TestAccept_UnknownChange(t *testing.T) {
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, "foo foo", sampleProposal)

	err := svc.Accept(context.Background(), session.ID, "no-such-change")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

const multiChangeProposal = `{
	"editedText": "The Seller shall deliver the goods within 10 days. Time is of the essence.",
	"changes": [
		{"type": "replacement", "original": "30 days", "replacement": "10 days", "reason": "tighter deadline"},
		{"type": "insertion", "replacement": " Time is of the essence.", "reason": "add enforcement hook"}
	]
}`

const multiChangeOriginal = "The Seller shall deliver the goods within 30 days."

func TestGenerateFinalDocument_AllAccepted(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, multiChangeOriginal, multiChangeProposal)

	require.NoError(t, svc.AcceptAll(ctx, session.ID))
	text, err := svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Seller shall deliver the goods within 10 days. Time is of the essence.", text)
}

func TestGenerateFinalDocument_NoneAccepted(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, multiChangeOriginal, multiChangeProposal)

	// All pending.
	text, err := svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, multiChangeOriginal, text)

	// All declined.
	require.NoError(t, svc.DeclineAll(ctx, session.ID))
	text, err = svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, multiChangeOriginal, text)
}

func TestGenerateFinalDocument_MixedDecisions(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, multiChangeOriginal, multiChangeProposal)

	require.NoError(t, svc.Accept(ctx, session.ID, session.Changes[0].ID))
	require.NoError(t, svc.Decline(ctx, session.ID, session.Changes[1].ID))

	text, err := svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Seller shall deliver the goods within 10 days.", text)
}

func TestGenerateFinalDocument_RepeatedOriginalBindsFirstOccurrence(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, "foo foo baz", `{
		"editedText": "bar foo baz",
		"changes": [
			{"type": "replacement", "original": "foo", "replacement": "bar"},
			{"type": "deletion", "original": "baz"}
		]
	}`)

	// Accept only the replacement: it must hit the first "foo".
	require.NoError(t, svc.Accept(ctx, session.ID, session.Changes[0].ID))
	text, err := svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "bar foo baz", text)
}

func TestGenerateFinalDocument_ForwardCursorOverRepeats(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	// Two changes both targeting "day": the second binds past the first.
	session := newSession(t, svc, "day one and day two", `{
		"editedText": "week one and month two",
		"changes": [
			{"type": "replacement", "original": "day", "replacement": "week"},
			{"type": "replacement", "original": "day", "replacement": "month"}
		]
	}`)

	require.NoError(t, svc.Accept(ctx, session.ID, session.Changes[0].ID))
	require.NoError(t, svc.Accept(ctx, session.ID, session.Changes[1].ID))
	// Mixed path still applies per-span (one change stays pending in a
	// larger doc); here all accepted short-circuits, so decline a dummy…
	// instead verify the span resolution directly.
	result, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	spans := resolveSpans(result)
	require.Len(t, spans, 2)
	sort.Slice(spans, func(i, j int) bool { return spans[i].offset < spans[j].offset })
	assert.Equal(t, 0, spans[0].offset)
	assert.Equal(t, 12, spans[1].offset)
}

func TestGenerateFinalDocument_InsertionAtReplacementStart(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	// The insertion anchors at offset 0, the same offset as the
	// replacement of "alpha". The inserted text must come out ahead of
	// the replacement, not spliced into it.
	session := newSession(t, svc, "alpha beta gamma", `{
		"editedText": "new ALPHA beta",
		"changes": [
			{"type": "insertion", "replacement": "new "},
			{"type": "replacement", "original": "alpha", "replacement": "ALPHA"},
			{"type": "deletion", "original": " gamma"}
		]
	}`)

	require.NoError(t, svc.Accept(ctx, session.ID, session.Changes[0].ID))
	require.NoError(t, svc.Accept(ctx, session.ID, session.Changes[1].ID))
	require.NoError(t, svc.Decline(ctx, session.ID, session.Changes[2].ID))

	text, err := svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "new ALPHA beta gamma", text)
}

func TestResetAll_ReturnsToPendingAndOriginal(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, multiChangeOriginal, multiChangeProposal)

	require.NoError(t, svc.AcceptAll(ctx, session.ID))
	require.NoError(t, svc.ResetAll(ctx, session.ID))

	got, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	for _, c := range got.Changes {
		assert.Equal(t, domain.StatusPending, c.Status)
	}

	text, err := svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, multiChangeOriginal, text)
}

func TestGenerateFinalDocument_Deterministic(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, multiChangeOriginal, multiChangeProposal)
	require.NoError(t, svc.Accept(ctx, session.ID, session.Changes[0].ID))

	first, err := svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	second, err := svc.GenerateFinalDocument(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExport_Variants(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, multiChangeOriginal, multiChangeProposal)
	require.NoError(t, svc.Accept(ctx, session.ID, session.Changes[0].ID))
	dir := t.TempDir()

	tests := []struct {
		variant  driving.ExportVariant
		fileName string
		contains string
	}{
		{driving.ExportCurrent, "agreement_custom.txt", "within 10 days."},
		{driving.ExportFinal, "agreement_final.txt", "Time is of the essence."},
		{driving.ExportOriginal, "agreement_original.txt", "within 30 days."},
		{driving.ExportRedlined, "agreement_redlined.txt", "tighter deadline"},
	}

	for _, tc := range tests {
		t.Run(string(tc.variant), func(t *testing.T) {
			path, err := svc.Export(ctx, session.ID, tc.variant, dir)
			require.NoError(t, err)
			assert.Equal(t, tc.fileName, filepath.Base(path))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(content), tc.contains)
		})
	}
}

func TestExport_UnknownVariant(t *testing.T) {
	ctx := context.Background()
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, multiChangeOriginal, multiChangeProposal)

	_, err := svc.Export(ctx, session.ID, driving.ExportVariant("docx"), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRenderRedline(t *testing.T) {
	svc := NewRedlineService(newMemStore())
	session := newSession(t, svc, multiChangeOriginal, multiChangeProposal)

	out := renderRedline(session)
	assert.Contains(t, out, "REDLINE: agreement.txt")
	assert.Contains(t, out, "2 changes (0 accepted, 0 declined, 2 pending)")
	assert.Contains(t, out, "1. [pending] replacement")
	assert.Contains(t, out, "- 30 days")
	assert.Contains(t, out, "+ 10 days")
	assert.Contains(t, out, "Reason: tighter deadline")
}
