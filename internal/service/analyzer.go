package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/complegal/comprate/internal/domain"
	"github.com/complegal/comprate/internal/prompt"
	"github.com/complegal/comprate/internal/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReportFile is a user-supplied medical report staged on local disk,
// awaiting upload.
type ReportFile struct {
	Name string
	Path string
}

// SessionInfo describes the active conversation.
type SessionInfo struct {
	ID        uuid.UUID `json:"id"`
	Model     string    `json:"model"`
	Reports   []string  `json:"reports"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionState is the presentation-facing snapshot of the session.
type SessionState struct {
	Open       bool             `json:"open"`
	Session    *SessionInfo     `json:"session,omitempty"`
	Transcript []domain.Message `json:"transcript"`
}

// AnalyzerService orchestrates the upload-with-retry and chat-session
// bootstrap pipeline. One instance owns all session state for the process;
// its mutex serializes user actions, so two sends never overlap on the same
// conversation.
type AnalyzerService struct {
	store        domain.DocumentStore
	opener       domain.ConversationOpener
	refs         *ReferenceCache
	history      domain.HistoryRepository
	catalog      *prompt.Catalog
	instruction  string
	model        string
	uploadPolicy retry.Policy

	mu         sync.Mutex
	conv       domain.Conversation
	session    *SessionInfo
	transcript []domain.Message
	reports    []string
}

// NewAnalyzerService wires the pipeline together.
func NewAnalyzerService(
	store domain.DocumentStore,
	opener domain.ConversationOpener,
	refs *ReferenceCache,
	history domain.HistoryRepository,
	catalog *prompt.Catalog,
	instruction string,
	model string,
	uploadPolicy retry.Policy,
) *AnalyzerService {
	return &AnalyzerService{
		store:        store,
		opener:       opener,
		refs:         refs,
		history:      history,
		catalog:      catalog,
		instruction:  instruction,
		model:        model,
		uploadPolicy: uploadPolicy,
	}
}

// UploadAndBootstrap uploads every report, resolves the reference documents,
// opens a fresh conversation and sends the single bootstrap message. Any
// terminal upload failure aborts the whole action before a conversation is
// created; a bootstrap failure retains no partial session. May be called with
// zero reports to start a reference-only chat.
func (s *AnalyzerService) UploadAndBootstrap(ctx context.Context, files []ReportFile) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(files))
	handles := make([]domain.RemoteHandle, 0, len(files)+2)

	for _, file := range files {
		handle, err := s.uploadReport(ctx, file)
		if err != nil {
			return nil, err
		}
		names = append(names, file.Name)
		handles = append(handles, handle)
		log.Info().Str("report", file.Name).Str("handle", handle.ID).Msg("report uploaded")
	}

	for _, kind := range []domain.ReferenceKind{domain.ReferenceRatingSchedule, domain.ReferenceBenefitsChart} {
		if handle, ok := s.refs.Resolve(ctx, kind); ok {
			handles = append(handles, handle)
		} else {
			log.Warn().Str("kind", string(kind)).Msg("proceeding without reference document")
		}
	}

	conv, err := s.opener.Open(ctx, s.model)
	if err != nil {
		return nil, &domain.SessionError{Op: "create", Err: err}
	}

	// The bootstrap reply is deliberately discarded; the transcript gets a
	// fixed acknowledgment pair instead.
	if _, err := conv.Send(ctx, s.instruction, handles); err != nil {
		return nil, &domain.SessionError{Op: "bootstrap", Err: err}
	}

	now := time.Now()
	s.conv = conv
	s.reports = names
	s.transcript = []domain.Message{
		{Role: domain.RoleUser, Content: prompt.BootstrapUserNote, CreatedAt: now},
		{Role: domain.RoleAssistant, Content: prompt.BootstrapAck, CreatedAt: now},
	}
	s.session = &SessionInfo{
		ID:        uuid.New(),
		Model:     s.model,
		Reports:   names,
		CreatedAt: now,
	}

	log.Info().
		Str("session_id", s.session.ID.String()).
		Int("reports", len(names)).
		Int("attachments", len(handles)).
		Msg("chat session bootstrapped")

	return s.session, nil
}

func (s *AnalyzerService) uploadReport(ctx context.Context, file ReportFile) (domain.RemoteHandle, error) {
	var handle domain.RemoteHandle
	err := s.uploadPolicy.Do(ctx, func(ctx context.Context) error {
		f, err := os.Open(file.Path)
		if err != nil {
			return err
		}
		defer f.Close()

		handle, err = s.store.Upload(ctx, f, domain.UploadOptions{
			DisplayName: file.Name,
			MIMEType:    domain.MIMETypePDF,
		})
		return err
	})
	if err != nil {
		return domain.RemoteHandle{}, &domain.UploadError{
			Name:     file.Name,
			Attempts: s.uploadPolicy.MaxAttempts,
			Err:      err,
		}
	}
	return handle, nil
}

// SendMessage forwards one message to the open conversation and returns the
// reply. No retry here: interactive sends fail fast. On success the exchange
// is appended to the transcript and to the durable history.
func (s *AnalyzerService) SendMessage(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conv == nil {
		return "", &domain.SessionError{Op: "send", Err: domain.ErrNoSession}
	}

	reply, err := s.conv.Send(ctx, text, nil)
	if err != nil {
		// Transcript stays untouched on failure.
		return "", &domain.SessionError{Op: "send", Err: err}
	}

	now := time.Now()
	s.transcript = append(s.transcript,
		domain.Message{Role: domain.RoleUser, Content: text, CreatedAt: now},
		domain.Message{Role: domain.RoleAssistant, Content: reply, CreatedAt: now},
	)

	entry := domain.HistoryEntry{
		Timestamp: now.Format(domain.HistoryTimeFormat),
		Reports:   append([]string{}, s.reports...),
		Prompt:    text,
		Analysis:  reply,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		// The user still sees the reply even when persistence fails.
		log.Error().Err(err).Msg("failed to persist history entry")
	}

	return reply, nil
}

// SendCatalogPrompt resolves a catalog label and sends its instruction text.
func (s *AnalyzerService) SendCatalogPrompt(ctx context.Context, label string) (string, string, error) {
	text, ok := s.catalog.Get(label)
	if !ok {
		return "", "", &domain.SessionError{Op: "send", Err: fmt.Errorf("unknown prompt label %q", label)}
	}

	reply, err := s.SendMessage(ctx, text)
	return text, reply, err
}

// Prompts returns the static prompt catalog.
func (s *AnalyzerService) Prompts() *prompt.Catalog {
	return s.catalog
}

// ListHistory returns all persisted entries, oldest first. A broken store
// degrades to empty history.
func (s *AnalyzerService) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := s.history.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable, returning empty")
		return []domain.HistoryEntry{}, nil
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

// State returns a snapshot of the current session.
func (s *AnalyzerService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	transcript := make([]domain.Message, len(s.transcript))
	copy(transcript, s.transcript)

	return SessionState{
		Open:       s.conv != nil,
		Session:    s.session,
		Transcript: transcript,
	}
}

// Reset drops the conversation, transcript and attached reports. History and
// the reference-document cache survive: the references are session-external
// constants and history is durable by contract.
func (s *AnalyzerService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conv = nil
	s.session = nil
	s.transcript = nil
	s.reports = nil

	log.Info().Msg("session reset")
}
