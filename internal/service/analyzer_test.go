package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/complegal/comprate/internal/domain"
	"github.com/complegal/comprate/internal/prompt"
	"github.com/complegal/comprate/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testModel = "gemini-test"

func stageReports(t *testing.T, names ...string) []ReportFile {
	t.Helper()
	dir := t.TempDir()
	files := make([]ReportFile, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 report"), 0o644))
		files = append(files, ReportFile{Name: name, Path: path})
	}
	return files
}

func newTestRefCache(t *testing.T, store domain.DocumentStore, hits *atomic.Int32) *ReferenceCache {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Write([]byte("%PDF-1.4 reference"))
	}))
	t.Cleanup(srv.Close)

	return NewReferenceCache(store, []ReferenceSource{
		{Kind: domain.ReferenceRatingSchedule, URL: srv.URL + "/pdrs.pdf"},
		{Kind: domain.ReferenceBenefitsChart, URL: srv.URL + "/chart.pdf"},
	}, retry.Policy{MaxAttempts: 2, Delay: 0}, srv.Client(), nil)
}

func newTestAnalyzer(store domain.DocumentStore, opener domain.ConversationOpener, refs *ReferenceCache, history domain.HistoryRepository) *AnalyzerService {
	return NewAnalyzerService(
		store,
		opener,
		refs,
		history,
		prompt.NewCatalog(),
		prompt.BuildInstruction(prompt.DefaultRatingRules()),
		testModel,
		retry.Policy{MaxAttempts: 2, Delay: 0},
	)
}

func TestUploadAndBootstrap_UploadsReportsPlusReferences(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RemoteHandle{ID: "files/x", URI: "uri://x", MIMEType: domain.MIMETypePDF}, nil)

	conv := new(MockConversation)
	conv.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("acknowledged", nil)

	opener := new(MockOpener)
	opener.On("Open", mock.Anything, testModel).Return(conv, nil)

	svc := newTestAnalyzer(store, opener, newTestRefCache(t, store, nil), new(MockHistoryRepository))

	files := stageReports(t, "report-a.pdf", "report-b.pdf")
	info, err := svc.UploadAndBootstrap(context.Background(), files)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, []string{"report-a.pdf", "report-b.pdf"}, info.Reports)

	// Two reports plus two not-yet-cached references: N + R uploads.
	store.AssertNumberOfCalls(t, "Upload", 4)
	opener.AssertNumberOfCalls(t, "Open", 1)

	// The bootstrap message carries the instruction block and every handle.
	call := conv.Calls[0]
	assert.Contains(t, call.Arguments.String(1), "SYSTEM INSTRUCTIONS")
	assert.Len(t, call.Arguments.Get(2), 4)

	// The bootstrap reply is discarded; the transcript holds the fixed pair.
	state := svc.State()
	assert.True(t, state.Open)
	require.Len(t, state.Transcript, 2)
	assert.Equal(t, prompt.BootstrapUserNote, state.Transcript[0].Content)
	assert.Equal(t, prompt.BootstrapAck, state.Transcript[1].Content)
}

func TestUploadAndBootstrap_SecondSessionReusesReferences(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RemoteHandle{ID: "files/x", URI: "uri://x"}, nil)

	conv := new(MockConversation)
	conv.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)
	opener := new(MockOpener)
	opener.On("Open", mock.Anything, testModel).Return(conv, nil)

	var refHits atomic.Int32
	svc := newTestAnalyzer(store, opener, newTestRefCache(t, store, &refHits), new(MockHistoryRepository))
	ctx := context.Background()

	_, err := svc.UploadAndBootstrap(ctx, stageReports(t, "first.pdf"))
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "Upload", 3) // 1 report + 2 references

	svc.Reset()

	_, err = svc.UploadAndBootstrap(ctx, stageReports(t, "second.pdf"))
	require.NoError(t, err)

	// Reset preserves the reference cache: only the new report is uploaded.
	store.AssertNumberOfCalls(t, "Upload", 4)
	assert.Equal(t, int32(2), refHits.Load())
}

func TestUploadAndBootstrap_UploadFailureAbortsBeforeChatCreate(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RemoteHandle{}, errors.New("ingestion timeout"))

	opener := new(MockOpener)

	svc := newTestAnalyzer(store, opener, newTestRefCache(t, store, nil), new(MockHistoryRepository))

	_, err := svc.UploadAndBootstrap(context.Background(), stageReports(t, "broken.pdf"))

	var uploadErr *domain.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "broken.pdf", uploadErr.Name)
	assert.Equal(t, 2, uploadErr.Attempts)

	opener.AssertNotCalled(t, "Open")
	assert.False(t, svc.State().Open)
}

func TestUploadAndBootstrap_BootstrapFailureRetainsNoSession(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RemoteHandle{ID: "files/x", URI: "uri://x"}, nil)

	conv := new(MockConversation)
	conv.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("model unavailable"))
	opener := new(MockOpener)
	opener.On("Open", mock.Anything, testModel).Return(conv, nil)

	svc := newTestAnalyzer(store, opener, newTestRefCache(t, store, nil), new(MockHistoryRepository))

	_, err := svc.UploadAndBootstrap(context.Background(), stageReports(t, "report.pdf"))

	var sessionErr *domain.SessionError
	require.ErrorAs(t, err, &sessionErr)
	assert.Equal(t, "bootstrap", sessionErr.Op)

	state := svc.State()
	assert.False(t, state.Open)
	assert.Empty(t, state.Transcript)
}

func TestSendMessage_WithoutSession(t *testing.T) {
	history := new(MockHistoryRepository)
	store := new(MockDocumentStore)
	svc := newTestAnalyzer(store, new(MockOpener), newTestRefCache(t, store, nil), history)

	_, err := svc.SendMessage(context.Background(), "hello")

	var sessionErr *domain.SessionError
	require.ErrorAs(t, err, &sessionErr)
	assert.ErrorIs(t, err, domain.ErrNoSession)

	// History must be untouched.
	history.AssertNotCalled(t, "Append")
}

func TestSendMessage_AppendsTranscriptAndHistory(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RemoteHandle{ID: "files/x", URI: "uri://x"}, nil)

	conv := new(MockConversation)
	conv.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("bootstrap ok", nil).Once()
	conv.On("Send", mock.Anything, "Rate the report", mock.Anything).Return("28% PD", nil).Once()

	opener := new(MockOpener)
	opener.On("Open", mock.Anything, testModel).Return(conv, nil)

	history := new(MockHistoryRepository)
	history.On("Append", mock.Anything, mock.AnythingOfType("domain.HistoryEntry")).Return(nil)

	svc := newTestAnalyzer(store, opener, newTestRefCache(t, store, nil), history)
	ctx := context.Background()

	_, err := svc.UploadAndBootstrap(ctx, stageReports(t, "qme.pdf"))
	require.NoError(t, err)

	reply, err := svc.SendMessage(ctx, "Rate the report")
	require.NoError(t, err)
	assert.Equal(t, "28% PD", reply)

	state := svc.State()
	require.Len(t, state.Transcript, 4)
	assert.Equal(t, domain.RoleUser, state.Transcript[2].Role)
	assert.Equal(t, "Rate the report", state.Transcript[2].Content)
	assert.Equal(t, "28% PD", state.Transcript[3].Content)

	history.AssertNumberOfCalls(t, "Append", 1)
	entry := history.Calls[0].Arguments.Get(1).(domain.HistoryEntry)
	assert.Equal(t, []string{"qme.pdf"}, entry.Reports)
	assert.Equal(t, "Rate the report", entry.Prompt)
	assert.Equal(t, "28% PD", entry.Analysis)
}

func TestSendMessage_RemoteFailureLeavesTranscript(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RemoteHandle{ID: "files/x", URI: "uri://x"}, nil)

	conv := new(MockConversation)
	conv.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("bootstrap ok", nil).Once()
	conv.On("Send", mock.Anything, "hello", mock.Anything).Return("", errors.New("stream reset")).Once()

	opener := new(MockOpener)
	opener.On("Open", mock.Anything, testModel).Return(conv, nil)

	history := new(MockHistoryRepository)
	svc := newTestAnalyzer(store, opener, newTestRefCache(t, store, nil), history)
	ctx := context.Background()

	_, err := svc.UploadAndBootstrap(ctx, stageReports(t, "qme.pdf"))
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, "hello")
	var sessionErr *domain.SessionError
	require.ErrorAs(t, err, &sessionErr)

	// Only the synthetic bootstrap pair remains.
	assert.Len(t, svc.State().Transcript, 2)
	history.AssertNotCalled(t, "Append")
}

func TestSendCatalogPrompt(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.RemoteHandle{ID: "files/x", URI: "uri://x"}, nil)

	conv := new(MockConversation)
	conv.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)
	opener := new(MockOpener)
	opener.On("Open", mock.Anything, testModel).Return(conv, nil)

	history := new(MockHistoryRepository)
	history.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestAnalyzer(store, opener, newTestRefCache(t, store, nil), history)
	ctx := context.Background()

	_, err := svc.UploadAndBootstrap(ctx, stageReports(t, "qme.pdf"))
	require.NoError(t, err)

	text, reply, err := svc.SendCatalogPrompt(ctx, "Impairment Calculation")
	require.NoError(t, err)
	assert.Contains(t, text, "impairment percentage")
	assert.Equal(t, "ok", reply)

	_, _, err = svc.SendCatalogPrompt(ctx, "No Such Prompt")
	assert.Error(t, err)
}

func TestListHistory_DegradesToEmpty(t *testing.T) {
	history := new(MockHistoryRepository)
	history.On("Load", mock.Anything).Return(nil, &domain.StorageError{Op: "load", Err: errors.New("disk gone")})

	store := new(MockDocumentStore)
	svc := newTestAnalyzer(store, new(MockOpener), newTestRefCache(t, store, nil), history)

	entries, err := svc.ListHistory(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReset_PreservesHistory(t *testing.T) {
	persisted := []domain.HistoryEntry{{Timestamp: "2025-04-17 10:00:00", Prompt: "p", Analysis: "a"}}
	history := new(MockHistoryRepository)
	history.On("Load", mock.Anything).Return(persisted, nil)

	store := new(MockDocumentStore)
	svc := newTestAnalyzer(store, new(MockOpener), newTestRefCache(t, store, nil), history)

	svc.Reset()

	entries, err := svc.ListHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, persisted, entries)
	assert.False(t, svc.State().Open)
}
