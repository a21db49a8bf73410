package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/siftlabs/sift/internal/backoff"
	"github.com/siftlabs/sift/internal/chunker"
	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
	"github.com/siftlabs/sift/internal/core/ports/driving"
	"github.com/siftlabs/sift/internal/embedding"
	"github.com/siftlabs/sift/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator drives synchronisation runs: for a given source it brings
// the vector index and document store into agreement with the source's
// current content, exactly once per invocation, without losing track of
// progress on failure.
type SyncOrchestrator struct {
	sourceStore driven.SourceStore
	syncStore   driven.SyncStateStore
	docStore    driven.DocumentStore
	factory     driven.ConnectorFactory
	chunker     *chunker.Chunker
	embedder    *embedding.Batcher
	vectorIndex driven.VectorIndex

	// Live status tracking for active runs.
	mu     sync.RWMutex
	active map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a sync orchestrator.
func NewSyncOrchestrator(
	sourceStore driven.SourceStore,
	syncStore driven.SyncStateStore,
	docStore driven.DocumentStore,
	factory driven.ConnectorFactory,
	chunk *chunker.Chunker,
	embedder *embedding.Batcher,
	vectorIndex driven.VectorIndex,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		sourceStore: sourceStore,
		syncStore:   syncStore,
		docStore:    docStore,
		factory:     factory,
		chunker:     chunk,
		embedder:    embedder,
		vectorIndex: vectorIndex,
		active:      make(map[string]*driving.SyncStatus),
	}
}

// Sync runs one synchronisation for a source.
//
// The persisted "syncing" status is the per-source mutual-exclusion flag: a
// trigger while a run is active is rejected with ErrSyncInProgress, never
// queued. The continuation token is replaced only when the run produces a
// fresh one; a failed run retries from the last known-good cursor.
func (o *SyncOrchestrator) Sync(ctx context.Context, sourceID string, full bool) (*domain.SyncResult, error) {
	source, err := o.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	state, err := o.syncStore.GetOrCreate(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	// Check-and-insert on the active map happens under one lock, so two
	// simultaneous triggers for the same source cannot both pass.
	status := &driving.SyncStatus{SourceID: source.ID, Status: domain.SyncStatusSyncing}
	o.mu.Lock()
	if state.Status == domain.SyncStatusSyncing || o.active[source.ID] != nil {
		o.mu.Unlock()
		return nil, domain.ErrSyncInProgress
	}
	o.active[source.ID] = status
	o.mu.Unlock()
	defer o.clearActive(source.ID)

	// Persist the lock without touching the cursor.
	state.Status = domain.SyncStatusSyncing
	if err := o.syncStore.Save(ctx, *state); err != nil {
		return nil, fmt.Errorf("save sync state: %w", err)
	}

	logger.Info("Starting sync for source %s (full=%t)", source.ID, full)
	started := time.Now()
	result := o.runLocked(ctx, source, state, full, status)
	result.Duration = time.Since(started)

	logger.Info("Sync complete for %s: added=%d updated=%d deleted=%d errors=%d",
		source.ID, result.Added, result.Updated, result.Deleted, len(result.Errors))
	return result, nil
}

// runLocked executes a run that already holds the syncing lock, and always
// releases it by persisting the terminal state.
func (o *SyncOrchestrator) runLocked(
	ctx context.Context,
	source *domain.Source,
	state *domain.SyncState,
	full bool,
	status *driving.SyncStatus,
) *domain.SyncResult {
	result := &domain.SyncResult{Source: source.ID}

	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("create connector: %v", err))
		o.abortRun(ctx, state, result)
		return result
	}
	defer connector.Close()

	// Authentication precedes any data access. Failure terminates the run
	// with no retry and no cursor mutation.
	if err := connector.Authenticate(ctx, source.Credentials); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("authentication failed: %v", err))
		o.abortRun(ctx, state, result)
		return result
	}

	if !full && state.Cursor == "" {
		full = true
	}

	if full {
		result.Cursor, err = o.runPass(ctx, connector, source, "", true, result, status)
	} else {
		result.Cursor, err = o.runPass(ctx, connector, source, state.Cursor, false, result, status)
		if errors.Is(err, domain.ErrTokenExpired) {
			// The change window was exceeded; fall back to a full pass
			// transparently rather than surfacing an error.
			logger.Info("Continuation token expired for %s, falling back to full sync", source.ID)
			result.Cursor, err = o.runPass(ctx, connector, source, "", true, result, status)
		}
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list changes: %v", err))
	}

	o.finishRun(ctx, state, result)
	return result
}

// runPass drives one full or incremental pass, page by page.
// Returns the fresh continuation token, empty if none was produced.
func (o *SyncOrchestrator) runPass(
	ctx context.Context,
	connector driven.Connector,
	source *domain.Source,
	cursor string,
	full bool,
	result *domain.SyncResult,
	status *driving.SyncStatus,
) (string, error) {
	var newCursor string

	for {
		page, err := o.listChangesWithRetry(ctx, connector, cursor, full)
		if err != nil {
			return newCursor, err
		}

		for _, removed := range page.Removed {
			if err := o.removeDocument(ctx, source, removed); err != nil {
				o.recordError(result, status, fmt.Sprintf("remove %s: %v", removed, err))
				continue
			}
			result.Deleted++
			status.DocumentsProcessed++
		}

		for _, item := range page.Items {
			added, err := o.processItem(ctx, connector, source, item)
			if err != nil {
				if errors.Is(err, domain.ErrContentUnavailable) {
					logger.Debug("Skipping %s: no extractable content", item.ID)
					continue
				}
				o.recordError(result, status, fmt.Sprintf("%s (%s): %v", item.Title, item.ID, err))
				continue
			}
			if added {
				result.Added++
			} else {
				result.Updated++
			}
			status.DocumentsProcessed++
		}

		if page.NewCursor != "" {
			newCursor = page.NewCursor
		}
		if page.NextPage == "" {
			return newCursor, nil
		}
		cursor = page.NextPage
	}
}

// processItem runs the per-item pipeline: fetch, chunk, embed, replace the
// document's index entries, persist the document. Reports whether the
// document was newly added (vs updated).
func (o *SyncOrchestrator) processItem(
	ctx context.Context,
	connector driven.Connector,
	source *domain.Source,
	item domain.SourceItem,
) (bool, error) {
	content, err := o.fetchContentWithRetry(ctx, connector, item)
	if err != nil {
		if errors.Is(err, domain.ErrContentUnavailable) {
			return false, err
		}
		return false, fmt.Errorf("fetch content: %w", err)
	}

	doc := documentFor(source, item, content)

	existed, err := o.docStore.Exists(ctx, doc.ID)
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}

	chunks := o.chunker.Chunk(doc)

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Content
		}
		vectors, err := o.embedder.EmbedAll(ctx, texts)
		if err != nil {
			return false, fmt.Errorf("embed chunks: %w", err)
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	// Chunk ids are not stable across re-chunking when boundaries shift,
	// so prior chunks are always deleted before the new ones go in.
	if _, err := o.vectorIndex.DeleteByDocument(ctx, doc.ID); err != nil {
		return false, fmt.Errorf("delete prior chunks: %w", err)
	}
	if len(chunks) > 0 {
		if err := o.vectorIndex.Upsert(ctx, chunks); err != nil {
			return false, fmt.Errorf("index chunks: %w", err)
		}
	}

	if err := o.docStore.Save(ctx, doc); err != nil {
		return false, fmt.Errorf("save document: %w", err)
	}

	logger.Debug("Processed %s: %d chunks", doc.ID, len(chunks))
	return !existed, nil
}

// removeDocument deletes a document's chunks from the index and the document
// from storage.
func (o *SyncOrchestrator) removeDocument(ctx context.Context, source *domain.Source, sourceItemID string) error {
	docID := domain.DocumentID(source.ID, sourceItemID)

	if _, err := o.vectorIndex.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := o.docStore.Delete(ctx, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.Debug("Removed %s", docID)
	return nil
}

// abortRun handles a failure before any data was processed: the lock is
// released with status=error and the message, leaving the cursor, document
// count and last-synced timestamp exactly as they were.
func (o *SyncOrchestrator) abortRun(ctx context.Context, state *domain.SyncState, result *domain.SyncResult) {
	result.Success = false

	state.Status = domain.SyncStatusError
	state.ErrorMessage = result.Errors[0]

	if err := o.syncStore.Save(ctx, *state); err != nil {
		logger.Warn("Failed to save sync state for %s: %v", state.Source, err)
	}
}

// finishRun releases the syncing lock and persists the run's terminal state.
// The cursor is replaced only when the run produced a fresh one.
func (o *SyncOrchestrator) finishRun(ctx context.Context, state *domain.SyncState, result *domain.SyncResult) {
	result.Success = len(result.Errors) == 0

	state.Status = domain.SyncStatusIdle
	state.ErrorMessage = ""
	if !result.Success {
		state.Status = domain.SyncStatusError
		state.ErrorMessage = result.Errors[0]
	}
	state.LastSyncedAt = time.Now()
	state.DocumentCount = result.Added + result.Updated
	if result.Cursor != "" {
		state.Cursor = result.Cursor
	}

	if err := o.syncStore.Save(ctx, *state); err != nil {
		logger.Warn("Failed to save sync state for %s: %v", state.Source, err)
	}
}

// SyncAll runs synchronisation for every configured source in turn.
// A source already syncing, or failing, does not stop the rest.
func (o *SyncOrchestrator) SyncAll(ctx context.Context, full bool) ([]domain.SyncResult, error) {
	sources, err := o.sourceStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	results := make([]domain.SyncResult, 0, len(sources))
	for _, source := range sources {
		result, err := o.Sync(ctx, source.ID, full)
		if err != nil {
			if errors.Is(err, domain.ErrSyncInProgress) {
				logger.Debug("Skipping %s: sync already in progress", source.ID)
				continue
			}
			results = append(results, domain.SyncResult{
				Source: source.ID,
				Errors: []string{err.Error()},
			})
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

// Status returns live progress for an active run, or the persisted state.
func (o *SyncOrchestrator) Status(ctx context.Context, sourceID string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	if status, ok := o.active[sourceID]; ok {
		// Copy to avoid racing with the run's counter updates.
		snapshot := *status
		o.mu.RUnlock()
		return &snapshot, nil
	}
	o.mu.RUnlock()

	state, err := o.syncStore.GetOrCreate(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	return &driving.SyncStatus{
		SourceID:      sourceID,
		Status:        state.Status,
		LastSyncedAt:  state.LastSyncedAt,
		DocumentCount: state.DocumentCount,
		Error:         state.ErrorMessage,
	}, nil
}

// listChangesWithRetry retries transient rate-limit errors with jittered
// backoff up to the attempt cap. Authentication, token-expiry and other
// permanent errors are returned as-is.
func (o *SyncOrchestrator) listChangesWithRetry(
	ctx context.Context,
	connector driven.Connector,
	cursor string,
	full bool,
) (*domain.ChangePage, error) {
	var page *domain.ChangePage
	err := retryTransient(ctx, func() error {
		var listErr error
		page, listErr = connector.ListChanges(ctx, cursor, full)
		return listErr
	})
	return page, err
}

func (o *SyncOrchestrator) fetchContentWithRetry(
	ctx context.Context,
	connector driven.Connector,
	item domain.SourceItem,
) (string, error) {
	var content string
	err := retryTransient(ctx, func() error {
		var fetchErr error
		content, fetchErr = connector.FetchContent(ctx, item)
		return fetchErr
	})
	return content, err
}

// retryTransient retries rate-limited calls with bounded backoff. Exceeding
// the cap converts the transient error into a permanent one for the caller
// to record.
func retryTransient(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; attempt <= backoff.MaxAttempts; attempt++ {
		if err = call(); err == nil || !errors.Is(err, domain.ErrRateLimited) {
			return err
		}
		if attempt == backoff.MaxAttempts {
			break
		}
		logger.Warn("Rate limited, retrying (attempt %d): %v", attempt+1, err)
		if sleepErr := backoff.Sleep(ctx, attempt); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

func (o *SyncOrchestrator) recordError(result *domain.SyncResult, status *driving.SyncStatus, msg string) {
	logger.Debug("Sync error: %s", msg)
	result.Errors = append(result.Errors, msg)
	status.ErrorCount++
}

// documentFor normalises a connector item into the canonical document.
func documentFor(source *domain.Source, item domain.SourceItem, content string) *domain.Document {
	return &domain.Document{
		ID:          domain.DocumentID(source.ID, item.ID),
		Source:      source.ID,
		SourceID:    item.ID,
		Title:       item.Title,
		Path:        item.Path,
		Author:      item.Author,
		ContentType: item.ContentType.Normalise(),
		Content:     content,
		URL:         item.URL,
		CreatedAt:   item.CreatedAt,
		ModifiedAt:  item.ModifiedAt,
		LastSynced:  time.Now(),
	}
}

func (o *SyncOrchestrator) clearActive(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, sourceID)
}
