package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"birvalid/internal/domain"
	"birvalid/internal/port"
	"birvalid/internal/validator"
)

// BatchLimits caps batch size and bounds per-chunk concurrency. BIR runs are
// capped lower because each document costs an AI extraction call.
type BatchLimits struct {
	StandardCap   int
	BIRCap        int
	StandardChunk int
	BIRChunk      int
}

// DefaultBatchLimits matches the documented caps: 50/25 documents, 5/3
// concurrent per chunk.
func DefaultBatchLimits() BatchLimits {
	return BatchLimits{StandardCap: 50, BIRCap: 25, StandardChunk: 5, BIRChunk: 3}
}

// DocumentResult is the per-document outcome within a batch run.
type DocumentResult struct {
	DocumentID  string              `json:"document_id"`
	Outcome     domain.BatchOutcome `json:"outcome"`
	Score       int                 `json:"score"`
	ErrorCount  int                 `json:"error_count"`
	ErrorFields []string            `json:"error_fields,omitempty"`
	Failure     string              `json:"failure,omitempty"`
	DurationMs  int64               `json:"duration_ms"`
}

// IssueCount is one entry of the common-issues ranking.
type IssueCount struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// BatchResult aggregates a whole batch run.
type BatchResult struct {
	BatchID      uuid.UUID        `json:"batch_id"`
	Mode         domain.BatchMode `json:"mode"`
	RuleSetID    string           `json:"rule_set_id"`
	Total        int              `json:"total"`
	Passed       int              `json:"passed"`
	Failed       int              `json:"failed"`
	Errored      int              `json:"errored"`
	PassRate     float64          `json:"pass_rate"`
	TotalMs      int64            `json:"total_ms"`
	AverageMs    int64            `json:"average_ms"`
	CommonIssues []IssueCount     `json:"common_issues"`
	Results      []DocumentResult `json:"results"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
}

// BatchService fans out per-document validation over bounded concurrency.
type BatchService interface {
	RunBatch(ctx context.Context, documentIDs []string, ruleSetID string, mode domain.BatchMode) (*BatchResult, error)
}

type batchService struct {
	ruleSets  port.RuleSetRepository
	docs      port.DocumentSource
	extractor port.FieldExtractor
	limits    BatchLimits
}

// NewBatchService creates a BatchService implementation.
func NewBatchService(ruleSets port.RuleSetRepository, docs port.DocumentSource, extractor port.FieldExtractor, limits BatchLimits) BatchService {
	return &batchService{ruleSets: ruleSets, docs: docs, extractor: extractor, limits: limits}
}

// RunBatch validates every document, one chunk at a time. The size cap is
// enforced before any document is touched. A document's collaborator or
// validator failure becomes an ERROR outcome for that document only; it
// never aborts the batch.
func (s *batchService) RunBatch(ctx context.Context, documentIDs []string, ruleSetID string, mode domain.BatchMode) (*BatchResult, error) {
	maxDocs, chunk := s.limits.StandardCap, s.limits.StandardChunk
	if mode == domain.BatchModeBIR {
		maxDocs, chunk = s.limits.BIRCap, s.limits.BIRChunk
	}
	// A misconfigured chunk size of 0 would stall the chunk loop.
	if chunk < 1 {
		chunk = 1
	}
	if len(documentIDs) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(documentIDs) > maxDocs {
		return nil, fmt.Errorf("%d documents exceeds the %s cap of %d: %w", len(documentIDs), mode, maxDocs, domain.ErrBatchTooLarge)
	}

	kind := domain.RuleSetKind("")
	if mode == domain.BatchModeBIR {
		kind = domain.RuleSetKindBIR
	}
	set, err := s.ruleSets.Get(ctx, ruleSetID)
	if err != nil {
		return nil, err
	}
	if !set.IsActive {
		return nil, domain.ErrRuleSetNotFound
	}
	if kind != "" && set.Kind != kind {
		return nil, fmt.Errorf("rule set %q is not a %s set: %w", ruleSetID, kind, domain.ErrInvalidRuleSet)
	}

	started := time.Now()
	results := make([]DocumentResult, len(documentIDs))

	// Chunks run sequentially; documents within a chunk run in parallel.
	for offset := 0; offset < len(documentIDs); offset += chunk {
		end := offset + chunk
		if end > len(documentIDs) {
			end = len(documentIDs)
		}
		var wg sync.WaitGroup
		for i := offset; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = s.validateOne(ctx, documentIDs[idx], set, mode)
			}(i)
		}
		wg.Wait()
	}

	finished := time.Now()
	batch := &BatchResult{
		BatchID:    uuid.New(),
		Mode:       mode,
		RuleSetID:  set.ID,
		Total:      len(results),
		Results:    results,
		StartedAt:  started,
		FinishedAt: finished,
		TotalMs:    finished.Sub(started).Milliseconds(),
	}
	aggregate(batch)

	log.Printf("batchService: batch %s done — %d passed, %d failed, %d errored of %d",
		batch.BatchID, batch.Passed, batch.Failed, batch.Errored, batch.Total)
	return batch, nil
}

// validateOne runs extraction plus the selected tier for a single document,
// converting any failure into an ERROR result.
func (s *batchService) validateOne(ctx context.Context, documentID string, set *domain.RuleSet, mode domain.BatchMode) DocumentResult {
	start := time.Now()
	result := DocumentResult{DocumentID: documentID}

	record, err := s.fetchAndExtract(ctx, documentID)
	if err != nil {
		result.Outcome = domain.BatchOutcomeError
		result.Failure = err.Error()
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	var score int
	var passed bool
	var errs []validator.ValidationError
	if mode == domain.BatchModeBIR {
		r := validator.ValidateBIR(record, set)
		score, passed, errs = r.Score, r.IsCompliant, r.Errors
	} else {
		r := validator.ValidateCompleteness(record, set)
		score, passed, errs = r.Score, r.IsValid, r.Errors
	}

	result.Score = score
	result.ErrorCount = len(errs)
	for _, e := range errs {
		result.ErrorFields = append(result.ErrorFields, e.Field)
	}
	if passed {
		result.Outcome = domain.BatchOutcomePassed
	} else {
		result.Outcome = domain.BatchOutcomeFailed
	}
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

func (s *batchService) fetchAndExtract(ctx context.Context, documentID string) (json.RawMessage, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNoOCRContent)
	}
	record, err := s.extractor.ExtractInvoiceFields(ctx, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return record, nil
}

// aggregate fills the outcome counts, pass rate, timing, and the top-5
// common-issue ranking from the per-document results.
func aggregate(batch *BatchResult) {
	issueTally := map[string]int{}
	var durationSum int64
	for _, r := range batch.Results {
		durationSum += r.DurationMs
		switch r.Outcome {
		case domain.BatchOutcomePassed:
			batch.Passed++
		case domain.BatchOutcomeFailed:
			batch.Failed++
		default:
			batch.Errored++
		}
		for _, field := range r.ErrorFields {
			issueTally[field]++
		}
	}
	if batch.Total > 0 {
		batch.AverageMs = durationSum / int64(batch.Total)
		batch.PassRate = float64(batch.Passed) / float64(batch.Total) * 100
	}

	issues := make([]IssueCount, 0, len(issueTally))
	for field, count := range issueTally {
		issues = append(issues, IssueCount{Field: field, Count: count})
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Count != issues[j].Count {
			return issues[i].Count > issues[j].Count
		}
		return issues[i].Field < issues[j].Field
	})
	if len(issues) > 5 {
		issues = issues[:5]
	}
	batch.CommonIssues = issues
}
