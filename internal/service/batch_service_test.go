package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"birvalid/internal/domain"
	"birvalid/internal/port"
	"birvalid/internal/ruleset"
	"birvalid/internal/service"
	"birvalid/mocks"
)

// brokenExtraction drops three critical fields so completeness fails.
func brokenExtraction() json.RawMessage {
	var record map[string]any
	if err := json.Unmarshal(validExtraction(), &record); err != nil {
		panic(err)
	}
	record["invoice_number"] = nil
	record["total_amount"] = 0
	record["signature_present"] = false
	raw, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	return raw
}

func setupBatchService(limits service.BatchLimits) (service.BatchService, *mocks.MockDocumentSource, *mocks.MockFieldExtractor) {
	docs := new(mocks.MockDocumentSource)
	extractor := new(mocks.MockFieldExtractor)
	svc := service.NewBatchService(ruleset.NewRegistry(), docs, extractor, limits)
	return svc, docs, extractor
}

func documentIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", 100+i)
	}
	return ids
}

func TestRunBatch_EmptyBatch(t *testing.T) {
	svc, _, _ := setupBatchService(service.DefaultBatchLimits())

	_, err := svc.RunBatch(context.Background(), nil, ruleset.SetStandard, domain.BatchModeStandard)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestRunBatch_CapEnforcedBeforeAnyFetch(t *testing.T) {
	tests := []struct {
		name string
		mode domain.BatchMode
		set  string
		docs int
	}{
		{"standard cap 50", domain.BatchModeStandard, ruleset.SetStandard, 51},
		{"bir cap 25", domain.BatchModeBIR, ruleset.SetBIRStandard, 26},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, docs, _ := setupBatchService(service.DefaultBatchLimits())

			_, err := svc.RunBatch(context.Background(), documentIDs(tt.docs), tt.set, tt.mode)
			assert.ErrorIs(t, err, domain.ErrBatchTooLarge)
			docs.AssertNotCalled(t, "GetDocument", mock.Anything, mock.Anything)
		})
	}
}

func TestRunBatch_UnknownRuleSet(t *testing.T) {
	svc, _, _ := setupBatchService(service.DefaultBatchLimits())

	_, err := svc.RunBatch(context.Background(), documentIDs(2), "nope", domain.BatchModeStandard)
	assert.ErrorIs(t, err, domain.ErrRuleSetNotFound)
}

func TestRunBatch_BIRModeRejectsStandardSet(t *testing.T) {
	svc, _, _ := setupBatchService(service.DefaultBatchLimits())

	_, err := svc.RunBatch(context.Background(), documentIDs(2), ruleset.SetStandard, domain.BatchModeBIR)
	assert.ErrorIs(t, err, domain.ErrInvalidRuleSet)
}

func TestRunBatch_MixedOutcomes(t *testing.T) {
	svc, docs, extractor := setupBatchService(service.DefaultBatchLimits())
	ctx := context.Background()

	docs.On("GetDocument", ctx, "100").Return(&port.SourceDocument{ID: "100", Content: "good ocr"}, nil)
	docs.On("GetDocument", ctx, "101").Return(&port.SourceDocument{ID: "101", Content: "broken ocr"}, nil)
	docs.On("GetDocument", ctx, "102").Return(nil, errors.New("paperless unreachable"))
	extractor.On("ExtractInvoiceFields", ctx, "good ocr").Return(validExtraction(), nil)
	extractor.On("ExtractInvoiceFields", ctx, "broken ocr").Return(brokenExtraction(), nil)

	batch, err := svc.RunBatch(ctx, []string{"100", "101", "102"}, ruleset.SetStandard, domain.BatchModeStandard)
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 1, batch.Passed)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, 1, batch.Errored)
	assert.InDelta(t, 100.0/3, batch.PassRate, 0.01)
	assert.Equal(t, domain.BatchModeStandard, batch.Mode)
	assert.Equal(t, ruleset.SetStandard, batch.RuleSetID)

	// Results keep the input order regardless of goroutine scheduling.
	require.Len(t, batch.Results, 3)
	assert.Equal(t, "100", batch.Results[0].DocumentID)
	assert.Equal(t, domain.BatchOutcomePassed, batch.Results[0].Outcome)
	assert.Equal(t, 100, batch.Results[0].Score)

	assert.Equal(t, domain.BatchOutcomeFailed, batch.Results[1].Outcome)
	assert.Equal(t, 3, batch.Results[1].ErrorCount)
	assert.Contains(t, batch.Results[1].ErrorFields, "invoice_number")

	assert.Equal(t, domain.BatchOutcomeError, batch.Results[2].Outcome)
	assert.Contains(t, batch.Results[2].Failure, "paperless unreachable")
	assert.Zero(t, batch.Results[2].Score)
}

func TestRunBatch_CommonIssuesRanking(t *testing.T) {
	svc, docs, extractor := setupBatchService(service.DefaultBatchLimits())
	ctx := context.Background()

	for _, id := range []string{"100", "101"} {
		docs.On("GetDocument", ctx, id).Return(&port.SourceDocument{ID: id, Content: "broken " + id}, nil)
		extractor.On("ExtractInvoiceFields", ctx, "broken "+id).Return(brokenExtraction(), nil)
	}

	batch, err := svc.RunBatch(ctx, []string{"100", "101"}, ruleset.SetStandard, domain.BatchModeStandard)
	require.NoError(t, err)

	require.NotEmpty(t, batch.CommonIssues)
	assert.LessOrEqual(t, len(batch.CommonIssues), 5)
	// Same three fields fail on both documents; ties rank alphabetically.
	assert.Equal(t, "invoice_number", batch.CommonIssues[0].Field)
	assert.Equal(t, 2, batch.CommonIssues[0].Count)
	for i := 1; i < len(batch.CommonIssues); i++ {
		if batch.CommonIssues[i].Count == batch.CommonIssues[i-1].Count {
			assert.Greater(t, batch.CommonIssues[i].Field, batch.CommonIssues[i-1].Field)
		} else {
			assert.Less(t, batch.CommonIssues[i].Count, batch.CommonIssues[i-1].Count)
		}
	}
}

func TestRunBatch_BIRMode(t *testing.T) {
	svc, docs, extractor := setupBatchService(service.BatchLimits{StandardCap: 50, BIRCap: 25, StandardChunk: 5, BIRChunk: 3})
	ctx := context.Background()

	ids := documentIDs(4)
	for _, id := range ids {
		docs.On("GetDocument", ctx, id).Return(&port.SourceDocument{ID: id, Content: "ocr " + id}, nil)
		extractor.On("ExtractInvoiceFields", ctx, "ocr "+id).Return(validExtraction(), nil)
	}

	batch, err := svc.RunBatch(ctx, ids, ruleset.SetBIRStandard, domain.BatchModeBIR)
	require.NoError(t, err)
	assert.Equal(t, 4, batch.Passed)
	assert.Equal(t, 100.0, batch.PassRate)
	for _, r := range batch.Results {
		assert.Equal(t, domain.BatchOutcomePassed, r.Outcome)
		assert.Equal(t, 100, r.Score)
	}
	docs.AssertExpectations(t)
}

func TestRunBatch_ZeroChunkSizeStillCompletes(t *testing.T) {
	svc, docs, extractor := setupBatchService(service.BatchLimits{StandardCap: 50, BIRCap: 25, StandardChunk: 0, BIRChunk: 0})
	ctx := context.Background()

	ids := documentIDs(3)
	for _, id := range ids {
		docs.On("GetDocument", ctx, id).Return(&port.SourceDocument{ID: id, Content: "ocr " + id}, nil)
		extractor.On("ExtractInvoiceFields", ctx, "ocr "+id).Return(validExtraction(), nil)
	}

	batch, err := svc.RunBatch(ctx, ids, ruleset.SetStandard, domain.BatchModeStandard)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 3, batch.Passed)
}

func TestRunBatch_NoOCRContentIsDocumentError(t *testing.T) {
	svc, docs, _ := setupBatchService(service.DefaultBatchLimits())
	ctx := context.Background()

	docs.On("GetDocument", ctx, "100").Return(&port.SourceDocument{ID: "100", Content: ""}, nil)

	batch, err := svc.RunBatch(ctx, []string{"100"}, ruleset.SetStandard, domain.BatchModeStandard)
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Errored)
	assert.Equal(t, domain.BatchOutcomeError, batch.Results[0].Outcome)
	assert.Contains(t, batch.Results[0].Failure, domain.ErrNoOCRContent.Error())
}
