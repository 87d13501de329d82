package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarinho/feedback-insights/internal/db"
	"github.com/rmarinho/feedback-insights/internal/records"
)

type fakeEvalStore struct {
	status   string
	fullText *string

	claimErr    error
	completeErr error
	failErr     error

	claims    int
	completes int
	fails     int
}

func (f *fakeEvalStore) ClaimEvaluationSummary(_ context.Context, _, _ int64) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.status == db.StatusProcessing {
		return false, nil
	}
	f.claims++
	f.status = db.StatusProcessing
	f.fullText = nil
	return true, nil
}

func (f *fakeEvalStore) CompleteEvaluationSummary(_ context.Context, _, _ int64, fullText string) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completes++
	f.status = db.StatusCompleted
	f.fullText = &fullText
	return nil
}

func (f *fakeEvalStore) FailEvaluationSummary(_ context.Context, _, _ int64) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.fails++
	f.status = db.StatusFailed
	f.fullText = nil
	return nil
}

func (f *fakeEvalStore) GetEvaluationSummary(_ context.Context, subjectID, cycleID int64) (*db.EvaluationSummary, error) {
	if f.status == "" {
		return nil, nil
	}
	return &db.EvaluationSummary{
		SubjectID: subjectID,
		CycleID:   cycleID,
		Status:    f.status,
		FullText:  f.fullText,
	}, nil
}

type fakeEvalSource struct {
	bundle *records.EvaluationBundle
	err    error
}

func (f *fakeEvalSource) EvaluationBundle(_ context.Context, subjectID, cycleID int64) (*records.EvaluationBundle, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.bundle != nil {
		return f.bundle, nil
	}
	return &records.EvaluationBundle{SubjectID: subjectID, CycleID: cycleID,
		ByKind: map[records.SourceKind][]records.EvaluationRecord{}}, nil
}

func selfBundle(subjectID, cycleID int64) *records.EvaluationBundle {
	return &records.EvaluationBundle{
		SubjectID: subjectID,
		CycleID:   cycleID,
		ByKind: map[records.SourceKind][]records.EvaluationRecord{
			records.KindSelf: {
				{
					Kind: records.KindSelf,
					Items: []records.EvaluationItem{
						{CriterionID: 1, Score: 5, Justification: "Great teamwork"},
					},
				},
			},
		},
	}
}

func TestEvaluationGenerate_Success(t *testing.T) {
	store := &fakeEvalStore{}
	source := &fakeEvalSource{bundle: selfBundle(42, 3)}
	gen := &scriptedGenerator{responses: []string{"Consistently strong collaborator."}}

	artifact, err := NewEvaluationService(store, source, gen).Generate(context.Background(), 42, 3)
	require.NoError(t, err)

	assert.Equal(t, db.StatusCompleted, artifact.Status)
	require.NotNil(t, artifact.FullText)
	assert.Equal(t, "Consistently strong collaborator.", *artifact.FullText)
	assert.Equal(t, 1, store.completes)
	assert.Equal(t, 0, store.fails)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Self-assessment")
	assert.Contains(t, gen.prompts[0], "Great teamwork")
	assert.Contains(t, gen.prompts[0], "Nota: 5")
}

func TestEvaluationGenerate_OverwritesCompleted(t *testing.T) {
	store := &fakeEvalStore{}
	source := &fakeEvalSource{bundle: selfBundle(42, 3)}

	svc := NewEvaluationService(store, source, &scriptedGenerator{responses: []string{"First."}})
	_, err := svc.Generate(context.Background(), 42, 3)
	require.NoError(t, err)

	svc = NewEvaluationService(store, source, &scriptedGenerator{responses: []string{"Second."}})
	artifact, err := svc.Generate(context.Background(), 42, 3)
	require.NoError(t, err)
	assert.Equal(t, "Second.", *artifact.FullText)
	assert.Equal(t, 2, store.completes)
}

func TestEvaluationGenerate_InvalidKeys(t *testing.T) {
	store := &fakeEvalStore{}
	svc := NewEvaluationService(store, &fakeEvalSource{}, &scriptedGenerator{})

	for _, key := range [][2]int64{{0, 3}, {-1, 3}, {42, 0}, {42, -2}} {
		_, err := svc.Generate(context.Background(), key[0], key[1])
		var input *InputError
		require.ErrorAs(t, err, &input, "key %v", key)
	}
	assert.Equal(t, 0, store.claims)
}

func TestEvaluationGenerate_NoRecords(t *testing.T) {
	store := &fakeEvalStore{}
	gen := &scriptedGenerator{}

	_, err := NewEvaluationService(store, &fakeEvalSource{}, gen).Generate(context.Background(), 42, 3)

	var noRecords *NoRecordsError
	require.ErrorAs(t, err, &noRecords)
	assert.Contains(t, err.Error(), "no evaluation records found")
	assert.Equal(t, db.StatusFailed, store.status)
	assert.Empty(t, gen.prompts)
}

func TestEvaluationGenerate_EmptyModelResponse(t *testing.T) {
	store := &fakeEvalStore{}
	source := &fakeEvalSource{bundle: selfBundle(42, 3)}
	gen := &scriptedGenerator{responses: []string{"   \n"}}

	_, err := NewEvaluationService(store, source, gen).Generate(context.Background(), 42, 3)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, err.Error(), "empty")
	assert.Equal(t, db.StatusFailed, store.status)
}

func TestEvaluationGenerate_ModelError(t *testing.T) {
	store := &fakeEvalStore{}
	source := &fakeEvalSource{bundle: selfBundle(42, 3)}
	gen := &scriptedGenerator{errs: []error{errors.New("deadline exceeded")}}

	_, err := NewEvaluationService(store, source, gen).Generate(context.Background(), 42, 3)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.ErrorContains(t, err, "deadline exceeded")
	assert.Equal(t, db.StatusFailed, store.status)
}

func TestEvaluationGenerate_ClaimStorageError(t *testing.T) {
	store := &fakeEvalStore{claimErr: errors.New("connection refused")}

	_, err := NewEvaluationService(store, &fakeEvalSource{}, &scriptedGenerator{}).Generate(context.Background(), 42, 3)

	var storage *StorageError
	require.ErrorAs(t, err, &storage)
	assert.Contains(t, err.Error(), "claim")
}

func TestEvaluationGenerate_CompleteStorageError(t *testing.T) {
	store := &fakeEvalStore{completeErr: errors.New("write timeout")}
	source := &fakeEvalSource{bundle: selfBundle(42, 3)}
	gen := &scriptedGenerator{responses: []string{"Summary."}}

	_, err := NewEvaluationService(store, source, gen).Generate(context.Background(), 42, 3)

	var storage *StorageError
	require.ErrorAs(t, err, &storage)
	assert.Contains(t, err.Error(), "persist completed summary")
}

func TestEvaluationGenerate_ConflictWhenProcessing(t *testing.T) {
	store := &fakeEvalStore{status: db.StatusProcessing}

	_, err := NewEvaluationService(store, &fakeEvalSource{}, &scriptedGenerator{}).Generate(context.Background(), 42, 3)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, store.completes)
	assert.Equal(t, 0, store.fails)
}

func TestEvaluationGet_AbsentArtifact(t *testing.T) {
	svc := NewEvaluationService(&fakeEvalStore{}, &fakeEvalSource{}, &scriptedGenerator{})

	artifact, err := svc.Get(context.Background(), 42, 3)
	require.NoError(t, err)
	assert.Nil(t, artifact)
}
