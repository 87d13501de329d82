package records

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarinho/feedback-insights/internal/cryptotext"
	"github.com/rmarinho/feedback-insights/internal/db"
)

type fakeStore struct {
	evals   []db.EvaluationRow
	answers []db.SurveyAnswerRow
	err     error
}

func (f *fakeStore) ListEvaluations(_ context.Context, _, _ int64) ([]db.EvaluationRow, error) {
	return f.evals, f.err
}

func (f *fakeStore) ListSubmittedSurveyAnswers(_ context.Context, _ uuid.UUID) ([]db.SurveyAnswerRow, error) {
	return f.answers, f.err
}

func enc(t *testing.T, codec *cryptotext.Codec, plain string) string {
	t.Helper()
	out, err := codec.Encrypt(plain)
	require.NoError(t, err)
	return out
}

func TestEvaluationBundle_DecryptsAndGroups(t *testing.T) {
	codec := cryptotext.NewCodec("test-secret")
	store := &fakeStore{
		evals: []db.EvaluationRow{
			{
				ID: 1, SubjectID: 42, CycleID: 3, Kind: "self",
				Items: []db.EvaluationItemRow{
					{ID: 10, EvaluationID: 1, CriterionID: 1, Score: 5,
						JustificationEnc: enc(t, codec, "Great teamwork")},
				},
			},
			{
				ID: 2, SubjectID: 42, CycleID: 3, Kind: "reference",
				StrengthsEnc:     enc(t, codec, "Reliable under pressure"),
				ImprovementsEnc:  enc(t, codec, "Could delegate more"),
				JustificationEnc: enc(t, codec, "Worked together for two years"),
			},
			{
				ID: 3, SubjectID: 42, CycleID: 3, Kind: "self",
				Items: []db.EvaluationItemRow{
					{ID: 11, EvaluationID: 3, CriterionID: 2, Score: 4,
						JustificationEnc: enc(t, codec, "Clear written updates")},
				},
			},
		},
	}

	bundle, err := NewAggregator(store, codec).EvaluationBundle(context.Background(), 42, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(42), bundle.SubjectID)
	assert.Equal(t, 3, bundle.Total())

	selfRecs := bundle.ByKind[KindSelf]
	require.Len(t, selfRecs, 2)
	// Insertion order inside a kind is preserved.
	assert.Equal(t, int64(1), selfRecs[0].ID)
	assert.Equal(t, int64(3), selfRecs[1].ID)
	require.Len(t, selfRecs[0].Items, 1)
	assert.Equal(t, "Great teamwork", selfRecs[0].Items[0].Justification)
	assert.Equal(t, 5, selfRecs[0].Items[0].Score)

	refs := bundle.ByKind[KindReference]
	require.Len(t, refs, 1)
	assert.Equal(t, "Reliable under pressure", refs[0].Strengths)
	assert.Equal(t, "Could delegate more", refs[0].Improvements)
	assert.Equal(t, "Worked together for two years", refs[0].Justification)

	assert.Empty(t, bundle.ByKind[KindPeer])
}

func TestEvaluationBundle_CorruptedFieldGetsSentinel(t *testing.T) {
	codec := cryptotext.NewCodec("test-secret")
	store := &fakeStore{
		evals: []db.EvaluationRow{
			{
				ID: 1, SubjectID: 42, CycleID: 3, Kind: "peer",
				Items: []db.EvaluationItemRow{
					{ID: 10, EvaluationID: 1, CriterionID: 1, Score: 3, JustificationEnc: "???:???"},
					{ID: 11, EvaluationID: 1, CriterionID: 2, Score: 4,
						JustificationEnc: enc(t, codec, "Still readable")},
				},
			},
		},
	}

	bundle, err := NewAggregator(store, codec).EvaluationBundle(context.Background(), 42, 3)
	require.NoError(t, err)

	items := bundle.ByKind[KindPeer][0].Items
	require.Len(t, items, 2)
	// One corrupted field must not block the rest.
	assert.Equal(t, cryptotext.DecryptionFailed, items[0].Justification)
	assert.Equal(t, "Still readable", items[1].Justification)
}

func TestSurveyBundle_GroupsByResponse(t *testing.T) {
	codec := cryptotext.NewCodec("test-secret")
	surveyID := uuid.New()
	respA, respB := uuid.New(), uuid.New()
	q1, q2 := uuid.New(), uuid.New()

	store := &fakeStore{
		answers: []db.SurveyAnswerRow{
			{ResponseID: respA, QuestionID: q1, QuestionText: "Is communication clear?",
				Agreement: "FULL_AGREEMENT", JustificationEnc: enc(t, codec, "Weekly updates help")},
			{ResponseID: respA, QuestionID: q2, QuestionText: "Is workload fair?",
				Agreement: "NEUTRAL", JustificationEnc: ""},
			{ResponseID: respB, QuestionID: q1, QuestionText: "Is communication clear?",
				Agreement: "PARTIAL_DISAGREEMENT", JustificationEnc: enc(t, codec, "Too many channels")},
		},
	}

	bundle, err := NewAggregator(store, codec).SurveyBundle(context.Background(), surveyID)
	require.NoError(t, err)

	require.Len(t, bundle.Responses, 2)
	assert.Equal(t, respA, bundle.Responses[0].ResponseID)
	require.Len(t, bundle.Responses[0].Answers, 2)
	assert.Equal(t, "Weekly updates help", bundle.Responses[0].Answers[0].Justification)
	assert.Equal(t, FullAgreement, bundle.Responses[0].Answers[0].Agreement)
	assert.Equal(t, "", bundle.Responses[0].Answers[1].Justification)

	require.Len(t, bundle.Responses[1].Answers, 1)
	assert.Equal(t, PartialDisagreement, bundle.Responses[1].Answers[0].Agreement)
}

func TestAggregator_StoreFailurePropagates(t *testing.T) {
	codec := cryptotext.NewCodec("test-secret")
	store := &fakeStore{err: errors.New("connection refused")}
	agg := NewAggregator(store, codec)

	_, err := agg.EvaluationBundle(context.Background(), 42, 3)
	assert.ErrorContains(t, err, "connection refused")

	_, err = agg.SurveyBundle(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "connection refused")
}

func TestAgreementLevel_Display(t *testing.T) {
	assert.Equal(t, "FULL AGREEMENT", FullAgreement.Display())
	assert.Equal(t, "PARTIAL DISAGREEMENT", PartialDisagreement.Display())
	assert.Equal(t, "NEUTRAL", Neutral.Display())
}

func TestAgreementPoints_CoversEveryLevel(t *testing.T) {
	levels := []AgreementLevel{FullAgreement, PartialAgreement, Neutral, PartialDisagreement, FullDisagreement}
	require.Len(t, AgreementPoints, len(levels))

	expected := map[AgreementLevel]int{
		FullAgreement:       100,
		PartialAgreement:    75,
		Neutral:             50,
		PartialDisagreement: 25,
		FullDisagreement:    0,
	}
	for _, level := range levels {
		assert.Equal(t, expected[level], AgreementPoints[level], string(level))
	}
}
