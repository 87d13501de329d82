package db

import (
	"context"
	"fmt"
)

// ListEvaluations fetches every evaluation record for a subject within a
// cycle, all kinds at once, with criterion items attached. Ordering by id
// preserves insertion order inside each kind so prompts are reproducible.
func (db *DB) ListEvaluations(ctx context.Context, subjectID, cycleID int64) ([]EvaluationRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, subject_id, cycle_id, kind,
		        COALESCE(strengths, ''), COALESCE(improvements, ''), COALESCE(justification, '')
		 FROM evaluations
		 WHERE subject_id = $1 AND cycle_id = $2
		 ORDER BY id`,
		subjectID, cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evals []EvaluationRow
	index := make(map[int64]int)
	for rows.Next() {
		var e EvaluationRow
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.CycleID, &e.Kind,
			&e.StrengthsEnc, &e.ImprovementsEnc, &e.JustificationEnc); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		index[e.ID] = len(evals)
		evals = append(evals, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	if len(evals) == 0 {
		return nil, nil
	}

	itemRows, err := db.pool.Query(ctx,
		`SELECT i.id, i.evaluation_id, i.criterion_id, i.score, COALESCE(i.justification, '')
		 FROM evaluation_items i
		 JOIN evaluations e ON e.id = i.evaluation_id
		 WHERE e.subject_id = $1 AND e.cycle_id = $2
		 ORDER BY i.id`,
		subjectID, cycleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item EvaluationItemRow
		if err := itemRows.Scan(&item.ID, &item.EvaluationID, &item.CriterionID,
			&item.Score, &item.JustificationEnc); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation item: %w", err)
		}
		if i, ok := index[item.EvaluationID]; ok {
			evals[i].Items = append(evals[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list evaluation items: %w", err)
	}

	return evals, nil
}
