package model

import "time"

// CuratedBrief is the append-only synthesis artifact. Rows are never updated;
// egress reads the first one found (insertion order).
type CuratedBrief struct {
	ID        int64     `json:"id"`
	Content   string    `json:"curated_content"`
	CreatedAt time.Time `json:"created_at"`
}

// CuratedItem marks a submission as eligible for deletion by the retention
// job. The whole table is cleared once cleanup completes.
type CuratedItem struct {
	ID           int64  `json:"id"`
	SubmissionID string `json:"submission_id"`
}
