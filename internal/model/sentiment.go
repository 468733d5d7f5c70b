package model

// Label classifies the polarity of a text unit.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
)

// CommentScore is the per-comment output of the scorer: a compound polarity in
// [-1, 1] and its classification.
type CommentScore struct {
	SubmissionID string  `json:"post_key"`
	Compound     float64 `json:"compound"`
	Label        Label   `json:"label"`
}

// Summary is the per-post sentiment rollup persisted as the sentiment result
// blob. A post with no comments still gets a summary: Neutral, 0.0, empty
// counts.
type Summary struct {
	Dominant    Label         `json:"dominant_sentiment"`
	AvgCompound float64       `json:"avg_compound"`
	Counts      map[Label]int `json:"counts"`
}

// Sentiment is one stored rollup, logically 1:1 with its Post. PostID is the
// parent's submission id, not its row id. IsCurated must match the parent
// post's flag after the curator commits.
type Sentiment struct {
	ID        int64   `json:"id"`
	PostID    string  `json:"post_id"`
	Results   Summary `json:"sentiment_results"`
	IsCurated bool    `json:"is_curated"`
}

// PostWithSentiment joins a not-yet-curated post with its rollup, the curator's
// input shape.
type PostWithSentiment struct {
	Post    Post    `json:"post"`
	Summary Summary `json:"sentiment_score"`
}
