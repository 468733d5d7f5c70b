package model

// Post is one ingested discussion thread. SubmissionID is the source-assigned
// natural key; ID is the storage row id. IsCurated flips exactly once, when the
// curator consumes the post, and is never reverted.
type Post struct {
	ID           int64   `json:"id"`
	SubmissionID string  `json:"submission_id"`
	Subreddit    string  `json:"subreddit"`
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	UpvoteRatio  float64 `json:"upvote_ratio"`
	Score        int     `json:"score"`
	CommentCount int     `json:"comment_count"`
	URL          string  `json:"post_url"`
	IsProcessed  bool    `json:"is_processed"`
	IsCurated    bool    `json:"is_curated"`
}

// Comment belongs to a Post via the submission id. Bodies that read
// "[deleted]", "[removed]" or are empty are filtered before persistence and
// never appear here.
type Comment struct {
	ID           int64  `json:"id"`
	SubmissionID string `json:"submission_id"`
	Subreddit    string `json:"subreddit"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Body         string `json:"body"`
	Score        int    `json:"score"`
}
