package citation

// Map records which provisional marker numbers were issued at prompt
// assembly time and the event each one points at. It lives for a single
// request only.
type Map map[int]string

// Source is one entry of the user-facing source list.
type Source struct {
	Citation int    `json:"citation"`
	EventID  string `json:"eventId"`
}

// Result is the post-processed answer: marker numbers rewritten to a dense
// 1..M sequence in first-occurrence order, plus the deduplicated sources.
type Result struct {
	Answer  string
	Sources []Source
}
