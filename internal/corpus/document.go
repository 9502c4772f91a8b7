package corpus

const (
	SourceEventLog       = "event-log"
	SourceAnalysisReport = "analysis-report"
)

const (
	TypeRawEvent              = "raw-event"
	TypeMemberProfile         = "member-profile"
	TypeTeamComposition       = "team-composition"
	TypeEpisodeSummary        = "episode-summary"
	TypeCommunicationPatterns = "communication-patterns"
	TypeFrictionAnalysis      = "friction-analysis"
	TypeOutcomeMetrics        = "outcome-metrics"
	TypeSatisfactionIndicator = "satisfaction-indicators"
)

// Document is one retrievable passage of the corpus. Content is
// self-contained prose; Metadata records where it came from.
type Document struct {
	Content  string
	Metadata Metadata
}

type Metadata struct {
	Source        string
	Type          string
	EventID       string
	Sender        string
	SenderRole    string
	Timestamp     string
	EpisodeNumber int
	EpisodeTitle  string
}

// Cited reports whether the document can carry a citation marker: only
// passages traceable to a concrete log event are citable.
func (d Document) Cited() bool {
	return d.Metadata.Source == SourceEventLog && d.Metadata.EventID != ""
}
