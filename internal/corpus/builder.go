package corpus

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/internal/journey"
	"github.com/elyx-health/journey-backend/pkg/logger"
)

const DefaultMinDocLength = 10

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Builder turns the two journey fixtures into a flat document corpus. It is
// a pure transform: malformed sections are logged and skipped, never fatal.
type Builder struct {
	minDocLength int
}

func NewBuilder(minDocLength int) *Builder {
	if minDocLength <= 0 {
		minDocLength = DefaultMinDocLength
	}
	return &Builder{minDocLength: minDocLength}
}

func (b *Builder) Build(events []journey.Event, analysis *journey.Analysis) []Document {
	docs := make([]Document, 0, len(events)+16)

	docs = append(docs, b.buildFromEvents(events)...)
	docs = append(docs, b.buildFromAnalysis(analysis)...)

	filtered := docs[:0]
	for _, doc := range docs {
		if len(strings.TrimSpace(doc.Content)) < b.minDocLength {
			continue
		}
		filtered = append(filtered, doc)
	}

	logger.Info("Corpus built",
		zap.Int("events", len(events)),
		zap.Int("documents", len(filtered)),
	)

	return filtered
}

func (b *Builder) buildFromEvents(events []journey.Event) []Document {
	docs := make([]Document, 0, len(events))

	for _, event := range events {
		if event.Message == "" || event.TimeStamp == "" || event.Sender == "" || event.SenderRole == "" {
			logger.Debug("Skipping incomplete event", zap.String("event_id", event.EventID))
			continue
		}

		content := fmt.Sprintf("On %s, %s (%s) said: %q",
			formatEventDate(event.TimeStamp),
			event.Sender,
			event.SenderRole,
			event.Message,
		)

		docs = append(docs, Document{
			Content: content,
			Metadata: Metadata{
				Source:     SourceEventLog,
				Type:       TypeRawEvent,
				EventID:    event.EventID,
				Sender:     event.Sender,
				SenderRole: event.SenderRole,
				Timestamp:  event.TimeStamp,
			},
		})
	}

	return docs
}

func (b *Builder) buildFromAnalysis(analysis *journey.Analysis) []Document {
	if analysis == nil {
		return nil
	}

	var docs []Document

	add := func(section string, render func() (Document, bool)) {
		doc, ok := renderSection(section, render)
		if ok {
			docs = append(docs, doc)
		}
	}

	if analysis.MemberProfile != nil {
		add(TypeMemberProfile, func() (Document, bool) {
			return b.memberProfileDoc(analysis.MemberProfile), true
		})
	}

	if analysis.TeamComposition != nil {
		add(TypeTeamComposition, func() (Document, bool) {
			return b.teamCompositionDoc(analysis.TeamComposition), true
		})
	}

	for i := range analysis.JourneyEpisodes {
		episode := analysis.JourneyEpisodes[i]
		add(TypeEpisodeSummary, func() (Document, bool) {
			return b.episodeDoc(episode), true
		})
	}

	if analysis.CommunicationPatterns != nil {
		add(TypeCommunicationPatterns, func() (Document, bool) {
			return b.communicationDoc(analysis.CommunicationPatterns), true
		})
	}

	if analysis.FrictionAnalysis != nil {
		add(TypeFrictionAnalysis, func() (Document, bool) {
			return b.frictionDoc(analysis.FrictionAnalysis), true
		})
	}

	if analysis.OutcomeMetrics != nil {
		add(TypeOutcomeMetrics, func() (Document, bool) {
			return b.outcomeDoc(analysis.OutcomeMetrics), true
		})
	}

	if analysis.SatisfactionIndicators != nil {
		add(TypeSatisfactionIndicator, func() (Document, bool) {
			return b.satisfactionDoc(analysis.SatisfactionIndicators), true
		})
	}

	return docs
}

// renderSection confines one section's rendering so a malformed section
// cannot abort construction of the rest of the corpus.
func renderSection(section string, render func() (Document, bool)) (doc Document, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Skipping malformed analysis section",
				zap.String("section", section),
				zap.Any("reason", r),
			)
			ok = false
		}
	}()
	return render()
}

func (b *Builder) memberProfileDoc(profile *journey.MemberProfile) Document {
	var constraints journey.Constraints
	if profile.Constraints != nil {
		constraints = *profile.Constraints
	}

	content := fmt.Sprintf(
		"Member Profile: %s (%s) Health Concerns: %s Constraints: %s, %s Preferences: %s Tracked Biomarkers: %s",
		orPlaceholder(profile.Name, "Unknown"),
		orPlaceholder(profile.Role, "Member"),
		joinOrPlaceholder(profile.InitialHealthConcerns, ", ", "None listed"),
		orPlaceholder(constraints.TimeAvailability, "N/A"),
		orPlaceholder(constraints.Lifestyle, "N/A"),
		orPlaceholder(constraints.Preferences, "N/A"),
		joinOrPlaceholder(profile.BiomarkersTracked, ", ", "None listed"),
	)

	return Document{
		Content:  normalizeWhitespace(content),
		Metadata: Metadata{Source: SourceAnalysisReport, Type: TypeMemberProfile},
	}
}

func (b *Builder) teamCompositionDoc(team *journey.TeamComposition) Document {
	content := fmt.Sprintf(
		"Team Composition: Concierge Team: %s Medical Team: %s Specialists: %s",
		formatTeamMembers(team.ConciergeTeam),
		formatTeamMembers(team.MedicalTeam),
		formatTeamMembers(team.Specialists),
	)

	return Document{
		Content:  normalizeWhitespace(content),
		Metadata: Metadata{Source: SourceAnalysisReport, Type: TypeTeamComposition},
	}
}

func (b *Builder) episodeDoc(episode journey.Episode) Document {
	interactions := make([]string, 0, len(episode.KeyInteractions))
	for _, i := range episode.KeyInteractions {
		interactions = append(interactions, fmt.Sprintf("%s: %s",
			orPlaceholder(i.Actor, "Unknown"),
			orPlaceholder(i.Action, "Unknown action"),
		))
	}

	frictions := make([]string, 0, len(episode.FrictionPoints))
	for _, f := range episode.FrictionPoints {
		frictions = append(frictions, fmt.Sprintf("%s: %s (%s)",
			orPlaceholder(f.Type, "Unknown"),
			orPlaceholder(f.Description, "Unknown"),
			orPlaceholder(f.Resolution, "Unknown"),
		))
	}

	var evolution journey.PersonaEvolution
	if episode.PersonaEvolution != nil {
		evolution = *episode.PersonaEvolution
	}

	content := fmt.Sprintf(
		"Episode %d: %s (%s, %d days) Goal: %s Triggered by: %s Key Interactions: %s Friction Points: %s Outcome: %s Persona Evolution: From %q to %q Metrics: %s",
		episode.EpisodeNumber,
		orPlaceholder(episode.Title, "Untitled"),
		orPlaceholder(episode.DateRange, "Unknown dates"),
		episode.DurationDays,
		orPlaceholder(episode.PrimaryGoal, "Unknown goal"),
		orPlaceholder(episode.TriggeredBy, "Unknown trigger"),
		joinOrPlaceholder(interactions, "; ", "None"),
		joinOrPlaceholder(frictions, "; ", "None"),
		orPlaceholder(episode.Outcome, "Unknown outcome"),
		orPlaceholder(evolution.BeforeState, "Unknown"),
		orPlaceholder(evolution.AfterState, "Unknown"),
		formatMetrics(episode.Metrics),
	)

	return Document{
		Content: normalizeWhitespace(content),
		Metadata: Metadata{
			Source:        SourceAnalysisReport,
			Type:          TypeEpisodeSummary,
			EpisodeNumber: episode.EpisodeNumber,
			EpisodeTitle:  orPlaceholder(episode.Title, "Untitled"),
		},
	}
}

func (b *Builder) communicationDoc(patterns *journey.CommunicationPatterns) Document {
	var frequency journey.CommunicationFrequency
	if patterns.CommunicationFrequency != nil {
		frequency = *patterns.CommunicationFrequency
	}

	content := fmt.Sprintf(
		"Communication Patterns: Average response time: %s minutes Total interactions: %d Member initiated: %d Team initiated: %d Daily average: %s Peak periods: %s Interaction types: %s",
		formatFloat(patterns.AverageResponseTimeMinutes),
		patterns.TotalInteractions,
		patterns.MemberInitiatedInteractions,
		patterns.TeamInitiatedInteractions,
		formatFloat(frequency.DailyAverage),
		joinOrPlaceholder(frequency.PeakPeriods, ", ", "None"),
		formatCountMap(patterns.InteractionTypes),
	)

	return Document{
		Content:  normalizeWhitespace(content),
		Metadata: Metadata{Source: SourceAnalysisReport, Type: TypeCommunicationPatterns},
	}
}

func (b *Builder) frictionDoc(friction *journey.FrictionAnalysis) Document {
	var effectiveness journey.ResolutionEffectiveness
	if friction.ResolutionEffectiveness != nil {
		effectiveness = *friction.ResolutionEffectiveness
	}

	content := fmt.Sprintf(
		"Friction Analysis: Total friction points: %d Categories: %s Resolution effectiveness: Immediate: %d, Required iteration: %d, Ongoing management: %d Resolution strategies: %s",
		friction.TotalFrictionPoints,
		formatCountMap(friction.Categories),
		effectiveness.ImmediateResolution,
		effectiveness.RequiredIteration,
		effectiveness.OngoingManagement,
		joinOrPlaceholder(friction.ResolutionStrategies, ", ", "None"),
	)

	return Document{
		Content:  normalizeWhitespace(content),
		Metadata: Metadata{Source: SourceAnalysisReport, Type: TypeFrictionAnalysis},
	}
}

func (b *Builder) outcomeDoc(outcomes *journey.OutcomeMetrics) Document {
	var biomarkers journey.BiomarkerImprovements
	if outcomes.BiomarkerImprovements != nil {
		biomarkers = *outcomes.BiomarkerImprovements
	}

	var behaviors journey.BehavioralChanges
	if outcomes.BehavioralChanges != nil {
		behaviors = *outcomes.BehavioralChanges
	}

	var efficiency journey.ProgramEfficiency
	if outcomes.ProgramEfficiency != nil {
		efficiency = *outcomes.ProgramEfficiency
	}

	content := fmt.Sprintf(
		"Outcome Metrics: Biomarker Improvements: Blood pressure: %s, ApoB: %s, Sleep quality: %s, Cardiovascular fitness: %s "+
			"Behavioral Changes: Exercise consistency: %s, Nutrition adherence: %s, Sleep hygiene: %s, Stress management: %s "+
			"Program Efficiency: Time constraint respect: %s, Travel adaptability: %s, Plateau management: %s",
		formatJSONMap(biomarkers.BloodPressure),
		formatJSONMap(biomarkers.ApoB),
		formatJSONMap(biomarkers.SleepQuality),
		formatJSONMap(biomarkers.CardiovascularFitness),
		orPlaceholder(behaviors.ExerciseConsistency, "N/A"),
		orPlaceholder(behaviors.NutritionAdherence, "N/A"),
		orPlaceholder(behaviors.SleepHygiene, "N/A"),
		orPlaceholder(behaviors.StressManagement, "N/A"),
		orPlaceholder(efficiency.TimeConstraintRespect, "N/A"),
		orPlaceholder(efficiency.TravelAdaptability, "N/A"),
		orPlaceholder(efficiency.PlateauManagement, "N/A"),
	)

	return Document{
		Content:  normalizeWhitespace(content),
		Metadata: Metadata{Source: SourceAnalysisReport, Type: TypeOutcomeMetrics},
	}
}

func (b *Builder) satisfactionDoc(satisfaction *journey.SatisfactionIndicators) Document {
	var engagement journey.EngagementIndicators
	if satisfaction.EngagementIndicators != nil {
		engagement = *satisfaction.EngagementIndicators
	}

	content := fmt.Sprintf(
		"Member Satisfaction Indicators: Explicit satisfaction statements: %s "+
			"Engagement indicators: Proactive communications: %d, Knowledge seeking behaviors: %d, Self-monitoring adoption: %s, Plan adherence rate: %s "+
			"Trust building evidence: %s",
		joinOrPlaceholder(satisfaction.ExplicitSatisfactionStatements, "; ", "None"),
		engagement.ProactiveCommunications,
		engagement.KnowledgeSeekingBehaviors,
		orPlaceholder(engagement.SelfMonitoringAdoption, "N/A"),
		orPlaceholder(engagement.PlanAdherenceRate, "N/A"),
		joinOrPlaceholder(satisfaction.TrustBuildingEvidence, "; ", "None"),
	)

	return Document{
		Content:  normalizeWhitespace(content),
		Metadata: Metadata{Source: SourceAnalysisReport, Type: TypeSatisfactionIndicator},
	}
}

// Timestamps arrive as whatever the transcript parser emitted; the common
// shapes are tried before falling back to the raw token.
var eventTimeLayouts = []string{
	time.RFC3339,
	"1/2/06, 3:04 PM",
	"1/2/2006, 3:04 PM",
	"2006-01-02 15:04",
}

func formatEventDate(raw string) string {
	trimmed := strings.Trim(raw, "[] ")
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("Mon Jan 2 2006")
		}
	}
	return trimmed
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

func joinOrPlaceholder(values []string, sep, placeholder string) string {
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			trimmed = append(trimmed, v)
		}
	}
	if len(trimmed) == 0 {
		return placeholder
	}
	return strings.Join(trimmed, sep)
}

func formatTeamMembers(members []journey.TeamMember) string {
	if len(members) == 0 {
		return "None"
	}

	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, fmt.Sprintf("%s (%s): %s",
			orPlaceholder(m.Name, "Unknown"),
			orPlaceholder(m.Role, "Unknown"),
			joinOrPlaceholder(m.Responsibilities, ", ", "None"),
		))
	}
	return strings.Join(parts, "; ")
}

func formatMetrics(metrics map[string]any) string {
	if len(metrics) == 0 {
		return "None"
	}

	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, metrics[k]))
	}
	return strings.Join(parts, ", ")
}

func formatCountMap(counts map[string]int) string {
	if len(counts) == 0 {
		return "None"
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

func formatJSONMap(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func formatFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
