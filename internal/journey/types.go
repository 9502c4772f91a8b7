package journey

// Event is one timestamped entry of the member's conversation log, as
// produced by the upstream transcript parser.
type Event struct {
	EventID    string `json:"eventId"`
	TimeStamp  string `json:"timeStamp"`
	Sender     string `json:"sender"`
	SenderRole string `json:"senderRole"`
	Message    string `json:"message"`
}

// Analysis is the structured journey-analysis report. Every field below the
// top level is optional in practice; the corpus builder substitutes
// placeholders rather than failing on absent data.
type Analysis struct {
	MemberProfile          *MemberProfile          `json:"member_profile"`
	TeamComposition        *TeamComposition        `json:"team_composition"`
	JourneyEpisodes        []Episode               `json:"journey_episodes"`
	CommunicationPatterns  *CommunicationPatterns  `json:"communication_patterns"`
	FrictionAnalysis       *FrictionAnalysis       `json:"friction_analysis"`
	OutcomeMetrics         *OutcomeMetrics         `json:"outcome_metrics"`
	SatisfactionIndicators *SatisfactionIndicators `json:"member_satisfaction_indicators"`
}

type MemberProfile struct {
	Name                  string       `json:"name"`
	Role                  string       `json:"role"`
	InitialHealthConcerns []string     `json:"initial_health_concerns"`
	Constraints           *Constraints `json:"constraints"`
	BiomarkersTracked     []string     `json:"biomarkers_tracked"`
}

type Constraints struct {
	TimeAvailability string `json:"time_availability"`
	Lifestyle        string `json:"lifestyle"`
	Preferences      string `json:"preferences"`
}

type TeamMember struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Responsibilities []string `json:"responsibilities"`
}

type TeamComposition struct {
	ConciergeTeam []TeamMember `json:"concierge_team"`
	MedicalTeam   []TeamMember `json:"medical_team"`
	Specialists   []TeamMember `json:"specialists"`
}

type Interaction struct {
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
}

type FrictionPoint struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Resolution  string `json:"resolution"`
}

type PersonaEvolution struct {
	BeforeState string `json:"before_state"`
	AfterState  string `json:"after_state"`
}

type Episode struct {
	EpisodeNumber    int               `json:"episode_number"`
	Title            string            `json:"title"`
	DateRange        string            `json:"date_range"`
	DurationDays     int               `json:"duration_days"`
	PrimaryGoal      string            `json:"primary_goal"`
	TriggeredBy      string            `json:"triggered_by"`
	KeyInteractions  []Interaction     `json:"key_interactions"`
	FrictionPoints   []FrictionPoint   `json:"friction_points"`
	Outcome          string            `json:"outcome"`
	Metrics          map[string]any    `json:"metrics"`
	PersonaEvolution *PersonaEvolution `json:"persona_evolution"`
}

type CommunicationFrequency struct {
	DailyAverage float64  `json:"daily_average"`
	PeakPeriods  []string `json:"peak_periods"`
	QuietPeriods []string `json:"quiet_periods"`
}

type CommunicationPatterns struct {
	AverageResponseTimeMinutes  float64                 `json:"average_response_time_minutes"`
	TotalInteractions           int                     `json:"total_interactions"`
	MemberInitiatedInteractions int                     `json:"member_initiated_interactions"`
	TeamInitiatedInteractions   int                     `json:"team_initiated_interactions"`
	CommunicationFrequency      *CommunicationFrequency `json:"communication_frequency"`
	InteractionTypes            map[string]int          `json:"interaction_types"`
}

type ResolutionEffectiveness struct {
	ImmediateResolution int `json:"immediate_resolution"`
	RequiredIteration   int `json:"required_iteration"`
	OngoingManagement   int `json:"ongoing_management"`
}

type FrictionAnalysis struct {
	TotalFrictionPoints     int                      `json:"total_friction_points"`
	Categories              map[string]int           `json:"categories"`
	ResolutionEffectiveness *ResolutionEffectiveness `json:"resolution_effectiveness"`
	ResolutionStrategies    []string                 `json:"resolution_strategies"`
}

type BiomarkerImprovements struct {
	BloodPressure         map[string]any `json:"blood_pressure"`
	ApoB                  map[string]any `json:"apoB"`
	SleepQuality          map[string]any `json:"sleep_quality"`
	CardiovascularFitness map[string]any `json:"cardiovascular_fitness"`
}

type BehavioralChanges struct {
	ExerciseConsistency string `json:"exercise_consistency"`
	NutritionAdherence  string `json:"nutrition_adherence"`
	SleepHygiene        string `json:"sleep_hygiene"`
	StressManagement    string `json:"stress_management"`
}

type ProgramEfficiency struct {
	TimeConstraintRespect string `json:"time_constraint_respect"`
	TravelAdaptability    string `json:"travel_adaptability"`
	PlateauManagement     string `json:"plateau_management"`
}

type OutcomeMetrics struct {
	BiomarkerImprovements *BiomarkerImprovements `json:"biomarker_improvements"`
	BehavioralChanges     *BehavioralChanges     `json:"behavioral_changes"`
	ProgramEfficiency     *ProgramEfficiency     `json:"program_efficiency"`
}

type EngagementIndicators struct {
	ProactiveCommunications   int    `json:"proactive_communications"`
	KnowledgeSeekingBehaviors int    `json:"knowledge_seeking_behaviors"`
	SelfMonitoringAdoption    string `json:"self_monitoring_adoption"`
	PlanAdherenceRate         string `json:"plan_adherence_rate"`
}

type SatisfactionIndicators struct {
	ExplicitSatisfactionStatements []string              `json:"explicit_satisfaction_statements"`
	EngagementIndicators           *EngagementIndicators `json:"engagement_indicators"`
	TrustBuildingEvidence          []string              `json:"trust_building_evidence"`
}
