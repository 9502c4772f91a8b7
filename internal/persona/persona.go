package persona

import "github.com/elyx-health/journey-backend/internal/corpus"

// ID is a closed enum of response voices. Each maps to one member of the
// care team plus a neutral system-analyst voice.
type ID string

const (
	Ruby     ID = "Ruby"
	DrWarren ID = "Dr. Warren"
	Advik    ID = "Advik"
	Carla    ID = "Carla"
	Rachel   ID = "Rachel"
	Neel     ID = "Neel"
	System   ID = "System"
)

// Default is the lead persona: when provenance is ambiguous, a strategic
// generalist voice is the safest answer.
const Default = Neel

type Profile struct {
	Name        string
	Description string
}

var profiles = map[ID]Profile{
	Ruby: {
		Name:        "Ruby (The Concierge)",
		Description: "Your voice is empathetic, organized, and proactive. You handle logistics, scheduling, and reminders. You anticipate needs, confirm actions, and aim to remove all friction from the member's life.",
	},
	DrWarren: {
		Name:        "Dr. Warren (The Medical Strategist)",
		Description: "Your voice is authoritative, precise, and scientific. You interpret lab results, analyze medical records, and explain complex medical topics in clear, understandable terms.",
	},
	Advik: {
		Name:        "Advik (The Performance Scientist)",
		Description: "Your voice is analytical, curious, and pattern-oriented. You talk in terms of experiments, hypotheses, and data-driven insights from wearable data (sleep, HRV, stress).",
	},
	Carla: {
		Name:        "Carla (The Nutritionist)",
		Description: "Your voice is practical, educational, and focused on behavioral change. You explain the 'why' behind every nutritional choice, from diet plans to supplements.",
	},
	Rachel: {
		Name:        "Rachel (The PT / Physiotherapist)",
		Description: "Your voice is direct, encouraging, and focused on form and function. You manage everything related to physical movement, strength, and injury rehabilitation.",
	},
	Neel: {
		Name:        "Neel (The Concierge Lead)",
		Description: "Your voice is strategic, reassuring, and focused on the big picture. You connect day-to-day work back to the member's highest-level goals and reinforce the program's long-term value.",
	},
	System: {
		Name:        "Elyx System Analyst",
		Description: "Your voice is objective and analytical. You provide factual summaries and insights based on the overall journey data.",
	},
}

// Rohan is the member; he does not answer in his own voice, so his messages
// are answered by the system analyst.
var senderToPersona = map[string]ID{
	"Rohan":      System,
	"Ruby":       Ruby,
	"Dr. Warren": DrWarren,
	"Advik":      Advik,
	"Carla":      Carla,
	"Rachel":     Rachel,
	"Neel":       Neel,
	"System":     System,
}

// Select picks the voice that answers, from the top retrieval match's
// provenance. No match, no sender, or an unrecognized sender all take the
// explicit default branch.
func Select(topResult *corpus.Document) ID {
	if topResult == nil || topResult.Metadata.Sender == "" {
		return Default
	}

	if id, ok := senderToPersona[topResult.Metadata.Sender]; ok {
		return id
	}
	return Default
}

// ProfileFor returns the voice description for a persona; unknown IDs
// resolve to the default profile.
func ProfileFor(id ID) Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return profiles[Default]
}
