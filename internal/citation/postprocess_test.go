package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		citations   Map
		wantAnswer  string
		wantSources []Source
	}{
		{
			name:        "single valid citation",
			answer:      "The plan was confirmed [1].",
			citations:   Map{1: "evt-001"},
			wantAnswer:  "The plan was confirmed [1].",
			wantSources: []Source{{Citation: 1, EventID: "evt-001"}},
		},
		{
			name:        "hallucinated marker dropped",
			answer:      "Confirmed [1] and also [3].",
			citations:   Map{1: "evt-001", 2: "evt-002"},
			wantAnswer:  "Confirmed [1] and also .",
			wantSources: []Source{{Citation: 1, EventID: "evt-001"}},
		},
		{
			name:        "repeated marker deduplicated",
			answer:      "First [2], then again [2].",
			citations:   Map{1: "evt-001", 2: "evt-002"},
			wantAnswer:  "First [1], then again [1].",
			wantSources: []Source{{Citation: 1, EventID: "evt-002"}},
		},
		{
			name:       "renumbered by first occurrence",
			answer:     "Start [4] middle [2] end [4].",
			citations:  Map{2: "evt-002", 4: "evt-004"},
			wantAnswer: "Start [1] middle [2] end [1].",
			wantSources: []Source{
				{Citation: 1, EventID: "evt-004"},
				{Citation: 2, EventID: "evt-002"},
			},
		},
		{
			name:        "no markers at all",
			answer:      "A plain answer with no citations.",
			citations:   Map{1: "evt-001"},
			wantAnswer:  "A plain answer with no citations.",
			wantSources: []Source{},
		},
		{
			name:        "empty answer",
			answer:      "",
			citations:   Map{1: "evt-001"},
			wantAnswer:  "",
			wantSources: []Source{},
		},
		{
			name:        "no citations issued drops everything",
			answer:      "Claim [1] and claim [2].",
			citations:   Map{},
			wantAnswer:  "Claim  and claim .",
			wantSources: []Source{},
		},
		{
			name:        "non-marker brackets left alone",
			answer:      "An array [a, b] and a range [1-3] and [ 2 ] survive, [1] does not lie.",
			citations:   Map{1: "evt-001"},
			wantAnswer:  "An array [a, b] and a range [1-3] and [ 2 ] survive, [1] does not lie.",
			wantSources: []Source{{Citation: 1, EventID: "evt-001"}},
		},
		{
			name:        "unclosed bracket at end of answer",
			answer:      "Trailing [12",
			citations:   Map{12: "evt-012"},
			wantAnswer:  "Trailing [12",
			wantSources: []Source{},
		},
		{
			name:        "multi digit marker",
			answer:      "Late reference [12].",
			citations:   Map{12: "evt-012"},
			wantAnswer:  "Late reference [1].",
			wantSources: []Source{{Citation: 1, EventID: "evt-012"}},
		},
		{
			name:       "adjacent markers",
			answer:     "[2][1]",
			citations:  Map{1: "evt-001", 2: "evt-002"},
			wantAnswer: "[1][2]",
			wantSources: []Source{
				{Citation: 1, EventID: "evt-002"},
				{Citation: 2, EventID: "evt-001"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PostProcess(tt.answer, tt.citations)
			assert.Equal(t, tt.wantAnswer, got.Answer)
			assert.Equal(t, tt.wantSources, got.Sources)
		})
	}
}

func TestPostProcessDeterministic(t *testing.T) {
	answer := "One [3], two [1], three [3] again."
	citations := Map{1: "evt-a", 3: "evt-b"}

	first := PostProcess(answer, citations)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, PostProcess(answer, citations))
	}
}

func TestPostProcessIdempotentWhenDense(t *testing.T) {
	// An answer already using dense 1..M numbering maps onto itself when the
	// map is re-keyed to the final numbers.
	citations := Map{1: "evt-a", 2: "evt-b"}
	answer := "First [1], second [2], first again [1]."

	got := PostProcess(answer, citations)
	require.Equal(t, answer, got.Answer)
	assert.Equal(t, []Source{
		{Citation: 1, EventID: "evt-a"},
		{Citation: 2, EventID: "evt-b"},
	}, got.Sources)

	again := PostProcess(got.Answer, citations)
	assert.Equal(t, got, again)
}

func TestTokenizeRoundTrip(t *testing.T) {
	// Concatenating the token texts must reproduce the input exactly, so a
	// marker-free pass through PostProcess can never mangle the answer.
	inputs := []string{
		"",
		"plain text",
		"[1]",
		"[]",
		"[",
		"]",
		"[abc]",
		"a [1] b [22] c",
		"[1][2][3]",
		"nested [[1]] brackets",
		"unicode ünïcode [1] préserved",
	}

	for _, in := range inputs {
		var rebuilt string
		for _, tok := range tokenize(in) {
			rebuilt += tok.text
		}
		assert.Equal(t, in, rebuilt)
	}
}
