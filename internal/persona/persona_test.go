package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elyx-health/journey-backend/internal/corpus"
)

func docWithSender(sender string) *corpus.Document {
	return &corpus.Document{
		Content:  "x",
		Metadata: corpus.Metadata{Sender: sender},
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		result *corpus.Document
		want   ID
	}{
		{"nil result", nil, Neel},
		{"empty sender", docWithSender(""), Neel},
		{"unknown sender", docWithSender("Dr. Evil"), Neel},
		{"member maps to system analyst", docWithSender("Rohan"), System},
		{"concierge", docWithSender("Ruby"), Ruby},
		{"medical strategist", docWithSender("Dr. Warren"), DrWarren},
		{"performance scientist", docWithSender("Advik"), Advik},
		{"nutritionist", docWithSender("Carla"), Carla},
		{"physiotherapist", docWithSender("Rachel"), Rachel},
		{"concierge lead", docWithSender("Neel"), Neel},
		{"system sender", docWithSender("System"), System},
		{"case sensitive lookup", docWithSender("ruby"), Neel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.result))
		})
	}
}

func TestProfileForCoversEveryPersona(t *testing.T) {
	for _, id := range []ID{Ruby, DrWarren, Advik, Carla, Rachel, Neel, System} {
		p := ProfileFor(id)
		assert.NotEmpty(t, p.Name, "persona %s", id)
		assert.NotEmpty(t, p.Description, "persona %s", id)
	}
}

func TestProfileForUnknownFallsBack(t *testing.T) {
	assert.Equal(t, ProfileFor(Default), ProfileFor(ID("made-up")))
}
