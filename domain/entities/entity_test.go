package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidKind(t *testing.T) {
	tests := []struct {
		name string
		kind string
		want bool
	}{
		{"project", KindProject, true},
		{"task", KindTask, true},
		{"resource", KindResource, true},
		{"agent", KindAgent, true},
		{"win", KindWIN, true},
		{"recognition", KindRecognition, true},
		{"tension", KindTension, true},
		{"unknown kind", "document", false},
		{"empty", "", false},
		{"uppercase variant", "Project", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidKind(tt.kind))
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid v4", "a3bb189e-8bf9-3888-9912-ace4e6543002", true},
		{"valid uppercase", "A3BB189E-8BF9-3888-9912-ACE4E6543002", true},
		{"all zeros", "00000000-0000-0000-0000-000000000000", true},
		{"missing segment", "a3bb189e-8bf9-3888-9912", false},
		{"no dashes", "a3bb189e8bf938889912ace4e6543002", false},
		{"non-hex chars", "a3bb189e-8bf9-3888-9912-ace4e654300g", false},
		{"empty", "", false},
		{"trailing junk", "a3bb189e-8bf9-3888-9912-ace4e6543002x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidUUID(tt.id))
		})
	}
}
