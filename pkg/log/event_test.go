package log

import "testing"

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"direction in", DirectionIn.String(), "IN"},
		{"direction out", DirectionOut.String(), "OUT"},
		{"direction unknown", Direction(99).String(), "UNKNOWN"},
		{"layer transport", LayerTransport.String(), "TRANSPORT"},
		{"layer rdm", LayerRDM.String(), "RDM"},
		{"layer discovery", LayerDiscovery.String(), "DISCOVERY"},
		{"layer unknown", Layer(99).String(), "UNKNOWN"},
		{"category message", CategoryMessage.String(), "MESSAGE"},
		{"category outcome", CategoryOutcome.String(), "OUTCOME"},
		{"category state", CategoryState.String(), "STATE"},
		{"category error", CategoryError.String(), "ERROR"},
		{"category unknown", Category(99).String(), "UNKNOWN"},
		{"action branch", ActionBranch.String(), "BRANCH"},
		{"action added", ActionAdded.String(), "ADDED"},
		{"action late", ActionLate.String(), "LATE"},
		{"action unknown", DiscoveryAction(99).String(), "UNKNOWN"},
		{"entity discovery", StateEntityDiscovery.String(), "DISCOVERY"},
		{"entity widget", StateEntityWidget.String(), "WIDGET"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
