package plugin

import "testing"

func TestPluginState_String(t *testing.T) {
	tests := []struct {
		state PluginState
		want  string
	}{
		{StateRegistered, "registered"},
		{StateInstalled, "installed"},
		{StateEnabled, "enabled"},
		{StateActive, "active"},
		{StateDisabled, "disabled"},
		{StateFailed, "failed"},
		{PluginState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("PluginState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestPluginState_IsTerminal(t *testing.T) {
	if StateEnabled.IsTerminal() {
		t.Error("Enabled should not be terminal")
	}
	if !StateFailed.IsTerminal() {
		t.Error("Failed should be terminal")
	}
	// Disabled plugins can be re-enabled at runtime.
	if StateDisabled.IsTerminal() {
		t.Error("Disabled should not be terminal")
	}
}

func TestPluginState_IsRunning(t *testing.T) {
	if !StateEnabled.IsRunning() {
		t.Error("Enabled should be running")
	}
	if !StateActive.IsRunning() {
		t.Error("Active should be running")
	}
	if StateDisabled.IsRunning() {
		t.Error("Disabled should not be running")
	}
	if StateRegistered.IsRunning() {
		t.Error("Registered should not be running")
	}
}
