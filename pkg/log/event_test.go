package log

import "testing"

func TestDirectionString(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{DirectionIn, "IN"},
		{DirectionOut, "OUT"},
		{Direction(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.dir.String()
		if got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestLayerString(t *testing.T) {
	tests := []struct {
		layer Layer
		want  string
	}{
		{LayerSocket, "SOCKET"},
		{LayerTransport, "TRANSPORT"},
		{LayerHandshake, "HANDSHAKE"},
		{Layer(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.layer.String()
		if got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", tt.layer, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryMessage, "MESSAGE"},
		{CategoryHandshake, "HANDSHAKE"},
		{CategoryState, "STATE"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.cat.String()
		if got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

func TestRoleString(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleClient, "CLIENT"},
		{RoleServer, "SERVER"},
		{Role(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.role.String()
		if got != tt.want {
			t.Errorf("Role(%d).String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestStateEntityString(t *testing.T) {
	tests := []struct {
		entity StateEntity
		want   string
	}{
		{StateEntityConnection, "CONNECTION"},
		{StateEntityListener, "LISTENER"},
		{StateEntity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.entity.String()
		if got != tt.want {
			t.Errorf("StateEntity(%d).String() = %q, want %q", tt.entity, got, tt.want)
		}
	}
}

func TestDirectionValues(t *testing.T) {
	// Verify explicit values for wire stability
	if DirectionIn != 0 {
		t.Errorf("DirectionIn = %d, want 0", DirectionIn)
	}
	if DirectionOut != 1 {
		t.Errorf("DirectionOut = %d, want 1", DirectionOut)
	}
}

func TestLayerValues(t *testing.T) {
	// Verify explicit values for wire stability
	if LayerSocket != 0 {
		t.Errorf("LayerSocket = %d, want 0", LayerSocket)
	}
	if LayerTransport != 1 {
		t.Errorf("LayerTransport = %d, want 1", LayerTransport)
	}
	if LayerHandshake != 2 {
		t.Errorf("LayerHandshake = %d, want 2", LayerHandshake)
	}
}

func TestCategoryValues(t *testing.T) {
	// Verify explicit values for wire stability
	if CategoryMessage != 0 {
		t.Errorf("CategoryMessage = %d, want 0", CategoryMessage)
	}
	if CategoryHandshake != 1 {
		t.Errorf("CategoryHandshake = %d, want 1", CategoryHandshake)
	}
	if CategoryState != 2 {
		t.Errorf("CategoryState = %d, want 2", CategoryState)
	}
	if CategoryError != 3 {
		t.Errorf("CategoryError = %d, want 3", CategoryError)
	}
}

func TestRoleValues(t *testing.T) {
	// Verify explicit values for wire stability
	if RoleClient != 0 {
		t.Errorf("RoleClient = %d, want 0", RoleClient)
	}
	if RoleServer != 1 {
		t.Errorf("RoleServer = %d, want 1", RoleServer)
	}
}
