package ws

import (
	"testing"
	"time"

	"chargenet/internal/station"
	"chargenet/internal/types"
)

func TestManagerDrivesConnectivity(t *testing.T) {
	registry := station.NewRegistry(nil)
	st := registry.Create("S1")
	st.CreateEVSE("E1")

	manager := NewManager(registry, time.Minute, nil)
	if manager.Connected("S1") {
		t.Fatal("no connection registered yet")
	}

	conn := NewConnection("S1", nil, time.Second, nil, manager.Remove)
	manager.Add(conn)

	if !manager.Connected("S1") {
		t.Fatal("expected station connected")
	}

	manager.Remove("S1")
	if manager.Connected("S1") {
		t.Fatal("expected station disconnected")
	}

	evse, _ := st.EVSE("E1")
	if evse.Status() != types.StatusOffline {
		t.Fatalf("expected offline after disconnect, got %s", evse.Status())
	}

	manager.Add(NewConnection("S1", nil, time.Second, nil, manager.Remove))
	if evse.Status() != types.StatusAvailable {
		t.Fatalf("expected available after reconnect, got %s", evse.Status())
	}
}
