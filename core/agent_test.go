package core

import "testing"

func TestAgent_ClaimLifecycle(t *testing.T) {
	a := NewAgent("Red", "a friendly farmer")
	if a.State() != StateIdle {
		t.Fatalf("new agent should be idle, got %s", a.State())
	}

	if !a.BeginNegotiation() {
		t.Fatal("idle agent should accept negotiation")
	}
	if a.BeginNegotiation() {
		t.Error("negotiating agent must not be claimable again")
	}

	if !a.EnterSession(RoleInitiator, "partner", "session") {
		t.Fatal("negotiating agent should enter session")
	}
	eng, ok := a.Engagement()
	if !ok || eng.PartnerID != "partner" || eng.SessionID != "session" || eng.Role != RoleInitiator {
		t.Fatalf("unexpected engagement: %+v ok=%v", eng, ok)
	}

	if a.LeaveSession("other-session") {
		t.Error("stale session id must not release the agent")
	}
	if !a.LeaveSession("session") {
		t.Fatal("owning session should release the agent")
	}
	if a.State() != StateCooldown {
		t.Errorf("released agent should be in cooldown, got %s", a.State())
	}
	if a.LeaveSession("session") {
		t.Error("second release must be a no-op")
	}

	a.SetIdle()
	if a.State() != StateIdle {
		t.Errorf("cooled-down agent should return to idle, got %s", a.State())
	}
}

func TestAgent_AbortNegotiation(t *testing.T) {
	a := NewAgent("Blue", "a grumpy merchant")
	if !a.BeginNegotiation() {
		t.Fatal("idle agent should accept negotiation")
	}
	a.AbortNegotiation()
	if a.State() != StateIdle {
		t.Errorf("aborted negotiation should restore idle, got %s", a.State())
	}

	// Abort outside negotiation changes nothing.
	a.AbortNegotiation()
	if a.State() != StateIdle {
		t.Errorf("abort on idle agent should be a no-op, got %s", a.State())
	}
}

func TestAgent_SetIdleOnlyFromCooldown(t *testing.T) {
	a := NewAgent("Green", "curious")
	a.BeginNegotiation()
	a.SetIdle()
	if a.State() != StateNegotiating {
		t.Errorf("SetIdle must not interrupt negotiation, got %s", a.State())
	}
}

func TestCategory_Matches(t *testing.T) {
	if !CategoryAgent.Matches(CategoryAgent | CategoryProp) {
		t.Error("agent category should match a combined mask")
	}
	if CategoryProp.Matches(CategoryAgent) {
		t.Error("prop must not match an agent-only mask")
	}
}

func TestVec3_Distance(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 2}
	if d := a.Distance(Vec3{}); d != 3 {
		t.Errorf("expected distance 3, got %v", d)
	}
	if d := a.DistanceSq(Vec3{}); d != 9 {
		t.Errorf("expected squared distance 9, got %v", d)
	}
}
