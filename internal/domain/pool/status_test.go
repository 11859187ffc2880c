package pool_test

import (
	"testing"

	"talent-ledger/internal/domain/pool"
)

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"ACTIVE", "PAUSED", "COMPLETED", "CANCELLED", "EXPIRED"}
	for _, s := range valid {
		got, err := pool.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	if _, err := pool.ParseStatus("OPEN"); err == nil {
		t.Error("ParseStatus(\"OPEN\") expected error, got nil")
	}
	if _, err := pool.ParseStatus(""); err == nil {
		t.Error("ParseStatus(\"\") expected error, got nil")
	}
}

func TestIsTransitionAllowed_Valid(t *testing.T) {
	cases := []struct {
		from, to pool.Status
	}{
		{pool.StatusActive, pool.StatusPaused},
		{pool.StatusActive, pool.StatusCompleted},
		{pool.StatusActive, pool.StatusCancelled},
		{pool.StatusActive, pool.StatusExpired},
		{pool.StatusPaused, pool.StatusActive},
		{pool.StatusPaused, pool.StatusCancelled},
	}
	for _, c := range cases {
		if !pool.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s, %s) = false, want true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_TerminalStatesHaveNoExits(t *testing.T) {
	terminals := []pool.Status{pool.StatusCompleted, pool.StatusCancelled, pool.StatusExpired}
	all := []pool.Status{
		pool.StatusActive, pool.StatusPaused,
		pool.StatusCompleted, pool.StatusCancelled, pool.StatusExpired,
	}
	for _, from := range terminals {
		for _, to := range all {
			if pool.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s, %s) = true, want false", from, to)
			}
		}
	}
}

func TestIsTransitionAllowed_PausedCannotComplete(t *testing.T) {
	// Selection requires an ACTIVE pool; a paused pool must resume first.
	if pool.IsTransitionAllowed(pool.StatusPaused, pool.StatusCompleted) {
		t.Error("PAUSED → COMPLETED should not be allowed")
	}
	if pool.IsTransitionAllowed(pool.StatusPaused, pool.StatusExpired) {
		t.Error("PAUSED → EXPIRED should not be allowed")
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if pool.StatusActive.IsTerminal() || pool.StatusPaused.IsTerminal() {
		t.Error("ACTIVE and PAUSED must not be terminal")
	}
	for _, s := range []pool.Status{pool.StatusCompleted, pool.StatusCancelled, pool.StatusExpired} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestApplicationStatusIsTerminal(t *testing.T) {
	if pool.ApplicationPending.IsTerminal() {
		t.Error("PENDING must not be terminal")
	}
	for _, s := range []pool.ApplicationStatus{
		pool.ApplicationAccepted, pool.ApplicationRejected, pool.ApplicationWithdrawn,
	} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestParseJobType(t *testing.T) {
	for _, s := range []string{"FULL_TIME", "PART_TIME", "CONTRACT", "FREELANCE"} {
		if _, ok := pool.ParseJobType(s); !ok {
			t.Errorf("ParseJobType(%q) should succeed", s)
		}
	}
	if _, ok := pool.ParseJobType("INTERNSHIP"); ok {
		t.Error("ParseJobType(\"INTERNSHIP\") should fail")
	}
}
