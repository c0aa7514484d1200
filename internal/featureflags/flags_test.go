package featureflags

import "testing"

func TestEnabledDefaults(t *testing.T) {
	t.Setenv("FLAG_OPTIMISTIC_BOOKINGS", "")
	if !Enabled(OptimisticBookings) {
		t.Fatalf("expected optimistic bookings on by default")
	}
	if Enabled("does_not_exist") {
		t.Fatalf("expected unknown flag to be off")
	}
}

func TestEnabledOverride(t *testing.T) {
	t.Setenv("FLAG_OPTIMISTIC_BOOKINGS", "off")
	if Enabled(OptimisticBookings) {
		t.Fatalf("expected flag disabled by env")
	}
	t.Setenv("FLAG_PUSH_JOURNAL", "YES")
	if !Enabled(PushJournal) {
		t.Fatalf("expected flag enabled by env")
	}
}
