package notification

import (
	"testing"
	"time"

	"gorm.io/gorm"
)

func makeNotification(id uint, status NotificationStatus, createdAt time.Time) Notification {
	return Notification{
		Model:  gorm.Model{ID: id, CreatedAt: createdAt},
		Type:   TypeInvite,
		Status: status,
	}
}

func notifIDs(notifications []Notification) []uint {
	ids := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestPartitionSplitsByStatus(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	input := []Notification{
		makeNotification(1, StatusNotifPending, base),
		makeNotification(2, StatusNotifAccepted, base.Add(time.Minute)),
		makeNotification(3, StatusNotifPending, base.Add(2*time.Minute)),
		makeNotification(4, StatusNotifRead, base.Add(3*time.Minute)),
		makeNotification(5, StatusNotifDeclined, base.Add(4*time.Minute)),
	}

	pending, other := Partition(input)

	if len(pending)+len(other) != len(input) {
		t.Fatalf("partition lost records: %d + %d != %d", len(pending), len(other), len(input))
	}
	for _, n := range pending {
		if n.Status != StatusNotifPending {
			t.Errorf("notification %d with status %q in pending group", n.ID, n.Status)
		}
	}
	for _, n := range other {
		if n.Status == StatusNotifPending {
			t.Errorf("pending notification %d in other group", n.ID)
		}
	}
}

func TestPartitionSortsMostRecentFirst(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	input := []Notification{
		makeNotification(1, StatusNotifPending, base),
		makeNotification(2, StatusNotifPending, base.Add(2*time.Hour)),
		makeNotification(3, StatusNotifPending, base.Add(time.Hour)),
		makeNotification(4, StatusNotifRead, base.Add(30*time.Minute)),
		makeNotification(5, StatusNotifRead, base.Add(3*time.Hour)),
	}

	pending, other := Partition(input)

	wantPending := []uint{2, 3, 1}
	got := notifIDs(pending)
	for i, id := range wantPending {
		if got[i] != id {
			t.Fatalf("pending order: expected %v, got %v", wantPending, got)
		}
	}

	wantOther := []uint{5, 4}
	got = notifIDs(other)
	for i, id := range wantOther {
		if got[i] != id {
			t.Fatalf("other order: expected %v, got %v", wantOther, got)
		}
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	pending, other := Partition(nil)
	if len(pending) != 0 || len(other) != 0 {
		t.Fatalf("expected empty groups for nil input, got %v / %v", notifIDs(pending), notifIDs(other))
	}
}

func TestActionable(t *testing.T) {
	cases := []struct {
		notifType NotificationType
		status    NotificationStatus
		want      bool
	}{
		{TypeInvite, StatusNotifPending, true},
		{TypeGroup, StatusNotifPending, true},
		{TypeUpdate, StatusNotifPending, false},
		{TypeCancelled, StatusNotifPending, false},
		{TypeInvite, StatusNotifAccepted, false},
		{TypeInvite, StatusNotifDeclined, false},
	}
	for _, tc := range cases {
		n := Notification{Type: tc.notifType, Status: tc.status}
		if got := n.Actionable(); got != tc.want {
			t.Errorf("Actionable() for %s/%s = %v, want %v", tc.notifType, tc.status, got, tc.want)
		}
	}
}
