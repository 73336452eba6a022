package notification

import "sort"

// Partition splits notifications into a pending group and an everything-else
// group, each sorted most recent first. Input order is irrelevant; the split
// is total, so len(pending)+len(other) == len(input).
func Partition(notifications []Notification) (pending, other []Notification) {
	pending = make([]Notification, 0, len(notifications))
	other = make([]Notification, 0, len(notifications))
	for _, n := range notifications {
		if n.Status == StatusNotifPending {
			pending = append(pending, n)
		} else {
			other = append(other, n)
		}
	}
	sortByRecency(pending)
	sortByRecency(other)
	return pending, other
}

func sortByRecency(notifications []Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
}
