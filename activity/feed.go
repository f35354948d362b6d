package activity

import (
	"time"

	"bazaar/models"
)

// NotificationView is a notification plus its unread flag.
type NotificationView struct {
	models.SellerNotification
	IsNew bool `json:"isNew"`
}

// MarkNew flags every notification created after seenAt. A nil seenAt means
// nothing has been seen yet.
func MarkNew(ns []models.SellerNotification, seenAt *time.Time) []NotificationView {
	out := make([]NotificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, NotificationView{SellerNotification: n, IsNew: seenAt == nil || n.CreatedAt.After(*seenAt)})
	}
	return out
}

// ActivityView is an activity plus its unread flag.
type ActivityView struct {
	models.RecentActivity
	IsNew bool `json:"isNew"`
}

func MarkNewActivities(as []models.RecentActivity, seenAt *time.Time) []ActivityView {
	out := make([]ActivityView, 0, len(as))
	for _, a := range as {
		out = append(out, ActivityView{RecentActivity: a, IsNew: seenAt == nil || a.CreatedAt.After(*seenAt)})
	}
	return out
}
