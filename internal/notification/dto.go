package notification

type ListFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

type NotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	Unread        int64           `json:"unread"`
	Limit         int             `json:"limit"`
	Offset        int             `json:"offset"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
