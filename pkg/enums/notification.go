package enums

// NotificationCategory buckets in-app notifications for filtering.
type NotificationCategory string

const (
	NotificationCategorySystem      NotificationCategory = "system"
	NotificationCategoryMarketplace NotificationCategory = "marketplace"
	NotificationCategoryInventory   NotificationCategory = "inventory"
	NotificationCategoryAnalytics   NotificationCategory = "analytics"
)

func (c NotificationCategory) IsValid() bool {
	switch c {
	case NotificationCategorySystem, NotificationCategoryMarketplace,
		NotificationCategoryInventory, NotificationCategoryAnalytics:
		return true
	}
	return false
}
