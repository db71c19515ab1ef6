package enums

// ActivityType identifies the operation carried out on a field.
type ActivityType string

const (
	ActivityPlanting    ActivityType = "planting"
	ActivityFertilizing ActivityType = "fertilizing"
	ActivityIrrigation  ActivityType = "irrigation"
	ActivityPestControl ActivityType = "pest_control"
	ActivityWeeding     ActivityType = "weeding"
	ActivityHarvesting  ActivityType = "harvesting"
)

func (a ActivityType) IsValid() bool {
	switch a {
	case ActivityPlanting, ActivityFertilizing, ActivityIrrigation,
		ActivityPestControl, ActivityWeeding, ActivityHarvesting:
		return true
	}
	return false
}

// Label returns the human readable form used in generated notes.
func (a ActivityType) Label() string {
	switch a {
	case ActivityPlanting:
		return "Planting"
	case ActivityFertilizing:
		return "Fertilizing"
	case ActivityIrrigation:
		return "Irrigation"
	case ActivityPestControl:
		return "Pest Control"
	case ActivityWeeding:
		return "Weeding"
	case ActivityHarvesting:
		return "Harvesting"
	}
	return string(a)
}
