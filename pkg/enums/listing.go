package enums

type ListingCategory string

const (
	ListingCategoryCrops       ListingCategory = "crops"
	ListingCategorySeeds       ListingCategory = "seeds"
	ListingCategoryEquipment   ListingCategory = "equipment"
	ListingCategoryFertilizers ListingCategory = "fertilizers"
)

func (c ListingCategory) IsValid() bool {
	switch c {
	case ListingCategoryCrops, ListingCategorySeeds, ListingCategoryEquipment, ListingCategoryFertilizers:
		return true
	}
	return false
}

type QualityGrade string

const (
	QualityPremium QualityGrade = "premium"
	QualityGradeA  QualityGrade = "grade_a"
	QualityGradeB  QualityGrade = "grade_b"
	QualityGradeC  QualityGrade = "grade_c"
)

func (q QualityGrade) IsValid() bool {
	switch q {
	case QualityPremium, QualityGradeA, QualityGradeB, QualityGradeC:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusSold    ListingStatus = "sold"
	ListingStatusExpired ListingStatus = "expired"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusExpired:
		return true
	}
	return false
}

type MarketType string

const (
	MarketWholesale MarketType = "wholesale"
	MarketRetail    MarketType = "retail"
)

func (m MarketType) IsValid() bool {
	switch m {
	case MarketWholesale, MarketRetail:
		return true
	}
	return false
}
