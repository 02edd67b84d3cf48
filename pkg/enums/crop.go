package enums

import "strings"

// CropCategory groups listings for browsing and freshness rules.
type CropCategory string

const (
	CropCategoryCereals    CropCategory = "cereals"
	CropCategoryPulses     CropCategory = "pulses"
	CropCategoryOilseeds   CropCategory = "oilseeds"
	CropCategoryVegetables CropCategory = "vegetables"
	CropCategoryFruits     CropCategory = "fruits"
	CropCategorySpices     CropCategory = "spices"
	CropCategoryCashCrops  CropCategory = "cash-crops"
	CropCategoryOthers     CropCategory = "others"
)

var validCropCategories = []CropCategory{
	CropCategoryCereals, CropCategoryPulses, CropCategoryOilseeds, CropCategoryVegetables,
	CropCategoryFruits, CropCategorySpices, CropCategoryCashCrops, CropCategoryOthers,
}

func (c CropCategory) String() string { return string(c) }

func (c CropCategory) IsValid() bool { return isOneOf(validCropCategories, c) }

func ParseCropCategory(value string) (CropCategory, error) {
	return parseOneOf(validCropCategories, strings.ToLower(strings.TrimSpace(value)), "crop category")
}

// FreshnessDays is how long after harvest a crop of this category counts as fresh.
func (c CropCategory) FreshnessDays() int {
	switch c {
	case CropCategoryVegetables:
		return 7
	case CropCategoryFruits:
		return 14
	case CropCategoryCereals, CropCategoryPulses, CropCategoryOilseeds, CropCategorySpices:
		return 365
	default:
		return 30
	}
}

// CropUnit is the unit a listed quantity is measured in.
type CropUnit string

const (
	CropUnitKg      CropUnit = "kg"
	CropUnitQuintal CropUnit = "quintal"
	CropUnitTon     CropUnit = "ton"
	CropUnitBunch   CropUnit = "bunch"
	CropUnitPiece   CropUnit = "piece"
)

var validCropUnits = []CropUnit{CropUnitKg, CropUnitQuintal, CropUnitTon, CropUnitBunch, CropUnitPiece}

func (u CropUnit) String() string { return string(u) }

func (u CropUnit) IsValid() bool { return isOneOf(validCropUnits, u) }

// PriceUnit is the weight basis a crop price is quoted in.
type PriceUnit string

const (
	PriceUnitKg      PriceUnit = "kg"
	PriceUnitQuintal PriceUnit = "quintal"
	PriceUnitTon     PriceUnit = "ton"
)

var validPriceUnits = []PriceUnit{PriceUnitKg, PriceUnitQuintal, PriceUnitTon}

func (u PriceUnit) String() string { return string(u) }

func (u PriceUnit) IsValid() bool { return isOneOf(validPriceUnits, u) }

// Kilograms is the number of kilograms in one unit.
func (u PriceUnit) Kilograms() int64 {
	switch u {
	case PriceUnitQuintal:
		return 100
	case PriceUnitTon:
		return 1000
	default:
		return 1
	}
}

type CropQuality string

const (
	CropQualityPremium  CropQuality = "premium"
	CropQualityStandard CropQuality = "standard"
	CropQualityBasic    CropQuality = "basic"
)

var validCropQualities = []CropQuality{CropQualityPremium, CropQualityStandard, CropQualityBasic}

func (q CropQuality) String() string { return string(q) }

func (q CropQuality) IsValid() bool { return isOneOf(validCropQualities, q) }

// CropStatus tracks the listing lifecycle.
type CropStatus string

const (
	CropStatusAvailable CropStatus = "available"
	CropStatusSold      CropStatus = "sold"
	CropStatusReserved  CropStatus = "reserved"
	CropStatusExpired   CropStatus = "expired"
	CropStatusWithdrawn CropStatus = "withdrawn"
)

var validCropStatuses = []CropStatus{
	CropStatusAvailable, CropStatusSold, CropStatusReserved, CropStatusExpired, CropStatusWithdrawn,
}

func (s CropStatus) String() string { return string(s) }

func (s CropStatus) IsValid() bool { return isOneOf(validCropStatuses, s) }

func ParseCropStatus(value string) (CropStatus, error) {
	return parseOneOf(validCropStatuses, strings.ToLower(strings.TrimSpace(value)), "crop status")
}

type Certification string

const (
	CertificationOrganic       Certification = "organic"
	CertificationGMOFree       Certification = "gmo-free"
	CertificationPesticideFree Certification = "pesticide-free"
	CertificationFairTrade     Certification = "fair-trade"
)

var validCertifications = []Certification{
	CertificationOrganic, CertificationGMOFree, CertificationPesticideFree, CertificationFairTrade,
}

func (c Certification) IsValid() bool { return isOneOf(validCertifications, c) }

// CertificationValues lists the accepted certification strings.
func CertificationValues() []string { return stringsOf(validCertifications) }
