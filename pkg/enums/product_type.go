package enums

// ProductType identifies the catalog a cart line came from.
type ProductType string

const (
	ProductTypeCrop      ProductType = "Crop"
	ProductTypeInput     ProductType = "Input"
	ProductTypeMachinery ProductType = "Machinery"
)

var validProductTypes = []ProductType{ProductTypeCrop, ProductTypeInput, ProductTypeMachinery}

func (p ProductType) String() string { return string(p) }

func (p ProductType) IsValid() bool { return isOneOf(validProductTypes, p) }

func ParseProductType(value string) (ProductType, error) {
	return parseOneOf(validProductTypes, value, "product type")
}
