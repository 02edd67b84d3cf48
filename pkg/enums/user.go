package enums

// Role is the account role attached to a user.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

var validRoles = []Role{RoleFarmer, RoleBuyer, RoleAdmin}

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool { return isOneOf(validRoles, r) }

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	return parseOneOf(validRoles, value, "role")
}

// Language is a supported UI language code.
type Language string

const (
	LanguageEnglish   Language = "en"
	LanguageHindi     Language = "hi"
	LanguageTelugu    Language = "te"
	LanguageTamil     Language = "ta"
	LanguageMalayalam Language = "ml"
	LanguageBengali   Language = "bn"
	LanguageMarathi   Language = "mr"
	LanguageGujarati  Language = "gu"
	LanguagePunjabi   Language = "pa"
	LanguageOdia      Language = "or"
	LanguageAssamese  Language = "as"
	LanguageKannada   Language = "kn"
)

var validLanguages = []Language{
	LanguageEnglish, LanguageHindi, LanguageTelugu, LanguageTamil,
	LanguageMalayalam, LanguageBengali, LanguageMarathi, LanguageGujarati,
	LanguagePunjabi, LanguageOdia, LanguageAssamese, LanguageKannada,
}

func (l Language) String() string { return string(l) }

func (l Language) IsValid() bool { return isOneOf(validLanguages, l) }

func ParseLanguage(value string) (Language, error) {
	return parseOneOf(validLanguages, value, "language")
}

// MeasurementUnits is the user's preferred unit system.
type MeasurementUnits string

const (
	UnitsMetric   MeasurementUnits = "metric"
	UnitsImperial MeasurementUnits = "imperial"
)

func (u MeasurementUnits) IsValid() bool {
	return u == UnitsMetric || u == UnitsImperial
}
