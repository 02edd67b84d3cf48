package config

const (
	EnvPrefix = "KISAN"

	EnvDatabaseURL       = "DATABASE_URL"
	EnvLegacyDatabaseURI = "MONGODB_URI"

	AppEnvDev  = "development"
	AppEnvTest = "test"
	AppEnvProd = "production"

	PlaceholderWeatherKey = "demo_key"
)

var defaultDevOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}
