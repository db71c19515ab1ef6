package config

const (
	// EnvPrefix is unused for lookups (keys are fully qualified) but kept for envconfig.Process.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AGRICONNECT_DB_DSN"
	EnvDBHost = "AGRICONNECT_DB_HOST"
	EnvDBUser = "AGRICONNECT_DB_USER"
	EnvDBName = "AGRICONNECT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
