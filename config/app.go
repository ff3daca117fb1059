package config

type App struct {
	Port           string `env:"APP_PORT" default:"8080"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	JWTSecret      string `env:"JWT_SECRET,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" default:"migrations"`
	Env            string `env:"APP_ENV" default:"dev"`
}
