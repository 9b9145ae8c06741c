package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "Dnevnik")
	Conf.SetDefault("secretKey", "w#90t=qob)e+4e_&d$m&9t-21d&p0r#ay5^_j%16vzwb8-5&pd")
	Conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	Conf.SetDefault("serverAddress", ":8000")
	Conf.SetDefault("shutdownTimeout", 20*time.Second)

	Conf.SetDefault("dbEngine", "postgres")
	Conf.SetDefault("dbHost", "localhost")
	Conf.SetDefault("dbPort", "5432")
	Conf.SetDefault("dbName", "dnevnik")
	Conf.SetDefault("dbUser", "")
	Conf.SetDefault("dbPassword", "")
	Conf.SetDefault("dbDisableTLS", true)

	Conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		Conf.SetDefault("testMode", true)
	}
	Conf.SetDefault("env", env)
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}

// ValidateConfig checks that settings without a usable zero value are set.
func ValidateConfig() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(Conf.GetString("secretKey"), "secretKey"),
		vala.StringNotEmpty(Conf.GetString("dbEngine"), "dbEngine"),
		vala.StringNotEmpty(Conf.GetString("dbName"), "dbName"),
		vala.StringNotEmpty(Conf.GetString("serverAddress"), "serverAddress"),
	).Check()
}
