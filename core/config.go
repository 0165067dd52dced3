package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "Gradefold")
	Conf.SetDefault("dataDir", filepath.Join("student-data", "data"))
	Conf.SetDefault("schemaVersion", "5.0")
	Conf.SetDefault("academicYear", "2025-2026")
	Conf.SetDefault("defaultGrade", 9)
	Conf.SetDefault("resolver.threshold", 0.9)
	Conf.SetDefault("resolver.ambiguityGap", 0.02)
	Conf.SetDefault("missions.allowReopen", false)
	Conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case strings.ToUpper("TEST"):
		Conf.SetDefault("testMode", true)
	}
	Conf.SetDefault("env", env)
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}

type Config struct {
	Env      string
	AppName  string
	Build    string
	Debug    bool
	TestMode bool

	// record store
	DataDir       string
	SchemaVersion string

	// new-student defaults
	AcademicYear string
	DefaultGrade int

	// workbook sheet name -> class name
	SheetClasses map[string]string

	// name resolution
	MatchThreshold    float64
	MatchAmbiguityGap float64

	// mission policy
	MissionsAllowReopen bool

	RollbarToken string
}

// NewConfig materializes the viper state into a plain struct so that
// components do not carry a viper dependency.
func NewConfig() *Config {
	return &Config{
		Env:                 Conf.GetString("env"),
		AppName:             Conf.GetString("appName"),
		Build:               Conf.GetString("build"),
		Debug:               Conf.GetBool("debug"),
		TestMode:            Conf.GetBool("testMode"),
		DataDir:             Conf.GetString("dataDir"),
		SchemaVersion:       Conf.GetString("schemaVersion"),
		AcademicYear:        Conf.GetString("academicYear"),
		DefaultGrade:        Conf.GetInt("defaultGrade"),
		SheetClasses:        Conf.GetStringMapString("sheetClasses"),
		MatchThreshold:      Conf.GetFloat64("resolver.threshold"),
		MatchAmbiguityGap:   Conf.GetFloat64("resolver.ambiguityGap"),
		MissionsAllowReopen: Conf.GetBool("missions.allowReopen"),
		RollbarToken:        Conf.GetString("rollbarToken"),
	}
}
