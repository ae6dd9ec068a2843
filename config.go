package main

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

//Config represents options given in the environment
type Config struct {
	SessionDuration int //in minutes; default: 60

	AdminUser     string `default:"admin"`
	AdminPassword string `default:"admin123"` //hashed with bcrypt at startup

	Transcript string  //text returned for every uploaded recording
	ChunkRate  float64 `default:"20"` //streamed text chunks per second; 0 disables pacing
	Seed       bool    `default:"true"` //seed demo appointments

	ListenAddr string //addr format used for net.Dial; required
	Prefix     string //url prefix to mount api to without trailing slash
}

var config = &Config{}

func checkEmpty(val, name string) {
	if val == "" {
		log.Fatalf("RECEPTION_%s must be configured\n", name)
	}
}

func init() {
	err := envconfig.Process("RECEPTION", config)
	if err != nil {
		log.Fatalln("Error reading configuration from environment:", err)
	}

	if config.SessionDuration == 0 {
		config.SessionDuration = 60
	}

	checkEmpty(config.AdminUser, "ADMINUSER")
	checkEmpty(config.AdminPassword, "ADMINPASSWORD")
	checkEmpty(config.ListenAddr, "LISTENADDR")
}
