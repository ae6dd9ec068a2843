package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/korylprince/dental-receptionist/admin"
	"github.com/spf13/cobra"
)

//Config represents defaults given in the environment
type Config struct {
	Server   string `default:"http://localhost:8080"`
	User     string `default:"admin"`
	Password string
}

var config = &Config{}

var rootCmd = &cobra.Command{
	Use:           "clinicadmin",
	Short:         "Manage Bright Smile Dental appointments and settings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	if err := envconfig.Process("CLINICADMIN", config); err != nil {
		log.Fatalln("Error reading configuration from environment:", err)
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&config.Server, "server", config.Server, "Backend URL (env CLINICADMIN_SERVER)")
	f.StringVar(&config.User, "user", config.User, "Admin username (env CLINICADMIN_USER)")
	f.StringVar(&config.Password, "password", config.Password, "Admin password (env CLINICADMIN_PASSWORD)")

	rootCmd.AddCommand(appointmentsCmd(), cancelCmd(), settingsCmd(), setHoursCmd(), passwdCmd())
}

func newClient() *admin.Client {
	return admin.NewClient(config.Server, config.User, config.Password)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, admin.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Login failed: check --user and --password"))
		} else {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}
