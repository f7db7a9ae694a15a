// Command devtoken prints a signed bearer token for calling the API
// locally.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/neighborjob/marketplace/internal/config"
	"github.com/neighborjob/marketplace/internal/middleware"
	"github.com/neighborjob/marketplace/internal/model"
	"github.com/neighborjob/marketplace/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	flags := pflag.NewFlagSet("devtoken", pflag.ContinueOnError)
	user := flags.StringP("user", "u", service.DemoViewer.ID, "viewer id (token subject)")
	name := flags.StringP("name", "n", service.DemoViewer.Name, "display name")
	avatar := flags.String("avatar", service.DemoViewer.Avatar, "avatar URL")
	secret := flags.String("secret", cfg.JWTSecret, "HS256 signing secret (defaults to JWT_SECRET)")
	ttl := flags.Duration("ttl", 24*time.Hour, "token lifetime")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(2)
	}

	token, err := middleware.IssueToken(*secret, model.Viewer{
		ID:     *user,
		Name:   *name,
		Avatar: *avatar,
	}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
