package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/jrsteele09/go-auth-client/api"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/session/filestore"
	"github.com/jrsteele09/go-auth-client/session/redistore"
	"github.com/jrsteele09/go-auth-client/transport"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	store, err := buildStore(c)
	if err != nil {
		return err
	}
	state, err := session.NewState(ctx, store,
		session.WithNamespace(c.GetStorageNamespace()),
		session.WithLogger(logger))
	if err != nil {
		return err
	}

	apiClient := api.New(c.GetAPIBaseURL(),
		api.WithTimeout(c.GetRequestTimeout()),
		api.WithLogger(logger))
	service, err := auth.NewService(apiClient, state, auth.WithLogger(logger))
	if err != nil {
		return err
	}
	pipeline := transport.New(c.GetAPIBaseURL(), state, service,
		transport.WithTimeout(c.GetRequestTimeout()),
		transport.WithProactiveRefresh(c.GetRefreshLeeway()),
		transport.WithLogger(logger))

	if len(os.Args) < 2 {
		usage(c.GetAppName())
		return nil
	}

	switch os.Args[1] {
	case "login":
		return loginCmd(ctx, service, os.Args[2:])
	case "register":
		return registerCmd(ctx, service, os.Args[2:])
	case "logout":
		service.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return whoamiCmd(ctx, service, pipeline, state)
	case "status":
		statusCmd(state)
		return nil
	case "get":
		return getCmd(ctx, pipeline, os.Args[2:])
	default:
		usage(c.GetAppName())
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func buildStore(c config.Config) (session.Store, error) {
	switch c.GetStoreBackend() {
	case config.StoreBackendFile:
		return filestore.New(afero.NewOsFs(), c.GetStoreDir()), nil
	case config.StoreBackendRedis:
		return redistore.New(redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.GetStoreBackend())
	}
}

func loginCmd(ctx context.Context, service *auth.Service, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := service.Login(ctx, auth.Credentials{Username: *username, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", user.DisplayName())
	return nil
}

func registerCmd(ctx context.Context, service *auth.Service, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := service.Register(ctx, auth.Registration{Username: *username, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s. You can now log in.\n", created.Username)
	return nil
}

func whoamiCmd(ctx context.Context, service *auth.Service, pipeline *transport.Client, state *session.State) error {
	if !state.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	user, err := service.FetchProfile(ctx, pipeline)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", user.DisplayName(), user.Email)
	return nil
}

func statusCmd(state *session.State) {
	snap := state.Snapshot()
	if snap.Authenticated() {
		fmt.Printf("Authenticated as %s\n", snap.User.DisplayName())
	} else {
		fmt.Println("Not authenticated.")
	}
	if snap.LastError != "" {
		fmt.Printf("Last error: %s\n", snap.LastError)
	}
}

func getCmd(ctx context.Context, pipeline *transport.Client, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: authcli get <path>")
	}

	var out map[string]any
	if err := pipeline.GetJSON(ctx, args[0], &out); err != nil {
		return err
	}
	fmt.Printf("%v\n", out)
	return nil
}

func usage(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
	fmt.Println("Commands: login -u <user> -p <pass> | register -u <user> -e <email> -p <pass> | logout | whoami | status | get <path>")
}
