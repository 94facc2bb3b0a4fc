// Package main provides authd, the browser-automation sign-in service.
// It drives identity-provider login ceremonies through a real browser and
// returns session cookies or OAuth2 tokens, either as a long-running HTTP
// service or as a one-shot CLI login.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth"
	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/providers"
	"github.com/trungleviet-agilityio/playwright-training/pkg/browser"
	"github.com/trungleviet-agilityio/playwright-training/pkg/config"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/server"
	"github.com/trungleviet-agilityio/playwright-training/pkg/storage"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

const version = "0.1.0"

var configPath string

func main() {
	root := &cobra.Command{
		Use:     "authd",
		Short:   "Browser-automation sign-in service for SaaS identity providers",
		Version: version,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	root.AddCommand(serveCommand(), loginCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Settings, *browser.Manager, *auth.Orchestrator, *logging.Logger, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	log, err := logging.NewLogger("authd")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", err)
	}

	manager, err := browser.NewManager(
		settings.BrowserProvider,
		settings.BrowserWSEndpoint,
		settings.UserAgent,
		settings.NavigationTimeoutMillis,
		log,
	)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to start browser substrate: %w", err)
	}

	orchestrator := auth.NewOrchestrator(settings, manager, log)
	return settings, manager, orchestrator, log, nil
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP authentication service",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, manager, orchestrator, log, err := setup()
			if err != nil {
				return err
			}
			defer manager.Shutdown()
			defer log.Close()

			store, err := storage.New(settings.StorageType, settings.StoragePath)
			if err != nil {
				return err
			}

			srv := server.New(orchestrator, store, settings, providers.Supported, log)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				log.Infof("shutting down")
				manager.Shutdown()
				log.Close()
				os.Exit(0)
			}()

			fmt.Printf("authd v%s listening on %s (log: %s)\n", version, settings.APIAddr, log.LogPath())
			return srv.ListenAndServe()
		},
	}
}

func loginCommand() *cobra.Command {
	var (
		provider   string
		email      string
		password   string
		mode       string
		clientID   string
		secret     string
		redirect   string
		scopes     string
		totpSecret string
		otpCode    string
		substrate  string
		headless   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Run one sign-in ceremony and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, orchestrator, log, err := setup()
			if err != nil {
				return err
			}
			defer manager.Shutdown()
			defer log.Close()

			req := &types.LoginRequest{
				Provider:        types.Provider(provider),
				Email:           email,
				Password:        password,
				Mode:            types.AuthMode(mode),
				ClientID:        clientID,
				ClientSecret:    secret,
				RedirectURI:     redirect,
				TOTPSecret:      totpSecret,
				OTPCode:         otpCode,
				BrowserProvider: substrate,
			}
			if cmd.Flags().Changed("headless") {
				req.Headless = &headless
			}
			if scopes != "" {
				req.Scopes = strings.Split(scopes, ",")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			result, err := orchestrator.Authenticate(ctx, req)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if !result.Success {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "slack", "identity provider")
	cmd.Flags().StringVar(&email, "email", "", "principal email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&mode, "mode", "", "auth mode: password, oauth2, or hybrid")
	cmd.Flags().StringVar(&clientID, "client-id", "", "oauth2 client id")
	cmd.Flags().StringVar(&secret, "client-secret", "", "oauth2 client secret")
	cmd.Flags().StringVar(&redirect, "redirect-uri", "", "oauth2 redirect target")
	cmd.Flags().StringVar(&scopes, "scopes", "", "comma-separated oauth2 scopes")
	cmd.Flags().StringVar(&totpSecret, "totp-secret", "", "shared secret for time-based one-time codes")
	cmd.Flags().StringVar(&otpCode, "otp-code", "", "literal one-time code")
	cmd.Flags().StringVar(&substrate, "browser", "", "browser substrate: remote or local (default from config)")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a window")
	cmd.MarkFlagRequired("email")
	return cmd
}
