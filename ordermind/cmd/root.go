package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ordermind/ordermind/config"
	"ordermind/ordermind/services/streaming"
	"ordermind/ordermind/sources/psql"
	"ordermind/ordermind/types"
	"ordermind/ordermind/utils/color"
	"ordermind/ordermind/utils/generator"
	"ordermind/ordermind/utils/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ordermind",
		Short:         "ordermind: chat with an ordermind server and manage its database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newChatCmd(), newLoginCmd(), newLogoutCmd(), newMigrateCmd())
	return rootCmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.InitLogger()
			cfg := config.LoadConfig()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			// NewDatabase migrates on open
			db, err := psql.NewDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

type chatOptions struct {
	resource string
	format   string
}

func newChatCmd() *cobra.Command {
	opts := chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Stream a chat reply; without a prompt, start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := clientSettings(cmd.Flags())
			if err != nil {
				return err
			}
			client := &http.Client{}
			ctx := cmd.Context()
			server := settings.GetString("server")
			token := settings.GetString("token")
			if token == "" {
				token, err = signIn(ctx, client, server, settings.GetString("email"), settings.GetString("password"))
				if err != nil {
					return err
				}
			}
			if opts.resource == "" {
				opts.resource = generator.ResourceID()
			}
			out := cmd.OutOrStdout()
			palette := color.ForWriter(out)
			send := func(prompt string) error {
				err := streamChat(ctx, client, server, token, types.ChatRequest{
					Prompt:     prompt,
					Format:     opts.format,
					ResourceID: opts.resource,
				}, out)
				fmt.Fprintln(out)
				return err
			}

			if len(args) > 0 {
				return send(strings.Join(args, " "))
			}
			fmt.Fprintln(out, palette.Info(fmt.Sprintf("Conversation %s. Type 'exit' to quit.", opts.resource)))
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, palette.Prompt("ordermind> "))
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "exit" || line == "quit" {
					return nil
				}
				if line == "" {
					continue
				}
				if err := send(line); err != nil {
					if !errors.Is(err, streaming.ErrIncompleteStream) {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), palette.Warning("warning: the reply was cut off"))
				}
			}
		},
	}
	f := cmd.Flags()
	addServerFlags(f)
	f.String("token", "", "session token; skips sign in")
	f.StringVar(&opts.resource, "resource", "", "conversation id to continue")
	f.StringVar(&opts.format, "format", "", "system instructions for the reply")
	return cmd
}

func addServerFlags(f *pflag.FlagSet) {
	f.String("server", defaultServer, "server base URL")
	f.String("email", "", "account email")
	f.String("password", "", "account password")
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := clientSettings(cmd.Flags())
			if err != nil {
				return err
			}
			server := settings.GetString("server")
			email := settings.GetString("email")
			token, err := signIn(cmd.Context(), &http.Client{}, server, email, settings.GetString("password"))
			if err != nil {
				return err
			}
			path, err := profilePath()
			if err != nil {
				return err
			}
			if err := saveProfile(path, profile{Server: server, Email: email, Token: token}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", email)
			return nil
		},
	}
	addServerFlags(cmd.Flags())
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the remembered session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := profilePath()
			if err != nil {
				return err
			}
			p, err := loadProfile(path)
			if err != nil {
				return err
			}
			p.Token = ""
			if err := saveProfile(path, p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func postJSON(ctx context.Context, client *http.Client, url, token string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

func responseError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}

func signIn(ctx context.Context, client *http.Client, server, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", errors.New("--email and --password (or --token) are required")
	}
	resp, err := postJSON(ctx, client, strings.TrimRight(server, "/")+"/auth/signin", "", types.SigninRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign in: %w", responseError(resp))
	}
	var tok types.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	return tok.Token, nil
}

// streamChat posts req and copies the reply to out as it arrives. A reply
// that ends without the completion frame returns ErrIncompleteStream.
func streamChat(ctx context.Context, client *http.Client, server, token string, req types.ChatRequest, out io.Writer) error {
	resp, err := postJSON(ctx, client, strings.TrimRight(server, "/")+"/service/chat", token, req)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat: %w", responseError(resp))
	}

	complete, err := streaming.ReadStream(resp.Body, func(content string) {
		io.WriteString(out, content)
	})
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if !complete {
		logging.AppLogger.Warn("chat reply incomplete", zap.String("resource_id", req.ResourceID))
		return streaming.ErrIncompleteStream
	}
	return nil
}
