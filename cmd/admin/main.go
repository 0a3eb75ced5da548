// cmd/admin/main.go
//
// Operator CLI for the voicedrop admin API. Talks HTTP to a running server;
// it never touches the registry directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/soundpost/voicedrop/internal/domain"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const defaultServerURL = "http://localhost:8080"

func newServerURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "server-url",
		Usage:   "base URL of the voicedrop server",
		Value:   defaultServerURL,
		EnvVars: []string{"VOICEDROP_SERVER_URL"},
	}
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "voicedrop-admin",
		Usage: "inspect and manage registered voice notes",
		Flags: []cli.Flag{newServerURLFlag()},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all voice notes, newest first",
				Action: func(c *cli.Context) error {
					return runList(c.Context, newClient(c))
				},
			},
			{
				Name:      "downloaded",
				Usage:     "mark a voice note as downloaded",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return err
					}
					return newClient(c).markDownloaded(c.Context, id)
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a voice note from the remote store and the registry",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return err
					}
					return newClient(c).deleteNote(c.Context, id)
				},
			},
			{
				Name:  "purge",
				Usage: "delete every listed voice note",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "parallel",
						Usage: "maximum concurrent deletions",
						Value: 4,
					},
				},
				Action: func(c *cli.Context) error {
					return runPurge(c.Context, newClient(c), c.Int("parallel"))
				},
			},
			{
				Name:  "health",
				Usage: "print server health",
				Action: func(c *cli.Context) error {
					return runHealth(c.Context, newClient(c))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func argID(c *cli.Context) (int, error) {
	raw := strings.TrimSpace(c.Args().First())
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("expected a positive numeric id, got %q", raw)
	}
	return id, nil
}

type adminClient struct {
	baseURL string
	http    *http.Client
}

func newClient(c *cli.Context) *adminClient {
	return &adminClient{
		baseURL: strings.TrimRight(c.String("server-url"), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *adminClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			if envelope.Details != "" {
				return fmt.Errorf("%s %s: %s (%s)", method, path, envelope.Error, envelope.Details)
			}
			return fmt.Errorf("%s %s: %s", method, path, envelope.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}

func (a *adminClient) listNotes(ctx context.Context) ([]domain.VoiceNote, error) {
	var result struct {
		Count int                `json:"count"`
		Notes []domain.VoiceNote `json:"notes"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/admin/voice-notes", &result); err != nil {
		return nil, err
	}
	return result.Notes, nil
}

func (a *adminClient) markDownloaded(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/admin/voice-notes/%d/downloaded", id)
	if err := a.do(ctx, http.MethodPost, path, nil); err != nil {
		return err
	}
	fmt.Printf("note %d marked as downloaded\n", id)
	return nil
}

func (a *adminClient) deleteNote(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/admin/voice-notes/%d", id)
	if err := a.do(ctx, http.MethodDelete, path, nil); err != nil {
		return err
	}
	fmt.Printf("note %d deleted\n", id)
	return nil
}

func runList(ctx context.Context, client *adminClient) error {
	notes, err := client.listNotes(ctx)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Println("no voice notes registered")
		return nil
	}
	fmt.Printf("%-6s %-20s %-12s %-10s %-6s %s\n", "ID", "CREATED", "EFFECT", "SIZE", "DL", "URL")
	for _, note := range notes {
		fmt.Printf("%-6d %-20s %-12s %-10d %-6d %s\n",
			note.ID,
			note.CreatedAt.Format("2006-01-02 15:04:05"),
			note.Effect,
			note.FileSize,
			note.DownloadCount,
			note.RemoteURL,
		)
	}
	return nil
}

func runPurge(ctx context.Context, client *adminClient, parallel int) error {
	notes, err := client.listNotes(ctx)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Println("nothing to purge")
		return nil
	}
	if parallel <= 0 {
		parallel = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, note := range notes {
		g.Go(func() error {
			return client.deleteNote(ctx, note.ID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("purged %d voice notes\n", len(notes))
	return nil
}

func runHealth(ctx context.Context, client *adminClient) error {
	var health struct {
		Status     string `json:"status"`
		Timestamp  string `json:"timestamp"`
		TotalNotes int    `json:"totalNotes"`
	}
	if err := client.do(ctx, http.MethodGet, "/api/health", &health); err != nil {
		return err
	}
	fmt.Printf("status=%s notes=%d at %s\n", health.Status, health.TotalNotes, health.Timestamp)
	return nil
}
