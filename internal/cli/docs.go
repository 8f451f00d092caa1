// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/util"
)

// =============================================================================
// DOCUMENT COMMANDS
// =============================================================================

const docsUsage = `usage:
  agentic-chat docs list
  agentic-chat docs upload <file> [--wait]
  agentic-chat docs rm <id>
  agentic-chat docs status <id> [--wait]
`

func runDocs(cfg *config.Config, client *api.Client, parser *ArgParser) error {
	args := parser.Positional()
	if len(args) == 0 {
		fmt.Print(docsUsage)
		return nil
	}

	ctx := context.Background()
	switch args[0] {
	case "list":
		return docsList(ctx, client)
	case "upload":
		if len(args) < 2 {
			return errors.New("usage: agentic-chat docs upload <file> [--wait]")
		}
		return docsUpload(ctx, cfg, client, args[1], parser.BoolFlag("wait"))
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: agentic-chat docs rm <id>")
		}
		return client.DeleteDocument(ctx, args[1])
	case "status":
		if len(args) < 2 {
			return errors.New("usage: agentic-chat docs status <id> [--wait]")
		}
		return docsStatus(ctx, cfg, client, args[1], parser.BoolFlag("wait"))
	default:
		return fmt.Errorf("unknown docs command %q", args[0])
	}
}

func docsList(ctx context.Context, client *api.Client) error {
	docs, err := client.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("no documents")
		return nil
	}

	nameWidth := GetTerminalWidth() - 50
	if nameWidth < 16 {
		nameWidth = 16
	}
	for _, doc := range docs {
		fmt.Printf("%s  %s  %8d  %s\n",
			doc.ID,
			util.PadRight(util.TruncateWidth(doc.Name, nameWidth), nameWidth),
			doc.SizeBytes,
			styledStatus(doc.Status),
		)
	}
	return nil
}

// styledStatus colors a status word when the terminal supports it.
// NO_COLOR and piped output fall back to the plain word.
func styledStatus(status string) string {
	profile := GetColorProfile()
	out := termenv.String(status)
	switch status {
	case api.DocStatusReady:
		out = out.Foreground(profile.Color("2"))
	case api.DocStatusFailed:
		out = out.Foreground(profile.Color("1"))
	default:
		out = out.Foreground(profile.Color("3"))
	}
	return out.String()
}

func docsUpload(ctx context.Context, cfg *config.Config, client *api.Client, path string, wait bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if max := int64(cfg.Documents.MaxUploadMB) << 20; int64(len(content)) > max {
		return fmt.Errorf("%s exceeds the %d MB upload limit", path, cfg.Documents.MaxUploadMB)
	}

	doc, err := client.UploadDocument(ctx, filepath.Base(path), content)
	if err != nil {
		return err
	}
	fmt.Printf("uploaded %s (id %s, status %s)\n", doc.Name, doc.ID, styledStatus(doc.Status))

	if wait && api.IngestionRunning(doc.Status) {
		return waitIngestion(ctx, cfg, client, doc.ID)
	}
	return nil
}

func docsStatus(ctx context.Context, cfg *config.Config, client *api.Client, id string, wait bool) error {
	if wait {
		return waitIngestion(ctx, cfg, client, id)
	}
	status, err := client.DocumentStatus(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println(styledStatus(status))
	return nil
}

func waitIngestion(ctx context.Context, cfg *config.Config, client *api.Client, id string) error {
	fmt.Fprintln(os.Stderr, "waiting for ingestion...")
	status, err := client.WaitForIngestion(ctx, id, cfg.StatusPollInterval())
	if err != nil {
		return err
	}
	fmt.Println(styledStatus(status))
	if status == api.DocStatusFailed {
		return errors.New("ingestion failed")
	}
	return nil
}
