// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/stream"
)

// =============================================================================
// ONE-SHOT ASK
// =============================================================================

// runAsk streams a single answer to stdout. Ctrl-C aborts the stream;
// whatever was printed stays printed.
func runAsk(cfg *config.Config, client *api.Client, parser *ArgParser) error {
	message := strings.Join(parser.Positional(), " ")
	if message == "" {
		return errors.New("usage: agentic-chat ask <text>")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := api.GenerationOptions{
		Model:       parser.FlagOr("model", cfg.Chat.Model),
		Temperature: cfg.Chat.Temperature,
	}
	// --conversation continues an existing server-side conversation.
	conversationID := parser.FlagOr("conversation", uuid.NewString())
	return streamAnswer(ctx, client, conversationID, message, opts, os.Stdout)
}

// streamAnswer opens a generation turn and writes delta text to out as
// it arrives.
func streamAnswer(ctx context.Context, client *api.Client, conversationID, message string, opts api.GenerationOptions, out io.Writer) error {
	body, err := client.OpenGeneration(ctx, conversationID, message, opts)
	if err != nil {
		return err
	}
	defer body.Close()

	dec := stream.NewDecoder(body)
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			fmt.Fprintln(out)
			if ctx.Err() != nil {
				// Interrupted: the partial answer already printed is the result.
				return nil
			}
			return &api.TransportError{Op: "stream read", Err: err}
		}
		if ev.Kind == stream.KindDone {
			fmt.Fprintln(out)
			return nil
		}
		fmt.Fprint(out, ev.Text)
	}
}
