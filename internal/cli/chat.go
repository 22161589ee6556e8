package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abiosoft/ishell/v2"
	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/client"
)

const defaultServerURL = "http://localhost:8787"

// clientOptions configure commands that talk to a running server.
type clientOptions struct {
	server    string
	sessionID string
	width     int
	noColor   bool
	timeout   time.Duration
}

func (c *clientOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&c.server, "server", defaultServerURL, "Support bot base URL")
	f.StringVar(&c.sessionID, "session", "", "Session id (default: a new random id)")
	f.IntVar(&c.width, "width", defaultWrapWidth, "Wrap replies at this many columns")
	f.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	f.DurationVar(&c.timeout, "timeout", 60*time.Second, "Per-message timeout")
}

func (c *clientOptions) session() string {
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	return c.sessionID
}

// conversation sends messages for one session and renders the results.
type conversation struct {
	client    *client.Client
	sessionID string
	render    *renderer
	progress  io.Writer
	timeout   time.Duration
}

func (c *clientOptions) conversation(out, progress io.Writer) *conversation {
	return &conversation{
		client:    client.New(c.server, nil),
		sessionID: c.session(),
		render:    newRenderer(out, c.width, !c.noColor),
		progress:  progress,
		timeout:   c.timeout,
	}
}

func (c *conversation) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// send posts one message and prints the reply, showing a spinner meanwhile.
func (c *conversation) send(ctx context.Context, message string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var s *spinner.Spinner
	if c.progress != nil {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.progress))
		s.Suffix = " thinking..."
		s.Start()
	}
	resp, err := c.client.Chat(ctx, c.sessionID, message)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}
	c.render.turn("assistant", resp.Reply)
	return nil
}

func (c *conversation) history(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	hist, err := c.client.History(ctx, c.sessionID)
	if err != nil {
		return err
	}
	c.render.turns(hist.History)
	return nil
}

func (c *conversation) reset(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.client.Clear(ctx, c.sessionID)
}

func newAskCmd() *cobra.Command {
	opts := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message to a running support bot",
		Long: `Send one message to a running support bot and print the reply.

Pass --session to continue an earlier conversation.

Examples:
  supportbot ask "my worker returns 522, what should I check?"
  supportbot ask --session s1 "and after that?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := opts.conversation(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err := conv.send(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
			if !cmd.Flags().Changed("session") {
				fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", conv.sessionID)
			}
			return nil
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func newChatCmd() *cobra.Command {
	opts := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat with a running support bot",
		Long: `Start an interactive chat session against a running support bot.

Anything typed that is not a shell command is sent as a message.
Shell commands: history, reset, session, help, exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatShell(cmd.Context(), opts.conversation(os.Stdout, os.Stderr))
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runChatShell(ctx context.Context, conv *conversation) error {
	shell := ishell.New()
	shell.SetPrompt("you> ")
	shell.Println("SupportBot chat. Session:", conv.sessionID)
	shell.Println("Type a message, or 'help' for commands.")

	shell.NotFound(func(c *ishell.Context) {
		message := strings.TrimSpace(strings.Join(c.RawArgs, " "))
		if message == "" {
			return
		}
		if err := conv.send(ctx, message); err != nil {
			conv.render.errorf("error: %v", err)
		}
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "history",
		Help: "show this session's stored turns",
		Func: func(c *ishell.Context) {
			if err := conv.history(ctx); err != nil {
				conv.render.errorf("error: %v", err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "reset",
		Help: "clear this session's history",
		Func: func(c *ishell.Context) {
			if err := conv.reset(ctx); err != nil {
				conv.render.errorf("error: %v", err)
				return
			}
			c.Println("History cleared.")
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "session",
		Help: "print the session id",
		Func: func(c *ishell.Context) {
			c.Println(conv.sessionID)
		},
	})

	shell.Run()
	shell.Close()
	return nil
}
