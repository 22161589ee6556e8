package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"

	apiv1 "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/api/v1"
)

const defaultWrapWidth = 100

// renderer prints conversation turns for a terminal.
type renderer struct {
	out   io.Writer
	width int
	color bool
}

func newRenderer(out io.Writer, width int, useColor bool) *renderer {
	if width <= 0 {
		width = defaultWrapWidth
	}
	return &renderer{out: out, width: width, color: useColor}
}

func (r *renderer) label(role string) string {
	var c *color.Color
	switch role {
	case "user":
		c = color.New(color.FgGreen, color.Bold)
	case "assistant":
		c = color.New(color.FgCyan, color.Bold)
	default:
		c = color.New(color.FgYellow)
	}
	if !r.color {
		c.DisableColor()
	}
	return c.Sprint(role + ">")
}

// turn writes one role-labelled message, wrapped to the renderer width.
func (r *renderer) turn(role, content string) {
	body := wordwrap.String(content, r.width)
	fmt.Fprintf(r.out, "%s %s\n", r.label(role), strings.TrimRight(body, "\n"))
}

func (r *renderer) turns(turns []apiv1.Turn) {
	if len(turns) == 0 {
		fmt.Fprintln(r.out, "(no history)")
		return
	}
	for _, t := range turns {
		r.turn(t.Role, t.Content)
	}
}

func (r *renderer) errorf(format string, args ...any) {
	c := color.New(color.FgRed)
	if !r.color {
		c.DisableColor()
	}
	fmt.Fprintln(r.out, c.Sprintf(format, args...))
}
