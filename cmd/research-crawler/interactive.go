// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-crawler/internal/aggregate"
	"github.com/pdiddy/research-crawler/internal/session"
	"github.com/pdiddy/research-crawler/internal/view"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Search repeatedly, one name per line",
	Long: `Interactive reads names from standard input, one per line, and submits
each as a search. Searches run in the background: entering a new name while
one is still running abandons the older search, and only the latest result
is shown. Type "quit" or send EOF to exit.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	interactiveCmd.Flags().String("format", "text", "output format: text, json, or yaml")
	interactiveCmd.Flags().Int("width", view.DefaultWidth, "text layout width in columns")

	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := view.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")

	a, err := loadApp()
	if err != nil {
		return err
	}

	ctrl := session.NewController(a.client(), a.cfg.Session, a.logger)
	defer ctrl.Close()

	fmt.Fprintln(os.Stderr, session.MessageIdle, `Type "quit" to exit.`)
	r := &repl{
		ctrl:   ctrl,
		window: a.window,
		format: format,
		width:  width,
		out:    cmd.OutOrStdout(),
		prompt: os.Stderr,
	}
	return r.run(cmd.Context(), cmd.InOrStdin())
}

// repl feeds input lines to a controller and prints every state it
// publishes.
type repl struct {
	ctrl   *session.Controller
	window aggregate.Window
	format view.Format
	width  int
	out    io.Writer
	prompt io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	printCtx, stopPrinting := context.WithCancel(ctx)
	printed := make(chan error, 1)
	go func() { printed <- r.printChanges(printCtx) }()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.prompt, "name> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "quit", "exit":
			stopPrinting()
			return <-printed
		}
		if _, err := r.ctrl.Submit(ctx, line); err != nil && !errors.Is(err, session.ErrEmptyTerm) {
			stopPrinting()
			<-printed
			return err
		}
	}
	fmt.Fprintln(r.prompt)

	// Input is done: let the last search settle, then flush what is queued.
	r.ctrl.Wait()
	stopPrinting()
	if err := <-printed; err != nil {
		return err
	}
	for {
		select {
		case s := <-r.ctrl.Changes():
			if err := r.print(s); err != nil {
				return err
			}
		default:
			return scanner.Err()
		}
	}
}

func (r *repl) printChanges(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-r.ctrl.Changes():
			if err := r.print(s); err != nil {
				return err
			}
		}
	}
}

// print shows a progress line while searching and the full page otherwise.
func (r *repl) print(s session.State) error {
	if s.Status == session.Searching {
		_, err := fmt.Fprintln(r.out, s.Message)
		return err
	}
	if err := view.Render(r.out, view.Build(s, r.window), r.format, r.width); err != nil {
		return err
	}
	_, err := fmt.Fprintln(r.out)
	return err
}
