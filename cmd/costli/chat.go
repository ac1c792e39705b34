// cmd/costli/chat.go
package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"costli-agents/internal/bootstrap"
	chatsession "costli-agents/internal/workers/ai-conversation/chat-session"
)

func newChatCmd(opts *rootOptions, open func(*cobra.Command) (*bootstrap.App, error)) *cobra.Command {
	var (
		scenario  string
		reanalyze bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the cost consultant, one message per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			defer app.Close(cmd.Context())

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			in := bufio.NewScanner(cmd.InOrStdin())
			in.Buffer(make([]byte, 0, 64*1024), 1024*1024)

			var sessionID string
			fmt.Fprint(errOut, "you> ")
			for in.Scan() {
				line := strings.TrimSpace(in.Text())
				switch line {
				case "":
					fmt.Fprint(errOut, "you> ")
					continue
				case "exit", "quit":
					return nil
				}

				res, err := app.Chat.Execute(cmd.Context(), &chatsession.Input{
					SessionID: sessionID,
					Domain:    opts.domain,
					Scenario:  scenario,
					Message:   line,
					Reanalyze: reanalyze,
				})
				if err != nil {
					return err
				}
				sessionID = res.SessionID

				fmt.Fprintf(out, "compass> %s\n", res.Reply)
				for i, t := range res.Tiles {
					fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, t.Type, t.Headline)
				}
				fmt.Fprint(errOut, "you> ")
			}
			return in.Err()
		},
	}
	cmd.Flags().StringVar(&scenario, "scenario", "", "Original scenario, used when re-analyzing")
	cmd.Flags().BoolVar(&reanalyze, "reanalyze", false, "Re-run the analysis after every answer")
	return cmd
}
