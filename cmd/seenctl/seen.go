package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/onnwee/seenbot/db"
	"github.com/onnwee/seenbot/locale"
	"github.com/onnwee/seenbot/seen"
)

var (
	seenNetwork string
	seenTimeout time.Duration
)

var seenCmd = &cobra.Command{
	Use:   "seen <nick>",
	Short: "Show when a nickname was last seen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nick := strings.TrimSpace(args[0])
		store := db.NewSeenStore(database, seenTimeout)
		q := &seen.Querier{Store: store, Locale: locale.NewCatalog()}

		ans := q.Lookup(cmd.Context(), seenNetwork, "", nick, "")
		if ans.Err != nil {
			return ans.Err
		}
		if jsonOutput {
			out := map[string]any{"network": seenNetwork, "nick": nick, "found": ans.Found, "reply": ans.Reply}
			if ans.Found {
				out["kind"] = ans.Event.Kind().String()
				out["occurred_at"] = ans.Event.OccurredAt
				out["payload"] = ans.Event.Action.Payload()
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Println(ans.Reply)
		return nil
	},
}

func init() {
	seenCmd.Flags().StringVar(&seenNetwork, "network", "twitch", "network tag the nickname was recorded under")
	seenCmd.Flags().DurationVar(&seenTimeout, "timeout", 0, "store call timeout (0 = default)")
}
