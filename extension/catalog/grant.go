// grant.go implements "glossd grant", "glossd revoke" and "glossd grants".

package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// parseGrant reads "<user> <capability>" and the --glossary flag.
func parseGrant(c *cobra.Command, args []string) (store.Grant, error) {
	user, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return store.Grant{}, fmt.Errorf("invalid user id %q", args[0])
	}
	glossaryID, _ := c.Flags().GetInt64(extension.FlagGlossary)
	return store.Grant{UserID: user, Capability: args[1], GlossaryID: glossaryID}, nil
}

func scope(g store.Grant) string {
	if g.GlossaryID == 0 {
		return "all glossaries"
	}
	return fmt.Sprintf("glossary %d", g.GlossaryID)
}

func (e *Extension) newGrantCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "grant <user> <capability>",
		Short: "Give a user a capability",
		Long: `Give a user a capability on one glossary, or on all of them.

  glossd grant 7 moodle/course:viewhiddenactivities
  glossd grant 7 mod/glossary:view --glossary 10

Capabilities: ` + strings.Join(store.Capabilities(), ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			g, err := parseGrant(c, args)
			if err != nil {
				return cmd.PrintJSONError(err)
			}
			if err := e.svc.Grant(c.Context(), g); err != nil {
				return cmd.PrintJSONError(fmt.Errorf("grant: %w", err))
			}
			if cmd.JSON() {
				return cmd.PrintJSON(g.ToJSON())
			}
			fmt.Fprintf(cmd.Out(), "Granted %s to user %d on %s\n", g.Capability, g.UserID, scope(g))
			return nil
		},
	}
	c.Flags().Int64P(extension.FlagGlossary, "g", 0, "Glossary id (default: every glossary)")
	return c
}

func (e *Extension) newRevokeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "revoke <user> <capability>",
		Short: "Remove a capability from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			g, err := parseGrant(c, args)
			if err != nil {
				return cmd.PrintJSONError(err)
			}
			removed, err := e.svc.Revoke(c.Context(), g)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("revoke: %w", err))
			}
			if cmd.JSON() {
				return cmd.PrintJSON(map[string]bool{"removed": removed})
			}
			if !removed {
				fmt.Fprintf(cmd.Out(), "User %d has no %s grant on %s\n", g.UserID, g.Capability, scope(g))
				return nil
			}
			fmt.Fprintf(cmd.Out(), "Revoked %s from user %d on %s\n", g.Capability, g.UserID, scope(g))
			return nil
		},
	}
	c.Flags().Int64P(extension.FlagGlossary, "g", 0, "Glossary id (default: every glossary)")
	return c
}

func (e *Extension) newGrantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grants [user]",
		Short: "List grants",
		Long: `List the grants of one user, or of everybody.

  glossd grants       # every grant
  glossd grants 7     # grants of user 7`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var user int64
			if len(args) == 1 {
				var err error
				if user, err = strconv.ParseInt(args[0], 10, 64); err != nil || user <= 0 {
					return cmd.PrintJSONError(fmt.Errorf("invalid user id %q", args[0]))
				}
			}
			grants, err := e.svc.Grants(c.Context(), user)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("list grants: %w", err))
			}
			if cmd.JSON() {
				out := make([]store.GrantJSON, len(grants))
				for i, g := range grants {
					out[i] = g.ToJSON()
				}
				return cmd.PrintJSON(out)
			}
			if len(grants) == 0 {
				fmt.Fprintln(cmd.Out(), "No grants")
				return nil
			}
			for _, g := range grants {
				fmt.Fprintf(cmd.Out(), "user %-6d  %-36s  %s\n", g.UserID, g.Capability, scope(g))
			}
			return nil
		},
	}
}
