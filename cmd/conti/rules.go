package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"conti/internal/api"
)

var rulesChoices []string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Activate, deactivate and apply the categorization rules of an account",
}

var rulesActivateCmd = &cobra.Command{
	Use:   "activate <account> <rule>",
	Short: "Activate a rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *api.Client) error {
			return c.ActivateRule(cmd.Context(), args[0], args[1])
		})
	},
}

var rulesDeactivateCmd = &cobra.Command{
	Use:   "deactivate <account> <rule>",
	Short: "Deactivate a rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *api.Client) error {
			return c.DeactivateRule(cmd.Context(), args[0], args[1])
		})
	},
}

var rulesMoveCmd = &cobra.Command{
	Use:   "move <account> <rule> <zone>",
	Short: "Drop a rule on a zone: " + api.ActiveRulesZone + " activates it, any other zone deactivates it",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *api.Client) error {
			return c.MoveRule(cmd.Context(), args[0], args[1], args[2])
		})
	},
}

var rulesPreviewCmd = &cobra.Command{
	Use:   "preview <account>",
	Short: "Show what applying the rules would change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *api.Client) error {
			previews, err := c.PreviewRules(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "Descrizione", "Etichetta", "Categoria", "% escl.", "Conflitti")
			for _, p := range previews {
				t.Row(
					strconv.FormatInt(p.ID, 10),
					p.Description,
					change(p.LabelOldValue, p.LabelNewValue),
					change(p.CategoryOldValue, p.CategoryNewValue),
					change(p.PercToExcludeOldValue, p.PercToExcludeNewValue),
					conflicts(p),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		})
	},
}

var rulesApplyCmd = &cobra.Command{
	Use:   "apply <account>",
	Short: "Resolve conflicts and apply the rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		choices, err := parseChoices(rulesChoices)
		if err != nil {
			return err
		}
		return withClient(func(c *api.Client) error {
			if err := c.ApplyRules(cmd.Context(), args[0], choices); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "rules applied")
			return nil
		})
	},
}

func init() {
	rulesApplyCmd.Flags().StringSliceVar(&rulesChoices, "choose", nil, "Conflict resolution as <transaction>=<rule>, repeatable")

	rulesCmd.AddCommand(rulesActivateCmd)
	rulesCmd.AddCommand(rulesDeactivateCmd)
	rulesCmd.AddCommand(rulesMoveCmd)
	rulesCmd.AddCommand(rulesPreviewCmd)
	rulesCmd.AddCommand(rulesApplyCmd)
}

func withClient(fn func(c *api.Client) error) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a.client)
}

// parseChoices reads "<transaction>=<rule>" pairs.
func parseChoices(raw []string) ([]api.ConflictResolution, error) {
	out := make([]api.ConflictResolution, 0, len(raw))
	for _, r := range raw {
		tx, rule, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid choice %q: want <transaction>=<rule>", r)
		}
		txID, err := strconv.ParseInt(strings.TrimSpace(tx), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction id in %q: %w", r, err)
		}
		ruleID, err := strconv.ParseInt(strings.TrimSpace(rule), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rule id in %q: %w", r, err)
		}
		out = append(out, api.ConflictResolution{TransactionID: txID, RuleID: ruleID})
	}
	return out, nil
}

func change(from, to string) string {
	if from == to {
		return from
	}
	return from + " → " + to
}

func conflicts(p api.RulePreview) string {
	if !p.HasConflict() {
		return ""
	}
	labels := make([]string, len(p.Conflicts))
	for i, r := range p.Conflicts {
		labels[i] = fmt.Sprintf("%d:%s", r.ID, r.Label)
	}
	return strings.Join(labels, ", ")
}
