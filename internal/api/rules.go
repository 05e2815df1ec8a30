package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ActiveRulesZone is the drop zone that activates a rule.
const ActiveRulesZone = "active-rules"

// ConflictResolution picks the rule applied to a transaction matched by several rules.
type ConflictResolution struct {
	TransactionID int64 `json:"transaction_id"`
	RuleID        int64 `json:"rule_id"`
}

// RuleRef is a rule competing for a transaction.
type RuleRef struct {
	ID         int64  `json:"id"`
	Label      string `json:"label"`
	CategoryID int64  `json:"category_id"`
}

// RulePreview shows how applying the rules would change one transaction.
type RulePreview struct {
	ID                    int64     `json:"id"`
	Description           string    `json:"description"`
	LabelOldValue         string    `json:"label_old_value"`
	LabelNewValue         string    `json:"label_new_value"`
	PercToExcludeOldValue string    `json:"perc_to_exclude_old_value"`
	PercToExcludeNewValue string    `json:"perc_to_exclude_new_value"`
	CategoryOldValue      string    `json:"category_old_value"`
	CategoryNewValue      string    `json:"category_new_value"`
	Conflicts             []RuleRef `json:"conflicts"`
}

// HasConflict reports whether more than one rule matches the transaction.
func (p RulePreview) HasConflict() bool { return len(p.Conflicts) > 1 }

func rulesPath(account string, parts ...string) string {
	p := "/accounts/" + url.PathEscape(account) + "/rules"
	for _, s := range parts {
		p += "/" + url.PathEscape(s)
	}
	return p
}

// ActivateRule enables a rule for an account.
func (c *Client) ActivateRule(ctx context.Context, account, rule string) error {
	return c.ruleAction(ctx, account, rule, "activate")
}

// DeactivateRule disables a rule for an account.
func (c *Client) DeactivateRule(ctx context.Context, account, rule string) error {
	return c.ruleAction(ctx, account, rule, "deactivate")
}

// MoveRule activates the rule when dropped on the active zone and
// deactivates it on any other zone.
func (c *Client) MoveRule(ctx context.Context, account, rule, zone string) error {
	if zone == ActiveRulesZone {
		return c.ActivateRule(ctx, account, rule)
	}
	return c.DeactivateRule(ctx, account, rule)
}

func (c *Client) ruleAction(ctx context.Context, account, rule, action string) error {
	if account == "" || rule == "" {
		return fmt.Errorf("%s rule: account and rule are required", action)
	}
	if err := c.FetchJSON(ctx, http.MethodPost, rulesPath(account, rule, action), nil, nil); err != nil {
		return fmt.Errorf("%s rule %s: %w", action, rule, err)
	}
	return nil
}

// PreviewRules lists what applying the account's rules would change.
func (c *Client) PreviewRules(ctx context.Context, account string) ([]RulePreview, error) {
	var out []RulePreview
	if err := c.FetchJSON(ctx, http.MethodGet, rulesPath(account, "preview_apply_rules"), nil, &out); err != nil {
		return nil, fmt.Errorf("preview rules: %w", err)
	}
	return out, nil
}

// ResolveConflicts sends the chosen rule per conflicting transaction.
// An empty selection sends nothing.
func (c *Client) ResolveConflicts(ctx context.Context, account string, choices []ConflictResolution) error {
	if len(choices) == 0 {
		return nil
	}
	if err := c.FetchJSON(ctx, http.MethodPost, rulesPath(account, "resolve_conflicts"), choices, nil); err != nil {
		return fmt.Errorf("resolve conflicts: %w", err)
	}
	return nil
}

// ApplyRules resolves conflicts, then applies the account's rules.
func (c *Client) ApplyRules(ctx context.Context, account string, choices []ConflictResolution) error {
	if err := c.ResolveConflicts(ctx, account, choices); err != nil {
		return err
	}
	if err := c.FetchJSON(ctx, http.MethodPost, rulesPath(account, "apply_rules"), nil, nil); err != nil {
		return fmt.Errorf("apply rules: %w", err)
	}
	return nil
}
