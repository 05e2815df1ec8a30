package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"conti/internal/core"
	"conti/internal/services"
)

var (
	listQuery  string
	listSort   string
	listDesc   bool
	listPage   int
	listRender string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list <file|url>",
	Short: "Print one page of a record list",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter text (case-insensitive substring)")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "Field to sort by")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "Sort descending")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page to print")
	listCmd.Flags().StringVar(&listRender, "render", "", "Write the projected page to this HTML file")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the page as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	list, doc, err := a.openList(cmd.Context(), args[0], services.Deps{Logger: a.logger, Values: services.NewValueCache()})
	if err != nil {
		return err
	}
	if err := arrange(list, listQuery, listSort, listDesc); err != nil {
		return err
	}
	if listPage != 1 {
		if err := list.SetCurrentPage(listPage); err != nil {
			return err
		}
	}

	if listRender != "" {
		f, err := os.Create(listRender)
		if err != nil {
			return fmt.Errorf("create %s: %w", listRender, err)
		}
		defer f.Close()
		if err := doc.Render(f); err != nil {
			return fmt.Errorf("render %s: %w", listRender, err)
		}
	}

	if listJSON {
		return printJSON(cmd.OutOrStdout(), list)
	}
	printTable(cmd.OutOrStdout(), list, list.VisibleCards())
	fmt.Fprintln(cmd.OutOrStdout(), list.Status())
	return nil
}

// arrange applies the filter and sort given on the command line.
func arrange(list *services.RecordList, query, field string, desc bool) error {
	if query != "" {
		list.ApplyFilter(query)
	}
	if field == "" {
		return nil
	}
	if err := list.HandleHeaderClick(field); err != nil {
		return err
	}
	if desc {
		return list.HandleHeaderClick(field)
	}
	return nil
}

func headerLabels(list *services.RecordList) []string {
	headers := list.Headers()
	labels := make([]string, len(headers))
	for i, h := range headers {
		labels[i] = h.Label
	}
	return labels
}

// rowCells returns the cells of c under the sortable headers.
func rowCells(c *core.Card, n int) []string {
	row := make([]string, n)
	for i := range row {
		row[i], _ = c.Cell(i)
	}
	return row
}

func printTable(w io.Writer, list *services.RecordList, cards []*core.Card) {
	labels := headerLabels(list)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{"ID"}, labels...)...)
	for _, c := range cards {
		t.Row(append([]string{c.ID}, rowCells(c, len(labels))...)...)
	}
	fmt.Fprintln(w, t.Render())
}

type pageJSON struct {
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
	Total      int                 `json:"total"`
	Query      string              `json:"query,omitempty"`
	Sort       *core.SortKey       `json:"sort,omitempty"`
	Records    []map[string]string `json:"records"`
}

func printJSON(w io.Writer, list *services.RecordList) error {
	headers := list.Headers()
	out := pageJSON{
		Page:       list.CurrentPage(),
		TotalPages: list.TotalPages(),
		Total:      len(list.Filtered()),
		Query:      list.State().Query,
		Sort:       list.SortedBy(),
		Records:    []map[string]string{},
	}
	for _, c := range list.VisibleCards() {
		rec := map[string]string{"id": c.ID}
		for i, h := range headers {
			rec[h.Field], _ = c.Cell(i)
		}
		out.Records = append(out.Records, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
