package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"refdesk/internal/api"
	"refdesk/internal/approval"
	"refdesk/internal/config"
	"refdesk/internal/domain"
)

// Command flags
var (
	queueStatus  string
	queueAll     bool
	journalLimit int
	rowsPage     int
	rowsSize     int
	rowsFilter   []string
	forceInit    bool
)

func init() {
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(retractCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(rowsCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(configCmd)

	queueCmd.Flags().StringVar(&queueStatus, "status", "", "Only show requests in this status")
	queueCmd.Flags().BoolVar(&queueAll, "all", false, "Show the queues of every resource")
	journalCmd.Flags().IntVar(&journalLimit, "limit", 50, "Maximum number of entries")

	rowsListCmd.Flags().IntVar(&rowsPage, "page", 0, "Page number, zero based")
	rowsListCmd.Flags().IntVar(&rowsSize, "size", 0, "Page size (default from config)")
	rowsListCmd.Flags().StringArrayVar(&rowsFilter, "filter", nil, "Filter as field=value, repeatable")
	rowsCmd.AddCommand(rowsListCmd, rowsGetCmd, rowsBulkCreateCmd, rowsBulkRemoveCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configPathCmd)
}

// withApp builds the shared services around a command
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, cmd, args)
	}
}

var queueCmd = &cobra.Command{
	Use:   "queue [resource]",
	Short: "Show the approval queue of a resource",
	Example: `  refdesk queue recommended-questions
  refdesk queue app-schemes --status update_requested
  refdesk queue --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if queueAll {
			queues, err := a.queue.LoadAll(ctx, a.catalog.Names())
			if err != nil {
				return err
			}
			for _, name := range a.catalog.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", name, len(queues[name]))
				printQueue(cmd.OutOrStdout(), queues[name])
			}
			return nil
		}
		if len(args) == 0 {
			return errors.New("a resource is required unless --all is set")
		}
		if _, err := a.resource(args[0]); err != nil {
			return err
		}
		var filter map[string]string
		if queueStatus != "" {
			filter = map[string]string{"status": queueStatus}
		}
		reqs, err := a.queue.Load(ctx, args[0], filter)
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pending requests.")
			return nil
		}
		printQueue(cmd.OutOrStdout(), reqs)
		return nil
	}),
}

var approveCmd = &cobra.Command{
	Use:   "approve <resource> <id>...",
	Short: "Send approval requests to final approval",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return decide(ctx, a, cmd.OutOrStdout(), args[0], args[1:], "approved", a.queue.Approve)
	}),
}

var retractCmd = &cobra.Command{
	Use:   "retract <resource> <id>...",
	Short: "Withdraw pending approval requests",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return decide(ctx, a, cmd.OutOrStdout(), args[0], args[1:], "retracted", a.queue.Retract)
	}),
}

func decide(ctx context.Context, a *app, out io.Writer, resource string, ids []string, verb string,
	action func(context.Context, string, []string) error) error {
	if _, err := a.resource(resource); err != nil {
		return err
	}
	// the queue checks transitions against what it has cached
	if _, err := a.queue.Load(ctx, resource, nil); err != nil {
		return err
	}
	if err := action(ctx, resource, ids); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d request(s) %s: %s\n", len(ids), verb, strings.Join(ids, ", "))
	return nil
}

var journalCmd = &cobra.Command{
	Use:   "journal [resource]",
	Short: "List locally journaled submissions and decisions",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if a.journal == nil {
			return errors.New("journal is not available, check storage.journal_path")
		}
		resource := ""
		if len(args) == 1 {
			resource = args[0]
		}
		entries, err := a.journal.List(ctx, resource, journalLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Journal is empty.")
			return nil
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			target := e.TargetID
			if target == "" {
				target = strings.Join(e.RequestIDs, ",")
			}
			rows = append(rows, []string{
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Resource, e.Action, e.Kind, target,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Time", "Resource", "Action", "Kind", "Target"}, rows))
		return nil
	}),
}

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Read and bulk-edit resource rows",
}

var rowsListCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List one page of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		def, err := a.resource(args[0])
		if err != nil {
			return err
		}
		filter, err := parseFilter(rowsFilter)
		if err != nil {
			return err
		}
		size := rowsSize
		if size <= 0 {
			size = a.cfg.UI.PageSize
		}
		page, err := a.client.List(ctx, def.Name, api.ListQuery{Page: rowsPage, Size: size, Filter: filter})
		if err != nil {
			return err
		}
		headers := make([]string, 0, len(def.Columns))
		for _, c := range def.Columns {
			headers = append(headers, c.Header)
		}
		rows := make([][]string, 0, len(page.Items))
		for _, r := range page.Items {
			cells := make([]string, 0, len(def.Columns))
			for _, c := range def.Columns {
				cells = append(cells, r.String(c.Field))
			}
			rows = append(rows, cells)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderTable(headers, rows))
		fmt.Fprintf(out, "page %d/%d, %d total\n", page.Meta.Page+1, max(page.Meta.TotalPages, 1), page.Meta.TotalElements)
		return nil
	}),
}

var rowsGetCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Print one row as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if _, err := a.resource(args[0]); err != nil {
			return err
		}
		row, err := a.client.Get(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(row, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}),
}

var rowsBulkCreateCmd = &cobra.Command{
	Use:   "bulk-create <resource> <file>",
	Short: "Create rows from a YAML or JSON list",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		def, err := a.resource(args[0])
		if err != nil {
			return err
		}
		rows, err := readRows(args[1])
		if err != nil {
			return err
		}
		for i, r := range rows {
			if err := def.Validate(r); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		res, err := a.client.BulkCreate(ctx, def.Name, rows)
		if err != nil {
			return err
		}
		printBatch(cmd.OutOrStdout(), res)
		return nil
	}),
}

var rowsBulkRemoveCmd = &cobra.Command{
	Use:   "bulk-remove <resource> <id>...",
	Short: "Remove several rows",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if _, err := a.resource(args[0]); err != nil {
			return err
		}
		res, err := a.client.BulkRemove(ctx, args[0], args[1:])
		if err != nil {
			return err
		}
		printBatch(cmd.OutOrStdout(), res)
		return nil
	}),
}

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the known resources",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		rows := make([][]string, 0)
		for _, name := range a.catalog.Names() {
			def, _ := a.catalog.Get(name)
			rows = append(rows, []string{def.Name, def.Label, def.TargetType, strconv.Itoa(len(def.Columns))})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Label", "Target type", "Columns"}, rows))
		return nil
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an access token",
	Long: `Store the access token used for every request. Without --token the token is
read from the terminal without echo.`,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		tok := tokenFlag
		if tok == "" {
			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return errors.New("no terminal to read the token from, pass --token")
			}
			fmt.Fprint(cmd.OutOrStdout(), "Token: ")
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			tok = strings.TrimSpace(string(b))
		}
		if tok == "" {
			return errors.New("empty token")
		}
		if err := a.tokens.Set(tok); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token saved.")
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if err := a.tokens.Clear(); err != nil {
			return err
		}
		a.session.Clear(a.user)
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	}),
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := config.NewConfigService(configPath, nil)
		if _, err := os.Stat(svc.Path()); err == nil && !forceInit {
			return fmt.Errorf("%s already exists, use --force to overwrite", svc.Path())
		}
		cfg := config.DefaultConfig()
		if baseURL != "" {
			cfg.API.BaseURL = baseURL
		}
		if err := svc.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", svc.Path())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.NewConfigService(configPath, nil).Path())
	},
}

func printQueue(out io.Writer, reqs []approval.Request) {
	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, []string{
			strconv.Itoa(r.No), r.ID.String(), string(r.Kind), r.Status.Label(), r.TargetID.String(),
			r.RequesterName, r.RequestedAt, yesNo(bool(r.Retracted)),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"No", "ID", "Kind", "Status", "Target", "Requester", "Requested", "Retracted"}, rows))
}

func printBatch(out io.Writer, res domain.BatchResult) {
	fmt.Fprintf(out, "%d of %d succeeded, %d failed\n", res.SuccessCount, res.TotalCount, res.FailCount)
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	altStyle := cellStyle.Foreground(lipgloss.Color("245"))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 1:
				return altStyle
			default:
				return cellStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

func parseFilter(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// readRows loads a list of rows. YAML is a superset of JSON so one decoder serves both.
func readRows(path string) ([]domain.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	rows := make([]domain.Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, domain.Row(r))
	}
	return rows, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
