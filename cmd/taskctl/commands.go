package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/veranemoloko/task-workflow/internal/domain"
	"github.com/veranemoloko/task-workflow/internal/workflow"
)

var (
	outputFormat string
	roleFlag     string
	fromFlag     string
	toFlag       string
)

// errDenied signals a refused transition; the message is already printed.
var errDenied = errors.New("transition denied")

// tableCmd prints the transition table
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the status transition table",
	Long: `Prints every status with the statuses it may move to.

Example:
  taskctl table
  taskctl table --output yaml`,
	Args: cobra.NoArgs,
	RunE: runTable,
}

// checkCmd validates one transition for a role
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a role may make a status change",
	Long: `Prints "allowed" or the reason the change is refused.
Exits non-zero when the change is refused.

Example:
  taskctl check --role assignee --from ASSIGNED --to IN_PROGRESS
  taskctl check --role assignee --from WAITING_CONFIRM --to APPROVED`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// optionsCmd lists the actions a role has from a status
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the status changes a role may make from a status",
	Args:  cobra.NoArgs,
	RunE:  runOptions,
}

func init() {
	tableCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or yaml")

	checkCmd.Flags().StringVar(&roleFlag, "role", "", "assigner or assignee (omit to check the table only)")
	checkCmd.Flags().StringVar(&fromFlag, "from", "", "current status")
	checkCmd.Flags().StringVar(&toFlag, "to", "", "proposed status")
	_ = checkCmd.MarkFlagRequired("from")
	_ = checkCmd.MarkFlagRequired("to")

	optionsCmd.Flags().StringVar(&roleFlag, "role", "", "assigner or assignee")
	optionsCmd.Flags().StringVar(&fromFlag, "from", "", "current status")
	_ = optionsCmd.MarkFlagRequired("role")
	_ = optionsCmd.MarkFlagRequired("from")
}

type tableRow struct {
	From domain.TaskStatus   `yaml:"from"`
	To   []domain.TaskStatus `yaml:"to"`
}

func runTable(cmd *cobra.Command, args []string) error {
	table := workflow.Table()
	rows := make([]tableRow, 0, len(table))
	for _, from := range domain.AllStatuses() {
		rows = append(rows, tableRow{From: from, To: table[from]})
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]tableRow{"transitions": rows}); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "text":
		return writeTextTable(out, rows)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}

func writeTextTable(w io.Writer, rows []tableRow) error {
	for _, row := range rows {
		targets := "(terminal)"
		if len(row.To) > 0 {
			names := make([]string, 0, len(row.To))
			for _, s := range row.To {
				names = append(names, s.String())
			}
			targets = strings.Join(names, ", ")
		}
		if _, err := fmt.Fprintf(w, "%-16s -> %s\n", row.From, targets); err != nil {
			return err
		}
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	from, err := domain.ParseTaskStatus(fromFlag)
	if err != nil {
		return err
	}
	to, err := domain.ParseTaskStatus(toFlag)
	if err != nil {
		return err
	}

	var role domain.Role
	if roleFlag != "" {
		if role, err = domain.ParseRole(roleFlag); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if from == to {
		return deny(out, fmt.Sprintf("task is already in status %s", from))
	}

	allowed := workflow.IsValidStatusTransition(from, to)
	if role != "" {
		allowed = workflow.CanUserChangeStatus(role, from, to)
	}
	if !allowed {
		return deny(out, workflow.StatusTransitionErrorMessage(from, to, role))
	}

	_, err = fmt.Fprintln(out, "allowed")
	return err
}

// deny prints the refusal reason and returns errDenied, or the write error.
func deny(w io.Writer, reason string) error {
	if _, err := fmt.Fprintln(w, reason); err != nil {
		return err
	}
	return errDenied
}

func runOptions(cmd *cobra.Command, args []string) error {
	role, err := domain.ParseRole(roleFlag)
	if err != nil {
		return err
	}
	from, err := domain.ParseTaskStatus(fromFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	options := workflow.AvailableTransitions(role, from)
	if len(options) == 0 {
		_, err = fmt.Fprintf(out, "no actions available for the %s in status %s\n", role, from)
		return err
	}
	for _, opt := range options {
		if _, err := fmt.Fprintf(out, "%-16s %-22s %s\n", opt.To, opt.Prompt, opt.Description); err != nil {
			return err
		}
	}
	return nil
}
