package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit a draft visit",
		Long:  "Mark a visit as submitted and stamp the submission time.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubmit,
	}
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeService(svc)

	v, err := svc.Submit(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(out(cmd), v)
	}
	_, err = fmt.Fprintf(out(cmd), "✓ Visit to %s submitted.\n", v.ClientName)
	return err
}
