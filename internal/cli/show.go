package cli

import (
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show visit details",
		Long:  "Show full details for a visit, including all products.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeService(svc)

	v, err := svc.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(out(cmd), v)
	}
	return printVisitDetail(out(cmd), v)
}
