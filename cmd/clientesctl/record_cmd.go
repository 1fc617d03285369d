package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/module/cliente"
	"github.com/simp-lee/clientes/internal/pkg"
)

func newToggleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Activate an inactive cliente or deactivate an active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			record, err := c.gateway.GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("load cliente %d: %w", id, err)
			}
			prompter, nav := c.session(cmd)
			ctrl := c.listController(prompter, nav, pkg.DefaultListQuery(c.cfg.UI.PageSizeOptions))
			defer ctrl.Close()
			return ctrl.ToggleStatus(ctx, *record)
		},
	}
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Soft delete a cliente",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			prompter, nav := c.session(cmd)
			ctrl := c.listController(prompter, nav, pkg.DefaultListQuery(c.cfg.UI.PageSizeOptions))
			defer ctrl.Close()
			return ctrl.Remove(cmd.Context(), domain.Cliente{ID: &id})
		},
	}
}

func newExistsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "exists NUM_ID",
		Short: "Report whether an identification number is taken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, err := c.gateway.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if exists {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: existe\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: disponible\n", args[0])
			}
			return nil
		},
	}
}

// listController returns a list controller seeded with initial. Record
// actions refresh that page afterwards.
func (c *cli) listController(prompter cliente.Prompter, nav cliente.Navigator, initial pkg.ListQuery) *cliente.ListController {
	return cliente.NewListController(c.gateway, prompter, nav, cliente.ListConfig{
		PageSizeOptions: c.cfg.UI.PageSizeOptions,
		FilterDebounce:  c.cfg.UI.FilterDebounceDuration(),
		Logger:          c.logger(),
		Initial:         &initial,
	})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return uint(id), nil
}
