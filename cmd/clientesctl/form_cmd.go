package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/module/cliente"
)

// formFlags maps each form field to the flag that sets it.
var formFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"num-id", cliente.FieldNumID, "identification number, unique across all clientes"},
	{"nombres", cliente.FieldNombres, "first names"},
	{"apellidos", cliente.FieldApellidos, "last names"},
	{"correo", cliente.FieldCorreo, "email address (optional)"},
}

func newCreateCmd(c *cli) *cobra.Command {
	values := make(map[string]*string, len(formFlags))

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cliente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runForm(cmd, 0, func(name string) (string, bool) {
				return *values[name], true
			})
		},
	}
	bindFormFlags(cmd, values)
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	values := make(map[string]*string, len(formFlags))

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Update the fields of a cliente given by flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.runForm(cmd, id, func(name string) (string, bool) {
				return *values[name], cmd.Flags().Changed(name)
			})
		},
	}
	bindFormFlags(cmd, values)
	return cmd
}

func bindFormFlags(cmd *cobra.Command, values map[string]*string) {
	for _, f := range formFlags {
		values[f.flag] = cmd.Flags().String(f.flag, "", f.usage)
	}
}

// runForm drives a form controller: load, apply the flag values, wait for
// the identification number check and submit.
func (c *cli) runForm(cmd *cobra.Command, id uint, value func(flag string) (string, bool)) error {
	ctx := cmd.Context()
	prompter, nav := c.session(cmd)

	form := cliente.NewFormController(c.gateway, prompter, nav, id, cliente.FormConfig{
		CodeDebounce: -1,
		Logger:       c.logger(),
	})
	defer form.Close()

	if err := form.Init(ctx); err != nil {
		return err
	}
	for _, f := range formFlags {
		v, ok := value(f.flag)
		if !ok {
			continue
		}
		if err := form.SetValue(ctx, f.field, v); err != nil {
			return err
		}
	}
	if err := form.WaitCodeCheck(ctx); err != nil {
		return err
	}

	err := form.Submit(ctx)
	if domain.IsValidation(err) {
		printFieldErrors(cmd.ErrOrStderr(), form.Errors())
	}
	return err
}

func printFieldErrors(w io.Writer, errs map[string]string) {
	msgs := cliente.FieldMessages(errs)
	for _, f := range formFlags {
		if msg, ok := msgs[f.field]; ok {
			fmt.Fprintf(w, "--%s: %s\n", f.flag, msg)
		}
	}
}
