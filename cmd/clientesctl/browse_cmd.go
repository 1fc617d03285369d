package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/module/cliente"
	"github.com/simp-lee/clientes/internal/pkg"
)

const browseHelp = `Commands:
  n, next                 next page
  p, prev                 previous page
  page N                  go to page N
  size N                  change the page size
  sort FIELD              sort by FIELD, again to flip the direction
  filter [nombres=TEXT] [numId=TEXT] [estado=true|false|all]
  toggle ID               activate or deactivate a cliente
  rm ID                   remove a cliente
  edit ID                 open the edit form
  new                     open the new form
  h, help                 this help
  q, quit                 leave
`

func newBrowseCmd(c *cli) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page, sort and filter clientes interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := opts.query(c.cfg.UI.PageSizeOptions)
			if err != nil {
				return err
			}

			prompter, nav := c.session(cmd)
			ctrl := c.listController(prompter, nav, query)
			defer ctrl.Close()

			b := &browser{
				ctrl:     ctrl,
				gateway:  c.gateway,
				prompter: prompter,
				out:      cmd.OutOrStdout(),
			}
			ctx := cmd.Context()
			if err := openList(ctx, ctrl, query.Page, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return b.run(ctx)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

// browser reads list commands from the terminal and applies them through
// the list controller.
type browser struct {
	ctrl     *cliente.ListController
	gateway  domain.ClienteGateway
	prompter *terminalPrompter
	out      io.Writer
}

var errQuit = errors.New("quit")

func (b *browser) run(ctx context.Context) error {
	if err := printPage(ctx, b.out, b.ctrl); err != nil {
		return err
	}
	for {
		line, ok := b.prompter.ReadLine("> ")
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}

		err := b.exec(ctx, strings.Fields(line))
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			// Backend failures were already alerted by the controller.
			var appErr *domain.AppError
			if !errors.As(err, &appErr) {
				fmt.Fprintln(b.out, err)
			}
		}
	}
}

func (b *browser) exec(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "q", "quit":
		return errQuit
	case "h", "help":
		fmt.Fprint(b.out, browseHelp)
		return nil
	case "new":
		b.ctrl.New()
		return nil
	case "edit":
		id, err := oneID(cmd, rest)
		if err != nil {
			return err
		}
		return b.ctrl.Edit(id)
	case "toggle":
		id, err := oneID(cmd, rest)
		if err != nil {
			return err
		}
		record, err := b.record(ctx, id)
		if err != nil {
			return err
		}
		return b.show(ctx, b.ctrl.ToggleStatus(ctx, record))
	case "rm":
		id, err := oneID(cmd, rest)
		if err != nil {
			return err
		}
		return b.show(ctx, b.ctrl.Remove(ctx, domain.Cliente{ID: &id, Estado: true}))
	case "n", "next":
		return b.goTo(ctx, b.page()+1)
	case "p", "prev":
		return b.goTo(ctx, b.page()-1)
	case "page":
		n, err := oneInt(cmd, rest)
		if err != nil {
			return err
		}
		return b.goTo(ctx, n)
	case "size":
		n, err := oneInt(cmd, rest)
		if err != nil {
			return err
		}
		if err := b.ctrl.SetPageSize(ctx, n); domain.IsValidation(err) {
			return fmt.Errorf("size must be one of %v", b.ctrl.PageSizeOptions())
		} else if err != nil {
			return err
		}
		return printPage(ctx, b.out, b.ctrl)
	case "sort":
		if len(rest) != 1 || !slices.Contains(pkg.SortFields, rest[0]) {
			return fmt.Errorf("usage: sort FIELD, one of %s", strings.Join(pkg.SortFields, ", "))
		}
		if err := b.ctrl.SortBy(ctx, rest[0]); err != nil {
			return err
		}
		return printPage(ctx, b.out, b.ctrl)
	case "filter":
		f, err := parseFilters(b.ctrl.State().Filters, rest)
		if err != nil {
			return err
		}
		b.ctrl.ApplyFilters(ctx, f)
		if err := b.ctrl.WaitFilters(ctx); err != nil {
			return err
		}
		return printPage(ctx, b.out, b.ctrl)
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
}

// show prints the page after a record action.
func (b *browser) show(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	return printPage(ctx, b.out, b.ctrl)
}

// goTo moves to page n. GoToPage ignores pages that do not exist.
func (b *browser) goTo(ctx context.Context, n int) error {
	before := b.page()
	if err := b.ctrl.GoToPage(ctx, n); err != nil {
		return err
	}
	if n != before && b.page() == before {
		fmt.Fprintf(b.out, "La página %d no existe.\n", n)
		return nil
	}
	return printPage(ctx, b.out, b.ctrl)
}

func (b *browser) page() int {
	return b.ctrl.State().Page
}

// record finds id on the displayed page, else asks the backend.
func (b *browser) record(ctx context.Context, id uint) (domain.Cliente, error) {
	for _, item := range b.ctrl.Items() {
		if item.IDValue() == id {
			return item, nil
		}
	}
	record, err := b.gateway.GetByID(ctx, id)
	if err != nil {
		fmt.Fprintln(b.out, cliente.MsgLoadFailed)
		return domain.Cliente{}, err
	}
	return *record, nil
}

// parseFilters applies key=value pairs to current. Without pairs the text
// filters are cleared.
func parseFilters(current domain.Filters, pairs []string) (domain.Filters, error) {
	if len(pairs) == 0 {
		return domain.Filters{Estado: current.Estado}, nil
	}
	f := current
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return current, fmt.Errorf("invalid filter %q: want key=value", pair)
		}
		switch key {
		case "nombres":
			f.Nombres = strings.TrimSpace(value)
		case "numId":
			f.NumID = strings.TrimSpace(value)
		case "estado":
			estado, ok := domain.ParseStatusFilter(value)
			if !ok {
				return current, fmt.Errorf("invalid estado %q: must be true, false or all", value)
			}
			f.Estado = estado
		default:
			return current, fmt.Errorf("unknown filter %q", key)
		}
	}
	return f, nil
}

func oneID(cmd string, args []string) (uint, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s ID", cmd)
	}
	return parseID(args[0])
}

func oneInt(cmd string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s N", cmd)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}
