package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/module/cliente"
	"github.com/simp-lee/clientes/internal/pkg"
)

type listOptions struct {
	page     int
	pageSize int
	sort     string
	desc     bool
	nombres  string
	numID    string
	estado   string
}

func newListCmd(c *cli) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clientes one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := opts.query(c.cfg.UI.PageSizeOptions)
			if err != nil {
				return err
			}

			prompter, nav := c.session(cmd)
			ctrl := c.listController(prompter, nav, query)
			defer ctrl.Close()

			ctx := cmd.Context()
			if err := openList(ctx, ctrl, query.Page, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return printPage(ctx, cmd.OutOrStdout(), ctrl)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func (o *listOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&o.page, "page", 1, "page number, starting at 1")
	f.IntVar(&o.pageSize, "page-size", 0, "page size, one of ui.page_size_options (default: the smallest)")
	f.StringVar(&o.sort, "sort", pkg.DefaultSortField, "sort field: "+strings.Join(pkg.SortFields, ", "))
	f.BoolVar(&o.desc, "desc", false, "sort descending")
	f.StringVar(&o.nombres, "nombres", "", "filter by name")
	f.StringVar(&o.numID, "num-id", "", "filter by identification number")
	f.StringVar(&o.estado, "estado", "true", "status filter: true, false or all")
}

// openList loads page 1 of the seeded state, then moves to page when it
// exists. A page past the end is reported on errOut and page 1 stays.
func openList(ctx context.Context, ctrl *cliente.ListController, page int, errOut io.Writer) error {
	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	if page <= 1 {
		return nil
	}
	if err := ctrl.GoToPage(ctx, page); err != nil {
		return err
	}
	if got := ctrl.State().Page; got != page {
		fmt.Fprintf(errOut, "La página %d no existe, se muestra la página %d.\n", page, got)
	}
	return nil
}

// query validates the flags and converts them into the initial list state.
func (o *listOptions) query(sizes []int) (pkg.ListQuery, error) {
	q := pkg.DefaultListQuery(sizes)

	if o.page < 1 {
		return q, fmt.Errorf("invalid --page %d: must be at least 1", o.page)
	}

	if o.pageSize != 0 {
		if !pkg.AllowedPageSize(o.pageSize, sizes) {
			return q, fmt.Errorf("invalid --page-size %d: must be one of %v", o.pageSize, sizes)
		}
		q.PageSize = o.pageSize
	}

	if !slices.Contains(pkg.SortFields, o.sort) {
		return q, fmt.Errorf("invalid --sort %q: must be one of %s", o.sort, strings.Join(pkg.SortFields, ", "))
	}
	q.SortField = o.sort
	if o.desc {
		q.SortDirection = domain.SortDesc
	}

	estado, ok := domain.ParseStatusFilter(o.estado)
	if !ok {
		return q, fmt.Errorf("invalid --estado %q: must be true, false or all", o.estado)
	}
	q.Filters = domain.Filters{
		Nombres: strings.TrimSpace(o.nombres),
		NumID:   strings.TrimSpace(o.numID),
		Estado:  estado,
	}
	q.Page = o.page
	return q, nil
}

// pageLinks is the number of page numbers printed around the current page.
const pageLinks = 7

var columns = []struct{ title, field string }{
	{"ID", "Id"},
	{"NUM ID", "NumId"},
	{"NOMBRES", "Nombres"},
	{"APELLIDOS", "Apellidos"},
	{"CORREO", "Correo"},
	{"ESTADO", "Estado"},
	{"CREADO", "FechaCreacion"},
}

func printPage(ctx context.Context, w io.Writer, ctrl *cliente.ListController) error {
	result := ctrl.Result()
	if result == nil || len(result.Items) == 0 {
		fmt.Fprintln(w, "No hay clientes para mostrar.")
		return nil
	}
	view, err := pkg.NewPageView(ctx, result, pageLinks)
	if err != nil {
		return err
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.title + sortMark(ctrl.SortClass(col.field))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, item := range view.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.IDValue(), item.NumID, item.Nombres, item.Apellidos,
			orDash(item.Correo), estadoLabel(item.Estado), formatDate(item))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "Página %d de %d (%d clientes)\n", view.CurrentPage, view.TotalPages, view.TotalItems)
	if view.TotalPages > 1 {
		links := make([]string, len(view.Pages))
		for i, n := range view.Pages {
			if n == view.CurrentPage {
				links[i] = fmt.Sprintf("[%d]", n)
			} else {
				links[i] = strconv.Itoa(n)
			}
		}
		fmt.Fprintf(w, "Páginas: %s\n", strings.Join(links, " "))
	}
	return nil
}

func sortMark(class string) string {
	switch class {
	case string(domain.SortAsc):
		return " ↑"
	case string(domain.SortDesc):
		return " ↓"
	default:
		return ""
	}
}

func estadoLabel(active bool) string {
	if active {
		return "Activo"
	}
	return "Inactivo"
}

func formatDate(c domain.Cliente) string {
	if c.FechaCreacion == nil || c.FechaCreacion.IsZero() {
		return "-"
	}
	return c.FechaCreacion.Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
