package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/0finn0the0human0/springbootTraining/internal/apperr"
	"github.com/0finn0the0human0/springbootTraining/internal/dto"
	"github.com/0finn0the0human0/springbootTraining/pkg/ptr"
	"github.com/0finn0the0human0/springbootTraining/pkg/validator"
	"github.com/0finn0the0human0/springbootTraining/pkg/zerror"
)

const (
	outputJSON  = "json"
	outputTable = "table"
)

type productOutput struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	RetailPrice json.Number `json:"retailPrice"`
}

func toOutput(view dto.ProductView) productOutput {
	return productOutput{
		ID:          view.ID,
		Name:        view.Name,
		Description: view.Description,
		RetailPrice: json.Number(view.RetailPrice.StringFixed(2)),
	}
}

type commands struct {
	open   Opener
	output string
}

type runFunc func(cmd *cobra.Command, args []string, app *App) error

// NewRootCmd returns the catalogctl command tree. Every subcommand opens its
// App through open and closes it before returning.
func NewRootCmd(open Opener) *cobra.Command {
	c := &commands{open: open}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage the product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if c.output != outputJSON && c.output != outputTable {
				return fmt.Errorf("unsupported output format %q", c.output)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.output, "output", "o", outputJSON, "output format (json|table)")

	root.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.searchCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.deleteCmd(),
	)

	return root
}

func (c *commands) run(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		app, err := c.open(cmd.Context())
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer func() {
			if app.Close == nil {
				return
			}
			if cerr := app.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close catalog: %w", cerr)
			}
		}()

		return fn(cmd, args, app)
	}
}

func (c *commands) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every product",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, app *App) error {
			products, err := app.Products.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			return c.printList(cmd.OutOrStdout(), products)
		}),
	}
}

func (c *commands) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, app *App) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			product, err := app.Products.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if product == nil {
				return apperr.ProductNotFoundErr
			}
			return c.printOne(cmd.OutOrStdout(), *product)
		}),
	}
}

func (c *commands) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find products whose name contains term, ignoring case",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, app *App) error {
			req := dto.ProductSearchRequest{Name: strings.Join(args, " ")}
			if err := app.Validator.Validate(req); err != nil {
				return err
			}

			products, err := app.Products.Search(cmd.Context(), req.Name)
			if err != nil {
				return err
			}
			return c.printList(cmd.OutOrStdout(), products)
		}),
	}
}

// productFlags binds the create and update payload to command flags.
type productFlags struct {
	name        string
	description string
	price       string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.description, "description", "", "product description")
	cmd.Flags().StringVar(&f.price, "price", "", "retail price, e.g. 19.99")
}

// request builds the payload. Flags that were not passed stay absent so that
// validation reports them the same way a JSON body without them would be.
func (f *productFlags) request(cmd *cobra.Command) (dto.ProductCreateRequest, error) {
	req := dto.ProductCreateRequest{Name: f.name}

	if cmd.Flags().Changed("description") {
		req.Description = ptr.New(f.description)
	}

	if cmd.Flags().Changed("price") {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return req, zerror.NewBadRequest(apperr.InvalidRequestErrorCode, "Invalid format for flag price").WrapParent(err)
		}
		req.RetailPrice = &price
	}

	return req, nil
}

func (c *commands) createCmd() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, app *App) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			if err := app.Validator.Validate(req); err != nil {
				return err
			}

			product, err := app.Products.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.printOne(cmd.OutOrStdout(), product)
		}),
	}
	flags.register(cmd)

	return cmd
}

func (c *commands) updateCmd() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product's name, description and retail price",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, app *App) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			if err := app.Validator.Validate(req); err != nil {
				return err
			}

			product, err := app.Products.Update(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			if product == nil {
				return apperr.ProductNotFoundErr
			}
			return c.printOne(cmd.OutOrStdout(), *product)
		}),
	}
	flags.register(cmd)

	return cmd
}

func (c *commands) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, app *App) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			deleted, err := app.Products.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return apperr.ProductNotFoundErr
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted product %d\n", id)
			return err
		}),
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, zerror.NewBadRequest(apperr.InvalidRequestErrorCode, "Invalid format for parameter id").WrapParent(err)
	}
	return id, nil
}

func (c *commands) printOne(w io.Writer, view dto.ProductView) error {
	if c.output == outputTable {
		return writeTable(w, []dto.ProductView{view})
	}
	return writeJSON(w, toOutput(view))
}

func (c *commands) printList(w io.Writer, views []dto.ProductView) error {
	if c.output == outputTable {
		return writeTable(w, views)
	}

	items := make([]productOutput, 0, len(views))
	for _, view := range views {
		items = append(items, toOutput(view))
	}
	return writeJSON(w, items)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func writeTable(w io.Writer, views []dto.ProductView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRETAIL PRICE\tDESCRIPTION")
	for _, view := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", view.ID, view.Name, view.RetailPrice.StringFixed(2), ptr.Deref(view.Description))
	}
	return tw.Flush()
}

// IsUserError reports whether err was caused by the command's input rather than the system.
func IsUserError(err error) bool {
	if validator.IsValidationError(err) {
		return true
	}

	var zErr zerror.ZError
	if !errors.As(err, &zErr) {
		return false
	}
	switch zErr.Status() {
	case zerror.StatusBadRequest, zerror.StatusNotFound, zerror.StatusConflict, zerror.StatusValidationFailed:
		return true
	default:
		return false
	}
}

// ErrorMessage renders err for a terminal. Application errors print their
// message alone and validation failures list every violated field.
func ErrorMessage(err error) string {
	var fieldErrs validator.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs.Error()
	}

	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return zErr.Msg()
	}

	return err.Error()
}
