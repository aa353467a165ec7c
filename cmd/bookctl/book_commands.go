package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/service"
)

var errConfirmationRequired = errors.New("refusing to delete without confirmation: stdin is not a terminal (use --yes)")

type resultOutput struct {
	Message string       `json:"message"`
	Books   []*data.Book `json:"books"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			v, err := svc.ListBooks(cmd.Context(), service.View{})
			if err != nil {
				return err
			}
			if ctx.flags.json {
				return writeJSON(cmd, v.Books)
			}
			if len(v.Books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBooks(v.Books))
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			v, err := svc.LoadForEdit(cmd.Context(), service.View{}, id)
			if err != nil {
				return err
			}
			if ctx.flags.json {
				return writeJSON(cmd, struct {
					ID int64 `json:"id"`
					data.BookForm
				}{id, v.Form})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderForm(v.Form))
			return nil
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var form data.BookForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			v, err := svc.Submit(cmd.Context(), service.View{}, form)
			if err != nil {
				return err
			}
			return writeResult(cmd, ctx, v)
		},
	}
	bindFormFlags(cmd, &form)
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var changes data.BookForm
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing book",
		Long:  "Loads the book, replaces the fields given as flags and sends the whole record back.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			v, err := svc.LoadForEdit(cmd.Context(), service.View{}, id)
			if err != nil {
				return err
			}
			v.Form = applyChanges(cmd, v.Form, changes)
			v, err = svc.Submit(cmd.Context(), v, v.Form)
			if err != nil {
				return err
			}
			return writeResult(cmd, ctx, v)
		},
	}
	bindFormFlags(cmd, &changes)
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service(cmd)
			if err != nil {
				return err
			}
			confirm := service.ConfirmFunc(service.Confirmed)
			if !yes {
				if !ctx.interactive(cmd.InOrStdin()) {
					return errConfirmationRequired
				}
				confirm = promptConfirm(cmd)
			}
			asked := false
			answered := func(c context.Context, prompt string) bool {
				asked = true
				return confirm(c, prompt)
			}
			v, err := svc.DeleteBook(cmd.Context(), service.View{}, id, answered)
			if err != nil {
				return err
			}
			if asked && v.Feedback.Kind == service.FeedbackNone {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			return writeResult(cmd, ctx, v)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func bindFormFlags(cmd *cobra.Command, form *data.BookForm) {
	cmd.Flags().StringVar(&form.Title, "title", "", "Book title")
	cmd.Flags().StringVar(&form.Author, "author", "", "Book author")
	cmd.Flags().StringVar(&form.ISBN, "isbn", "", "ISBN, 10 to 17 digits and dashes")
	cmd.Flags().StringVar(&form.Price, "price", "", "Price, a non-negative number")
	cmd.Flags().StringVar(&form.PublishDate, "publish-date", "", "Publish date, YYYY-MM-DD")
}

// applyChanges overwrites the fields of form whose flag was given on the
// command line, so that an explicit empty value still reaches the validator.
func applyChanges(cmd *cobra.Command, form, changes data.BookForm) data.BookForm {
	flags := cmd.Flags()
	if flags.Changed("title") {
		form.Title = changes.Title
	}
	if flags.Changed("author") {
		form.Author = changes.Author
	}
	if flags.Changed("isbn") {
		form.ISBN = changes.ISBN
	}
	if flags.Changed("price") {
		form.Price = changes.Price
	}
	if flags.Changed("publish-date") {
		form.PublishDate = changes.PublishDate
	}
	return form
}

// promptConfirm asks on the command's stdout and reads a y/N answer from its stdin.
func promptConfirm(cmd *cobra.Command) service.ConfirmFunc {
	return func(_ context.Context, prompt string) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

func writeResult(cmd *cobra.Command, ctx *commandContext, v service.View) error {
	if ctx.flags.json {
		return writeJSON(cmd, resultOutput{Message: v.Feedback.Message, Books: v.Books})
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Feedback.Message)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid book id %q", s)
	}
	return id, nil
}
