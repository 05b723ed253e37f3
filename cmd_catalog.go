package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"library-records/library"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newBookCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "book", Short: "Manage the book catalog"}

	var in library.BookInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.mgr.AddBook(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Book added with ID: %d\n", b.ID)
			return err
		},
	}
	add.Flags().StringVar(&in.ISBN, "isbn", "", "ISBN (unique)")
	add.Flags().StringVar(&in.Title, "title", "", "Title")
	add.Flags().StringVar(&in.Author, "author", "", "Author")
	add.Flags().StringVar(&in.Publisher, "publisher", "", "Publisher")
	add.Flags().IntVar(&in.Year, "year", 0, "Publication year")
	add.Flags().StringVar(&in.Category, "category", "", "Category")
	add.Flags().IntVar(&in.TotalCopies, "copies", 1, "Total copies")
	add.Flags().StringVar(&in.Location, "location", "", "Shelf location")
	_ = add.MarkFlagRequired("isbn")
	_ = add.MarkFlagRequired("title")

	list := &cobra.Command{
		Use:   "list",
		Short: "List all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.mgr.GetAllBooks()
			if err != nil {
				return err
			}
			return a.printBooks(books)
		},
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title, author or ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.mgr.SearchBooks(args[0])
			if err != nil {
				return err
			}
			if len(books) == 0 {
				_, err = fmt.Fprintln(a.out, "No books found matching your search.")
				return err
			}
			return a.printBooks(books)
		},
	}

	cmd.AddCommand(add, list, search)
	return cmd
}

func (a *app) printBooks(books []*library.Book) error {
	tw := a.table("ID", "ISBN", "TITLE", "AUTHOR", "AVAILABLE", "LOCATION")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%s\n",
			b.ID, b.ISBN, truncateString(b.Title, 40), truncateString(b.Author, 25), b.CopiesAvailable, b.TotalCopies, b.Location)
	}
	return tw.Flush()
}

func newMemberCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "member", Short: "Manage library members"}

	var in library.MemberInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.mgr.AddMember(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Member added with ID: %d\n", m.ID)
			return err
		},
	}
	add.Flags().StringVar(&in.MemberID, "member-id", "", "Card number (unique)")
	add.Flags().StringVar(&in.Name, "name", "", "Full name")
	add.Flags().StringVar(&in.Email, "email", "", "Email")
	add.Flags().StringVar(&in.Phone, "phone", "", "Phone")
	add.Flags().StringVar(&in.Address, "address", "", "Address")
	_ = add.MarkFlagRequired("member-id")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List all members",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.mgr.GetAllMembers()
			if err != nil {
				return err
			}
			tw := a.table("ID", "MEMBER ID", "NAME", "EMAIL", "STATUS")
			for _, m := range members {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.MemberID, m.Name, m.Email, m.Status)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newLoanCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "loan", Short: "Borrow and return books"}

	var borrowed, due string
	borrow := &cobra.Command{
		Use:   "borrow <book-id> <member-id>",
		Short: "Lend a copy of a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			memberID, err := parseID(args[1])
			if err != nil {
				return err
			}
			l, err := a.mgr.AddBorrowedBook(bookID, memberID, borrowed, due)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Loan %d created, due %s\n", l.ID, l.DueDate)
			return err
		},
	}
	borrow.Flags().StringVar(&borrowed, "date", "", "Borrow date YYYY-MM-DD (default today)")
	borrow.Flags().StringVar(&due, "due", "", "Due date YYYY-MM-DD (default two weeks)")

	ret := &cobra.Command{
		Use:   "return <loan-id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			l, err := a.mgr.ReturnBook(id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Loan %d returned on %s\n", l.ID, l.ReturnedDate)
			return err
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := a.mgr.GetAllBorrowedBooks()
			if err != nil {
				return err
			}
			return a.printLoans(loans)
		},
	}

	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "List loans past their due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := a.mgr.GetOverdueBooks()
			if err != nil {
				return err
			}
			return a.printLoans(loans)
		},
	}

	cmd.AddCommand(borrow, ret, list, overdue)
	return cmd
}

func (a *app) printLoans(loans []*library.BorrowedBook) error {
	tw := a.table("ID", "BOOK", "MEMBER", "BORROWED", "DUE", "RETURNED", "STATUS")
	for _, l := range loans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, truncateString(deref(l.BookTitle), 40), deref(l.MemberName), l.BorrowedDate, l.DueDate, l.ReturnedDate, l.Status)
	}
	return tw.Flush()
}
