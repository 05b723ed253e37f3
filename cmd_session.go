package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"library-records/library"
)

func promptPassword(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	pw, err := readPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return pw, nil
}

func newInitCommand(a *app) *cobra.Command {
	return public(&cobra.Command{
		Use:   "init",
		Short: "Create the database, apply migrations and seed the default admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.out, "Library database ready at %s\n", a.mgr.Path())
			return err
		},
	})
}

func newLoginCommand(a *app) *cobra.Command {
	var password string
	cmd := public(&cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and start a desk session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := promptPassword(password, "Password: ")
			if err != nil {
				return err
			}
			host, _ := os.Hostname()
			token, err := a.mgr.Login(args[0], pw, host, "library-cli")
			if err != nil {
				return err
			}
			if err := a.writeToken(token); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			_, err = fmt.Fprintf(a.out, "Logged in as %s\n", args[0])
			return err
		},
	})
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return public(&cobra.Command{
		Use:   "logout",
		Short: "End the current desk session",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.readToken()
			if errors.Is(err, os.ErrNotExist) {
				_, err = fmt.Fprintln(a.out, "Not logged in.")
				return err
			}
			if err != nil {
				return err
			}
			if err := a.mgr.Logout(token); err != nil {
				return err
			}
			if err := os.Remove(a.tokenPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			_, err = fmt.Fprintln(a.out, "Logged out.")
			return err
		},
	})
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u := a.session
			_, err := fmt.Fprintf(a.out, "%s (%s %s) type=%s role=%s\n", u.Username, u.FirstName, u.LastName, u.UserType, u.Role)
			return err
		},
	}
}

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show library summary counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.mgr.DashboardStats()
			if err != nil {
				return err
			}
			return a.printDashboard(st)
		},
	}
}

func (a *app) printDashboard(st *library.DashboardStats) error {
	tw := a.table("METRIC", "VALUE")
	fmt.Fprintf(tw, "Active members\t%d\n", st.ActiveMembers)
	fmt.Fprintf(tw, "Total copies\t%d\n", st.TotalBooks)
	fmt.Fprintf(tw, "Available copies\t%d\n", st.AvailableBooks)
	fmt.Fprintf(tw, "Borrowed\t%d\n", st.BorrowedBooks)
	fmt.Fprintf(tw, "Active staff\t%d\n", st.ActiveStaff)
	fmt.Fprintf(tw, "Loans (last 7 days)\t%d\n", st.RecentLoans)
	types := make([]string, 0, len(st.ActiveUsersByType))
	for userType := range st.ActiveUsersByType {
		types = append(types, userType)
	}
	sort.Strings(types)
	for _, userType := range types {
		fmt.Fprintf(tw, "Active %s users\t%d\n", userType, st.ActiveUsersByType[userType])
	}
	return tw.Flush()
}

func newBackupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [dest]",
		Short: "Write a consistent copy of the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := a.mgr.Path() + "." + time.Now().Format("20060102-150405") + ".bak"
			if len(args) == 1 {
				dest = args[0]
			}
			if err := a.mgr.Backup(dest); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.out, "Backup written to %s\n", dest)
			return err
		},
	}
}
