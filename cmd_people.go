package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"library-records/library"
)

func (a *app) requireAdmin() error {
	if a.session.UserType != library.UserTypeAdmin {
		return fmt.Errorf("%s is not an administrator", a.session.Username)
	}
	return nil
}

func newAdminCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "admin", Short: "Manage desk administrator accounts"}

	var (
		in       library.AdminUserInput
		password string
	)
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an administrator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			pw, err := promptPassword(password, "New password: ")
			if err != nil {
				return err
			}
			in.Username, in.Password = args[0], pw
			u, err := a.mgr.AddAdminUser(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Admin %s created with ID: %d\n", u.Username, u.ID)
			return err
		},
	}
	add.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	add.Flags().StringVar(&in.FullName, "name", "", "Full name")
	add.Flags().StringVar(&in.Email, "email", "", "Email")
	add.Flags().StringVar(&in.Role, "role", "", "Role (default admin)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List administrator accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			admins, err := a.mgr.GetAllAdmins()
			if err != nil {
				return err
			}
			tw := a.table("ID", "USERNAME", "NAME", "EMAIL", "ROLE", "LAST LOGIN")
			for _, u := range admins {
				last := "never"
				if u.LastLogin != nil {
					last = u.LastLogin.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.FullName, u.Email, u.Role, last)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage library user accounts"}

	var (
		in       library.LibraryUserInput
		password string
	)
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a library user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			pw, err := promptPassword(password, "New password: ")
			if err != nil {
				return err
			}
			in.Username, in.Password = args[0], pw
			u, err := a.mgr.AddLibraryUser(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "User %s created with ID: %d\n", u.Username, u.ID)
			return err
		},
	}
	add.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	add.Flags().StringVar(&in.Email, "email", "", "Email (unique)")
	add.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	add.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	add.Flags().StringVar(&in.UserType, "type", library.UserTypeMember, "admin, staff, member or student")
	add.Flags().StringVar(&in.MembershipID, "membership-id", "", "Membership id")
	add.Flags().StringVar(&in.StudentID, "student-id", "", "Student id")
	add.Flags().StringVar(&in.Department, "department", "", "Department")
	_ = add.MarkFlagRequired("email")

	var userType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List library users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				users []*library.LibraryUser
				err   error
			)
			if userType == "" {
				users, err = a.mgr.GetAllLibraryUsers()
			} else {
				users, err = a.mgr.GetLibraryUsersByType(userType)
			}
			if err != nil {
				return err
			}
			return a.printUsers(users)
		},
	}
	list.Flags().StringVar(&userType, "type", "", "Only list users of this type")

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search users by name, username, email or id numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.mgr.SearchLibraryUsers(args[0])
			if err != nil {
				return err
			}
			return a.printUsers(users)
		},
	}

	cmd.AddCommand(add, list, search)
	return cmd
}

func (a *app) printUsers(users []*library.LibraryUser) error {
	tw := a.table("ID", "USERNAME", "NAME", "EMAIL", "TYPE", "STATUS")
	for _, u := range users {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, name, u.Email, u.UserType, u.Status)
	}
	return tw.Flush()
}

func newAttendanceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "attendance", Short: "Visitor log"}

	var in library.AttendanceInput
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Log a visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			e, err := a.mgr.AddAttendance(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Visit logged for %s at %s %s\n", e.Name, e.Date, e.Time)
			return err
		},
	}
	add.Flags().StringVar(&in.LibraryNumber, "library-number", "", "Library card number")
	add.Flags().StringVar(&in.Purpose, "purpose", "", "Purpose of visit")
	add.Flags().StringVar(&in.Date, "date", "", "Date YYYY-MM-DD (default today)")
	add.Flags().StringVar(&in.Time, "time", "", "Time HH:MM (default now)")

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the visitor log",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.mgr.GetAttendance()
			if err != nil {
				return err
			}
			tw := a.table("DATE", "TIME", "NAME", "LIBRARY NO", "PURPOSE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date, e.Time, e.Name, e.LibraryNumber, e.Purpose)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newAnnounceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "announce", Short: "Post and read announcements"}

	var in library.AnnouncementInput
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Post an announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			// Announcements are attributed to the matching admin account, if any.
			if admin, err := a.mgr.GetAdminByUsername(a.session.Username); err == nil {
				in.AuthorID = admin.ID
			}
			ann, err := a.mgr.AddAnnouncement(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Announcement posted with ID: %d\n", ann.ID)
			return err
		},
	}
	add.Flags().StringVar(&in.Content, "content", "", "Body text")
	add.Flags().StringVar(&in.Priority, "priority", "", "Priority (default Normal)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List active announcements",
		RunE: func(cmd *cobra.Command, args []string) error {
			anns, err := a.mgr.GetActiveAnnouncements()
			if err != nil {
				return err
			}
			tw := a.table("ID", "PRIORITY", "TITLE", "POSTED")
			for _, ann := range anns {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ann.ID, ann.Priority, ann.Title, ann.CreatedAt.Local().Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newFeedbackCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "feedback", Short: "Record and review member feedback"}

	var (
		in       library.FeedbackInput
		memberID string
	)
	add := &cobra.Command{
		Use:   "add <message>",
		Short: "Record feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Message = args[0]
			if memberID != "" {
				m, err := a.mgr.GetMemberByMemberID(memberID)
				if err != nil {
					return err
				}
				in.MemberID = m.ID
			}
			f, err := a.mgr.AddFeedback(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Feedback recorded with ID: %d\n", f.ID)
			return err
		},
	}
	add.Flags().StringVar(&memberID, "member", "", "Member card number")
	add.Flags().StringVar(&in.Subject, "subject", "", "Subject")
	add.Flags().IntVar(&in.Rating, "rating", 0, "Rating 1-5 (0 for none)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.mgr.GetAllFeedback()
			if err != nil {
				return err
			}
			tw := a.table("ID", "STATUS", "RATING", "SUBJECT", "MESSAGE")
			for _, f := range items {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", f.ID, f.Status, f.Rating, f.Subject, truncateString(f.Message, 50))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
