package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"library-records/config"
	"library-records/library"
	"library-records/logging"
)

const publicAnnotation = "public"

// app holds what every command needs once the root command has run.
type app struct {
	out     io.Writer
	cfgPath string
	dbPath  string
	cfg     *config.Config
	logger  *zap.Logger
	mgr     *library.LibraryManager
	session *library.LibraryUser
}

func main() {
	a := &app{out: os.Stdout}
	if err := newRootCommand(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", message(err))
		os.Exit(1)
	}
}

// message hides store internals behind their readable Failure text.
func message(err error) string {
	var oe *library.OpError
	if errors.As(err, &oe) {
		return library.Describe(err).Message
	}
	return err.Error()
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "library",
		Short:         "Library desk records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				_ = a.close()
				return err
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	cmd.SetOut(a.out)
	cmd.PersistentFlags().StringVar(&a.cfgPath, "config", "library.yaml", "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "Path to the library database (overrides config)")

	cmd.AddCommand(
		newInitCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newAdminCommand(a),
		newBookCommand(a),
		newMemberCommand(a),
		newLoanCommand(a),
		newUserCommand(a),
		newAttendanceCommand(a),
		newAnnounceCommand(a),
		newFeedbackCommand(a),
		newDashboardCommand(a),
		newBackupCommand(a),
	)
	return cmd
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	a.cfg = cfg

	if a.logger, err = logging.New(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.mgr, err = library.NewLibraryManager(cfg.Database.Path,
		library.WithLogger(a.logger),
		library.WithSampleData(cfg.Database.SeedSampleData),
	)
	if err != nil {
		return err
	}
	if cmd.Annotations[publicAnnotation] == "true" {
		return nil
	}

	token, err := a.readToken()
	if err != nil {
		return errors.New("not logged in, run `library login` first")
	}
	if a.session, err = a.mgr.CurrentUser(token); err != nil {
		return errors.New("session expired, run `library login` again")
	}
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.mgr == nil {
		return nil
	}
	return a.mgr.Close()
}

// The session token lives next to the database file.
func (a *app) tokenPath() string {
	return a.cfg.Database.Path + ".session"
}

func (a *app) readToken() (string, error) {
	raw, err := os.ReadFile(a.tokenPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (a *app) writeToken(token string) error {
	if dir := filepath.Dir(a.tokenPath()); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(a.tokenPath(), []byte(token+"\n"), 0o600)
}

func public(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[publicAnnotation] = "true"
	return cmd
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func (a *app) table(header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
