package library

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LibraryManager is a thin façade over the Store that adds the desk login
// flow. All repository operations are available through the embedded Store.
type LibraryManager struct {
	*Store
	logger *zap.Logger
}

// NewLibraryManager opens (or creates) the store at dbPath.
func NewLibraryManager(dbPath string, opts ...Option) (*LibraryManager, error) {
	store, err := Open(dbPath, opts...)
	if err != nil {
		return nil, err
	}
	return &LibraryManager{Store: store, logger: store.logger}, nil
}

// Login checks the credentials and opens a session, returning its token.
//
// Unified library users are tried first. An admin account that has no
// matching library user gets one of type admin on its first login, so
// every session belongs to a row in library_users. The linked row holds no
// password of its own; admin_users stays the only credential for it.
func (lm *LibraryManager) Login(username, password, ip, userAgent string) (string, error) {
	const op = "login"
	user, err := lm.loginUser(op, username, password)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	if _, err := lm.CreateSession(user.ID, token, ip, userAgent); err != nil {
		return "", err
	}
	lm.logger.Info("user logged in", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
	return token, nil
}

func (lm *LibraryManager) loginUser(op, username, password string) (*LibraryUser, error) {
	ok, err := lm.AuthenticateUser(username, password)
	if err != nil {
		return nil, err
	}
	if ok {
		return lm.GetLibraryUserByUsername(username)
	}

	ok, err = lm.AuthenticateAdmin(username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &OpError{Op: op, Kind: ErrInvalidCredentials}
	}

	user, err := lm.GetLibraryUserByUsername(username)
	switch {
	case err == nil:
		// The name is taken by an inactive or non-admin identity.
		if user.UserType != UserTypeAdmin || user.Status != StatusActive {
			return nil, &OpError{Op: op, Kind: ErrInvalidCredentials}
		}
		return user, nil
	case !isNotFound(err):
		return nil, err
	}
	return lm.linkAdmin(username)
}

func (lm *LibraryManager) linkAdmin(username string) (*LibraryUser, error) {
	admin, err := lm.GetAdminByUsername(username)
	if err != nil {
		return nil, err
	}
	user, err := lm.linkAdminUser(admin)
	if err != nil {
		return nil, err
	}
	lm.logger.Info("linked admin account", zap.String("username", username), zap.Int64("user_id", user.ID))
	return user, nil
}

// Logout ends the session. Unknown or already closed tokens are ignored.
func (lm *LibraryManager) Logout(token string) error {
	_, err := lm.LogoutSession(token)
	return err
}

// CurrentUser resolves an active session token to its user.
func (lm *LibraryManager) CurrentUser(token string) (*LibraryUser, error) {
	const op = "current user"
	session, err := lm.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &OpError{Op: op, Kind: ErrInvalidCredentials, Err: errors.New("no active session")}
	}
	return lm.GetLibraryUserByID(session.UserID)
}
