package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"user-management/internal/config"
	"user-management/internal/domain"
	"user-management/internal/observability/logging"
	impl "user-management/internal/service/impl"
	"user-management/internal/store"
	"user-management/pkg/db"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	_ = godotenv.Load()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "sweep":
		err = runSweep(args)
	case "suspend":
		err = runSetStatus(args, domain.AccountSuspended)
	case "activate":
		err = runSetStatus(args, domain.AccountActive)
	case "logout-all":
		err = runLogoutAll(args)
	case "set-role":
		err = runSetRole(args)
	case "delete-user":
		err = runDeleteUser(args)
	case "audit":
		err = runAudit(args)
	case "inspect-token":
		err = runInspectToken(args)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  sweep          Delete expired and inactive sessions")
	fmt.Fprintln(os.Stderr, "  suspend        Suspend an account and revoke its sessions")
	fmt.Fprintln(os.Stderr, "  activate       Reactivate a suspended account")
	fmt.Fprintln(os.Stderr, "  logout-all     Revoke every active session of a user")
	fmt.Fprintln(os.Stderr, "  set-role       Change a user's role (student, instructor, admin)")
	fmt.Fprintln(os.Stderr, "  delete-user    Delete a user and all dependent rows")
	fmt.Fprintln(os.Stderr, "  audit          Print a user's recent audit trail")
	fmt.Fprintln(os.Stderr, "  inspect-token  Decode a session token and check it against the signing key")
	os.Exit(2)
}

type env struct {
	cfg   config.Config
	store *store.Store
	auth  *impl.AuthServiceImpl
	close func()
}

// open connects to the database configured in the environment.
func open() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(logging.Config{
		ServiceName: "userctl",
		Environment: cfg.Environment,
		Level:       getenv("USERCTL_LOG_LEVEL", "warn"),
		Output:      os.Stderr,
	})
	slog.SetDefault(logger)

	gdb, err := db.OpenPostgres(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.DBLogSQL, Logger: logger})
	if err != nil {
		return nil, err
	}
	st := store.New(gdb)
	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{Issuer: cfg.Issuer, SigningKey: []byte(cfg.SigningKey)})
	if err != nil {
		return nil, err
	}
	auth := impl.NewAuthServiceImpl(st, impl.NewPasswordServiceBcrypt(cfg.BcryptCost), ts, cfg.SessionDuration)
	return &env{cfg: cfg, store: st, auth: auth, close: func() { _ = db.Close(gdb) }}, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// resolveUser accepts a user UUID or an email address.
func resolveUser(ctx context.Context, st *store.Store, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("-user is required")
	}
	var (
		u   *domain.User
		err error
	)
	if id, perr := uuid.Parse(ref); perr == nil {
		u, err = st.Users().FindByID(ctx, id)
	} else {
		u, err = st.Users().FindByEmail(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound.WithMessage("no user matches " + ref)
	}
	return u, nil
}

func userCommand(name string, args []string, fn func(ctx context.Context, e *env, u *domain.User) error) error {
	fs := newFlagSet(name)
	ref := fs.String("user", "", "user UUID or email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := open()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := context.Background()
	u, err := resolveUser(ctx, e.store, *ref)
	if err != nil {
		return err
	}
	return fn(ctx, e, u)
}

func runSweep(args []string) error {
	if err := newFlagSet("sweep").Parse(args); err != nil {
		return err
	}
	e, err := open()
	if err != nil {
		return err
	}
	defer e.close()

	n, err := e.auth.SweepExpired(context.Background())
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"deleted": n})
}

func runSetStatus(args []string, status domain.AccountStatus) error {
	return userCommand(string(status), args, func(ctx context.Context, e *env, u *domain.User) error {
		if err := e.auth.SetAccountStatus(ctx, u.ID, status); err != nil {
			return err
		}
		return printJSON(map[string]any{"user_id": u.ID, "account_status": status})
	})
}

func runLogoutAll(args []string) error {
	return userCommand("logout-all", args, func(ctx context.Context, e *env, u *domain.User) error {
		n, err := e.auth.LogoutEverywhere(ctx, u.ID)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"user_id": u.ID, "invalidated": n})
	})
}

func runSetRole(args []string) error {
	fs := newFlagSet("set-role")
	ref := fs.String("user", "", "user UUID or email")
	role := fs.String("role", "", "student, instructor or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	typ := domain.UserType(strings.TrimSpace(*role))
	if !typ.Valid() {
		return fmt.Errorf("invalid role %q", *role)
	}
	return userCommand("set-role", []string{"-user", *ref}, func(ctx context.Context, e *env, u *domain.User) error {
		if _, err := e.store.Users().SetType(ctx, u.ID, typ, time.Now()); err != nil {
			return err
		}
		// existing tokens carry the old role
		n, err := e.auth.LogoutEverywhere(ctx, u.ID)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"user_id": u.ID, "type_user": typ, "sessions_revoked": n})
	})
}

func runDeleteUser(args []string) error {
	fs := newFlagSet("delete-user")
	ref := fs.String("user", "", "user UUID or email")
	yes := fs.Bool("yes", false, "confirm deletion")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("refusing to delete without -yes")
	}
	return userCommand("delete-user", []string{"-user", *ref}, func(ctx context.Context, e *env, u *domain.User) error {
		counts, err := e.store.DeleteUserData(ctx, u.ID)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"user_id": u.ID, "deleted": counts})
	})
}

func runAudit(args []string) error {
	fs := newFlagSet("audit")
	ref := fs.String("user", "", "user UUID or email")
	limit := fs.Int("limit", 50, "maximum entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return userCommand("audit", []string{"-user", *ref}, func(ctx context.Context, e *env, u *domain.User) error {
		entries, err := e.store.AuditLogs().ListByUser(ctx, u.ID, *limit)
		if err != nil {
			return err
		}
		type row struct {
			Action    string          `json:"action"`
			Metadata  json.RawMessage `json:"metadata,omitempty"`
			IP        string          `json:"ip,omitempty"`
			CreatedAt time.Time       `json:"created_at"`
		}
		out := make([]row, 0, len(entries))
		for _, en := range entries {
			out = append(out, row{Action: en.Action, Metadata: en.Metadata, IP: en.IP, CreatedAt: en.CreatedAt})
		}
		return printJSON(out)
	})
}

// runInspectToken needs no database. The signature is only checked when
// JWT_SECRET is set.
func runInspectToken(args []string) error {
	fs := newFlagSet("inspect-token")
	token := fs.String("token", "", "session token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tok := strings.TrimSpace(*token)
	if tok == "" {
		return errors.New("-token is required")
	}

	secret := os.Getenv("JWT_SECRET")
	verify := secret != ""
	if !verify {
		secret = "unverified"
	}
	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{Issuer: getenv("JWT_ISSUER", "user-management"), SigningKey: []byte(secret)})
	if err != nil {
		return err
	}
	claims, err := ts.Decode(tok)
	if err != nil {
		return err
	}
	digest, err := ts.Digest(tok)
	if err != nil {
		return err
	}

	out := map[string]any{"claims": claims, "digest": digest}
	if verify {
		if _, verr := ts.Validate(tok); verr != nil {
			out["valid"] = false
			out["error"] = verr.Error()
		} else {
			out["valid"] = true
		}
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
