// Package cli implements onboardctl, the command-line client of the onboarding dashboard.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/adamanr/onboarding_dashboard/internal/access"
	"github.com/adamanr/onboarding_dashboard/internal/config"
	"github.com/adamanr/onboarding_dashboard/internal/controllers"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/adamanr/onboarding_dashboard/internal/session"
	logging "github.com/adamanr/onboarding_dashboard/internal/utils"
	"github.com/spf13/cobra"
)

// SessionKey names the single session file of the CLI.
const SessionKey = "session"

// routeAnnotation ties a command to the client route whose policy guards it.
const routeAnnotation = "route"

var (
	ErrNotLoggedIn = errors.New("not logged in, run `onboardctl login` first")
	ErrForbidden   = errors.New("permission denied")
)

type app struct {
	configPath string
	asJSON     bool
	verbose    bool

	cfg     *config.Config
	logger  *slog.Logger
	deps    *controllers.Dependens
	ctrl    *controllers.Controllers
	session *entity.Session
}

// NewRootCmd builds the command tree. Commands print to cmd.OutOrStdout.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "onboardctl",
		Short:         "HR onboarding dashboard client",
		Long:          "onboardctl signs in to the HR onboarding API and manages users and employee documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}

			return a.admit(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "echo debug logs to stderr")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.dashboardCmd(),
		a.usersCmd(),
		a.documentsCmd(),
	)

	return root
}

// Execute runs onboardctl with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.GetConfig(config.ResolvePath(a.configPath), slog.New(slog.DiscardHandler))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	dir := cfg.CLI.SessionDir
	if dir == "" {
		if dir, err = session.DefaultDir(); err != nil {
			return err
		}
	}

	store, err := session.NewFileStore(dir)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}

	console := io.Discard
	if a.verbose {
		console = cmd.ErrOrStderr()
	}

	if a.logger, err = logging.SetupLogger(console, filepath.Join(dir, "onboardctl.log"), level); err != nil {
		return err
	}

	client := hrapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil, a.logger)
	a.deps = controllers.NewHRDependens(client, store, nil, cfg, a.logger)
	a.ctrl = controllers.NewControllers(a.deps)

	return nil
}

// admit runs the guard for commands that carry a route annotation.
func (a *app) admit(cmd *cobra.Command) error {
	route, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		return nil
	}

	sess, err := a.ctrl.AuthController.Current(cmd.Context(), SessionKey)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return err
	}

	decision, err := access.AdmitRoute(route, sess)
	if err != nil {
		return err
	}

	switch decision {
	case access.Allow:
		a.session = sess
		return nil
	case access.RedirectForbidden:
		roles, _ := access.RequiredRoles(route)
		return fmt.Errorf("%w: %s needs role %v, signed in as %q", ErrForbidden, cmd.CommandPath(), roles, sess.User.Role)
	default:
		return ErrNotLoggedIn
	}
}

func (a *app) workspace() *controllers.Workspace {
	return a.ctrl.Workspaces.Get(SessionKey, a.session)
}

func guarded(cmd *cobra.Command, route string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = route

	return cmd
}
