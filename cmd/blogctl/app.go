package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/auth"
	"github.com/jrsteele09/go-blog-client/files"
	"github.com/jrsteele09/go-blog-client/internal/config"
	"github.com/jrsteele09/go-blog-client/internal/logging"
	"github.com/jrsteele09/go-blog-client/posts"
	"github.com/jrsteele09/go-blog-client/profile"
	"github.com/jrsteele09/go-blog-client/routes"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/taxonomy"
)

// app holds everything a command needs. It is filled in once the global
// flags have been parsed.
type app struct {
	out    io.Writer
	errOut io.Writer
	in     io.Reader

	flags  globalFlags
	cfg    config.Config
	logger zerolog.Logger
	print  *printer

	api      *apiclient.Client
	auth     *auth.Service
	posts    *posts.Client
	taxonomy *taxonomy.Cache
	files    *files.Client
	profile  *profile.Client
}

type globalFlags struct {
	envFile    string
	configFile string
	apiURL     string
	output     string
	logLevel   string
	noColor    bool
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, in: os.Stdin, logger: zerolog.Nop()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "blogctl",
		Short:         "Command line client for the blog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.StringVar(&a.flags.configFile, "config", "", "YAML profile (env BLOG_CONFIG_FILE)")
	pf.StringVar(&a.flags.apiURL, "api-url", "", "base URL of the blog API (env BLOG_API_URL)")
	pf.StringVarP(&a.flags.output, "output", "o", "", "output format: text|json (env BLOG_OUTPUT)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (env BLOG_LOG_LEVEL)")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newPostsCmd(a),
		newTagsCmd(a),
		newStacksCmd(a),
		newUploadCmd(a),
		newProfileCmd(a),
		newDocCmd(a),
		newFilterCmd(a),
		newVersionCmd(a),
	)
	return root
}

// annotationOffline marks commands that never talk to the API. They skip the
// session store, so a corrupt or foreign session file cannot break them.
const annotationOffline = "offline"

func offline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationOffline] == "true" {
			return true
		}
	}
	return false
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.envFile, a.flags.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Setup(cfg.GetEnv(), orFlag(a.flags.logLevel, cfg.GetLogLevel()), a.errOut)

	format := strings.ToLower(orFlag(a.flags.output, cfg.GetOutputFormat()))
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, formatText, formatJSON)
	}
	a.print = newPrinter(a.out, format, !a.flags.noColor && isTerminal(a.out))

	if offline(cmd) {
		return nil
	}
	return a.connect()
}

func (a *app) apiURL() string {
	return orFlag(a.flags.apiURL, a.cfg.GetAPIURL())
}

// connect opens the session store and builds the API client and services.
// It is a no-op once done.
func (a *app) connect() error {
	if a.api != nil {
		return nil
	}
	cfg := a.cfg
	key, err := cfg.GetSessionKey()
	if err != nil {
		return err
	}
	store, err := sessions.NewFileStore(cfg.GetSessionFile(), key)
	if err != nil {
		return err
	}

	a.api, err = apiclient.New(a.apiURL(), store,
		apiclient.WithTimeout(cfg.GetTimeout()),
		apiclient.WithLogger(a.logger),
		apiclient.WithRateLimit(cfg.GetRateLimit(), cfg.GetRateBurst()),
		apiclient.WithRefreshSkew(cfg.GetRefreshSkew()),
		apiclient.WithUserAgent(cfg.GetAppName()+"/"+version),
		apiclient.WithLoginRoute(routes.RouteLogin),
		apiclient.WithOnSessionExpired(a.sessionExpired),
	)
	if err != nil {
		return err
	}

	a.auth = auth.NewService(a.api, auth.WithLogger(a.logger))
	a.posts = posts.NewClient(a.api)
	a.taxonomy = taxonomy.NewCache(taxonomy.NewClient(a.api), cfg.GetTaxonomyTTL())
	a.files = files.NewClient(a.api)
	a.profile = profile.NewClient(a.api)
	return nil
}

func (a *app) sessionExpired(loginRoute string) {
	fmt.Fprintf(a.errOut, "%s Run \"blogctl login\" to sign in again (%s).\n", apiclient.MessageSessionExpired, loginRoute)
}

// requireLogin applies the protected route guard to commands that only make
// sense for a signed-in user.
func (a *app) requireLogin(route string) error {
	d := routes.Guard(route, a.api.Sessions().Get(), "")
	if d.Allow {
		return nil
	}
	return fmt.Errorf("%s requires a signed-in user (run \"blogctl login\"): %w", route, apiclient.ErrNotAuthenticated)
}

func (a *app) context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// guestOnly stops login and signup when a user is already signed in.
func (a *app) guestOnly(route string) error {
	sess := a.api.Sessions().Get()
	if d := routes.GuestOnly(route, sess, ""); !d.Allow {
		name := ""
		if sess.User != nil {
			name = sess.User.Email
		}
		return fmt.Errorf("already signed in as %s: run \"blogctl logout\" first", name)
	}
	return nil
}

func orFlag(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
