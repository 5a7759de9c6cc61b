package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
	"github.com/AtRiskMedia/storefront-go/internal/sync/session"
)

type app struct {
	cfg    Config
	opts   Options
	client *remote.HTTP
	sess   *session.Session
	logger *logging.ChanneledLogger
	out    io.Writer
}

func newApp(ctx context.Context, opts Options) (*app, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = strings.TrimRight(opts.Endpoint, "/")
		if opts.BaseURL == "" {
			cfg.PublicBaseURL = cfg.Endpoint
		}
	}
	if opts.BaseURL != "" {
		cfg.PublicBaseURL = opts.BaseURL
	}

	logCfg := logging.DefaultLoggerConfig()
	logCfg.JSONFormat = false
	logCfg.EnableStream = false
	logCfg.Output = opts.Stderr
	logCfg.DefaultLevel = slog.LevelWarn
	if opts.Verbose {
		logCfg.DefaultLevel = slog.LevelDebug
	}
	logger, err := logging.NewChanneledLogger(logCfg)
	if err != nil {
		return nil, err
	}

	client, err := remote.NewHTTP(cfg.Endpoint,
		remote.WithSession(loadSession(cfg.TokenFile)),
		remote.WithLogger(logger.Realtime()),
	)
	if err != nil {
		return nil, err
	}
	client.OnAuthChange(func(evt remote.AuthEvent) {
		var err error
		if evt.Kind == remote.SignedIn {
			err = saveSession(cfg.TokenFile, evt.Session)
		} else {
			err = removeSession(cfg.TokenFile)
		}
		if err != nil {
			logger.Auth().Warn("Could not persist session", "file", cfg.TokenFile, "error", err.Error())
		}
	})

	clip := opts.Clipboard
	if clip == nil {
		clip = systemClipboard{}
	}
	sess := session.New(client,
		session.WithBaseURL(cfg.PublicBaseURL),
		session.WithLogger(logger.Sync()),
		session.WithNotifier(notify.Writer(opts.Stderr)),
		session.WithClipboard(clip),
	)
	sess.Auth.Init(ctx)

	return &app{cfg: cfg, opts: opts, client: client, sess: sess, logger: logger, out: opts.Stdout}, nil
}

func (a *app) close() {
	a.sess.Close()
	_ = a.logger.Close()
}

func (a *app) requireAdmin() error {
	if !a.sess.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}

// emit prints v as indented JSON under --json, otherwise runs text.
func (a *app) emit(v any, text func(w io.Writer)) error {
	if a.opts.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.out)
	return nil
}

// passwordOrEnv falls back to STOREFRONT_PASSWORD so the secret can stay
// out of shell history.
func passwordOrEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("STOREFRONT_PASSWORD")
}
