package cmdutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/eventhub/eventhub-client/internal/apiclient"
	"github.com/eventhub/eventhub-client/internal/auth"
	"github.com/eventhub/eventhub-client/internal/authbus"
	"github.com/eventhub/eventhub-client/internal/biometric"
	"github.com/eventhub/eventhub-client/internal/config"
	"github.com/eventhub/eventhub-client/internal/credential"
	credentialfile "github.com/eventhub/eventhub-client/internal/credential/file"
	credentialmemory "github.com/eventhub/eventhub-client/internal/credential/memory"
	credentialvalkey "github.com/eventhub/eventhub-client/internal/credential/valkey"
	"github.com/eventhub/eventhub-client/internal/session"
)

var ErrMissingPassphrase = errors.New("the encrypted-file store needs a passphrase")

// Client is the wired client stack of one process.
type Client struct {
	Config *config.Config
	Store  *credential.Store
	State  *session.State
	Bus    *authbus.Bus
	API    *apiclient.Client
	Gate   *biometric.Gate
	Flows  *auth.Flows

	closers []func()
}

// NewClient builds the stack described by cfg, which must be resolved.
// The session is not restored.
func NewClient(ctx context.Context, cfg *config.Config, nav auth.Navigator) (*Client, error) {
	c := &Client{
		Config: cfg,
		Bus:    authbus.New(),
	}

	repo, closeRepo, err := repositoryFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if closeRepo != nil {
		c.closers = append(c.closers, closeRepo)
	}
	c.Store = credential.NewStore(repo)

	c.State = session.New(c.Store, session.WithPolicy(session.Policy{
		CacheProfile:                   *cfg.Session.CacheProfile,
		RequireProfile:                 *cfg.Session.RequireProfile,
		ClearCredentialOnLogout:        *cfg.Session.ClearCredentialOnLogout,
		ClearCredentialOnForcedSignOut: *cfg.Session.ClearCredentialOnForcedSignOut,
	}))
	c.closers = append(c.closers, c.State.Watch(c.Bus))

	c.API, err = apiclient.New(cfg.API.BaseURL, c.State, c.Store, c.Bus,
		apiclient.WithTimeout(*cfg.API.Timeout),
		apiclient.WithApplication(cfg.Application),
		apiclient.WithUserAgent(userAgent(cfg.Application)),
	)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("creating the api client: %w", err)
	}

	c.Gate = biometric.NewGate(platformFromConfig(cfg.Biometric))

	c.Flows = auth.New(c.API, c.State, c.Store, c.Gate, nav,
		auth.WithAfterRegister(auth.AfterRegister(cfg.Session.AfterRegister)),
	)

	slogctx.Debug(ctx, "Client stack ready",
		"store", cfg.Store.Backend,
		"biometric", cfg.Biometric.Platform,
		"baseURL", cfg.API.BaseURL,
	)

	return c, nil
}

// Close releases the store connection and the bus subscription.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func repositoryFromConfig(cfg *config.Config) (credential.Repository, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return credentialmemory.NewRepository(), nil, nil
	case config.StoreFile:
		repo, err := credentialfile.NewRepository(cfg.Store.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening the credential directory: %w", err)
		}
		return repo, nil, nil
	case config.StoreEncryptedFile:
		passphrase, err := commoncfg.LoadValueFromSourceRef(cfg.Store.Passphrase)
		if err != nil {
			return nil, nil, fmt.Errorf("loading store passphrase: %w", err)
		}
		if len(passphrase) == 0 {
			return nil, nil, ErrMissingPassphrase
		}
		opts := []credentialfile.RepositoryOption{credentialfile.WithPassphrase(string(passphrase))}
		if sc := cfg.Store.Scrypt; sc.N > 0 {
			opts = append(opts, credentialfile.WithScryptParams(credentialfile.ScryptParams{N: sc.N, R: sc.R, P: sc.P}))
		}
		repo, err := credentialfile.NewRepository(cfg.Store.Dir, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("opening the credential directory: %w", err)
		}
		return repo, nil, nil
	case config.StoreValKey:
		return valkeyRepoFromConfig(cfg)
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreBackend, cfg.Store.Backend)
	}
}

func valkeyRepoFromConfig(cfg *config.Config) (credential.Repository, func(), error) {
	opts, err := config.MakeValKeyOptions(cfg.ValKey)
	if err != nil {
		return nil, nil, fmt.Errorf("making valkey options from config: %w", err)
	}

	valkeyClient, err := valkey.NewClient(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return credentialvalkey.NewRepository(valkeyClient, cfg.ValKey.Prefix, cfg.ValKey.ClientID), valkeyClient.Close, nil
}

func platformFromConfig(conf config.Biometric) biometric.Platform {
	if conf.Platform != config.BiometricCommand {
		return &biometric.StaticPlatform{}
	}

	types := make([]biometric.Type, 0, len(conf.Types))
	for _, t := range conf.Types {
		types = append(types, biometric.Type(t))
	}

	return &biometric.CommandPlatform{
		HardwareCommand: conf.HardwareCommand,
		EnrolledCommand: conf.EnrolledCommand,
		VerifyCommand:   conf.VerifyCommand,
		Types:           types,
	}
}

func userAgent(app commoncfg.Application) string {
	if app.Name == "" {
		return "eventhub-client"
	}

	return app.Name
}
