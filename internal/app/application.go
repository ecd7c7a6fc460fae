package app

import (
	"context"
	"fmt"

	"github.com/R3E-Network/payee_manager/internal/app/dao"
	"github.com/R3E-Network/payee_manager/internal/app/manager"
	"github.com/R3E-Network/payee_manager/internal/app/services/payees"
	"github.com/R3E-Network/payee_manager/internal/app/storage"
	"github.com/R3E-Network/payee_manager/internal/app/storage/memory"
	"github.com/R3E-Network/payee_manager/internal/app/system"
	"github.com/R3E-Network/payee_manager/internal/config"
	"github.com/R3E-Network/payee_manager/internal/httputil"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Payees storage.PayeeStore
}

// Application ties the payee service, the manager's data-access collaborator
// and the session registry together and manages their lifecycle.
type Application struct {
	system *system.Manager
	log    *logger.Logger

	Payees   *payees.Service
	Data     dao.DataAccess
	Sessions *manager.Registry
}

// New builds a fully initialised application. When cfg.Upstream.BaseURL is
// set the manager reads from that remote payee API; otherwise it uses the
// in-process service.
func New(cfg *config.Config, stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if stores.Payees == nil {
		stores.Payees = memory.New()
	}

	payeeService := payees.New(stores.Payees, log.Named("payees"))

	var data dao.DataAccess
	if cfg.Upstream.BaseURL != "" {
		data = dao.NewClient(httputil.ServiceClientConfig{
			BaseURL:    cfg.Upstream.BaseURL,
			Token:      cfg.Upstream.Token,
			Timeout:    cfg.Upstream.Timeout,
			MaxRetries: cfg.Upstream.MaxRetries,
		}, log.Named("payee-dao"))
		log.WithField("upstream", cfg.Upstream.BaseURL).Info("manager reads payees from remote API")
	} else {
		data = dao.NewLocal(payeeService)
	}

	sessions := manager.NewRegistry(data, manager.RegistryOptions{
		TTL:      cfg.Manager.SessionTTL,
		Schedule: cfg.Manager.JanitorSchedule,
	}, log.Named("manager"))

	sys := system.NewManager()
	for _, svc := range []system.Service{
		system.NoopService{ServiceName: "payees"},
		sessions,
	} {
		if err := sys.Register(svc); err != nil {
			return nil, fmt.Errorf("register %s service: %w", svc.Name(), err)
		}
	}

	return &Application{
		system:   sys,
		log:      log,
		Payees:   payeeService,
		Data:     data,
		Sessions: sessions,
	}, nil
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.system.Start(ctx)
}

// Stop stops all services in reverse order.
func (a *Application) Stop(ctx context.Context) error {
	return a.system.Stop(ctx)
}
