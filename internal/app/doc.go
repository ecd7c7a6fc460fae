// Package app composes the payee manager.
//
//	internal/app/
//	├── application.go   # wiring and lifecycle
//	├── domain/payee/    # payee model and search criteria
//	├── storage/         # PayeeStore with memory, postgres and redis-cache implementations
//	├── services/payees/ # payee validation and persistence rules
//	├── dao/             # the manager's data-access collaborator (remote or local)
//	├── manager/         # per-session reducer, store, loader and registry
//	│   └── views/       # search, browse and add views bound to a session store
//	├── httpapi/         # payee API and manager routes
//	├── metrics/         # Prometheus collectors
//	└── system/          # service lifecycle
//
// Dependencies point downwards: httpapi uses app, app wires services, dao and
// manager, and services depend only on storage interfaces.
package app
