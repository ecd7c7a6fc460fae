// Package commands defines the payees CLI.
//
// Commands
//
//   - serve    Run the payee API and the manager routes
//   - list     Print every payee, optionally sorted by a column field
//   - search   Print payees matching a query
//   - add      Create a payee
//   - migrate  Apply database migrations
//
// The root command loads configuration before any subcommand runs. list,
// search and add go through the same data-access collaborator the manager
// uses, so they read from --upstream when it is set and from the configured
// store otherwise.
package commands
