package services

import (
	"context"

	"habitvault/internal/models"
)

// UserExport bundles the result of a full task fetch: every task the account
// owns plus the profile name it was fetched under.
type UserExport struct {
	Tasks    []models.Task
	Username string
}

// Gateway translates core operations into authenticated remote calls.
//
// Implementations authenticate every request with the supplied credential
// pair; nothing is cached between calls.
type Gateway interface {
	// FetchProfileName returns the display name associated with the account.
	// A rejection by the remote service wraps [shared.ErrAuth] and carries
	// the service-supplied message when one is given.
	FetchProfileName(ctx context.Context, creds models.Credentials) (string, error)

	// FetchAllTasks issues four independent authenticated requests in
	// parallel (habit, daily, and todo collections plus profile identity).
	// All four must succeed; the first failure wraps [shared.ErrFetch]
	// naming the sub-request and no partial result is returned. On success
	// the collections are concatenated habits first, then dailys, then
	// todos, each preserving its original relative order.
	FetchAllTasks(ctx context.Context, creds models.Credentials) (*UserExport, error)

	// CreateTask submits one task for creation on the target account, with
	// service-managed identifiers and timestamps stripped so the target
	// assigns its own. A rejection wraps [shared.ErrCreateTask] and carries
	// the task's text. The identifier the remote service assigns is
	// returned but not tracked further.
	CreateTask(ctx context.Context, creds models.Credentials, task models.Task) (*models.Task, error)
}
