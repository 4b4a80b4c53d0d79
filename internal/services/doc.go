// Package services defines the [Gateway] interface for remote task accounts and implements it for the Habitica v3 API.
//
// # Gateway Interface
//
// All remote operations the rest of the application needs are expressed on
// one abstraction: verifying an account by fetching its profile name,
// exporting the full task set, and creating a single task. Callers depend
// on [Gateway]; tests substitute fakes.
//
// # Habitica Implementation
//
// [HabiticaService] authenticates every request with static x-api-user and
// x-api-key headers plus an x-client identifier, the scheme Habitica
// requires of third-party tools. Responses arrive wrapped in a
// success/data/message envelope that the service unwraps before decoding.
//
// [HabiticaService.FetchAllTasks] issues the profile request and the three
// per-type task collection requests in parallel, then concatenates the
// collections in habits, dailies, todos order regardless of arrival order.
//
// An optional [rate.Limiter] spaces outbound requests to stay within
// Habitica's published client limits.
package services
