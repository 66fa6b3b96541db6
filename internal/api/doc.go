// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the user, item, recovery and task services, translating service
// errors into status codes and safe messages.
package api
