// Package server serves the mobile app version endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] added first is outermost. [CORS] and [Logging] are the two middlewares the version service installs.
//
// [BasicRouter] matches paths with [http.ServeMux] and then methods itself, so several methods can share a
// path and anything else gets 405 with an Allow header.
//
// # Version Endpoints
//
// GET /getAppVersion returns the latest release descriptor read from the [version] config section.
// Preflight requests get 204 and any other method gets 405 with a JSON error body.
//
// POST /checkAppVersion follows the callable envelope: the client sends {"data": {"currentVersion", "currentBuild"}}
// and receives {"result": {...}} with hasUpdate set when the latest build number is greater than currentBuild.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// Handlers registered this way check the request method themselves.
package server
