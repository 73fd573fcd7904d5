// Package app provides application initialization and lifecycle management
// for the order metrics service. It wires configuration, logging,
// OpenTelemetry, the upload store, the event hub and the HTTP services into
// a single Application.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, an optional YAML file and environment
//  2. Initialize logging and OpenTelemetry providers
//  3. Create the in-memory upload store and the WebSocket hub
//  4. Initialize services with their dependencies
//  5. Set up chi middleware and routes
//  6. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run stops on SIGINT, SIGTERM or cancellation of its context. In-flight
// requests are drained, WebSocket clients are disconnected, the upload
// store is cleared and telemetry providers are flushed.
//
// The package never calls os.Exit; errors are returned to the caller.
package app
