// Package app wires the DataCleanr service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, .env, environment)
//	2. Initialize logging and OpenTelemetry
//	3. Open the session store and load the industry rule set
//	4. Create the exporter, event hub and services
//	5. Build the chi router and the HTTP server
//
// # Usage
//
//	a, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains HTTP requests, stops the
// session sweeper and the event hub, closes the store and flushes
// telemetry. Initialization errors are returned to the caller; the package
// never calls os.Exit.
package app
