// Package environment names the deployment environment and carries it
// through context.Context so it can be attached to log records.
//
//	ctx = environment.WithContext(ctx, environment.Production)
//	if environment.IsProduction(ctx) {
//	    // ...
//	}
//
// Parse normalizes the short aliases "dev", "stage" and "prod".
package environment
