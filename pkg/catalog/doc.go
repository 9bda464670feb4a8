// Package catalog provides the immutable plan catalog for the billing kit.
//
// The catalog is loaded once per session from a Source (in-memory, YAML file,
// or the backend plan list via the API client) and exposes plan, limit, and
// price lookups to every other component. Limit numbers must never be
// hardcoded outside this package.
//
// The price of a plan is modeled as a tagged union (see Price) because the
// upstream API historically served either a bare amount or a per-period
// object. The shape is resolved exactly once at this boundary.
//
// Usage:
//
//	cat, err := catalog.New(ctx, catalog.NewInMemSource(catalog.DefaultPlans()...))
//	if err != nil {
//		log.Fatal(err)
//	}
//	plan, err := cat.Plan(catalog.PlanPremium)
package catalog
