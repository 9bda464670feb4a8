package billing

import (
	"context"
	"errors"
	"time"

	"github.com/fintly/billingkit/pkg/catalog"
)

// StoreClient is the surface of the native in-app-purchase SDK the iOS shell
// bridges into the kit. Mirrors the vendor SDK: offerings, purchase sheet,
// restore, and customer info.
type StoreClient interface {
	LogIn(ctx context.Context, appUserID string) error
	LogOut(ctx context.Context) error
	Offerings(ctx context.Context) (*Offerings, error)
	Purchase(ctx context.Context, pkg Package) (*CustomerInfo, error)
	RestorePurchases(ctx context.Context) (*CustomerInfo, error)
	CustomerInfo(ctx context.Context) (*CustomerInfo, error)
}

// Offerings is the store's catalog of purchasable packages.
type Offerings struct {
	Current []Package
}

// Package is one purchasable entry in an offering.
type Package struct {
	Identifier string // Offering package identifier, e.g. "premium_monthly"
	Product    Product
}

// Product is the underlying store product attached to a package.
type Product struct {
	Identifier  string  // Store product identifier
	PriceString string  // Localized display price
	Price       float64 // Decimal price in the storefront currency
}

// CustomerInfo is the store's view of what the user currently owns.
type CustomerInfo struct {
	AppUserID           string
	ActiveSubscriptions []string // Active product identifiers
	LatestExpiration    *time.Time
}

// ActivePlan returns the highest-resolution (plan, period) among the active
// subscriptions, or ok=false when none maps onto the catalog.
func (c *CustomerInfo) ActivePlan() (catalog.PlanID, catalog.BillingPeriod, bool) {
	if c == nil {
		return "", "", false
	}
	for _, productID := range c.ActiveSubscriptions {
		if plan, period, ok := ParsePackageIdentifier(productID); ok {
			return plan, period, true
		}
	}
	return "", "", false
}

// PurchaseCancelledError signals that the user dismissed the native purchase
// sheet. The sheet runs in an OS-owned process, so cancellation surfaces as
// an SDK error; the provider converts it into OutcomeDeclined.
type PurchaseCancelledError struct {
	Err error
}

func (e *PurchaseCancelledError) Error() string {
	if e.Err == nil {
		return "purchase cancelled by user"
	}
	return "purchase cancelled by user: " + e.Err.Error()
}

func (e *PurchaseCancelledError) Unwrap() error { return e.Err }

// IsUserCancelled reports whether err represents a user-dismissed sheet.
func IsUserCancelled(err error) bool {
	var cancelled *PurchaseCancelledError
	return errors.As(err, &cancelled)
}

// AppStoreProvider implements Provider for the iOS native purchase path.
type AppStoreProvider struct {
	store StoreClient
}

// NewAppStoreProvider creates the native in-app-purchase billing provider.
// Panics if store is nil to fail fast during composition.
func NewAppStoreProvider(store StoreClient) *AppStoreProvider {
	if store == nil {
		panic("billing: StoreClient is required")
	}
	return &AppStoreProvider{store: store}
}

func (p *AppStoreProvider) Platform() Platform {
	return PlatformNativeIAP
}

// Purchase resolves the store package for (plan, period) and presents the
// native purchase sheet. A dismissed sheet yields OutcomeDeclined with a
// nil error; it must never be surfaced as a failure alert.
func (p *AppStoreProvider) Purchase(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*PurchaseResult, error) {
	if plan == catalog.PlanFree {
		return nil, ErrFreePlanNotPurchasable
	}
	if !period.Valid() {
		return nil, ErrInvalidBillingPeriod
	}

	pkg, err := p.resolvePackage(ctx, plan, period)
	if err != nil {
		return nil, err
	}

	info, err := p.store.Purchase(ctx, pkg)
	if err != nil {
		if IsUserCancelled(err) {
			return &PurchaseResult{Outcome: OutcomeDeclined}, nil
		}
		return nil, errors.Join(ErrProviderFailure, err)
	}

	return &PurchaseResult{
		Outcome:      OutcomeSucceeded,
		CustomerInfo: info,
	}, nil
}

// Restore replays past purchases through the store. Safe to call repeatedly;
// the store deduplicates and a no-op restore returns current customer info.
func (p *AppStoreProvider) Restore(ctx context.Context) (*CustomerInfo, error) {
	info, err := p.store.RestorePurchases(ctx)
	if err != nil {
		return nil, errors.Join(ErrProviderFailure, err)
	}
	return info, nil
}

// resolvePackage finds the store package for a plan and period. The package
// identifier convention is tried first; the underlying product identifier is
// the fallback because the offering's package ids are not guaranteed to
// match the convention exactly.
func (p *AppStoreProvider) resolvePackage(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (Package, error) {
	offerings, err := p.store.Offerings(ctx)
	if err != nil {
		return Package{}, errors.Join(ErrProviderFailure, err)
	}
	if offerings == nil || len(offerings.Current) == 0 {
		return Package{}, ErrNoCurrentOffering
	}

	ident := PackageIdentifier(plan, period)

	for _, pkg := range offerings.Current {
		if pkg.Identifier == ident {
			return pkg, nil
		}
	}
	for _, pkg := range offerings.Current {
		if pkg.Product.Identifier == ident {
			return pkg, nil
		}
	}

	return Package{}, ErrPackageNotFound
}
