package entitlement

import (
	"github.com/fintly/billingkit/pkg/catalog"
)

// Usage carries the current per-resource usage counts for a user.
// Counts for resources absent from the map default to zero.
type Usage map[catalog.Resource]int64

// Quota is the derived allowance for a single countable resource.
type Quota struct {
	Resource catalog.Resource `json:"-"`
	Max      int64            `json:"max"`  // -1 means unlimited
	Used     int64            `json:"used"` // Current usage count
}

// Unlimited reports whether the quota has no upper bound.
func (q Quota) Unlimited() bool {
	return q.Max == catalog.Unlimited
}

// Remaining returns how many more items can be created.
// Unlimited quotas return catalog.Unlimited (-1); limited quotas
// never return a negative number even when usage exceeds the limit.
func (q Quota) Remaining() int64 {
	if q.Unlimited() {
		return catalog.Unlimited
	}
	return max(0, q.Max-q.Used)
}

// CanCreate reports whether one more item may be created.
// The unlimited sentinel is checked before any numeric comparison.
func (q Quota) CanCreate() bool {
	if q.Unlimited() {
		return true
	}
	return q.Used < q.Max
}

// Entitlements is a read-only projection of what a plan allows right now.
// It is derived, never persisted, and recomputed after every subscription
// change.
type Entitlements struct {
	Plan   catalog.PlanID             `json:"plan"`
	Quotas map[catalog.Resource]Quota `json:"quotas"`
	Flags  map[catalog.Feature]bool   `json:"flags"`
}

// Quota returns the derived quota for a resource. Resources the plan does
// not define resolve to a zero quota, which denies creation.
func (e Entitlements) Quota(res catalog.Resource) Quota {
	return e.Quotas[res]
}

// Has reports whether a capability flag is enabled.
func (e Entitlements) Has(f catalog.Feature) bool {
	return e.Flags[f]
}

// Resolve projects a plan and the current usage into an entitlement set.
// Pure and deterministic: no I/O, no clock reads.
//
// Two capabilities are hardcoded to the Pro tier regardless of what the
// plan's feature table says: PDF export and text-to-speech. The override
// is applied after the table is read, so it wins either way.
func Resolve(plan catalog.Plan, usage Usage) Entitlements {
	ent := Entitlements{
		Plan:   plan.ID,
		Quotas: make(map[catalog.Resource]Quota, len(plan.Limits)),
		Flags:  make(map[catalog.Feature]bool, len(catalog.AllFeatures)),
	}

	for res, limit := range plan.Limits {
		ent.Quotas[res] = Quota{
			Resource: res,
			Max:      limit,
			Used:     usage[res],
		}
	}

	for _, f := range catalog.AllFeatures {
		ent.Flags[f] = plan.HasFeature(f)
	}

	isPro := plan.ID == catalog.PlanPro
	ent.Flags[catalog.FeaturePDFExport] = isPro
	ent.Flags[catalog.FeatureTextToSpeech] = isPro

	return ent
}

// CanCreate is a convenience predicate answering "may one more res be
// created given count existing items" against a plan's limit table.
func CanCreate(plan catalog.Plan, res catalog.Resource, count int64) bool {
	limit, err := plan.Limit(res)
	if err != nil {
		return false
	}
	if limit == catalog.Unlimited {
		return true
	}
	return count < limit
}
