package domain

// ResourceRef is a resolved resource location. Produced only by catalog
// lookups and immutable once resolved.
type ResourceRef struct {
	ResourceGroup string
	Name          string
	Pool          string // batch accounts only
}

// ScalePair correlates the pool being drained with the pool taking over.
type ScalePair struct {
	Down ResourceRef
	Up   ResourceRef
}

// SyncPair correlates a secret sync source with its destination.
type SyncPair struct {
	From ResourceRef
	To   ResourceRef
}

// TriggerPair correlates the factory whose triggers stop with the factory
// whose triggers start.
type TriggerPair struct {
	Stop  ResourceRef
	Start ResourceRef
}

// Category names one executable action kind within a plan.
type Category string

const (
	CategoryStorageGRS        Category = "storageGRS"
	CategoryLinkedServiceFQDN Category = "ADFLinkedServiceFQDN"
	CategoryPrivateEndpoint   Category = "ADFPrivateEndpoint"
	CategoryTriggerStop       Category = "ADFTriggerStop"
	CategoryScaleDown         Category = "batchAccountScaleDown"
	CategoryKVSync            Category = "kvSync"
	CategoryScaleUp           Category = "batchAccountScaleUp"
	CategoryTriggerStart      Category = "ADFTriggerStart"
)

// Categories returns the runbook-orderable categories in the default runbook
// order: replicate storage, repoint Snowflake, swap private endpoints, quiesce
// triggers, drain compute, sync secrets, bring up compute, resume triggers.
func Categories() []Category {
	return []Category{
		CategoryStorageGRS,
		CategoryLinkedServiceFQDN,
		CategoryPrivateEndpoint,
		CategoryTriggerStop,
		CategoryScaleDown,
		CategoryKVSync,
		CategoryScaleUp,
		CategoryTriggerStart,
	}
}

// Plan is the resolved, directional set of remediation actions for one run.
// A nil category slice means the category was not requested; present slices
// are ordered by the canonical domain order and correlated by index. The pair
// types make that correlation a structural invariant rather than a convention
// between separately keyed sequences.
type Plan struct {
	Selection Selection

	StorageGRS        []ResourceRef
	LinkedServiceFQDN []ResourceRef
	PoolScale         []ScalePair
	SecretSync        []SyncPair
	Triggers          []TriggerPair
}

// EntryDomains returns the domain label correlated with index i of every
// category sequence in the plan.
func (p Plan) EntryDomains() []string {
	ds := p.Selection.ScopeDomains()
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, string(d))
	}
	return out
}

// Has reports whether the plan carries the given category. The paired scale,
// sync and trigger categories are present or absent as a bundle.
func (p Plan) Has(c Category) bool {
	switch c {
	case CategoryStorageGRS:
		return len(p.StorageGRS) > 0
	// The private-endpoint swap operates on the same factories as the
	// Snowflake rewrite, so both categories ride on one entry set.
	case CategoryLinkedServiceFQDN, CategoryPrivateEndpoint:
		return len(p.LinkedServiceFQDN) > 0
	case CategoryScaleDown, CategoryScaleUp:
		return len(p.PoolScale) > 0
	case CategoryKVSync:
		return len(p.SecretSync) > 0
	case CategoryTriggerStop, CategoryTriggerStart:
		return len(p.Triggers) > 0
	default:
		return false
	}
}
