// Package catalog resolves (kind, domain, tier) triples to concrete Azure
// resource identifiers. The table is fixed at build time; every domain carries
// exactly one identifier per kind and tier, and identifiers never collide
// across the catalog. Violations are construction defects, so loading panics
// rather than surfacing a recoverable error.
package catalog

import (
	"fmt"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// Kind scopes an identifier namespace within the catalog.
type Kind string

const (
	KindBatch         Kind = "batch"
	KindPool          Kind = "pool"
	KindStorage       Kind = "storage"
	KindVault         Kind = "kv"
	KindFactory       Kind = "adf"
	KindResourceGroup Kind = "rg"
)

// Kinds returns every resource kind the catalog covers.
func Kinds() []Kind {
	return []Kind{KindBatch, KindPool, KindStorage, KindVault, KindFactory, KindResourceGroup}
}

// row declares the qa, prod and DR identifiers for one kind of one domain.
type row struct {
	kind         Kind
	dom          domain.Domain
	qa, prod, dr string
}

var rows = []row{
	{KindBatch, domain.Sales, "qaBatchSales", "prodBatchSales", "DRBatchSales"},
	{KindBatch, domain.Finance, "qaBatchFinance", "prodBatchFinance", "DRBatchFinance"},
	{KindBatch, domain.Customer, "qaBatchCustomer", "prodBatchCustomer", "DRBatchCustomer"},
	{KindBatch, domain.Accounting, "qaBatchAccounting", "prodBatchAccounting", "DRBatchAccounting"},
	{KindBatch, domain.Retail, "qaBatchRetail", "prodBatchRetail", "DRBatchRetail"},
	{KindBatch, domain.Nonedw, "qaBatchNonedw", "prodBatchNonedw", "DRBatchNonedw"},
	{KindBatch, domain.Associates, "qaBatchAssociates", "prodBatchAssociates", "DRBatchAssociates"},

	{KindPool, domain.Sales, "qapoolBatchSales", "prodpoolBatchSales", "DRpoolBatchSales"},
	{KindPool, domain.Finance, "qapoolBatchFinance", "prodpoolBatchFinance", "DRpoolBatchFinance"},
	{KindPool, domain.Customer, "qapoolBatchCustomer", "prodpoolBatchCustomer", "DRpoolBatchCustomer"},
	{KindPool, domain.Accounting, "qapoolBatchAccounting", "prodpoolBatchAccounting", "DRpoolBatchAccounting"},
	{KindPool, domain.Retail, "qapoolBatchRetail", "prodpoolBatchRetail", "DRpoolBatchRetail"},
	{KindPool, domain.Nonedw, "qapoolBatchNonedw", "prodpoolBatchNonedw", "DRpoolBatchNonedw"},
	{KindPool, domain.Associates, "qapoolBatchAssociates", "prodpoolBatchAssociates", "DRpoolBatchAssociates"},

	{KindStorage, domain.Sales, "qaStorageSales", "prodStorageSales", "DRStorageSales"},
	{KindStorage, domain.Finance, "qaStorageFinance", "prodStorageFinance", "DRStorageFinance"},
	{KindStorage, domain.Customer, "qaStorageCustomer", "prodStorageCustomer", "DRStorageCustomer"},
	{KindStorage, domain.Accounting, "qaStorageAccounting", "prodStorageAccounting", "DRStorageAccounting"},
	{KindStorage, domain.Retail, "qaStorageRetail", "prodStorageRetail", "DRStorageRetail"},
	{KindStorage, domain.Nonedw, "qaStorageNonedw", "prodStorageNonedw", "DRStorageNonedw"},
	{KindStorage, domain.Associates, "qaStorageAssociates", "prodStorageAssociates", "DRStorageAssociates"},

	{KindVault, domain.Sales, "qaKvSales", "prodKvSales", "DRKvSales"},
	{KindVault, domain.Finance, "qaKvFinance", "prodKvFinance", "DRKvFinance"},
	{KindVault, domain.Customer, "qaKvCustomer", "prodKvCustomer", "DRKvCustomer"},
	{KindVault, domain.Accounting, "qaKvAccounting", "prodKvAccounting", "DRKvAccounting"},
	{KindVault, domain.Retail, "qaKvRetail", "prodKvRetail", "DRKvRetail"},
	{KindVault, domain.Nonedw, "qaKvNonedw", "prodKvNonedw", "DRKvNonedw"},
	{KindVault, domain.Associates, "qaKvAssociates", "prodKvAssociates", "DRKvAssociates"},

	{KindFactory, domain.Sales, "qaSalesADF", "prodSalesADF", "DRSalesADF"},
	{KindFactory, domain.Finance, "qaFinanceADF", "prodFinanceADF", "DRFinanceADF"},
	{KindFactory, domain.Customer, "qaCustomerADF", "prodCustomerADF", "DRCustomerADF"},
	{KindFactory, domain.Accounting, "qaAccountingADF", "prodAccountingADF", "DRAccountingADF"},
	{KindFactory, domain.Retail, "qaRetailADF", "prodRetailADF", "DRRetailADF"},
	{KindFactory, domain.Nonedw, "qaNonedwADF", "prodNonedwADF", "DRNonedwADF"},
	{KindFactory, domain.Associates, "qaAssociatesADF", "prodAssociatesADF", "DRAssociatesADF"},

	{KindResourceGroup, domain.Sales, "qaSalesRG", "prodSalesRG", "DRSalesRG"},
	{KindResourceGroup, domain.Finance, "qaFinanceRG", "prodFinanceRG", "DRFinanceRG"},
	{KindResourceGroup, domain.Customer, "qaCustomerRG", "prodCustomerRG", "DRCustomerRG"},
	{KindResourceGroup, domain.Accounting, "qaAccountingRG", "prodAccountingRG", "DRAccountingRG"},
	{KindResourceGroup, domain.Retail, "qaRetailRG", "prodRetailRG", "DRRetailRG"},
	{KindResourceGroup, domain.Nonedw, "qaNonedwRG", "prodNonedwRG", "DRNonedwRG"},
	{KindResourceGroup, domain.Associates, "qaAssociatesRG", "prodAssociatesRG", "DRAssociatesRG"},
}

type key struct {
	kind Kind
	dom  domain.Domain
	tier domain.Tier
}

var table map[key]string

func init() {
	table = make(map[key]string, len(rows)*3)
	seen := make(map[string]key, len(rows)*3)
	for _, r := range rows {
		for tier, id := range map[domain.Tier]string{
			domain.TierQA:   r.qa,
			domain.TierProd: r.prod,
			domain.TierDR:   r.dr,
		} {
			if id == "" {
				panic(fmt.Sprintf("catalog: empty identifier for %s/%s/%s", r.kind, r.dom, tier))
			}
			k := key{kind: r.kind, dom: r.dom, tier: tier}
			if _, dup := table[k]; dup {
				panic(fmt.Sprintf("catalog: duplicate entry for %s/%s/%s", r.kind, r.dom, tier))
			}
			if prev, dup := seen[id]; dup {
				panic(fmt.Sprintf("catalog: identifier %q declared for both %v and %v", id, prev, k))
			}
			table[k] = id
			seen[id] = k
		}
	}
}

// Lookup resolves one identifier. Pure function over the static table.
func Lookup(kind Kind, d domain.Domain, tier domain.Tier) (string, error) {
	known := false
	for _, k := range Kinds() {
		if k == kind {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	id, ok := table[key{kind: kind, dom: d, tier: tier}]
	if !ok {
		return "", fmt.Errorf("%w: %q (kind %s, tier %s)", domain.ErrUnknownDomain, d, kind, tier)
	}
	return id, nil
}

// ResolveRef resolves a resource together with its resource group. Batch
// references additionally carry the pool identifier.
func ResolveRef(kind Kind, d domain.Domain, tier domain.Tier) (domain.ResourceRef, error) {
	rg, err := Lookup(KindResourceGroup, d, tier)
	if err != nil {
		return domain.ResourceRef{}, err
	}
	name, err := Lookup(kind, d, tier)
	if err != nil {
		return domain.ResourceRef{}, err
	}
	ref := domain.ResourceRef{ResourceGroup: rg, Name: name}
	if kind == KindBatch {
		pool, err := Lookup(KindPool, d, tier)
		if err != nil {
			return domain.ResourceRef{}, err
		}
		ref.Pool = pool
	}
	return ref, nil
}
