package plan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// The interchange document keeps every category under its historical key and
// qualifies every record with its resource group. Single-domain plans emit one
// record per category; All-domain plans emit ordered lists. Correlated keys
// (scale up/down, sync from/to, trigger stop/start) share positional indexes.

type document struct {
	Config       configPayload   `json:"config"`
	StorageGRS   json.RawMessage `json:"storageGRS,omitempty"`
	FQDN         json.RawMessage `json:"ADFLinkedServiceFQDN,omitempty"`
	ScaleUp      json.RawMessage `json:"batchAccountScaleUp,omitempty"`
	ScaleDown    json.RawMessage `json:"batchAccountScaleDown,omitempty"`
	KVSyncFrom   json.RawMessage `json:"kvSyncFrom,omitempty"`
	KVSyncTo     json.RawMessage `json:"kvSyncTo,omitempty"`
	TriggerStop  json.RawMessage `json:"ADFTriggerStop,omitempty"`
	TriggerStart json.RawMessage `json:"ADFTriggerStart,omitempty"`
}

type configPayload struct {
	Mode        string `json:"mode"`
	Storage     bool   `json:"storage"`
	Snowflake   bool   `json:"snowflake"`
	Azure       bool   `json:"azure"`
	Domain      string `json:"domain"`
	Environment string `json:"environment"`
}

type storageRecord struct {
	ResourceGroup string `json:"resourceGroup"`
	Storage       string `json:"storage"`
}

type factoryRecord struct {
	ResourceGroup string `json:"resourceGroup"`
	ADF           string `json:"adf"`
}

type batchRecord struct {
	ResourceGroup string `json:"resourceGroup"`
	Batch         string `json:"batch"`
	Pool          string `json:"pool"`
}

type vaultRecord struct {
	ResourceGroup string `json:"resourceGroup"`
	KV            string `json:"kv"`
}

// Marshal renders a plan as the interchange document.
func Marshal(p domain.Plan) ([]byte, error) {
	single := p.Selection.Scope != domain.ScopeAll
	doc := document{Config: configPayload{
		Mode:        string(p.Selection.Mode),
		Storage:     p.Selection.Storage,
		Snowflake:   p.Selection.Snowflake,
		Azure:       p.Selection.Azure,
		Domain:      p.Selection.Scope,
		Environment: string(p.Selection.Environment),
	}}

	var err error
	if len(p.StorageGRS) > 0 {
		recs := make([]storageRecord, 0, len(p.StorageGRS))
		for _, ref := range p.StorageGRS {
			recs = append(recs, storageRecord{ResourceGroup: ref.ResourceGroup, Storage: ref.Name})
		}
		if doc.StorageGRS, err = encodeRecords(recs, single); err != nil {
			return nil, err
		}
	}
	if len(p.LinkedServiceFQDN) > 0 {
		recs := make([]factoryRecord, 0, len(p.LinkedServiceFQDN))
		for _, ref := range p.LinkedServiceFQDN {
			recs = append(recs, factoryRecord{ResourceGroup: ref.ResourceGroup, ADF: ref.Name})
		}
		if doc.FQDN, err = encodeRecords(recs, single); err != nil {
			return nil, err
		}
	}
	if len(p.PoolScale) > 0 {
		ups := make([]batchRecord, 0, len(p.PoolScale))
		downs := make([]batchRecord, 0, len(p.PoolScale))
		for _, pair := range p.PoolScale {
			ups = append(ups, batchRecord{ResourceGroup: pair.Up.ResourceGroup, Batch: pair.Up.Name, Pool: pair.Up.Pool})
			downs = append(downs, batchRecord{ResourceGroup: pair.Down.ResourceGroup, Batch: pair.Down.Name, Pool: pair.Down.Pool})
		}
		if doc.ScaleUp, err = encodeRecords(ups, single); err != nil {
			return nil, err
		}
		if doc.ScaleDown, err = encodeRecords(downs, single); err != nil {
			return nil, err
		}
	}
	if len(p.SecretSync) > 0 {
		froms := make([]vaultRecord, 0, len(p.SecretSync))
		tos := make([]vaultRecord, 0, len(p.SecretSync))
		for _, pair := range p.SecretSync {
			froms = append(froms, vaultRecord{ResourceGroup: pair.From.ResourceGroup, KV: pair.From.Name})
			tos = append(tos, vaultRecord{ResourceGroup: pair.To.ResourceGroup, KV: pair.To.Name})
		}
		if doc.KVSyncFrom, err = encodeRecords(froms, single); err != nil {
			return nil, err
		}
		if doc.KVSyncTo, err = encodeRecords(tos, single); err != nil {
			return nil, err
		}
	}
	if len(p.Triggers) > 0 {
		stops := make([]factoryRecord, 0, len(p.Triggers))
		starts := make([]factoryRecord, 0, len(p.Triggers))
		for _, pair := range p.Triggers {
			stops = append(stops, factoryRecord{ResourceGroup: pair.Stop.ResourceGroup, ADF: pair.Stop.Name})
			starts = append(starts, factoryRecord{ResourceGroup: pair.Start.ResourceGroup, ADF: pair.Start.Name})
		}
		if doc.TriggerStop, err = encodeRecords(stops, single); err != nil {
			return nil, err
		}
		if doc.TriggerStart, err = encodeRecords(starts, single); err != nil {
			return nil, err
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses an interchange document back into a plan. Both record
// shapes are accepted per category: a single object or an ordered list.
func Unmarshal(raw []byte) (domain.Plan, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	mode, err := domain.ParseMode(doc.Config.Mode)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	env, err := domain.ParseEnvironment(doc.Config.Environment)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	sel := domain.Selection{
		Mode:        mode,
		Storage:     doc.Config.Storage,
		Snowflake:   doc.Config.Snowflake,
		Azure:       doc.Config.Azure,
		Scope:       doc.Config.Domain,
		Environment: env,
	}
	if err := sel.Validate(); err != nil {
		return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	p := domain.Plan{Selection: sel}

	storage, err := decodeRecords[storageRecord](doc.StorageGRS)
	if err != nil {
		return domain.Plan{}, err
	}
	for _, rec := range storage {
		p.StorageGRS = append(p.StorageGRS, domain.ResourceRef{ResourceGroup: rec.ResourceGroup, Name: rec.Storage})
	}

	fqdn, err := decodeRecords[factoryRecord](doc.FQDN)
	if err != nil {
		return domain.Plan{}, err
	}
	for _, rec := range fqdn {
		p.LinkedServiceFQDN = append(p.LinkedServiceFQDN, domain.ResourceRef{ResourceGroup: rec.ResourceGroup, Name: rec.ADF})
	}

	ups, err := decodeRecords[batchRecord](doc.ScaleUp)
	if err != nil {
		return domain.Plan{}, err
	}
	downs, err := decodeRecords[batchRecord](doc.ScaleDown)
	if err != nil {
		return domain.Plan{}, err
	}
	if len(ups) != len(downs) {
		return domain.Plan{}, fmt.Errorf("%w: batchAccountScaleUp has %d records, batchAccountScaleDown has %d", domain.ErrInvalidDocument, len(ups), len(downs))
	}
	for i := range ups {
		p.PoolScale = append(p.PoolScale, domain.ScalePair{
			Down: domain.ResourceRef{ResourceGroup: downs[i].ResourceGroup, Name: downs[i].Batch, Pool: downs[i].Pool},
			Up:   domain.ResourceRef{ResourceGroup: ups[i].ResourceGroup, Name: ups[i].Batch, Pool: ups[i].Pool},
		})
	}

	froms, err := decodeRecords[vaultRecord](doc.KVSyncFrom)
	if err != nil {
		return domain.Plan{}, err
	}
	tos, err := decodeRecords[vaultRecord](doc.KVSyncTo)
	if err != nil {
		return domain.Plan{}, err
	}
	if len(froms) != len(tos) {
		return domain.Plan{}, fmt.Errorf("%w: kvSyncFrom has %d records, kvSyncTo has %d", domain.ErrInvalidDocument, len(froms), len(tos))
	}
	for i := range froms {
		p.SecretSync = append(p.SecretSync, domain.SyncPair{
			From: domain.ResourceRef{ResourceGroup: froms[i].ResourceGroup, Name: froms[i].KV},
			To:   domain.ResourceRef{ResourceGroup: tos[i].ResourceGroup, Name: tos[i].KV},
		})
	}

	stops, err := decodeRecords[factoryRecord](doc.TriggerStop)
	if err != nil {
		return domain.Plan{}, err
	}
	starts, err := decodeRecords[factoryRecord](doc.TriggerStart)
	if err != nil {
		return domain.Plan{}, err
	}
	if len(stops) != len(starts) {
		return domain.Plan{}, fmt.Errorf("%w: ADFTriggerStop has %d records, ADFTriggerStart has %d", domain.ErrInvalidDocument, len(stops), len(starts))
	}
	for i := range stops {
		p.Triggers = append(p.Triggers, domain.TriggerPair{
			Stop:  domain.ResourceRef{ResourceGroup: stops[i].ResourceGroup, Name: stops[i].ADF},
			Start: domain.ResourceRef{ResourceGroup: starts[i].ResourceGroup, Name: starts[i].ADF},
		})
	}

	return p, nil
}

// Passthrough validates an operator-supplied document and re-emits it
// verbatim. Used when a hand-edited document replaces computed output.
func Passthrough(raw []byte) ([]byte, error) {
	if _, err := Unmarshal(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func encodeRecords[T any](recs []T, single bool) (json.RawMessage, error) {
	if single {
		if len(recs) != 1 {
			return nil, fmt.Errorf("single-domain plan carries %d records for one category", len(recs))
		}
		return json.Marshal(recs[0])
	}
	return json.Marshal(recs)
}

func decodeRecords[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
		}
		return out, nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	return []T{one}, nil
}
