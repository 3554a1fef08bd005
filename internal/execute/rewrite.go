package execute

import (
	"encoding/json"
	"fmt"
	"regexp"
)

const (
	typeSnowflakeV1 = "Snowflake"
	typeSnowflakeV2 = "SnowflakeV2"
)

// SnowflakeTypes lists the linked service types the FQDN rewrite targets.
func SnowflakeTypes() []string { return []string{typeSnowflakeV1, typeSnowflakeV2} }

// RewriteFQDN replaces old with new in s only where old is immediately
// preceded by a scheme separator and followed by a literal dot. The anchoring
// keeps a partial token like "xcompany.privatelink" from matching
// "company.privatelink".
func RewriteFQDN(s, old, new string) (string, bool) {
	re := regexp.MustCompile(`://` + regexp.QuoteMeta(old) + `\.`)
	changed := false
	out := re.ReplaceAllStringFunc(s, func(string) string {
		changed = true
		return "://" + new + "."
	})
	return out, changed
}

// rewriteLinkedService returns a copy of ls with its host segment rewritten:
// the connection string for Snowflake V1, the account identifier for V2. The
// input is never mutated. ok is false when the anchored FQDN does not occur.
func rewriteLinkedService(ls LinkedService, oldFQDN, newFQDN string) (LinkedService, bool, error) {
	field := "connectionString"
	if ls.Type == typeSnowflakeV2 {
		field = "accountIdentifier"
	}

	props, err := cloneProperties(ls.Properties)
	if err != nil {
		return LinkedService{}, false, err
	}
	typeProps, ok := props["typeProperties"].(map[string]any)
	if !ok {
		return LinkedService{}, false, fmt.Errorf("linked service %q has no typeProperties", ls.Name)
	}
	value, ok := typeProps[field].(string)
	if !ok {
		return LinkedService{}, false, fmt.Errorf("linked service %q has no %s", ls.Name, field)
	}

	rewritten, changed := RewriteFQDN(value, oldFQDN, newFQDN)
	if !changed {
		return LinkedService{}, false, nil
	}
	typeProps[field] = rewritten
	return LinkedService{Name: ls.Name, Type: ls.Type, Properties: props}, true, nil
}

func cloneProperties(props map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
