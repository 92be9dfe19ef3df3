package embedded

import (
	"fmt"
	"path"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

var fieldTypes = map[string]bool{
	"text": true, "keyword": true, "long": true, "integer": true, "short": true, "byte": true,
	"double": true, "float": true, "half_float": true, "scaled_float": true, "boolean": true,
	"date": true, "object": true, "nested": true, "geo_point": true, "ip": true, "binary": true,
}

func emptyMapping() map[string]interface{} {
	return map[string]interface{}{"properties": map[string]interface{}{}}
}

// mergeMapping adds the properties of update to current. Changing the type of
// an existing field is rejected, as the backend does.
func mergeMapping(current, update map[string]interface{}) (map[string]interface{}, error) {
	props, ok := update["properties"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("mapping must contain a properties object")
	}
	if err := validateProperties(props); err != nil {
		return nil, err
	}

	merged := deepCopy(current)
	existing, _ := merged["properties"].(map[string]interface{})
	if existing == nil {
		existing = map[string]interface{}{}
		merged["properties"] = existing
	}
	for field, def := range props {
		newDef := def.(map[string]interface{})
		if oldDef, ok := existing[field].(map[string]interface{}); ok {
			if oldType, newType := oldDef["type"], newDef["type"]; oldType != nil && newType != nil && oldType != newType {
				return nil, fmt.Errorf("mapper for [%s] cannot be changed from type [%v] to [%v]", field, oldType, newType)
			}
		}
		existing[field] = deepCopy(newDef)
	}
	return merged, nil
}

func validateProperties(props map[string]interface{}) error {
	for field, def := range props {
		defMap, ok := def.(map[string]interface{})
		if !ok {
			return fmt.Errorf("field [%s] definition must be an object", field)
		}
		if nested, ok := defMap["properties"].(map[string]interface{}); ok {
			if err := validateProperties(nested); err != nil {
				return err
			}
			continue
		}
		typeName, ok := defMap["type"].(string)
		if !ok {
			return fmt.Errorf("no type specified for field [%s]", field)
		}
		if !fieldTypes[typeName] {
			return fmt.Errorf("no handler for type [%s] declared on field [%s]", typeName, field)
		}
	}
	return nil
}

// deepCopy copies nested maps and slices of a JSON-shaped value
func deepCopy[M ~map[string]interface{}](src M) M {
	if src == nil {
		return nil
	}
	dst := make(M, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopy(val)
	case domain.Document:
		return deepCopy(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return val
	}
}

// mergeInto applies a partial update, merging nested objects
func mergeInto(dst, partial domain.Document) {
	for key, value := range partial {
		if key == "_id" {
			continue
		}
		newObj, newIsObj := value.(map[string]interface{})
		oldObj, oldIsObj := dst[key].(map[string]interface{})
		if newIsObj && oldIsObj {
			mergeInto(oldObj, newObj)
			continue
		}
		dst[key] = value
	}
}

// filterSource returns a copy of doc holding only the top-level fields
// matching one of the patterns. No patterns or "*" keeps every field.
func filterSource(doc domain.Document, patterns []string) domain.Document {
	if len(patterns) == 0 {
		return deepCopy(doc)
	}
	out := domain.Document{}
	for key, value := range doc {
		for _, pattern := range patterns {
			if matched, _ := path.Match(pattern, key); matched {
				out[key] = copyValue(value)
				break
			}
		}
	}
	return out
}
