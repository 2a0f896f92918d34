package experiment

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	commonmaps "github.com/armadaproject/expctl/internal/common/maps"
)

// Configuration gives a runner access to the run configuration of its job.
//
// In strict mode (the default) looking up a missing key fails with ErrKeyNotFound.
// In template mode a missing key is recorded with the supplied default and the default is
// returned, so running a job against an empty configuration yields the schema the runner
// expects (see Map).
type Configuration struct {
	values           map[string]any
	generateDefaults bool
}

// NewConfiguration returns a strict Configuration over a copy of values.
func NewConfiguration(values map[string]any) *Configuration {
	return newConfiguration(values, false)
}

// NewTemplateConfiguration returns a Configuration in template mode over a copy of values.
func NewTemplateConfiguration(values map[string]any) *Configuration {
	return newConfiguration(values, true)
}

func newConfiguration(values map[string]any, generateDefaults bool) *Configuration {
	c := &Configuration{
		values:           make(map[string]any, len(values)),
		generateDefaults: generateDefaults,
	}
	for k, v := range values {
		c.values[k] = wrap(v, generateDefaults)
	}
	return c
}

func wrap(v any, generateDefaults bool) any {
	switch t := v.(type) {
	case map[string]any:
		return newConfiguration(t, generateDefaults)
	case *Configuration:
		return newConfiguration(t.Map(), generateDefaults)
	case []any:
		rv := make([]any, len(t))
		for i, e := range t {
			rv[i] = wrapListElement(e)
		}
		return rv
	default:
		return v
	}
}

// Lists are kept as plain values; maps inside lists are copied but not wrapped.
func wrapListElement(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return newConfiguration(t, false).Map()
	case []any:
		rv := make([]any, len(t))
		for i, e := range t {
			rv[i] = wrapListElement(e)
		}
		return rv
	default:
		return v
	}
}

// GeneratesDefaults reports whether c is in template mode.
func (c *Configuration) GeneratesDefaults() bool {
	return c.generateDefaults
}

// Has reports whether key is set.
func (c *Configuration) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns the keys of c in sorted order.
func (c *Configuration) Keys() []string {
	return commonmaps.SortedKeys(c.values)
}

// Get returns the value stored under key. Nested mappings are returned as *Configuration.
// A missing key fails in strict mode; in template mode it's recorded as an empty nested
// Configuration.
func (c *Configuration) Get(key string) (any, error) {
	return c.GetOrDefault(key, nil)
}

// GetOrDefault is Get with the default to record in template mode.
// A nil default records an empty nested Configuration.
func (c *Configuration) GetOrDefault(key string, defaultValue any) (any, error) {
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	if !c.generateDefaults {
		return nil, errors.WithStack(&expctlerrors.ErrKeyNotFound{Key: key})
	}
	var value any
	if defaultValue == nil {
		value = newConfiguration(nil, true)
	} else {
		value = wrap(defaultValue, true)
	}
	c.values[key] = value
	return value, nil
}

// Sub returns the nested Configuration stored under key.
func (c *Configuration) Sub(key string) (*Configuration, error) {
	v, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Configuration)
	if !ok {
		return nil, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    key,
			Value:   v,
			Message: "not a nested configuration",
		})
	}
	return sub, nil
}

// Map returns c as plain nested maps, including any defaults recorded in template mode.
func (c *Configuration) Map() map[string]any {
	rv := make(map[string]any, len(c.values))
	for k, v := range c.values {
		if sub, ok := v.(*Configuration); ok {
			rv[k] = sub.Map()
		} else {
			rv[k] = v
		}
	}
	return rv
}

// Decode decodes c into out, usually a pointer to a struct. Numbers may be decoded into
// any numeric field, which matters as JSON configurations only hold float64s.
func (c *Configuration) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := decoder.Decode(c.Map()); err != nil {
		return errors.Wrap(err, "error decoding configuration")
	}
	return nil
}

func (c *Configuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

func (c *Configuration) String() string {
	data, err := json.Marshal(c.Map())
	if err != nil {
		return fmt.Sprintf("%v", c.Map())
	}
	return string(data)
}
