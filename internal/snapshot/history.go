package snapshot

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"tdfeed/internal/canonical"
	"tdfeed/internal/logger"
)

// Every persisted document is {"meta": {...}, "data": [...]}. A previous
// file failing this shape is treated as absent history, never as an
// error.
const payloadSchemaJSON = `{
  "type": "object",
  "required": ["meta", "data"],
  "properties": {
    "meta": {"type": "object"},
    "data": {"type": "array"}
  }
}`

var payloadSchema = mustCompileSchema(payloadSchemaJSON)

func mustCompileSchema(src string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("payload.json", strings.NewReader(src)); err != nil {
		panic(err)
	}
	return c.MustCompile("payload.json")
}

// History is the readable part of a previously persisted document.
type History struct {
	raw []byte
}

// LoadHistory loads and shape-checks the previous document from st.
// It returns nil for missing, non-JSON or mis-shaped files.
func LoadHistory(st *Store) *History {
	raw := st.Load()
	if raw == nil {
		return nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Warnf("previous snapshot %s is not valid JSON, ignoring it", st.Path())
		return nil
	}
	if err := payloadSchema.Validate(doc); err != nil {
		logger.Warnf("previous snapshot %s has an unexpected shape, ignoring it", st.Path())
		return nil
	}
	return &History{raw: raw}
}

// Meta returns a string field from the previous meta block, empty when
// absent.
func (h *History) Meta(key string) string {
	if h == nil {
		return ""
	}
	return gjson.GetBytes(h.raw, "meta."+key).String()
}

// Flat decodes and canonicalizes the previous real-time data array.
// ok=false means the array could not be decoded into the expected row
// shape.
func (h *History) Flat() (canonical.Flat, bool) {
	if h == nil {
		return nil, false
	}
	var data canonical.Flat
	if err := json.Unmarshal([]byte(gjson.GetBytes(h.raw, "data").Raw), &data); err != nil {
		return nil, false
	}
	return data.Normalize(), true
}

// Grouped decodes and canonicalizes the previous historical data array.
func (h *History) Grouped() (canonical.Grouped, bool) {
	if h == nil {
		return nil, false
	}
	var data canonical.Grouped
	if err := json.Unmarshal([]byte(gjson.GetBytes(h.raw, "data").Raw), &data); err != nil {
		return nil, false
	}
	return data.Normalize(), true
}
