package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/createwith/invoicepdf/models"
	"github.com/goccy/go-json"
)

// ErrMalformedPayload reports a body that is not parseable JSON.
var ErrMalformedPayload = errors.New("malformed invoice payload")

// maxDepth bounds how deep into the payload values are materialized. Deeper
// values decode as null.
const maxDepth = 16

// DecodePayload reads a single JSON document from r. Valid JSON that is not an
// object decodes to an empty payload. Number literals are kept as json.Number
// text whatever their magnitude; range checks happen during normalization.
func DecodePayload(r io.Reader) (models.RawPayload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var root json.RawMessage
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformedPayload)
	}

	v, err := rawValue(root, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return models.RawPayload{}, nil
	}
	return models.RawPayload(obj), nil
}

// rawValue converts one raw JSON value into the generic shape Normalize reads:
// objects, arrays, strings, booleans, nil and json.Number.
func rawValue(raw json.RawMessage, depth int) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || depth > maxDepth {
		return nil, nil
	}

	switch raw[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		obj := make(map[string]any, len(fields))
		for k, fv := range fields {
			v, err := rawValue(fv, depth+1)
			if err != nil {
				return nil, err
			}
			obj[k] = v
		}
		return obj, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		list := make([]any, 0, len(elems))
		for _, ev := range elems {
			v, err := rawValue(ev, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case 'n':
		return nil, nil
	default:
		return json.Number(raw), nil
	}
}
