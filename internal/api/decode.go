package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/harrylevesque/ecoadmin/internal/models"
)

var errTrailingData = errors.New("unexpected data after JSON value")

// decodeValue parses one JSON value, keeping numbers as json.Number so ids
// survive the round trip unchanged.
func decodeValue(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}

// decodeCollection turns a response body into a normalized collection.
//
// Arrays become the collection, single objects a one-element collection
// (unless ep.Envelope names a wrapped array), empty bodies an empty one.
func decodeCollection(ep Endpoint, body []byte) (models.Collection, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return models.Collection{}, nil
	}
	v, err := decodeValue(body)
	if err != nil {
		if ep.TextFallback {
			return models.Collection{{"message": string(body)}}, nil
		}
		return nil, &FetchError{Kind: FetchParseFailure, Err: err}
	}
	return shapeCollection(ep, v), nil
}

func shapeCollection(ep Endpoint, v any) models.Collection {
	switch t := v.(type) {
	case []any:
		out := make(models.Collection, 0, len(t))
		for _, el := range t {
			if obj, ok := el.(map[string]any); ok {
				out = append(out, models.Normalize(obj))
			}
		}
		return out
	case map[string]any:
		if ep.Envelope != "" {
			for k, inner := range t {
				if models.Canonical(k) == models.Canonical(ep.Envelope) {
					if list, ok := inner.([]any); ok {
						return shapeCollection(Endpoint{}, list)
					}
				}
			}
		}
		return models.Collection{models.Normalize(t)}
	default:
		return models.Collection{}
	}
}

// decodeRecord is decodeCollection for single-record responses: the first
// element of an array, the object itself, or an empty record.
func decodeRecord(ep Endpoint, body []byte) (models.Record, error) {
	c, err := decodeCollection(ep, body)
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return models.Record{}, nil
	}
	return c[0], nil
}

// decodeEcho reads the body a write answered with. Plain text such as
// "Created" becomes {"message": text}; anything else shapes like a record.
func decodeEcho(ep Endpoint, body []byte) models.Record {
	if len(bytes.TrimSpace(body)) == 0 {
		return models.Record{}
	}
	v, err := decodeValue(body)
	if err != nil {
		return models.Record{"message": string(body)}
	}
	if c := shapeCollection(ep, v); len(c) > 0 {
		return c[0]
	}
	return models.Record{}
}
