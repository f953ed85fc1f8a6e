package dealer

import (
	"slices"

	"github.com/go-faster/jx"
)

// The backend wraps responses inconsistently: sometimes {"data": X},
// sometimes the bare entity, and list endpoints occasionally key the array
// by resource name. The functions here normalize a body exactly once at
// the client boundary so the rest of the gateway sees a single shape.

// splitEnvelope returns the payload portion of a response body and any
// server-provided message. A top-level "data" key wins; otherwise the body
// itself is the payload. The message is read from "message", then "error".
func splitEnvelope(body []byte) (payload []byte, message string) {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return body, ""
	}

	var data []byte
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch {
		case key == "data":
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			data = raw
			return nil
		case (key == "message" || key == "error") && d.Next() == jx.String:
			s, err := d.Str()
			if err != nil {
				return err
			}
			if message == "" {
				message = s
			}
			return nil
		default:
			return d.Skip()
		}
	})

	if data != nil {
		return data, message
	}
	return body, message
}

// firstField returns the value of the first present key among keys, with
// string and number values both rendered as strings. Used to read created
// resource ids across the backend's spelling drift (customerId vs id vs
// _id, orderNumber vs orderNo, ...).
func firstField(payload []byte, keys ...string) string {
	d := jx.DecodeBytes(payload)
	if d.Next() != jx.Object {
		return ""
	}

	vals := make(map[string]string, len(keys))
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if !slices.Contains(keys, key) {
			return d.Skip()
		}
		switch d.Next() {
		case jx.String:
			s, err := d.Str()
			if err != nil {
				return err
			}
			vals[key] = s
		case jx.Number:
			n, err := d.Num()
			if err != nil {
				return err
			}
			vals[key] = n.String()
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return ""
	}

	for _, k := range keys {
		if v := vals[k]; v != "" {
			return v
		}
	}
	return ""
}

// arrayPayload digs the list out of a payload: a bare array is returned as
// is; for an object the first array-valued field matching keys is used
// (any array field when keys is empty).
func arrayPayload(payload []byte, keys ...string) []byte {
	d := jx.DecodeBytes(payload)
	switch d.Next() {
	case jx.Array:
		return payload
	case jx.Object:
		var found []byte
		_ = d.Obj(func(d *jx.Decoder, key string) error {
			if found == nil && d.Next() == jx.Array &&
				(len(keys) == 0 || slices.Contains(keys, key)) {
				raw, err := d.Raw()
				if err != nil {
					return err
				}
				found = raw
				return nil
			}
			return d.Skip()
		})
		if found != nil {
			return found
		}
	}
	return payload
}
