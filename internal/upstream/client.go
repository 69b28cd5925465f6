// Package upstream fetches raw catalog records from an Airtable-compatible
// spreadsheet API.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aym0707/storefront/internal/catalog"
)

// Config holds the coordinates of the spreadsheet API.
type Config struct {
	BaseURL    string
	BaseID     string
	Table      string
	APIKey     string
	MaxRecords int
}

// Client consumes the records endpoint of the spreadsheet API.
type Client struct {
	cfg  Config
	http *http.Client
}

var _ catalog.Source = (*Client)(nil)

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Fetch retrieves every record of the configured table. The caller bounds the
// call through ctx.
func (c *Client) Fetch(ctx context.Context) ([]catalog.Record, error) {
	u := fmt.Sprintf("%s/%s/%s?maxRecords=%d",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.BaseID),
		url.PathEscape(c.cfg.Table),
		c.cfg.MaxRecords,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return records, nil
}

func decodeRecords(data []byte) ([]catalog.Record, error) {
	var records []catalog.Record
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "records" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			rec, err := decodeRecord(d)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeRecord(d *jx.Decoder) (catalog.Record, error) {
	var rec catalog.Record
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			id, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "id")
			}
			rec.ID = id
			return nil
		case "fields":
			return d.Obj(func(d *jx.Decoder, name string) error {
				v, err := decodeValue(d)
				if err != nil {
					return errors.Wrapf(err, "field %q", name)
				}
				rec.Fields = append(rec.Fields, catalog.Field{Name: name, Value: v})
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return rec, err
}

// decodeValue keeps text for scalars and collects URLs from attachment
// arrays or a single attachment object. Unsupported shapes decode to an
// empty value.
func decodeValue(d *jx.Decoder) (catalog.Value, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		return catalog.Value{Text: s}, err
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return catalog.Value{}, err
		}
		return catalog.Value{Text: n.String()}, nil
	case jx.Object:
		var v catalog.Value
		err := d.Obj(func(d *jx.Decoder, key string) error {
			if key != "url" {
				return d.Skip()
			}
			u, err := d.Str()
			if err != nil {
				return err
			}
			v.URLs = append(v.URLs, u)
			return nil
		})
		return v, err
	case jx.Array:
		var v catalog.Value
		err := d.Arr(func(d *jx.Decoder) error {
			switch d.Next() {
			case jx.Object:
				return d.Obj(func(d *jx.Decoder, key string) error {
					if key != "url" {
						return d.Skip()
					}
					u, err := d.Str()
					if err != nil {
						return err
					}
					v.URLs = append(v.URLs, u)
					return nil
				})
			case jx.String:
				s, err := d.Str()
				if err != nil {
					return err
				}
				v.URLs = append(v.URLs, s)
				return nil
			default:
				return d.Skip()
			}
		})
		return v, err
	default:
		return catalog.Value{}, d.Skip()
	}
}
