package main

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/mealbox/db"
	"github.com/xenking/mealbox/internal/domain/meal"
)

// readCatalog returns the raw meal catalog. An empty path selects the
// embedded catalog; paths ending in .gz are decompressed.
func readCatalog(path string) ([]byte, error) {
	if path == "" {
		return db.Meals, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	return data, nil
}

// parseCatalog decodes a JSON array of meals and validates each entry.
func parseCatalog(data []byte) ([]meal.Meal, error) {
	var meals []meal.Meal
	d := jx.DecodeBytes(bytes.TrimSpace(data))
	if err := d.Arr(func(d *jx.Decoder) error {
		m, err := decodeMeal(d)
		if err != nil {
			return errors.Wrapf(err, "meal #%d", len(meals))
		}
		if m.ID == "" {
			return errors.Errorf("meal #%d: missing id", len(meals))
		}
		if err := m.Validate(); err != nil {
			return err
		}
		meals = append(meals, m)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return meals, nil
}

// decodeMeal reads one catalog entry. Entries without an availability flag
// are on the menu.
func decodeMeal(d *jx.Decoder) (meal.Meal, error) {
	m := meal.Meal{Available: true}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			m.ID, err = d.Str()
		case "providerId":
			m.ProviderID, err = d.Str()
		case "name":
			m.Name, err = d.Str()
		case "description":
			m.Description, err = d.Str()
		case "category":
			m.Category, err = d.Str()
		case "imageUrl":
			m.ImageURL, err = d.Str()
		case "available", "availability":
			m.Available, err = d.Bool()
		case "portions":
			err = d.Arr(func(d *jx.Decoder) error {
				p, err := decodePortion(d)
				if err != nil {
					return err
				}
				m.Portions = append(m.Portions, p)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return m, err
}

func decodePortion(d *jx.Decoder) (meal.Portion, error) {
	var p meal.Portion
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "size":
			s, err := d.Str()
			p.Size = s
			return err
		case "price":
			price, err := decodePrice(d)
			p.Price = price
			return err
		default:
			return d.Skip()
		}
	})
	return p, err
}

// decodePrice accepts both "8.99" and 8.99.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = n.String()
	default:
		return decimal.Decimal{}, errors.Errorf("price: unexpected %s", d.Next())
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "price %q", raw)
	}
	return price, nil
}
