package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/mealbox/internal/domain/addon"
	"github.com/xenking/mealbox/internal/domain/auth"
	"github.com/xenking/mealbox/internal/domain/meal"
	"github.com/xenking/mealbox/internal/domain/order"
	"github.com/xenking/mealbox/internal/domain/pricing"
)

const (
	maxBodyBytes = 1 << 20
	dateLayout   = "2006-01-02"
)

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errMalformedBody, err.Error())
	}
	return data, nil
}

// decodeDraft reads a checkout payload. Client supplied pricing, day count,
// status and ids are ignored: the server recomputes them. The portion may be
// sent as portionSize or as the first element of mealItemIds, and the phone
// as a string or a number.
func decodeDraft(data []byte) (order.Draft, error) {
	var (
		d           order.Draft
		itemIDs     []string
		start, end  string
		numberPhone bool
	)
	err := jx.DecodeBytes(data).ObjBytes(func(dec *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "mealId":
			d.MealID, err = optStr(dec)
		case "portionSize":
			d.PortionSize, err = optStr(dec)
		case "mealItemIds":
			itemIDs, err = strs(dec)
		case "addOnIds":
			d.AddOnIDs, err = strs(dec)
		case "deliveryAddress":
			d.DeliveryAddress, err = optStr(dec)
		case "phone":
			d.Phone, numberPhone, err = phone(dec)
		case "scheduledDate":
			if dec.Next() == jx.Null {
				return dec.Null()
			}
			err = dec.ObjBytes(func(dec *jx.Decoder, key []byte) error {
				var err error
				switch string(key) {
				case "startDate":
					start, err = optStr(dec)
				case "endDate":
					end, err = optStr(dec)
				default:
					err = dec.Skip()
				}
				return err
			})
		default:
			err = dec.Skip()
		}
		return err
	})
	if err != nil {
		return order.Draft{}, errors.Wrap(errMalformedBody, err.Error())
	}

	if numberPhone {
		if d.Phone, err = phoneDigits(d.Phone); err != nil {
			return order.Draft{}, err
		}
	}
	if d.PortionSize == "" && len(itemIDs) > 0 {
		d.PortionSize = itemIDs[0]
	}
	if d.Schedule.Start, err = parseOptDate(start); err != nil {
		return order.Draft{}, err
	}
	if d.Schedule.End, err = parseOptDate(end); err != nil {
		return order.Draft{}, err
	}
	return d, nil
}

func parseOptDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := pricing.ParseDate(s)
	if err != nil {
		return time.Time{}, &order.ValidationError{Field: "scheduledDate", Message: "Delivery dates must be YYYY-MM-DD."}
	}
	return t, nil
}

// decodeStatus reads {"status": "..."}.
func decodeStatus(data []byte) (string, error) {
	var status string
	err := jx.DecodeBytes(data).ObjBytes(func(dec *jx.Decoder, key []byte) error {
		if string(key) != "status" {
			return dec.Skip()
		}
		var err error
		status, err = optStr(dec)
		return err
	})
	if err != nil {
		return "", errors.Wrap(errMalformedBody, err.Error())
	}
	return status, nil
}

// decodeMealPatch reads a provider's meal payload. Keys that are absent or
// null leave the field unchanged. The id is only honoured on create.
func decodeMealPatch(data []byte) (string, meal.Patch, error) {
	var (
		id    string
		patch meal.Patch
	)
	err := jx.DecodeBytes(data).ObjBytes(func(dec *jx.Decoder, key []byte) error {
		if dec.Next() == jx.Null {
			return dec.Null()
		}
		var err error
		switch string(key) {
		case "id":
			id, err = dec.Str()
		case "name", "mealName":
			patch.Name, err = strPtr(dec)
		case "description":
			patch.Description, err = strPtr(dec)
		case "category":
			patch.Category, err = strPtr(dec)
		case "imageUrl":
			patch.ImageURL, err = strPtr(dec)
		case "available", "availability":
			var b bool
			b, err = dec.Bool()
			patch.Available = &b
		case "portions":
			patch.Portions = []meal.Portion{}
			err = dec.Arr(func(dec *jx.Decoder) error {
				p, err := decodePortion(dec)
				patch.Portions = append(patch.Portions, p)
				return err
			})
		default:
			err = dec.Skip()
		}
		return err
	})
	if err != nil {
		return "", meal.Patch{}, errors.Wrap(errMalformedBody, err.Error())
	}
	return id, patch, nil
}

func decodePortion(dec *jx.Decoder) (meal.Portion, error) {
	var p meal.Portion
	err := dec.ObjBytes(func(dec *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "size":
			p.Size, err = dec.Str()
		case "price":
			p.Price, err = decodeMoney(dec)
		default:
			err = dec.Skip()
		}
		return err
	})
	return p, err
}

// decodeMoney accepts 8.99 as well as "8.99".
func decodeMoney(dec *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	if dec.Next() == jx.Number {
		n, err := dec.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = n.String()
	} else {
		s, err := dec.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = s
	}
	return decimal.NewFromString(raw)
}

func strPtr(dec *jx.Decoder) (*string, error) {
	s, err := dec.Str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func optStr(dec *jx.Decoder) (string, error) {
	if dec.Next() == jx.Null {
		return "", dec.Null()
	}
	return dec.Str()
}

func strs(dec *jx.Decoder) ([]string, error) {
	if dec.Next() == jx.Null {
		return nil, dec.Null()
	}
	var out []string
	err := dec.Arr(func(dec *jx.Decoder) error {
		s, err := dec.Str()
		out = append(out, s)
		return err
	})
	return out, err
}

// phone reads a string or number phone. Numbers are returned as their raw
// JSON text and reported so the caller can normalise them.
func phone(dec *jx.Decoder) (string, bool, error) {
	if dec.Next() != jx.Number {
		s, err := optStr(dec)
		return s, false, err
	}
	n, err := dec.Num()
	if err != nil {
		return "", true, err
	}
	return n.String(), true, nil
}

// phoneDigits renders a numeric phone as plain digits, so 1e10 becomes
// 10000000000. Fractions and negative numbers are rejected.
func phoneDigits(raw string) (string, error) {
	n, err := decimal.NewFromString(raw)
	if err != nil || n.IsNegative() || !n.Equal(n.Truncate(0)) {
		return "", &order.ValidationError{Field: "phone", Message: "Phone number must contain digits only."}
	}
	return n.Truncate(0).String(), nil
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.RawStr(d.String())
}

func encodeStrs(e *jx.Encoder, values []string) {
	e.ArrStart()
	for _, v := range values {
		e.Str(v)
	}
	e.ArrEnd()
}

func (h *Handler) encodeMeal(e *jx.Encoder, m *meal.Meal) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(m.ID) })
		e.Field("providerId", func(e *jx.Encoder) { e.Str(m.ProviderID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(m.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(m.Description) })
		e.Field("category", func(e *jx.Encoder) { e.Str(m.Category) })
		e.Field("imageUrl", func(e *jx.Encoder) { e.Str(h.imageURL(m.ImageURL)) })
		e.Field("available", func(e *jx.Encoder) { e.Bool(m.Available) })
		e.Field("portions", func(e *jx.Encoder) {
			e.ArrStart()
			for _, p := range m.Portions {
				e.Obj(func(e *jx.Encoder) {
					e.Field("size", func(e *jx.Encoder) { e.Str(p.Size) })
					e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, p.Price) })
				})
			}
			e.ArrEnd()
		})
	})
}

func encodeAddOn(e *jx.Encoder, a addon.AddOn) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(a.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(a.Name) })
		e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, a.Price) })
	})
}

func encodeQuote(e *jx.Encoder, res *order.QuoteResult) {
	q := res.Quote
	e.Obj(func(e *jx.Encoder) {
		e.Field("mealId", func(e *jx.Encoder) { e.Str(res.Meal.ID) })
		e.Field("portionSize", func(e *jx.Encoder) { e.Str(res.Portion.Size) })
		e.Field("extraItems", func(e *jx.Encoder) { encodeStrs(e, res.ExtraItems) })
		e.Field("basePrice", func(e *jx.Encoder) { encodeDecimal(e, q.BasePrice) })
		e.Field("addOnsDaily", func(e *jx.Encoder) { encodeDecimal(e, q.AddOnsDaily) })
		e.Field("dailyTotal", func(e *jx.Encoder) { encodeDecimal(e, q.DailyTotal) })
		e.Field("numberOfDays", func(e *jx.Encoder) { e.Int(q.Days) })
		e.Field("pricing", func(e *jx.Encoder) { encodeDecimal(e, q.Total) })
		e.Field("display", func(e *jx.Encoder) { e.Str(pricing.Format(q.Total)) })
		e.Field("lines", func(e *jx.Encoder) {
			e.ArrStart()
			for _, l := range q.Lines {
				e.Obj(func(e *jx.Encoder) {
					e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
					e.Field("unitPrice", func(e *jx.Encoder) { encodeDecimal(e, l.UnitPrice) })
					e.Field("days", func(e *jx.Encoder) { e.Int(l.Days) })
					e.Field("amount", func(e *jx.Encoder) { encodeDecimal(e, l.Amount) })
				})
			}
			e.ArrEnd()
		})
	})
}

// orderView carries the derived fields rendered next to an order.
type orderView struct {
	bucket  order.Bucket
	allowed []order.Status
	// detail renders allowedTransitions.
	detail bool
}

func encodeOrder(e *jx.Encoder, o *order.Order, v orderView) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("customerId", func(e *jx.Encoder) { e.Str(o.CustomerID) })
		e.Field("mealId", func(e *jx.Encoder) { e.Str(o.MealID) })
		e.Field("providerId", func(e *jx.Encoder) { e.Str(o.ProviderID) })
		e.Field("portionSize", func(e *jx.Encoder) { e.Str(o.PortionSize) })
		e.Field("mealItemIds", func(e *jx.Encoder) { encodeStrs(e, []string{o.PortionSize}) })
		e.Field("deliveryAddress", func(e *jx.Encoder) { e.Str(o.DeliveryAddress) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(o.Phone) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("scheduledDate", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("startDate", func(e *jx.Encoder) { e.Str(o.Schedule.Start.Format(dateLayout)) })
				e.Field("endDate", func(e *jx.Encoder) { e.Str(o.Schedule.End.Format(dateLayout)) })
			})
		})
		e.Field("extraItems", func(e *jx.Encoder) { encodeStrs(e, o.ExtraItems) })
		e.Field("pricing", func(e *jx.Encoder) { encodeDecimal(e, o.Pricing) })
		e.Field("numberOfDays", func(e *jx.Encoder) { e.Int(o.NumberOfDays) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format(time.RFC3339)) })
		e.Field("updatedAt", func(e *jx.Encoder) { e.Str(o.UpdatedAt.UTC().Format(time.RFC3339)) })
		e.Field("bucket", func(e *jx.Encoder) { e.Str(string(v.bucket)) })
		if v.detail {
			e.Field("allowedTransitions", func(e *jx.Encoder) {
				e.ArrStart()
				for _, s := range v.allowed {
					e.Str(string(s))
				}
				e.ArrEnd()
			})
		}
	})
}

func (h *Handler) view(p auth.Principal, o *order.Order, detail bool) orderView {
	v := orderView{bucket: h.orders.Classify(o), detail: detail}
	if detail {
		v.allowed = order.AllowedTransitions(p.Role, o.Status)
	}
	return v
}
