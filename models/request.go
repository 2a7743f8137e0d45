package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScrapeRequest is the payload for POST /api/scrape.
type ScrapeRequest struct {
	// Keyword is the search term sent to every site.
	// Default: "laptop".
	Keyword string `json:"keyword"`

	// MaxProducts caps the number of items per site. Accepts a number
	// or a numeric string. Default: 12 (configurable). Max: 100.
	MaxProducts FlexInt `json:"max_products" binding:"omitempty,min=1,max=100"`

	// Discount is the optional maximum discount filter. Accepts a number
	// or free-form text such as "30" or "30%".
	Discount FlexString `json:"discount"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults(defaultMaxProducts int) {
	r.Keyword = strings.TrimSpace(r.Keyword)
	if r.Keyword == "" {
		r.Keyword = "laptop"
	}
	if r.MaxProducts == 0 {
		r.MaxProducts = FlexInt(defaultMaxProducts)
	}
}

// FlexInt accepts a JSON integer or a string holding one ("12"). Null,
// absent and "" decode to 0.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*n = FlexInt(v)
	return nil
}

// FlexString accepts a JSON string, number, boolean or null and keeps the
// textual form. Null and absent both decode to "".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64, bool:
		*f = FlexString(string(data))
		return nil
	default:
		return fmt.Errorf("unsupported value %s", t)
	}
}

// SubscribeRequest is the payload for POST /api/subscribe.
type SubscribeRequest struct {
	Product  AlertProduct `json:"product"`
	Keyword  string       `json:"keyword"`
	Discount FlexString   `json:"discount"`
	Method   string       `json:"method"`
	Contact  string       `json:"contact"`
}

// AlertProduct is the product a subscriber picked from the results, if any.
type AlertProduct struct {
	Title string `json:"title"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Site  string `json:"site"`
}

// DeleteAlertRequest is the payload for POST /api/alerts/delete.
type DeleteAlertRequest struct {
	ID string `json:"id"`
}
