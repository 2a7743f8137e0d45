package models

// Alert is a persisted price-drop subscription.
type Alert struct {
	ID           string `json:"id"`
	Keyword      string `json:"keyword"`
	Discount     string `json:"discount"`
	Method       string `json:"method"`
	Contact      string `json:"contact"`
	ProductTitle string `json:"product_title"`
	ProductURL   string `json:"product_url,omitempty"`
	Site         string `json:"site,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// NewAlert builds an unsaved alert from a subscribe request. The product
// title falls back to the product name and then to the keyword.
func NewAlert(req SubscribeRequest) Alert {
	title := req.Product.Title
	if title == "" {
		title = req.Product.Name
	}
	if title == "" {
		title = req.Keyword
	}
	method := req.Method
	if method == "" {
		method = "Email"
	}
	return Alert{
		Keyword:      req.Keyword,
		Discount:     string(req.Discount),
		Method:       method,
		Contact:      req.Contact,
		ProductTitle: title,
		ProductURL:   req.Product.URL,
		Site:         req.Product.Site,
	}
}
