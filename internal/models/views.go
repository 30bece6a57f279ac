package models

// RFQView - запрос котировок вместе с его предложениями.
type RFQView struct {
	RFQ
	Offers []Offer `json:"offers"`
}

// NegotiationView - переговоры с историей сообщений и актуальными условиями.
type NegotiationView struct {
	Negotiation
	Messages     []NegotiationMessage `json:"messages"`
	CurrentTerms Terms                `json:"currentTerms"`
}
