package postgrid

import "encoding/json"

// Status is the vendor-side postcard lifecycle stage. PostGrid owns the
// transitions; this client only reads them back.
type Status string

const (
	StatusCreated    Status = "created"
	StatusProcessing Status = "processing"
	StatusPrinted    Status = "printed"
	StatusMailed     Status = "mailed"
	StatusCancelled  Status = "cancelled"
)

// Contact is the recipient block of a postcard request.
type Contact struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	AddressLine1    string `json:"addressLine1"`
	AddressLine2    string `json:"addressLine2,omitempty"`
	City            string `json:"city"`
	ProvinceOrState string `json:"provinceOrState"`
	PostalOrZip     string `json:"postalOrZip"`
	CountryCode     string `json:"countryCode"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

type createPostcardRequest struct {
	To       Contact           `json:"to"`
	Front    string            `json:"front"`
	Size     string            `json:"size"`
	Express  bool              `json:"express"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Postcard mirrors the vendor payload for a single postcard. Raw carries the
// exact response body for callers that need fields not modelled here.
type Postcard struct {
	ID       string            `json:"id"`
	Status   Status            `json:"status"`
	URL      string            `json:"url"`
	SendDate string            `json:"sendDate"`
	Live     bool              `json:"live"`
	Size     string            `json:"size"`
	Metadata map[string]string `json:"metadata"`

	Raw json.RawMessage `json:"-"`
}

// PostcardList is one page of the vendor's postcard listing.
type PostcardList struct {
	Skip       int        `json:"skip"`
	Limit      int        `json:"limit"`
	TotalCount int        `json:"totalCount"`
	Data       []Postcard `json:"data"`
}

// CancelResult reports a deletion request. Cancellation is only honoured by
// the vendor before printing; a late cancel comes back as a vendor error.
type CancelResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ValidationResult is the outcome of a credential check. Unlike every other
// operation it is always returned, never an error.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Mode  string `json:"mode,omitempty"` // "test" or "live"
	Error string `json:"error,omitempty"`
}

type apiError struct {
	Object string `json:"object"`
	Error  struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
