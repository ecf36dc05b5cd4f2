package crossref

import (
	"encoding/json"
	"strings"
)

type DatePart []int64

// DateField is one of the many date fields of a work.
type DateField struct {
	DateParts []DatePart `json:"date-parts,omitempty"`
	DateTime  string     `json:"date-time,omitempty"`
	Timestamp int64      `json:"timestamp,omitempty"`
}

// Triple returns year, month and day, if all three parts are given.
func (d DateField) Triple() (year, month, day int, ok bool) {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) < 3 {
		return 0, 0, 0, false
	}
	p := d.DateParts[0]
	return int(p[0]), int(p[1]), int(p[2]), true
}

// Institution of a posted content item, e.g. {"name": "bioRxiv"}.
type Institution struct {
	Name    string   `json:"name"`
	Place   []string `json:"place,omitempty"`
	Acronym []string `json:"acronym,omitempty"`
}

// Work is a crossref API works document, as documented in
// https://www.crossref.org/documentation/retrieve-metadata/rest-api/. Only
// the fields relevant for posted content are included.
type Work struct {
	Abstract       string          `json:"abstract"`
	Author         json.RawMessage `json:"author"`
	ContainerTitle []string        `json:"container-title,omitempty"`
	Created        DateField       `json:"created"`
	DOI            string
	Deposited      DateField       `json:"deposited"`
	GroupTitle     string          `json:"group-title,omitempty"`
	Institution    json.RawMessage `json:"institution,omitempty"` // object or list of objects
	Issued         DateField       `json:"issued"`
	Member         string          `json:"member,omitempty"`
	Posted         DateField       `json:"posted"`
	Prefix         string          `json:"prefix,omitempty"`
	Publisher      string          `json:"publisher,omitempty"`
	Resource       struct {
		Primary struct {
			URL string
		} `json:"primary,omitempty"`
	} `json:"resource,omitempty"`
	Subtype string   `json:"subtype,omitempty"`
	Title   []string `json:"title,omitempty"`
	Type    string   `json:"type,omitempty"`
	URL     string
}

// InstitutionName returns the first institution name. The API has returned
// both a single object and a list of objects for this field.
func (w *Work) InstitutionName() string {
	if len(w.Institution) == 0 {
		return ""
	}
	var many []Institution
	if err := json.Unmarshal(w.Institution, &many); err == nil {
		for _, inst := range many {
			if name := strings.TrimSpace(inst.Name); name != "" {
				return name
			}
		}
		return ""
	}
	var one Institution
	if err := json.Unmarshal(w.Institution, &one); err == nil {
		return strings.TrimSpace(one.Name)
	}
	return ""
}

// WorksResponse, with the items kept raw, as we pass them on unchanged.
type WorksResponse struct {
	Message struct {
		Items        []json.RawMessage `json:"items"`
		ItemsPerPage int64             `json:"items-per-page"`
		NextCursor   string            `json:"next-cursor"` // iterate
		TotalResults int64             `json:"total-results"`
	} `json:"message"`
	MessageType    string `json:"message-type"`
	MessageVersion string `json:"message-version"`
	Status         string `json:"status"`
}

// IsLast returns true, if there are no more records to fetch.
func (wr *WorksResponse) IsLast() bool {
	return wr.Message.NextCursor == "" || len(wr.Message.Items) == 0
}
