package datacite

import "encoding/json"

// Document is a single DOI record from the DataCite REST API, cf.
// https://support.datacite.org/docs/api-get-doi. Only a subset of the
// attributes is included.
type Document struct {
	Attributes struct {
		Created  string `json:"created"`
		Creators []struct {
			FamilyName string `json:"familyName"`
			GivenName  string `json:"givenName"`
			Name       string `json:"name"`
			NameType   string `json:"nameType"`
		} `json:"creators"`
		Descriptions []struct {
			Description     string `json:"description"`
			DescriptionType string `json:"descriptionType"`
			Lang            string `json:"lang"`
		} `json:"descriptions"`
		DOI             string          `json:"doi"`
		Language        string          `json:"language"`
		PublicationYear int64           `json:"publicationYear"`
		Published       string          `json:"published"`
		Publisher       json.RawMessage `json:"publisher"` // string, or object in schema 4.5
		Registered      string          `json:"registered"`
		State           string          `json:"state"`
		Titles          []struct {
			Lang      string `json:"lang"`
			Title     string `json:"title"`
			TitleType string `json:"titleType"`
		} `json:"titles"`
		Types struct {
			ResourceType        string `json:"resourceType"`
			ResourceTypeGeneral string `json:"resourceTypeGeneral"`
		} `json:"types"`
		Updated string `json:"updated"`
		URL     string `json:"url"`
		Version string `json:"version"`
	} `json:"attributes"`
	ID            string `json:"id"`
	Relationships struct {
		Client struct {
			Data struct {
				Id   string `json:"id"`
				Type string `json:"type"`
			} `json:"data"`
		} `json:"client"`
	} `json:"relationships"`
	Type string `json:"type"`
}

// ClientID returns the id of the repository that registered the DOI, e.g.
// "cern.zenodo".
func (doc *Document) ClientID() string {
	return doc.Relationships.Client.Data.Id
}

// PublisherName returns the publisher, which may be serialized as a plain
// string or as an object with a name.
func (doc *Document) PublisherName() string {
	raw := doc.Attributes.Publisher
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &v); err == nil {
		return v.Name
	}
	return ""
}

// Abstract returns the first description of type "Abstract".
func (doc *Document) Abstract() string {
	for _, desc := range doc.Attributes.Descriptions {
		if desc.DescriptionType == "Abstract" {
			return desc.Description
		}
	}
	return ""
}

// ListResponse is a page of DOI records.
type ListResponse struct {
	Data  []json.RawMessage `json:"data"`
	Links struct {
		Self string `json:"self"`
		Next string `json:"next"`
	} `json:"links"`
	Meta struct {
		Total      int64 `json:"total"`
		TotalPages int64 `json:"totalPages"`
		Page       int64 `json:"page"`
	} `json:"meta"`
}

// IsLast returns true, if there is no next page.
func (lr *ListResponse) IsLast() bool {
	return lr.Links.Next == "" || len(lr.Data) == 0
}
