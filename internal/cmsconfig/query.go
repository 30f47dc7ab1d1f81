package cmsconfig

import "math"

// ListQuery is the paging plan a list view sends to the record backend.
type ListQuery struct {
	RecordName string `json:"recordName"`
	RecordType string `json:"recordType"`
	Page       int    `json:"page"`
	PerPage    int    `json:"perPage"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

// ListQuery computes the window for the 1-based page of r's list view. Pages
// whose offset would not fit in an int are rejected.
func (r RecordConfig) ListQuery(page int) (ListQuery, error) {
	perPage := r.List.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 || page > math.MaxInt/perPage+1 {
		return ListQuery{}, ErrInvalidPage
	}
	return ListQuery{
		RecordName: r.RecordName,
		RecordType: r.RecordType,
		Page:       page,
		PerPage:    perPage,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}, nil
}
